package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"taskboard/internal/auth"
)

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <client>",
		Short: "Mint an API token for a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadRuntime()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET must be set to mint tokens")
			}

			issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)
			if err != nil {
				return err
			}
			token, err := issuer.GenerateToken(args[0])
			if err != nil {
				return fmt.Errorf("mint token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
