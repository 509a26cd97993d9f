package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "taskboard/docs"
	"taskboard/internal/auth"
	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config

	logger *log.Logger
}

// Init opens the database and, when configured, Redis, then builds the server.
func Init(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Server, error) {
	db, err := database.Open(ctx, cfg.DSN(), logger)
	if err != nil {
		return nil, err
	}
	logger.WithFields(log.Fields{"host": cfg.DBHost, "db": cfg.DBName}).Info("connected to database")

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.WithField("addr", opts.Addr).Info("board cache enabled")
	}

	return New(cfg, db, rdb, logger)
}

// New wires repositories, services and handlers onto a gin engine. A nil
// Redis client disables the board cache.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, logger *log.Logger) (*Server, error) {
	boardRepo := repository.NewBoardRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	boardCache := cache.New(boardRepo, rdb, cfg.BoardTTL, logger)
	boardService := service.NewBoardService(boardRepo, boardCache, columnRepo, logger)
	taskService := service.NewTaskService(taskRepo, columnRepo, boardCache, logger)

	boardHandler := handler.NewBoardHandler(boardService)
	columnHandler := handler.NewColumnHandler(boardService, taskService)
	taskHandler := handler.NewTaskHandler(taskService)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	r.GET("/healthz", healthHandler(db, rdb))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/")
	if cfg.JWTSecret != "" {
		issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)
		if err != nil {
			return nil, err
		}
		api.Use(middleware.JWTAuthMiddleware(issuer))
	} else {
		logger.Warn("JWT_SECRET is empty, API authentication disabled")
	}
	{
		// Board routes
		api.POST("/boards", boardHandler.Create)
		api.GET("/boards", boardHandler.GetAll)
		api.GET("/boards/:id", boardHandler.GetByID)
		api.GET("/boards/:id/columns", columnHandler.GetAll)

		// Column routes
		api.GET("/columns/:id/tasks", columnHandler.GetTasks)

		// Task routes
		api.POST("/tasks", taskHandler.Create)
		api.GET("/tasks/:id", taskHandler.GetByID)
		api.POST("/tasks/:id/move", taskHandler.MoveTask)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Redis:  rdb,
		Config: cfg,
		logger: logger,
	}, nil
}

func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.Ping(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "redis unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to SHUTDOWN_TIMEOUT and closes the connections.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.Config.ServerPort).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTTL)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.Close()
	s.logger.Info("server exited properly")
	return nil
}

// Close releases the database and Redis connections.
func (s *Server) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.logger.WithError(err).Warn("failed to close redis client")
		}
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.WithError(err).Warn("failed to close database")
		}
	}
}
