package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/model"
)

var errStaleSnapshot = errors.New("board changed while loading")

type backend interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
}

// BoardCache serves board reads from Redis and falls back to the backing
// store on a miss. A nil client turns it into a passthrough.
type BoardCache struct {
	base   backend
	redis  *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func New(base backend, client *redis.Client, ttl time.Duration, logger *log.Logger) *BoardCache {
	if base == nil {
		panic("cache.New: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &BoardCache{base: base, redis: client, ttl: ttl, logger: logger}
}

func (c *BoardCache) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	if board, ok := c.load(ctx, id); ok {
		return board, nil
	}

	gen, cacheable := c.generation(ctx, id)
	board, err := c.base.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheable {
		c.store(ctx, board, gen)
	}
	return board, nil
}

// Invalidate bumps the board's generation and drops the cached board. A read
// that started before the bump will not write its snapshot back. Errors are
// logged, never returned: the write that triggered it has already committed.
func (c *BoardCache) Invalidate(ctx context.Context, boardID uuid.UUID) {
	if c.redis == nil {
		return
	}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(boardID))
		pipe.Del(ctx, boardKey(boardID))
		return nil
	})
	if err != nil {
		c.logger.WithError(err).WithField("board_id", boardID).Warn("failed to evict cached board")
	}
}

func (c *BoardCache) load(ctx context.Context, id uuid.UUID) (*model.Board, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, boardKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("board_id", id).Debug("board cache unavailable")
		}
		return nil, false
	}
	var board model.Board
	if err := sonic.Unmarshal(data, &board); err != nil {
		_ = c.redis.Del(ctx, boardKey(id)).Err()
		return nil, false
	}
	return &board, true
}

// generation returns the board's current generation. An unset key reads as
// the empty string. The second result is false when the snapshot about to be
// loaded must not be cached.
func (c *BoardCache) generation(ctx context.Context, id uuid.UUID) (string, bool) {
	if c.redis == nil || c.ttl == 0 {
		return "", false
	}
	gen, err := c.redis.Get(ctx, generationKey(id)).Result()
	if err == redis.Nil {
		return "", true
	}
	if err != nil {
		return "", false
	}
	return gen, true
}

// store writes the snapshot only if no invalidation happened since gen was read.
func (c *BoardCache) store(ctx context.Context, board *model.Board, gen string) {
	data, err := sonic.Marshal(board)
	if err != nil {
		return
	}

	key := generationKey(board.ID)
	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != gen {
			return errStaleSnapshot
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, boardKey(board.ID), data, c.ttl)
			return nil
		})
		return err
	}, key)
	if err != nil && !errors.Is(err, errStaleSnapshot) && !errors.Is(err, redis.TxFailedErr) {
		c.logger.WithError(err).WithField("board_id", board.ID).Debug("failed to cache board")
	}
}

func boardKey(id uuid.UUID) string {
	return "board:" + id.String()
}

func generationKey(id uuid.UUID) string {
	return "board:" + id.String() + ":gen"
}
