package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockbook-api/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses of client writes, keyed
// by user and Idempotency-Key.
type IdempotencyRepository interface {
	Find(ctx context.Context, userID uuid.UUID, key string) (*entity.IdempotencyKey, error)
	// Save keeps the first response stored under a key; a concurrent duplicate
	// is ignored.
	Save(ctx context.Context, ikey *entity.IdempotencyKey) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
