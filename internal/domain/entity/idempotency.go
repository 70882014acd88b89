package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey is the stored response to a client write. RequestHash
// fingerprints the request so a key reused for a different body is refused
// rather than replayed.
type IdempotencyKey struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uuid.UUID `gorm:"size:36;not null;uniqueIndex:idx_idempotency_user_key,priority:1"`
	Key          string    `gorm:"column:idempotency_key;size:255;not null;uniqueIndex:idx_idempotency_user_key,priority:2"`
	Endpoint     string    `gorm:"size:255;not null"`
	RequestHash  string    `gorm:"size:64;not null"`
	ResponseCode int       `gorm:"not null"`
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// Matches reports whether a repeated request may be answered from this key.
func (i *IdempotencyKey) Matches(endpoint, requestHash string, now time.Time) bool {
	return now.Before(i.ExpiresAt) && i.Endpoint == endpoint && i.RequestHash == requestHash
}
