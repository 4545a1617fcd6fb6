package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshSessionModel mirrors the 'refresh_sessions' table. The unique
// user_id constraint enforces the one-session-per-user invariant at the
// storage level.
type RefreshSessionModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TokenHash string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RefreshSessionModel) TableName() string {
	return "refresh_sessions"
}

// ActionTokenModel mirrors the 'action_tokens' table. The composite unique
// index keeps at most one outstanding token per user and purpose.
type ActionTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_action_tokens_user_purpose;not null"`
	Purpose   string    `gorm:"type:varchar(32);uniqueIndex:idx_action_tokens_user_purpose;not null"`
	TokenHash string    `gorm:"type:varchar(64);index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (ActionTokenModel) TableName() string {
	return "action_tokens"
}
