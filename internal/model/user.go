package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity that can sign in with email and password.
// Privilege is not stored here; see AdminUser.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
}
