package model

import "github.com/google/uuid"

// AdminUser is a presence-only marker: a row grants privileged access to UserID.
type AdminUser struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName keeps the historical table name.
func (AdminUser) TableName() string { return "admin_users" }
