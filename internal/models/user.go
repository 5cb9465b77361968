package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a workspace member account.
// Authentication (sessions, OAuth, passwords) lives outside this service;
// we only need the profile fields surfaced in feeds and timeline cards.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	FullName string `gorm:"not null" json:"full_name"`

	AvatarURL string `json:"avatar_url"`

	// IsAdmin marks the distinguished administrative principal that may read
	// any channel regardless of membership.
	IsAdmin bool `gorm:"default:false" json:"is_admin"`

	// Activity tracking
	LastActiveAt *time.Time `json:"last_active_at"`
	IsOnline     bool       `gorm:"default:false" json:"is_online"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// DisplayName returns the name to render in feeds, falling back to the
// username when the profile has no full name set.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
