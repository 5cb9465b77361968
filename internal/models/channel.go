package models

import (
	"time"
)

// Channel types. Open channels are joinable by anyone and auto-join on
// first visit; Public channels are readable by anyone but joined
// explicitly; Private channels require membership.
const (
	ChannelTypeOpen    = "Open"
	ChannelTypePublic  = "Public"
	ChannelTypePrivate = "Private"
)

// Channel represents a conversation container: a named channel or a
// direct-message thread between two users (or one, for self-messages).
type Channel struct {
	ID   string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name string `gorm:"not null;index" json:"name"`
	Type string `gorm:"not null;default:'Public'" json:"type"`

	Description string `gorm:"type:text" json:"description"`

	IsDirectMessage bool `gorm:"default:false" json:"is_direct_message"`
	IsSelfMessage   bool `gorm:"default:false" json:"is_self_message"`
	IsArchived      bool `gorm:"default:false" json:"is_archived"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChannelMember links a user to a channel. One row per (channel, user)
// pair; LastVisit is the read watermark: every message created after it
// counts as unread. A nil LastVisit means the user never opened the
// channel, so its whole history is unread.
type ChannelMember struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ChannelID string `gorm:"not null;uniqueIndex:idx_channel_members_channel_user" json:"channel_id"`
	UserID    string `gorm:"not null;uniqueIndex:idx_channel_members_channel_user;index" json:"user_id"`

	Channel Channel `gorm:"foreignKey:ChannelID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"-"`

	LastVisit *time.Time `json:"last_visit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
