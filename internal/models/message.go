package models

import (
	"time"
)

// Message types.
const (
	MessageTypeText  = "Text"
	MessageTypeImage = "Image"
	MessageTypeFile  = "File"
)

// ReactionSummary maps an emoji to the user IDs who reacted with it.
// Stored as jsonb; reaction toggling is handled by a separate service.
type ReactionSummary map[string][]string

// Message is a single chat message in a channel. Identity is immutable;
// edits flip IsEdited and update the text in place. CreatedAt is the
// canonical feed order key (the write path guarantees it is strictly
// increasing per channel).
type Message struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ChannelID string `gorm:"not null;index:idx_messages_channel_created,priority:1" json:"channel_id"`
	OwnerID   string `gorm:"not null;index" json:"owner_id"`

	Channel Channel `gorm:"foreignKey:ChannelID" json:"-"`
	Owner   User    `gorm:"foreignKey:OwnerID" json:"-"`

	Type string `gorm:"not null;default:'Text'" json:"message_type"`
	Text string `gorm:"type:text" json:"text"`

	// Content is the plain-text rendering of Text, kept for previews.
	Content string `gorm:"type:text" json:"content"`

	// File/image payload
	FileURL         string `json:"file_url"`
	FileThumbnail   string `json:"file_thumbnail"`
	ThumbnailWidth  int    `json:"thumbnail_width"`
	ThumbnailHeight int    `json:"thumbnail_height"`

	// Reply linkage
	IsReply               bool    `gorm:"default:false" json:"is_reply"`
	LinkedMessageID       *string `gorm:"type:uuid" json:"linked_message_id"`
	RepliedMessageDetails string  `gorm:"type:text" json:"replied_message_details,omitempty"`

	// Cross-entity link: surfaces this message as a timeline card on an
	// unrelated record (e.g. a deal or a ticket in the host system).
	LinkEntityType string `gorm:"index:idx_messages_link,priority:1" json:"link_entity_type"`
	LinkEntityID   string `gorm:"index:idx_messages_link,priority:2" json:"link_entity_id"`

	Reactions ReactionSummary `gorm:"type:jsonb;serializer:json" json:"message_reactions"`

	IsEdited bool `gorm:"default:false" json:"is_edited"`

	Likes       []MessageLike `gorm:"foreignKey:MessageID" json:"-"`
	Attachments []Attachment  `gorm:"foreignKey:MessageID" json:"-"`

	CreatedAt time.Time `gorm:"index:idx_messages_channel_created,priority:2" json:"creation"`
	UpdatedAt time.Time `json:"modified"`
}

// MessageLike records that a user bookmarked (saved) a message. The
// unique (message, user) index makes bookmark membership an exact
// indexed lookup rather than a substring scan over a serialized set.
type MessageLike struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	MessageID string `gorm:"not null;uniqueIndex:idx_message_likes_message_user" json:"message_id"`
	UserID    string `gorm:"not null;uniqueIndex:idx_message_likes_message_user;index" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

// Attachment is a file row attached to a message. The blob itself lives
// in external storage; we keep the name, a type classifier (lowercase
// extension), the size and the serving URL.
type Attachment struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	MessageID string `gorm:"not null;index" json:"message_id"`

	FileName string `gorm:"not null" json:"file_name"`
	FileType string `gorm:"index" json:"file_type"`
	FileSize int64  `json:"file_size"`
	FileURL  string `json:"file_url"`

	CreatedAt time.Time `json:"created_at"`
}
