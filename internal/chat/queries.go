package chat

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/perchchat/backend/internal/errors"
	"github.com/perchchat/backend/internal/models"
	"gorm.io/gorm"
)

// GetChannelMessages returns every message in a channel in creation
// order, ties broken by id for a stable feed. No access check is
// performed here; callers go through CheckAccess first.
func (s *Service) GetChannelMessages(ctx context.Context, channelID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetSavedMessages returns the messages userID has bookmarked,
// restricted to channels the user can actually read: Open and Public
// channels qualify regardless of membership (left join, so a channel with
// no member rows at all still passes), Private channels only through an
// explicit membership row. Creation-ascending, deduplicated.
func (s *Service) GetSavedMessages(ctx context.Context, userID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Distinct("messages.*").
		Joins("JOIN message_likes ON message_likes.message_id = messages.id AND message_likes.user_id = ?", userID).
		Joins("LEFT JOIN channels ON channels.id = messages.channel_id").
		Joins("LEFT JOIN channel_members ON channel_members.channel_id = channels.id AND channel_members.user_id = ?", userID).
		Where("channels.type IN ? OR channel_members.user_id IS NOT NULL",
			[]string{models.ChannelTypeOpen, models.ChannelTypePublic}).
		Order("messages.created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// TimelineEntry is the flattened row backing a timeline card: the
// message, its channel, and the author's profile.
type TimelineEntry struct {
	MessageID       string    `json:"message_id"`
	OwnerID         string    `json:"owner_id"`
	Text            string    `json:"text"`
	FileURL         string    `json:"file_url"`
	Creation        time.Time `json:"creation"`
	ChannelID       string    `json:"channel_id"`
	ChannelName     string    `json:"channel_name"`
	ChannelType     string    `json:"channel_type"`
	IsDirectMessage bool      `json:"is_direct_message"`
	IsSelfMessage   bool      `json:"is_self_message"`
	FullName        string    `json:"full_name"`
	PeerUser        string    `json:"peer_user,omitempty"`
}

// TimelineCard is a message surfaced as an activity-feed card on an
// external record linked via the message's link fields.
type TimelineCard struct {
	Icon         string        `json:"icon"`
	IsCard       bool          `json:"is_card"`
	Creation     time.Time     `json:"creation"`
	Template     string        `json:"template"`
	TemplateData TimelineEntry `json:"template_data"`
}

// GetTimelineEntries returns share cards for every message linked to
// the given external record, restricted to non-Private channels or
// channels the requester belongs to. For direct-message channels the
// counterpart's display name is attached.
func (s *Service) GetTimelineEntries(ctx context.Context, entityType, entityID, requesterID string) ([]TimelineCard, error) {
	var entries []TimelineEntry
	err := s.db.WithContext(ctx).
		Table("messages").
		Select(`messages.id AS message_id, messages.owner_id, messages.text, messages.file_url,
			messages.created_at AS creation,
			channels.id AS channel_id, channels.name AS channel_name, channels.type AS channel_type,
			channels.is_direct_message, channels.is_self_message,
			users.full_name`).
		Joins("JOIN channels ON channels.id = messages.channel_id").
		Joins("JOIN users ON users.id = messages.owner_id").
		Joins("LEFT JOIN channel_members ON channel_members.channel_id = channels.id AND channel_members.user_id = ?", requesterID).
		Where("channels.type <> ? OR channel_members.user_id IS NOT NULL", models.ChannelTypePrivate).
		Where("messages.link_entity_type = ? AND messages.link_entity_id = ?", entityType, entityID).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	cards := make([]TimelineCard, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDirectMessage {
			peerID, err := s.PeerUserID(ctx, entry.ChannelID, entry.IsSelfMessage, requesterID)
			if err != nil {
				return nil, err
			}
			if peerID != "" {
				var peer models.User
				if err := s.db.WithContext(ctx).First(&peer, "id = ?", peerID).Error; err == nil {
					entry.PeerUser = peer.DisplayName()
				}
			}
		}
		cards = append(cards, TimelineCard{
			Icon:         "share",
			IsCard:       true,
			Creation:     entry.Creation,
			Template:     "send_message",
			TemplateData: entry,
		})
	}
	return cards, nil
}

// SendMessage inserts a text message after stripping empty rich-text
// list items. Empty (post-cleanup) text is rejected.
func (s *Service) SendMessage(ctx context.Context, channelID, ownerID, text string, isReply bool, linkedMessageID *string) (*models.Message, error) {
	clean := strings.TrimSpace(strings.ReplaceAll(text, "<li><br></li>", ""))
	if clean == "" {
		return nil, errors.ValidationError("text", "message text is empty")
	}

	message := models.Message{
		ChannelID: channelID,
		OwnerID:   ownerID,
		Type:      models.MessageTypeText,
		Text:      clean,
	}
	if isReply && linkedMessageID != nil {
		message.IsReply = true
		message.LinkedMessageID = linkedMessageID
	}

	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// ToggleSave adds or removes userID's bookmark on a message and returns
// the message's full bookmark set afterwards (for the realtime payload).
func (s *Service) ToggleSave(ctx context.Context, messageID, userID string, add bool) ([]string, error) {
	var message models.Message
	if err := s.db.WithContext(ctx).First(&message, "id = ?", messageID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("message")
		}
		return nil, err
	}

	if add {
		like := models.MessageLike{MessageID: messageID, UserID: userID}
		if err := s.db.WithContext(ctx).
			Where("message_id = ? AND user_id = ?", messageID, userID).
			FirstOrCreate(&like).Error; err != nil {
			return nil, err
		}
	} else {
		if err := s.db.WithContext(ctx).
			Where("message_id = ? AND user_id = ?", messageID, userID).
			Delete(&models.MessageLike{}).Error; err != nil {
			return nil, err
		}
	}

	var likedBy []string
	err := s.db.WithContext(ctx).Model(&models.MessageLike{}).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Pluck("user_id", &likedBy).Error
	if err != nil {
		return nil, err
	}
	return likedBy, nil
}
