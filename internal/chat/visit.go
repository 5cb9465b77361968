package chat

import (
	"context"
	stderrors "errors"

	"github.com/perchchat/backend/internal/models"
	"gorm.io/gorm"
)

// EnsureMembership returns the membership row for (channelID, userID).
// For Open channels a missing row is created with last_visit set to now
// (the auto-join on first visit). For any other channel type a missing
// row stays missing and nil is returned: visiting never implicitly
// joins a Public or Private channel.
func (s *Service) EnsureMembership(ctx context.Context, channelID, userID string) (*models.ChannelMember, error) {
	var member models.ChannelMember
	err := s.db.WithContext(ctx).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		First(&member).Error
	if err == nil {
		return &member, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	meta, err := s.channelMeta(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if meta.Type != models.ChannelTypeOpen {
		return nil, nil
	}

	now := s.now()
	member = models.ChannelMember{
		ChannelID: channelID,
		UserID:    userID,
		LastVisit: &now,
	}
	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		// Concurrent first visits race on the unique (channel, user)
		// index; the loser reads the winner's row.
		var existing models.ChannelMember
		if ferr := s.db.WithContext(ctx).
			Where("channel_id = ? AND user_id = ?", channelID, userID).
			First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &member, nil
}

// RecordVisit bumps the member's read watermark to now. Last writer
// wins; concurrent visits by the same user are benign.
func (s *Service) RecordVisit(ctx context.Context, member *models.ChannelMember) error {
	if member == nil {
		return nil
	}
	now := s.now()
	member.LastVisit = &now
	return s.db.WithContext(ctx).Model(&models.ChannelMember{}).
		Where("id = ?", member.ID).
		Update("last_visit", now).Error
}

// TrackVisit records that userID viewed channelID: the membership row is
// created for Open channels, the read watermark is bumped, and an
// unread-count push is queued for the user. The push is queued even when
// nothing was written so clients always reconcile their badge after a
// channel open. Idempotent within a logical visit.
func (s *Service) TrackVisit(ctx context.Context, channelID, userID string, pub EventPublisher) error {
	member, err := s.EnsureMembership(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if member != nil {
		if err := s.RecordVisit(ctx, member); err != nil {
			return err
		}
	}

	if pub != nil {
		pub.PublishToUser(userID, EventUnreadCountUpdated, map[string]interface{}{
			"channel_id": channelID,
			"play_sound": false,
		})
	}
	return nil
}
