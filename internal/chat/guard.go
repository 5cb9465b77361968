package chat

import (
	"context"
	stderrors "errors"

	"github.com/perchchat/backend/internal/cache"
	"github.com/perchchat/backend/internal/errors"
	"github.com/perchchat/backend/internal/logger"
	"github.com/perchchat/backend/internal/models"
	"gorm.io/gorm"
)

// channelMeta returns the channel's access-relevant metadata, consulting
// the redis cache first and falling back to the database. Cache failures
// degrade to a direct read; they never fail the request.
func (s *Service) channelMeta(ctx context.Context, channelID string) (*cache.ChannelMeta, error) {
	if s.channels != nil {
		meta, err := s.channels.GetChannelMeta(ctx, channelID)
		if err != nil {
			logger.WarnWithFields("channel meta cache read failed", err)
		} else if meta != nil {
			return meta, nil
		}
	}

	var channel models.Channel
	if err := s.db.WithContext(ctx).First(&channel, "id = ?", channelID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("channel")
		}
		return nil, err
	}

	meta := &cache.ChannelMeta{
		Type:            channel.Type,
		IsArchived:      channel.IsArchived,
		IsDirectMessage: channel.IsDirectMessage,
		IsSelfMessage:   channel.IsSelfMessage,
	}
	if s.channels != nil {
		if err := s.channels.SetChannelMeta(ctx, channelID, meta); err != nil {
			logger.WarnWithFields("channel meta cache write failed", err)
		}
	}
	return meta, nil
}

// CheckAccess decides whether user may read channelID's messages.
// Private channels require an existing membership row or the
// administrative principal; every other channel type passes at this
// layer. Side-effect free and safe to call repeatedly.
func (s *Service) CheckAccess(ctx context.Context, channelID string, user *models.User) error {
	meta, err := s.channelMeta(ctx, channelID)
	if err != nil {
		return err
	}

	if meta.Type != models.ChannelTypePrivate {
		return nil
	}
	if user.IsAdmin {
		return nil
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&models.ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, user.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.Forbidden("you don't have permission to view this channel")
	}
	return nil
}
