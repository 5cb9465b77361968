package chat

import (
	"context"

	"github.com/perchchat/backend/internal/models"
)

// ChannelMemberIDs returns the user IDs of a channel's members in join
// order.
func (s *Service) ChannelMemberIDs(ctx context.Context, channelID string) ([]string, error) {
	var memberIDs []string
	err := s.db.WithContext(ctx).Model(&models.ChannelMember{}).
		Where("channel_id = ?", channelID).
		Order("created_at ASC").
		Pluck("user_id", &memberIDs).Error
	if err != nil {
		return nil, err
	}
	return memberIDs, nil
}

// PeerUserID resolves the counterpart of a direct-message channel from
// the requester's perspective. Self-message channels resolve to the
// requester; otherwise the first member that is not the requester wins.
// Returns "" when the channel has no resolvable peer (e.g. the peer
// account was removed).
func (s *Service) PeerUserID(ctx context.Context, channelID string, isSelfMessage bool, userID string) (string, error) {
	if isSelfMessage {
		return userID, nil
	}

	memberIDs, err := s.ChannelMemberIDs(ctx, channelID)
	if err != nil {
		return "", err
	}

	for _, id := range memberIDs {
		if id != userID {
			return id, nil
		}
	}
	return "", nil
}
