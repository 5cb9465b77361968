package chat

import (
	"context"

	"github.com/perchchat/backend/internal/models"
)

// ChannelUnread is the per-channel slice of an unread summary.
type ChannelUnread struct {
	ChannelID       string `json:"channel_id"`
	IsDirectMessage bool   `json:"is_direct_message"`
	UnreadCount     int    `json:"unread_count"`
}

// UnreadSummary buckets per-channel unread counts into regular-channel
// and direct-message totals.
type UnreadSummary struct {
	TotalChannelUnread int             `json:"total_unread_count_in_channels"`
	TotalDMUnread      int             `json:"total_unread_count_in_dms"`
	Channels           []ChannelUnread `json:"channels"`
}

// GetUnreadSummary computes unread counts for every channel the user
// can see in their sidebar: Open channels (membership or not) and any
// channel with an explicit membership row, excluding archived ones. A
// message is unread when it was created strictly after the member's
// last visit; members with no visit fall back to the configured floor,
// so a never-visited channel reports its full message count.
//
// One grouped query, not a count per channel: the sidebar badge is
// recomputed on every visit and channel lists get large.
func (s *Service) GetUnreadSummary(ctx context.Context, userID string) (*UnreadSummary, error) {
	var rows []ChannelUnread
	err := s.db.WithContext(ctx).Raw(`
		SELECT channels.id AS channel_id,
		       channels.is_direct_message AS is_direct_message,
		       COUNT(CASE WHEN messages.created_at > COALESCE(channel_members.last_visit, ?) THEN 1 END) AS unread_count
		FROM channels
		LEFT JOIN channel_members
		       ON channel_members.channel_id = channels.id AND channel_members.user_id = ?
		LEFT JOIN messages
		       ON messages.channel_id = channels.id
		WHERE (channels.type = ? OR channel_members.user_id = ?)
		  AND channels.is_archived = ?
		GROUP BY channels.id, channels.is_direct_message`,
		s.floor, userID, models.ChannelTypeOpen, userID, false,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &UnreadSummary{Channels: rows}
	for _, row := range rows {
		if row.IsDirectMessage {
			summary.TotalDMUnread += row.UnreadCount
		} else {
			summary.TotalChannelUnread += row.UnreadCount
		}
	}
	return summary, nil
}
