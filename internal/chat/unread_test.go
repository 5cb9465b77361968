package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/perchchat/backend/internal/models"
)

func unreadFor(summary *UnreadSummary, channelID string) (ChannelUnread, bool) {
	for _, row := range summary.Channels {
		if row.ChannelID == channelID {
			return row, true
		}
	}
	return ChannelUnread{}, false
}

func TestUnreadSummaryCountsAfterWatermark(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	channel := createTestChannel(t, db, "general", models.ChannelTypePublic)

	visit := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	addMember(t, db, channel.ID, alice.ID, &visit)

	createTestMessage(t, db, channel.ID, bob.ID, "before", visit.Add(-time.Hour))
	createTestMessage(t, db, channel.ID, bob.ID, "after one", visit.Add(time.Minute))
	createTestMessage(t, db, channel.ID, bob.ID, "after two", visit.Add(2*time.Minute))

	summary, err := svc.GetUnreadSummary(ctx, alice.ID)
	require.NoError(t, err)

	row, ok := unreadFor(summary, channel.ID)
	require.True(t, ok)
	assert.Equal(t, 2, row.UnreadCount)
	assert.Equal(t, 2, summary.TotalChannelUnread)
	assert.Equal(t, 0, summary.TotalDMUnread)
}

func TestUnreadSummaryNeverVisitedCountsEverything(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	channel := createTestChannel(t, db, "general", models.ChannelTypePublic)
	addMember(t, db, channel.ID, alice.ID, nil)

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		createTestMessage(t, db, channel.ID, bob.ID, "m", base.Add(time.Duration(i)*time.Minute))
	}

	summary, err := svc.GetUnreadSummary(ctx, alice.ID)
	require.NoError(t, err)

	row, ok := unreadFor(summary, channel.ID)
	require.True(t, ok)
	assert.Equal(t, 3, row.UnreadCount, "nil last_visit falls back to the floor")
}

func TestUnreadSummaryIncludesOpenChannelsWithoutMembership(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	open := createTestChannel(t, db, "town-square", models.ChannelTypeOpen)
	public := createTestChannel(t, db, "announcements", models.ChannelTypePublic)

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	createTestMessage(t, db, open.ID, bob.ID, "open msg", base)
	createTestMessage(t, db, public.ID, bob.ID, "public msg", base)

	summary, err := svc.GetUnreadSummary(ctx, alice.ID)
	require.NoError(t, err)

	_, hasOpen := unreadFor(summary, open.ID)
	assert.True(t, hasOpen, "Open channels appear without a membership row")

	_, hasPublic := unreadFor(summary, public.ID)
	assert.False(t, hasPublic, "Public channels require membership to appear")
}

func TestUnreadSummaryExcludesArchivedChannels(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	channel := createTestChannel(t, db, "old-project", models.ChannelTypePublic)
	addMember(t, db, channel.ID, alice.ID, nil)
	createTestMessage(t, db, channel.ID, bob.ID, "m", time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))

	require.NoError(t, db.Model(&models.Channel{}).
		Where("id = ?", channel.ID).
		Update("is_archived", true).Error)

	summary, err := svc.GetUnreadSummary(ctx, alice.ID)
	require.NoError(t, err)

	_, ok := unreadFor(summary, channel.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, summary.TotalChannelUnread)
}

func TestUnreadSummaryBucketsDMsSeparately(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	channel := createTestChannel(t, db, "general", models.ChannelTypePublic)
	addMember(t, db, channel.ID, alice.ID, nil)
	dm := createTestDM(t, db, "alice-bob", false)
	addMember(t, db, dm.ID, alice.ID, nil)
	addMember(t, db, dm.ID, bob.ID, nil)

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	createTestMessage(t, db, channel.ID, bob.ID, "channel msg", base)
	createTestMessage(t, db, dm.ID, bob.ID, "dm one", base)
	createTestMessage(t, db, dm.ID, bob.ID, "dm two", base.Add(time.Minute))

	summary, err := svc.GetUnreadSummary(ctx, alice.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalChannelUnread)
	assert.Equal(t, 2, summary.TotalDMUnread)

	row, ok := unreadFor(summary, dm.ID)
	require.True(t, ok)
	assert.True(t, row.IsDirectMessage)
}

func TestUnreadSummaryEmptyChannelReportsZero(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	channel := createTestChannel(t, db, "quiet", models.ChannelTypePublic)
	addMember(t, db, channel.ID, alice.ID, nil)

	summary, err := svc.GetUnreadSummary(ctx, alice.ID)
	require.NoError(t, err)

	row, ok := unreadFor(summary, channel.ID)
	require.True(t, ok, "channels with no messages still appear")
	assert.Equal(t, 0, row.UnreadCount)
}
