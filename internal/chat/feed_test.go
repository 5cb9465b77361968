package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/perchchat/backend/internal/models"
)

func feedMsg(owner string, at time.Time) models.Message {
	return models.Message{
		ID:        owner + at.Format("150405"),
		OwnerID:   owner,
		Type:      models.MessageTypeText,
		CreatedAt: at,
	}
}

func TestAssembleFeedEmpty(t *testing.T) {
	blocks := AssembleFeed(nil, time.UTC)
	assert.Empty(t, blocks)
}

func TestAssembleFeedContinuationBursts(t *testing.T) {
	day := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	messages := []models.Message{
		feedMsg("alice", day),                     // 10:00
		feedMsg("alice", day.Add(90*time.Second)), // 10:01:30, same burst
		feedMsg("alice", day.Add(5*time.Minute)),  // 10:05, burst broken
	}

	blocks := AssembleFeed(messages, time.UTC)
	require.Len(t, blocks, 4)

	assert.Equal(t, BlockTypeDate, blocks[0].Type)
	assert.Equal(t, "2026-03-10", blocks[0].Date)

	assert.Equal(t, BlockTypeMessage, blocks[1].Type)
	assert.False(t, blocks[1].Message.IsContinuation)
	assert.True(t, blocks[2].Message.IsContinuation)
	assert.False(t, blocks[3].Message.IsContinuation, "a 3.5 minute gap starts a new burst")
}

func TestAssembleFeedOwnerChangeBreaksBurst(t *testing.T) {
	day := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	messages := []models.Message{
		feedMsg("alice", day),
		feedMsg("bob", day.Add(10*time.Second)),
	}

	blocks := AssembleFeed(messages, time.UTC)
	require.Len(t, blocks, 3)
	assert.False(t, blocks[2].Message.IsContinuation)
}

func TestAssembleFeedExactWindowIsNotContinuation(t *testing.T) {
	day := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	messages := []models.Message{
		feedMsg("alice", day),
		feedMsg("alice", day.Add(2*time.Minute)), // exactly the window
	}

	blocks := AssembleFeed(messages, time.UTC)
	require.Len(t, blocks, 3)
	assert.False(t, blocks[2].Message.IsContinuation, "the window is strict")
}

func TestAssembleFeedDateSeparators(t *testing.T) {
	messages := []models.Message{
		feedMsg("alice", time.Date(2026, 3, 10, 23, 50, 0, 0, time.UTC)),
		feedMsg("alice", time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC)),
	}

	blocks := AssembleFeed(messages, time.UTC)
	require.Len(t, blocks, 4)
	assert.Equal(t, "2026-03-10", blocks[0].Date)
	assert.Equal(t, BlockTypeDate, blocks[2].Type)
	assert.Equal(t, "2026-03-11", blocks[2].Date)

	// A midnight crossing also breaks continuation only via the clock,
	// not the separator: 15 minutes apart means no continuation anyway.
	assert.False(t, blocks[3].Message.IsContinuation)
}

func TestAssembleFeedTimezoneChangesSeparators(t *testing.T) {
	// 23:30 and 00:30 UTC straddle midnight in UTC but fall on the same
	// calendar day in UTC-2.
	messages := []models.Message{
		feedMsg("alice", time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)),
		feedMsg("bob", time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC)),
	}

	utcBlocks := AssembleFeed(messages, time.UTC)
	require.Len(t, utcBlocks, 4)

	westOfUTC := time.FixedZone("UTC-2", -2*60*60)
	westBlocks := AssembleFeed(messages, westOfUTC)
	require.Len(t, westBlocks, 3)
	assert.Equal(t, "2026-03-10", westBlocks[0].Date)
}

func TestAssembleFeedNilLocationDefaultsToUTC(t *testing.T) {
	messages := []models.Message{
		feedMsg("alice", time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)),
	}
	blocks := AssembleFeed(messages, nil)
	require.Len(t, blocks, 2)
	assert.Equal(t, "2026-03-10", blocks[0].Date)
}

func TestAssembleFeedContinuationSkipsDateCheckOrder(t *testing.T) {
	// Continuation is judged against the previous message regardless of
	// an intervening date separator; with a gap under the window across
	// midnight the flag would still be true.
	messages := []models.Message{
		feedMsg("alice", time.Date(2026, 3, 10, 23, 59, 30, 0, time.UTC)),
		feedMsg("alice", time.Date(2026, 3, 11, 0, 0, 30, 0, time.UTC)),
	}

	blocks := AssembleFeed(messages, time.UTC)
	require.Len(t, blocks, 4)
	assert.Equal(t, BlockTypeDate, blocks[2].Type)
	assert.True(t, blocks[3].Message.IsContinuation)
}
