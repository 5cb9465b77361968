package chat

import (
	"time"

	"github.com/perchchat/backend/internal/models"
)

// continuationWindow is the maximum gap between two messages by the
// same author for the second to render as part of the same burst.
const continuationWindow = 2 * time.Minute

// BlockType tags entries in an assembled feed.
type BlockType string

const (
	BlockTypeDate    BlockType = "date"
	BlockTypeMessage BlockType = "message"
)

// FeedMessage is a message annotated with its presentation flags.
type FeedMessage struct {
	models.Message
	IsContinuation bool `json:"is_continuation"`
}

// FeedBlock is one entry of an assembled feed: either a date separator
// or a message.
type FeedBlock struct {
	Type    BlockType    `json:"block_type"`
	Date    string       `json:"date,omitempty"`
	Message *FeedMessage `json:"message,omitempty"`
}

// AssembleFeed converts a creation-ascending message sequence into a
// flat block sequence: a date separator precedes the first message and
// every message whose calendar date (in loc) differs from its
// predecessor's, and each message carries a continuation flag: true
// when the previous message has the same owner and arrived less than
// two minutes earlier. Pure and deterministic given the input order.
func AssembleFeed(messages []models.Message, loc *time.Location) []FeedBlock {
	if loc == nil {
		loc = time.UTC
	}

	blocks := make([]FeedBlock, 0, len(messages)+1)
	var prev *models.Message

	for i := range messages {
		msg := &messages[i]

		if prev == nil || !sameCalendarDay(msg.CreatedAt, prev.CreatedAt, loc) {
			blocks = append(blocks, FeedBlock{
				Type: BlockTypeDate,
				Date: msg.CreatedAt.In(loc).Format("2006-01-02"),
			})
		}

		isContinuation := prev != nil &&
			prev.OwnerID == msg.OwnerID &&
			msg.CreatedAt.Sub(prev.CreatedAt) < continuationWindow

		blocks = append(blocks, FeedBlock{
			Type: BlockTypeMessage,
			Message: &FeedMessage{
				Message:        *msg,
				IsContinuation: isContinuation,
			},
		})

		prev = msg
	}

	return blocks
}

func sameCalendarDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
