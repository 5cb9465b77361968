// Package chat implements the channel messaging core: access checks,
// visit tracking, feed construction, unread aggregation and the
// channel file browser. Handlers stay thin; everything stateful or
// query-shaped lives here.
package chat

import (
	"time"

	"github.com/perchchat/backend/internal/cache"
	"github.com/perchchat/backend/internal/config"
	"gorm.io/gorm"
)

// Realtime event names pushed to users. Delivery is best-effort and
// must never fail the request that produced the event.
const (
	EventUnreadCountUpdated = "unread_channel_count_updated"
	EventMessageSaved       = "message_saved"
)

// EventPublisher delivers a realtime event to a single user's active
// connections. Implementations buffer events until the surrounding
// transaction has committed.
type EventPublisher interface {
	PublishToUser(userID string, event string, payload interface{})
}

// Service holds the dependencies of the messaging core.
type Service struct {
	db       *gorm.DB
	channels *cache.RedisClient

	// floor stands in for last_visit when a member never opened the
	// channel; see config.Config.LastVisitFloor.
	floor time.Time

	recentFilesLimit int

	// now is swapped out in tests
	now func() time.Time
}

// NewService creates the messaging service. redis may be nil, in which
// case channel metadata is read straight from the database.
func NewService(db *gorm.DB, redis *cache.RedisClient, cfg *config.Config) *Service {
	return &Service{
		db:               db,
		channels:         redis,
		floor:            cfg.LastVisitFloor,
		recentFilesLimit: cfg.RecentFilesLimit,
		now:              func() time.Time { return time.Now().UTC() },
	}
}
