package chat

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/perchchat/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testFloor mirrors the default unread watermark for never-visited
// members.
var testFloor = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	// Create tables manually with SQLite-compatible syntax
	// (GORM AutoMigrate tries to use PostgreSQL-specific features like gen_random_uuid)
	err = db.Exec(`
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			username TEXT NOT NULL,
			full_name TEXT NOT NULL,
			avatar_url TEXT,
			is_admin INTEGER DEFAULT 0,
			last_active_at DATETIME,
			is_online INTEGER DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE channels (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'Public',
			description TEXT,
			is_direct_message INTEGER DEFAULT 0,
			is_self_message INTEGER DEFAULT 0,
			is_archived INTEGER DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE channel_members (
			id TEXT PRIMARY KEY,
			channel_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			last_visit DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (channel_id, user_id)
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE messages (
			id TEXT PRIMARY KEY,
			channel_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'Text',
			text TEXT,
			content TEXT,
			file_url TEXT,
			file_thumbnail TEXT,
			thumbnail_width INTEGER DEFAULT 0,
			thumbnail_height INTEGER DEFAULT 0,
			is_reply INTEGER DEFAULT 0,
			linked_message_id TEXT,
			replied_message_details TEXT,
			link_entity_type TEXT,
			link_entity_id TEXT,
			reactions TEXT,
			is_edited INTEGER DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE message_likes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			created_at DATETIME,
			UNIQUE (message_id, user_id)
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE attachments (
			id TEXT PRIMARY KEY,
			message_id TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_type TEXT,
			file_size INTEGER DEFAULT 0,
			file_url TEXT,
			created_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	return db
}

// newTestService builds a Service on the test database with no redis
// and a controllable clock.
func newTestService(db *gorm.DB) *Service {
	return &Service{
		db:               db,
		floor:            testFloor,
		recentFilesLimit: 10,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{
		ID:       uuid.New().String(),
		Email:    username + "@test.com",
		Username: username,
		FullName: username + " Test",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestChannel(t *testing.T, db *gorm.DB, name, channelType string) *models.Channel {
	channel := &models.Channel{
		ID:   uuid.New().String(),
		Name: name,
		Type: channelType,
	}
	require.NoError(t, db.Create(channel).Error)
	return channel
}

func createTestDM(t *testing.T, db *gorm.DB, name string, selfMessage bool) *models.Channel {
	channel := &models.Channel{
		ID:              uuid.New().String(),
		Name:            name,
		Type:            models.ChannelTypePrivate,
		IsDirectMessage: true,
		IsSelfMessage:   selfMessage,
	}
	require.NoError(t, db.Create(channel).Error)
	return channel
}

func addMember(t *testing.T, db *gorm.DB, channelID, userID string, lastVisit *time.Time) *models.ChannelMember {
	member := &models.ChannelMember{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		UserID:    userID,
		LastVisit: lastVisit,
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

func createTestMessage(t *testing.T, db *gorm.DB, channelID, ownerID, text string, createdAt time.Time) *models.Message {
	message := &models.Message{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		OwnerID:   ownerID,
		Type:      models.MessageTypeText,
		Text:      text,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(message).Error)
	return message
}

func createFileMessage(t *testing.T, db *gorm.DB, channelID, ownerID, msgType, fileName, fileType string, createdAt time.Time) *models.Message {
	message := &models.Message{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		OwnerID:   ownerID,
		Type:      msgType,
		FileURL:   "https://files.test/" + fileName,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(message).Error)

	attachment := &models.Attachment{
		ID:        uuid.New().String(),
		MessageID: message.ID,
		FileName:  fileName,
		FileType:  fileType,
		FileSize:  1024,
		FileURL:   message.FileURL,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(attachment).Error)
	return message
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	events []recordedEvent
}

type recordedEvent struct {
	UserID  string
	Event   string
	Payload interface{}
}

func (r *recordingPublisher) PublishToUser(userID string, event string, payload interface{}) {
	r.events = append(r.events, recordedEvent{UserID: userID, Event: event, Payload: payload})
}
