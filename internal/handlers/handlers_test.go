package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/perchchat/backend/internal/chat"
	"github.com/perchchat/backend/internal/config"
	"github.com/perchchat/backend/internal/logger"
	"github.com/perchchat/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ChatHandlerTestSuite exercises the messaging HTTP surface against an
// in-memory database.
type ChatHandlerTestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	handlers *Handlers

	alice *models.User
	bob   *models.User
}

func (suite *ChatHandlerTestSuite) SetupTest() {
	logger.Log = zap.NewNop()
	logger.SugaredLog = logger.Log.Sugar()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(suite.T(), err)

	// Create tables manually with SQLite-compatible syntax
	// (GORM AutoMigrate tries to use PostgreSQL-specific features like gen_random_uuid)
	for _, ddl := range []string{
		`CREATE TABLE users (
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
		)`,
		`CREATE TABLE channels (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'Public',
			description TEXT,
			is_direct_message INTEGER DEFAULT 0,
			is_self_message INTEGER DEFAULT 0,
			is_archived INTEGER DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE channel_members (
			id TEXT PRIMARY KEY,
			channel_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			last_visit DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (channel_id, user_id)
		)`,
		`CREATE TABLE messages (
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
		)`,
		`CREATE TABLE message_likes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			created_at DATETIME,
			UNIQUE (message_id, user_id)
		)`,
		`CREATE TABLE attachments (
			id TEXT PRIMARY KEY,
			message_id TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_type TEXT,
			file_size INTEGER DEFAULT 0,
			file_url TEXT,
			created_at DATETIME
		)`,
	} {
		require.NoError(suite.T(), db.Exec(ddl).Error)
	}

	suite.db = db

	cfg := &config.Config{
		LastVisitFloor:   time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		RecentFilesLimit: 10,
	}
	suite.handlers = NewHandlers(chat.NewService(db, nil, cfg))

	suite.alice = suite.createUser("alice")
	suite.bob = suite.createUser("bob")

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.setupRoutes()
}

func (suite *ChatHandlerTestSuite) setupRoutes() {
	api := suite.router.Group("/api/v1")

	// Mock auth middleware that loads the user named by the X-User-ID header
	authMiddleware := func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		var user models.User
		if err := suite.db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			c.Abort()
			return
		}
		c.Set("user_id", user.ID)
		c.Set("user", &user)
		c.Next()
	}

	channels := api.Group("/channels")
	channels.Use(authMiddleware)
	channels.GET("/unread", suite.handlers.GetUnreadCounts)
	channels.GET("/:id/messages", suite.handlers.GetChannelFeed)
	channels.POST("/:id/messages", suite.handlers.SendMessage)
	channels.POST("/:id/visit", suite.handlers.TrackVisit)
	channels.GET("/:id/files", suite.handlers.ListChannelFiles)
	channels.GET("/:id/files/count", suite.handlers.CountChannelFiles)
	channels.GET("/:id/files/recent", suite.handlers.GetRecentFiles)

	messages := api.Group("/messages")
	messages.Use(authMiddleware)
	messages.GET("/saved", suite.handlers.GetSavedMessages)
	messages.POST("/:id/save", suite.handlers.SaveMessage)

	api.GET("/timeline/:entityType/:entityID", authMiddleware, suite.handlers.GetTimeline)
}

func (suite *ChatHandlerTestSuite) createUser(username string) *models.User {
	user := &models.User{
		ID:       uuid.New().String(),
		Email:    username + "@test.com",
		Username: username,
		FullName: username + " Test",
	}
	require.NoError(suite.T(), suite.db.Create(user).Error)
	return user
}

func (suite *ChatHandlerTestSuite) createChannel(name, channelType string) *models.Channel {
	channel := &models.Channel{
		ID:   uuid.New().String(),
		Name: name,
		Type: channelType,
	}
	require.NoError(suite.T(), suite.db.Create(channel).Error)
	return channel
}

func (suite *ChatHandlerTestSuite) addMember(channelID, userID string) {
	require.NoError(suite.T(), suite.db.Create(&models.ChannelMember{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		UserID:    userID,
	}).Error)
}

func (suite *ChatHandlerTestSuite) createMessage(channelID, ownerID, text string, at time.Time) *models.Message {
	message := &models.Message{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		OwnerID:   ownerID,
		Type:      models.MessageTypeText,
		Text:      text,
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(suite.T(), suite.db.Create(message).Error)
	return message
}

func (suite *ChatHandlerTestSuite) request(method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ChatHandlerTestSuite) TestGetChannelFeed() {
	channel := suite.createChannel("general", models.ChannelTypeOpen)
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	suite.createMessage(channel.ID, suite.bob.ID, "hello", base)
	suite.createMessage(channel.ID, suite.bob.ID, "again", base.Add(30*time.Second))

	w := suite.request("GET", "/api/v1/channels/"+channel.ID+"/messages", suite.alice.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Blocks []struct {
			Type    string `json:"block_type"`
			Date    string `json:"date"`
			Message *struct {
				Text           string `json:"text"`
				IsContinuation bool   `json:"is_continuation"`
			} `json:"message"`
		} `json:"blocks"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(suite.T(), resp.Blocks, 3)
	assert.Equal(suite.T(), "date", resp.Blocks[0].Type)
	assert.Equal(suite.T(), "2026-02-01", resp.Blocks[0].Date)
	assert.False(suite.T(), resp.Blocks[1].Message.IsContinuation)
	assert.True(suite.T(), resp.Blocks[2].Message.IsContinuation)

	// Visiting an Open channel auto-joined the viewer
	var member models.ChannelMember
	require.NoError(suite.T(), suite.db.
		First(&member, "channel_id = ? AND user_id = ?", channel.ID, suite.alice.ID).Error)
	assert.NotNil(suite.T(), member.LastVisit)
}

func (suite *ChatHandlerTestSuite) TestGetChannelFeedPrivateForbidden() {
	channel := suite.createChannel("secret", models.ChannelTypePrivate)
	suite.addMember(channel.ID, suite.bob.ID)

	w := suite.request("GET", "/api/v1/channels/"+channel.ID+"/messages", suite.alice.ID, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *ChatHandlerTestSuite) TestGetChannelFeedBadTimezone() {
	channel := suite.createChannel("general", models.ChannelTypeOpen)

	w := suite.request("GET", "/api/v1/channels/"+channel.ID+"/messages?timezone=Mars%2FOlympus", suite.alice.ID, nil)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *ChatHandlerTestSuite) TestSendMessage() {
	channel := suite.createChannel("general", models.ChannelTypeOpen)

	w := suite.request("POST", "/api/v1/channels/"+channel.ID+"/messages", suite.alice.ID,
		map[string]interface{}{"text": "hi there<li><br></li>"})
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	var resp struct {
		Message struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"message"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "hi there", resp.Message.Text)
	assert.NotEmpty(suite.T(), resp.Message.ID)
}

func (suite *ChatHandlerTestSuite) TestSendMessageEmptyRejected() {
	channel := suite.createChannel("general", models.ChannelTypeOpen)

	w := suite.request("POST", "/api/v1/channels/"+channel.ID+"/messages", suite.alice.ID,
		map[string]interface{}{"text": "<li><br></li>"})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *ChatHandlerTestSuite) TestSaveMessageToggle() {
	channel := suite.createChannel("general", models.ChannelTypeOpen)
	message := suite.createMessage(channel.ID, suite.bob.ID, "bookmark me",
		time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))

	add := true
	w := suite.request("POST", "/api/v1/messages/"+message.ID+"/save", suite.alice.ID,
		map[string]interface{}{"add": add})
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		LikedBy []string `json:"liked_by"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), []string{suite.alice.ID}, resp.LikedBy)

	add = false
	w = suite.request("POST", "/api/v1/messages/"+message.ID+"/save", suite.alice.ID,
		map[string]interface{}{"add": add})
	require.Equal(suite.T(), http.StatusOK, w.Code)
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(suite.T(), resp.LikedBy)
}

func (suite *ChatHandlerTestSuite) TestGetUnreadCounts() {
	channel := suite.createChannel("general", models.ChannelTypePublic)
	suite.addMember(channel.ID, suite.alice.ID)
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	suite.createMessage(channel.ID, suite.bob.ID, "one", base)
	suite.createMessage(channel.ID, suite.bob.ID, "two", base.Add(time.Minute))

	w := suite.request("GET", "/api/v1/channels/unread", suite.alice.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		TotalChannelUnread int `json:"total_unread_count_in_channels"`
		TotalDMUnread      int `json:"total_unread_count_in_dms"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), 2, resp.TotalChannelUnread)
	assert.Equal(suite.T(), 0, resp.TotalDMUnread)
}

func (suite *ChatHandlerTestSuite) TestTrackVisitClearsUnread() {
	channel := suite.createChannel("general", models.ChannelTypeOpen)
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	suite.createMessage(channel.ID, suite.bob.ID, "one", base)

	w := suite.request("POST", "/api/v1/channels/"+channel.ID+"/visit", suite.alice.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request("GET", "/api/v1/channels/unread", suite.alice.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		TotalChannelUnread int `json:"total_unread_count_in_channels"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), 0, resp.TotalChannelUnread)
}

func (suite *ChatHandlerTestSuite) TestFilesEndpointsRequireAccess() {
	channel := suite.createChannel("secret", models.ChannelTypePrivate)
	suite.addMember(channel.ID, suite.bob.ID)

	for _, path := range []string{
		"/api/v1/channels/" + channel.ID + "/files",
		"/api/v1/channels/" + channel.ID + "/files/count",
		"/api/v1/channels/" + channel.ID + "/files/recent",
	} {
		w := suite.request("GET", path, suite.alice.ID, nil)
		assert.Equal(suite.T(), http.StatusForbidden, w.Code, path)
	}
}

func (suite *ChatHandlerTestSuite) TestGetTimeline() {
	channel := suite.createChannel("deals", models.ChannelTypePublic)
	message := suite.createMessage(channel.ID, suite.bob.ID, "about the deal",
		time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(suite.T(), suite.db.Model(&models.Message{}).
		Where("id = ?", message.ID).
		Updates(map[string]interface{}{"link_entity_type": "Deal", "link_entity_id": "D-42"}).Error)

	w := suite.request("GET", "/api/v1/timeline/Deal/D-42", suite.alice.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Timeline []struct {
			Icon     string `json:"icon"`
			IsCard   bool   `json:"is_card"`
			Template string `json:"template"`
		} `json:"timeline"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(suite.T(), resp.Timeline, 1)
	assert.Equal(suite.T(), "share", resp.Timeline[0].Icon)
	assert.True(suite.T(), resp.Timeline[0].IsCard)
	assert.Equal(suite.T(), "send_message", resp.Timeline[0].Template)
}

func (suite *ChatHandlerTestSuite) TestUnauthenticatedRequestsRejected() {
	channel := suite.createChannel("general", models.ChannelTypeOpen)

	w := suite.request("GET", "/api/v1/channels/"+channel.ID+"/messages", "", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func TestChatHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ChatHandlerTestSuite))
}
