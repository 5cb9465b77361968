package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perchchat/backend/internal/chat"
	"github.com/perchchat/backend/internal/logger"
	"github.com/perchchat/backend/internal/middleware"
	"github.com/perchchat/backend/internal/models"
	"github.com/perchchat/backend/internal/util"
	"github.com/perchchat/backend/internal/websocket"
	"go.uber.org/zap"
)

// GetChannelFeed returns the channel's full message history as render
// blocks (date separators plus continuation-flagged messages) and
// records the visit. The optional "timezone" query parameter sets the
// zone used for the date separators; it defaults to UTC.
func (h *Handlers) GetChannelFeed(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	channelID := c.Param("id")
	ctx := c.Request.Context()

	if err := h.chat.CheckAccess(ctx, channelID, user); err != nil {
		util.RespondError(c, err)
		return
	}

	loc := time.UTC
	if tz := c.Query("timezone"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			util.RespondValidationError(c, "timezone", "unknown timezone")
			return
		}
		loc = parsed
	}

	messages, err := h.chat.GetChannelMessages(ctx, channelID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	started := time.Now()
	blocks := chat.AssembleFeed(messages, loc)
	middleware.RecordFeedAssembly("channel", time.Since(started))

	// The visit is tracked after the read so a failure here still
	// serves the feed; the badge reconciles on the next visit.
	pub := h.publisher()
	if err := h.chat.TrackVisit(ctx, channelID, user.ID, pub); err != nil {
		logger.Log.Warn("visit tracking failed",
			logger.WithChannelID(channelID),
			logger.WithUserID(user.ID),
			zap.Error(err))
	} else {
		pub.Flush()
	}

	c.JSON(http.StatusOK, gin.H{
		"blocks": blocks,
		"meta": gin.H{
			"message_count": len(messages),
			"timezone":      loc.String(),
		},
	})
}

// SendMessage posts a text message to a channel and notifies channel
// members over their live connections.
func (h *Handlers) SendMessage(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	channelID := c.Param("id")
	ctx := c.Request.Context()

	var req struct {
		Text            string  `json:"text" binding:"required"`
		IsReply         bool    `json:"is_reply"`
		LinkedMessageID *string `json:"linked_message_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.chat.CheckAccess(ctx, channelID, user); err != nil {
		util.RespondError(c, err)
		return
	}

	message, err := h.chat.SendMessage(ctx, channelID, user.ID, req.Text, req.IsReply, req.LinkedMessageID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	middleware.RecordMessageSent(message.Type)

	pub := h.publisher()
	memberIDs, err := h.chat.ChannelMemberIDs(ctx, channelID)
	if err != nil {
		logger.Log.Warn("member lookup for push failed",
			logger.WithChannelID(channelID),
			zap.Error(err))
	} else {
		payload := websocket.NewChatMessagePayload{
			MessageID: message.ID,
			ChannelID: channelID,
			OwnerID:   user.ID,
			CreatedAt: message.CreatedAt.UnixMilli(),
		}
		for _, memberID := range memberIDs {
			if memberID == user.ID {
				continue
			}
			pub.PublishToUser(memberID, websocket.MessageTypeNewMessage, payload)
			pub.PublishToUser(memberID, chat.EventUnreadCountUpdated, map[string]interface{}{
				"channel_id": channelID,
				"play_sound": true,
			})
		}
	}
	pub.Flush()

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// SaveMessage toggles the requester's bookmark on a message and pushes
// the resulting bookmark set back to them.
func (h *Handlers) SaveMessage(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	messageID := c.Param("id")
	ctx := c.Request.Context()

	var req struct {
		Add *bool `json:"add" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	likedBy, err := h.chat.ToggleSave(ctx, messageID, user.ID, *req.Add)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	pub := h.publisher()
	pub.PublishToUser(user.ID, chat.EventMessageSaved, websocket.MessageSavedPayload{
		MessageID: messageID,
		LikedBy:   likedBy,
	})
	pub.Flush()
	middleware.RecordEventPublished(chat.EventMessageSaved)

	c.JSON(http.StatusOK, gin.H{
		"message_id": messageID,
		"liked_by":   likedBy,
	})
}

// GetSavedMessages returns the requester's bookmarked messages,
// restricted to channels they can read.
func (h *Handlers) GetSavedMessages(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	messages, err := h.chat.GetSavedMessages(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"meta":     gin.H{"total": len(messages)},
	})
}
