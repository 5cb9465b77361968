package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/perchchat/backend/internal/middleware"
	"github.com/perchchat/backend/internal/util"
)

// TrackVisit records that the requester viewed a channel without
// fetching its feed (clients call this when a channel is read in a
// background pane). Bumps the read watermark and pushes a badge
// reconcile event.
func (h *Handlers) TrackVisit(c *gin.Context) {
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

	pub := h.publisher()
	if err := h.chat.TrackVisit(ctx, channelID, user.ID, pub); err != nil {
		util.RespondError(c, err)
		return
	}
	pub.Flush()
	middleware.RecordVisitTracked("channel")

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
