package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/perchchat/backend/internal/chat"
	"github.com/perchchat/backend/internal/util"
)

// GetTimeline returns activity-feed share cards for every message
// linked to the given external record, filtered to channels the
// requester can read.
func (h *Handlers) GetTimeline(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	entityType := c.Param("entityType")
	entityID := c.Param("entityID")

	if entityType == "" || entityID == "" {
		util.RespondBadRequest(c, "entity type and id are required")
		return
	}

	cards, err := h.chat.GetTimelineEntries(c.Request.Context(), entityType, entityID, userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	if cards == nil {
		cards = []chat.TimelineCard{}
	}

	c.JSON(http.StatusOK, gin.H{
		"timeline": cards,
		"meta":     gin.H{"total": len(cards)},
	})
}
