package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perchchat/backend/internal/middleware"
	"github.com/perchchat/backend/internal/util"
)

// GetUnreadCounts returns the requester's sidebar unread summary:
// per-channel counts plus channel and direct-message totals.
func (h *Handlers) GetUnreadCounts(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	started := time.Now()
	summary, err := h.chat.GetUnreadSummary(c.Request.Context(), userID)
	middleware.RecordUnreadQuery(time.Since(started))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
