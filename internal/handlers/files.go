package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/perchchat/backend/internal/chat"
	"github.com/perchchat/backend/internal/util"
)

// ListChannelFiles returns a page of the files shared in a channel.
// Query parameters: file_name (substring filter), file_type (image,
// pdf, doc, ppt, xls), offset, limit.
func (h *Handlers) ListChannelFiles(c *gin.Context) {
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

	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	fileName := c.Query("file_name")
	fileType := c.Query("file_type")

	files, err := h.chat.ListChannelFiles(ctx, channelID, fileName, fileType, offset, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	if files == nil {
		files = []chat.ChannelFile{}
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"meta": gin.H{
			"offset": offset,
			"limit":  limit,
			"total":  len(files),
		},
	})
}

// CountChannelFiles returns the total number of files matching the same
// filters the listing accepts, for pagination.
func (h *Handlers) CountChannelFiles(c *gin.Context) {
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

	count, err := h.chat.CountChannelFiles(ctx, channelID, c.Query("file_name"), c.Query("file_type"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetRecentFiles returns the most recently shared files in a channel,
// capped at the configured page size.
func (h *Handlers) GetRecentFiles(c *gin.Context) {
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

	files, err := h.chat.GetRecentFiles(ctx, channelID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	if files == nil {
		files = []chat.RecentFile{}
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}
