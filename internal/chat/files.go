package chat

import (
	"context"
	"time"

	"github.com/perchchat/backend/internal/errors"
	"github.com/perchchat/backend/internal/models"
	"gorm.io/gorm"
)

// fileCategories maps a browse-filter category to the attachment
// extensions it covers. "image" and "pdf" are handled structurally (by
// message type and attachment type respectively) and are not listed
// here.
var fileCategories = map[string][]string{
	"doc": {
		"doc", "docx", "odt", "ott", "rtf", "txt",
		"dot", "dotx", "docm", "dotm", "pages",
	},
	"ppt": {
		"ppt", "pptx", "odp", "otp", "pps", "ppsx", "pot",
		"potx", "pptm", "ppsm", "potm", "ppam", "ppa", "key",
	},
	"xls": {
		"xls", "xlsx", "csv", "ods", "ots", "xlsb", "xlsm",
		"xlt", "xltx", "xltm", "xlam", "xla", "numbers",
	},
}

// ChannelFile is one row of the channel file browser: the attachment
// plus the owning message and author profile fields the UI renders.
type ChannelFile struct {
	ID              string    `json:"id"`
	FileName        string    `json:"file_name"`
	FileType        string    `json:"file_type"`
	FileSize        int64     `json:"file_size"`
	FileURL         string    `json:"file_url"`
	OwnerID         string    `json:"owner_id"`
	Creation        time.Time `json:"creation"`
	MessageType     string    `json:"message_type"`
	ThumbnailWidth  int       `json:"thumbnail_width"`
	ThumbnailHeight int       `json:"thumbnail_height"`
	FileThumbnail   string    `json:"file_thumbnail"`
	FullName        string    `json:"full_name"`
	AvatarURL       string    `json:"avatar_url"`
	MessageID       string    `json:"message_id"`
}

// applyFileFilters attaches the shared filter predicate used by both
// the listing and the count query:
//   - fileName: substring match on the attachment's file name
//   - fileType "image": message type is Image
//   - fileType "pdf": attachment type is pdf
//   - fileType in the category table: attachment type in its extension set
//   - unrecognized fileType: no extension restriction
//   - no fileType at all: only attachment-bearing message types
func applyFileFilters(q *gorm.DB, fileName, fileType string) *gorm.DB {
	if fileName != "" {
		q = q.Where("attachments.file_name LIKE ?", "%"+fileName+"%")
	}

	if fileType != "" {
		switch fileType {
		case "image":
			q = q.Where("messages.type = ?", models.MessageTypeImage)
		case "pdf":
			q = q.Where("attachments.file_type = ?", "pdf")
		default:
			if extensions, ok := fileCategories[fileType]; ok {
				q = q.Where("attachments.file_type IN ?", extensions)
			}
		}
	} else {
		q = q.Where("messages.type IN ?", []string{models.MessageTypeImage, models.MessageTypeFile})
	}

	return q
}

// ListChannelFiles returns a filtered, paginated page of the files
// shared in a channel, newest message first. Callers go through
// CheckAccess first.
func (s *Service) ListChannelFiles(ctx context.Context, channelID, fileName, fileType string, offset, limit int) ([]ChannelFile, error) {
	if offset < 0 {
		return nil, errors.ValidationError("offset", "offset must not be negative")
	}
	if limit <= 0 {
		return nil, errors.ValidationError("limit", "limit must be positive")
	}

	q := s.db.WithContext(ctx).
		Table("messages").
		Select(`attachments.id AS id, attachments.file_name, attachments.file_type,
			attachments.file_size, attachments.file_url,
			messages.owner_id, messages.created_at AS creation, messages.type AS message_type,
			messages.thumbnail_width, messages.thumbnail_height, messages.file_thumbnail,
			users.full_name, users.avatar_url,
			messages.id AS message_id`).
		Joins("JOIN attachments ON attachments.message_id = messages.id").
		Joins("JOIN users ON users.id = messages.owner_id").
		Where("messages.channel_id = ?", channelID)

	q = applyFileFilters(q, fileName, fileType)

	var files []ChannelFile
	err := q.Order("messages.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// CountChannelFiles runs the listing's filter predicate as a count, for
// total-page computation. The attachment join is a left join here so
// that, when no filter forces an attachment column, messages without
// attachment rows still count. This keeps the count aligned with the
// default message-type predicate.
func (s *Service) CountChannelFiles(ctx context.Context, channelID, fileName, fileType string) (int64, error) {
	q := s.db.WithContext(ctx).
		Table("messages").
		Joins("LEFT JOIN attachments ON attachments.message_id = messages.id").
		Where("messages.channel_id = ?", channelID)

	q = applyFileFilters(q, fileName, fileType)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RecentFile is the compact row served by the recent-files endpoint.
type RecentFile struct {
	ID          string    `json:"id"`
	FileURL     string    `json:"file_url"`
	OwnerID     string    `json:"owner_id"`
	Creation    time.Time `json:"creation"`
	MessageType string    `json:"message_type"`
}

// GetRecentFiles returns the most recently shared Image/File messages
// in a channel, capped at the configured fixed page size.
func (s *Service) GetRecentFiles(ctx context.Context, channelID string) ([]RecentFile, error) {
	var files []RecentFile
	err := s.db.WithContext(ctx).
		Table("messages").
		Select("messages.id AS id, messages.file_url, messages.owner_id, messages.created_at AS creation, messages.type AS message_type").
		Where("messages.channel_id = ? AND messages.type IN ?",
			channelID, []string{models.MessageTypeImage, models.MessageTypeFile}).
		Order("messages.created_at DESC").
		Limit(s.recentFilesLimit).
		Scan(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}
