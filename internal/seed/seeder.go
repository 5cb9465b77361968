package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/perchchat/backend/internal/logger"
	"github.com/perchchat/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating users...")
	users, err := s.seedUsers(25)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	log("Creating channels...")
	channels, err := s.seedChannels()
	if err != nil {
		return fmt.Errorf("failed to seed channels: %w", err)
	}

	log("Creating direct messages...")
	dms, err := s.seedDirectMessages(users, 15)
	if err != nil {
		return fmt.Errorf("failed to seed direct messages: %w", err)
	}

	log("Creating memberships...")
	if err := s.seedMemberships(users, channels); err != nil {
		return fmt.Errorf("failed to seed memberships: %w", err)
	}

	log("Creating messages...")
	if err := s.seedMessages(users, append(channels, dms...), 800); err != nil {
		return fmt.Errorf("failed to seed messages: %w", err)
	}

	log("Creating file attachments...")
	if err := s.seedFileMessages(users, channels, 60); err != nil {
		return fmt.Errorf("failed to seed file messages: %w", err)
	}

	log("Creating saved messages...")
	if err := s.seedSavedMessages(users, 100); err != nil {
		return fmt.Errorf("failed to seed saved messages: %w", err)
	}

	return nil
}

// SeedTest seeds the test database with minimal, predictable data
func (s *Seeder) SeedTest() error {
	users := []*models.User{
		{Email: "alice@perch.test", Username: "alice", FullName: "Alice Tester"},
		{Email: "bob@perch.test", Username: "bob", FullName: "Bob Tester"},
		{Email: "admin@perch.test", Username: "admin", FullName: "Admin Tester", IsAdmin: true},
	}
	for _, user := range users {
		if err := s.db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create test user %s: %w", user.Username, err)
		}
	}

	general := &models.Channel{Name: "general", Type: models.ChannelTypeOpen}
	if err := s.db.Create(general).Error; err != nil {
		return fmt.Errorf("failed to create test channel: %w", err)
	}

	now := time.Now().UTC()
	for i, text := range []string{"welcome to perch", "second message", "third message"} {
		msg := &models.Message{
			ChannelID: general.ID,
			OwnerID:   users[i%2].ID,
			Type:      models.MessageTypeText,
			Text:      text,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}
		if err := s.db.Create(msg).Error; err != nil {
			return fmt.Errorf("failed to create test message: %w", err)
		}
	}

	logger.Log.Info("Test data created",
		zap.Int("users", len(users)),
		zap.String("channel", general.Name))
	return nil
}

// Clean removes all seeded data. Order matters for foreign keys.
func (s *Seeder) Clean() error {
	tables := []string{
		"message_likes",
		"attachments",
		"messages",
		"channel_members",
		"channels",
		"users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) seedUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user := &models.User{
			Email:     gofakeit.Email(),
			Username:  fmt.Sprintf("%s%d", gofakeit.Username(), i),
			FullName:  gofakeit.Name(),
			AvatarURL: gofakeit.ImageURL(128, 128),
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedChannels() ([]*models.Channel, error) {
	specs := []struct {
		name        string
		channelType string
		archived    bool
	}{
		{"general", models.ChannelTypeOpen, false},
		{"random", models.ChannelTypeOpen, false},
		{"announcements", models.ChannelTypePublic, false},
		{"engineering", models.ChannelTypePublic, false},
		{"design", models.ChannelTypePublic, false},
		{"leadership", models.ChannelTypePrivate, false},
		{"old-project", models.ChannelTypePublic, true},
	}

	channels := make([]*models.Channel, 0, len(specs))
	for _, spec := range specs {
		channel := &models.Channel{
			Name:        spec.name,
			Type:        spec.channelType,
			Description: gofakeit.Sentence(8),
			IsArchived:  spec.archived,
		}
		if err := s.db.Create(channel).Error; err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}
	return channels, nil
}

func (s *Seeder) seedDirectMessages(users []*models.User, count int) ([]*models.Channel, error) {
	dms := make([]*models.Channel, 0, count)
	for i := 0; i < count && len(users) >= 2; i++ {
		a := users[rand.Intn(len(users))]
		b := users[rand.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}

		dm := &models.Channel{
			Name:            fmt.Sprintf("%s-%s", a.Username, b.Username),
			Type:            models.ChannelTypePrivate,
			IsDirectMessage: true,
		}
		if err := s.db.Create(dm).Error; err != nil {
			return nil, err
		}
		for _, user := range []*models.User{a, b} {
			member := &models.ChannelMember{ChannelID: dm.ID, UserID: user.ID}
			if err := s.db.Create(member).Error; err != nil {
				return nil, err
			}
		}
		dms = append(dms, dm)
	}
	return dms, nil
}

func (s *Seeder) seedMemberships(users []*models.User, channels []*models.Channel) error {
	for _, channel := range channels {
		for _, user := range users {
			// Roughly two thirds of users join each channel
			if rand.Float64() > 0.66 {
				continue
			}

			member := &models.ChannelMember{
				ChannelID: channel.ID,
				UserID:    user.ID,
			}
			// Some members have visited recently, some long ago, some never
			switch rand.Intn(3) {
			case 0:
				visit := time.Now().UTC().Add(-time.Duration(rand.Intn(60)) * time.Minute)
				member.LastVisit = &visit
			case 1:
				visit := time.Now().UTC().Add(-time.Duration(1+rand.Intn(14)) * 24 * time.Hour)
				member.LastVisit = &visit
			}
			if err := s.db.Create(member).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedMessages(users []*models.User, channels []*models.Channel, count int) error {
	if len(users) == 0 || len(channels) == 0 {
		return nil
	}

	// Walk time forward so bursts by the same author land inside the
	// two-minute continuation window
	cursor := time.Now().UTC().Add(-14 * 24 * time.Hour)
	var lastID string

	for i := 0; i < count; i++ {
		channel := channels[rand.Intn(len(channels))]
		owner := users[rand.Intn(len(users))]

		if rand.Float64() < 0.3 {
			cursor = cursor.Add(time.Duration(rand.Intn(90)) * time.Second)
		} else {
			cursor = cursor.Add(time.Duration(5+rand.Intn(240)) * time.Minute)
		}

		message := &models.Message{
			ChannelID: channel.ID,
			OwnerID:   owner.ID,
			Type:      models.MessageTypeText,
			Text:      gofakeit.Sentence(4 + rand.Intn(12)),
			CreatedAt: cursor,
		}

		// Occasional replies and shared-record links
		if lastID != "" && rand.Float64() < 0.1 {
			message.IsReply = true
			linked := lastID
			message.LinkedMessageID = &linked
		}
		if rand.Float64() < 0.05 {
			message.LinkEntityType = "Deal"
			message.LinkEntityID = fmt.Sprintf("D-%d", rand.Intn(50))
		}

		if err := s.db.Create(message).Error; err != nil {
			return err
		}
		lastID = message.ID
	}
	return nil
}

func (s *Seeder) seedFileMessages(users []*models.User, channels []*models.Channel, count int) error {
	if len(users) == 0 || len(channels) == 0 {
		return nil
	}

	fileTypes := []struct {
		ext     string
		msgType string
	}{
		{"png", models.MessageTypeImage},
		{"jpg", models.MessageTypeImage},
		{"pdf", models.MessageTypeFile},
		{"docx", models.MessageTypeFile},
		{"pptx", models.MessageTypeFile},
		{"xlsx", models.MessageTypeFile},
		{"csv", models.MessageTypeFile},
	}

	for i := 0; i < count; i++ {
		channel := channels[rand.Intn(len(channels))]
		owner := users[rand.Intn(len(users))]
		ft := fileTypes[rand.Intn(len(fileTypes))]
		fileName := fmt.Sprintf("%s.%s", gofakeit.Word(), ft.ext)
		createdAt := time.Now().UTC().Add(-time.Duration(rand.Intn(14*24)) * time.Hour)

		message := &models.Message{
			ChannelID: channel.ID,
			OwnerID:   owner.ID,
			Type:      ft.msgType,
			Text:      fileName,
			FileURL:   gofakeit.URL(),
			CreatedAt: createdAt,
		}
		if err := s.db.Create(message).Error; err != nil {
			return err
		}

		attachment := &models.Attachment{
			MessageID: message.ID,
			FileName:  fileName,
			FileType:  ft.ext,
			FileSize:  int64(1024 + rand.Intn(5*1024*1024)),
			FileURL:   message.FileURL,
		}
		if err := s.db.Create(attachment).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedSavedMessages(users []*models.User, count int) error {
	var messages []models.Message
	if err := s.db.Limit(500).Find(&messages).Error; err != nil {
		return err
	}
	if len(messages) == 0 || len(users) == 0 {
		return nil
	}

	for i := 0; i < count; i++ {
		like := &models.MessageLike{
			MessageID: messages[rand.Intn(len(messages))].ID,
			UserID:    users[rand.Intn(len(users))].ID,
		}
		// Unique constraint makes duplicates a no-op
		if err := s.db.Create(like).Error; err != nil {
			continue
		}
	}
	return nil
}
