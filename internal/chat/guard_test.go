package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/perchchat/backend/internal/errors"
	"github.com/perchchat/backend/internal/models"
)

func TestCheckAccessOpenChannel(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	channel := createTestChannel(t, db, "general", models.ChannelTypeOpen)

	// No membership required for Open channels
	assert.NoError(t, svc.CheckAccess(ctx, channel.ID, user))
}

func TestCheckAccessPublicChannelNonMember(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	channel := createTestChannel(t, db, "announcements", models.ChannelTypePublic)

	assert.NoError(t, svc.CheckAccess(ctx, channel.ID, user))
}

func TestCheckAccessPrivateChannel(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	member := createTestUser(t, db, "alice")
	outsider := createTestUser(t, db, "bob")
	channel := createTestChannel(t, db, "secret", models.ChannelTypePrivate)
	addMember(t, db, channel.ID, member.ID, nil)

	assert.NoError(t, svc.CheckAccess(ctx, channel.ID, member))

	err := svc.CheckAccess(ctx, channel.ID, outsider)
	require.Error(t, err)
	apiErr := apierrors.AsAPIError(err)
	assert.Equal(t, apierrors.ErrForbidden, apiErr.Code)
}

func TestCheckAccessPrivateChannelAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, "root")
	admin.IsAdmin = true
	require.NoError(t, db.Save(admin).Error)

	channel := createTestChannel(t, db, "secret", models.ChannelTypePrivate)

	assert.NoError(t, svc.CheckAccess(ctx, channel.ID, admin))
}

func TestCheckAccessMissingChannel(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	user := createTestUser(t, db, "alice")

	err := svc.CheckAccess(context.Background(), "no-such-channel", user)
	require.Error(t, err)
	apiErr := apierrors.AsAPIError(err)
	assert.Equal(t, apierrors.ErrNotFound, apiErr.Code)
}
