package repositories

import (
	"chat-desk/errors"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Create_Admin(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewAdminRepository(openTestDB(t), slog.Default())

	admin, err := repository.CreateAdmin(ctx, " Alice@Example.com ", "hash")
	req.NoError(err)
	req.Equal("alice@example.com", admin.Email)
	req.False(admin.IsOnline)
	req.Nil(admin.LastSeen)

	byEmail, err := repository.GetAdminByEmail(ctx, "ALICE@example.com")
	req.NoError(err)
	req.Equal(admin.ID, byEmail.ID)
	req.Equal("hash", byEmail.PasswordHash)

	_, err = repository.CreateAdmin(ctx, "alice@example.com", "other")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Get_Admin_Not_Found(t *testing.T) {
	repository := NewAdminRepository(openTestDB(t), slog.Default())

	_, err := repository.GetAdmin(context.Background(), "missing")
	require.ErrorIs(t, err, errors.ErrAdminNotFound)

	_, err = repository.GetAdminByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, errors.ErrAdminNotFound)
}

func Test_Admin_Presence(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewAdminRepository(openTestDB(t), slog.Default())

	admin, err := repository.CreateAdmin(ctx, "alice@example.com", "hash")
	req.NoError(err)

	req.NoError(repository.SetPresence(ctx, admin.ID, true, time.Now()))
	online, err := repository.GetAdmin(ctx, admin.ID)
	req.NoError(err)
	req.True(online.IsOnline)

	leftAt := time.Now().UTC()
	req.NoError(repository.SetPresence(ctx, admin.ID, false, leftAt))
	offline, err := repository.GetAdmin(ctx, admin.ID)
	req.NoError(err)
	req.False(offline.IsOnline)
	req.NotNil(offline.LastSeen)
	req.True(offline.LastSeen.Equal(leftAt))

	req.ErrorIs(repository.SetPresence(ctx, "missing", true, time.Now()), errors.ErrAdminNotFound)
}

func Test_Reset_Presence(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewAdminRepository(openTestDB(t), slog.Default())

	alice, err := repository.CreateAdmin(ctx, "alice@example.com", "hash")
	req.NoError(err)
	bob, err := repository.CreateAdmin(ctx, "bob@example.com", "hash")
	req.NoError(err)
	req.NoError(repository.SetPresence(ctx, alice.ID, true, time.Now()))

	reset, err := repository.ResetPresence(ctx, time.Now())
	req.NoError(err)
	req.Equal(1, reset)

	for _, id := range []string{alice.ID, bob.ID} {
		admin, err := repository.GetAdmin(ctx, id)
		req.NoError(err)
		req.False(admin.IsOnline)
	}
}
