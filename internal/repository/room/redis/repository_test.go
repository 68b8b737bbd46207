package redis

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, slog.Default(), time.Hour), s
}

func TestCreateRoom(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	created, err := r.CreateRoom(ctx, &room.CreateRoomParams{Code: "ABC123", HostID: "host"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "ABC123", created.Code)
	assert.Equal(t, "host", created.HostID)
	assert.Nil(t, created.GuestID)
	assert.Nil(t, created.CurrentVideoID)
	assert.Zero(t, created.CurrentTime)
	assert.False(t, created.IsPlaying)
	assert.True(t, s.Exists("room:ABC123"))
	assert.Equal(t, time.Hour, s.TTL("room:ABC123"))

	_, err = r.CreateRoom(ctx, &room.CreateRoomParams{Code: "ABC123", HostID: "intruder"})
	assert.ErrorIs(t, err, room.ErrRoomAlreadyExists)

	got, err := r.GetRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "host", got.HostID)
	assert.Equal(t, created.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())
}

func TestGetRoomNotFound(t *testing.T) {
	r, _ := newTestRepo(t)

	_, err := r.GetRoom(context.Background(), "NOPE00")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestUpdateRoom(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	_, err := r.CreateRoom(ctx, &room.CreateRoomParams{Code: "ABC123", HostID: "host"})
	require.NoError(t, err)

	videoID := "v1"
	currentTime := 42.5
	isPlaying := true
	updated, err := r.UpdateRoom(ctx, &room.UpdateRoomParams{
		Code:           "ABC123",
		CurrentVideoID: &videoID,
		CurrentTime:    &currentTime,
		IsPlaying:      &isPlaying,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CurrentVideoID)
	assert.Equal(t, "v1", *updated.CurrentVideoID)
	assert.Equal(t, 42.5, updated.CurrentTime)
	assert.True(t, updated.IsPlaying)

	paused := false
	updated, err = r.UpdateRoom(ctx, &room.UpdateRoomParams{Code: "ABC123", IsPlaying: &paused})
	require.NoError(t, err)
	assert.False(t, updated.IsPlaying)
	assert.Equal(t, 42.5, updated.CurrentTime, "untouched fields must be kept")
	require.NotNil(t, updated.CurrentVideoID)
	assert.Equal(t, "v1", *updated.CurrentVideoID)

	_, err = r.UpdateRoom(ctx, &room.UpdateRoomParams{Code: "NOPE00", IsPlaying: &paused})
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
	assert.False(t, s.Exists("room:NOPE00"), "update must not create a partial room")
}

func TestAddUserToRoom(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := r.CreateRoom(ctx, &room.CreateRoomParams{Code: "ABC123", HostID: "host"})
	require.NoError(t, err)

	updated, err := r.AddUserToRoom(ctx, &room.AddUserToRoomParams{Code: "ABC123", UserID: "guest"})
	require.NoError(t, err)
	require.NotNil(t, updated.GuestID)
	assert.Equal(t, "guest", *updated.GuestID)
	assert.Equal(t, "host", updated.HostID)

	updated, err = r.AddUserToRoom(ctx, &room.AddUserToRoomParams{Code: "ABC123", UserID: "host2", IsHost: true})
	require.NoError(t, err)
	assert.Equal(t, "host2", updated.HostID)

	_, err = r.AddUserToRoom(ctx, &room.AddUserToRoomParams{Code: "NOPE00", UserID: "guest"})
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestMessages(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := r.CreateRoom(ctx, &room.CreateRoomParams{Code: "ABC123", HostID: "host"})
	require.NoError(t, err)

	var lastID int64
	for i := 1; i <= 25; i++ {
		message, err := r.CreateMessage(ctx, &room.CreateMessageParams{
			RoomCode: "ABC123",
			UserID:   "host",
			Username: "alice",
			Content:  fmt.Sprintf("message %d", i),
			Type:     room.MessageTypeText,
		})
		require.NoError(t, err)
		assert.Greater(t, message.ID, lastID)
		lastID = message.ID
	}

	messages, err := r.GetMessages(ctx, "ABC123", 20)
	require.NoError(t, err)
	require.Len(t, messages, 20)
	assert.Equal(t, "message 6", messages[0].Content)
	assert.Equal(t, "message 25", messages[19].Content)
	assert.Equal(t, "alice", messages[19].Username)

	messages, err = r.GetMessages(ctx, "ABC123", 0)
	require.NoError(t, err)
	assert.Len(t, messages, 25)
}

func TestDeleteRoom(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	_, err := r.CreateRoom(ctx, &room.CreateRoomParams{Code: "ABC123", HostID: "host"})
	require.NoError(t, err)
	_, err = r.CreateMessage(ctx, &room.CreateMessageParams{RoomCode: "ABC123", UserID: "host", Username: "alice", Content: "hi", Type: room.MessageTypeText})
	require.NoError(t, err)

	deleted, err := r.DeleteRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, s.Exists("room:ABC123:messages"))

	_, err = r.GetRoom(ctx, "ABC123")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	deleted, err = r.DeleteRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, deleted)
}
