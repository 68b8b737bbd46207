package inmemory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoom(t *testing.T) {
	r := NewRepo(slog.Default())
	ctx := context.Background()

	created, err := r.CreateRoom(ctx, &room.CreateRoomParams{Code: "ABC123", HostID: "host"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Nil(t, created.CurrentVideoID)
	assert.False(t, created.IsPlaying)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = r.CreateRoom(ctx, &room.CreateRoomParams{Code: "ABC123", HostID: "other"})
	assert.ErrorIs(t, err, room.ErrRoomAlreadyExists)

	got, err := r.GetRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = r.GetRoom(ctx, "abc123")
	assert.ErrorIs(t, err, room.ErrRoomNotFound, "codes are case-sensitive")
}

func TestUpdateRoom(t *testing.T) {
	r := NewRepo(slog.Default())
	ctx := context.Background()

	_, err := r.CreateRoom(ctx, &room.CreateRoomParams{Code: "ABC123", HostID: "host"})
	require.NoError(t, err)

	videoID := "v1"
	currentTime := 12.0
	updated, err := r.UpdateRoom(ctx, &room.UpdateRoomParams{Code: "ABC123", CurrentVideoID: &videoID, CurrentTime: &currentTime})
	require.NoError(t, err)
	require.NotNil(t, updated.CurrentVideoID)
	assert.Equal(t, "v1", *updated.CurrentVideoID)
	assert.Equal(t, 12.0, updated.CurrentTime)
	assert.False(t, updated.IsPlaying)

	videoID = "mutated"
	got, err := r.GetRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "v1", *got.CurrentVideoID, "stored room must not alias caller memory")

	_, err = r.UpdateRoom(ctx, &room.UpdateRoomParams{Code: "NOPE00"})
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestAddUserToRoom(t *testing.T) {
	r := NewRepo(slog.Default())
	ctx := context.Background()

	_, err := r.CreateRoom(ctx, &room.CreateRoomParams{Code: "ABC123", HostID: "host"})
	require.NoError(t, err)

	updated, err := r.AddUserToRoom(ctx, &room.AddUserToRoomParams{Code: "ABC123", UserID: "guest"})
	require.NoError(t, err)
	require.NotNil(t, updated.GuestID)
	assert.Equal(t, "guest", *updated.GuestID)

	updated, err = r.AddUserToRoom(ctx, &room.AddUserToRoomParams{Code: "ABC123", UserID: "new-host", IsHost: true})
	require.NoError(t, err)
	assert.Equal(t, "new-host", updated.HostID)

	_, err = r.AddUserToRoom(ctx, &room.AddUserToRoomParams{Code: "NOPE00", UserID: "guest"})
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestMessagesWindow(t *testing.T) {
	r := NewRepo(slog.Default())
	ctx := context.Background()

	_, err := r.CreateRoom(ctx, &room.CreateRoomParams{Code: "ABC123", HostID: "host"})
	require.NoError(t, err)

	for i := 1; i <= 25; i++ {
		message, err := r.CreateMessage(ctx, &room.CreateMessageParams{
			RoomCode: "ABC123",
			UserID:   "host",
			Username: "alice",
			Content:  fmt.Sprintf("message %d", i),
			Type:     room.MessageTypeText,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i), message.ID)
	}

	messages, err := r.GetMessages(ctx, "ABC123", 20)
	require.NoError(t, err)
	require.Len(t, messages, 20)
	for i, message := range messages {
		assert.Equal(t, fmt.Sprintf("message %d", i+6), message.Content)
	}

	messages, err = r.GetMessages(ctx, "ABC123", 100)
	require.NoError(t, err)
	assert.Len(t, messages, 25)
}

func TestDeleteRoom(t *testing.T) {
	r := NewRepo(slog.Default())
	ctx := context.Background()

	_, err := r.CreateRoom(ctx, &room.CreateRoomParams{Code: "ABC123", HostID: "host"})
	require.NoError(t, err)
	_, err = r.CreateMessage(ctx, &room.CreateMessageParams{RoomCode: "ABC123", UserID: "host", Username: "alice", Content: "hi"})
	require.NoError(t, err)

	deleted, err := r.DeleteRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = r.GetRoom(ctx, "ABC123")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	messages, err := r.GetMessages(ctx, "ABC123", 20)
	require.NoError(t, err)
	assert.Empty(t, messages)

	deleted, err = r.DeleteRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestConcurrentMessageIDsAreUnique(t *testing.T) {
	r := NewRepo(slog.Default())
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make(chan int64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			message, err := r.CreateMessage(ctx, &room.CreateMessageParams{RoomCode: "ABC123", UserID: "u", Username: "u", Content: "x"})
			assert.NoError(t, err)
			ids <- message.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}
