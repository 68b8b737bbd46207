package inmemory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sharetube/watchparty/internal/repository/room"
)

type repo struct {
	rooms         map[string]room.Room
	messages      map[string][]room.Message
	lastRoomID    int64
	lastMessageID int64
	mu            sync.RWMutex
	logger        *slog.Logger
	now           func() time.Time
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		rooms:    make(map[string]room.Room),
		messages: make(map[string][]room.Message),
		logger:   logger,
		now:      time.Now,
	}
}

func (r *repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[params.Code]; ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomAlreadyExists)
		return room.Room{}, room.ErrRoomAlreadyExists
	}

	r.lastRoomID++
	newRoom := room.Room{
		ID:             r.lastRoomID,
		Code:           params.Code,
		HostID:         params.HostID,
		GuestID:        params.GuestID,
		CurrentVideoID: params.CurrentVideoID,
		CurrentTime:    params.CurrentTime,
		IsPlaying:      params.IsPlaying,
		CreatedAt:      r.now().UTC(),
	}
	r.rooms[params.Code] = newRoom
	r.messages[params.Code] = []room.Message{}

	r.logger.DebugContext(ctx, "returned", "room", newRoom)
	return newRoom, nil
}

func (r *repo) GetRoom(ctx context.Context, code string) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "code", code)
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing, ok := r.rooms[code]
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.Room{}, room.ErrRoomNotFound
	}

	return existing, nil
}

func (r *repo) UpdateRoom(ctx context.Context, params *room.UpdateRoomParams) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[params.Code]
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.Room{}, room.ErrRoomNotFound
	}

	if params.CurrentVideoID != nil {
		videoID := *params.CurrentVideoID
		existing.CurrentVideoID = &videoID
	}
	if params.CurrentTime != nil {
		existing.CurrentTime = *params.CurrentTime
	}
	if params.IsPlaying != nil {
		existing.IsPlaying = *params.IsPlaying
	}
	r.rooms[params.Code] = existing

	return existing, nil
}

func (r *repo) DeleteRoom(ctx context.Context, code string) (bool, error) {
	r.logger.DebugContext(ctx, "called", "code", code)
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.rooms[code]
	delete(r.rooms, code)
	delete(r.messages, code)

	r.logger.DebugContext(ctx, "returned", "deleted", ok)
	return ok, nil
}

func (r *repo) CreateMessage(ctx context.Context, params *room.CreateMessageParams) (room.Message, error) {
	r.logger.DebugContext(ctx, "called", "room_code", params.RoomCode, "user_id", params.UserID)
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastMessageID++
	message := room.Message{
		ID:        r.lastMessageID,
		RoomCode:  params.RoomCode,
		UserID:    params.UserID,
		Username:  params.Username,
		Content:   params.Content,
		Type:      params.Type,
		CreatedAt: r.now().UTC(),
	}
	r.messages[params.RoomCode] = append(r.messages[params.RoomCode], message)

	return message, nil
}

func (r *repo) GetMessages(ctx context.Context, code string, limit int) ([]room.Message, error) {
	r.logger.DebugContext(ctx, "called", "code", code, "limit", limit)
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = room.DefaultMessagesLimit
	}

	messages := r.messages[code]
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	res := make([]room.Message, len(messages))
	copy(res, messages)

	return res, nil
}

func (r *repo) AddUserToRoom(ctx context.Context, params *room.AddUserToRoomParams) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[params.Code]
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.Room{}, room.ErrRoomNotFound
	}

	if params.IsHost {
		existing.HostID = params.UserID
	} else {
		userID := params.UserID
		existing.GuestID = &userID
	}
	r.rooms[params.Code] = existing

	return existing, nil
}
