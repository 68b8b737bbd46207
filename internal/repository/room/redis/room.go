package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/sharetube/watchparty/internal/repository/room"
	omitnilpointers "github.com/sharetube/watchparty/pkg/omit-nil-pointers"
)

type roomHash struct {
	ID             int64   `redis:"id"`
	Code           string  `redis:"code"`
	HostID         string  `redis:"host_id"`
	GuestID        string  `redis:"guest_id"`
	CurrentVideoID string  `redis:"current_video_id"`
	CurrentTime    float64 `redis:"current_time"`
	IsPlaying      bool    `redis:"is_playing"`
	CreatedAt      int64   `redis:"created_at"`
}

func (h roomHash) toRoom() room.Room {
	return room.Room{
		ID:             h.ID,
		Code:           h.Code,
		HostID:         h.HostID,
		GuestID:        nullable(h.GuestID),
		CurrentVideoID: nullable(h.CurrentVideoID),
		CurrentTime:    h.CurrentTime,
		IsPlaying:      h.IsPlaying,
		CreatedAt:      time.UnixMilli(h.CreatedAt).UTC(),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func (r repo) getRoomKey(code string) string {
	return "room:" + code
}

func (r repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	id, err := r.rc.Incr(ctx, roomIDCounterKey).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, fmt.Errorf("failed to allocate room id: %w", err)
	}

	h := roomHash{
		ID:             id,
		Code:           params.Code,
		HostID:         params.HostID,
		GuestID:        deref(params.GuestID),
		CurrentVideoID: deref(params.CurrentVideoID),
		CurrentTime:    params.CurrentTime,
		IsPlaying:      params.IsPlaying,
		CreatedAt:      time.Now().UnixMilli(),
	}

	created, err := r.createRoomScript.Run(ctx, r.rc, []string{r.getRoomKey(params.Code)}, r.scriptArgs(structToFields(h))...).Int()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, fmt.Errorf("failed to create room: %w", err)
	}

	if created == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomAlreadyExists)
		return room.Room{}, room.ErrRoomAlreadyExists
	}

	return h.toRoom(), nil
}

func (r repo) GetRoom(ctx context.Context, code string) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "code", code)
	roomKey := r.getRoomKey(code)
	res := r.rc.HGetAll(ctx, roomKey)
	if err := res.Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	if len(res.Val()) == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.Room{}, room.ErrRoomNotFound
	}

	var h roomHash
	if err := res.Scan(&h); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, fmt.Errorf("failed to scan room: %w", err)
	}

	r.rc.Expire(ctx, roomKey, r.expireDuration)

	return h.toRoom(), nil
}

func (r repo) updateRoom(ctx context.Context, code string, fields map[string]any) (room.Room, error) {
	updated, err := r.updateRoomScript.Run(ctx, r.rc, []string{r.getRoomKey(code)}, r.scriptArgs(fields)...).Int()
	if err != nil {
		return room.Room{}, fmt.Errorf("failed to update room: %w", err)
	}

	if updated == 0 {
		return room.Room{}, room.ErrRoomNotFound
	}

	return r.GetRoom(ctx, code)
}

func (r repo) UpdateRoom(ctx context.Context, params *room.UpdateRoomParams) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	fields := omitnilpointers.OmitNilPointers(map[string]any{
		"current_video_id": params.CurrentVideoID,
		"current_time":     params.CurrentTime,
		"is_playing":       params.IsPlaying,
	})

	res, err := r.updateRoom(ctx, params.Code, fields)
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, err
	}

	return res, nil
}

func (r repo) AddUserToRoom(ctx context.Context, params *room.AddUserToRoomParams) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	field := "guest_id"
	if params.IsHost {
		field = "host_id"
	}

	res, err := r.updateRoom(ctx, params.Code, map[string]any{field: params.UserID})
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, err
	}

	return res, nil
}

func (r repo) DeleteRoom(ctx context.Context, code string) (bool, error) {
	r.logger.DebugContext(ctx, "called", "code", code)
	pipe := r.rc.TxPipeline()
	roomDel := pipe.Del(ctx, r.getRoomKey(code))
	pipe.Del(ctx, r.getMessagesKey(code))

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, fmt.Errorf("failed to delete room: %w", err)
	}

	return roomDel.Val() > 0, nil
}
