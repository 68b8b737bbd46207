package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/watchparty/internal/repository/room"
)

const (
	ActionPlay        = "play"
	ActionPause       = "pause"
	ActionSeek        = "seek"
	ActionVideoChange = "video_change"
)

func (s service) updateRoom(ctx context.Context, params *room.UpdateRoomParams) (room.Room, error) {
	updated, err := s.roomRepo.UpdateRoom(ctx, params)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return room.Room{}, ErrRoomNotFound
		}

		return room.Room{}, fmt.Errorf("failed to update room: %w", err)
	}

	return updated, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}

	return s
}

type UpdatePlayerStateParams struct {
	RoomCode    string
	CurrentTime float64
	IsPlaying   bool
	VideoID     *string
}

// UpdatePlayerState stores a periodic player snapshot. A missing video id
// keeps the loaded video.
func (s service) UpdatePlayerState(ctx context.Context, params *UpdatePlayerStateParams) (room.Room, error) {
	return s.updateRoom(ctx, &room.UpdateRoomParams{
		Code:           params.RoomCode,
		CurrentVideoID: nonEmpty(params.VideoID),
		CurrentTime:    &params.CurrentTime,
		IsPlaying:      &params.IsPlaying,
	})
}

type ControlPlaybackParams struct {
	RoomCode    string
	Action      string
	CurrentTime *float64
	VideoID     *string
}

func (s service) ControlPlayback(ctx context.Context, params *ControlPlaybackParams) (room.Room, error) {
	update := room.UpdateRoomParams{Code: params.RoomCode}

	var isPlaying bool
	switch params.Action {
	case ActionPlay:
		isPlaying = true
		update.IsPlaying = &isPlaying
	case ActionPause:
		update.IsPlaying = &isPlaying
	case ActionVideoChange:
		var currentTime float64
		update.IsPlaying = &isPlaying
		update.CurrentTime = &currentTime
	}

	if params.CurrentTime != nil {
		update.CurrentTime = params.CurrentTime
	}
	update.CurrentVideoID = nonEmpty(params.VideoID)

	return s.updateRoom(ctx, &update)
}
