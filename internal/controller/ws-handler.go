package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sharetube/watchparty/internal/registry"
	"github.com/sharetube/watchparty/internal/repository/room"
	roomService "github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

type JoinRoomInput struct {
	RoomCode string `json:"roomCode" validate:"required,max=32"`
	UserID   string `json:"userId" validate:"required,max=64"`
	Username string `json:"username" validate:"required,max=64"`
	IsHost   bool   `json:"isHost"`
}

type joinedRoomOutput struct {
	Room           room.Room         `json:"room"`
	UserID         string            `json:"userId"`
	IsHost         bool              `json:"isHost"`
	ConnectedUsers []registry.Member `json:"connectedUsers"`
}

type playbackControlOutput struct {
	Action      string  `json:"action"`
	CurrentTime float64 `json:"currentTime"`
	VideoID     string  `json:"videoId"`
}

func (c controller) handleJoinRoom(ctx context.Context, cl *client, input JoinRoomInput) error {
	joinRoomResp, err := c.roomService.JoinRoom(ctx, &roomService.JoinRoomParams{
		Conn:     cl,
		RoomCode: input.RoomCode,
		UserID:   input.UserID,
		Username: input.Username,
		IsHost:   input.IsHost,
	})
	if err != nil {
		switch {
		case errors.Is(err, roomService.ErrRoomNotFound):
			c.writeError(ctx, cl, errRoomNotFound)
			return nil
		case errors.Is(err, roomService.ErrRoomFull):
			c.writeError(ctx, cl, errRoomFull)
			return nil
		default:
			return fmt.Errorf("failed to join room: %w", err)
		}
	}

	cl.setJoined(input.RoomCode, joinRoomResp.Member)
	if joinRoomResp.Evicted != nil {
		c.logger.InfoContext(ctx, "replacing previous connection of user", "user_id", input.UserID)
		joinRoomResp.Evicted.Close()
	}

	if err := c.writeOutput(ctx, cl, "joined_room", joinedRoomOutput{
		Room:           joinRoomResp.Room,
		UserID:         input.UserID,
		IsHost:         input.IsHost,
		ConnectedUsers: joinRoomResp.ConnectedUsers,
	}); err != nil {
		return err
	}

	if joinRoomResp.Room.HasVideo() {
		if err := c.writeOutput(ctx, cl, "playback_control", playbackControlOutput{
			Action:      roomService.ActionVideoChange,
			CurrentTime: joinRoomResp.Room.CurrentTime,
			VideoID:     *joinRoomResp.Room.CurrentVideoID,
		}); err != nil {
			return err
		}
	}

	if err := c.broadcast(ctx, input.RoomCode, cl, "user_join", joinRoomResp.Member); err != nil {
		return fmt.Errorf("failed to broadcast user join: %w", err)
	}

	return c.writeOutput(ctx, cl, "message_history", map[string]any{
		"messages": joinRoomResp.Messages,
	})
}

// relay forwards the frame being handled, unchanged, to the other members of
// the sender's room.
func (c controller) relay(ctx context.Context, cl *client) {
	c.roomService.Broadcast(ctx, &roomService.BroadcastParams{
		RoomCode: cl.getRoomCode(),
		Frame:    wsrouter.GetRawMessageFromCtx(ctx),
		Exclude:  cl,
	})
}

type SyncInput struct {
	CurrentTime *float64 `json:"currentTime" validate:"required,gte=0"`
	IsPlaying   *bool    `json:"isPlaying" validate:"required"`
	VideoID     *string  `json:"videoId"`
}

func (c controller) handleSync(ctx context.Context, cl *client, input SyncInput) error {
	if _, err := c.roomService.UpdatePlayerState(ctx, &roomService.UpdatePlayerStateParams{
		RoomCode:    cl.getRoomCode(),
		CurrentTime: *input.CurrentTime,
		IsPlaying:   *input.IsPlaying,
		VideoID:     input.VideoID,
	}); err != nil {
		if !errors.Is(err, roomService.ErrRoomNotFound) {
			return fmt.Errorf("failed to update player state: %w", err)
		}
		c.logger.WarnContext(ctx, "room of joined connection is gone")
	}

	c.relay(ctx, cl)
	return nil
}

type PlaybackControlInput struct {
	Action      string   `json:"action" validate:"required,oneof=play pause seek video_change"`
	CurrentTime *float64 `json:"currentTime" validate:"omitempty,gte=0"`
	VideoID     *string  `json:"videoId"`
}

func (c controller) handlePlaybackControl(ctx context.Context, cl *client, input PlaybackControlInput) error {
	if _, err := c.roomService.ControlPlayback(ctx, &roomService.ControlPlaybackParams{
		RoomCode:    cl.getRoomCode(),
		Action:      input.Action,
		CurrentTime: input.CurrentTime,
		VideoID:     input.VideoID,
	}); err != nil {
		if !errors.Is(err, roomService.ErrRoomNotFound) {
			return fmt.Errorf("failed to control playback: %w", err)
		}
		c.logger.WarnContext(ctx, "room of joined connection is gone")
	}

	c.relay(ctx, cl)
	c.logger.InfoContext(ctx, "playback control relayed", "action", input.Action)
	return nil
}

type WebRTCSignalInput struct {
	Type string `json:"type" validate:"required"`
	Data any    `json:"data" validate:"required"`
}

func (c controller) handleWebRTCSignal(ctx context.Context, cl *client, input WebRTCSignalInput) error {
	c.logger.DebugContext(ctx, "forwarding webrtc signal", "signal_type", input.Type)
	c.relay(ctx, cl)
	return nil
}

func (c controller) handleVoiceSignal(ctx context.Context, cl *client, _ json.RawMessage) error {
	c.relay(ctx, cl)
	return nil
}

type ChatInput struct {
	Content     string `json:"content" validate:"required"`
	MessageType string `json:"messageType" validate:"omitempty,oneof=text emoji image system"`
}

type chatOutput struct {
	ID          int64  `json:"id"`
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	Content     string `json:"content"`
	MessageType string `json:"messageType"`
}

func (c controller) handleChat(ctx context.Context, cl *client, input ChatInput) error {
	member := cl.getMember()
	roomCode := cl.getRoomCode()

	message, err := c.roomService.SendChatMessage(ctx, &roomService.SendChatMessageParams{
		RoomCode: roomCode,
		UserID:   member.UserID,
		Username: member.Username,
		Content:  input.Content,
		Type:     input.MessageType,
	})
	if err != nil {
		return fmt.Errorf("failed to send chat message: %w", err)
	}

	if err := c.broadcast(ctx, roomCode, nil, "chat", chatOutput{
		ID:          message.ID,
		UserID:      message.UserID,
		Username:    message.Username,
		Content:     message.Content,
		MessageType: message.Type,
	}); err != nil {
		return fmt.Errorf("failed to broadcast chat message: %w", err)
	}

	return nil
}
