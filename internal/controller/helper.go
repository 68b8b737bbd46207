package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sharetube/watchparty/internal/registry"
	roomService "github.com/sharetube/watchparty/internal/service/room"
)

const (
	errRoomNotFound         = "Room not found"
	errRoomFull             = "Room is full"
	errInvalidMessageFormat = "Invalid message format"
)

type Output struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

func newFrame(outputType string, payload any) ([]byte, error) {
	frame, err := json.Marshal(&Output{
		Type:      outputType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s frame: %w", outputType, err)
	}

	return frame, nil
}

func (c controller) writeOutput(ctx context.Context, cl *client, outputType string, payload any) error {
	frame, err := newFrame(outputType, payload)
	if err != nil {
		return err
	}

	if !cl.Send(frame) {
		c.logger.DebugContext(ctx, "frame dropped", "type", outputType)
	}

	return nil
}

func (c controller) writeError(ctx context.Context, cl *client, message string) {
	if err := c.writeOutput(ctx, cl, "error", map[string]string{"message": message}); err != nil {
		c.logger.ErrorContext(ctx, "failed to write error", "error", err)
	}
}

// broadcast sends a new frame to the room, skipping exclude when set.
func (c controller) broadcast(ctx context.Context, roomCode string, exclude registry.Conn, outputType string, payload any) error {
	frame, err := newFrame(outputType, payload)
	if err != nil {
		return err
	}

	c.roomService.Broadcast(ctx, &roomService.BroadcastParams{
		RoomCode: roomCode,
		Frame:    frame,
		Exclude:  exclude,
	})

	return nil
}
