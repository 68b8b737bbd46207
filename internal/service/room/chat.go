package room

import (
	"context"
	"fmt"

	"github.com/sharetube/watchparty/internal/repository/room"
)

type SendChatMessageParams struct {
	RoomCode string
	UserID   string
	Username string
	Content  string
	Type     string
}

func (s service) SendChatMessage(ctx context.Context, params *SendChatMessageParams) (room.Message, error) {
	messageType := params.Type
	if messageType == "" {
		messageType = room.MessageTypeText
	}

	message, err := s.roomRepo.CreateMessage(ctx, &room.CreateMessageParams{
		RoomCode: params.RoomCode,
		UserID:   params.UserID,
		Username: params.Username,
		Content:  params.Content,
		Type:     messageType,
	})
	if err != nil {
		return room.Message{}, fmt.Errorf("failed to create message: %w", err)
	}

	return message, nil
}
