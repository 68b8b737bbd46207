package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchparty/internal/repository/room"
)

func (r repo) getMessagesKey(roomCode string) string {
	return "room:" + roomCode + ":messages"
}

func (r repo) CreateMessage(ctx context.Context, params *room.CreateMessageParams) (room.Message, error) {
	r.logger.DebugContext(ctx, "called", "room_code", params.RoomCode, "user_id", params.UserID)
	id, err := r.rc.Incr(ctx, messageIDCounterKey).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Message{}, fmt.Errorf("failed to allocate message id: %w", err)
	}

	message := room.Message{
		ID:        id,
		RoomCode:  params.RoomCode,
		UserID:    params.UserID,
		Username:  params.Username,
		Content:   params.Content,
		Type:      params.Type,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(message)
	if err != nil {
		return room.Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}

	messagesKey := r.getMessagesKey(params.RoomCode)
	pipe := r.rc.TxPipeline()
	pipe.ZAdd(ctx, messagesKey, redis.Z{Score: float64(id), Member: data})
	pipe.Expire(ctx, messagesKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Message{}, fmt.Errorf("failed to save message: %w", err)
	}

	return message, nil
}

func (r repo) GetMessages(ctx context.Context, roomCode string, limit int) ([]room.Message, error) {
	r.logger.DebugContext(ctx, "called", "room_code", roomCode, "limit", limit)
	if limit <= 0 {
		limit = room.DefaultMessagesLimit
	}

	raw, err := r.rc.ZRange(ctx, r.getMessagesKey(roomCode), int64(-limit), -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	messages := make([]room.Message, 0, len(raw))
	for _, item := range raw {
		var message room.Message
		if err := json.Unmarshal([]byte(item), &message); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}

		messages = append(messages, message)
	}

	return messages, nil
}
