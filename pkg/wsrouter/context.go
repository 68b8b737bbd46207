package wsrouter

import "context"

type ctxKey string

const (
	messageTypeKey ctxKey = "message_type"
	rawMessageKey  ctxKey = "raw_message"
)

func GetMessageTypeFromCtx(ctx context.Context) string {
	messageType, ok := ctx.Value(messageTypeKey).(string)
	if !ok {
		return ""
	}

	return messageType
}

// GetRawMessageFromCtx returns the frame being dispatched exactly as it was
// received.
func GetRawMessageFromCtx(ctx context.Context) []byte {
	raw, ok := ctx.Value(rawMessageKey).([]byte)
	if !ok {
		return nil
	}

	return raw
}
