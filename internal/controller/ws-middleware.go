package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

type wsHandlerFunc = wsrouter.HandlerFunc[*client]

type wsMiddleware = wsrouter.Middleware[*client]

func (c controller) wsRequestIdMw() wsMiddleware {
	return func(next wsHandlerFunc) wsHandlerFunc {
		return func(ctx context.Context, cl *client, payload json.RawMessage) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("ws_request_id", uuid.NewString()))
			return next(ctx, cl, payload)
		}
	}
}

func (c controller) loggerWSMw() wsMiddleware {
	return func(next wsHandlerFunc) wsHandlerFunc {
		return func(ctx context.Context, cl *client, payload json.RawMessage) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", wsrouter.GetMessageTypeFromCtx(ctx)))
			c.logger.DebugContext(ctx, "websocket message received", "payload_size", len(payload))

			start := time.Now()
			err := next(ctx, cl, payload)

			c.logger.InfoContext(ctx, "websocket message handled",
				"processing_time_us", time.Since(start).Microseconds(),
				"goroutines", runtime.NumGoroutine(),
			)

			return err
		}
	}
}

// joinedOnlyMw silently ignores messages of connections that have not joined
// a room yet.
func (c controller) joinedOnlyMw() wsMiddleware {
	return func(next wsHandlerFunc) wsHandlerFunc {
		return func(ctx context.Context, cl *client, payload json.RawMessage) error {
			if !cl.isJoined() {
				c.logger.DebugContext(ctx, "ignoring message of unjoined connection")
				return nil
			}

			member := cl.getMember()
			ctx = ctxlogger.AppendCtx(ctx, slog.String("room_code", cl.getRoomCode()))
			ctx = ctxlogger.AppendCtx(ctx, slog.String("user_id", member.UserID))

			return next(ctx, cl, payload)
		}
	}
}

func (c controller) unjoinedOnlyMw() wsMiddleware {
	return func(next wsHandlerFunc) wsHandlerFunc {
		return func(ctx context.Context, cl *client, payload json.RawMessage) error {
			if cl.isJoined() {
				c.logger.InfoContext(ctx, "ignoring join of already joined connection", "room_code", cl.getRoomCode())
				return nil
			}

			return next(ctx, cl, payload)
		}
	}
}

// dropInvalidPayloadMw logs and drops payloads that cannot be decoded or fail
// validation instead of reporting them to the sender.
func (c controller) dropInvalidPayloadMw() wsMiddleware {
	return func(next wsHandlerFunc) wsHandlerFunc {
		return func(ctx context.Context, cl *client, payload json.RawMessage) error {
			err := next(ctx, cl, payload)
			if errors.Is(err, wsrouter.ErrInvalidPayload) || errors.Is(err, wsrouter.ErrInvalidMessage) {
				c.logger.WarnContext(ctx, "dropping invalid payload", "error", err)
				return nil
			}

			return err
		}
	}
}
