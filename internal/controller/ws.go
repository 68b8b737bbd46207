package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sharetube/watchparty/internal/registry"
	roomService "github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	ctx := r.Context()
	cl := newClient(conn, &c.cfg, c.logger)
	c.logger.InfoContext(ctx, "websocket connected", "remote_addr", r.RemoteAddr)

	go cl.writePump()
	go func() {
		select {
		case <-ctx.Done():
			cl.Close()
		case <-cl.done:
		}
	}()

	cl.readPump(ctx, c.cfg.MaxMessageSize, func(ctx context.Context, data []byte) {
		c.handleFrame(ctx, cl, data)
	})

	cl.Close()
	c.disconnect(context.WithoutCancel(ctx), cl)
}

func (c controller) handleFrame(ctx context.Context, cl *client, data []byte) {
	err := c.wsmux.Dispatch(ctx, cl, data)
	switch {
	case err == nil:
	case errors.Is(err, wsrouter.ErrInvalidMessage), errors.Is(err, wsrouter.ErrInvalidPayload):
		c.logger.InfoContext(ctx, "invalid websocket message", "error", err)
		c.writeError(ctx, cl, errInvalidMessageFormat)
	case errors.Is(err, wsrouter.ErrUnknownType):
		c.logger.InfoContext(ctx, "ignoring websocket message", "error", err)
	default:
		c.logger.ErrorContext(ctx, "failed to handle websocket message", "error", err)
	}
}

// disconnect removes cl from its room and tells the remaining members.
func (c controller) disconnect(ctx context.Context, cl *client) {
	disconnectResp, err := c.roomService.DisconnectMember(ctx, cl)
	if errors.Is(err, roomService.ErrNotJoined) {
		c.logger.DebugContext(ctx, "websocket disconnected")
		return
	}

	ctx = ctxlogger.AppendCtx(ctx, slog.String("room_code", disconnectResp.RoomCode))
	ctx = ctxlogger.AppendCtx(ctx, slog.String("user_id", disconnectResp.Member.UserID))
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to disconnect member", "error", err)
	}

	if disconnectResp.IsRoomDeleted {
		c.logger.InfoContext(ctx, "room deleted")
		return
	}

	if err := c.broadcast(ctx, disconnectResp.RoomCode, nil, "user_disconnect", registry.Member{
		UserID:   disconnectResp.Member.UserID,
		Username: disconnectResp.Member.Username,
		IsHost:   disconnectResp.Member.IsHost,
	}); err != nil {
		c.logger.ErrorContext(ctx, "failed to broadcast user disconnect", "error", err)
	}
	c.logger.InfoContext(ctx, "member disconnected")
}
