package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/registry"
	"github.com/sharetube/watchparty/internal/repository/room"
	roomService "github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/validator"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context) (roomService.CreateRoomResponse, error)
	GetRoom(context.Context, string) (roomService.GetRoomResponse, error)
	JoinRoom(context.Context, *roomService.JoinRoomParams) (roomService.JoinRoomResponse, error)
	DisconnectMember(context.Context, registry.Conn) (roomService.DisconnectMemberResponse, error)
	UpdatePlayerState(context.Context, *roomService.UpdatePlayerStateParams) (room.Room, error)
	ControlPlayback(context.Context, *roomService.ControlPlaybackParams) (room.Room, error)
	SendChatMessage(context.Context, *roomService.SendChatMessageParams) (room.Message, error)
	Broadcast(context.Context, *roomService.BroadcastParams) int
}

type Config struct {
	SendBufferSize int
	MaxMessageSize int64
	PongWait       time.Duration
	WriteWait      time.Duration
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter[*client]
	cfg         Config
	logger      *slog.Logger
}

func NewController(roomService iRoomService, cfg *Config, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		cfg:         *cfg,
		logger:      logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
