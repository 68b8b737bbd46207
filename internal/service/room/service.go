package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sharetube/watchparty/internal/registry"
	"github.com/sharetube/watchparty/internal/repository/room"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNotJoined    = errors.New("connection has not joined a room")
)

type iRoomRepo interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.Room, error)
	GetRoom(context.Context, string) (room.Room, error)
	UpdateRoom(context.Context, *room.UpdateRoomParams) (room.Room, error)
	AddUserToRoom(context.Context, *room.AddUserToRoomParams) (room.Room, error)
	CreateMessage(context.Context, *room.CreateMessageParams) (room.Message, error)
	GetMessages(ctx context.Context, code string, limit int) ([]room.Message, error)
}

type iRegistry interface {
	Register(context.Context, *registry.RegisterParams) (registry.RegisterResponse, error)
	Unregister(context.Context, registry.Conn) (registry.UnregisterResponse, error)
	Broadcast(ctx context.Context, roomCode string, frame []byte, exclude registry.Conn) int
	Members(roomCode string) []registry.Member
}

type iGenerator interface {
	GenerateRandomString(length int) (string, error)
}

type Config struct {
	// HistoryLimit is the number of chat messages replayed to a joining user.
	HistoryLimit   int
	RoomCodeLength int
}

type service struct {
	roomRepo     iRoomRepo
	registry     iRegistry
	generator    iGenerator
	historyLimit int
	codeLength   int
	logger       *slog.Logger
}

func NewService(roomRepo iRoomRepo, registry iRegistry, generator iGenerator, cfg *Config, logger *slog.Logger) *service {
	return &service{
		roomRepo:     roomRepo,
		registry:     registry,
		generator:    generator,
		historyLimit: cfg.HistoryLimit,
		codeLength:   cfg.RoomCodeLength,
		logger:       logger,
	}
}

type BroadcastParams struct {
	RoomCode string
	Frame    []byte
	Exclude  registry.Conn
}

func (s service) Broadcast(ctx context.Context, params *BroadcastParams) int {
	return s.registry.Broadcast(ctx, params.RoomCode, params.Frame, params.Exclude)
}
