package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sharetube/watchparty/internal/controller"
	"github.com/sharetube/watchparty/internal/registry"
	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/sharetube/watchparty/internal/repository/room/inmemory"
	roomRedis "github.com/sharetube/watchparty/internal/repository/room/redis"
	roomService "github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/randstr"
	"github.com/sharetube/watchparty/pkg/redisclient"
	"github.com/sharetube/watchparty/pkg/validator"
	"golang.org/x/sync/errgroup"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"

	roomCodeLength  = 6
	writeWait       = 10 * time.Second
	shutdownTimeout = 30 * time.Second
)

type AppConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port" validate:"gte=0,lte=65535"`
	LogLevel       string        `json:"log_level" validate:"required"`
	Storage        string        `json:"storage" validate:"oneof=memory redis"`
	RoomCapacity   int           `json:"room_capacity" validate:"gte=1"`
	HistoryLimit   int           `json:"history_limit" validate:"gte=1"`
	SendBuffer     int           `json:"send_buffer" validate:"gte=1"`
	MaxMessageSize int64         `json:"max_message_size" validate:"gte=1024"`
	PongWait       time.Duration `json:"pong_wait" validate:"gte=1s"`
	RoomTTL        time.Duration `json:"room_ttl" validate:"gte=1s"`
	RedisHost      string        `json:"redis_host" validate:"required_if=Storage redis"`
	RedisPort      int           `json:"redis_port" validate:"required_if=Storage redis,lte=65535"`
	RedisPassword  string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if errs, ok := validator.NewValidator().Validate(cfg); !ok {
		return validator.Join(errs)
	}

	return nil
}

type iRoomRepo interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.Room, error)
	GetRoom(context.Context, string) (room.Room, error)
	UpdateRoom(context.Context, *room.UpdateRoomParams) (room.Room, error)
	DeleteRoom(context.Context, string) (bool, error)
	AddUserToRoom(context.Context, *room.AddUserToRoomParams) (room.Room, error)
	CreateMessage(context.Context, *room.CreateMessageParams) (room.Message, error)
	GetMessages(ctx context.Context, code string, limit int) ([]room.Message, error)
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

// newRoomRepo returns the configured storage and a function releasing its
// resources.
func newRoomRepo(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (iRoomRepo, func(), error) {
	switch cfg.Storage {
	case StorageRedis:
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
		}

		return roomRedis.NewRepo(rc, logger, cfg.RoomTTL), func() { rc.Close() }, nil
	case StorageMemory:
		return inmemory.NewRepo(logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

// newHandler wires storage, registry, service and controller into the HTTP
// handler serving the REST api and websocket endpoint.
func newHandler(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (http.Handler, func(), error) {
	roomRepo, closeRepo, err := newRoomRepo(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	reg := registry.New(roomRepo, cfg.RoomCapacity, logger)
	service := roomService.NewService(roomRepo, reg, randstr.New(randstr.Base36Upper), &roomService.Config{
		HistoryLimit:   cfg.HistoryLimit,
		RoomCodeLength: roomCodeLength,
	}, logger)
	ctrl := controller.NewController(service, &controller.Config{
		SendBufferSize: cfg.SendBuffer,
		MaxMessageSize: cfg.MaxMessageSize,
		PongWait:       cfg.PongWait,
		WriteWait:      writeWait,
	}, logger)

	return ctrl.GetMux(), closeRepo, nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	handler, closeRepo, err := newHandler(gCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	// websocket connections outlive Shutdown, they watch the base context
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: handler,
		BaseContext: func(net.Listener) context.Context {
			return gCtx
		},
	}

	g.Go(func() error {
		logger.InfoContext(gCtx, "starting server", "address", server.Addr, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gCtx), shutdownTimeout)
		defer cancel()

		logger.InfoContext(shutdownCtx, "shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}

		return nil
	})

	return g.Wait()
}
