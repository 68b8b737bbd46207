package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/watchparty/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	storage = configVar[string]{
		envKey:       "SERVER_STORAGE",
		flagKey:      "storage",
		defaultValue: app.StorageMemory,
		usage:        "Room storage, memory or redis",
	}
	roomCapacity = configVar[int]{
		envKey:       "SERVER_ROOM_CAPACITY",
		flagKey:      "room-capacity",
		defaultValue: 2,
		usage:        "Maximum number of distinct users in a room",
	}
	historyLimit = configVar[int]{
		envKey:       "SERVER_HISTORY_LIMIT",
		flagKey:      "history-limit",
		defaultValue: 20,
		usage:        "Number of chat messages sent to a joining user",
	}
	sendBuffer = configVar[int]{
		envKey:       "SERVER_SEND_BUFFER",
		flagKey:      "send-buffer",
		defaultValue: 256,
		usage:        "Outgoing frames queued per connection before it is dropped",
	}
	maxMessageSize = configVar[int64]{
		envKey:       "SERVER_MAX_MESSAGE_SIZE",
		flagKey:      "max-message-size",
		defaultValue: 10 << 20,
		usage:        "Maximum incoming websocket frame size in bytes",
	}
	pongWait = configVar[time.Duration]{
		envKey:       "SERVER_PONG_WAIT",
		flagKey:      "pong-wait",
		defaultValue: 60 * time.Second,
		usage:        "Time a silent connection is kept open",
	}
	roomTTL = configVar[time.Duration]{
		envKey:       "SERVER_ROOM_TTL",
		flagKey:      "room-ttl",
		defaultValue: 24 * time.Hour,
		usage:        "Expiration of rooms in redis storage",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.String(storage.flagKey, storage.defaultValue, storage.usage)
	pflag.Int(roomCapacity.flagKey, roomCapacity.defaultValue, roomCapacity.usage)
	pflag.Int(historyLimit.flagKey, historyLimit.defaultValue, historyLimit.usage)
	pflag.Int(sendBuffer.flagKey, sendBuffer.defaultValue, sendBuffer.usage)
	pflag.Int64(maxMessageSize.flagKey, maxMessageSize.defaultValue, maxMessageSize.usage)
	pflag.Duration(pongWait.flagKey, pongWait.defaultValue, pongWait.usage)
	pflag.Duration(roomTTL.flagKey, roomTTL.defaultValue, roomTTL.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(host)
	bind(port)
	bind(logLevel)
	bind(storage)
	bind(roomCapacity)
	bind(historyLimit)
	bind(sendBuffer)
	bind(maxMessageSize)
	bind(pongWait)
	bind(roomTTL)
	bind(redisHost)
	bind(redisPort)
	bind(redisPassword)

	return &app.AppConfig{
		Host:           viper.GetString(host.flagKey),
		Port:           viper.GetInt(port.flagKey),
		LogLevel:       viper.GetString(logLevel.flagKey),
		Storage:        viper.GetString(storage.flagKey),
		RoomCapacity:   viper.GetInt(roomCapacity.flagKey),
		HistoryLimit:   viper.GetInt(historyLimit.flagKey),
		SendBuffer:     viper.GetInt(sendBuffer.flagKey),
		MaxMessageSize: viper.GetInt64(maxMessageSize.flagKey),
		PongWait:       viper.GetDuration(pongWait.flagKey),
		RoomTTL:        viper.GetDuration(roomTTL.flagKey),
		RedisHost:      viper.GetString(redisHost.flagKey),
		RedisPort:      viper.GetInt(redisPort.flagKey),
		RedisPassword:  viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
