package bootstrap

import (
	"context"
	"log"

	"smart-dpr-be/internal/config"
	"smart-dpr-be/internal/controller"
	"smart-dpr-be/internal/handler"
	"smart-dpr-be/internal/history"
	"smart-dpr-be/internal/pkg/logger"
	"smart-dpr-be/internal/repository/implementation"
	"smart-dpr-be/internal/service"
	"smart-dpr-be/internal/substrate"
	"smart-dpr-be/internal/websocket"
	"smart-dpr-be/pkg/llm/factory"
	"smart-dpr-be/pkg/sheets"

	pktNats "smart-dpr-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	HistoryController controller.IHistoryController
	ChatController    controller.IChatController
	SheetController   controller.ISheetController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS (audit stream; optional)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// Redis is only dialed when something needs it (history backend or
	// websocket fanout across instances).
	var rdb *redis.Client
	if cfg.History.Backend == "redis" || cfg.App.Environment == "production" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// History substrate per config
	var sub substrate.Substrate
	switch cfg.History.Backend {
	case "redis":
		sub = substrate.NewRedisSubstrate(rdb)
		log.Printf("[INFO] Using history backend: REDIS")
	case "postgres":
		sub = substrate.NewGormSubstrate(db)
		log.Printf("[INFO] Using history backend: POSTGRES")
	default:
		sub = substrate.NewMemorySubstrate()
		log.Printf("[INFO] Using history backend: MEMORY")
	}
	historyManager := history.NewManager(sub, sysLogger)

	// LLM provider per config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	sheetsClient := sheets.NewClient()

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(cfg.History.TopicName, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.History.TopicName, wsHub, wsLogger)

	userRepo := implementation.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, cfg, sysLogger)
	historyService := service.NewHistoryService(historyManager, publisherService, sysLogger)
	chatService := service.NewChatService(
		authService,
		sheetsClient,
		llmProvider,
		historyManager,
		publisherService,
		natsPub,
		sysLogger,
	)
	sheetService := service.NewSheetService(authService, sheetsClient)

	// Handler
	notifHandler := handler.NewNotificationHandler(wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		AuthController:      controller.NewAuthController(authService),
		HistoryController:   controller.NewHistoryController(historyService),
		ChatController:      controller.NewChatController(chatService),
		SheetController:     controller.NewSheetController(sheetService),

		ConsumerService: consumerService,
	}
}
