package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-tutoring-be/internal/config"
	"ai-tutoring-be/internal/controller"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/pkg/serverutils"
	"ai-tutoring-be/internal/repository/cache"
	"ai-tutoring-be/internal/repository/memory"
	"ai-tutoring-be/internal/repository/unitofwork"
	"ai-tutoring-be/internal/service"
	"ai-tutoring-be/pkg/document"
	"ai-tutoring-be/pkg/embedding"
	"ai-tutoring-be/pkg/llm/factory"
	"ai-tutoring-be/pkg/session"

	pktNats "ai-tutoring-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController     controller.IDocumentController
	ConversationController controller.IConversationController
	SessionController      controller.ISessionController

	AuthMiddleware fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	SessionManager  *session.Manager

	Logger logger.ILogger

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	rdb     *redis.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	autosaveLogger := logger.NewIsolatedLogger(cfg.Session.AutosaveLogPath)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	// 3. Infrastructure
	var eventPublisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
	}

	rdb, stateCache := newStateCache(cfg)

	// 4. AI providers (both optional)
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EnableEmbeddings && cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		log.Printf("[INFO] Chunk embeddings disabled")
	}

	processorOpts := []document.ProcessorOption{}
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	if llmProvider != nil {
		processorOpts = append(processorOpts, document.WithSummarizer(document.NewLLMSummarizer(llmProvider)))
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}
	processor := document.NewProcessor(sysLogger, processorOpts...)

	// 5. Session Manager
	persistence := service.NewSessionPersistence(uowFactory, stateCache, sysLogger)
	sessionManager := session.NewManager(
		memory.NewSessionRepository(),
		persistence,
		sysLogger,
		session.WithAutosaveInterval(cfg.Session.AutosaveInterval),
		session.WithAutosaveLogger(autosaveLogger),
	)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.ChunkIndexTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.ChunkIndexTopic,
		uowFactory,
		embeddingProvider,
		sysLogger,
	)

	documentService := service.NewDocumentService(uowFactory, processor, publisherService, eventPublisher, sysLogger)
	conversationService := service.NewConversationService(uowFactory)
	sessionService := service.NewSessionService(uowFactory, sessionManager, persistence, eventPublisher, sysLogger)

	// 7. Controllers
	return &Container{
		DocumentController:     controller.NewDocumentController(documentService),
		ConversationController: controller.NewConversationController(conversationService),
		SessionController:      controller.NewSessionController(sessionService),
		AuthMiddleware:         serverutils.NewJwtMiddleware(cfg.Keys.JwtSecret),

		ConsumerService: consumerService,
		SessionManager:  sessionManager,
		Logger:          sysLogger,

		pubSub:  pubSub,
		natsPub: natsPub,
		rdb:     rdb,
	}
}

// newStateCache returns nil for both values when Redis is not configured or unreachable.
func newStateCache(cfg *config.Config) (*redis.Client, service.StateCache) {
	if cfg.App.RedisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (state cache disabled)", err)
		_ = rdb.Close()
		return nil, nil
	}
	return rdb, cache.NewConversationStateCache(rdb, cfg.Session.StateCacheTTL)
}

// Shutdown stops the session manager and closes the transports.
func (c *Container) Shutdown() {
	c.SessionManager.Destroy()

	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close pubsub: %v", err)
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.Logger.Sync()
}
