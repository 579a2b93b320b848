package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"payrouter-backend/internal/config"
	infraCache "payrouter-backend/internal/infrastructure/cache"
	"payrouter-backend/internal/infrastructure/database"
	"payrouter-backend/pkg/cache"

	"payrouter-backend/internal/domains/payment/handler"
	"payrouter-backend/internal/domains/payment/provider"
	"payrouter-backend/internal/domains/payment/provider/daimo"
	"payrouter-backend/internal/domains/payment/provider/lumen"
	repo "payrouter-backend/internal/domains/payment/repository"
	"payrouter-backend/internal/domains/payment/router"
	"payrouter-backend/internal/domains/payment/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every dependency of the application and is the root
// of the dependency graph.
type Container struct {
	// Infrastructure (singletons, shared across domains)
	Config *config.Config
	DB     *database.PostgresDB
	Redis  *infraCache.RedisClient
	Cache  cache.Cache

	// Provider adapters and routing
	Registry    *provider.Registry
	DaimoClient *daimo.Client
	LumenClient *lumen.Client
	Router      *router.Router
	RetryPolicy provider.RetryPolicy

	// Repositories
	PaymentRepo repo.PaymentRepoInterface
	WebhookRepo repo.WebhookRepoInterface

	// Services
	PaymentService  service.PaymentService
	WebhookService  service.WebhookService
	WithdrawTrigger service.WithdrawTrigger

	// HTTP handlers
	PaymentHandler  *handler.PaymentHandler
	WebhookHandler  *handler.WebhookHandler
	ProviderHandler *handler.ProviderHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer initializes the whole dependency graph, in dependency
// order: config, infrastructure, providers, repositories, services,
// handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// STEP 1: configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// STEP 2: database
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("✅ Database connected")

	// STEP 3: redis
	redisClient := infraCache.NewRedisClient(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err := redisClient.Connect(context.Background()); err != nil {
		// Redis is a soft dependency: webhook dedup markers and health
		// snapshots degrade gracefully without it.
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}
	c.Redis = redisClient
	c.Cache = infraCache.NewRedisCache(redisClient.Client)

	// STEP 4: provider adapters
	if err := c.initProviders(); err != nil {
		return nil, fmt.Errorf("failed to init providers: %w", err)
	}
	log.Println("✅ Providers registered")

	// STEP 5: repositories
	c.initRepositories()

	// STEP 6: services
	c.initServices()

	// STEP 7: handlers
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

// initProviders builds the enabled adapters and registers them. The
// registry maps each supported chain to its adapter; the default
// provider is the one with the lowest priority value.
func (c *Container) initProviders() error {
	cfg := c.Config
	c.Registry = provider.NewRegistry()
	c.RetryPolicy = provider.RetryPolicy{
		MaxAttempts: cfg.Routing.MaxRetries,
		BaseDelay:   cfg.Routing.RetryBaseDelay,
	}

	if cfg.Daimo.Enabled {
		client, err := daimo.NewClient(daimo.NewConfig(
			cfg.Daimo.BaseURL,
			cfg.Daimo.APIKey,
			cfg.Daimo.Timeout,
			cfg.Daimo.Retries,
			cfg.Daimo.Priority,
			cfg.Daimo.WebhookSecret,
		))
		if err != nil {
			return fmt.Errorf("daimo client: %w", err)
		}
		c.DaimoClient = client
		c.Registry.Register(client)
	}

	if cfg.Lumen.Enabled {
		client, err := lumen.NewClient(lumen.NewConfig(
			cfg.Lumen.BaseURL,
			cfg.Lumen.APIKey,
			cfg.Lumen.Timeout,
			cfg.Lumen.Retries,
			cfg.Lumen.Priority,
			cfg.Lumen.WebhookSecret,
		))
		if err != nil {
			return fmt.Errorf("lumen client: %w", err)
		}
		c.LumenClient = client
		c.Registry.Register(client)
	}

	// Static routing rules re-point chain mappings after registration;
	// the configured default wins over priority when it names a
	// registered adapter.
	rules := make([]provider.RoutingRule, 0, len(cfg.Routing.Rules))
	for _, rule := range cfg.Routing.Rules {
		rules = append(rules, provider.RoutingRule{
			ChainID:      rule.ChainID,
			ProviderName: rule.Provider,
			Enabled:      true,
		})
	}
	c.Registry.SeedRules(rules)
	c.Registry.SetDefault(cfg.Routing.DefaultProvider)

	c.Router = router.NewRouter(c.Registry, c.RetryPolicy, router.Options{
		EnableFallback: cfg.Routing.EnableFallback,
		Rules:          rules,
	})
	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.PaymentRepo = repo.NewPaymentRepository(pool)
	c.WebhookRepo = repo.NewWebhookRepository(pool)
}

func (c *Container) initServices() {
	c.WithdrawTrigger = service.NewLoggingWithdrawTrigger()

	c.PaymentService = service.NewPaymentService(
		c.PaymentRepo,
		c.Router,
		c.Config.Routing.StaleWindow,
	)

	c.WebhookService = service.NewWebhookService(
		c.PaymentRepo,
		c.WebhookRepo,
		c.Cache,
		c.WithdrawTrigger,
		c.RetryPolicy,
	)
}

func (c *Container) initHandlers() {
	c.PaymentHandler = handler.NewPaymentHandler(c.PaymentService)
	c.WebhookHandler = handler.NewWebhookHandler(c.WebhookService, c.DaimoClient, c.LumenClient)
	c.ProviderHandler = handler.NewProviderHandler(c.Registry, c.DB, c.Redis)
}

// Cleanup releases resources on shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.DB != nil {
		c.DB.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
