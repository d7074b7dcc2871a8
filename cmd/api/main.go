package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-recorder/pkg/validator"

	"github.com/johnquangdev/meeting-recorder/internal/adapter/handler"
	"github.com/johnquangdev/meeting-recorder/internal/adapter/repository"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/external/oauth"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/external/recordbot"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/external/tracker"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/botctl"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/connect"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/insights"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/tokenvault"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/tracksync"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/transcriptfetch"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/webhookproc"
	"github.com/johnquangdev/meeting-recorder/pkg/config"
	"github.com/johnquangdev/meeting-recorder/pkg/jwt"
	"github.com/johnquangdev/meeting-recorder/pkg/llm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	log.Println("🔄 Running schema migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Snapshot store: Redis in normal operation, in-memory in sandbox mode so
	// the sandbox runs without external services.
	var snapshots cache.SnapshotStore
	if cfg.Recorder.Sandbox {
		log.Println("📦 Using in-memory snapshot store (sandbox mode)")
		snapshots = cache.NewMemorySnapshotStore(cfg.Redis.SnapshotTTL)
	} else {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		snapshots = cache.NewRedisSnapshotStore(redisClient, cfg.Redis.SnapshotTTL)
	}

	// Object storage is best-effort: transcripts are archived when available
	// but retrieval never depends on it.
	var archive storage.ArtifactStore
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Printf("⚠️  Object storage unavailable, transcript archiving disabled: %v", err)
	} else {
		log.Println("✅ Object storage connected")
		archive = minioClient
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)
	syncRecordRepo := repository.NewSyncRecordRepository(db)

	// Initialize token vault
	log.Println("🔐 Initializing token vault...")
	cipher := tokenvault.NewCipher(cfg.Vault.EncryptionKey)
	trackerOAuth := oauth.NewTrackerConfig(
		cfg.Tracker.ClientID,
		cfg.Tracker.ClientSecret,
		cfg.Tracker.AuthURL,
		cfg.Tracker.TokenURL,
		cfg.Tracker.RedirectURL,
	)
	oauthConfigs := map[entities.IntegrationProvider]*oauth2.Config{
		entities.ProviderTracker: trackerOAuth,
	}
	vault := tokenvault.NewService(integrationRepo, cipher, oauthConfigs, cfg.Vault.RefreshMargin, logger)

	// Initialize recording bot provider. The sandbox feeds its events into the
	// same processing path the webhook endpoint uses; the processor variable
	// is captured before assignment because no event fires until a bot is
	// dispatched, long after wiring completes.
	var processor *webhookproc.Service
	var provider recordbot.Client
	if cfg.Recorder.Sandbox {
		log.Println("🤖 Recording provider running in SANDBOX mode (no real provider needed)")
		provider = recordbot.NewSandbox(func(event string, data map[string]interface{}) {
			payload, err := json.Marshal(data)
			if err != nil {
				logger.Error("Sandbox event payload marshal failed", zap.Error(err))
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			ev, err := processor.Ingest(ctx, "sandbox", event, payload)
			if err != nil {
				logger.Error("Sandbox event ingest failed", zap.String("event", event), zap.Error(err))
				return
			}
			processor.ProcessAsync(ev)
		})
	} else {
		log.Printf("🤖 Recording provider: %s", cfg.Recorder.BaseURL)
		provider = recordbot.NewHTTPClient(cfg.Recorder.BaseURL, cfg.Recorder.APIKey)
	}

	// Initialize insight analyzer
	var analyzer insights.Analyzer
	groqClient := llm.NewGroqClient(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.Model)
	if groqClient.Configured() {
		log.Println("🧠 LLM analyzer enabled")
		analyzer = groqClient
	} else {
		log.Println("🧠 LLM analyzer not configured, using heuristic extraction only")
	}
	insightSvc := insights.NewService(analyzer, logger)

	// Initialize transcript retrieval and tracker sync
	fetcher := transcriptfetch.NewService(meetingRepo, provider, snapshots, archive, logger)

	var syncSvc *tracksync.Service
	if cfg.Tracker.BaseURL != "" {
		log.Printf("📤 Tracker: %s", cfg.Tracker.BaseURL)
		trackerClient := tracker.NewHTTPClient(cfg.Tracker.BaseURL)
		syncSvc = tracksync.NewService(vault, trackerClient, syncRecordRepo, logger)
	} else {
		log.Println("📤 Tracker not configured, sync disabled")
	}

	// Initialize the insight pipeline and webhook processing
	pipelineSvc := pipeline.NewService(meetingRepo, fetcher, insightSvc, syncSvc, cfg.Tracker.DefaultProjectKey, logger)
	processor = webhookproc.NewService(meetingRepo, eventRepo, snapshots, pipelineSvc, logger)

	// Redelivery worker picks up events whose first processing attempt failed
	worker := webhookproc.NewRedeliveryWorker(processor, eventRepo, 30*time.Second, 20, logger)
	worker.Start()

	// Initialize bot control
	botSvc := botctl.NewService(meetingRepo, provider, logger)

	// Setup routes
	log.Println("🛣️  Setting up routes...")
	verifier := jwt.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Leeway)
	webhookHandler := handler.NewWebhookHandler(processor, cfg.Recorder.WebhookSecret, logger)
	meetingHandler := handler.NewMeetingHandler(meetingRepo, botSvc, pipelineSvc, syncSvc, cfg.Tracker.DefaultProjectKey, logger)

	// Tracker connect flow is exposed only when an OAuth app is configured
	var integrationHandler *handler.IntegrationHandler
	if cfg.Tracker.ClientID != "" && cfg.Tracker.AuthURL != "" {
		log.Println("🔗 Tracker OAuth connect flow enabled")
		states := oauth.NewStateManager(15 * time.Minute)
		connectSvc := connect.NewService(oauth.NewProvider(trackerOAuth), states, vault, logger)
		integrationHandler = handler.NewIntegrationHandler(connectSvc, logger)
	}

	handler.RegisterRoutes(e, webhookHandler, meetingHandler, integrationHandler, verifier)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	worker.Stop()
	pipelineSvc.Wait()

	log.Println("✅ Server stopped gracefully")
}
