package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/voxdial/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/voxdial/internal/adapter/telephony"
	"github.com/seu-repo/voxdial/internal/adapter/tts"
	"github.com/seu-repo/voxdial/internal/ports"
	"github.com/seu-repo/voxdial/internal/service/call"
	"github.com/seu-repo/voxdial/internal/service/health"
	"github.com/seu-repo/voxdial/internal/store"
	"github.com/seu-repo/voxdial/pkg/config"
)

const (
	serviceName    = "voxdial"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting voxdial",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	baseURL := strings.TrimRight(cfg.App.BaseURL, "/")

	// 3. Initialize Stores
	contexts := store.NewContextStore(cfg.Retention.ContextTTL, cfg.Retention.SweepInterval, logger)
	defer contexts.Close()

	var audioCache ports.AudioCache
	switch cfg.Cache.Backend {
	case "redis":
		audioCache, err = store.NewRedisAudioCache(cfg.Redis.URL, cfg.Cache.AudioTTL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
	default:
		audioCache = store.NewMemoryAudioCache(cfg.Cache.AudioTTL, logger)
	}
	defer audioCache.Close()

	// 4. Initialize Provider Adapters
	twilioProvider := telephony.NewTwilioProvider(telephony.Config{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		FromNumber: cfg.Twilio.FromNumber,
		APIBaseURL: cfg.Twilio.APIBaseURL,
	}, logger)

	synthesizer := tts.NewElevenLabsClient(tts.Config{
		APIKey:     cfg.ElevenLabs.APIKey,
		VoiceID:    cfg.ElevenLabs.VoiceID,
		APIBaseURL: cfg.ElevenLabs.APIBaseURL,
	}, logger)

	// 5. Initialize Services (Business Logic Layer)
	policy := call.NewDialoguePolicy(cfg.Dialogue.Mode, cfg.Dialogue.OpenAIAPIKey, cfg.Dialogue.Model, logger)
	classifier := call.NewOpenAIClassifier(cfg.Dialogue.OpenAIAPIKey, cfg.Dialogue.Model, logger)
	callService := call.NewService(twilioProvider, contexts, baseURL+"/webhook/voice", cfg.Twilio.TestNumber, logger)

	// 6. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.CORS))

	// Health Check Endpoints
	healthService := health.NewService(&health.Config{
		Version:             serviceVersion,
		AudioCache:          audioCache,
		TelephonyConfigured: cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" && cfg.Twilio.FromNumber != "",
		SynthesisConfigured: cfg.ElevenLabs.APIKey != "" && cfg.ElevenLabs.VoiceID != "",
	}, logger)
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			handler(c.Context())
			return nil
		})
	}

	// Webhook routes (invoked by the telephony provider)
	webhookHandler := handlers.NewWebhookHandler(contexts, audioCache, synthesizer, policy, baseURL, logger)
	app.Post("/webhook/voice", webhookHandler.HandleVoice)
	app.Get("/webhook/audio", webhookHandler.ServeAudio)

	// API v1 Routes
	v1 := app.Group("/api/v1")

	callHandler := handlers.NewCallHandler(callService, twilioProvider, contexts, classifier, logger)
	v1.Post("/calls", callHandler.PlaceCall)
	v1.Get("/calls/:sid/status", callHandler.GetStatus)
	v1.Get("/calls/:sid/transcript", callHandler.GetTranscript)
	v1.Get("/session", callHandler.GetSession)
	v1.Post("/session/reset", callHandler.ResetSession)

	// 7. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 8. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
