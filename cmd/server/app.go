package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/owlingo/owlingo-api/internal/cache"
	"github.com/owlingo/owlingo-api/internal/config"
	"github.com/owlingo/owlingo-api/internal/content"
	"github.com/owlingo/owlingo-api/internal/domain"
	"github.com/owlingo/owlingo-api/internal/generation"
	"github.com/owlingo/owlingo-api/internal/platform/postgres"
	"github.com/owlingo/owlingo-api/internal/provider"
	"github.com/owlingo/owlingo-api/internal/provider/elevenlabs"
	"github.com/owlingo/owlingo-api/internal/provider/gemini"
	"github.com/owlingo/owlingo-api/internal/provider/openai"
	"github.com/owlingo/owlingo-api/internal/ratelimit"
	"github.com/owlingo/owlingo-api/internal/structured"
	"github.com/owlingo/owlingo-api/internal/task"
	"github.com/owlingo/owlingo-api/internal/usage"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when the in-memory audit sink is selected.
	db *sql.DB

	tracker     *usage.Tracker
	llmManager  *provider.Manager
	ttsManager  *provider.TTSManager
	resolver    *content.Resolver
	limiter     *ratelimit.Limiter
	coordinator *generation.Coordinator

	// Audio synthesis pipeline.
	audioQueue *task.Queue
	audioPool  *task.WorkerPool
}

// newApplication creates an application instance with all dependencies
// initialized. The context bounds provider client construction and the
// initial database ping.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	sink, err := app.setupUsageSink(ctx)
	if err != nil {
		return nil, err
	}
	app.tracker = usage.NewTracker(sink, logger)

	if err := app.setupProviders(ctx); err != nil {
		return nil, err
	}

	store, err := content.NewHTTPStore(content.HTTPStoreConfig{
		BaseURL: cfg.ContentStore.BaseURL,
		APIKey:  cfg.ContentStore.APIKey,
		Timeout: time.Duration(cfg.ContentStore.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize content store: %w", err)
	}
	contextTTL := time.Duration(cfg.Cache.ContextTTLMinutes) * time.Minute
	app.resolver = content.NewResolver(store, logger,
		content.WithContextCache(cache.New[*domain.MetadataContext](contextTTL)))

	app.limiter = ratelimit.New(cfg.RateLimit.DailyCap, cfg.RateLimit.PerRequestCap)

	enqueuer, err := app.setupAudioPipeline()
	if err != nil {
		return nil, err
	}

	if err := app.setupCoordinator(enqueuer); err != nil {
		return nil, err
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupUsageSink selects the audit sink: Postgres when a database URL is
// configured, in-memory otherwise.
func (app *application) setupUsageSink(ctx context.Context) (usage.Sink, error) {
	if app.config.Database.URL == "" {
		app.logger.Info("No database configured, usage audit log is in-memory")
		return usage.NewMemorySink(), nil
	}

	db, err := postgres.Open(ctx, app.config.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := postgres.Migrate(db); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			app.logger.Error("Error closing database after failed migration", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	app.db = db
	app.logger.Info("Database connection established, usage audit log is persistent")
	return postgres.NewUsageStore(db, app.logger), nil
}

// setupProviders builds the LLM and TTS provider chains in the configured
// fallback order and wraps them in managers.
func (app *application) setupProviders(ctx context.Context) error {
	cfg := app.config.Providers

	var llms []provider.LLMProvider
	for _, name := range cfg.LLMOrder {
		switch name {
		case "openai":
			p, err := openai.NewLLM(openai.Config{
				APIKey:  cfg.OpenAI.APIKey,
				BaseURL: cfg.OpenAI.BaseURL,
				Model:   cfg.OpenAI.Model,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize openai provider: %w", err)
			}
			llms = append(llms, p)
		case "gemini":
			p, err := gemini.NewLLM(ctx, gemini.Config{
				APIKey: cfg.Gemini.APIKey,
				Model:  cfg.Gemini.Model,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize gemini provider: %w", err)
			}
			llms = append(llms, p)
		default:
			return fmt.Errorf("unknown llm provider %q", name)
		}
	}

	var ttss []provider.TTSProvider
	for _, name := range cfg.TTSOrder {
		switch name {
		case "openai":
			p, err := openai.NewTTS(openai.Config{
				APIKey:  cfg.OpenAI.APIKey,
				BaseURL: cfg.OpenAI.BaseURL,
				Model:   cfg.OpenAI.TTSModel,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize openai speech provider: %w", err)
			}
			ttss = append(ttss, p)
		case "elevenlabs":
			p, err := elevenlabs.NewTTS(elevenlabs.Config{
				APIKey:         cfg.ElevenLabs.APIKey,
				BaseURL:        cfg.ElevenLabs.BaseURL,
				Model:          cfg.ElevenLabs.Model,
				DefaultVoiceID: cfg.ElevenLabs.Voice,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize elevenlabs provider: %w", err)
			}
			ttss = append(ttss, p)
		default:
			return fmt.Errorf("unknown tts provider %q", name)
		}
	}

	var err error
	app.llmManager, err = provider.NewManager(llms, app.tracker, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM manager: %w", err)
	}
	app.ttsManager, err = provider.NewTTSManager(ttss, app.tracker, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create TTS manager: %w", err)
	}
	return nil
}

// setupAudioPipeline starts the synthesis queue and worker pool and returns
// the enqueuer the coordinator hands listening activities to.
func (app *application) setupAudioPipeline() (*task.AudioEnqueuer, error) {
	cfg := app.config

	app.audioQueue = task.NewQueue(cfg.Worker.QueueSize, app.logger)
	app.audioPool = task.NewWorkerPool(app.audioQueue, task.WorkerPoolConfig{
		WorkerCount: cfg.Worker.Count,
	}, app.logger)
	app.audioPool.Start()

	opts := provider.SynthesisOptions{
		Timeout:    time.Duration(cfg.Providers.AttemptTimeoutSeconds) * time.Second,
		MaxRetries: cfg.Providers.MaxRetries,
	}
	enqueuer, err := task.NewAudioEnqueuer(
		app.audioQueue,
		app.ttsManager,
		task.NewMemoryAudioStore(),
		app.synthesisVoice(),
		opts,
		app.logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio enqueuer: %w", err)
	}
	return enqueuer, nil
}

// synthesisVoice picks the voice of the primary TTS vendor.
func (app *application) synthesisVoice() string {
	cfg := app.config.Providers
	if len(cfg.TTSOrder) > 0 && cfg.TTSOrder[0] == "elevenlabs" {
		return cfg.ElevenLabs.Voice
	}
	return cfg.OpenAI.Voice
}

// setupCoordinator wires the four generation services and the coordinator
// that fronts them.
func (app *application) setupCoordinator(enqueuer generation.AudioEnqueuer) error {
	gen, err := structured.NewGenerator(app.llmManager, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create structured generator: %w", err)
	}

	opts := provider.GenerationOptions{
		Timeout:    time.Duration(app.config.Providers.AttemptTimeoutSeconds) * time.Second,
		MaxRetries: app.config.Providers.MaxRetries,
	}

	listening, err := generation.NewListeningQuizService(gen, app.resolver, app.logger, opts)
	if err != nil {
		return fmt.Errorf("failed to create listening service: %w", err)
	}
	reading, err := generation.NewReadingQuizService(gen, app.resolver, app.logger, opts)
	if err != nil {
		return fmt.Errorf("failed to create reading service: %w", err)
	}
	vocabulary, err := generation.NewFlashcardService(gen, app.resolver, app.logger, opts)
	if err != nil {
		return fmt.Errorf("failed to create flashcard service: %w", err)
	}
	grammar, err := generation.NewFillBlankService(gen, app.resolver, app.logger, opts)
	if err != nil {
		return fmt.Errorf("failed to create fill-blank service: %w", err)
	}

	app.coordinator, err = generation.NewCoordinator(generation.CoordinatorConfig{
		Limiter:    app.limiter,
		Listening:  listening,
		Reading:    reading,
		Vocabulary: vocabulary,
		Grammar:    grammar,
		Enqueuer:   enqueuer,
		Logger:     app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create coordinator: %w", err)
	}
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. Queued audio
// tasks are drained before the workers stop.
func (app *application) cleanup() {
	if app.audioQueue != nil {
		app.audioQueue.Close()
	}
	if app.audioPool != nil {
		app.audioPool.Wait()
		app.audioPool.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
