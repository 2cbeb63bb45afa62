package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"

	"face-swap-backend/docs"
	"face-swap-backend/internal/config"
	"face-swap-backend/internal/database"
	"face-swap-backend/internal/download"
	"face-swap-backend/internal/events"
	"face-swap-backend/internal/gemini"
	"face-swap-backend/internal/handlers"
	"face-swap-backend/internal/imageutil"
	"face-swap-backend/internal/jobs"
	"face-swap-backend/internal/openai"
	"face-swap-backend/internal/rapidapi"
	"face-swap-backend/internal/replicate"
	"face-swap-backend/internal/services"
	"face-swap-backend/internal/supabase"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type app struct {
	cfg        *config.Config
	log        zerolog.Logger
	server     *http.Server
	dispatcher *jobs.Dispatcher
	publisher  events.Publisher
	closers    []func() error
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	a := &app{cfg: cfg, log: log}

	var sb *supabase.Client
	if cfg.SupabaseConfigured() {
		client, err := supabase.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		sb = client
	} else {
		log.Warn().Msg("SUPABASE_URL or SUPABASE_ANON_KEY not set; storage and character lookups are disabled")
	}

	backend := cfg.StoreBackend()
	store, err := a.buildStore(backend, sb)
	if err != nil {
		a.close()
		return nil, err
	}

	a.publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		a.publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing job events to kafka")
	}

	a.dispatcher = jobs.NewDispatcher(cfg.WorkerCount, log)
	jobService := jobs.NewService(store, a.dispatcher, a.publisher, cfg.RecordFailures, log)

	providers := buildProviders(cfg, sb)
	pipelines := services.NewPipelineService(jobService, providers, services.PipelineConfig{
		StorageBucket:    cfg.StorageBucket,
		BackgroundBucket: cfg.BackgroundBucket,
		WorkDir:          cfg.WorkDir,
		Retries:          cfg.GenerationRetries,
		RetryDelay:       cfg.RetryDelay(),
		MaxSide:          imageutil.DefaultMaxSide,
	}, log)
	characters := services.NewCharacterService(jobService, providers, pipelines, log)

	router := handlers.NewRouter(handlers.Handlers{
		Jobs:       handlers.NewJobsHandler(pipelines),
		Status:     handlers.NewStatusHandler(jobService),
		Background: handlers.NewBackgroundHandler(pipelines),
		Characters: handlers.NewCharacterHandler(characters),
		Health:     handlers.NewHealthHandler(cfg.ProviderStatus(), backend, jobService.Stats),
	}, log, cfg.APIJWTSecret)

	a.server = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	log.Info().
		Str("job_store", backend).
		Int("workers", a.dispatcher.Size()).
		Interface("providers", cfg.ProviderStatus()).
		Msg("application configured")
	return a, nil
}

func (a *app) buildStore(backend string, sb *supabase.Client) (jobs.Store, error) {
	switch backend {
	case config.StoreSupabase:
		if sb == nil {
			return nil, errors.New("supabase job store requires SUPABASE_URL and SUPABASE_ANON_KEY")
		}
		return supabase.NewJobTable(sb.Supabase, a.cfg.JobTable), nil
	case config.StorePostgres, config.StoreSQLite:
		client, err := openDatabase(a.cfg, backend, a.log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return client, nil
	default:
		a.log.Warn().Msg("using the in-memory job store; jobs are lost on restart")
		return jobs.NewMemoryStore(), nil
	}
}

// openDatabase connects to the SQL job store and applies migrations.
func openDatabase(cfg *config.Config, backend string, log zerolog.Logger) (*supabase.DatabaseClient, error) {
	driver, dsn := "postgres", cfg.DatabaseURL
	if backend == config.StoreSQLite {
		driver, dsn = "sqlite3", cfg.SQLitePath
	}

	client, err := supabase.NewDatabaseClient(driver, dsn, cfg.JobTable)
	if err != nil {
		return nil, err
	}

	migrator, err := database.NewMigrator(client.DB(), driver, cfg.JobTable, log)
	if err != nil {
		client.Close()
		return nil, err
	}
	if err := migrator.Run(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// buildProviders only sets the clients whose credentials are present, so a
// nil interface field means "not configured".
func buildProviders(cfg *config.Config, sb *supabase.Client) services.Providers {
	downloader := download.NewClient(cfg.DownloadTimeout())
	p := services.Providers{Downloader: downloader}

	if cfg.OpenAIAPIKey != "" {
		p.Merger = openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.ProviderTimeout())
	}
	if cfg.ReplicateAPIToken != "" {
		rc := replicate.NewClient(replicate.Options{
			BaseURL:         cfg.ReplicateBaseURL,
			APIToken:        cfg.ReplicateAPIToken,
			CartoonifyModel: cfg.ReplicateCartoonifyModel,
			CharacterModel:  cfg.ReplicateCharacterModel,
			Timeout:         cfg.ProviderTimeout(),
		})
		p.Cartoons = rc
		p.Generator = rc
	}
	if cfg.GeminiAPIKey != "" {
		p.Describer = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.ProviderTimeout(), downloader)
	}
	if cfg.RapidAPIKey != "" {
		p.Remover = rapidapi.NewClient(cfg.RapidAPIKey, cfg.RapidAPIHost, "", cfg.ProviderTimeout(), downloader)
	}
	if sb != nil {
		p.Storage = supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseKey)
		p.Characters = supabase.NewCharacterCatalog(sb.Supabase, cfg.CharacterTable)
	}
	return p
}

// run serves until SIGINT or SIGTERM, then drains the dispatcher.
func (a *app) run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("server starting")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case err := <-serveErr:
		runErr = err
		if runErr != nil {
			a.log.Error().Err(runErr).Msg("server failed")
		}
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("http server shutdown")
	}
	stats := a.dispatcher.Stats()
	a.log.Info().Int64("running", stats.Running).Int64("queued", stats.Queued).Msg("waiting for jobs to finish")
	if err := a.dispatcher.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("jobs still running at shutdown")
	}
	a.close()

	a.log.Info().Msg("server stopped")
	if runErr != nil {
		return fmt.Errorf("server: %w", runErr)
	}
	return nil
}

func (a *app) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close event publisher")
		}
	}
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close resource")
		}
	}
}
