package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"smartmail-backend/internal/generations"
	"smartmail-backend/internal/history"
	"smartmail-backend/internal/llm"
	"smartmail-backend/internal/llm/gemini"
	"smartmail-backend/internal/llm/groq"
	"smartmail-backend/internal/llm/local"
	openai "smartmail-backend/internal/llm/openai"
	"smartmail-backend/internal/services/health"
	"smartmail-backend/internal/shared/config"
	"smartmail-backend/internal/shared/server"
	"smartmail-backend/internal/shared/server/middleware"
	"smartmail-backend/internal/shared/storage/cache"
	"smartmail-backend/internal/shared/storage/db"
	"smartmail-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Redis             *redis.Client
	Chain             *llm.Chain
	HistoryRepo       history.Repo
	HistoryService    *history.Service
	GenerationService *generations.Service
	GenerationHandler *generations.Handler
	HistoryHandler    *history.Handler
	Health            *health.Service
}

// Build assembles storage, providers, services and the router.
func Build(cfg config.Config) (*App, error) {
	cfg = config.Normalize(cfg)
	ctx := context.Background()

	sqlDB, dialect, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Redis:  buildRedis(ctx, cfg),
	}

	providers := BuildProviders(ctx, cfg.LLM)
	app.Chain = llm.NewChain(providers, local.New(), cfg.LLM.AttemptTimeout)

	if err := buildServices(app, dialect); err != nil {
		return nil, err
	}

	var limiter middleware.Limiter
	if app.Redis != nil {
		limiter = middleware.NewRedisRateLimiter(app.Redis, "")
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		GenerationHandler: app.GenerationHandler,
		HistoryHandler:    app.HistoryHandler,
		Health:            app.Health,
		Limiter:           limiter,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"history_store": cfg.HistoryStore,
		"providers":     strings.Join(app.Chain.Names(), ","),
		"redis":         app.Redis != nil,
	})
	return app, nil
}

// Close releases connections held by the app.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, db.Dialect, error) {
	var (
		sqlDB   *sql.DB
		dialect db.Dialect
		err     error
	)
	switch cfg.HistoryStore {
	case "memory":
		return nil, "", nil
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			if isDevLike(cfg.Env) {
				telemetry.Warn("bootstrap.database_url_empty", map[string]any{"fallback": "memory"})
				return nil, "", nil
			}
			return nil, "", fmt.Errorf("DATABASE_URL is required for HISTORY_STORE=postgres")
		}
		dialect = db.DialectPostgres
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	default:
		dialect = db.DialectSQLite
		sqlDB, err = db.ConnectSQLite(ctx, cfg.SQLitePath, db.OptionsFromEnv(db.DefaultSQLiteOptions()))
	}
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB, dialect)
		if err != nil {
			_ = sqlDB.Close()
			sqlDB = nil
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_unavailable", map[string]any{"fallback": "memory", "error": err.Error()})
			return nil, "", nil
		}
		return nil, "", err
	}
	return sqlDB, dialect, nil
}

func buildRedis(ctx context.Context, cfg config.Config) *redis.Client {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil
	}
	client, err := cache.Connect(ctx, cfg.RedisURL, cache.DefaultOptions())
	if err != nil {
		telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"fallback": "in-process rate limiting", "error": err.Error()})
		return nil
	}
	return client
}

// BuildProviders creates the configured remote providers in LLM_PROVIDERS
// order. Providers without credentials are skipped.
func BuildProviders(ctx context.Context, cfg config.LLMConfig) []llm.Provider {
	var providers []llm.Provider
	for _, name := range cfg.Providers {
		var (
			p   llm.Provider
			err error
		)
		switch name {
		case "groq":
			if cfg.GroqAPIKey == "" {
				continue
			}
			p, err = groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL)
		case "openai":
			if cfg.OpenAIAPIKey == "" {
				continue
			}
			p, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				continue
			}
			p, err = gemini.NewClient(ctx, gemini.Config{
				APIKey:      cfg.GeminiAPIKey,
				Model:       cfg.GeminiModel,
				BaseURL:     cfg.GeminiBaseURL,
				Temperature: cfg.Temperature,
				MaxTokens:   cfg.MaxTokens,
			})
		case "local":
			// Always appended as the final layer.
			continue
		default:
			telemetry.Warn("bootstrap.provider_unknown", map[string]any{"provider": name})
			continue
		}
		if err != nil {
			telemetry.Warn("bootstrap.provider_skipped", map[string]any{"provider": name, "error": err.Error()})
			continue
		}
		providers = append(providers, p)
	}
	return providers
}

// Params applies configured sampling overrides to the defaults.
func Params(cfg config.LLMConfig) llm.Params {
	params := llm.DefaultParams()
	if cfg.Temperature > 0 {
		params.Temperature = cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		params.MaxTokens = cfg.MaxTokens
	}
	return params
}

func buildServices(app *App, dialect db.Dialect) error {
	var repo history.Repo
	switch {
	case app.DB != nil && dialect == db.DialectPostgres:
		repo = &history.PGRepo{DB: app.DB}
	case app.DB != nil:
		repo = &history.SQLiteRepo{DB: app.DB}
	default:
		repo = history.NewMemoryRepo()
	}

	app.HistoryRepo = repo
	app.HistoryService = history.NewService(repo)
	app.HistoryService.DefaultLimit = app.Config.HistoryLimit
	app.GenerationService = generations.NewService(app.Chain, app.HistoryService, Params(app.Config.LLM))
	app.GenerationHandler = generations.NewHandler(app.GenerationService)
	app.HistoryHandler = history.NewHandler(app.HistoryService)

	storeName := app.Config.HistoryStore
	if app.DB == nil {
		storeName = "memory"
		app.Health = health.NewService(nil, storeName, app.Chain.Names())
	} else {
		app.Health = health.NewService(app.DB, storeName, app.Chain.Names())
	}

	if app.GenerationHandler == nil || app.HistoryHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
