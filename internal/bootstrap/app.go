package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/candidates"
	"skillmatch-backend/internal/doctext"
	"skillmatch-backend/internal/extract"
	"skillmatch-backend/internal/intake"
	"skillmatch-backend/internal/matching"
	"skillmatch-backend/internal/requests"
	"skillmatch-backend/internal/services/health"
	"skillmatch-backend/internal/shared/config"
	"skillmatch-backend/internal/shared/server"
	"skillmatch-backend/internal/shared/storage/db"
)

// App holds shared dependencies for the API process.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	CandidatesRepo    candidates.Repo
	RequestsRepo      requests.Repo
	CandidatesService *candidates.Service
	RequestsService   *requests.Service
	Matcher           *matching.Engine
	Extractor         *extract.Extractor

	RequestsHandler *requests.Handler
	IntakeHandler   *intake.Handler
	Health          *health.Service
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		RequestsHandler: app.RequestsHandler,
		IntakeHandler:   app.IntakeHandler,
		Health:          app.Health,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildServices(app *App) {
	if app.DB != nil {
		app.CandidatesRepo = &candidates.PGRepo{DB: app.DB}
		app.RequestsRepo = &requests.PGRepo{DB: app.DB}
	} else {
		app.CandidatesRepo = candidates.NewMemoryRepo()
		app.RequestsRepo = requests.NewMemoryRepo()
	}

	app.CandidatesService = candidates.NewService(app.CandidatesRepo)
	app.Matcher = matching.NewEngine()
	app.Extractor = extract.NewExtractor(extract.NewTaxonomy())
	app.RequestsService = &requests.Service{
		Repo:        app.RequestsRepo,
		Extractor:   app.Extractor,
		Candidates:  app.CandidatesService,
		Matcher:     app.Matcher,
		Attachments: doctext.NewLoader(),
	}

	app.RequestsHandler = requests.NewHandler(app.RequestsService)
	app.IntakeHandler = intake.NewHandler(app.RequestsService, app.CandidatesService)
	app.Health = health.NewService(app.DB)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
