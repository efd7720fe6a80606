package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/portfoliohub/internal/app/controllers"
	appMigrations "github.com/yigit/portfoliohub/internal/app/migrations"
	appRepos "github.com/yigit/portfoliohub/internal/app/repositories"
	"github.com/yigit/portfoliohub/internal/app/repositories/inmem"
	appRoutes "github.com/yigit/portfoliohub/internal/app/routes"
	appServices "github.com/yigit/portfoliohub/internal/app/services"
	"github.com/yigit/portfoliohub/internal/config"
	"github.com/yigit/portfoliohub/internal/db"
	appMiddleware "github.com/yigit/portfoliohub/internal/middleware"
	pkgAuth "github.com/yigit/portfoliohub/internal/pkg/auth"
	"github.com/yigit/portfoliohub/internal/pkg/events"
	"github.com/yigit/portfoliohub/internal/pkg/filestorage"
	"github.com/yigit/portfoliohub/internal/pkg/helpers"
	"github.com/yigit/portfoliohub/internal/pkg/logger"
	"github.com/yigit/portfoliohub/internal/pkg/renderer"
	"github.com/yigit/portfoliohub/internal/pkg/websocket"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	SectionService    appServices.SectionService
	SubmissionService appServices.SubmissionService
	ReviewService     appServices.ReviewService
	PortfolioService  appServices.PortfolioService
	Handlers          appRoutes.Handlers
	AuthMiddleware    *appMiddleware.AuthMiddleware
	Repos             *appRepos.Repositories
	JWTService        *pkgAuth.JWTService
	Bus               *events.Bus
	Hub               *websocket.Hub
	Logger            zerolog.Logger
	FileStorage       *filestorage.LocalStorage
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	lgr.Info().
		Str("logLevel", logger.ParseLevel(cfg.Logging.Level).String()).
		Str("logFormat", cfg.Logging.Format).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL and applies pending migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if err := RunMigrations(ctx, cfg, database, lgr); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// RunMigrations applies the embedded migrations, or the ones in the configured directory
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)

	var err error
	if dir := cfg.Database.MigrationsDir; dir != "" {
		err = migrator.MigrateFromDirectory(ctx, dir)
	} else {
		err = migrator.Migrate(ctx, appMigrations.Embedded())
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// SetupRepositories selects the persistence backend. The returned database is
// nil for the in-memory driver.
func SetupRepositories(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, *db.PostgresDB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using in-memory storage, data is lost on restart")
		return &appRepos.Repositories{
			Sections:    inmem.NewSectionRepository(),
			Submissions: inmem.NewSubmissionRepository(),
		}, nil, nil
	}

	database, err := SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, nil, err
	}
	return appRepos.NewRepositories(database.Pool), database, nil
}

// NewJWTService builds the token service from configuration
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 12*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// NewRenderer returns a Chrome backed renderer, or one that reports
// ErrRendererUnavailable when rendering is disabled.
func NewRenderer(cfg *config.Config, lgr zerolog.Logger) *renderer.Renderer {
	var printer renderer.Printer = renderer.Disabled{}
	if cfg.Renderer.Enabled {
		printer = renderer.NewChrome(cfg.Renderer.ChromePath)
	} else {
		lgr.Warn().Msg("PDF rendering disabled")
	}

	return renderer.New(
		printer,
		cfg.Server.PublicBaseURL,
		cfg.Renderer.DefaultTemplate,
		helpers.ParseDuration(cfg.Renderer.Timeout, 45*time.Second),
		lgr.With().Str("component", "renderer").Logger(),
	)
}

// BuildDependencies initializes services, the event bus and controllers.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Repos: repos}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, "")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	// Hub observes the bus; services only know about the bus
	deps.Bus = events.NewBus(lgr.With().Str("component", "events").Logger())
	deps.Hub = websocket.NewHub(cfg.WebSocket.SendBuffer, lgr.With().Str("component", "websocket").Logger())
	deps.Bus.OnTransition(deps.Hub.Publish)

	pdfRenderer := NewRenderer(cfg, lgr)

	deps.SectionService = appServices.NewSectionService(
		repos.Sections,
		deps.FileStorage,
		helpers.SystemClock,
		lgr.With().Str("service", "section").Logger(),
	)
	deps.SubmissionService = appServices.NewSubmissionService(
		repos.Sections,
		repos.Submissions,
		deps.Bus,
		cfg.Review.NotifyOnSubmit,
		helpers.SystemClock,
		lgr.With().Str("service", "submission").Logger(),
	)
	deps.ReviewService = appServices.NewReviewService(
		repos.Submissions,
		deps.Bus,
		pdfRenderer,
		deps.FileStorage,
		appServices.ReviewOptions{
			TwoTier:              cfg.Review.TwoTier,
			DefaultFacultyRemark: cfg.Review.DefaultFacultyRemark,
			DefaultAdminRemark:   cfg.Review.DefaultAdminRemark,
		},
		helpers.SystemClock,
		lgr.With().Str("service", "review").Logger(),
	)
	deps.PortfolioService = appServices.NewPortfolioService(
		repos.Sections,
		repos.Submissions,
		deps.FileStorage,
		pdfRenderer,
		deps.Bus,
		helpers.SystemClock,
		lgr.With().Str("service", "portfolio").Logger(),
	)

	deps.JWTService = NewJWTService(cfg)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Handlers = appRoutes.Handlers{
		Sections:    appControllers.NewSectionController(deps.SectionService),
		Submissions: appControllers.NewSubmissionController(deps.SubmissionService, deps.ReviewService),
		Reviews:     appControllers.NewReviewController(deps.ReviewService),
		Portfolios:  appControllers.NewPortfolioController(deps.PortfolioService),
		WebSocket:   websocket.NewHandler(deps.Hub, lgr.With().Str("component", "websocket").Logger()),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.Recovery(lgr), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router, deps.Handlers, deps.AuthMiddleware)

	// Uploaded section files and rendered PDFs
	router.Static(filestorage.URLPrefix, deps.FileStorage.BasePath())
	lgr.Info().Str("path", deps.FileStorage.BasePath()).Msg("Static file serving configured for uploads directory")

	return router
}
