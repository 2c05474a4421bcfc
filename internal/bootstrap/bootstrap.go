package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/cpne/stages/internal/app/controllers"
	appMigrations "github.com/cpne/stages/internal/app/migrations"
	appRepos "github.com/cpne/stages/internal/app/repositories"
	appRoutes "github.com/cpne/stages/internal/app/routes"
	appServices "github.com/cpne/stages/internal/app/services"
	"github.com/cpne/stages/internal/config"
	"github.com/cpne/stages/internal/db"
	appMiddleware "github.com/cpne/stages/internal/middleware"
	"github.com/cpne/stages/internal/pkg/email"
	"github.com/cpne/stages/internal/pkg/filestorage"
	"github.com/cpne/stages/internal/pkg/logger"
	"github.com/cpne/stages/internal/pkg/metrics"
	"github.com/cpne/stages/internal/pkg/schoolyear"
	"github.com/cpne/stages/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	PlacementService    *appServices.PlacementService
	WorkloadService     *appServices.WorkloadService
	ExportService       *appServices.ExportService
	ChargeSheetService  *appServices.ChargeSheetService
	UpdateFormService   *appServices.UpdateFormService
	ImportService       *appServices.ImportService
	CandidateService    *appServices.CandidateService
	AdminService        *appServices.AdminService
	PlacementController *appControllers.PlacementController
	WorkloadController  *appControllers.WorkloadController
	DocumentController  *appControllers.DocumentController
	ImportController    *appControllers.ImportController
	CandidateController *appControllers.CandidateController
	AdminController     *appControllers.AdminController
	Repos               *appRepos.Repositories
	Logger              zerolog.Logger
	FileStorage         *filestorage.LocalStorage
	Mailer              email.Mailer
	Clock               schoolyear.Clock
}

// importUnitOfWork lets the import service run on repositories.ImportTx without knowing
// the repositories package.
type importUnitOfWork struct {
	repo *appRepos.ImportRepository
}

func (u importUnitOfWork) RunInTx(ctx context.Context, fn func(appServices.ImportTx) error) error {
	return u.repo.RunInTx(ctx, func(tx *appRepos.ImportTx) error { return fn(tx) })
}

// DefaultConfigPath is read when no -config flag is given
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:        logLevel,
		Pretty:       prettyLog,
		TimeLocation: loc,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Run migrations
	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, logger.Component("migrations"))
	if err := migrator.Migrate(ctx, appMigrations.Files()); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	// Create Default Data (after migrations)
	if err := seed.CreateDefaultData(ctx, dbPool, lgr); err != nil {
		// Log the error but don't necessarily fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	deps.Clock = schoolyear.NewClock(loc)

	deps.Repos = appRepos.NewRepositories(dbPool)
	repos := deps.Repos

	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.TempDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Mailer = email.NewSMTPMailer(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, logger.Component("email"))

	limits := appServices.WorkloadLimits{
		MaxEnsPeriods:   cfg.Workload.MaxEnsPeriods,
		MaxEnsFormation: cfg.Workload.MaxEnsFormation,
	}

	// Initialize services
	deps.PlacementService = appServices.NewPlacementService(appServices.PlacementStores{
		Sections:       repos.SectionRepository,
		Levels:         repos.LevelRepository,
		Klasses:        repos.KlassRepository,
		Teachers:       repos.TeacherRepository,
		Students:       repos.StudentRepository,
		Contacts:       repos.ContactRepository,
		Periods:        repos.PeriodRepository,
		Availabilities: repos.AvailabilityRepository,
		Trainings:      repos.TrainingRepository,
	}, deps.Clock, logger.Component("placement"))

	deps.WorkloadService = appServices.NewWorkloadService(
		repos.TeacherRepository, repos.CourseRepository, limits, logger.Component("workload"))

	deps.ExportService = appServices.NewExportService(
		repos.ExportRepository, deps.WorkloadService, deps.Clock, logger.Component("export"))

	deps.ChargeSheetService = appServices.NewChargeSheetService(
		deps.WorkloadService,
		deps.FileStorage,
		appServices.DocumentOptions{
			ChargeSheetTitle: cfg.Documents.ChargeSheetTitle,
			SignaturePlace:   cfg.Documents.SignaturePlace,
		},
		deps.Clock,
		logger.Component("chargesheet"),
	)

	deps.ImportService = appServices.NewImportService(
		importUnitOfWork{repo: repos.ImportRepository},
		appServices.ImportMappings{
			Student:     cfg.Import.StudentMapping,
			Corporation: cfg.Import.CorporationMapping,
			Instructor:  cfg.Import.InstructorMapping,
		},
		loc,
		logger.Component("import"),
	)

	deps.UpdateFormService = appServices.NewUpdateFormService(
		repos.ExportRepository, deps.FileStorage, logger.Component("updateform"))

	deps.CandidateService = appServices.NewCandidateService(
		repos.CandidateRepository, repos.ExaminationRepository, deps.Mailer, deps.Clock, logger.Component("candidate"))

	deps.AdminService = appServices.NewAdminService(appServices.AdminStores{
		Sections:       repos.SectionRepository,
		Levels:         repos.LevelRepository,
		Klasses:        repos.KlassRepository,
		Teachers:       repos.TeacherRepository,
		Students:       repos.StudentRepository,
		Corporations:   repos.CorporationRepository,
		Contacts:       repos.ContactRepository,
		Domains:        repos.DomainRepository,
		Periods:        repos.PeriodRepository,
		Availabilities: repos.AvailabilityRepository,
	}, logger.Component("admin"))

	deps.PlacementController = appControllers.NewPlacementController(deps.PlacementService)
	deps.WorkloadController = appControllers.NewWorkloadController(deps.WorkloadService)
	deps.DocumentController = appControllers.NewDocumentController(
		deps.ExportService, deps.ChargeSheetService, deps.UpdateFormService)
	deps.ImportController = appControllers.NewImportController(deps.ImportService, deps.FileStorage)
	deps.CandidateController = appControllers.NewCandidateController(deps.CandidateService)
	deps.AdminController = appControllers.NewAdminController(deps.AdminService, loc)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(logger.Component("http")))
	router.Use(metrics.Middleware())

	// Setup API routes using the dependencies
	appRoutes.SetupRouter(router, appRoutes.Controllers{
		Placement: deps.PlacementController,
		Workload:  deps.WorkloadController,
		Document:  deps.DocumentController,
		Import:    deps.ImportController,
		Candidate: deps.CandidateController,
		Admin:     deps.AdminController,
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
