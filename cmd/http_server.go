package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/mastersight/api"
	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/auth"
	authPostgres "github.com/frahmantamala/mastersight/internal/auth/postgres"
	"github.com/frahmantamala/mastersight/internal/company"
	companyPostgres "github.com/frahmantamala/mastersight/internal/company/postgres"
	"github.com/frahmantamala/mastersight/internal/competence"
	competencePostgres "github.com/frahmantamala/mastersight/internal/competence/postgres"
	"github.com/frahmantamala/mastersight/internal/core/events"
	"github.com/frahmantamala/mastersight/internal/department"
	departmentPostgres "github.com/frahmantamala/mastersight/internal/department/postgres"
	"github.com/frahmantamala/mastersight/internal/feedback"
	feedbackPostgres "github.com/frahmantamala/mastersight/internal/feedback/postgres"
	"github.com/frahmantamala/mastersight/internal/mailer"
	mailerPostgres "github.com/frahmantamala/mastersight/internal/mailer/postgres"
	"github.com/frahmantamala/mastersight/internal/metrics"
	"github.com/frahmantamala/mastersight/internal/role"
	rolePostgres "github.com/frahmantamala/mastersight/internal/role/postgres"
	"github.com/frahmantamala/mastersight/internal/storage"
	"github.com/frahmantamala/mastersight/internal/team"
	teamPostgres "github.com/frahmantamala/mastersight/internal/team/postgres"
	"github.com/frahmantamala/mastersight/internal/tenancy"
	tenancyPostgres "github.com/frahmantamala/mastersight/internal/tenancy/postgres"
	"github.com/frahmantamala/mastersight/internal/transport"
	"github.com/frahmantamala/mastersight/internal/transport/middleware"
	"github.com/frahmantamala/mastersight/internal/transport/rest"
	"github.com/frahmantamala/mastersight/internal/user"
	userPostgres "github.com/frahmantamala/mastersight/internal/user/postgres"
	"github.com/frahmantamala/mastersight/pkg/logger"
)

var mailSweeper bool

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().BoolVar(&mailSweeper, "mail-sweeper", true,
		"retry pending mail from this process; a dedicated mail worker makes it redundant")
}

type Dependencies struct {
	Config      *internal.Config
	DB          *sqlx.DB
	Gorm        *gorm.DB
	Router      *chi.Mux
	Logger      *slog.Logger
	Bus         *events.EventBus
	Mail        *mailer.Dispatcher
	RateLimiter *middleware.RateLimiter
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	log := deps.Logger

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if mailSweeper {
		redeliverer := mailer.NewRedeliverer(mailerPostgres.NewDeliveryRepository(deps.Gorm), deps.Mail,
			time.Minute, deps.Config.Mail.MaxAttempts, log)
		go func() { _ = redeliverer.Run(sweepCtx) }()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", "error", err)
	}
	stopSweep()
	deps.RateLimiter.Stop()
	if err := deps.Bus.Close(ctx); err != nil {
		log.Warn("event bus did not drain", "error", err)
	}
	deps.Mail.Shutdown()
	if err := deps.DB.Close(); err != nil {
		log.Error("Database close error", "error", err)
	}

	log.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	ctx := context.Background()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := initLogger(cfg)

	doc, err := api.Load(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("openapi document loaded", "paths", doc.Paths.Len())

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gdb, err := openGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	var recorder metrics.Recorder = metrics.Nop{}
	registry := metrics.NewRegistry()
	if cfg.Observability.Metrics.Enabled {
		recorder = metrics.NewCollector(registry)
	}

	bus := events.NewEventBus(log)
	dispatcher, err := startMail(cfg, gdb, bus, recorder, log)
	if err != nil {
		return nil, err
	}

	backend, err := storage.NewBackend(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	uploader := storage.NewUploader(backend, cfg.Storage.MaxBytes, log)

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	sessions := auth.NewSessionResolver(tokens, cfg.Security.CookieName, cfg.Security.CookieSecure)
	authorizer := tenancy.NewAuthorizer(tenancyPostgres.NewMembershipRepository(gdb), log)
	base := transport.NewBaseHandler(log)

	authService := auth.NewService(
		authPostgres.NewUserRepository(gdb),
		authPostgres.NewResetRepository(gdb),
		tokens,
		bus,
		recorder,
		auth.ServiceConfig{BCryptCost: cfg.Security.BCryptCost, ResetTTL: cfg.Security.ResetTTL},
		log,
	)

	// a nil *GoogleProvider must not reach the handler as a non-nil interface
	var google auth.GoogleAPI
	if cfg.OAuth.GoogleEnabled() {
		google = auth.NewGoogleProvider(auth.GoogleConfig{
			ClientID:     cfg.OAuth.GoogleClientID,
			ClientSecret: cfg.OAuth.GoogleClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
			StateHashKey: cfg.Security.StateHashKey,
			SecureCookie: cfg.Security.CookieSecure,
		})
	}

	handlers := rest.Handlers{
		Auth: auth.NewHandler(base, authService, sessions, google, cfg.App.FrontendURL),
		User: user.NewHandler(base,
			user.NewService(userPostgres.NewUserRepository(gdb), authService, cfg.Security.BCryptCost, log),
			sessions, uploader),
		Company: company.NewHandler(base,
			company.NewService(companyPostgres.NewCompanyRepository(gdb), authorizer, log), uploader),
		Department: department.NewHandler(base,
			department.NewService(departmentPostgres.NewDepartmentRepository(gdb), authorizer, log)),
		Role: role.NewHandler(base,
			role.NewService(rolePostgres.NewRoleRepository(gdb), authorizer, log)),
		Team: team.NewHandler(base,
			team.NewService(teamPostgres.NewTeamRepository(gdb), authorizer, bus, cfg.Security.BCryptCost, log)),
		Competence: competence.NewHandler(base,
			competence.NewService(competencePostgres.NewCompetenceRepository(gdb), authorizer, log)),
		Feedback: feedback.NewHandler(base,
			feedback.NewService(feedbackPostgres.NewFeedbackRepository(gdb), authorizer, log)),
		Health: rest.NewHealthHandler(db.DB),
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		PerMinute: cfg.RateLimit.PerMinute,
		Burst:     cfg.RateLimit.Burst,
	})

	opts := rest.Options{
		Sessions:       sessions,
		RateLimiter:    limiter,
		Recorder:       recorder,
		AllowedOrigins: cfg.Server.Origins(),
		OpenAPI:        api.Spec,
		Logger:         log,
	}
	if cfg.Observability.Metrics.Enabled {
		opts.MetricsHandler = metrics.Handler(registry)
		opts.MetricsPath = cfg.Observability.Metrics.Path
	}
	if cfg.Storage.Driver == "local" {
		opts.ImagesDir = cfg.Storage.LocalPath
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, handlers, opts)

	return &Dependencies{
		Config:      cfg,
		DB:          db,
		Gorm:        gdb,
		Router:      router,
		Logger:      log,
		Bus:         bus,
		Mail:        dispatcher,
		RateLimiter: limiter,
	}, nil
}

// startMail wires the mail pipeline: events are rendered and persisted by
// the event handler and sent by the dispatcher's workers.
func startMail(cfg *internal.Config, gdb *gorm.DB, bus *events.EventBus, recorder metrics.Recorder, log *slog.Logger) (*mailer.Dispatcher, error) {
	renderer, err := mailer.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load mail templates: %w", err)
	}
	sender, err := mailer.NewSMTPSender(cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize smtp client: %w", err)
	}

	repo := mailerPostgres.NewDeliveryRepository(gdb)
	dispatcher := mailer.NewDispatcher(sender, repo, recorder, dispatcherConfig(cfg.Mail), log)
	dispatcher.Start()

	if bus != nil {
		mailer.NewEventHandler(renderer, repo, dispatcher, cfg.App.FrontendURL, log).RegisterEventHandlers(bus)
	}
	return dispatcher, nil
}

func dispatcherConfig(cfg internal.MailConfig) mailer.DispatcherConfig {
	return mailer.DispatcherConfig{
		Workers:      cfg.Workers,
		QueueSize:    cfg.QueueSize,
		MaxAttempts:  cfg.MaxAttempts,
		RetryBackoff: cfg.RetryBackoff,
		SendTimeout:  cfg.SendTimeout,
	}
}

func initLogger(cfg *internal.Config) *slog.Logger {
	lc := cfg.Observability.Logging
	if lc.Level == "" && lc.Format == "" {
		logger.Init(cfg.App.Env)
		return logger.LoggerWrapper()
	}
	return logger.Configure(lc.Level, lc.Format, os.Stdout)
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// openGorm shares the sqlx pool with GORM so both see the same limits.
func openGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}
