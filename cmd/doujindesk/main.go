package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/config"
	"github.com/doujindesk/doujindesk-api/internal/controllers"
	"github.com/doujindesk/doujindesk-api/internal/middleware"
	"github.com/doujindesk/doujindesk-api/internal/monitoring"
	"github.com/doujindesk/doujindesk-api/internal/notification"
	"github.com/doujindesk/doujindesk-api/internal/patterns/factory"
	"github.com/doujindesk/doujindesk-api/internal/repositories"
	"github.com/doujindesk/doujindesk-api/internal/router"
	"github.com/doujindesk/doujindesk-api/internal/scheduler"
	"github.com/doujindesk/doujindesk-api/internal/services"
	"github.com/doujindesk/doujindesk-api/pkg/auth"
	"github.com/doujindesk/doujindesk-api/pkg/cache"
	"github.com/doujindesk/doujindesk-api/pkg/database"
	"github.com/doujindesk/doujindesk-api/pkg/events"
	"github.com/doujindesk/doujindesk-api/pkg/mail"
	"github.com/doujindesk/doujindesk-api/pkg/queue"
	"github.com/doujindesk/doujindesk-api/pkg/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := log.New(os.Stdout, "[doujindesk] ", log.LstdFlags)

	if err := run(logger); err != nil {
		logger.Fatalf("❌ %v", err)
	}
}

// run wires and serves the API until a signal arrives or the listener fails.
// Every exit path goes through the deferred closes.
func run(logger *log.Logger) error {
	// 1. Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Printf("🚀 Starting %s (%s) for %s", cfg.App.Name, cfg.App.Env, cfg.App.EventID)

	// 2. Redis, when a driver needs it
	var redisClient *database.RedisClient
	if cfg.Store.Driver == cache.DriverRedis || cfg.Queue.Driver == "redis" {
		var err error
		redisClient, err = database.NewRedisClient(&database.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}, logger)
		if err != nil {
			return fmt.Errorf("redis unavailable: %w", err)
		}
		defer redisClient.Close()
	}

	// 3. Snapshot persistence and repositories
	persister, err := openPersister(cfg, redisClient, logger)
	if err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}

	ticketStore := repositories.NewTicketStore(persister, logger)
	if err := ticketStore.Restore(repositories.DefaultTicketTypes(cfg.App.EventStart, time.Now())); err != nil {
		return fmt.Errorf("failed to restore ticket store: %w", err)
	}
	staffRepo := repositories.NewStaffRepository(persister, logger)
	if err := staffRepo.Restore(); err != nil {
		return fmt.Errorf("failed to restore staff roster: %w", err)
	}
	txRepo := repositories.NewTransactionRepository(persister, logger)
	if err := txRepo.Restore(); err != nil {
		return fmt.Errorf("failed to restore financial ledger: %w", err)
	}

	db, circleRepo, err := openCircles(cfg, persister, logger)
	if err != nil {
		return fmt.Errorf("circle store unavailable: %w", err)
	}
	if db != nil {
		defer db.Close()
	}

	files, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.BaseURL, logger)
	if err != nil {
		return fmt.Errorf("file storage unavailable: %w", err)
	}

	// 4. Events and services
	dispatcher := events.NewDispatcher(logger)
	metrics := monitoring.NewMetrics()

	finance := services.NewFinanceService(txRepo, dispatcher, logger)
	notification.Register(dispatcher, logger, finance, metrics)

	ticketFactory := factory.NewTicketFactory(factory.EventWindow{
		EventID: cfg.App.EventID,
		Start:   cfg.App.EventStart,
		End:     cfg.App.EventEnd,
	})
	tickets := services.NewTicketService(ticketStore, ticketFactory, services.NewSimulatedPaymentProcessor(), dispatcher, metrics, logger)

	staff := services.NewStaffService(staffRepo, &auth.JWTConfig{
		Secret:         cfg.JWT.Secret,
		Issuer:         cfg.App.Name,
		ExpirationTime: cfg.JWT.Expiration,
	}, logger)
	if cfg.Admin.Email != "" {
		created, err := staff.EnsureAdmin(context.Background(), &services.RegisterStaffInput{
			Name:     cfg.Admin.Name,
			Email:    cfg.Admin.Email,
			Passcode: cfg.Admin.Passcode,
		})
		if err != nil {
			return fmt.Errorf("failed to create administrator: %w", err)
		}
		if created {
			logger.Printf("✅ Administrator %s created", cfg.Admin.Email)
		}
	}

	circles := services.NewCircleService(circleRepo, files, dispatcher, logger)
	rates := services.NewExchangeRates(services.FixedRateSource{Rate: cfg.Exchange.USDToIDR}, cfg.Exchange.USDToIDR, logger)

	// 5. Attendee mail
	from := mail.Address{Email: cfg.Mail.From, Name: cfg.Mail.FromName}
	var mailer mail.Mailer = mail.NewLogMailer(from, logger)
	if cfg.Mail.Driver == "smtp" {
		mailer = mail.NewSMTPMailer(&mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     from,
		}, logger)
	}

	registry := queue.NewRegistry()
	notification.RegisterMailJobs(registry, mailer, logger)

	var mailQueue queue.Queue = queue.NewMemoryQueue(logger)
	if cfg.Queue.Driver == "redis" {
		mailQueue = queue.NewRedisQueue(redisClient.Client(), registry, logger, cfg.Store.Prefix)
	}
	notification.RegisterMail(dispatcher, notification.NewMailListener(mailQueue, tickets, mailer, cfg.App.Name, logger))

	worker := queue.NewWorker(mailQueue, logger).SetRetryDelay(cfg.Queue.RetryDelay)
	worker.Start(notification.MailQueue)

	// 6. Scheduled jobs
	jobs, err := scheduler.New(scheduler.Options{
		SalesInterval:        cfg.Scheduler.SalesInterval,
		ExchangeRateInterval: cfg.Scheduler.ExchangeRateInterval,
	}, tickets, rates, metrics, logger)
	if err != nil {
		return fmt.Errorf("scheduler setup failed: %w", err)
	}
	jobs.Start()

	// 7. HTTP
	r := router.New()
	r.Use(middleware.PanicRecovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		r.Use(limiter.Middleware())
	}

	router.RegisterRoutes(r, &router.Controllers{
		Tickets: controllers.NewTicketController(tickets, logger),
		Catalog: controllers.NewCatalogController(tickets, logger),
		Gate:    controllers.NewGateController(tickets, logger),
		Finance: controllers.NewFinanceController(finance, tickets, rates, logger),
		Staff:   controllers.NewStaffController(staff, logger),
		Circles: controllers.NewCircleController(circles, logger),
	}, staff)

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	filesPrefix := cfg.Storage.BaseURL + "/"
	r.Handle(filesPrefix, http.StripPrefix(filesPrefix, http.FileServer(http.Dir(cfg.Storage.Dir))))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("✅ Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 8. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case <-stop:
		logger.Println("🔄 Shutting down...")
	case err := <-serverErr:
		runErr = fmt.Errorf("server failed: %w", err)
		logger.Printf("❌ %v, shutting down...", runErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("⚠️  HTTP shutdown: %v", err)
	}
	if limiter != nil {
		limiter.Stop()
	}
	if err := jobs.Shutdown(); err != nil {
		logger.Printf("⚠️  Scheduler shutdown: %v", err)
	}
	worker.Stop()
	if err := dispatcher.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Printf("⚠️  Event dispatcher shutdown: %v", err)
	}

	logger.Println("✅ Server stopped")
	return runErr
}

// openPersister builds the snapshot persister for the configured store
// driver.
func openPersister(cfg *config.Config, redisClient *database.RedisClient, logger *log.Logger) (repositories.Persister, error) {
	opts := cache.Options{
		Driver: cfg.Store.Driver,
		Dir:    cfg.Store.Dir,
		Prefix: cfg.Store.Prefix,
	}
	if redisClient != nil {
		opts.Redis = redisClient.Client()
	}

	c, err := cache.New(opts, logger)
	if err != nil {
		return nil, err
	}
	return repositories.NewCachePersister(c, logger), nil
}

// openCircles uses the MySQL circles table when DB_DSN is set, and the
// snapshot store otherwise.
func openCircles(cfg *config.Config, persister repositories.Persister, logger *log.Logger) (*sql.DB, repositories.CircleRepository, error) {
	if cfg.DB.DSN == "" {
		logger.Println("⚠️  DB_DSN is not set, circle applications are kept in the snapshot store")
		repo := repositories.NewMemoryCircleRepository(persister, logger)
		if err := repo.Restore(); err != nil {
			return nil, nil, fmt.Errorf("failed to restore circles: %w", err)
		}
		return nil, repo, nil
	}

	db, err := database.Connect(&database.MySQLConfig{
		DSN:             cfg.DB.DSN,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	repo := repositories.NewMySQLCircleRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to prepare circles table: %w", err)
	}
	return db, repo, nil
}
