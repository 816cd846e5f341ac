package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storeops/internal/caching"
	"storeops/internal/config"
	"storeops/internal/i18n"
	"storeops/internal/jobs"
	"storeops/internal/jobs/background"
	"storeops/internal/logger"
	"storeops/internal/middleware"
	"storeops/internal/notifications"
	"storeops/internal/repositories"
	"storeops/internal/services"
	"storeops/internal/validation"
	"storeops/pkg/database"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewForEnvironment("development").Fatal("Failed to load configuration", zap.Error(err))
	}

	log := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	defer func() { _ = log.Sync() }()

	if cfg.GeneratedJWTSecret {
		log.Warn("JWT secret not configured, using a random secret; tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(cfg.Database.URL, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to configure redis", zap.Error(err))
	}
	defer rdb.Close()
	cacheSvc := caching.NewRedisCacheService(rdb)
	if err := cacheSvc.Ping(ctx); err != nil {
		log.Warn("Redis is not reachable yet", zap.Error(err))
	}

	minioSvc, err := services.NewMinioService(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
	if err != nil {
		log.Fatal("Failed to initialize MinIO service", zap.Error(err))
	}
	if err := minioSvc.EnsureBucketExists(ctx); err != nil {
		log.Warn("Object storage bucket check failed", zap.String("bucket", cfg.MinIO.Bucket), zap.Error(err))
	}

	// Repositories
	txManager := repositories.NewTxManager(pool, repositories.TxConfig{
		MaxWait: cfg.Database.TxMaxWait,
		Timeout: cfg.Database.TxTimeout,
		Retries: cfg.Database.TxRetries,
	}, log)
	userRepo := repositories.NewUserRepo(pool)
	tenantRepo := repositories.NewTenantRepo(pool, txManager)
	productRepo := repositories.NewProductRepo(pool, txManager)
	customerRepo := repositories.NewCustomerRepo(pool)
	saleRepo := repositories.NewSaleRepo(pool, txManager)
	serviceOrderRepo := repositories.NewServiceOrderRepo(pool, txManager)
	invoiceRepo := repositories.NewInvoiceRepo(pool, txManager)
	transactionRepo := repositories.NewTransactionRepo(pool)
	notificationRepo := repositories.NewNotificationRepo(pool)
	settingRepo := repositories.NewSettingRepo(pool)
	invitationRepo := repositories.NewInvitationRepo(pool, txManager)
	dashboardRepo := repositories.NewDashboardRepo(pool)

	// Notification queue
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	asynqClient := asynq.NewClient(redisOpt)
	enqueuer := jobs.NewEnqueuer(asynqClient)
	defer enqueuer.Close()

	dispatcher := notifications.NewDispatcher(
		notifications.EmailConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		},
		notifications.WhatsAppConfig{
			APIURL:   cfg.WhatsApp.APIURL,
			Token:    cfg.WhatsApp.Token,
			Instance: cfg.WhatsApp.Instance,
		},
		cfg.WhatsApp.Timeout,
	)

	// Services
	notificationSvc := services.NewNotificationService(notificationRepo, settingRepo, dispatcher, enqueuer, log)
	settingSvc := services.NewSettingService(settingRepo, tenantRepo, minioSvc, notificationSvc, log)
	authSvc := services.NewAuthService(userRepo, tenantRepo, cacheSvc, services.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}, log)
	userSvc := services.NewUserService(userRepo, log)
	invitationSvc := services.NewInvitationService(invitationRepo, userRepo, tenantRepo, settingSvc, notificationSvc,
		services.InvitationConfig{TTL: cfg.Invitation.TTL, BaseURL: cfg.App.BaseURL}, log)
	productSvc := services.NewProductService(productRepo, minioSvc, cacheSvc, log)
	customerSvc := services.NewCustomerService(customerRepo, saleRepo, log)
	saleSvc := services.NewSaleService(saleRepo, customerRepo, settingSvc, notificationSvc, cacheSvc, log)
	serviceOrderSvc := services.NewServiceOrderService(serviceOrderRepo, customerRepo, productRepo, userRepo,
		settingSvc, notificationSvc, cacheSvc, log)
	invoiceSvc := services.NewInvoiceService(invoiceRepo, saleRepo, serviceOrderRepo, customerRepo,
		settingSvc, notificationSvc, minioSvc, cacheSvc, log)
	transactionSvc := services.NewTransactionService(transactionRepo, customerRepo, cacheSvc, log)
	dashboardSvc := services.NewDashboardService(dashboardRepo, cacheSvc, log)
	alertSvc := services.NewAlertService(productRepo, userRepo, settingSvc, notificationSvc, cacheSvc, log)

	// Notification worker
	worker := jobs.NewWorker(redisOpt, 10, jobs.NewNotificationHandler(notificationSvc, log), log)
	go func() {
		if err := worker.Start(); err != nil {
			log.Error("Notification worker stopped", zap.Error(err))
		}
	}()

	// Scheduled jobs
	var scheduler *background.JobScheduler
	if cfg.Scheduler.Enabled {
		scheduler, err = background.NewJobScheduler(
			background.Jobs{
				Invoices:      invoiceSvc,
				Alerts:        alertSvc,
				Invitations:   invitationSvc,
				Notifications: notificationSvc,
				Dashboard:     dashboardSvc,
			},
			background.Intervals{
				Overdue:           cfg.Scheduler.OverdueInterval,
				LowStock:          cfg.Scheduler.LowStockInterval,
				Invitation:        cfg.Scheduler.InvitationInterval,
				Notification:      cfg.Scheduler.NotificationInterval,
				Dashboard:         cfg.Scheduler.DashboardInterval,
				MaxNotifyAttempts: cfg.Scheduler.MaxNotifyAttempts,
			},
			background.NewRedisLocker(rdb, 5*time.Minute),
			log,
		)
		if err != nil {
			log.Fatal("Failed to create job scheduler", zap.Error(err))
		}
		scheduler.Start()
	}

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(i18n.MustLoad(), log)

	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.BodyLimit("10M"))
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versions := middleware.NewVersionMiddleware(version)
	if !cfg.App.APISunset.IsZero() {
		versions.Deprecate("v1", cfg.App.APISunset)
	}

	registerRoutes(e, routeDeps{
		cfg:           cfg,
		logger:        log,
		db:            pool,
		cache:         cacheSvc,
		version:       versions,
		auth:          authSvc,
		users:         userSvc,
		invitations:   invitationSvc,
		products:      productSvc,
		customers:     customerSvc,
		sales:         saleSvc,
		serviceOrders: serviceOrderSvc,
		invoices:      invoiceSvc,
		notifications: notificationSvc,
		settings:      settingSvc,
		transactions:  transactionSvc,
		dashboard:     dashboardSvc,
	})

	go func() {
		log.Info("StoreOps server starting", zap.String("version", version), zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
		if err := e.Start(":" + cfg.App.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			log.Error("Job scheduler shutdown failed", zap.Error(err))
		}
	}
	worker.Shutdown()
}
