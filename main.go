package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	"kokurikulumAPI/handlers"
	"kokurikulumAPI/internal/config"
	"kokurikulumAPI/internal/credentials"
	"kokurikulumAPI/internal/logger"
	"kokurikulumAPI/internal/notification"
	"kokurikulumAPI/middleware"
	"kokurikulumAPI/services"
)

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

var (
	cfg              *config.Config
	dbPool           *pgxpool.Pool
	reportService    *services.ReportService
	analyticsService *services.AnalyticsService
	pdfService       *services.PDFService
	fcmService       *notification.FCMService
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", "err", err)
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	if cfg.ClerkSecretKey != "" {
		clerk.SetKey(cfg.ClerkSecretKey)
		logger.Info("Clerk initialized successfully")
	}

	creds, err := credentials.Load(credentials.Config{
		EnvJSON: cfg.ServiceAccountJSON,
		Files:   cfg.CredentialsFiles,
	})
	if err != nil {
		logger.Fatal("Failed to load Google credentials", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	driveStore, err := services.NewDriveStore(ctx, creds.ClientOptions(drive.DriveScope)...)
	if err != nil {
		logger.Fatal("Failed to initialize Drive", "err", err)
	}

	var rows services.TabularStore
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		dbPool = connectDB(ctx, cfg.DatabaseURL)
		rows = services.NewPostgresStore(dbPool)
		logger.Info("Successfully connected to PostgreSQL")
	default:
		rows, err = services.NewSheetsStore(ctx, cfg.SheetID, cfg.SheetName, creds.ClientOptions(sheets.SpreadsheetsScope)...)
		if err != nil {
			logger.Fatal("Failed to initialize Sheets", "err", err)
		}
		logger.Info("Using Google Sheets store", "sheet", cfg.SheetName)
	}

	if err := rows.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to prepare report store", "err", err)
	}

	reportService = services.NewReportService(driveStore, rows, cfg.DriveFolderID)
	analyticsService = services.NewAnalyticsService(reportService)
	pdfService = services.NewPDFService(driveStore)

	if cfg.FCMTopic != "" {
		projectID := cfg.FirebaseProjectID
		if projectID == "" {
			projectID = creds.ProjectID
		}
		fcmService, err = notification.NewFCMService(ctx, projectID, cfg.FCMTopic, creds.ClientOptions(fcmScope)...)
		if err != nil {
			logger.Warn("Could not initialize FCM", "err", err)
		} else {
			reportService.SetNotifier(fcmService)
			logger.Info("FCM notifications enabled", "topic", cfg.FCMTopic)
		}
	}

	middleware.InitPrometheus()
	services.InitMetrics()
}

func connectDB(ctx context.Context, dbURL string) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		logger.Fatal("Failed to parse database URL", "err", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Failed to create connection pool", "err", err)
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", "err", err)
	}
	return pool
}

func main() {
	defer func() {
		if dbPool != nil {
			logger.Info("Closing database connection pool...")
			dbPool.Close()
		}
	}()

	reportHandler := handlers.NewReportHandler(reportService, pdfService, cfg.UploadTimeout)
	adminHandler := handlers.NewAdminHandler(reportService, analyticsService)
	healthHandler := handlers.NewHealthHandler(reportService)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal("Invalid TRUSTED_PROXIES", "err", err)
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, trustedProxies)
	go limiter.Cleanup(rootCtx)

	r := mux.NewRouter()
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.MetricsAuth(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler())).Methods("GET")
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	public := api.PathPrefix("/reports").Subrouter()
	public.Use(limiter.Middleware)
	public.HandleFunc("", reportHandler.SubmitReport).Methods("POST")
	public.HandleFunc("/search", reportHandler.SearchReports).Methods("GET")
	public.HandleFunc("/{index:[0-9]+}/pdf", reportHandler.DownloadReportPDF).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminAuth(middleware.AdminAuthConfig{
		Password:        cfg.AdminPassword,
		UseClerk:        cfg.ClerkSecretKey != "",
		AllowedClerkIDs: cfg.AdminClerkIDs,
	}))
	admin.HandleFunc("/reports", adminHandler.ListReports).Methods("GET")
	admin.HandleFunc("/reports/summary", adminHandler.GetSummary).Methods("GET")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.AdminPasswordHeader}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", "Content-Disposition"}),
	)

	port := ":" + cfg.Port

	server := http.Server{
		Addr:    port,
		Handler: corsHandler(r),
		// uploads of several photos need more than the usual few seconds
		ReadTimeout:  cfg.UploadTimeout,
		WriteTimeout: cfg.UploadTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Error starting server", "err", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Got signal", "signal", sig)
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "err", err)
	}

	logger.Info("Server shutdown complete")
}
