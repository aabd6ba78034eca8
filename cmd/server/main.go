package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fonthunter/internal/config"
	"fonthunter/internal/db"
	"fonthunter/internal/hunter"
	"fonthunter/internal/jobs"
	"fonthunter/internal/metrics"
	"fonthunter/internal/middleware"
	"fonthunter/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	fileCfg, err := config.LoadYAMLConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}
	cfg.File = fileCfg

	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	observers := []hunter.Option{hunter.WithObserver(metrics.Observer{})}

	// Hunt history is optional
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")

		recorder := metrics.Init(database)
		defer recorder.Wait()
		observers = append(observers, hunter.WithObserver(recorder))
	} else {
		log.Println("DATABASE_URL not set; hunt history is disabled")
	}

	h := hunter.FromSettings(cfg.HuntSettings(), logger, observers...)

	auth, err := middleware.NewAuthMiddleware(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize OIDC: %v", err)
	}
	if !auth.Enabled() {
		log.Println("OIDC_ISSUER not set; /api is unauthenticated")
	}

	srv := server.New(cfg)
	srv.RegisterRoutes(server.Deps{Hunter: h, DB: database, Auth: auth})

	if cfg.File != nil && cfg.File.Batch.OnStart {
		jobs.NewBatchHunter(h, jobs.WithLogger(logger)).Start(ctx, cfg.File.BatchFonts())
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	<-ctx.Done()

	log.Println("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
