package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"slotify-backend/config"
	"slotify-backend/internal/api"
	"slotify-backend/internal/db"
	"slotify-backend/internal/mailer"
	"slotify-backend/internal/model"
	"slotify-backend/internal/notification"
	"slotify-backend/internal/reminder"
	"slotify-backend/internal/roster"
	"slotify-backend/internal/store"
)

// bootstrap seeds an empty database with the configured building and
// superadmin account, and prints that account's first API token. The token is
// shown this once and never again.
func bootstrap(ctx context.Context, s store.Store, cfg *config.BootstrapConfig, logger *log.Logger) error {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}
	if cfg.AdminUsername == "" || cfg.AdminEmail == "" {
		logger.Println("database is empty and no bootstrap admin is configured; skipping seed")
		return nil
	}

	building := model.Building{Name: cfg.BuildingName, Code: cfg.BuildingCode}
	if building.Name == "" {
		building.Name = "Main Hostel"
	}
	if building.Code == "" {
		building.Code = "MAIN"
	}
	if err := s.CreateBuilding(ctx, &building); err != nil {
		return err
	}

	admin := model.User{
		Username:  cfg.AdminUsername,
		Email:     cfg.AdminEmail,
		FirstName: cfg.AdminName,
		Role:      model.RoleSuperadmin,
	}
	if admin.FirstName == "" {
		admin.FirstName = cfg.AdminUsername
	}
	if err := s.CreateUser(ctx, &admin, building.UUID, "", nil); err != nil {
		return err
	}

	issued, err := s.IssueToken(ctx, time.Now(), admin.UUID, cfg.TokenDays)
	if err != nil {
		return err
	}
	logger.Printf("bootstrap: created building %q and superadmin %q", building.Name, admin.Username)
	logger.Printf("bootstrap: superadmin API token (shown once): %s", issued.Token)
	return nil
}

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "slotify ", log.LstdFlags)

	// A .env file is optional; deployed environments set variables directly.
	_ = godotenv.Load()

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Web push runs only when both VAPID keys are present.
	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys are not configured; push reminders are disabled")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create the store layer instance
	appStore := store.NewGormStore(gormDB, store.Rules{
		HorizonDays:        cfg.Booking.HorizonDays,
		MaxPerDay:          cfg.Booking.MaxPerDay,
		WeeklyMachineLimit: cfg.Booking.WeeklyMachineLimit,
		Location:           cfg.Booking.Location,
	})
	logger.Println("data store initialized")

	if err := bootstrap(ctx, appStore, &cfg.Bootstrap, logger); err != nil {
		logger.Fatalf("failed to bootstrap database: %v", err)
	}

	// Email reminders go through the external mail API when configured.
	var mail notification.EmailSender
	if client := mailer.NewClient(&cfg.Mailer); client != nil {
		mail = client
	} else {
		logger.Println("mailer.base_url is not configured; email reminders are disabled")
	}

	// Start the delivery workers and the reminder scanner in the background.
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, mail)
	pool.Start(ctx)
	scanner := reminder.NewService(&cfg.Reminders, appStore, pool)
	go scanner.Run(ctx)

	// Initialize router
	router := api.NewRouter(appStore, api.Options{
		WebPush:        webpushOptions,
		Roster:         roster.NewParser(cfg.Roster.RollPrefixes, cfg.Roster.EmailDomain),
		Scanner:        scanner,
		TokenDays:      cfg.Tokens.DefaultDays,
		Location:       cfg.Booking.Location,
		CacheTTL:       time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
		RateLimit:      cfg.Server.RateLimitPerSec,
		ClientIPHeader: cfg.Server.RequestIPHeader,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
