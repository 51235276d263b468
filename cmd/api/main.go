package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ledgerline/practice-portal/practice-portal-backend/internal/activity"
	"ledgerline/practice-portal/practice-portal-backend/internal/auth"
	"ledgerline/practice-portal/practice-portal-backend/internal/clients"
	"ledgerline/practice-portal/practice-portal-backend/internal/companieshouse"
	"ledgerline/practice-portal/practice-portal-backend/internal/config"
	"ledgerline/practice-portal/practice-portal-backend/internal/notifications"
	"ledgerline/practice-portal/practice-portal-backend/internal/reminders"
	"ledgerline/practice-portal/practice-portal-backend/internal/reports"
	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}

	if err := db.AutoMigrate(
		&auth.User{},
		&clients.Client{},
		&workflow.Workflow{},
		&workflow.HistoryEntry{},
		&notifications.Notification{},
		&activity.Entry{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	ctx := context.Background()

	// ---------------- AUTH ----------------
	authService := auth.NewService(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authHandler := auth.NewHandler(authService)

	// ---------------- NOTIFICATIONS ----------------
	var emailChannel *notifications.EmailChannel
	if cfg.Email.Sender != "" {
		emailChannel, err = notifications.NewEmailChannel(ctx, cfg.Email.Region, cfg.Email.Sender)
		if err != nil {
			log.Printf("Warning: email channel disabled: %v", err)
		}
	}
	notificationService := notifications.NewService(db, emailChannel, authService)

	// ---------------- WORKFLOW ENGINE ----------------
	workflowRepo := workflow.NewRepository(db)
	rolloverEngine := workflow.NewRolloverEngine(workflowRepo)
	activitySink := activity.NewSink(db)
	workflowService := workflow.NewService(workflowRepo, rolloverEngine, notificationService, activitySink)
	workflowHandler := workflow.NewHandler(workflowService, auth.CurrentActor)

	// ---------------- CLIENTS ----------------
	var registry *companieshouse.Client
	if cfg.CompaniesHouse.APIKey != "" {
		registry = companieshouse.NewClient(cfg.CompaniesHouse.APIKey, cfg.CompaniesHouse.BaseURL)
	}
	clientRepo := clients.NewRepository(db)
	clientService := clients.NewService(clientRepo, workflowService, registry)
	clientHandler := clients.NewHandler(clientService, auth.CurrentActor)

	// ---------------- REPORTS ----------------
	reportService := reports.NewService(db)
	reportHandler := reports.NewHandler(reportService, clientService, workflowService, cfg.Practice.Name)

	// ---------------- REMINDERS ----------------
	if cfg.Reminders.Enabled {
		logger, err := zap.NewProduction()
		if err != nil {
			log.Fatal("Failed to create logger:", err)
		}
		scheduler := reminders.NewScheduler(workflowRepo, notificationService, logger, reminders.Config{
			CronSpec:    cfg.Reminders.CronSpec,
			OffsetsDays: cfg.Reminders.OffsetsDays,
		})
		if err := scheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start reminder scheduler:", err)
		}
		defer scheduler.Stop()
	}

	// ---------------- ROUTER ----------------
	r := gin.Default()
	authHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(auth.Middleware(authService))
	{
		authHandler.RegisterProtectedRoutes(api)
		workflowHandler.RegisterRoutes(api)
		clientHandler.RegisterRoutes(api)
		reportHandler.RegisterRoutes(api)
	}

	log.Println("Server running on", cfg.Server.GetServerAddr())
	if err := r.Run(cfg.Server.GetServerAddr()); err != nil {
		log.Fatal(err)
	}
}
