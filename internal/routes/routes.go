package routes

import (
	"context"
	"fmt"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/HealthQuestBack/internal/config"
	"github.com/saeid-a/HealthQuestBack/internal/database"
	"github.com/saeid-a/HealthQuestBack/internal/handlers"
	"github.com/saeid-a/HealthQuestBack/internal/middleware"
	"github.com/saeid-a/HealthQuestBack/internal/models"
	"github.com/saeid-a/HealthQuestBack/internal/repository"
	"github.com/saeid-a/HealthQuestBack/internal/services"
	"github.com/saeid-a/HealthQuestBack/internal/session"
	statews "github.com/saeid-a/HealthQuestBack/internal/websocket"
	"go.uber.org/zap"
)

const sessionSweepInterval = 10 * time.Minute

// RegisterRoutes wires the API onto app. The returned function releases the
// background resources it started.
func RegisterRoutes(ctx context.Context, app *fiber.App, cfg *config.Config, db *pgxpool.Pool, logger *zap.Logger) (func(), error) {
	userRepo, snapshotStore, closeStore, err := newStores(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	gemini, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, logger)
	if err != nil {
		closeStore()
		return nil, err
	}
	rules := services.DefaultPromptRules()
	planService := services.NewPlanService(gemini, cfg.PlanModel, rules, logger)
	checkInService := services.NewCheckInService(gemini, cfg.AnalysisModel, rules, logger)

	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := statews.NewHub(logger)
	go hub.Run(hubCtx)

	manager := session.NewManager(session.Dependencies{
		Store:     snapshotStore,
		Planner:   planService,
		Analyzer:  checkInService,
		Publisher: hub,
		Logger:    logger,
	}, cfg.DefaultLanguage)
	go manager.RunSweeper(hubCtx, sessionSweepInterval)

	authHandler := handlers.NewAuthHandler(userRepo, manager, cfg.JWTSecret, cfg.TokenTTL, logger)
	stateHandler := handlers.NewStateHandler(manager, logger)
	onboardingHandler := handlers.NewOnboardingHandler(manager, logger)
	taskHandler := handlers.NewTaskHandler(manager, logger)
	checkInHandler := handlers.NewCheckInHandler(manager, logger)
	realtimeHandler := handlers.NewRealtimeHandler(manager, hub, cfg.JWTSecret, logger)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", middleware.AuthRequired(cfg.JWTSecret), authHandler.Logout)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	api.Use("/v1/ws", realtimeHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(realtimeHandler.HandleWebSocket))

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))
	authProtected.Get("/state", stateHandler.GetState)
	authProtected.Get("/dashboard", stateHandler.GetDashboard)
	authProtected.Get("/food-guide", stateHandler.GetFoodGuide)
	authProtected.Put("/preferences", stateHandler.UpdatePreferences)
	authProtected.Post("/preferences/theme/toggle", stateHandler.ToggleTheme)
	authProtected.Put("/screen", stateHandler.SelectScreen)
	authProtected.Post("/onboarding", onboardingHandler.Onboard)

	tasks := authProtected.Group("/tasks")
	tasks.Get("", taskHandler.ListTasks)
	tasks.Post("/:id/toggle", taskHandler.ToggleTask)

	checkins := authProtected.Group("/checkins")
	checkins.Get("", checkInHandler.ListCheckIns)
	checkins.Post("", checkInHandler.SubmitCheckIn)

	if err := registerDocsRoutes(app, cfg); err != nil {
		stopHub()
		closeStore()
		return nil, err
	}

	logger.Info("routes registered", zap.String("store_backend", cfg.StoreBackend))
	return func() {
		stopHub()
		closeStore()
	}, nil
}

type userRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// newStores picks the account and snapshot stores for the configured
// backend. db is nil when the backend keeps everything in sqlite.
func newStores(ctx context.Context, cfg *config.Config, db *pgxpool.Pool) (userRepository, session.SnapshotStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		return repository.NewUserRepository(db), repository.NewSnapshotRepository(db), func() {}, nil
	case config.StoreBackendSupabase:
		snapshots := repository.NewSupabaseSnapshotRepository(cfg.SupabaseURL, cfg.SupabaseTable, cfg.SupabaseServiceKey)
		return repository.NewUserRepository(db), snapshots, func() {}, nil
	case config.StoreBackendSQLite:
		sqlDB, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewSQLiteUserRepository(sqlDB), repository.NewSQLiteSnapshotRepository(sqlDB), func() { _ = sqlDB.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
