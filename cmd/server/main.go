package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/lifedash/backend/internal/auth"
	"github.com/lifedash/backend/internal/config"
	"github.com/lifedash/backend/internal/dashboard"
	"github.com/lifedash/backend/internal/database"
	"github.com/lifedash/backend/internal/gamification"
	"github.com/lifedash/backend/internal/goals"
	"github.com/lifedash/backend/internal/habits"
	"github.com/lifedash/backend/internal/insights"
	"github.com/lifedash/backend/internal/learning"
	"github.com/lifedash/backend/internal/middleware"
	"github.com/lifedash/backend/internal/streak"
	"github.com/lifedash/backend/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	engine := streak.NewEngine(cfg.Calendar)
	tx := database.SQLTransactor{DB: db}
	tokens := auth.NewTokens(cfg.JWTSecret)

	// Initialize services
	gamStore := gamification.NewStore(db)
	gamService := gamification.NewService(gamStore, engine)

	habitStore := habits.NewStore(db)
	habitService := habits.NewService(habitStore, engine, gamService)

	taskStore := tasks.NewStore(db)
	taskService := tasks.NewService(taskStore)

	goalStore := goals.NewStore(db)
	goalService := goals.NewService(goalStore, tx, gamService)

	learningStore := learning.NewStore(db)
	learningService := learning.NewService(learningStore, tx, gamService, engine)

	writer := insights.NewWriter(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.MockInsights)
	dashService := dashboard.NewService(taskStore, learningStore, habitService, goalStore, gamService, writer, engine)

	// Initialize handlers
	authHandler := auth.NewHandler(db, tokens)
	habitHandler := habits.NewHandler(habitService)
	taskHandler := tasks.NewHandler(taskService)
	goalHandler := goals.NewHandler(goalService)
	learningHandler := learning.NewHandler(learningService)
	dashHandler := dashboard.NewHandler(dashService)
	gamHandler := gamification.NewHandler(gamService)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.Logging)
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(tokens))
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	// Habits
	protected.HandleFunc("/habits", habitHandler.ListHabits).Methods("GET")
	protected.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	protected.HandleFunc("/habits/{id}", habitHandler.UpdateHabit).Methods("PUT")
	protected.HandleFunc("/habits/{id}", habitHandler.DeleteHabit).Methods("DELETE")
	protected.HandleFunc("/habits/{id}/toggle", habitHandler.ToggleHabit).Methods("POST")

	// Tasks
	protected.HandleFunc("/tasks", taskHandler.ListTasks).Methods("GET")
	protected.HandleFunc("/tasks", taskHandler.CreateTask).Methods("POST")
	protected.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods("PUT")
	protected.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods("DELETE")

	// Goals
	protected.HandleFunc("/goals", goalHandler.ListGoals).Methods("GET")
	protected.HandleFunc("/goals", goalHandler.CreateGoal).Methods("POST")
	protected.HandleFunc("/goals/{id}/progress", goalHandler.UpdateProgress).Methods("PUT")
	protected.HandleFunc("/goals/{id}", goalHandler.DeleteGoal).Methods("DELETE")

	// Learning
	protected.HandleFunc("/learning", learningHandler.ListEntries).Methods("GET")
	protected.HandleFunc("/learning", learningHandler.LogEntry).Methods("POST")
	protected.HandleFunc("/learning/stats", learningHandler.Stats).Methods("GET")
	protected.HandleFunc("/learning/{id}/complete", learningHandler.Complete).Methods("POST")
	protected.HandleFunc("/learning/{id}", learningHandler.DeleteEntry).Methods("DELETE")

	// Dashboard & gamification
	protected.HandleFunc("/dashboard", dashHandler.GetDashboard).Methods("GET")
	protected.HandleFunc("/dashboard/insights", dashHandler.GetInsights).Methods("GET")
	protected.HandleFunc("/gamification", gamHandler.GetGamification).Methods("GET")

	// Health check & metrics
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background workers
	go habitService.StartLapseWorker(ctx, cfg.StreakSweepInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (timezone %s)", cfg.Port, cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
