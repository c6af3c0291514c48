package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classtrack/internal/api"
	"classtrack/internal/app/service"
	"classtrack/internal/common/security"
	"classtrack/internal/domain/repository"
	"classtrack/internal/platform/cache"
	"classtrack/internal/platform/config"
	"classtrack/internal/platform/database"
)

func main() {
	config.Load()
	log.Println("Configuration loaded.")

	security.InitJWT()

	database.Connect()
	defer database.Close()
	if err := database.ApplyMigrations(config.AppConfig.MigrationsDir); err != nil {
		log.Fatalf("Could not apply migrations: %v", err)
	}
	log.Println("Database ready.")

	cache.ConnectRedis()
	defer cache.CloseRedis()

	userRepo := repository.NewPgUserRepository(database.DB)
	assignmentRepo := repository.NewPgAssignmentRepository(database.DB)
	responseRepo := repository.NewPgResponseRepository(database.DB)
	evaluationRepo := repository.NewPgEvaluationRepository(database.DB)
	statsRepo := repository.NewPgStatsRepository(database.DB)

	authService := service.NewAuthService(userRepo)
	assignmentService := service.NewAssignmentService(assignmentRepo, responseRepo, evaluationRepo, userRepo, database.DB)
	responseService := service.NewResponseService(responseRepo, statsRepo)
	statsService := service.NewStatsService(statsRepo)

	router := api.NewRouter(authService, assignmentService, responseService, statsService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", config.AppConfig.APIPort, err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
