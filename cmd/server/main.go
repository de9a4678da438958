package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"internboard/internal/api"
	"internboard/internal/app/notify"
	"internboard/internal/app/service"
	"internboard/internal/common/security"
	"internboard/internal/domain/repository"
	"internboard/internal/platform/config"
	"internboard/internal/platform/database"
	"internboard/internal/platform/pubsub"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	if security.TokenAuth == nil {
		log.Println("WARNING: JWT_SECRET is not set; authenticated routes will fail")
	} else {
		fmt.Println("JWT initialized.")
	}

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	database.Migrate("migrations")

	// 4. Initialize Redis
	pubsub.ConnectRedis()
	defer pubsub.CloseRedis()

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	projectRepo := repository.NewPgProjectRepository(database.DB)

	// 6. Initialize Notification Bus & Services
	bus := notify.NewRedisBus(pubsub.RDB, config.AppConfig.EventChannelPrefix)
	authService := service.NewAuthService(userRepo)
	projectService := service.NewProjectService(projectRepo, userRepo, bus)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, projectService, userRepo, bus)

	server := &http.Server{
		Addr:        ":" + config.AppConfig.APIPort,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// No write timeout: /events holds its response open indefinitely.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
