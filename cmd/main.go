package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetops/driver-safety/internal/auth"
	"github.com/fleetops/driver-safety/internal/config"
	"github.com/fleetops/driver-safety/internal/db"
	"github.com/fleetops/driver-safety/internal/events"
	"github.com/fleetops/driver-safety/internal/handlers"
	"github.com/fleetops/driver-safety/internal/middleware"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	}

	ctx := context.Background()
	store, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Info("Connected to MongoDB")

	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.MQTTBroker != "" {
		mqttPub, err := events.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClient)
		if err != nil {
			log.Fatalf("Failed to connect to MQTT broker: %v", err)
		}
		publisher = mqttPub
		log.WithField("broker", cfg.MQTTBroker).Info("Connected to MQTT broker")
	}

	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	authMW := middleware.NewAuthMiddleware(authService, store.Users)
	rateMW := middleware.NewRateLimitMiddleware()

	router := handlers.NewRouter(handlers.RouterConfig{
		ClientURL:   cfg.ClientURL,
		Environment: cfg.Environment,
		Auth:        handlers.NewAuthHandler(authService, store.Users),
		Drivers:     handlers.NewDriverHandler(store.Users),
		Vehicles:    handlers.NewVehicleHandler(store.Vehicles, store.Users),
		Incidents:   handlers.NewIncidentHandler(store.Incidents, store.Users, store.Vehicles, publisher),
		Reports:     handlers.NewReportsHandler(store.Incidents, store.Users, store.Vehicles),
		AuthMW:      authMW,
		RateMW:      rateMW,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	publisher.Close()
	if err := store.Close(shutCtx); err != nil {
		log.WithError(err).Error("MongoDB disconnect failed")
	}
}
