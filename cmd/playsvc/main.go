package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/courtside/hoop-services/configs"
	"github.com/courtside/hoop-services/internal/db"
	"github.com/courtside/hoop-services/internal/kv"
	nats "github.com/courtside/hoop-services/internal/nats"
	"github.com/courtside/hoop-services/internal/playsvc/broker"
	svcconfig "github.com/courtside/hoop-services/internal/playsvc/config"
	pgdb "github.com/courtside/hoop-services/internal/playsvc/db"
	handlers "github.com/courtside/hoop-services/internal/playsvc/handlers"
	"github.com/courtside/hoop-services/internal/playsvc/service"
	"github.com/courtside/hoop-services/internal/playsvc/store"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "play"

const heartbeatInterval = 30 * time.Second

func init() {
	config.Logging(SERVICE_NAME + "_service")
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	instanceId := config.CreateUniqueInstance(SERVICE_NAME)
	cfg := svcconfig.Load()

	// pg connection for durable courts, users and friendships
	dbpool, err := pgdb.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dbpool.Close()
	log.Printf("pg connection established successfully")

	// mongo connection for the durable game archive
	mongoDB, cancelMongo, err := db.ConnectToDB()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancelMongo()
	log.Printf("mongo connection established successfully")

	// redis holds every volatile key: player pointers, invites, game mirrors
	volatile, err := kv.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer volatile.Close()
	log.Printf("redis connection established successfully")

	courtStore := store.NewCourtStore(dbpool)
	userStore := store.NewUserStore(dbpool)
	friendStore := store.NewFriendStore(dbpool)
	archiveStore := store.NewArchiveStore(mongoDB)

	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	eventBroker := broker.NewBroker(n.Conn)
	playService := service.NewPlayService(volatile, archiveStore, courtStore, eventBroker)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(playService, courtStore, userStore, friendStore)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Heartbeat for the control plane
	heartbeatDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				eventBroker.PublishHeartbeat(instanceId)
			case <-heartbeatDone:
				return
			}
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	close(heartbeatDone)
	eventBroker.PublishShutdown(instanceId)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
