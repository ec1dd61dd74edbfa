package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"whodunnit/internal/cache"
	"whodunnit/internal/catalog"
	"whodunnit/internal/config"
	"whodunnit/internal/repository"
	"whodunnit/internal/service"
	"whodunnit/internal/transport/rest"
	"whodunnit/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Wait until the store answers; nothing can be served before that.
	readyCtx, cancel := context.WithTimeout(ctx, cfg.StoreReadyTimeout)
	defer cancel()
	if err := repository.WaitReady(readyCtx, mongoClient); err != nil {
		log.Fatal("MongoDB not ready:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	sessionRepo := repository.NewSessionRepo(db)
	playerRepo := repository.NewPlayerRepo(db)
	scriptRepo := repository.NewScriptRepo(db)

	// Initialize cache
	sessionCache := cache.NewSessionCache(rdb)

	// Load the script catalog once; malformed entries are skipped
	cat, err := catalog.Load(ctx, scriptRepo)
	if err != nil {
		log.Fatal("Failed to load script catalog:", err)
	}

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	sessionSvc := service.NewSessionService(sessionRepo, playerRepo, sessionCache, cat)
	gameSvc := service.NewGameService(sessionRepo, playerRepo, sessionCache)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)
	gameSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:    authSvc,
		SessionService: sessionSvc,
		GameService:    gameSvc,
		Catalog:        cat,
		WSHub:          wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/sessions")
		log.Println("  POST /v1/sessions/{code}/join")
		log.Println("  POST /v1/sessions/{code}/start")
		log.Println("  POST /v1/sessions/{code}/advance")
		log.Println("  POST /v1/sessions/{code}/ready")
		log.Println("  POST /v1/sessions/{code}/accusations")
		log.Println("  GET  /v1/scripts")
		log.Println("  WS   /v1/ws/sessions/{code}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
