package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fihircio/raikan-service/internal/cache"
	"github.com/fihircio/raikan-service/internal/cleanup"
	"github.com/fihircio/raikan-service/internal/config"
	"github.com/fihircio/raikan-service/internal/events"
	"github.com/fihircio/raikan-service/internal/http/handlers/admin"
	"github.com/fihircio/raikan-service/internal/http/handlers/gallery"
	"github.com/fihircio/raikan-service/internal/http/handlers/invitations"
	"github.com/fihircio/raikan-service/internal/http/handlers/uploads"
	"github.com/fihircio/raikan-service/internal/http/handlers/users"
	wsHandler "github.com/fihircio/raikan-service/internal/http/handlers/websocket"
	"github.com/fihircio/raikan-service/internal/http/middleware"
	"github.com/fihircio/raikan-service/internal/ratelimit"
	"github.com/fihircio/raikan-service/internal/services/objectstore"
	"github.com/fihircio/raikan-service/internal/services/uploader"
	"github.com/fihircio/raikan-service/internal/storage/postgres"
	"github.com/fihircio/raikan-service/internal/upload/transcode"
	"github.com/fihircio/raikan-service/internal/upload/validate"
	"github.com/fihircio/raikan-service/internal/websocket"
)

func main() {
	// load config
	cfg := config.MustLoad()

	// database setup
	storage, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	store, err := objectstore.NewClient(&cfg.S3)
	if err != nil {
		log.Fatal("Failed to initialize object store:", err)
	}

	// upload pipeline
	uploadSvc := uploader.New(
		validate.New(&cfg.Upload),
		transcode.New(cfg.Thumbnails),
		store,
	)

	cleanupJob := cleanup.New(storage, store, cfg.Thumbnails, cfg.Cleanup.MinObjectAge, slog.Default())
	cacheService := cache.NewCacheService(storage, redisClient, cfg.Cleanup.PageCacheTTL)

	// real-time RSVP notifications
	hub := websocket.NewHub()
	go hub.Run()
	publisher := events.NewEventPublisher(hub)

	uploadBucket := ratelimit.NewTokenBucket(redisClient, cfg.Upload.RateLimitCapacity, cfg.Upload.RateLimitRefill)
	limiter := middleware.NewRateLimiter(uploadBucket)
	auth := middleware.AuthMiddleware(cfg.JWTSecret)

	uploadHandlers := uploads.NewHandlers(uploadSvc, storage, cfg.Upload.MaxBatchFiles)
	invitationHandlers := invitations.NewHandlers(storage, cacheService, cleanupJob, publisher)
	galleryHandlers := gallery.NewHandlers(storage, cacheService)

	// setup server
	router := http.NewServeMux()

	router.HandleFunc("POST /signup", users.SignUp(storage))
	router.HandleFunc("POST /login", users.Login(storage, cfg.JWTSecret))

	router.Handle("POST /uploads", auth(limiter.Middleware("uploads")(uploadHandlers.Upload())))
	router.Handle("POST /uploads/batch", auth(limiter.Middleware("uploads")(uploadHandlers.UploadBatch())))

	router.Handle("POST /invitations", auth(invitationHandlers.Create()))
	router.Handle("GET /invitations", auth(invitationHandlers.List()))
	router.Handle("GET /invitations/{id}", auth(invitationHandlers.Get()))
	router.Handle("PATCH /invitations/{id}", auth(invitationHandlers.Update()))
	router.Handle("DELETE /invitations/{id}", auth(invitationHandlers.Delete()))
	router.Handle("GET /invitations/{id}/rsvps", auth(invitationHandlers.ListRSVPs()))

	router.Handle("POST /invitations/{id}/gallery", auth(galleryHandlers.Add()))
	router.Handle("GET /invitations/{id}/gallery", auth(galleryHandlers.List()))
	router.Handle("DELETE /gallery/{gid}", auth(galleryHandlers.Delete()))

	router.HandleFunc("GET /i/{slug}", invitationHandlers.PublicView())
	router.HandleFunc("POST /i/{slug}/rsvp", invitationHandlers.CreateRSVP())

	router.HandleFunc("GET /ws", wsHandler.WebSocketHandler(hub, cfg.JWTSecret))

	router.Handle("POST /admin/cleanup/{kind}", auth(admin.TriggerCleanup(cleanupJob)))

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: router,
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
