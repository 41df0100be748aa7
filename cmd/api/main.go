package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"servicemarket/internal/adapter/api"
	"servicemarket/internal/adapter/api/handler"
	apimiddleware "servicemarket/internal/adapter/api/middleware"
	"servicemarket/internal/adapter/api/router"
	"servicemarket/internal/domain/service"
	"servicemarket/internal/infrastructure/firebase"
	"servicemarket/internal/infrastructure/ratelimit"
	"servicemarket/internal/infrastructure/storage"
	"servicemarket/internal/infrastructure/token"
	"servicemarket/internal/infrastructure/websocket"
	"servicemarket/internal/usecase"
	"servicemarket/pkg/config"
	"servicemarket/pkg/logger"
	"servicemarket/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	if cfg.LogLevel != "" {
		logger.SetLevel(cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var firebaseApp *fbapp.App
	if cfg.UsesFirebase() {
		firebaseApp, err = firebase.NewApp(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase: %v", err)
		}
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer st.close()

	var identity usecase.IdentityProvider
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase Auth: %v", err)
		}
		identity = firebase.NewFirebaseAuthClient(authClient)
	default:
		if cfg.Environment == "production" && cfg.JWTSecret == "jwt_secret" {
			logger.Warn("JWT_SECRET is the default value in production")
		}
		identity = token.NewJWTProvider(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)
	}

	var files service.FileUploadService
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, firebase.ClientOptions(cfg)...)
		if err != nil {
			logger.Fatal("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		files = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET not set, avatar uploads are disabled")
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	messageLimiter := ratelimit.NewRateLimiter(cfg.MessageRatePerMinute)
	messageLimiter.StartCleanupRoutine(ctx)
	authLimiter := ratelimit.NewRateLimiter(cfg.AuthRatePerMinute)
	authLimiter.StartCleanupRoutine(ctx)

	projector := usecase.NewProjector(st.users, st.requirements)
	authUseCase := usecase.NewAuthUseCase(st.users, identity)
	userUseCase := usecase.NewUserUseCase(st.users, files, cfg.AvatarMaxBytes)
	requirementUseCase := usecase.NewRequirementUseCase(st.requirements, st.bids, projector)
	bidUseCase := usecase.NewBidUseCase(st.bids, st.requirements, projector)
	chatUseCase := usecase.NewChatUseCase(st.messages, wsManager, messageLimiter)

	handler.Setup(authUseCase, userUseCase, requirementUseCase, bidUseCase, chatUseCase)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
	}))
	e.Use(middleware.BodyLimit("8M"))

	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	authMiddleware := apimiddleware.NewAuthMiddleware(authUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, chatUseCase, cfg.CORSAllowedOrigins)
	healthHandler := handler.NewHealthHandler(cfg.StoreDriver, st.ping)

	router.Setup(e, authMiddleware, authLimiter, wsHandler, healthHandler)

	go func() {
		logger.Info("Starting server on port %s (store=%s, auth=%s)", cfg.ServerPort, cfg.StoreDriver, cfg.AuthProvider)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
