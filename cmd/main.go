package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pixelcrate/pixelcrate-server/internal/api/http/handler"
	"github.com/pixelcrate/pixelcrate-server/internal/api/http/middleware"
	"github.com/pixelcrate/pixelcrate-server/internal/api/http/router"
	"github.com/pixelcrate/pixelcrate-server/internal/cache"
	"github.com/pixelcrate/pixelcrate-server/internal/config"
	"github.com/pixelcrate/pixelcrate-server/internal/logger"
	"github.com/pixelcrate/pixelcrate-server/internal/mailer"
	"github.com/pixelcrate/pixelcrate-server/internal/repository/postgres"
	"github.com/pixelcrate/pixelcrate-server/internal/server"
	"github.com/pixelcrate/pixelcrate-server/internal/service"
	storage "github.com/pixelcrate/pixelcrate-server/internal/storage/minio"
	"github.com/pixelcrate/pixelcrate-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	redisCache, err := cache.New(ctx, cfg.Redis.URL)
	if err != nil {
		logger.Fatal("failed to initialize redis", "error", err)
	}
	defer redisCache.Close()

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	userRepo := postgres.NewUserRepository(db)
	photoRepo := postgres.NewPhotoRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	authService := service.NewAuth(userRepo, redisCache, tokenManager, mailer.NewLog(logger), logger)
	photoService := service.NewPhoto(photoRepo, storageClient, service.PhotoConfig{
		MaxSizeBytes:     cfg.Upload.MaxSizeBytes,
		AllowedMimeTypes: cfg.Upload.AllowedMimeTypes,
		StoreTimeout:     cfg.Storage.Timeout,
	}, logger)

	authHandler := handler.NewAuthHandler(authService, cfg.JWT.TTL, cfg.HTTP.SecureCookies, logger)
	photoHandler := handler.NewPhotoHandler(photoService, cfg.Upload.MaxSizeBytes, logger)
	authenticate := middleware.NewAuthenticate(tokenManager, logger)

	mux := router.New(authHandler, photoHandler, authenticate, logger)
	httpServer := server.New(mux, cfg.HTTP.Port, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting server on", "address", httpServer.Addr())
		if err := httpServer.Start(); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Addr())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
