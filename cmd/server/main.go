package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"takasafi/internal/ai"
	"takasafi/internal/config"
	apphttp "takasafi/internal/http"
	"takasafi/internal/repository/sqlite"
	"takasafi/internal/service"
	"takasafi/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	secret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if secret == "" {
		logger.Fatalf("auth jwt secret is required")
	}
	if cfg.Server.Mode == "release" && secret == config.DefaultJWTSecret {
		logger.Fatalf("auth jwt secret must not be the development default in release mode")
	}
	if secret == config.DefaultJWTSecret {
		logger.Warn("using the development jwt secret; do not deploy this configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	eventRepo := sqlite.NewEventRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := eventRepo.Init(ctx); err != nil {
		logger.Fatalf("init event repository: %v", err)
	}

	userService := service.NewUserService(userRepo)
	eventService := service.NewEventService(eventRepo)

	var describer ai.Describer
	if cfg.AI.APIKey != "" {
		var opts []ai.Option
		if cfg.AI.Model != "" {
			opts = append(opts, ai.WithModel(cfg.AI.Model))
		}
		if cfg.AI.Endpoint != "" {
			opts = append(opts, ai.WithBaseURL(cfg.AI.Endpoint))
		}
		describer = ai.NewGeminiDescriber(cfg.AI.APIKey, opts...)
		logger.Infof("description generation enabled (model %s)", cfg.AI.Model)
	} else {
		logger.Warn("no AI api key configured; description generation disabled")
	}

	storageSvc, storageOpts, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		eventService,
		describer,
		storageSvc,
		storageOpts,
		secret,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour,
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, storage.UploadOptions, error) {
	opts := storage.UploadOptions{
		Bucket:        cfg.Storage.Bucket,
		KeyPrefix:     cfg.Storage.KeyPrefix,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	}
	if cfg.Storage.Bucket == "" {
		logger.Warn("no storage bucket configured; image uploads disabled")
		return nil, opts, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, opts, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), opts, nil
}
