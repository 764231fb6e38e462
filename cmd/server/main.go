package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"character-hub/internal/config"
	"character-hub/internal/favorites"
	apphttp "character-hub/internal/http"
	"character-hub/internal/repository/sqlite"
	"character-hub/internal/service"
	"character-hub/internal/storage"
	"character-hub/internal/token"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	accountRepo := sqlite.NewAccountRepository(db)
	characterRepo := sqlite.NewCharacterRepository(db)
	linkRepo := sqlite.NewFavoriteLinkRepository(db)

	if err := accountRepo.Init(ctx); err != nil {
		logger.Fatalf("init account repository: %v", err)
	}
	if err := characterRepo.Init(ctx); err != nil {
		logger.Fatalf("init character repository: %v", err)
	}
	if err := linkRepo.Init(ctx); err != nil {
		logger.Fatalf("init favorite link repository: %v", err)
	}

	codec, err := buildCodec(cfg, logger)
	if err != nil {
		logger.Fatalf("setup token codec: %v", err)
	}

	setStore := buildSetStore(ctx, cfg, logger)
	favoriteSvc := favorites.NewService(setStore, linkRepo)

	storageSvc := buildStorage(ctx, cfg, logger)

	authSvc := service.NewAuthService(accountRepo, setStore, codec)
	characterSvc := service.NewCharacterService(characterRepo, favoriteSvc, storageSvc, service.ArtOptions{
		Bucket: cfg.Storage.Bucket,
		URLTTL: time.Duration(cfg.Storage.URLTTLMinutes) * time.Minute,
	}, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		authSvc,
		characterSvc,
		codec,
		storageSvc,
		cfg.Storage.Bucket,
		cfg.Storage.KeyPrefix,
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

func buildCodec(cfg config.Config, logger *logrus.Logger) (*token.Codec, error) {
	ttl := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour

	secret := []byte(cfg.Auth.JWTSecret)
	if len(secret) == 0 {
		generated, err := token.NewRandomSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
		logger.Warn("no jwt secret configured; generated one for this process, outstanding tokens will not survive a restart")
	}

	return token.NewCodec(secret, ttl)
}

func buildSetStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) favorites.SetStore {
	if cfg.Redis.Addr == "" {
		logger.Info("no redis address configured; using in-memory favorites store")
		return favorites.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatalf("ping redis: %v", err)
	}

	logger.Infof("using redis favorites store at %s", cfg.Redis.Addr)
	return favorites.NewRedisStore(client)
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) storage.Service {
	if cfg.Storage.Bucket == "" {
		logger.Info("no storage bucket configured; character art keys are served as-is")
		return nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		logger.Fatalf("load aws config: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client)
}
