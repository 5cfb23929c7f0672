package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/user-records/config"
	"github.com/oksasatya/user-records/internal/container"
	"github.com/oksasatya/user-records/internal/infrastructure/filestore"
	"github.com/oksasatya/user-records/internal/infrastructure/store"
	"github.com/oksasatya/user-records/internal/interface/middleware"
	"github.com/oksasatya/user-records/internal/router"
	"github.com/oksasatya/user-records/pkg/helpers"
	"github.com/oksasatya/user-records/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	repo, closeStore, err := store.OpenUserRepository(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open user store: %v", err)
	}
	defer closeStore()

	// Upload storage must be usable before the server accepts traffic
	files, closeFiles, err := openFiles(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init upload storage: %v", err)
	}
	defer closeFiles()

	// Redis (rate limiting), optional
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			logger.WithError(err).Warn("redis unavailable; rate limiting fails open")
		}
		defer func() { _ = rdb.Close() }()
		container.SetRedis(rdb)
	}

	// Elasticsearch (search), optional
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("failed to init elasticsearch: %v", err)
		}
		if err := helpers.EnsureIndex(ctx, es, cfg.ESUsersIndex, helpers.UsersIndexMapping); err != nil {
			logger.WithError(err).Warn("ensure users index failed")
		}
		container.SetES(es)
	}

	// RabbitMQ (user events), optional
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; user events disabled")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetUserRepo(repo)
	container.SetFiles(files)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestIDMiddleware())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.Env == "development" || cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}
	r.NoRoute(middleware.NotFound())

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	reg.Use(middleware.RealIP())
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func openFiles(ctx context.Context, cfg *config.Config) (filestore.Store, func(), error) {
	switch cfg.StorageBackend {
	case "gcs":
		if cfg.GCSBucket == "" {
			return nil, nil, errors.New("GCS_BUCKET is required when STORAGE_BACKEND=gcs")
		}
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return nil, nil, err
		}
		return filestore.NewGCS(client, cfg.GCSBucket), func() { _ = client.Close() }, nil
	case "local", "":
		local, err := filestore.NewLocal(cfg.UploadDir, cfg.UploadURLPrefix)
		if err != nil {
			return nil, nil, err
		}
		return local, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}
