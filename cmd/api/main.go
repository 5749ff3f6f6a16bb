package main

import (
	"context"
	"log"

	"asset-relay/config"
	"asset-relay/internal/handler"
	"asset-relay/internal/proxy"
	"asset-relay/internal/redis"
	"asset-relay/internal/server"
	"asset-relay/internal/services"
	"asset-relay/internal/storage"
	"asset-relay/internal/store"
	"asset-relay/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)

	contentStore := store.New(store.Config{
		CapacityBytes: cfg.CapacityBytes,
		Policy:        store.ParsePolicy(cfg.EvictionPolicy),
		SweepInterval: cfg.SweepInterval,
	}, l)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go contentStore.Run(sweepCtx)

	var archive *storage.Client
	if cfg.S3Bucket != "" {
		var err error
		archive, err = storage.NewClient(context.Background(), storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
		})
		if err != nil {
			log.Fatalf("Failed to initialize archive storage: %v", err)
		}
	}

	rules, err := proxy.ParseRules(cfg.HostRewrites)
	if err != nil {
		log.Fatalf("Failed to parse host rewrite rules: %v", err)
	}

	ingest := services.NewIngestService(contentStore, archive, cfg.MaxAssetBytes, cfg.DefaultTTL, l)
	gateway := services.NewGatewayService(contentStore, archive, proxy.NewRewriteTable(rules), services.GatewayConfig{
		UpstreamBaseURL: cfg.UpstreamBaseURL,
		UpstreamTimeout: cfg.UpstreamTimeout,
		WriteThrough:    cfg.WriteThrough,
		MaxAssetBytes:   cfg.MaxAssetBytes,
		DefaultTTL:      cfg.DefaultTTL,
	}, l)

	var limiter *redis.RateLimiter
	if cfg.RedisAddr != "" {
		client, err := redis.NewClient(redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		limiter = redis.NewRateLimiter(client, redis.RateLimitConfig{
			IngestLimit:  cfg.IngestRateLimit,
			IngestWindow: cfg.IngestRateWindow,
		})
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Asset: handler.NewAssetHandler(ingest, gateway),
	}, contentStore, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
