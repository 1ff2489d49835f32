package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rekk2/event-registration/common/database"
	"github.com/rekk2/event-registration/common/logger"
	"github.com/rekk2/event-registration/common/mqtt"
	commonredis "github.com/rekk2/event-registration/common/redis"
	"github.com/rekk2/event-registration/internal/broadcast"
	"github.com/rekk2/event-registration/internal/config"
	httpapi "github.com/rekk2/event-registration/internal/http"
	"github.com/rekk2/event-registration/internal/repository"
	"github.com/rekk2/event-registration/internal/service"
	"github.com/rekk2/event-registration/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "event-registration")
	if err != nil {
		log, _ = zap.NewProduction()
	}
	defer log.Sync()

	checks := map[string]httpapi.HealthCheck{}

	// Record store: Postgres when reachable, otherwise the in-memory store.
	var db *sql.DB
	var st repository.Store
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for event-registration", zap.String("host", cfg.Database.Host))
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory store", zap.Error(err))
		}
	}
	if db != nil {
		if cfg.DBMigrate {
			version, err := database.Migrate(db, repository.Migrations, repository.MigrationsDir)
			if err != nil {
				log.Fatal("Database migration failed", zap.Error(err))
			}
			log.Info("Database schema ready", zap.Uint("version", version))
		}
		st = repository.NewPostgresStore(db)
		checks["postgres"] = db.PingContext
	} else {
		st = repository.NewMemoryStore()
	}

	// Sessions: Redis when enabled, otherwise process memory.
	var redisClient *commonredis.Client
	var kv store.KV = store.NewMemoryKV()
	if cfg.RedisEnabled {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		client, err := commonredis.Connect(pingCtx, &cfg.Redis)
		cancel()
		if err != nil {
			log.Warn("Redis enabled but unreachable, sessions fall back to memory", zap.Error(err))
		} else {
			redisClient = client
			kv = store.NewRedisKV(client)
			checks["redis"] = func(ctx context.Context) error { return commonredis.Ping(ctx, client) }
		}
	}

	// Live channel inline; external sinks behind one bounded queue.
	hub := broadcast.NewHub(log)
	external := broadcast.NewFanout()
	if cfg.Broadcast.RedisStream != "" {
		if redisClient != nil {
			external.Add("redis-stream", broadcast.NewRedisStreamSink(redisClient, cfg.Broadcast.RedisStream, cfg.Broadcast.RedisStreamMax))
		} else {
			log.Warn("BROADCAST_REDIS_STREAM set but Redis is unavailable, stream sink disabled")
		}
	}
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		if c, err := mqtt.NewClient(&cfg.MQTT.Broker, log); err == nil {
			mqttClient = c
			external.Add("mqtt", broadcast.NewMQTTSink(c, cfg.MQTT.TopicPrefix))
			checks["mqtt"] = c.HealthCheck
			log.Info("MQTT sink enabled", zap.String("broker", cfg.MQTT.Broker.Broker))
		} else {
			log.Warn("MQTT enabled but connection failed, sink disabled", zap.Error(err))
		}
	}
	if cfg.Broadcast.WebhookURL != "" {
		external.Add("webhook", broadcast.NewWebhookSink(cfg.Broadcast.WebhookURL, cfg.Broadcast.WebhookTimeout, cfg.Broadcast.WebhookRetries, log))
	}

	fanout := broadcast.NewFanout(broadcast.NamedPublisher{Name: "hub", Publisher: hub})
	var sinkQueue *broadcast.AsyncPublisher
	if len(external.Sinks()) > 0 {
		sinkQueue = broadcast.NewAsyncPublisher("external", external, cfg.Broadcast.QueueSize, cfg.Broadcast.SinkTimeout, log)
		fanout.Add("external", sinkQueue)
	}
	log.Info("Broadcast sinks ready",
		zap.Strings("inline", fanout.Sinks()),
		zap.Strings("queued", external.Sinks()),
	)

	registration := service.NewRegistrationService(st, st, fanout, service.RegistrationOptions{
		RequireKnownDoor: cfg.Register.RequireKnownDoor,
	}, log)
	query := service.NewQueryService(st, st, service.QueryOptions{
		AllEventsIncludeActive: cfg.Search.AllEventsIncludeActive,
	})
	archives := service.NewArchiveService(st, log)
	exports := service.NewExportService(st, st, cfg.ExportLocation())
	doors := service.NewDoorService(st, log)
	auth := service.NewAuthService(st, kv, cfg.Session.TTL, log)
	users := service.NewUserService(st, log)

	if cfg.Seed.MainAdminUsername != "" && cfg.Seed.MainAdminPassword != "" {
		created, err := users.EnsureMainAdmin(context.Background(), cfg.Seed.MainAdminUsername, cfg.Seed.MainAdminPassword)
		switch {
		case err != nil:
			log.Warn("Seeding main admin failed", zap.Error(err))
		case created:
			log.Info("Seeded main admin", zap.String("username", cfg.Seed.MainAdminUsername))
		}
	}

	router := httpapi.NewRouter(log)
	authn := httpapi.NewAuthenticator(auth, cfg.Session.CookieName, log)
	router.RegisterNameRoutes(authn, httpapi.NewNameHandler(registration, query, log))
	router.RegisterDoorRoutes(authn, httpapi.NewDoorHandler(doors, log))
	router.RegisterArchiveRoutes(authn, httpapi.NewArchiveHandler(archives, log))
	router.RegisterExportRoutes(authn, httpapi.NewExportHandler(exports, log))
	router.RegisterAuthRoutes(authn, httpapi.NewAuthHandler(auth, users, httpapi.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
	}, log))
	router.RegisterSocketRoute(authn, broadcast.NewWebSocketHandler(hub, cfg.Broadcast.Buffer, log))
	router.RegisterOpsRoutes(httpapi.NewHealthHandler(checks, log), promhttp.Handler())
	if cfg.HTTP.StaticDir != "" {
		router.RegisterStaticRoutes(cfg.HTTP.StaticDir)
	}

	srv := service.NewServer(cfg.HTTP.Addr, httpapi.WithMiddleware(router, log), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server stopped", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	hub.Close()
	if sinkQueue != nil {
		if err := sinkQueue.Close(shutdownCtx); err != nil {
			log.Warn("Broadcast queue not drained", zap.Int("pending", sinkQueue.Pending()), zap.Error(err))
		}
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	_ = commonredis.Close(redisClient)
	if db != nil {
		_ = database.Close(db)
	}
}
