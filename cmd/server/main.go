package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"site-content-api/internal/app"
	"site-content-api/internal/auth"
	"site-content-api/internal/config"
	"site-content-api/internal/grpcsrv"
	"site-content-api/internal/handler"
	"site-content-api/internal/logging"
	"site-content-api/internal/middleware"
	"site-content-api/internal/model"
	"site-content-api/internal/router"
	"site-content-api/internal/seed"
	"site-content-api/internal/store"
	"site-content-api/internal/store/bolt"
	"site-content-api/internal/store/memory"
	"site-content-api/internal/store/postgres"
	"site-content-api/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel)
	proxies, err := cfg.Proxies()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  logging.Service,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	// storage
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warnf("store close: %v", err)
		}
	}()

	a, err := app.New(backend, auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL), store.SystemClock)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := a.Accounts.Bootstrap(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if cfg.SeedFile != "" {
		if err := seedFrom(ctx, cfg.SeedFile, a); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	// rate limiting: redis when configured, otherwise per process
	var limiter middleware.Limiter
	ready := []handler.Pinger{backend}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		perMinute := max(int(cfg.RateLimitRPS*60), cfg.RateLimitBurst)
		limiter = middleware.NewRedisRateLimiter(rdb, perMinute, time.Minute, "site-content:rl")
		ready = append(ready, redisPinger{rdb})
		log.WithField("addr", cfg.RedisAddr).Info("rate limiting via redis")
	} else {
		rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go rl.Sweep(ctx, time.Minute, 3*time.Minute)
		limiter = rl
	}

	h := router.New(a.Handler, router.Options{
		Tokens:         a.Tokens,
		Limiter:        limiter,
		TrustedProxies: proxies,
		Ready:          ready,
		CORS: middleware.CORSPolicy{
			AllowedOrigins:   cfg.Origins(),
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           10 * time.Minute,
		},
		Timeout:   cfg.RequestTimeout,
		BodyLimit: cfg.RequestBodyLimit,
		Logger:    logger,
	})

	// grpc health
	var grpcSrv *grpcsrv.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		grpcSrv = grpcsrv.New(backend, 10*time.Second)
		go func() {
			log.Printf("grpc health on :%s", cfg.GRPCPort)
			if err := grpcSrv.Serve(ctx, lis); err != nil {
				log.Errorf("grpc: %v", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           telemetry.Handler(h, "site-content-api"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("http on :%s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http: %w", err)
			stop()
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("http shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warnf("tracing shutdown: %v", err)
	}

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.DatabaseURL)
	case config.DriverBolt:
		return bolt.Open(cfg.BoltPath)
	default:
		log.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil
	}
}

func seedFrom(ctx context.Context, path string, a *app.App) error {
	f, err := seed.Load(path)
	if err != nil {
		return err
	}
	who := model.Identity{UserID: "seed", Role: model.RoleAdmin, Name: "Seed"}
	n, err := seed.Apply(ctx, f, who, a.Services...)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"file": path, "created": n}).Info("seed applied")
	return nil
}

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }
