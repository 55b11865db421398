// Command littlelemon serves the Little Lemon restaurant ordering API.
//
//	littlelemon                  run the HTTP API and the gRPC health server
//	littlelemon migrate          apply the embedded SQL migrations and exit
//	littlelemon createsuperuser  create an admin account and exit
//
//	@title						Little Lemon API
//	@version					1.0
//	@description				Menu, cart and order management for the Little Lemon restaurant.
//	@BasePath					/api
//	@securityDefinitions.apikey	TokenAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/littlelemon/internal/cache"
	"github.com/MikeMC777/littlelemon/internal/cart"
	"github.com/MikeMC777/littlelemon/internal/config"
	"github.com/MikeMC777/littlelemon/internal/db"
	"github.com/MikeMC777/littlelemon/internal/health"
	"github.com/MikeMC777/littlelemon/internal/logger"
	"github.com/MikeMC777/littlelemon/internal/menu"
	"github.com/MikeMC777/littlelemon/internal/order"
	"github.com/MikeMC777/littlelemon/internal/user"
)

func main() {
	cfg := config.Load()
	zl, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "serve":
		err = serve(cfg, zl)
	case "migrate":
		err = migrate(cfg, zl)
	case "createsuperuser":
		err = createSuperuser(cfg, zl, os.Args[2:])
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		zl.Fatal(cmd+" failed", zap.Error(err))
	}
}

func migrate(cfg config.Config, zl *zap.Logger) error {
	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	return db.Migrate(ctx, pool, zl)
}

func createSuperuser(cfg config.Config, zl *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	var in user.RegisterRequest
	fs.StringVar(&in.Username, "username", "", "admin username")
	fs.StringVar(&in.Email, "email", "", "admin email")
	fs.StringVar(&in.Password, "password", os.Getenv("SUPERUSER_PASSWORD"), "admin password (or SUPERUSER_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := user.NewService(user.NewPGRepo(pool), user.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL))
	u, err := svc.CreateSuperuser(ctx, in)
	if err != nil {
		return err
	}
	zl.Info("superuser created", zap.Int64("id", u.ID), zap.String("username", u.Username))
	return nil
}

func serve(cfg config.Config, zl *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool, zl); err != nil {
			return err
		}
	}

	var store cache.Store
	if cfg.RedisAddr != "" {
		rs := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rs.Ping(ctx); err != nil {
			zl.Warn("redis unreachable, throttle and menu cache fail open", zap.Error(err))
		}
		store = rs
	} else {
		store = cache.NewMemoryStore()
	}
	defer func() { _ = store.Close() }()

	checker := health.NewChecker(pool, 10*time.Second, zl)
	go checker.Run(ctx)
	grpcSrv, err := checker.Serve(cfg.GRPCAddr)
	if err != nil {
		return err
	}
	defer grpcSrv.GracefulStop()

	r := newRouter(deps{
		cfg:    cfg,
		log:    zl,
		users:  user.NewService(user.NewPGRepo(pool), user.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)),
		menu:   menu.NewPGRepo(pool),
		carts:  cart.NewPGRepo(pool),
		orders: order.NewPGRepo(pool),
		store:  store,
		pinger: pool,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zl.Info("littlelemon listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
