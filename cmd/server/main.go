package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/jwt_auth/internal/bootstrap"
	"github.com/Skotchmaster/jwt_auth/internal/config"
	"github.com/Skotchmaster/jwt_auth/internal/events"
	"github.com/Skotchmaster/jwt_auth/internal/httpserver"
	auth "github.com/Skotchmaster/jwt_auth/internal/middleware/auth"
	"github.com/Skotchmaster/jwt_auth/internal/policy"
	"github.com/Skotchmaster/jwt_auth/internal/repo"
	"github.com/Skotchmaster/jwt_auth/internal/service"
	"github.com/Skotchmaster/jwt_auth/internal/task"
	"github.com/Skotchmaster/jwt_auth/pkg/db"
	"github.com/Skotchmaster/jwt_auth/pkg/logging"
	loggingmw "github.com/Skotchmaster/jwt_auth/pkg/middleware/logging"
	"github.com/Skotchmaster/jwt_auth/pkg/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}()

	r := repo.New(gdb)
	if err := r.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		pub = p
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}()
	emitter := events.NewEmitter(pub, cfg.KafkaTopic)

	codec := tokens.NewCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL)
	users := &service.UserService{Users: r, Roles: r, Events: emitter}
	roles := &service.RoleService{Users: r, Roles: r, Events: emitter}
	tokenSvc := &service.TokenService{
		Users:    r,
		Store:    service.NewRefreshStore(r, cfg.RefreshTTLMonths),
		Codec:    codec,
		Events:   emitter,
		Location: cfg.PurgeLocation,
	}

	if err := bootstrap.Seed(ctx, users, roles, cfg.SeedDefaults); err != nil {
		log.Fatalf("seed: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.HTTPErrorHandler = httpserver.ErrorHandler(nil)
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLoggerWithConfig(loggingmw.Config{Skipper: loggingmw.SkipHealth, Logger: logger}),
	)

	userHTTP := &httpserver.UserHTTP{Svc: users}
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:   &httpserver.AuthHTTP{Svc: tokenSvc, Users: userHTTP},
		UserHandler:   userHTTP,
		RoleHandler:   &httpserver.RoleHTTP{Svc: roles},
		Authenticator: auth.NewAuthenticator(cfg.LoginPath, users, tokenSvc),
		Authorizer:    auth.NewAuthorizer(codec, cfg.LoginPath),
		Gate:          auth.NewGate(policy.DefaultTable(cfg.LoginPath)),
	})

	expiry := task.NewExpiryControl(tokenSvc, cfg.PurgeLocation)
	go func() {
		if err := expiry.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("expiry_control_stopped", "error", err)
		}
	}()

	go func() {
		logger.Info("server_start", "addr", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("server_shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo_shutdown_error", "error", err)
	}
}
