package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/internal/auth"
	authPostgres "github.com/frahmantamala/hr-directory/internal/auth/postgres"
	"github.com/frahmantamala/hr-directory/internal/core/events"
	"github.com/frahmantamala/hr-directory/internal/people"
	peoplePostgres "github.com/frahmantamala/hr-directory/internal/people/postgres"
	"github.com/frahmantamala/hr-directory/internal/transport"
	"github.com/frahmantamala/hr-directory/internal/transport/middleware"
	"github.com/frahmantamala/hr-directory/internal/transport/rest"
	"github.com/frahmantamala/hr-directory/internal/transport/swagger"
	"github.com/frahmantamala/hr-directory/internal/user"
	userPostgres "github.com/frahmantamala/hr-directory/internal/user/postgres"
	"github.com/frahmantamala/hr-directory/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer(cmd.Context())
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *Databases
	Redis  *redis.Client
	Router *chi.Mux
	Logger *slog.Logger
}

func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

func startHTTPServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := initializeDependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		deps.Logger.Info("starting HTTP server", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	deps.Logger.Info("server stopped")
	return nil
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	if _, err := swagger.LoadSpec(ctx); err != nil {
		lg.Warn("openapi document is invalid", "error", err)
	}

	dbs, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps := &Dependencies{
		Config: cfg,
		DB:     dbs,
		Router: chi.NewRouter(),
		Logger: lg,
	}

	var revocations auth.RevocationStore
	if cfg.Redis.URL != "" {
		client, err := auth.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		deps.Redis = client
		revocations = auth.NewRedisRevocationStore(client, cfg.Redis.KeyPrefix)
	} else {
		lg.Warn("no redis url configured; token revocations are kept in memory")
		revocations = auth.NewMemoryRevocationStore(auth.DefaultRevocationCapacity, cfg.Security.RefreshTokenDuration)
	}

	registry := prometheus.NewRegistry()
	var metrics *middleware.Metrics
	if cfg.Observability.Metrics.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewDBStatsCollector(dbs.SQL, "hr_directory"),
		)
		metrics = middleware.NewMetrics(registry)
	}

	bus := events.NewEventBus(lg)
	people.RegisterAuditLog(bus, lg)

	base := transport.NewBaseHandler(lg)

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(dbs.Gorm), tokens, revocations, lg)
	userService := user.NewService(userPostgres.NewRepository(dbs.SQLX), cfg.Security.BCryptCost, lg)
	peopleService := people.NewService(peoplePostgres.NewPersonRepository(dbs.Gorm), bus, lg)

	rest.RegisterAllRoutes(deps.Router, cfg, rest.Handlers{
		Auth:    auth.NewHandler(base, authService),
		Users:   user.NewHandler(base, userService),
		People:  people.NewHandler(base, peopleService),
		RBAC:    auth.NewRBACAuthorization(auth.NewPolicy(), lg, registry),
		Metrics: metrics,
		DB:      dbs.SQL,
		Redis:   deps.Redis,
	})

	return deps, nil
}
