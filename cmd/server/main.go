package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/UkralStul/hub-graphql-service/graph"
	"github.com/UkralStul/hub-graphql-service/internal/auth"
	"github.com/UkralStul/hub-graphql-service/internal/broadcast"
	"github.com/UkralStul/hub-graphql-service/internal/config"
	"github.com/UkralStul/hub-graphql-service/internal/dataloader"
	"github.com/UkralStul/hub-graphql-service/internal/gateway"
	"github.com/UkralStul/hub-graphql-service/internal/logging"
	"github.com/UkralStul/hub-graphql-service/internal/pubsub"
	"github.com/UkralStul/hub-graphql-service/internal/ratelimit"
	"github.com/UkralStul/hub-graphql-service/internal/service"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
	"github.com/UkralStul/hub-graphql-service/internal/storage/inmemory"
	"github.com/UkralStul/hub-graphql-service/internal/storage/mongodb"
	"github.com/UkralStul/hub-graphql-service/internal/storage/postgres"
	"github.com/UkralStul/hub-graphql-service/internal/transport"
	"github.com/UkralStul/hub-graphql-service/internal/upload"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		storageType string
		verbose     bool
	)
	cmd := &cobra.Command{
		Use:           "hub-server",
		Short:         "GraphQL server of the community hub",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if storageType != "" {
				cfg.Storage.Type = storageType
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}
			logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
			if err := cfg.Validate(); err != nil {
				logger.Error("invalid configuration", "error", err)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := run(ctx, cfg, logger); err != nil {
				logger.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the yaml config file")
	cmd.Flags().StringVar(&storageType, "storage", "", "storage type: in-memory, mongo or postgres")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func openBackend(ctx context.Context, cfg config.Storage) (storage.Backend, error) {
	switch cfg.Type {
	case config.StoragePostgres:
		return postgres.New(cfg.DatabaseURL, cfg.Debug)
	case config.StorageMongo:
		return mongodb.New(ctx, cfg.MongoURL, cfg.MongoDB)
	default:
		return inmemory.New(), nil
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting server", "storage", cfg.Storage.Type, "port", cfg.Server.Port)

	backend, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Type, err)
	}
	store := storage.New(backend)
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := store.Close(cctx); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	registry := pubsub.NewRegistry(service.Topics())
	defer registry.Close()
	gw := gateway.New(registry, broadcast.New(registry, logger), logger)

	files, err := upload.NewDisk(cfg.Uploads.Dir, cfg.Uploads.URLPath, cfg.Uploads.MaxBytes, cfg.Uploads.Allow)
	if err != nil {
		return err
	}
	svc := service.New(store, gw, files, logger)

	if err := seedRoles(ctx, store); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	if cfg.Storage.Type == config.StorageMemory && cfg.Storage.Seed {
		if err := seedMockData(ctx, svc, logger); err != nil {
			return fmt.Errorf("seed mock data: %w", err)
		}
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		// токены in-memory сервера не переживают перезапуск, как и данные
		secret = uuid.NewString()
	}
	sessions := auth.NewSessions(cfg.Auth.SessionTTL)
	defer sessions.Stop()
	resolver := auth.NewResolver(sessions, auth.NewTokens(secret, cfg.Auth.TokenTTL), svc, auth.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.Secure,
		TTL:    cfg.Auth.SessionTTL,
	}, logger)

	schema, err := graph.NewSchema(graph.NewResolver(svc, logger))
	if err != nil {
		return err
	}
	srv := transport.New(schema, transport.Options{
		MaxUploadBytes: cfg.Uploads.MaxBytes + 1<<20,
		CheckOrigin:    allowOrigins(cfg.Server.AllowedOrigins),
		Auth:           resolver,
		PerOperation: func(ctx context.Context) context.Context {
			return dataloader.WithLoaders(ctx, dataloader.New(store))
		},
	}, logger)

	limiter := ratelimit.New(cfg.RateLimit, logger)
	defer limiter.Stop()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(logging.Middleware(logger))
	router.Use(middleware.Recoverer)

	router.Handle("/", playground.Handler("GraphQL playground", "/query"))
	router.Handle("/query", limiter.Middleware(resolver.Middleware(dataloader.Middleware(store, srv))))
	prefix := "/" + strings.Trim(cfg.Uploads.URLPath, "/") + "/"
	router.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(files.Dir()))))

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("connect to http://localhost:" + cfg.Server.Port + "/ for GraphQL playground")
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	// подписки держат websocket-соединения; Shutdown их не ждёт, их закрывает registry.Close
	if err := httpSrv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// allowOrigins разрешает websocket только с перечисленных Origin. Пустой список - любые.
func allowOrigins(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := allowed[r.Header.Get("Origin")]
		return ok
	}
}
