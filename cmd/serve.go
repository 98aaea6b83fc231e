package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/starsandeep/sfsync/config"
	"github.com/starsandeep/sfsync/internal/repositories/draft"
	"github.com/starsandeep/sfsync/internal/services/wizard"
	"github.com/starsandeep/sfsync/pkg/database"
	"github.com/starsandeep/sfsync/pkg/health"
	"github.com/starsandeep/sfsync/pkg/kafka"
	"github.com/starsandeep/sfsync/pkg/mapping"
	"github.com/starsandeep/sfsync/pkg/metadata"
	"github.com/starsandeep/sfsync/pkg/metrics"
	"github.com/starsandeep/sfsync/pkg/middleware"
	"github.com/starsandeep/sfsync/pkg/redis"
	"github.com/starsandeep/sfsync/pkg/routes"
	"github.com/starsandeep/sfsync/pkg/session"
	"github.com/starsandeep/sfsync/pkg/startup"
	"github.com/starsandeep/sfsync/pkg/tracing"
	"github.com/starsandeep/sfsync/pkg/tracing/exporters"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFiles(cmd)...)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, flush, err := newLogger(cfg)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer flush()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// dependencies holds the optional backends brought up by the startup graph.
// A nil field means the backend is disabled.
type dependencies struct {
	db       *database.DatabaseInstance
	redis    *redis.Client
	producer *kafka.Producer
}

func serve(ctx context.Context, cfg *config.Config, logger ectologger.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg.AppName, exporters.OTLPConfig{
		Endpoint: cfg.OTLPEndpoint,
		Protocol: cfg.OTLPProtocol,
		Insecure: cfg.OTLPInsecure,
		Timeout:  cfg.OTLPTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.WithError(err).Warn("failed to flush traces")
		}
	}()

	deps := &dependencies{}
	boot := startup.New(logger, cfg.StartupMaxAttempts)
	registerDependencies(boot, cfg, logger, deps)
	if err := boot.Start(ctx); err != nil {
		return fmt.Errorf("start dependencies: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := boot.Stop(stopCtx); err != nil {
			logger.WithError(err).Error("failed to stop dependencies")
		}
	}()

	service := newWizardService(ctx, cfg, logger, deps)

	e := newEcho(cfg, logger)

	var sqlDB *sqlx.DB
	if deps.db != nil {
		sqlDB = deps.db.SQLX()
	}
	var rdb *goredis.Client
	if deps.redis != nil {
		rdb = deps.redis.Redis()
	}
	checker := health.NewChecker(sqlDB, rdb, version)
	checker.RegisterRoutes(e)
	metrics.RegisterRoutes(e)
	routes.Register(e, service, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", server.Addr)
		if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	checker.SetReady(true)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	checker.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func registerDependencies(boot *startup.Startup, cfg *config.Config, logger ectologger.Logger, deps *dependencies) {
	if cfg.DraftsEnabled {
		boot.Add(startup.FuncDependency{
			DependencyName: "database",
			StartFunc: func(ctx context.Context) error {
				db, err := database.Open(ctx, database.Config{
					Driver:          cfg.DatabaseDriver,
					Host:            cfg.DatabaseHost,
					Port:            cfg.DatabasePort,
					User:            cfg.DatabaseUserName,
					Password:        cfg.DatabasePassword,
					Name:            cfg.DatabaseName,
					SSLMode:         cfg.DatabaseSSLMode,
					MaxOpenConns:    cfg.DatabaseMaxOpenConns,
					MaxIdleConns:    cfg.DatabaseMaxIdleConns,
					ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
				}, logger)
				if err != nil {
					return err
				}
				deps.db = db
				return nil
			},
			StopFunc: func(ctx context.Context) error {
				if deps.db == nil {
					return nil
				}
				return deps.db.Close()
			},
		})
		boot.Add(startup.FuncDependency{
			DependencyName: "migrations",
			Requires:       []string{"database"},
			StartFunc: func(ctx context.Context) error {
				migrator := database.NewMigrator(logger, database.MigrationConfig{
					FolderPath:   cfg.DatabaseMigrationFolderPath,
					Version:      uint(max(cfg.DatabaseMigrationVersion, 0)),
					Force:        cfg.DatabaseMigrationForce,
					AutoRollback: cfg.DatabaseMigrationAutoRollback,
				})
				return migrator.Migrate(deps.db.SQLX().DB, cfg.DatabaseName)
			},
		})
	}

	if cfg.RedisEnabled {
		boot.Add(startup.FuncDependency{
			DependencyName: "redis",
			StartFunc: func(ctx context.Context) error {
				client, err := redis.NewClient(redis.Config{
					Host:     cfg.RedisHost,
					Port:     cfg.RedisPort,
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
				}, logger)
				if err != nil {
					return err
				}
				deps.redis = client
				return nil
			},
			StopFunc: func(ctx context.Context) error {
				if deps.redis == nil {
					return nil
				}
				return deps.redis.Close()
			},
		})
	}

	if cfg.KafkaEnabled {
		boot.Add(startup.FuncDependency{
			DependencyName: "kafka",
			StartFunc: func(ctx context.Context) error {
				producerConfig := kafka.DefaultProducerConfig()
				producerConfig.Brokers = cfg.KafkaBrokers
				producerConfig.Topic = cfg.KafkaMappingTopic
				producerConfig.BatchSize = cfg.KafkaBatchSize
				producerConfig.BatchTimeout = time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond
				producerConfig.RequiredAcks = cfg.KafkaRequiredAcks
				producerConfig.Compression = cfg.KafkaCompression

				producer, err := kafka.NewProducer(producerConfig, logger)
				if err != nil {
					return err
				}
				deps.producer = producer
				return nil
			},
			StopFunc: func(ctx context.Context) error {
				if deps.producer == nil {
					return nil
				}
				return deps.producer.Close()
			},
		})
	}
}

func newWizardService(ctx context.Context, cfg *config.Config, logger ectologger.Logger, deps *dependencies) *wizard.Service {
	var provider metadata.Provider = metadata.NewClient(metadata.Config{
		BaseURL:         cfg.MetadataBaseURL,
		Timeout:         cfg.MetadataFetchTimeout,
		MaxIdleConns:    metadata.DefaultConfig().MaxIdleConns,
		IdleConnTimeout: metadata.DefaultConfig().IdleConnTimeout,
	}, logger)
	if deps.redis != nil {
		provider = metadata.NewCachedProvider(provider, deps.redis, cfg.MetadataCacheTTL, logger)
	}

	cache := metadata.NewMappingCache(metadata.MappingCacheConfig{
		MaxSize: cfg.MappingCacheMaxSize,
		TTL:     cfg.MappingCacheTTL,
	})
	acquirer := metadata.NewAcquirer(provider, cache, logger)

	sessions := session.NewManager(cfg.SessionIdleTTL, logger)
	go sessions.RunJanitor(ctx, cfg.SessionSweepInterval)

	policy := mapping.DefaultPolicy()
	policy.MaxMappings = cfg.MaxMappings
	evaluator := mapping.NewEvaluator(policy)

	var publisher wizard.EventPublisher
	if deps.producer != nil {
		publisher = deps.producer
	}
	var drafts wizard.DraftRepository
	if deps.db != nil {
		drafts = draft.NewRepository(deps.db, logger)
	}

	return wizard.NewService(sessions, acquirer, evaluator, publisher, drafts, wizard.Config{
		LoadMinDuration: cfg.LoadMinDuration,
	}, logger)
}

func newEcho(cfg *config.Config, logger ectologger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID, middleware.HeaderUserID},
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	return e
}
