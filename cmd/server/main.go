package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/etcsc/warehouse/config"
	customerrepo "github.com/etcsc/warehouse/internal/repositories/customer"
	dockrepo "github.com/etcsc/warehouse/internal/repositories/dockreceiving"
	inventoryrepo "github.com/etcsc/warehouse/internal/repositories/inventory"
	itemrepo "github.com/etcsc/warehouse/internal/repositories/item"
	locationrepo "github.com/etcsc/warehouse/internal/repositories/location"
	reportrepo "github.com/etcsc/warehouse/internal/repositories/report"
	rmaimportrepo "github.com/etcsc/warehouse/internal/repositories/rmaimport"
	shipoutrepo "github.com/etcsc/warehouse/internal/repositories/shipout"
	shippingraterepo "github.com/etcsc/warehouse/internal/repositories/shippingrate"
	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/events"
	"github.com/etcsc/warehouse/pkg/kafka"
	"github.com/etcsc/warehouse/pkg/logger"
	"github.com/etcsc/warehouse/pkg/middleware"
	customerroutes "github.com/etcsc/warehouse/pkg/routes/customer"
	dockroutes "github.com/etcsc/warehouse/pkg/routes/dockreceiving"
	"github.com/etcsc/warehouse/pkg/routes/health"
	inventoryroutes "github.com/etcsc/warehouse/pkg/routes/inventory"
	itemroutes "github.com/etcsc/warehouse/pkg/routes/item"
	locationroutes "github.com/etcsc/warehouse/pkg/routes/location"
	reportroutes "github.com/etcsc/warehouse/pkg/routes/report"
	rmaimportroutes "github.com/etcsc/warehouse/pkg/routes/rmaimport"
	shipoutroutes "github.com/etcsc/warehouse/pkg/routes/shipout"
	shippingrateroutes "github.com/etcsc/warehouse/pkg/routes/shippingrate"
	"github.com/etcsc/warehouse/pkg/startup"
	"github.com/etcsc/warehouse/pkg/tracing"
	"github.com/etcsc/warehouse/pkg/tracing/exporters"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var shutdownTracing func(context.Context) error
	if cfg.Telemetry.Enabled {
		shutdownTracing, err = tracing.Init(ctx, cfg.Telemetry.ServiceName, exporters.OTLPConfig{
			Endpoint: cfg.Telemetry.CollectorEndpoint,
			Protocol: cfg.Telemetry.Protocol,
			Insecure: cfg.Telemetry.Insecure,
		})
		if err != nil {
			log.WithError(err).Error("Failed to initialize tracing")
			os.Exit(1)
		}
	}

	var (
		db            database.DB
		sqlxDB        *sqlx.DB
		redisClient   *redis.Client
		producer      *kafka.Producer
		httpServer    *echo.Echo
		healthChecker *health.Checker
	)

	boot := startup.NewStartup(log, 5)

	boot.AddDependency(&startup.Func{
		Name: "postgres",
		StartFn: func(ctx context.Context) error {
			sqlxDB, err = sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
			if err != nil {
				return err
			}

			sqlxDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
			sqlxDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
			sqlxDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
			sqlxDB.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

			db = database.NewDatabaseInstance(sqlxDB, log)
			return nil
		},
		StopFn: func(ctx context.Context) error {
			if sqlxDB == nil {
				return nil
			}
			return sqlxDB.Close()
		},
	})

	boot.AddDependency(&startup.Func{
		Name:     "migrations",
		Requires: []string{"postgres"},
		StartFn: func(ctx context.Context) error {
			if !cfg.Database.MigrateOnStart {
				return nil
			}

			driver, err := postgres.WithInstance(sqlxDB.DB, &postgres.Config{})
			if err != nil {
				return err
			}

			ms := database.NewMigrationService(log, &database.MigrationConfig{
				MigrationFolderPath: cfg.Database.MigrationsPath,
				AutoRollback:        true,
			})
			return ms.Migrate(cfg.Database.DBName, driver)
		},
	})

	boot.AddDependency(&startup.Func{
		Name: "redis",
		StartFn: func(ctx context.Context) error {
			redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr(),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			return redisClient.Ping(ctx).Err()
		},
		StopFn: func(ctx context.Context) error {
			if redisClient == nil {
				return nil
			}
			return redisClient.Close()
		},
	})

	if cfg.Kafka.Enabled {
		boot.AddDependency(&startup.Func{
			Name: "kafka",
			StartFn: func(ctx context.Context) error {
				producer = kafka.NewProducer(kafka.ProducerConfig{
					Brokers:     cfg.Kafka.Brokers,
					TopicPrefix: cfg.Kafka.TopicPrefix,
				}, log)
				return nil
			},
			StopFn: func(ctx context.Context) error {
				if producer == nil {
					return nil
				}
				return producer.Close()
			},
		})
	}

	boot.AddDependency(&startup.Func{
		Name:     "http",
		Requires: requiresHTTP(cfg),
		StartFn: func(ctx context.Context) error {
			httpServer, healthChecker = buildServer(cfg, log, db, redisClient, producer)

			go func() {
				addr := fmt.Sprintf(":%d", cfg.App.Port)
				if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
					log.WithError(err).Error("HTTP server stopped unexpectedly")
				}
			}()

			healthChecker.SetReady(true)
			return nil
		},
		StopFn: func(ctx context.Context) error {
			if httpServer == nil {
				return nil
			}
			healthChecker.SetReady(false)
			return httpServer.Shutdown(ctx)
		},
	})

	if err := boot.Start(ctx); err != nil {
		log.WithError(err).Error("Startup failed")
		os.Exit(1)
	}

	log.WithFields(map[string]any{
		"port": cfg.App.Port,
		"env":  cfg.App.Env,
	}).Infof("%s listening on port %d", cfg.App.Name, cfg.App.Port)

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := boot.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Shutdown failed")
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.WithError(err).Error("Failed to flush traces")
		}
	}
}

func requiresHTTP(cfg *config.Config) []string {
	requires := []string{"postgres", "migrations", "redis"}
	if cfg.Kafka.Enabled {
		requires = append(requires, "kafka")
	}
	return requires
}

func buildServer(
	cfg *config.Config,
	log ectologger.Logger,
	db database.DB,
	redisClient *redis.Client,
	producer *kafka.Producer,
) (*echo.Echo, *health.Checker) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = cfg.HTTP.ReadTimeout
	e.Server.WriteTimeout = cfg.HTTP.WriteTimeout
	e.Server.IdleTimeout = cfg.HTTP.IdleTimeout
	e.Server.MaxHeaderBytes = cfg.HTTP.MaxHeaderBytes

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
	}))
	e.Use(echomw.BodyLimit(cfg.HTTP.BodyLimit))
	e.Use(otelecho.Middleware(cfg.Telemetry.ServiceName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(log))
	e.Use(middleware.Metrics())
	e.HTTPErrorHandler = middleware.Error(log)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// a typed nil pointer would read as a non-nil Publisher
	var publisher events.Publisher
	if producer != nil {
		publisher = producer
	}
	emitter := events.NewEmitter(publisher, log)

	healthChecker := health.NewChecker(db, redisClient, version)
	healthChecker.RegisterRoutes(e)

	api := e.Group("/api/v1", middleware.RequireActor())

	itemroutes.NewHandler(itemrepo.NewRepository(db, log)).Register(api.Group("/items"))
	customerroutes.NewHandler(customerrepo.NewRepository(db, log)).Register(api.Group("/customers"))
	locationroutes.NewHandler(locationrepo.NewRepository(db, log)).Register(api.Group("/locations"))

	dockHandler := dockroutes.NewHandler(dockrepo.NewRepository(db, log))
	dockHandler.Register(api.Group("/dock-receiving"))
	dockHandler.RegisterCarriers(api.Group("/carriers"))

	rmaimportroutes.NewHandler(rmaimportrepo.NewRepository(db, log), emitter).Register(api.Group("/receiving"))

	inventoryroutes.NewHandler(
		inventoryrepo.NewRepository(db, log, cfg.Receiving.AllowOverReceipt),
		emitter,
	).Register(api.Group("/inventory"))

	shipoutroutes.NewHandler(shipoutrepo.NewRepository(db, log), emitter).Register(api.Group("/shipouts"))

	reportroutes.NewHandler(
		reportrepo.NewRepository(db, log, cfg.Reporting.InStockOwnership),
	).Register(api.Group("/inventory-lookup"))

	shippingrateroutes.NewHandler(
		shippingraterepo.NewRepository(db, redisClient, log, cfg.Redis.RateTTL),
	).Register(api.Group("/shipping-rates"))

	return e, healthChecker
}
