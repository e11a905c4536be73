package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/fern/internal/repositories/goldenrecord"
	"github.com/Ramsey-B/fern/internal/repositories/product"
	"github.com/Ramsey-B/fern/pkg/cache"
	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/Ramsey-B/fern/pkg/compare"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/models"
	comparerouter "github.com/Ramsey-B/fern/pkg/routes/compare"
	goldenrecordrouter "github.com/Ramsey-B/fern/pkg/routes/goldenrecord"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	"github.com/Ramsey-B/fern/pkg/startup"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const localCacheSize = 4096

type serveOptions struct {
	catalogA    string
	catalogB    string
	migrate     bool
	maxAttempts int
}

// services are the dependencies the HTTP routes are built from. Store and DB
// are nil when serving in-memory catalogs.
type services struct {
	source  compare.RecordSource
	store   goldenrecordrouter.Store
	db      database.DB
	cache   cache.Cache
	redis   *cache.Redis
	checker *health.Checker
}

func newServer(a *app, engine *matching.Engine, svc *services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(a.logger)

	e.Server.ReadTimeout = time.Duration(a.cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(a.cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(a.cfg.HttpServerIdleTimeoutSeconds) * time.Second

	if a.cfg.TracingEnabled {
		e.Use(otelecho.Middleware(a.cfg.AppName))
	}
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: a.cfg.AllowOrigins}))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(a.logger))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	svc.checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	comparer := compare.NewService(svc.source, engine.Profiler(), svc.cache, a.logger)
	comparerouter.NewHandler(comparer).Register(api.Group("/compare"))
	if svc.store != nil {
		goldenrecordrouter.NewHandler(svc.store).Register(api.Group("/golden-records"))
	}
	return e
}

func newServeCommand(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the product comparison API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.load()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return opts.serve(ctx, a)
		},
	}
	cmd.Flags().StringVar(&opts.catalogA, "a", "", "serve comparisons from catalog CSVs instead of the database")
	cmd.Flags().StringVar(&opts.catalogB, "b", "", "second catalog CSV, used with --a")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "apply golden record store migrations before serving")
	cmd.Flags().IntVar(&opts.maxAttempts, "startup-attempts", 5, "attempts to start dependencies before giving up")
	return cmd
}

func (o *serveOptions) serve(ctx context.Context, a *app) error {
	log := a.logger.WithContext(ctx)

	if a.cfg.TracingEnabled {
		exporter, err := tracing.NewExporter(ctx, a.cfg.TracingExporter(), a.logger)
		if err != nil {
			return err
		}
		log.WithField("endpoint", a.cfg.TracingEndpoint).Info("Tracing enabled")
		tp := tracing.NewProvider(a.cfg.AppName, exporter)
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.WithError(err).Warn("Failed to shut down tracer provider")
			}
		}()
	}

	var (
		engine *matching.Engine
		svc    = &services{}
		srv    *echo.Echo
	)

	boot := startup.NewStartup(a.logger, o.maxAttempts)
	boot.AddDependency(startup.Func{
		Name: "aliases",
		StartFn: func(ctx context.Context) error {
			engine = matching.NewEngine(a.cfg.Matching(), a.registry(ctx), a.logger)
			return nil
		},
	})
	boot.AddDependency(startup.Func{
		Name:    "store",
		StartFn: func(ctx context.Context) error { return o.openStore(ctx, a, svc) },
		StopFn: func(context.Context) error {
			if svc.db == nil {
				return nil
			}
			return svc.db.Close()
		},
	})
	boot.AddDependency(startup.Func{
		Name:    "cache",
		StartFn: func(ctx context.Context) error { return openCache(ctx, a, svc) },
		StopFn: func(context.Context) error {
			if svc.redis == nil {
				return nil
			}
			return svc.redis.Close()
		},
	})
	boot.AddDependency(startup.Func{
		Name:     "server",
		Requires: []string{"aliases", "store", "cache"},
		StartFn: func(ctx context.Context) error {
			var dbPinger health.DBPinger
			if svc.db != nil {
				dbPinger = svc.db
			}
			var cachePinger health.CachePinger
			if svc.redis != nil {
				cachePinger = svc.redis
			}
			svc.checker = health.NewChecker(dbPinger, cachePinger, version)

			srv = newServer(a, engine, svc)
			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Port))
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			srv.Listener = ln

			go func() {
				if err := srv.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.WithError(err).Error("HTTP server stopped")
				}
			}()
			svc.checker.SetReady(true)
			a.logger.WithContext(ctx).WithField("port", a.cfg.Port).Info("Serving comparison API")
			return nil
		},
		StopFn: func(ctx context.Context) error {
			svc.checker.SetReady(false)
			return srv.Shutdown(ctx)
		},
	})

	if err := boot.Start(ctx); err != nil {
		_ = boot.Stop(context.Background())
		return err
	}

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return boot.Stop(shutdownCtx)
}

func (o *serveOptions) openStore(ctx context.Context, a *app, svc *services) error {
	if o.catalogA != "" || o.catalogB != "" {
		var catalogs [][]models.ProductRecord
		for _, path := range []string{o.catalogA, o.catalogB} {
			if path == "" {
				continue
			}
			records, err := catalog.ReadFile(ctx, path, a.logger)
			if err != nil {
				return err
			}
			catalogs = append(catalogs, records)
		}
		svc.source = compare.NewCatalogSource(catalogs...)
		return nil
	}

	if o.migrate {
		if err := database.NewMigrationService(a.logger, database.MigrationConfig{}).Migrate(a.cfg.DatabaseDriver, a.cfg.DatabaseDSN()); err != nil {
			return err
		}
	}

	db, err := database.Open(ctx, a.cfg.DatabaseDriver, a.cfg.DatabaseDSN(), database.PoolOptions{
		MaxOpenConns:    a.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    a.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: a.cfg.DatabaseConnMaxLifetime,
	}, a.logger)
	if err != nil {
		return err
	}
	records := goldenrecord.NewRepository(db, a.logger)
	svc.db = db
	svc.store = records
	svc.source = compare.NewStoreSource(product.NewRepository(db, a.logger), records)
	return nil
}

func openCache(ctx context.Context, a *app, svc *services) error {
	if a.cfg.RedisEnabled {
		rc, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
			TTL:      a.cfg.RedisTTL,
			Prefix:   a.cfg.AppName + ":",
		}, a.logger)
		if err != nil {
			return err
		}
		svc.redis = rc
		svc.cache = rc
		return nil
	}

	local, err := cache.NewLocal(localCacheSize)
	if err != nil {
		return err
	}
	svc.cache = local
	return nil
}
