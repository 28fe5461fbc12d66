package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DioGolang/GoPeople/configs"
	"github.com/DioGolang/GoPeople/internal/infra/container"
	"github.com/DioGolang/GoPeople/internal/infra/database"
	"github.com/DioGolang/GoPeople/internal/infra/lifetime"
	"github.com/DioGolang/GoPeople/internal/infra/web"
	"github.com/DioGolang/GoPeople/pkg/logger"
	"github.com/DioGolang/GoPeople/pkg/metrics"
	"github.com/DioGolang/GoPeople/pkg/otel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

func main() {
	config, err := configs.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(config.ServiceName, config.LogProduction)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, log); err != nil {
		log.Error(ctx, "server stopped with error", logger.WithError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, config *configs.Conf, log logger.Logger) error {
	if config.OTelCollectorAddr != "" {
		shutdown, err := otel.InitProvider(ctx, otel.ProviderConfig{
			ServiceName:    config.ServiceName,
			ServiceVersion: version,
			Environment:    config.Environment,
			CollectorAddr:  config.OTelCollectorAddr,
			SampleRatio:    config.OTelSampleRatio,
		})
		if err != nil {
			return err
		}
		defer shutdown()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewPrometheusMetrics(reg, config.ServiceName)

	policy, err := lifetime.ParsePolicy(config.ContextLifetime)
	if err != nil {
		return err
	}

	store, err := database.Open(ctx, database.StoreConfig{
		Driver:       config.DBDriver,
		DSN:          config.DSN(),
		MaxOpenConns: 25,
		MaxIdleConns: 5,
	})
	if err != nil {
		return err
	}

	deps := container.New(store, policy, log, m)
	defer func() {
		if err := deps.Close(); err != nil {
			log.Error(context.Background(), "failed to release persistence resources", logger.WithError(err))
		}
	}()

	router, err := web.NewRouter(web.RouterConfig{
		ServiceName: config.ServiceName,
		Container:   deps,
		Store:       store,
		Metrics:     m,
		Gatherer:    reg,
		Log:         log,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + config.WebServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "server running",
			logger.String("port", config.WebServerPort),
			logger.String("driver", config.DBDriver),
			logger.String("lifetime", policy.String()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutCtx)
	})

	return g.Wait()
}
