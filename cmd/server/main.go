package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aquaops/pond-miniapp/internal/server"
	"github.com/aquaops/pond-miniapp/modules"
	"github.com/aquaops/pond-miniapp/modules/miniapp"
	"github.com/aquaops/pond-miniapp/pkg/application"
	"github.com/aquaops/pond-miniapp/pkg/configuration"
	"github.com/aquaops/pond-miniapp/pkg/eventbus"
	"github.com/aquaops/pond-miniapp/pkg/logging"
	"github.com/aquaops/pond-miniapp/pkg/metrics"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
	}

	app := application.New(&application.ApplicationOptions{
		Bundle:             application.LoadBundle(),
		EventBus:           eventbus.NewEventPublisher(logger),
		Logger:             logger,
		SupportedLanguages: conf.SupportedLanguages,
	})

	moduleOpts := &miniapp.ModuleOptions{Config: conf}
	if conf.Prometheus.Enabled {
		moduleOpts.Metrics = metrics.NewSubmissionMetrics(prometheus.DefaultRegisterer)
	}
	if err := modules.Load(app, modules.BuiltInModules(moduleOpts)...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path, prometheus.DefaultGatherer))
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Entrypoint:    "server",
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Listening on: %s\n", conf.Origin)
	if err := serverInstance.Start(ctx, conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
