package server

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/aquaops/pond-miniapp/modules/miniapp/presentation/controllers"
	"github.com/aquaops/pond-miniapp/pkg/application"
	"github.com/aquaops/pond-miniapp/pkg/configuration"
	"github.com/aquaops/pond-miniapp/pkg/constants"
	"github.com/aquaops/pond-miniapp/pkg/middleware"
	"github.com/aquaops/pond-miniapp/pkg/routing"
	"github.com/aquaops/pond-miniapp/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Entrypoint    string
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	rules, err := routing.LoadAllowlist("", options.Entrypoint)
	if err != nil {
		return nil, err
	}
	classifier := routing.NewClassifier(rules)

	loggerOpts := middleware.DefaultLoggerOptions()
	loggerOpts.RequestIDHeader = conf.RequestIDHeader
	loggerOpts.RealIPHeader = conf.RealIPHeader
	loggerOpts.Classifier = classifier

	// WithLogger creates the root span for each request.
	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, loggerOpts),
		middleware.Provide(constants.AppKey, app),

		middleware.TracedMiddleware("requestParams"),
		middleware.RequestParams(conf.RealIPHeader),

		middleware.TracedMiddleware("opsGuard"),
		middleware.OpsGuard(conf, options.Entrypoint),

		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.Cors.AllowedOrigins...),

		middleware.TracedMiddleware("initData"),
		middleware.ProvideInitData(),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		// Runs after ProvideInitData so identified callers are keyed by user.
		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
				RealIPHeader:      conf.RealIPHeader,
			}),
		)
	}

	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(
		app,
		controllers.NotFound(classifier),
		controllers.MethodNotAllowed(classifier),
	), nil
}
