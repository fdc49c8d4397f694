package miniapp

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/aggregates/draft"
	"github.com/aquaops/pond-miniapp/modules/miniapp/infrastructure/persistence"
	"github.com/aquaops/pond-miniapp/modules/miniapp/presentation/controllers"
	"github.com/aquaops/pond-miniapp/modules/miniapp/services"
	"github.com/aquaops/pond-miniapp/pkg/application"
	"github.com/aquaops/pond-miniapp/pkg/authz"
	"github.com/aquaops/pond-miniapp/pkg/backend"
	"github.com/aquaops/pond-miniapp/pkg/configuration"
	"github.com/aquaops/pond-miniapp/pkg/metrics"
)

//go:embed presentation/locales/*.json
var LocaleFiles embed.FS

type ModuleOptions struct {
	Config *configuration.Configuration
	// Metrics receives submission and catalog observations when set.
	Metrics *metrics.SubmissionMetrics
	// Repository overrides the draft store selected by the configuration.
	Repository draft.Repository
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	conf := m.options.Config
	if conf == nil {
		conf = configuration.Use()
	}

	client := backend.New(
		conf.Backend.URL,
		backend.WithTimeout(conf.Backend.Timeout),
		backend.WithLogger(app.Logger().WithField("component", "backend")),
	)

	repo := m.options.Repository
	if repo == nil {
		var err error
		repo, err = newDraftRepository(conf)
		if err != nil {
			return err
		}
	}

	enforcer, err := authz.NewService(authz.Config{
		ModelPath:  conf.Authz.ModelPath,
		PolicyPath: conf.Authz.PolicyPath,
		Logger:     app.Logger(),
	})
	if err != nil {
		return err
	}

	bus := app.EventPublisher()
	catalogService := services.NewCatalogService(client, bus, conf.Catalog.TTL)
	draftService := services.NewDraftService(repo, catalogService)
	identityService := services.NewIdentityService(client, enforcer)
	app.RegisterServices(
		catalogService,
		draftService,
		services.NewSubmissionService(client, draftService, catalogService, bus),
		identityService,
		services.NewUserAdminService(client, identityService),
	)
	if m.options.Metrics != nil {
		services.SubscribeMetrics(bus, m.options.Metrics)
	}

	app.RegisterLocaleFiles(&LocaleFiles)
	app.RegisterControllers(
		controllers.NewHealthController(),
		controllers.NewMiniAppController(app),
		controllers.NewUsersController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "miniapp"
}

func newDraftRepository(conf *configuration.Configuration) (draft.Repository, error) {
	if conf.Drafts.Storage != "redis" {
		return persistence.NewInmemDraftRepository(), nil
	}
	opts, err := configuration.RedisOptions(conf.DraftRedisURL())
	if err != nil {
		return nil, fmt.Errorf("draft redis url: %w", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("draft redis unreachable: %w", err)
	}
	return persistence.NewDraftRepository(client, conf.Drafts.TTL), nil
}
