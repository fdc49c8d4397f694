package routinggates

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	internalserver "github.com/aquaops/pond-miniapp/internal/server"
	"github.com/aquaops/pond-miniapp/modules"
	"github.com/aquaops/pond-miniapp/modules/miniapp"
	"github.com/aquaops/pond-miniapp/pkg/application"
	"github.com/aquaops/pond-miniapp/pkg/configuration"
	"github.com/aquaops/pond-miniapp/pkg/metrics"
	pkgserver "github.com/aquaops/pond-miniapp/pkg/server"
)

func testConfiguration(t *testing.T) *configuration.Configuration {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"locations":[],"fishTypes":[]}`)
	}))
	t.Cleanup(backend.Close)

	return &configuration.Configuration{
		Backend:          configuration.BackendOptions{URL: backend.URL, Timeout: time.Second},
		Drafts:           configuration.DraftOptions{Storage: "memory"},
		Catalog:          configuration.CatalogOptions{TTL: time.Minute},
		OpsGuard:         configuration.OpsGuardOptions{Enabled: true, Token: "ops-secret"},
		Prometheus:       configuration.PrometheusOptions{Enabled: true, Path: "/debug/prometheus"},
		GoAppEnvironment: configuration.Production,
		RequestIDHeader:  "X-Request-ID",
		RealIPHeader:     "X-Real-IP",
	}
}

func buildServer(t *testing.T, conf *configuration.Configuration) *pkgserver.HTTPServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := application.New(&application.ApplicationOptions{Logger: logger})
	require.NoError(t, modules.Load(app, modules.BuiltInModules(&miniapp.ModuleOptions{Config: conf})...))
	app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path, nil))

	srv, err := internalserver.Default(&internalserver.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Entrypoint:    "server",
	})
	require.NoError(t, err)
	return srv
}

func collectRoutePaths(t *testing.T, router *mux.Router) []string {
	t.Helper()
	var paths []string
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		if route.GetHandler() == nil {
			return nil
		}
		p := routePath(route)
		if strings.TrimSpace(p) != "" {
			paths = append(paths, p)
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(paths)
	return paths
}

func routePath(route *mux.Route) string {
	if route == nil {
		return ""
	}
	if tmpl, err := route.GetPathTemplate(); err == nil {
		return tmpl
	}
	regexp, err := route.GetPathRegexp()
	if err != nil {
		return ""
	}
	result := strings.TrimPrefix(regexp, "^")
	return strings.TrimSuffix(result, "$")
}
