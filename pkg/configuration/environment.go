package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aquaops/pond-miniapp/pkg/logging"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the given env files from the working directory, or from the
// nearest go.mod root when none of them exist there.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := existing("", envFiles)
	if len(existingFiles) == 0 {
		if wd, err := os.Getwd(); err == nil {
			if root, ok := findGoModRoot(wd); ok {
				existingFiles = existing(root, envFiles)
			}
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

func existing(dir string, files []string) []string {
	out := make([]string, 0, len(files))
	for _, file := range files {
		path := file
		if dir != "" {
			path = filepath.Join(dir, file)
		}
		if fs.FileExists(path) {
			out = append(out, path)
		}
	}
	return out
}

func findGoModRoot(start string) (string, bool) {
	dir := start
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type BackendOptions struct {
	URL     string        `env:"BACKEND_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`
}

func (b *BackendOptions) Validate() error {
	if strings.TrimSpace(b.URL) == "" {
		return fmt.Errorf("backend URL must not be empty")
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive, got %s", b.Timeout)
	}
	return nil
}

type DraftOptions struct {
	Storage  string        `env:"DRAFT_STORAGE" envDefault:"memory"` // memory or redis
	TTL      time.Duration `env:"DRAFT_TTL" envDefault:"72h"`
	RedisURL string        `env:"DRAFT_REDIS_URL"`
}

func (d *DraftOptions) Validate() error {
	if d.Storage != "memory" && d.Storage != "redis" {
		return fmt.Errorf("draft Storage must be 'memory' or 'redis', got '%s'", d.Storage)
	}
	if d.TTL < 0 {
		return fmt.Errorf("draft TTL must be non-negative, got %s", d.TTL)
	}
	return nil
}

type CatalogOptions struct {
	TTL time.Duration `env:"CATALOG_TTL" envDefault:"10m"`
}

type CorsOptions struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://web.telegram.org,http://localhost:5173"`
}

type LokiOptions struct {
	LogPath string `env:"LOG_PATH" envDefault:""`
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"pond-miniapp"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	if r.GlobalRPS > 1000000 {
		return fmt.Errorf("rate limit GlobalRPS too high, maximum is 1,000,000, got %d", r.GlobalRPS)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == "redis" && r.RedisURL == "" {
		return fmt.Errorf("rate limit RedisURL is required when Storage is 'redis'")
	}
	return nil
}

type AuthzOptions struct {
	// Empty paths use the embedded model and policy.
	ModelPath  string `env:"AUTHZ_MODEL_PATH" envDefault:""`
	PolicyPath string `env:"AUTHZ_POLICY_PATH" envDefault:""`
}

type OpsGuardOptions struct {
	Enabled       bool   `env:"OPS_GUARD_ENABLED" envDefault:"true"`
	CIDRs         string `env:"OPS_GUARD_CIDRS" envDefault:""`
	Token         string `env:"OPS_GUARD_TOKEN" envDefault:""`
	BasicAuthUser string `env:"OPS_GUARD_BASIC_AUTH_USER" envDefault:""`
	BasicAuthPass string `env:"OPS_GUARD_BASIC_AUTH_PASS" envDefault:""`
}

type Configuration struct {
	Backend       BackendOptions
	Drafts        DraftOptions
	Catalog       CatalogOptions
	Cors          CorsOptions
	Loki          LokiOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions
	RateLimit     RateLimitOptions
	Authz         AuthzOptions
	OpsGuard      OpsGuardOptions

	RedisURL           string   `env:"REDIS_URL" envDefault:"localhost:6379"`
	ServerPort         int      `env:"PORT" envDefault:"3200"`
	GoAppEnvironment   string   `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress      string   `env:"-"`
	Origin             string   `env:"ORIGIN" envDefault:"http://localhost:3200"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"error"`
	DefaultLanguage    string   `env:"DEFAULT_LANGUAGE" envDefault:"ru"`
	SupportedLanguages []string `env:"SUPPORTED_LANGUAGES" envSeparator:"," envDefault:"ru,en"`
	// Looked up on every request; a uuidv4 is generated when absent.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	// Falls back to request.RemoteAddr when absent.
	RealIPHeader string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.Loki.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

// Validate runs every option group check.
func (c *Configuration) Validate() error {
	if err := c.Backend.Validate(); err != nil {
		return fmt.Errorf("backend configuration error: %w", err)
	}
	if err := c.Drafts.Validate(); err != nil {
		return fmt.Errorf("draft configuration error: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	c.DefaultLanguage = strings.ToLower(strings.TrimSpace(c.DefaultLanguage))
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "ru"
	}
	return nil
}

// DraftRedisURL prefers the draft specific address over the shared one.
func (c *Configuration) DraftRedisURL() string {
	if c.Drafts.RedisURL != "" {
		return c.Drafts.RedisURL
	}
	return c.RedisURL
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
