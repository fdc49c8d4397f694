package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "POND_MINIAPP_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "pkg", "rowlist")
	requireMkdirAll(t, sub)

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(sub); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("POND_MINIAPP_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("POND_MINIAPP_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded from repo root, got %q", got)
	}
}

func TestLoadEnv_NoFiles(t *testing.T) {
	tmp := t.TempDir()
	origWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Chdir(tmp))

	n, err := LoadEnv([]string{".env.missing"})
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestConfiguration_Validate(t *testing.T) {
	valid := func() *Configuration {
		return &Configuration{
			Backend:   BackendOptions{URL: "http://backend", Timeout: time.Second},
			Drafts:    DraftOptions{Storage: "memory", TTL: time.Hour},
			RateLimit: RateLimitOptions{GlobalRPS: 10, Storage: "memory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Configuration) {}},
		{name: "empty backend url", mutate: func(c *Configuration) { c.Backend.URL = " " }, wantErr: "backend URL"},
		{name: "zero timeout", mutate: func(c *Configuration) { c.Backend.Timeout = 0 }, wantErr: "timeout"},
		{name: "unknown draft storage", mutate: func(c *Configuration) { c.Drafts.Storage = "disk" }, wantErr: "draft Storage"},
		{name: "redis rate limit without url", mutate: func(c *Configuration) { c.RateLimit.Storage = "redis" }, wantErr: "RedisURL"},
		{name: "negative rps", mutate: func(c *Configuration) { c.RateLimit.GlobalRPS = -1 }, wantErr: "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				require.Equal(t, "ru", c.DefaultLanguage)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfiguration_DraftRedisURL(t *testing.T) {
	c := &Configuration{RedisURL: "shared:6379"}
	require.Equal(t, "shared:6379", c.DraftRedisURL())
	c.Drafts.RedisURL = "drafts:6379"
	require.Equal(t, "drafts:6379", c.DraftRedisURL())
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func TestRedisOptions(t *testing.T) {
	opts, err := RedisOptions(" cache:6379 ")
	require.NoError(t, err)
	require.Equal(t, "cache:6379", opts.Addr)

	opts, err = RedisOptions("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	require.Equal(t, "cache:6380", opts.Addr)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, "secret", opts.Password)
}
