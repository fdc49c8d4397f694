package configuration

import (
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisOptions accepts either a redis:// URL or a bare host:port address.
func RedisOptions(raw string) (*redis.Options, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") {
		return redis.ParseURL(raw)
	}
	return &redis.Options{Addr: raw}, nil
}
