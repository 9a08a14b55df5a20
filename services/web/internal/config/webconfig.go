package config

import (
	"errors"
	"net/url"
	"time"

	"github.com/example/animelist/internal/jikan"
	"github.com/example/animelist/internal/mylist"
	"github.com/example/animelist/internal/platform/config"
)

type WebConfig struct {
	CatalogBaseURL string
	CatalogRPS     int
	CatalogTimeout time.Duration

	MylistBaseURL string
	MylistTimeout time.Duration

	GenreCacheTTL          time.Duration
	RedisURL               string
	NATSURL                string
	CacheInvalidateSubject string

	RateLimitPerMin int
}

func LoadWeb() (WebConfig, error) {
	cfg := WebConfig{
		CatalogBaseURL:         config.String("CATALOG_BASE_URL", jikan.DefaultBaseURL),
		CatalogRPS:             config.Int("CATALOG_RPS", 3),
		CatalogTimeout:         config.Duration("CATALOG_TIMEOUT", 10*time.Second),
		MylistBaseURL:          config.String("MYLIST_BASE_URL", mylist.DefaultBaseURL),
		MylistTimeout:          config.Duration("MYLIST_TIMEOUT", 5*time.Second),
		GenreCacheTTL:          time.Duration(config.Int("GENRE_CACHE_TTL_SEC", 86400)) * time.Second,
		RedisURL:               config.String("REDIS_URL", ""),
		NATSURL:                config.String("NATS_URL", ""),
		CacheInvalidateSubject: config.String("CACHE_INVALIDATE_SUBJECT", "web.cache.invalidate"),
		RateLimitPerMin:        config.Int("RATE_LIMIT_PER_MIN", 120),
	}
	for name, raw := range map[string]string{"CATALOG_BASE_URL": cfg.CatalogBaseURL, "MYLIST_BASE_URL": cfg.MylistBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return WebConfig{}, errors.New(name + " must be an absolute URL")
		}
	}
	if cfg.CatalogRPS == 0 {
		cfg.CatalogRPS = 3
	}
	return cfg, nil
}

// Catalog returns the gateway configuration for the Jikan client.
func (c WebConfig) Catalog() jikan.Config {
	jc := jikan.DefaultConfig()
	jc.BaseURL = c.CatalogBaseURL
	jc.RequestsPerSecond = float64(c.CatalogRPS)
	jc.Timeout = c.CatalogTimeout
	jc.GenreCacheTTL = c.GenreCacheTTL
	return jc
}

func (c WebConfig) Mylist() mylist.Config {
	return mylist.Config{BaseURL: c.MylistBaseURL, Timeout: c.MylistTimeout}
}
