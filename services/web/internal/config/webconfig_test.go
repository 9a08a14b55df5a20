package config

import (
	"testing"
	"time"
)

func TestLoadWeb_Defaults(t *testing.T) {
	for _, k := range []string{"CATALOG_BASE_URL", "CATALOG_RPS", "CATALOG_TIMEOUT", "MYLIST_BASE_URL", "MYLIST_TIMEOUT", "GENRE_CACHE_TTL_SEC", "RATE_LIMIT_PER_MIN"} {
		t.Setenv(k, "")
	}
	cfg, err := LoadWeb()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CatalogBaseURL != "https://api.jikan.moe/v4" || cfg.MylistBaseURL != "http://localhost:3000" {
		t.Fatalf("unexpected base urls %+v", cfg)
	}
	jc := cfg.Catalog()
	if jc.Limit != 24 || jc.DefaultRating != "g" || jc.RequestsPerSecond != 3 || jc.GenreCacheTTL != 24*time.Hour {
		t.Fatalf("unexpected catalog config %+v", jc)
	}
	if cfg.Mylist().Timeout != 5*time.Second {
		t.Fatalf("unexpected mylist timeout %s", cfg.Mylist().Timeout)
	}
}

func TestLoadWeb_RejectsRelativeURL(t *testing.T) {
	t.Setenv("MYLIST_BASE_URL", "localhost:3000")
	if _, err := LoadWeb(); err == nil {
		t.Fatal("expected error for relative url")
	}
}
