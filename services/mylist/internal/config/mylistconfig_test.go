package config

import "testing"

func TestLoadMylist_Defaults(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "SQLITE_PATH", "DEFAULT_USER_EMAIL", "DEFAULT_USER_NAME", "GRPC_ADDR", "NATS_URL"} {
		t.Setenv(k, "")
	}
	cfg, err := LoadMylist()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GRPCAddr != ":9090" || cfg.DefaultUserName != "demo" || cfg.DefaultUserEmail != "demo@animelist.dev" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadMylist_InvalidEmail(t *testing.T) {
	t.Setenv("DEFAULT_USER_EMAIL", "not-an-email")
	if _, err := LoadMylist(); err == nil {
		t.Fatal("expected error for invalid email")
	}
}
