package config

import (
	"errors"
	"net/mail"

	"github.com/example/animelist/internal/platform/config"
)

type MylistConfig struct {
	DatabaseURL string
	SQLitePath  string

	DefaultUserEmail string
	DefaultUserName  string

	GRPCAddr string
	NATSURL  string
}

func LoadMylist() (MylistConfig, error) {
	cfg := MylistConfig{
		DatabaseURL:      config.String("DATABASE_URL", ""),
		SQLitePath:       config.String("SQLITE_PATH", ""),
		DefaultUserEmail: config.String("DEFAULT_USER_EMAIL", "demo@animelist.dev"),
		DefaultUserName:  config.String("DEFAULT_USER_NAME", "demo"),
		GRPCAddr:         config.String("GRPC_ADDR", ":9090"),
		NATSURL:          config.String("NATS_URL", ""),
	}
	if _, err := mail.ParseAddress(cfg.DefaultUserEmail); err != nil {
		return MylistConfig{}, errors.New("DEFAULT_USER_EMAIL must be a valid address")
	}
	return cfg, nil
}
