package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/example/animelist/services/animectl/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
