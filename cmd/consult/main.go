package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/diagnosis/consult-relay/pkg/config"
	"github.com/diagnosis/consult-relay/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "error", err)
	}

	if err := newRootCmd(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}
