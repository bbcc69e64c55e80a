package main

import (
	"github.com/OFFIS-RIT/enricher/internal/config"
	"github.com/OFFIS-RIT/enricher/internal/server"
	"github.com/OFFIS-RIT/enricher/internal/util"
	"github.com/OFFIS-RIT/enricher/pkg/logger"
	"github.com/OFFIS-RIT/enricher/pkg/logger/console"
)

func main() {
	util.LoadEnv()
	cfg := config.Load()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  cfg.Debug,
		Format: cfg.LogFormat,
	})
	logger.Init(consoleLogger)

	server.Init(cfg)
}
