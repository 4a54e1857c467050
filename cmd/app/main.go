package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"StockPilot/internal/di"
	"StockPilot/internal/usecase"
	"StockPilot/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	execute := flag.Bool("execute", false, "forward accepted actions to the execution topic")
	force := flag.Bool("force", false, "recompute recommendations even when cached for today")
	universe := flag.String("universe", "", "comma-separated symbol override")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *universe != "" {
		cfg.Engine.Universe = strings.Split(*universe, ",")
	}

	log.Printf("env=%s universe=%d benchmark=%s", cfg.Environment, len(cfg.Engine.Universe), cfg.Engine.BenchmarkSymbol)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run one analysis pass (blocks until done or signalled)
	if err := app.Run(usecase.RunOptions{
		ExecuteTrades:  *execute,
		ForceRecompute: *force,
	}); err != nil {
		log.Printf("run error: %v", err)
		os.Exit(1)
	}
}
