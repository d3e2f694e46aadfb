package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"shiftdb/internal/app"
	"shiftdb/pkg/config"
	"shiftdb/pkg/logger"
)

func main() {
	// build metadata - set via ldflags during build/release
	var version = "dev"

	_ = godotenv.Load(".env")
	addrVal, phaseVal, cfgPath, setFlags := config.ParseCommandFlags()

	cfg := config.Default()
	if _, err := os.Stat(cfgPath); err == nil || setFlags["config"] {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	config.LoadEnvOverrides(cfg)

	// Flags win over env/config when explicitly provided.
	addr := cfg.Addr()
	if setFlags["addr"] {
		addr = addrVal
	}
	if setFlags["phase"] {
		cfg.Migration.Phase = phaseVal
	}

	logger.Init(cfg.Logging.Level)
	defer logger.Sync()

	a, err := app.New(cfg, addr, version)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
