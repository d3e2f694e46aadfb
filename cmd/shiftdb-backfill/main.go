// Command shiftdb-backfill runs a one-shot backfill from the source store
// into the target views, then a verification pass. Exit code 0 means the
// counts match afterwards.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"shiftdb/pkg/backfill"
	"shiftdb/pkg/config"
	"shiftdb/pkg/counters"
	"shiftdb/pkg/logger"
	"shiftdb/pkg/source"
	"shiftdb/pkg/store"
	"shiftdb/pkg/verify"
	"shiftdb/pkg/views"
)

func main() {
	_ = godotenv.Load(".env")

	srcPath := flag.String("source", "./.source", "source pebble path")
	tgtPath := flag.String("target", "./.target", "target pebble path")
	rateFlag := flag.Float64("rate", 0, "items per second, 0 disables pacing")
	cfgPath := flag.String("config", "", "optional config file; flags win")
	flag.Parse()

	sp, tp, rate := *srcPath, *tgtPath, *rateFlag
	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		config.LoadEnvOverrides(cfg)
		sp = cfg.Storage.SourcePath
		tp = cfg.Storage.TargetPath
		if rate == 0 {
			rate = cfg.Backfill.RatePerSec
		}
	}

	logger.Init(os.Getenv("SHIFTDB_LOG_LEVEL"))
	defer logger.Sync()

	sourceDB, err := store.Open(sp)
	if err != nil {
		log.Fatalf("failed to open source pebble at %s: %v", sp, err)
	}
	defer sourceDB.Close()
	targetDB, err := store.Open(tp)
	if err != nil {
		log.Fatalf("failed to open target pebble at %s: %v", tp, err)
	}
	defer targetDB.Close()

	src := source.New(sourceDB)
	writer := views.NewWriter(targetDB)
	reader := views.NewReader(targetDB)
	counts := counters.New(targetDB)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := backfill.New(src, writer, counts, rate)
	rep, err := engine.Run(ctx)
	if err != nil {
		log.Fatalf("backfill failed: %v", err)
	}
	fmt.Printf("users:    %d migrated, %d errors\n", rep.Users.Migrated, rep.Users.Errors)
	fmt.Printf("posts:    %d migrated, %d errors\n", rep.Posts.Migrated, rep.Posts.Errors)
	fmt.Printf("comments: %d migrated, %d errors\n", rep.Comments.Migrated, rep.Comments.Errors)

	vrep, err := verify.New(src, reader).Run()
	if err != nil {
		log.Fatalf("verify failed: %v", err)
	}
	fmt.Printf("users match: %v (%d/%d)\n", vrep.UsersMatch, vrep.SourceUsers, vrep.TargetUsers)
	fmt.Printf("posts match: %v (%d/%d)\n", vrep.PostsMatch, vrep.SourcePosts, vrep.TargetPosts)
	if !vrep.Match() {
		os.Exit(1)
	}
}
