// Package app encapsulates server wiring and lifecycle: stores, the
// domain service, the verification scheduler, and the HTTP server.
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"shiftdb/pkg/backfill"
	"shiftdb/pkg/blog"
	"shiftdb/pkg/config"
	"shiftdb/pkg/counters"
	"shiftdb/pkg/logger"
	"shiftdb/pkg/migrate"
	"shiftdb/pkg/source"
	"shiftdb/pkg/store"
	"shiftdb/pkg/verify"
	"shiftdb/pkg/views"
)

// App holds the server components. Source-side components are nil when
// the phase no longer touches the source store.
type App struct {
	cfg     *config.Config
	addr    string
	version string
	phase   migrate.Phase

	sourceDB *store.Pebble
	targetDB *store.Pebble

	svc      *blog.Service
	engine   *backfill.Engine
	verifier *verify.Verifier

	srv          *http.Server
	cancelVerify context.CancelFunc
}

// New opens the stores and wires the service. The source store stays
// closed once the phase is target-only; everything that needs it is left
// nil and its HTTP routes answer 409.
func New(cfg *config.Config, addr, version string) (*App, error) {
	phase, err := migrate.ParsePhase(cfg.Migration.Phase)
	if err != nil {
		return nil, err
	}

	targetDB, err := store.Open(cfg.Storage.TargetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open target pebble at %s: %w", cfg.Storage.TargetPath, err)
	}

	a := &App{cfg: cfg, addr: addr, version: version, phase: phase, targetDB: targetDB}

	reader := views.NewReader(targetDB)
	writer := views.NewWriter(targetDB)
	counts := counters.New(targetDB)
	coord := migrate.New(phase)

	var src *source.DocStore
	if phase != migrate.TargetOnly {
		sourceDB, err := store.Open(cfg.Storage.SourcePath)
		if err != nil {
			_ = targetDB.Close()
			return nil, fmt.Errorf("failed to open source pebble at %s: %w", cfg.Storage.SourcePath, err)
		}
		a.sourceDB = sourceDB
		src = source.New(sourceDB)
		a.engine = backfill.New(src, writer, counts, cfg.Backfill.RatePerSec)
		a.verifier = verify.New(src, reader)
	}

	a.svc = blog.NewService(coord, src, reader, writer, counts)
	return a, nil
}

// Service exposes the domain service, mainly for tests.
func (a *App) Service() *blog.Service { return a.svc }

// Run starts the verification scheduler and the HTTP server, and blocks
// until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.verifier != nil {
		cancel, err := verify.Start(ctx, a.verifier, a.cfg.Verify.Enabled, a.cfg.Verify.Cron)
		if err != nil {
			return err
		}
		a.cancelVerify = cancel
	}

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errCh:
		return err
	}
}

// Close releases the stores. Safe to call after Run returns.
func (a *App) Close() {
	if a.cancelVerify != nil {
		a.cancelVerify()
	}
	if a.sourceDB != nil {
		if err := a.sourceDB.Close(); err != nil {
			logger.Error("source_close_failed", zap.Error(err))
		}
	}
	if a.targetDB != nil {
		if err := a.targetDB.Close(); err != nil {
			logger.Error("target_close_failed", zap.Error(err))
		}
	}
}
