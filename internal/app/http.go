package app

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"shiftdb/pkg/api"
	"shiftdb/pkg/banner"
	"shiftdb/pkg/logger"
	"shiftdb/pkg/telemetry"
)

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	srcPath := ""
	if a.sourceDB != nil {
		srcPath = a.cfg.Storage.SourcePath
	}
	banner.Print(a.addr, a.phase.String(), srcPath, a.cfg.Storage.TargetPath, a.version)
}

// startHTTP builds the handler, starts the HTTP server in a goroutine and
// returns a channel that will contain any server error.
func (a *App) startHTTP(_ context.Context) <-chan error {
	srv := api.NewServer(a.svc, a.engine, a.verifier)
	a.srv = &http.Server{Addr: a.addr, Handler: telemetry.Middleware(srv.Router())}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", zap.String("addr", a.addr))
		errCh <- a.srv.ListenAndServe()
	}()
	return errCh
}

// shutdown drains the HTTP server with a grace period.
func (a *App) shutdown() error {
	if a.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(ctx); err != nil {
		logger.Error("http_shutdown_failed", zap.Error(err))
		return err
	}
	logger.Info("http_shutdown_complete")
	return nil
}
