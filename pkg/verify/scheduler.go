package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"go.uber.org/zap"

	"shiftdb/pkg/logger"
)

// Start launches the periodic verification scheduler. Returns a cancel
// func; a disabled scheduler returns a no-op cancel.
func Start(ctx context.Context, v *Verifier, enabled bool, cronExpr string) (context.CancelFunc, error) {
	if !enabled {
		logger.Info("verify_disabled")
		return func() {}, nil
	}

	if cronExpr == "" {
		cronExpr = "*/5 * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("verify_invalid_cron", zap.String("cron", cronExpr))
		return nil, fmt.Errorf("invalid verify cron expression: %s", cronExpr)
	}

	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, v, cronExpr)
	logger.Info("verify_scheduler_started", zap.String("cron", cronExpr))
	return cancel, nil
}

// runScheduler computes the next tick with gronx and sleeps until then.
func runScheduler(ctx context.Context, v *Verifier, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("verify_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("verify_nexttick_failed", zap.String("cron", cronExpr), zap.Error(err))
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if _, err := v.Run(); err != nil {
				logger.Error("verify_run_error", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("verify_scheduler_stopping")
			return
		}
	}
}
