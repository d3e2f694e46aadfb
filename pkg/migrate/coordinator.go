package migrate

import (
	"go.uber.org/zap"

	"shiftdb/pkg/logger"
	"shiftdb/pkg/metrics"
)

// Provenance tags a read response with the store that actually answered.
type Provenance string

const (
	FromSource   Provenance = "source"
	FromTarget   Provenance = "target"
	FromFallback Provenance = "fallback"
)

// Coordinator applies the phase's routing decisions to individual
// operations. It is built once at startup and shared by all requests.
type Coordinator struct {
	phase Phase
}

func New(phase Phase) *Coordinator {
	return &Coordinator{phase: phase}
}

func (c *Coordinator) Phase() Phase { return c.phase }

// Read executes the phase's read routing and reports which store answered.
// target and source each run the read against their store and capture the
// result in the caller's scope. retriable decides whether a target error
// is a store failure worth falling back on; an entity that is genuinely
// absent must surface as absent, not trigger a fallback.
//
// In TargetOnly there is nothing to fall back to, so target errors
// surface unchanged.
func (c *Coordinator) Read(target, source func() error, retriable func(error) bool) (Provenance, error) {
	if !c.phase.ReadsTarget() {
		return FromSource, source()
	}
	err := target()
	if err == nil {
		return FromTarget, nil
	}
	if !c.phase.FallsBack() || !retriable(err) {
		return FromTarget, err
	}
	logger.Warn("target_read_failed_falling_back",
		zap.String("phase", c.phase.String()), zap.Error(err))
	metrics.FallbackReads.Inc()
	if ferr := source(); ferr != nil {
		return FromFallback, ferr
	}
	return FromFallback, nil
}
