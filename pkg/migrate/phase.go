// Package migrate holds the phased-migration state machine: which store
// takes writes and which answers reads for the current phase. The phase is
// fixed at process start; moving between phases is an operational decision
// carried out by redeploying with new configuration, never by request
// traffic.
package migrate

import "fmt"

// Phase is one state of the migration.
//
//	SourceOnly    → writes and reads hit the source store only.
//	DualWrite     → source write must succeed first, then the target write
//	                is attempted best-effort; reads stay on the source.
//	TargetPrimary → same write path; reads hit the target, falling back to
//	                the source on target failure.
//	TargetOnly    → the source store is gone; target errors surface.
type Phase int

const (
	SourceOnly Phase = iota
	DualWrite
	TargetPrimary
	TargetOnly
)

var phaseNames = map[Phase]string{
	SourceOnly:    "source_only",
	DualWrite:     "dual_write",
	TargetPrimary: "target_primary",
	TargetOnly:    "target_only",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ParsePhase maps a config string onto a Phase.
func ParsePhase(s string) (Phase, error) {
	for p, name := range phaseNames {
		if s == name {
			return p, nil
		}
	}
	return SourceOnly, fmt.Errorf("unknown migration phase %q", s)
}

// WritesSource reports whether the source store is authoritative for
// writes in this phase.
func (p Phase) WritesSource() bool { return p != TargetOnly }

// WritesTarget reports whether the target store receives writes (either
// best-effort or authoritative).
func (p Phase) WritesTarget() bool { return p != SourceOnly }

// ReadsTarget reports whether reads are served from the target store.
func (p Phase) ReadsTarget() bool { return p == TargetPrimary || p == TargetOnly }

// FallsBack reports whether a failed target read may be retried against
// the source store.
func (p Phase) FallsBack() bool { return p == TargetPrimary }
