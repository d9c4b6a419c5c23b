package export

// Phase is the runner's position in an export.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseValidating
	PhaseConnecting
	PhaseQueryExecuting
	PhaseWriting
	PhaseClosing
	PhaseDone
	PhaseFailed
)

var phaseNames = [...]string{
	PhaseNotStarted:     "not started",
	PhaseValidating:     "validating",
	PhaseConnecting:     "connecting",
	PhaseQueryExecuting: "query executing",
	PhaseWriting:        "writing",
	PhaseClosing:        "closing",
	PhaseDone:           "done",
	PhaseFailed:         "failed",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Terminal reports whether no further transition can happen.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}
