package loader

import "fmt"

// Phase enumerates the script load lifecycle.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText renders the phase using its lifecycle name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a snapshot of a loader. Reason is only populated when Phase is
// PhaseFailed.
type State struct {
	Phase  Phase  `json:"phase"`
	Reason string `json:"reason,omitempty"`
}

// NotStarted, Loading and Ready are the reason-less states.
var (
	NotStarted = State{Phase: PhaseNotStarted}
	Loading    = State{Phase: PhaseLoading}
	Ready      = State{Phase: PhaseReady}
)

// Failed builds a failed state with a human readable reason.
func Failed(reason string) State {
	return State{Phase: PhaseFailed, Reason: reason}
}

func (s State) IsReady() bool   { return s.Phase == PhaseReady }
func (s State) IsFailed() bool  { return s.Phase == PhaseFailed }
func (s State) IsLoading() bool { return s.Phase == PhaseLoading }

func (s State) String() string {
	if s.Phase == PhaseFailed && s.Reason != "" {
		return fmt.Sprintf("failed(%s)", s.Reason)
	}
	return s.Phase.String()
}

// Failure reasons surfaced to the address field.
const (
	ReasonSecretFailed  = "Failed to fetch Google Places API key"
	ReasonSecretMissing = "Google Places API key not found"
	ReasonScriptFailed  = "Failed to load Google Maps"
	ReasonTimeout       = "timeout"
	ReasonClosed        = "loader closed"
)
