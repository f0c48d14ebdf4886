package core

import "time"

// Stage identifies one phase of the replay pipeline.
type Stage string

const (
	StageFreshState Stage = "L0" // trust gate + context reset
	StageIdentity   Stage = "L1" // app/window resolution
	StageProject    Stage = "L2" // window geometry alignment
	StagePredict    Stage = "L3" // direct target prediction
	StageRefine     Stage = "L4" // candidate search fallbacks
	StageConfirm    Stage = "L5" // hit-test confirmation
	StageDispatch   Stage = "L6" // action execution
	StageEscalate   Stage = "L7" // bounded retry with relaxed tolerances
)

// StageOutcome is the recorded result of one stage attempt.
type StageOutcome string

const (
	OutcomePass StageOutcome = "pass"
	OutcomeFail StageOutcome = "fail"
	OutcomeSkip StageOutcome = "skip"
)

// StageRecord is one entry in a run's diagnostic trace.
type StageRecord struct {
	Stage    Stage              `json:"stage"`
	Outcome  StageOutcome       `json:"outcome"`
	Strategy string             `json:"strategy,omitempty"` // e.g. "direct", "neighbor", "native_action"
	Score    float64            `json:"score,omitempty"`    // similarity of the element involved
	Point    *Point             `json:"point,omitempty"`    // point the stage worked with
	Deltas   map[string]float64 `json:"deltas,omitempty"`   // measured drift (dx, dy, scale, ...)
	Detail   string             `json:"detail,omitempty"`
	Duration time.Duration      `json:"duration"`
	At       time.Time          `json:"at"`
}

// Trace is the append-only record of one pipeline run. It accumulates
// for the duration of the run and is surfaced to the caller on success
// and failure alike.
type Trace struct {
	Records []StageRecord `json:"records"`
}

// Append adds a record, stamping it with the current time.
func (t *Trace) Append(rec StageRecord) {
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	t.Records = append(t.Records, rec)
}

// Last returns the most recent record, or nil for an empty trace.
func (t *Trace) Last() *StageRecord {
	if len(t.Records) == 0 {
		return nil
	}
	return &t.Records[len(t.Records)-1]
}

// Stages returns the ordered stage ids of all records.
func (t *Trace) Stages() []Stage {
	out := make([]Stage, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Stage
	}
	return out
}

// Saw reports whether any record exists for the stage.
func (t *Trace) Saw(s Stage) bool {
	for _, r := range t.Records {
		if r.Stage == s {
			return true
		}
	}
	return false
}

// Mechanism identifies how the dispatch stage performed the action.
type Mechanism string

const (
	MechanismNone      Mechanism = ""
	MechanismNative    Mechanism = "native_action"
	MechanismSynthetic Mechanism = "synthetic_click"
)

// Result is the outcome of one pipeline run.
type Result struct {
	Success     bool          `json:"success"`
	FailureKind FailureKind   `json:"failureKind,omitempty"`
	Error       string        `json:"error,omitempty"`
	ExecutedAt  *Point        `json:"executedAt,omitempty"` // set on success, and on dry runs as the would-be point
	Mechanism   Mechanism     `json:"mechanism,omitempty"`
	DryRun      bool          `json:"dryRun,omitempty"`
	Attempts    int           `json:"attempts"` // escalation attempts consumed
	Duration    time.Duration `json:"duration"`
	Trace       Trace         `json:"trace"`
}
