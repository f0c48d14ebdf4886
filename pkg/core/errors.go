package core

import "fmt"

// FailureKind classifies why a pipeline run refused or failed.
type FailureKind string

const (
	// FailNone means no failure (successful run).
	FailNone FailureKind = ""
	// FailNotAuthorized: the process lacks the system permission to
	// read the UI tree. Fatal, no retry.
	FailNotAuthorized FailureKind = "not_authorized"
	// FailIdentityMismatch: no live window matches the recorded
	// application/window at acceptable confidence. Fatal for this run.
	FailIdentityMismatch FailureKind = "identity_mismatch"
	// FailNoCandidate: neither the projected point nor any search
	// strategy produced an element above threshold. Recoverable via
	// escalation until the budget runs out.
	FailNoCandidate FailureKind = "no_candidate_found"
	// FailConfirmation: the chosen point no longer resolves to the
	// chosen node. Recoverable via escalation.
	FailConfirmation FailureKind = "confirmation_failed"
	// FailExecution: the action mechanism rejected the action.
	// Escalation retries the alternate mechanism once, then fatal.
	FailExecution FailureKind = "execution_failed"
	// FailEscalationExhausted: terminal aggregate failure after the
	// escalation budget was spent.
	FailEscalationExhausted FailureKind = "escalation_exhausted"
)

// Recoverable reports whether escalation may retry after this failure.
func (k FailureKind) Recoverable() bool {
	switch k {
	case FailNoCandidate, FailConfirmation, FailExecution:
		return true
	}
	return false
}

// PipelineError is a structured stage failure. Stages return it instead
// of throwing past their boundary; the orchestrator alone decides
// retry-vs-abort.
type PipelineError struct {
	Kind    FailureKind
	Stage   Stage
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy of the error with the given cause.
func (e *PipelineError) WithCause(cause error) *PipelineError {
	c := *e
	c.Cause = cause
	return &c
}

// WithDetails returns a copy of the error with merged details.
func (e *PipelineError) WithDetails(details map[string]any) *PipelineError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	c := *e
	c.Details = merged
	return &c
}

// NewPipelineError creates a stage failure.
func NewPipelineError(kind FailureKind, stage Stage, message string) *PipelineError {
	return &PipelineError{Kind: kind, Stage: stage, Message: message}
}

// Predefined stage failures.
var (
	ErrNotAuthorized = &PipelineError{
		Kind:    FailNotAuthorized,
		Stage:   StageFreshState,
		Message: "process is not trusted for UI introspection",
	}
	ErrIdentityMismatch = &PipelineError{
		Kind:    FailIdentityMismatch,
		Stage:   StageIdentity,
		Message: "no live window matches the recorded application",
	}
	ErrNoCandidate = &PipelineError{
		Kind:    FailNoCandidate,
		Stage:   StageRefine,
		Message: "no element matches the signature above threshold",
	}
	ErrConfirmation = &PipelineError{
		Kind:    FailConfirmation,
		Stage:   StageConfirm,
		Message: "execution point no longer resolves to the chosen element",
	}
	ErrExecution = &PipelineError{
		Kind:    FailExecution,
		Stage:   StageDispatch,
		Message: "action mechanism rejected the action",
	}
	ErrEscalationExhausted = &PipelineError{
		Kind:    FailEscalationExhausted,
		Stage:   StageEscalate,
		Message: "escalation budget exhausted",
	}
)
