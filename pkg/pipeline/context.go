package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/devicelab-dev/axreplay/pkg/config"
	"github.com/devicelab-dev/axreplay/pkg/core"
	"github.com/devicelab-dev/axreplay/pkg/signature"
)

// Options tune one pipeline run.
type Options struct {
	// DryRun stops before dispatch and reports the point and mechanism
	// that would have been used.
	DryRun bool
	// Escalate enables the bounded retry loop on recoverable failures.
	Escalate bool
	// MinConfidence overrides the configured acceptance threshold when
	// positive.
	MinConfidence float64
}

// runContext is the live state of one pipeline run. It is built fresh
// at L0 and discarded at the end of the run; no run carries state into
// the next.
type runContext struct {
	ctx  context.Context
	sig  *signature.ElementSignature
	opts Options
	cfg  *config.Config
	insp core.Inspector
	act  core.Actor

	trace core.Trace

	// Bound at L1.
	window core.Window

	// Derived at L2.
	transform      Transform
	projected      core.Point // projected activation point, screen space
	projectedFrame core.Rect

	// Chosen at L3/L4.
	chosen      core.NodeID
	chosenInfo  *core.NodeInfo
	chosenScore float64
	seed        core.NodeID // element found at the projected point, if any

	// Confirmed at L5, acted on at L6.
	target    core.Point
	mechanism core.Mechanism

	// Escalation state.
	accept      float64 // current acceptance threshold
	radius      float64 // current neighbor-scan radius
	attempts    int
	execRetried bool           // alternate-mechanism retry consumed
	forceMech   core.Mechanism // non-empty when escalation pinned a mechanism
}

func newRunContext(ctx context.Context, sig *signature.ElementSignature, opts Options,
	cfg *config.Config, insp core.Inspector, act core.Actor) *runContext {
	accept := cfg.Thresholds.Accept
	if opts.MinConfidence > 0 {
		accept = opts.MinConfidence
	}
	return &runContext{
		ctx:    ctx,
		sig:    sig,
		opts:   opts,
		cfg:    cfg,
		insp:   insp,
		act:    act,
		accept: accept,
		radius: cfg.Search.NeighborRadius,
	}
}

// errCallTimeout marks a collaborator call that exceeded the bounded wait.
var errCallTimeout = errors.New("collaborator call timed out")

// bounded runs fn with the configured call timeout. The introspection
// and action collaborators have no implicit timeouts of their own; a
// transiently unresponsive UI would otherwise hang the run. The
// goroutine running fn is left to finish in the background on timeout.
func (rc *runContext) bounded(fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	timer := time.NewTimer(rc.cfg.CallTimeout())
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return errCallTimeout
	}
}

// record appends a trace entry for a finished stage attempt.
func (rc *runContext) record(rec core.StageRecord, started time.Time) {
	rec.Duration = time.Since(started)
	rc.trace.Append(rec)
}
