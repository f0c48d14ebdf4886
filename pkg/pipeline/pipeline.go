// Package pipeline implements the staged validation-and-targeting
// pipeline that replays a recorded click against a live UI.
// Stages run strictly forward with a single conditional back-edge from
// escalation; no stage after L0 runs unless the previous one passed,
// and nothing acts on the live system before confirmation has passed in
// the same run.
package pipeline

import (
	"context"
	"time"

	"github.com/devicelab-dev/axreplay/pkg/config"
	"github.com/devicelab-dev/axreplay/pkg/core"
	"github.com/devicelab-dev/axreplay/pkg/logger"
	"github.com/devicelab-dev/axreplay/pkg/signature"
)

// stageDone is the internal terminal marker. Terminal states are final:
// the orchestrator never continues past one within a run.
const stageDone core.Stage = "done"

// Pipeline replays signatures through one introspection/action backend.
// A Pipeline is safe to reuse across runs; it keeps no per-run state.
// Concurrent runs against the same live application are not safe to
// interleave, since both would observe and mutate the same UI; the
// caller must serialize them.
type Pipeline struct {
	insp core.Inspector
	act  core.Actor
	cfg  *config.Config
}

// New creates a Pipeline over a combined driver.
func New(driver core.Driver, cfg *config.Config) *Pipeline {
	return NewSplit(driver, driver, cfg)
}

// NewSplit creates a Pipeline with separate introspection and action
// collaborators.
func NewSplit(insp core.Inspector, act core.Actor, cfg *config.Config) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pipeline{insp: insp, act: act, cfg: cfg}
}

// Run executes one replay of sig. The returned result always carries
// the full diagnostic trace, on failure as much as on success.
// Cancellation via ctx is honored between stages only, and not at all
// once dispatch has begun: that side effect is irreversible and must be
// allowed to complete.
func (p *Pipeline) Run(ctx context.Context, sig *signature.ElementSignature, opts Options) *core.Result {
	runStart := time.Now()
	rc := newRunContext(ctx, sig, opts, p.cfg, p.insp, p.act)

	if err := sig.Validate(); err != nil {
		logger.Warn("replay refused: %v", err)
		return rc.fail(runStart, &core.PipelineError{
			Kind:    core.FailNone,
			Stage:   core.StageFreshState,
			Message: "invalid signature",
			Cause:   err,
		})
	}
	logger.Debug("replaying %s", sig.Describe())

	st := core.StageFreshState
	for {
		// Cooperative cancellation at stage boundaries. Mid-stage
		// aborts would leave the introspection session inconsistent.
		if err := ctx.Err(); err != nil {
			rc.trace.Append(core.StageRecord{
				Stage: st, Outcome: core.OutcomeSkip, Detail: "run cancelled",
			})
			res := rc.fail(runStart, nil)
			res.Error = err.Error()
			return res
		}

		// Dry runs stop at the dispatch boundary and report what would
		// have happened.
		if st == core.StageDispatch && opts.DryRun {
			return rc.finishDryRun(runStart)
		}

		var next core.Stage
		var perr *core.PipelineError

		switch st {
		case core.StageFreshState:
			next, perr = rc.freshState()
		case core.StageIdentity:
			next, perr = rc.resolveIdentity()
		case core.StageProject:
			next, perr = rc.project()
		case core.StagePredict:
			next, perr = rc.predict()
		case core.StageRefine:
			next, perr = rc.refine()
		case core.StageConfirm:
			next, perr = rc.confirm()
		case core.StageDispatch:
			next, perr = rc.dispatch()
		}

		if perr != nil {
			if perr.Kind.Recoverable() && opts.Escalate {
				next, perr = rc.escalate(perr)
				if perr != nil {
					return rc.fail(runStart, perr)
				}
				st = next
				continue
			}
			return rc.fail(runStart, perr)
		}

		if next == stageDone {
			return rc.succeed(runStart)
		}
		st = next
	}
}

// freshState is L0: verify the introspection collaborator trusts this
// process. Per-run state is already reset by construction; there is
// deliberately no process-wide context to clear.
func (rc *runContext) freshState() (core.Stage, *core.PipelineError) {
	started := time.Now()

	if !rc.insp.IsTrusted() {
		rc.record(core.StageRecord{
			Stage: core.StageFreshState, Outcome: core.OutcomeFail,
			Detail: "introspection permission missing",
		}, started)
		return core.StageFreshState, core.ErrNotAuthorized
	}

	rc.record(core.StageRecord{
		Stage: core.StageFreshState, Outcome: core.OutcomePass,
	}, started)
	return core.StageIdentity, nil
}

func (rc *runContext) succeed(runStart time.Time) *core.Result {
	p := rc.target
	logger.Info("replayed %s at (%.1f, %.1f) via %s",
		rc.sig.Describe(), p.X, p.Y, rc.mechanism)
	return &core.Result{
		Success:    true,
		ExecutedAt: &p,
		Mechanism:  rc.mechanism,
		Attempts:   rc.attempts,
		Duration:   time.Since(runStart),
		Trace:      rc.trace,
	}
}

func (rc *runContext) finishDryRun(runStart time.Time) *core.Result {
	p := rc.target
	mech := rc.plannedMechanism()
	rc.trace.Append(core.StageRecord{
		Stage: core.StageDispatch, Outcome: core.OutcomeSkip,
		Strategy: string(mech), Point: &p, Detail: "dry run",
	})
	logger.Info("dry run: would replay %s at (%.1f, %.1f) via %s",
		rc.sig.Describe(), p.X, p.Y, mech)
	return &core.Result{
		Success:    true,
		DryRun:     true,
		ExecutedAt: &p,
		Mechanism:  mech,
		Attempts:   rc.attempts,
		Duration:   time.Since(runStart),
		Trace:      rc.trace,
	}
}

func (rc *runContext) fail(runStart time.Time, perr *core.PipelineError) *core.Result {
	res := &core.Result{
		Success:  false,
		DryRun:   rc.opts.DryRun,
		Attempts: rc.attempts,
		Duration: time.Since(runStart),
		Trace:    rc.trace,
	}
	if perr != nil {
		res.FailureKind = perr.Kind
		res.Error = perr.Error()
		logger.Warn("replay failed (%s): %v", perr.Kind, perr)
	}
	return res
}
