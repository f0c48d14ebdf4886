package pipeline

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/axreplay/pkg/core"
)

// escalate is L7: retry an earlier stage with relaxed tolerances, up to
// the configured attempt budget. Each attempt re-enters the pipeline at
// the stage most likely to recover from the observed failure, not at
// L0. Exhausting the budget is terminal.
func (rc *runContext) escalate(failure *core.PipelineError) (core.Stage, *core.PipelineError) {
	started := time.Now()

	if rc.attempts >= rc.cfg.Escalation.Budget {
		rc.record(core.StageRecord{
			Stage: core.StageEscalate, Outcome: core.OutcomeFail,
			Detail: fmt.Sprintf("budget of %d attempts exhausted", rc.cfg.Escalation.Budget),
		}, started)
		return core.StageEscalate, core.ErrEscalationExhausted.WithCause(failure).WithDetails(map[string]any{
			"attempts": rc.attempts,
			"lastKind": string(failure.Kind),
		})
	}
	// A second execution failure is terminal and consumes no attempt;
	// both mechanisms have already been tried.
	if failure.Kind == core.FailExecution && rc.execRetried {
		rc.record(core.StageRecord{
			Stage: core.StageEscalate, Outcome: core.OutcomeFail,
			Detail: "both action mechanisms rejected the action",
		}, started)
		return core.StageEscalate, core.ErrEscalationExhausted.WithCause(failure)
	}
	rc.attempts++

	var reentry core.Stage
	var detail string

	if failure.Kind == core.FailExecution {
		// One shot at the alternate mechanism, then fatal.
		rc.execRetried = true
		if rc.mechanism == core.MechanismNative {
			rc.forceMech = core.MechanismSynthetic
		} else {
			rc.forceMech = core.MechanismNative
		}
		reentry = core.StageDispatch
		detail = "retrying via " + string(rc.forceMech)
	} else {
		switch rc.attempts {
		case 1:
			rc.radius *= rc.cfg.Escalation.RadiusScale
			reentry = core.StageRefine
			detail = fmt.Sprintf("widened neighbor radius to %.0f", rc.radius)
		case 2:
			rc.accept = maxf(rc.accept-rc.cfg.Escalation.ThresholdStep, rc.cfg.Escalation.MinAccept)
			reentry = core.StageRefine
			detail = fmt.Sprintf("lowered acceptance threshold to %.2f", rc.accept)
		default:
			// The active window may have changed mid-run (a dialog
			// appeared, a document switched). Re-resolve identity and
			// reproject before searching again.
			reentry = core.StageIdentity
			detail = "re-resolving window identity"
		}
		// Confirmation failures re-enter at refinement regardless of
		// which relaxation applied: the geometry drifted, so the
		// candidate must be re-found, not just re-confirmed.
		if failure.Kind == core.FailConfirmation && reentry == core.StageRefine {
			rc.chosen = core.NodeIDNone
			rc.chosenInfo = nil
		}
	}

	rc.record(core.StageRecord{
		Stage: core.StageEscalate, Outcome: core.OutcomePass,
		Strategy: string(reentry),
		Detail:   fmt.Sprintf("attempt %d/%d: %s", rc.attempts, rc.cfg.Escalation.Budget, detail),
	}, started)
	return reentry, nil
}
