package pipeline

import (
	"errors"
	"time"

	"github.com/devicelab-dev/axreplay/pkg/core"
)

// dispatch is L6, the only stage permitted a side effect on the live
// system. The native action invocation is preferred, being robust to
// DPI and independent of pixel accuracy, with a synthetic click at the
// confirmed point as the fallback mechanism.
func (rc *runContext) dispatch() (core.Stage, *core.PipelineError) {
	started := time.Now()
	p := rc.target

	mech := rc.pickMechanism()

	if mech == core.MechanismNative {
		err := rc.bounded(func() error { return rc.act.InvokeAction(rc.chosen) })
		switch {
		case err == nil:
			rc.mechanism = core.MechanismNative
			rc.record(core.StageRecord{
				Stage: core.StageDispatch, Outcome: core.OutcomePass,
				Strategy: string(core.MechanismNative), Point: &p,
			}, started)
			return stageDone, nil
		case errors.Is(err, core.ErrActionUnsupported) && rc.forceMech == core.MechanismNone:
			// Role has no native action after all; fall through to the
			// synthetic path within the same attempt.
			mech = core.MechanismSynthetic
		default:
			rc.record(core.StageRecord{
				Stage: core.StageDispatch, Outcome: core.OutcomeFail,
				Strategy: string(core.MechanismNative), Point: &p,
				Detail: err.Error(),
			}, started)
			rc.mechanism = core.MechanismNative
			return core.StageDispatch, core.ErrExecution.WithCause(err)
		}
	}

	if err := rc.bounded(func() error { return rc.act.SyntheticClick(rc.target) }); err != nil {
		rc.record(core.StageRecord{
			Stage: core.StageDispatch, Outcome: core.OutcomeFail,
			Strategy: string(core.MechanismSynthetic), Point: &p,
			Detail: err.Error(),
		}, started)
		rc.mechanism = core.MechanismSynthetic
		return core.StageDispatch, core.ErrExecution.WithCause(err)
	}

	rc.mechanism = core.MechanismSynthetic
	rc.record(core.StageRecord{
		Stage: core.StageDispatch, Outcome: core.OutcomePass,
		Strategy: string(core.MechanismSynthetic), Point: &p,
	}, started)
	return stageDone, nil
}

// pickMechanism honors an escalation-pinned mechanism, otherwise
// prefers the native action when the role advertises one.
func (rc *runContext) pickMechanism() core.Mechanism {
	if rc.forceMech != core.MechanismNone {
		return rc.forceMech
	}
	if rc.chosenInfo != nil && rc.chosenInfo.HasAction(core.ActionPress) {
		return core.MechanismNative
	}
	return core.MechanismSynthetic
}

// plannedMechanism reports what dispatch would do, for dry runs.
func (rc *runContext) plannedMechanism() core.Mechanism {
	return rc.pickMechanism()
}
