package pipeline

import (
	"time"

	"github.com/devicelab-dev/axreplay/pkg/core"
)

// confirm is L5: re-query the live tree at the exact point we intend to
// act on and require the node there to be the chosen node itself.
// Identity, not similarity. Overlapping elements, z-order and occluded
// regions can make "found in the tree" and "hit by a click here"
// diverge; this closes that gap before any side effect.
func (rc *runContext) confirm() (core.Stage, *core.PipelineError) {
	started := time.Now()

	rc.target = rc.executionPoint()
	p := rc.target

	var (
		id core.NodeID
		ok bool
	)
	err := rc.bounded(func() error {
		var herr error
		id, ok, herr = rc.insp.ElementAt(rc.target)
		return herr
	})
	if err != nil || !ok {
		detail := "nothing at execution point"
		if err != nil {
			detail = "hit-test failed: " + err.Error()
		}
		rc.record(core.StageRecord{
			Stage: core.StageConfirm, Outcome: core.OutcomeFail,
			Point: &p, Detail: detail,
		}, started)
		return core.StageConfirm, core.ErrConfirmation.WithCause(err)
	}

	if id != rc.chosen {
		rc.record(core.StageRecord{
			Stage: core.StageConfirm, Outcome: core.OutcomeFail,
			Point:  &p,
			Detail: "point resolves to a different node",
		}, started)
		return core.StageConfirm, core.ErrConfirmation.WithDetails(map[string]any{
			"expected": string(rc.chosen),
			"got":      string(id),
		})
	}

	rc.record(core.StageRecord{
		Stage: core.StageConfirm, Outcome: core.OutcomePass,
		Point: &p, Score: rc.chosenScore,
	}, started)
	return core.StageDispatch, nil
}

// executionPoint picks where to act: the recorded activation offset
// reapplied to the candidate's live frame when it still lands inside,
// otherwise the frame center.
func (rc *runContext) executionPoint() core.Point {
	frame := rc.chosenInfo.Frame
	rec := rc.sig.ElementFrame
	if rec.W > 0 && rec.H > 0 {
		fx := (rc.sig.ActivationPoint.X - rec.X) / rec.W
		fy := (rc.sig.ActivationPoint.Y - rec.Y) / rec.H
		p := core.Point{
			X: frame.X + fx*frame.W,
			Y: frame.Y + fy*frame.H,
		}
		if frame.Contains(p) {
			return p
		}
	}
	return frame.Center()
}
