package pipeline

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/axreplay/pkg/core"
)

// project is L2: compute the recorded-to-live transform from the window
// frame deltas and reproject the activation point and element frame.
// Re-entered after escalation re-binds the window, since the live frame
// may have changed mid-run.
func (rc *runContext) project() (core.Stage, *core.PipelineError) {
	started := time.Now()

	rc.transform = ComputeTransform(rc.sig.WindowFrame, rc.window.Frame)
	rc.projected = rc.transform.Point(rc.sig.ActivationPoint)
	rc.projectedFrame = rc.transform.Rect(rc.sig.ElementFrame)

	deltas := map[string]float64{
		"dx":     rc.window.Frame.X - rc.sig.WindowFrame.X,
		"dy":     rc.window.Frame.Y - rc.sig.WindowFrame.Y,
		"scaleX": rc.transform.ScaleX,
		"scaleY": rc.transform.ScaleY,
	}
	// A display scale change (multi-display move, resolution switch)
	// does not alter point-space geometry but is worth surfacing.
	if rc.sig.ScreenScale > 0 && rc.window.Scale > 0 && rc.sig.ScreenScale != rc.window.Scale {
		deltas["screenScale"] = rc.window.Scale / rc.sig.ScreenScale
	}

	p := rc.projected
	rc.record(core.StageRecord{
		Stage: core.StageProject, Outcome: core.OutcomePass,
		Point:  &p,
		Deltas: deltas,
	}, started)
	return core.StagePredict, nil
}

// predict is L3: ask the live tree what sits at the projected point and
// accept it outright when it clears the high-confidence bar. This is
// the cheap path taken on the overwhelming majority of runs where
// nothing structurally changed.
func (rc *runContext) predict() (core.Stage, *core.PipelineError) {
	started := time.Now()
	p := rc.projected

	id, ok, err := rc.insp.ElementAt(rc.projected)
	if err != nil || !ok {
		rc.seed = core.NodeIDNone
		detail := "no element at projected point"
		if err != nil {
			detail = "hit-test failed: " + err.Error()
		}
		rc.record(core.StageRecord{
			Stage: core.StagePredict, Outcome: core.OutcomeFail,
			Strategy: "direct", Point: &p, Detail: detail,
		}, started)
		return core.StageRefine, nil
	}

	rc.seed = id
	info, err := rc.insp.Attributes(id)
	if err != nil {
		rc.record(core.StageRecord{
			Stage: core.StagePredict, Outcome: core.OutcomeFail,
			Strategy: "direct", Point: &p,
			Detail: "attribute read failed: " + err.Error(),
		}, started)
		return core.StageRefine, nil
	}

	// The direct bar never drops below the caller's requested minimum.
	bar := maxf(rc.cfg.Thresholds.Direct, rc.accept)
	score := rc.sig.Similarity(info, rc.cfg.Weights, rc.transform.WindowScale())
	if score < bar {
		rc.record(core.StageRecord{
			Stage: core.StagePredict, Outcome: core.OutcomeFail,
			Strategy: "direct", Point: &p, Score: score,
			Detail: fmt.Sprintf("below direct threshold %.2f", bar),
		}, started)
		return core.StageRefine, nil
	}

	rc.chosen = id
	rc.chosenInfo = info
	rc.chosenScore = score
	rc.record(core.StageRecord{
		Stage: core.StagePredict, Outcome: core.OutcomePass,
		Strategy: "direct", Point: &p, Score: score,
	}, started)
	return core.StageConfirm, nil
}
