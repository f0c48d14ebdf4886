package pipeline

import (
	"strings"
	"time"

	"github.com/devicelab-dev/axreplay/pkg/core"
	"github.com/devicelab-dev/axreplay/pkg/signature"
)

// Window-match confidence levels. Exact title beats substring beats
// app-name-only; the identity threshold decides how far down that
// ladder a run may bind.
const (
	confTitleExact      = 1.0
	confTitleSubstring  = 0.8
	confNoRecordedTitle = 0.7
	confAppOnly         = 0.4
)

// resolveIdentity is L1: find the live window that is "the same" target
// the signature was recorded against, and bind the run to it. A miss is
// a hard stop; no downstream stage runs.
func (rc *runContext) resolveIdentity() (core.Stage, *core.PipelineError) {
	started := time.Now()

	windows, err := rc.insp.ListWindows("")
	if err != nil {
		rc.record(core.StageRecord{
			Stage: core.StageIdentity, Outcome: core.OutcomeFail,
			Detail: "window enumeration failed: " + err.Error(),
		}, started)
		return core.StageIdentity, core.ErrIdentityMismatch.WithCause(err)
	}

	wantApp := signature.NormalizeText(rc.sig.App.Name)
	wantTitle := signature.NormalizeText(rc.sig.WindowTitle)

	best := -1.0
	var bestWin core.Window
	for _, w := range windows {
		if signature.NormalizeText(w.App) != wantApp {
			continue
		}
		c := windowConfidence(wantTitle, signature.NormalizeText(w.Title))
		if c > best {
			best, bestWin = c, w
		}
	}

	if best < rc.cfg.Thresholds.Identity {
		rc.record(core.StageRecord{
			Stage: core.StageIdentity, Outcome: core.OutcomeFail,
			Score:  maxf(best, 0),
			Detail: "no window above identity threshold for app " + rc.sig.App.Name,
		}, started)
		return core.StageIdentity, core.ErrIdentityMismatch.WithDetails(map[string]any{
			"app":        rc.sig.App.Name,
			"confidence": best,
			"windows":    len(windows),
		})
	}

	rc.window = bestWin
	rc.record(core.StageRecord{
		Stage: core.StageIdentity, Outcome: core.OutcomePass,
		Score:  best,
		Detail: "bound to window " + quoteTitle(bestWin.Title),
	}, started)
	return core.StageProject, nil
}

// windowConfidence scores a live title against the recorded one. Both
// inputs are normalized. Substring matching in either direction
// tolerates titles that append document names or unsaved-state markers.
func windowConfidence(recorded, live string) float64 {
	switch {
	case recorded == "":
		return confNoRecordedTitle
	case live == recorded:
		return confTitleExact
	case live != "" && (strings.Contains(live, recorded) || strings.Contains(recorded, live)):
		return confTitleSubstring
	default:
		return confAppOnly
	}
}

func quoteTitle(t string) string {
	if t == "" {
		return "(untitled)"
	}
	return `"` + t + `"`
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
