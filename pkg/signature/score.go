package signature

import (
	"math"
	"strings"

	"github.com/devicelab-dev/axreplay/pkg/core"
)

// Weights tunes the similarity score. The relative weighting is a
// heuristic, not a formula: treat these as configuration and test
// threshold boundaries rather than exact values.
type Weights struct {
	Label    float64 `yaml:"label"`    // exact/token label match
	Ancestor float64 `yaml:"ancestor"` // ancestor-chain positional overlap
	Size     float64 `yaml:"size"`     // frame-size ratio closeness
}

// DefaultWeights are the shipped tuning.
func DefaultWeights() Weights {
	return Weights{Label: 0.5, Ancestor: 0.3, Size: 0.2}
}

func (w Weights) total() float64 {
	return w.Label + w.Ancestor + w.Size
}

// Similarity scores a live node against the signature, in [0,1].
// Role is a hard gate: a role mismatch scores zero regardless of the
// other components. Deterministic given identical inputs; no side
// effects. windowScale is the live-to-recorded window size ratio, used
// to judge whether the element's size changed disproportionately.
func (s *ElementSignature) Similarity(live *core.NodeInfo, w Weights, windowScale float64) float64 {
	if live == nil || live.Role == "" || live.Role != s.Role {
		return 0
	}
	total := w.total()
	if total <= 0 {
		return 0
	}

	score := w.Label * labelScore(s.BestLabel(), live)
	score += w.Ancestor * ancestorScore(s.Ancestors, live.Ancestors)
	score += w.Size * sizeScore(s.ElementFrame, live.Frame, windowScale)

	return math.Min(1, score/total)
}

// labelScore: 1.0 for an exact normalized match against any live label
// candidate, otherwise the best token overlap ratio.
func labelScore(recorded string, live *core.NodeInfo) float64 {
	if recorded == "" {
		// Nothing recorded to match against; neutral credit so
		// unlabeled elements can still clear thresholds on structure.
		return 0.5
	}
	rec := NormalizeText(recorded)
	best := 0.0
	for _, l := range live.Labels {
		if core.TrivialLabel(l) {
			continue
		}
		lv := NormalizeText(l)
		if lv == rec {
			return 1.0
		}
		if ov := tokenOverlap(rec, lv); ov > best {
			best = ov
		}
	}
	return best
}

// tokenOverlap returns the fraction of recorded tokens present live.
func tokenOverlap(rec, live string) float64 {
	recToks := strings.Fields(rec)
	if len(recToks) == 0 {
		return 0
	}
	liveSet := make(map[string]bool)
	for _, t := range strings.Fields(live) {
		liveSet[t] = true
	}
	hits := 0
	for _, t := range recToks {
		if liveSet[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(recToks))
}

// ancestorScore gives partial credit per matching ancestor position,
// comparing from the element outward. Chains of different length are
// scored against the recorded length.
func ancestorScore(recorded, live []core.Ancestor) float64 {
	if len(recorded) == 0 {
		return 0.5 // no structure recorded; neutral
	}
	n := len(recorded)
	if len(live) < n {
		n = len(live)
	}
	matched := 0.0
	for i := 0; i < n; i++ {
		if recorded[i].Role != live[i].Role {
			continue
		}
		if recorded[i].Label == "" || live[i].Label == "" ||
			NormalizeText(recorded[i].Label) == NormalizeText(live[i].Label) {
			matched++
		} else {
			matched += 0.5 // right role, renamed container
		}
	}
	return matched / float64(len(recorded))
}

// sizeScore penalizes elements whose size changed disproportionately
// to the window. A candidate that scaled with the window scores 1.
func sizeScore(recorded, live core.Rect, windowScale float64) float64 {
	if recorded.Empty() || live.Empty() {
		return 0
	}
	if windowScale <= 0 {
		windowScale = 1
	}
	expW := recorded.W * windowScale
	expH := recorded.H * windowScale
	rw := ratioCloseness(live.W, expW)
	rh := ratioCloseness(live.H, expH)
	return (rw + rh) / 2
}

// ratioCloseness maps a/b into (0,1]: equal sizes score 1, a 2x
// divergence either way scores 0.5.
func ratioCloseness(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	r := a / b
	if r > 1 {
		r = 1 / r
	}
	return r
}
