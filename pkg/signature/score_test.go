package signature

import (
	"testing"

	"github.com/devicelab-dev/axreplay/pkg/core"
)

func liveSendButton() *core.NodeInfo {
	return &core.NodeInfo{
		Role:      "button",
		Labels:    []string{"Send"},
		Frame:     core.Rect{X: 800, Y: 100, W: 100, H: 40},
		Ancestors: []core.Ancestor{{Role: "toolbar"}, {Role: "window"}},
		Actions:   []string{core.ActionPress},
	}
}

func TestSimilarity_RoleIsHardGate(t *testing.T) {
	sig := sendButton()
	live := liveSendButton()
	live.Role = "checkbox"

	if got := sig.Similarity(live, DefaultWeights(), 1.0); got != 0 {
		t.Errorf("Similarity with role mismatch=%v, want 0", got)
	}
	if got := sig.Similarity(nil, DefaultWeights(), 1.0); got != 0 {
		t.Errorf("Similarity(nil)=%v, want 0", got)
	}
}

func TestSimilarity_PerfectMatch(t *testing.T) {
	sig := sendButton()
	got := sig.Similarity(liveSendButton(), DefaultWeights(), 1.0)
	if got < 0.99 {
		t.Errorf("Similarity for identical element=%v, want ~1", got)
	}
}

func TestSimilarity_Ordering(t *testing.T) {
	// Exact weights are tuning; what matters is the ordering a search
	// relies on: better-matching candidates must score strictly higher.
	sig := sendButton()
	w := DefaultWeights()

	perfect := sig.Similarity(liveSendButton(), w, 1.0)

	wrongLabel := liveSendButton()
	wrongLabel.Labels = []string{"Discard"}
	wrongLabelScore := sig.Similarity(wrongLabel, w, 1.0)

	wrongStructure := liveSendButton()
	wrongStructure.Labels = []string{"Discard"}
	wrongStructure.Ancestors = []core.Ancestor{{Role: "sheet"}, {Role: "dialog"}}
	wrongBothScore := sig.Similarity(wrongStructure, w, 1.0)

	if !(perfect > wrongLabelScore && wrongLabelScore > wrongBothScore) {
		t.Errorf("score ordering broken: perfect=%v wrongLabel=%v wrongBoth=%v",
			perfect, wrongLabelScore, wrongBothScore)
	}
}

func TestSimilarity_TokenOverlap(t *testing.T) {
	sig := sendButton()
	sig.Labels = []string{"Send Message Now"}
	w := DefaultWeights()

	partial := liveSendButton()
	partial.Labels = []string{"Send Message"}
	partialScore := sig.Similarity(partial, w, 1.0)

	none := liveSendButton()
	none.Labels = []string{"Cancel"}
	noneScore := sig.Similarity(none, w, 1.0)

	if !(partialScore > noneScore) {
		t.Errorf("token overlap should beat no overlap: %v <= %v", partialScore, noneScore)
	}
}

func TestSimilarity_SizePenalty(t *testing.T) {
	sig := sendButton()
	w := DefaultWeights()

	scaled := liveSendButton()
	// Window scaled 0.5; element scaled with it.
	scaled.Frame = core.Rect{X: 400, Y: 50, W: 50, H: 20}
	withWindow := sig.Similarity(scaled, w, 0.5)

	disproportionate := liveSendButton()
	// Window scaled 0.5 but element kept full size.
	withoutWindow := sig.Similarity(disproportionate, w, 0.5)

	if !(withWindow > withoutWindow) {
		t.Errorf("element scaling with window should score higher: %v <= %v",
			withWindow, withoutWindow)
	}
}

func TestSimilarity_Deterministic(t *testing.T) {
	sig := sendButton()
	live := liveSendButton()
	w := DefaultWeights()

	first := sig.Similarity(live, w, 1.0)
	for i := 0; i < 10; i++ {
		if got := sig.Similarity(live, w, 1.0); got != first {
			t.Fatalf("Similarity not deterministic: %v != %v", got, first)
		}
	}
}

func TestSimilarity_ThresholdBoundary(t *testing.T) {
	// A typical acceptance threshold must separate a same-role,
	// fully-unrelated element from a plausible match.
	sig := sendButton()
	w := DefaultWeights()
	const accept = 0.60

	good := liveSendButton()
	if got := sig.Similarity(good, w, 1.0); got < accept {
		t.Errorf("plausible match %v below acceptance %v", got, accept)
	}

	unrelated := &core.NodeInfo{
		Role:      "button",
		Labels:    []string{"Delete Everything"},
		Frame:     core.Rect{X: 0, Y: 700, W: 400, H: 200},
		Ancestors: []core.Ancestor{{Role: "sheet"}},
	}
	if got := sig.Similarity(unrelated, w, 1.0); got >= accept {
		t.Errorf("unrelated same-role element %v above acceptance %v", got, accept)
	}
}

func TestAncestorScore_PartialCredit(t *testing.T) {
	rec := []core.Ancestor{{Role: "toolbar", Label: "Actions"}, {Role: "window", Label: "Compose"}}

	full := ancestorScore(rec, rec)
	if full != 1 {
		t.Errorf("identical chains=%v, want 1", full)
	}

	renamed := []core.Ancestor{{Role: "toolbar", Label: "Other"}, {Role: "window", Label: "Compose"}}
	partial := ancestorScore(rec, renamed)
	if !(partial > 0.5 && partial < 1) {
		t.Errorf("renamed container=%v, want partial credit in (0.5,1)", partial)
	}

	wrong := []core.Ancestor{{Role: "sheet"}, {Role: "dialog"}}
	if got := ancestorScore(rec, wrong); got != 0 {
		t.Errorf("disjoint chains=%v, want 0", got)
	}
}
