// Package signature models recorded UI elements and scores live
// candidates against them. A signature is captured once by an external
// recorder and immutable thereafter; this package only reads them.
package signature

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/axreplay/pkg/core"
)

// AppIdentity names the application a signature was recorded against.
type AppIdentity struct {
	Name     string `json:"name"`
	BundleID string `json:"bundleId,omitempty"`
	PID      int    `json:"pid,omitempty"` // capture-time only, never matched against
}

// ElementSignature is everything known about a UI element at capture
// time. ActivationPoint and ElementFrame are window-relative; the
// recorded WindowFrame anchors them back to screen space.
type ElementSignature struct {
	Role            string          `json:"role"`
	Labels          []string        `json:"labels,omitempty"` // most specific first
	App             AppIdentity     `json:"app"`
	WindowTitle     string          `json:"windowTitle,omitempty"`
	WindowFrame     core.Rect       `json:"windowFrame"`
	ActivationPoint core.Point      `json:"activationPoint"`
	ElementFrame    core.Rect       `json:"elementFrame"`
	Ancestors       []core.Ancestor `json:"ancestors,omitempty"` // element to window root
	ScreenScale     float64         `json:"screenScale,omitempty"`

	// Recorder bookkeeping, carried through untouched.
	RecordedAt string `json:"recordedAt,omitempty"`
	ClickIndex int    `json:"clickIndex,omitempty"`
}

// Validate checks the capture-time invariants: the activation point
// lies within the element frame, and the element frame within the
// window frame (window frame is checked in window-relative space).
func (s *ElementSignature) Validate() error {
	if s.Role == "" {
		return fmt.Errorf("signature: role is required")
	}
	if s.WindowFrame.Empty() {
		return fmt.Errorf("signature: window frame is empty")
	}
	if !s.ElementFrame.Contains(s.ActivationPoint) {
		return fmt.Errorf("signature: activation point %v outside element frame %v",
			s.ActivationPoint, s.ElementFrame)
	}
	rel := core.Rect{W: s.WindowFrame.W, H: s.WindowFrame.H}
	if !rel.ContainsRect(s.ElementFrame) {
		return fmt.Errorf("signature: element frame %v outside window frame %v",
			s.ElementFrame, s.WindowFrame)
	}
	return nil
}

// BestLabel resolves the most specific non-trivial label, falling back
// to ancestor labels nearest-first when the element itself has none.
func (s *ElementSignature) BestLabel() string {
	for _, l := range s.Labels {
		if !core.TrivialLabel(l) {
			return l
		}
	}
	for _, a := range s.Ancestors {
		if !core.TrivialLabel(a.Label) {
			return a.Label
		}
	}
	return ""
}

// Describe returns a short human-readable summary for logs and reports.
func (s *ElementSignature) Describe() string {
	label := s.BestLabel()
	if label == "" {
		return fmt.Sprintf("%s in %q", s.Role, s.App.Name)
	}
	return fmt.Sprintf("%s %q in %q", s.Role, label, s.App.Name)
}

// NormalizeText lowercases and collapses whitespace for comparisons.
// App names and window titles vary in case and padding across OS
// versions, not in content.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
