package signature

import (
	"strings"
	"testing"

	"github.com/devicelab-dev/axreplay/pkg/core"
)

// sendButton is the canonical test signature: a "Send" button in a
// 1200x800 compose window, activation point at its frame center.
func sendButton() *ElementSignature {
	return &ElementSignature{
		Role:            "button",
		Labels:          []string{"Send"},
		App:             AppIdentity{Name: "Mail"},
		WindowTitle:     "Compose",
		WindowFrame:     core.Rect{X: 0, Y: 0, W: 1200, H: 800},
		ActivationPoint: core.Point{X: 850, Y: 120},
		ElementFrame:    core.Rect{X: 800, Y: 100, W: 100, H: 40},
		Ancestors:       []core.Ancestor{{Role: "toolbar"}, {Role: "window"}},
		ScreenScale:     2.0,
	}
}

func TestElementSignature_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ElementSignature)
		wantErr string
	}{
		{"valid", func(s *ElementSignature) {}, ""},
		{"missing role", func(s *ElementSignature) { s.Role = "" }, "role"},
		{"empty window", func(s *ElementSignature) { s.WindowFrame = core.Rect{} }, "window frame"},
		{
			"activation point outside element",
			func(s *ElementSignature) { s.ActivationPoint = core.Point{X: 10, Y: 10} },
			"activation point",
		},
		{
			"element outside window",
			func(s *ElementSignature) {
				s.ElementFrame = core.Rect{X: 1150, Y: 100, W: 100, H: 40}
				s.ActivationPoint = core.Point{X: 1200, Y: 120}
			},
			"element frame",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sendButton()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate()=%v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate()=%v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestElementSignature_BestLabel(t *testing.T) {
	tests := []struct {
		name string
		sig  ElementSignature
		want string
	}{
		{
			"first label wins",
			ElementSignature{Labels: []string{"Send", "send-id"}},
			"Send",
		},
		{
			"trivial labels skipped",
			ElementSignature{Labels: []string{"", "0.0", "Send"}},
			"Send",
		},
		{
			"ancestor fallback nearest first",
			ElementSignature{Ancestors: []core.Ancestor{{Role: "toolbar", Label: "Actions"}, {Role: "window", Label: "Compose"}}},
			"Actions",
		},
		{
			"nothing usable",
			ElementSignature{Labels: []string{"0.0"}},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sig.BestLabel(); got != tt.want {
				t.Errorf("BestLabel()=%q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Send  ", "send"},
		{"Send   Message", "send message"},
		{"SEND", "send"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestElementSignature_Describe(t *testing.T) {
	s := sendButton()
	got := s.Describe()
	for _, part := range []string{"button", "Send", "Mail"} {
		if !strings.Contains(got, part) {
			t.Errorf("Describe()=%q, want %q included", got, part)
		}
	}
}
