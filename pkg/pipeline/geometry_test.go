package pipeline

import (
	"math"
	"testing"

	"github.com/devicelab-dev/axreplay/pkg/core"
)

const epsilon = 1e-9

func almostEqual(a, b core.Point) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon
}

func TestComputeTransform_MoveOnly(t *testing.T) {
	recorded := core.Rect{X: 0, Y: 0, W: 1200, H: 800}
	live := core.Rect{X: 40, Y: 25, W: 1200, H: 800}

	tr := ComputeTransform(recorded, live)
	if tr.ScaleX != 1 || tr.ScaleY != 1 {
		t.Fatalf("scale = (%v, %v), want (1, 1)", tr.ScaleX, tr.ScaleY)
	}

	// A pure move shifts every projected point by exactly the window
	// delta.
	got := tr.Point(core.Point{X: 850, Y: 120})
	want := core.Point{X: 890, Y: 145}
	if !almostEqual(got, want) {
		t.Errorf("Point() = %v, want %v", got, want)
	}
}

func TestComputeTransform_UniformResize(t *testing.T) {
	recorded := core.Rect{X: 0, Y: 0, W: 1200, H: 800}
	live := core.Rect{X: 0, Y: 0, W: 1800, H: 1200} // 1.5x both axes

	tr := ComputeTransform(recorded, live)
	got := tr.Point(core.Point{X: 850, Y: 120})
	want := core.Point{X: 1275, Y: 180}
	if !almostEqual(got, want) {
		t.Errorf("Point() = %v, want %v", got, want)
	}
	if ws := tr.WindowScale(); math.Abs(ws-1.5) > epsilon {
		t.Errorf("WindowScale() = %v, want 1.5", ws)
	}
}

func TestComputeTransform_AsymmetricResize(t *testing.T) {
	recorded := core.Rect{X: 0, Y: 0, W: 1000, H: 800}
	live := core.Rect{X: 100, Y: 50, W: 2000, H: 400}

	tr := ComputeTransform(recorded, live)
	if tr.ScaleX != 2 || tr.ScaleY != 0.5 {
		t.Fatalf("scale = (%v, %v), want (2, 0.5)", tr.ScaleX, tr.ScaleY)
	}

	got := tr.Point(core.Point{X: 500, Y: 400})
	want := core.Point{X: 1100, Y: 250}
	if !almostEqual(got, want) {
		t.Errorf("Point() = %v, want %v", got, want)
	}

	r := tr.Rect(core.Rect{X: 100, Y: 100, W: 200, H: 100})
	wantRect := core.Rect{X: 300, Y: 100, W: 400, H: 50}
	if r != wantRect {
		t.Errorf("Rect() = %v, want %v", r, wantRect)
	}
}

func TestComputeTransform_DegenerateRecordedFrame(t *testing.T) {
	// A zero-dimension recorded frame falls back to scale 1 rather
	// than dividing by zero.
	tr := ComputeTransform(core.Rect{}, core.Rect{X: 10, Y: 20, W: 100, H: 100})
	if tr.ScaleX != 1 || tr.ScaleY != 1 {
		t.Errorf("scale = (%v, %v), want (1, 1)", tr.ScaleX, tr.ScaleY)
	}
	got := tr.Point(core.Point{X: 5, Y: 5})
	if !almostEqual(got, core.Point{X: 15, Y: 25}) {
		t.Errorf("Point() = %v", got)
	}
}
