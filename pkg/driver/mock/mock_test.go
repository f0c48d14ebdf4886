package mock

import (
	"testing"

	"github.com/devicelab-dev/axreplay/pkg/core"
)

func twoButtonWindow() *Window {
	return &Window{
		App: "Demo", Title: "Main",
		Frame: core.Rect{X: 0, Y: 0, W: 400, H: 300},
		Root: &Node{
			ID: "root", Role: "window",
			Frame: core.Rect{X: 0, Y: 0, W: 400, H: 300},
			Children: []*Node{
				{ID: "a", Role: "button", Labels: []string{"A"}, Frame: core.Rect{X: 10, Y: 10, W: 100, H: 30}},
				{ID: "b", Role: "button", Labels: []string{"B"}, Frame: core.Rect{X: 50, Y: 10, W: 100, H: 30}},
			},
		},
	}
}

func TestElementAt_ZOrder(t *testing.T) {
	d := New(twoButtonWindow())

	// Both buttons cover (60, 20); the later sibling sits on top.
	id, ok, err := d.ElementAt(core.Point{X: 60, Y: 20})
	if err != nil || !ok {
		t.Fatalf("ElementAt = (%v, %v, %v)", id, ok, err)
	}
	if id != "b" {
		t.Errorf("ElementAt overlap = %q, want b", id)
	}

	// Only "a" covers (20, 20).
	id, ok, _ = d.ElementAt(core.Point{X: 20, Y: 20})
	if !ok || id != "a" {
		t.Errorf("ElementAt = (%q, %v), want (a, true)", id, ok)
	}

	// Outside every window.
	_, ok, _ = d.ElementAt(core.Point{X: 999, Y: 999})
	if ok {
		t.Error("ElementAt outside every frame reported a hit")
	}
}

func TestAttributes_AncestorChain(t *testing.T) {
	d := New(twoButtonWindow())

	info, err := d.Attributes("a")
	if err != nil {
		t.Fatal(err)
	}
	if info.Role != "button" || len(info.Ancestors) != 1 {
		t.Fatalf("Attributes = %+v", info)
	}
	if info.Ancestors[0].Role != "window" {
		t.Errorf("ancestor = %+v, want window", info.Ancestors[0])
	}

	if _, err := d.Attributes("missing"); err == nil {
		t.Error("Attributes accepted an unknown id")
	}
}

func TestSiblings(t *testing.T) {
	d := New(twoButtonWindow())

	sibs, err := d.Siblings("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(sibs) != 1 || sibs[0] != "b" {
		t.Errorf("Siblings(a) = %v, want [b]", sibs)
	}

	sibs, _ = d.Siblings("root")
	if len(sibs) != 0 {
		t.Errorf("Siblings(root) = %v, want none", sibs)
	}
}

func TestMoveWindow(t *testing.T) {
	d := New(twoButtonWindow())
	d.MoveWindow(0, 100, 50)

	wins, err := d.ListWindows("")
	if err != nil {
		t.Fatal(err)
	}
	if wins[0].Frame.X != 100 || wins[0].Frame.Y != 50 {
		t.Errorf("window frame = %v", wins[0].Frame)
	}

	// The tree moved with the window.
	id, ok, _ := d.ElementAt(core.Point{X: 120, Y: 70})
	if !ok || id != "a" {
		t.Errorf("ElementAt after move = (%q, %v), want (a, true)", id, ok)
	}
	_, ok, _ = d.ElementAt(core.Point{X: 20, Y: 20})
	if ok {
		t.Error("old position still hit after move")
	}
}

func TestListWindows_AppFilter(t *testing.T) {
	other := &Window{App: "Other", Title: "x", Frame: core.Rect{X: 500, Y: 0, W: 100, H: 100},
		Root: &Node{ID: "o", Role: "window", Frame: core.Rect{X: 500, Y: 0, W: 100, H: 100}}}
	d := New(twoButtonWindow(), other)

	wins, _ := d.ListWindows("Demo")
	if len(wins) != 1 || wins[0].App != "Demo" {
		t.Errorf("ListWindows(Demo) = %v", wins)
	}
	wins, _ = d.ListWindows("")
	if len(wins) != 2 {
		t.Errorf("ListWindows(\"\") returned %d windows, want 2", len(wins))
	}
}

func TestCallRecording(t *testing.T) {
	d := New(twoButtonWindow())
	d.IsTrusted()
	_, _, _ = d.ElementAt(core.Point{X: 20, Y: 20})
	_ = d.SyntheticClick(core.Point{X: 20, Y: 20})

	want := []string{"IsTrusted", "ElementAt", "SyntheticClick"}
	if len(d.Calls) != len(want) {
		t.Fatalf("Calls = %v, want %v", d.Calls, want)
	}
	for i := range want {
		if d.Calls[i] != want[i] {
			t.Errorf("Calls[%d] = %q, want %q", i, d.Calls[i], want[i])
		}
	}
	if idx := d.ActionCallIndexes(); len(idx) != 1 || idx[0] != 2 {
		t.Errorf("ActionCallIndexes = %v, want [2]", idx)
	}
}
