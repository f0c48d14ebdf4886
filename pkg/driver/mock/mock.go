// Package mock provides an in-memory driver for testing the pipeline
// without a native introspection backend.
package mock

import (
	"fmt"
	"sort"
	"sync"

	"github.com/devicelab-dev/axreplay/pkg/core"
)

// Node is one element in a scripted UI tree. IDs must be unique within
// a driver.
type Node struct {
	ID       string
	Role     string
	Labels   []string
	Frame    core.Rect // screen coordinates
	Actions  []string
	Children []*Node
}

// Window is a scripted top-level window with its element tree.
type Window struct {
	App   string
	Title string
	PID   int
	Frame core.Rect
	Scale float64
	Root  *Node
}

// Driver is a scriptable implementation of core.Driver. Every call is
// appended to Calls so tests can assert ordering, e.g. that no action
// call precedes a confirmation hit-test.
type Driver struct {
	mu sync.Mutex

	// Configuration
	Trusted bool
	Windows []*Window

	// Failure knobs
	InvokeUnsupported bool  // InvokeAction returns core.ErrActionUnsupported
	InvokeErr         error // InvokeAction fails with this error
	ClickErr          error // SyntheticClick fails with this error

	// Call recording
	Calls   []string     // ordered method names
	Invoked []string     // node IDs passed to InvokeAction
	Clicks  []core.Point // points passed to SyntheticClick

	index   map[core.NodeID]*Node
	parents map[core.NodeID]*Node
	wins    map[core.NodeID]*Window
}

// New creates a trusted driver over the given windows.
func New(windows ...*Window) *Driver {
	d := &Driver{
		Trusted: true,
		Windows: windows,
		index:   make(map[core.NodeID]*Node),
		parents: make(map[core.NodeID]*Node),
		wins:    make(map[core.NodeID]*Window),
	}
	for _, w := range windows {
		if w.Scale == 0 {
			w.Scale = 1
		}
		d.register(w, w.Root, nil)
	}
	return d
}

func (d *Driver) register(w *Window, n, parent *Node) {
	if n == nil {
		return
	}
	id := core.NodeID(n.ID)
	d.index[id] = n
	d.parents[id] = parent
	d.wins[id] = w
	for _, ch := range n.Children {
		d.register(w, ch, n)
	}
}

func (d *Driver) record(call string) {
	d.mu.Lock()
	d.Calls = append(d.Calls, call)
	d.mu.Unlock()
}

// IsTrusted implements core.Inspector.
func (d *Driver) IsTrusted() bool {
	d.record("IsTrusted")
	return d.Trusted
}

// ListWindows implements core.Inspector.
func (d *Driver) ListWindows(appName string) ([]core.Window, error) {
	d.record("ListWindows")
	var out []core.Window
	for _, w := range d.Windows {
		if appName != "" && w.App != appName {
			continue
		}
		handle := core.NodeIDNone
		if w.Root != nil {
			handle = core.NodeID(w.Root.ID)
		}
		out = append(out, core.Window{
			Handle: handle,
			App:    w.App,
			Title:  w.Title,
			PID:    w.PID,
			Frame:  w.Frame,
			Scale:  w.Scale,
		})
	}
	return out, nil
}

// ElementAt implements core.Inspector: the deepest node containing the
// point wins, with later siblings treated as higher in z-order.
func (d *Driver) ElementAt(p core.Point) (core.NodeID, bool, error) {
	d.record("ElementAt")
	var best *Node
	bestDepth := -1
	for _, w := range d.Windows {
		if n, depth := deepestAt(w.Root, p, 0); n != nil && depth > bestDepth {
			best, bestDepth = n, depth
		}
	}
	if best == nil {
		return core.NodeIDNone, false, nil
	}
	return core.NodeID(best.ID), true, nil
}

func deepestAt(n *Node, p core.Point, depth int) (*Node, int) {
	if n == nil || !n.Frame.Contains(p) {
		return nil, -1
	}
	best, bestDepth := n, depth
	// Later children sit on top of earlier ones.
	for i := len(n.Children) - 1; i >= 0; i-- {
		if hit, hd := deepestAt(n.Children[i], p, depth+1); hit != nil {
			if hd > bestDepth {
				best, bestDepth = hit, hd
			}
			break
		}
	}
	return best, bestDepth
}

// Attributes implements core.Inspector.
func (d *Driver) Attributes(id core.NodeID) (*core.NodeInfo, error) {
	d.record("Attributes")
	n, ok := d.index[id]
	if !ok {
		return nil, fmt.Errorf("mock: unknown node %q", id)
	}
	return &core.NodeInfo{
		Role:      n.Role,
		Labels:    append([]string(nil), n.Labels...),
		Frame:     n.Frame,
		Ancestors: d.ancestors(id),
		Actions:   append([]string(nil), n.Actions...),
	}, nil
}

func (d *Driver) ancestors(id core.NodeID) []core.Ancestor {
	var chain []core.Ancestor
	for p := d.parents[id]; p != nil; p = d.parents[core.NodeID(p.ID)] {
		label := ""
		if len(p.Labels) > 0 {
			label = p.Labels[0]
		}
		chain = append(chain, core.Ancestor{Role: p.Role, Label: label})
	}
	return chain
}

// Children implements core.Inspector.
func (d *Driver) Children(id core.NodeID) ([]core.NodeID, error) {
	d.record("Children")
	n, ok := d.index[id]
	if !ok {
		return nil, fmt.Errorf("mock: unknown node %q", id)
	}
	out := make([]core.NodeID, len(n.Children))
	for i, ch := range n.Children {
		out[i] = core.NodeID(ch.ID)
	}
	return out, nil
}

// Siblings implements core.Inspector.
func (d *Driver) Siblings(id core.NodeID) ([]core.NodeID, error) {
	d.record("Siblings")
	p := d.parents[id]
	if p == nil {
		return nil, nil
	}
	var out []core.NodeID
	for _, ch := range p.Children {
		if ch.ID != string(id) {
			out = append(out, core.NodeID(ch.ID))
		}
	}
	return out, nil
}

// InvokeAction implements core.Actor.
func (d *Driver) InvokeAction(id core.NodeID) error {
	d.record("InvokeAction")
	n, ok := d.index[id]
	if !ok {
		return fmt.Errorf("mock: unknown node %q", id)
	}
	if d.InvokeUnsupported || !hasPress(n) {
		return core.ErrActionUnsupported
	}
	if d.InvokeErr != nil {
		return d.InvokeErr
	}
	d.mu.Lock()
	d.Invoked = append(d.Invoked, n.ID)
	d.mu.Unlock()
	return nil
}

// SyntheticClick implements core.Actor.
func (d *Driver) SyntheticClick(p core.Point) error {
	d.record("SyntheticClick")
	if d.ClickErr != nil {
		return d.ClickErr
	}
	d.mu.Lock()
	d.Clicks = append(d.Clicks, p)
	d.mu.Unlock()
	return nil
}

func hasPress(n *Node) bool {
	for _, a := range n.Actions {
		if a == core.ActionPress {
			return true
		}
	}
	return false
}

// ActionCallIndexes returns the positions of Actor calls in the call
// log, for asserting ordering against confirmation calls.
func (d *Driver) ActionCallIndexes() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []int
	for i, c := range d.Calls {
		if c == "InvokeAction" || c == "SyntheticClick" {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// MoveWindow shifts a window and its whole tree by dx, dy. Used by
// tests to simulate drift between runs.
func (d *Driver) MoveWindow(idx int, dx, dy float64) {
	w := d.Windows[idx]
	w.Frame.X += dx
	w.Frame.Y += dy
	shift(w.Root, dx, dy)
}

func shift(n *Node, dx, dy float64) {
	if n == nil {
		return
	}
	n.Frame.X += dx
	n.Frame.Y += dy
	for _, ch := range n.Children {
		shift(ch, dx, dy)
	}
}
