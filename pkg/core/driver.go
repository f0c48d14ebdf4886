package core

import "errors"

// NodeID is an opaque handle to a live UI node, issued by an Inspector.
// Two IDs from the same run compare equal iff they refer to the same
// node; IDs are not stable across runs.
type NodeID string

// NodeIDNone is the zero handle, returned when a query hits nothing.
const NodeIDNone NodeID = ""

// Window describes one live top-level window.
type Window struct {
	Handle NodeID  `json:"-"`
	App    string  `json:"app"`
	Title  string  `json:"title"`
	PID    int     `json:"pid"`
	Frame  Rect    `json:"frame"`
	Scale  float64 `json:"scale"` // display scale factor (1.0, 2.0, ...)
}

// Ancestor is one entry in a node's ancestor chain, ordered from the
// node's parent up to the window root.
type Ancestor struct {
	Role  string `json:"role"`
	Label string `json:"label,omitempty"`
}

// NodeInfo is the attribute snapshot of a live node. Role, Labels and
// Frame are the fixed required subset; anything else the backend
// exposes lands in Extra. Native accessibility attribute sets vary by
// OS version and app, so Extra is an open map rather than a schema.
type NodeInfo struct {
	Role      string            `json:"role"`
	Labels    []string          `json:"labels,omitempty"` // most specific first
	Frame     Rect              `json:"frame"`
	Ancestors []Ancestor        `json:"ancestors,omitempty"`
	Actions   []string          `json:"actions,omitempty"` // native action names, e.g. "press"
	Extra     map[string]string `json:"extra,omitempty"`
}

// BestLabel returns the first non-trivial label candidate, or "".
func (n *NodeInfo) BestLabel() string {
	for _, l := range n.Labels {
		if !TrivialLabel(l) {
			return l
		}
	}
	return ""
}

// HasAction reports whether the node advertises the given native action.
func (n *NodeInfo) HasAction(name string) bool {
	for _, a := range n.Actions {
		if a == name {
			return true
		}
	}
	return false
}

// TrivialLabel reports whether a label carries no matching value.
// Some backends report "0.0" for unlabeled numeric values.
func TrivialLabel(s string) bool {
	return s == "" || s == "0.0"
}

// ActionPress is the native activation action most clickable roles expose.
const ActionPress = "press"

// Inspector provides read-only access to the native UI tree.
// Implementations wrap one introspection backend (e.g. macOS AX).
// Calls may block on an unresponsive UI; callers that cannot tolerate
// that apply their own bounded wait.
type Inspector interface {
	// IsTrusted reports whether the process holds the system
	// permission required to read the UI tree.
	IsTrusted() bool

	// ListWindows enumerates live top-level windows. appName narrows
	// the enumeration to one application when non-empty.
	ListWindows(appName string) ([]Window, error)

	// ElementAt hit-tests the screen point. ok is false when nothing
	// is there (point off screen or over an untracked surface).
	ElementAt(p Point) (id NodeID, ok bool, err error)

	// Attributes reads the node's attribute snapshot.
	Attributes(id NodeID) (*NodeInfo, error)

	// Children returns the node's direct children in z-order.
	Children(id NodeID) ([]NodeID, error)

	// Siblings returns the node's siblings, excluding the node itself.
	Siblings(id NodeID) ([]NodeID, error)
}

// ErrActionUnsupported is returned by Actor.InvokeAction when the node's
// role exposes no native activation action.
var ErrActionUnsupported = errors.New("native action unsupported for node")

// Actor performs actions on the live UI. It is the only collaborator
// with side effects; the pipeline calls it exclusively from its
// dispatch stage, after confirmation has passed.
type Actor interface {
	// InvokeAction triggers the node's native activation action.
	InvokeAction(id NodeID) error

	// SyntheticClick posts a synthetic pointer click at the screen point.
	SyntheticClick(p Point) error
}

// Driver bundles both collaborator roles the way backends implement
// them: one connection serving reads and actions.
type Driver interface {
	Inspector
	Actor
}
