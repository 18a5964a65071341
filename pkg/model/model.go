package model

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Model.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Model.AddNode] when a node with
	// the same ID already exists. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Model.AddEdge] when the source
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Model.AddEdge] when the target
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownNode is returned by lookups on a node ID that does not
	// resolve.
	ErrUnknownNode = errors.New("unknown node")

	// ErrMissingBounds is returned by [Model.AbsoluteBounds] when a node on
	// the parent chain has no bounds, meaning layout was skipped for it.
	ErrMissingBounds = errors.New("node has no bounds")
)

// Model is the containment model arena. Each pipeline invocation builds its
// own Model and discards it after serialization, so concurrent invocations
// never share mutable state.
//
// Node insertion order is preserved and is the iteration order of Nodes and
// Children, making every downstream stage deterministic for identical inputs.
// Model is not safe for concurrent use without external synchronization.
type Model struct {
	byID  map[string]*Node
	order []*Node
	edges []Edge
}

// New creates an empty model.
func New() *Model {
	return &Model{byID: make(map[string]*Node)}
}

// AddNode adds a node to the arena. Returns ErrInvalidNodeID for an empty ID
// or ErrDuplicateNodeID if the ID is already taken. The node's ParentID is
// not checked here — reference integrity is the validator's job, so a builder
// defect surfaces as a collected violation rather than a silent skip.
func (m *Model) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := m.byID[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	m.byID[node.ID] = node
	m.order = append(m.order, node)
	return nil
}

// AddEdge appends a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode for missing endpoints.
func (m *Model) AddEdge(e Edge) error {
	if _, ok := m.byID[e.SourceID]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := m.byID[e.TargetID]; !ok {
		return ErrUnknownTargetNode
	}
	m.edges = append(m.edges, e)
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
// The pointer refers to the node in the arena, so bounds written through it
// are visible to later stages.
func (m *Model) Node(id string) (*Node, bool) {
	n, ok := m.byID[id]
	return n, ok
}

// Nodes returns all nodes in construction order. The slice is freshly
// allocated but the pointers refer to the arena nodes.
func (m *Model) Nodes() []*Node {
	return slices.Clone(m.order)
}

// Edges returns a copy of all edges in insertion order.
func (m *Model) Edges() []Edge { return slices.Clone(m.edges) }

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int { return len(m.order) }

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int { return len(m.edges) }

// Children returns the direct children of the given node, derived from
// parent pointers in construction order. Returns nil for a leaf or an
// unknown ID.
func (m *Model) Children(id string) []*Node {
	var out []*Node
	for _, n := range m.order {
		if n.ParentID == id {
			out = append(out, n)
		}
	}
	return out
}

// Roots returns all nodes without a parent, in construction order.
func (m *Model) Roots() []*Node {
	var out []*Node
	for _, n := range m.order {
		if n.ParentID == "" {
			out = append(out, n)
		}
	}
	return out
}

// Parent returns the parent of the given node, or nil for a root.
// The second return is false if id or its ParentID does not resolve.
func (m *Model) Parent(id string) (*Node, bool) {
	n, ok := m.byID[id]
	if !ok {
		return nil, false
	}
	if n.ParentID == "" {
		return nil, true
	}
	p, ok := m.byID[n.ParentID]
	return p, ok
}

// Depth returns the number of ancestors of the given node. Returns 0 for a
// root or an unknown ID. Traversal stops after NodeCount steps so a cyclic
// parent chain in a not-yet-validated model cannot hang the caller.
func (m *Model) Depth(id string) int {
	depth := 0
	n, ok := m.byID[id]
	for ok && n.ParentID != "" && depth <= len(m.order) {
		depth++
		n, ok = m.byID[n.ParentID]
	}
	return depth
}

// AbsoluteBounds derives a node's canvas-absolute rectangle by summing
// relative offsets along the parent chain to the root. Only relative bounds
// are ever stored; this is the single transform between the two frames.
// Returns ErrUnknownNode for an unresolvable ID and ErrMissingBounds if the
// node or any ancestor has not been laid out.
func (m *Model) AbsoluteBounds(id string) (Rect, error) {
	n, ok := m.byID[id]
	if !ok {
		return Rect{}, ErrUnknownNode
	}
	if n.Bounds == nil {
		return Rect{}, ErrMissingBounds
	}
	abs := *n.Bounds
	steps := 0
	for n.ParentID != "" {
		if steps++; steps > len(m.order) {
			return Rect{}, ErrUnknownNode
		}
		p, ok := m.byID[n.ParentID]
		if !ok {
			return Rect{}, ErrUnknownNode
		}
		if p.Bounds == nil {
			return Rect{}, ErrMissingBounds
		}
		abs = abs.Translate(p.Bounds.X, p.Bounds.Y)
		n = p
	}
	return abs, nil
}
