// Package validate checks the structural invariants of a containment model.
//
// The validator collects every violation in a single pass rather than
// stopping at the first, and a failing model is never laid out or serialized:
// validation failure aborts the pipeline as a unit, so no partial or
// inconsistent diagram can ever be emitted.
package validate

import (
	"strings"

	"github.com/lzmap/lzmap/pkg/errors"
	"github.com/lzmap/lzmap/pkg/model"
)

// Model runs all structural checks, in order: dangling references, single
// parent, acyclicity, and children⇄parent agreement. Returns nil for a valid
// model, or a *errors.ValidationError aggregating every violation found.
func Model(m *model.Model) error {
	v := &errors.ValidationError{}

	children := checkReferences(m, v)
	checkSingleParent(m, children, v)
	checkAcyclic(m, children, v)
	checkAgreement(m, children, v)

	return v.ErrOrNil()
}

// checkReferences verifies that every parent pointer and edge endpoint
// resolves to an existing node. It returns the derived children index used by
// the remaining checks, built only from resolvable parent pointers.
func checkReferences(m *model.Model, v *errors.ValidationError) map[string][]string {
	children := make(map[string][]string)

	for _, n := range m.Nodes() {
		if n.ParentID == "" {
			continue
		}
		if _, ok := m.Node(n.ParentID); !ok {
			v.Add(errors.ErrCodeReference, []string{n.ID, n.ParentID},
				"node %s references missing parent %s", n.ID, n.ParentID)
			continue
		}
		children[n.ParentID] = append(children[n.ParentID], n.ID)
	}

	for _, e := range m.Edges() {
		if _, ok := m.Node(e.SourceID); !ok {
			v.Add(errors.ErrCodeReference, []string{e.ID, e.SourceID},
				"edge %s references missing source %s", e.ID, e.SourceID)
		}
		if _, ok := m.Node(e.TargetID); !ok {
			v.Add(errors.ErrCodeReference, []string{e.ID, e.TargetID},
				"edge %s references missing target %s", e.ID, e.TargetID)
		}
	}

	return children
}

// checkSingleParent verifies that no node is claimed as a child by two
// different parents. With parent pointers as the source of truth this holds
// by construction; the check guards the derivation itself and any future
// representation that stores children explicitly. Parents are walked in
// construction order so repeated validation reports violations stably.
func checkSingleParent(m *model.Model, children map[string][]string, v *errors.ValidationError) {
	parentOf := make(map[string]string)
	for _, p := range m.Nodes() {
		for _, kid := range children[p.ID] {
			if prev, ok := parentOf[kid]; ok && prev != p.ID {
				v.Add(errors.ErrCodeStructural, []string{kid, prev, p.ID},
					"node %s is listed as child of both %s and %s", kid, prev, p.ID)
				continue
			}
			parentOf[kid] = p.ID
		}
	}
}

// checkAcyclic runs a depth-first traversal over the containment relation
// with an explicit recursion stack. On detecting a back-edge it reports the
// full chain of nodes closing the cycle, so a two-cycle names both nodes and
// a longer cycle names the whole ring.
func checkAcyclic(m *model.Model, children map[string][]string, v *errors.ValidationError) {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, m.NodeCount())
	var stack []string

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		stack = append(stack, id)
		for _, child := range children[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				// Back-edge: the cycle is the stack suffix from child to id.
				cycle := cycleChain(stack, child)
				v.Add(errors.ErrCodeStructural, cycle,
					"containment cycle: %s", strings.Join(append(cycle, child), " -> "))
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
	}

	// Roots first for readable chains, then any node a cycle orphaned from
	// all roots.
	for _, n := range m.Roots() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range m.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
}

// cycleChain extracts the stack suffix starting at the node that closes the
// cycle.
func cycleChain(stack []string, closing string) []string {
	for i, id := range stack {
		if id == closing {
			out := make([]string, len(stack)-i)
			copy(out, stack[i:])
			return out
		}
	}
	// closing not on the stack would be a traversal bug; report what we have.
	return append([]string(nil), stack...)
}

// checkAgreement verifies both directions of the parent/child relation: each
// derived child's parent pointer names exactly the node it is listed under.
// Parents are walked in construction order, like checkSingleParent.
func checkAgreement(m *model.Model, children map[string][]string, v *errors.ValidationError) {
	for _, p := range m.Nodes() {
		for _, kid := range children[p.ID] {
			n, ok := m.Node(kid)
			if !ok {
				v.Add(errors.ErrCodeReference, []string{p.ID, kid},
					"children of %s list missing node %s", p.ID, kid)
				continue
			}
			if n.ParentID != p.ID {
				v.Add(errors.ErrCodeStructural, []string{kid, p.ID, n.ParentID},
					"node %s is listed under %s but points at parent %s", kid, p.ID, n.ParentID)
			}
		}
	}
}
