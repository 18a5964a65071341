package validate

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/lzmap/lzmap/pkg/errors"
	"github.com/lzmap/lzmap/pkg/model"
)

func buildModel(t *testing.T, nodes []model.Node, edges []model.Edge) *model.Model {
	t.Helper()
	m := model.New()
	for _, n := range nodes {
		if err := m.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	for _, e := range edges {
		if err := m.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s): %v", e.ID, err)
		}
	}
	return m
}

func violations(t *testing.T, err error) *errors.ValidationError {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	var verr *errors.ValidationError
	if !stderrors.As(err, &verr) {
		t.Fatalf("error type = %T, want *errors.ValidationError", err)
	}
	return verr
}

func TestValidModel(t *testing.T) {
	m := buildModel(t, []model.Node{
		{ID: "root"},
		{ID: "a", ParentID: "root"},
		{ID: "b", ParentID: "root"},
		{ID: "c", ParentID: "a"},
	}, []model.Edge{
		{ID: "e1", SourceID: "b", TargetID: "c"},
	})

	if err := Model(m); err != nil {
		t.Errorf("Model() = %v, want nil", err)
	}
}

func TestDanglingParent(t *testing.T) {
	m := buildModel(t, []model.Node{
		{ID: "root"},
		{ID: "orphan", ParentID: "ghost"},
	}, nil)

	verr := violations(t, Model(m))
	if !verr.HasCode(errors.ErrCodeReference) {
		t.Errorf("violations = %v, want a REFERENCE violation", verr)
	}
	// Both the node and the missing parent are named.
	v := verr.Violations[0]
	if len(v.NodeIDs) != 2 || v.NodeIDs[0] != "orphan" || v.NodeIDs[1] != "ghost" {
		t.Errorf("NodeIDs = %v, want [orphan ghost]", v.NodeIDs)
	}
}

func TestAllViolationsCollected(t *testing.T) {
	// The validator collects every violation in one pass instead of
	// stopping at the first.
	m := buildModel(t, []model.Node{
		{ID: "root"},
		{ID: "a", ParentID: "ghost1"},
		{ID: "b", ParentID: "ghost2"},
	}, nil)

	verr := violations(t, Model(m))
	if len(verr.Violations) != 2 {
		t.Errorf("got %d violations, want 2 (all collected in one pass): %v", len(verr.Violations), verr)
	}
}

func TestViolationOrderStable(t *testing.T) {
	// Re-validating the same broken model must report violations in the same
	// order every time; maps never drive the report order.
	build := func() *model.Model {
		return buildModel(t, []model.Node{
			{ID: "root"},
			{ID: "a", ParentID: "ghost1"},
			{ID: "b", ParentID: "ghost2"},
			{ID: "c", ParentID: "ghost3"},
			{ID: "x", ParentID: "y"},
			{ID: "y", ParentID: "x"},
		}, nil)
	}

	first := violations(t, Model(build()))
	for i := 0; i < 10; i++ {
		verr := violations(t, Model(build()))
		if len(verr.Violations) != len(first.Violations) {
			t.Fatalf("run %d: %d violations, want %d", i, len(verr.Violations), len(first.Violations))
		}
		for j := range verr.Violations {
			if verr.Violations[j].Message != first.Violations[j].Message {
				t.Fatalf("run %d: violation %d = %q, want %q",
					i, j, verr.Violations[j].Message, first.Violations[j].Message)
			}
		}
	}
}

func TestTwoCycle(t *testing.T) {
	m := buildModel(t, []model.Node{
		{ID: "A", ParentID: "B"},
		{ID: "B", ParentID: "A"},
	}, nil)

	verr := violations(t, Model(m))
	if !verr.HasCode(errors.ErrCodeStructural) {
		t.Fatalf("violations = %v, want a STRUCTURAL violation", verr)
	}

	var cycle *errors.Violation
	for i := range verr.Violations {
		if strings.Contains(verr.Violations[i].Message, "cycle") {
			cycle = &verr.Violations[i]
			break
		}
	}
	if cycle == nil {
		t.Fatalf("no cycle violation in %v", verr)
	}
	// The report names both members of the cycle.
	ids := strings.Join(cycle.NodeIDs, ",")
	if !strings.Contains(ids, "A") || !strings.Contains(ids, "B") {
		t.Errorf("cycle NodeIDs = %v, want both A and B", cycle.NodeIDs)
	}
}

func TestLongerCycleNamesWholeRing(t *testing.T) {
	m := buildModel(t, []model.Node{
		{ID: "a", ParentID: "c"},
		{ID: "b", ParentID: "a"},
		{ID: "c", ParentID: "b"},
	}, nil)

	verr := violations(t, Model(m))

	var cycle *errors.Violation
	for i := range verr.Violations {
		if strings.Contains(verr.Violations[i].Message, "cycle") {
			cycle = &verr.Violations[i]
			break
		}
	}
	if cycle == nil {
		t.Fatalf("no cycle violation in %v", verr)
	}
	if len(cycle.NodeIDs) != 3 {
		t.Errorf("cycle names %d nodes %v, want all 3", len(cycle.NodeIDs), cycle.NodeIDs)
	}
}

func TestCycleBesideValidTree(t *testing.T) {
	// A cycle detached from all roots must still be found.
	m := buildModel(t, []model.Node{
		{ID: "root"},
		{ID: "child", ParentID: "root"},
		{ID: "x", ParentID: "y"},
		{ID: "y", ParentID: "x"},
	}, nil)

	verr := violations(t, Model(m))
	if !verr.HasCode(errors.ErrCodeStructural) {
		t.Errorf("violations = %v, want the orphaned cycle reported", verr)
	}
}
