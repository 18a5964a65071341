package connect

import (
	"strings"
	"testing"

	"github.com/lzmap/lzmap/pkg/build"
	"github.com/lzmap/lzmap/pkg/classify"
	"github.com/lzmap/lzmap/pkg/model"
	"github.com/lzmap/lzmap/pkg/preset"
)

func builtModel(t *testing.T, p preset.Preset) *model.Model {
	t.Helper()
	m, err := build.Build([]classify.Record{
		{Name: "db01", Cores: 16},
		{Name: "app01", Cores: 4},
		{Name: "web01", Cores: 2},
	}, p)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func edgesByKind(m *model.Model) map[model.EdgeKind][]model.Edge {
	out := make(map[model.EdgeKind][]model.Edge)
	for _, e := range m.Edges() {
		out[e.Kind] = append(out[e.Kind], e)
	}
	return out
}

func TestResolveHubSpoke(t *testing.T) {
	p := preset.Default() // nonprod, appgw, firewall, keyvault
	m := builtModel(t, p)

	if err := Resolve(m, p); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	kinds := edgesByKind(m)

	// Two spokes, both peered to the hub, bundled into one ×2 edge.
	peering := kinds[model.EdgePeering]
	if len(peering) != 1 {
		t.Fatalf("peering edges = %d, want 1 bundled", len(peering))
	}
	if peering[0].Multiplicity != 2 {
		t.Errorf("peering multiplicity = %d, want 2", peering[0].Multiplicity)
	}
	if !strings.HasSuffix(peering[0].Label, "×2") {
		t.Errorf("peering label = %q, want ×2 suffix", peering[0].Label)
	}

	// Bastion is off in the default preset: no bastion edges.
	if len(kinds[model.EdgeBastion]) != 0 {
		t.Errorf("bastion edges = %v, want none", kinds[model.EdgeBastion])
	}

	// Observability is off: the only private-endpoint fan-out is key vault,
	// bundled across both spokes.
	pe := kinds[model.EdgePrivateEndpoint]
	if len(pe) != 1 || pe[0].SourceID != build.IDKeyVault {
		t.Errorf("private-endpoint edges = %v, want one bundled from key vault", pe)
	}
}

func TestResolveSingleEnvironmentNoBundling(t *testing.T) {
	p, err := preset.Builtin("minimal")
	if err != nil {
		t.Fatal(err)
	}
	m := builtModel(t, p)

	if err := Resolve(m, p); err != nil {
		t.Fatal(err)
	}

	for _, e := range m.Edges() {
		if e.Multiplicity != 1 {
			t.Errorf("edge %s multiplicity = %d, want 1 in a single-spoke topology", e.ID, e.Multiplicity)
		}
		if strings.Contains(e.Label, "×") {
			t.Errorf("edge %s label %q carries a suffix for N=1", e.ID, e.Label)
		}
	}
}

func TestResolveSkipsAbsentEndpoints(t *testing.T) {
	p, err := preset.Builtin("minimal") // no appgw, firewall, bastion, paas
	if err != nil {
		t.Fatal(err)
	}
	m := builtModel(t, p)

	if err := Resolve(m, p); err != nil {
		t.Fatal(err)
	}

	kinds := edgesByKind(m)
	for _, kind := range []model.EdgeKind{
		model.EdgeIngress, model.EdgeEgress, model.EdgeBastion, model.EdgePrivateEndpoint,
	} {
		if len(kinds[kind]) != 0 {
			t.Errorf("%s edges = %v, want none with the owning features off", kind, kinds[kind])
		}
	}

	// East-west chain survives: tier nodes always exist.
	if len(kinds[model.EdgeEastWest]) != 2 {
		t.Errorf("east-west edges = %d, want 2", len(kinds[model.EdgeEastWest]))
	}
}

func TestResolveDeterministic(t *testing.T) {
	p := preset.Default()

	ids := func() []string {
		m := builtModel(t, p)
		if err := Resolve(m, p); err != nil {
			t.Fatal(err)
		}
		var out []string
		for _, e := range m.Edges() {
			out = append(out, e.ID)
		}
		return out
	}

	a, b := ids(), ids()
	if len(a) != len(b) {
		t.Fatalf("edge counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("edge %d: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestBundle(t *testing.T) {
	edges := []model.Edge{
		{ID: "e1", SourceID: "svc-x", TargetID: "vnet-prod", Kind: model.EdgePrivateEndpoint, Label: "private endpoint", Multiplicity: 1},
		{ID: "e2", SourceID: "svc-x", TargetID: "vnet-nonprod", Kind: model.EdgePrivateEndpoint, Label: "private endpoint", Multiplicity: 1},
		{ID: "e3", SourceID: "svc-x", TargetID: "vnet-dev", Kind: model.EdgePrivateEndpoint, Label: "private endpoint", Multiplicity: 1},
		{ID: "e4", SourceID: "svc-y", TargetID: "vnet-prod", Kind: model.EdgePrivateEndpoint, Label: "private endpoint", Multiplicity: 1},
	}

	out := Bundle(edges)
	if len(out) != 2 {
		t.Fatalf("Bundle() returned %d edges, want 2", len(out))
	}

	// The bundle keeps the first edge of the group.
	if out[0].ID != "e1" || out[0].Multiplicity != 3 {
		t.Errorf("bundled edge = %+v, want e1 with multiplicity 3", out[0])
	}
	if out[0].Label != "private endpoint ×3" {
		t.Errorf("bundled label = %q", out[0].Label)
	}

	// The lone edge from svc-y passes through untouched.
	if out[1].ID != "e4" || out[1].Multiplicity != 1 || out[1].Label != "private endpoint" {
		t.Errorf("single edge = %+v, want untouched e4", out[1])
	}
}

func TestBundleDifferentKindsStaySeparate(t *testing.T) {
	edges := []model.Edge{
		{ID: "e1", SourceID: "svc-x", TargetID: "vnet-prod", Kind: model.EdgePrivateEndpoint, Multiplicity: 1},
		{ID: "e2", SourceID: "svc-x", TargetID: "vnet-prod", Kind: model.EdgeManagement, Multiplicity: 1},
	}
	out := Bundle(edges)
	if len(out) != 2 {
		t.Errorf("Bundle() merged across kinds: %+v", out)
	}
}

func TestStyleFor(t *testing.T) {
	tests := []struct {
		kind model.EdgeKind
		want model.LineStyle
	}{
		{model.EdgePeering, model.LineSolid},
		{model.EdgeEastWest, model.LineSolid},
		{model.EdgeGovernance, model.LineDashed},
		{model.EdgePrivateEndpoint, model.LineDashed},
		{model.EdgeKind("unknown"), model.LineSolid},
	}
	for _, tt := range tests {
		if got := StyleFor(tt.kind); got != tt.want {
			t.Errorf("StyleFor(%s) = %s, want %s", tt.kind, got, tt.want)
		}
	}
}
