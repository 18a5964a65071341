// Package connect resolves the cross-cutting semantic connections of a
// landing-zone topology and appends them to the model.
//
// Every rule is preset-gated through the nodes it references: an edge whose
// endpoint is absent because its owning feature flag is off is skipped, not
// an error. Near-identical fan-outs from one source are bundled into a single
// edge carrying a multiplicity count and a ×N label suffix. Resolution order
// is fixed, so identical inputs always yield identical edge lists.
package connect

import (
	"fmt"
	"strings"

	"github.com/lzmap/lzmap/pkg/build"
	"github.com/lzmap/lzmap/pkg/classify"
	"github.com/lzmap/lzmap/pkg/model"
	"github.com/lzmap/lzmap/pkg/preset"
)

// styleFor maps each edge kind onto its connector stroke. Containment-like
// and traffic edges draw solid; control-plane relations draw dashed.
var styleFor = map[model.EdgeKind]model.LineStyle{
	model.EdgePeering:         model.LineSolid,
	model.EdgeIngress:         model.LineSolid,
	model.EdgeEastWest:        model.LineSolid,
	model.EdgeEgress:          model.LineSolid,
	model.EdgeGovernance:      model.LineDashed,
	model.EdgeSecurity:        model.LineDashed,
	model.EdgePrivateEndpoint: model.LineDashed,
	model.EdgeManagement:      model.LineDashed,
	model.EdgeBastion:         model.LineDashed,
}

// StyleFor returns the connector stroke for an edge kind, defaulting solid.
func StyleFor(kind model.EdgeKind) model.LineStyle {
	if s, ok := styleFor[kind]; ok {
		return s
	}
	return model.LineSolid
}

// Resolve computes all semantic edges for the model under the given preset,
// bundles fan-outs, and appends the result. It is the only pipeline stage
// that adds edges. Nodes are never modified.
func Resolve(m *model.Model, p preset.Preset) error {
	r := resolver{m: m}

	envs := []string{build.EnvProd}
	if p.IncludeNonProdEnvironment {
		envs = append(envs, build.EnvNonProd)
	}

	// Hub↔spoke VNet peering.
	for _, env := range envs {
		r.connect(build.IDHubVNet, build.VNetID(env), model.EdgePeering, "VNet Peering")
	}

	// Ingress from the edge gateway into each web tier.
	for _, env := range envs {
		r.connect(build.IDAppGateway, build.TierID(env, classify.TierWeb), model.EdgeIngress, "HTTPS")
	}

	// East-west traffic between tiers of the same environment.
	for _, env := range envs {
		r.connect(build.TierID(env, classify.TierWeb), build.TierID(env, classify.TierApp), model.EdgeEastWest, "east-west")
		r.connect(build.TierID(env, classify.TierApp), build.TierID(env, classify.TierData), model.EdgeEastWest, "east-west")
	}

	// Egress from each spoke through the firewall.
	for _, env := range envs {
		r.connect(build.VNetID(env), build.IDFirewall, model.EdgeEgress, "egress")
	}

	// Governance and security from the shared management plane to every
	// landing-zone subscription.
	for _, env := range envs {
		r.connect(build.IDPolicy, build.SubscriptionID(env), model.EdgeGovernance, "policy")
		r.connect(build.IDDefender, build.SubscriptionID(env), model.EdgeSecurity, "security")
	}

	// Bastion management access into each spoke.
	for _, env := range envs {
		r.connect(build.IDBastion, build.VNetID(env), model.EdgeBastion, "bastion")
	}

	// Private endpoints from each shared PaaS service to every spoke VNet.
	for _, paas := range []string{build.IDKeyVault, build.IDObservability} {
		for _, env := range envs {
			r.connect(paas, build.VNetID(env), model.EdgePrivateEndpoint, "private endpoint")
		}
	}

	for _, e := range Bundle(r.edges) {
		if err := m.AddEdge(e); err != nil {
			return err
		}
	}
	return nil
}

type resolver struct {
	m     *model.Model
	edges []model.Edge
}

// connect records an edge if both endpoints exist. Missing endpoints mean the
// owning feature flag is off; the rule simply does not apply.
func (r *resolver) connect(sourceID, targetID string, kind model.EdgeKind, label string) {
	if _, ok := r.m.Node(sourceID); !ok {
		return
	}
	if _, ok := r.m.Node(targetID); !ok {
		return
	}
	r.edges = append(r.edges, model.Edge{
		ID:           fmt.Sprintf("edge-%s-%s-%s", kind, sourceID, targetID),
		SourceID:     sourceID,
		TargetID:     targetID,
		Kind:         kind,
		Style:        StyleFor(kind),
		Multiplicity: 1,
		Label:        label,
	})
}

// bundleKey groups near-identical edges: same source, same kind, same class
// of target.
type bundleKey struct {
	sourceID   string
	targetType model.EntityType
	kind       model.EdgeKind
}

// Bundle collapses every group of more than one edge sharing a bundle key
// into a single edge on the group's first target, carrying the group size as
// multiplicity and a ×N label suffix. Single edges pass through untouched —
// N=1 never gets a suffix. Output order follows the first appearance of each
// group in the input, so bundling is deterministic for identical inputs.
func Bundle(edges []model.Edge) []model.Edge {
	counts := make(map[bundleKey]int)
	keys := make([]bundleKey, len(edges))
	for i, e := range edges {
		k := bundleKey{sourceID: e.SourceID, kind: e.Kind}
		if t, ok := entityTypeFromID(e.TargetID); ok {
			k.targetType = t
		}
		keys[i] = k
		counts[k]++
	}

	seen := make(map[bundleKey]bool)
	out := make([]model.Edge, 0, len(edges))
	for i, e := range edges {
		k := keys[i]
		n := counts[k]
		if n == 1 {
			out = append(out, e)
			continue
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		e.Multiplicity = n
		e.Label = fmt.Sprintf("%s ×%d", e.Label, n)
		out = append(out, e)
	}
	return out
}

// entityTypeFromID resolves a node's entity type from the role prefix of its
// id. Ids are role-derived by construction, which keeps Bundle free of a
// model lookup and usable on raw edge slices in tests.
func entityTypeFromID(id string) (model.EntityType, bool) {
	switch {
	case strings.HasPrefix(id, "mg-"):
		return model.EntityManagementGroup, true
	case strings.HasPrefix(id, "sub-"):
		return model.EntitySubscription, true
	case strings.HasPrefix(id, "vnet-"):
		return model.EntityVNet, true
	case strings.HasPrefix(id, "subnet-"):
		return model.EntitySubnet, true
	case strings.HasPrefix(id, "tier-"):
		return model.EntityTier, true
	case strings.HasPrefix(id, "svc-"):
		return model.EntityService, true
	case strings.HasPrefix(id, "paas-"):
		return model.EntityPaaS, true
	}
	return "", false
}
