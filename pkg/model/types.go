package model

// EntityType identifies what kind of landing-zone element a node represents.
// It drives both containment rules and diagram styling.
type EntityType string

const (
	EntityManagementGroup EntityType = "managementGroup"
	EntitySubscription    EntityType = "subscription"
	EntityVNet            EntityType = "vnet"
	EntitySubnet          EntityType = "subnet"
	EntityTier            EntityType = "tier"
	EntityService         EntityType = "service"
	EntityPaaS            EntityType = "paas"
)

// Layer is a styling and grouping tag orthogonal to the containment tree.
type Layer string

const (
	LayerNetworking    Layer = "Networking"
	LayerCompute       Layer = "Compute"
	LayerData          Layer = "Data"
	LayerSecurity      Layer = "Security"
	LayerIdentity      Layer = "Identity"
	LayerManagement    Layer = "Management"
	LayerObservability Layer = "Observability"
	LayerConnectivity  Layer = "Connectivity"
)

// EdgeKind classifies a semantic connection between two nodes.
type EdgeKind string

const (
	EdgePeering         EdgeKind = "peering"
	EdgeGovernance      EdgeKind = "governance"
	EdgeSecurity        EdgeKind = "security"
	EdgePrivateEndpoint EdgeKind = "private-endpoint"
	EdgeIngress         EdgeKind = "ingress"
	EdgeEastWest        EdgeKind = "east-west"
	EdgeManagement      EdgeKind = "management"
	EdgeBastion         EdgeKind = "bastion"
	EdgeEgress          EdgeKind = "egress"
)

// LineStyle selects the stroke pattern of a rendered connector.
type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
)

// Node is a vertex in the containment model. ParentID is the single source
// of truth for containment; children are derived via Model.Children.
//
// Bounds is nil until the layout stage runs. Coordinates in Bounds are
// relative to the parent's interior origin — a node's absolute position is
// derived by summing offsets along the parent chain (Model.AbsoluteBounds).
type Node struct {
	ID       string
	Type     EntityType
	Layer    Layer
	Label    string
	ParentID string // empty for roots

	Bounds *Rect // relative to parent; populated by layout only

	// Domain attributes. AddressSpace applies to vnet/subnet nodes;
	// VMCount and DominantSKU apply to tier nodes. DominantSKU is empty
	// unless every aggregated workload shares the same size label.
	AddressSpace string
	VMCount      int
	DominantSKU  string
}

// IsContainer reports whether the node type nests children in the diagram.
func (n *Node) IsContainer() bool {
	switch n.Type {
	case EntityManagementGroup, EntitySubscription, EntityVNet, EntitySubnet:
		return true
	}
	return false
}

// Edge is a directed semantic connection. Multiplicity > 1 means the edge
// stands in for that many bundled near-identical connections and its label
// carries a ×N suffix.
type Edge struct {
	ID           string
	SourceID     string
	TargetID     string
	Kind         EdgeKind
	Style        LineStyle
	Multiplicity int
	Label        string
}
