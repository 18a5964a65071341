// Package build constructs the containment model from workload records and a
// declarative preset.
//
// Construction runs in a fixed order — management groups, subscriptions,
// per-subscription networking, workload tiers, shared platform services — and
// node ids derive from role, environment, and tier alone. Running the builder
// twice on identical inputs therefore yields identical ids, which is what
// makes snapshot-style testing and output caching possible.
//
// The builder never creates edges; cross-cutting connections are the
// connection resolver's job.
package build

import (
	"fmt"
	"net/netip"

	"github.com/lzmap/lzmap/pkg/classify"
	"github.com/lzmap/lzmap/pkg/errors"
	"github.com/lzmap/lzmap/pkg/model"
	"github.com/lzmap/lzmap/pkg/preset"
)

// Environment names used in node ids.
const (
	EnvProd    = "prod"
	EnvNonProd = "nonprod"
)

// Well-known node ids. Deterministic by construction: role-derived, never
// sequence numbers.
const (
	IDRootGroup     = "mg-root"
	IDPlatformGroup = "mg-platform"
	IDLandingGroup  = "mg-landingzones"

	IDConnectivitySub = "sub-connectivity"
	IDManagementSub   = "sub-management"

	IDHubVNet          = "vnet-hub"
	IDHubGatewaySubnet = "subnet-hub-gateway"
	IDHubFirewallSub   = "subnet-hub-firewall"
	IDHubBastionSub    = "subnet-hub-bastion"
	IDHubAppGwSub      = "subnet-hub-appgw"

	IDAppGateway = "svc-appgw"
	IDFirewall   = "svc-firewall"
	IDBastion    = "svc-bastion"
	IDPolicy     = "svc-policy"
	IDDefender   = "svc-defender"

	IDManagementTier = "tier-management"

	IDKeyVault      = "paas-keyvault"
	IDObservability = "paas-observability"
)

// SubscriptionID returns the landing-zone subscription id for an environment.
func SubscriptionID(env string) string { return "sub-" + env }

// VNetID returns the spoke VNet id for an environment.
func VNetID(env string) string { return "vnet-" + env }

// SubnetID returns the workload subnet id for an environment and tier.
func SubnetID(env string, tier classify.Tier) string {
	return fmt.Sprintf("subnet-%s-%s", env, tier)
}

// TierID returns the tier summary node id for an environment and tier.
func TierID(env string, tier classify.Tier) string {
	return fmt.Sprintf("tier-%s-%s", env, tier)
}

// spokeTiers are the workload tiers that get a declared subnet in every
// spoke. Management workloads live in the management subscription, not in a
// spoke subnet.
var spokeTiers = []classify.Tier{classify.TierWeb, classify.TierApp, classify.TierData}

// Build constructs the node set for the given records and preset.
// Every declared subnet and tier placeholder is created even when empty, so
// no later stage ever sees a dangling reference because a group happened to
// have no members. The returned model has no edges and no bounds.
func Build(records []classify.Record, p preset.Preset) (*model.Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := model.New()
	b := &builder{m: m, preset: p}

	b.managementGroups()
	b.subscriptions()
	if err := b.hubNetworking(); err != nil {
		return nil, err
	}

	prod, nonprod := partition(records, p.IncludeNonProdEnvironment)
	if err := b.spoke(EnvProd, p.ProdSpokeAddressSpace, prod); err != nil {
		return nil, err
	}
	if p.IncludeNonProdEnvironment {
		if err := b.spoke(EnvNonProd, p.NonProdSpokeAddressSpace, nonprod); err != nil {
			return nil, err
		}
	}

	b.managementPlane(records)
	b.platformServices()

	if b.err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, b.err, "construct model")
	}
	return m, nil
}

// partition splits records between the prod and non-prod landing zones.
// With the non-prod environment excluded, everything lands in prod.
// Otherwise a record's environment tag decides: "prod" or untagged is prod,
// anything else is non-prod.
func partition(records []classify.Record, includeNonProd bool) (prod, nonprod []classify.Record) {
	if !includeNonProd {
		return records, nil
	}
	for _, r := range records {
		if r.EnvironmentTag == "" || r.EnvironmentTag == EnvProd {
			prod = append(prod, r)
		} else {
			nonprod = append(nonprod, r)
		}
	}
	return prod, nonprod
}

// builder accumulates nodes, capturing the first arena error.
// Arena errors here mean a builder bug (duplicate role id), not bad input.
type builder struct {
	m      *model.Model
	preset preset.Preset
	err    error
}

func (b *builder) add(n model.Node) {
	if b.err != nil {
		return
	}
	b.err = b.m.AddNode(n)
}

func (b *builder) managementGroups() {
	b.add(model.Node{
		ID: IDRootGroup, Type: model.EntityManagementGroup,
		Layer: model.LayerManagement, Label: "Root Management Group",
	})
	b.add(model.Node{
		ID: IDPlatformGroup, Type: model.EntityManagementGroup,
		Layer: model.LayerManagement, Label: "Platform", ParentID: IDRootGroup,
	})
	b.add(model.Node{
		ID: IDLandingGroup, Type: model.EntityManagementGroup,
		Layer: model.LayerManagement, Label: "Landing Zones", ParentID: IDRootGroup,
	})
}

func (b *builder) subscriptions() {
	b.add(model.Node{
		ID: IDConnectivitySub, Type: model.EntitySubscription,
		Layer: model.LayerConnectivity, Label: "Connectivity Subscription", ParentID: IDPlatformGroup,
	})
	b.add(model.Node{
		ID: IDManagementSub, Type: model.EntitySubscription,
		Layer: model.LayerManagement, Label: "Management Subscription", ParentID: IDPlatformGroup,
	})
	b.add(model.Node{
		ID: SubscriptionID(EnvProd), Type: model.EntitySubscription,
		Layer: model.LayerCompute, Label: "Production Subscription", ParentID: IDLandingGroup,
	})
	if b.preset.IncludeNonProdEnvironment {
		b.add(model.Node{
			ID: SubscriptionID(EnvNonProd), Type: model.EntitySubscription,
			Layer: model.LayerCompute, Label: "Non-Production Subscription", ParentID: IDLandingGroup,
		})
	}
}

// hubNetworking creates the hub VNet and its preset-gated subnets with the
// services they host. The gateway subnet always exists: a hub without a
// gateway is not a hub.
func (b *builder) hubNetworking() error {
	carver, err := newSubnetCarver(b.preset.HubAddressSpace)
	if err != nil {
		return err
	}

	b.add(model.Node{
		ID: IDHubVNet, Type: model.EntityVNet, Layer: model.LayerNetworking,
		Label: "Hub VNet", ParentID: IDConnectivitySub,
		AddressSpace: b.preset.HubAddressSpace,
	})
	b.add(model.Node{
		ID: IDHubGatewaySubnet, Type: model.EntitySubnet, Layer: model.LayerConnectivity,
		Label: "GatewaySubnet", ParentID: IDHubVNet, AddressSpace: carver.next(),
	})

	if b.preset.IncludeFirewall {
		b.add(model.Node{
			ID: IDHubFirewallSub, Type: model.EntitySubnet, Layer: model.LayerSecurity,
			Label: "AzureFirewallSubnet", ParentID: IDHubVNet, AddressSpace: carver.next(),
		})
		b.add(model.Node{
			ID: IDFirewall, Type: model.EntityService, Layer: model.LayerSecurity,
			Label: "Azure Firewall", ParentID: IDHubFirewallSub,
		})
	}
	if b.preset.IncludeBastion {
		b.add(model.Node{
			ID: IDHubBastionSub, Type: model.EntitySubnet, Layer: model.LayerSecurity,
			Label: "AzureBastionSubnet", ParentID: IDHubVNet, AddressSpace: carver.next(),
		})
		b.add(model.Node{
			ID: IDBastion, Type: model.EntityService, Layer: model.LayerSecurity,
			Label: "Azure Bastion", ParentID: IDHubBastionSub,
		})
	}
	if b.preset.IncludeAppGateway {
		b.add(model.Node{
			ID: IDHubAppGwSub, Type: model.EntitySubnet, Layer: model.LayerNetworking,
			Label: "AppGatewaySubnet", ParentID: IDHubVNet, AddressSpace: carver.next(),
		})
		b.add(model.Node{
			ID: IDAppGateway, Type: model.EntityService, Layer: model.LayerNetworking,
			Label: "Application Gateway", ParentID: IDHubAppGwSub,
		})
	}
	return nil
}

// spoke creates one landing-zone spoke: VNet, the three declared workload
// subnets, and a tier summary node inside each — empty tiers included.
func (b *builder) spoke(env, addressSpace string, records []classify.Record) error {
	carver, err := newSubnetCarver(addressSpace)
	if err != nil {
		return err
	}

	b.add(model.Node{
		ID: VNetID(env), Type: model.EntityVNet, Layer: model.LayerNetworking,
		Label: spokeLabel(env) + " VNet", ParentID: SubscriptionID(env),
		AddressSpace: addressSpace,
	})

	groups, _ := classify.Aggregate(records) // mismatch is reported by the pipeline stage, not here

	for _, tier := range spokeTiers {
		subnetID := SubnetID(env, tier)
		b.add(model.Node{
			ID: subnetID, Type: model.EntitySubnet, Layer: tierLayer(tier),
			Label: tierLabel(tier) + " Subnet", ParentID: VNetID(env),
			AddressSpace: carver.next(),
		})

		node := model.Node{
			ID: TierID(env, tier), Type: model.EntityTier, Layer: tierLayer(tier),
			Label: tierLabel(tier) + " Tier", ParentID: subnetID,
		}
		if g, ok := classify.TierOf(groups, tier); ok {
			node.VMCount = g.VMCount
			node.DominantSKU = g.DominantSKU
		}
		b.add(node)
	}
	return nil
}

// managementPlane creates the management tier summary and the shared
// governance and security services. These exist in every topology.
func (b *builder) managementPlane(records []classify.Record) {
	tier := model.Node{
		ID: IDManagementTier, Type: model.EntityTier, Layer: model.LayerManagement,
		Label: "Management Tier", ParentID: IDManagementSub,
	}
	groups, _ := classify.Aggregate(records)
	if g, ok := classify.TierOf(groups, classify.TierManagement); ok {
		tier.VMCount = g.VMCount
		tier.DominantSKU = g.DominantSKU
	}
	b.add(tier)

	b.add(model.Node{
		ID: IDPolicy, Type: model.EntityService, Layer: model.LayerManagement,
		Label: "Azure Policy", ParentID: IDManagementSub,
	})
	b.add(model.Node{
		ID: IDDefender, Type: model.EntityService, Layer: model.LayerSecurity,
		Label: "Defender for Cloud", ParentID: IDManagementSub,
	})
}

// platformServices creates the preset-gated shared PaaS services.
func (b *builder) platformServices() {
	if b.preset.IncludeKeyVault {
		b.add(model.Node{
			ID: IDKeyVault, Type: model.EntityPaaS, Layer: model.LayerSecurity,
			Label: "Key Vault", ParentID: IDManagementSub,
		})
	}
	if b.preset.IncludeObservability {
		b.add(model.Node{
			ID: IDObservability, Type: model.EntityPaaS, Layer: model.LayerObservability,
			Label: "Log Analytics", ParentID: IDManagementSub,
		})
	}
}

func spokeLabel(env string) string {
	if env == EnvProd {
		return "Production"
	}
	return "Non-Production"
}

func tierLabel(tier classify.Tier) string {
	switch tier {
	case classify.TierWeb:
		return "Web"
	case classify.TierApp:
		return "App"
	case classify.TierData:
		return "Data"
	}
	return "Management"
}

func tierLayer(tier classify.Tier) model.Layer {
	switch tier {
	case classify.TierData:
		return model.LayerData
	case classify.TierManagement:
		return model.LayerManagement
	}
	return model.LayerCompute
}

// subnetCarver hands out consecutive /24 blocks from a VNet address space.
type subnetCarver struct {
	base netip.Prefix
	idx  int
}

func newSubnetCarver(cidr string) (*subnetCarver, error) {
	pfx, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "malformed address space %q", cidr)
	}
	return &subnetCarver{base: pfx}, nil
}

// next returns the following /24 inside the base prefix, offset from the
// base's network address. Address spaces narrower than /24, or ones already
// carved empty, reuse the base prefix itself; real landing zones don't carve
// those.
func (c *subnetCarver) next() string {
	if c.base.Bits() > 24 {
		return c.base.String()
	}
	a := c.base.Masked().Addr().As4()
	n := uint32(a[0])<<24 | uint32(a[1])<<16 | uint32(a[2])<<8 | uint32(a[3])
	n += uint32(c.idx) << 8
	c.idx++
	sub := netip.PrefixFrom(netip.AddrFrom4([4]byte{
		byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n),
	}), 24)
	if !c.base.Contains(sub.Addr()) {
		return c.base.String()
	}
	return sub.String()
}
