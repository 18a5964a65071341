// Package preset defines the declarative topology configuration consumed by
// the model builder.
//
// A Preset is a flat value: a topology name, feature flags for the optional
// platform services, and the named address spaces of the hub and spoke
// networks. Adding a topology variant is a data change — there is one builder,
// parameterized by the preset, rather than one builder per topology.
//
// Presets load from TOML files or come from the built-in registry. Every
// preset passes struct-tag validation plus address-space overlap checks before
// the builder sees it; a bad preset is a CONFIGURATION error, never a partial
// diagram.
package preset

import (
	"fmt"
	"net/netip"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/lzmap/lzmap/pkg/errors"
)

// Preset parameterizes the containment model builder.
// Boolean flags default to false: a flag not set in a preset file means the
// feature is excluded.
type Preset struct {
	// Name identifies the preset in logs and the registry.
	Name string `toml:"name" validate:"required"`

	// Feature flags for optional platform services.
	IncludeNonProdEnvironment bool `toml:"include_non_prod_environment"`
	IncludeAppGateway         bool `toml:"include_app_gateway"`
	IncludeFirewall           bool `toml:"include_firewall"`
	IncludeBastion            bool `toml:"include_bastion"`
	IncludeKeyVault           bool `toml:"include_key_vault"`
	IncludeObservability      bool `toml:"include_observability"`

	// Address spaces, CIDR notation. NonProdSpoke is required only when
	// the non-prod environment is included.
	HubAddressSpace          string `toml:"hub_address_space" validate:"required,cidrv4"`
	ProdSpokeAddressSpace    string `toml:"prod_spoke_address_space" validate:"required,cidrv4"`
	NonProdSpokeAddressSpace string `toml:"non_prod_spoke_address_space" validate:"omitempty,cidrv4"`
}

var structValidator = validator.New()

// Validate checks the preset for malformed or contradictory values.
// All failures are reported as CONFIGURATION errors.
func (p *Preset) Validate() error {
	if err := structValidator.Struct(p); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			f := verrs[0]
			return errors.New(errors.ErrCodeConfiguration,
				"preset %q: field %s failed %q validation", p.Name, f.Field(), f.Tag())
		}
		return errors.Wrap(errors.ErrCodeConfiguration, err, "preset %q", p.Name)
	}

	if p.IncludeNonProdEnvironment && p.NonProdSpokeAddressSpace == "" {
		return errors.New(errors.ErrCodeConfiguration,
			"preset %q: non-prod environment included but non_prod_spoke_address_space is empty", p.Name)
	}

	return p.checkOverlaps()
}

// checkOverlaps rejects presets whose address spaces collide. Overlapping
// hub and spoke ranges cannot be peered and would render a topology that can
// never be deployed.
func (p *Preset) checkOverlaps() error {
	type space struct {
		name string
		cidr string
	}
	spaces := []space{
		{"hub", p.HubAddressSpace},
		{"prod-spoke", p.ProdSpokeAddressSpace},
	}
	if p.NonProdSpokeAddressSpace != "" {
		spaces = append(spaces, space{"non-prod-spoke", p.NonProdSpokeAddressSpace})
	}

	prefixes := make([]netip.Prefix, len(spaces))
	for i, s := range spaces {
		pfx, err := netip.ParsePrefix(s.cidr)
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err,
				"preset %q: malformed %s address space %q", p.Name, s.name, s.cidr)
		}
		prefixes[i] = pfx
	}

	for i := range spaces {
		for j := i + 1; j < len(spaces); j++ {
			if prefixes[i].Overlaps(prefixes[j]) {
				return errors.New(errors.ErrCodeConfiguration,
					"preset %q: %s address space %s overlaps %s address space %s",
					p.Name, spaces[i].name, spaces[i].cidr, spaces[j].name, spaces[j].cidr)
			}
		}
	}
	return nil
}

// Load reads and validates a preset from a TOML file.
func Load(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, errors.Wrap(errors.ErrCodeConfiguration, err, "read preset %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a preset from TOML bytes.
func Parse(data []byte) (Preset, error) {
	var p Preset
	if err := toml.Unmarshal(data, &p); err != nil {
		return Preset{}, errors.Wrap(errors.ErrCodeConfiguration, err, "decode preset")
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// builtins is the registry of named presets shipped with the tool.
// These replace what used to be separate hard-coded builder variants.
var builtins = map[string]Preset{
	"hub-spoke": {
		Name:                      "hub-spoke",
		IncludeNonProdEnvironment: true,
		IncludeAppGateway:         true,
		IncludeFirewall:           true,
		IncludeKeyVault:           true,
		HubAddressSpace:           "10.0.0.0/16",
		ProdSpokeAddressSpace:     "10.1.0.0/16",
		NonProdSpokeAddressSpace:  "10.2.0.0/16",
	},
	"minimal": {
		Name:                  "minimal",
		HubAddressSpace:       "10.0.0.0/16",
		ProdSpokeAddressSpace: "10.1.0.0/16",
	},
	"full-platform": {
		Name:                      "full-platform",
		IncludeNonProdEnvironment: true,
		IncludeAppGateway:         true,
		IncludeFirewall:           true,
		IncludeBastion:            true,
		IncludeKeyVault:           true,
		IncludeObservability:      true,
		HubAddressSpace:           "10.0.0.0/16",
		ProdSpokeAddressSpace:     "10.1.0.0/16",
		NonProdSpokeAddressSpace:  "10.2.0.0/16",
	},
}

// DefaultName is the preset used when none is specified.
const DefaultName = "hub-spoke"

// Default returns the default built-in preset.
func Default() Preset { return builtins[DefaultName] }

// Builtin returns a built-in preset by name.
func Builtin(name string) (Preset, error) {
	p, ok := builtins[name]
	if !ok {
		return Preset{}, errors.New(errors.ErrCodeNotFound,
			"unknown preset %q (available: %v)", name, BuiltinNames())
	}
	return p, nil
}

// Builtins returns all built-in presets ordered by name.
func Builtins() []Preset {
	names := BuiltinNames()
	out := make([]Preset, 0, len(names))
	for _, name := range names {
		out = append(out, builtins[name])
	}
	return out
}

// BuiltinNames returns the registry's preset names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String summarizes the preset for logs.
func (p Preset) String() string {
	return fmt.Sprintf("%s{nonprod=%t gw=%t fw=%t bastion=%t kv=%t obs=%t}",
		p.Name, p.IncludeNonProdEnvironment, p.IncludeAppGateway, p.IncludeFirewall,
		p.IncludeBastion, p.IncludeKeyVault, p.IncludeObservability)
}
