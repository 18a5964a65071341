package render

import (
	"fmt"

	"github.com/lzmap/lzmap/pkg/model"
)

// ShapeStyle describes the fill, stroke, and dash pattern of a shape.
type ShapeStyle struct {
	Fill      string
	Stroke    string
	Dashed    bool
	Container bool
	FontSize  int
}

// shapeStyles is the fixed entityType→style lookup table.
var shapeStyles = map[model.EntityType]ShapeStyle{
	model.EntityManagementGroup: {Fill: "#F5F5F5", Stroke: "#616161", Dashed: true, Container: true, FontSize: 14},
	model.EntitySubscription:    {Fill: "#E6F2FA", Stroke: "#0078D4", Container: true, FontSize: 13},
	model.EntityVNet:            {Fill: "#E8F5E9", Stroke: "#2E7D32", Container: true, FontSize: 12},
	model.EntitySubnet:          {Fill: "#FFF8E1", Stroke: "#F9A825", Dashed: true, Container: true, FontSize: 11},
	model.EntityTier:            {Fill: "#EDE7F6", Stroke: "#5E35B1", FontSize: 11},
	model.EntityService:         {Fill: "#E3F2FD", Stroke: "#1565C0", FontSize: 11},
	model.EntityPaaS:            {Fill: "#FCE4EC", Stroke: "#AD1457", FontSize: 11},
}

// layerAccents overrides the stroke for leaf shapes whose layer carries a
// stronger signal than their entity type (a security service should read as
// security, not as a generic service).
var layerAccents = map[model.Layer]string{
	model.LayerSecurity:      "#C62828",
	model.LayerObservability: "#00838F",
	model.LayerIdentity:      "#6A1B9A",
}

// StyleFor returns the shape style for a node from the fixed lookup table.
// Unknown entity types fall back to the service style.
func StyleFor(n *model.Node) ShapeStyle {
	s, ok := shapeStyles[n.Type]
	if !ok {
		s = shapeStyles[model.EntityService]
	}
	if !s.Container {
		if accent, ok := layerAccents[n.Layer]; ok {
			s.Stroke = accent
		}
	}
	return s
}

// EdgeStyle describes a connector's stroke.
type EdgeStyle struct {
	Stroke string
	Dashed bool
}

// edgeStyles is the fixed edgeKind→style lookup table. Dash patterns follow
// the edge's recorded line style; colors group related kinds.
var edgeStyles = map[model.EdgeKind]EdgeStyle{
	model.EdgePeering:         {Stroke: "#2E7D32"},
	model.EdgeIngress:         {Stroke: "#1565C0"},
	model.EdgeEastWest:        {Stroke: "#455A64"},
	model.EdgeEgress:          {Stroke: "#EF6C00"},
	model.EdgeGovernance:      {Stroke: "#616161", Dashed: true},
	model.EdgeSecurity:        {Stroke: "#C62828", Dashed: true},
	model.EdgePrivateEndpoint: {Stroke: "#AD1457", Dashed: true},
	model.EdgeManagement:      {Stroke: "#5E35B1", Dashed: true},
	model.EdgeBastion:         {Stroke: "#00695C", Dashed: true},
}

// EdgeStyleFor returns the connector style for an edge. The edge's own line
// style wins over the table's default dash pattern.
func EdgeStyleFor(e model.Edge) EdgeStyle {
	s, ok := edgeStyles[e.Kind]
	if !ok {
		s = EdgeStyle{Stroke: "#455A64"}
	}
	s.Dashed = e.Style == model.LineDashed
	return s
}

// maxLabelLen is the cutoff beyond which labels truncate with an ellipsis.
const maxLabelLen = 32

// Label renders the display text for a node: the label, tier summaries for
// tier nodes, and the address space for network shapes, truncated to a fixed
// maximum length.
func Label(n *model.Node) string {
	text := n.Label
	switch {
	case n.Type == model.EntityTier && n.VMCount > 0 && n.DominantSKU != "":
		text = fmt.Sprintf("%s (%d × %s)", n.Label, n.VMCount, n.DominantSKU)
	case n.Type == model.EntityTier && n.VMCount > 0:
		text = fmt.Sprintf("%s (%d VMs)", n.Label, n.VMCount)
	case n.AddressSpace != "":
		text = fmt.Sprintf("%s %s", n.Label, n.AddressSpace)
	}
	return Truncate(text)
}

// Truncate cuts s to maxLabelLen runes, appending an ellipsis if it cut.
func Truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLabelLen {
		return s
	}
	return string(runes[:maxLabelLen]) + "…"
}
