// Package render serializes a validated, laid-out containment model into
// diagram interchange documents.
//
// Two sinks exist: a draw.io (mxGraph) XML document with styled nested
// shapes, connectors, and an optional legend; and a flat JSON node/edge list
// for interactive graph views. Both sinks are read-only with respect to the
// model and deterministic: identical models serialize to byte-identical
// documents.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/lzmap/lzmap/pkg/errors"
	"github.com/lzmap/lzmap/pkg/model"
)

// Options configures document rendering.
type Options struct {
	// Legend appends a panel enumerating every style category actually
	// used in the document — not every possible category.
	Legend bool

	// Title names the diagram page.
	Title string
}

// RenderDrawio serializes the model as a draw.io XML document. Every shape
// is emitted at its relative bounds with its parent cell, so nesting in the
// document mirrors the containment tree exactly. It fails with a
// SERIALIZATION error if any node reaches it without bounds — that means
// layout was skipped — and never mutates the model.
func RenderDrawio(m *model.Model, opts Options) ([]byte, error) {
	for _, n := range m.Nodes() {
		if n.Bounds == nil {
			return nil, errors.New(errors.ErrCodeSerialization,
				"node %s has no bounds; layout was skipped", n.ID)
		}
	}

	title := opts.Title
	if title == "" {
		title = "Landing Zone"
	}

	var buf bytes.Buffer
	buf.WriteString(`<mxfile host="lzmap">` + "\n")
	fmt.Fprintf(&buf, `  <diagram id="landing-zone" name="%s">`+"\n", escape(title))
	buf.WriteString(`    <mxGraphModel grid="0" page="1" pageWidth="1600" pageHeight="1200">` + "\n")
	buf.WriteString("      <root>\n")
	buf.WriteString(`        <mxCell id="0" />` + "\n")
	buf.WriteString(`        <mxCell id="1" parent="0" />` + "\n")

	for _, n := range m.Nodes() {
		writeShape(&buf, n)
	}
	for _, e := range m.Edges() {
		if err := checkEndpoints(m, e); err != nil {
			return nil, err
		}
		writeConnector(&buf, e)
	}
	if opts.Legend {
		writeLegend(&buf, m)
	}

	buf.WriteString("      </root>\n")
	buf.WriteString("    </mxGraphModel>\n")
	buf.WriteString("  </diagram>\n")
	buf.WriteString("</mxfile>\n")
	return buf.Bytes(), nil
}

// checkEndpoints rejects edges whose endpoints were never laid out.
func checkEndpoints(m *model.Model, e model.Edge) error {
	for _, id := range []string{e.SourceID, e.TargetID} {
		n, ok := m.Node(id)
		if !ok || n.Bounds == nil {
			return errors.New(errors.ErrCodeSerialization,
				"edge %s endpoint %s has no bounds; layout was skipped", e.ID, id)
		}
	}
	return nil
}

func writeShape(buf *bytes.Buffer, n *model.Node) {
	s := StyleFor(n)
	parent := n.ParentID
	if parent == "" {
		parent = "1"
	}

	var style strings.Builder
	if s.Container {
		style.WriteString("rounded=0;verticalAlign=top;")
	} else {
		style.WriteString("rounded=1;")
	}
	fmt.Fprintf(&style, "fillColor=%s;strokeColor=%s;fontSize=%d;", s.Fill, s.Stroke, s.FontSize)
	if s.Dashed {
		style.WriteString("dashed=1;")
	}

	fmt.Fprintf(buf,
		`        <mxCell id="%s" value="%s" style="%s" vertex="1" parent="%s">`+"\n",
		escape(n.ID), escape(Label(n)), style.String(), escape(parent))
	fmt.Fprintf(buf,
		`          <mxGeometry x="%.1f" y="%.1f" width="%.1f" height="%.1f" as="geometry" />`+"\n",
		n.Bounds.X, n.Bounds.Y, n.Bounds.W, n.Bounds.H)
	buf.WriteString("        </mxCell>\n")
}

func writeConnector(buf *bytes.Buffer, e model.Edge) {
	s := EdgeStyleFor(e)

	var style strings.Builder
	fmt.Fprintf(&style, "edgeStyle=orthogonalEdgeStyle;rounded=1;strokeColor=%s;", s.Stroke)
	if s.Dashed {
		style.WriteString("dashed=1;")
	}

	fmt.Fprintf(buf,
		`        <mxCell id="%s" value="%s" style="%s" edge="1" parent="1" source="%s" target="%s">`+"\n",
		escape(e.ID), escape(e.Label), style.String(), escape(e.SourceID), escape(e.TargetID))
	buf.WriteString(`          <mxGeometry relative="1" as="geometry" />` + "\n")
	buf.WriteString("        </mxCell>\n")
}

// legendOrder fixes the emission order of legend entries so documents stay
// byte-identical across runs.
var legendShapeOrder = []model.EntityType{
	model.EntityManagementGroup,
	model.EntitySubscription,
	model.EntityVNet,
	model.EntitySubnet,
	model.EntityTier,
	model.EntityService,
	model.EntityPaaS,
}

var legendEdgeOrder = []model.EdgeKind{
	model.EdgePeering,
	model.EdgeIngress,
	model.EdgeEastWest,
	model.EdgeEgress,
	model.EdgeGovernance,
	model.EdgeSecurity,
	model.EdgePrivateEndpoint,
	model.EdgeManagement,
	model.EdgeBastion,
}

// writeLegend emits one swatch per style category present in the document.
func writeLegend(buf *bytes.Buffer, m *model.Model) {
	usedShapes := make(map[model.EntityType]bool)
	for _, n := range m.Nodes() {
		usedShapes[n.Type] = true
	}
	usedEdges := make(map[model.EdgeKind]bool)
	for _, e := range m.Edges() {
		usedEdges[e.Kind] = true
	}

	const (
		legendX  = 1280.0
		swatchW  = 40.0
		swatchH  = 20.0
		rowStep  = 30.0
		legendY0 = 40.0
	)

	y := legendY0
	row := 0
	for _, t := range legendShapeOrder {
		if !usedShapes[t] {
			continue
		}
		s := shapeStyles[t]
		id := fmt.Sprintf("legend-shape-%s", t)
		style := fmt.Sprintf("rounded=0;fillColor=%s;strokeColor=%s;", s.Fill, s.Stroke)
		if s.Dashed {
			style += "dashed=1;"
		}
		writeLegendCell(buf, id, string(t), style, legendX, y+float64(row)*rowStep, swatchW, swatchH)
		row++
	}
	for _, k := range legendEdgeOrder {
		if !usedEdges[k] {
			continue
		}
		s := edgeStyles[k]
		id := fmt.Sprintf("legend-edge-%s", k)
		style := fmt.Sprintf("rounded=0;fillColor=none;strokeColor=%s;", s.Stroke)
		if s.Dashed {
			style += "dashed=1;"
		}
		writeLegendCell(buf, id, string(k), style, legendX, y+float64(row)*rowStep, swatchW, swatchH)
		row++
	}
}

func writeLegendCell(buf *bytes.Buffer, id, label, style string, x, y, w, h float64) {
	fmt.Fprintf(buf,
		`        <mxCell id="%s" value="%s" style="%slabelPosition=right;align=left;fontSize=10;" vertex="1" parent="1">`+"\n",
		escape(id), escape(label), style)
	fmt.Fprintf(buf,
		`          <mxGeometry x="%.1f" y="%.1f" width="%.1f" height="%.1f" as="geometry" />`+"\n",
		x, y, w, h)
	buf.WriteString("        </mxCell>\n")
}

// escape XML-escapes attribute text.
func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
