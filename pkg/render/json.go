package render

import (
	"encoding/json"

	"github.com/lzmap/lzmap/pkg/model"
)

// GraphNode is the flat projection of a model node for interactive graph
// views: identity, labeling, and tree position, without geometry.
type GraphNode struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	EntityType string `json:"entityType"`
	Layer      string `json:"layer"`
	ParentID   string `json:"parentId,omitempty"`
}

// GraphEdge is the flat projection of a model edge.
type GraphEdge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	Kind         string `json:"kind"`
	Style        string `json:"style"`
	Multiplicity int    `json:"multiplicity,omitempty"`
	Label        string `json:"label,omitempty"`
}

// Graph is the flat node/edge document consumed by interactive views.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// FromModel projects the model into its flat form, preserving construction
// order for nodes and insertion order for edges.
func FromModel(m *model.Model) Graph {
	g := Graph{
		Nodes: make([]GraphNode, 0, m.NodeCount()),
		Edges: make([]GraphEdge, 0, m.EdgeCount()),
	}
	for _, n := range m.Nodes() {
		g.Nodes = append(g.Nodes, GraphNode{
			ID:         n.ID,
			Label:      n.Label,
			EntityType: string(n.Type),
			Layer:      string(n.Layer),
			ParentID:   n.ParentID,
		})
	}
	for _, e := range m.Edges() {
		ge := GraphEdge{
			ID:     e.ID,
			Source: e.SourceID,
			Target: e.TargetID,
			Kind:   string(e.Kind),
			Style:  string(e.Style),
			Label:  e.Label,
		}
		if e.Multiplicity > 1 {
			ge.Multiplicity = e.Multiplicity
		}
		g.Edges = append(g.Edges, ge)
	}
	return g
}

// RenderGraphJSON serializes the flat node/edge list as indented JSON.
// Unlike the draw.io sink it does not require bounds: interactive views do
// their own layout.
func RenderGraphJSON(m *model.Model) ([]byte, error) {
	return json.MarshalIndent(FromModel(m), "", "  ")
}
