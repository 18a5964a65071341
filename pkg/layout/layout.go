// Package layout computes nested bounds for a validated containment model.
//
// Layout runs in two passes. Top-down, each container places its direct
// children on a fixed grid below a header band reserved for the container's
// own title. Bottom-up, each container's size becomes the bounding box of its
// children plus symmetric padding — growing to fit, never shrinking below a
// fixed minimum footprint. Only parent-relative bounds are ever stored; the
// absolute frame is derived on demand by summing the parent chain, so
// re-laying-out one subtree is independent of its siblings.
//
// After both passes a containment invariant pass re-checks every child
// rectangle against its parent's final interior. A violation is a fatal
// layout bug and is reported, never silently clamped.
package layout

import (
	"math"

	"github.com/lzmap/lzmap/pkg/errors"
	"github.com/lzmap/lzmap/pkg/model"
)

// Config holds the fixed layout metrics. The zero value is not usable; start
// from Default.
type Config struct {
	Padding      float64 // interior margin on all sides of a container
	HeaderHeight float64 // band reserved for the container's title
	GapX, GapY   float64 // spacing between grid cells
	LeafWidth    float64 // footprint of leaf shapes
	LeafHeight   float64
	MinWidth     float64 // minimum container footprint
	MinHeight    float64
	MaxColumns   int     // grid columns per container
	CanvasMargin float64 // offset of root containers from the canvas origin
}

// Default is the metric set used by the CLI and API.
var Default = Config{
	Padding:      16,
	HeaderHeight: 28,
	GapX:         24,
	GapY:         24,
	LeafWidth:    168,
	LeafHeight:   72,
	MinWidth:     200,
	MinHeight:    110,
	MaxColumns:   3,
	CanvasMargin: 40,
}

// PlaceGridRel returns the rectangle of the grid cell at (col, row).
// It is a pure function: identical arguments always yield the identical
// rectangle. Coordinates are relative to the grid origin.
func PlaceGridRel(col, row int, cellW, cellH, gapX, gapY float64) model.Rect {
	return model.Rect{
		X: float64(col) * (cellW + gapX),
		Y: float64(row) * (cellH + gapY),
		W: cellW,
		H: cellH,
	}
}

// Apply lays out the whole model in place, writing relative bounds into every
// node. Layout is the only pipeline stage permitted to write bounds. The
// model must already have passed validation; Apply then re-checks the
// containment invariant on its own output and fails with aggregated
// LAYOUT_INVARIANT violations if any child escapes its parent.
func Apply(m *model.Model, cfg Config) error {
	roots := m.Roots()
	x := cfg.CanvasMargin
	for _, root := range roots {
		size := layoutSubtree(m, root, cfg)
		root.Bounds = &model.Rect{X: x, Y: cfg.CanvasMargin, W: size.W, H: size.H}
		x += size.W + cfg.GapX
	}
	return checkContainment(m, cfg)
}

// layoutSubtree computes the node's size, recursively laying out and placing
// its children first. Children end up with bounds relative to the node's
// interior; the node's own X/Y stay zero for its parent to assign.
func layoutSubtree(m *model.Model, n *model.Node, cfg Config) model.Rect {
	children := m.Children(n.ID)
	if len(children) == 0 {
		w, h := cfg.LeafWidth, cfg.LeafHeight
		if n.IsContainer() {
			// An empty container keeps exactly its minimum footprint.
			w, h = cfg.MinWidth, cfg.MinHeight
		}
		n.Bounds = &model.Rect{W: w, H: h}
		return *n.Bounds
	}

	// Cell dimensions come from the largest child so the grid stays uniform
	// per container.
	var cellW, cellH float64
	sizes := make([]model.Rect, len(children))
	for i, c := range children {
		sizes[i] = layoutSubtree(m, c, cfg)
		cellW = max(cellW, sizes[i].W)
		cellH = max(cellH, sizes[i].H)
	}

	cols := len(children)
	if cols > cfg.MaxColumns {
		cols = cfg.MaxColumns
	}

	// Top-down placement: fixed grid, offset below the header band.
	var bbox model.Rect
	for i, c := range children {
		cell := PlaceGridRel(i%cols, i/cols, cellW, cellH, cfg.GapX, cfg.GapY)
		c.Bounds = &model.Rect{
			X: cfg.Padding + cell.X,
			Y: cfg.HeaderHeight + cfg.Padding + cell.Y,
			W: sizes[i].W,
			H: sizes[i].H,
		}
		if i == 0 {
			bbox = *c.Bounds
		} else {
			bbox = bbox.Union(*c.Bounds)
		}
	}

	// Bottom-up sizing: bounding box of children plus padding and header.
	w := bbox.Right() + cfg.Padding
	h := bbox.Bottom() + cfg.Padding
	w = math.Max(w, cfg.MinWidth)
	h = math.Max(h, cfg.MinHeight)

	n.Bounds = &model.Rect{W: w, H: h}
	return *n.Bounds
}

// checkContainment re-verifies that every non-root child rectangle lies fully
// inside its parent's final interior (bounds minus padding, below the header
// band). Any escape is a layout bug, reported with both node ids.
func checkContainment(m *model.Model, cfg Config) error {
	v := &errors.ValidationError{}

	for _, n := range m.Nodes() {
		if n.ParentID == "" {
			continue
		}
		parent, ok := m.Node(n.ParentID)
		if !ok || parent.Bounds == nil || n.Bounds == nil {
			v.Add(errors.ErrCodeLayoutInvariant, []string{n.ID, n.ParentID},
				"node %s or parent %s missing bounds after layout", n.ID, n.ParentID)
			continue
		}
		interior := model.Rect{
			X: cfg.Padding,
			Y: cfg.HeaderHeight + cfg.Padding,
			W: parent.Bounds.W - 2*cfg.Padding,
			H: parent.Bounds.H - cfg.HeaderHeight - 2*cfg.Padding,
		}
		if !interior.Contains(*n.Bounds) {
			v.Add(errors.ErrCodeLayoutInvariant, []string{n.ID, n.ParentID},
				"child %s (%.0f,%.0f %gx%g) escapes interior of parent %s (%gx%g)",
				n.ID, n.Bounds.X, n.Bounds.Y, n.Bounds.W, n.Bounds.H,
				n.ParentID, parent.Bounds.W, parent.Bounds.H)
		}
	}

	return v.ErrOrNil()
}
