// Package model defines the typed containment model of a cloud landing-zone
// topology: management groups, subscriptions, virtual networks, subnets, and
// workload tiers, plus the cross-cutting semantic edges between them.
//
// The model is an arena: every node lives in a per-invocation id→node map,
// created during build and discarded after serialization. Parent pointers are
// the single source of truth for containment; a node's children are derived
// by indexing in construction order, never stored redundantly. Edges are a
// flat list and are not containment relations — any two nodes may be
// connected regardless of tree position.
package model
