// Package classify maps raw workload records onto workload tiers.
//
// Classification is rule-driven: an ordered list of numeric thresholds is
// evaluated top-down and the first matching rule wins, so a record lands in
// exactly one tier. Substring naming heuristics exist only as a documented
// fallback for records that carry no sizing data at all — numeric thresholds
// always take precedence when cores or memory are present.
package classify

import (
	"sort"
	"strings"

	"github.com/lzmap/lzmap/pkg/errors"
)

// Tier is a workload tier label.
type Tier string

const (
	TierWeb        Tier = "web"
	TierApp        Tier = "app"
	TierData       Tier = "db"
	TierManagement Tier = "management"
)

// Tiers lists all tiers in diagram order (front of the stack first).
// Aggregation and downstream construction iterate in this order, which keeps
// node construction deterministic.
var Tiers = []Tier{TierWeb, TierApp, TierData, TierManagement}

// Record is a single workload as ingested by the assessment front end.
type Record struct {
	Name                 string `json:"name"`
	Cores                int    `json:"cores"`
	MemoryMiB            int    `json:"memoryMiB"`
	RecommendedSizeLabel string `json:"recommendedSizeLabel"`
	EnvironmentTag       string `json:"environmentTag"`
}

// Rule is a single numeric threshold. A record matches when it has at least
// MinCores cores or at least MinMemoryMiB memory.
type Rule struct {
	MinCores     int
	MinMemoryMiB int
	Tier         Tier
}

const gib = 1024 // MiB per GiB

// DefaultRules is the ordered rule set, evaluated top-down.
// Heavier machines classify first; anything below the last threshold is
// management-plane overhead.
var DefaultRules = []Rule{
	{MinCores: 8, MinMemoryMiB: 16 * gib, Tier: TierData},
	{MinCores: 4, MinMemoryMiB: 8 * gib, Tier: TierApp},
	{MinCores: 2, MinMemoryMiB: 4 * gib, Tier: TierWeb},
}

// Classify assigns a record to exactly one tier using DefaultRules.
func Classify(r Record) Tier {
	return ClassifyWith(DefaultRules, r)
}

// ClassifyWith assigns a record to exactly one tier using the given ordered
// rules. Records with no sizing data fall back to naming heuristics.
func ClassifyWith(rules []Rule, r Record) Tier {
	if r.Cores == 0 && r.MemoryMiB == 0 {
		return classifyByName(r.Name)
	}
	for _, rule := range rules {
		if r.Cores >= rule.MinCores || r.MemoryMiB >= rule.MinMemoryMiB {
			return rule.Tier
		}
	}
	return TierManagement
}

// classifyByName is the fallback for records without sizing data.
// It recognizes the conventional substrings used in workload inventories.
func classifyByName(name string) Tier {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "db"), strings.Contains(n, "sql"), strings.Contains(n, "data"):
		return TierData
	case strings.Contains(n, "app"), strings.Contains(n, "api"):
		return TierApp
	case strings.Contains(n, "web"), strings.Contains(n, "www"):
		return TierWeb
	}
	return TierManagement
}

// Group is the aggregate summary of all records sharing a tier.
// DominantSKU is set only when every member shares the same recommended size
// label; otherwise it stays empty rather than guessing.
type Group struct {
	Tier        Tier
	VMCount     int
	DominantSKU string
	Records     []Record
}

// Aggregate groups records by tier and emits one summary per non-empty group,
// ordered by Tiers. It post-checks that per-tier sizes sum to the input count;
// a mismatch signals overlapping or missing rules and is returned as a
// CLASSIFICATION_MISMATCH error alongside the groups. The mismatch is
// non-fatal — callers report it and proceed with the grouping as computed.
func Aggregate(records []Record) ([]Group, error) {
	return AggregateWith(DefaultRules, records)
}

// AggregateWith is Aggregate with an explicit rule set.
func AggregateWith(rules []Rule, records []Record) ([]Group, error) {
	byTier := make(map[Tier][]Record)
	for _, r := range records {
		t := ClassifyWith(rules, r)
		byTier[t] = append(byTier[t], r)
	}

	var groups []Group
	total := 0
	for _, t := range Tiers {
		members := byTier[t]
		if len(members) == 0 {
			continue
		}
		total += len(members)
		groups = append(groups, Group{
			Tier:        t,
			VMCount:     len(members),
			DominantSKU: dominantSKU(members),
			Records:     members,
		})
	}

	if total != len(records) {
		return groups, errors.New(errors.ErrCodeClassificationMismatch,
			"per-tier group sizes sum to %d but %d records were classified", total, len(records))
	}
	return groups, nil
}

// dominantSKU returns the shared size label, or empty when members disagree.
func dominantSKU(members []Record) string {
	skus := make(map[string]struct{})
	for _, m := range members {
		skus[m.RecommendedSizeLabel] = struct{}{}
	}
	if len(skus) != 1 {
		return ""
	}
	return members[0].RecommendedSizeLabel
}

// TierOf returns the group for a tier, or false if the tier has no members.
func TierOf(groups []Group, t Tier) (Group, bool) {
	for _, g := range groups {
		if g.Tier == t {
			return g, true
		}
	}
	return Group{}, false
}

// SortedEnvironments returns the distinct environment tags across records in
// lexical order. Used by builders that fan out per environment.
func SortedEnvironments(records []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.EnvironmentTag != "" {
			seen[r.EnvironmentTag] = struct{}{}
		}
	}
	envs := make([]string, 0, len(seen))
	for e := range seen {
		envs = append(envs, e)
	}
	sort.Strings(envs)
	return envs
}
