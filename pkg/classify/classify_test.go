package classify

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/lzmap/lzmap/pkg/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   Tier
	}{
		{"heavy box is data", Record{Name: "x", Cores: 16, MemoryMiB: 64 * gib}, TierData},
		{"cores alone suffice", Record{Name: "x", Cores: 8, MemoryMiB: 1 * gib}, TierData},
		{"memory alone suffices", Record{Name: "x", Cores: 1, MemoryMiB: 16 * gib}, TierData},
		{"mid box is app", Record{Name: "x", Cores: 4, MemoryMiB: 8 * gib}, TierApp},
		{"small box is web", Record{Name: "x", Cores: 2, MemoryMiB: 4 * gib}, TierWeb},
		{"tiny box is management", Record{Name: "x", Cores: 1, MemoryMiB: 2 * gib}, TierManagement},
		{"sized record ignores name", Record{Name: "dbserver01", Cores: 1, MemoryMiB: 1 * gib}, TierManagement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.record); got != tt.want {
				t.Errorf("Classify(%+v) = %s, want %s", tt.record, got, tt.want)
			}
		})
	}
}

func TestClassifyNameFallback(t *testing.T) {
	// Only records with no sizing data at all use naming heuristics.
	tests := []struct {
		vmName string
		want   Tier
	}{
		{"sqlprod01", TierData},
		{"DB-CLUSTER", TierData},
		{"datawarehouse", TierData},
		{"appserver", TierApp},
		{"api-gw-3", TierApp},
		{"webfront", TierWeb},
		{"www2", TierWeb},
		{"jumpbox", TierManagement},
	}

	for _, tt := range tests {
		t.Run(tt.vmName, func(t *testing.T) {
			if got := Classify(Record{Name: tt.vmName}); got != tt.want {
				t.Errorf("Classify(%s) = %s, want %s", tt.vmName, got, tt.want)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	records := []Record{
		{Name: "db01", Cores: 16, MemoryMiB: 64 * gib, RecommendedSizeLabel: "E8s_v3"},
		{Name: "app01", Cores: 4, MemoryMiB: 8 * gib, RecommendedSizeLabel: "D4s_v3"},
		{Name: "app02", Cores: 4, MemoryMiB: 8 * gib, RecommendedSizeLabel: "D4s_v3"},
		{Name: "util01", Cores: 1, MemoryMiB: 2 * gib, RecommendedSizeLabel: "B1ms"},
	}

	groups, err := Aggregate(records)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	// Ordered by Tiers; the empty web tier is skipped.
	wantTiers := []Tier{TierApp, TierData, TierManagement}
	if len(groups) != len(wantTiers) {
		t.Fatalf("Aggregate() returned %d groups, want %d", len(groups), len(wantTiers))
	}
	for i, g := range groups {
		if g.Tier != wantTiers[i] {
			t.Errorf("groups[%d].Tier = %s, want %s", i, g.Tier, wantTiers[i])
		}
	}

	app, ok := TierOf(groups, TierApp)
	if !ok || app.VMCount != 2 {
		t.Errorf("app group = %+v, %t", app, ok)
	}
	if app.DominantSKU != "D4s_v3" {
		t.Errorf("app DominantSKU = %q, want D4s_v3", app.DominantSKU)
	}
}

func TestAggregateDominantSKUDisagreement(t *testing.T) {
	records := []Record{
		{Name: "app01", Cores: 4, RecommendedSizeLabel: "D4s_v3"},
		{Name: "app02", Cores: 4, RecommendedSizeLabel: "D8s_v3"},
	}
	groups, err := Aggregate(records)
	if err != nil {
		t.Fatal(err)
	}
	g, _ := TierOf(groups, TierApp)
	if g.DominantSKU != "" {
		t.Errorf("DominantSKU = %q, want empty when members disagree", g.DominantSKU)
	}
}

func TestAggregateEmpty(t *testing.T) {
	groups, err := Aggregate(nil)
	if err != nil {
		t.Fatalf("Aggregate(nil) error = %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("Aggregate(nil) = %v, want no groups", groups)
	}
}

func TestAggregateWithBrokenRules(t *testing.T) {
	// A rule set whose Aggregate check rides on Tiers ordering: a tier label
	// outside Tiers silently drops its members, which the post-check catches.
	rules := []Rule{{MinCores: 1, MinMemoryMiB: 1, Tier: Tier("bogus")}}
	records := []Record{{Name: "x", Cores: 4}}

	groups, err := AggregateWith(rules, records)
	if err == nil {
		t.Fatal("AggregateWith() expected mismatch error")
	}
	if !errors.Is(err, errors.ErrCodeClassificationMismatch) {
		t.Errorf("error code = %v, want CLASSIFICATION_MISMATCH", errors.GetCode(err))
	}
	// The grouping is still returned alongside the error: mismatch is
	// diagnostic, not fatal. Here the bogus tier has no slot in Tiers, so
	// the grouping is empty.
	if len(groups) != 0 {
		t.Errorf("groups = %v, want none", groups)
	}
}

func TestSortedEnvironments(t *testing.T) {
	records := []Record{
		{Name: "a", EnvironmentTag: "prod"},
		{Name: "b", EnvironmentTag: "dev"},
		{Name: "c", EnvironmentTag: "prod"},
		{Name: "d"},
	}
	got := SortedEnvironments(records)
	want := []string{"dev", "prod"}
	if len(got) != len(want) {
		t.Fatalf("SortedEnvironments() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SortedEnvironments()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestClassificationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genRecord := gopter.CombineGens(
		gen.AlphaString(),
		gen.IntRange(0, 128),
		gen.IntRange(0, 512*gib),
	).Map(func(vals []interface{}) Record {
		return Record{
			Name:      vals[0].(string),
			Cores:     vals[1].(int),
			MemoryMiB: vals[2].(int),
		}
	})

	properties.Property("every record lands in exactly one known tier", prop.ForAll(
		func(r Record) bool {
			got := Classify(r)
			for _, tier := range Tiers {
				if got == tier {
					return true
				}
			}
			return false
		},
		genRecord,
	))

	properties.Property("group sizes sum to the record count", prop.ForAll(
		func(rs []Record) bool {
			groups, err := Aggregate(rs)
			if err != nil {
				return false
			}
			total := 0
			for _, g := range groups {
				total += g.VMCount
			}
			return total == len(rs)
		},
		gen.SliceOf(genRecord),
	))

	properties.TestingRun(t)
}
