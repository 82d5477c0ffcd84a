package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillco/fathom/pkg/extract"
)

// recordsFrom builds extraction records with the given raw callees.
func recordsFrom(calls map[string][]string) map[string]extract.FunctionRecord {
	records := make(map[string]extract.FunctionRecord, len(calls))
	for name, callees := range calls {
		raw := make(map[string]struct{}, len(callees))
		for _, c := range callees {
			raw[c] = struct{}{}
		}
		records[name] = extract.FunctionRecord{Name: name, RawCallees: raw}
	}
	return records
}

func TestBuildFiltersUnknownAndSelfEdges(t *testing.T) {
	records := recordsFrom(map[string][]string{
		"a": {"b", "a", "printf", "fetch"},
		"b": {},
	})
	known := extract.NewNameSet(records)

	g := Build(records, known)

	assert.Equal(t, []string{"b"}, g.Callees["a"])
	assert.Empty(t, g.Callees["b"])
	assert.Equal(t, []string{"a"}, g.Callers["b"])
	assert.Equal(t, 1, g.EdgeCount())
}

func TestNeighborsMergesBothDirections(t *testing.T) {
	records := recordsFrom(map[string][]string{
		"a": {"b"},
		"b": {},
		"c": {"a"},
	})
	known := extract.NewNameSet(records)
	g := Build(records, known)

	assert.Equal(t, []string{"b", "c"}, g.Neighbors("a"))
	assert.Equal(t, []string{"a"}, g.Neighbors("b"))
}

func TestComponentsChainGroupsTogether(t *testing.T) {
	// a -> b, b -> c: one group of three despite no direct a-c edge.
	records := recordsFrom(map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {},
	})
	known := extract.NewNameSet(records)
	groups := Components(known, Build(records, known))

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"a", "b", "c"}, groups[0].Members)
}

func TestComponentsDisconnectedPairs(t *testing.T) {
	records := recordsFrom(map[string][]string{
		"a": {"b"},
		"b": {},
		"x": {"y"},
		"y": {},
	})
	known := extract.NewNameSet(records)
	groups := Components(known, Build(records, known))

	require.Len(t, groups, 2)
	// Equal sizes: tie broken by lexicographically smallest member.
	assert.Equal(t, []string{"a", "b"}, groups[0].Members)
	assert.Equal(t, []string{"x", "y"}, groups[1].Members)
}

func TestComponentsSingletons(t *testing.T) {
	records := recordsFrom(map[string][]string{
		"solo":  {},
		"other": {"external"},
	})
	known := extract.NewNameSet(records)
	groups := Components(known, Build(records, known))

	require.Len(t, groups, 2)
	assert.Equal(t, []string{"other"}, groups[0].Members)
	assert.Equal(t, []string{"solo"}, groups[1].Members)
}

func TestComponentsOrderedBySizeDescending(t *testing.T) {
	records := recordsFrom(map[string][]string{
		"z1": {"z2"}, "z2": {"z3"}, "z3": {},
		"a1": {"a2"}, "a2": {},
		"m": {},
	})
	known := extract.NewNameSet(records)
	groups := Components(known, Build(records, known))

	require.Len(t, groups, 3)
	assert.Equal(t, 3, groups[0].Size())
	assert.Equal(t, 2, groups[1].Size())
	assert.Equal(t, 1, groups[2].Size())
}

func TestComponentsPartition(t *testing.T) {
	records := recordsFrom(map[string][]string{
		"a": {"b", "c"},
		"b": {"a"},
		"c": {},
		"d": {"e"},
		"e": {},
		"f": {},
	})
	known := extract.NewNameSet(records)
	groups := Components(known, Build(records, known))

	seen := make(map[string]int)
	for _, g := range groups {
		for _, m := range g.Members {
			seen[m]++
		}
	}
	// Every known function appears in exactly one group.
	assert.Len(t, seen, known.Len())
	for name, count := range seen {
		assert.Equalf(t, 1, count, "%s appears %d times", name, count)
	}
}

func TestComponentsDeterministic(t *testing.T) {
	records := recordsFrom(map[string][]string{
		"n1": {"n2", "n5"}, "n2": {"n3"}, "n3": {},
		"n4": {}, "n5": {}, "n6": {"n4"},
	})
	known := extract.NewNameSet(records)

	first := Components(known, Build(records, known))
	for range 10 {
		again := Components(known, Build(records, known))
		require.Equal(t, first, again)
	}
}

func TestComponentsDirectionIrrelevant(t *testing.T) {
	forward := recordsFrom(map[string][]string{"a": {"b"}, "b": {}})
	backward := recordsFrom(map[string][]string{"a": {}, "b": {"a"}})

	knownF := extract.NewNameSet(forward)
	knownB := extract.NewNameSet(backward)

	gf := Components(knownF, Build(forward, knownF))
	gb := Components(knownB, Build(backward, knownB))
	assert.Equal(t, gf, gb)
}
