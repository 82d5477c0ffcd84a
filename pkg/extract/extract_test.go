package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferOutermost(t *testing.T) {
	outer := FunctionRecord{Name: "f", Source: "def f():\n    def f():\n        pass\n", startByte: 0}
	inner := FunctionRecord{Name: "f", Source: "def f():\n        pass", startByte: 13}

	assert.Equal(t, outer, preferOutermost(inner, outer))
	assert.Equal(t, outer, preferOutermost(outer, inner))

	// Equal spans: earlier declaration wins.
	a := FunctionRecord{Name: "g", Source: "xxxx", startByte: 0}
	b := FunctionRecord{Name: "g", Source: "yyyy", startByte: 50}
	assert.Equal(t, a, preferOutermost(a, b))
	assert.Equal(t, a, preferOutermost(b, a))
}

func TestPreferLongest(t *testing.T) {
	short := FunctionRecord{Name: "f", Source: "short"}
	long := FunctionRecord{Name: "f", Source: "much longer source text"}

	assert.Equal(t, long, preferLongest(short, long))
	assert.Equal(t, long, preferLongest(long, short))

	// Ties keep the existing record.
	first := FunctionRecord{Name: "f", Source: "aaaa", StartLine: 1}
	second := FunctionRecord{Name: "f", Source: "bbbb", StartLine: 9}
	assert.Equal(t, first, preferLongest(first, second))
}

func TestNameSet(t *testing.T) {
	records := map[string]FunctionRecord{
		"zeta":  {Name: "zeta"},
		"alpha": {Name: "alpha"},
		"mid":   {Name: "mid"},
	}

	set := NewNameSet(records)
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, set.Names())
	assert.True(t, set.Contains("mid"))
	assert.False(t, set.Contains("missing"))
}

func TestCalleeNamesSorted(t *testing.T) {
	rec := FunctionRecord{
		RawCallees: map[string]struct{}{"c": {}, "a": {}, "b": {}},
	}
	assert.Equal(t, []string{"a", "b", "c"}, rec.CalleeNames())
}
