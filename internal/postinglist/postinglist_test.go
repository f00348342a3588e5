package postinglist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_SortsAndDedupes(t *testing.T) {
	ps := New([]DocID{"b", "a", "b", "c"}, 0)
	assert.Equal(t, []DocID{"a", "b", "c"}, ps.Docs())
}

func TestIntersect_EqualsSetIntersection(t *testing.T) {
	a := New([]DocID{"1", "3", "5", "7", "9", "11", "13", "15"}, 3)
	b := New([]DocID{"5", "7", "15"}, 0)
	got := a.Intersect(b)
	assert.ElementsMatch(t, []DocID{"5", "7", "15"}, got.Docs())
}

func TestIntersect_SkipSizeDoesNotChangeResult(t *testing.T) {
	a := []DocID{"1", "3", "5", "7", "9", "11", "13", "15"}
	b := []DocID{"5", "7", "15"}
	for _, skip := range []int{0, 1, 2, 3, 8, AutoSkipSize} {
		pa := New(a, skip)
		pb := New(b, skip)
		got := pa.Intersect(pb)
		assert.ElementsMatch(t, []DocID{"5", "7", "15"}, got.Docs(), "skipSize=%d", skip)
	}
}

func TestIntersect_Empty(t *testing.T) {
	a := New(nil, 0)
	b := New([]DocID{"1"}, 0)
	assert.Empty(t, a.Intersect(b).Docs())
	assert.Empty(t, b.Intersect(a).Docs())
}

func TestUnion(t *testing.T) {
	a := New([]DocID{"1", "2"}, 0)
	b := New([]DocID{"2", "3"}, 0)
	assert.ElementsMatch(t, []DocID{"1", "2", "3"}, a.Union(b).Docs())
}

func TestDifference(t *testing.T) {
	a := New([]DocID{"1", "2", "3"}, 0)
	b := New([]DocID{"2"}, 0)
	assert.ElementsMatch(t, []DocID{"1", "3"}, a.Difference(b).Docs())
}

func TestDifference_EmptyOther(t *testing.T) {
	a := New([]DocID{"1", "2"}, 0)
	assert.ElementsMatch(t, []DocID{"1", "2"}, a.Difference(New(nil, 0)).Docs())
}

func TestBooleanIdentities(t *testing.T) {
	a := New([]DocID{"1", "2", "3"}, 0)
	assert.ElementsMatch(t, a.Docs(), a.Intersect(a).Docs())
	assert.ElementsMatch(t, a.Docs(), a.Union(a).Docs())
}
