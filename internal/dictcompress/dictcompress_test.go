package dictcompress

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// terms implements scenario S6 from spec.md §8: a dictionary of six terms
// with shared prefixes, chosen so blocking (size 2) spans multiple blocks
// and front-coding must chain across the whole sorted run.
var terms = []string{"banana", "band", "bandana", "bandit", "cherry", "cat"}

func TestStringCompressor_RoundTrip(t *testing.T) {
	var c StringCompressor
	c.Build(terms)

	for _, term := range terms {
		got, ok := c.Lookup(term)
		assert.True(t, ok)
		assert.Equal(t, term, got)
	}
	_, ok := c.Lookup("missing")
	assert.False(t, ok)
}

func TestStringCompressor_SaveLoad(t *testing.T) {
	var c StringCompressor
	c.Build(terms)

	path := filepath.Join(t.TempDir(), "dict.json")
	require.NoError(t, c.Save(path))

	var loaded StringCompressor
	require.NoError(t, loaded.Load(path))

	got, ok := loaded.Lookup("bandana")
	assert.True(t, ok)
	assert.Equal(t, "bandana", got)
}

func TestBlockingCompressor_RoundTrip(t *testing.T) {
	c := NewBlockingCompressor(2)
	c.Build(terms)

	assert.Len(t, c.Blocks, 3) // 6 terms / block size 2

	for _, term := range terms {
		got, ok := c.Lookup(term)
		assert.True(t, ok, term)
		assert.Equal(t, term, got)
	}
	_, ok := c.Lookup("missing")
	assert.False(t, ok)
}

func TestBlockingCompressor_DefaultsToEight(t *testing.T) {
	c := NewBlockingCompressor(0)
	assert.Equal(t, 8, c.BlockSize)
}

func TestBlockingCompressor_SaveLoad(t *testing.T) {
	c := NewBlockingCompressor(2)
	c.Build(terms)

	path := filepath.Join(t.TempDir(), "dict.json")
	require.NoError(t, c.Save(path))

	loaded := &BlockingCompressor{}
	require.NoError(t, loaded.Load(path))

	got, ok := loaded.Lookup("bandit")
	assert.True(t, ok)
	assert.Equal(t, "bandit", got)
}

func TestFrontCodingCompressor_RoundTrip(t *testing.T) {
	var c FrontCodingCompressor
	c.Build(terms)

	for _, term := range terms {
		got, ok := c.Lookup(term)
		assert.True(t, ok, term)
		assert.Equal(t, term, got)
	}
	_, ok := c.Lookup("missing")
	assert.False(t, ok)
}

func TestFrontCodingCompressor_DecompressAllMatchesSortedInput(t *testing.T) {
	var c FrontCodingCompressor
	c.Build(terms)

	sorted := sortedCopy(terms)
	assert.Equal(t, sorted, c.DecompressAll())
}

func TestFrontCodingCompressor_SaveLoad(t *testing.T) {
	var c FrontCodingCompressor
	c.Build(terms)

	path := filepath.Join(t.TempDir(), "dict.json")
	require.NoError(t, c.Save(path))

	var loaded FrontCodingCompressor
	require.NoError(t, loaded.Load(path))

	got, ok := loaded.Lookup("cherry")
	assert.True(t, ok)
	assert.Equal(t, "cherry", got)
}

func TestAllThreeCompressorsAgreeOnEveryTerm(t *testing.T) {
	var str StringCompressor
	str.Build(terms)
	block := NewBlockingCompressor(2)
	block.Build(terms)
	var front FrontCodingCompressor
	front.Build(terms)

	for _, term := range terms {
		s, ok := str.Lookup(term)
		require.True(t, ok)
		b, ok := block.Lookup(term)
		require.True(t, ok)
		f, ok := front.Lookup(term)
		require.True(t, ok)

		assert.Equal(t, term, s)
		assert.Equal(t, term, b)
		assert.Equal(t, term, f)
	}
}

func TestEmptyDictionary(t *testing.T) {
	var str StringCompressor
	str.Build(nil)
	_, ok := str.Lookup("anything")
	assert.False(t, ok)

	block := NewBlockingCompressor(4)
	block.Build(nil)
	assert.Empty(t, block.Blocks)

	var front FrontCodingCompressor
	front.Build(nil)
	assert.Nil(t, front.DecompressAll())
}
