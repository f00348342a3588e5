package indexfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/invidx/internal/postinglist"
)

// s1IndexFile writes the index file implied by spec.md scenario S1.
func s1IndexFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "final.idx")
	content := "apple\tD1\nbanana\tD1,D2\ncherry\tD2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_NoSkips(t *testing.T) {
	path := s1IndexFile(t)
	idx, err := Load(path, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"apple", "banana", "cherry"}, idx.Terms())

	ps, ok := idx.Lookup("banana")
	require.True(t, ok)
	assert.Equal(t, []postinglist.DocID{"D1", "D2"}, ps.Docs())

	_, ok = idx.Lookup("durian")
	assert.False(t, ok)
}

func TestLoad_WithSkipsWritesSidecar(t *testing.T) {
	path := s1IndexFile(t)
	_, err := Load(path, 1)
	require.NoError(t, err)

	_, statErr := os.Stat(path + ".skips")
	assert.NoError(t, statErr)
}

func TestLoad_SidecarIsReusedOnSecondLoad(t *testing.T) {
	path := s1IndexFile(t)
	_, err := Load(path, 1)
	require.NoError(t, err)

	// Corrupt the primary index file; if the sidecar is genuinely reused,
	// the second Load must still succeed and reflect the original content.
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	idx, err := Load(path, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana", "cherry"}, idx.Terms())
}

func TestLoad_DefensivelyResortsUnsortedPostings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "final.idx")
	// Postings out of order on disk; Load must not assume sortedness.
	require.NoError(t, os.WriteFile(path, []byte("apple\tD2,D1\n"), 0o644))

	idx, err := Load(path, 0)
	require.NoError(t, err)

	ps, ok := idx.Lookup("apple")
	require.True(t, ok)
	assert.Equal(t, []postinglist.DocID{"D1", "D2"}, ps.Docs())
}

func TestAllPostingSets_CoversEveryTerm(t *testing.T) {
	path := s1IndexFile(t)
	idx, err := Load(path, 0)
	require.NoError(t, err)

	assert.Len(t, idx.AllPostingSets(), 3)
	assert.Equal(t, 3, idx.Len())
}
