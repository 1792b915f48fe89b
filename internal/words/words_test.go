package words

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoadsEmbeddedDefaultList(t *testing.T) {
	b, err := New("")
	require.NoError(t, err)
	assert.Greater(t, b.Len(), 50, "the embedded list should be a real vocabulary")
}

func TestNewLoadsFileSkippingCommentsAndBlanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("# fruit\nApple\n\n  Banana  \ncherry\n"), 0o644))

	b, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Len())
	picked := b.Pick(3, nil)
	assert.ElementsMatch(t, []string{"apple", "banana", "cherry"}, picked)
}

func TestNewRejectsEmptyVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("# nothing here\n\n"), 0o644))
	_, err := New(path)
	assert.Error(t, err)
}

func TestNewMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestPickExcludesUsedWords(t *testing.T) {
	b := &Bank{words: []string{"a", "b", "c", "d", "e"}}
	for i := 0; i < 20; i++ {
		picked := b.Pick(3, []string{"a", "b"})
		require.Len(t, picked, 3)
		assert.NotContains(t, picked, "a")
		assert.NotContains(t, picked, "b")
	}
}

func TestPickHasNoDuplicates(t *testing.T) {
	b := &Bank{words: []string{"a", "b", "c", "d", "e"}}
	for i := 0; i < 20; i++ {
		picked := b.Pick(3, nil)
		seen := map[string]bool{}
		for _, w := range picked {
			assert.False(t, seen[w], "duplicate %q in %v", w, picked)
			seen[w] = true
		}
	}
}

func TestPickFallsBackToRepeatsOnExhaustion(t *testing.T) {
	b := &Bank{words: []string{"a", "b", "c"}}

	// All three used: the picker must keep dealing rather than starve.
	picked := b.Pick(3, []string{"a", "b", "c"})
	assert.Len(t, picked, 3)

	// Two used, one fresh: the fresh word is always in the set.
	picked = b.Pick(3, []string{"a", "b"})
	assert.Len(t, picked, 3)
	assert.Contains(t, picked, "c")
}

func TestPickCapsAtVocabularySize(t *testing.T) {
	b := &Bank{words: []string{"a", "b"}}
	assert.Len(t, b.Pick(5, nil), 2)
}
