package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFullChangeSkipsResetWhenContentUnchanged(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.pl", 1, "my $x = 1;\n")

	before, ok := s.Get("file:///a.pl")
	require.True(t, ok)

	s.Change("file:///a.pl", 2, []TextEdit{{NewText: "my $x = 1;\n"}})

	after, ok := s.Get("file:///a.pl")
	require.True(t, ok)

	assert.Equal(t, before.ContentHash, after.ContentHash)
	assert.Equal(t, before.Generation, after.Generation, "resending identical content should not bump the generation counter")
	assert.Equal(t, int32(2), after.Version, "version still advances even when content is a no-op")
	assert.Equal(t, before.LineStarts, after.LineStarts)
}

func TestApplyFullChangeBumpsGenerationWhenContentDiffers(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.pl", 1, "my $x = 1;\n")

	before, ok := s.Get("file:///a.pl")
	require.True(t, ok)

	s.Change("file:///a.pl", 2, []TextEdit{{NewText: "my $x = 2;\n"}})

	after, ok := s.Get("file:///a.pl")
	require.True(t, ok)

	assert.NotEqual(t, before.ContentHash, after.ContentHash)
	assert.Greater(t, after.Generation, before.Generation)
	assert.Equal(t, "my $x = 2;\n", after.Text)
}
