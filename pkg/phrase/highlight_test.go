package phrase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlighterFind(t *testing.T) {
	h := NewHighlighter([]Source{
		{Motif: "weapon", Features: []string{"knife", "gun"}},
		{Motif: "kitchen", Features: []string{"Knife", "stove"}},
		{Motif: "help", Features: []string{"rescue", ""}},
	})
	require.Equal(t, 4, h.Len(), "duplicate and empty features should collapse")

	spans, prepared := h.Find("He pulled out a KNIFE\nnear the stove.")
	assert.Equal(t, "he pulled out a knife near the stove.", prepared)
	require.Len(t, spans, 2)

	assert.Equal(t, "knife", spans[0].Feature)
	assert.Equal(t, []string{"weapon", "kitchen"}, spans[0].Motifs)
	assert.Equal(t, "knife", prepared[spans[0].Start:spans[0].End])

	assert.Equal(t, "stove", spans[1].Feature)
	assert.Equal(t, []string{"kitchen"}, spans[1].Motifs)
}

func TestHighlighterRejectsEmbeddedMatches(t *testing.T) {
	h := NewHighlighter([]Source{{Motif: "greeting", Features: []string{"hi"}}})

	spans, _ := h.Find("architecture")
	assert.Empty(t, spans)

	spans, _ = h.Find("arc hi tecture")
	require.Len(t, spans, 1)
	assert.Equal(t, 4, spans[0].Start)
	assert.Equal(t, 6, spans[0].End)
}

func TestHighlighterEmpty(t *testing.T) {
	h := NewHighlighter(nil)
	assert.Equal(t, 0, h.Len())

	spans, prepared := h.Find("  Anything  ")
	assert.Nil(t, spans)
	assert.Equal(t, "anything", prepared)
}

func TestHighlighterAgreesWithContainsPhrase(t *testing.T) {
	h := NewHighlighter([]Source{
		{Motif: "greeting", Features: []string{"hi"}},
		{Motif: "weapon", Features: []string{"knife "}},
	})

	texts := []string{
		"chip and hi",
		"hi and chip",
		"a knife here",
		"a knife  here",
		"arc hi tecture, hi",
	}
	for _, text := range texts {
		spans, prepared := h.Find(text)
		found := map[string]bool{}
		for _, sp := range spans {
			found[sp.Feature] = true
			assert.Equal(t, sp.Feature, prepared[sp.Start:sp.End])
		}
		for _, feature := range []string{"hi", "knife "} {
			assert.Equal(t, ContainsPhrase(prepared, feature), found[feature], "%q in %q", feature, text)
		}
	}

	spans, _ := h.Find("chip and hi")
	assert.Empty(t, spans, "the embedded first occurrence decides")
}
