package phrase

import (
	"sort"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// ============================================================================
// Highlighter - every feature of a library in one automaton
// ============================================================================

// Source names a motif and the features that express it.
type Source struct {
	Motif    string
	Features []string
}

// Span is a feature occurrence in prepared text.
type Span struct {
	Start   int      `json:"start"` // Byte offset into the prepared text
	End     int      `json:"end"`
	Feature string   `json:"feature"`
	Motifs  []string `json:"motifs"`
}

// Highlighter finds where a library's features occur in a text.
// A feature is reported at its first occurrence, and only when
// ContainsPhrase would accept it there. Overlapping features are resolved
// leftmost-longest, so a feature found only under a longer match is not
// reported; scoring never relies on it.
type Highlighter struct {
	ac ahocorasick.AhoCorasick

	// Pattern index -> motif names sharing that feature
	patternToMotifs [][]string

	// Normalized feature -> pattern index
	patternIndex map[string]int

	patterns []string
}

// NewHighlighter compiles the features of every source.
func NewHighlighter(sources []Source) *Highlighter {
	h := &Highlighter{
		patternIndex: make(map[string]int),
	}

	for _, src := range sources {
		for _, feature := range src.Features {
			key := strings.ToLower(feature)
			if key == "" {
				continue
			}
			if idx, exists := h.patternIndex[key]; exists {
				h.patternToMotifs[idx] = appendUnique(h.patternToMotifs[idx], src.Motif)
				continue
			}
			h.patternIndex[key] = len(h.patterns)
			h.patterns = append(h.patterns, key)
			h.patternToMotifs = append(h.patternToMotifs, []string{src.Motif})
		}
	}

	if len(h.patterns) > 0 {
		builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
			AsciiCaseInsensitive: true,
			MatchOnlyWholeWords:  false,
			MatchKind:            ahocorasick.LeftMostLongestMatch,
		})
		h.ac = builder.Build(h.patterns)
	}
	return h
}

// Len returns the number of distinct features compiled.
func (h *Highlighter) Len() int {
	return len(h.patterns)
}

// Find prepares text and returns the boundary-valid feature spans in it,
// along with the prepared text the offsets refer to.
func (h *Highlighter) Find(text string) ([]Span, string) {
	prepared := Prepare(text)
	if len(h.patterns) == 0 || prepared == "" {
		return nil, prepared
	}

	matches := h.ac.FindAll(prepared)
	seen := make(map[int]struct{}, len(matches))
	spans := make([]Span, 0, len(matches))
	for _, m := range matches {
		idx := m.Pattern()
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}

		// the first occurrence decides, as in ContainsPhrase
		pattern := h.patterns[idx]
		start := strings.Index(prepared, pattern)
		end := start + len(pattern)
		if !bounded(prepared, start, end) {
			continue
		}
		spans = append(spans, Span{
			Start:   start,
			End:     end,
			Feature: pattern,
			Motifs:  append([]string(nil), h.patternToMotifs[idx]...),
		})
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans, prepared
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
