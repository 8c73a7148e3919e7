// Package coverage scores how strongly a text fragment expresses themes of a
// knowledge base. All functions are pure reads over the knowledge base and
// are recomputed on every call.
package coverage

import (
	"github.com/rs/zerolog"

	"github.com/kittclouds/thematic/pkg/kb"
	"github.com/kittclouds/thematic/pkg/phrase"
)

// Scorer evaluates coverage metrics against one knowledge base.
type Scorer struct {
	kb  *kb.KnowledgeBase
	log zerolog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithLogger routes scoring diagnostics to l.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scorer) {
		s.log = l.With().Str("component", "coverage").Logger()
	}
}

// NewScorer creates a scorer over base.
func NewScorer(base *kb.KnowledgeBase, opts ...Option) *Scorer {
	s := &Scorer{kb: base, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MotifsCovered reports whether any feature of any named motif occurs in text.
// Unknown motif names are skipped.
func (s *Scorer) MotifsCovered(motifs []string, text string) bool {
	return s.motifsCovered(motifs, phrase.Prepare(text))
}

func (s *Scorer) motifsCovered(motifs []string, prepared string) bool {
	if prepared == "" {
		return false
	}
	for _, name := range motifs {
		m, ok := s.kb.Motif(name)
		if !ok {
			s.log.Debug().Str("motif", name).Msg("unknown motif skipped")
			continue
		}
		for _, feature := range m.Features {
			if phrase.ContainsPhrase(prepared, feature) {
				return true
			}
		}
	}
	return false
}

// ThemeCoverage scores the fraction of themes whose motifs, including those
// inherited from subthemes at any depth, occur in text.
//
// Duplicate names in themes each count toward the score. With countDuplicates
// a repeated hit increments the existing hit's HitCount; otherwise every theme
// appears in Hits once with HitCount 1. An empty theme list scores 0.
func (s *Scorer) ThemeCoverage(themes []string, text string, countDuplicates bool) ScoreResult {
	return s.themeCoverage(themes, phrase.Prepare(text), countDuplicates)
}

func (s *Scorer) themeCoverage(themes []string, prepared string, countDuplicates bool) ScoreResult {
	result := ScoreResult{Hits: []ThemeHit{}}
	if len(themes) == 0 {
		return result
	}

	hitIndex := make(map[string]int)
	hits := 0
	for _, name := range themes {
		th, ok := s.kb.Theme(name)
		if !ok {
			s.log.Debug().Str("theme", name).Msg("unknown theme skipped")
			continue
		}
		if !s.motifsCovered(s.expandMotifs(th), prepared) {
			continue
		}

		if idx, seen := hitIndex[th.Name]; !seen {
			hitIndex[th.Name] = len(result.Hits)
			result.Hits = append(result.Hits, ThemeHit{Name: th.Name, HitCount: 1})
		} else if countDuplicates {
			result.Hits[idx].HitCount++
		}
		hits++
	}

	result.Score = float64(hits) / float64(len(themes))
	return result
}

// expandMotifs collects the motifs of th and of every theme reachable through
// its subthemes, depth-first in authoring order. A subtheme cycle is logged
// and cut at the repeated theme.
func (s *Scorer) expandMotifs(th *kb.Theme) []string {
	var motifs []string
	s.kb.Graph().Walk(th.Name, func(name string) {
		if sub, ok := s.kb.Theme(name); ok {
			motifs = append(motifs, sub.Motifs...)
		}
	}, func(from, to string) {
		s.log.Warn().
			Str("theme", th.Name).
			Str("from", from).
			Str("to", to).
			Msg("subtheme cycle during expansion")
	})
	return motifs
}

// ComponentCoverage scores how thoroughly text covers the components of
// themes: their motifs and their subthemes.
//
// The denominator counts every motif and subtheme reference of every input
// theme, repeats included. The numerator counts each distinct matched motif
// once, plus the ThemeCoverage score of all subthemes scaled by the subtheme
// count. Zero components score 0.
func (s *Scorer) ComponentCoverage(themes []string, text string) float64 {
	return s.componentCoverage(themes, phrase.Prepare(text))
}

func (s *Scorer) componentCoverage(themes []string, prepared string) float64 {
	var motifs, subthemes []string
	for _, name := range themes {
		th, ok := s.kb.Theme(name)
		if !ok {
			s.log.Debug().Str("theme", name).Msg("unknown theme skipped")
			continue
		}
		motifs = append(motifs, th.Motifs...)
		subthemes = append(subthemes, th.Subthemes...)
	}

	components := len(motifs) + len(subthemes)
	if components == 0 {
		return 0
	}

	covered := 0.0
	seen := make(map[string]struct{}, len(motifs))
	for _, m := range motifs {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		if s.motifsCovered([]string{m}, prepared) {
			covered++
		}
	}

	if len(subthemes) > 0 {
		sub := s.themeCoverage(subthemes, prepared, false)
		covered += sub.Score * float64(len(subthemes))
	}

	return covered / float64(components)
}
