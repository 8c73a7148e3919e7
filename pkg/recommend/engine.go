// Package recommend ranks story nodes as thematic anywhere links for a
// query text.
package recommend

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kittclouds/thematic/pkg/coverage"
	"github.com/kittclouds/thematic/pkg/kb"
	"github.com/kittclouds/thematic/pkg/phrase"
)

// Candidate is a story node considered for recommendation.
type Candidate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// Ranking is a kept candidate with its combined score and the query themes
// it matched.
type Ranking struct {
	NodeID string              `json:"nodeId"`
	Score  float64             `json:"score"`
	Hits   []coverage.ThemeHit `json:"hits"`
}

// Engine recommends nodes against one knowledge base.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	kb     *kb.KnowledgeBase
	scorer *coverage.Scorer
	config *Config
	logger zerolog.Logger
}

// NewEngine creates an engine over base. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(base *kb.KnowledgeBase, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		kb:     base,
		scorer: coverage.NewScorer(base, coverage.WithLogger(logger)),
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return *e.config
}

// Scorer exposes the coverage scorer the engine uses.
func (e *Engine) Scorer() *coverage.Scorer {
	return e.scorer
}

// Recommend ranks candidates against the themes found in query.
//
// Only themes matched by query are considered. Each candidate other than
// excludeID scores the mean of its theme coverage and component coverage over
// those themes; it is kept when it matches at least one of them and scores at
// least threshold. Kept candidates are ordered by ascending score, ties in
// candidate order; TopN turns that into a best-first list.
func (e *Engine) Recommend(query string, candidates []Candidate, threshold float64, excludeID string) []Ranking {
	start := time.Now()
	RecommendRequests.Inc()
	defer func() {
		RecommendDuration.Observe(time.Since(start).Seconds())
	}()

	logger := e.logger.With().Str("exclude", excludeID).Float64("threshold", threshold).Logger()

	// 1. Themes of interest
	found := e.scorer.ThemeCoverage(e.kb.ThemeNames(), query, false)
	interest := found.HitNames()
	QueryThemes.Observe(float64(len(interest)))
	logger.Debug().
		Strs("themes", interest).
		Float64("score", found.Score).
		Msg("themes found in query")

	rankings := []Ranking{}
	if len(interest) == 0 || len(candidates) == 0 {
		return rankings
	}

	// 2. Score candidates
	for _, c := range candidates {
		if c.ID == excludeID {
			continue
		}
		CandidatesScored.Inc()

		text := phrase.Prepare(c.Text)
		t := e.scorer.ThemeCoverage(interest, text, false)
		comp := e.scorer.ComponentCoverage(interest, text)
		score := (t.Score + comp) / 2

		logger.Debug().
			Str("node", c.ID).
			Float64("theme_coverage", t.Score).
			Float64("component_coverage", comp).
			Float64("score", score).
			Int("hits", len(t.Hits)).
			Msg("candidate scored")

		if len(t.Hits) == 0 || score < threshold {
			continue
		}

		// 3. Rank
		CandidatesKept.Inc()
		rankings = insertSorted(rankings, Ranking{NodeID: c.ID, Score: score, Hits: t.Hits}, ascending)
	}

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("kept", len(rankings)).
		Msg("recommend complete")
	return rankings
}

// AnywhereLinks recommends links for the node current using its own text as
// the query, every other node as a candidate, the given threshold (or the
// configured one when threshold is negative) and the configured top-N cap.
// The result is best first.
func (e *Engine) AnywhereLinks(current Candidate, nodes []Candidate, threshold float64) []Ranking {
	if threshold < 0 {
		threshold = e.config.Threshold
	}
	ranked := e.Recommend(current.Text, nodes, threshold, current.ID)
	return TopN(ranked, e.config.TopN)
}

func ascending(a, b Ranking) bool {
	return a.Score < b.Score
}

// insertSorted places r before the first element it comes before, keeping
// earlier insertions ahead of later ones when neither comes first.
func insertSorted(list []Ranking, r Ranking, before func(a, b Ranking) bool) []Ranking {
	i := len(list)
	for j, existing := range list {
		if before(r, existing) {
			i = j
			break
		}
	}
	list = append(list, Ranking{})
	copy(list[i+1:], list[i:])
	list[i] = r
	return list
}

// TopN returns the n highest-scoring rankings, best first. Equal scores keep
// their original relative order. n <= 0 returns all of them, best first.
func TopN(rankings []Ranking, n int) []Ranking {
	out := make([]Ranking, 0, len(rankings))
	for _, r := range rankings {
		out = insertSorted(out, r, func(a, b Ranking) bool { return a.Score > b.Score })
	}
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
