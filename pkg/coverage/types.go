package coverage

// ThemeHit is a theme matched by a text. HitCount grows past 1 only when
// duplicates are counted.
type ThemeHit struct {
	Name     string `json:"name"`
	HitCount int    `json:"hitCount"`
}

// ScoreResult is the outcome of ThemeCoverage. Hits are in the order the
// themes were first matched.
type ScoreResult struct {
	Score float64    `json:"score"`
	Hits  []ThemeHit `json:"hits"`
}

// HitNames returns the names of the matched themes in hit order.
func (r ScoreResult) HitNames() []string {
	names := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		names[i] = h.Name
	}
	return names
}
