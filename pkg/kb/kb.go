// Package kb holds the theme/motif knowledge base: canonical naming, the
// two-pass assembly from raw definitions and read-only lookups for scoring.
package kb

import (
	"github.com/rs/zerolog"

	"github.com/kittclouds/thematic/pkg/graph"
	"github.com/kittclouds/thematic/pkg/phrase"
)

// KnowledgeBase owns the motif and theme registries of one story.
// It is immutable once Build returns and safe for concurrent readers.
type KnowledgeBase struct {
	motifs     map[string]*Motif
	motifOrder []string

	themes     map[string]*Theme
	themeOrder []string

	graph *graph.ThemeGraph

	collisions []Collision
	unresolved []Unresolved
	cycles     [][]string

	log zerolog.Logger
}

// Option configures Build.
type Option func(*KnowledgeBase)

// WithLogger routes build diagnostics to l.
func WithLogger(l zerolog.Logger) Option {
	return func(k *KnowledgeBase) {
		k.log = l.With().Str("component", "kb").Logger()
	}
}

// Build assembles a knowledge base from raw definitions.
//
// Motifs are registered first. Themes are then built in two passes: pass 1
// registers every theme with its motifs resolved and its subtheme identifiers
// recorded as authored; pass 2 resolves those identifiers against the fully
// populated theme set. References that resolve to nothing are logged and
// dropped. Name collisions keep the later definition and are recorded.
func Build(defs Definitions, opts ...Option) *KnowledgeBase {
	k := &KnowledgeBase{
		motifs: make(map[string]*Motif),
		themes: make(map[string]*Theme),
		graph:  graph.NewGraph(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(k)
	}

	k.registerMotifs(defs.Motifs)
	k.registerThemes(defs.Themes)
	k.resolveSubthemes()

	k.cycles = k.graph.Cycles()
	for _, c := range k.cycles {
		k.log.Warn().Strs("path", c).Msg("subtheme cycle detected, expansion will stop at the repeated theme")
	}

	k.log.Debug().
		Int("motifs", len(k.motifs)).
		Int("themes", k.graph.NodeCount()).
		Int("subtheme_links", k.graph.EdgeCount()).
		Int("collisions", len(k.collisions)).
		Int("unresolved", len(k.unresolved)).
		Msg("knowledge base built")
	return k
}

func (k *KnowledgeBase) registerMotifs(defs []MotifDef) {
	raw := make(map[string]string, len(defs))
	for _, def := range defs {
		name := NormalizeMotifName(def.Name)
		if _, exists := k.motifs[name]; exists {
			k.collide(KindMotif, name, raw[name], def.Name)
		} else {
			k.motifOrder = append(k.motifOrder, name)
		}
		raw[name] = def.Name
		k.motifs[name] = &Motif{
			ID:       def.ID,
			Name:     name,
			Features: append([]string(nil), def.Features...),
		}
	}
}

// registerThemes is pass 1.
func (k *KnowledgeBase) registerThemes(defs []ThemeDef) {
	motifByID := make(map[string]string, len(k.motifs))
	for _, name := range k.motifOrder {
		m := k.motifs[name]
		if _, taken := motifByID[m.ID]; !taken {
			motifByID[m.ID] = name
		}
	}

	raw := make(map[string]string, len(defs))
	for _, def := range defs {
		name := NormalizeThemeName(def.Name)
		th := &Theme{
			ID:          def.ID,
			Name:        name,
			SubthemeIDs: append([]string(nil), def.Subthemes...),
		}

		for _, ref := range def.Motifs {
			motif, ok := motifByID[ref]
			if !ok {
				if _, byName := k.motifs[NormalizeMotifName(ref)]; byName {
					motif, ok = NormalizeMotifName(ref), true
				}
			}
			if !ok {
				k.unresolve(KindMotif, name, ref)
				continue
			}
			th.Motifs = append(th.Motifs, motif)
		}

		if _, exists := k.themes[name]; exists {
			k.collide(KindTheme, name, raw[name], def.Name)
		} else {
			k.themeOrder = append(k.themeOrder, name)
		}
		raw[name] = def.Name
		k.themes[name] = th
		k.graph.EnsureNode(name, def.Name)
	}
}

// resolveSubthemes is pass 2.
func (k *KnowledgeBase) resolveSubthemes() {
	themeByID := make(map[string]string, len(k.themes))
	for _, name := range k.themeOrder {
		th := k.themes[name]
		if _, taken := themeByID[th.ID]; !taken {
			themeByID[th.ID] = name
		}
	}

	for _, name := range k.themeOrder {
		th := k.themes[name]
		for _, ref := range th.SubthemeIDs {
			target, ok := themeByID[ref]
			if !ok {
				if _, byName := k.themes[NormalizeThemeName(ref)]; byName {
					target, ok = NormalizeThemeName(ref), true
				}
			}
			if !ok {
				k.unresolve(KindTheme, name, ref)
				continue
			}
			th.Subthemes = append(th.Subthemes, target)
			k.graph.AddEdge(name, target)
		}
	}
}

func (k *KnowledgeBase) collide(kind RefKind, canonical, existing, incoming string) {
	k.collisions = append(k.collisions, Collision{
		Kind:      kind,
		Canonical: canonical,
		Existing:  existing,
		Incoming:  incoming,
	})
	k.log.Warn().
		Str("kind", string(kind)).
		Str("canonical", canonical).
		Str("existing", existing).
		Str("incoming", incoming).
		Msg("name collision, later definition replaces earlier")
}

func (k *KnowledgeBase) unresolve(kind RefKind, owner, ref string) {
	k.unresolved = append(k.unresolved, Unresolved{Kind: kind, Owner: owner, Ref: ref})
	k.log.Warn().
		Str("kind", string(kind)).
		Str("theme", owner).
		Str("ref", ref).
		Msg("unresolved reference dropped")
}

// =============================================================================
// Lookups
// =============================================================================

// Motif returns the motif registered under name. Raw names are normalized.
func (k *KnowledgeBase) Motif(name string) (*Motif, bool) {
	if m, ok := k.motifs[name]; ok {
		return m, true
	}
	m, ok := k.motifs[NormalizeMotifName(name)]
	return m, ok
}

// Theme returns the theme registered under name. Raw names are normalized.
func (k *KnowledgeBase) Theme(name string) (*Theme, bool) {
	if th, ok := k.themes[name]; ok {
		return th, true
	}
	th, ok := k.themes[NormalizeThemeName(name)]
	return th, ok
}

// ThemeNames lists every theme in definition order.
func (k *KnowledgeBase) ThemeNames() []string {
	return append([]string(nil), k.themeOrder...)
}

// MotifNames lists every motif in definition order.
func (k *KnowledgeBase) MotifNames() []string {
	return append([]string(nil), k.motifOrder...)
}

// Themes returns every theme in definition order.
func (k *KnowledgeBase) Themes() []*Theme {
	out := make([]*Theme, 0, len(k.themeOrder))
	for _, name := range k.themeOrder {
		out = append(out, k.themes[name])
	}
	return out
}

// Graph exposes the subtheme graph. Callers must not modify it.
func (k *KnowledgeBase) Graph() *graph.ThemeGraph {
	return k.graph
}

// Collisions lists name collisions seen during Build.
func (k *KnowledgeBase) Collisions() []Collision {
	return append([]Collision(nil), k.collisions...)
}

// Unresolved lists dropped references seen during Build.
func (k *KnowledgeBase) Unresolved() []Unresolved {
	return append([]Unresolved(nil), k.unresolved...)
}

// Cycles lists subtheme cycles found after pass 2.
func (k *KnowledgeBase) Cycles() [][]string {
	return append([][]string(nil), k.cycles...)
}

// Highlighter compiles every motif feature into a phrase.Highlighter.
func (k *KnowledgeBase) Highlighter() *phrase.Highlighter {
	sources := make([]phrase.Source, 0, len(k.motifOrder))
	for _, name := range k.motifOrder {
		sources = append(sources, phrase.Source{Motif: name, Features: k.motifs[name].Features})
	}
	return phrase.NewHighlighter(sources)
}
