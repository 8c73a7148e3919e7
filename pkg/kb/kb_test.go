package kb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/thematic/internal/logging"
)

func sampleDefinitions() Definitions {
	return Definitions{
		Motifs: []MotifDef{
			{ID: "m1", Name: "Weapon", Features: []string{"knife", "gun"}},
			{ID: "m2", Name: "help", Features: []string{"rescue"}},
			{ID: "m3", Name: "WarmClothing", Features: []string{"scarf"}},
		},
		Themes: []ThemeDef{
			{ID: "t1", Name: "Danger", Motifs: []string{"m1"}, Subthemes: []string{"t3"}},
			{ID: "t2", Name: "kindness", Motifs: []string{"m2"}},
			{ID: "t3", Name: "FireworksNight", Motifs: []string{"m3"}},
		},
	}
}

func TestBuildRegistersCanonicalNames(t *testing.T) {
	base := Build(sampleDefinitions())

	assert.Equal(t, []string{"danger", "kindness", "fireworks night"}, base.ThemeNames())
	assert.Equal(t, []string{"weapon", "help", "warm clothing"}, base.MotifNames())

	danger, ok := base.Theme("danger")
	require.True(t, ok)
	assert.Equal(t, []string{"weapon"}, danger.Motifs)
	assert.Equal(t, []string{"t3"}, danger.SubthemeIDs)
	assert.Equal(t, []string{"fireworks night"}, danger.Subthemes)

	fw, ok := base.Theme("FireworksNight")
	require.True(t, ok, "raw names should normalize on lookup")
	assert.Equal(t, []string{"warm clothing"}, fw.Motifs)

	m, ok := base.Motif("warmclothing")
	require.True(t, ok)
	assert.Equal(t, []string{"scarf"}, m.Features)

	assert.Empty(t, base.Collisions())
	assert.Empty(t, base.Unresolved())
	assert.Empty(t, base.Cycles())
}

func TestBuildResolvesForwardSubthemeReferences(t *testing.T) {
	defs := Definitions{
		Themes: []ThemeDef{
			{ID: "a", Name: "A", Subthemes: []string{"b", "c"}},
			{ID: "b", Name: "B"},
			{ID: "c", Name: "C", Subthemes: []string{"b"}},
		},
	}
	base := Build(defs)

	a, _ := base.Theme("a")
	assert.Equal(t, []string{"b", "c"}, a.Subthemes)
	assert.Equal(t, []string{"b", "c"}, base.Graph().Children("a"))
	assert.Equal(t, []string{"a", "c"}, base.Graph().Parents("b"))
	assert.Equal(t, []string{"a"}, base.Graph().Roots())
}

func TestBuildDropsUnresolvedReferences(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewTestLogger(&buf)

	defs := Definitions{
		Motifs: []MotifDef{{ID: "m1", Name: "weapon", Features: []string{"knife"}}},
		Themes: []ThemeDef{
			{ID: "t1", Name: "danger", Motifs: []string{"m1", "m404"}, Subthemes: []string{"t404"}},
		},
	}
	base := Build(defs, WithLogger(logger))

	danger, _ := base.Theme("danger")
	assert.Equal(t, []string{"weapon"}, danger.Motifs)
	assert.Empty(t, danger.Subthemes)
	assert.Equal(t, []string{"t404"}, danger.SubthemeIDs)

	assert.Equal(t, []Unresolved{
		{Kind: KindMotif, Owner: "danger", Ref: "m404"},
		{Kind: KindTheme, Owner: "danger", Ref: "t404"},
	}, base.Unresolved())
	assert.Contains(t, buf.String(), "unresolved reference dropped")
}

func TestBuildResolvesReferencesByName(t *testing.T) {
	defs := Definitions{
		Motifs: []MotifDef{{ID: "m1", Name: "dangerousanimal", Features: []string{"wolf"}}},
		Themes: []ThemeDef{
			{ID: "t1", Name: "wild", Motifs: []string{"dangerous animal"}, Subthemes: []string{"Night"}},
			{ID: "t2", Name: "night"},
		},
	}
	base := Build(defs)

	wild, _ := base.Theme("wild")
	assert.Equal(t, []string{"dangerous animal"}, wild.Motifs)
	assert.Equal(t, []string{"night"}, wild.Subthemes)
}

func TestBuildRecordsCollisions(t *testing.T) {
	defs := Definitions{
		Motifs: []MotifDef{
			{ID: "m1", Name: "Weapon", Features: []string{"knife"}},
			{ID: "m2", Name: "weapon", Features: []string{"sword"}},
		},
		Themes: []ThemeDef{
			{ID: "t1", Name: "Danger", Motifs: []string{"m1"}},
			{ID: "t2", Name: "DANGER", Motifs: []string{"m2"}},
		},
	}
	base := Build(defs)

	m, _ := base.Motif("weapon")
	assert.Equal(t, []string{"sword"}, m.Features, "later definition wins")
	assert.Equal(t, []string{"weapon"}, base.MotifNames())
	assert.Equal(t, []string{"danger"}, base.ThemeNames())

	assert.Equal(t, []Collision{
		{Kind: KindMotif, Canonical: "weapon", Existing: "Weapon", Incoming: "weapon"},
		{Kind: KindTheme, Canonical: "danger", Existing: "Danger", Incoming: "DANGER"},
	}, base.Collisions())

	// The replaced motif's id no longer resolves to anything but the survivor.
	danger, _ := base.Theme("danger")
	assert.Equal(t, []string{"weapon"}, danger.Motifs)
}

func TestBuildDetectsCycles(t *testing.T) {
	defs := Definitions{
		Themes: []ThemeDef{
			{ID: "a", Name: "a", Subthemes: []string{"b"}},
			{ID: "b", Name: "b", Subthemes: []string{"a"}},
		},
	}
	base := Build(defs)
	assert.Equal(t, [][]string{{"a", "b", "a"}}, base.Cycles())
}

func TestBuildEmpty(t *testing.T) {
	base := Build(Definitions{})
	assert.Empty(t, base.ThemeNames())
	assert.Empty(t, base.Themes())
	_, ok := base.Theme("anything")
	assert.False(t, ok)
}

func TestEnsureMotif(t *testing.T) {
	defs := Definitions{
		Motifs: []MotifDef{{ID: "m1", Name: "Weapon", Features: []string{"knife"}}},
	}

	assert.False(t, defs.EnsureMotif("weapon"))
	assert.False(t, defs.EnsureMotif("m1"))
	assert.True(t, defs.EnsureMotif("SoundSystem"))
	require.Len(t, defs.Motifs, 2)
	assert.Equal(t, ImplicitMotif("sound system"), defs.Motifs[1])
	assert.Equal(t, []string{"sound system"}, defs.Motifs[1].Features)
}

func TestHighlighter(t *testing.T) {
	base := Build(sampleDefinitions())
	h := base.Highlighter()
	assert.Equal(t, 4, h.Len())

	spans, _ := h.Find("A scarf and a gun")
	require.Len(t, spans, 2)
	assert.Equal(t, []string{"warm clothing"}, spans[0].Motifs)
	assert.Equal(t, []string{"weapon"}, spans[1].Motifs)
}
