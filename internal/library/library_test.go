package library

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/thematic/internal/logging"
	"github.com/kittclouds/thematic/pkg/coverage"
)

func newLibraryFS(t *testing.T, files map[string]string) hackpadfs.FS {
	t.Helper()
	fs, err := mem.NewFS()
	require.NoError(t, err)
	for name, body := range files {
		require.NoError(t, hackpadfs.WriteFullFile(fs, name, []byte(body), 0o644))
	}
	return fs
}

func sampleFiles() map[string]string {
	return map[string]string{
		"themes.xml": `<themes>
			<theme>danger</theme>
			<theme>FireworksNight</theme>
			<theme>lost</theme>
		</themes>`,
		"danger.xml": `<theme>
			<motif-component>weapon</motif-component>
			<motif-component>dangerous animal</motif-component>
			<theme-component>FireworksNight</theme-component>
		</theme>`,
		"FireworksNight.xml": `<theme>
			<motif-component>guy fawkes</motif-component>
			<motif-component>weapon</motif-component>
		</theme>`,
		"weapon.xml": `<motif>
			<feature>knife</feature>
			<feature> gun </feature>
			<feature></feature>
		</motif>`,
		"dangerousanimal.xml": `<motif><feature>wolf</feature><feature>bear</feature></motif>`,
	}
}

func TestLoadLibrary(t *testing.T) {
	var buf bytes.Buffer
	lib, err := Load(newLibraryFS(t, sampleFiles()), ".", logging.NewTestLogger(&buf))
	require.NoError(t, err)

	defs := lib.Definitions
	require.Len(t, defs.Themes, 2)
	assert.Equal(t, "danger", defs.Themes[0].ID)
	assert.Equal(t, []string{"weapon", "dangerous animal"}, defs.Themes[0].Motifs)
	assert.Equal(t, []string{"fireworks night"}, defs.Themes[0].Subthemes)
	assert.Equal(t, "fireworks night", defs.Themes[1].ID)

	require.Len(t, defs.Motifs, 3, "weapon is loaded once")
	assert.Equal(t, []string{"knife", "gun"}, defs.Motifs[0].Features)
	assert.Equal(t, []string{"wolf", "bear"}, defs.Motifs[1].Features)

	assert.Equal(t, []string{"guy fawkes"}, lib.Implicit)
	assert.Equal(t, []string{"guy fawkes"}, defs.Motifs[2].Features)
	assert.Equal(t, []string{"lost"}, lib.Skipped)
	assert.Contains(t, buf.String(), "theme file missing")
}

func TestLibraryKnowledgeBase(t *testing.T) {
	lib, err := Load(newLibraryFS(t, sampleFiles()), "", zerolog.Nop())
	require.NoError(t, err)

	base := lib.KnowledgeBase()
	assert.Empty(t, base.Unresolved())

	danger, ok := base.Theme("danger")
	require.True(t, ok)
	assert.Equal(t, []string{"fireworks night"}, danger.Subthemes)

	s := coverage.NewScorer(base)
	got := s.ThemeCoverage(base.ThemeNames(), "they burned a guy fawkes on the pyre", false)
	assert.Equal(t, 1.0, got.Score, "danger inherits guy fawkes through its subtheme")
	assert.Equal(t, []string{"danger", "fireworks night"}, got.HitNames())
}

func TestLoadMissingIndex(t *testing.T) {
	_, err := Load(newLibraryFS(t, map[string]string{"weapon.xml": "<motif/>"}), ".", zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingIndex))
}

func TestLoadMalformedTheme(t *testing.T) {
	files := map[string]string{
		"themes.xml": `<themes><theme>broken</theme></themes>`,
		"broken.xml": `<theme><motif-component>`,
	}
	_, err := Load(newLibraryFS(t, files), ".", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}
