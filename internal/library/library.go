// Package library reads theme libraries kept as XML files: an index of theme
// names plus one file per theme and one per motif.
//
//	themes.xml     <themes><theme>danger</theme>...</themes>
//	danger.xml     <theme><motif-component>weapon</motif-component>
//	               <theme-component>tempest</theme-component></theme>
//	weapon.xml     <motif><feature>knife</feature>...</motif>
//
// Themes and motifs are referenced by name. A motif without a file becomes
// an implicit motif whose only feature is its own name.
package library

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/hack-pad/hackpadfs"
	"github.com/rs/zerolog"

	"github.com/kittclouds/thematic/pkg/kb"
)

// IndexFile is the theme index inside a library directory.
const IndexFile = "themes.xml"

// ErrMissingIndex is returned when the directory has no IndexFile.
var ErrMissingIndex = errors.New("theme library index not found")

type indexXML struct {
	Themes []string `xml:"theme"`
}

type themeXML struct {
	Motifs    []string `xml:"motif-component"`
	Subthemes []string `xml:"theme-component"`
}

type motifXML struct {
	Features []string `xml:"feature"`
}

// Library is a decoded theme library.
type Library struct {
	Definitions kb.Definitions

	// Implicit lists motifs synthesized because their file was missing.
	Implicit []string

	// Skipped lists indexed themes whose file could not be read.
	Skipped []string
}

// KnowledgeBase builds the library's knowledge base.
func (l *Library) KnowledgeBase(opts ...kb.Option) *kb.KnowledgeBase {
	return kb.Build(l.Definitions, opts...)
}

type loader struct {
	fsys   hackpadfs.FS
	dir    string
	lib    *Library
	loaded map[string]bool
	log    zerolog.Logger
}

// Load reads the library rooted at dir in fsys.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Load(fsys hackpadfs.FS, dir string, logger zerolog.Logger) (*Library, error) {
	l := &loader{
		fsys:   fsys,
		dir:    dir,
		lib:    &Library{},
		loaded: make(map[string]bool),
		log:    logger.With().Str("component", "library").Logger(),
	}

	var index indexXML
	if err := l.readXML(IndexFile, &index); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingIndex, path.Join(dir, IndexFile))
		}
		return nil, err
	}

	for _, raw := range index.Themes {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if err := l.loadTheme(name); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			l.lib.Skipped = append(l.lib.Skipped, name)
			l.log.Warn().Str("theme", name).Msg("theme file missing, skipped")
		}
	}

	l.log.Debug().
		Int("themes", len(l.lib.Definitions.Themes)).
		Int("motifs", len(l.lib.Definitions.Motifs)).
		Int("implicit", len(l.lib.Implicit)).
		Msg("theme library loaded")
	return l.lib, nil
}

func (l *loader) loadTheme(name string) error {
	var doc themeXML
	if err := l.readXML(name+".xml", &doc); err != nil {
		return err
	}

	canonical := kb.NormalizeThemeName(name)
	def := kb.ThemeDef{ID: canonical, Name: name}

	for _, raw := range doc.Motifs {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		// motif files are named without the first space of the reference
		file := strings.Replace(text, " ", "", 1)
		motif := kb.NormalizeMotifName(file)
		if err := l.loadMotif(file, motif); err != nil {
			return err
		}
		def.Motifs = append(def.Motifs, motif)
	}

	for _, raw := range doc.Subthemes {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		def.Subthemes = append(def.Subthemes, kb.NormalizeThemeName(text))
	}

	l.lib.Definitions.Themes = append(l.lib.Definitions.Themes, def)
	return nil
}

// loadMotif reads a motif on first reference.
func (l *loader) loadMotif(file, canonical string) error {
	if l.loaded[canonical] {
		return nil
	}
	l.loaded[canonical] = true

	var doc motifXML
	err := l.readXML(file+".xml", &doc)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if l.lib.Definitions.EnsureMotif(canonical) {
			l.lib.Implicit = append(l.lib.Implicit, canonical)
			l.log.Warn().Str("motif", canonical).Msg("motif file missing, using its name as the only feature")
		}
		return nil
	case err != nil:
		return err
	}

	features := make([]string, 0, len(doc.Features))
	for _, f := range doc.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	l.lib.Definitions.Motifs = append(l.lib.Definitions.Motifs, kb.MotifDef{
		ID:       canonical,
		Name:     file,
		Features: features,
	})
	return nil
}

func (l *loader) readXML(name string, v any) error {
	p := path.Join(l.dir, name)
	data, err := hackpadfs.ReadFile(l.fsys, p)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", p, err)
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", p, err)
	}
	return nil
}
