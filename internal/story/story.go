// Package story reads and writes interactive-fiction story documents and
// turns them into the inputs of the thematic engine.
package story

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/kittclouds/thematic/pkg/kb"
	"github.com/kittclouds/thematic/pkg/recommend"
)

// ErrInvalidStory wraps every decoding and validation failure.
var ErrInvalidStory = errors.New("invalid story")

// ID is an identifier written either as a JSON string or a JSON number.
type ID string

// UnmarshalJSON accepts "12", 12 and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Document is the on-disk envelope.
type Document struct {
	Story Story `json:"story"`
}

// Story is an authored story with its thematic library.
type Story struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Nodes       []Node   `json:"nodes" validate:"dive"`
	Facts       []Fact   `json:"facts,omitempty" validate:"dive"`
	Motifs      []Motif  `json:"motifs,omitempty" validate:"dive"`
	Themes      []Theme  `json:"themes,omitempty" validate:"dive"`
	Metadata    Metadata `json:"metadata"`
}

// Node is a passage of the story.
type Node struct {
	ID       ID      `json:"id" validate:"required"`
	Name     string  `json:"name"`
	Content  Content `json:"content"`
	IsStart  bool    `json:"isStart,omitempty"`
	Anywhere bool    `json:"anywhere,omitempty"`
}

// Content holds a node's text.
type Content struct {
	Text string `json:"text"`
}

// Fact is a story variable. The engine carries facts through untouched.
type Fact struct {
	ID    ID     `json:"id" validate:"required"`
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Motif is an authored motif.
type Motif struct {
	ID       ID       `json:"id" validate:"required"`
	Name     string   `json:"name" validate:"required"`
	Features []string `json:"features"`
}

// Theme is an authored theme referencing motifs and subthemes by id.
type Theme struct {
	ID        ID     `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Motifs    []ID   `json:"motifs"`
	Subthemes []ID   `json:"subthemes"`
}

// Metadata holds story-wide settings.
type Metadata struct {
	ThemeThreshold  *float64 `json:"themeThreshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	BackDisabled    bool     `json:"backDisabled,omitempty"`
	RestartDisabled bool     `json:"restartDisabled,omitempty"`
}

var validate = validator.New()

// Validate checks field constraints and that node ids are unique.
func (s *Story) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStory, err)
	}
	seen := make(map[ID]struct{}, len(s.Nodes))
	for _, n := range s.Nodes {
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidStory, n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}

// Definitions converts the story's thematic library for kb.Build.
func (s *Story) Definitions() kb.Definitions {
	defs := kb.Definitions{
		Motifs: make([]kb.MotifDef, 0, len(s.Motifs)),
		Themes: make([]kb.ThemeDef, 0, len(s.Themes)),
	}
	for _, m := range s.Motifs {
		defs.Motifs = append(defs.Motifs, kb.MotifDef{
			ID:       string(m.ID),
			Name:     m.Name,
			Features: append([]string(nil), m.Features...),
		})
	}
	for _, th := range s.Themes {
		defs.Themes = append(defs.Themes, kb.ThemeDef{
			ID:        string(th.ID),
			Name:      th.Name,
			Motifs:    idStrings(th.Motifs),
			Subthemes: idStrings(th.Subthemes),
		})
	}
	return defs
}

// KnowledgeBase builds the story's knowledge base.
func (s *Story) KnowledgeBase(opts ...kb.Option) *kb.KnowledgeBase {
	return kb.Build(s.Definitions(), opts...)
}

// Candidates lists every node for recommendation, in story order.
func (s *Story) Candidates() []recommend.Candidate {
	out := make([]recommend.Candidate, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		out = append(out, n.Candidate())
	}
	return out
}

// Candidate converts the node.
func (n Node) Candidate() recommend.Candidate {
	return recommend.Candidate{ID: string(n.ID), Name: n.Name, Text: n.Content.Text}
}

// Node returns the node with the given id.
func (s *Story) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if string(n.ID) == id {
			return n, true
		}
	}
	return Node{}, false
}

// StartNode returns the first node flagged as the start.
func (s *Story) StartNode() (Node, bool) {
	for _, n := range s.Nodes {
		if n.IsStart {
			return n, true
		}
	}
	return Node{}, false
}

// Threshold returns the story's theme threshold, or fallback when unset.
func (s *Story) Threshold(fallback float64) float64 {
	if s.Metadata.ThemeThreshold != nil {
		return *s.Metadata.ThemeThreshold
	}
	return fallback
}

func idStrings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
