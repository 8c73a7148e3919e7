package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kittclouds/thematic/pkg/kb"
	"github.com/kittclouds/thematic/pkg/phrase"
)

type highlightOptions struct {
	storyPath string
	storyID   string
	text      string
}

type highlightOutput struct {
	Text     string        `json:"text"`
	Features int           `json:"features"`
	Spans    []phrase.Span `json:"spans"`
}

func newHighlightCmd(a *app) *cobra.Command {
	o := &highlightOptions{}
	c := &cobra.Command{
		Use:   "highlight",
		Short: "Show where motif features occur in a text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runHighlight(cmd, o)
		},
	}

	f := c.Flags()
	f.StringVar(&o.storyPath, "story", "", "story JSON file")
	f.StringVar(&o.storyID, "id", "", "id of an imported story")
	f.StringVar(&o.text, "text", "", "text to scan")
	c.MarkFlagsMutuallyExclusive("story", "id")
	return c
}

func (a *app) runHighlight(cmd *cobra.Command, o *highlightOptions) error {
	if o.text == "" {
		return errors.New("--text is required")
	}
	s, err := a.resolveStory(cmd.Context(), o.storyPath, o.storyID)
	if err != nil {
		return err
	}

	hl := s.KnowledgeBase(kb.WithLogger(a.logger())).Highlighter()
	spans, prepared := hl.Find(o.text)
	if spans == nil {
		spans = []phrase.Span{}
	}
	out := highlightOutput{Text: prepared, Features: hl.Len(), Spans: spans}

	return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) {
		fmt.Fprintf(w, "%s\n%d spans from %d features\n", out.Text, len(out.Spans), out.Features)
		for _, sp := range out.Spans {
			fmt.Fprintf(w, "  [%d:%d] %-16s %s\n", sp.Start, sp.End, sp.Feature, joinOrDash(sp.Motifs))
		}
	})
}
