package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kittclouds/thematic/pkg/coverage"
	"github.com/kittclouds/thematic/pkg/kb"
)

type coverageOptions struct {
	storyPath string
	storyID   string
	text      string
	themes    []string
	dup       bool
}

type coverageOutput struct {
	Themes    []string            `json:"themes"`
	Score     float64             `json:"score"`
	Component float64             `json:"component"`
	Hits      []coverage.ThemeHit `json:"hits"`
}

func newCoverageCmd(a *app) *cobra.Command {
	o := &coverageOptions{}
	c := &cobra.Command{
		Use:   "coverage",
		Short: "Score how well a text covers a set of themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCoverage(cmd, o)
		},
	}

	f := c.Flags()
	f.StringVar(&o.storyPath, "story", "", "story JSON file")
	f.StringVar(&o.storyID, "id", "", "id of an imported story")
	f.StringVar(&o.text, "text", "", "text to score")
	f.StringSliceVar(&o.themes, "themes", nil, "themes to score against (default: all)")
	f.BoolVar(&o.dup, "dup", false, "count repeated themes once per occurrence")
	c.MarkFlagsMutuallyExclusive("story", "id")
	return c
}

func (a *app) runCoverage(cmd *cobra.Command, o *coverageOptions) error {
	if o.text == "" {
		return errors.New("--text is required")
	}
	s, err := a.resolveStory(cmd.Context(), o.storyPath, o.storyID)
	if err != nil {
		return err
	}

	logger := a.logger()
	base := s.KnowledgeBase(kb.WithLogger(logger))
	themes := o.themes
	if len(themes) == 0 {
		themes = base.ThemeNames()
	}

	scorer := coverage.NewScorer(base, coverage.WithLogger(logger))
	res := scorer.ThemeCoverage(themes, o.text, o.dup)
	out := coverageOutput{
		Themes:    themes,
		Score:     res.Score,
		Component: scorer.ComponentCoverage(themes, o.text),
		Hits:      res.Hits,
	}

	return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) {
		fmt.Fprintf(w, "theme coverage      %.3f\n", out.Score)
		fmt.Fprintf(w, "component coverage  %.3f\n", out.Component)
		for _, h := range out.Hits {
			fmt.Fprintf(w, "  %-20s x%d\n", h.Name, h.HitCount)
		}
	})
}
