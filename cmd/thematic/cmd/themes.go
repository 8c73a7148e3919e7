package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kittclouds/thematic/internal/library"
	"github.com/kittclouds/thematic/internal/logging"
	"github.com/kittclouds/thematic/pkg/kb"
)

type themesOptions struct {
	storyPath string
	storyID   string
	library   string
}

type themesOutput struct {
	Themes     []*kb.Theme         `json:"themes"`
	Motifs     []string            `json:"motifs"`
	Roots      []string            `json:"roots"`
	Parents    map[string][]string `json:"parents,omitempty"`
	Edges      int                 `json:"edges"`
	Collisions []kb.Collision      `json:"collisions,omitempty"`
	Unresolved []kb.Unresolved     `json:"unresolved,omitempty"`
	Cycles     [][]string          `json:"cycles,omitempty"`
	Implicit   []string            `json:"implicit,omitempty"`
	Skipped    []string            `json:"skipped,omitempty"`
}

func newThemesCmd(a *app) *cobra.Command {
	o := &themesOptions{}
	c := &cobra.Command{
		Use:   "themes",
		Short: "List the themes of a story or theme library",
		Long: "Prints every theme with its motifs and subthemes, followed by any\n" +
			"problems found while building the knowledge base.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runThemes(cmd, o)
		},
	}

	f := c.Flags()
	f.StringVar(&o.storyPath, "story", "", "story JSON file")
	f.StringVar(&o.storyID, "id", "", "id of an imported story")
	f.StringVar(&o.library, "library", "", "directory holding an XML theme library")
	c.MarkFlagsMutuallyExclusive("story", "id", "library")
	return c
}

func (a *app) runThemes(cmd *cobra.Command, o *themesOptions) error {
	logger := a.logger()
	out := themesOutput{}

	var base *kb.KnowledgeBase
	if o.library != "" {
		lib, err := library.Load(os.DirFS(o.library), ".", logger)
		if err != nil {
			return err
		}
		base = lib.KnowledgeBase(kb.WithLogger(logger))
		out.Implicit = lib.Implicit
		out.Skipped = lib.Skipped
	} else {
		s, err := a.resolveStory(cmd.Context(), o.storyPath, o.storyID)
		if err != nil {
			return err
		}
		base = s.KnowledgeBase(kb.WithLogger(logger))
	}

	g := base.Graph()
	out.Themes = base.Themes()
	out.Motifs = base.MotifNames()
	out.Roots = g.Roots()
	out.Edges = g.EdgeCount()
	out.Parents = make(map[string][]string)
	for _, th := range out.Themes {
		if parents := g.Parents(th.Name); len(parents) > 0 {
			out.Parents[th.Name] = parents
		}
	}
	out.Collisions = base.Collisions()
	out.Unresolved = base.Unresolved()
	out.Cycles = base.Cycles()

	if problems := len(out.Collisions) + len(out.Unresolved) + len(out.Cycles); problems > 0 {
		logging.Warn().
			Int("collisions", len(out.Collisions)).
			Int("unresolved", len(out.Unresolved)).
			Int("cycles", len(out.Cycles)).
			Msg("knowledge base has problems")
	}

	return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) {
		printThemes(w, out)
	})
}

func printThemes(w io.Writer, out themesOutput) {
	fmt.Fprintf(w, "%d themes, %d motifs, %d subtheme links\n", len(out.Themes), len(out.Motifs), out.Edges)
	fmt.Fprintf(w, "top-level: %s\n", joinOrDash(out.Roots))
	for _, th := range out.Themes {
		fmt.Fprintf(w, "  %s\n", th.Name)
		fmt.Fprintf(w, "    motifs:    %s\n", joinOrDash(th.Motifs))
		fmt.Fprintf(w, "    subthemes: %s\n", joinOrDash(th.Subthemes))
		fmt.Fprintf(w, "    parents:   %s\n", joinOrDash(out.Parents[th.Name]))
	}
	for _, c := range out.Collisions {
		fmt.Fprintf(w, "collision: %s %q replaced %q (%s)\n", c.Kind, c.Incoming, c.Existing, c.Canonical)
	}
	for _, u := range out.Unresolved {
		fmt.Fprintf(w, "unresolved: theme %q references unknown %s %q\n", u.Owner, u.Kind, u.Ref)
	}
	for _, cyc := range out.Cycles {
		fmt.Fprintf(w, "cycle: %s\n", strings.Join(cyc, " -> "))
	}
	if len(out.Implicit) > 0 {
		fmt.Fprintf(w, "implicit motifs: %s\n", joinOrDash(out.Implicit))
	}
	if len(out.Skipped) > 0 {
		fmt.Fprintf(w, "skipped themes: %s\n", joinOrDash(out.Skipped))
	}
}
