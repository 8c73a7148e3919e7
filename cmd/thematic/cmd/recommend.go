package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kittclouds/thematic/pkg/kb"
	"github.com/kittclouds/thematic/pkg/recommend"
)

type recommendOptions struct {
	storyPath string
	storyID   string
	node      string
	text      string
	threshold float64
	top       int
	stats     bool
}

type recommendOutput struct {
	Story     string             `json:"story"`
	Node      string             `json:"node,omitempty"`
	Threshold float64            `json:"threshold"`
	Links     []recommendedLink  `json:"links"`
	Stats     map[string]float64 `json:"stats,omitempty"`
}

type recommendedLink struct {
	recommend.Ranking
	Name string `json:"name"`
}

func newRecommendCmd(a *app) *cobra.Command {
	o := &recommendOptions{}
	c := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend anywhere links for a node or a passage",
		Long: "Finds the themes in the node's text (or --text) and ranks every other node\n" +
			"by how well it covers them. Results are best first.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runRecommend(cmd, o)
		},
	}

	f := c.Flags()
	f.StringVar(&o.storyPath, "story", "", "story JSON file")
	f.StringVar(&o.storyID, "id", "", "id of an imported story")
	f.StringVar(&o.node, "node", "", "node to recommend from; excluded from the results")
	f.StringVar(&o.text, "text", "", "query text (default: the node's text)")
	f.Float64Var(&o.threshold, "threshold", -1, "minimum score (default: story threshold, then recommend.threshold)")
	f.IntVar(&o.top, "top", -1, "maximum links, 0 for all (default recommend.top_n)")
	f.BoolVar(&o.stats, "stats", false, "print recommend counters after the run")
	c.MarkFlagsMutuallyExclusive("story", "id")
	return c
}

func (a *app) runRecommend(cmd *cobra.Command, o *recommendOptions) error {
	s, err := a.resolveStory(cmd.Context(), o.storyPath, o.storyID)
	if err != nil {
		return err
	}

	var current recommend.Candidate
	if o.node != "" {
		n, ok := s.Node(o.node)
		if !ok {
			return fmt.Errorf("node %q not found", o.node)
		}
		current = n.Candidate()
	}
	if o.text != "" {
		current.Text = o.text
	}
	if current.Text == "" {
		return errors.New("nothing to recommend from: give --node or --text")
	}

	cfg := a.cfg.RecommendConfig()
	if o.top >= 0 {
		cfg.TopN = o.top
	}
	threshold := o.threshold
	if threshold < 0 {
		threshold = s.Threshold(cfg.Threshold)
	}

	logger := a.logger()
	engine, err := recommend.NewEngine(s.KnowledgeBase(kb.WithLogger(logger)), cfg, logger)
	if err != nil {
		return err
	}

	candidates := s.Candidates()
	names := make(map[string]string, len(candidates))
	for _, c := range candidates {
		names[c.ID] = c.Name
	}

	out := recommendOutput{
		Story:     s.Title,
		Node:      current.ID,
		Threshold: threshold,
		Links:     []recommendedLink{},
	}
	for _, r := range engine.AnywhereLinks(current, candidates, threshold) {
		out.Links = append(out.Links, recommendedLink{Ranking: r, Name: names[r.NodeID]})
	}
	if o.stats {
		if out.Stats, err = gatherStats(); err != nil {
			return err
		}
	}

	return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) {
		printRecommendations(w, out)
	})
}

func printRecommendations(w io.Writer, out recommendOutput) {
	fmt.Fprintf(w, "%d links (threshold %.2f)\n", len(out.Links), out.Threshold)
	for _, l := range out.Links {
		names := make([]string, 0, len(l.Hits))
		for _, h := range l.Hits {
			names = append(names, h.Name)
		}
		fmt.Fprintf(w, "  %.3f  %-6s %-20s %s\n", l.Score, l.NodeID, l.Name, joinOrDash(names))
	}
	if len(out.Stats) > 0 {
		fmt.Fprintln(w, "stats:")
		for _, name := range statNames(out.Stats) {
			fmt.Fprintf(w, "  %s %g\n", name, out.Stats[name])
		}
	}
}

// gatherStats reads the recommend counters from the default registry.
// Histograms report their sample count.
func gatherStats() (map[string]float64, error) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}
	stats := make(map[string]float64)
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, "thematic_recommend_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				stats[name] += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				stats[name+"_count"] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return stats, nil
}
