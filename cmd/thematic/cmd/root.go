package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kittclouds/thematic/internal/config"
	"github.com/kittclouds/thematic/internal/logging"
	"github.com/kittclouds/thematic/internal/store"
	"github.com/kittclouds/thematic/internal/story"
)

// app carries the global flags and the configuration loaded from them.
type app struct {
	configPath string
	logLevel   string
	jsonOut    bool

	cfg *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "thematic",
		Short: "Anywhere-link recommendations for interactive stories",
		Long: "Scores story nodes by the themes they share with a passage, using the\n" +
			"motifs and themes authored with the story.",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "config file (default $THEMATIC_CONFIG, then ./thematic.yaml)")
	f.StringVar(&a.logLevel, "log-level", "", "override logging.level")
	f.BoolVar(&a.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(newRecommendCmd(a))
	root.AddCommand(newCoverageCmd(a))
	root.AddCommand(newThemesCmd(a))
	root.AddCommand(newHighlightCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newStoriesCmd(a))
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	logging.Init(cfg.LoggingConfig())
	logging.Debug().
		Str("level", cfg.Logging.Level).
		Str("dsn", cfg.Store.DSN).
		Float64("threshold", cfg.Recommend.Threshold).
		Int("top_n", cfg.Recommend.TopN).
		Msg("configuration loaded")
	a.cfg = cfg
	return nil
}

func (a *app) logger() zerolog.Logger {
	return logging.Logger()
}

// loadStory reads a story document from the local filesystem.
func (a *app) loadStory(path string) (*story.Story, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return story.Load(os.DirFS(dir), name)
}

func (a *app) openStore() (store.Storer, error) {
	return store.NewSQLiteStoreWithDSN(a.cfg.Store.DSN)
}

// resolveStory loads the story named by a file path or a stored id.
func (a *app) resolveStory(ctx context.Context, path, id string) (*story.Story, error) {
	switch {
	case path != "":
		return a.loadStory(path)
	case id != "":
		st, err := a.openStore()
		if err != nil {
			return nil, err
		}
		defer st.Close()

		rec, err := st.GetStory(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("story %s: %w", id, err)
		}
		return rec.Story()
	default:
		return nil, errors.New("one of --story or --id is required")
	}
}
