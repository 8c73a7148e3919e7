package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kittclouds/thematic/internal/logging"
	"github.com/kittclouds/thematic/internal/store"
)

func newImportCmd(a *app) *cobra.Command {
	var path string
	c := &cobra.Command{
		Use:   "import",
		Short: "Store a story so it can be used with --id",
		Long: "Validates the story and saves it in the configured database. A story\n" +
			"without an id is given one. Importing the same id again replaces it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				return errors.New("--story is required")
			}
			s, err := a.loadStory(path)
			if err != nil {
				return err
			}
			rec, err := store.NewRecord(s)
			if err != nil {
				return err
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.SaveStory(cmd.Context(), rec); err != nil {
				return err
			}
			logging.Info().Str("id", rec.ID).Str("title", rec.Title).Msg("story imported")

			return a.emit(cmd.OutOrStdout(), rec, func(w io.Writer) {
				fmt.Fprintln(w, rec.ID)
			})
		},
	}
	c.Flags().StringVar(&path, "story", "", "story JSON file")
	return c
}

func newStoriesCmd(a *app) *cobra.Command {
	var remove string
	c := &cobra.Command{
		Use:   "stories",
		Short: "List imported stories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			if remove != "" {
				if _, err := st.GetStory(ctx, remove); err != nil {
					return fmt.Errorf("story %s: %w", remove, err)
				}
				if err := st.DeleteStory(ctx, remove); err != nil {
					return err
				}
				logging.Info().Str("id", remove).Msg("story deleted")
			}

			count, err := st.CountStories(ctx)
			if err != nil {
				return err
			}
			list, err := st.ListStories(ctx)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), list, func(w io.Writer) {
				fmt.Fprintf(w, "%d stories\n", count)
				for _, rec := range list {
					updated := time.UnixMilli(rec.UpdatedAt).Format(time.DateTime)
					fmt.Fprintf(w, "  %-36s  %-24s  %s\n", rec.ID, rec.Title, updated)
				}
			})
		},
	}
	c.Flags().StringVar(&remove, "delete", "", "delete the story with this id before listing")
	return c
}
