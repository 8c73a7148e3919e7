package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// emit writes v as indented JSON under --json, otherwise runs text.
func (a *app) emit(w io.Writer, v any, text func(io.Writer)) error {
	if !a.jsonOut {
		text(w)
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func statNames(stats map[string]float64) []string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
