package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/imadgeboyega/datewrapped/internal/dating"
)

const importConcurrency = 4

var entriesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create entries from a YAML or JSON list",
	Long: `Reads a list of entries keyed by field name and creates one entry per
item. Every item is checked before anything is sent.

  - person_name: Sam
    platform: Hinge
    total_cost: 42.5
    red_flags: [late, rude]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		entries, err := parseImport(data)
		if err != nil {
			return err
		}
		n, err := importEntries(cmd.Context(), entries)
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d entries\n", n, len(entries))
		return err
	},
}

// parseImport decodes a YAML (or JSON) list of field maps into entries. The
// first invalid item fails the whole file.
func parseImport(data []byte) ([]*dating.Entry, error) {
	var items []map[string]interface{}
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}

	entries := make([]*dating.Entry, 0, len(items))
	for i, item := range items {
		e := dating.NewBlank(i)
		for field, raw := range item {
			if err := dating.SetField(e, field, importValue(raw)); err != nil {
				return nil, fmt.Errorf("item %d: %w", i+1, err)
			}
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func importValue(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(raw)
}

func importEntries(ctx context.Context, entries []*dating.Entry) (int, error) {
	api, err := app.authorized()
	if err != nil {
		return 0, err
	}

	var created atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)
	for _, e := range entries {
		g.Go(func() error {
			if _, err := api.Upsert(gctx, e); err != nil {
				return fmt.Errorf("import %q: %w", e.PersonName, err)
			}
			created.Add(1)
			return nil
		})
	}
	err = g.Wait()
	return int(created.Load()), err
}
