package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imadgeboyega/datewrapped/internal/client"
	"github.com/imadgeboyega/datewrapped/internal/client/view"
	"github.com/imadgeboyega/datewrapped/internal/dating"
)

var (
	listCards  bool
	listFilter string
	listFields []string
	listWidths map[string]int
)

var entriesCmd = &cobra.Command{
	Use:     "entries",
	Aliases: []string{"e"},
	Short:   "List and edit dating entries",
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show entries as a table or cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		editor, err := loadEditor(cmd.Context())
		if err != nil {
			return err
		}
		printRows(cmd, editor)
		return nil
	},
}

var entriesAddCmd = &cobra.Command{
	Use:   "add [field=value...]",
	Short: "Add an entry, optionally setting fields",
	Example: `  datewrapped entries add person_name=Sam platform=Hinge total_cost='$42.50'
  datewrapped entries add rating=4 red_flags="late,rude"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		assignments, err := parseAssignments(args)
		if err != nil {
			return err
		}
		editor, err := loadEditor(cmd.Context())
		if err != nil {
			return err
		}
		index := editor.AddBlank()
		if len(assignments) == 0 {
			// A blank row is only stored once a field changes.
			assignments = []assignment{{dating.FieldPersonName, editorValue(editor, index, dating.FieldPersonName)}}
		}
		return applyAndPrint(cmd, editor, index, assignments)
	},
}

var entriesSetCmd = &cobra.Command{
	Use:   "set <index|id> field=value...",
	Short: "Change fields of an entry",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		assignments, err := parseAssignments(args[1:])
		if err != nil {
			return err
		}
		editor, err := loadEditor(cmd.Context())
		if err != nil {
			return err
		}
		index, err := resolveRow(editor, args[0])
		if err != nil {
			return err
		}
		return applyAndPrint(cmd, editor, index, assignments)
	},
}

var entriesRmCmd = &cobra.Command{
	Use:     "rm <index|id>...",
	Aliases: []string{"delete"},
	Short:   "Delete entries",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		editor, err := loadEditor(cmd.Context())
		if err != nil {
			return err
		}
		indexes := make([]int, 0, len(args))
		for _, arg := range args {
			i, err := resolveRow(editor, arg)
			if err != nil {
				return err
			}
			indexes = append(indexes, i)
		}
		// Highest first so earlier removals do not shift later indexes.
		sort.Sort(sort.Reverse(sort.IntSlice(indexes)))
		for n, i := range indexes {
			if n > 0 && i == indexes[n-1] {
				continue
			}
			if err := editor.RemoveAt(cmd.Context(), i); err != nil {
				return err
			}
		}
		if err := editor.Sync(cmd.Context()); err != nil {
			return err
		}
		printRows(cmd, editor)
		return nil
	},
}

var entriesFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List editable fields and their allowed values",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, f := range dating.Fields {
			line := fmt.Sprintf("%-20s %s", f.Name, app.styles.Muted.Render(f.Label))
			if len(f.Options) > 0 {
				line += "  " + strings.Join(f.Options, " | ")
			}
			if f.MaxStars > 0 {
				line += fmt.Sprintf("  0-%d", f.MaxStars)
			}
			fmt.Fprintln(out, line)
		}
	},
}

type assignment struct {
	field string
	value string
}

// parseAssignments splits field=value arguments. Values may be empty, which
// clears optional fields.
func parseAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		if _, known := dating.LookupField(field); !known {
			return nil, fmt.Errorf("unknown field %q, see `datewrapped entries fields`", field)
		}
		out = append(out, assignment{field: field, value: value})
	}
	return out, nil
}

// resolveRow accepts a row index as printed by `entries list` or an entry
// id.
func resolveRow(editor *client.Editor, arg string) (int, error) {
	if i, err := strconv.Atoi(arg); err == nil {
		if i < 0 || i >= editor.Len() {
			return 0, fmt.Errorf("row %d out of range, have %d entries", i, editor.Len())
		}
		return i, nil
	}
	if i := editor.IndexOf(arg); i >= 0 {
		return i, nil
	}
	return 0, fmt.Errorf("no entry with id %q", arg)
}

func loadEditor(ctx context.Context) (*client.Editor, error) {
	api, err := app.authorized()
	if err != nil {
		return nil, err
	}
	editor := client.NewEditor(api, app.logger)
	if err := editor.Load(ctx); err != nil {
		return nil, err
	}
	return editor, nil
}

func editorValue(editor *client.Editor, index int, field string) string {
	row, err := editor.Row(index)
	if err != nil {
		return ""
	}
	return dating.FieldValue(row.Entry, field)
}

// applyAndPrint sends every assignment, waits for the writes to settle and
// prints the row. Rejected values are reported per field.
func applyAndPrint(cmd *cobra.Command, editor *client.Editor, index int, assignments []assignment) error {
	var rejected []string
	for _, a := range assignments {
		if err := editor.UpdateField(cmd.Context(), index, a.field, a.value); err != nil {
			rejected = append(rejected, fmt.Sprintf("%s: %v", a.field, err))
		}
	}
	syncErr := editor.Sync(cmd.Context())

	row, err := editor.Row(index)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), view.Cards([]client.Row{row}, "", app.styles))

	if len(rejected) > 0 {
		return fmt.Errorf("rejected %s", strings.Join(rejected, "; "))
	}
	return syncErr
}

func printRows(cmd *cobra.Command, editor *client.Editor) {
	rows := editor.Rows()
	if listCards {
		fmt.Fprint(cmd.OutOrStdout(), view.Cards(rows, listFilter, app.styles))
		return
	}
	fmt.Fprint(cmd.OutOrStdout(), view.Table(rows, view.TableOptions{
		Fields:    listFields,
		Widths:    listWidths,
		Filter:    listFilter,
		LastError: editor.LastError(),
	}, app.styles))
}

func init() {
	entriesListCmd.Flags().BoolVar(&listCards, "cards", false, "Show one card per entry")
	entriesListCmd.Flags().StringVar(&listFilter, "filter", "", "Only show entries whose name matches")
	entriesListCmd.Flags().StringSliceVar(&listFields, "fields", nil, "Columns to show, in order")
	entriesListCmd.Flags().StringToIntVar(&listWidths, "width", nil, "Column width overrides, e.g. --width notes=20")

	entriesCmd.AddCommand(entriesListCmd, entriesAddCmd, entriesSetCmd, entriesRmCmd, entriesFieldsCmd, entriesImportCmd)
}
