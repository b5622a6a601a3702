package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Kutay07/ContentLab-sub000/internal/draft"
	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

func newDraftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Manage stored drafts",
	}
	cmd.AddCommand(
		newDraftListCmd(),
		newDraftNewCmd(),
		newDraftShowCmd(),
		newDraftImportCmd(),
		newDraftExportCmd(),
		newDraftDeleteCmd(),
	)
	return cmd
}

func newDraftListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored drafts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.draftStore(cmd.Context())
			if err != nil {
				return err
			}
			infos, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				if infos == nil {
					infos = []draft.Info{}
				}
				return printJSON(infos)
			}
			if len(infos) == 0 {
				printInfo("No drafts\n")
				return nil
			}
			w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tUPDATED\tSIZE")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%d\n", info.Name, info.UpdatedAt.Format("2006-01-02 15:04:05"), info.Size)
			}
			return w.Flush()
		},
	}
}

func newDraftNewCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new <draft>",
		Short: "Create an empty draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			if err := ensureNewDraft(ctx, name, force); err != nil {
				return err
			}
			if err := rt.saveDraft(ctx, name, rt.newEditor()); err != nil {
				return err
			}
			printInfo("Created draft %s\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing draft")
	return cmd
}

// ensureNewDraft fails when name already exists, unless force is set.
func ensureNewDraft(ctx context.Context, name string, force bool) error {
	if err := draft.ValidateName(name); err != nil {
		return err
	}
	if force {
		return nil
	}
	s, err := rt.draftStore(ctx)
	if err != nil {
		return err
	}
	_, err = s.Load(ctx, name)
	switch {
	case err == nil:
		return fmt.Errorf("draft %s already exists (use --force to overwrite)", name)
	case errors.Is(err, draft.ErrNotFound):
		return nil
	default:
		return err
	}
}

func newDraftShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <draft>",
		Short: "Print the hierarchy of a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := rt.loadDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			h := ed.Hierarchy()
			if jsonOut {
				return printJSON(h)
			}
			printTree(stdout, h)
			return nil
		},
	}
}

func printTree(w io.Writer, h hierarchy.Hierarchy) {
	if len(h) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	for _, g := range h {
		fmt.Fprintf(w, "%d. %s [%s]\n", g.Order, g.Title, g.ID)
		for _, l := range g.Levels {
			fmt.Fprintf(w, "  %d. %s [%s] xp=%d\n", l.Order, l.Title, l.ID, l.XPReward)
			for _, c := range l.Components {
				label := c.Type
				if c.DisplayName != "" {
					label = c.DisplayName + " (" + c.Type + ")"
				}
				fmt.Fprintf(w, "    %d. %s [%s]\n", c.Order, label, c.ID)
			}
		}
	}
}

func newDraftImportCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "import <draft> <file>",
		Short: "Create a draft from a serialized envelope or a bare hierarchy list",
		Long: `Import reads a JSON file (or stdin when file is "-") holding either a
serialized draft envelope or a bare list of level groups, and stores it as a draft.

Example:
  contentlab draft import spring ./spring.json
  cat tree.json | contentlab draft import spring - --force`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			data, err := readInput(args[1])
			if err != nil {
				return err
			}
			if err := ensureNewDraft(ctx, name, force); err != nil {
				return err
			}
			ed := rt.newEditor()
			if err := ed.Deserialize(string(data), false); err != nil {
				return err
			}
			if err := rt.saveDraft(ctx, name, ed); err != nil {
				return err
			}
			stats := ed.Stats()
			printInfo("Imported draft %s: %d groups, %d levels, %d components\n",
				name, stats.Groups, stats.Levels, stats.Components)
			if !ed.ValidateHierarchy() {
				printInfo("Warning: draft has validation issues, run `contentlab validate %s`\n", name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing draft")
	return cmd
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func newDraftExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <draft> [file]",
		Short: "Write the serialized draft envelope to a file or stdout",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := rt.loadDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := ed.Serialize()
			if err != nil {
				return err
			}
			if len(args) == 1 || args[1] == "-" {
				_, err = io.WriteString(stdout, data+"\n")
				return err
			}
			if err := os.WriteFile(args[1], []byte(data), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", args[1], err)
			}
			printInfo("Exported draft %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newDraftDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <draft>...",
		Aliases: []string{"rm"},
		Short:   "Delete drafts",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.draftStore(cmd.Context())
			if err != nil {
				return err
			}
			var failed []string
			for _, name := range args {
				if err := s.Delete(cmd.Context(), name); err != nil {
					printError("%v\n", err)
					failed = append(failed, name)
					continue
				}
				printInfo("Deleted draft %s\n", name)
			}
			if len(failed) > 0 {
				return fmt.Errorf("could not delete %s", strings.Join(failed, ", "))
			}
			return nil
		},
	}
}
