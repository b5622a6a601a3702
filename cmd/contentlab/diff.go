package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kutay07/ContentLab-sub000/internal/diff"
	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
	"github.com/Kutay07/ContentLab-sub000/internal/statement"
)

func newDiffCmd() *cobra.Command {
	var revision string
	var showSQL bool
	cmd := &cobra.Command{
		Use:   "diff <draft>",
		Short: "Compare a draft with the published hierarchy",
		Long: `Diff compares a draft with the hierarchy currently in the content database,
or with an archived publish when --archive names a revision.

Example:
  contentlab diff spring
  contentlab diff spring --archive HEAD~1 --sql`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ed, err := rt.loadDraft(ctx, args[0])
			if err != nil {
				return err
			}
			base, err := loadBaseline(ctx, revision)
			if err != nil {
				return err
			}
			ed.SetBaseline(&base)
			d := ed.DiffWithBaselineDetailed()

			var stmts []statement.Statement
			if showSQL {
				stmts = statement.Generate(d, ed.Hierarchy(), rt.schema())
			}
			if jsonOut {
				return printJSON(map[string]any{"diff": d, "statements": stmts})
			}
			if d.IsEmpty() {
				printInfo("No changes\n")
				return nil
			}
			printDiff(stdout, d)
			for _, s := range stmts {
				fmt.Fprintln(stdout, s.SQL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&revision, "archive", "", "Compare with an archived revision instead of the database")
	cmd.Flags().BoolVar(&showSQL, "sql", false, "Print the statements a publish would run")
	return cmd
}

func loadBaseline(ctx context.Context, revision string) (hierarchy.Hierarchy, error) {
	if revision != "" {
		return rt.archive().HierarchyAt(rt.cfg.ArchiveChannel, revision)
	}
	pg, err := rt.postgres(ctx)
	if err != nil {
		return nil, err
	}
	return pg.FetchHierarchy(ctx)
}

func printDiff(w io.Writer, d diff.Detailed) {
	for _, g := range d.Added.Groups {
		fmt.Fprintf(w, "+ group     %s %q\n", g.ID, g.Title)
	}
	for _, l := range d.Added.Levels {
		fmt.Fprintf(w, "+ level     %s %q\n", l.ID, l.Title)
	}
	for _, c := range d.Added.Components {
		fmt.Fprintf(w, "+ component %s %s\n", c.ID, c.Type)
	}
	for _, c := range d.Updated.Groups {
		fmt.Fprintf(w, "~ group     %s [%s]\n", c.ID, strings.Join(c.Fields, ", "))
	}
	for _, c := range d.Updated.Levels {
		fmt.Fprintf(w, "~ level     %s [%s]\n", c.ID, strings.Join(c.Fields, ", "))
	}
	for _, c := range d.Updated.Components {
		fmt.Fprintf(w, "~ component %s [%s]\n", c.ID, strings.Join(c.Fields, ", "))
	}
	for _, r := range d.Reparented.Levels {
		fmt.Fprintf(w, "> level     %s %s -> %s\n", r.ID, r.From, r.To)
	}
	for _, r := range d.Reparented.Components {
		fmt.Fprintf(w, "> component %s %s -> %s\n", r.ID, r.From, r.To)
	}
	for _, c := range d.Deleted.Components {
		fmt.Fprintf(w, "- component %s %s\n", c.ID, c.Type)
	}
	for _, l := range d.Deleted.Levels {
		fmt.Fprintf(w, "- level     %s %q\n", l.ID, l.Title)
	}
	for _, g := range d.Deleted.Groups {
		fmt.Fprintf(w, "- group     %s %q\n", g.ID, g.Title)
	}
	fmt.Fprintf(w, "%d added, %d updated, %d moved, %d deleted\n",
		d.Added.Len(), d.Updated.Len(), d.Reparented.Len(), d.Deleted.Len())
}
