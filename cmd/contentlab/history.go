package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived publishes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			commits, err := rt.archive().History(rt.cfg.ArchiveChannel, limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(commits)
			}
			if len(commits) == 0 {
				printInfo("No publishes archived\n")
				return nil
			}
			w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "HASH\tDATE\tAUTHOR\tMESSAGE")
			for _, c := range commits {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Hash, c.CreatedAt.Format("2006-01-02 15:04"), c.Author, c.Message)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <revision>",
			Short: "Print the hierarchy of an archived publish",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				h, err := rt.archive().HierarchyAt(rt.cfg.ArchiveChannel, args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(h)
				}
				printTree(stdout, h)
				return nil
			},
		},
		&cobra.Command{
			Use:   "diff <from> <to>",
			Short: "Compare two archived publishes",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := rt.archive().Diff(rt.cfg.ArchiveChannel, args[0], args[1])
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(d)
				}
				printDiff(stdout, d)
				return nil
			},
		},
	)
	return cmd
}
