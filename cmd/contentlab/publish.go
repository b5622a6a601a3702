package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
	"github.com/Kutay07/ContentLab-sub000/internal/publish"
)

func newPublishCmd() *cobra.Command {
	var dryRun, noArchive bool
	cmd := &cobra.Command{
		Use:   "publish <draft>",
		Short: "Write the changes of a draft to the content database",
		Long: `Publish fetches the hierarchy from the content database, validates the draft,
and runs the insert, update and delete statements that turn one into the other
inside a single transaction. Successful publishes are committed to the git
archive and pushed to the search index.

Example:
  contentlab publish spring --dry-run
  contentlab publish spring`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ed, err := rt.loadDraft(ctx, args[0])
			if err != nil {
				return err
			}
			pg, err := rt.postgres(ctx)
			if err != nil {
				return err
			}

			opts := []publish.Option{publish.WithSchema(rt.schema()), publish.WithLogger(rt.logger)}
			if !noArchive {
				opts = append(opts, publish.WithArchiver(rt.archive()))
			}
			if rt.cfg.MeiliURL != "" {
				svc, err := rt.searchService(ctx)
				if err != nil {
					return err
				}
				opts = append(opts, publish.WithIndexer(svc))
			}
			service := publish.NewService(pg, pg, opts...)

			var res publish.Result
			if dryRun {
				res, err = service.Plan(ctx, ed)
			} else {
				res, err = service.Publish(ctx, ed)
			}
			if err != nil {
				printPublishError(err)
				return err
			}
			rt.logger.Info("publish finished",
				zap.String("draft", args[0]),
				zap.String("outcome", string(res.Outcome)),
				zap.Int("statements", len(res.Statements)))
			if jsonOut {
				return printJSON(res)
			}
			printResult(res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the statements without executing them")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Skip the git archive commit")
	return cmd
}

func printPublishError(err error) {
	var ve *hierarchy.ValidationError
	if errors.As(err, &ve) {
		for _, msg := range ve.Messages() {
			printError("%s\n", msg)
		}
	}
}

func printResult(res publish.Result) {
	switch res.Outcome {
	case publish.OutcomeNoChanges:
		printInfo("Nothing to publish\n")
		return
	case publish.OutcomePlanned:
		printDiff(stdout, res.Diff)
		for _, s := range res.Statements {
			fmt.Fprintln(stdout, s.SQL)
		}
		return
	}
	printInfo("Published %d statement(s) in %s\n", len(res.Statements), res.Duration)
	printInfo("%d added, %d updated, %d moved, %d deleted\n",
		res.Diff.Added.Len(), res.Diff.Updated.Len(), res.Diff.Reparented.Len(), res.Diff.Deleted.Len())
	if res.ArchiveRef != "" {
		printInfo("Archived as %s\n", res.ArchiveRef)
	}
	for _, s := range res.Statements {
		printVerbose("%s\n", s.SQL)
	}
}
