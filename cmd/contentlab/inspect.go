package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

var errInvalidDraft = errors.New("draft is invalid")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <draft>",
		Short: "Check a draft against the structural rules",
		Long: `Validate lists every structural problem in a draft: duplicate ids, missing
titles or types, negative XP rewards and order values. It exits non-zero when
problems are found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := rt.loadDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			verr := ed.ValidateHierarchyDetailed()
			var issues []hierarchy.Issue
			var ve *hierarchy.ValidationError
			if errors.As(verr, &ve) {
				issues = ve.Issues
			} else if verr != nil {
				return verr
			}

			if jsonOut {
				if issues == nil {
					issues = []hierarchy.Issue{}
				}
				if err := printJSON(map[string]any{"valid": len(issues) == 0, "issues": issues}); err != nil {
					return err
				}
			} else if len(issues) == 0 {
				printInfo("Draft %s is valid\n", args[0])
			} else {
				for _, issue := range issues {
					fmt.Fprintf(stdout, "%s\t%s\t%s\n", issue.Path, issue.Code, issue.Message)
				}
			}
			if len(issues) > 0 {
				return fmt.Errorf("%w: %d issue(s)", errInvalidDraft, len(issues))
			}
			return nil
		},
	}
}

func newRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair <draft>",
		Short: "Renumber orders densely and fill in missing child lists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := rt.loadDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := ed.RepairHierarchy(); err != nil {
				return err
			}
			if !ed.CanUndo() {
				printInfo("Draft %s needs no repair\n", args[0])
				return nil
			}
			if err := rt.saveDraft(cmd.Context(), args[0], ed); err != nil {
				return err
			}
			printInfo("Repaired draft %s\n", args[0])
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <draft>",
		Short: "Show node counts of a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := rt.loadDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			stats := ed.Stats()
			if jsonOut {
				return printJSON(stats)
			}
			printInfo("Groups:     %d\n", stats.Groups)
			printInfo("Levels:     %d\n", stats.Levels)
			printInfo("Components: %d\n", stats.Components)
			printInfo("Valid:      %t\n", ed.ValidateHierarchy())
			return nil
		},
	}
}
