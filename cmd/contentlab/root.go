package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	rt *runtime
)

func newRootCmd() *cobra.Command {
	verbose, quiet, jsonOut = false, false, false

	root := &cobra.Command{
		Use:   "contentlab",
		Short: "Edit and publish the ContentLab level hierarchy",
		Long: `contentlab edits level groups, levels and components inside named drafts,
checks them against the structural rules, and publishes the difference to the
content database in a single transaction.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRuntime()
			if err != nil {
				return err
			}
			rt = r
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt != nil {
				rt.close()
				rt = nil
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	root.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	root.AddCommand(
		newDraftCmd(),
		newGroupCmd(),
		newLevelCmd(),
		newComponentCmd(),
		newMoveCmd(),
		newRemoveCmd(),
		newValidateCmd(),
		newRepairCmd(),
		newStatsCmd(),
		newDiffCmd(),
		newPublishCmd(),
		newSearchCmd(),
		newHistoryCmd(),
		newMigrateCmd(),
	)
	return root
}

func execute() {
	root := newRootCmd()
	err := root.Execute()
	if rt != nil {
		rt.close()
		rt = nil
	}
	if err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

func printError(format string, args ...any) {
	fmt.Fprintf(stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
