package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Kutay07/ContentLab-sub000/internal/editor"
	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

var errGroupParent = errors.New("level groups have no parent; --to is not allowed")

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <draft> <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete groups, levels or components together with their children",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := args[1:]
			_, err := rt.editDraft(cmd.Context(), args[0], func(ed *editor.Editor) error {
				ed.BeginTransaction("remove")
				for _, id := range ids {
					kind, err := kindOf(ed, id)
					if err == nil {
						err = removeNode(ed, kind, id)
					}
					if err != nil {
						ed.RollbackTransaction()
						return err
					}
				}
				ed.EndTransaction()
				return nil
			})
			if err != nil {
				return err
			}
			for _, id := range ids {
				printInfo("Removed %s\n", id)
			}
			return nil
		},
	}
}

func removeNode(ed *editor.Editor, kind, id string) error {
	switch kind {
	case hierarchy.KindGroup:
		return ed.DeleteLevelGroup(id)
	case hierarchy.KindLevel:
		return ed.DeleteLevel(id)
	default:
		return ed.DeleteComponent(id)
	}
}
