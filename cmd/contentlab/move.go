package main

import (
	"github.com/spf13/cobra"

	"github.com/Kutay07/ContentLab-sub000/internal/editor"
	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

// kindOf reports which collection id lives in.
func kindOf(ed *editor.Editor, id string) (string, error) {
	if _, ok := ed.LevelGroupByID(id); ok {
		return hierarchy.KindGroup, nil
	}
	if _, ok := ed.LevelByID(id); ok {
		return hierarchy.KindLevel, nil
	}
	if _, ok := ed.ComponentByID(id); ok {
		return hierarchy.KindComponent, nil
	}
	return "", &hierarchy.NotFoundError{Kind: "node", ID: id}
}

func newMoveCmd() *cobra.Command {
	var order int
	var to string
	cmd := &cobra.Command{
		Use:   "move <draft> <id>",
		Short: "Reposition a group, level or component",
		Long: `Move places the node at --order among its siblings. Levels and components
can change parent with --to. Positions past the end are clamped.

Example:
  contentlab move spring lvl-3 --order 0
  contentlab move spring cmp-9 --order 2 --to lvl-1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[1]
			var kind string
			_, err := rt.editDraft(cmd.Context(), args[0], func(ed *editor.Editor) error {
				var err error
				if kind, err = kindOf(ed, id); err != nil {
					return err
				}
				switch kind {
				case hierarchy.KindGroup:
					if to != "" {
						return errGroupParent
					}
					return ed.MoveLevelGroup(id, order)
				case hierarchy.KindLevel:
					return ed.MoveLevel(id, order, to)
				default:
					return ed.MoveComponent(id, order, to)
				}
			})
			if err != nil {
				return err
			}
			printInfo("Moved %s %s to position %d\n", kind, id, order)
			return nil
		},
	}
	cmd.Flags().IntVar(&order, "order", 0, "Target position")
	cmd.Flags().StringVar(&to, "to", "", "New parent group (levels) or level (components)")
	_ = cmd.MarkFlagRequired("order")
	return cmd
}
