package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kutay07/ContentLab-sub000/internal/editor"
	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
	"github.com/Kutay07/ContentLab-sub000/internal/util"
)

// insertOptions turns an --order flag into an insert position.
func insertOptions(cmd *cobra.Command, order int) []editor.InsertOption {
	if cmd.Flags().Changed("order") {
		return []editor.InsertOption{editor.AtOrder(order)}
	}
	return nil
}

func idOrNew(id string) string {
	if id != "" {
		return id
	}
	return util.NewID("")
}

func optionalString(cmd *cobra.Command, flag, value string) editor.Field[*string] {
	if !cmd.Flags().Changed(flag) {
		return editor.Field[*string]{}
	}
	if value == "" {
		return editor.Set[*string](nil)
	}
	return editor.Set(hierarchy.StringPtr(value))
}

func stringField(cmd *cobra.Command, flag, value string) editor.Field[string] {
	if !cmd.Flags().Changed(flag) {
		return editor.Field[string]{}
	}
	return editor.Set(value)
}

func intField(cmd *cobra.Command, flag string, value int) editor.Field[int] {
	if !cmd.Flags().Changed(flag) {
		return editor.Field[int]{}
	}
	return editor.Set(value)
}

func newGroupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Add or update level groups",
	}

	var id, title string
	var order int
	add := &cobra.Command{
		Use:   "add <draft>",
		Short: "Add a level group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group := hierarchy.LevelGroup{ID: idOrNew(id), Title: title}
			_, err := rt.editDraft(cmd.Context(), args[0], func(ed *editor.Editor) error {
				return ed.AddLevelGroup(group, insertOptions(cmd, order)...)
			})
			if err != nil {
				return err
			}
			printInfo("Added group %s\n", group.ID)
			return nil
		},
	}
	add.Flags().StringVar(&id, "id", "", "Group id (default: new UUID)")
	add.Flags().StringVar(&title, "title", "", "Group title")
	add.Flags().IntVar(&order, "order", 0, "Position among groups (default: append)")
	_ = add.MarkFlagRequired("title")

	var newTitle string
	var newOrder int
	update := &cobra.Command{
		Use:   "update <draft> <group-id>",
		Short: "Change the title or position of a level group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := editor.GroupPatch{
				Title: stringField(cmd, "title", newTitle),
				Order: intField(cmd, "order", newOrder),
			}
			return runUpdate(cmd, args, func(ed *editor.Editor) error {
				return ed.UpdateLevelGroup(args[1], patch)
			})
		},
	}
	update.Flags().StringVar(&newTitle, "title", "", "New title")
	update.Flags().IntVar(&newOrder, "order", 0, "New position")

	cmd.AddCommand(add, update)
	return cmd
}

func newLevelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "level",
		Short: "Add or update levels",
	}

	var id, title, iconKey, iconFamily string
	var xp, order int
	add := &cobra.Command{
		Use:   "add <draft> <group-id>",
		Short: "Add a level to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := hierarchy.Level{ID: idOrNew(id), Title: title, XPReward: xp}
			if iconKey != "" {
				level.IconKey = hierarchy.StringPtr(iconKey)
			}
			if iconFamily != "" {
				level.IconFamily = hierarchy.StringPtr(iconFamily)
			}
			_, err := rt.editDraft(cmd.Context(), args[0], func(ed *editor.Editor) error {
				return ed.AddLevel(args[1], level, insertOptions(cmd, order)...)
			})
			if err != nil {
				return err
			}
			printInfo("Added level %s to group %s\n", level.ID, args[1])
			return nil
		},
	}
	add.Flags().StringVar(&id, "id", "", "Level id (default: new UUID)")
	add.Flags().StringVar(&title, "title", "", "Level title")
	add.Flags().StringVar(&iconKey, "icon-key", "", "Icon key")
	add.Flags().StringVar(&iconFamily, "icon-family", "", "Icon family")
	add.Flags().IntVar(&xp, "xp", 0, "XP reward")
	add.Flags().IntVar(&order, "order", 0, "Position within the group (default: append)")
	_ = add.MarkFlagRequired("title")

	var newTitle, newIconKey, newIconFamily string
	var newXP, newOrder int
	update := &cobra.Command{
		Use:   "update <draft> <level-id>",
		Short: "Change level fields; an empty icon value clears it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := editor.LevelPatch{
				Title:      stringField(cmd, "title", newTitle),
				IconKey:    optionalString(cmd, "icon-key", newIconKey),
				IconFamily: optionalString(cmd, "icon-family", newIconFamily),
				XPReward:   intField(cmd, "xp", newXP),
				Order:      intField(cmd, "order", newOrder),
			}
			return runUpdate(cmd, args, func(ed *editor.Editor) error {
				return ed.UpdateLevel(args[1], patch)
			})
		},
	}
	update.Flags().StringVar(&newTitle, "title", "", "New title")
	update.Flags().StringVar(&newIconKey, "icon-key", "", "New icon key")
	update.Flags().StringVar(&newIconFamily, "icon-family", "", "New icon family")
	update.Flags().IntVar(&newXP, "xp", 0, "New XP reward")
	update.Flags().IntVar(&newOrder, "order", 0, "New position")

	cmd.AddCommand(add, update)
	return cmd
}

func newComponentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "component",
		Short: "Add or update components",
	}

	var id, typ, name, content string
	var order int
	add := &cobra.Command{
		Use:   "add <draft> <level-id>",
		Short: "Add a component to a level",
		Long: `Add a component to a level. --content takes any JSON value and is stored
untouched.

Example:
  contentlab component add spring lvl-1 --type text --content '{"body":"Hello"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			component := hierarchy.Component{ID: idOrNew(id), Type: typ, DisplayName: name}
			if content != "" {
				c, err := hierarchy.ParseContent([]byte(content))
				if err != nil {
					return fmt.Errorf("--content: %w", err)
				}
				component.Content = c
			}
			_, err := rt.editDraft(cmd.Context(), args[0], func(ed *editor.Editor) error {
				return ed.AddComponent(args[1], component, insertOptions(cmd, order)...)
			})
			if err != nil {
				return err
			}
			printInfo("Added component %s to level %s\n", component.ID, args[1])
			return nil
		},
	}
	add.Flags().StringVar(&id, "id", "", "Component id (default: new UUID)")
	add.Flags().StringVar(&typ, "type", "", "Component type")
	add.Flags().StringVar(&name, "name", "", "Display name")
	add.Flags().StringVar(&content, "content", "", "Content as JSON")
	add.Flags().IntVar(&order, "order", 0, "Position within the level (default: append)")
	_ = add.MarkFlagRequired("type")

	var newType, newName, newContent string
	var newOrder int
	update := &cobra.Command{
		Use:   "update <draft> <component-id>",
		Short: "Change component fields",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := editor.ComponentPatch{
				Type:        stringField(cmd, "type", newType),
				DisplayName: stringField(cmd, "name", newName),
				Order:       intField(cmd, "order", newOrder),
			}
			if cmd.Flags().Changed("content") {
				c, err := hierarchy.ParseContent([]byte(newContent))
				if err != nil {
					return fmt.Errorf("--content: %w", err)
				}
				patch.Content = editor.Set(c)
			}
			return runUpdate(cmd, args, func(ed *editor.Editor) error {
				return ed.UpdateComponent(args[1], patch)
			})
		},
	}
	update.Flags().StringVar(&newType, "type", "", "New type")
	update.Flags().StringVar(&newName, "name", "", "New display name")
	update.Flags().StringVar(&newContent, "content", "", "New content as JSON")
	update.Flags().IntVar(&newOrder, "order", 0, "New position")

	cmd.AddCommand(add, update)
	return cmd
}

// runUpdate applies fn to the draft in args[0] and reports whether anything
// changed. Loaded drafts start with an empty undo stack.
func runUpdate(cmd *cobra.Command, args []string, fn func(*editor.Editor) error) error {
	ed, err := rt.editDraft(cmd.Context(), args[0], fn)
	if err != nil {
		return err
	}
	if !ed.CanUndo() {
		printInfo("No changes to %s\n", args[1])
		return nil
	}
	printInfo("Updated %s\n", args[1])
	return nil
}
