package diff

import "github.com/Kutay07/ContentLab-sub000/internal/hierarchy"

// Tracked field names. They double as the external store column names,
// except for order.
const (
	FieldTitle       = "title"
	FieldOrder       = "order"
	FieldIconKey     = "icon_key"
	FieldIconFamily  = "icon_family"
	FieldXPReward    = "xp_reward"
	FieldType        = "type"
	FieldDisplayName = "display_name"
	FieldContent     = "content"
)

// GroupFields lists the tracked group fields that differ: title, order.
func GroupFields(before, after hierarchy.LevelGroup) []string {
	var fields []string
	if before.Title != after.Title {
		fields = append(fields, FieldTitle)
	}
	if before.Order != after.Order {
		fields = append(fields, FieldOrder)
	}
	return fields
}

// LevelFields lists the tracked level fields that differ: title, icon_key,
// icon_family, xp_reward, order.
func LevelFields(before, after hierarchy.Level) []string {
	var fields []string
	if before.Title != after.Title {
		fields = append(fields, FieldTitle)
	}
	if !hierarchy.EqualOptional(before.IconKey, after.IconKey) {
		fields = append(fields, FieldIconKey)
	}
	if !hierarchy.EqualOptional(before.IconFamily, after.IconFamily) {
		fields = append(fields, FieldIconFamily)
	}
	if before.XPReward != after.XPReward {
		fields = append(fields, FieldXPReward)
	}
	if before.Order != after.Order {
		fields = append(fields, FieldOrder)
	}
	return fields
}

// ComponentFields lists the tracked component fields that differ: type,
// display_name, content, order.
func ComponentFields(before, after hierarchy.Component) []string {
	var fields []string
	if before.Type != after.Type {
		fields = append(fields, FieldType)
	}
	if before.DisplayName != after.DisplayName {
		fields = append(fields, FieldDisplayName)
	}
	if !before.Content.Equal(after.Content) {
		fields = append(fields, FieldContent)
	}
	if before.Order != after.Order {
		fields = append(fields, FieldOrder)
	}
	return fields
}
