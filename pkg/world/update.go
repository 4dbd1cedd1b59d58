package world

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UpdateType discriminates the world-update operations the narrator model
// may emit. Unknown values decode fine and apply as no-ops, so older
// engines tolerate newer vocabularies.
type UpdateType string

const (
	UpdateItemAcquired   UpdateType = "item_acquired"
	UpdateItemLost       UpdateType = "item_lost"
	UpdateSkillAcquired  UpdateType = "skill_acquired"
	UpdateSkillLost      UpdateType = "skill_lost"
	UpdateLocationChange UpdateType = "location_change"
)

// Update is a structured world-update directive parsed out of a model
// response. Exactly one of Item, Skill, or Location is meaningful,
// depending on Type.
type Update struct {
	Type      UpdateType `json:"update_type"`
	Character string     `json:"character"`
	Item      string     `json:"item,omitempty"`
	Skill     string     `json:"skill,omitempty"`
	Location  string     `json:"location,omitempty"`
}

// Known reports whether the update type is part of the supported
// vocabulary. Unknown types are applied as silent no-ops.
func (u *Update) Known() bool {
	switch u.Type {
	case UpdateItemAcquired, UpdateItemLost, UpdateSkillAcquired, UpdateSkillLost, UpdateLocationChange:
		return true
	}
	return false
}

// Label renders the update type for display, e.g. "item_acquired" becomes
// "Item Acquired".
func (t UpdateType) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(t), "_", " "))
}
