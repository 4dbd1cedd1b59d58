package world

import (
	"fmt"
	"time"
)

// UserProfile records the session setup choices. It is written once at
// character-selection time and never mutated during chat.
type UserProfile struct {
	Language        string `json:"language"`
	CharacterPlayed string `json:"character_played"`
}

// JournalEntry is one timestamped entry in a character's emotional-trend or
// character-arc journal. Entries are only ever appended; rendering to a
// display string happens at the presentation boundary.
type JournalEntry struct {
	At     time.Time `json:"at"`
	Action string    `json:"action,omitempty"`
	Note   string    `json:"note"`
}

func (e JournalEntry) String() string {
	if e.Action != "" {
		return fmt.Sprintf("[%s] %s: %s", e.At.Format("2006-01-02 15:04:05"), e.Action, e.Note)
	}
	return fmt.Sprintf("[%s] %s", e.At.Format("2006-01-02 15:04:05"), e.Note)
}

// PlayCharacter is the mutable, per-player copy of a character record.
// Items and SkillsOrPowers behave as sets (append-if-absent,
// remove-if-present); CurrentLocation is last-write-wins.
type PlayCharacter struct {
	Name                 string         `json:"name"`
	TalkingStyle         string         `json:"talking_style,omitempty"`
	PersonalityTraits    []string       `json:"personality_traits,omitempty"`
	SkillsOrPowers       []string       `json:"skills_or_powers,omitempty"`
	Items                []string       `json:"items,omitempty"`
	FactionsAffiliations []string       `json:"factions_affiliations,omitempty"`
	Backstory            string         `json:"backstory,omitempty"`
	Quotes               []string       `json:"quotes,omitempty"`
	CurrentLocation      string         `json:"current_location,omitempty"`
	CharacterArc         []JournalEntry `json:"character_arc,omitempty"`
	EmotionalTrends      []JournalEntry `json:"emotional_state_trends,omitempty"`
}

// HasItem reports whether the character currently holds the item.
func (c *PlayCharacter) HasItem(item string) bool {
	for _, it := range c.Items {
		if it == item {
			return true
		}
	}
	return false
}

// HasSkill reports whether the character currently has the skill.
func (c *PlayCharacter) HasSkill(skill string) bool {
	for _, s := range c.SkillsOrPowers {
		if s == skill {
			return true
		}
	}
	return false
}

// UserGraph is the per-player view of the knowledge graph carried inside
// the dynamic world document.
type UserGraph struct {
	Characters    []PlayCharacter `json:"characters"`
	Relationships []Relationship  `json:"relationships,omitempty"`
	Storyline     Storyline       `json:"storyline,omitempty"`
}

// Ending is one alternative-ending branch discovered during play. IDs are
// assigned from the document's ending counter and are never reused, even
// after branches are removed.
type Ending struct {
	ID               int       `json:"id"`
	Description      string    `json:"description"`
	Conditions       []string  `json:"conditions,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	StorylineChanges []string  `json:"storyline_changes,omitempty"`
}

// DynamicWorld is the single mutable state root for a playthrough. It is
// created once from the static knowledge graph at character-selection time,
// mutated once per chat turn, and deleted wholesale on reset.
//
// Version is incremented by the storage layer on every save and checked on
// write, so a stale in-memory copy cannot silently clobber a newer one.
type DynamicWorld struct {
	Version            int         `json:"version"`
	User               UserProfile `json:"user"`
	Graph              UserGraph   `json:"user_specific_knowledge_graph"`
	AlternativeEndings []Ending    `json:"alternative_endings,omitempty"`
	EndingCounter      int         `json:"ending_counter,omitempty"`
}

// NewDynamicWorld builds a fresh dynamic world document from the static
// knowledge graph for the given played character and language. Character
// list entries are deep-copied so later mutation never reaches back into
// the graph.
func NewDynamicWorld(kg *KnowledgeGraph, characterPlayed, language string) (*DynamicWorld, error) {
	selected := kg.FindCharacter(characterPlayed)
	if selected == nil {
		return nil, fmt.Errorf("character %q not found in knowledge graph", characterPlayed)
	}
	if language == "" {
		language = "English"
	}

	chars := make([]PlayCharacter, 0, len(kg.Characters))
	for _, c := range kg.Characters {
		pc := PlayCharacter{
			Name:                 c.Name,
			TalkingStyle:         c.TalkingStyle,
			PersonalityTraits:    copyStrings(c.PersonalityTraits),
			SkillsOrPowers:       copyStrings(c.SkillsOrPowers),
			Items:                copyStrings(c.Items),
			FactionsAffiliations: copyStrings(c.FactionsAffiliations),
			Backstory:            c.Backstory,
			Quotes:               copyStrings(c.Quotes),
		}
		if c.CharacterArc != "" {
			pc.CharacterArc = []JournalEntry{{Note: c.CharacterArc}}
		}
		if c.EmotionalStateTrends != "" {
			pc.EmotionalTrends = []JournalEntry{{Note: c.EmotionalStateTrends}}
		}
		chars = append(chars, pc)
	}

	return &DynamicWorld{
		User: UserProfile{
			Language:        language,
			CharacterPlayed: selected.Name,
		},
		Graph: UserGraph{
			Characters:    chars,
			Relationships: append([]Relationship(nil), kg.Relationships...),
			Storyline:     copyStoryline(kg.Storyline),
		},
	}, nil
}

// FindCharacter returns the first character whose name matches exactly,
// or nil. World updates identify characters by exact, case-sensitive name;
// duplicates beyond the first match are untouched.
func (w *DynamicWorld) FindCharacter(name string) *PlayCharacter {
	for i := range w.Graph.Characters {
		if w.Graph.Characters[i].Name == name {
			return &w.Graph.Characters[i]
		}
	}
	return nil
}

// AddEnding appends a new alternative-ending branch with the next
// monotonically assigned id.
func (w *DynamicWorld) AddEnding(description string, conditions []string, at time.Time) *Ending {
	w.EndingCounter++
	w.AlternativeEndings = append(w.AlternativeEndings, Ending{
		ID:          w.EndingCounter,
		Description: description,
		Conditions:  conditions,
		CreatedAt:   at,
	})
	return &w.AlternativeEndings[len(w.AlternativeEndings)-1]
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func copyStoryline(s Storyline) Storyline {
	return Storyline{
		MainEvents:             append([]TimelineEvent(nil), s.MainEvents...),
		Locations:              copyStrings(s.Locations),
		ConflictPoints:         copyStrings(s.ConflictPoints),
		Timeline:               copyStrings(s.Timeline),
		ForeshadowingElements:  copyStrings(s.ForeshadowingElements),
		RecurringMotifsSymbols: copyStrings(s.RecurringMotifsSymbols),
		NarrativeTensionPoints: copyStrings(s.NarrativeTensionPoints),
		ParallelStorylines:     copyStrings(s.ParallelStorylines),
	}
}
