package world

import "strings"

// BookInfo holds metadata about the source book the knowledge graph
// was extracted from.
type BookInfo struct {
	Title    string `json:"title" yaml:"title"`
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Summary  string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Character is a character record as produced by the offline graph builder.
// Records are immutable at runtime; mutable copies live in the DynamicWorld.
type Character struct {
	Name                 string   `json:"name" yaml:"name"`
	TalkingStyle         string   `json:"talking_style,omitempty" yaml:"talking_style,omitempty"`
	PersonalityTraits    []string `json:"personality_traits,omitempty" yaml:"personality_traits,omitempty"`
	SkillsOrPowers       []string `json:"skills_or_powers,omitempty" yaml:"skills_or_powers,omitempty"`
	Items                []string `json:"items,omitempty" yaml:"items,omitempty"`
	FactionsAffiliations []string `json:"factions_affiliations,omitempty" yaml:"factions_affiliations,omitempty"`
	Backstory            string   `json:"backstory,omitempty" yaml:"backstory,omitempty"`
	CharacterArc         string   `json:"character_arc,omitempty" yaml:"character_arc,omitempty"`
	EmotionalStateTrends string   `json:"emotional_state_trends,omitempty" yaml:"emotional_state_trends,omitempty"`
	Quotes               []string `json:"quotes,omitempty" yaml:"quotes,omitempty"`
}

// Relationship describes the connection between two characters.
type Relationship struct {
	CharacterA       string `json:"character_a" yaml:"character_a"`
	CharacterB       string `json:"character_b" yaml:"character_b"`
	RelationshipType string `json:"relationship_type,omitempty" yaml:"relationship_type,omitempty"`
	History          string `json:"history,omitempty" yaml:"history,omitempty"`
	CurrentDynamic   string `json:"current_dynamic,omitempty" yaml:"current_dynamic,omitempty"`
}

// Storyline is the narrative skeleton of the book: events, locations,
// motifs, and tension points.
type Storyline struct {
	MainEvents             []TimelineEvent `json:"main_events,omitempty" yaml:"main_events,omitempty"`
	Locations              []string        `json:"locations,omitempty" yaml:"locations,omitempty"`
	ConflictPoints         []string        `json:"conflict_points,omitempty" yaml:"conflict_points,omitempty"`
	Timeline               []string        `json:"timeline,omitempty" yaml:"timeline,omitempty"`
	ForeshadowingElements  []string        `json:"foreshadowing_elements,omitempty" yaml:"foreshadowing_elements,omitempty"`
	RecurringMotifsSymbols []string        `json:"recurring_motifs_symbols,omitempty" yaml:"recurring_motifs_symbols,omitempty"`
	NarrativeTensionPoints []string        `json:"narrative_tension_points,omitempty" yaml:"narrative_tension_points,omitempty"`
	ParallelStorylines     []string        `json:"parallel_storylines,omitempty" yaml:"parallel_storylines,omitempty"`
}

// TimelineEvent is a single entry in the storyline's main event list.
// Events appended during play carry UserGenerated=true; events from the
// source book carry only a description.
type TimelineEvent struct {
	Timestamp     string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Description   string `json:"description" yaml:"description"`
	ImpactLevel   string `json:"impact_level,omitempty" yaml:"impact_level,omitempty"`
	UserGenerated bool   `json:"user_generated,omitempty" yaml:"user_generated,omitempty"`
}

// KnowledgeGraph is the static, book-derived world description produced by
// the offline graph builder. It is read-only at runtime.
type KnowledgeGraph struct {
	BookInfo      BookInfo       `json:"book_info,omitempty" yaml:"book_info,omitempty"`
	Characters    []Character    `json:"characters" yaml:"characters"`
	Relationships []Relationship `json:"relationships,omitempty" yaml:"relationships,omitempty"`
	Storyline     Storyline      `json:"storyline,omitempty" yaml:"storyline,omitempty"`
}

// FindCharacter returns the character with the given name, matched
// case-insensitively. Selection flows (setup CLI, character picker) use
// this; world updates use DynamicWorld.FindCharacter, which is exact.
func (kg *KnowledgeGraph) FindCharacter(name string) *Character {
	for i := range kg.Characters {
		if strings.EqualFold(kg.Characters[i].Name, name) {
			return &kg.Characters[i]
		}
	}
	return nil
}
