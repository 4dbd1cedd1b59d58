package world

import "strings"

// Consequences is the richer, analysis-driven update record. Where an
// Update captures a single discrete event, Consequences summarizes the
// narrative fallout of a whole user action.
type Consequences struct {
	EmotionalImpact     string   `json:"emotional_impact"`
	ArcDevelopment      string   `json:"arc_development"`
	ItemsGained         []string `json:"items_gained,omitempty"`
	ItemsLost           []string `json:"items_lost,omitempty"`
	RelationshipChanges []string `json:"relationship_changes,omitempty"`
	StoryDirection      string   `json:"story_direction,omitempty"`
}

// Story directions produced by the keyword analyzer.
const (
	DirectionConflict   = "conflict"
	DirectionHeroic     = "heroic"
	DirectionSurvival   = "survival"
	DirectionDiplomatic = "diplomatic"
)

var directionKeywords = []struct {
	direction string
	impact    string
	arc       string
	words     []string
}{
	{
		direction: DirectionConflict,
		impact:    "Increased tension and aggression",
		arc:       "Character becomes more confrontational",
		words:     []string{"fight", "attack", "confront"},
	},
	{
		direction: DirectionHeroic,
		impact:    "Increased empathy and heroism",
		arc:       "Character develops heroic traits",
		words:     []string{"help", "save", "protect"},
	},
	{
		direction: DirectionSurvival,
		impact:    "Increased fear and caution",
		arc:       "Character becomes more cautious",
		words:     []string{"run", "escape", "hide"},
	},
	{
		direction: DirectionDiplomatic,
		impact:    "Increased diplomacy and wisdom",
		arc:       "Character becomes more diplomatic",
		words:     []string{"talk", "negotiate", "diplomacy"},
	},
}

// AnalyzeResponse derives consequences from a user message with simple
// keyword matching. The first matching direction group wins; a message with
// no matching keywords yields an empty record (no story direction, so no
// ending branch is created).
func AnalyzeResponse(userMessage string) *Consequences {
	lower := strings.ToLower(userMessage)
	for _, group := range directionKeywords {
		for _, word := range group.words {
			if strings.Contains(lower, word) {
				return &Consequences{
					EmotionalImpact: group.impact,
					ArcDevelopment:  group.arc,
					StoryDirection:  group.direction,
				}
			}
		}
	}
	return &Consequences{}
}
