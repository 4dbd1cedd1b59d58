package world

import (
	"fmt"
	"strings"
)

// Progress summarizes how far a playthrough has drifted from the source
// book.
type Progress struct {
	TotalEvents         int `json:"total_events"`
	UserGeneratedEvents int `json:"user_generated_events"`
	AlternativeEndings  int `json:"alternative_endings_available"`
	StoryComplexity     int `json:"story_complexity"`
}

// Progress computes playthrough statistics from the world document.
func (w *DynamicWorld) Progress() Progress {
	userGenerated := 0
	for _, e := range w.Graph.Storyline.MainEvents {
		if e.UserGenerated {
			userGenerated++
		}
	}
	return Progress{
		TotalEvents:         len(w.Graph.Storyline.MainEvents),
		UserGeneratedEvents: userGenerated,
		AlternativeEndings:  len(w.AlternativeEndings),
		StoryComplexity:     len(w.AlternativeEndings) * 10,
	}
}

// EndingPreview is a display-ready summary of an alternative-ending branch.
type EndingPreview struct {
	ID          int      `json:"id"`
	Description string   `json:"description"`
	Preview     string   `json:"preview"`
	Conditions  []string `json:"conditions,omitempty"`
}

var directionPreviews = map[string]string{
	DirectionConflict:   "If you continue on this path, %s will face ultimate challenges that test your resolve.",
	DirectionHeroic:     "Following this heroic path, %s will become a legend remembered for generations.",
	DirectionSurvival:   "On this survival path, %s will discover hidden strengths and unexpected allies.",
	DirectionDiplomatic: "Through diplomacy, %s will unite factions and create lasting peace.",
}

// EndingPreviews returns display summaries for the most recent alternative
// endings (at most three), phrased for the given character.
func (w *DynamicWorld) EndingPreviews(character string) []EndingPreview {
	endings := w.AlternativeEndings
	if len(endings) > 3 {
		endings = endings[len(endings)-3:]
	}

	previews := make([]EndingPreview, 0, len(endings))
	for _, ending := range endings {
		// The branch description ends with its direction word,
		// e.g. "Story takes conflict direction".
		direction := ""
		if words := strings.Fields(ending.Description); len(words) >= 2 {
			direction = words[len(words)-2]
		}
		tmpl, ok := directionPreviews[direction]
		if !ok {
			tmpl = "This path leads %s to an unknown destiny."
		}
		previews = append(previews, EndingPreview{
			ID:          ending.ID,
			Description: ending.Description,
			Preview:     fmt.Sprintf(tmpl, character),
			Conditions:  ending.Conditions,
		})
	}
	return previews
}

// CharacterStatus renders a character's current state for display. Journal
// fields show only their most recent entry; full sequences stay in the
// document.
func (w *DynamicWorld) CharacterStatus(name string) string {
	c := w.FindCharacter(name)
	if c == nil {
		return "Character status unavailable."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s Status ===\n", c.Name)
	if len(c.PersonalityTraits) > 0 {
		fmt.Fprintf(&sb, "Traits: %s\n", strings.Join(c.PersonalityTraits, ", "))
	}
	if len(c.SkillsOrPowers) > 0 {
		fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(c.SkillsOrPowers, ", "))
	}
	if len(c.Items) > 0 {
		fmt.Fprintf(&sb, "Items: %s\n", strings.Join(c.Items, ", "))
	}
	if c.CurrentLocation != "" {
		fmt.Fprintf(&sb, "Location: %s\n", c.CurrentLocation)
	}
	if len(c.CharacterArc) > 0 {
		fmt.Fprintf(&sb, "Recent development: %s\n", c.CharacterArc[len(c.CharacterArc)-1].String())
	}
	if len(c.EmotionalTrends) > 0 {
		fmt.Fprintf(&sb, "Current emotional state: %s\n", c.EmotionalTrends[len(c.EmotionalTrends)-1].String())
	}
	return sb.String()
}
