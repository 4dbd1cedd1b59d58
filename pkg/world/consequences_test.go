package world

import "testing"

func TestAnalyzeResponse(t *testing.T) {
	tests := []struct {
		name          string
		message       string
		wantDirection string
	}{
		{"confrontation", "I attack the guard at the gate", DirectionConflict},
		{"heroism", "I rush to help the villagers", DirectionHeroic},
		{"flight", "We should hide until the patrol passes", DirectionSurvival},
		{"diplomacy", "Let me negotiate with the captain", DirectionDiplomatic},
		{"keyword is case-insensitive", "FIGHT ME", DirectionConflict},
		{"no keywords", "I look around the room", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeResponse(tt.message)
			if got.StoryDirection != tt.wantDirection {
				t.Errorf("AnalyzeResponse(%q).StoryDirection = %q, want %q",
					tt.message, got.StoryDirection, tt.wantDirection)
			}
			if tt.wantDirection != "" && got.EmotionalImpact == "" {
				t.Error("expected an emotional impact for matched direction")
			}
			if tt.wantDirection == "" && got.EmotionalImpact != "" {
				t.Errorf("expected empty record, got %+v", got)
			}
		})
	}
}

func TestUpdateTypeLabel(t *testing.T) {
	if got := UpdateItemAcquired.Label(); got != "Item Acquired" {
		t.Errorf("expected 'Item Acquired', got %q", got)
	}
	if got := UpdateLocationChange.Label(); got != "Location Change" {
		t.Errorf("expected 'Location Change', got %q", got)
	}
}
