package world

import (
	"log/slog"
	"time"
)

// Updater applies world updates and consequence records to a dynamic world
// document. It reports whether the document changed so callers can skip
// persistence for no-op directives.
type Updater struct {
	world  *DynamicWorld
	logger *slog.Logger
	now    func() time.Time
}

// NewUpdater creates an updater for the given world document.
func NewUpdater(w *DynamicWorld, logger *slog.Logger) *Updater {
	return &Updater{
		world:  w,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Returns the Updater for chaining.
func (up *Updater) WithClock(now func() time.Time) *Updater {
	up.now = now
	return up
}

// Apply applies a single update to the world document and reports whether
// anything changed. Every operation is idempotent against its own
// already-applied effect: adding a present item, removing an absent skill,
// or re-setting the current location all leave the document untouched.
// Unknown update types and unknown characters are silent no-ops.
func (up *Updater) Apply(u *Update) bool {
	if u == nil {
		return false
	}

	c := up.world.FindCharacter(u.Character)
	if c == nil {
		if up.logger != nil {
			up.logger.Warn("Update names unknown character",
				"update_type", string(u.Type),
				"character", u.Character)
		}
		return false
	}

	switch u.Type {
	case UpdateItemAcquired:
		return appendIfAbsent(&c.Items, u.Item)
	case UpdateItemLost:
		return removeIfPresent(&c.Items, u.Item)
	case UpdateSkillAcquired:
		return appendIfAbsent(&c.SkillsOrPowers, u.Skill)
	case UpdateSkillLost:
		return removeIfPresent(&c.SkillsOrPowers, u.Skill)
	case UpdateLocationChange:
		if c.CurrentLocation == u.Location {
			return false
		}
		if up.logger != nil {
			up.logger.Info("Location changed",
				"character", c.Name,
				"from", c.CurrentLocation,
				"to", u.Location)
		}
		c.CurrentLocation = u.Location
		return true
	default:
		if up.logger != nil {
			up.logger.Debug("Ignoring unknown update type", "update_type", string(u.Type))
		}
		return false
	}
}

// ApplyConsequences applies a consequence record derived from a user
// action. Unlike Apply, this always changes the document: a user-generated
// timeline event is unconditionally appended. Journal fields are appended
// to, never overwritten.
func (up *Updater) ApplyConsequences(character, userAction string, c *Consequences) {
	at := up.now()

	if pc := up.world.FindCharacter(character); pc != nil {
		pc.EmotionalTrends = append(pc.EmotionalTrends, JournalEntry{
			At:     at,
			Action: userAction,
			Note:   c.EmotionalImpact,
		})
		pc.CharacterArc = append(pc.CharacterArc, JournalEntry{
			At:     at,
			Action: userAction,
			Note:   c.ArcDevelopment,
		})
		for _, item := range c.ItemsGained {
			appendIfAbsent(&pc.Items, item)
		}
		for _, item := range c.ItemsLost {
			removeIfPresent(&pc.Items, item)
		}
	} else if up.logger != nil {
		up.logger.Warn("Consequences name unknown character", "character", character)
	}

	up.world.Graph.Storyline.MainEvents = append(up.world.Graph.Storyline.MainEvents, TimelineEvent{
		Timestamp:     at.Format(time.RFC3339),
		Description:   "User action: " + userAction,
		ImpactLevel:   "medium",
		UserGenerated: true,
	})

	if c.StoryDirection != "" {
		up.world.AddEnding(
			"Story takes "+c.StoryDirection+" direction",
			[]string{"User chose " + c.StoryDirection + " path"},
			at,
		)
	}
}

func appendIfAbsent(list *[]string, v string) bool {
	if v == "" {
		return false
	}
	for _, it := range *list {
		if it == v {
			return false
		}
	}
	*list = append(*list, v)
	return true
}

func removeIfPresent(list *[]string, v string) bool {
	for i, it := range *list {
		if it == v {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}
