package prompts

import (
	"fmt"
	"strings"

	"github.com/storyloom/storyloom/pkg/chat"
	"github.com/storyloom/storyloom/pkg/world"
)

// Builder constructs the outbound completion prompt using a fluent
// interface. It is a pure reader of the world document: building a prompt
// never mutates or persists anything.
type Builder struct {
	world        *world.DynamicWorld
	character    string
	userMessage  string
	history      []chat.ChatMessage
	historyLimit int
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: chat.PromptHistoryLimit,
	}
}

// WithWorld sets the dynamic world document.
func (b *Builder) WithWorld(w *world.DynamicWorld) *Builder {
	b.world = w
	return b
}

// WithCharacter sets the character the user is talking to.
func (b *Builder) WithCharacter(name string) *Builder {
	b.character = name
	return b
}

// WithUserMessage sets the user's current message.
func (b *Builder) WithUserMessage(message string) *Builder {
	b.userMessage = message
	return b
}

// WithHistory sets the full conversation history. Build applies the
// per-character window.
func (b *Builder) WithHistory(history []chat.ChatMessage) *Builder {
	b.history = history
	return b
}

// WithHistoryLimit overrides the history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build renders the final prompt text.
func (b *Builder) Build() (string, error) {
	if b.world == nil {
		return "", fmt.Errorf("world document is required")
	}
	if b.character == "" {
		return "", fmt.Errorf("character is required")
	}

	c := b.world.FindCharacter(b.character)
	if c == nil {
		return "", fmt.Errorf("character %q not found in world document", b.character)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(RoleplaySystemPrompt,
		c.Name,
		characterDetails(c),
		b.world.User.CharacterPlayed,
		WorldUpdateInstructions,
		b.world.User.Language,
	))

	for _, msg := range chat.WindowForCharacter(b.history, b.character, b.historyLimit) {
		sender := c.Name
		if msg.Sender == chat.SenderUser {
			sender = "User"
		}
		sb.WriteString(sender + ": " + msg.Content + "\n")
	}

	if b.userMessage != "" {
		sb.WriteString("User: " + b.userMessage + "\n")
	}

	return sb.String(), nil
}

func characterDetails(c *world.PlayCharacter) string {
	lines := []string{
		"- Name: " + c.Name,
		"- Talking style: " + orUnspecified(c.TalkingStyle),
		"- Personality traits: " + joinOrNone(c.PersonalityTraits),
		"- Skills/powers: " + joinOrNone(c.SkillsOrPowers),
		"- Current items: " + joinOrNone(c.Items),
		"- Affiliations: " + joinOrNone(c.FactionsAffiliations),
	}
	if c.CurrentLocation != "" {
		lines = append(lines, "- Current location: "+c.CurrentLocation)
	}
	if len(c.EmotionalTrends) > 0 {
		lines = append(lines, "- Recent emotional state: "+c.EmotionalTrends[len(c.EmotionalTrends)-1].Note)
	}
	return strings.Join(lines, "\n")
}

func orUnspecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
