package world

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Narrator responses mark world updates with a delimited JSON block:
//
//	[WORLD_UPDATE]{"update_type":"item_acquired","character":"Ron","item":"wand"}[/WORLD_UPDATE]
//
// The block is an internal channel between the model and the engine and is
// stripped from the text shown to the user.
var updateBlockPattern = regexp.MustCompile(`(?s)\[WORLD_UPDATE\](.*?)\[/WORLD_UPDATE\]`)

// ExtractUpdate locates the first world-update block in a model response
// and decodes it. It returns the decoded update (nil when no block exists
// or its interior is not valid JSON) and the response text with every
// update block removed, trimmed of surrounding whitespace.
//
// Malformed blocks never fail the turn: the caller treats nil as
// "no update" and shows the cleaned text as usual. When a response carries
// several blocks, only the first is honored.
func ExtractUpdate(text string) (*Update, string) {
	cleaned := strings.TrimSpace(updateBlockPattern.ReplaceAllString(text, ""))

	m := updateBlockPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, cleaned
	}

	var u Update
	if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &u); err != nil {
		return nil, cleaned
	}
	return &u, cleaned
}
