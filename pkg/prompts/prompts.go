package prompts

// RoleplaySystemPrompt is the framing for every character chat turn. The
// placeholders are, in order: character name, character detail block,
// played character, world-update instructions, user language.
const RoleplaySystemPrompt = `You are roleplaying as %s from the story. Use the character's personality, talking style, and knowledge to respond to the user.

CHARACTER DETAILS:
%s

WORLD KNOWLEDGE:
The user is playing as %s.

IMPORTANT INSTRUCTIONS:
1. Stay in character at all times.
2. If your character wouldn't know something, don't pretend to know it.
3. When events occur that should update the world state, include a special JSON block:
%s
4. Use the user's preferred language: %s

CONVERSATION HISTORY:
`

// WorldUpdateInstructions is the contract for the delimited update block.
// The vocabulary here must stay in lockstep with the update types the
// engine applies; anything else the model emits is ignored.
const WorldUpdateInstructions = `[WORLD_UPDATE]
{"update_type": "<type>", "character": "<exact character name>", ...}
[/WORLD_UPDATE]

Supported update types and their fields:
- item_acquired: "character", "item" — the character gains an item
- item_lost: "character", "item" — the character loses an item
- skill_acquired: "character", "skill" — the character gains a skill or power
- skill_lost: "character", "skill" — the character loses a skill or power
- location_change: "character", "location" — the character moves somewhere

Emit at most one block per response, after your narrative text. Use the
character's exact name as it appears in the story. Do not mention the block
or the update mechanism in your narration.`
