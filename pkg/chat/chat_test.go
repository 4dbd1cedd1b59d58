package chat

import (
	"fmt"
	"testing"
	"time"
)

func TestChatRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ChatRequest
		wantErr bool
	}{
		{"valid", ChatRequest{Character: "Ron", Message: "hello"}, false},
		{"empty message", ChatRequest{Character: "Ron"}, true},
		{"empty character defaults to played", ChatRequest{Message: "hello"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// 15 Ron turns interleaved with Harry turns: a new Ron prompt sees only
// user and Ron messages, capped to the most recent 10 of that filtered set.
func TestWindowForCharacter(t *testing.T) {
	now := time.Now()
	var history []ChatMessage
	for i := 0; i < 15; i++ {
		history = append(history,
			ChatMessage{Sender: SenderUser, Content: fmt.Sprintf("user %d", i), Timestamp: now},
			ChatMessage{Sender: SenderCharacter, Character: "Ron", Content: fmt.Sprintf("ron %d", i), Timestamp: now},
			ChatMessage{Sender: SenderCharacter, Character: "Harry", Content: fmt.Sprintf("harry %d", i), Timestamp: now},
		)
	}

	window := WindowForCharacter(history, "Ron", PromptHistoryLimit)

	if len(window) != PromptHistoryLimit {
		t.Fatalf("expected %d messages, got %d", PromptHistoryLimit, len(window))
	}
	for _, msg := range window {
		if msg.Sender != SenderUser && msg.Character != "Ron" {
			t.Errorf("unexpected message in window: %+v", msg)
		}
	}
	// The window holds the most recent filtered messages, ending with Ron's
	// latest line.
	if got := window[len(window)-1].Content; got != "ron 14" {
		t.Errorf("expected window to end with 'ron 14', got %q", got)
	}
	if got := window[0].Content; got != "user 10" {
		t.Errorf("expected window to start with 'user 10', got %q", got)
	}
}

func TestWindowForCharacter_ShortHistory(t *testing.T) {
	history := []ChatMessage{
		{Sender: SenderUser, Content: "hi"},
		{Sender: SenderCharacter, Character: "Ron", Content: "hello"},
	}
	window := WindowForCharacter(history, "Ron", PromptHistoryLimit)
	if len(window) != 2 {
		t.Errorf("expected 2 messages, got %d", len(window))
	}
}

func TestWindowForCharacter_NoLimit(t *testing.T) {
	history := []ChatMessage{
		{Sender: SenderUser, Content: "a"},
		{Sender: SenderCharacter, Character: "Ron", Content: "b"},
		{Sender: SenderCharacter, Character: "Harry", Content: "c"},
	}
	window := WindowForCharacter(history, "Ron", 0)
	if len(window) != 2 {
		t.Errorf("expected filter without cap, got %d messages", len(window))
	}
}
