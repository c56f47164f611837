// Package narrate bounds the text handed to speech synthesis. The free TTS
// proxy rejects oversized payloads and the paid backends bill per
// character, so over-long stories are clipped to a token budget before
// submission.
package narrate

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Clamp trims text to a fixed token budget.
type Clamp struct {
	tokenizer *tiktoken.Tiktoken
	maxTokens int
}

// New creates a Clamp with the given token budget.
func New(maxTokens int) (*Clamp, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("get tokenizer: %w", err)
	}
	return &Clamp{tokenizer: enc, maxTokens: maxTokens}, nil
}

// Trim returns the text unchanged when it fits the budget, otherwise the
// longest prefix within the budget, cut back to the last sentence or word
// boundary so narration never ends mid-word.
func (c *Clamp) Trim(text string) string {
	ids := c.tokenizer.Encode(text, nil, nil)
	if len(ids) <= c.maxTokens {
		return text
	}

	clipped := c.tokenizer.Decode(ids[:c.maxTokens])
	if i := strings.LastIndexAny(clipped, ".!?\n"); i > 0 {
		return clipped[:i+1]
	}
	if i := strings.LastIndex(clipped, " "); i > 0 {
		return clipped[:i]
	}
	return clipped
}

// Count returns the token count for a string.
func (c *Clamp) Count(text string) int {
	return len(c.tokenizer.Encode(text, nil, nil))
}
