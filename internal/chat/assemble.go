// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/jeranaias/roleplay/internal/ollama"
	"github.com/jeranaias/roleplay/internal/wrap"
)

// =============================================================================
// ASSEMBLY
// =============================================================================

// Assemble folds the fragments of one reply into a single assistant message.
// Text payloads are concatenated in order; fragments without text add
// nothing.
func Assemble(fragments []ollama.Fragment) ollama.Message {
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	var b strings.Builder
	for _, f := range fragments {
		if text, ok := f.Text(); ok {
			b.WriteString(text)
		}
	}
	return ollama.NewAssistantMessage(b.String())
}

// Assembler collects fragments as they stream in and renders their text
// live. Rendering never changes the assembled content.
type Assembler struct {
	fragments []ollama.Fragment
	display   *wrap.Writer
}

// NewAssembler creates an assembler rendering to display, which may be nil.
func NewAssembler(display *wrap.Writer) *Assembler {
	return &Assembler{display: display}
}

// Add records a fragment and pushes its text to the display. It has the
// signature of ollama.FragmentHandler.
func (a *Assembler) Add(f ollama.Fragment) error {
	a.fragments = append(a.fragments, f)
	if a.display == nil {
		return nil
	}
	if text, ok := f.Text(); ok {
		return a.display.Push(text)
	}
	return nil
}

// Flush writes out any text the display is still holding.
func (a *Assembler) Flush() error {
	if a.display == nil {
		return nil
	}
	return a.display.Flush()
}

// Len returns the number of fragments received.
func (a *Assembler) Len() int {
	return len(a.fragments)
}

// Message returns the assembled reply.
func (a *Assembler) Message() ollama.Message {
	return Assemble(a.fragments)
}

// Stats returns the statistics from the final fragment, if it arrived.
func (a *Assembler) Stats() (ollama.StreamStats, bool) {
	for i := len(a.fragments) - 1; i >= 0; i-- {
		if a.fragments[i].Done() {
			return a.fragments[i].Stats(), true
		}
	}
	return ollama.StreamStats{}, false
}

// =============================================================================
// BLOCK EXTRACTION
// =============================================================================

// Delimiters of the block that concludes an interview.
const (
	BlockOpen  = "```roleplay\n"
	BlockClose = "\n```"
)

// ExtractBlock returns the body of the first complete roleplay block in
// content. An opening delimiter without a closing one is not a block yet.
func ExtractBlock(content string) (string, bool) {
	i := strings.Index(content, BlockOpen)
	if i < 0 {
		return "", false
	}
	rest := content[i+len(BlockOpen):]
	j := strings.Index(rest, BlockClose)
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}
