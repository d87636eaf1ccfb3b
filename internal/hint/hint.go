// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hint provides completion candidates and inline hints for the
// interactive shell.
//
// Everything here is a pure function of the input line, the cursor position,
// the static command vocabulary and the input history. Wiring the results
// into a terminal line editor is done by package lineedit.
package hint

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// =============================================================================
// HINT TYPE
// =============================================================================

// Hint is a completion candidate or a piece of inline ghost text.
//
// CompleteUpTo is the number of leading bytes of Display that may be
// committed to the line. Zero means the hint is for display only.
type Hint struct {
	Display      string
	CompleteUpTo int
}

// New creates a hint displaying text whose committable part is completeUpTo.
// It panics if text does not start with completeUpTo.
func New(text, completeUpTo string) Hint {
	if !strings.HasPrefix(text, completeUpTo) {
		panic("hint: " + text + " does not start with " + completeUpTo)
	}
	return Hint{Display: text, CompleteUpTo: len(completeUpTo)}
}

// Suffix returns the hint with its first n bytes stripped.
func (h Hint) Suffix(n int) Hint {
	if n > len(h.Display) {
		n = len(h.Display)
	}
	rest := h.CompleteUpTo - n
	if rest < 0 {
		rest = 0
	}
	return Hint{Display: h.Display[n:], CompleteUpTo: rest}
}

// Completion returns the committable part of the hint, or "" if none.
func (h Hint) Completion() string {
	if h.CompleteUpTo <= 0 {
		return ""
	}
	return h.Display[:h.CompleteUpTo]
}

// Commands builds fully committable hints for each command name.
func Commands(names ...string) []Hint {
	hints := make([]Hint, 0, len(names))
	for _, name := range names {
		hints = append(hints, New(name, name))
	}
	return hints
}

// =============================================================================
// PROVIDER
// =============================================================================

// Provider combines a static command vocabulary with input history.
type Provider struct {
	// Commands are offered by Complete.
	Commands []Hint
	// Hints are the static fallback for Hint when history has no match.
	Hints []Hint
	// History supplies previously entered lines. May be nil.
	History *History
}

// NewProvider creates a provider whose completions and hints both come from
// the given command vocabulary.
func NewProvider(commands []Hint, history *History) *Provider {
	return &Provider{
		Commands: commands,
		Hints:    commands,
		History:  history,
	}
}

// Complete returns the candidates whose display starts with the text before
// the cursor. Each candidate has the already-typed prefix stripped.
func (p *Provider) Complete(line string, pos int) []Hint {
	pos = clamp(pos, len(line))
	prefix := line[:pos]

	var out []Hint
	for _, h := range p.Commands {
		if strings.HasPrefix(h.Display, prefix) {
			out = append(out, h.Suffix(pos))
		}
	}
	return out
}

// Hint returns inline ghost text for the line. Hints are only offered with
// the cursor at the end of a non-empty line.
func (p *Provider) Hint(line string, pos int) (Hint, bool) {
	if line == "" || pos < len(line) {
		return Hint{}, false
	}

	if p.History != nil {
		if rest, ok := p.History.Lookup(line); ok {
			return New(rest, rest), true
		}
	}

	for _, h := range p.Hints {
		if strings.HasPrefix(h.Display, line) {
			return h.Suffix(pos), true
		}
	}
	return Hint{}, false
}

// InsertsTab reports whether a Tab keystroke at pos should insert a literal
// tab rather than trigger completion: that is the case right after
// whitespace.
func InsertsTab(line string, pos int) bool {
	pos = clamp(pos, len(line))
	if pos == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(line[:pos])
	return unicode.IsSpace(r)
}

func clamp(pos, n int) int {
	if pos < 0 {
		return 0
	}
	if pos > n {
		return n
	}
	return pos
}
