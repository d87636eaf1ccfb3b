// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vocabulary = Commands(":help", ":exit", ":quit", ":edit", ":retry", ":param")

func TestHint_Suffix(t *testing.T) {
	h := Hint{Display: ":param", CompleteUpTo: 4}

	for s := 0; s <= h.CompleteUpTo; s++ {
		got := h.Suffix(s)
		assert.Equal(t, h.Display[s:], got.Display, "strip %d", s)
		assert.Equal(t, h.CompleteUpTo-s, got.CompleteUpTo, "strip %d", s)
		assert.LessOrEqual(t, got.CompleteUpTo, len(got.Display))
	}

	// Stripping past the committable part floors at zero.
	got := h.Suffix(5)
	assert.Equal(t, "m", got.Display)
	assert.Equal(t, 0, got.CompleteUpTo)
	assert.Equal(t, "", got.Completion())
}

func TestHint_New(t *testing.T) {
	h := New(":help me", ":help")
	assert.Equal(t, 5, h.CompleteUpTo)
	assert.Equal(t, ":help", h.Completion())

	assert.Panics(t, func() { New(":help", ":exit") })
}

func TestProvider_Complete(t *testing.T) {
	p := NewProvider(vocabulary, nil)

	tests := []struct {
		name string
		line string
		pos  int
		want []string
	}{
		{"sigil only", ":", 1, []string{"help", "exit", "quit", "edit", "retry", "param"}},
		{"unique prefix", ":he", 3, []string{"lp"}},
		{"shared prefix", ":e", 2, []string{"xit", "dit"}},
		{"cursor mid-line", ":qzzz", 2, []string{"uit"}},
		{"no match", "hello", 5, nil},
		{"empty line", "", 0, []string{":help", ":exit", ":quit", ":edit", ":retry", ":param"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, h := range p.Complete(tt.line, tt.pos) {
				got = append(got, h.Display)
				assert.Equal(t, len(h.Display), h.CompleteUpTo)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvider_Hint(t *testing.T) {
	history := NewHistory(0)
	history.Add("tell me a story about dragons")
	history.Add(":edit")
	p := NewProvider(vocabulary, history)

	t.Run("history first", func(t *testing.T) {
		h, ok := p.Hint("tell me", 7)
		require.True(t, ok)
		assert.Equal(t, " a story about dragons", h.Display)
		assert.Equal(t, len(h.Display), h.CompleteUpTo)
	})

	t.Run("history beats vocabulary", func(t *testing.T) {
		h, ok := p.Hint(":e", 2)
		require.True(t, ok)
		assert.Equal(t, "dit", h.Display)
	})

	t.Run("vocabulary fallback", func(t *testing.T) {
		h, ok := p.Hint(":pa", 3)
		require.True(t, ok)
		assert.Equal(t, "ram", h.Display)
		assert.Equal(t, "ram", h.Completion())
	})

	t.Run("cursor not at end", func(t *testing.T) {
		_, ok := p.Hint(":pa", 1)
		assert.False(t, ok)
	})

	t.Run("empty line", func(t *testing.T) {
		_, ok := p.Hint("", 0)
		assert.False(t, ok)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := p.Hint("zzz", 3)
		assert.False(t, ok)
	})
}

func TestInsertsTab(t *testing.T) {
	assert.False(t, InsertsTab("", 0))
	assert.False(t, InsertsTab(":he", 3))
	assert.True(t, InsertsTab(":model ", 7))
	assert.True(t, InsertsTab("a\tb", 2))
	assert.False(t, InsertsTab("a b", 1))
}

func TestHistory(t *testing.T) {
	h := NewHistory(2)

	assert.True(t, h.Add("one"))
	assert.False(t, h.Add("one"), "consecutive duplicate")
	assert.False(t, h.Add(" secret"), "leading space")
	assert.False(t, h.Add("   "), "blank")
	assert.True(t, h.Add("two"))
	assert.True(t, h.Add("three"))

	assert.Equal(t, []string{"two", "three"}, h.Entries())
	assert.Equal(t, 2, h.Len())

	rest, ok := h.Lookup("th")
	require.True(t, ok)
	assert.Equal(t, "ree", rest)

	_, ok = h.Lookup("three")
	assert.False(t, ok, "exact match offers nothing to complete")
}
