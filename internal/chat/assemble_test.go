// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/roleplay/internal/ollama"
	"github.com/jeranaias/roleplay/internal/wrap"
)

func fragments(parts ...string) []ollama.Fragment {
	out := make([]ollama.Fragment, len(parts))
	for i, p := range parts {
		out[i] = ollama.TextFragment(p)
	}
	return out
}

func TestAssemble(t *testing.T) {
	t.Run("partitions agree", func(t *testing.T) {
		a := Assemble(fragments("Hel", "lo, ", "world!"))
		b := Assemble(fragments("Hello", ", world", "!"))
		assert.Equal(t, "Hello, world!", a.Content)
		assert.Equal(t, a, b)
		assert.Equal(t, ollama.RoleAssistant, a.Role)
	})

	t.Run("non-text fragments add nothing", func(t *testing.T) {
		fs := []ollama.Fragment{
			ollama.TextFragment("a"),
			ollama.NewFragment([]byte(`{"done":true,"eval_count":2}`)),
			ollama.TextFragment("b"),
		}
		assert.Equal(t, "ab", Assemble(fs).Content)
	})

	t.Run("empty", func(t *testing.T) {
		msg := Assemble(nil)
		assert.Equal(t, "", msg.Content)
		assert.Equal(t, ollama.RoleAssistant, msg.Role)
	})
}

func TestAssembler(t *testing.T) {
	var out bytes.Buffer
	asm := NewAssembler(wrap.New(&out, 80))

	for _, f := range fragments("The quick ", "brown fox") {
		require.NoError(t, asm.Add(f))
	}
	require.NoError(t, asm.Add(ollama.NewFragment([]byte(`{"done":true,"model":"m","eval_count":4}`))))
	assert.Equal(t, 3, asm.Len())

	// the trailing word is held until flush
	assert.Equal(t, "The quick brown", out.String())
	require.NoError(t, asm.Flush())
	assert.Equal(t, "The quick brown fox", out.String())

	assert.Equal(t, Assemble(fragments("The quick ", "brown fox")), asm.Message())

	stats, ok := asm.Stats()
	require.True(t, ok)
	assert.Equal(t, "m", stats.Model)
	assert.Equal(t, 4, stats.CompletionTokens)
}

func TestAssemblerWithoutDisplay(t *testing.T) {
	asm := NewAssembler(nil)
	require.NoError(t, asm.Add(ollama.TextFragment("x")))
	require.NoError(t, asm.Flush())
	assert.Equal(t, "x", asm.Message().Content)
	_, ok := asm.Stats()
	assert.False(t, ok)
}

func TestExtractBlock(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		found   bool
	}{
		{"surrounded", "intro ```roleplay\nBODY\n``` outro", "BODY", true},
		{"multi-line body", "```roleplay\nline one\nline two\n```", "line one\nline two", true},
		{"first block wins", "```roleplay\nA\n```\n```roleplay\nB\n```", "A", true},
		{"empty body", "```roleplay\n\n```", "", true},
		{"unterminated", "intro ```roleplay\nBODY", "", false},
		{"no header", "just talk", "", false},
		{"other fence", "```go\ncode\n```", "", false},
		{"header needs newline", "```roleplay BODY\n```", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractBlock(tt.content)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
