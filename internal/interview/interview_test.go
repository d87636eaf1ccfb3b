// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package interview

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scripted struct {
	results []any // string block, nil for no result, or error
	systems []string
}

func (s *scripted) RunInterview(_ context.Context, system string) (string, bool, error) {
	s.systems = append(s.systems, system)
	r := s.results[len(s.systems)-1]
	switch v := r.(type) {
	case string:
		return v, true, nil
	case error:
		return "", false, v
	default:
		return "", false, nil
	}
}

func descriptors(tags ...string) []Descriptor {
	ds := make([]Descriptor, len(tags))
	for i, tag := range tags {
		ds[i] = Descriptor{
			Kind:         tag,
			Introduction: "intro " + tag + "\n",
			Preamble:     []string{"common", "about " + tag},
			Tag:          tag,
		}
	}
	return ds
}

func TestConduct(t *testing.T) {
	runner := &scripted{results: []any{"X", "Y", "Z"}}
	var out bytes.Buffer

	doc, err := Conduct(context.Background(), &out, runner, descriptors("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, "<a>\nX\n</a>\n<b>\nY\n</b>\n<c>\nZ\n</c>\n", doc)

	require.Len(t, runner.systems, 3)
	assert.Equal(t, "common\nabout a", runner.systems[0])
	assert.Equal(t, "common\nabout b<a>\nX\n</a>\n", runner.systems[1])

	third := runner.systems[2]
	assert.Contains(t, third, "<a>\nX\n</a>\n")
	assert.Contains(t, third, "<b>\nY\n</b>\n")
	assert.NotContains(t, third, "Z")

	assert.Equal(t,
		"\nConducting a interview now...\nintro a\n\n"+
			"\nConducting b interview now...\nintro b\n\n"+
			"\nConducting c interview now...\nintro c\n\n",
		out.String())
}

func TestConductIncomplete(t *testing.T) {
	runner := &scripted{results: []any{"X", nil, "Z"}}

	doc, err := Conduct(context.Background(), io.Discard, runner, descriptors("a", "b", "c"))
	assert.Empty(t, doc)

	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, "b", incomplete.Kind)
	assert.Equal(t, "expected information about b", err.Error())
	assert.Len(t, runner.systems, 2, "later interviews must not run")
}

func TestConductRunnerError(t *testing.T) {
	boom := errors.New("stream broke")
	runner := &scripted{results: []any{boom}}

	_, err := Conduct(context.Background(), io.Discard, runner, descriptors("a", "b"))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "a interview")
}

func TestConductNone(t *testing.T) {
	doc, err := Conduct(context.Background(), io.Discard, RunnerFunc(func(context.Context, string) (string, bool, error) {
		t.Fatal("runner should not be called")
		return "", false, nil
	}), nil)
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestDefaults(t *testing.T) {
	ds := Defaults()
	require.Len(t, ds, 5)

	var kinds, tags []string
	for _, d := range ds {
		kinds = append(kinds, d.Kind)
		tags = append(tags, d.Tag)
		require.Len(t, d.Preamble, 2)
		assert.Equal(t, ds[0].Preamble[0], d.Preamble[0], "every interview shares the common preamble")
		assert.NotEmpty(t, strings.TrimSpace(d.Preamble[1]))
		assert.True(t, strings.HasSuffix(d.Introduction, "\n"))
	}
	assert.Equal(t, []string{"scenario", "assistant", "user", "us", "rules"}, kinds)
	assert.Equal(t, []string{"scenario", "about assistant", "about user", "about us", "rules"}, tags)
	assert.Contains(t, ds[0].Preamble[0], "```roleplay")
}
