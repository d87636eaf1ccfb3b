// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/roleplay/internal/chat"
	"github.com/jeranaias/roleplay/internal/config"
	"github.com/jeranaias/roleplay/internal/interview"
	"github.com/jeranaias/roleplay/internal/logging"
	"github.com/jeranaias/roleplay/internal/ollama"
	"github.com/jeranaias/roleplay/internal/scenario"
	"github.com/jeranaias/roleplay/internal/transcript"
)

// =============================================================================
// COMMAND LINE
// =============================================================================

func isolateConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"OLLAMA_HOST", "ROLEPLAY_MODEL", "ROLEPLAY_SAVE", "ROLEPLAY_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestExecuteAppliesFlags(t *testing.T) {
	isolateConfig(t)
	var got *config.Config
	run := func(_ context.Context, cfg *config.Config, _, _ io.Writer) error {
		got = cfg
		return nil
	}

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{
		"--model", "llama3:8b",
		"--ollama-host", "gpu:11500",
		"--save", "x.save",
		"--wrap", "60",
		"--temperature", "0.5",
		"--seed", "9",
		"--num-ctx", "8192",
		"--log-level", "debug",
		"--transcript", "t.db",
	}, &stdout, &stderr, run)

	require.Equal(t, ExitSuccess, code, stderr.String())
	require.NotNil(t, got)
	assert.Equal(t, "llama3:8b", got.Ollama.Model)
	assert.Equal(t, "http://gpu:11500", got.ClientConfig().BaseURL)
	assert.Equal(t, "x.save", got.Chat.SaveFile)
	assert.Equal(t, 60, got.Chat.WrapWidth)
	assert.Equal(t, 0.5, got.Params.Temperature)
	assert.Equal(t, 9, got.Params.Seed)
	assert.Equal(t, 8192, got.Params.NumCtx)
	assert.Equal(t, "debug", got.Log.Level)
	assert.Equal(t, "t.db", got.Transcript.Path)
}

func TestExecuteDefaultsWithoutFlags(t *testing.T) {
	isolateConfig(t)
	var got *config.Config
	code := execute(context.Background(), nil, io.Discard, io.Discard,
		func(_ context.Context, cfg *config.Config, _, _ io.Writer) error {
			got = cfg
			return nil
		})
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, config.DefaultModel, got.Ollama.Model)
	assert.Equal(t, config.DefaultSaveFile, got.Chat.SaveFile)
}

func TestExecuteExitCodes(t *testing.T) {
	isolateConfig(t)
	never := func(context.Context, *config.Config, io.Writer, io.Writer) error {
		t.Fatal("run should not be called")
		return nil
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"positional argument", []string{"extra"}, ExitUsageError},
		{"unknown flag", []string{"--frobnicate"}, ExitUsageError},
		{"bad flag value", []string{"--wrap", "wide"}, ExitUsageError},
		{"missing config file", []string{"--config", filepath.Join(t.TempDir(), "none.toml")}, ExitConfigError},
		{"invalid setting", []string{"--wrap", "-5"}, ExitConfigError},
		{"invalid log level", []string{"--log-level", "loud"}, ExitConfigError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			code := execute(context.Background(), tt.args, io.Discard, &stderr, never)
			assert.Equal(t, tt.want, code, stderr.String())
			assert.NotEmpty(t, stderr.String())
		})
	}
}

func TestExecuteVersion(t *testing.T) {
	isolateConfig(t)
	var stdout bytes.Buffer
	code := execute(context.Background(), []string{"--version"}, &stdout, io.Discard,
		func(context.Context, *config.Config, io.Writer, io.Writer) error {
			t.Fatal("run should not be called")
			return nil
		})
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout.String(), Version)
}

func TestExecuteRunError(t *testing.T) {
	isolateConfig(t)
	var stderr bytes.Buffer
	code := execute(context.Background(), nil, io.Discard, &stderr,
		func(context.Context, *config.Config, io.Writer, io.Writer) error {
			return &interview.IncompleteError{Kind: "scenario"}
		})
	assert.Equal(t, ExitIncomplete, code)
	assert.Equal(t, "expected information about scenario; exiting\n", stderr.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitGeneralError, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitIncomplete, GetExitCode(fmt.Errorf("wrapped: %w", &interview.IncompleteError{Kind: "us"})))
	assert.Equal(t, ExitUsageError, GetExitCode(&UsageError{Err: errors.New("x")}))
	assert.Equal(t, ExitConfigError, GetExitCode(&ConfigError{Err: errors.New("x")}))
	assert.Equal(t, ExitConfigError, GetExitCode(config.ValidationErrors{{Field: "a", Message: "b"}}))
}

func TestColorDecision(t *testing.T) {
	env := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}
	assert.False(t, colorDecision(env(map[string]string{"NO_COLOR": "1", "FORCE_COLOR": "1"}), true))
	assert.True(t, colorDecision(env(map[string]string{"FORCE_COLOR": "1"}), false))
	assert.True(t, colorDecision(env(nil), true))
	assert.False(t, colorDecision(env(nil), false))
}

// =============================================================================
// SESSION FLOW
// =============================================================================

// lines feeds scripted input, then io.EOF.
type lines struct{ queue []string }

func (l *lines) ReadLine(string) (string, error) {
	if len(l.queue) == 0 {
		return "", io.EOF
	}
	line := l.queue[0]
	l.queue = l.queue[1:]
	return line, nil
}

// concluding answers every round-trip with a roleplay block naming the
// round-trip.
type concluding struct{ systems []string }

func (c *concluding) ChatStream(_ context.Context, req ollama.ChatRequest, h ollama.FragmentHandler) error {
	c.systems = append(c.systems, req.Messages[0].Content)
	n := len(c.systems)
	reply := fmt.Sprintf("Thanks.\n```roleplay\nanswer %d\n```", n)
	if err := h(ollama.TextFragment(reply)); err != nil {
		return err
	}
	return h(ollama.NewFragment([]byte(`{"done":true}`)))
}

func newTestApp(t *testing.T, tr chat.Transport, input ...string) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Chat.SaveFile = filepath.Join(t.TempDir(), "test.save")
	var out, errOut bytes.Buffer
	return &app{
		cfg:       cfg,
		logger:    logging.Discard(),
		transport: tr,
		reader:    &lines{queue: input},
		out:       &out,
		errOut:    &errOut,
	}, &out, &errOut
}

func TestAppConductsInterviewsThenRoleplay(t *testing.T) {
	tr := &concluding{}
	a, out, _ := newTestApp(t, tr, "s", "a", "u", "us", "r", "hello")

	require.NoError(t, a.run(context.Background()))

	doc, err := scenario.NewStore(a.cfg.Chat.SaveFile).Load()
	require.NoError(t, err)
	assert.Equal(t,
		"<scenario>\nanswer 1\n</scenario>\n"+
			"<about assistant>\nanswer 2\n</about assistant>\n"+
			"<about user>\nanswer 3\n</about user>\n"+
			"<about us>\nanswer 4\n</about us>\n"+
			"<rules>\nanswer 5\n</rules>\n",
		doc)

	// the roleplay runs with the saved document as its system prompt
	require.Len(t, tr.systems, 6)
	assert.Equal(t, doc, tr.systems[5])
	assert.Contains(t, tr.systems[4], "<about us>\nanswer 4\n</about us>\n")

	assert.Contains(t, out.String(), "\nConducting scenario interview now...\n")
	assert.Contains(t, out.String(), "\nbeginning roleplay...\n")
}

func TestAppUsesSavedScenario(t *testing.T) {
	tr := &concluding{}
	a, out, errOut := newTestApp(t, tr, "hello")
	require.NoError(t, scenario.NewStore(a.cfg.Chat.SaveFile).Save("<scenario>\nsaved\n</scenario>\n"))

	require.NoError(t, a.run(context.Background()))

	assert.Equal(t, "save exists; using previous scenario\n", errOut.String())
	assert.NotContains(t, out.String(), "Conducting")
	require.Len(t, tr.systems, 1)
	assert.Equal(t, "<scenario>\nsaved\n</scenario>\n", tr.systems[0])
}

func TestAppIncompleteInterviewSavesNothing(t *testing.T) {
	tr := &concluding{}
	a, _, _ := newTestApp(t, tr, "s") // input ends during the second interview

	err := a.run(context.Background())
	var incomplete *interview.IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, "assistant", incomplete.Kind)
	assert.Equal(t, ExitIncomplete, GetExitCode(err))

	_, statErr := os.Stat(a.cfg.Chat.SaveFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAppRecordsTranscript(t *testing.T) {
	store, err := transcript.Open(filepath.Join(t.TempDir(), "t.db"))
	require.NoError(t, err)
	defer store.Close()

	tr := &concluding{}
	a, _, _ := newTestApp(t, tr)
	a.transcript = store

	conv := chat.NewConversation("m", ollama.Options{}, "system text")
	rec := a.recorder(context.Background(), "roleplay", conv)
	require.NotNil(t, rec)

	sess := rec.(*transcript.Session)
	require.NoError(t, sess.Record(ollama.NewUserMessage("hi"), "m"))

	entries, err := store.Messages(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "system text", entries[0].Content)
	assert.Equal(t, "hi", entries[1].Content)
}

// =============================================================================
// SPINNER
// =============================================================================

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBusySpinner(t *testing.T) {
	out := &lockedBuffer{}
	s := newBusySpinner(out, "thinking")

	s.Stop() // not running
	assert.Empty(t, out.String())

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	first := out.String()
	assert.Contains(t, first, "thinking")
	assert.True(t, strings.HasSuffix(first, "\r\033[K"), "stop must clear the line")

	s.Start()
	s.Stop()
	second := strings.TrimPrefix(out.String(), first)
	assert.Contains(t, second, "thinking")
	assert.True(t, strings.HasSuffix(second, "\r\033[K"))
}
