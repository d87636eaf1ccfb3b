// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lineedit provides the interactive line editor used by the chat
// shell: history navigation, a persistent history file, and Tab completion
// of commands and history hints.
package lineedit

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/peterh/liner"

	"github.com/jeranaias/roleplay/internal/chat"
	"github.com/jeranaias/roleplay/internal/hint"
	"github.com/jeranaias/roleplay/internal/util"
)

// Config configures an Editor.
type Config struct {
	// HistoryFile persists input history between runs. Empty disables it.
	HistoryFile string
	// HistorySize bounds the in-memory history used for hints.
	HistorySize int
	// Commands is the completion vocabulary.
	Commands []string
}

// Editor reads lines from the terminal. It implements chat.LineReader and
// is shared by every shell in the process.
type Editor struct {
	state       *liner.State
	provider    *hint.Provider
	history     *hint.History
	historyFile string
	logger      *log.Logger
}

// New puts the terminal under line-editor control. Close must be called to
// restore it.
func New(cfg Config, logger *log.Logger) *Editor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	history := hint.NewHistory(cfg.HistorySize)
	e := &Editor{
		state:       liner.NewLiner(),
		provider:    hint.NewProvider(hint.Commands(cfg.Commands...), history),
		history:     history,
		historyFile: cfg.HistoryFile,
		logger:      logger,
	}

	// USABILITY: Ctrl+C discards the current line instead of killing the process
	e.state.SetCtrlCAborts(true)
	e.state.SetTabCompletionStyle(liner.TabPrints)
	e.state.SetWordCompleter(e.complete)

	e.loadHistory()
	return e
}

// ReadLine prompts for one line.
func (e *Editor) ReadLine(prompt string) (string, error) {
	line, err := e.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", chat.ErrInputAborted
	}
	if err != nil {
		return "", err
	}
	if e.history.Add(line) {
		e.state.AppendHistory(line)
	}
	return line, nil
}

// Close saves the history and restores the terminal.
func (e *Editor) Close() error {
	e.saveHistory()
	return e.state.Close()
}

// complete is the liner word completer. liner passes the cursor position in
// runes; the hint provider works in bytes.
func (e *Editor) complete(line string, pos int) (string, []string, string) {
	head, tail := splitAt(line, pos)
	return "", candidates(e.provider, line, len(head)), tail
}

// candidates returns full replacements for the text before the cursor at
// byte offset pos.
func candidates(p *hint.Provider, line string, pos int) []string {
	head := line[:pos]
	if hint.InsertsTab(line, pos) {
		return []string{head + "\t"}
	}
	if hints := p.Complete(line, pos); len(hints) > 0 {
		out := make([]string, len(hints))
		for i, h := range hints {
			out[i] = head + h.Display
		}
		return out
	}
	if h, ok := p.Hint(line, pos); ok && h.Completion() != "" {
		return []string{head + h.Completion()}
	}
	return []string{head}
}

func splitAt(line string, runePos int) (string, string) {
	r := []rune(line)
	if runePos < 0 {
		runePos = 0
	}
	if runePos > len(r) {
		runePos = len(r)
	}
	return string(r[:runePos]), string(r[runePos:])
}

// =============================================================================
// HISTORY FILE
// =============================================================================

func (e *Editor) loadHistory() {
	if e.historyFile == "" {
		return
	}
	lines, err := readHistory(e.historyFile)
	if err != nil {
		if !os.IsNotExist(err) {
			e.logger.Warn("could not read history", "path", e.historyFile, "err", err)
		}
		return
	}
	for _, l := range lines {
		if e.history.Add(l) {
			e.state.AppendHistory(l)
		}
	}
	e.logger.Debug("history loaded", "entries", e.history.Len())
}

// saveHistory persists history with owner-only permissions.
func (e *Editor) saveHistory() {
	if e.historyFile == "" {
		return
	}
	var buf bytes.Buffer
	if _, err := e.state.WriteHistory(&buf); err != nil {
		e.logger.Warn("could not encode history", "err", err)
		return
	}
	// SECURITY: 0600 keeps typed messages private
	if err := util.AtomicWriteFileWithDir(e.historyFile, buf.Bytes(), 0o600, 0o700); err != nil {
		e.logger.Warn("could not save history", "path", e.historyFile, "err", err)
	}
}

func readHistory(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if l := strings.TrimRight(sc.Text(), "\r"); l != "" {
			lines = append(lines, l)
		}
	}
	return lines, sc.Err()
}
