// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editor hands text to the user's external editor.
package editor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/google/shlex"
)

// DefaultCommand is used when neither VISUAL nor EDITOR is set.
const DefaultCommand = "vi"

// Resolve picks the editor command from the environment.
func Resolve(getenv func(string) string) string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if v := getenv(key); v != "" {
			return v
		}
	}
	return DefaultCommand
}

// Editor runs an external editor on a temporary Markdown file.
type Editor struct {
	// Command is the editor command line; the file path is appended.
	Command string
	// Dir holds the temporary files. Empty means the system temp dir.
	Dir string

	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

// New creates an editor using the environment's preferred command on the
// process's terminal.
func New() *Editor {
	return &Editor{
		Command: Resolve(os.Getenv),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Edit writes seed to a fresh file, runs the editor on it and returns the
// file's path once the editor exits. The caller owns the file.
func (e *Editor) Edit(seed string) (string, error) {
	argv, err := shlex.Split(e.Command)
	if err != nil {
		return "", fmt.Errorf("parse editor command %q: %w", e.Command, err)
	}
	if len(argv) == 0 {
		return "", errors.New("no editor command")
	}

	f, err := os.CreateTemp(e.Dir, "roleplay-*.md")
	if err != nil {
		return "", fmt.Errorf("create edit file: %w", err)
	}
	path := f.Name()
	_, werr := f.WriteString(seed)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(path)
		return "", fmt.Errorf("write edit file: %w", werr)
	}

	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("run %s: %w", argv[0], err)
	}
	return path, nil
}
