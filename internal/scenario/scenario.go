// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scenario persists the scenario document produced by the
// interviews so later runs can skip straight to the roleplay.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/roleplay/internal/util"
)

// DefaultPath is the save file used when none is configured.
const DefaultPath = ".ipomrawh.save"

// Store is a scenario document on disk.
type Store struct {
	Path string
}

// NewStore returns a store at path, or at DefaultPath if path is empty.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{Path: path}
}

// Exists reports whether a saved document is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads the saved document.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("no saved scenario at %s: %w", s.Path, err)
		}
		return "", fmt.Errorf("read scenario: %w", err)
	}
	return string(data), nil
}

// Save writes the document atomically.
func (s *Store) Save(doc string) error {
	// SECURITY: the document describes the user; keep it owner-only
	if err := util.AtomicWriteFile(s.Path, []byte(doc), 0o600); err != nil {
		return fmt.Errorf("save scenario: %w", err)
	}
	return nil
}
