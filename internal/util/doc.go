// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared across roleplay packages.
//
//   - AtomicWriteFile: crash-safe writes for the save file and input history
//   - TruncateRunes: UTF-8 safe truncation for one-line previews
package util
