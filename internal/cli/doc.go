// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires the roleplay command together.
//
// It resolves configuration from file, environment and flags, sets up the
// logger, terminal, transport and optional transcript, then runs the
// interviews (unless a saved scenario exists) followed by the roleplay chat.
//
// # Exit Codes
//
//   - 0: success, including end of input
//   - 1: general error
//   - 2: usage error
//   - 3: configuration error
//   - 13: an interview ended without a result
package cli
