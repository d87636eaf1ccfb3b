// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive conversation shell.
//
// A Shell reads one line at a time, decides whether it is a command or a
// message, and for messages runs one round-trip against the inference
// transport with the whole conversation so far. The streamed reply is
// rendered live through a word wrapper and folded back into a single
// assistant message by an Assembler.
//
// # Key Types
//
//   - Conversation: ordered message history plus model and parameters
//   - Shell: the read/dispatch/round-trip loop
//   - Assembler: folds reply fragments into one message
//
// # Session Outcomes
//
// Run ends in one of two ways. End of input or an exit command ends the
// session with no result. A reply that carries a complete
//
//	```roleplay
//	...
//	```
//
// block ends it with that block's body as the result, which is how an
// interview concludes.
//
// # Cancellation
//
// An interrupt while reading input discards the line. An interrupt during a
// round-trip cancels only that round-trip: the user message stays in the
// history and no assistant message is added.
package chat
