// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads roleplay settings from TOML.
//
// # Configuration Precedence
//
// Settings are resolved from (highest first):
//   - Command-line flags (applied by the caller)
//   - Environment variables (OLLAMA_HOST, ROLEPLAY_*)
//   - ~/.roleplay/config.toml, or the file named by --config
//   - Built-in defaults
//
// # Example
//
//	[ollama]
//	host = "127.0.0.1:11434"
//	model = "mistral-small:24b-3.1-instruct-2503-fp16"
//	timeout = "30s"
//
//	[chat]
//	save_file = ".ipomrawh.save"
//	wrap_width = 100
//
//	[params]
//	temperature = 0.8
//
//	[log]
//	level = "warn"
package config
