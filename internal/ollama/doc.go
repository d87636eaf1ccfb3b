// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the Ollama chat API.
//
// Replies are streamed from /api/chat as newline-delimited JSON. Each line
// is handed to the caller as a Fragment holding the raw object; text and
// final statistics are read from it on demand.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - Message: Chat message with role and content
//   - ChatRequest: Request body for /api/chat
//   - Fragment: One streamed line of a reply
//   - StreamReader: Splits a streamed body into fragments
//
// # Usage
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
//	    BaseURL: ollama.HostURL(os.Getenv("OLLAMA_HOST")),
//	})
//	err := client.ChatStream(ctx, req, func(f ollama.Fragment) error {
//	    if text, ok := f.Text(); ok {
//	        fmt.Print(text)
//	    }
//	    return nil
//	})
//
// Cancelling ctx closes the connection; ChatStream then returns an error
// for which IsInterrupted reports true.
package ollama
