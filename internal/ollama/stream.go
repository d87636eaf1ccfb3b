// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/tidwall/gjson"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader splits a newline-delimited JSON body into fragments.
type StreamReader struct {
	reader *bufio.Reader
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// Process reads the stream and calls handler for each fragment.
// Blocks until the final fragment, end of body, a handler error, or
// cancellation of ctx.
func (s *StreamReader) Process(ctx context.Context, handler FragmentHandler) error {
	for {
		if ctx.Err() != nil {
			return ErrInterrupted
		}

		frag, err := s.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ErrInterrupted
			}
			return &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: err}
		}
		if frag == nil {
			continue
		}

		if msg := frag.Err(); msg != "" {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: msg}
		}

		if err := handler(*frag); err != nil {
			return err
		}
		if frag.Done() {
			return nil
		}
	}
}

// next reads one line. Blank and malformed lines yield a nil fragment.
func (s *StreamReader) next() (*Fragment, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}
	// A final line without a trailing newline is still processed; the
	// read error surfaces on the next call.

	line = bytes.TrimSpace(line)
	if len(line) == 0 || !gjson.ValidBytes(line) {
		return nil, nil
	}

	frag := NewFragment(line)
	return &frag, nil
}
