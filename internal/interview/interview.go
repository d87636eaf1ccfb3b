// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package interview runs the sequence of model-led interviews that build the
// scenario document for a roleplay session.
//
// Each interview is an ordinary chat session whose system prompt is the
// interview's preamble followed by everything gathered so far. The model
// ends an interview by replying with a roleplay block; the block body is
// wrapped in the interview's tag and appended to the document.
package interview

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Descriptor describes one interview.
type Descriptor struct {
	// Kind names the interview in progress messages.
	Kind string
	// Introduction is shown to the user before the interview starts.
	Introduction string
	// Preamble segments are joined with newlines to form the system prompt.
	Preamble []string
	// Tag wraps the interview's result in the document.
	Tag string
}

// System returns the system prompt for this interview given the document
// built so far.
func (d Descriptor) System(document string) string {
	return strings.Join(d.Preamble, "\n") + document
}

// Section renders an interview result as a document section.
func (d Descriptor) Section(block string) string {
	return fmt.Sprintf("<%s>\n%s\n</%s>\n", d.Tag, block, d.Tag)
}

// Runner runs one interview session with the given system prompt. It
// reports the concluding block, or extracted=false if the session ended
// without one.
type Runner interface {
	RunInterview(ctx context.Context, system string) (block string, extracted bool, err error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, system string) (string, bool, error)

// RunInterview calls f.
func (f RunnerFunc) RunInterview(ctx context.Context, system string) (string, bool, error) {
	return f(ctx, system)
}

// IncompleteError reports an interview that ended without a result.
type IncompleteError struct {
	Kind string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("expected information about %s", e.Kind)
}

// Conduct runs the interviews in order and returns the assembled document.
// Every interview sees the sections produced by the ones before it. If any
// interview ends without a result, Conduct stops with an *IncompleteError.
func Conduct(ctx context.Context, out io.Writer, runner Runner, interviews []Descriptor) (string, error) {
	var doc strings.Builder
	for _, iv := range interviews {
		fmt.Fprintf(out, "\nConducting %s interview now...\n%s\n", iv.Kind, iv.Introduction)

		block, ok, err := runner.RunInterview(ctx, iv.System(doc.String()))
		if err != nil {
			return "", fmt.Errorf("%s interview: %w", iv.Kind, err)
		}
		if !ok {
			return "", &IncompleteError{Kind: iv.Kind}
		}
		doc.WriteString(iv.Section(block))
	}
	return doc.String(), nil
}
