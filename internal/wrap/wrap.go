// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package wrap provides an incremental word wrapper for streamed text.
//
// Text arrives in arbitrary chunks (tokens, sub-tokens, half words). The
// Writer emits every word as soon as it is known to be complete, so output
// appears live, while a word split across two chunks is held back until its
// end is seen.
package wrap

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// DefaultWidth is the column width used for assistant replies.
const DefaultWidth = 100

// tabWidth is the number of columns a tab counts for when measuring a line.
const tabWidth = 4

// Writer wraps a stream of text chunks to a fixed column width.
//
// A Writer is not safe for concurrent use; a reply is rendered by a single
// round-trip at a time.
type Writer struct {
	out   io.Writer
	width int

	col   int             // columns already written on the current line
	space strings.Builder // whitespace seen since the last word
	word  strings.Builder // partial word not yet known to be complete
}

// New creates a Writer that emits to out. Widths below one fall back to
// DefaultWidth.
func New(out io.Writer, width int) *Writer {
	if width < 1 {
		width = DefaultWidth
	}
	return &Writer{out: out, width: width}
}

// Width returns the configured column width.
func (w *Writer) Width() int {
	return w.width
}

// Push consumes the next chunk of the stream.
func (w *Writer) Push(chunk string) error {
	for len(chunk) > 0 {
		r, size := utf8.DecodeRuneInString(chunk)
		piece := chunk[:size]
		chunk = chunk[size:]

		switch {
		case r == '\n':
			if err := w.emitWord(); err != nil {
				return err
			}
			w.space.Reset()
			if err := w.write("\n"); err != nil {
				return err
			}
			w.col = 0
		case unicode.IsSpace(r):
			if w.word.Len() > 0 {
				if err := w.emitWord(); err != nil {
					return err
				}
			}
			w.space.WriteString(piece)
		default:
			w.word.WriteString(piece)
		}
	}
	return nil
}

// Flush writes whatever partial word is still buffered. It does not add a
// trailing newline.
func (w *Writer) Flush() error {
	if w.word.Len() == 0 {
		w.space.Reset()
		return nil
	}
	return w.emitWord()
}

// emitWord writes the pending whitespace and word, breaking the line first
// when the pair would overflow it.
func (w *Writer) emitWord() error {
	if w.word.Len() == 0 {
		return nil
	}
	word := w.word.String()
	space := w.space.String()
	w.word.Reset()
	w.space.Reset()

	wordCols := runewidth.StringWidth(word)
	spaceCols := measureSpace(space, w.col)

	if w.col > 0 && w.col+spaceCols+wordCols > w.width {
		if err := w.write("\n"); err != nil {
			return err
		}
		w.col = 0
		space = ""
		spaceCols = 0
	}

	if err := w.write(space + word); err != nil {
		return err
	}
	w.col += spaceCols + wordCols
	return nil
}

func (w *Writer) write(s string) error {
	if s == "" {
		return nil
	}
	_, err := io.WriteString(w.out, s)
	return err
}

// measureSpace returns the columns taken by a whitespace run starting at col.
func measureSpace(space string, col int) int {
	n := 0
	for _, r := range space {
		if r == '\t' {
			n += tabWidth - (col+n)%tabWidth
			continue
		}
		if rw := runewidth.RuneWidth(r); rw > 0 {
			n += rw
		} else {
			n++
		}
	}
	return n
}
