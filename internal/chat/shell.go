// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/shlex"

	"github.com/jeranaias/roleplay/internal/ollama"
	"github.com/jeranaias/roleplay/internal/wrap"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// ErrInputAborted is returned by a LineReader when the user interrupts the
// prompt. The pending line is discarded and the shell keeps reading.
var ErrInputAborted = errors.New("input aborted")

// LineReader reads one line of input. It returns io.EOF at end of input and
// ErrInputAborted on interrupt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Transport streams one chat round-trip.
type Transport interface {
	ChatStream(ctx context.Context, req ollama.ChatRequest, handler ollama.FragmentHandler) error
}

// ModelChecker is optionally implemented by a Transport to validate :model.
type ModelChecker interface {
	ModelExists(ctx context.Context, model string) bool
}

// Editor lets the user compose text. Edit writes seed to a file, waits for
// the user to finish and returns the path of the edited file.
type Editor interface {
	Edit(seed string) (string, error)
}

// Recorder receives every message appended to the conversation.
type Recorder interface {
	Record(msg ollama.Message, model string) error
}

// Indicator shows that a round-trip is in progress. Stop must be safe to
// call more than once.
type Indicator interface {
	Start()
	Stop()
}

// InterruptFunc derives the context for one round-trip. Cancelling that
// context interrupts the round-trip only.
type InterruptFunc func(ctx context.Context) (context.Context, context.CancelFunc)

// SignalInterrupt cancels the round-trip on SIGINT.
func SignalInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

// Decorate styles a line of shell output.
type Decorate func(string) string

func plain(s string) string { return s }

// =============================================================================
// SHELL
// =============================================================================

// EditPlaceholder seeds the editor for :edit.
const EditPlaceholder = "Enter your message here."

// DefaultPrompt is the input prompt.
const DefaultPrompt = ">>> "

// Shell is the interactive read/dispatch/round-trip loop over one
// Conversation.
type Shell struct {
	conv      *Conversation
	in        LineReader
	transport Transport

	editor    Editor
	recorder  Recorder
	indicator Indicator
	interrupt InterruptFunc
	logger    *log.Logger

	out    io.Writer
	errOut io.Writer
	prompt string
	width  int

	help       string
	renderHelp func(string) string
	errorStyle Decorate
	infoStyle  Decorate

	readFile   func(string) ([]byte, error)
	removeFile func(string) error
}

// Option configures a Shell.
type Option func(*Shell)

// WithEditor sets the editor used by :edit and :reply.
func WithEditor(e Editor) Option { return func(s *Shell) { s.editor = e } }

// WithRecorder sets a recorder for appended messages.
func WithRecorder(r Recorder) Option { return func(s *Shell) { s.recorder = r } }

// WithIndicator sets the busy indicator.
func WithIndicator(i Indicator) Option { return func(s *Shell) { s.indicator = i } }

// WithInterrupt replaces the round-trip interrupt source.
func WithInterrupt(fn InterruptFunc) Option { return func(s *Shell) { s.interrupt = fn } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(s *Shell) { s.logger = l } }

// WithOutput sets the reply and diagnostic writers.
func WithOutput(out, errOut io.Writer) Option {
	return func(s *Shell) {
		s.out = out
		s.errOut = errOut
	}
}

// WithPrompt sets the input prompt.
func WithPrompt(p string) Option { return func(s *Shell) { s.prompt = p } }

// WithWrapWidth sets the column width replies are wrapped to.
func WithWrapWidth(w int) Option { return func(s *Shell) { s.width = w } }

// WithHelpRenderer renders the :help Markdown before printing.
func WithHelpRenderer(fn func(string) string) Option {
	return func(s *Shell) { s.renderHelp = fn }
}

// WithStyles sets the decorators for error and informational lines.
func WithStyles(errorStyle, infoStyle Decorate) Option {
	return func(s *Shell) {
		if errorStyle != nil {
			s.errorStyle = errorStyle
		}
		if infoStyle != nil {
			s.infoStyle = infoStyle
		}
	}
}

// NewShell creates a shell over conv.
func NewShell(conv *Conversation, in LineReader, transport Transport, opts ...Option) *Shell {
	s := &Shell{
		conv:       conv,
		in:         in,
		transport:  transport,
		interrupt:  SignalInterrupt,
		logger:     log.New(io.Discard),
		out:        os.Stdout,
		errOut:     os.Stderr,
		prompt:     DefaultPrompt,
		width:      wrap.DefaultWidth,
		help:       HelpText,
		renderHelp: plain,
		errorStyle: plain,
		infoStyle:  plain,
		readFile:   os.ReadFile,
		removeFile: os.Remove,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Conversation returns the conversation the shell operates on.
func (s *Shell) Conversation() *Conversation {
	return s.conv
}

// action is the dispatcher's decision for one input line.
type action int

const (
	actLoop   action = iota // nothing to send, read the next line
	actSubmit               // append the text as a user message and round-trip
	actResend               // round-trip the history as it stands
	actExit                 // end the session
)

// Run drives the session until the input ends, an exit command is given, or
// a reply carries a roleplay block. In the last case the block body is
// returned with extracted set.
func (s *Shell) Run(ctx context.Context) (string, bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		line, err := s.in.ReadLine(s.prompt)
		switch {
		case errors.Is(err, ErrInputAborted):
			continue
		case errors.Is(err, io.EOF):
			return "", false, nil
		case err != nil:
			// The terminal is unusable; retrying would spin on the same error.
			return "", false, fmt.Errorf("read input: %w", err)
		}

		text, act := s.dispatch(ctx, line)
		switch act {
		case actLoop:
			continue
		case actExit:
			return "", false, nil
		case actSubmit:
			s.append(ollama.NewUserMessage(text))
		}

		if block, ok := s.exchange(ctx); ok {
			return block, true, nil
		}
	}
}

// dispatch classifies one input line and runs any command it names.
func (s *Shell) dispatch(ctx context.Context, line string) (string, action) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", actLoop
	}

	// Every line is tokenized; a message is still sent as typed.
	args, err := shlex.Split(trimmed)
	if err != nil {
		s.logger.Debug("tokenize failed", "line", trimmed, "err", err)
		s.report("could not split line")
		return "", actLoop
	}
	if len(args) == 0 || !strings.HasPrefix(args[0], CommandSigil) {
		return line, actSubmit
	}

	cmd, ok := lookupCommand(args[0])
	if !ok {
		s.reportf("unknown command: %s", args[0])
		return "", actLoop
	}
	return cmd.run(s, ctx, args[1:])
}

// exchange runs one round-trip and appends the reply. It reports whether the
// reply concluded the session with a roleplay block.
func (s *Shell) exchange(ctx context.Context) (string, bool) {
	reply, err := s.roundTrip(ctx)
	if err != nil {
		if ollama.IsInterrupted(err) {
			fmt.Fprintln(s.errOut, s.infoStyle("[interrupted]"))
			return "", false
		}
		s.reportf("could not chat: %v", err)
		return "", false
	}

	s.append(reply)
	return ExtractBlock(reply.Content)
}

// roundTrip streams one reply for the current history. The busy indicator
// runs until the first fragment arrives.
func (s *Shell) roundTrip(ctx context.Context) (ollama.Message, error) {
	rctx, stop := s.interrupt(ctx)
	defer stop()

	var once sync.Once
	quiet := func() {
		if s.indicator != nil {
			once.Do(s.indicator.Stop)
		}
	}
	if s.indicator != nil {
		s.indicator.Start()
	}
	defer quiet()

	asm := NewAssembler(wrap.New(s.out, s.width))
	start := time.Now()
	err := s.transport.ChatStream(rctx, s.conv.Request(), func(f ollama.Fragment) error {
		quiet()
		return asm.Add(f)
	})
	quiet()

	flushErr := asm.Flush()
	if asm.Len() > 0 {
		fmt.Fprintln(s.out)
	}

	if err != nil {
		// A cancelled round-trip context with a live parent is a user interrupt.
		if rctx.Err() != nil && ctx.Err() == nil {
			return ollama.Message{}, ollama.ErrInterrupted
		}
		return ollama.Message{}, err
	}
	if flushErr != nil {
		return ollama.Message{}, fmt.Errorf("write reply: %w", flushErr)
	}

	if stats, ok := asm.Stats(); ok {
		s.logger.Debug("round-trip complete",
			"model", stats.Model,
			"fragments", asm.Len(),
			"completion_tokens", stats.CompletionTokens,
			"tokens_per_second", stats.TokensPerSecond(),
			"elapsed", time.Since(start).Round(time.Millisecond))
	}
	return asm.Message(), nil
}

func (s *Shell) append(msg ollama.Message) {
	s.conv.Append(msg)
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(msg, s.conv.Model); err != nil {
		s.logger.Warn("transcript write failed", "err", err)
	}
}

// report prints a non-fatal error line.
func (s *Shell) report(msg string) {
	fmt.Fprintln(s.errOut, s.errorStyle(msg))
}

func (s *Shell) reportf(format string, args ...any) {
	s.report(fmt.Sprintf(format, args...))
}

func (s *Shell) info(msg string) {
	fmt.Fprintln(s.out, s.infoStyle(msg))
}
