// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/roleplay/internal/chat"
	"github.com/jeranaias/roleplay/internal/config"
	"github.com/jeranaias/roleplay/internal/editor"
	"github.com/jeranaias/roleplay/internal/interview"
	"github.com/jeranaias/roleplay/internal/lineedit"
	"github.com/jeranaias/roleplay/internal/logging"
	"github.com/jeranaias/roleplay/internal/ollama"
	"github.com/jeranaias/roleplay/internal/scenario"
	"github.com/jeranaias/roleplay/internal/transcript"
)

// healthCheckTimeout bounds the startup probe of the Ollama server.
const healthCheckTimeout = 3 * time.Second

// Run sets up the process-level collaborators and runs the session.
func Run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	logger, closer, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
		JSON:   cfg.Log.JSON,
		Output: stderr,
	})
	if err != nil {
		return &ConfigError{Err: err}
	}
	defer closer.Close()

	client := ollama.NewClientWithConfig(cfg.ClientConfig())
	checkServer(ctx, client, stderr, logger)

	var store *transcript.Store
	if cfg.Transcript.Path != "" {
		store, err = transcript.Open(cfg.Transcript.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		logger.Info("recording transcript", "path", cfg.Transcript.Path)
	}

	// Interrupts are consumed for the life of the process; each round-trip
	// subscribes separately to cancel itself.
	held := make(chan os.Signal, 1)
	signal.Notify(held, os.Interrupt)
	defer signal.Stop(held)

	reader := lineedit.New(lineedit.Config{
		HistoryFile: cfg.Chat.HistoryFile,
		HistorySize: cfg.Chat.HistorySize,
		Commands:    chat.CommandNames(),
	}, logger)
	defer reader.Close()

	a := &app{
		cfg:        cfg,
		logger:     logger,
		transport:  client,
		reader:     reader,
		editor:     editor.New(),
		transcript: store,
		out:        stdout,
		errOut:     stderr,
		styled:     IsStdoutTTY(),
		spinner:    IsStderrTTY(),
	}
	return a.run(ctx)
}

// checkServer warns when Ollama is unreachable. It is not fatal: the server
// may come up before the first message is sent.
func checkServer(ctx context.Context, client *ollama.Client, w io.Writer, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := client.CheckRunning(ctx); err != nil {
		logger.Debug("health check failed", "err", err)
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf(
			"[WARN] Ollama is not reachable at %s; messages will fail until it is.",
			client.GetConfig().BaseURL)))
	}
}

// =============================================================================
// APP
// =============================================================================

// app holds what every shell in the process shares.
type app struct {
	cfg        *config.Config
	logger     *log.Logger
	transport  chat.Transport
	reader     chat.LineReader
	editor     chat.Editor
	transcript *transcript.Store

	out, errOut io.Writer
	styled      bool
	spinner     bool
}

// run conducts the interviews unless a scenario is saved, then starts the
// roleplay with the scenario as its system prompt.
func (a *app) run(ctx context.Context) error {
	store := scenario.NewStore(a.cfg.Chat.SaveFile)

	if store.Exists() {
		fmt.Fprintln(a.errOut, "save exists; using previous scenario")
	} else {
		doc, err := interview.Conduct(ctx, a.out, a, interview.Defaults())
		if err != nil {
			return err
		}
		if err := store.Save(doc); err != nil {
			return err
		}
		a.logger.Info("scenario saved", "path", store.Path)
	}

	system, err := store.Load()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "\nbeginning roleplay...")
	_, _, err = a.session(ctx, "roleplay", system)
	return err
}

// RunInterview runs one interview as a fresh chat session.
func (a *app) RunInterview(ctx context.Context, system string) (string, bool, error) {
	return a.session(ctx, "interview", system)
}

func (a *app) session(ctx context.Context, kind, system string) (string, bool, error) {
	conv := chat.NewConversation(a.cfg.Ollama.Model, a.cfg.Params.Options(), system)
	return a.newShell(ctx, kind, conv).Run(ctx)
}

func (a *app) newShell(ctx context.Context, kind string, conv *chat.Conversation) *chat.Shell {
	logger := a.logger.WithPrefix(kind)
	opts := []chat.Option{
		chat.WithOutput(a.out, a.errOut),
		chat.WithPrompt(a.cfg.Chat.Prompt),
		chat.WithWrapWidth(a.cfg.Chat.WrapWidth),
		chat.WithEditor(a.editor),
		chat.WithLogger(logger),
		chat.WithStyles(render(ErrorStyle), render(InfoStyle)),
	}
	if a.styled {
		opts = append(opts, chat.WithHelpRenderer(markdownRenderer(GetTerminalWidth())))
	}
	if a.spinner {
		opts = append(opts, chat.WithIndicator(newBusySpinner(a.errOut, "thinking")))
	}
	if rec := a.recorder(ctx, kind, conv); rec != nil {
		opts = append(opts, chat.WithRecorder(rec))
	}
	return chat.NewShell(conv, a.reader, a.transport, opts...)
}

// recorder opens a transcript session and records the messages the
// conversation starts with. Failures only disable recording.
func (a *app) recorder(ctx context.Context, kind string, conv *chat.Conversation) chat.Recorder {
	if a.transcript == nil {
		return nil
	}
	sess, err := a.transcript.NewSession(ctx, kind)
	if err != nil {
		a.logger.Warn("transcript disabled for session", "kind", kind, "err", err)
		return nil
	}
	for _, msg := range conv.Messages() {
		if err := sess.Record(msg, conv.Model); err != nil {
			a.logger.Warn("transcript write failed", "err", err)
		}
	}
	a.logger.Debug("transcript session", "id", sess.ID, "kind", kind)
	return sess
}
