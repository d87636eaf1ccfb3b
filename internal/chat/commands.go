// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/roleplay/internal/ollama"
	"github.com/jeranaias/roleplay/internal/util"
)

// CommandSigil marks a line as a command.
const CommandSigil = ":"

// HelpText is printed by :help. It is Markdown.
const HelpText = `chat
====

Commands:

    :model <model>          Set the model to use.
    :edit                   Edit and send the next message.
    :reply                  Edit the last message and send it.
    :retry                  Retry the last message.
    :param [<name> <value>] Show or set a generation parameter.
    :history                Show the conversation so far.
    :exit                   Leave the chat.

Anything else will be interpreted as a message.
`

// historyPreview is the rune limit for :history lines.
const historyPreview = 72

type command struct {
	names []string
	run   func(s *Shell, ctx context.Context, args []string) (string, action)
}

var commands = []command{
	{names: []string{":exit", ":quit", ":q", ":wq"}, run: cmdExit},
	{names: []string{":help"}, run: cmdHelp},
	{names: []string{":model"}, run: cmdModel},
	{names: []string{":edit"}, run: cmdEdit},
	{names: []string{":reply"}, run: cmdReply},
	{names: []string{":retry"}, run: cmdRetry},
	{names: []string{":param"}, run: cmdParam},
	{names: []string{":history"}, run: cmdHistory},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		for _, n := range c.names {
			if n == name {
				return c, true
			}
		}
	}
	return command{}, false
}

// CommandNames is the completion vocabulary.
func CommandNames() []string {
	return []string{":help", ":exit", ":quit", ":edit", ":reply", ":retry", ":param", ":model", ":history"}
}

// =============================================================================
// HANDLERS
// =============================================================================

func cmdExit(*Shell, context.Context, []string) (string, action) {
	return "", actExit
}

func cmdHelp(s *Shell, _ context.Context, _ []string) (string, action) {
	fmt.Fprint(s.out, s.renderHelp(s.help))
	return "", actLoop
}

func cmdModel(s *Shell, ctx context.Context, args []string) (string, action) {
	switch {
	case len(args) == 0:
		s.report("expected model name")
		return "", actLoop
	case len(args) > 1:
		s.report("expected only model name")
		return "", actLoop
	}

	model := args[0]
	if checker, ok := s.transport.(ModelChecker); ok && !checker.ModelExists(ctx, model) {
		s.reportf("model %q not found locally, will attempt to use anyway", model)
	}
	s.conv.Model = model
	s.info("model set to " + model)
	return "", actLoop
}

func cmdEdit(s *Shell, _ context.Context, _ []string) (string, action) {
	return s.compose(EditPlaceholder)
}

func cmdReply(s *Shell, _ context.Context, _ []string) (string, action) {
	var seed string
	if last, ok := s.conv.Last(); ok {
		seed = last.Content
	}
	return s.compose(seed)
}

func cmdRetry(s *Shell, _ context.Context, _ []string) (string, action) {
	last, ok := s.conv.Last()
	if !ok || last.Role != ollama.RoleUser {
		s.report("nothing to retry")
		return "", actLoop
	}
	return "", actResend
}

func cmdParam(s *Shell, _ context.Context, args []string) (string, action) {
	switch len(args) {
	case 0:
		for _, name := range ParamNames() {
			v, _ := GetParam(s.conv.Options, name)
			fmt.Fprintf(s.out, "%-18s %s\n", name, v)
		}
	case 2:
		if err := SetParam(&s.conv.Options, args[0], args[1]); err != nil {
			s.report(err.Error())
			break
		}
		// Zero values are omitted from requests.
		if v, _ := GetParam(s.conv.Options, args[0]); v == "0" {
			s.info(args[0] + " reset to server default")
			break
		}
		s.info(fmt.Sprintf("%s set to %s", args[0], args[1]))
	default:
		s.report("expected parameter name and value")
	}
	return "", actLoop
}

func cmdHistory(s *Shell, _ context.Context, _ []string) (string, action) {
	msgs := s.conv.Messages()
	if len(msgs) == 0 {
		s.info("[no messages yet]")
		return "", actLoop
	}
	for i, m := range msgs {
		preview := strings.Join(strings.Fields(m.Content), " ")
		fmt.Fprintf(s.out, "%3d. %-9s %s\n", i+1, m.Role, util.TruncateRunes(preview, historyPreview))
	}
	return "", actLoop
}

// =============================================================================
// EDITING
// =============================================================================

// compose opens the editor on seed and submits the result. The edited text
// is echoed back with each line marked.
func (s *Shell) compose(seed string) (string, action) {
	if s.editor == nil {
		s.report("no editor available")
		return "", actLoop
	}

	path, err := s.editor.Edit(seed)
	if err != nil {
		s.reportf("could not edit: %v", err)
		return "", actLoop
	}
	data, err := s.readFile(path)
	if rmErr := s.removeFile(path); rmErr != nil {
		s.logger.Warn("could not remove edit file", "path", path, "err", rmErr)
	}
	if err != nil {
		s.reportf("could not read edit: %v", err)
		return "", actLoop
	}

	text := string(data)
	fmt.Fprintln(s.out, quoteEdit(text))
	return text, actSubmit
}

// quoteEdit prefixes every line of text with "... ".
func quoteEdit(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "... " + l
	}
	return strings.Join(lines, "\n")
}
