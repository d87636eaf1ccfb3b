// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/roleplay/internal/config"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// flagValues holds the command-line overrides. Only flags the user actually
// set are applied over the configuration.
type flagValues struct {
	configPath  string
	model       string
	host        string
	save        string
	wrap        int
	temperature float64
	seed        int
	numCtx      int
	logLevel    string
	transcript  string
}

// runFunc runs the session once configuration is resolved.
type runFunc func(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error

// NewRootCommand builds the roleplay command.
func NewRootCommand(stdout, stderr io.Writer, run runFunc) *cobra.Command {
	var fv flagValues

	cmd := &cobra.Command{
		Use:   "roleplay",
		Short: "Interview-driven roleplay chat over a local Ollama model",
		Long: `roleplay interviews you about a scenario, the two characters, their
relationship and the rules of engagement, saves the result, and then starts
a roleplay chat with that document as the system prompt.

If the save file already exists the interviews are skipped.

Inside a chat, lines starting with ':' are commands; type :help for a list.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &UsageError{Err: errors.New("command takes no positional arguments")}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(fv.configPath)
			if err != nil {
				return &ConfigError{Err: err}
			}
			fv.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return &ConfigError{Err: err}
			}
			return run(cmd.Context(), cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	f := cmd.Flags()
	f.StringVarP(&fv.configPath, "config", "c", "", "config file (default ~/.roleplay/config.toml)")
	f.StringVarP(&fv.model, "model", "m", "", "model to use")
	f.StringVar(&fv.host, "ollama-host", "", "Ollama host, as host:port or URL")
	f.StringVarP(&fv.save, "save", "s", "", "scenario save file")
	f.IntVar(&fv.wrap, "wrap", 0, "wrap replies at this column")
	f.Float64Var(&fv.temperature, "temperature", 0, "sampling temperature")
	f.IntVar(&fv.seed, "seed", 0, "sampling seed")
	f.IntVar(&fv.numCtx, "num-ctx", 0, "context window size")
	f.StringVar(&fv.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&fv.transcript, "transcript", "", "record messages to this SQLite file")

	return cmd
}

// apply copies the flags the user set onto cfg.
func (fv *flagValues) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("model") {
		cfg.Ollama.Model = fv.model
	}
	if changed("ollama-host") {
		cfg.Ollama.Host = fv.host
	}
	if changed("save") {
		cfg.Chat.SaveFile = fv.save
	}
	if changed("wrap") {
		cfg.Chat.WrapWidth = fv.wrap
	}
	if changed("temperature") {
		cfg.Params.Temperature = fv.temperature
	}
	if changed("seed") {
		cfg.Params.Seed = fv.seed
	}
	if changed("num-ctx") {
		cfg.Params.NumCtx = fv.numCtx
	}
	if changed("log-level") {
		cfg.Log.Level = fv.logLevel
	}
	if changed("transcript") {
		cfg.Transcript.Path = fv.transcript
	}
}

// Execute runs the command with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, args, stdout, stderr, Run)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer, run runFunc) int {
	cmd := NewRootCommand(stdout, stderr, run)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		DisplayError(stderr, err)
		code := GetExitCode(err)
		if code == ExitUsageError {
			fmt.Fprintln(stderr, DimStyle.Render("Run 'roleplay --help' for usage."))
		}
		return code
	}
	return ExitSuccess
}
