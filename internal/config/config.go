// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/roleplay/internal/logging"
	"github.com/jeranaias/roleplay/internal/ollama"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete roleplay configuration.
type Config struct {
	Ollama     OllamaConfig     `toml:"ollama"`
	Chat       ChatConfig       `toml:"chat"`
	Params     ParamsConfig     `toml:"params"`
	Log        LogConfig        `toml:"log"`
	Transcript TranscriptConfig `toml:"transcript"`
}

// OllamaConfig locates the inference server.
type OllamaConfig struct {
	// Host accepts host:port or a full URL.
	Host  string `toml:"host"`
	Model string `toml:"model"`
	// Timeout bounds health and model checks. Streaming replies are only
	// bounded by an interrupt. Zero means 30s.
	Timeout time.Duration `toml:"timeout"`
}

// ChatConfig controls the interactive shell.
type ChatConfig struct {
	SaveFile    string `toml:"save_file"`
	WrapWidth   int    `toml:"wrap_width"`
	Prompt      string `toml:"prompt"`
	HistoryFile string `toml:"history_file"`
	HistorySize int    `toml:"history_size"`
}

// ParamsConfig holds generation parameters. Zero leaves the server default.
type ParamsConfig struct {
	Temperature      float64 `toml:"temperature"`
	TopK             int     `toml:"top_k"`
	TopP             float64 `toml:"top_p"`
	RepeatPenalty    float64 `toml:"repeat_penalty"`
	PresencePenalty  float64 `toml:"presence_penalty"`
	FrequencyPenalty float64 `toml:"frequency_penalty"`
	NumCtx           int     `toml:"num_ctx"`
	NumPredict       int     `toml:"num_predict"`
	Seed             int     `toml:"seed"`
}

// Options converts the parameters to request options.
func (p ParamsConfig) Options() ollama.Options {
	return ollama.Options{
		Temperature:      p.Temperature,
		TopK:             p.TopK,
		TopP:             p.TopP,
		RepeatPenalty:    p.RepeatPenalty,
		PresencePenalty:  p.PresencePenalty,
		FrequencyPenalty: p.FrequencyPenalty,
		NumCtx:           p.NumCtx,
		NumPredict:       p.NumPredict,
		Seed:             p.Seed,
	}
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
	JSON  bool   `toml:"json"`
}

// TranscriptConfig enables the SQLite transcript when Path is set.
type TranscriptConfig struct {
	Path string `toml:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Defaults for the settings that have one.
const (
	DefaultModel     = "mistral-small:24b-3.1-instruct-2503-fp16"
	DefaultSaveFile  = ".ipomrawh.save"
	DefaultWrapWidth = 100
	DefaultPrompt    = ">>> "
)

// Default returns a Config with default values.
func Default() *Config {
	cfg := &Config{
		Ollama: OllamaConfig{
			Host:  ollama.DefaultHost,
			Model: DefaultModel,
		},
		Chat: ChatConfig{
			SaveFile:  DefaultSaveFile,
			WrapWidth: DefaultWrapWidth,
			Prompt:    DefaultPrompt,
		},
		Log: LogConfig{
			Level: logging.DefaultLevel,
		},
	}
	if dir, err := ConfigDir(); err == nil {
		cfg.Chat.HistoryFile = filepath.Join(dir, "history")
	}
	return cfg
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the roleplay configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".roleplay"), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the config file at path, or the default path if empty. A
// missing file yields the defaults. Environment overrides are applied and
// the result is validated.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Unknown keys are rejected so typos
// do not pass silently.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var errs ValidationErrors
		for _, key := range undecoded {
			errs = append(errs, ValidationError{Field: key.String(), Message: "unknown setting"})
		}
		return fmt.Errorf("%s: %w", path, errs)
	}
	return nil
}

// SetDefaults fills settings that were explicitly emptied.
func (c *Config) SetDefaults() {
	defaults := Default()
	if c.Ollama.Host == "" {
		c.Ollama.Host = defaults.Ollama.Host
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = defaults.Ollama.Model
	}
	if c.Chat.SaveFile == "" {
		c.Chat.SaveFile = defaults.Chat.SaveFile
	}
	if c.Chat.WrapWidth == 0 {
		c.Chat.WrapWidth = defaults.Chat.WrapWidth
	}
	if c.Chat.Prompt == "" {
		c.Chat.Prompt = defaults.Chat.Prompt
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - OLLAMA_HOST: overrides ollama.host
//   - ROLEPLAY_MODEL: overrides ollama.model
//   - ROLEPLAY_SAVE: overrides chat.save_file
//   - ROLEPLAY_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		c.Ollama.Host = host
	}
	if model := os.Getenv("ROLEPLAY_MODEL"); model != "" {
		c.Ollama.Model = model
	}
	if save := os.Getenv("ROLEPLAY_SAVE"); save != "" {
		c.Chat.SaveFile = save
	}
	if level := os.Getenv("ROLEPLAY_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// ClientConfig builds the transport configuration.
func (c *Config) ClientConfig() *ollama.ClientConfig {
	return &ollama.ClientConfig{
		BaseURL:      ollama.HostURL(c.Ollama.Host),
		Timeout:      c.Ollama.Timeout,
		DefaultModel: c.Ollama.Model,
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid setting.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidationErrors listing
// every problem.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Ollama
	if !validHost(c.Ollama.Host) {
		add("ollama.host", "invalid host %q", c.Ollama.Host)
	}
	if strings.TrimSpace(c.Ollama.Model) == "" {
		add("ollama.model", "must not be empty")
	}
	if c.Ollama.Timeout < 0 {
		add("ollama.timeout", "must not be negative")
	}

	// Chat
	if c.Chat.WrapWidth < 1 {
		add("chat.wrap_width", "must be at least 1, got %d", c.Chat.WrapWidth)
	}
	if c.Chat.HistorySize < 0 {
		add("chat.history_size", "must not be negative")
	}

	// Params
	p := c.Params
	if p.Temperature < 0 || p.Temperature > 2 {
		add("params.temperature", "must be between 0 and 2, got %g", p.Temperature)
	}
	if p.TopP < 0 || p.TopP > 1 {
		add("params.top_p", "must be between 0 and 1, got %g", p.TopP)
	}
	if p.TopK < 0 {
		add("params.top_k", "must not be negative")
	}
	if p.RepeatPenalty < 0 {
		add("params.repeat_penalty", "must not be negative")
	}
	if p.NumCtx < 0 {
		add("params.num_ctx", "must not be negative")
	}
	if p.NumPredict < -2 {
		add("params.num_predict", "must be -1, -2 or a token count")
	}

	// Log
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "%v", err)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validHost accepts what ollama.HostURL understands without falling back.
func validHost(host string) bool {
	host = strings.TrimSpace(host)
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	return err == nil && u.Hostname() != ""
}
