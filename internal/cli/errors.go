// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and top-level error display.
//
// ERROR HANDLING: Errors must not be silently ignored
//
// Commands return errors; only Execute prints them and maps them to an exit
// code.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/roleplay/internal/config"
	"github.com/jeranaias/roleplay/internal/interview"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitIncomplete indicates an interview ended without a result
	ExitIncomplete = 13
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports bad command-line usage.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// ConfigError reports a configuration problem.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "configuration: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HANDLING
// =============================================================================

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var incomplete *interview.IncompleteError
	if errors.As(err, &incomplete) {
		return ExitIncomplete
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var configErr *ConfigError
	var validationErrs config.ValidationErrors
	if errors.As(err, &configErr) || errors.As(err, &validationErrs) {
		return ExitConfigError
	}

	return ExitGeneralError
}

// DisplayError prints an error in a consistent format.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}

	var incomplete *interview.IncompleteError
	if errors.As(err, &incomplete) {
		fmt.Fprintf(w, "%s; exiting\n", incomplete.Error())
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}
