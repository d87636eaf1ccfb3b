// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strconv"

	"github.com/jeranaias/roleplay/internal/ollama"
)

// param describes one tunable generation parameter. A zero value leaves the
// server default in place.
type param struct {
	name string
	get  func(ollama.Options) string
	set  func(*ollama.Options, string) error
}

func floatParam(name string, field func(*ollama.Options) *float64) param {
	return param{
		name: name,
		get: func(o ollama.Options) string {
			return strconv.FormatFloat(*field(&o), 'g', -1, 64)
		},
		set: func(o *ollama.Options, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: expected a number, got %q", name, v)
			}
			*field(o) = f
			return nil
		},
	}
}

func intParam(name string, field func(*ollama.Options) *int) param {
	return param{
		name: name,
		get: func(o ollama.Options) string {
			return strconv.Itoa(*field(&o))
		},
		set: func(o *ollama.Options, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: expected an integer, got %q", name, v)
			}
			*field(o) = n
			return nil
		},
	}
}

var params = []param{
	floatParam("temperature", func(o *ollama.Options) *float64 { return &o.Temperature }),
	intParam("top_k", func(o *ollama.Options) *int { return &o.TopK }),
	floatParam("top_p", func(o *ollama.Options) *float64 { return &o.TopP }),
	floatParam("repeat_penalty", func(o *ollama.Options) *float64 { return &o.RepeatPenalty }),
	floatParam("presence_penalty", func(o *ollama.Options) *float64 { return &o.PresencePenalty }),
	floatParam("frequency_penalty", func(o *ollama.Options) *float64 { return &o.FrequencyPenalty }),
	intParam("num_ctx", func(o *ollama.Options) *int { return &o.NumCtx }),
	intParam("num_predict", func(o *ollama.Options) *int { return &o.NumPredict }),
	intParam("seed", func(o *ollama.Options) *int { return &o.Seed }),
}

// ParamNames lists the parameters accepted by :param.
func ParamNames() []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.name
	}
	return names
}

// SetParam sets a named generation parameter from its text form.
func SetParam(opts *ollama.Options, name, value string) error {
	for _, p := range params {
		if p.name == name {
			return p.set(opts, value)
		}
	}
	return fmt.Errorf("unknown parameter: %s", name)
}

// GetParam returns a named parameter in text form.
func GetParam(opts ollama.Options, name string) (string, bool) {
	for _, p := range params {
		if p.name == name {
			return p.get(opts), true
		}
	}
	return "", false
}
