// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package interview

import (
	"embed"
)

//go:embed prompts/*.md
var prompts embed.FS

func prompt(name string) string {
	data, err := prompts.ReadFile("prompts/" + name + ".md")
	if err != nil {
		// embedded at build time; a miss is a packaging bug
		panic(err)
	}
	return string(data)
}

// Defaults returns the built-in interviews in the order they are held.
func Defaults() []Descriptor {
	common := prompt("common")
	return []Descriptor{
		{
			Kind: "scenario",
			Introduction: "This interview is about setting up the scenario for the role playing.\n\n" +
				"Focus on what happens, not so much the who or how.\n",
			Preamble: []string{common, prompt("scenario")},
			Tag:      "scenario",
		},
		{
			Kind:         "assistant",
			Introduction: "My ideal assistant...\n",
			Preamble:     []string{common, prompt("assistant")},
			Tag:          "about assistant",
		},
		{
			Kind:         "user",
			Introduction: "About me...\n",
			Preamble:     []string{common, prompt("user")},
			Tag:          "about user",
		},
		{
			Kind:         "us",
			Introduction: "About us...\n",
			Preamble:     []string{common, prompt("us")},
			Tag:          "about us",
		},
		{
			Kind:         "rules",
			Introduction: "Rules for engagement...\n",
			Preamble:     []string{common, prompt("rules")},
			Tag:          "rules",
		},
	}
}
