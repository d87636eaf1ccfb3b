// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/roleplay/internal/ollama"
)

// Conversation is the state of one shell session: the message history in
// order plus the session options sent with every round-trip.
//
// Messages are only ever appended.
type Conversation struct {
	messages []ollama.Message

	// Model is the active model identifier.
	Model string
	// Options holds the generation parameters.
	Options ollama.Options
}

// NewConversation creates a conversation. A non-empty system prompt becomes
// the first message.
func NewConversation(model string, opts ollama.Options, system string) *Conversation {
	c := &Conversation{Model: model, Options: opts}
	if system != "" {
		c.messages = append(c.messages, ollama.NewSystemMessage(system))
	}
	return c
}

// Append adds a message to the end of the history.
func (c *Conversation) Append(msg ollama.Message) {
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []ollama.Message {
	return append([]ollama.Message(nil), c.messages...)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last returns the most recent message.
func (c *Conversation) Last() (ollama.Message, bool) {
	if len(c.messages) == 0 {
		return ollama.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Request builds the streaming chat request for the current state.
func (c *Conversation) Request() ollama.ChatRequest {
	opts := c.Options
	return ollama.ChatRequest{
		Model:    c.Model,
		Messages: c.Messages(),
		Stream:   true,
		Options:  &opts,
	}
}
