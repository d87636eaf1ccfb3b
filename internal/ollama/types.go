// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// Message roles understood by /api/chat.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in the conversation.
type Message struct {
	Role      string     `json:"role"`                 // "system", "user" or "assistant"
	Content   string     `json:"content"`              // The message content
	Images    []string   `json:"images,omitempty"`     // Base64 attachments for multimodal models
	ToolCalls []ToolCall `json:"tool_calls,omitempty"` // Tool calls requested by assistant
}

// ToolCall represents a tool invocation from the model.
type ToolCall struct {
	Function ToolFunction `json:"function"`
}

// ToolFunction contains the function name and arguments.
type ToolFunction struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Options contains model parameters for inference.
// A zero field is omitted and leaves the server default in place.
type Options struct {
	// Sampling parameters
	Temperature      float64 `json:"temperature,omitempty"`       // 0.0-2.0, default 0.8
	TopK             int     `json:"top_k,omitempty"`             // Default 40
	TopP             float64 `json:"top_p,omitempty"`             // 0.0-1.0, default 0.9
	RepeatPenalty    float64 `json:"repeat_penalty,omitempty"`    // Default 1.1
	PresencePenalty  float64 `json:"presence_penalty,omitempty"`  // Default 0.0
	FrequencyPenalty float64 `json:"frequency_penalty,omitempty"` // Default 0.0

	// Context parameters
	NumCtx     int `json:"num_ctx,omitempty"`     // Context window size, default 2048
	NumPredict int `json:"num_predict,omitempty"` // Max tokens to generate, -1 for unlimited

	// Seed for reproducibility
	Seed int `json:"seed,omitempty"`
}

// ChatRequest is the request body for /api/chat endpoint.
type ChatRequest struct {
	Model     string    `json:"model"`                // Model name (e.g., "mistral-small")
	Messages  []Message `json:"messages"`             // Conversation history
	Stream    bool      `json:"stream"`               // Enable streaming
	Format    string    `json:"format,omitempty"`     // Response format (e.g., "json")
	Options   *Options  `json:"options,omitempty"`    // Model parameters
	KeepAlive string    `json:"keep_alive,omitempty"` // How long the model stays loaded
}

// =============================================================================
// FRAGMENTS
// =============================================================================

// Fragment is one line of a streamed /api/chat reply, kept as raw JSON.
//
// Most fragments carry a piece of assistant text under message.content; the
// final one carries timing and token counts instead.
type Fragment struct {
	Raw json.RawMessage
}

// NewFragment wraps a raw JSON object.
func NewFragment(raw []byte) Fragment {
	return Fragment{Raw: append(json.RawMessage(nil), raw...)}
}

// TextFragment builds a fragment carrying only assistant text. It is mostly
// useful for tests and replays.
func TextFragment(text string) Fragment {
	raw, _ := json.Marshal(map[string]any{
		"message": Message{Role: RoleAssistant, Content: text},
		"done":    false,
	})
	return Fragment{Raw: raw}
}

// Text returns the assistant text carried by the fragment, if any.
func (f Fragment) Text() (string, bool) {
	res := gjson.GetBytes(f.Raw, "message.content")
	if res.Type != gjson.String {
		return "", false
	}
	return res.Str, true
}

// Done reports whether this is the final fragment of the reply.
func (f Fragment) Done() bool {
	return gjson.GetBytes(f.Raw, "done").Bool()
}

// Err returns the error message embedded in the fragment, if any.
func (f Fragment) Err() string {
	return gjson.GetBytes(f.Raw, "error").String()
}

// Stats extracts the token counts reported on the final fragment.
func (f Fragment) Stats() StreamStats {
	r := gjson.ParseBytes(f.Raw)
	return StreamStats{
		Model:            r.Get("model").String(),
		DoneReason:       r.Get("done_reason").String(),
		PromptTokens:     int(r.Get("prompt_eval_count").Int()),
		CompletionTokens: int(r.Get("eval_count").Int()),
		TotalDurationNS:  r.Get("total_duration").Int(),
		EvalDurationNS:   r.Get("eval_duration").Int(),
	}
}

// StreamStats holds the statistics reported on the final fragment.
type StreamStats struct {
	Model            string
	DoneReason       string
	PromptTokens     int
	CompletionTokens int
	TotalDurationNS  int64
	EvalDurationNS   int64
}

// TokensPerSecond calculates the generation speed.
func (s StreamStats) TokensPerSecond() float64 {
	if s.EvalDurationNS == 0 {
		return 0
	}
	return float64(s.CompletionTokens) / (float64(s.EvalDurationNS) / 1e9)
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// OllamaError represents an error body from the Ollama API.
type OllamaError struct {
	Error string `json:"error"`
}
