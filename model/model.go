package model

import (
	"context"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Format selects the shape of the completion a provider should return.
type Format int

const (
	// FormatText requests free-form text.
	FormatText Format = iota
	// FormatJSON requests a single JSON object.
	FormatJSON
)

// Message is a single turn handed to the provider.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UserMessage is shorthand for a user turn.
func UserMessage(text string) Message { return Message{Role: RoleUser, Text: text} }

// Request captures the normalized model input produced by stages.
type Request struct {
	Instructions string    `json:"instructions"` // System prompt
	Messages     []Message `json:"messages"`
	// Temperature overrides the adapter default when non-nil.
	Temperature *float64 `json:"temperature,omitempty"`
	Format      Format   `json:"format,omitempty"`
	Stream      bool     `json:"stream,omitempty"`
}

// Temperature returns a pointer suitable for Request.Temperature.
func Temperature(v float64) *float64 { return &v }

// LastUserText returns the text of the most recent user message.
func (r Request) LastUserText() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Text
		}
	}
	return ""
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
// A final chunk carries the complete text, not only the last delta.
type Response struct {
	ID           string      `json:"id"`
	Partial      bool        `json:"partial"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", ...
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "groq", "anthropic", "mock"
}

// Model is the minimal interface required by stages to drive generation.
//
// Implementations close both channels when done; at most one error is sent.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}
