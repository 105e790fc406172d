package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured JSON with a language model.
type Provider interface {
	// Generate sends req and returns the model's answer. When req.Schema
	// is set the answer has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider is configured for.
	ModelID() string
}

// Request is one prompt. Question generation is single-turn, so Messages
// usually holds one user message.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema // nil asks for free text
	MaxTokens   int
	Temperature float64 // 0 leaves the provider default
}

// Prompt builds a single-turn request.
func Prompt(system, user string, schema *Schema) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
		Schema:   schema,
	}
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the author of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is the JSON Schema an answer must satisfy. Name identifies it in
// provider requests and in the validation cache, so two different
// definitions must not share a name.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a model answer. StopReason is normalized to "end" or
// "max_tokens".
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Usage counts the tokens of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a short model name through models. Unknown names are
// taken as full model ids.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
