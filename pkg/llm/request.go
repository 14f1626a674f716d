package llm

// ChatRequest represents a chat completion request (Ollama-compatible).
type ChatRequest struct {
	Model    string    `json:"model"`            // Model name (e.g., "gpt-oss:120b")
	Messages []Message `json:"messages"`         // Conversation history
	Stream   *bool     `json:"stream,omitempty"` // Whether to stream responses (default: true in Ollama)

	// Generation options
	Options *Options `json:"options,omitempty"`
}

// GenerateRequest represents a single-prompt generation request. Image
// generation models are driven through this endpoint.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream *bool  `json:"stream,omitempty"`

	// Image size hints, honoured by image models only
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
	Steps  int `json:"steps,omitempty"`

	Options *Options `json:"options,omitempty"`
}

// Streaming returns a pointer to true, for use in the Stream field.
func Streaming() *bool {
	streaming := true
	return &streaming
}
