package llm

import "time"

// StreamChunk represents a single NDJSON line of a streaming response.
// Chat responses carry text in Message; image generation responses carry
// progress counters and, eventually, a base64-encoded image.
type StreamChunk struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Message   Message   `json:"message"`
	Done      bool      `json:"done"`

	// Generate endpoint text output
	Response string `json:"response,omitempty"`

	// Image generation progress and payload
	Image     string `json:"image,omitempty"`
	Completed int64  `json:"completed,omitempty"`
	Total     int64  `json:"total,omitempty"`

	// Error is set when the server aborts the stream mid-way
	Error string `json:"error,omitempty"`

	// Final chunk includes metrics
	DoneReason      string `json:"done_reason,omitempty"`
	TotalDuration   int64  `json:"total_duration,omitempty"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
	EvalDuration    int64  `json:"eval_duration,omitempty"`
}
