// Package generation implements the streaming generation session: a single
// owner accumulator that consumes chunks from a remote generation endpoint,
// exposes the partial output for live rendering and finalizes it into a
// downloadable artifact.
package generation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/papercomputeco/scribe/pkg/llm"
)

// Mode selects the kind of output a request produces.
type Mode string

const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
)

// Request is an immutable generation request. Build one with NewTextRequest
// or NewImageRequest.
type Request struct {
	model    string
	messages []llm.Message
	prompt   string
	mode     Mode
}

// NewTextRequest builds a text mode request from an ordered list of
// role-tagged messages.
func NewTextRequest(model string, messages []llm.Message) (Request, error) {
	if strings.TrimSpace(model) == "" {
		return Request{}, fmt.Errorf("%w: model is required", ErrMalformedRequest)
	}
	if len(messages) == 0 {
		return Request{}, fmt.Errorf("%w: at least one message is required", ErrMalformedRequest)
	}

	for i, m := range messages {
		if m.Role != llm.RoleSystem && m.Role != llm.RoleUser {
			return Request{}, fmt.Errorf("%w: message %d has unsupported role %q", ErrMalformedRequest, i, m.Role)
		}
	}

	return Request{
		model:    model,
		messages: slices.Clone(messages),
		mode:     ModeText,
	}, nil
}

// NewImageRequest builds an image mode request from a single prompt.
func NewImageRequest(model, prompt string) (Request, error) {
	if strings.TrimSpace(model) == "" {
		return Request{}, fmt.Errorf("%w: model is required", ErrMalformedRequest)
	}
	if strings.TrimSpace(prompt) == "" {
		return Request{}, fmt.Errorf("%w: image prompt is required", ErrMalformedRequest)
	}

	return Request{
		model:  model,
		prompt: prompt,
		mode:   ModeImage,
	}, nil
}

// WithPrompt returns a copy of r carrying the raw prompt text the messages
// were built from.
func (r Request) WithPrompt(prompt string) Request {
	r.messages = slices.Clone(r.messages)
	r.prompt = prompt
	return r
}

func (r Request) Model() string { return r.model }

func (r Request) Mode() Mode { return r.mode }

// Prompt returns the raw prompt. It is always set for image requests and
// optional for text requests.
func (r Request) Prompt() string { return r.prompt }

// Messages returns a copy of the ordered message list.
func (r Request) Messages() []llm.Message {
	return slices.Clone(r.messages)
}
