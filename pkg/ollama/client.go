// Package ollama streams generations from an Ollama compatible endpoint,
// such as Ollama Cloud, and exposes them as generation chunks.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/llm"
)

const (
	chatPath     = "/api/chat"
	generatePath = "/api/generate"

	// Image payloads arrive base64 encoded on a single line.
	maxLineSize = 64 << 20
)

// Config is the client configuration.
type Config struct {
	// Host is the base URL, e.g. "https://ollama.com".
	Host string

	// APIKey is sent as "Authorization: Bearer <APIKey>".
	APIKey string

	// Timeout bounds a whole request, streamed body included. Zero disables it.
	Timeout time.Duration

	// Options are forwarded with every request when set.
	Options *llm.Options

	// Image holds size hints sent with image generation requests.
	Image ImageSize
}

// ImageSize hints the output of image models. Zero fields are left to the
// model.
type ImageSize struct {
	Width  int
	Height int
	Steps  int
}

// Client is a streaming Ollama API client. It implements generation.Source.
type Client struct {
	base       *url.URL
	apiKey     string
	options    *llm.Options
	image      ImageSize
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a new Client.
func New(config Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(config.Host, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", config.Host, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid host %q: scheme must be http or https", config.Host)
	}

	return &Client{
		base:    base,
		apiKey:  config.APIKey,
		options: config.Options,
		image:   config.Image,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// Stream issues req and returns the response as a lazy chunk sequence. The
// HTTP call is made when iteration starts; each step blocks until the next
// NDJSON line arrives. Stopping the iteration closes the response body.
func (c *Client) Stream(ctx context.Context, req generation.Request) iter.Seq2[generation.Chunk, error] {
	return func(yield func(generation.Chunk, error) bool) {
		path, body, err := c.encode(req)
		if err != nil {
			yield(nil, err)
			return
		}

		resp, err := c.do(ctx, path, body)
		if err != nil {
			yield(nil, err)
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var chunk llm.StreamChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				yield(nil, fmt.Errorf("malformed chunk: %w", err))
				return
			}

			if chunk.Error != "" {
				yield(nil, errors.New(chunk.Error))
				return
			}

			for _, out := range translate(req.Mode(), &chunk) {
				if !yield(out, nil) {
					return
				}
			}

			if chunk.Done {
				c.logger.Debug("stream done",
					zap.String("model", chunk.Model),
					zap.String("done_reason", chunk.DoneReason),
					zap.Int("eval_count", chunk.EvalCount),
					zap.Duration("total_duration", time.Duration(chunk.TotalDuration)),
				)
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(nil, fmt.Errorf("reading stream: %w", err))
		}
	}
}

// translate maps one wire chunk to zero or more generation chunks.
func translate(mode generation.Mode, chunk *llm.StreamChunk) []generation.Chunk {
	var out []generation.Chunk

	switch mode {
	case generation.ModeImage:
		if chunk.Total > 0 {
			out = append(out, generation.Progress{Completed: chunk.Completed, Total: chunk.Total})
		}
		if chunk.Image != "" {
			out = append(out, generation.ImagePayload{Data: chunk.Image})
		}
	default:
		text := chunk.Message.Content
		if text == "" {
			text = chunk.Response
		}
		if text != "" {
			out = append(out, generation.TextDelta{Text: text})
		}
	}

	if chunk.Done {
		out = append(out, generation.End{})
	}
	return out
}

func (c *Client) encode(req generation.Request) (string, []byte, error) {
	var (
		path    string
		payload any
	)

	switch req.Mode() {
	case generation.ModeImage:
		path = generatePath
		payload = llm.GenerateRequest{
			Model:   req.Model(),
			Prompt:  req.Prompt(),
			Stream:  llm.Streaming(),
			Width:   c.image.Width,
			Height:  c.image.Height,
			Steps:   c.image.Steps,
			Options: c.requestOptions(),
		}
	case generation.ModeText:
		path = chatPath
		payload = llm.ChatRequest{
			Model:    req.Model(),
			Messages: req.Messages(),
			Stream:   llm.Streaming(),
			Options:  c.requestOptions(),
		}
	default:
		return "", nil, fmt.Errorf("%w: unknown mode %q", generation.ErrMalformedRequest, req.Mode())
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("marshal request: %w", err)
	}
	return path, body, nil
}

func (c *Client) requestOptions() *llm.Options {
	if c.options.Empty() {
		return nil
	}
	return c.options
}

func (c *Client) do(ctx context.Context, path string, body []byte) (*http.Response, error) {
	endpoint := c.base.JoinPath(path).String()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("opening generation stream",
		zap.String("url", endpoint),
		zap.Int("body_size", len(body)),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	return resp, nil
}

func statusError(resp *http.Response) error {
	statusErr := llm.StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return statusErr
	}

	var errResp llm.ErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
		statusErr.ErrorMessage = errResp.Error
	} else {
		statusErr.ErrorMessage = strings.TrimSpace(string(data))
	}
	return statusErr
}
