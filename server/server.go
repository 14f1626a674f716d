// Package server exposes the generators over HTTP. Generations stream back
// as newline delimited JSON events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/llm"
	"github.com/papercomputeco/scribe/pkg/prompt"
	"github.com/papercomputeco/scribe/pkg/studio"
)

// ArticleRequest is the body of POST /api/article.
type ArticleRequest struct {
	Model    string `json:"model,omitempty"`
	Title    string `json:"title"`
	Keywords string `json:"keywords,omitempty"`
	Length   string `json:"length,omitempty"`
	Tone     string `json:"tone,omitempty"`
}

// CodeRequest is the body of POST /api/code.
type CodeRequest struct {
	Model        string `json:"model,omitempty"`
	Mode         string `json:"mode,omitempty"`
	Instruction  string `json:"instruction"`
	ExistingCode string `json:"existing_code,omitempty"`
}

// ImageRequest is the body of POST /api/image.
type ImageRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
}

// Server serves generations over HTTP. It is stateless: every request
// runs its own session and nothing outlives the response.
type Server struct {
	config Config
	studio *studio.Studio
	logger *zap.Logger
	server *fiber.App

	// ctx bounds every in-flight generation; Shutdown cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures optional routes of a Server.
type Option func(*Server)

// WithMetrics serves the collectors of g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.server.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	}
}

// WithMCP mounts m on /mcp using the streamable HTTP transport.
func WithMCP(m *mcp.Server) Option {
	return func(s *Server) {
		handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return m
		}, &mcp.StreamableHTTPOptions{
			Stateless:    true,
			JSONResponse: true,
		})
		s.server.All("/mcp", adaptor.HTTPHandler(handler))
	}
}

// New creates a new Server.
func New(config Config, st *studio.Studio, logger *zap.Logger, opts ...Option) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config: config,
		studio: st,
		logger: logger,
		server: app,
		ctx:    ctx,
		cancel: cancel,
	}

	app.Post("/api/article", s.handleArticle)
	app.Post("/api/code", s.handleCode)
	app.Post("/api/image", s.handleImage)
	app.Get("/api/models", s.handleModels)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok", "version": s.config.Version})
	})

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.server
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting http server", zap.String("listen", s.config.ListenAddr))
	return s.server.Listen(s.config.ListenAddr)
}

// RunWithListener starts the server on ln.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting http server", zap.String("listen", ln.Addr().String()))
	return s.server.Listener(ln)
}

// Shutdown stops accepting connections, cancels in-flight generations and
// waits for their responses to finish.
func (s *Server) Shutdown() error {
	s.cancel()
	return s.server.Shutdown()
}

func (s *Server) handleArticle(c *fiber.Ctx) error {
	var req ArticleRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	length := prompt.Medium
	if req.Length != "" {
		parsed, err := prompt.ParseLengthClass(req.Length)
		if err != nil {
			return badRequest(c, err.Error())
		}
		length = parsed
	}

	tone := prompt.Formal
	if req.Tone != "" {
		tone = prompt.Tone(req.Tone)
	}

	job, err := s.studio.ArticleJob(studio.ArticleInput{
		Model: req.Model,
		ArticleForm: prompt.ArticleForm{
			Title:    req.Title,
			Keywords: req.Keywords,
			Length:   length,
			Tone:     tone,
		},
	})
	if err != nil {
		return jobError(c, err)
	}

	return s.stream(c, job)
}

func (s *Server) handleCode(c *fiber.Ctx) error {
	var req CodeRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	mode := prompt.Generate
	if req.Mode != "" {
		mode = prompt.CodingMode(req.Mode)
	}

	job, err := s.studio.CodingJob(studio.CodingInput{
		Model: req.Model,
		CodingForm: prompt.CodingForm{
			Mode:         mode,
			Instruction:  req.Instruction,
			ExistingCode: req.ExistingCode,
		},
	})
	if err != nil {
		return jobError(c, err)
	}

	return s.stream(c, job)
}

func (s *Server) handleImage(c *fiber.Ctx) error {
	var req ImageRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	job, err := s.studio.ImageJob(studio.ImageInput{Model: req.Model, Prompt: req.Prompt})
	if err != nil {
		return jobError(c, err)
	}

	return s.stream(c, job)
}

func (s *Server) handleModels(c *fiber.Ctx) error {
	models := s.studio.Models()
	return c.JSON(map[string][]string{
		"article": models.Article,
		"coding":  models.Coding,
		"image":   models.Image,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: msg})
}

func jobError(c *fiber.Ctx, err error) error {
	if errors.Is(err, generation.ErrMalformedRequest) {
		return badRequest(c, err.Error())
	}
	return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: err.Error()})
}
