// Package studio wires prompt building, generation sessions and a remote
// source together. Every user facing surface (CLI, HTTP, MCP) goes through
// a Studio.
package studio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/scribe/pkg/config"
	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/logger"
	"github.com/papercomputeco/scribe/pkg/metrics"
	"github.com/papercomputeco/scribe/pkg/prompt"
)

// Generator kinds, used in logs and metric labels.
const (
	KindArticle = "article"
	KindCoding  = "coding"
	KindImage   = "image"
)

// Filename prefix of coding agent artifacts.
const codingPrefix = "kode"

// ArticleInput is the article form plus the chosen model.
type ArticleInput struct {
	Model string
	prompt.ArticleForm
}

// CodingInput is the coding agent form plus the chosen model.
type CodingInput struct {
	Model string
	prompt.CodingForm
}

// ImageInput is an image prompt plus the chosen model.
type ImageInput struct {
	Model  string
	Prompt string
}

// Studio runs generations. It holds no per-generation state; every call
// creates its own session.
type Studio struct {
	source  generation.Source
	models  config.Models
	logger  *zap.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// Option configures a Studio.
type Option func(*Studio)

// WithMetrics records every finished generation in rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *Studio) {
		s.metrics = rec
	}
}

// WithClock overrides the clock used for artifact timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Studio) {
		s.now = now
	}
}

// New creates a Studio streaming from source and offering models.
func New(source generation.Source, models config.Models, logger *zap.Logger, opts ...Option) *Studio {
	s := &Studio{
		source: source,
		models: models,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Models returns the configured model choices.
func (s *Studio) Models() config.Models {
	return s.models
}

// Job is a validated generation, ready to run.
type Job struct {
	Kind    string
	Request generation.Request
	options []generation.Option
}

// ArticleJob validates in and builds the article request.
func (s *Studio) ArticleJob(in ArticleInput) (Job, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Job{}, fmt.Errorf("%w: title is required", generation.ErrMalformedRequest)
	}

	model, err := config.ResolveModel(s.models.Article, in.Model)
	if err != nil {
		return Job{}, fmt.Errorf("%w: %v", generation.ErrMalformedRequest, err)
	}

	messages, err := prompt.ArticleMessages(in.ArticleForm)
	if err != nil {
		return Job{}, err
	}

	req, err := generation.NewTextRequest(model, messages)
	if err != nil {
		return Job{}, err
	}

	return Job{Kind: KindArticle, Request: req.WithPrompt(messages[0].Content)}, nil
}

// CodingJob validates in and builds the coding agent request.
func (s *Studio) CodingJob(in CodingInput) (Job, error) {
	if strings.TrimSpace(in.Instruction) == "" {
		return Job{}, fmt.Errorf("%w: instruction is required", generation.ErrMalformedRequest)
	}

	model, err := config.ResolveModel(s.models.Coding, in.Model)
	if err != nil {
		return Job{}, fmt.Errorf("%w: %v", generation.ErrMalformedRequest, err)
	}

	req, err := generation.NewTextRequest(model, prompt.CodingMessages(in.CodingForm))
	if err != nil {
		return Job{}, err
	}

	return Job{
		Kind:    KindCoding,
		Request: req,
		options: []generation.Option{generation.WithFilenamePrefix(codingPrefix)},
	}, nil
}

// ImageJob validates in and builds the image request.
func (s *Studio) ImageJob(in ImageInput) (Job, error) {
	model, err := config.ResolveModel(s.models.Image, in.Model)
	if err != nil {
		return Job{}, fmt.Errorf("%w: %v", generation.ErrMalformedRequest, err)
	}

	req, err := generation.NewImageRequest(model, prompt.Image(in.Prompt))
	if err != nil {
		return Job{}, err
	}

	return Job{Kind: KindImage, Request: req}, nil
}

// Article generates an article. The returned session is non-nil once the
// request was valid, so callers can show partial text after a failure.
func (s *Studio) Article(ctx context.Context, in ArticleInput, surface generation.Surface) (*generation.Session, generation.Artifact, error) {
	job, err := s.ArticleJob(in)
	if err != nil {
		return nil, generation.Artifact{}, err
	}
	return s.Run(ctx, job, surface)
}

// Coding runs the coding agent.
func (s *Studio) Coding(ctx context.Context, in CodingInput, surface generation.Surface) (*generation.Session, generation.Artifact, error) {
	job, err := s.CodingJob(in)
	if err != nil {
		return nil, generation.Artifact{}, err
	}
	return s.Run(ctx, job, surface)
}

// Image generates an image.
func (s *Studio) Image(ctx context.Context, in ImageInput, surface generation.Surface) (*generation.Session, generation.Artifact, error) {
	job, err := s.ImageJob(in)
	if err != nil {
		return nil, generation.Artifact{}, err
	}
	return s.Run(ctx, job, surface)
}

// Run opens a fresh session for job and consumes it in the calling
// goroutine.
func (s *Studio) Run(ctx context.Context, job Job, surface generation.Surface) (*generation.Session, generation.Artifact, error) {
	opts := append([]generation.Option{generation.WithClock(s.now)}, job.options...)
	session := generation.NewSession(job.Request, opts...)
	req := job.Request
	kind := job.Kind

	log := s.logger.With(
		zap.String("session_id", session.ID()),
		zap.String("kind", kind),
		zap.String("model", req.Model()),
	)
	log.Info("generation started", zap.String("prompt_preview", logger.Preview(req.Prompt(), 80)))

	start := time.Now()
	artifact, err := session.Run(ctx, s.source, surface)
	elapsed := time.Since(start)

	s.metrics.Observe(kind, session, elapsed, len(artifact.Data))

	if err != nil {
		log.Error("generation failed",
			zap.Error(err),
			zap.Int("chunks", session.Chunks()),
			zap.Int("partial_bytes", len(session.Text())),
			zap.Duration("duration", elapsed),
		)
		return session, generation.Artifact{}, err
	}

	log.Info("generation completed",
		zap.String("filename", artifact.Filename),
		zap.Int("bytes", len(artifact.Data)),
		zap.Int("chunks", session.Chunks()),
		zap.Duration("duration", elapsed),
	)
	return session, artifact, nil
}
