package generation

import (
	"context"
	"iter"
)

// Source opens a remote generation stream. The returned sequence is lazy,
// finite and can be ranged over once; stopping the iteration early must
// release the underlying connection.
type Source interface {
	Stream(ctx context.Context, req Request) iter.Seq2[Chunk, error]
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context, req Request) iter.Seq2[Chunk, error]

func (f SourceFunc) Stream(ctx context.Context, req Request) iter.Seq2[Chunk, error] {
	return f(ctx, req)
}

// Run opens the session against src and consumes the stream in the calling
// goroutine. After every text chunk the surface gets the full accumulated
// text; progress chunks are passed through as-is. On success the artifact is
// offered to the surface once and returned.
//
// A remote failure leaves the session Failed and is returned as a
// *StreamError. Nothing is retried.
func (s *Session) Run(ctx context.Context, src Source, surface Surface) (Artifact, error) {
	if surface == nil {
		surface = SurfaceFuncs{}
	}
	if err := s.Begin(); err != nil {
		return Artifact{}, err
	}

	for c, err := range src.Stream(ctx, s.request) {
		if err != nil {
			s.fail(err)
			return Artifact{}, &StreamError{Cause: err}
		}
		if err := s.Apply(c); err != nil {
			return Artifact{}, err
		}

		switch c := c.(type) {
		case TextDelta:
			surface.RenderText(s.Text())
		case Progress:
			surface.RenderProgress(c)
		}

		if s.status == StatusCompleted {
			break
		}
	}

	if s.status == StatusStreaming {
		if err := ctx.Err(); err != nil {
			return Artifact{}, s.fail(err)
		}
		if err := s.Complete(); err != nil {
			return Artifact{}, err
		}
	}

	artifact, err := s.Finalize()
	if err != nil {
		return Artifact{}, err
	}
	surface.OfferDownload(artifact)

	return artifact, nil
}
