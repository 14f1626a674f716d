package server

import (
	"bufio"
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/studio"
)

// Event types of a generation stream.
const (
	EventText     = "text"
	EventProgress = "progress"
	EventDone     = "done"
	EventError    = "error"
)

// Event is one line of a generation stream. Text events carry the full
// accumulated text, not the delta, so a client can simply replace what it
// shows.
type Event struct {
	Type     string               `json:"type"`
	Text     string               `json:"text,omitempty"`
	Progress *generation.Progress `json:"progress,omitempty"`
	Artifact *generation.Artifact `json:"artifact,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// stream runs job while writing its events to the response body. The
// generation is cancelled as soon as a write to the client fails.
func (s *Server) stream(c *fiber.Ctx, job studio.Job) error {
	c.Set(fiber.HeaderContentType, "application/x-ndjson")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(s.ctx)
		defer cancel()

		startTime := time.Now()
		out := &eventWriter{w: w, enc: json.NewEncoder(w), cancel: cancel}

		session, _, err := s.studio.Run(ctx, job, out)
		if out.err != nil {
			s.logger.Warn("client went away during generation",
				zap.String("kind", job.Kind),
				zap.Error(out.err),
				zap.Duration("duration", time.Since(startTime)),
			)
			return
		}
		if err != nil {
			ev := Event{Type: EventError, Error: err.Error()}
			if session != nil {
				ev.Text = session.Text()
			}
			out.send(ev)
		}
	}))

	return nil
}

// eventWriter is the generation.Surface of an HTTP stream.
type eventWriter struct {
	w      *bufio.Writer
	enc    *json.Encoder
	cancel context.CancelFunc
	err    error
}

func (e *eventWriter) RenderText(full string) {
	e.send(Event{Type: EventText, Text: full})
}

func (e *eventWriter) RenderProgress(p generation.Progress) {
	e.send(Event{Type: EventProgress, Progress: &p})
}

func (e *eventWriter) OfferDownload(a generation.Artifact) {
	e.send(Event{Type: EventDone, Artifact: &a})
}

func (e *eventWriter) send(ev Event) {
	if e.err != nil {
		return
	}

	err := e.enc.Encode(ev)
	if err == nil {
		err = e.w.Flush()
	}
	if err != nil {
		e.err = err
		e.cancel()
	}
}
