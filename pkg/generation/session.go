package generation

import (
	"encoding/base64"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a Session.
type Status int

const (
	StatusPending Status = iota
	StatusStreaming
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusStreaming:
		return "streaming"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Session accumulates the output of one generation request. A session is
// owned by the goroutine that created it and is not safe for concurrent use.
//
// Status moves Pending -> Streaming -> Completed|Failed and never backwards.
type Session struct {
	id      string
	request Request
	now     func() time.Time
	prefix  string

	status     Status
	text       strings.Builder
	image      []byte
	progress   Progress
	chunks     int
	errMessage string
	finishedAt time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the clock used to timestamp text artifacts.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithID sets the session identifier used in logs. A random UUID is used
// otherwise.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithFilenamePrefix sets the prefix of text artifact filenames.
func WithFilenamePrefix(prefix string) Option {
	return func(s *Session) {
		s.prefix = prefix
	}
}

// NewSession creates a Pending session for req.
func NewSession(req Request, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		request: req,
		now:     time.Now,
		prefix:  DefaultTextPrefix,
		status:  StatusPending,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Request() Request { return s.request }

func (s *Session) Status() Status { return s.status }

// Text returns the accumulated text so far.
func (s *Session) Text() string { return s.text.String() }

// Image returns a copy of the last decoded image, or nil.
func (s *Session) Image() []byte { return slices.Clone(s.image) }

// Progress returns the most recent progress counters.
func (s *Session) Progress() Progress { return s.progress }

// Chunks returns the number of chunks applied.
func (s *Session) Chunks() int { return s.chunks }

// ErrorMessage returns the failure message of a Failed session.
func (s *Session) ErrorMessage() string { return s.errMessage }

// Begin moves a Pending session to Streaming.
func (s *Session) Begin() error {
	if s.status != StatusPending {
		return InvalidStateError{Op: "open", Status: s.status}
	}
	s.status = StatusStreaming
	return nil
}

// Apply processes one chunk. Chunks are only accepted while Streaming; a
// malformed chunk fails the session and returns a *StreamError.
func (s *Session) Apply(c Chunk) error {
	if s.status != StatusStreaming {
		return InvalidStateError{Op: "apply chunk to", Status: s.status}
	}
	s.chunks++

	switch c := c.(type) {
	case TextDelta:
		s.text.WriteString(c.Text)
	case ImagePayload:
		if c.Data == "" {
			return nil
		}
		data, err := base64.StdEncoding.DecodeString(c.Data)
		if err != nil {
			return s.fail(fmt.Errorf("malformed image payload: %w", err))
		}
		s.image = data
	case Progress:
		s.progress = c
	case End:
		return s.Complete()
	default:
		return s.fail(fmt.Errorf("unknown chunk type %T", c))
	}

	return nil
}

// Complete marks the stream as exhausted. An image session that never
// received an image fails instead.
func (s *Session) Complete() error {
	if s.status != StatusStreaming {
		return InvalidStateError{Op: "complete", Status: s.status}
	}
	if s.request.Mode() == ModeImage && len(s.image) == 0 {
		return s.fail(ErrNoImage)
	}

	s.status = StatusCompleted
	s.finishedAt = s.now()
	return nil
}

// Fail records err and moves the session to Failed. Partial text is kept
// for display.
func (s *Session) Fail(err error) error {
	if s.status.Terminal() {
		return InvalidStateError{Op: "fail", Status: s.status}
	}
	s.fail(err)
	return nil
}

func (s *Session) fail(err error) error {
	if err == nil {
		err = errUnknownFailure
	}
	s.status = StatusFailed
	s.errMessage = err.Error()
	s.finishedAt = s.now()
	return &StreamError{Cause: err}
}
