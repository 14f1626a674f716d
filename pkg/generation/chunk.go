package generation

// Chunk is one discrete unit of an incremental generation response. The
// concrete types are TextDelta, ImagePayload, Progress and End.
type Chunk interface {
	chunk()
}

// TextDelta is a fragment of generated text. Deltas are concatenated in
// arrival order.
type TextDelta struct {
	Text string
}

// ImagePayload carries a base64 encoded image. Only the last non-empty
// payload of a stream is kept.
type ImagePayload struct {
	Data string
}

// Progress reports image generation progress as reported by the endpoint.
type Progress struct {
	Completed int64 `json:"completed"`
	Total     int64 `json:"total"`
}

// End marks the end of a stream.
type End struct{}

func (TextDelta) chunk()    {}
func (ImagePayload) chunk() {}
func (Progress) chunk()     {}
func (End) chunk()          {}

// Fraction returns completion in [0, 1]. Unknown totals report 0.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Completed) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}
