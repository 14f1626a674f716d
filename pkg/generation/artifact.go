package generation

import (
	"slices"
	"time"
)

const (
	// DefaultTextPrefix prefixes text artifact filenames.
	DefaultTextPrefix = "artikel"

	// ImageFilename is the fixed filename of image artifacts.
	ImageFilename = "generated_image.png"

	MIMETypeText = "text/plain"
	MIMETypePNG  = "image/png"

	timestampLayout = "20060102_150405"
)

// Artifact is the finalized, downloadable result of a completed session.
type Artifact struct {
	Data     []byte `json:"data"`
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
}

// TextFilename returns "<prefix>_YYYYMMDD_HHMMSS.txt" for t.
func TextFilename(prefix string, t time.Time) string {
	return prefix + "_" + t.Format(timestampLayout) + ".txt"
}

// Finalize returns the artifact of a Completed session. Any other status
// yields an InvalidStateError; partial output is never offered.
func (s *Session) Finalize() (Artifact, error) {
	if s.status != StatusCompleted {
		return Artifact{}, InvalidStateError{Op: "finalize", Status: s.status}
	}

	if s.request.Mode() == ModeImage {
		return Artifact{
			Data:     slices.Clone(s.image),
			Filename: ImageFilename,
			MIMEType: MIMETypePNG,
		}, nil
	}

	return Artifact{
		Data:     []byte(s.text.String()),
		Filename: TextFilename(s.prefix, s.finishedAt),
		MIMEType: MIMETypeText,
	}, nil
}
