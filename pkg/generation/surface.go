package generation

// Surface receives the values a display layer renders. RenderText is always
// handed the full accumulated text, never a delta.
type Surface interface {
	RenderText(text string)
	RenderProgress(p Progress)
	OfferDownload(a Artifact)
}

// SurfaceFuncs adapts plain functions to a Surface. Nil fields are skipped.
type SurfaceFuncs struct {
	Text     func(string)
	Progress func(Progress)
	Download func(Artifact)
}

func (f SurfaceFuncs) RenderText(text string) {
	if f.Text != nil {
		f.Text(text)
	}
}

func (f SurfaceFuncs) RenderProgress(p Progress) {
	if f.Progress != nil {
		f.Progress(p)
	}
}

func (f SurfaceFuncs) OfferDownload(a Artifact) {
	if f.Download != nil {
		f.Download(a)
	}
}
