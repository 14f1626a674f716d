package studio_test

import (
	"context"
	"encoding/base64"
	"errors"
	"iter"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/papercomputeco/scribe/pkg/config"
	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/llm"
	"github.com/papercomputeco/scribe/pkg/metrics"
	"github.com/papercomputeco/scribe/pkg/prompt"
	"github.com/papercomputeco/scribe/pkg/studio"
)

// fakeSource records the last request and replays chunks, optionally
// failing after them.
type fakeSource struct {
	last   generation.Request
	calls  int
	chunks []generation.Chunk
	err    error
}

func (f *fakeSource) Stream(_ context.Context, req generation.Request) iter.Seq2[generation.Chunk, error] {
	f.last = req
	f.calls++
	return func(yield func(generation.Chunk, error) bool) {
		for _, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if f.err != nil {
			yield(nil, f.err)
		}
	}
}

var _ = Describe("Studio", func() {
	var (
		ctx    context.Context
		source *fakeSource
		reg    *prometheus.Registry
		s      *studio.Studio
		now    = time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
	)

	BeforeEach(func() {
		ctx = context.Background()
		source = &fakeSource{}
		reg = prometheus.NewRegistry()
		s = studio.New(source, config.Default().Models, zap.NewNop(),
			studio.WithMetrics(metrics.New(reg)),
			studio.WithClock(func() time.Time { return now }),
		)
	})

	Describe("Article", func() {
		form := prompt.ArticleForm{Title: "Climate Change", Keywords: "warming,co2", Length: prompt.Medium, Tone: prompt.Formal}

		It("streams the article end to end", func() {
			source.chunks = []generation.Chunk{
				generation.TextDelta{Text: "Intro."},
				generation.TextDelta{Text: " Body."},
				generation.TextDelta{Text: " Conclusion."},
				generation.End{},
			}
			var rendered []string
			surface := generation.SurfaceFuncs{Text: func(t string) { rendered = append(rendered, t) }}

			session, artifact, err := s.Article(ctx, studio.ArticleInput{ArticleForm: form}, surface)
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Status()).To(Equal(generation.StatusCompleted))
			Expect(artifact.Data).To(Equal([]byte("Intro. Body. Conclusion.")))
			Expect(artifact.Filename).To(Equal("artikel_20250102_030405.txt"))
			Expect(rendered).To(HaveLen(3))

			Expect(source.last.Model()).To(Equal("gpt-oss:120b"))
			Expect(source.last.Prompt()).To(ContainSubstring("~1000 words"))
			msgs := source.last.Messages()
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Role).To(Equal(llm.RoleUser))
			Expect(msgs[0].Content).To(ContainSubstring("Climate Change"))
			Expect(msgs[0].Content).To(ContainSubstring("warming,co2"))

			count, err := testutil.GatherAndCount(reg, "scribe_generation_total")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("requires a title and never opens a stream without one", func() {
			_, _, err := s.Article(ctx, studio.ArticleInput{ArticleForm: prompt.ArticleForm{Length: prompt.Short}}, nil)
			Expect(err).To(MatchError(generation.ErrMalformedRequest))
			Expect(source.calls).To(BeZero())
		})

		It("rejects a model that is not offered", func() {
			_, _, err := s.Article(ctx, studio.ArticleInput{Model: "nope", ArticleForm: form}, nil)
			Expect(err).To(MatchError(generation.ErrMalformedRequest))
		})

		It("returns the failed session with its partial text", func() {
			source.chunks = []generation.Chunk{generation.TextDelta{Text: "Intro."}}
			source.err = errors.New("connection reset by peer")

			session, _, err := s.Article(ctx, studio.ArticleInput{ArticleForm: form}, nil)
			Expect(err).To(MatchError(ContainSubstring("connection reset by peer")))
			Expect(session).NotTo(BeNil())
			Expect(session.Status()).To(Equal(generation.StatusFailed))
			Expect(session.Text()).To(Equal("Intro."))
		})
	})

	Describe("Coding", func() {
		It("sends the system prompt first and names the artifact kode_*", func() {
			source.chunks = []generation.Chunk{generation.TextDelta{Text: "package main"}, generation.End{}}

			_, artifact, err := s.Coding(ctx, studio.CodingInput{
				Model:      "gpt-oss:120b",
				CodingForm: prompt.CodingForm{Mode: prompt.Refactor, Instruction: "simplify", ExistingCode: "x := 1"},
			}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(artifact.Filename).To(Equal("kode_20250102_030405.txt"))

			msgs := source.last.Messages()
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].Role).To(Equal(llm.RoleSystem))
			Expect(msgs[1].Content).To(ContainSubstring("x := 1"))
		})

		It("requires an instruction", func() {
			_, _, err := s.Coding(ctx, studio.CodingInput{CodingForm: prompt.CodingForm{Mode: prompt.Generate}}, nil)
			Expect(err).To(MatchError(generation.ErrMalformedRequest))
		})
	})

	Describe("Image", func() {
		It("returns the decoded last image", func() {
			source.chunks = []generation.Chunk{
				generation.ImagePayload{Data: base64.StdEncoding.EncodeToString([]byte("old"))},
				generation.ImagePayload{Data: base64.StdEncoding.EncodeToString([]byte("new"))},
				generation.End{},
			}

			_, artifact, err := s.Image(ctx, studio.ImageInput{Prompt: " a fox "}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(artifact.Data).To(Equal([]byte("new")))
			Expect(artifact.MIMEType).To(Equal("image/png"))
			Expect(source.last.Mode()).To(Equal(generation.ModeImage))
			Expect(source.last.Prompt()).To(Equal("a fox"))
		})

		It("requires a prompt", func() {
			_, _, err := s.Image(ctx, studio.ImageInput{}, nil)
			Expect(err).To(MatchError(generation.ErrMalformedRequest))
		})
	})
})

var _ = Describe("Job", func() {
	It("can be built up front and run later", func() {
		source := &fakeSource{chunks: []generation.Chunk{generation.TextDelta{Text: "ok"}}}
		s := studio.New(source, config.Default().Models, zap.NewNop())

		job, err := s.ArticleJob(studio.ArticleInput{ArticleForm: prompt.ArticleForm{Title: "T", Length: prompt.Short}})
		Expect(err).NotTo(HaveOccurred())
		Expect(job.Kind).To(Equal(studio.KindArticle))
		Expect(source.calls).To(BeZero())

		_, artifact, err := s.Run(context.Background(), job, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(artifact.Data)).To(Equal("ok"))
	})

	It("surfaces an unknown length class before streaming", func() {
		s := studio.New(&fakeSource{}, config.Default().Models, zap.NewNop())

		_, err := s.ArticleJob(studio.ArticleInput{ArticleForm: prompt.ArticleForm{Title: "T", Length: "epic"}})
		Expect(err).To(MatchError(generation.ErrMalformedRequest))
	})
})
