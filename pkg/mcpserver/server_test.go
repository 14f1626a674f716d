package mcpserver_test

import (
	"context"
	"encoding/base64"
	"errors"
	"iter"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/scribe/pkg/config"
	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/mcpserver"
	"github.com/papercomputeco/scribe/pkg/studio"
)

var _ = Describe("MCP tools", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		chunks  []generation.Chunk
		failure error
		last    generation.Request
		client  *mcp.ClientSession
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		chunks = nil
		failure = nil

		source := generation.SourceFunc(func(_ context.Context, req generation.Request) iter.Seq2[generation.Chunk, error] {
			last = req
			return func(yield func(generation.Chunk, error) bool) {
				for _, c := range chunks {
					if !yield(c, nil) {
						return
					}
				}
				if failure != nil {
					yield(nil, failure)
				}
			}
		})

		st := studio.New(source, config.Default().Models, zap.NewNop())
		server := mcpserver.New(st, "test", zap.NewNop())

		clientTransport, serverTransport := mcp.NewInMemoryTransports()
		_, err := server.Connect(ctx, serverTransport, nil)
		Expect(err).NotTo(HaveOccurred())

		c := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
		client, err = c.Connect(ctx, clientTransport, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		client.Close()
		cancel()
	})

	call := func(name string, args map[string]any) *mcp.CallToolResult {
		res, err := client.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	text := func(res *mcp.CallToolResult) string {
		Expect(res.Content).NotTo(BeEmpty())
		tc, ok := res.Content[0].(*mcp.TextContent)
		Expect(ok).To(BeTrue())
		return tc.Text
	}

	It("lists the generator tools", func() {
		res, err := client.ListTools(ctx, &mcp.ListToolsParams{})
		Expect(err).NotTo(HaveOccurred())

		var names []string
		for _, tool := range res.Tools {
			names = append(names, tool.Name)
		}
		Expect(names).To(ContainElements("generate_article", "generate_code", "generate_image", "list_models"))
	})

	It("returns the generated article", func() {
		chunks = []generation.Chunk{
			generation.TextDelta{Text: "Intro."},
			generation.TextDelta{Text: " Body."},
			generation.End{},
		}

		res := call("generate_article", map[string]any{
			"title":    "Climate Change",
			"keywords": "warming,co2",
			"length":   "long",
		})
		Expect(res.IsError).To(BeFalse())
		Expect(text(res)).To(Equal("Intro. Body."))
		Expect(last.Prompt()).To(ContainSubstring("~2000 words"))
		Expect(last.Prompt()).To(ContainSubstring("Formal"))
	})

	It("reports an unknown length class as a tool error", func() {
		res := call("generate_article", map[string]any{"title": "T", "length": "epic"})
		Expect(res.IsError).To(BeTrue())
		Expect(text(res)).To(ContainSubstring("invalid arguments"))
	})

	It("includes partial output in stream failures", func() {
		chunks = []generation.Chunk{generation.TextDelta{Text: "half an answer"}}
		failure = errors.New("upstream closed the connection")

		res := call("generate_code", map[string]any{"instruction": "write fizzbuzz"})
		Expect(res.IsError).To(BeTrue())
		Expect(text(res)).To(ContainSubstring("upstream closed the connection"))
		Expect(text(res)).To(ContainSubstring("half an answer"))
	})

	It("returns generated images as image content", func() {
		chunks = []generation.Chunk{
			generation.Progress{Completed: 1, Total: 1},
			generation.ImagePayload{Data: base64.StdEncoding.EncodeToString([]byte("png bytes"))},
			generation.End{},
		}

		res := call("generate_image", map[string]any{"prompt": "a fox"})
		Expect(res.IsError).To(BeFalse())
		img, ok := res.Content[0].(*mcp.ImageContent)
		Expect(ok).To(BeTrue())
		Expect(img.Data).To(Equal([]byte("png bytes")))
		Expect(img.MIMEType).To(Equal("image/png"))
	})

	It("lists the configured models", func() {
		res := call("list_models", map[string]any{})
		Expect(text(res)).To(ContainSubstring("gpt-oss:120b"))
	})
})
