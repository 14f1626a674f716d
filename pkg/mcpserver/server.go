// Package mcpserver exposes the generators as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/prompt"
	"github.com/papercomputeco/scribe/pkg/studio"
)

// ArticleArgs are the arguments of generate_article.
type ArticleArgs struct {
	Title    string `json:"title" jsonschema:"Article title"`
	Keywords string `json:"keywords,omitempty" jsonschema:"Comma separated main keywords"`
	Length   string `json:"length,omitempty" jsonschema:"short (~500 words), medium (~1000 words) or long (~2000 words); defaults to medium"`
	Tone     string `json:"tone,omitempty" jsonschema:"Writing style, e.g. Formal, Casual, SEO Friendly, Storytelling; defaults to Formal"`
	Model    string `json:"model,omitempty" jsonschema:"Model to use; defaults to the first configured article model"`
}

// CodeArgs are the arguments of generate_code.
type CodeArgs struct {
	Instruction  string `json:"instruction" jsonschema:"What the coding agent should do"`
	Mode         string `json:"mode,omitempty" jsonschema:"Generate new code, Debug / fix errors, Refactor, Explain code or Code review"`
	ExistingCode string `json:"existing_code,omitempty" jsonschema:"Existing code, included verbatim"`
	Model        string `json:"model,omitempty" jsonschema:"Model to use; defaults to the first configured coding model"`
}

// ImageArgs are the arguments of generate_image.
type ImageArgs struct {
	Prompt string `json:"prompt" jsonschema:"Description of the image"`
	Model  string `json:"model,omitempty" jsonschema:"Model to use; defaults to the first configured image model"`
}

type listArgs struct{}

// New builds an MCP server whose tools run generations through st.
func New(st *studio.Studio, version string, logger *zap.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "scribe",
		Version: version,
		Title:   "scribe article, code and image generator",
	}, nil)

	t := &tools{studio: st, logger: logger}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_article",
		Description: "Write an SEO friendly article for a title and keywords",
	}, t.article)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_code",
		Description: "Ask a senior engineer persona to write, fix, refactor, explain or review code",
	}, t.code)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_image",
		Description: "Generate a PNG image from a prompt",
	}, t.image)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_models",
		Description: "List the models offered for each generator",
	}, t.listModels)

	return server
}

type tools struct {
	studio *studio.Studio
	logger *zap.Logger
}

func (t *tools) article(ctx context.Context, req *mcp.CallToolRequest, a ArticleArgs) (*mcp.CallToolResult, any, error) {
	length := prompt.Medium
	if a.Length != "" {
		parsed, err := prompt.ParseLengthClass(a.Length)
		if err != nil {
			return errorResult(err, ""), nil, nil
		}
		length = parsed
	}

	tone := prompt.Formal
	if a.Tone != "" {
		tone = prompt.Tone(a.Tone)
	}

	session, artifact, err := t.studio.Article(ctx, studio.ArticleInput{
		Model: a.Model,
		ArticleForm: prompt.ArticleForm{
			Title:    a.Title,
			Keywords: a.Keywords,
			Length:   length,
			Tone:     tone,
		},
	}, nil)
	if err != nil {
		return errorResult(err, partial(session)), nil, nil
	}

	return textResult(artifact), nil, nil
}

func (t *tools) code(ctx context.Context, req *mcp.CallToolRequest, a CodeArgs) (*mcp.CallToolResult, any, error) {
	mode := prompt.Generate
	if a.Mode != "" {
		mode = prompt.CodingMode(a.Mode)
	}

	session, artifact, err := t.studio.Coding(ctx, studio.CodingInput{
		Model: a.Model,
		CodingForm: prompt.CodingForm{
			Mode:         mode,
			Instruction:  a.Instruction,
			ExistingCode: a.ExistingCode,
		},
	}, nil)
	if err != nil {
		return errorResult(err, partial(session)), nil, nil
	}

	return textResult(artifact), nil, nil
}

func (t *tools) image(ctx context.Context, req *mcp.CallToolRequest, a ImageArgs) (*mcp.CallToolResult, any, error) {
	surface := generation.SurfaceFuncs{
		Progress: func(p generation.Progress) {
			t.notifyProgress(ctx, req, p)
		},
	}

	_, artifact, err := t.studio.Image(ctx, studio.ImageInput{Model: a.Model, Prompt: a.Prompt}, surface)
	if err != nil {
		return errorResult(err, ""), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: artifact.Data, MIMEType: artifact.MIMEType},
			&mcp.TextContent{Text: artifact.Filename},
		},
	}, nil, nil
}

func (t *tools) listModels(ctx context.Context, req *mcp.CallToolRequest, _ listArgs) (*mcp.CallToolResult, any, error) {
	models := t.studio.Models()

	var b strings.Builder
	fmt.Fprintf(&b, "article: %s\n", strings.Join(models.Article, ", "))
	fmt.Fprintf(&b, "coding: %s\n", strings.Join(models.Coding, ", "))
	fmt.Fprintf(&b, "image: %s\n", strings.Join(models.Image, ", "))

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: b.String()}},
	}, nil, nil
}

// notifyProgress forwards image progress when the caller asked for it.
func (t *tools) notifyProgress(ctx context.Context, req *mcp.CallToolRequest, p generation.Progress) {
	if req == nil || req.Session == nil || req.Params == nil {
		return
	}
	token := req.Params.GetProgressToken()
	if token == nil {
		return
	}

	err := req.Session.NotifyProgress(ctx, &mcp.ProgressNotificationParams{
		ProgressToken: token,
		Progress:      float64(p.Completed),
		Total:         float64(p.Total),
		Message:       fmt.Sprintf("step %d/%d", p.Completed, p.Total),
	})
	if err != nil {
		t.logger.Debug("could not send progress notification", zap.Error(err))
	}
}

func textResult(a generation.Artifact) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(a.Data)}},
	}
}

func partial(session *generation.Session) string {
	if session == nil {
		return ""
	}
	return session.Text()
}

// errorResult reports a failed generation as a tool error, with whatever
// text had streamed so far.
func errorResult(err error, partialText string) *mcp.CallToolResult {
	msg := err.Error()
	if errors.Is(err, generation.ErrMalformedRequest) {
		msg = "invalid arguments: " + msg
	}
	if partialText != "" {
		msg += "\n\npartial output:\n" + partialText
	}

	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
