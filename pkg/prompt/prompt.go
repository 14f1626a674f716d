// Package prompt assembles deterministic prompts from structured form input.
// User supplied values are interpolated verbatim; nothing is sanitized.
package prompt

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/llm"
)

// LengthClass is the closed set of article lengths.
type LengthClass string

const (
	Short  LengthClass = "short"
	Medium LengthClass = "medium"
	Long   LengthClass = "long"
)

var lengthInstructions = map[LengthClass]string{
	Short:  "~500 words",
	Medium: "~1000 words",
	Long:   "~2000 words",
}

// LengthClasses lists the valid classes in ascending order.
func LengthClasses() []LengthClass {
	return []LengthClass{Short, Medium, Long}
}

// ParseLengthClass parses a class name, case-insensitively.
func ParseLengthClass(s string) (LengthClass, error) {
	l := LengthClass(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := lengthInstructions[l]; !ok {
		return "", fmt.Errorf("%w: unknown length class %q", generation.ErrMalformedRequest, s)
	}
	return l, nil
}

// Instruction returns the length instruction embedded in article prompts.
func (l LengthClass) Instruction() (string, error) {
	instruction, ok := lengthInstructions[l]
	if !ok {
		return "", fmt.Errorf("%w: unknown length class %q", generation.ErrMalformedRequest, string(l))
	}
	return instruction, nil
}

// Tone is the writing style of an article. Any value is accepted; these are
// the ones offered by the interfaces.
type Tone string

const (
	Formal       Tone = "Formal"
	Casual       Tone = "Casual"
	SEOFriendly  Tone = "SEO Friendly"
	Storytelling Tone = "Storytelling"
)

// Tones lists the tones offered by the interfaces.
func Tones() []Tone {
	return []Tone{Formal, Casual, SEOFriendly, Storytelling}
}

// ArticleForm is the input of the article generator.
type ArticleForm struct {
	Title    string
	Keywords string
	Length   LengthClass
	Tone     Tone
}

const articleTemplate = `Write an article of %s in a %s style.
Title: %s
Main keywords: %s

Article structure:
- Introduction
- H2 & H3 subheadings
- Informative paragraphs
- Conclusion
- Natural SEO optimization
`

// Article renders the article prompt.
func Article(form ArticleForm) (string, error) {
	instruction, err := form.Length.Instruction()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(articleTemplate, instruction, form.Tone, form.Title, form.Keywords), nil
}

// ArticleMessages wraps the article prompt in a single user message.
func ArticleMessages(form ArticleForm) ([]llm.Message, error) {
	p, err := Article(form)
	if err != nil {
		return nil, err
	}
	return []llm.Message{llm.NewMessage(llm.RoleUser, p)}, nil
}

// Image returns the prompt for image generation.
func Image(prompt string) string {
	return strings.TrimSpace(prompt)
}
