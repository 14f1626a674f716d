package prompt

import (
	"strings"

	"github.com/papercomputeco/scribe/pkg/llm"
)

// CodingMode describes what the coding agent should do with the instruction.
type CodingMode string

const (
	Generate CodingMode = "Generate new code"
	Debug    CodingMode = "Debug / fix errors"
	Refactor CodingMode = "Refactor"
	Explain  CodingMode = "Explain code"
	Review   CodingMode = "Code review"
)

// CodingModes lists the modes offered by the interfaces.
func CodingModes() []CodingMode {
	return []CodingMode{Generate, Debug, Refactor, Explain, Review}
}

// CodingSystemPrompt is always sent first in coding agent conversations.
const CodingSystemPrompt = `You are a senior software engineer.
Always produce complete, working code.
Comment the code where it helps the reader.
Follow the best practices of the language in use.`

// CodingForm is the input of the coding agent.
type CodingForm struct {
	Mode         CodingMode
	Instruction  string
	ExistingCode string
}

// Coding renders the user message of a coding agent request.
func Coding(form CodingForm) string {
	var b strings.Builder
	b.WriteString("Mode: ")
	b.WriteString(string(form.Mode))
	b.WriteString("\n\nInstruction:\n")
	b.WriteString(form.Instruction)
	b.WriteString("\n")

	if form.ExistingCode != "" {
		b.WriteString("\nExisting code:\n```\n")
		b.WriteString(form.ExistingCode)
		b.WriteString("\n```\n")
	}

	return b.String()
}

// CodingMessages returns the system message followed by the user message.
func CodingMessages(form CodingForm) []llm.Message {
	return []llm.Message{
		llm.NewMessage(llm.RoleSystem, CodingSystemPrompt),
		llm.NewMessage(llm.RoleUser, Coding(form)),
	}
}
