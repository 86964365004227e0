// Package prompt assembles the prompts sent to the generation backend.
// Every function is pure and never shortens its inputs.
package prompt

import (
	"strings"

	"github.com/papercomputeco/mentor/pkg/memory"
)

const analysisInstructions = `When responding, strictly follow these instructions:
- Point out syntax errors, missing imports or inefficiencies, and ask whether the user would like help fixing them.
- Suggest improvements without rewriting the code unless the user asks for changes.
- Keep the response natural and concise, like a mentor guiding a mentee.
- Never rewrite or execute code unless the user explicitly requests it.
- Do not paraphrase the code or repeat yourself.`

const dialogueInstructions = `Strictly follow these instructions:
- Stay in your role as a helpful Python mentor.
- Never mention the underlying model, its provider or any language model details.
- Answer the question directly, without introductions or preamble.
- Keep the answer concise and clear.
- Only apologize if the question is not about programming or your role as a mentor.`

// Analysis builds the one-shot review prompt for code.
func Analysis(code string) string {
	var b strings.Builder

	b.WriteString("You are an expert Python mentor. Analyze the following code carefully:\n")
	b.WriteString(code)
	b.WriteString("\n\n")
	b.WriteString(analysisInstructions)

	return b.String()
}

// Dialogue builds the prompt for one conversational turn about subject.
func Dialogue(subject string, history []memory.Relevant, input string) string {
	var b strings.Builder

	b.WriteString("You are an expert Python mentor, continuing a conversation with the user. ")
	b.WriteString("Here is the original code for reference:\n")
	b.WriteString(subject)
	b.WriteString("\n\nPrevious discussion:\n")
	b.WriteString(FormatHistory(history))
	b.WriteString("\n\n")
	b.WriteString(dialogueInstructions)
	b.WriteString("\n\nUser: ")
	b.WriteString(input)

	return b.String()
}

// FormatHistory renders each entry as "key -> payload", one per line.
func FormatHistory(history []memory.Relevant) string {
	lines := make([]string, len(history))
	for i, h := range history {
		lines[i] = h.Key + " -> " + h.Payload
	}
	return strings.Join(lines, "\n")
}
