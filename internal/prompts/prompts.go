package prompts

import (
	"fmt"
	"strings"

	"github.com/sant0-9/quill/internal/llm"
)

// SystemWriter frames the drafting pass.
const SystemWriter = "You are a helpful AI content writer with SEO knowledge."

// SystemHumanizer frames the rewrite pass.
const SystemHumanizer = `You are an editor who rewrites AI-generated drafts so they read as if a person wrote them.
Keep the meaning, facts, structure and any SEO keywords. Return only the rewritten text.`

const humanizeInstruction = `Rewrite the following text in a more informal, natural, human tone.
Vary sentence length, use contractions, drop filler and robotic phrasing, and keep it engaging.

Text:
`

const styleLine = "Make it engaging and structured with headings or bullet points where suitable.\n"

// Source is one reference excerpt placed ahead of the instructions.
type Source struct {
	URL  string
	Text string
}

// Params are the values interpolated into the writing prompt.
type Params struct {
	Topic       string
	ContentType string
	Tone        string
	WordCount   int
	Keywords    string
	Goal        string
	Sources     []Source
}

// Compose builds the user prompt. The output depends only on p; user text is
// interpolated as-is.
func Compose(p Params) string {
	var b strings.Builder

	b.WriteString(ReferenceBlock(p.Sources))
	b.WriteString(fmt.Sprintf("Write a %d-word %s on the topic: '%s'.\n", p.WordCount, strings.ToLower(p.ContentType), p.Topic))
	b.WriteString(fmt.Sprintf("Use a %s tone.\n", strings.ToLower(p.Tone)))

	if kw := strings.TrimSpace(p.Keywords); kw != "" {
		b.WriteString(fmt.Sprintf("Include these SEO keywords naturally: %s.\n", kw))
	}
	if goal := strings.TrimSpace(p.Goal); goal != "" {
		b.WriteString(fmt.Sprintf("The goal of this content is: %s.\n", goal))
	}

	b.WriteString(styleLine)
	return b.String()
}

// ReferenceBlock renders the excerpts, or "" when there are none.
func ReferenceBlock(sources []Source) string {
	if len(sources) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Use the following reference material for context:\n\n")
	for i, s := range sources {
		b.WriteString(fmt.Sprintf("Reference %d (%s):\n%s\n\n", i+1, s.URL, s.Text))
	}
	return b.String()
}

// WriterMessages is the message list for the drafting pass.
func WriterMessages(prompt string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: SystemWriter},
		{Role: llm.RoleUser, Content: prompt},
	}
}

// HumanizeMessages wraps a draft for the rewrite pass. The draft is included
// verbatim.
func HumanizeMessages(draft string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: SystemHumanizer},
		{Role: llm.RoleUser, Content: humanizeInstruction + draft},
	}
}
