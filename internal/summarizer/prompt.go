package summarizer

import (
	"fmt"

	"github.com/nguyentantai21042004/brief-flow/internal/llm"
)

var stylePrompts = map[string]string{
	"summary": `You are an expert content analyst. Write a concise summary of the transcript excerpt below.
- Start with a one-sentence overview of the topic
- Keep the main points in the order they appear
- Use markdown: headings, bullet points, bold for key terms`,

	"detailed": `You are an expert content analyst. Write a DETAILED summary of the transcript excerpt below.
- List ALL steps and main points in the order they appear
- Explain each point, including caveats, tips and warnings
- Keep domain terms verbatim
- Use markdown: headings, bullet points, bold for key terms
- Finish with an "Important notes" section when something needs emphasis`,

	"bullet_points": `Summarize the transcript excerpt below as a flat markdown bullet list.
- One idea per bullet, in order of appearance
- No introduction or conclusion`,

	"study_notes": `Turn the transcript excerpt below into study notes.
- Group content under markdown headings
- Define every key term in bold
- End with 3 to 5 review questions`,
}

// StyleNames lists the built-in content styles.
func StyleNames() []string {
	return []string{"summary", "detailed", "bullet_points", "study_notes"}
}

func systemPrompt(style, language string) string {
	p, ok := stylePrompts[style]
	if !ok {
		p = stylePrompts["summary"]
	}
	return fmt.Sprintf("%s\n\nWrite the answer in language: %s.", p, language)
}

func buildMessages(style, language string, chunkIndex, total int, text string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt(style, language)},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Transcript part %d of %d:\n---\n%s\n---", chunkIndex, total, text)},
	}
}
