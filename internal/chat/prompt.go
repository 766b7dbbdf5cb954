package chat

import (
	"strings"
)

const promptTemplate = `
You are a customer support bot. Use the following FAQs to answer questions:
{faqs}

Full conversation history:
{history}

User query: {query}

Respond based on the entire conversation history provided. If the query relates to previous messages, reference that context accurately.
If the query matches an FAQ, respond with the answer.
If not, or if it's complex, suggest escalating to a human agent.
Keep responses friendly, concise, and context-aware.
Suggest next actions if needed.
`

// EscalationNotice is appended to replies that mention escalation.
const EscalationNotice = "\nEscalating to human support..."

var escalationKeywords = []string{"escalate", "human"}

// BuildPrompt fills the template in a single pass so that placeholder text
// inside the history or query is left alone.
func BuildPrompt(faqs, history, query string) string {
	r := strings.NewReplacer(
		"{faqs}", faqs,
		"{history}", history,
		"{query}", query,
	)
	return r.Replace(promptTemplate)
}

// NeedsEscalation reports whether reply mentions escalating or a human.
func NeedsEscalation(reply string) bool {
	lower := strings.ToLower(reply)
	for _, kw := range escalationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
