package ailink

import (
	"fmt"
	"strings"

	"github.com/webinsights/webinsights/internal/core"
)

const profileSchema = `{
  "industry": string or null,
  "company_size": string or null,
  "location": string or null,
  "core_products_services": list of strings,
  "unique_selling_proposition": string or null,
  "target_audience": string or null,
  "contact_info": {
    "email": string or null,
    "phone": string or null,
    "social_media": object mapping platform name to URL, or null
  }
}`

const answeredSchema = `{
  "url": string,
  "analysis_timestamp": ISO 8601 UTC timestamp,
  "company_info": {
    "industry": string or null,
    "company_size": string or null,
    "location": string or null,
    "core_products_services": list of strings,
    "unique_selling_proposition": string or null,
    "target_audience": string or null,
    "contact_info": {
      "email": string or null,
      "phone": string or null,
      "social_media": object mapping platform name to URL, or null
    }
  },
  "extracted_answers": [
    { "question": string, "answer": string }, ...
  ]
}`

// analyzePrompt builds the single-shot analysis prompt. The schema shape
// depends on whether the caller supplied questions.
func analyzePrompt(content string, questions []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze the following homepage content:\n\n%s\n\n", content)
	b.WriteString("Return only a valid JSON object (no explanations, no extra text) matching this structure:\n\n")

	if len(questions) > 0 {
		b.WriteString(answeredSchema)
		b.WriteString("\n\nOnly include fields listed above. Answer every question, in the order given, using the question text verbatim.")
		b.WriteString("\n\nQuestions:\n")
		b.WriteString(strings.Join(questions, "\n"))
	} else {
		b.WriteString(profileSchema)
		b.WriteString("\n\nOnly include fields listed above. Do not include any explanation or comments.")
	}

	return b.String()
}

// followupPrompt builds the conversational prompt against a stored analysis.
// The response convention (Answer / Context Sources) is what
// ParseFollowupReply expects on the way back.
func followupPrompt(analysisJSON string, history []core.ConversationTurn, query string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Website Analysis:\n%s\n\n", analysisJSON)

	if len(history) > 0 {
		b.WriteString("Conversation history:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User: %s\n\n", query)
	b.WriteString("Respond to the user query, and also list the specific parts of the analysis you used as context sources. ")
	b.WriteString("Format the output like this:\n")
	b.WriteString("Answer: <your answer here>\n")
	b.WriteString("Context Sources: <comma-separated list>\n")

	return b.String()
}
