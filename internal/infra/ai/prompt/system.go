package prompt

import "strings"

// SystemPrompt is the persona sent with every analysis request.
const SystemPrompt = "You are a cybersecurity expert analyzing threat data."

const structuredInstructions = `
Respond with one valid JSON object only (no markdown, no commentary) using these keys:
{
  "attack_vector": "<string>",
  "timeline": "<ordered steps as sentences separated by '. '>",
  "impact": "<findings as sentences separated by '.'>",
  "mitigation": "<recommendations as sentences separated by '. '>"
}
Omit keys you have nothing to say about.`

// GetSystemPrompt returns the system message. With structured set, the model
// is asked for a JSON report instead of free text.
func GetSystemPrompt(structured bool) string {
	if !structured {
		return SystemPrompt
	}
	return SystemPrompt + "\n" + strings.TrimSpace(structuredInstructions)
}

// GetUserPrompt returns the user message for a query.
func GetUserPrompt(query string) string {
	return strings.TrimSpace(query)
}
