package ai

import "context"

// Gateway is the interface for LLM-backed email classification and reply
// generation. Implement this interface to add new providers.
type Gateway interface {
	// CategorizeEmail returns one label from the fixed category set.
	CategorizeEmail(ctx context.Context, subject, body string) (string, error)
	// GenerateReply drafts a short reply using the retrieved context snippets.
	GenerateReply(ctx context.Context, subject, body string, contexts []string) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)

// CategorizePrompt builds the classification prompt shared by all providers.
func CategorizePrompt(subject, body string) string {
	return `You are an expert email categorization system. Analyze the following email and categorize it into ONE of these categories:
- Interested: The sender is showing interest in a product, service, or opportunity
- Meeting Booked: The email confirms or schedules a meeting
- Not Interested: The sender explicitly declines or shows no interest
- Spam: The email is promotional, unsolicited, or irrelevant
- Out of Office: Auto-reply indicating the person is away

Email Subject: ` + subject + `
Email Body: ` + body + `

Respond with ONLY the category name, nothing else.`
}

// ReplyPrompt builds the suggested-reply prompt shared by all providers.
func ReplyPrompt(subject, body string, contexts []string) string {
	joined := ""
	for i, c := range contexts {
		if i > 0 {
			joined += "\n"
		}
		joined += c
	}
	return `Based on the following context about my outreach agenda:
` + joined + `

I received this email:
Subject: ` + subject + `
Body: ` + body + `

Generate a professional, concise reply that:
1. Acknowledges their message
2. Uses the context information appropriately
3. Maintains a friendly and professional tone
4. Is 2-3 sentences maximum

Reply:`
}
