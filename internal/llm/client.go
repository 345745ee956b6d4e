// Package llm provides the AI fallback tier of item classification: a
// chat-completion client for the Groq API and a batch classifier that
// turns unresolved item names into category assignments.
package llm

import "context"

// ChatClient is the minimal chat-completion contract the batch classifier
// needs. Implementations must honor ctx cancellation and never block
// without a timeout.
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
