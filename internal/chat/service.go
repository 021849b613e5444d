package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"edu-chatbot/internal/llm"
)

// Fallback is the fixed reply used for any generation failure, so the end
// user always gets a textual answer instead of an internal error.
const Fallback = "Sorry, something went wrong while processing your request. Please try again."

const probePrompt = "Hello, can you reply with a single word?"

// Service wraps the external text-generation call: it assembles the flat
// conversation prompt, bounds the call with a timeout and converts failures
// into Fallback.
type Service struct {
	client  llm.Client
	timeout time.Duration
}

func New(client llm.Client, timeout time.Duration) *Service {
	return &Service{client: client, timeout: timeout}
}

// Respond asks the model for the next assistant turn. Errors are logged for
// operators and never propagated.
func (s *Service) Respond(ctx context.Context, message string, history []llm.Message, systemPrompt string) string {
	prompt := buildPrompt(systemPrompt, history, message)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Generate(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		log.Printf("❌ generation failed: %v", err)
		return Fallback
	}
	if strings.TrimSpace(resp.Content) == "" {
		log.Printf("❌ generation returned an empty reply")
		return Fallback
	}
	return resp.Content
}

// buildPrompt concatenates the domain instruction, the replayed history and
// the new turn in a fixed order the model sees as one document.
func buildPrompt(systemPrompt string, history []llm.Message, message string) string {
	var b strings.Builder
	b.WriteString("System instructions: " + systemPrompt + "\n")
	b.WriteString("\n--- Conversation history ---\n\n")
	for _, m := range history {
		label := "Assistant"
		if m.Role == "user" {
			label = "User"
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", label, m.Content))
	}
	b.WriteString("\n--- New message ---\n")
	b.WriteString("User: " + message + "\n")
	b.WriteString("\nAssistant:")
	return b.String()
}

// Probe performs a minimal round-trip against the provider for health checks.
func (s *Service) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	resp, err := s.client.Generate(ctx, []llm.Message{{Role: "user", Content: probePrompt}})
	if err != nil {
		log.Printf("❌ generation probe failed: %v", err)
		return false
	}
	return strings.TrimSpace(resp.Content) != ""
}
