// Package ai phrases the agent's final reply with an Ark-hosted chat model.
// The service is optional: when credentials are absent the agent falls back
// to a deterministic summary, mirroring how the rest of the server degrades.
package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"tripagent/internal/config"
	"tripagent/internal/model/chat"
)

const systemPrompt = `You are a helpful travel planning assistant. You help users plan trips by searching for flights, hotels and travel news.

Today is %s.

Search results for the current request are provided below in a compact tabular format. Analyze them and reply with a BRIEF conversational answer (2-3 sentences). Mention how many options were found and any highlights. DO NOT list every detail - the UI renders full cards with images, prices and booking links. Ask a follow-up question when useful (budget, preferences, number of guests).

%s`

// Service wraps the compiled prompt/model chain.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the reply composer, failing when the model cannot be
// constructed.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chatModel: chatModel, cfg: cfg, chain: runnable}, nil
}

// ComposeReply phrases the final answer for one turn given the thread history
// and the TOON summaries of every search that ran.
func (s *Service) ComposeReply(ctx context.Context, history []chat.Message, userMessage string, toolResults []string) (string, error) {
	input := map[string]any{
		"system":  buildSystemPrompt(toolResults),
		"history": buildHistoryMessages(history),
		"query":   userMessage,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run reply chain: %w", err)
	}

	log.Printf("[ai] composed reply length=%d", len(response.Content))
	return response.Content, nil
}

func buildSystemPrompt(toolResults []string) string {
	results := "No search ran for this request; answer conversationally."
	if len(toolResults) > 0 {
		results = "Search results:\n" + strings.Join(toolResults, "\n")
	}
	return fmt.Sprintf(systemPrompt, time.Now().Format("Monday, January 2, 2006"), results)
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	const historyLimit = 10

	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleHuman:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAI:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
