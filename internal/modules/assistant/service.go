package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

const systemPrompt = "You are a helpful assistant that answers questions about an ETF currency allocation table. " +
	"Use only the information from the table provided. " +
	"Do not reference or reveal any implementation details or code."

const defaultModel = "claude-sonnet-4-20250514"

// Service answers questions about the allocation summary. The rendered
// markdown table is the only context the model receives.
type Service struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
	log       zerolog.Logger
}

// NewService creates an assistant backed by the Anthropic API.
func NewService(apiKey, model string, log zerolog.Logger) *Service {
	if model == "" {
		model = defaultModel
	}

	return &Service{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: 1024,
		timeout:   60 * time.Second,
		log:       log.With().Str("component", "assistant").Logger(),
	}
}

// Ask sends the summary table plus the user's question and returns the
// model's answer.
func (s *Service) Ask(ctx context.Context, question, tableMarkdown string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question is empty")
	}
	if strings.TrimSpace(tableMarkdown) == "" {
		return "", fmt.Errorf("no summary table available")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				"Here is the ETF summary table in markdown:\n\n" + tableMarkdown,
			)),
			anthropic.NewUserMessage(anthropic.NewTextBlock(question)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("assistant request failed: %w", err)
	}

	var answer strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			answer.WriteString(block.Text)
		}
	}
	if answer.Len() == 0 {
		return "", fmt.Errorf("assistant returned no text")
	}

	s.log.Debug().
		Int("question_length", len(question)).
		Int("answer_length", answer.Len()).
		Dur("duration", time.Since(start)).
		Msg("Assistant answered")

	return answer.String(), nil
}
