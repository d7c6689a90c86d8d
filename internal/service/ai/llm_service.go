package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/rehearsed/classroom/backend/internal/config"
)

// Generator is the text generation capability every analysis and fan-out
// component depends on. Service implements it over a compiled eino chain;
// tests substitute fakes.
type Generator interface {
	// Generate runs one blocking completion for the given system prompt
	// and user query.
	Generate(ctx context.Context, system, query string) (*schema.Message, error)
	// Stream yields the completion incrementally. The caller owns the
	// reader and must Close it.
	Stream(ctx context.Context, system, query string) (*schema.StreamReader[*schema.Message], error)
}

// Service wraps the chat model behind a single compiled chain.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the AI service from configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chatModel: chatModel, chain: runnable}, nil
}

// Generate implements Generator.
func (s *Service) Generate(ctx context.Context, system, query string) (*schema.Message, error) {
	response, err := s.chain.Invoke(ctx, chainInput(system, query))
	if err != nil {
		return nil, fmt.Errorf("failed to run AI chain: %w", err)
	}
	return response, nil
}

// Stream implements Generator.
func (s *Service) Stream(ctx context.Context, system, query string) (*schema.StreamReader[*schema.Message], error) {
	stream, err := s.chain.Stream(ctx, chainInput(system, query))
	if err != nil {
		return nil, fmt.Errorf("failed to stream AI chain output: %w", err)
	}
	return stream, nil
}

func chainInput(system, query string) map[string]any {
	return map[string]any{
		"system": system,
		"query":  query,
	}
}
