package rag

import (
	"context"
	"fmt"

	"github.com/badi-al-zaman/ragchat/internal/contextutil"
	"github.com/badi-al-zaman/ragchat/internal/llm"
	"github.com/badi-al-zaman/ragchat/internal/retriever"
)

//go:generate go run go.uber.org/mock/mockgen@latest -source=engine.go -destination=mocks/mock_engine.go -package=mocks

// Engine provides one-shot retrieval-augmented answering without
// conversational state.
type Engine interface {
	// Ask retrieves context for the question and generates an answer.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// LLMClient is the subset of the chat client the engine needs.
type LLMClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.ChatMessage, params llm.ChatParams) (string, error)
}

type ragEngine struct {
	retriever retriever.Retriever
	llmClient LLMClient
}

// NewEngine creates a new RAG engine.
func NewEngine(r retriever.Retriever, llmClient LLMClient) Engine {
	return &ragEngine{
		retriever: r,
		llmClient: llmClient,
	}
}

// Ask answers a question using retrieved context.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	results, err := e.retriever.Retrieve(ctx, req.Question, req.TopK)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		return AskResponse{}, fmt.Errorf("failed to retrieve context: %w", err)
	}

	prompt := Augment(req.Question, results)

	answer, err := e.llmClient.ChatWithMessages(ctx, []llm.ChatMessage{
		{Role: "user", Content: prompt},
	}, llm.ChatParams{Temperature: 0.7})
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return AskResponse{}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	sources := make([]SourceRef, 0, len(results))
	for _, result := range results {
		title, _ := result.Metadata["title"].(string)
		sources = append(sources, SourceRef{
			ID:         result.ID,
			Title:      title,
			Similarity: result.Similarity,
		})
	}

	logger.InfoContext(ctx, "RAG query completed", "question_length", len(req.Question), "sources", len(sources), "answer_length", len(answer))

	return AskResponse{
		Answer:  answer,
		Sources: sources,
	}, nil
}
