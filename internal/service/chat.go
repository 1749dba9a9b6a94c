package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks github.com/badi-al-zaman/ragchat/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService github.com/badi-al-zaman/ragchat/internal/service ChatService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/badi-al-zaman/ragchat/internal/contextutil"
	"github.com/badi-al-zaman/ragchat/internal/llm"
	"github.com/badi-al-zaman/ragchat/internal/retriever"
	"github.com/badi-al-zaman/ragchat/internal/storage"
)

// LLMClient is an interface for interacting with an LLM API.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// ChatWithTools sends the conversation history to the LLM with the given
	// tool schemas and returns the assistant message plus any tool calls it
	// requested. A nil tools slice disables tool use for the call.
	ChatWithTools(ctx context.Context, history []llm.ChatMessage, tools []llm.Tool, systemPrompt string) (llm.ChatMessage, []llm.ToolCall, error)
}

// ChatRequest represents a conversational chat request in the domain layer.
type ChatRequest struct {
	SessionID string
	Query     string
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Reply string
}

// ChatService provides session-scoped conversational chat with retrieval
// tool support.
type ChatService interface {
	// ProcessChat runs one conversational turn: the query and every message
	// the turn produces are either all persisted or none are.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// chatService implements ChatService.
type chatService struct {
	llmClient     LLMClient
	retriever     retriever.Retriever
	sessions      storage.SessionStore
	maxToolRounds int

	// locks serializes turns per session so interleaved requests cannot
	// corrupt message ordering.
	locks sync.Map // sessionID -> *sync.Mutex
}

// NewChatService creates a new ChatService.
func NewChatService(llmClient LLMClient, r retriever.Retriever, sessions storage.SessionStore, maxToolRounds int) ChatService {
	if maxToolRounds <= 0 {
		maxToolRounds = 5
	}
	return &chatService{
		llmClient:     llmClient,
		retriever:     r,
		sessions:      sessions,
		maxToolRounds: maxToolRounds,
	}
}

// toolSearchResult is the shape fed back to the model for each retrieved
// chunk. Similarity scores are deliberately excluded.
type toolSearchResult struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Title   string `json:"title"`
}

// ProcessChat runs one conversational turn against the session's history.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.SessionID == "" {
		return ChatResponse{}, &ValidationError{Field: "session_id", Message: "cannot be empty"}
	}
	if strings.TrimSpace(req.Query) == "" {
		logger.WarnContext(ctx, "empty query in chat request", "session_id", req.SessionID)
		return ChatResponse{}, &ValidationError{Field: "query", Message: "cannot be empty"}
	}

	mu := s.sessionLock(req.SessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.sessions.GetFullSession(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ChatResponse{}, fmt.Errorf("session %s: %w", req.SessionID, ErrNotFound)
		}
		return ChatResponse{}, wrapPersistence(err, "failed to load session")
	}

	history := historyToMessages(session.Messages)

	turn, err := s.sessions.BeginTurn(ctx, req.SessionID)
	if err != nil {
		return ChatResponse{}, wrapPersistence(err, "failed to begin turn")
	}
	// Rollback is a no-op once the turn is committed.
	defer turn.Rollback()

	if _, err := turn.AppendMessage(ctx, storage.NewTextData(storage.RoleUser, req.Query), nil); err != nil {
		return ChatResponse{}, wrapPersistence(err, "failed to persist user message")
	}
	history = append(history, llm.ChatMessage{Role: string(storage.RoleUser), Content: req.Query})

	tools := []llm.Tool{searchTool()}

	var reply string
	for round := 0; ; round++ {
		offered := tools
		final := round >= s.maxToolRounds
		if final {
			logger.WarnContext(ctx, "tool round limit reached, forcing direct answer", "session_id", req.SessionID, "rounds", round)
			offered = nil
		}

		assistantMsg, toolCalls, err := s.llmClient.ChatWithTools(ctx, history, offered, systemPrompt)
		if err != nil {
			return ChatResponse{}, wrapUpstream(err, "failed to get LLM response")
		}

		if final || len(toolCalls) == 0 {
			// Tool calls returned when none were offered are dropped.
			if _, err := turn.AppendMessage(ctx, storage.NewTextData(storage.RoleAssistant, assistantMsg.Content), nil); err != nil {
				return ChatResponse{}, wrapPersistence(err, "failed to persist assistant message")
			}
			reply = assistantMsg.Content
			break
		}

		assistantData := storage.MessageData{
			Role:      storage.RoleAssistant,
			ToolCalls: make([]storage.ToolCall, 0, len(toolCalls)),
		}
		if assistantMsg.Content != "" {
			assistantData.Blocks = []storage.ContentBlock{{Type: "text", Text: assistantMsg.Content}}
		}
		for _, tc := range toolCalls {
			assistantData.ToolCalls = append(assistantData.ToolCalls, storage.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		if _, err := turn.AppendMessage(ctx, assistantData, nil); err != nil {
			return ChatResponse{}, wrapPersistence(err, "failed to persist assistant message")
		}
		history = append(history, assistantMsg)

		for _, tc := range toolCalls {
			result, err := s.executeTool(ctx, tc)
			if err != nil {
				return ChatResponse{}, WrapError(err, "tool execution failed")
			}

			toolData := storage.MessageData{
				Role:       storage.RoleTool,
				Blocks:     []storage.ContentBlock{{Type: "text", Text: result}},
				ToolCallID: tc.ID,
			}
			if _, err := turn.AppendMessage(ctx, toolData, nil); err != nil {
				return ChatResponse{}, wrapPersistence(err, "failed to persist tool message")
			}
			history = append(history, llm.ChatMessage{
				Role:       string(storage.RoleTool),
				Content:    result,
				ToolCallID: tc.ID,
			})
		}
	}

	if err := turn.Commit(); err != nil {
		return ChatResponse{}, wrapPersistence(err, "failed to commit turn")
	}

	logger.InfoContext(ctx, "chat turn processed", "session_id", req.SessionID, "query_length", len(req.Query), "reply_length", len(reply))
	return ChatResponse{Reply: reply}, nil
}

// executeTool runs a single tool call and returns the JSON payload for the
// tool message. Malformed or unknown calls are reported back to the model
// rather than failing the turn; retrieval infrastructure errors fail the
// turn so it can be rolled back.
func (s *chatService) executeTool(ctx context.Context, tc llm.ToolCall) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if tc.Function.Name != searchToolName {
		logger.WarnContext(ctx, "model requested unknown tool", "tool", tc.Function.Name)
		return fmt.Sprintf(`{"error": "unknown tool: %s"}`, tc.Function.Name), nil
	}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
		logger.WarnContext(ctx, "malformed tool arguments", "tool", tc.Function.Name, "error", err)
		return `{"error": "malformed arguments, expected {\"query\": \"...\"}"}`, nil
	}

	results, err := s.retriever.Retrieve(ctx, args.Query, 0)
	if err != nil {
		return "", wrapUpstream(err, "failed to search documents")
	}

	payload := make([]toolSearchResult, 0, len(results))
	for _, result := range results {
		title, _ := result.Metadata["title"].(string)
		payload = append(payload, toolSearchResult{
			ID:      result.ID,
			Content: result.Content,
			Title:   title,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", WrapError(err, "failed to encode tool result")
	}

	logger.DebugContext(ctx, "search tool executed", "query", args.Query, "results", len(payload))
	return string(data), nil
}

// sessionLock returns the mutex serializing turns for a session.
func (s *chatService) sessionLock(sessionID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// historyToMessages converts persisted message records to wire messages.
func historyToMessages(records []storage.MessageRecord) []llm.ChatMessage {
	messages := make([]llm.ChatMessage, 0, len(records)+1)
	for _, rec := range records {
		msg := llm.ChatMessage{
			Role:       string(rec.Data.Role),
			Content:    rec.Data.Text(),
			ToolCallID: rec.Data.ToolCallID,
		}
		for _, tc := range rec.Data.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: llm.ToolCallFunction{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		messages = append(messages, msg)
	}
	return messages
}
