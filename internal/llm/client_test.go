package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatServer(t *testing.T, handler func(t *testing.T, req chatRequest) chatResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization header = %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(handler(t, req))
	}))
}

func textReply(content string) chatResponse {
	return chatResponse{
		ID:     "chatcmpl-1",
		Object: "chat.completion",
		Choices: []chatChoice{
			{Message: ChatMessage{Role: "assistant", Content: content}, FinishReason: "stop"},
		},
	}
}

func TestClient_Chat(t *testing.T) {
	server := chatServer(t, func(t *testing.T, req chatRequest) chatResponse {
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content != "Hello" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		return textReply("Hi there!")
	})
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	reply, err := client.Chat(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Hi there!" {
		t.Errorf("reply = %q", reply)
	}
}

func TestClient_ChatWithMessages(t *testing.T) {
	server := chatServer(t, func(t *testing.T, req chatRequest) chatResponse {
		if req.Model != "override" {
			t.Errorf("model = %q, want override", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Errorf("got %d messages, want 2", len(req.Messages))
		}
		return textReply("answer")
	})
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	reply, err := client.ChatWithMessages(context.Background(), []ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "question"},
	}, ChatParams{Model: "override", Temperature: 0.7})
	if err != nil {
		t.Fatalf("ChatWithMessages() error = %v", err)
	}
	if reply != "answer" {
		t.Errorf("reply = %q", reply)
	}
}

func TestClient_ChatWithTools(t *testing.T) {
	tests := []struct {
		name          string
		response      chatResponse
		systemPrompt  string
		tools         []Tool
		wantToolCalls int
		wantContent   string
		checkRequest  func(t *testing.T, req chatRequest)
	}{
		{
			name:         "direct answer without tool calls",
			response:     textReply("John Adams was the second president."),
			systemPrompt: "system text",
			tools:        []Tool{{Type: "function", Function: ToolFunction{Name: "search_documents"}}},
			wantContent:  "John Adams was the second president.",
			checkRequest: func(t *testing.T, req chatRequest) {
				if len(req.Messages) == 0 || req.Messages[0].Role != "system" {
					t.Error("system prompt not prepended")
				}
				if len(req.Tools) != 1 {
					t.Errorf("got %d tools, want 1", len(req.Tools))
				}
			},
		},
		{
			name: "tool call requested",
			response: chatResponse{
				Choices: []chatChoice{{
					Message: ChatMessage{
						Role: "assistant",
						ToolCalls: []ToolCall{{
							ID:   "call_1",
							Type: "function",
							Function: ToolCallFunction{
								Name:      "search_documents",
								Arguments: `{"query": "Adams foreign policy"}`,
							},
						}},
					},
					FinishReason: "tool_calls",
				}},
			},
			systemPrompt:  "system text",
			tools:         []Tool{{Type: "function", Function: ToolFunction{Name: "search_documents"}}},
			wantToolCalls: 1,
		},
		{
			name:         "no tools offered omits tools field",
			response:     textReply("final"),
			systemPrompt: "system text",
			tools:        nil,
			wantContent:  "final",
			checkRequest: func(t *testing.T, req chatRequest) {
				if len(req.Tools) != 0 {
					t.Errorf("tools sent when none offered: %+v", req.Tools)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := chatServer(t, func(t *testing.T, req chatRequest) chatResponse {
				if tt.checkRequest != nil {
					tt.checkRequest(t, req)
				}
				return tt.response
			})
			defer server.Close()

			client := NewClient(server.URL, "test-key", "test-model")
			msg, toolCalls, err := client.ChatWithTools(context.Background(), []ChatMessage{
				{Role: "user", Content: "question"},
			}, tt.tools, tt.systemPrompt)
			if err != nil {
				t.Fatalf("ChatWithTools() error = %v", err)
			}
			if len(toolCalls) != tt.wantToolCalls {
				t.Errorf("got %d tool calls, want %d", len(toolCalls), tt.wantToolCalls)
			}
			if msg.Content != tt.wantContent {
				t.Errorf("content = %q, want %q", msg.Content, tt.wantContent)
			}
			if tt.wantToolCalls > 0 && toolCalls[0].Function.Name != "search_documents" {
				t.Errorf("tool call name = %q", toolCalls[0].Function.Name)
			}
		})
	}
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(chatResponse{})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL, "test-key", "test-model")
			if _, err := client.Chat(context.Background(), "Hello"); err == nil {
				t.Error("Chat() should return an error")
			}
		})
	}
}
