package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/badi-al-zaman/ragchat/internal/service"
	servicemocks "github.com/badi-al-zaman/ragchat/internal/service/mocks"
)

// newChatRequest builds a request with the sessionID routed through chi's
// URL parameter context.
func newChatRequest(sessionID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/chat/"+sessionID, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("sessionID", sessionID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestChatHandler(t *testing.T) {
	tests := []struct {
		name       string
		sessionID  string
		body       string
		setup      func(m *servicemocks.MockChatService)
		wantStatus int
		check      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:      "success",
			sessionID: "sess-1",
			body:      `{"query": "Who was John Adams?"}`,
			setup: func(m *servicemocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), service.ChatRequest{SessionID: "sess-1", Query: "Who was John Adams?"}).
					Return(service.ChatResponse{Reply: "The second president."}, nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ChatResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp.Response != "The second president." {
					t.Errorf("response = %q", resp.Response)
				}
			},
		},
		{
			name:       "invalid body",
			sessionID:  "sess-1",
			body:       "not json",
			setup:      func(m *servicemocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:      "validation error",
			sessionID: "sess-1",
			body:      `{"query": ""}`,
			setup: func(m *servicemocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{}, &service.ValidationError{Field: "query", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:      "not found",
			sessionID: "sess-unknown",
			body:      `{"query": "hello"}`,
			setup: func(m *servicemocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{}, service.WrapError(service.ErrNotFound, "session sess-unknown"))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:      "upstream failure",
			sessionID: "sess-1",
			body:      `{"query": "hello"}`,
			setup: func(m *servicemocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{}, service.ErrUpstream)
			},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ErrorResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp.Error != unavailableMessage {
					t.Errorf("error message = %q, internal detail must not leak", resp.Error)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := servicemocks.NewMockChatService(ctrl)
			tt.setup(mockService)

			handler := NewChatHandler(mockService)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newChatRequest(tt.sessionID, tt.body))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.check != nil {
				tt.check(t, rec)
			}
		})
	}
}

func TestChatHandler_MissingSessionID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No ProcessChat expectation: the handler rejects before the service.
	handler := NewChatHandler(servicemocks.NewMockChatService(ctrl))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newChatRequest("", `{"query": "hello"}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
