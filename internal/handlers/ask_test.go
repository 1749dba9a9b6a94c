package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/badi-al-zaman/ragchat/internal/rag"
	ragmocks "github.com/badi-al-zaman/ragchat/internal/rag/mocks"
)

func TestAskHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(m *ragmocks.MockEngine)
		wantStatus int
		check      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "success",
			body: `{"question": "Who was John Adams?", "top_k": 2}`,
			setup: func(m *ragmocks.MockEngine) {
				m.EXPECT().
					Ask(gomock.Any(), rag.AskRequest{Question: "Who was John Adams?", TopK: 2}).
					Return(rag.AskResponse{
						Answer: "The second president.",
						Sources: []rag.SourceRef{
							{ID: "john_adams.txt#0", Title: "John Adams", Similarity: 0.9},
						},
					}, nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp AskResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp.Answer != "The second president." {
					t.Errorf("answer = %q", resp.Answer)
				}
				if len(resp.Sources) != 1 || resp.Sources[0].ID != "john_adams.txt#0" {
					t.Errorf("sources = %+v", resp.Sources)
				}
			},
		},
		{
			name:       "invalid body",
			body:       "not json",
			setup:      func(m *ragmocks.MockEngine) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty question",
			body:       `{"question": "   "}`,
			setup:      func(m *ragmocks.MockEngine) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "engine failure",
			body: `{"question": "anything"}`,
			setup: func(m *ragmocks.MockEngine) {
				m.EXPECT().
					Ask(gomock.Any(), gomock.Any()).
					Return(rag.AskResponse{}, errors.New("model overloaded"))
			},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				if strings.Contains(rec.Body.String(), "model overloaded") {
					t.Errorf("internal error detail leaked: %s", rec.Body.String())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockEngine := ragmocks.NewMockEngine(ctrl)
			tt.setup(mockEngine)

			handler := NewAskHandler(mockEngine)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rag/ask", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.check != nil {
				tt.check(t, rec)
			}
		})
	}
}
