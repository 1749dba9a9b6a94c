package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	vsmocks "github.com/badi-al-zaman/ragchat/internal/vectorstore/mocks"
)

func TestHealthHandler_Healthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := vsmocks.NewMockVectorStore(ctrl)
	mockStore.EXPECT().Count(gomock.Any(), "articles").Return(uint64(12), nil)

	handler := NewHealthHandler(mockStore, "articles")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" || resp.Checks["vector_store"] != "ok" {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Issues) != 0 {
		t.Errorf("issues = %v, want none", resp.Issues)
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := vsmocks.NewMockVectorStore(ctrl)
	mockStore.EXPECT().Count(gomock.Any(), "articles").Return(uint64(0), errors.New("connection refused"))

	handler := NewHealthHandler(mockStore, "articles")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "unhealthy" || resp.Checks["vector_store"] != "error" {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Issues) != 1 || resp.Issues[0] != "vector_store_unavailable" {
		t.Errorf("issues = %v", resp.Issues)
	}
}
