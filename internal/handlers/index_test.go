package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/badi-al-zaman/ragchat/internal/corpus"
	"github.com/badi-al-zaman/ragchat/internal/indexer"
	storagemocks "github.com/badi-al-zaman/ragchat/internal/storage/mocks"
	vsmocks "github.com/badi-al-zaman/ragchat/internal/vectorstore/mocks"
)

// signalSource is an empty corpus that reports when it is loaded.
type signalSource struct {
	loaded chan struct{}
}

func (s *signalSource) Load(ctx context.Context) ([]corpus.Document, error) {
	close(s.loaded)
	return nil, nil
}

func newTestPipeline(t *testing.T, ctrl *gomock.Controller, source corpus.Source) *indexer.Pipeline {
	t.Helper()

	chunker, err := indexer.NewChunker(700, 100)
	if err != nil {
		t.Fatalf("NewChunker() error = %v", err)
	}
	return indexer.NewPipeline(
		source,
		storagemocks.NewMockDocumentStore(ctrl),
		nil,
		vsmocks.NewMockVectorStore(ctrl),
		"articles",
		chunker,
	)
}

func TestIndexHandler(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		wantMessage string
	}{
		{
			name:        "default",
			target:      "/api/rag/index",
			wantMessage: "Indexing started. Check server logs for progress.",
		},
		{
			name:        "force",
			target:      "/api/rag/index?force=true",
			wantMessage: "Force re-indexing started. Check server logs for progress.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			source := &signalSource{loaded: make(chan struct{})}
			handler := NewIndexHandler(newTestPipeline(t, ctrl, source))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.target, nil))

			if rec.Code != http.StatusAccepted {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
			}

			var resp IndexResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Status != "accepted" {
				t.Errorf("status field = %q", resp.Status)
			}
			if resp.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMessage)
			}

			// Indexing runs in the background after the response is written.
			select {
			case <-source.loaded:
			case <-time.After(2 * time.Second):
				t.Error("background indexing never started")
			}
		})
	}
}
