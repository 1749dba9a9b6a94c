package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"github.com/badi-al-zaman/ragchat/internal/config"
	"github.com/badi-al-zaman/ragchat/internal/corpus"
	"github.com/badi-al-zaman/ragchat/internal/http"
	"github.com/badi-al-zaman/ragchat/internal/indexer"
	"github.com/badi-al-zaman/ragchat/internal/llm"
	"github.com/badi-al-zaman/ragchat/internal/rag"
	"github.com/badi-al-zaman/ragchat/internal/retriever"
	"github.com/badi-al-zaman/ragchat/internal/service"
	"github.com/badi-al-zaman/ragchat/internal/storage"
	"github.com/badi-al-zaman/ragchat/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	sessionRepo := storage.NewSessionRepo(db)
	documentRepo := storage.NewDocumentRepo(db)

	ctx := context.Background()

	// Document source for the corpus
	source, err := corpus.NewDirSource(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open corpus directory: %v", err)
	}
	slog.Info("Corpus source initialized", "dir", cfg.DataDir)

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	chunker, err := indexer.NewChunker(cfg.ChunkMaxSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("Failed to create chunker: %v", err)
	}

	// Create indexing pipeline
	pipeline := indexer.NewPipeline(
		source,
		documentRepo,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		chunker,
	)

	// Retriever with lazy index construction on a cold vector store
	ret := retriever.New(embedder, vectorStore, cfg.QdrantCollection, pipeline, cfg.RetrievalTopK)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// One-shot RAG engine
	ragEngine := rag.NewEngine(ret, llmClient)
	slog.Info("RAG engine initialized")

	// Conversational chat service
	chatService := service.NewChatService(llmClient, ret, sessionRepo, cfg.MaxToolRounds)

	// Create router with dependencies
	deps := &http.Deps{
		ChatService: chatService,
		Sessions:    sessionRepo,
		Retriever:   ret,
		RAGEngine:   ragEngine,
		Pipeline:    pipeline,
		VectorStore: vectorStore,
		Collection:  cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	// Start indexing in background after router is ready
	go func() {
		indexCtx := context.Background()
		slog.Info("Starting background indexing of corpus")
		if err := pipeline.IndexAll(indexCtx, false); err != nil {
			slog.Error("Indexing completed with errors", "error", err)
		} else {
			slog.Info("Indexing completed successfully")
		}
	}()

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
