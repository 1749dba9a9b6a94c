package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/badi-al-zaman/ragchat/internal/handlers"
	"github.com/badi-al-zaman/ragchat/internal/indexer"
	"github.com/badi-al-zaman/ragchat/internal/rag"
	"github.com/badi-al-zaman/ragchat/internal/retriever"
	"github.com/badi-al-zaman/ragchat/internal/service"
	"github.com/badi-al-zaman/ragchat/internal/storage"
	"github.com/badi-al-zaman/ragchat/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService service.ChatService
	Sessions    storage.SessionStore
	Retriever   retriever.Retriever
	RAGEngine   rag.Engine
	Pipeline    *indexer.Pipeline
	VectorStore vectorstore.VectorStore
	Collection  string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	sessionsHandler := handlers.NewSessionsHandler(deps.Sessions)
	searchHandler := handlers.NewSearchHandler(deps.Retriever)
	askHandler := handlers.NewAskHandler(deps.RAGEngine)
	indexHandler := handlers.NewIndexHandler(deps.Pipeline)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionsHandler.Create)
			r.Get("/", sessionsHandler.List)
			r.Get("/{sessionID}", sessionsHandler.Get)
			r.Delete("/{sessionID}", sessionsHandler.Delete)
		})

		r.Method(http.MethodPost, "/chat/{sessionID}", chatHandler)

		r.Route("/rag", func(r chi.Router) {
			r.Method(http.MethodPost, "/index", indexHandler)
			r.Method(http.MethodPost, "/search", searchHandler)
			r.Method(http.MethodPost, "/ask", askHandler)
		})
	})

	r.Method(http.MethodGet, "/healthz", healthHandler)

	return r
}
