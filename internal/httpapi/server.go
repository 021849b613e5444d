package httpapi

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"edu-chatbot/internal/chat"
	"edu-chatbot/internal/config"
	"edu-chatbot/internal/conversation"
	"edu-chatbot/internal/domains"
)

// Server is the HTTP boundary over the conversation store and the generation
// service. It owns no conversation state itself.
type Server struct {
	store         *conversation.Store
	chat          *chat.Service
	domains       *domains.Registry
	server        *http.Server
	addr          string
	cleanupMaxAge time.Duration
	staticDir     string
	frontendDir   string
}

func New(cfg *config.Config, store *conversation.Store, chatSvc *chat.Service, reg *domains.Registry) *Server {
	return &Server{
		store:         store,
		chat:          chatSvc,
		domains:       reg,
		addr:          fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		cleanupMaxAge: cfg.CleanupMaxAge(),
		staticDir:     cfg.StaticDir,
		frontendDir:   cfg.FrontendDir,
	}
}

// Handler builds the route table. Exposed separately so tests can drive the
// mux through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/domains", s.handleDomains)
	mux.HandleFunc("/api/chat/new", s.handleNewChat)
	mux.HandleFunc("/api/chat/", s.handleChat) // message / history / summary / delete
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/admin/cleanup", s.handleCleanup)
	mux.HandleFunc("/static/", s.handleStatic)
	mux.HandleFunc("/", s.handleRoot)

	return mux
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}
	log.Printf("🌐 HTTP server listening on %s", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))).ServeHTTP(w, r)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	index := filepath.Join(s.frontendDir, "index.html")
	if data, err := os.ReadFile(index); err == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<h1>Welcome to the educational chatbot</h1>"))
}
