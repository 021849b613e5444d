package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"edu-chatbot/internal/conversation"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Domain    string `json:"domain,omitempty"`
}

type chatResponse struct {
	Message   string    `json:"message"`
	SessionID string    `json:"session_id"`
	Domain    string    `json:"domain"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ failed to encode response: %v", err)
	}
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type domainInfo struct {
		DomainID    string `json:"domain_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	out := make([]domainInfo, 0)
	for _, d := range s.domains.List() {
		out = append(out, domainInfo{DomainID: d.ID, Name: d.Name, Description: d.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"domains": out})
}

func (s *Server) handleNewChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	domainID := r.URL.Query().Get("domain")
	if domainID == "" {
		domainID = s.domains.Default()
	}
	d, ok := s.domains.Get(domainID)
	if !ok {
		http.Error(w, "Unsupported domain", http.StatusBadRequest)
		return
	}

	sessionID, err := s.store.Create(domainID)
	if err != nil {
		log.Printf("❌ failed to create conversation: %v", err)
		http.Error(w, "Failed to create conversation", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"domain":     domainID,
		"message":    "Hello! I'm your assistant for " + d.Name + ". How can I help you?",
	})
}

// handleChat dispatches /api/chat/{session_id}[/history|/summary] by suffix.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/chat/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		sessionID := parts[0]
		switch r.Method {
		case http.MethodPost:
			s.handleSendMessage(w, r, sessionID)
		case http.MethodDelete:
			s.handleDeleteChat(w, sessionID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "history":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleHistory(w, parts[0])
	case len(parts) == 2 && parts[1] == "summary":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleSummary(w, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, sessionID string) {
	conv, ok := s.store.Get(sessionID)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	// The request may pin a different domain for this turn
	domainID := req.Domain
	if domainID == "" {
		domainID = conv.Domain
	}
	d, ok := s.domains.Get(domainID)
	if !ok {
		http.Error(w, "Unsupported domain", http.StatusBadRequest)
		return
	}

	if _, err := s.store.AddMessage(sessionID, conversation.RoleUser, req.Message); err != nil {
		log.Printf("❌ failed to persist user message for %s: %v", sessionID, err)
		http.Error(w, "Failed to persist message", http.StatusInternalServerError)
		return
	}

	// History replay includes the user turn appended above
	history := s.store.HistoryForGeneration(sessionID)

	reply := s.chat.Respond(r.Context(), req.Message, history, d.SystemPrompt)

	if _, err := s.store.AddMessage(sessionID, conversation.RoleAssistant, reply); err != nil {
		log.Printf("❌ failed to persist assistant message for %s: %v", sessionID, err)
		http.Error(w, "Failed to persist message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Message:   reply,
		SessionID: sessionID,
		Domain:    domainID,
		Timestamp: time.Now(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, sessionID string) {
	conv, ok := s.store.Get(sessionID)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	type messageInfo struct {
		Role      string    `json:"role"`
		Content   string    `json:"content"`
		Timestamp time.Time `json:"timestamp"`
	}
	msgs := make([]messageInfo, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		msgs = append(msgs, messageInfo{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": conv.SessionID,
		"domain":     conv.Domain,
		"messages":   msgs,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, sessionID string) {
	sum, ok := s.store.Summary(sessionID)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, sessionID string) {
	if _, ok := s.store.Get(sessionID); !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	s.store.Remove(sessionID)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Conversation deleted successfully"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ok := s.chat.Probe(r.Context())

	status := "healthy"
	api := "connected"
	if !ok {
		status = "degraded"
		api = "disconnected"
	}

	ids := make([]string, 0)
	for _, d := range s.domains.List() {
		ids = append(ids, d.ID)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":            status,
		"gemini_api":        api,
		"available_domains": ids,
	})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	removed := s.store.Cleanup(s.cleanupMaxAge)
	log.Printf("🧹 Manual cleanup removed %d conversation(s)", removed)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Old conversations cleaned up",
		"removed": removed,
	})
}
