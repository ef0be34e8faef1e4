package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Pushya04/Mental-Health-Chatbot/internal/chat"
	"github.com/Pushya04/Mental-Health-Chatbot/internal/classify"
	"github.com/Pushya04/Mental-Health-Chatbot/internal/interfaces"
	"github.com/Pushya04/Mental-Health-Chatbot/internal/model"
	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

// Handlers serves the chat-inference HTTP API
type Handlers struct {
	svc        *chat.Service
	classifier interfaces.TextClassifier
	fallback   interfaces.TextClassifier
	store      interfaces.ChatStore
}

// New creates the API handlers. classifier and store may be nil, in which
// case classification degrades to keyword rules and nothing is persisted.
func New(svc *chat.Service, classifier interfaces.TextClassifier, store interfaces.ChatStore) *Handlers {
	return &Handlers{
		svc:        svc,
		classifier: classifier,
		fallback:   classify.RuleClassifier{},
		store:      store,
	}
}

// Generate handles POST /generate
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	// Returning clients can resume a session: when no explicit history is
	// sent, replay the stored conversation.
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if req.History == nil && h.store != nil {
		history, err := h.store.History(sessionID, 20)
		if err != nil {
			log.Printf("Warning: failed to load history for %s: %v", sessionID, err)
		} else {
			req.History = history
		}
	}

	resp, err := h.svc.Generate(r.Context(), &req)
	if err != nil {
		var loadErr *model.ModelLoadError
		if errors.As(err, &loadErr) {
			log.Printf("Model load error: %v", err)
			writeError(w, http.StatusServiceUnavailable, "model unavailable")
			return
		}
		log.Printf("Generation error: %v", err)
		writeError(w, http.StatusInternalServerError, "generation failed")
		return
	}

	assessment := h.assess(req.Message)
	h.record(sessionID, &req, resp, assessment)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-ID", sessionID)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		OK:           true,
		DefaultModel: h.svc.DefaultModel(),
		Loaded:       h.svc.LoadedModels(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// Classify handles POST /classify: emotion and risk scoring for raw text
func (h *Handlers) Classify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.assess(req.Text)); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// History handles GET /history?session=...
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session is required")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	turns, err := h.store.History(sessionID, limit)
	if err != nil {
		log.Printf("History query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if turns == nil {
		turns = []models.Turn{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(turns); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// assess scores a message, degrading to the keyword rules when the trained
// classifier is missing or errors. It always returns a usable assessment.
func (h *Handlers) assess(text string) *models.Assessment {
	if h.classifier != nil {
		if a, err := h.classifier.Assess(text); err == nil {
			return a
		} else {
			log.Printf("Warning: classifier failed, using rules: %v", err)
		}
	}
	a, _ := h.fallback.Assess(text)
	return a
}

// record persists the exchange and raises an alert for flagged messages.
// Storage failures are logged, never surfaced to the caller.
func (h *Handlers) record(sessionID string, req *models.GenerateRequest, resp *models.GenerateResponse, a *models.Assessment) {
	if h.store == nil {
		return
	}

	_, err := h.store.SaveExchange(&models.Exchange{
		SessionID: sessionID,
		Message:   req.Message,
		Reply:     resp.Text,
		Model:     resp.Model,
		Emotion:   a.Emotion,
		RiskProb:  a.RiskProb,
	})
	if err != nil {
		log.Printf("Warning: failed to save exchange: %v", err)
	}

	if a.Flag {
		if err := h.store.SaveAlert(sessionID, req.Message, a.RiskProb); err != nil {
			log.Printf("Warning: failed to save alert: %v", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
