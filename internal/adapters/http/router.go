package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kpetrov/docsqa/internal/config"
	"github.com/kpetrov/docsqa/internal/core/domain"
	"github.com/kpetrov/docsqa/internal/core/ports"
	"github.com/kpetrov/docsqa/internal/observability/metrics"
)

type Router struct {
	cfg          config.Config
	answerer     ports.ChatAnswerer
	conversation ports.ConversationLog
	readiness    ports.ReadinessReporter
	metrics      *metrics.ServerMetrics
}

func NewRouter(
	cfg config.Config,
	answerer ports.ChatAnswerer,
	conversation ports.ConversationLog,
	readiness ports.ReadinessReporter,
	m *metrics.ServerMetrics,
) *Router {
	return &Router{
		cfg:          cfg,
		answerer:     answerer,
		conversation: conversation,
		readiness:    readiness,
		metrics:      m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", rt.health)
	mux.HandleFunc("/api/chat", rt.chat)
	mux.HandleFunc("/api/clear", rt.clear)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	if rt.cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(rt.cfg.StaticDir)))
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, defaultQueueWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	state := rt.readiness.State()
	payload := map[string]any{
		"status": "initializing",
		"error":  nil,
	}
	if state.Status == domain.StatusReady {
		payload["status"] = "ready"
	}
	if state.Err != "" {
		payload["error"] = state.Err
	}
	writeJSON(w, http.StatusOK, payload)
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	if state := rt.readiness.State(); state.Status != domain.StatusReady {
		message := "service is initializing, retry later"
		if state.Err != "" {
			message = "initialization failed: " + state.Err
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": message})
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "message must be a string"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "message is required"})
		return
	}

	start := time.Now()
	answer, err := rt.answerer.Answer(r.Context(), req.Message)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		slog.Error("chat_failed",
			"request_id", requestIDFromContext(r.Context()),
			"status", status,
			"error", err,
		)
		if rt.metrics != nil {
			rt.metrics.RecordChatAnswer("api", "error", 0, time.Since(start))
		}
		writeJSON(w, status, map[string]any{"error": publicErrorMessage(err)})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordChatAnswer("api", "ok", len(answer.Sources), time.Since(start))
	}
	if answer.Sources == nil {
		answer.Sources = []domain.Source{}
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) clear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	rt.conversation.Reset()
	writeJSON(w, http.StatusOK, map[string]any{"message": "conversation history cleared"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
