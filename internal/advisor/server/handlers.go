package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/conduit-lang/indexadvisor/internal/advisor/costeval"
	"github.com/conduit-lang/indexadvisor/internal/advisor/extend"
	"github.com/conduit-lang/indexadvisor/internal/advisor/model"
	"github.com/conduit-lang/indexadvisor/internal/advisor/server/auth"
	websocket "github.com/conduit-lang/indexadvisor/internal/advisor/server/stream"
)

// RecommendRequest is the body of a POST /recommend call: a workload and
// the Extend parameters to run it under.
type RecommendRequest struct {
	Queries []struct {
		ID        string   `json:"id"`
		Text      string   `json:"text"`
		Table     string   `json:"table"`
		Columns   []string `json:"columns"`
		Frequency float64  `json:"frequency"`
	} `json:"queries"`
	BudgetMB           int64   `json:"budget_mb"`
	MaxIndexes         int     `json:"max_indexes"`
	MaxIndexWidth      int     `json:"max_index_width"`
	MinCostImprovement float64 `json:"min_cost_improvement"`
	Constraint         string  `json:"constraint"` // "storage" or "number"
}

// RecommendResponse is the body returned by POST /recommend.
type RecommendResponse struct {
	RunID        string   `json:"run_id"`
	Indexes      []string `json:"indexes"`
	CostRequests int64    `json:"cost_requests"`
	CacheHits    int64    `json:"cache_hits"`
}

// toWorkload converts the wire request into the model's value types.
func (req *RecommendRequest) toWorkload() model.Workload {
	queries := make([]model.Query, 0, len(req.Queries))
	for _, q := range req.Queries {
		cols := make([]model.Column, 0, len(q.Columns))
		for _, name := range q.Columns {
			cols = append(cols, model.NewColumn(q.Table, name))
		}
		queries = append(queries, model.NewQuery(q.ID, q.Text, cols, q.Frequency))
	}
	return model.NewWorkload(queries...)
}

func (req *RecommendRequest) toConfig() extend.Config {
	cfg := extend.Config{
		BudgetMB:           req.BudgetMB,
		MaxIndexes:         req.MaxIndexes,
		MaxIndexWidth:      req.MaxIndexWidth,
		MinCostImprovement: req.MinCostImprovement,
	}
	if req.Constraint == "number" {
		cfg.Constraint = extend.ConstraintNumber
	}
	return cfg
}

// Handlers bundles the dependencies the advisor's HTTP API needs to serve
// recommendation runs and stream their progress over WebSocket.
type Handlers struct {
	Eval   *costeval.CostEvaluation
	Tokens *auth.TokenService
	Hub    *websocket.Hub
	// APIKeyHash, if set, lets a caller authenticate with a static
	// X-API-Key header instead of a bearer token - useful for a server-to-
	// server caller that has no use for a 24h-expiring JWT.
	APIKeyHash string
}

// Routes builds the chi router for the advisor's HTTP API.
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", h.handleHealth)
	r.Post("/recommend", h.requireScope(auth.ScopeRun, h.handleRecommend))
	r.Get("/ws", h.handleWebSocket)

	return r
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// requireScope wraps next so it only runs for a bearer token carrying scope
// or a valid X-API-Key (which is not scope-checked). When Tokens is nil,
// every request is passed through.
func (h *Handlers) requireScope(scope auth.Scope, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.Tokens == nil {
			next(w, r)
			return
		}

		if h.APIKeyHash != "" {
			if key := r.Header.Get("X-API-Key"); key != "" {
				if !auth.CheckAPIKey(key, h.APIKeyHash) {
					http.Error(w, "invalid api key", http.StatusUnauthorized)
					return
				}
				next(w, r)
				return
			}
		}

		token := bearerToken(r)
		if token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := h.Tokens.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if !auth.HasScope(claims, scope) {
			http.Error(w, "insufficient scope", http.StatusForbidden)
			return
		}

		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

// handleRecommend runs Extend over the posted workload, publishing progress
// events to every connected WebSocket client as it goes, and returns the
// final recommended combination. The run ID is only known once this handler
// assigns it, so a client has no way to subscribe before the run starts;
// instead every client receives every RunEvent and filters on RunID.
func (h *Handlers) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	runID := uuid.New().String()
	workload := req.toWorkload()
	cfg := req.toConfig()

	if h.Hub != nil {
		websocket.PublishRunEvent(h.Hub, websocket.RunEvent{
			RunID:       runID,
			Stage:       "started",
			Description: "recommendation run started",
		})
	}

	combination, err := extend.Run(r.Context(), h.Eval, workload, cfg)
	if err != nil {
		if h.Hub != nil {
			websocket.PublishRunEvent(h.Hub, websocket.RunEvent{
				RunID:       runID,
				Stage:       "error",
				Description: err.Error(),
			})
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	names := make([]string, len(combination))
	for i, ix := range combination {
		names[i] = ix.String()
	}

	if h.Hub != nil {
		websocket.PublishRunEvent(h.Hub, websocket.RunEvent{
			RunID:       runID,
			Stage:       "complete",
			Description: "recommendation run complete",
		})
	}

	resp := RecommendResponse{
		RunID:        runID,
		Indexes:      names,
		CostRequests: h.Eval.CostRequests(),
		CacheHits:    h.Eval.CacheHits(),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleWebSocket upgrades the connection and registers the client with the
// hub so it starts receiving every run's progress stream.
func (h *Handlers) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.NewUpgrader(websocket.DefaultConfig(), h.Hub)
	upgrader.ServeHTTP(w, r)
}
