package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/service"
)

// GuidanceHandler serves AI career guidance and quota usage.
type GuidanceHandler struct {
	guidance service.GuidanceService
	quota    service.QuotaService
	logger   *slog.Logger
	now      func() time.Time
}

// NewGuidanceHandler creates a new GuidanceHandler.
func NewGuidanceHandler(guidance service.GuidanceService, quota service.QuotaService, logger *slog.Logger) *GuidanceHandler {
	return &GuidanceHandler{
		guidance: guidance,
		quota:    quota,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterRoutes registers the guidance routes. All of them require a
// bearer token.
//
// Routes:
//   - POST /api/v1/guidance          -> Generate
//   - POST /functions/v1/llama-chat  -> Generate (path used by existing clients)
//   - GET  /api/v1/quota             -> Quota
func (h *GuidanceHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /api/v1/guidance", requireUser(http.HandlerFunc(h.Generate)))
	mux.Handle("POST /functions/v1/llama-chat", requireUser(http.HandlerFunc(h.Generate)))
	mux.Handle("GET /api/v1/quota", requireUser(http.HandlerFunc(h.Quota)))
}

// GuidanceRequest is the body of POST /api/v1/guidance.
type GuidanceRequest struct {
	QueryType    string          `json:"query_type"`
	ProfileText  string          `json:"profile_text"`
	ExtraContext json.RawMessage `json:"extra_context,omitempty"`
}

// Generate runs one metered guidance query. The response is the model's
// JSON object with the quota and model fields merged in.
func (h *GuidanceHandler) Generate(w http.ResponseWriter, r *http.Request) {
	const op = "handler.guidance.generate"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req GuidanceRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.guidance.Generate(r.Context(), domain.GuidanceRequest{
		UserID:       principal.UserID,
		Kind:         domain.QueryKind(req.QueryType),
		ProfileText:  req.ProfileText,
		ExtraContext: req.ExtraContext,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	body, err := guidanceBody(result)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Malformed(err, op, "invalid AI response format"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// guidanceBody merges the result metadata into the model's JSON object.
// Metadata wins over model fields of the same name.
func guidanceBody(result *domain.GuidanceResult) ([]byte, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(result.Payload, &fields); err != nil {
		return nil, err
	}

	meta := map[string]interface{}{
		"queriesRemaining": result.QueriesRemaining,
		"plan":             result.Plan,
		"model":            result.Model,
		"provider":         result.Provider,
	}
	if result.HistoryID != nil {
		meta["historyId"] = result.HistoryID
	}
	for k, v := range meta {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		fields[k] = raw
	}

	return json.Marshal(fields)
}

// QuotaResponse is the body of GET /api/v1/quota.
type QuotaResponse struct {
	Plan      string `json:"plan"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	ResetsAt  string `json:"resetsAt"`
}

// Quota reports today's usage without consuming a unit.
func (h *GuidanceHandler) Quota(w http.ResponseWriter, r *http.Request) {
	const op = "handler.guidance.quota"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	decision, err := h.quota.Usage(r.Context(), principal.UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, QuotaResponse{
		Plan:      string(decision.Plan),
		Limit:     decision.Limit,
		Used:      decision.Used,
		Remaining: decision.Remaining,
		ResetsAt:  domain.NextUTCMidnight(h.now()).Format(time.RFC3339),
	})
}
