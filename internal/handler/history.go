package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/service"
)

// HistoryHandler serves the query history and saved careers.
type HistoryHandler struct {
	history service.HistoryService
	saved   service.SavedCareerService
	logger  *slog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history service.HistoryService, saved service.SavedCareerService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		saved:   saved,
		logger:  logger,
	}
}

// RegisterRoutes registers the history and saved-career routes.
//
// Routes:
//   - GET    /api/v1/history                -> ListHistory
//   - GET    /api/v1/history/{id}           -> GetHistory
//   - GET    /api/v1/saved-careers          -> ListSaved
//   - POST   /api/v1/saved-careers          -> Save
//   - DELETE /api/v1/saved-careers/{id}     -> DeleteSaved
func (h *HistoryHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /api/v1/history", requireUser(http.HandlerFunc(h.ListHistory)))
	mux.Handle("GET /api/v1/history/{id}", requireUser(http.HandlerFunc(h.GetHistory)))
	mux.Handle("GET /api/v1/saved-careers", requireUser(http.HandlerFunc(h.ListSaved)))
	mux.Handle("POST /api/v1/saved-careers", requireUser(http.HandlerFunc(h.Save)))
	mux.Handle("DELETE /api/v1/saved-careers/{id}", requireUser(http.HandlerFunc(h.DeleteSaved)))
}

// HistoryEntryResponse is the JSON shape of one history entry.
type HistoryEntryResponse struct {
	ID            string          `json:"id"`
	QueryType     string          `json:"query_type"`
	InputSummary  string          `json:"input_summary"`
	ModelResponse json.RawMessage `json:"model_response"`
	CreatedAt     string          `json:"created_at"`
}

// HistoryListResponse is the body of GET /api/v1/history.
type HistoryListResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
	Total   int64                  `json:"total"`
}

func toHistoryEntryResponse(e domain.HistoryEntry) HistoryEntryResponse {
	resp := HistoryEntryResponse{
		ID:            e.ID.String(),
		QueryType:     e.Kind.String(),
		InputSummary:  e.InputSummary,
		ModelResponse: e.ModelResponse,
		CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if len(resp.ModelResponse) == 0 {
		resp.ModelResponse = json.RawMessage("null")
	}
	return resp
}

// ListHistory returns the caller's most recent queries. An unparseable
// limit falls back to the default.
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	const op = "handler.history.list"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, total, err := h.history.List(r.Context(), principal.UserID, limit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := HistoryListResponse{
		Entries: make([]HistoryEntryResponse, 0, len(entries)),
		Total:   total,
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toHistoryEntryResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetHistory returns a single history entry owned by the caller.
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "handler.history.get"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	id, err := pathUUID(r, "id", op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	entry, err := h.history.Get(r.Context(), id, principal.UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toHistoryEntryResponse(*entry))
}

// SavedCareerResponse is the JSON shape of a saved career.
type SavedCareerResponse struct {
	ID      string          `json:"id"`
	Title   string          `json:"career_title"`
	Content json.RawMessage `json:"career_data"`
	SavedAt string          `json:"saved_at"`
}

// SaveCareerRequest is the body of POST /api/v1/saved-careers.
type SaveCareerRequest struct {
	Title   string          `json:"career_title"`
	Content json.RawMessage `json:"career_data"`
}

func toSavedCareerResponse(c domain.SavedCareer) SavedCareerResponse {
	return SavedCareerResponse{
		ID:      c.ID.String(),
		Title:   c.Title,
		Content: c.Content,
		SavedAt: c.SavedAt.UTC().Format(time.RFC3339),
	}
}

// ListSaved returns the caller's saved careers.
func (h *HistoryHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	const op = "handler.saved_career.list"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	careers, err := h.saved.List(r.Context(), principal.UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := make([]SavedCareerResponse, 0, len(careers))
	for _, c := range careers {
		resp = append(resp, toSavedCareerResponse(c))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"careers": resp})
}

// Save bookmarks a career recommendation.
func (h *HistoryHandler) Save(w http.ResponseWriter, r *http.Request) {
	const op = "handler.saved_career.save"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req SaveCareerRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	career, err := h.saved.Save(r.Context(), principal.UserID, req.Title, req.Content)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSavedCareerResponse(*career))
}

// DeleteSaved removes a saved career owned by the caller.
func (h *HistoryHandler) DeleteSaved(w http.ResponseWriter, r *http.Request) {
	const op = "handler.saved_career.delete"

	principal, err := principalFrom(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	id, err := pathUUID(r, "id", op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.saved.Delete(r.Context(), id, principal.UserID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
