package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"loan-amortizer/domain"
	"loan-amortizer/service"
)

type ScheduleHandler struct {
	service *service.ScheduleService
}

func NewScheduleHandler(service *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

type BatchRequest struct {
	Loans []domain.LoanParameters `json:"loans"`
}

type BatchResponse struct {
	Summaries []domain.LoanSummary `json:"summaries"`
}

// Create handles POST /api/v1/schedules. The schedule is stored unless
// ?persist=false; a stored schedule is answered with 201.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	persist := true
	if raw := r.URL.Query().Get("persist"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "persist must be true or false", raw)
			return
		}
		persist = v
	}

	var params domain.LoanParameters
	if !decodeJSON(w, r, &params) {
		return
	}

	schedule, err := h.service.Amortize(r.Context(), params, persist)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if schedule.ID != "" {
		status = http.StatusCreated
		w.Header().Set("Location", "/api/v1/schedules/"+schedule.ID)
	}
	respondJSON(w, status, schedule)
}

// List handles GET /api/v1/schedules?limit=N.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer", raw)
			return
		}
		limit = v
	}

	headers, err := h.service.List(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, headers)
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Batch handles POST /api/v1/schedules/batch. Summaries are returned in the
// order of the submitted loans and are never stored.
func (h *ScheduleHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	summaries, err := h.service.AmortizeBatch(r.Context(), req.Loans)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, BatchResponse{Summaries: summaries})
}
