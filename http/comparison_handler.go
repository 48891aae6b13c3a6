package http

import (
	"net/http"

	"loan-amortizer/domain"
	"loan-amortizer/service"
)

type ComparisonHandler struct {
	service *service.TermComparisonService
}

func NewComparisonHandler(service *service.TermComparisonService) *ComparisonHandler {
	return &ComparisonHandler{service: service}
}

// Compare handles POST /api/v1/comparisons.
func (h *ComparisonHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var input domain.TermComparisonInput
	if !decodeJSON(w, r, &input) {
		return
	}

	result, err := h.service.Compare(r.Context(), input)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
