package http

import (
	"net/http"

	"loan-amortizer/domain"
	"loan-amortizer/service"
)

type ProjectionHandler struct {
	service *service.ProjectionService
}

func NewProjectionHandler(service *service.ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{service: service}
}

func (h *ProjectionHandler) Project(w http.ResponseWriter, r *http.Request) {
	var params domain.LoanParameters
	if !decodeJSON(w, r, &params) {
		return
	}

	projection, err := h.service.Project(params)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, projection)
}
