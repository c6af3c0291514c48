package handler

import (
	"encoding/json"
	"net/http"

	"classtrack/internal/app/service"
	"classtrack/internal/common"

	"github.com/go-chi/chi/v5"
)

type StudentHandler struct {
	responseService *service.ResponseService
	statsService    *service.StatsService
}

func NewStudentHandler(rs *service.ResponseService, ss *service.StatsService) *StudentHandler {
	return &StudentHandler{responseService: rs, statsService: ss}
}

func (h *StudentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/assignments/open", h.listOpenAssignments)
	r.Put("/assignments/{assignmentID}/response", h.submitResponse)
	r.Get("/results", h.results)
}

func (h *StudentHandler) listOpenAssignments(w http.ResponseWriter, r *http.Request) {
	studentID, ok := GetUserID(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	assignments, err := h.responseService.ListOpenAssignments(r.Context(), studentID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, assignments)
}

func (h *StudentHandler) submitResponse(w http.ResponseWriter, r *http.Request) {
	studentID, ok := GetUserID(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	assignmentID, err := parseID(chi.URLParam(r, "assignmentID"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	var req service.SubmitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.responseService.SubmitResponse(r.Context(), studentID, assignmentID, req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]int64{"assignment_id": assignmentID})
}

func (h *StudentHandler) results(w http.ResponseWriter, r *http.Request) {
	studentID, ok := GetUserID(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	results, err := h.statsService.StudentResults(r.Context(), studentID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, results)
}
