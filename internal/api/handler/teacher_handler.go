package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"classtrack/internal/app/service"
	"classtrack/internal/common"

	"github.com/go-chi/chi/v5"
)

type TeacherHandler struct {
	assignmentService *service.AssignmentService
	statsService      *service.StatsService
}

func NewTeacherHandler(as *service.AssignmentService, ss *service.StatsService) *TeacherHandler {
	return &TeacherHandler{assignmentService: as, statsService: ss}
}

func (h *TeacherHandler) RegisterRoutes(r chi.Router) {
	r.Post("/assignments", h.createAssignment)
	r.Get("/assignments", h.listAssignments)
	r.Get("/assignments/{assignmentID}/response", h.getAssignmentDetail)
	r.Put("/assignments/{assignmentID}/evaluate", h.evaluateAssignment)
	r.Get("/class-status", h.classStatus)
	r.Get("/students", h.listStudents)
}

func (h *TeacherHandler) createAssignment(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := GetUserID(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	id, err := h.assignmentService.CreateAssignment(r.Context(), teacherID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *TeacherHandler) listAssignments(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := GetUserID(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	assignments, err := h.assignmentService.ListAssignments(r.Context(), teacherID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, assignments)
}

func (h *TeacherHandler) getAssignmentDetail(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := parseID(chi.URLParam(r, "assignmentID"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	detail, err := h.assignmentService.GetAssignmentDetail(r.Context(), assignmentID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *TeacherHandler) evaluateAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := parseID(chi.URLParam(r, "assignmentID"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	var req service.EvaluateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.assignmentService.EvaluateAssignment(r.Context(), assignmentID, req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"assignment_id": assignmentID,
		"score":         *req.Score,
	})
}

func (h *TeacherHandler) classStatus(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := GetUserID(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	stats, err := h.statsService.ClassStatistics(r.Context(), teacherID, r.URL.Query().Get("sortBy"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *TeacherHandler) listStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.assignmentService.ListStudents(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, students)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrBadRequest
	}
	return id, nil
}
