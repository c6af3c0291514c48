package service

import (
	"context"
	"fmt"
	"strings"

	"classtrack/internal/common"
	"classtrack/internal/domain/model"
	"classtrack/internal/domain/repository"
	"classtrack/internal/metrics"
)

type ResponseService struct {
	responseRepo repository.ResponseRepository
	statsRepo    repository.StatsRepository
}

func NewResponseService(responseRepo repository.ResponseRepository, statsRepo repository.StatsRepository) *ResponseService {
	return &ResponseService{responseRepo: responseRepo, statsRepo: statsRepo}
}

type SubmitResponseRequest struct {
	Answer string `json:"answer" validate:"required,max=5000"`
}

// SubmitResponse records or overwrites the assignment's single answer. Last
// write wins: a later submission by any group member replaces both the answer
// and the submitter. The store-side guard rejects the write when the caller
// is not in the group or the assignment has been closed.
func (s *ResponseService) SubmitResponse(ctx context.Context, studentID, assignmentID int64, req SubmitResponseRequest) error {
	req.Answer = strings.TrimSpace(req.Answer)
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrValidation)
	}

	ok, err := s.responseRepo.UpsertForGroupMember(ctx, assignmentID, studentID, req.Answer)
	if err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}
	if !ok {
		return fmt.Errorf("assignment not found or already closed: %w", common.ErrValidation)
	}

	metrics.ResponsesSubmittedTotal.Inc()
	return nil
}

// ListOpenAssignments returns the open assignments the student belongs to,
// with the teacher's name, the group member names, and the current answer.
func (s *ResponseService) ListOpenAssignments(ctx context.Context, studentID int64) ([]model.OpenAssignment, error) {
	return s.statsRepo.ListOpenAssignments(ctx, studentID)
}
