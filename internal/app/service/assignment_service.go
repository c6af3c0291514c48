package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"classtrack/internal/common"
	"classtrack/internal/domain/model"
	"classtrack/internal/domain/repository"
	"classtrack/internal/metrics"
)

// pairLimit is the maximum number of assignments any two students may share
// under the same teacher.
const pairLimit = 2

type AssignmentService struct {
	assignmentRepo repository.AssignmentRepository
	responseRepo   repository.ResponseRepository
	evaluationRepo repository.EvaluationRepository
	userRepo       repository.UserRepository
	db             *sql.DB // For transactions
}

func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	responseRepo repository.ResponseRepository,
	evaluationRepo repository.EvaluationRepository,
	userRepo repository.UserRepository,
	db *sql.DB,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		responseRepo:   responseRepo,
		evaluationRepo: evaluationRepo,
		userRepo:       userRepo,
		db:             db,
	}
}

type CreateAssignmentRequest struct {
	Question   string  `json:"question" validate:"required,max=1000"`
	StudentIDs []int64 `json:"studentIds" validate:"required,min=2,max=6,unique,dive,gt=0"`
}

// CreateAssignment creates an open assignment for a fixed group of students.
// The pairing limit is checked for every unordered pair in the group before
// anything is written; the assignment and its memberships are inserted in one
// transaction so a partially-grouped assignment is never visible.
func (s *AssignmentService) CreateAssignment(ctx context.Context, teacherID int64, req CreateAssignmentRequest) (int64, error) {
	req.Question = strings.TrimSpace(req.Question)
	if err := validate.Struct(req); err != nil {
		return 0, fmt.Errorf("%v: %w", err, common.ErrValidation)
	}

	count, err := s.userRepo.CountStudentsByIDs(ctx, req.StudentIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to check students: %w", err)
	}
	if count != len(req.StudentIDs) {
		return 0, fmt.Errorf("one or more student ids do not refer to existing students: %w", common.ErrValidation)
	}

	for i := 0; i < len(req.StudentIDs); i++ {
		for j := i + 1; j < len(req.StudentIDs); j++ {
			n, err := s.assignmentRepo.CountPairAssignments(ctx, teacherID, req.StudentIDs[i], req.StudentIDs[j])
			if err != nil {
				return 0, fmt.Errorf("failed to check pairing limit: %w", err)
			}
			if n >= pairLimit {
				return 0, s.pairLimitError(ctx, req.StudentIDs[i], req.StudentIDs[j])
			}
		}
	}

	assignment := &model.Assignment{
		Question:  req.Question,
		Status:    model.StatusOpen,
		TeacherID: teacherID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.assignmentRepo.Create(ctx, tx, assignment); err != nil {
		return 0, fmt.Errorf("failed to create assignment: %w", err)
	}
	if err := s.assignmentRepo.AddGroupMembers(ctx, tx, assignment.ID, req.StudentIDs); err != nil {
		return 0, fmt.Errorf("failed to add group members: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.AssignmentsCreatedTotal.Inc()
	return assignment.ID, nil
}

func (s *AssignmentService) pairLimitError(ctx context.Context, a, b int64) error {
	nameA, nameB := fmt.Sprintf("student %d", a), fmt.Sprintf("student %d", b)
	if u, err := s.userRepo.FindByID(ctx, a); err == nil {
		nameA = u.Name
	}
	if u, err := s.userRepo.FindByID(ctx, b); err == nil {
		nameB = u.Name
	}
	return fmt.Errorf("%s and %s have already worked together on %d assignments: %w",
		nameA, nameB, pairLimit, common.ErrValidation)
}

type EvaluateAssignmentRequest struct {
	Score *int `json:"score" validate:"required,min=0,max=30"`
}

// EvaluateAssignment records the score and closes the assignment in a single
// transaction. The conditional close guarantees exactly one open -> closed
// transition even under concurrent evaluation attempts.
func (s *AssignmentService) EvaluateAssignment(ctx context.Context, assignmentID int64, req EvaluateAssignmentRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrValidation)
	}

	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("assignment %d not found: %w", assignmentID, common.ErrNotFound)
		}
		return fmt.Errorf("failed to find assignment: %w", err)
	}
	if assignment.Status == model.StatusClosed {
		return fmt.Errorf("assignment already closed, evaluation is immutable: %w", common.ErrValidation)
	}

	if _, err := s.responseRepo.FindByAssignment(ctx, assignmentID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("cannot evaluate an assignment without a response: %w", common.ErrValidation)
		}
		return fmt.Errorf("failed to find response: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	closed, err := s.assignmentRepo.Close(ctx, tx, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to close assignment: %w", err)
	}
	if !closed {
		return fmt.Errorf("assignment already closed, evaluation is immutable: %w", common.ErrValidation)
	}
	if err := s.evaluationRepo.Create(ctx, tx, assignmentID, *req.Score); err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.EvaluationsTotal.Inc()
	metrics.ScoreHistogram.Observe(float64(*req.Score))
	return nil
}

func (s *AssignmentService) ListAssignments(ctx context.Context, teacherID int64) ([]model.TeacherAssignmentRow, error) {
	return s.assignmentRepo.ListByTeacher(ctx, teacherID)
}

func (s *AssignmentService) GetAssignmentDetail(ctx context.Context, assignmentID int64) (*model.AssignmentDetail, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("assignment %d not found: %w", assignmentID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	detail := &model.AssignmentDetail{
		Question: assignment.Question,
		Status:   assignment.Status,
	}

	members, err := s.assignmentRepo.GetGroupMembers(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	detail.Group = members

	response, err := s.responseRepo.FindByAssignment(ctx, assignmentID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	if response != nil {
		detail.Answer = &response.Answer
	}

	evaluation, err := s.evaluationRepo.FindByAssignment(ctx, assignmentID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	if evaluation != nil {
		detail.Score = &evaluation.Score
	}

	return detail, nil
}

func (s *AssignmentService) ListStudents(ctx context.Context) ([]model.GroupMember, error) {
	return s.userRepo.ListStudents(ctx)
}
