package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"classtrack/internal/common"
	"classtrack/internal/domain/model"
)

type ResponseRepository interface {
	FindByAssignment(ctx context.Context, assignmentID int64) (*model.Response, error)
	// UpsertForGroupMember inserts or overwrites the assignment's single
	// response, but only while the student is in the group and the assignment
	// is still open. Returns false when that guard fails.
	UpsertForGroupMember(ctx context.Context, assignmentID, studentID int64, answer string) (bool, error)
}

type pgResponseRepository struct {
	db *sql.DB
}

func NewPgResponseRepository(db *sql.DB) ResponseRepository {
	return &pgResponseRepository{db: db}
}

func (r *pgResponseRepository) FindByAssignment(ctx context.Context, assignmentID int64) (*model.Response, error) {
	query := `SELECT assignment_id, answer, submitted_by FROM responses WHERE assignment_id = $1`
	resp := &model.Response{}
	err := r.db.QueryRowContext(ctx, query, assignmentID).Scan(&resp.AssignmentID, &resp.Answer, &resp.SubmittedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgResponseRepository.FindByAssignment: %w", err)
	}
	return resp, nil
}

// The membership and open-status check is folded into the statement itself so
// a concurrent close cannot slip a write into a closed assignment.
func (r *pgResponseRepository) UpsertForGroupMember(ctx context.Context, assignmentID, studentID int64, answer string) (bool, error) {
	query := `
        INSERT INTO responses (assignment_id, answer, submitted_by)
        SELECT a.id, $2, $3
        FROM assignments a
        JOIN assignment_groups g ON g.assignment_id = a.id
        WHERE a.id = $1 AND g.student_id = $3 AND a.status = 'open'
        ON CONFLICT (assignment_id) DO UPDATE
        SET answer = EXCLUDED.answer, submitted_by = EXCLUDED.submitted_by`

	res, err := r.db.ExecContext(ctx, query, assignmentID, answer, studentID)
	if err != nil {
		return false, fmt.Errorf("pgResponseRepository.UpsertForGroupMember: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgResponseRepository.UpsertForGroupMember rows affected: %w", err)
	}
	return affected == 1, nil
}
