package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"classtrack/internal/common"
	"classtrack/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type EvaluationRepository interface {
	Create(ctx context.Context, tx *sql.Tx, assignmentID int64, score int) error
	FindByAssignment(ctx context.Context, assignmentID int64) (*model.Evaluation, error)
}

type pgEvaluationRepository struct {
	db *sql.DB
}

func NewPgEvaluationRepository(db *sql.DB) EvaluationRepository {
	return &pgEvaluationRepository{db: db}
}

func (r *pgEvaluationRepository) Create(ctx context.Context, tx *sql.Tx, assignmentID int64, score int) error {
	query := `INSERT INTO evaluations (assignment_id, score) VALUES ($1, $2)`
	_, err := tx.ExecContext(ctx, query, assignmentID, score)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // already evaluated
			return fmt.Errorf("assignment %d already has an evaluation: %w", assignmentID, common.ErrConflict)
		}
		return fmt.Errorf("pgEvaluationRepository.Create: %w", err)
	}
	return nil
}

func (r *pgEvaluationRepository) FindByAssignment(ctx context.Context, assignmentID int64) (*model.Evaluation, error) {
	query := `SELECT assignment_id, score FROM evaluations WHERE assignment_id = $1`
	ev := &model.Evaluation{}
	err := r.db.QueryRowContext(ctx, query, assignmentID).Scan(&ev.AssignmentID, &ev.Score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgEvaluationRepository.FindByAssignment: %w", err)
	}
	return ev, nil
}
