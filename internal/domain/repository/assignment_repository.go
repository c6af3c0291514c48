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

type AssignmentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, a *model.Assignment) error
	AddGroupMembers(ctx context.Context, tx *sql.Tx, assignmentID int64, studentIDs []int64) error
	FindByID(ctx context.Context, id int64) (*model.Assignment, error)
	// Close flips an open assignment to closed. Returns false when the
	// assignment was not open, so a concurrent close loses cleanly.
	Close(ctx context.Context, tx *sql.Tx, id int64) (bool, error)
	CountPairAssignments(ctx context.Context, teacherID, studentA, studentB int64) (int, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]model.TeacherAssignmentRow, error)
	GetGroupMembers(ctx context.Context, assignmentID int64) ([]model.GroupMember, error)
}

type pgAssignmentRepository struct {
	db *sql.DB
}

func NewPgAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &pgAssignmentRepository{db: db}
}

func (r *pgAssignmentRepository) Create(ctx context.Context, tx *sql.Tx, a *model.Assignment) error {
	query := `INSERT INTO assignments (question, status, teacher_id) VALUES ($1, $2, $3) RETURNING id`
	err := tx.QueryRowContext(ctx, query, a.Question, a.Status, a.TeacherID).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("pgAssignmentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgAssignmentRepository) AddGroupMembers(ctx context.Context, tx *sql.Tx, assignmentID int64, studentIDs []int64) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO assignment_groups (assignment_id, student_id) VALUES ($1, $2)`)
	if err != nil {
		return fmt.Errorf("pgAssignmentRepository.AddGroupMembers prepare: %w", err)
	}
	defer stmt.Close()

	for _, sid := range studentIDs {
		if _, err := stmt.ExecContext(ctx, assignmentID, sid); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" { // FK violation
				return fmt.Errorf("student %d does not exist: %w", sid, common.ErrConflict)
			}
			return fmt.Errorf("pgAssignmentRepository.AddGroupMembers exec for student %d: %w", sid, err)
		}
	}
	return nil
}

func (r *pgAssignmentRepository) FindByID(ctx context.Context, id int64) (*model.Assignment, error) {
	query := `SELECT id, question, status, teacher_id FROM assignments WHERE id = $1`
	a := &model.Assignment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Question, &a.Status, &a.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAssignmentRepository.FindByID: %w", err)
	}
	return a, nil
}

func (r *pgAssignmentRepository) Close(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	query := `UPDATE assignments SET status = 'closed' WHERE id = $1 AND status = 'open'`
	res, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("pgAssignmentRepository.Close: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgAssignmentRepository.Close rows affected: %w", err)
	}
	return affected == 1, nil
}

// CountPairAssignments counts the assignments created by teacherID whose group
// contains both students.
func (r *pgAssignmentRepository) CountPairAssignments(ctx context.Context, teacherID, studentA, studentB int64) (int, error) {
	query := `
        SELECT COUNT(*)
        FROM assignment_groups g1
        JOIN assignment_groups g2 ON g1.assignment_id = g2.assignment_id
        JOIN assignments a ON g1.assignment_id = a.id
        WHERE g1.student_id = $1 AND g2.student_id = $2 AND a.teacher_id = $3`

	var count int
	if err := r.db.QueryRowContext(ctx, query, studentA, studentB, teacherID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgAssignmentRepository.CountPairAssignments: %w", err)
	}
	return count, nil
}

func (r *pgAssignmentRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]model.TeacherAssignmentRow, error) {
	query := `
        SELECT
            a.id,
            a.question,
            a.status,
            STRING_AGG(u.name, ', ' ORDER BY u.name) AS students,
            r.answer IS NOT NULL AS has_response,
            r.answer,
            e.score
        FROM assignments a
        JOIN assignment_groups ag ON ag.assignment_id = a.id
        JOIN users u ON ag.student_id = u.id
        LEFT JOIN responses r ON r.assignment_id = a.id
        LEFT JOIN evaluations e ON e.assignment_id = a.id
        WHERE a.teacher_id = $1
        GROUP BY a.id, a.question, a.status, r.answer, e.score
        ORDER BY a.id ASC`

	rows, err := r.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("pgAssignmentRepository.ListByTeacher: %w", err)
	}
	defer rows.Close()

	assignments := []model.TeacherAssignmentRow{}
	for rows.Next() {
		var row model.TeacherAssignmentRow
		if err := rows.Scan(&row.ID, &row.Question, &row.Status, &row.Students,
			&row.HasResponse, &row.Answer, &row.Score); err != nil {
			return nil, fmt.Errorf("pgAssignmentRepository.ListByTeacher scan: %w", err)
		}
		assignments = append(assignments, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAssignmentRepository.ListByTeacher rows.Err: %w", err)
	}
	return assignments, nil
}

func (r *pgAssignmentRepository) GetGroupMembers(ctx context.Context, assignmentID int64) ([]model.GroupMember, error) {
	query := `
        SELECT u.id, u.name, u.email
        FROM assignment_groups ag
        JOIN users u ON ag.student_id = u.id
        WHERE ag.assignment_id = $1
        ORDER BY u.name`

	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("pgAssignmentRepository.GetGroupMembers: %w", err)
	}
	defer rows.Close()

	members := []model.GroupMember{}
	for rows.Next() {
		var m model.GroupMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("pgAssignmentRepository.GetGroupMembers scan: %w", err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAssignmentRepository.GetGroupMembers rows.Err: %w", err)
	}
	return members, nil
}
