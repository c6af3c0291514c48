package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"classtrack/internal/domain/model"
)

type StatsRepository interface {
	ListOpenAssignments(ctx context.Context, studentID int64) ([]model.OpenAssignment, error)
	StudentResults(ctx context.Context, studentID int64) ([]model.StudentResult, error)
	// ClassStatistics aggregates per-student counts and the weighted average
	// restricted to teacherID's assignments. orderBy must come from the
	// service-side allow-list; it is interpolated into the query.
	ClassStatistics(ctx context.Context, teacherID int64, orderBy string) ([]model.ClassStatRow, error)
}

type pgStatsRepository struct {
	db *sql.DB
}

func NewPgStatsRepository(db *sql.DB) StatsRepository {
	return &pgStatsRepository{db: db}
}

func (r *pgStatsRepository) ListOpenAssignments(ctx context.Context, studentID int64) ([]model.OpenAssignment, error) {
	query := `
        SELECT a.id, a.question, a.status, u.name AS teacher
        FROM assignments a
        JOIN assignment_groups ag ON ag.assignment_id = a.id
        JOIN users u ON u.id = a.teacher_id
        WHERE ag.student_id = $1 AND a.status = 'open'
        ORDER BY a.id`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.ListOpenAssignments: %w", err)
	}
	defer rows.Close()

	assignments := []model.OpenAssignment{}
	for rows.Next() {
		var a model.OpenAssignment
		if err := rows.Scan(&a.ID, &a.Question, &a.Status, &a.Teacher); err != nil {
			return nil, fmt.Errorf("pgStatsRepository.ListOpenAssignments scan: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStatsRepository.ListOpenAssignments rows.Err: %w", err)
	}

	// Group sizes are bounded (2-6), so per-assignment lookups stay cheap.
	for i := range assignments {
		names, err := r.groupMemberNames(ctx, assignments[i].ID)
		if err != nil {
			return nil, err
		}
		assignments[i].Group = names

		answer, err := r.currentAnswer(ctx, assignments[i].ID)
		if err != nil {
			return nil, err
		}
		assignments[i].LastAnswer = answer
	}

	return assignments, nil
}

func (r *pgStatsRepository) StudentResults(ctx context.Context, studentID int64) ([]model.StudentResult, error) {
	query := `
        SELECT
            a.id,
            a.question,
            e.score,
            t.name AS teacher,
            r.answer,
            (SELECT COUNT(*) FROM assignment_groups WHERE assignment_id = a.id) AS group_size
        FROM assignments a
        JOIN assignment_groups ag ON ag.assignment_id = a.id
        JOIN evaluations e ON e.assignment_id = a.id
        JOIN users t ON a.teacher_id = t.id
        LEFT JOIN responses r ON r.assignment_id = a.id
        WHERE ag.student_id = $1 AND a.status = 'closed'
        ORDER BY a.id`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.StudentResults: %w", err)
	}
	defer rows.Close()

	results := []model.StudentResult{}
	for rows.Next() {
		var res model.StudentResult
		if err := rows.Scan(&res.AssignmentID, &res.Question, &res.Score,
			&res.Teacher, &res.Answer, &res.GroupSize); err != nil {
			return nil, fmt.Errorf("pgStatsRepository.StudentResults scan: %w", err)
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStatsRepository.StudentResults rows.Err: %w", err)
	}

	for i := range results {
		names, err := r.groupMemberNames(ctx, results[i].AssignmentID)
		if err != nil {
			return nil, err
		}
		results[i].Group = names
	}

	return results, nil
}

func (r *pgStatsRepository) ClassStatistics(ctx context.Context, teacherID int64, orderBy string) ([]model.ClassStatRow, error) {
	query := fmt.Sprintf(`
        SELECT
            u.id,
            u.name,
            COUNT(CASE WHEN a.teacher_id = $1 AND a.status = 'open' THEN 1 END) AS open,
            COUNT(CASE WHEN a.teacher_id = $1 AND a.status = 'closed' THEN 1 END) AS closed,
            COUNT(CASE WHEN a.teacher_id = $1 THEN 1 END) AS total,
            ROUND(
                SUM(
                    CASE
                        WHEN a.teacher_id = $1 AND e.score IS NOT NULL
                        THEN e.score * (1.0 / (SELECT COUNT(*) FROM assignment_groups WHERE assignment_id = a.id))
                        ELSE 0
                    END
                )::numeric /
                NULLIF(
                    SUM(
                        CASE
                            WHEN a.teacher_id = $1 AND e.score IS NOT NULL
                            THEN 1.0 / (SELECT COUNT(*) FROM assignment_groups WHERE assignment_id = a.id)
                            ELSE 0
                        END
                    )::numeric,
                0),
            2) AS average
        FROM users u
        LEFT JOIN assignment_groups ag ON ag.student_id = u.id
        LEFT JOIN assignments a ON a.id = ag.assignment_id
        LEFT JOIN evaluations e ON e.assignment_id = a.id
        WHERE u.role = 'student'
        GROUP BY u.id, u.name
        ORDER BY %s`, orderBy)

	rows, err := r.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.ClassStatistics: %w", err)
	}
	defer rows.Close()

	stats := []model.ClassStatRow{}
	for rows.Next() {
		var row model.ClassStatRow
		if err := rows.Scan(&row.StudentID, &row.Name, &row.Open, &row.Closed,
			&row.Total, &row.Average); err != nil {
			return nil, fmt.Errorf("pgStatsRepository.ClassStatistics scan: %w", err)
		}
		stats = append(stats, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStatsRepository.ClassStatistics rows.Err: %w", err)
	}
	return stats, nil
}

func (r *pgStatsRepository) groupMemberNames(ctx context.Context, assignmentID int64) ([]string, error) {
	query := `
        SELECT u.name
        FROM assignment_groups ag
        JOIN users u ON u.id = ag.student_id
        WHERE ag.assignment_id = $1
        ORDER BY u.name`

	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.groupMemberNames: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("pgStatsRepository.groupMemberNames scan: %w", err)
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStatsRepository.groupMemberNames rows.Err: %w", err)
	}
	return names, nil
}

func (r *pgStatsRepository) currentAnswer(ctx context.Context, assignmentID int64) (*string, error) {
	var answer string
	err := r.db.QueryRowContext(ctx,
		`SELECT answer FROM responses WHERE assignment_id = $1`, assignmentID).Scan(&answer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.currentAnswer: %w", err)
	}
	return &answer, nil
}
