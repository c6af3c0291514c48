package service

import (
	"context"
	"fmt"

	"classtrack/internal/common"
	"classtrack/internal/domain/model"
	"classtrack/internal/domain/repository"
	"classtrack/internal/scoring"
)

// classSortFields maps the accepted sortBy values to the SQL they stand for.
// Anything outside this allow-list is rejected; a caller-supplied string never
// reaches the query directly.
var classSortFields = map[string]string{
	"":        "LOWER(name)",
	"name":    "LOWER(name)",
	"total":   "total",
	"average": "average",
}

type StatsService struct {
	statsRepo repository.StatsRepository
}

func NewStatsService(statsRepo repository.StatsRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo}
}

// StudentResults returns the student's closed, evaluated assignments together
// with the weighted average over them. The average is nil when the student
// has no evaluated assignments.
func (s *StatsService) StudentResults(ctx context.Context, studentID int64) (*model.StudentResults, error) {
	results, err := s.statsRepo.StudentResults(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student results: %w", err)
	}

	weighted := make([]scoring.WeightedScore, 0, len(results))
	for _, r := range results {
		weighted = append(weighted, scoring.WeightedScore{Score: r.Score, GroupSize: r.GroupSize})
	}

	return &model.StudentResults{
		Results: results,
		Average: scoring.WeightedAverage(weighted),
	}, nil
}

// ClassStatistics returns the per-student rollup of the teacher's assignments,
// ordered by one of the allow-listed sort fields.
func (s *StatsService) ClassStatistics(ctx context.Context, teacherID int64, sortBy string) ([]model.ClassStatRow, error) {
	orderBy, ok := classSortFields[sortBy]
	if !ok {
		return nil, fmt.Errorf("invalid sort field %q: %w", sortBy, common.ErrValidation)
	}
	return s.statsRepo.ClassStatistics(ctx, teacherID, orderBy)
}
