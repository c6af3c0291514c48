package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"classtrack/internal/common"
	"classtrack/internal/domain/model"
)

func TestStudentResults_WeightedAverage(t *testing.T) {
	statsRepo := new(MockStatsRepo)
	statsRepo.On("StudentResults", int64(12)).Return([]model.StudentResult{
		{AssignmentID: 1, Question: "Q1", Score: 30, GroupSize: 2},
		{AssignmentID: 2, Question: "Q2", Score: 20, GroupSize: 4},
	}, nil)

	svc := NewStatsService(statsRepo)

	res, err := svc.StudentResults(context.Background(), 12)
	assert.NoError(t, err)
	assert.Len(t, res.Results, 2)
	// (30/2 + 20/4) / (1/2 + 1/4) = 20 / 0.75
	if assert.NotNil(t, res.Average) {
		assert.InDelta(t, 26.67, *res.Average, 0.001)
	}
}

func TestStudentResults_NoEvaluations(t *testing.T) {
	statsRepo := new(MockStatsRepo)
	statsRepo.On("StudentResults", int64(13)).Return([]model.StudentResult{}, nil)

	svc := NewStatsService(statsRepo)

	res, err := svc.StudentResults(context.Background(), 13)
	assert.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Nil(t, res.Average)
}

func TestClassStatistics_SortFields(t *testing.T) {
	tests := []struct {
		sortBy  string
		orderBy string
	}{
		{"", "LOWER(name)"},
		{"name", "LOWER(name)"},
		{"total", "total"},
		{"average", "average"},
	}

	for _, tt := range tests {
		t.Run("sortBy="+tt.sortBy, func(t *testing.T) {
			statsRepo := new(MockStatsRepo)
			statsRepo.On("ClassStatistics", int64(7), tt.orderBy).Return([]model.ClassStatRow{}, nil)

			svc := NewStatsService(statsRepo)

			_, err := svc.ClassStatistics(context.Background(), 7, tt.sortBy)
			assert.NoError(t, err)
			statsRepo.AssertExpectations(t)
		})
	}
}

func TestClassStatistics_RejectsUnknownSortField(t *testing.T) {
	svc := NewStatsService(new(MockStatsRepo))

	for _, sortBy := range []string{"email", "id; DROP TABLE users", "Name"} {
		_, err := svc.ClassStatistics(context.Background(), 7, sortBy)
		assert.ErrorIs(t, err, common.ErrValidation)
	}
}
