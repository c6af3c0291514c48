package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"classtrack/internal/common"
	"classtrack/internal/domain/model"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *model.User) error {
	return nil
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) ListStudents(ctx context.Context) ([]model.GroupMember, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroupMember), args.Error(1)
}

func (m *MockUserRepo) CountStudentsByIDs(ctx context.Context, ids []int64) (int, error) {
	args := m.Called(ids)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepo) CountUsers(ctx context.Context) (int, error) {
	return 0, nil
}

type MockAssignmentRepo struct {
	mock.Mock
}

func (m *MockAssignmentRepo) Create(ctx context.Context, tx *sql.Tx, a *model.Assignment) error {
	return nil
}

func (m *MockAssignmentRepo) AddGroupMembers(ctx context.Context, tx *sql.Tx, assignmentID int64, studentIDs []int64) error {
	return nil
}

func (m *MockAssignmentRepo) FindByID(ctx context.Context, id int64) (*model.Assignment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Assignment), args.Error(1)
}

func (m *MockAssignmentRepo) Close(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssignmentRepo) CountPairAssignments(ctx context.Context, teacherID, studentA, studentB int64) (int, error) {
	args := m.Called(teacherID, studentA, studentB)
	return args.Int(0), args.Error(1)
}

func (m *MockAssignmentRepo) ListByTeacher(ctx context.Context, teacherID int64) ([]model.TeacherAssignmentRow, error) {
	args := m.Called(teacherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TeacherAssignmentRow), args.Error(1)
}

func (m *MockAssignmentRepo) GetGroupMembers(ctx context.Context, assignmentID int64) ([]model.GroupMember, error) {
	args := m.Called(assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroupMember), args.Error(1)
}

type MockResponseRepo struct {
	mock.Mock
}

func (m *MockResponseRepo) FindByAssignment(ctx context.Context, assignmentID int64) (*model.Response, error) {
	args := m.Called(assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Response), args.Error(1)
}

func (m *MockResponseRepo) UpsertForGroupMember(ctx context.Context, assignmentID, studentID int64, answer string) (bool, error) {
	args := m.Called(assignmentID, studentID, answer)
	return args.Bool(0), args.Error(1)
}

type MockEvaluationRepo struct {
	mock.Mock
}

func (m *MockEvaluationRepo) Create(ctx context.Context, tx *sql.Tx, assignmentID int64, score int) error {
	return nil
}

func (m *MockEvaluationRepo) FindByAssignment(ctx context.Context, assignmentID int64) (*model.Evaluation, error) {
	args := m.Called(assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Evaluation), args.Error(1)
}

func newAssignmentService(ar *MockAssignmentRepo, rr *MockResponseRepo, er *MockEvaluationRepo, ur *MockUserRepo) *AssignmentService {
	return NewAssignmentService(ar, rr, er, ur, nil)
}

func TestCreateAssignment_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateAssignmentRequest
	}{
		{"empty question", CreateAssignmentRequest{Question: "   ", StudentIDs: []int64{1, 2}}},
		{"group too small", CreateAssignmentRequest{Question: "Q", StudentIDs: []int64{1}}},
		{"group too large", CreateAssignmentRequest{Question: "Q", StudentIDs: []int64{1, 2, 3, 4, 5, 6, 7}}},
		{"duplicate members", CreateAssignmentRequest{Question: "Q", StudentIDs: []int64{1, 2, 2}}},
		{"non-positive id", CreateAssignmentRequest{Question: "Q", StudentIDs: []int64{1, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAssignmentService(new(MockAssignmentRepo), new(MockResponseRepo), new(MockEvaluationRepo), new(MockUserRepo))
			_, err := svc.CreateAssignment(ctx, 1, tt.req)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestCreateAssignment_UnknownStudent(t *testing.T) {
	userRepo := new(MockUserRepo)
	userRepo.On("CountStudentsByIDs", []int64{1, 2, 99}).Return(2, nil)

	svc := newAssignmentService(new(MockAssignmentRepo), new(MockResponseRepo), new(MockEvaluationRepo), userRepo)

	_, err := svc.CreateAssignment(context.Background(), 1, CreateAssignmentRequest{
		Question:   "Explain closures",
		StudentIDs: []int64{1, 2, 99},
	})
	assert.ErrorIs(t, err, common.ErrValidation)
	userRepo.AssertExpectations(t)
}

func TestCreateAssignment_PairLimit(t *testing.T) {
	userRepo := new(MockUserRepo)
	userRepo.On("CountStudentsByIDs", []int64{1, 2, 3}).Return(3, nil)
	userRepo.On("FindByID", int64(1)).Return(&model.User{ID: 1, Name: "Alice"}, nil)
	userRepo.On("FindByID", int64(3)).Return(&model.User{ID: 3, Name: "Carol"}, nil)

	assignmentRepo := new(MockAssignmentRepo)
	assignmentRepo.On("CountPairAssignments", int64(7), int64(1), int64(2)).Return(1, nil)
	assignmentRepo.On("CountPairAssignments", int64(7), int64(1), int64(3)).Return(2, nil)

	svc := newAssignmentService(assignmentRepo, new(MockResponseRepo), new(MockEvaluationRepo), userRepo)

	_, err := svc.CreateAssignment(context.Background(), 7, CreateAssignmentRequest{
		Question:   "Explain closures",
		StudentIDs: []int64{1, 2, 3},
	})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "Alice")
	assert.Contains(t, err.Error(), "Carol")
	assignmentRepo.AssertExpectations(t)
}

func TestCreateAssignment_PairLimitScopedToTeacher(t *testing.T) {
	// The pair count is scoped to the creating teacher, so only this
	// teacher's prior assignments decide.
	userRepo := new(MockUserRepo)
	userRepo.On("CountStudentsByIDs", []int64{1, 2}).Return(2, nil)

	assignmentRepo := new(MockAssignmentRepo)
	assignmentRepo.On("CountPairAssignments", int64(8), int64(1), int64(2)).Return(1, nil)

	svc := newAssignmentService(assignmentRepo, new(MockResponseRepo), new(MockEvaluationRepo), userRepo)

	// One prior shared assignment is under the limit; the check passes and the
	// service proceeds to the transaction, which the nil DB cannot provide.
	assert.Panics(t, func() {
		svc.CreateAssignment(context.Background(), 8, CreateAssignmentRequest{
			Question:   "Explain closures",
			StudentIDs: []int64{1, 2},
		})
	})
	assignmentRepo.AssertExpectations(t)
}

func TestEvaluateAssignment_Validation(t *testing.T) {
	ctx := context.Background()
	score := func(v int) *int { return &v }

	tests := []struct {
		name string
		req  EvaluateAssignmentRequest
	}{
		{"missing score", EvaluateAssignmentRequest{}},
		{"score below range", EvaluateAssignmentRequest{Score: score(-1)}},
		{"score above range", EvaluateAssignmentRequest{Score: score(31)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAssignmentService(new(MockAssignmentRepo), new(MockResponseRepo), new(MockEvaluationRepo), new(MockUserRepo))
			err := svc.EvaluateAssignment(ctx, 1, tt.req)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestEvaluateAssignment_NotFound(t *testing.T) {
	assignmentRepo := new(MockAssignmentRepo)
	assignmentRepo.On("FindByID", int64(42)).Return(nil, common.ErrNotFound)

	svc := newAssignmentService(assignmentRepo, new(MockResponseRepo), new(MockEvaluationRepo), new(MockUserRepo))

	score := 10
	err := svc.EvaluateAssignment(context.Background(), 42, EvaluateAssignmentRequest{Score: &score})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEvaluateAssignment_AlreadyClosed(t *testing.T) {
	assignmentRepo := new(MockAssignmentRepo)
	assignmentRepo.On("FindByID", int64(5)).Return(&model.Assignment{
		ID: 5, Question: "Q", Status: model.StatusClosed, TeacherID: 1,
	}, nil)

	svc := newAssignmentService(assignmentRepo, new(MockResponseRepo), new(MockEvaluationRepo), new(MockUserRepo))

	score := 30
	err := svc.EvaluateAssignment(context.Background(), 5, EvaluateAssignmentRequest{Score: &score})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "immutable")
}

func TestEvaluateAssignment_NoResponse(t *testing.T) {
	assignmentRepo := new(MockAssignmentRepo)
	assignmentRepo.On("FindByID", int64(6)).Return(&model.Assignment{
		ID: 6, Question: "Q", Status: model.StatusOpen, TeacherID: 1,
	}, nil)

	responseRepo := new(MockResponseRepo)
	responseRepo.On("FindByAssignment", int64(6)).Return(nil, common.ErrNotFound)

	svc := newAssignmentService(assignmentRepo, responseRepo, new(MockEvaluationRepo), new(MockUserRepo))

	score := 0
	err := svc.EvaluateAssignment(context.Background(), 6, EvaluateAssignmentRequest{Score: &score})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "without a response")
}

func TestGetAssignmentDetail(t *testing.T) {
	assignmentRepo := new(MockAssignmentRepo)
	assignmentRepo.On("FindByID", int64(9)).Return(&model.Assignment{
		ID: 9, Question: "Explain closures", Status: model.StatusClosed, TeacherID: 1,
	}, nil)
	assignmentRepo.On("GetGroupMembers", int64(9)).Return([]model.GroupMember{
		{ID: 2, Name: "Alice", Email: "alice@example.com"},
		{ID: 3, Name: "Bob", Email: "bob@example.com"},
	}, nil)

	responseRepo := new(MockResponseRepo)
	responseRepo.On("FindByAssignment", int64(9)).Return(&model.Response{
		AssignmentID: 9, Answer: "A closure captures its environment.", SubmittedBy: 2,
	}, nil)

	evaluationRepo := new(MockEvaluationRepo)
	evaluationRepo.On("FindByAssignment", int64(9)).Return(&model.Evaluation{
		AssignmentID: 9, Score: 27,
	}, nil)

	svc := newAssignmentService(assignmentRepo, responseRepo, evaluationRepo, new(MockUserRepo))

	detail, err := svc.GetAssignmentDetail(context.Background(), 9)
	assert.NoError(t, err)
	assert.Equal(t, "Explain closures", detail.Question)
	assert.Equal(t, model.StatusClosed, detail.Status)
	assert.Len(t, detail.Group, 2)
	if assert.NotNil(t, detail.Answer) {
		assert.Equal(t, "A closure captures its environment.", *detail.Answer)
	}
	if assert.NotNil(t, detail.Score) {
		assert.Equal(t, 27, *detail.Score)
	}
}

func TestGetAssignmentDetail_NoResponseYet(t *testing.T) {
	assignmentRepo := new(MockAssignmentRepo)
	assignmentRepo.On("FindByID", int64(10)).Return(&model.Assignment{
		ID: 10, Question: "Q", Status: model.StatusOpen, TeacherID: 1,
	}, nil)
	assignmentRepo.On("GetGroupMembers", int64(10)).Return([]model.GroupMember{}, nil)

	responseRepo := new(MockResponseRepo)
	responseRepo.On("FindByAssignment", int64(10)).Return(nil, common.ErrNotFound)

	evaluationRepo := new(MockEvaluationRepo)
	evaluationRepo.On("FindByAssignment", int64(10)).Return(nil, common.ErrNotFound)

	svc := newAssignmentService(assignmentRepo, responseRepo, evaluationRepo, new(MockUserRepo))

	detail, err := svc.GetAssignmentDetail(context.Background(), 10)
	assert.NoError(t, err)
	assert.Nil(t, detail.Answer)
	assert.Nil(t, detail.Score)
}

func TestGetAssignmentDetail_RepoFailure(t *testing.T) {
	assignmentRepo := new(MockAssignmentRepo)
	assignmentRepo.On("FindByID", int64(11)).Return(nil, errors.New("connection reset"))

	svc := newAssignmentService(assignmentRepo, new(MockResponseRepo), new(MockEvaluationRepo), new(MockUserRepo))

	_, err := svc.GetAssignmentDetail(context.Background(), 11)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNotFound)
}
