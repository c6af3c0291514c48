package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/internal/common"
	"classtrack/internal/common/security"
	"classtrack/internal/domain/model"
	"classtrack/internal/platform/config"
)

func initTestJWT(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey: []byte("test-secret"),
		JWTExp: time.Hour,
	}
	security.InitJWT()
}

func TestLogin(t *testing.T) {
	initTestJWT(t)

	hash, err := security.HashPassword("password")
	require.NoError(t, err)

	userRepo := new(MockUserRepo)
	userRepo.On("FindByEmail", "teacher1@example.com").Return(&model.User{
		ID: 1, Name: "Teacher 01", Email: "teacher1@example.com",
		HashedPassword: hash, Role: model.RoleTeacher,
	}, nil)

	svc := NewAuthService(userRepo)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "teacher1@example.com",
		Password: "password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(1), resp.User.ID)
	assert.Empty(t, resp.User.HashedPassword)
}

func TestLogin_WrongPassword(t *testing.T) {
	initTestJWT(t)

	hash, err := security.HashPassword("password")
	require.NoError(t, err)

	userRepo := new(MockUserRepo)
	userRepo.On("FindByEmail", "teacher1@example.com").Return(&model.User{
		ID: 1, Email: "teacher1@example.com", HashedPassword: hash, Role: model.RoleTeacher,
	}, nil)

	svc := NewAuthService(userRepo)

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "teacher1@example.com",
		Password: "nope",
	})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestLogin_UnknownEmail(t *testing.T) {
	initTestJWT(t)

	userRepo := new(MockUserRepo)
	userRepo.On("FindByEmail", "ghost@example.com").Return(nil, common.ErrNotFound)

	svc := NewAuthService(userRepo)

	// Unknown email and wrong password fail identically.
	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "password",
	})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestLogin_MalformedRequest(t *testing.T) {
	svc := NewAuthService(new(MockUserRepo))

	_, err := svc.Login(context.Background(), LoginRequest{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@b.it"})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestLogout_ExpiredTokenIsNoop(t *testing.T) {
	svc := NewAuthService(new(MockUserRepo))

	err := svc.Logout(context.Background(), "some-jti", time.Now().Add(-time.Minute))
	assert.NoError(t, err)
}
