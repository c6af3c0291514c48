package model

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

type User struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"` // Not exposed
	Role           string `json:"role"`
}
