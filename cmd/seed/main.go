// Command seed populates an empty database with demo users and a pair of
// example assignments. Running it against a non-empty database is a no-op.
package main

import (
	"context"
	"fmt"
	"log"

	"classtrack/internal/common/security"
	"classtrack/internal/domain/model"
	"classtrack/internal/domain/repository"
	"classtrack/internal/platform/config"
	"classtrack/internal/platform/database"
)

func main() {
	config.Load()

	database.Connect()
	defer database.Close()
	if err := database.ApplyMigrations(config.AppConfig.MigrationsDir); err != nil {
		log.Fatalf("Could not apply migrations: %v", err)
	}

	ctx := context.Background()
	userRepo := repository.NewPgUserRepository(database.DB)

	count, err := userRepo.CountUsers(ctx)
	if err != nil {
		log.Fatalf("Could not inspect users table: %v", err)
	}
	if count > 0 {
		log.Printf("Database already seeded with %d users, nothing to do.", count)
		return
	}

	hashed, err := security.HashPassword(config.AppConfig.SeedPassword)
	if err != nil {
		log.Fatalf("Could not hash seed password: %v", err)
	}

	teacherIDs := make([]int64, 0, 2)
	for i := 1; i <= 2; i++ {
		u := &model.User{
			Name:           fmt.Sprintf("Teacher %02d", i),
			Email:          fmt.Sprintf("teacher%d@example.com", i),
			HashedPassword: hashed,
			Role:           model.RoleTeacher,
		}
		if err := userRepo.Create(ctx, u); err != nil {
			log.Fatalf("Could not create teacher %d: %v", i, err)
		}
		teacherIDs = append(teacherIDs, u.ID)
	}

	studentIDs := make([]int64, 0, 20)
	for i := 1; i <= 20; i++ {
		u := &model.User{
			Name:           fmt.Sprintf("Student %02d", i),
			Email:          fmt.Sprintf("student%02d@example.com", i),
			HashedPassword: hashed,
			Role:           model.RoleStudent,
		}
		if err := userRepo.Create(ctx, u); err != nil {
			log.Fatalf("Could not create student %d: %v", i, err)
		}
		studentIDs = append(studentIDs, u.ID)
	}

	if err := seedAssignments(ctx, teacherIDs[0], studentIDs); err != nil {
		log.Fatalf("Could not seed assignments: %v", err)
	}

	log.Printf("Seeded %d teachers and %d students.", len(teacherIDs), len(studentIDs))
}

// seedAssignments creates one closed assignment (with a response and a score)
// and one still-open assignment, so both halves of the UI have data on first
// run.
func seedAssignments(ctx context.Context, teacherID int64, studentIDs []int64) error {
	assignmentRepo := repository.NewPgAssignmentRepository(database.DB)
	responseRepo := repository.NewPgResponseRepository(database.DB)
	evaluationRepo := repository.NewPgEvaluationRepository(database.DB)

	tx, err := database.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seedAssignments: %w", err)
	}
	defer tx.Rollback()

	closedGroup := studentIDs[:3]
	closed := &model.Assignment{
		Question:  "Explain how a REST API works",
		Status:    model.StatusOpen,
		TeacherID: teacherID,
	}
	if err := assignmentRepo.Create(ctx, tx, closed); err != nil {
		return fmt.Errorf("seedAssignments: %w", err)
	}
	if err := assignmentRepo.AddGroupMembers(ctx, tx, closed.ID, closedGroup); err != nil {
		return fmt.Errorf("seedAssignments: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seedAssignments: %w", err)
	}

	ok, err := responseRepo.UpsertForGroupMember(ctx, closed.ID, closedGroup[0], "A REST API exposes resources over HTTP.")
	if err != nil {
		return fmt.Errorf("seedAssignments: %w", err)
	}
	if !ok {
		return fmt.Errorf("seedAssignments: demo response was not stored")
	}

	tx, err = database.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seedAssignments: %w", err)
	}
	defer tx.Rollback()

	if _, err := assignmentRepo.Close(ctx, tx, closed.ID); err != nil {
		return fmt.Errorf("seedAssignments: %w", err)
	}
	if err := evaluationRepo.Create(ctx, tx, closed.ID, 27); err != nil {
		return fmt.Errorf("seedAssignments: %w", err)
	}

	open := &model.Assignment{
		Question:  "Describe the advantages of single page applications",
		Status:    model.StatusOpen,
		TeacherID: teacherID,
	}
	if err := assignmentRepo.Create(ctx, tx, open); err != nil {
		return fmt.Errorf("seedAssignments: %w", err)
	}
	if err := assignmentRepo.AddGroupMembers(ctx, tx, open.ID, studentIDs[3:6]); err != nil {
		return fmt.Errorf("seedAssignments: %w", err)
	}

	return tx.Commit()
}
