package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/event"
)

var (
	ErrStudentNotFound = apperr.New(apperr.ErrNotFound, "student not found")
	ErrEmailExists     = apperr.New(apperr.ErrDuplicateKey, "student email already exists")
)

type Service interface {
	CreateStudent(ctx context.Context, input CreateStudentInput) (*Student, error)
	GetAllStudents(ctx context.Context) ([]Student, error)
	GetStudentByID(ctx context.Context, id int) (*Student, error)
	UpdateStudent(ctx context.Context, input UpdateStudentInput) (*Student, error)
	DeleteStudent(ctx context.Context, id int) (*DeleteResult, error)
}

type service struct {
	repo   Repository
	events *event.Emitter
	logger *slog.Logger
}

func NewService(repo Repository, events *event.Emitter, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

func (s *service) CreateStudent(ctx context.Context, input CreateStudentInput) (*Student, error) {
	if err := s.ensureEmailFree(ctx, input.Email); err != nil {
		return nil, err
	}

	student := &Student{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          input.Phone,
		DateOfBirth:    input.DateOfBirth,
		EnrollmentDate: input.EnrollmentDate,
	}
	created, err := s.repo.Create(ctx, student)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "student created", "student_id", created.ID)
	s.events.Emit(ctx, event.StudentCreated, created)
	return created, nil
}

func (s *service) GetAllStudents(ctx context.Context) ([]Student, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetStudentByID(ctx context.Context, id int) (*Student, error) {
	if id <= 0 {
		return nil, apperr.Validation("student id must be positive, got %d", id)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateStudent(ctx context.Context, input UpdateStudentInput) (*Student, error) {
	if input.ID <= 0 {
		return nil, apperr.Validation("student id must be positive, got %d", input.ID)
	}

	current, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	var columns []string
	if input.FirstName != nil {
		current.FirstName = *input.FirstName
		columns = append(columns, "first_name")
	}
	if input.LastName != nil {
		current.LastName = *input.LastName
		columns = append(columns, "last_name")
	}
	if input.Email != nil && *input.Email != current.Email {
		if err := s.ensureEmailFree(ctx, *input.Email); err != nil {
			return nil, err
		}
		current.Email = *input.Email
		columns = append(columns, "email")
	}
	if input.Phone != nil {
		current.Phone = input.Phone
		if *input.Phone == "" {
			current.Phone = nil
		}
		columns = append(columns, "phone")
	}
	if input.DateOfBirth != nil && !input.DateOfBirth.IsZero() {
		current.DateOfBirth = *input.DateOfBirth
		columns = append(columns, "date_of_birth")
	}
	if input.EnrollmentDate != nil && !input.EnrollmentDate.IsZero() {
		current.EnrollmentDate = *input.EnrollmentDate
		columns = append(columns, "enrollment_date")
	}

	if len(columns) == 0 {
		return current, nil
	}

	if err := s.repo.Update(ctx, current, columns...); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "student updated", "student_id", current.ID, "columns", columns)
	s.events.Emit(ctx, event.StudentUpdated, current)
	return current, nil
}

// DeleteStudent removes the student with every attendance and grade row. An unknown
// id is reported through the result, not as an error.
func (s *service) DeleteStudent(ctx context.Context, id int) (*DeleteResult, error) {
	if id <= 0 {
		return nil, apperr.Validation("student id must be positive, got %d", id)
	}

	res, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "cascade delete rolled back", "student_id", id, "error", err)
		return nil, err
	}
	if !res.Found {
		return &DeleteResult{Success: false, Message: "Student not found"}, nil
	}

	result := &DeleteResult{
		Success:           true,
		AttendanceDeleted: res.AttendanceDeleted,
		GradesDeleted:     res.GradesDeleted,
	}
	result.Message = fmt.Sprintf("Student deleted along with %d related records", result.Dependents())

	s.logger.InfoContext(ctx, "student deleted",
		"student_id", id,
		"attendance_deleted", res.AttendanceDeleted,
		"grades_deleted", res.GradesDeleted,
	)
	s.events.Emit(ctx, event.StudentDeleted, map[string]any{
		"student_id":         id,
		"attendance_deleted": res.AttendanceDeleted,
		"grades_deleted":     res.GradesDeleted,
	})
	return result, nil
}

// ensureEmailFree is an advisory check; the unique index on email still decides races.
func (s *service) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrEmailExists, email)
	case errors.Is(err, ErrStudentNotFound):
		return nil
	default:
		return err
	}
}
