package student

import (
	"time"

	"github.com/appdotbuilder/school-management-app/internal/projection"

	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID             int             `bun:"id,pk,autoincrement" json:"id"`
	FirstName      string          `bun:"first_name,notnull" json:"first_name"`
	LastName       string          `bun:"last_name,notnull" json:"last_name"`
	Email          string          `bun:"email,unique,notnull" json:"email"`
	Phone          *string         `bun:"phone" json:"phone"`
	DateOfBirth    projection.Date `bun:"date_of_birth,type:date,notnull" json:"date_of_birth"`
	EnrollmentDate projection.Date `bun:"enrollment_date,type:date,nullzero,notnull,default:current_date" json:"enrollment_date"`
	CreatedAt      time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// FullName is the "first last" form used by grade views.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

type CreateStudentInput struct {
	FirstName      string          `json:"first_name" validate:"required,max=100"`
	LastName       string          `json:"last_name" validate:"required,max=100"`
	Email          string          `json:"email" validate:"required,email"`
	Phone          *string         `json:"phone" validate:"omitempty,max=30"`
	DateOfBirth    projection.Date `json:"date_of_birth" validate:"required"`
	EnrollmentDate projection.Date `json:"enrollment_date"`
}

// UpdateStudentInput carries a partial update. Nil fields are left untouched and an
// empty Phone clears the stored phone number.
type UpdateStudentInput struct {
	ID             int              `json:"-"`
	FirstName      *string          `json:"first_name" validate:"omitnil,min=1,max=100"`
	LastName       *string          `json:"last_name" validate:"omitnil,min=1,max=100"`
	Email          *string          `json:"email" validate:"omitnil,email"`
	Phone          *string          `json:"phone" validate:"omitempty,max=30"`
	DateOfBirth    *projection.Date `json:"date_of_birth"`
	EnrollmentDate *projection.Date `json:"enrollment_date"`
}

// DeleteResult reports the outcome of a cascading delete.
type DeleteResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	AttendanceDeleted int64  `json:"attendance_deleted"`
	GradesDeleted     int64  `json:"grades_deleted"`
}

// Dependents is the number of attendance and grade rows removed with the student.
func (r *DeleteResult) Dependents() int64 {
	return r.AttendanceDeleted + r.GradesDeleted
}
