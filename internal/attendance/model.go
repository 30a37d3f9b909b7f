package attendance

import (
	"context"
	"time"

	"github.com/appdotbuilder/school-management-app/internal/projection"

	"github.com/uptrace/bun"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

// Attended reports whether the status counts towards the attendance rate.
func (s Status) Attended() bool {
	return s == StatusPresent || s == StatusLate
}

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusPresent, StatusAbsent, StatusLate}
}

// Attendance is one student's record for one calendar day.
type Attendance struct {
	bun.BaseModel `bun:"table:attendance,alias:a"`

	ID        int             `bun:"id,pk,autoincrement" json:"id"`
	StudentID int             `bun:"student_id,notnull,unique:attendance_student_date" json:"student_id"`
	Date      projection.Date `bun:"date,type:date,notnull,unique:attendance_student_date" json:"date"`
	Status    Status          `bun:"status,type:varchar(10),notnull" json:"status"`
	Reason    *string         `bun:"reason" json:"reason"`
	CreatedAt time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

var _ bun.BeforeCreateTableHook = (*Attendance)(nil)

func (*Attendance) BeforeCreateTable(_ context.Context, query *bun.CreateTableQuery) error {
	query.ForeignKey(`("student_id") REFERENCES "students" ("id")`)
	return nil
}

// WithStudent is an attendance record joined with the student's first name.
type WithStudent struct {
	ID          int             `bun:"id" json:"id"`
	StudentID   int             `bun:"student_id" json:"student_id"`
	StudentName string          `bun:"student_name" json:"student_name"`
	Date        projection.Date `bun:"date" json:"date"`
	Status      Status          `bun:"status" json:"status"`
	Reason      *string         `bun:"reason" json:"reason"`
	CreatedAt   time.Time       `bun:"created_at" json:"created_at"`
}

type RecordAttendanceInput struct {
	StudentID int             `json:"student_id" validate:"required,gt=0"`
	Date      projection.Date `json:"date" validate:"required"`
	Status    Status          `json:"status" validate:"required,oneof=present absent late"`
	Reason    *string         `json:"reason"`
}

// RangeFilter selects attendance between StartDate and EndDate inclusive,
// optionally for a single student.
type RangeFilter struct {
	StudentID *int
	StartDate projection.Date
	EndDate   projection.Date
}
