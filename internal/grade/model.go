package grade

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appdotbuilder/school-management-app/internal/projection"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Type string

const (
	TypeMidterm    Type = "midterm"
	TypeFinal      Type = "final"
	TypeQuiz       Type = "quiz"
	TypeAssignment Type = "assignment"
)

func (t Type) Valid() bool {
	switch t {
	case TypeMidterm, TypeFinal, TypeQuiz, TypeAssignment:
		return true
	}
	return false
}

// Grade stores scores as exact decimals; they are rendered as JSON numbers.
type Grade struct {
	bun.BaseModel `bun:"table:grades,alias:g"`

	ID           int             `bun:"id,pk,autoincrement" json:"id"`
	StudentID    int             `bun:"student_id,notnull" json:"student_id"`
	SubjectID    int             `bun:"subject_id,notnull" json:"subject_id"`
	Grade        decimal.Decimal `bun:"grade,type:numeric(5,2),notnull" json:"-"`
	GradeType    Type            `bun:"grade_type,type:varchar(20),notnull" json:"grade_type"`
	MaxScore     decimal.Decimal `bun:"max_score,type:numeric(5,2),notnull" json:"-"`
	Comments     *string         `bun:"comments" json:"comments"`
	RecordedDate projection.Date `bun:"recorded_date,type:date,nullzero,notnull,default:current_date" json:"recorded_date"`
	CreatedAt    time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

var _ bun.BeforeCreateTableHook = (*Grade)(nil)

func (*Grade) BeforeCreateTable(_ context.Context, query *bun.CreateTableQuery) error {
	query.ForeignKey(`("student_id") REFERENCES "students" ("id")`)
	query.ForeignKey(`("subject_id") REFERENCES "subjects" ("id")`)
	return nil
}

func (g Grade) MarshalJSON() ([]byte, error) {
	type plain Grade
	return json.Marshal(struct {
		plain
		Grade    float64 `json:"grade"`
		MaxScore float64 `json:"max_score"`
	}{
		plain:    plain(g),
		Grade:    projection.Float(g.Grade),
		MaxScore: projection.Float(g.MaxScore),
	})
}

// WithDetails is a grade joined with its student and subject.
type WithDetails struct {
	ID           int             `json:"id"`
	StudentID    int             `json:"student_id"`
	StudentName  string          `json:"student_name"`
	SubjectID    int             `json:"subject_id"`
	SubjectName  string          `json:"subject_name"`
	SubjectCode  string          `json:"subject_code"`
	Grade        float64         `json:"grade"`
	GradeType    Type            `json:"grade_type"`
	MaxScore     float64         `json:"max_score"`
	Percentage   float64         `json:"percentage"`
	Comments     *string         `json:"comments"`
	RecordedDate projection.Date `json:"recorded_date"`
	CreatedAt    time.Time       `json:"created_at"`
}

// detailRow is the raw shape of the grades/students/subjects join.
type detailRow struct {
	ID               int             `bun:"id"`
	StudentID        int             `bun:"student_id"`
	StudentFirstName string          `bun:"student_first_name"`
	StudentLastName  string          `bun:"student_last_name"`
	SubjectID        int             `bun:"subject_id"`
	SubjectName      string          `bun:"subject_name"`
	SubjectCode      string          `bun:"subject_code"`
	Grade            decimal.Decimal `bun:"grade"`
	GradeType        Type            `bun:"grade_type"`
	MaxScore         decimal.Decimal `bun:"max_score"`
	Comments         *string         `bun:"comments"`
	RecordedDate     projection.Date `bun:"recorded_date"`
	CreatedAt        time.Time       `bun:"created_at"`
}

func (r detailRow) view() WithDetails {
	return WithDetails{
		ID:           r.ID,
		StudentID:    r.StudentID,
		StudentName:  r.StudentFirstName + " " + r.StudentLastName,
		SubjectID:    r.SubjectID,
		SubjectName:  r.SubjectName,
		SubjectCode:  r.SubjectCode,
		Grade:        projection.Float(r.Grade),
		GradeType:    r.GradeType,
		MaxScore:     projection.Float(r.MaxScore),
		Percentage:   projection.Float(projection.Percentage(r.Grade, r.MaxScore)),
		Comments:     r.Comments,
		RecordedDate: r.RecordedDate,
		CreatedAt:    r.CreatedAt,
	}
}

type RecordGradeInput struct {
	StudentID    int             `json:"student_id" validate:"required,gt=0"`
	SubjectID    int             `json:"subject_id" validate:"required,gt=0"`
	Grade        float64         `json:"grade" validate:"gte=0,lte=999.99"`
	GradeType    Type            `json:"grade_type" validate:"required,oneof=midterm final assignment quiz"`
	MaxScore     float64         `json:"max_score" validate:"gte=0.01,lte=999.99"`
	Comments     *string         `json:"comments"`
	RecordedDate projection.Date `json:"recorded_date"`
}
