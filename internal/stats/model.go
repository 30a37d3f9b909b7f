package stats

import (
	"github.com/appdotbuilder/school-management-app/internal/grade"

	"github.com/shopspring/decimal"
)

// DefaultRankingLimit applies when no limit is given.
const DefaultRankingLimit = 10

type DashboardStatistics struct {
	TotalStudents           int64   `json:"total_students"`
	TotalSubjects           int64   `json:"total_subjects"`
	PresentToday            int64   `json:"present_today"`
	AbsentToday             int64   `json:"absent_today"`
	LateToday               int64   `json:"late_today"`
	AverageAttendanceRate   float64 `json:"average_attendance_rate"`
	AverageGradeAllStudents float64 `json:"average_grade_all_students"`
}

type StudentRanking struct {
	StudentID     int     `json:"id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Email         string  `json:"email"`
	AverageGrade  float64 `json:"average_grade"`
	TotalSubjects int64   `json:"total_subjects"`
	Rank          int     `json:"rank"`
}

// TopStudentsInput selects the ranking. A nil Limit means DefaultRankingLimit and an
// empty GradeType means every grade type.
type TopStudentsInput struct {
	Limit     *int
	GradeType grade.Type
}

type statusCount struct {
	Status string `bun:"status"`
	Count  int64  `bun:"count"`
}

type attendanceTotals struct {
	Attended int64 `bun:"attended"`
	Total    int64 `bun:"total"`
}

type gradeTotals struct {
	Hundredths decimal.Decimal `bun:"grade_hundredths"`
	Count      int64           `bun:"grade_count"`
}

type rankingRow struct {
	StudentID     int             `bun:"student_id"`
	FirstName     string          `bun:"first_name"`
	LastName      string          `bun:"last_name"`
	Email         string          `bun:"email"`
	Hundredths    decimal.Decimal `bun:"grade_hundredths"`
	GradeCount    int64           `bun:"grade_count"`
	TotalSubjects int64           `bun:"total_subjects"`
}
