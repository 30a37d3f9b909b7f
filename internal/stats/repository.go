package stats

import (
	"context"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/attendance"
	"github.com/appdotbuilder/school-management-app/internal/grade"
	"github.com/appdotbuilder/school-management-app/internal/projection"
	"github.com/appdotbuilder/school-management-app/internal/student"
	"github.com/appdotbuilder/school-management-app/internal/subject"

	"github.com/uptrace/bun"
)

type Repository interface {
	CountStudents(ctx context.Context) (int64, error)
	CountSubjects(ctx context.Context) (int64, error)
	StatusCountsOn(ctx context.Context, date projection.Date) (map[attendance.Status]int64, error)
	AttendanceTotals(ctx context.Context) (attended, total int64, err error)
	GradeTotals(ctx context.Context) (gradeTotals, error)
	TopStudents(ctx context.Context, limit int, gradeType grade.Type) ([]rankingRow, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountStudents(ctx context.Context) (int64, error) {
	n, err := r.db.NewSelect().Model((*student.Student)(nil)).Count(ctx)
	if err != nil {
		return 0, apperr.Storage("count students", err)
	}
	return int64(n), nil
}

func (r *repository) CountSubjects(ctx context.Context) (int64, error) {
	n, err := r.db.NewSelect().Model((*subject.Subject)(nil)).Count(ctx)
	if err != nil {
		return 0, apperr.Storage("count subjects", err)
	}
	return int64(n), nil
}

func (r *repository) StatusCountsOn(ctx context.Context, date projection.Date) (map[attendance.Status]int64, error) {
	var rows []statusCount
	err := r.db.NewSelect().
		Model((*attendance.Attendance)(nil)).
		ColumnExpr("a.status AS status").
		ColumnExpr("COUNT(*) AS count").
		Where(`a."date" = ?`, date).
		GroupExpr("a.status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, apperr.Storage("count attendance by status", err)
	}

	counts := make(map[attendance.Status]int64, len(rows))
	for _, row := range rows {
		counts[attendance.Status(row.Status)] = row.Count
	}
	return counts, nil
}

// AttendanceTotals counts attended (present or late) and all attendance rows.
func (r *repository) AttendanceTotals(ctx context.Context) (int64, int64, error) {
	var attended []string
	for _, status := range attendance.Statuses() {
		if status.Attended() {
			attended = append(attended, string(status))
		}
	}

	var totals attendanceTotals
	err := r.db.NewSelect().
		Model((*attendance.Attendance)(nil)).
		ColumnExpr(
			"COALESCE(SUM(CASE WHEN a.status IN (?) THEN 1 ELSE 0 END), 0) AS attended",
			bun.In(attended),
		).
		ColumnExpr("COUNT(*) AS total").
		Scan(ctx, &totals)
	if err != nil {
		return 0, 0, apperr.Storage("sum attendance", err)
	}
	return totals.Attended, totals.Total, nil
}

func (r *repository) GradeTotals(ctx context.Context) (gradeTotals, error) {
	var totals gradeTotals
	err := r.db.NewSelect().
		Model((*grade.Grade)(nil)).
		ColumnExpr("COALESCE(SUM("+projection.Hundredths("g.grade")+"), 0) AS grade_hundredths").
		ColumnExpr("COUNT(*) AS grade_count").
		Scan(ctx, &totals)
	if err != nil {
		return gradeTotals{}, apperr.Storage("sum grades", err)
	}
	return totals, nil
}

// TopStudents groups matching grades per student, best average first. Equal averages
// keep student id order. Sums come back in hundredths.
func (r *repository) TopStudents(ctx context.Context, limit int, gradeType grade.Type) ([]rankingRow, error) {
	rows := make([]rankingRow, 0)

	q := r.db.NewSelect().
		TableExpr("students AS s").
		Join("JOIN grades AS g ON g.student_id = s.id").
		ColumnExpr("s.id AS student_id, s.first_name, s.last_name, s.email").
		ColumnExpr("SUM(" + projection.Hundredths("g.grade") + ") AS grade_hundredths").
		ColumnExpr("COUNT(g.id) AS grade_count").
		ColumnExpr("COUNT(DISTINCT g.subject_id) AS total_subjects")
	if gradeType != "" {
		q = q.Where("g.grade_type = ?", string(gradeType))
	}

	err := q.GroupExpr("s.id, s.first_name, s.last_name, s.email").
		OrderExpr("AVG("+projection.Hundredths("g.grade")+") DESC, s.id ASC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, apperr.Storage("rank students", err)
	}
	return rows, nil
}
