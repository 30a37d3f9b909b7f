// Package schema lists the record tables in creation order.
package schema

import (
	"context"

	"github.com/appdotbuilder/school-management-app/internal/attendance"
	"github.com/appdotbuilder/school-management-app/internal/db"
	"github.com/appdotbuilder/school-management-app/internal/grade"
	"github.com/appdotbuilder/school-management-app/internal/student"
	"github.com/appdotbuilder/school-management-app/internal/subject"

	"github.com/uptrace/bun"
)

// Tables in dependency order: parents first.
var Tables = []string{"students", "subjects", "attendance", "grades"}

func Models() []any {
	return []any{
		(*student.Student)(nil),
		(*subject.Subject)(nil),
		(*attendance.Attendance)(nil),
		(*grade.Grade)(nil),
	}
}

func Indexes() []db.Index {
	return []db.Index{
		{Model: (*attendance.Attendance)(nil), Name: "idx_attendance_date", Columns: []string{"date"}},
		{Model: (*grade.Grade)(nil), Name: "idx_grades_student_id", Columns: []string{"student_id"}},
		{Model: (*grade.Grade)(nil), Name: "idx_grades_subject_id", Columns: []string{"subject_id"}},
	}
}

func Migrate(ctx context.Context, database *bun.DB) error {
	return db.RunMigrations(ctx, database, Models(), Indexes()...)
}
