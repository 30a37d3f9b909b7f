package testdb

import (
	"context"
	"testing"

	"github.com/appdotbuilder/school-management-app/internal/attendance"
	"github.com/appdotbuilder/school-management-app/internal/grade"
	"github.com/appdotbuilder/school-management-app/internal/projection"
	"github.com/appdotbuilder/school-management-app/internal/student"
	"github.com/appdotbuilder/school-management-app/internal/subject"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func InsertStudent(t *testing.T, database *bun.DB, firstName, lastName, email string) *student.Student {
	t.Helper()

	s := &student.Student{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		DateOfBirth: projection.NewDate(2008, 5, 17),
	}
	_, err := database.NewInsert().Model(s).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return s
}

func InsertSubject(t *testing.T, database *bun.DB, name, code string) *subject.Subject {
	t.Helper()

	s := &subject.Subject{Name: name, Code: code, Credits: 3}
	_, err := database.NewInsert().Model(s).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return s
}

func InsertAttendance(t *testing.T, database *bun.DB, studentID int, date projection.Date, status attendance.Status) *attendance.Attendance {
	t.Helper()

	a := &attendance.Attendance{StudentID: studentID, Date: date, Status: status}
	_, err := database.NewInsert().Model(a).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return a
}

// InsertGrade stores value out of 100. value is a decimal literal such as "85.50".
func InsertGrade(t *testing.T, database *bun.DB, studentID, subjectID int, value string, gradeType grade.Type) *grade.Grade {
	t.Helper()

	g := &grade.Grade{
		StudentID:    studentID,
		SubjectID:    subjectID,
		Grade:        decimal.RequireFromString(value),
		GradeType:    gradeType,
		MaxScore:     decimal.NewFromInt(100),
		RecordedDate: projection.NewDate(2024, 3, 1),
	}
	_, err := database.NewInsert().Model(g).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return g
}

// Count returns the number of rows in table.
func Count(t *testing.T, database *bun.DB, table string) int {
	t.Helper()

	n, err := database.NewSelect().TableExpr(table).Count(context.Background())
	require.NoError(t, err)
	return n
}
