package student_test

import (
	"context"
	"testing"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/attendance"
	"github.com/appdotbuilder/school-management-app/internal/grade"
	"github.com/appdotbuilder/school-management-app/internal/projection"
	"github.com/appdotbuilder/school-management-app/internal/student"
	"github.com/appdotbuilder/school-management-app/internal/testutil/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentRepositoryPostgres(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	ctx := context.Background()
	repo := student.NewRepository(pgContainer.DB)

	t.Run("DeleteCascade", func(t *testing.T) {
		testdb.Reset(t, pgContainer.DB)

		s := testdb.InsertStudent(t, pgContainer.DB, "Ada", "Lovelace", "ada@example.com")
		math := testdb.InsertSubject(t, pgContainer.DB, "Mathematics", "MATH101")
		testdb.InsertAttendance(t, pgContainer.DB, s.ID, projection.NewDate(2024, 3, 1), attendance.StatusPresent)
		testdb.InsertAttendance(t, pgContainer.DB, s.ID, projection.NewDate(2024, 3, 2), attendance.StatusAbsent)
		testdb.InsertGrade(t, pgContainer.DB, s.ID, math.ID, "88.25", grade.TypeMidterm)

		res, err := repo.DeleteCascade(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, res.Found)
		assert.Equal(t, int64(2), res.AttendanceDeleted)
		assert.Equal(t, int64(1), res.GradesDeleted)

		assert.Equal(t, 0, testdb.Count(t, pgContainer.DB, "students"))
		assert.Equal(t, 1, testdb.Count(t, pgContainer.DB, "subjects"))
	})

	t.Run("DeleteCascade_Unknown", func(t *testing.T) {
		testdb.Reset(t, pgContainer.DB)

		res, err := repo.DeleteCascade(ctx, 31337)
		require.NoError(t, err)
		assert.False(t, res.Found)
	})

	t.Run("Create_UniqueViolation", func(t *testing.T) {
		testdb.Reset(t, pgContainer.DB)
		testdb.InsertStudent(t, pgContainer.DB, "Ada", "Lovelace", "ada@example.com")

		_, err := repo.Create(ctx, &student.Student{
			FirstName:   "Ada",
			LastName:    "Twin",
			Email:       "ada@example.com",
			DateOfBirth: projection.NewDate(2008, 1, 2),
		})
		assert.ErrorIs(t, err, student.ErrEmailExists)
		assert.ErrorIs(t, err, apperr.ErrDuplicateKey)
	})

	t.Run("Exists", func(t *testing.T) {
		testdb.Reset(t, pgContainer.DB)
		s := testdb.InsertStudent(t, pgContainer.DB, "Ada", "Lovelace", "ada@example.com")

		ok, err := repo.Exists(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Exists(ctx, s.ID+1)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
