package student_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/attendance"
	"github.com/appdotbuilder/school-management-app/internal/event"
	"github.com/appdotbuilder/school-management-app/internal/grade"
	"github.com/appdotbuilder/school-management-app/internal/projection"
	"github.com/appdotbuilder/school-management-app/internal/student"
	"github.com/appdotbuilder/school-management-app/internal/testutil/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupService(t *testing.T, database *bun.DB) (student.Service, *event.Recorder) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	recorder := &event.Recorder{}
	service := student.NewService(student.NewRepository(database), event.NewEmitter(recorder, logger), logger)
	return service, recorder
}

func strPtr(s string) *string { return &s }

func TestStudentService(t *testing.T) {
	database := testdb.NewSQLite(t)
	ctx := context.Background()

	t.Run("CreateStudent_Success", func(t *testing.T) {
		testdb.Reset(t, database)
		service, recorder := setupService(t, database)

		created, err := service.CreateStudent(ctx, student.CreateStudentInput{
			FirstName:   "Ada",
			LastName:    "Lovelace",
			Email:       "ada@example.com",
			Phone:       strPtr("555-0100"),
			DateOfBirth: projection.NewDate(2007, 12, 10),
		})
		require.NoError(t, err)

		assert.NotZero(t, created.ID)
		assert.Equal(t, "ada@example.com", created.Email)
		assert.Equal(t, "2007-12-10", created.DateOfBirth.String())
		assert.False(t, created.EnrollmentDate.IsZero(), "enrollment date defaults to today")
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, []string{event.StudentCreated}, recorder.Types())
	})

	t.Run("CreateStudent_DuplicateEmail", func(t *testing.T) {
		testdb.Reset(t, database)
		service, recorder := setupService(t, database)
		testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")

		_, err := service.CreateStudent(ctx, student.CreateStudentInput{
			FirstName:   "Another",
			LastName:    "Ada",
			Email:       "ada@example.com",
			DateOfBirth: projection.NewDate(2008, 1, 1),
		})

		assert.ErrorIs(t, err, student.ErrEmailExists)
		assert.ErrorIs(t, err, apperr.ErrDuplicateKey)
		assert.Contains(t, err.Error(), "ada@example.com")
		assert.Equal(t, 1, testdb.Count(t, database, "students"))
		assert.Empty(t, recorder.Types())
	})

	t.Run("GetStudentByID_NotFound", func(t *testing.T) {
		testdb.Reset(t, database)
		service, _ := setupService(t, database)

		_, err := service.GetStudentByID(ctx, 4242)
		assert.ErrorIs(t, err, student.ErrStudentNotFound)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("GetAllStudents_OrderedByID", func(t *testing.T) {
		testdb.Reset(t, database)
		service, _ := setupService(t, database)
		first := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")
		second := testdb.InsertStudent(t, database, "Alan", "Turing", "alan@example.com")

		students, err := service.GetAllStudents(ctx)
		require.NoError(t, err)
		require.Len(t, students, 2)
		assert.Equal(t, first.ID, students[0].ID)
		assert.Equal(t, second.ID, students[1].ID)
	})

	t.Run("GetAllStudents_EmptyIsNotNil", func(t *testing.T) {
		testdb.Reset(t, database)
		service, _ := setupService(t, database)

		students, err := service.GetAllStudents(ctx)
		require.NoError(t, err)
		assert.NotNil(t, students)
		assert.Empty(t, students)
	})

	t.Run("UpdateStudent_PartialFields", func(t *testing.T) {
		testdb.Reset(t, database)
		service, recorder := setupService(t, database)
		existing := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")

		updated, err := service.UpdateStudent(ctx, student.UpdateStudentInput{
			ID:        existing.ID,
			FirstName: strPtr("Augusta"),
			Phone:     strPtr("555-0199"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Augusta", updated.FirstName)
		assert.Equal(t, "Lovelace", updated.LastName)
		require.NotNil(t, updated.Phone)
		assert.Equal(t, "555-0199", *updated.Phone)

		reloaded, err := service.GetStudentByID(ctx, existing.ID)
		require.NoError(t, err)
		assert.Equal(t, "Augusta", reloaded.FirstName)
		assert.Equal(t, "ada@example.com", reloaded.Email)
		assert.Equal(t, []string{event.StudentUpdated}, recorder.Types())
	})

	t.Run("UpdateStudent_EmptyPhoneClears", func(t *testing.T) {
		testdb.Reset(t, database)
		service, _ := setupService(t, database)
		existing := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")
		_, err := service.UpdateStudent(ctx, student.UpdateStudentInput{ID: existing.ID, Phone: strPtr("555-0100")})
		require.NoError(t, err)

		_, err = service.UpdateStudent(ctx, student.UpdateStudentInput{ID: existing.ID, Phone: strPtr("")})
		require.NoError(t, err)

		reloaded, err := service.GetStudentByID(ctx, existing.ID)
		require.NoError(t, err)
		assert.Nil(t, reloaded.Phone)
	})

	t.Run("UpdateStudent_EmailTaken", func(t *testing.T) {
		testdb.Reset(t, database)
		service, _ := setupService(t, database)
		testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")
		alan := testdb.InsertStudent(t, database, "Alan", "Turing", "alan@example.com")

		_, err := service.UpdateStudent(ctx, student.UpdateStudentInput{ID: alan.ID, Email: strPtr("ada@example.com")})
		assert.ErrorIs(t, err, apperr.ErrDuplicateKey)
	})

	t.Run("UpdateStudent_NoFieldsReturnsCurrent", func(t *testing.T) {
		testdb.Reset(t, database)
		service, recorder := setupService(t, database)
		existing := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")

		current, err := service.UpdateStudent(ctx, student.UpdateStudentInput{ID: existing.ID})
		require.NoError(t, err)
		assert.Equal(t, existing.ID, current.ID)
		assert.Equal(t, "Ada", current.FirstName)
		assert.Empty(t, recorder.Types())
	})

	t.Run("UpdateStudent_NotFound", func(t *testing.T) {
		testdb.Reset(t, database)
		service, _ := setupService(t, database)

		_, err := service.UpdateStudent(ctx, student.UpdateStudentInput{ID: 99, FirstName: strPtr("Nobody")})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestDeleteStudent(t *testing.T) {
	database := testdb.NewSQLite(t)
	ctx := context.Background()

	t.Run("NoDependents", func(t *testing.T) {
		testdb.Reset(t, database)
		service, recorder := setupService(t, database)
		s := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")

		result, err := service.DeleteStudent(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "Student deleted along with 0 related records", result.Message)

		_, err = service.GetStudentByID(ctx, s.ID)
		assert.ErrorIs(t, err, student.ErrStudentNotFound)
		assert.Equal(t, []string{event.StudentDeleted}, recorder.Types())
	})

	t.Run("RemovesDependentsOnly", func(t *testing.T) {
		testdb.Reset(t, database)
		service, _ := setupService(t, database)

		target := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")
		other := testdb.InsertStudent(t, database, "Alan", "Turing", "alan@example.com")
		math := testdb.InsertSubject(t, database, "Mathematics", "MATH101")
		physics := testdb.InsertSubject(t, database, "Physics", "PHYS101")

		for day := 1; day <= 3; day++ {
			testdb.InsertAttendance(t, database, target.ID, projection.NewDate(2024, 3, day), attendance.StatusPresent)
		}
		testdb.InsertAttendance(t, database, other.ID, projection.NewDate(2024, 3, 1), attendance.StatusLate)
		testdb.InsertGrade(t, database, target.ID, math.ID, "85.50", grade.TypeQuiz)
		testdb.InsertGrade(t, database, target.ID, physics.ID, "92.75", grade.TypeFinal)
		testdb.InsertGrade(t, database, other.ID, math.ID, "70.00", grade.TypeQuiz)

		before := testdb.Count(t, database, "students") + testdb.Count(t, database, "attendance") + testdb.Count(t, database, "grades")

		result, err := service.DeleteStudent(ctx, target.ID)
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, int64(3), result.AttendanceDeleted)
		assert.Equal(t, int64(2), result.GradesDeleted)
		assert.Equal(t, "Student deleted along with 5 related records", result.Message)

		after := testdb.Count(t, database, "students") + testdb.Count(t, database, "attendance") + testdb.Count(t, database, "grades")
		assert.Equal(t, 3+2+1, before-after)
		assert.Equal(t, 2, testdb.Count(t, database, "subjects"))
		assert.Equal(t, 1, testdb.Count(t, database, "attendance"))
		assert.Equal(t, 1, testdb.Count(t, database, "grades"))
	})

	t.Run("UnknownStudent", func(t *testing.T) {
		testdb.Reset(t, database)
		service, recorder := setupService(t, database)
		s := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")
		testdb.InsertAttendance(t, database, s.ID, projection.NewDate(2024, 3, 1), attendance.StatusAbsent)

		result, err := service.DeleteStudent(ctx, s.ID+100)
		require.NoError(t, err)

		assert.False(t, result.Success)
		assert.Equal(t, "Student not found", result.Message)
		assert.Equal(t, 1, testdb.Count(t, database, "students"))
		assert.Equal(t, 1, testdb.Count(t, database, "attendance"))
		assert.Empty(t, recorder.Types())
	})

	t.Run("InvalidID", func(t *testing.T) {
		service, _ := setupService(t, database)

		_, err := service.DeleteStudent(ctx, 0)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("PublishFailureDoesNotFailDelete", func(t *testing.T) {
		testdb.Reset(t, database)
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		recorder := &event.Recorder{Err: errors.New("broker down")}
		service := student.NewService(student.NewRepository(database), event.NewEmitter(recorder, logger), logger)
		s := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")

		result, err := service.DeleteStudent(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 0, testdb.Count(t, database, "students"))
	})
}

func TestDeleteCascadeRollsBack(t *testing.T) {
	database := testdb.NewSQLite(t)
	ctx := context.Background()

	s := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")
	testdb.InsertAttendance(t, database, s.ID, projection.NewDate(2024, 3, 1), attendance.StatusPresent)

	// a grades table that refuses deletes makes the second step fail mid-transaction
	_, err := database.ExecContext(ctx, `CREATE TRIGGER block_grade_delete BEFORE DELETE ON grades
		BEGIN SELECT RAISE(ABORT, 'grades are locked'); END`)
	require.NoError(t, err)
	math := testdb.InsertSubject(t, database, "Mathematics", "MATH101")
	testdb.InsertGrade(t, database, s.ID, math.ID, "80.00", grade.TypeMidterm)

	repo := student.NewRepository(database)
	_, err = repo.DeleteCascade(ctx, s.ID)
	require.Error(t, err)

	var storageErr *apperr.StorageError
	assert.True(t, errors.As(err, &storageErr))

	assert.Equal(t, 1, testdb.Count(t, database, "students"))
	assert.Equal(t, 1, testdb.Count(t, database, "attendance"), "attendance delete must be rolled back")
	assert.Equal(t, 1, testdb.Count(t, database, "grades"))
}
