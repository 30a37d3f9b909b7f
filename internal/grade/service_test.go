package grade_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/event"
	"github.com/appdotbuilder/school-management-app/internal/grade"
	"github.com/appdotbuilder/school-management-app/internal/projection"
	"github.com/appdotbuilder/school-management-app/internal/student"
	"github.com/appdotbuilder/school-management-app/internal/subject"
	"github.com/appdotbuilder/school-management-app/internal/testutil/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupService(database *bun.DB, recorder *event.Recorder) grade.Service {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return grade.NewService(
		grade.NewRepository(database),
		student.NewRepository(database),
		subject.NewRepository(database),
		event.NewEmitter(recorder, logger),
		logger,
	)
}

func TestRecordGrade(t *testing.T) {
	database := testdb.NewSQLite(t)
	ctx := context.Background()

	t.Run("Success_DefaultsRecordedDate", func(t *testing.T) {
		testdb.Reset(t, database)
		recorder := &event.Recorder{}
		service := setupService(database, recorder)
		s := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")
		math := testdb.InsertSubject(t, database, "Mathematics", "MATH101")

		created, err := service.RecordGrade(ctx, grade.RecordGradeInput{
			StudentID: s.ID,
			SubjectID: math.ID,
			Grade:     92.75,
			GradeType: grade.TypeFinal,
			MaxScore:  100,
		})
		require.NoError(t, err)

		assert.NotZero(t, created.ID)
		assert.True(t, created.Grade.Equal(decimal.RequireFromString("92.75")))
		assert.Equal(t, projection.Today().String(), created.RecordedDate.String())
		assert.Equal(t, []string{event.GradeRecorded}, recorder.Types())
	})

	t.Run("Success_ExplicitRecordedDate", func(t *testing.T) {
		testdb.Reset(t, database)
		service := setupService(database, &event.Recorder{})
		s := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")
		math := testdb.InsertSubject(t, database, "Mathematics", "MATH101")

		created, err := service.RecordGrade(ctx, grade.RecordGradeInput{
			StudentID:    s.ID,
			SubjectID:    math.ID,
			Grade:        18,
			GradeType:    grade.TypeQuiz,
			MaxScore:     20,
			RecordedDate: projection.NewDate(2024, 2, 14),
		})
		require.NoError(t, err)
		assert.Equal(t, "2024-02-14", created.RecordedDate.String())
	})

	t.Run("UnknownStudent", func(t *testing.T) {
		testdb.Reset(t, database)
		service := setupService(database, &event.Recorder{})
		math := testdb.InsertSubject(t, database, "Mathematics", "MATH101")

		_, err := service.RecordGrade(ctx, grade.RecordGradeInput{
			StudentID: 77, SubjectID: math.ID, Grade: 50, GradeType: grade.TypeQuiz, MaxScore: 100,
		})
		assert.ErrorIs(t, err, grade.ErrStudentNotFound)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("UnknownSubject", func(t *testing.T) {
		testdb.Reset(t, database)
		service := setupService(database, &event.Recorder{})
		s := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")

		_, err := service.RecordGrade(ctx, grade.RecordGradeInput{
			StudentID: s.ID, SubjectID: 88, Grade: 50, GradeType: grade.TypeQuiz, MaxScore: 100,
		})
		assert.ErrorIs(t, err, grade.ErrSubjectNotFound)
		assert.Equal(t, 0, testdb.Count(t, database, "grades"))
	})

	t.Run("MaxScoreRoundingToZero", func(t *testing.T) {
		testdb.Reset(t, database)
		service := setupService(database, &event.Recorder{})
		s := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")
		math := testdb.InsertSubject(t, database, "Mathematics", "MATH101")

		_, err := service.RecordGrade(ctx, grade.RecordGradeInput{
			StudentID: s.ID, SubjectID: math.ID, Grade: 0, GradeType: grade.TypeQuiz, MaxScore: 0.004,
		})
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Equal(t, 0, testdb.Count(t, database, "grades"))
	})

	t.Run("SmallestMaxScore", func(t *testing.T) {
		testdb.Reset(t, database)
		service := setupService(database, &event.Recorder{})
		s := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")
		math := testdb.InsertSubject(t, database, "Mathematics", "MATH101")

		created, err := service.RecordGrade(ctx, grade.RecordGradeInput{
			StudentID: s.ID, SubjectID: math.ID, Grade: 0.01, GradeType: grade.TypeQuiz, MaxScore: 0.006,
		})
		require.NoError(t, err)
		assert.True(t, created.MaxScore.Equal(decimal.RequireFromString("0.01")))
	})

	t.Run("InvalidGradeType", func(t *testing.T) {
		service := setupService(database, &event.Recorder{})

		_, err := service.RecordGrade(ctx, grade.RecordGradeInput{
			StudentID: 1, SubjectID: 1, Grade: 50, GradeType: grade.Type("project"), MaxScore: 100,
		})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestGetGradesWithDetails(t *testing.T) {
	database := testdb.NewSQLite(t)
	ctx := context.Background()
	service := setupService(database, &event.Recorder{})

	ada := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")
	alan := testdb.InsertStudent(t, database, "Alan", "Turing", "alan@example.com")
	math := testdb.InsertSubject(t, database, "Mathematics", "MATH101")
	physics := testdb.InsertSubject(t, database, "Physics", "PHYS101")

	_, err := service.RecordGrade(ctx, grade.RecordGradeInput{
		StudentID: ada.ID, SubjectID: math.ID, Grade: 67.50, GradeType: grade.TypeMidterm, MaxScore: 75.00,
	})
	require.NoError(t, err)
	testdb.InsertGrade(t, database, alan.ID, physics.ID, "81.00", grade.TypeAssignment)
	testdb.InsertGrade(t, database, ada.ID, physics.ID, "92.75", grade.TypeFinal)

	t.Run("AllGrades", func(t *testing.T) {
		grades, err := service.GetGradesWithDetails(ctx, nil)
		require.NoError(t, err)
		require.Len(t, grades, 3)

		first := grades[0]
		assert.Equal(t, "Ada Lovelace", first.StudentName)
		assert.Equal(t, "Mathematics", first.SubjectName)
		assert.Equal(t, "MATH101", first.SubjectCode)
		assert.Equal(t, 67.5, first.Grade)
		assert.Equal(t, 75.0, first.MaxScore)
		assert.Equal(t, 90.0, first.Percentage)

		assert.Equal(t, "Alan Turing", grades[1].StudentName)
		assert.Less(t, grades[0].ID, grades[1].ID)
		assert.Less(t, grades[1].ID, grades[2].ID)
	})

	t.Run("StudentFilter", func(t *testing.T) {
		grades, err := service.GetGradesWithDetails(ctx, &ada.ID)
		require.NoError(t, err)
		require.Len(t, grades, 2)
		for _, g := range grades {
			assert.Equal(t, ada.ID, g.StudentID)
		}
		assert.Equal(t, 92.75, grades[1].Percentage)
	})

	t.Run("UnmatchedStudentIsEmpty", func(t *testing.T) {
		missing := 999
		grades, err := service.GetGradesWithDetails(ctx, &missing)
		require.NoError(t, err)
		assert.NotNil(t, grades)
		assert.Empty(t, grades)
	})
}

func TestGradeJSON(t *testing.T) {
	comments := "solid work"
	g := grade.Grade{
		ID:           3,
		StudentID:    1,
		SubjectID:    2,
		Grade:        decimal.RequireFromString("85.50"),
		GradeType:    grade.TypeQuiz,
		MaxScore:     decimal.RequireFromString("100.00"),
		Comments:     &comments,
		RecordedDate: projection.NewDate(2024, 3, 1),
	}

	raw, err := json.Marshal(g)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, 85.5, body["grade"])
	assert.Equal(t, 100.0, body["max_score"])
	assert.Equal(t, "quiz", body["grade_type"])
	assert.Equal(t, "2024-03-01", body["recorded_date"])
	assert.Equal(t, "solid work", body["comments"])
}
