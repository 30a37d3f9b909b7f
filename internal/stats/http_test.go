package stats_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/appdotbuilder/school-management-app/internal/grade"
	"github.com/appdotbuilder/school-management-app/internal/metrics"
	"github.com/appdotbuilder/school-management-app/internal/stats"
	"github.com/appdotbuilder/school-management-app/internal/testutil/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsHandler(t *testing.T) {
	database := testdb.NewSQLite(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	handler := stats.NewHandler(setupService(database), logger, metrics.NewMock())

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)

	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	t.Run("Dashboard_Empty", func(t *testing.T) {
		testdb.Reset(t, database)

		w := get("/api/statistics/dashboard")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"total_students": 0,
			"total_subjects": 0,
			"present_today": 0,
			"absent_today": 0,
			"late_today": 0,
			"average_attendance_rate": 0,
			"average_grade_all_students": 0
		}`, w.Body.String())
	})

	t.Run("TopStudents", func(t *testing.T) {
		testdb.Reset(t, database)
		s := testdb.InsertStudent(t, database, "Ada", "Lovelace", "ada@example.com")
		math := testdb.InsertSubject(t, database, "Mathematics", "MATH101")
		testdb.InsertGrade(t, database, s.ID, math.ID, "91.25", grade.TypeQuiz)

		w := get("/api/statistics/top-students?limit=5&grade_type=quiz")
		require.Equal(t, http.StatusOK, w.Code)

		var rankings []stats.StudentRanking
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rankings))
		require.Len(t, rankings, 1)
		assert.Equal(t, 91.25, rankings[0].AverageGrade)
		assert.Equal(t, 1, rankings[0].Rank)

		var raw []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		assert.Equal(t, float64(s.ID), raw[0]["id"])
		assert.NotContains(t, raw[0], "student_id")
	})

	t.Run("TopStudents_BadLimit", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get("/api/statistics/top-students?limit=abc").Code)
		assert.Equal(t, http.StatusBadRequest, get("/api/statistics/top-students?limit=-3").Code)
	})

	t.Run("TopStudents_BadGradeType", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get("/api/statistics/top-students?grade_type=oral").Code)
	})
}
