package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	studentsCreated    metric.Int64Counter
	studentsDeleted    metric.Int64Counter
	dependentsDeleted  metric.Int64Counter
	subjectsCreated    metric.Int64Counter
	attendanceRecorded metric.Int64Counter
	gradesRecorded     metric.Int64Counter
	rankingsComputed   metric.Int64Counter

	Database *DatabaseMetrics
	Health   *HealthMetrics
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
		unit   string
	}{
		{&m.studentsCreated, "school.students.created", "Total number of students created", "{student}"},
		{&m.studentsDeleted, "school.students.deleted", "Total number of students removed by cascading delete", "{student}"},
		{&m.dependentsDeleted, "school.records.cascade_deleted", "Attendance and grade rows removed with their student", "{record}"},
		{&m.subjectsCreated, "school.subjects.created", "Total number of subjects created", "{subject}"},
		{&m.attendanceRecorded, "school.attendance.recorded", "Total number of attendance records written", "{record}"},
		{&m.gradesRecorded, "school.grades.recorded", "Total number of grades written", "{record}"},
		{&m.rankingsComputed, "school.rankings.computed", "Total number of student rankings computed", "{ranking}"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}
	m.Database = database

	health, err := NewHealthMetrics(meter)
	if err != nil {
		return nil, err
	}
	m.Health = health

	return m, nil
}

func (m *Metrics) RecordStudentCreated(ctx context.Context) {
	if m != nil && m.studentsCreated != nil {
		m.studentsCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordStudentDeleted(ctx context.Context, dependents int64) {
	if m == nil || m.studentsDeleted == nil {
		return
	}
	m.studentsDeleted.Add(ctx, 1)
	if dependents > 0 && m.dependentsDeleted != nil {
		m.dependentsDeleted.Add(ctx, dependents)
	}
}

func (m *Metrics) RecordSubjectCreated(ctx context.Context) {
	if m != nil && m.subjectsCreated != nil {
		m.subjectsCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordAttendance(ctx context.Context) {
	if m != nil && m.attendanceRecorded != nil {
		m.attendanceRecorded.Add(ctx, 1)
	}
}

func (m *Metrics) RecordGrade(ctx context.Context) {
	if m != nil && m.gradesRecorded != nil {
		m.gradesRecorded.Add(ctx, 1)
	}
}

func (m *Metrics) RecordRankingComputed(ctx context.Context) {
	if m != nil && m.rankingsComputed != nil {
		m.rankingsComputed.Add(ctx, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}, Health: &HealthMetrics{}}
}
