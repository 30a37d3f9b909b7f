package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/attendance"
	"github.com/appdotbuilder/school-management-app/internal/projection"
)

type Service interface {
	GetDashboardStatistics(ctx context.Context) (*DashboardStatistics, error)
	GetTopStudents(ctx context.Context, input TopStudentsInput) ([]StudentRanking, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds the statistics service. now supplies the clock that decides
// "today"; nil means time.Now.
func NewService(repo Repository, logger *slog.Logger, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:   repo,
		logger: logger,
		now:    now,
	}
}

func (s *service) GetDashboardStatistics(ctx context.Context) (*DashboardStatistics, error) {
	today := projection.DateOf(s.now().UTC())

	students, err := s.repo.CountStudents(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := s.repo.CountSubjects(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.StatusCountsOn(ctx, today)
	if err != nil {
		return nil, err
	}
	attended, total, err := s.repo.AttendanceTotals(ctx)
	if err != nil {
		return nil, err
	}
	grades, err := s.repo.GradeTotals(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStatistics{
		TotalStudents:           students,
		TotalSubjects:           subjects,
		PresentToday:            byStatus[attendance.StatusPresent],
		AbsentToday:             byStatus[attendance.StatusAbsent],
		LateToday:               byStatus[attendance.StatusLate],
		AverageAttendanceRate:   projection.Round2(projection.Rate(attended, total)),
		AverageGradeAllStudents: projection.Round2(projection.Mean(projection.FromHundredths(grades.Hundredths), grades.Count)),
	}, nil
}

func (s *service) GetTopStudents(ctx context.Context, input TopStudentsInput) ([]StudentRanking, error) {
	limit := DefaultRankingLimit
	if input.Limit != nil {
		if *input.Limit <= 0 {
			return nil, apperr.Validation("limit must be positive, got %d", *input.Limit)
		}
		limit = *input.Limit
	}
	if input.GradeType != "" && !input.GradeType.Valid() {
		return nil, apperr.Validation("unknown grade type %q", input.GradeType)
	}

	rows, err := s.repo.TopStudents(ctx, limit, input.GradeType)
	if err != nil {
		return nil, err
	}

	rankings := make([]StudentRanking, 0, len(rows))
	for i, row := range rows {
		rankings = append(rankings, StudentRanking{
			StudentID:     row.StudentID,
			FirstName:     row.FirstName,
			LastName:      row.LastName,
			Email:         row.Email,
			AverageGrade:  projection.Float(projection.Mean(projection.FromHundredths(row.Hundredths), row.GradeCount)),
			TotalSubjects: row.TotalSubjects,
			Rank:          i + 1,
		})
	}

	s.logger.DebugContext(ctx, "students ranked", "limit", limit, "grade_type", input.GradeType, "ranked", len(rankings))
	return rankings, nil
}
