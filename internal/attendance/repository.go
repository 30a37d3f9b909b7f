package attendance

import (
	"context"
	"fmt"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/db"
	"github.com/appdotbuilder/school-management-app/internal/projection"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, record *Attendance) (*Attendance, error)
	ExistsForDate(ctx context.Context, studentID int, date projection.Date) (bool, error)
	FindInRange(ctx context.Context, filter RangeFilter) ([]WithStudent, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, record *Attendance) (*Attendance, error) {
	_, err := r.db.NewInsert().Model(record).Returning("*").Exec(ctx)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, fmt.Errorf("%w: student %d on %s", ErrDuplicateAttendance, record.StudentID, record.Date)
		case db.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: id %d", ErrStudentNotFound, record.StudentID)
		}
		return nil, apperr.Storage("insert attendance", err)
	}
	return record, nil
}

func (r *repository) ExistsForDate(ctx context.Context, studentID int, date projection.Date) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Attendance)(nil)).
		Where("a.student_id = ?", studentID).
		Where(`a."date" = ?`, date).
		Exists(ctx)
	if err != nil {
		return false, apperr.Storage("select attendance", err)
	}
	return exists, nil
}

func (r *repository) FindInRange(ctx context.Context, filter RangeFilter) ([]WithStudent, error) {
	records := make([]WithStudent, 0)

	q := r.db.NewSelect().
		TableExpr("attendance AS a").
		Join("JOIN students AS s ON s.id = a.student_id").
		ColumnExpr("a.id, a.student_id").
		ColumnExpr("s.first_name AS student_name").
		ColumnExpr(`a."date", a.status, a.reason, a.created_at`).
		Where(`a."date" >= ?`, filter.StartDate).
		Where(`a."date" <= ?`, filter.EndDate)
	if filter.StudentID != nil {
		q = q.Where("a.student_id = ?", *filter.StudentID)
	}

	if err := q.OrderExpr(`a."date" ASC, a.id ASC`).Scan(ctx, &records); err != nil {
		return nil, apperr.Storage("select attendance", err)
	}
	return records, nil
}
