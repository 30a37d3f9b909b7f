package grade

import (
	"context"
	"fmt"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/db"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, grade *Grade) (*Grade, error)
	FindWithDetails(ctx context.Context, studentID *int) ([]WithDetails, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, grade *Grade) (*Grade, error) {
	_, err := r.db.NewInsert().Model(grade).Returning("*").Exec(ctx)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: student %d or subject %d", apperr.ErrNotFound, grade.StudentID, grade.SubjectID)
		}
		return nil, apperr.Storage("insert grades", err)
	}
	return grade, nil
}

// FindWithDetails returns grades joined with their student and subject, ordered by id.
// A nil studentID returns every grade.
func (r *repository) FindWithDetails(ctx context.Context, studentID *int) ([]WithDetails, error) {
	var rows []detailRow

	q := r.db.NewSelect().
		TableExpr("grades AS g").
		Join("JOIN students AS s ON s.id = g.student_id").
		Join("JOIN subjects AS sub ON sub.id = g.subject_id").
		ColumnExpr("g.id, g.student_id, g.subject_id").
		ColumnExpr("s.first_name AS student_first_name, s.last_name AS student_last_name").
		ColumnExpr("sub.name AS subject_name, sub.code AS subject_code").
		ColumnExpr("g.grade, g.grade_type, g.max_score, g.comments, g.recorded_date, g.created_at")
	if studentID != nil {
		q = q.Where("g.student_id = ?", *studentID)
	}

	if err := q.OrderExpr("g.id ASC").Scan(ctx, &rows); err != nil {
		return nil, apperr.Storage("select grades", err)
	}

	views := make([]WithDetails, 0, len(rows))
	for _, row := range rows {
		views = append(views, row.view())
	}
	return views, nil
}
