package student

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/attendance"
	"github.com/appdotbuilder/school-management-app/internal/db"
	"github.com/appdotbuilder/school-management-app/internal/grade"

	"github.com/uptrace/bun"
)

// CascadeResult counts the rows removed by DeleteCascade. Found is false when the
// student did not exist, in which case nothing was removed.
type CascadeResult struct {
	Found             bool
	AttendanceDeleted int64
	GradesDeleted     int64
}

type Repository interface {
	Create(ctx context.Context, student *Student) (*Student, error)
	GetAll(ctx context.Context) ([]Student, error)
	GetByID(ctx context.Context, id int) (*Student, error)
	GetByEmail(ctx context.Context, email string) (*Student, error)
	Exists(ctx context.Context, id int) (bool, error)
	Update(ctx context.Context, student *Student, columns ...string) error
	DeleteCascade(ctx context.Context, id int) (CascadeResult, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) Create(ctx context.Context, student *Student) (*Student, error) {
	_, err := r.db.NewInsert().Model(student).Returning("*").Exec(ctx)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrEmailExists, student.Email)
		}
		return nil, apperr.Storage("insert students", err)
	}
	return student, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Student, error) {
	students := make([]Student, 0)
	err := r.db.NewSelect().Model(&students).Order("s.id").Scan(ctx)
	if err != nil {
		return nil, apperr.Storage("select students", err)
	}
	return students, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Student, error) {
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("s.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", ErrStudentNotFound, id)
		}
		return nil, apperr.Storage("select students", err)
	}
	return student, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Student, error) {
	student := new(Student)
	err := r.db.NewSelect().
		Model(student).
		Where("s.email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: email %s", ErrStudentNotFound, email)
		}
		return nil, apperr.Storage("select students", err)
	}
	return student, nil
}

func (r *repository) Exists(ctx context.Context, id int) (bool, error) {
	exists, err := r.db.NewSelect().Model((*Student)(nil)).Where("s.id = ?", id).Exists(ctx)
	if err != nil {
		return false, apperr.Storage("select students", err)
	}
	return exists, nil
}

// Update writes the given columns of student and reloads the row.
func (r *repository) Update(ctx context.Context, student *Student, columns ...string) error {
	result, err := r.db.NewUpdate().
		Model(student).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrEmailExists, student.Email)
		}
		return apperr.Storage("update students", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperr.Storage("update students", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrStudentNotFound, student.ID)
	}
	return nil
}

// errVanished rolls back a cascade whose student was removed concurrently.
var errVanished = errors.New("student removed during cascade")

// DeleteCascade removes the student's attendance and grades, then the student, in a
// single transaction. Subjects are never touched.
func (r *repository) DeleteCascade(ctx context.Context, id int) (CascadeResult, error) {
	var res CascadeResult

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*Student)(nil)).Where("s.id = ?", id).Exists(ctx)
		if err != nil {
			return apperr.Storage("select students", err)
		}
		if !exists {
			return nil
		}

		result, err := tx.NewDelete().
			Model((*attendance.Attendance)(nil)).
			Where("student_id = ?", id).
			Exec(ctx)
		if err != nil {
			return apperr.Storage("delete attendance", err)
		}
		if res.AttendanceDeleted, err = result.RowsAffected(); err != nil {
			return apperr.Storage("delete attendance", err)
		}

		result, err = tx.NewDelete().
			Model((*grade.Grade)(nil)).
			Where("student_id = ?", id).
			Exec(ctx)
		if err != nil {
			return apperr.Storage("delete grades", err)
		}
		if res.GradesDeleted, err = result.RowsAffected(); err != nil {
			return apperr.Storage("delete grades", err)
		}

		result, err = tx.NewDelete().
			Model((*Student)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return apperr.Storage("delete students", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return apperr.Storage("delete students", err)
		}
		if n == 0 {
			return errVanished
		}

		res.Found = true
		return nil
	})
	if errors.Is(err, errVanished) {
		return CascadeResult{}, nil
	}
	if err != nil {
		return CascadeResult{}, apperr.Storage("delete student cascade", err)
	}
	return res, nil
}
