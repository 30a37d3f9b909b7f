package subject

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/db"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, subject *Subject) (*Subject, error)
	GetAll(ctx context.Context) ([]Subject, error)
	GetByCode(ctx context.Context, code string) (*Subject, error)
	Exists(ctx context.Context, id int) (bool, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, subject *Subject) (*Subject, error) {
	_, err := r.db.NewInsert().Model(subject).Returning("*").Exec(ctx)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrCodeExists, subject.Code)
		}
		return nil, apperr.Storage("insert subjects", err)
	}
	return subject, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Subject, error) {
	subjects := make([]Subject, 0)
	if err := r.db.NewSelect().Model(&subjects).Order("sub.id").Scan(ctx); err != nil {
		return nil, apperr.Storage("select subjects", err)
	}
	return subjects, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Subject, error) {
	subject := new(Subject)
	err := r.db.NewSelect().Model(subject).Where("sub.code = ?", code).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: code %s", ErrSubjectNotFound, code)
		}
		return nil, apperr.Storage("select subjects", err)
	}
	return subject, nil
}

func (r *repository) Exists(ctx context.Context, id int) (bool, error) {
	exists, err := r.db.NewSelect().Model((*Subject)(nil)).Where("sub.id = ?", id).Exists(ctx)
	if err != nil {
		return false, apperr.Storage("select subjects", err)
	}
	return exists, nil
}
