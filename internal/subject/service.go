package subject

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/event"
)

var (
	ErrSubjectNotFound = apperr.New(apperr.ErrNotFound, "subject not found")
	ErrCodeExists      = apperr.New(apperr.ErrDuplicateKey, "subject code already exists")
)

type Service interface {
	CreateSubject(ctx context.Context, input CreateSubjectInput) (*Subject, error)
	GetAllSubjects(ctx context.Context) ([]Subject, error)
}

type service struct {
	repo   Repository
	events *event.Emitter
	logger *slog.Logger
}

func NewService(repo Repository, events *event.Emitter, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

func (s *service) CreateSubject(ctx context.Context, input CreateSubjectInput) (*Subject, error) {
	if input.Credits <= 0 {
		return nil, apperr.Validation("credits must be positive, got %d", input.Credits)
	}

	// advisory; the unique index on code is authoritative
	_, err := s.repo.GetByCode(ctx, input.Code)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrCodeExists, input.Code)
	case !errors.Is(err, ErrSubjectNotFound):
		return nil, err
	}

	created, err := s.repo.Create(ctx, &Subject{
		Name:        input.Name,
		Code:        input.Code,
		Description: input.Description,
		Credits:     input.Credits,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "subject created", "subject_id", created.ID, "code", created.Code)
	s.events.Emit(ctx, event.SubjectCreated, created)
	return created, nil
}

func (s *service) GetAllSubjects(ctx context.Context) ([]Subject, error) {
	return s.repo.GetAll(ctx)
}
