package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"registration-service/internal/events"
	"registration-service/internal/metrics"
)

type Service interface {
	Register(ctx context.Context, form RegistrationForm) (*Student, error)
	ListRegistrations(ctx context.Context) ([]Student, error)
	GetRegistration(ctx context.Context, id int64) (*Student, error)
}

type service struct {
	repo      Repository
	validator *Validator
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewService(repo Repository, validator *Validator, publisher events.Publisher, logger *slog.Logger, m *metrics.Metrics) Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if m == nil {
		m = metrics.NewMock()
	}
	return &service{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

func (s *service) Register(ctx context.Context, form RegistrationForm) (*Student, error) {
	student, err := s.validator.Validate(form)
	if err != nil {
		s.metrics.RecordRegistrationRejected(ctx, metrics.ReasonValidation)
		return nil, err
	}

	err = s.repo.RunInTx(ctx, func(ctx context.Context, repo Repository) error {
		exists, err := repo.ExistsByEmail(ctx, student.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return &DuplicateError{Field: FieldEmail}
		}

		exists, err = repo.ExistsByCNIC(ctx, student.CNIC)
		if err != nil {
			return fmt.Errorf("check cnic: %w", err)
		}
		if exists {
			return &DuplicateError{Field: FieldCNIC}
		}

		if _, err := repo.Create(ctx, student); err != nil {
			return fmt.Errorf("insert student: %w", err)
		}
		return nil
	})
	if err != nil {
		var dup *DuplicateError
		if errors.As(err, &dup) {
			s.logger.InfoContext(ctx, "registration rejected", "field", dup.Field)
			if dup.Field == FieldCNIC {
				s.metrics.RecordRegistrationRejected(ctx, metrics.ReasonDuplicateCNIC)
			} else {
				s.metrics.RecordRegistrationRejected(ctx, metrics.ReasonDuplicateEmail)
			}
			return nil, dup
		}
		s.logger.ErrorContext(ctx, "failed to register student", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	s.logger.InfoContext(ctx, "student registered", "student_id", student.ID)
	s.metrics.RecordStudentRegistration(ctx)
	s.publishRegistered(ctx, student)

	return student, nil
}

// publishRegistered runs after commit. A failed publish is logged and the
// registration still succeeds.
func (s *service) publishRegistered(ctx context.Context, student *Student) {
	event := events.StudentRegistered{
		ID:           student.ID,
		Email:        student.Email,
		Degree:       student.Degree,
		RegisteredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish registration event", "student_id", student.ID, "error", err)
	}
}

func (s *service) ListRegistrations(ctx context.Context) ([]Student, error) {
	students, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list students", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	s.metrics.RecordStudentsListViewed(ctx)
	return students, nil
}

func (s *service) GetRegistration(ctx context.Context, id int64) (*Student, error) {
	if id <= 0 {
		return nil, ErrStudentNotFound
	}

	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "failed to get student", "student_id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	s.metrics.RecordStudentViewed(ctx)
	return student, nil
}
