package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/chis-api/internal/models"
	appErrors "github.com/noah-isme/chis-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, clientID, programID int64) (*models.EnrollmentDetail, error)
	List(ctx context.Context) ([]models.EnrollmentDetail, error)
	FindDetailByID(ctx context.Context, id int64) (*models.EnrollmentDetail, error)
	ListByClientID(ctx context.Context, clientID int64) ([]models.ClientEnrollment, error)
	ListByProgramID(ctx context.Context, programID int64) ([]models.ProgramEnrollment, error)
	UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error
	Delete(ctx context.Context, id int64) (bool, error)
	IsEnrolled(ctx context.Context, clientID, programID int64) (bool, error)
}

type clientReader interface {
	FindByID(ctx context.Context, id int64) (*models.Client, error)
}

type programReader interface {
	FindByID(ctx context.Context, id int64) (*models.Program, error)
}

// EnrollClientRequest describes enrollment creation payload.
type EnrollClientRequest struct {
	ClientID  int64 `json:"client_id" validate:"required,gt=0"`
	ProgramID int64 `json:"program_id" validate:"required,gt=0"`
}

// UpdateEnrollmentStatusRequest carries a status transition.
type UpdateEnrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" validate:"required"`
}

// EnrollmentService orchestrates the enrollment lifecycle.
type EnrollmentService struct {
	repo      enrollmentRepository
	clients   clientReader
	programs  programReader
	profiles  profileInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, clients clientReader, programs programReader, profiles profileInvalidator, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, clients: clients, programs: programs, profiles: profiles, validator: validate, logger: logger}
}

// Enroll registers a client into a program. Parent existence checks and the
// duplicate pre-check are advisory fast-fails; the store's pair constraint
// and foreign keys decide races, and the repository surfaces those as the
// same already-enrolled / reference-violation errors.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollClientRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if _, err := s.clients.FindByID(ctx, req.ClientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	enrolled, err := s.repo.IsEnrolled(ctx, req.ClientID, req.ProgramID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
	}
	if enrolled {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
	}
	detail, err := s.repo.Create(ctx, req.ClientID, req.ProgramID)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrAlreadyEnrolled) || appErrors.Is(err, appErrors.ErrReferenceViolation) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	if s.profiles != nil {
		s.profiles.InvalidateClient(ctx, req.ClientID)
	}
	return detail, nil
}

// List returns every enrollment enriched with both parent names.
func (s *EnrollmentService) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// Get returns a single enriched enrollment.
func (s *EnrollmentService) Get(ctx context.Context, id int64) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return detail, nil
}

// ListByClient returns a client's enrollments with program context.
func (s *EnrollmentService) ListByClient(ctx context.Context, clientID int64) ([]models.ClientEnrollment, error) {
	enrollments, err := s.repo.ListByClientID(ctx, clientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list client enrollments")
	}
	return enrollments, nil
}

// ListByProgram returns a program's enrollments with client context.
func (s *EnrollmentService) ListByProgram(ctx context.Context, programID int64) ([]models.ProgramEnrollment, error) {
	enrollments, err := s.repo.ListByProgramID(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list program enrollments")
	}
	return enrollments, nil
}

// UpdateStatus moves an enrollment to any of the three recognized statuses.
// The machine is deliberately permissive: enum membership is the only rule,
// no transition between recognized values is disallowed. An unknown value
// is rejected before the row is touched.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, id int64, req UpdateEnrollmentStatusRequest) (*models.EnrollmentDetail, error) {
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "")
	}
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment status")
	}
	updated, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if s.profiles != nil {
		s.profiles.InvalidateClient(ctx, detail.ClientID)
	}
	return updated, nil
}

// Unenroll removes an enrollment directly; removal never cascades elsewhere.
func (s *EnrollmentService) Unenroll(ctx context.Context, id int64) error {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil && err != sql.ErrNoRows {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	if s.profiles != nil && detail != nil {
		s.profiles.InvalidateClient(ctx, detail.ClientID)
	}
	return nil
}
