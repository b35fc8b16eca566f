package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/chis-api/internal/models"
	appErrors "github.com/noah-isme/chis-api/pkg/errors"
)

type programRepository interface {
	List(ctx context.Context) ([]models.Program, error)
	FindByID(ctx context.Context, id int64) (*models.Program, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, name string, description *string) (*models.Program, error)
	Update(ctx context.Context, id int64, name string, description *string) (*models.Program, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// profileInvalidator drops cached client profiles after a write. Mutations
// to any of the three entities can change profile contents, so every write
// path carries one. Implementations are best-effort and nil is accepted.
type profileInvalidator interface {
	InvalidateClient(ctx context.Context, clientID int64)
	InvalidateAll(ctx context.Context)
}

// CreateProgramRequest holds payload for creating programs.
type CreateProgramRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// UpdateProgramRequest holds payload for updating programs.
type UpdateProgramRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// ProgramService handles health-program use-cases.
type ProgramService struct {
	repo      programRepository
	profiles  profileInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService constructs the program service.
func NewProgramService(repo programRepository, profiles profileInvalidator, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// List returns all programs sorted by name.
func (s *ProgramService) List(ctx context.Context) ([]models.Program, error) {
	programs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, nil
}

// Get returns a program by id.
func (s *ProgramService) Get(ctx context.Context, id int64) (*models.Program, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// Create registers a new program. The name pre-check is advisory; the
// store's unique constraint is the final word and the repository maps it
// to the same duplicate-name error when a concurrent create wins the race.
func (s *ProgramService) Create(ctx context.Context, req CreateProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	exists, err := s.repo.ExistsByName(ctx, req.Name, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate program name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateName, "")
	}
	program, err := s.repo.Create(ctx, req.Name, req.Description)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrDuplicateName) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}
	return program, nil
}

// Update modifies an existing program's name and description.
func (s *ProgramService) Update(ctx context.Context, id int64, req UpdateProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate program name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateName, "")
	}
	program, err := s.repo.Update(ctx, id, req.Name, req.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		if appErrors.Is(err, appErrors.ErrDuplicateName) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}
	if s.profiles != nil {
		s.profiles.InvalidateAll(ctx)
	}
	return program, nil
}

// Delete removes a program; the store cascades enrollment deletion in the
// same statement.
func (s *ProgramService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete program")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "program not found")
	}
	if s.profiles != nil {
		s.profiles.InvalidateAll(ctx)
	}
	return nil
}
