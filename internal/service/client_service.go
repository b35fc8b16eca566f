package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/chis-api/internal/models"
	appErrors "github.com/noah-isme/chis-api/pkg/errors"
)

type clientRepository interface {
	List(ctx context.Context) ([]models.Client, error)
	FindByID(ctx context.Context, id int64) (*models.Client, error)
	Search(ctx context.Context, query string) ([]models.Client, error)
	Create(ctx context.Context, client *models.Client) (*models.Client, error)
	Update(ctx context.Context, id int64, client *models.Client) (*models.Client, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// CreateClientRequest holds payload for registering clients.
type CreateClientRequest struct {
	Name    string         `json:"name" validate:"required,min=2,max=100"`
	Age     *int           `json:"age" validate:"omitempty,gte=0,lte=120"`
	Gender  *models.Gender `json:"gender" validate:"omitempty,oneof=Male Female Other 'Prefer not to say'"`
	Contact *string        `json:"contact" validate:"omitempty,max=50"`
	Address *string        `json:"address" validate:"omitempty,max=200"`
}

// UpdateClientRequest holds payload for updating clients.
type UpdateClientRequest struct {
	Name    string         `json:"name" validate:"required,min=2,max=100"`
	Age     *int           `json:"age" validate:"omitempty,gte=0,lte=120"`
	Gender  *models.Gender `json:"gender" validate:"omitempty,oneof=Male Female Other 'Prefer not to say'"`
	Contact *string        `json:"contact" validate:"omitempty,max=50"`
	Address *string        `json:"address" validate:"omitempty,max=200"`
}

// ClientService handles client use-cases.
type ClientService struct {
	repo      clientRepository
	profiles  profileInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClientService constructs the client service.
func NewClientService(repo clientRepository, profiles profileInvalidator, validate *validator.Validate, logger *zap.Logger) *ClientService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// List returns all clients sorted by name.
func (s *ClientService) List(ctx context.Context) ([]models.Client, error) {
	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clients")
	}
	return clients, nil
}

// Get returns a client by id.
func (s *ClientService) Get(ctx context.Context, id int64) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	return client, nil
}

// Search matches clients by name substring or exact id. A blank query is a
// validation failure at this boundary, before the repository is consulted.
func (s *ClientService) Search(ctx context.Context, query string) ([]models.Client, error) {
	if strings.TrimSpace(query) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "search query is required")
	}
	clients, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search clients")
	}
	return clients, nil
}

// Create registers a new client. Names are not unique across clients.
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*models.Client, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid client payload")
	}
	client := &models.Client{
		Name:    req.Name,
		Age:     req.Age,
		Gender:  req.Gender,
		Contact: req.Contact,
		Address: req.Address,
	}
	created, err := s.repo.Create(ctx, client)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create client")
	}
	return created, nil
}

// Update modifies an existing client record.
func (s *ClientService) Update(ctx context.Context, id int64, req UpdateClientRequest) (*models.Client, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid client payload")
	}
	client := &models.Client{
		Name:    req.Name,
		Age:     req.Age,
		Gender:  req.Gender,
		Contact: req.Contact,
		Address: req.Address,
	}
	updated, err := s.repo.Update(ctx, id, client)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update client")
	}
	if s.profiles != nil {
		s.profiles.InvalidateClient(ctx, id)
	}
	return updated, nil
}

// Delete removes a client; the store cascades enrollment deletion in the
// same statement.
func (s *ClientService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete client")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "client not found")
	}
	if s.profiles != nil {
		s.profiles.InvalidateClient(ctx, id)
	}
	return nil
}
