package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chis-api/internal/models"
	appErrors "github.com/noah-isme/chis-api/pkg/errors"
)

func TestProgramServiceCreate(t *testing.T) {
	repo := &stubProgramRepo{
		existsByName: func(_ context.Context, name string, excludeID int64) (bool, error) {
			assert.Equal(t, "Malaria Control", name)
			assert.Zero(t, excludeID)
			return false, nil
		},
		create: func(_ context.Context, name string, description *string) (*models.Program, error) {
			return &models.Program{ID: 1, Name: name, Description: description}, nil
		},
	}
	svc := NewProgramService(repo, nil, nil, nil)

	program, err := svc.Create(context.Background(), CreateProgramRequest{Name: "Malaria Control"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), program.ID)
	assert.Equal(t, "Malaria Control", program.Name)
}

func TestProgramServiceCreateRejectsShortName(t *testing.T) {
	svc := NewProgramService(&stubProgramRepo{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateProgramRequest{Name: "X"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestProgramServiceCreateDuplicateName(t *testing.T) {
	repo := &stubProgramRepo{
		existsByName: func(context.Context, string, int64) (bool, error) { return true, nil },
	}
	svc := NewProgramService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateProgramRequest{Name: "Malaria Control"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateName))
}

func TestProgramServiceCreateRaceSurfacesDuplicate(t *testing.T) {
	// The pre-check passes but a concurrent create wins; the store-mapped
	// duplicate error passes through unchanged.
	repo := &stubProgramRepo{
		existsByName: func(context.Context, string, int64) (bool, error) { return false, nil },
		create: func(context.Context, string, *string) (*models.Program, error) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateName, "")
		},
	}
	svc := NewProgramService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateProgramRequest{Name: "Malaria Control"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateName))
}

func TestProgramServiceGetNotFound(t *testing.T) {
	repo := &stubProgramRepo{
		findByID: func(context.Context, int64) (*models.Program, error) { return nil, sql.ErrNoRows },
	}
	svc := NewProgramService(repo, nil, nil, nil)

	_, err := svc.Get(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestProgramServiceUpdateAllowsOwnName(t *testing.T) {
	repo := &stubProgramRepo{
		findByID: func(_ context.Context, id int64) (*models.Program, error) {
			return &models.Program{ID: id, Name: "Malaria Control"}, nil
		},
		existsByName: func(_ context.Context, name string, excludeID int64) (bool, error) {
			assert.Equal(t, int64(3), excludeID)
			return false, nil
		},
		update: func(_ context.Context, id int64, name string, description *string) (*models.Program, error) {
			return &models.Program{ID: id, Name: name, Description: description}, nil
		},
	}
	profiles := &stubInvalidator{}
	svc := NewProgramService(repo, profiles, nil, nil)

	program, err := svc.Update(context.Background(), 3, UpdateProgramRequest{Name: "Malaria Control"})
	require.NoError(t, err)
	assert.Equal(t, "Malaria Control", program.Name)
	assert.Equal(t, 1, profiles.allCalls)
}

func TestProgramServiceDelete(t *testing.T) {
	repo := &stubProgramRepo{
		delete: func(context.Context, int64) (bool, error) { return true, nil },
	}
	profiles := &stubInvalidator{}
	svc := NewProgramService(repo, profiles, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, 1, profiles.allCalls)
}

func TestProgramServiceDeleteNotFound(t *testing.T) {
	repo := &stubProgramRepo{
		delete: func(context.Context, int64) (bool, error) { return false, nil },
	}
	profiles := &stubInvalidator{}
	svc := NewProgramService(repo, profiles, nil, nil)

	err := svc.Delete(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, profiles.allCalls)
}
