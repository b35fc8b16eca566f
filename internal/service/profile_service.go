package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/chis-api/internal/models"
	appErrors "github.com/noah-isme/chis-api/pkg/errors"
)

type clientProgramsReader interface {
	ListByClientID(ctx context.Context, clientID int64) ([]models.Program, error)
}

type programClientsReader interface {
	ListByProgramID(ctx context.Context, programID int64) ([]models.Client, error)
}

type clientEnrollmentsReader interface {
	ListByClientID(ctx context.Context, clientID int64) ([]models.ClientEnrollment, error)
}

type profileCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const profileKeyPrefix = "profile:client:"

// ProfileService is the aggregation facade: it composes the three
// repositories to answer cross-entity queries without adding semantics of
// its own. Profile reads go through a best-effort cache; every failure on
// the cache path falls back to the store.
type ProfileService struct {
	clients     clientReader
	programs    programReader
	byClient    clientProgramsReader
	byProgram   programClientsReader
	enrollments clientEnrollmentsReader
	cache       profileCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewProfileService constructs the facade. cache may be nil.
func NewProfileService(clients clientReader, programs programReader, byClient clientProgramsReader, byProgram programClientsReader, enrollments clientEnrollmentsReader, cache profileCache, cacheTTL time.Duration, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		clients:     clients,
		programs:    programs,
		byClient:    byClient,
		byProgram:   byProgram,
		enrollments: enrollments,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// ClientProfile resolves the client, then independently resolves its
// enrollments enriched with program context. A client with no enrollments
// yields an empty sequence, never an error.
func (s *ProfileService) ClientProfile(ctx context.Context, clientID int64) (*models.ClientProfile, error) {
	key := fmt.Sprintf("%s%d", profileKeyPrefix, clientID)
	if s.cache != nil {
		var cached models.ClientProfile
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("profile cache read failed", zap.Int64("client_id", clientID), zap.Error(err))
		}
	}

	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	enrollments, err := s.enrollments.ListByClientID(ctx, clientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client enrollments")
	}
	if enrollments == nil {
		enrollments = []models.ClientEnrollment{}
	}

	profile := &models.ClientProfile{Client: *client, Enrollments: enrollments}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, profile, s.cacheTTL); err != nil {
			s.logger.Warn("profile cache write failed", zap.Int64("client_id", clientID), zap.Error(err))
		}
	}
	return profile, nil
}

// ProgramClients verifies the program exists, then returns its enrolled
// clients sorted by name.
func (s *ProfileService) ProgramClients(ctx context.Context, programID int64) ([]models.Client, error) {
	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	clients, err := s.byProgram.ListByProgramID(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list program clients")
	}
	return clients, nil
}

// ClientPrograms verifies the client exists, then returns the programs the
// client is enrolled in sorted by name.
func (s *ProfileService) ClientPrograms(ctx context.Context, clientID int64) ([]models.Program, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	programs, err := s.byClient.ListByClientID(ctx, clientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list client programs")
	}
	return programs, nil
}

// InvalidateClient drops the cached profile for one client.
func (s *ProfileService) InvalidateClient(ctx context.Context, clientID int64) {
	if s.cache == nil {
		return
	}
	key := fmt.Sprintf("%s%d", profileKeyPrefix, clientID)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("profile cache invalidation failed", zap.Int64("client_id", clientID), zap.Error(err))
	}
}

// InvalidateAll drops every cached profile. Program mutations can touch
// profiles of arbitrarily many clients, so they take this path.
func (s *ProfileService) InvalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, profileKeyPrefix+"*"); err != nil {
		s.logger.Warn("profile cache flush failed", zap.Error(err))
	}
}
