package service

import (
	"context"
	"time"

	"github.com/noah-isme/chis-api/internal/models"
)

// Function-field stubs back the service tests. A nil field means the test
// does not expect that call; reaching it panics and fails the test loudly.

type stubProgramRepo struct {
	list         func(ctx context.Context) ([]models.Program, error)
	findByID     func(ctx context.Context, id int64) (*models.Program, error)
	existsByName func(ctx context.Context, name string, excludeID int64) (bool, error)
	create       func(ctx context.Context, name string, description *string) (*models.Program, error)
	update       func(ctx context.Context, id int64, name string, description *string) (*models.Program, error)
	delete       func(ctx context.Context, id int64) (bool, error)
}

func (s *stubProgramRepo) List(ctx context.Context) ([]models.Program, error) {
	return s.list(ctx)
}

func (s *stubProgramRepo) FindByID(ctx context.Context, id int64) (*models.Program, error) {
	return s.findByID(ctx, id)
}

func (s *stubProgramRepo) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	return s.existsByName(ctx, name, excludeID)
}

func (s *stubProgramRepo) Create(ctx context.Context, name string, description *string) (*models.Program, error) {
	return s.create(ctx, name, description)
}

func (s *stubProgramRepo) Update(ctx context.Context, id int64, name string, description *string) (*models.Program, error) {
	return s.update(ctx, id, name, description)
}

func (s *stubProgramRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return s.delete(ctx, id)
}

type stubClientRepo struct {
	list     func(ctx context.Context) ([]models.Client, error)
	findByID func(ctx context.Context, id int64) (*models.Client, error)
	search   func(ctx context.Context, query string) ([]models.Client, error)
	create   func(ctx context.Context, client *models.Client) (*models.Client, error)
	update   func(ctx context.Context, id int64, client *models.Client) (*models.Client, error)
	delete   func(ctx context.Context, id int64) (bool, error)
}

func (s *stubClientRepo) List(ctx context.Context) ([]models.Client, error) {
	return s.list(ctx)
}

func (s *stubClientRepo) FindByID(ctx context.Context, id int64) (*models.Client, error) {
	return s.findByID(ctx, id)
}

func (s *stubClientRepo) Search(ctx context.Context, query string) ([]models.Client, error) {
	return s.search(ctx, query)
}

func (s *stubClientRepo) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	return s.create(ctx, client)
}

func (s *stubClientRepo) Update(ctx context.Context, id int64, client *models.Client) (*models.Client, error) {
	return s.update(ctx, id, client)
}

func (s *stubClientRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return s.delete(ctx, id)
}

type stubEnrollmentRepo struct {
	create         func(ctx context.Context, clientID, programID int64) (*models.EnrollmentDetail, error)
	list           func(ctx context.Context) ([]models.EnrollmentDetail, error)
	findDetailByID func(ctx context.Context, id int64) (*models.EnrollmentDetail, error)
	listByClientID func(ctx context.Context, clientID int64) ([]models.ClientEnrollment, error)
	listByProgram  func(ctx context.Context, programID int64) ([]models.ProgramEnrollment, error)
	updateStatus   func(ctx context.Context, id int64, status models.EnrollmentStatus) error
	delete         func(ctx context.Context, id int64) (bool, error)
	isEnrolled     func(ctx context.Context, clientID, programID int64) (bool, error)
}

func (s *stubEnrollmentRepo) Create(ctx context.Context, clientID, programID int64) (*models.EnrollmentDetail, error) {
	return s.create(ctx, clientID, programID)
}

func (s *stubEnrollmentRepo) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	return s.list(ctx)
}

func (s *stubEnrollmentRepo) FindDetailByID(ctx context.Context, id int64) (*models.EnrollmentDetail, error) {
	return s.findDetailByID(ctx, id)
}

func (s *stubEnrollmentRepo) ListByClientID(ctx context.Context, clientID int64) ([]models.ClientEnrollment, error) {
	return s.listByClientID(ctx, clientID)
}

func (s *stubEnrollmentRepo) ListByProgramID(ctx context.Context, programID int64) ([]models.ProgramEnrollment, error) {
	return s.listByProgram(ctx, programID)
}

func (s *stubEnrollmentRepo) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	return s.updateStatus(ctx, id, status)
}

func (s *stubEnrollmentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return s.delete(ctx, id)
}

func (s *stubEnrollmentRepo) IsEnrolled(ctx context.Context, clientID, programID int64) (bool, error) {
	return s.isEnrolled(ctx, clientID, programID)
}

type stubClientReader struct {
	findByID func(ctx context.Context, id int64) (*models.Client, error)
}

func (s *stubClientReader) FindByID(ctx context.Context, id int64) (*models.Client, error) {
	return s.findByID(ctx, id)
}

type stubProgramReader struct {
	findByID func(ctx context.Context, id int64) (*models.Program, error)
}

func (s *stubProgramReader) FindByID(ctx context.Context, id int64) (*models.Program, error) {
	return s.findByID(ctx, id)
}

type stubClientProgramsReader struct {
	listByClientID func(ctx context.Context, clientID int64) ([]models.Program, error)
}

func (s *stubClientProgramsReader) ListByClientID(ctx context.Context, clientID int64) ([]models.Program, error) {
	return s.listByClientID(ctx, clientID)
}

type stubProgramClientsReader struct {
	listByProgramID func(ctx context.Context, programID int64) ([]models.Client, error)
}

func (s *stubProgramClientsReader) ListByProgramID(ctx context.Context, programID int64) ([]models.Client, error) {
	return s.listByProgramID(ctx, programID)
}

type stubClientEnrollmentsReader struct {
	listByClientID func(ctx context.Context, clientID int64) ([]models.ClientEnrollment, error)
}

func (s *stubClientEnrollmentsReader) ListByClientID(ctx context.Context, clientID int64) ([]models.ClientEnrollment, error) {
	return s.listByClientID(ctx, clientID)
}

type stubProgramEnrollmentsReader struct {
	listByProgramID func(ctx context.Context, programID int64) ([]models.ProgramEnrollment, error)
}

func (s *stubProgramEnrollmentsReader) ListByProgramID(ctx context.Context, programID int64) ([]models.ProgramEnrollment, error) {
	return s.listByProgramID(ctx, programID)
}

// stubInvalidator records which invalidation paths a write took.
type stubInvalidator struct {
	clientIDs []int64
	allCalls  int
}

func (s *stubInvalidator) InvalidateClient(_ context.Context, clientID int64) {
	s.clientIDs = append(s.clientIDs, clientID)
}

func (s *stubInvalidator) InvalidateAll(_ context.Context) {
	s.allCalls++
}

// stubCache is an in-memory profileCache for facade tests.
type stubCache struct {
	setCalls int
	delKeys  []string
	patterns []string
	get      func(ctx context.Context, key string, dest interface{}) error
	set      func(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

func (s *stubCache) Get(ctx context.Context, key string, dest interface{}) error {
	return s.get(ctx, key, dest)
}

func (s *stubCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.setCalls++
	if s.set != nil {
		return s.set(ctx, key, value, ttl)
	}
	return nil
}

func (s *stubCache) Delete(_ context.Context, key string) error {
	s.delKeys = append(s.delKeys, key)
	return nil
}

func (s *stubCache) DeleteByPattern(_ context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}
