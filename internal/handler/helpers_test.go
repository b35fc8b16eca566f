package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chis-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// The service constructors accept anything with the right method set, so the
// handler tests drive real services over these function-field stubs.

type stubProgramStore struct {
	list         func(ctx context.Context) ([]models.Program, error)
	findByID     func(ctx context.Context, id int64) (*models.Program, error)
	existsByName func(ctx context.Context, name string, excludeID int64) (bool, error)
	create       func(ctx context.Context, name string, description *string) (*models.Program, error)
	update       func(ctx context.Context, id int64, name string, description *string) (*models.Program, error)
	delete       func(ctx context.Context, id int64) (bool, error)
}

func (s *stubProgramStore) List(ctx context.Context) ([]models.Program, error) {
	return s.list(ctx)
}

func (s *stubProgramStore) FindByID(ctx context.Context, id int64) (*models.Program, error) {
	return s.findByID(ctx, id)
}

func (s *stubProgramStore) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	return s.existsByName(ctx, name, excludeID)
}

func (s *stubProgramStore) Create(ctx context.Context, name string, description *string) (*models.Program, error) {
	return s.create(ctx, name, description)
}

func (s *stubProgramStore) Update(ctx context.Context, id int64, name string, description *string) (*models.Program, error) {
	return s.update(ctx, id, name, description)
}

func (s *stubProgramStore) Delete(ctx context.Context, id int64) (bool, error) {
	return s.delete(ctx, id)
}

type stubClientStore struct {
	list     func(ctx context.Context) ([]models.Client, error)
	findByID func(ctx context.Context, id int64) (*models.Client, error)
	search   func(ctx context.Context, query string) ([]models.Client, error)
	create   func(ctx context.Context, client *models.Client) (*models.Client, error)
	update   func(ctx context.Context, id int64, client *models.Client) (*models.Client, error)
	delete   func(ctx context.Context, id int64) (bool, error)
}

func (s *stubClientStore) List(ctx context.Context) ([]models.Client, error) {
	return s.list(ctx)
}

func (s *stubClientStore) FindByID(ctx context.Context, id int64) (*models.Client, error) {
	return s.findByID(ctx, id)
}

func (s *stubClientStore) Search(ctx context.Context, query string) ([]models.Client, error) {
	return s.search(ctx, query)
}

func (s *stubClientStore) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	return s.create(ctx, client)
}

func (s *stubClientStore) Update(ctx context.Context, id int64, client *models.Client) (*models.Client, error) {
	return s.update(ctx, id, client)
}

func (s *stubClientStore) Delete(ctx context.Context, id int64) (bool, error) {
	return s.delete(ctx, id)
}

type stubEnrollmentStore struct {
	create         func(ctx context.Context, clientID, programID int64) (*models.EnrollmentDetail, error)
	list           func(ctx context.Context) ([]models.EnrollmentDetail, error)
	findDetailByID func(ctx context.Context, id int64) (*models.EnrollmentDetail, error)
	listByClientID func(ctx context.Context, clientID int64) ([]models.ClientEnrollment, error)
	listByProgram  func(ctx context.Context, programID int64) ([]models.ProgramEnrollment, error)
	updateStatus   func(ctx context.Context, id int64, status models.EnrollmentStatus) error
	delete         func(ctx context.Context, id int64) (bool, error)
	isEnrolled     func(ctx context.Context, clientID, programID int64) (bool, error)
}

func (s *stubEnrollmentStore) Create(ctx context.Context, clientID, programID int64) (*models.EnrollmentDetail, error) {
	return s.create(ctx, clientID, programID)
}

func (s *stubEnrollmentStore) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	return s.list(ctx)
}

func (s *stubEnrollmentStore) FindDetailByID(ctx context.Context, id int64) (*models.EnrollmentDetail, error) {
	return s.findDetailByID(ctx, id)
}

func (s *stubEnrollmentStore) ListByClientID(ctx context.Context, clientID int64) ([]models.ClientEnrollment, error) {
	return s.listByClientID(ctx, clientID)
}

func (s *stubEnrollmentStore) ListByProgramID(ctx context.Context, programID int64) ([]models.ProgramEnrollment, error) {
	return s.listByProgram(ctx, programID)
}

func (s *stubEnrollmentStore) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	return s.updateStatus(ctx, id, status)
}

func (s *stubEnrollmentStore) Delete(ctx context.Context, id int64) (bool, error) {
	return s.delete(ctx, id)
}

func (s *stubEnrollmentStore) IsEnrolled(ctx context.Context, clientID, programID int64) (bool, error) {
	return s.isEnrolled(ctx, clientID, programID)
}

type stubClientFinder struct {
	findByID func(ctx context.Context, id int64) (*models.Client, error)
}

func (s *stubClientFinder) FindByID(ctx context.Context, id int64) (*models.Client, error) {
	return s.findByID(ctx, id)
}

type stubProgramFinder struct {
	findByID func(ctx context.Context, id int64) (*models.Program, error)
}

func (s *stubProgramFinder) FindByID(ctx context.Context, id int64) (*models.Program, error) {
	return s.findByID(ctx, id)
}

type stubClientPrograms struct {
	listByClientID func(ctx context.Context, clientID int64) ([]models.Program, error)
}

func (s *stubClientPrograms) ListByClientID(ctx context.Context, clientID int64) ([]models.Program, error) {
	return s.listByClientID(ctx, clientID)
}

type stubProgramClients struct {
	listByProgramID func(ctx context.Context, programID int64) ([]models.Client, error)
}

func (s *stubProgramClients) ListByProgramID(ctx context.Context, programID int64) ([]models.Client, error) {
	return s.listByProgramID(ctx, programID)
}

type stubClientEnrollments struct {
	listByClientID func(ctx context.Context, clientID int64) ([]models.ClientEnrollment, error)
}

func (s *stubClientEnrollments) ListByClientID(ctx context.Context, clientID int64) ([]models.ClientEnrollment, error) {
	return s.listByClientID(ctx, clientID)
}

type stubProgramEnrollments struct {
	listByProgramID func(ctx context.Context, programID int64) ([]models.ProgramEnrollment, error)
}

func (s *stubProgramEnrollments) ListByProgramID(ctx context.Context, programID int64) ([]models.ProgramEnrollment, error) {
	return s.listByProgramID(ctx, programID)
}

// envelope mirrors the wire contract for assertions.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *envelopeError  `json:"error"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func perform(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
