package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/chis-api/internal/models"
	appErrors "github.com/noah-isme/chis-api/pkg/errors"
)

// EnrollmentRepository handles persistence of the client-program join entity.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts an enrollment and reads the enriched row back. The pair
// unique index and the foreign keys are the final guards: a violation maps
// to the corresponding domain error even when the caller's pre-checks
// passed moments earlier.
func (r *EnrollmentRepository) Create(ctx context.Context, clientID, programID int64) (*models.EnrollmentDetail, error) {
	const query = `INSERT INTO enrollments (client_id, program_id) VALUES ($1, $2) RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, clientID, programID); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
		}
		if isForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrReferenceViolation, "")
		}
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	return r.FindDetailByID(ctx, id)
}

// List returns all enrollments enriched with both parent names, newest first.
func (r *EnrollmentRepository) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.client_id, e.program_id, e.enrolled_at, e.status,
        c.name AS client_name, p.name AS program_name
        FROM enrollments e
        JOIN clients c ON c.id = e.client_id
        JOIN programs p ON p.id = e.program_id
        ORDER BY e.enrolled_at DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// FindDetailByID returns an enrollment with both parent names.
// sql.ErrNoRows passes through.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id int64) (*models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.client_id, e.program_id, e.enrolled_at, e.status,
        c.name AS client_name, p.name AS program_name
        FROM enrollments e
        JOIN clients c ON c.id = e.client_id
        JOIN programs p ON p.id = e.program_id
        WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByClientID returns a client's enrollments enriched with program name
// and description, newest first.
func (r *EnrollmentRepository) ListByClientID(ctx context.Context, clientID int64) ([]models.ClientEnrollment, error) {
	const query = `SELECT e.id, e.client_id, e.program_id, e.enrolled_at, e.status,
        p.name AS program_name, p.description AS program_description
        FROM enrollments e
        JOIN programs p ON p.id = e.program_id
        WHERE e.client_id = $1
        ORDER BY e.enrolled_at DESC`
	var enrollments []models.ClientEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, clientID); err != nil {
		return nil, fmt.Errorf("list client enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByProgramID returns a program's enrollments enriched with client
// demographics, newest first.
func (r *EnrollmentRepository) ListByProgramID(ctx context.Context, programID int64) ([]models.ProgramEnrollment, error) {
	const query = `SELECT e.id, e.client_id, e.program_id, e.enrolled_at, e.status,
        c.name AS client_name, c.age AS client_age, c.gender AS client_gender
        FROM enrollments e
        JOIN clients c ON c.id = e.client_id
        WHERE e.program_id = $1
        ORDER BY e.enrolled_at DESC`
	var enrollments []models.ProgramEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, programID); err != nil {
		return nil, fmt.Errorf("list program enrollments: %w", err)
	}
	return enrollments, nil
}

// UpdateStatus sets the status field of an enrollment.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// Delete removes an enrollment directly. It reports false when the id does
// not exist; removal never cascades elsewhere.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete enrollment rows: %w", err)
	}
	return affected > 0, nil
}

// IsEnrolled checks whether the (client, program) pair already has a row.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, clientID, programID int64) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE client_id = $1 AND program_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, clientID, programID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}
