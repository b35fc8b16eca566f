package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/chis-api/internal/models"
	appErrors "github.com/noah-isme/chis-api/pkg/errors"
)

const programColumns = "id, name, description, created_at"

// ProgramRepository handles persistence of health programs.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// List returns all programs sorted by name.
func (r *ProgramRepository) List(ctx context.Context) ([]models.Program, error) {
	const query = `SELECT ` + programColumns + ` FROM programs ORDER BY name ASC`
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// FindByID returns a program by its ID. sql.ErrNoRows passes through so
// callers can map it to a not-found condition.
func (r *ProgramRepository) FindByID(ctx context.Context, id int64) (*models.Program, error) {
	const query = `SELECT ` + programColumns + ` FROM programs WHERE id = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// ListByClientID returns the programs a client is enrolled in, sorted by name.
func (r *ProgramRepository) ListByClientID(ctx context.Context, clientID int64) ([]models.Program, error) {
	const query = `SELECT p.id, p.name, p.description, p.created_at
        FROM programs p
        JOIN enrollments e ON e.program_id = p.id
        WHERE e.client_id = $1
        ORDER BY p.name ASC`
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query, clientID); err != nil {
		return nil, fmt.Errorf("list client programs: %w", err)
	}
	return programs, nil
}

// ExistsByName checks whether another program already holds the name.
func (r *ProgramRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM programs WHERE name = $1"
	args := []interface{}{name}
	if excludeID != 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check program name: %w", err)
	}
	return true, nil
}

// Create inserts a program and reads the row back so callers observe the
// server-assigned id and created_at. A unique violation maps to the
// duplicate-name error even when the advisory pre-check passed.
func (r *ProgramRepository) Create(ctx context.Context, name string, description *string) (*models.Program, error) {
	const query = `INSERT INTO programs (name, description) VALUES ($1, $2) RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, name, description); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateName, "")
		}
		return nil, fmt.Errorf("create program: %w", err)
	}
	return r.FindByID(ctx, id)
}

// Update modifies name and description in place, then reads the row back.
func (r *ProgramRepository) Update(ctx context.Context, id int64, name string, description *string) (*models.Program, error) {
	const query = `UPDATE programs SET name = $2, description = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, name, description)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateName, "")
		}
		return nil, fmt.Errorf("update program: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update program rows: %w", err)
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	return r.FindByID(ctx, id)
}

// Delete removes a program. It reports false when the id does not exist;
// dependent enrollments are wiped by the store's cascade in the same
// statement, so no dangling reference is ever observable.
func (r *ProgramRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete program: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete program rows: %w", err)
	}
	return affected > 0, nil
}
