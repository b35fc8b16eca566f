package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/chis-api/internal/models"
)

const clientColumns = "id, name, age, gender, contact, address, created_at"

// ClientRepository manages persistence for client records.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository constructs a ClientRepository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// List returns all clients sorted by name.
func (r *ClientRepository) List(ctx context.Context) ([]models.Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients ORDER BY name ASC`
	var clients []models.Client
	if err := r.db.SelectContext(ctx, &clients, query); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// FindByID fetches a client by ID. sql.ErrNoRows passes through.
func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*models.Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, id); err != nil {
		return nil, err
	}
	return &client, nil
}

// Search matches clients whose name contains the query as a case-insensitive
// substring, or whose id equals the query when it parses as an integer.
// Results are sorted by name.
func (r *ClientRepository) Search(ctx context.Context, query string) ([]models.Client, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	id, err := strconv.ParseInt(strings.TrimSpace(query), 10, 64)
	if err != nil {
		id = 0 // ids start at 1, so this matches nothing
	}
	const stmt = `SELECT ` + clientColumns + ` FROM clients
        WHERE LOWER(name) LIKE $1 OR id = $2
        ORDER BY name ASC`
	var clients []models.Client
	if err := r.db.SelectContext(ctx, &clients, stmt, pattern, id); err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	return clients, nil
}

// ListByProgramID returns the clients enrolled in a program, sorted by name.
func (r *ClientRepository) ListByProgramID(ctx context.Context, programID int64) ([]models.Client, error) {
	const query = `SELECT c.id, c.name, c.age, c.gender, c.contact, c.address, c.created_at
        FROM clients c
        JOIN enrollments e ON e.client_id = c.id
        WHERE e.program_id = $1
        ORDER BY c.name ASC`
	var clients []models.Client
	if err := r.db.SelectContext(ctx, &clients, query, programID); err != nil {
		return nil, fmt.Errorf("list program clients: %w", err)
	}
	return clients, nil
}

// Create inserts a client and reads the row back for the server-assigned
// id and created_at.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	const query = `INSERT INTO clients (name, age, gender, contact, address)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, client.Name, client.Age, client.Gender, client.Contact, client.Address); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return r.FindByID(ctx, id)
}

// Update replaces the mutable fields of a client, then reads the row back.
func (r *ClientRepository) Update(ctx context.Context, id int64, client *models.Client) (*models.Client, error) {
	const query = `UPDATE clients SET name = $2, age = $3, gender = $4, contact = $5, address = $6 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, client.Name, client.Age, client.Gender, client.Contact, client.Address)
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update client rows: %w", err)
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	return r.FindByID(ctx, id)
}

// Delete removes a client, cascading enrollment deletion in the store.
// It reports false when the id does not exist.
func (r *ClientRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete client rows: %w", err)
	}
	return affected > 0, nil
}
