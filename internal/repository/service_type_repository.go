package repository

import (
	"context"
	"database/sql"

	"github.com/javiertc/mechanic-shop-api/internal/model"
)

// ServiceTypeRepo provides CRUD operations for the catalog of work
// the shop performs.
type ServiceTypeRepo struct{ db *sql.DB }

func NewServiceTypeRepo(db *sql.DB) *ServiceTypeRepo { return &ServiceTypeRepo{db: db} }

const serviceTypeCols = "id,name,description,price_cents,created_at,updated_at"

func scanServiceType(row interface{ Scan(...any) error }) (model.ServiceType, error) {
	var s model.ServiceType
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Create inserts a service type and returns its ID. Duplicate names
// surface as ErrNameExists.
func (r *ServiceTypeRepo) Create(ctx context.Context, name, description string, priceCents uint64) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO service_types (name, description, price_cents) VALUES (?,?,?)",
		name, description, priceCents)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a service type by id.
func (r *ServiceTypeRepo) GetByID(ctx context.Context, id uint64) (model.ServiceType, error) {
	return scanServiceType(r.db.QueryRowContext(ctx,
		"SELECT "+serviceTypeCols+" FROM service_types WHERE id=? LIMIT 1", id))
}

// List returns all service types ordered by id. The catalog is small
// enough that it is not paginated.
func (r *ServiceTypeRepo) List(ctx context.Context) ([]model.ServiceType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+serviceTypeCols+" FROM service_types ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ServiceType, 0)
	for rows.Next() {
		s, err := scanServiceType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites a service type. Returns sql.ErrNoRows when absent
// and ErrNameExists on a duplicate name.
func (r *ServiceTypeRepo) Update(ctx context.Context, id uint64, name, description string, priceCents uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE service_types SET name=?, description=?, price_cents=? WHERE id=?",
		name, description, priceCents, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrNameExists
		}
		return err
	}
	return requireRow(ctx, r.db, "service_types", id, res)
}

// Delete removes a service type. Returns sql.ErrNoRows when absent.
// Rows in ticket_services are removed by ON DELETE CASCADE.
func (r *ServiceTypeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM service_types WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
