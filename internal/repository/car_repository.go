package repository

import (
	"context"
	"database/sql"

	"github.com/javiertc/mechanic-shop-api/internal/model"
)

// CarRepo provides CRUD operations for cars. Every car belongs to a
// customer; ownership checks against the caller's identity happen in
// the handler layer using the CustomerID loaded here.
type CarRepo struct{ db *sql.DB }

func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{db: db} }

const carCols = "id,make,model,model_year,color,customer_id,created_at,updated_at"

func scanCar(row interface{ Scan(...any) error }) (model.Car, error) {
	var c model.Car
	err := row.Scan(&c.ID, &c.Make, &c.Model, &c.ModelYear, &c.Color,
		&c.CustomerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a car and returns its ID. A missing owning customer
// trips the foreign key and is reported as ErrCustomerNotFound.
func (r *CarRepo) Create(ctx context.Context, make, mdl string, modelYear uint32, color string, customerID uint64) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO cars (make, model, model_year, color, customer_id) VALUES (?,?,?,?,?)",
		make, mdl, modelYear, color, customerID)
	if err != nil {
		if isFKViolation(err) {
			return 0, ErrCustomerNotFound
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a car by id.
func (r *CarRepo) GetByID(ctx context.Context, id uint64) (model.Car, error) {
	return scanCar(r.db.QueryRowContext(ctx,
		"SELECT "+carCols+" FROM cars WHERE id=? LIMIT 1", id))
}

// List returns one page of cars ordered by id plus the total count.
func (r *CarRepo) List(ctx context.Context, page, perPage int) ([]model.Car, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cars").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+carCols+" FROM cars ORDER BY id ASC LIMIT ? OFFSET ?",
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.Car, 0, perPage)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByCustomer returns all cars owned by the given customer, oldest
// first. An empty slice means the customer has no cars (or does not
// exist; callers check the customer separately when that matters).
func (r *CarRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Car, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+carCols+" FROM cars WHERE customer_id=? ORDER BY id ASC", customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the mutable fields of a car. Returns sql.ErrNoRows
// when the id does not exist.
func (r *CarRepo) Update(ctx context.Context, id uint64, make, mdl string, modelYear uint32, color string, customerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cars SET make=?, model=?, model_year=?, color=?, customer_id=? WHERE id=?",
		make, mdl, modelYear, color, customerID, id)
	if err != nil {
		if isFKViolation(err) {
			return ErrCustomerNotFound
		}
		return err
	}
	return requireRow(ctx, r.db, "cars", id, res)
}

// Delete removes a car. Returns sql.ErrNoRows when absent.
func (r *CarRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cars WHERE id=?", id)
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
