package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/javiertc/mechanic-shop-api/internal/model"
	"github.com/javiertc/mechanic-shop-api/internal/utils"
)

// CustomerRepo provides CRUD operations for customers.
type CustomerRepo struct{ db *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerCols = "id,name,email,phone,address,password_hash,role,created_at,updated_at"

func scanCustomer(row interface{ Scan(...any) error }) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.PasswordHash, &c.Role, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create hashes the password and inserts a customer, returning its ID.
// The role column is always "customer"; tokens issued to this account
// carry that role.
func (r *CustomerRepo) Create(ctx context.Context, name, email, phone, address, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO customers (name, email, phone, address, password_hash, role) VALUES (?,?,?,?,?,'customer')",
		name, email, phone, address, hash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a customer by normalized email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanCustomer(r.db.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE email=? LIMIT 1", email))
}

// GetByID fetches a customer by id.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (model.Customer, error) {
	return scanCustomer(r.db.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE id=? LIMIT 1", id))
}

// List returns one page of customers ordered by id plus the total row
// count. The count is computed independently of the window so clients
// can derive the number of pages.
func (r *CustomerRepo) List(ctx context.Context, page, perPage int) ([]model.Customer, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+customerCols+" FROM customers ORDER BY id ASC LIMIT ? OFFSET ?",
		perPage, utils.Offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.Customer, 0, perPage)
	for rows.Next() {
		c, err := scanCustomer(rows)
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

// Update rewrites the mutable scalar fields of a customer. A non-empty
// password is re-hashed; an empty one leaves the stored hash untouched.
// Returns sql.ErrNoRows when the id does not exist.
func (r *CustomerRepo) Update(ctx context.Context, id uint64, name, email, phone, address, password string, cost int) error {
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		res sql.Result
		err error
	)
	if password != "" {
		var hash string
		hash, err = utils.HashPassword(password, cost)
		if err != nil {
			return err
		}
		res, err = r.db.ExecContext(ctx,
			"UPDATE customers SET name=?, email=?, phone=?, address=?, password_hash=? WHERE id=?",
			name, email, phone, address, hash, id)
	} else {
		res, err = r.db.ExecContext(ctx,
			"UPDATE customers SET name=?, email=?, phone=?, address=? WHERE id=?",
			name, email, phone, address, id)
	}
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return requireRow(ctx, r.db, "customers", id, res)
}

// Delete removes a customer. Returns sql.ErrNoRows when absent.
func (r *CustomerRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM customers WHERE id=?", id)
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

// requireRow covers the UPDATE-with-identical-values case: RowsAffected
// is 0 both when the row is missing and when nothing changed, so a
// zero count falls back to an existence probe.
func requireRow(ctx context.Context, db *sql.DB, table string, id uint64, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	return db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id=? LIMIT 1", id).Scan(&one)
}
