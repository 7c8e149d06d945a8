package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/javiertc/mechanic-shop-api/internal/model"
	"github.com/javiertc/mechanic-shop-api/internal/utils"
)

// EmployeeRepo provides CRUD operations for employees plus the
// mechanic workload report.
type EmployeeRepo struct{ db *sql.DB }

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{db: db} }

const employeeCols = "id,name,email,phone,address,password_hash,salary_cents,role,created_at,updated_at"

func scanEmployee(row interface{ Scan(...any) error }) (model.Employee, error) {
	var e model.Employee
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Address,
		&e.PasswordHash, &e.SalaryCents, &e.Role, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// Create hashes the password and inserts an employee, returning its ID.
func (r *EmployeeRepo) Create(ctx context.Context, name, email, phone, address, password string, salaryCents uint64, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO employees (name, email, phone, address, password_hash, salary_cents, role) VALUES (?,?,?,?,?,?,?)",
		name, email, phone, address, hash, salaryCents, role)
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

// GetByEmail fetches an employee by normalized email.
func (r *EmployeeRepo) GetByEmail(ctx context.Context, email string) (model.Employee, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanEmployee(r.db.QueryRowContext(ctx,
		"SELECT "+employeeCols+" FROM employees WHERE email=? LIMIT 1", email))
}

// GetByID fetches an employee by id.
func (r *EmployeeRepo) GetByID(ctx context.Context, id uint64) (model.Employee, error) {
	return scanEmployee(r.db.QueryRowContext(ctx,
		"SELECT "+employeeCols+" FROM employees WHERE id=? LIMIT 1", id))
}

// List returns one page of employees ordered by id plus the total count.
func (r *EmployeeRepo) List(ctx context.Context, page, perPage int) ([]model.Employee, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+employeeCols+" FROM employees ORDER BY id ASC LIMIT ? OFFSET ?",
		perPage, utils.Offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.Employee, 0, perPage)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update rewrites the mutable fields of an employee. An empty password
// keeps the stored hash. Returns sql.ErrNoRows when the id is absent.
func (r *EmployeeRepo) Update(ctx context.Context, id uint64, name, email, phone, address, password string, salaryCents uint64, role string, cost int) error {
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
			"UPDATE employees SET name=?, email=?, phone=?, address=?, password_hash=?, salary_cents=?, role=? WHERE id=?",
			name, email, phone, address, hash, salaryCents, role, id)
	} else {
		res, err = r.db.ExecContext(ctx,
			"UPDATE employees SET name=?, email=?, phone=?, address=?, salary_cents=?, role=? WHERE id=?",
			name, email, phone, address, salaryCents, role, id)
	}
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return requireRow(ctx, r.db, "employees", id, res)
}

// Delete removes an employee. Returns sql.ErrNoRows when absent.
// Assignment rows in ticket_mechanics are removed by the store's
// ON DELETE CASCADE.
func (r *EmployeeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM employees WHERE id=?", id)
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

// WorkingMechanic is one row of the workload report: a mechanic with
// at least one assigned ticket.
type WorkingMechanic struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	TicketCount int      `json:"ticket_count"`
	TicketIDs   []uint64 `json:"ticket_ids"`
}

// WorkingTickets returns mechanics that currently have tickets
// assigned, busiest first. Mechanics without tickets are omitted.
func (r *EmployeeRepo) WorkingTickets(ctx context.Context) ([]WorkingMechanic, error) {
	const q = `SELECT e.id, e.name, tm.ticket_id
	           FROM employees e
	           JOIN ticket_mechanics tm ON tm.employee_id = e.id
	           ORDER BY e.id ASC, tm.ticket_id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]WorkingMechanic, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var id, ticketID uint64
		var name string
		if err := rows.Scan(&id, &name, &ticketID); err != nil {
			return nil, err
		}
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			out = append(out, WorkingMechanic{ID: id, Name: name})
		}
		out[i].TicketIDs = append(out[i].TicketIDs, ticketID)
		out[i].TicketCount++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortBusiest(out)
	return out, nil
}

// sortBusiest orders the report busiest mechanic first. The sort is
// stable, so equal counts keep the query's id ordering.
func sortBusiest(out []WorkingMechanic) {
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TicketCount > out[j].TicketCount
	})
}
