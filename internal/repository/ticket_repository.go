package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/javiertc/mechanic-shop-api/internal/model"
)

// TicketRepo provides the service ticket workflow: transactional
// create/update with set-replacement of the ticket's service types,
// paginated listing, and the idempotent assignment operations on the
// two association tables (ticket_mechanics, ticket_services).
//
// Assignment is performed directly against the association tables
// keyed by the id pair rather than by loading and mutating in-memory
// relation lists, so concurrent assigns cannot race each other into
// duplicate rows.
type TicketRepo struct{ db *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// dateLayout is how service_date travels over the wire.
const dateLayout = "2006-01-02"

// TicketFields carries the scalar columns of a ticket for create and
// update. Relation sets are passed separately as service type ids.
type TicketFields struct {
	ServiceDate   time.Time
	VIN           string
	CarIssue      string
	IsMajorDamage bool
	CustomerID    uint64
	CarID         uint64
}

// ServiceTypeRow is the JSON view of a service type embedded in
// ticket responses.
type ServiceTypeRow struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// TicketDetail is the JSON view of a ticket including both relation
// sets. The VIN key keeps its upper-case spelling for compatibility
// with existing clients.
type TicketDetail struct {
	ID            uint64           `json:"id"`
	ServiceDate   string           `json:"service_date"`
	VIN           string           `json:"VIN"`
	CarIssue      string           `json:"car_issue"`
	IsMajorDamage bool             `json:"is_major_damage"`
	CustomerID    uint64           `json:"customer_id"`
	CarID         uint64           `json:"car_id"`
	Services      []ServiceTypeRow `json:"services"`
	MechanicIDs   []uint64         `json:"mechanic_ids"`
}

// InvalidServiceTypesError reports the service type ids of a bulk
// assignment that do not exist. The whole write is aborted; no ticket
// or relation row is persisted.
type InvalidServiceTypesError struct {
	Missing []uint64
}

func (e *InvalidServiceTypesError) Error() string {
	return fmt.Sprintf("invalid service type ids: %v", e.Missing)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// resolveServiceTypesTx resolves the requested ids inside the write
// transaction. It returns an InvalidServiceTypesError listing every
// missing id when the requested set cannot be resolved in full.
// Duplicate ids in the request collapse into the set.
func resolveServiceTypesTx(ctx context.Context, tx *sql.Tx, ids []uint64) ([]uint64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	set := make(map[uint64]bool, len(ids))
	args := make([]any, 0, len(ids))
	uniq := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !set[id] {
			set[id] = true
			uniq = append(uniq, id)
			args = append(args, id)
		}
	}
	rows, err := tx.QueryContext(ctx,
		"SELECT id FROM service_types WHERE id IN ("+placeholders(len(uniq))+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make(map[uint64]bool, len(uniq))
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []uint64
	for _, id := range uniq {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return nil, &InvalidServiceTypesError{Missing: missing}
	}
	return uniq, nil
}

// checkReferencesTx verifies the owning customer and car inside the
// transaction. The car must belong to the ticket's customer.
func checkReferencesTx(ctx context.Context, tx *sql.Tx, customerID, carID uint64) error {
	var one int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM customers WHERE id=? LIMIT 1", customerID).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return ErrCustomerNotFound
		}
		return err
	}
	var ownerID uint64
	if err := tx.QueryRowContext(ctx, "SELECT customer_id FROM cars WHERE id=? LIMIT 1", carID).Scan(&ownerID); err != nil {
		if err == sql.ErrNoRows {
			return ErrCarNotFound
		}
		return err
	}
	if ownerID != customerID {
		return ErrCarOwnerMismatch
	}
	return nil
}

// replaceServicesTx swaps the ticket's service set for the resolved
// ids: delete-then-bulk-insert inside the caller's transaction, so the
// new set fully replaces the old one (never a union).
func replaceServicesTx(ctx context.Context, tx *sql.Tx, ticketID uint64, serviceTypeIDs []uint64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM ticket_services WHERE ticket_id=?", ticketID); err != nil {
		return err
	}
	if len(serviceTypeIDs) == 0 {
		return nil
	}
	q := "INSERT INTO ticket_services (ticket_id, service_type_id) VALUES "
	args := make([]any, 0, len(serviceTypeIDs)*2)
	for i, id := range serviceTypeIDs {
		if i > 0 {
			q += ","
		}
		q += "(?,?)"
		args = append(args, ticketID, id)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// Create inserts a ticket and its service set as one transaction. The
// requested service type ids are resolved all-or-nothing: any missing
// id aborts the whole write with an InvalidServiceTypesError.
func (r *TicketRepo) Create(ctx context.Context, f TicketFields, serviceTypeIDs []uint64) (*TicketDetail, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkReferencesTx(ctx, tx, f.CustomerID, f.CarID); err != nil {
		return nil, err
	}
	resolved, err := resolveServiceTypesTx(ctx, tx, serviceTypeIDs)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO service_tickets (service_date, vin, car_issue, is_major_damage, customer_id, car_id) VALUES (?,?,?,?,?,?)",
		f.ServiceDate.Format(dateLayout), f.VIN, f.CarIssue, f.IsMajorDamage, f.CustomerID, f.CarID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := replaceServicesTx(ctx, tx, uint64(id), resolved); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetDetail(ctx, uint64(id))
}

// Update rewrites the ticket's scalar fields and replaces its service
// set in one transaction, with the same all-or-nothing id resolution
// as Create. Returns sql.ErrNoRows when the ticket does not exist.
func (r *TicketRepo) Update(ctx context.Context, id uint64, f TicketFields, serviceTypeIDs []uint64) (*TicketDetail, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM service_tickets WHERE id=? FOR UPDATE", id).Scan(&one); err != nil {
		return nil, err // sql.ErrNoRows when absent
	}
	if err := checkReferencesTx(ctx, tx, f.CustomerID, f.CarID); err != nil {
		return nil, err
	}
	resolved, err := resolveServiceTypesTx(ctx, tx, serviceTypeIDs)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE service_tickets SET service_date=?, vin=?, car_issue=?, is_major_damage=?, customer_id=?, car_id=? WHERE id=?",
		f.ServiceDate.Format(dateLayout), f.VIN, f.CarIssue, f.IsMajorDamage, f.CustomerID, f.CarID, id); err != nil {
		return nil, err
	}
	if err := replaceServicesTx(ctx, tx, id, resolved); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetDetail(ctx, id)
}

// Delete removes a ticket. Association rows go with it via the store's
// ON DELETE CASCADE. Returns sql.ErrNoRows when absent.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM service_tickets WHERE id=?", id)
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

// detailFrom converts a scanned row into the wire view with empty,
// non-nil relation sets.
func detailFrom(t model.ServiceTicket) TicketDetail {
	return TicketDetail{
		ID:            t.ID,
		ServiceDate:   t.ServiceDate.Format(dateLayout),
		VIN:           t.VIN,
		CarIssue:      t.CarIssue,
		IsMajorDamage: t.IsMajorDamage,
		CustomerID:    t.CustomerID,
		CarID:         t.CarID,
		Services:      []ServiceTypeRow{},
		MechanicIDs:   []uint64{},
	}
}

// GetDetail loads a ticket with its service and mechanic sets.
func (r *TicketRepo) GetDetail(ctx context.Context, id uint64) (*TicketDetail, error) {
	const q = `SELECT id, service_date, vin, car_issue, is_major_damage, customer_id, car_id
	           FROM service_tickets WHERE id=? LIMIT 1`
	var t model.ServiceTicket
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.ServiceDate, &t.VIN, &t.CarIssue, &t.IsMajorDamage,
		&t.CustomerID, &t.CarID,
	); err != nil {
		return nil, err
	}
	det := detailFrom(t)

	const svcQ = `SELECT st.id, st.name, st.description, st.price_cents
	              FROM ticket_services ts
	              JOIN service_types st ON st.id = ts.service_type_id
	              WHERE ts.ticket_id = ?
	              ORDER BY st.id ASC`
	rows, err := r.db.QueryContext(ctx, svcQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s ServiceTypeRow
		var cents uint64
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &cents); err != nil {
			return nil, err
		}
		s.Price = float64(cents) / 100.0
		det.Services = append(det.Services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const mechQ = `SELECT employee_id FROM ticket_mechanics WHERE ticket_id=? ORDER BY employee_id ASC`
	mrows, err := r.db.QueryContext(ctx, mechQ, id)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var eid uint64
		if err := mrows.Scan(&eid); err != nil {
			return nil, err
		}
		det.MechanicIDs = append(det.MechanicIDs, eid)
	}
	if err := mrows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}

// List returns one page of tickets ordered by id ascending (explicit
// ordering keeps pagination stable across calls) plus the total count.
// Services and mechanic ids for the whole page are fetched with one
// query each.
func (r *TicketRepo) List(ctx context.Context, page, perPage int) ([]TicketDetail, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM service_tickets").Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT id, service_date, vin, car_issue, is_major_damage, customer_id, car_id
	           FROM service_tickets ORDER BY id ASC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]TicketDetail, 0, perPage)
	index := make(map[uint64]int)
	for rows.Next() {
		var t model.ServiceTicket
		if err := rows.Scan(&t.ID, &t.ServiceDate, &t.VIN, &t.CarIssue,
			&t.IsMajorDamage, &t.CustomerID, &t.CarID); err != nil {
			return nil, 0, err
		}
		index[t.ID] = len(out)
		out = append(out, detailFrom(t))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 {
		return out, total, nil
	}

	ids := make([]any, 0, len(out))
	for _, d := range out {
		ids = append(ids, d.ID)
	}
	ph := placeholders(len(out))

	svcQ := `SELECT ts.ticket_id, st.id, st.name, st.description, st.price_cents
	         FROM ticket_services ts
	         JOIN service_types st ON st.id = ts.service_type_id
	         WHERE ts.ticket_id IN (` + ph + `)
	         ORDER BY ts.ticket_id, st.id`
	srows, err := r.db.QueryContext(ctx, svcQ, ids...)
	if err != nil {
		return nil, 0, err
	}
	defer srows.Close()
	for srows.Next() {
		var tid uint64
		var s ServiceTypeRow
		var cents uint64
		if err := srows.Scan(&tid, &s.ID, &s.Name, &s.Description, &cents); err != nil {
			return nil, 0, err
		}
		s.Price = float64(cents) / 100.0
		if i, ok := index[tid]; ok {
			out[i].Services = append(out[i].Services, s)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, 0, err
	}

	mechQ := `SELECT ticket_id, employee_id FROM ticket_mechanics
	          WHERE ticket_id IN (` + ph + `)
	          ORDER BY ticket_id, employee_id`
	mrows, err := r.db.QueryContext(ctx, mechQ, ids...)
	if err != nil {
		return nil, 0, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var tid, eid uint64
		if err := mrows.Scan(&tid, &eid); err != nil {
			return nil, 0, err
		}
		if i, ok := index[tid]; ok {
			out[i].MechanicIDs = append(out[i].MechanicIDs, eid)
		}
	}
	if err := mrows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// AssignMechanic adds an employee to a ticket's mechanic set. Both
// rows must exist; the specific missing side is reported. Re-assigning
// an already-assigned pair is a no-op (INSERT IGNORE keyed on the
// composite primary key).
func (r *TicketRepo) AssignMechanic(ctx context.Context, ticketID, employeeID uint64) error {
	if err := r.probeTicket(ctx, ticketID); err != nil {
		return err
	}
	if err := probe(ctx, r.db, "employees", employeeID, ErrEmployeeNotFound); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO ticket_mechanics (ticket_id, employee_id) VALUES (?,?)",
		ticketID, employeeID)
	return err
}

// RemoveMechanic removes an employee from a ticket's mechanic set.
// Removing a pair that is not assigned is a no-op.
func (r *TicketRepo) RemoveMechanic(ctx context.Context, ticketID, employeeID uint64) error {
	if err := r.probeTicket(ctx, ticketID); err != nil {
		return err
	}
	if err := probe(ctx, r.db, "employees", employeeID, ErrEmployeeNotFound); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM ticket_mechanics WHERE ticket_id=? AND employee_id=?",
		ticketID, employeeID)
	return err
}

// AssignServiceType adds one service type to a ticket's service set
// and returns the updated ticket. Idempotent like AssignMechanic.
func (r *TicketRepo) AssignServiceType(ctx context.Context, serviceTypeID, ticketID uint64) (*TicketDetail, error) {
	if err := probe(ctx, r.db, "service_types", serviceTypeID, ErrServiceTypeNotFound); err != nil {
		return nil, err
	}
	if err := r.probeTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO ticket_services (ticket_id, service_type_id) VALUES (?,?)",
		ticketID, serviceTypeID); err != nil {
		return nil, err
	}
	return r.GetDetail(ctx, ticketID)
}

// RemoveServiceType removes one service type from a ticket's service
// set; a no-op when the pair is not present.
func (r *TicketRepo) RemoveServiceType(ctx context.Context, serviceTypeID, ticketID uint64) error {
	if err := probe(ctx, r.db, "service_types", serviceTypeID, ErrServiceTypeNotFound); err != nil {
		return err
	}
	if err := r.probeTicket(ctx, ticketID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM ticket_services WHERE ticket_id=? AND service_type_id=?",
		ticketID, serviceTypeID)
	return err
}

func (r *TicketRepo) probeTicket(ctx context.Context, id uint64) error {
	return probe(ctx, r.db, "service_tickets", id, ErrTicketNotFound)
}

func probe(ctx context.Context, db *sql.DB, table string, id uint64, notFound error) error {
	var one int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return notFound
	}
	return err
}
