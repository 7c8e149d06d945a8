package handler

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/javiertc/mechanic-shop-api/internal/model"
	"github.com/javiertc/mechanic-shop-api/internal/repository"
	"github.com/javiertc/mechanic-shop-api/internal/utils"
)

// In-memory store fakes. They mirror the repository contracts closely
// enough for handler tests: sentinel errors, sql.ErrNoRows on missing
// rows, idempotent relation writes.

type fakeCustomerStore struct {
	customers map[uint64]model.Customer
	nextID    uint64
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{customers: map[uint64]model.Customer{}, nextID: 1}
}

func (f *fakeCustomerStore) Create(_ context.Context, name, email, phone, address, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, c := range f.customers {
		if c.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	id := f.nextID
	f.nextID++
	f.customers[id] = model.Customer{ID: id, Name: name, Email: email, Phone: phone,
		Address: address, PasswordHash: hash, Role: "customer"}
	return id, nil
}

func (f *fakeCustomerStore) GetByEmail(_ context.Context, email string) (model.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, c := range f.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return model.Customer{}, sql.ErrNoRows
}

func (f *fakeCustomerStore) GetByID(_ context.Context, id uint64) (model.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return model.Customer{}, sql.ErrNoRows
	}
	return c, nil
}

func (f *fakeCustomerStore) List(_ context.Context, page, perPage int) ([]model.Customer, int64, error) {
	ids := make([]uint64, 0, len(f.customers))
	for id := range f.customers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	start := utils.Offset(page, perPage)
	out := []model.Customer{}
	for i := start; i < len(ids) && i < start+perPage; i++ {
		out = append(out, f.customers[ids[i]])
	}
	return out, int64(len(ids)), nil
}

func (f *fakeCustomerStore) Update(_ context.Context, id uint64, name, email, phone, address, password string, cost int) error {
	c, ok := f.customers[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.Name, c.Email, c.Phone, c.Address = name, strings.ToLower(strings.TrimSpace(email)), phone, address
	if password != "" {
		hash, err := utils.HashPassword(password, cost)
		if err != nil {
			return err
		}
		c.PasswordHash = hash
	}
	f.customers[id] = c
	return nil
}

func (f *fakeCustomerStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.customers[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.customers, id)
	return nil
}

type fakeCarStore struct {
	cars   map[uint64]model.Car
	nextID uint64
}

func newFakeCarStore() *fakeCarStore {
	return &fakeCarStore{cars: map[uint64]model.Car{}, nextID: 1}
}

func (f *fakeCarStore) Create(_ context.Context, mk, mdl string, modelYear uint32, color string, customerID uint64) (uint64, error) {
	id := f.nextID
	f.nextID++
	f.cars[id] = model.Car{ID: id, Make: mk, Model: mdl, ModelYear: modelYear, Color: color, CustomerID: customerID}
	return id, nil
}

func (f *fakeCarStore) GetByID(_ context.Context, id uint64) (model.Car, error) {
	car, ok := f.cars[id]
	if !ok {
		return model.Car{}, sql.ErrNoRows
	}
	return car, nil
}

func (f *fakeCarStore) List(_ context.Context, page, perPage int) ([]model.Car, int64, error) {
	ids := make([]uint64, 0, len(f.cars))
	for id := range f.cars {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	start := utils.Offset(page, perPage)
	out := []model.Car{}
	for i := start; i < len(ids) && i < start+perPage; i++ {
		out = append(out, f.cars[ids[i]])
	}
	return out, int64(len(ids)), nil
}

func (f *fakeCarStore) ListByCustomer(_ context.Context, customerID uint64) ([]model.Car, error) {
	out := []model.Car{}
	for _, car := range f.cars {
		if car.CustomerID == customerID {
			out = append(out, car)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCarStore) Update(_ context.Context, id uint64, mk, mdl string, modelYear uint32, color string, customerID uint64) error {
	if _, ok := f.cars[id]; !ok {
		return sql.ErrNoRows
	}
	f.cars[id] = model.Car{ID: id, Make: mk, Model: mdl, ModelYear: modelYear, Color: color, CustomerID: customerID}
	return nil
}

func (f *fakeCarStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.cars[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.cars, id)
	return nil
}

type fakeEmployeeStore struct {
	employees map[uint64]model.Employee
	working   []repository.WorkingMechanic
	nextID    uint64
}

func newFakeEmployeeStore() *fakeEmployeeStore {
	return &fakeEmployeeStore{employees: map[uint64]model.Employee{}, nextID: 1}
}

func (f *fakeEmployeeStore) Create(_ context.Context, name, email, phone, address, password string, salaryCents uint64, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range f.employees {
		if e.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	id := f.nextID
	f.nextID++
	f.employees[id] = model.Employee{ID: id, Name: name, Email: email, Phone: phone,
		Address: address, PasswordHash: hash, SalaryCents: salaryCents, Role: role}
	return id, nil
}

func (f *fakeEmployeeStore) GetByEmail(_ context.Context, email string) (model.Employee, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range f.employees {
		if e.Email == email {
			return e, nil
		}
	}
	return model.Employee{}, sql.ErrNoRows
}

func (f *fakeEmployeeStore) GetByID(_ context.Context, id uint64) (model.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return model.Employee{}, sql.ErrNoRows
	}
	return e, nil
}

func (f *fakeEmployeeStore) List(_ context.Context, page, perPage int) ([]model.Employee, int64, error) {
	ids := make([]uint64, 0, len(f.employees))
	for id := range f.employees {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	start := utils.Offset(page, perPage)
	out := []model.Employee{}
	for i := start; i < len(ids) && i < start+perPage; i++ {
		out = append(out, f.employees[ids[i]])
	}
	return out, int64(len(ids)), nil
}

func (f *fakeEmployeeStore) Update(_ context.Context, id uint64, name, email, phone, address, password string, salaryCents uint64, role string, cost int) error {
	e, ok := f.employees[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Name, e.Email, e.Phone, e.Address = name, email, phone, address
	e.SalaryCents, e.Role = salaryCents, role
	if password != "" {
		hash, err := utils.HashPassword(password, cost)
		if err != nil {
			return err
		}
		e.PasswordHash = hash
	}
	f.employees[id] = e
	return nil
}

func (f *fakeEmployeeStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.employees[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.employees, id)
	return nil
}

func (f *fakeEmployeeStore) WorkingTickets(_ context.Context) ([]repository.WorkingMechanic, error) {
	return f.working, nil
}

// fakeTicketStore keeps tickets plus the reference sets the real
// repository validates against.

type fakeTicketStore struct {
	tickets      map[uint64]*repository.TicketDetail
	serviceTypes map[uint64]repository.ServiceTypeRow
	employees    map[uint64]bool
	mechanics    map[uint64]map[uint64]bool // ticket id -> employee id set
	nextID       uint64
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{
		tickets:      map[uint64]*repository.TicketDetail{},
		serviceTypes: map[uint64]repository.ServiceTypeRow{},
		employees:    map[uint64]bool{},
		mechanics:    map[uint64]map[uint64]bool{},
		nextID:       1,
	}
}

func (f *fakeTicketStore) resolve(ids []uint64) ([]repository.ServiceTypeRow, *repository.InvalidServiceTypesError) {
	rows := []repository.ServiceTypeRow{}
	missing := []uint64{}
	seen := map[uint64]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		row, ok := f.serviceTypes[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		rows = append(rows, row)
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return nil, &repository.InvalidServiceTypesError{Missing: missing}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (f *fakeTicketStore) detail(id uint64) *repository.TicketDetail {
	t := *f.tickets[id]
	t.MechanicIDs = []uint64{}
	for mid := range f.mechanics[id] {
		t.MechanicIDs = append(t.MechanicIDs, mid)
	}
	sort.Slice(t.MechanicIDs, func(i, j int) bool { return t.MechanicIDs[i] < t.MechanicIDs[j] })
	return &t
}

func (f *fakeTicketStore) Create(_ context.Context, fields repository.TicketFields, serviceTypeIDs []uint64) (*repository.TicketDetail, error) {
	rows, invalid := f.resolve(serviceTypeIDs)
	if invalid != nil {
		return nil, invalid
	}
	id := f.nextID
	f.nextID++
	f.tickets[id] = &repository.TicketDetail{
		ID:            id,
		ServiceDate:   fields.ServiceDate.Format("2006-01-02"),
		VIN:           fields.VIN,
		CarIssue:      fields.CarIssue,
		IsMajorDamage: fields.IsMajorDamage,
		CustomerID:    fields.CustomerID,
		CarID:         fields.CarID,
		Services:      rows,
	}
	f.mechanics[id] = map[uint64]bool{}
	return f.detail(id), nil
}

func (f *fakeTicketStore) Update(_ context.Context, id uint64, fields repository.TicketFields, serviceTypeIDs []uint64) (*repository.TicketDetail, error) {
	if _, ok := f.tickets[id]; !ok {
		return nil, sql.ErrNoRows
	}
	rows, invalid := f.resolve(serviceTypeIDs)
	if invalid != nil {
		return nil, invalid
	}
	t := f.tickets[id]
	t.ServiceDate = fields.ServiceDate.Format("2006-01-02")
	t.VIN = fields.VIN
	t.CarIssue = fields.CarIssue
	t.IsMajorDamage = fields.IsMajorDamage
	t.CustomerID = fields.CustomerID
	t.CarID = fields.CarID
	t.Services = rows
	return f.detail(id), nil
}

func (f *fakeTicketStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.tickets[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.tickets, id)
	delete(f.mechanics, id)
	return nil
}

func (f *fakeTicketStore) GetDetail(_ context.Context, id uint64) (*repository.TicketDetail, error) {
	if _, ok := f.tickets[id]; !ok {
		return nil, sql.ErrNoRows
	}
	return f.detail(id), nil
}

func (f *fakeTicketStore) List(_ context.Context, page, perPage int) ([]repository.TicketDetail, int64, error) {
	ids := make([]uint64, 0, len(f.tickets))
	for id := range f.tickets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	start := utils.Offset(page, perPage)
	out := []repository.TicketDetail{}
	for i := start; i < len(ids) && i < start+perPage; i++ {
		out = append(out, *f.detail(ids[i]))
	}
	return out, int64(len(ids)), nil
}

func (f *fakeTicketStore) AssignMechanic(_ context.Context, ticketID, employeeID uint64) error {
	if _, ok := f.tickets[ticketID]; !ok {
		return repository.ErrTicketNotFound
	}
	if !f.employees[employeeID] {
		return repository.ErrEmployeeNotFound
	}
	f.mechanics[ticketID][employeeID] = true
	return nil
}

func (f *fakeTicketStore) RemoveMechanic(_ context.Context, ticketID, employeeID uint64) error {
	if _, ok := f.tickets[ticketID]; !ok {
		return repository.ErrTicketNotFound
	}
	if !f.employees[employeeID] {
		return repository.ErrEmployeeNotFound
	}
	delete(f.mechanics[ticketID], employeeID)
	return nil
}

func (f *fakeTicketStore) AssignServiceType(_ context.Context, serviceTypeID, ticketID uint64) (*repository.TicketDetail, error) {
	if _, ok := f.tickets[ticketID]; !ok {
		return nil, repository.ErrTicketNotFound
	}
	row, ok := f.serviceTypes[serviceTypeID]
	if !ok {
		return nil, repository.ErrServiceTypeNotFound
	}
	t := f.tickets[ticketID]
	for _, s := range t.Services {
		if s.ID == serviceTypeID {
			return f.detail(ticketID), nil
		}
	}
	t.Services = append(t.Services, row)
	sort.Slice(t.Services, func(i, j int) bool { return t.Services[i].ID < t.Services[j].ID })
	return f.detail(ticketID), nil
}

func (f *fakeTicketStore) RemoveServiceType(_ context.Context, serviceTypeID, ticketID uint64) error {
	if _, ok := f.tickets[ticketID]; !ok {
		return repository.ErrTicketNotFound
	}
	if _, ok := f.serviceTypes[serviceTypeID]; !ok {
		return repository.ErrServiceTypeNotFound
	}
	t := f.tickets[ticketID]
	out := t.Services[:0]
	for _, s := range t.Services {
		if s.ID != serviceTypeID {
			out = append(out, s)
		}
	}
	t.Services = out
	return nil
}

type fakeServiceTypeStore struct {
	types  map[uint64]model.ServiceType
	nextID uint64
}

func newFakeServiceTypeStore() *fakeServiceTypeStore {
	return &fakeServiceTypeStore{types: map[uint64]model.ServiceType{}, nextID: 1}
}

func (f *fakeServiceTypeStore) Create(_ context.Context, name, description string, priceCents uint64) (uint64, error) {
	for _, s := range f.types {
		if s.Name == name {
			return 0, repository.ErrNameExists
		}
	}
	id := f.nextID
	f.nextID++
	f.types[id] = model.ServiceType{ID: id, Name: name, Description: description, PriceCents: priceCents}
	return id, nil
}

func (f *fakeServiceTypeStore) GetByID(_ context.Context, id uint64) (model.ServiceType, error) {
	s, ok := f.types[id]
	if !ok {
		return model.ServiceType{}, sql.ErrNoRows
	}
	return s, nil
}

func (f *fakeServiceTypeStore) List(_ context.Context) ([]model.ServiceType, error) {
	out := []model.ServiceType{}
	for _, s := range f.types {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeServiceTypeStore) Update(_ context.Context, id uint64, name, description string, priceCents uint64) error {
	if _, ok := f.types[id]; !ok {
		return sql.ErrNoRows
	}
	f.types[id] = model.ServiceType{ID: id, Name: name, Description: description, PriceCents: priceCents}
	return nil
}

func (f *fakeServiceTypeStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.types[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.types, id)
	return nil
}

// Interface conformance.
var (
	_ CustomerStore    = (*fakeCustomerStore)(nil)
	_ CarStore         = (*fakeCarStore)(nil)
	_ EmployeeStore    = (*fakeEmployeeStore)(nil)
	_ TicketStore      = (*fakeTicketStore)(nil)
	_ ServiceTypeStore = (*fakeServiceTypeStore)(nil)
)
