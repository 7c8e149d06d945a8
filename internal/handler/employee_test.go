package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiertc/mechanic-shop-api/internal/repository"
	"github.com/javiertc/mechanic-shop-api/internal/utils"
)

func seedEmployee(t *testing.T, store *fakeEmployeeStore, name, email, role string) uint64 {
	t.Helper()
	id, err := store.Create(context.Background(), name, email, "555-0200", "1 Garage Way",
		"password123", 5200000, role, 4)
	require.NoError(t, err)
	return id
}

func TestEmployeeCreate(t *testing.T) {
	store := newFakeEmployeeStore()
	h := NewEmployeeHandler(testConfig(), store)

	c, rec := newCtx(t, http.MethodPost, "/employees",
		`{"name":"Marco","email":"marco@shop.example.com","phone":"555-0202","address":"2 Garage Way","password":"secretpw","salary":52000,"role":"mechanic"}`)
	require.NoError(t, h.Create(c))
	requireStatus(t, rec, http.StatusCreated)

	emp := decodeBody(t, rec)["employee"].(map[string]any)
	assert.Equal(t, "mechanic", emp["role"])
	assert.Equal(t, float64(52000), emp["salary"])
}

func TestEmployeeCreateRejectsUnknownRole(t *testing.T) {
	h := NewEmployeeHandler(testConfig(), newFakeEmployeeStore())

	c, rec := newCtx(t, http.MethodPost, "/employees",
		`{"name":"Eve","email":"eve@shop.example.com","phone":"555-0203","address":"3 Garage Way","password":"secretpw","salary":1,"role":"owner"}`)
	require.NoError(t, h.Create(c))
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Contains(t, decodeBody(t, rec), "role")
}

func TestEmployeeLoginCarriesRole(t *testing.T) {
	store := newFakeEmployeeStore()
	id := seedEmployee(t, store, "Dana", "dana@shop.example.com", "admin")
	cfg := testConfig()
	h := NewEmployeeHandler(cfg, store)

	c, rec := newCtx(t, http.MethodPost, "/employees/login",
		`{"email":"dana@shop.example.com","password":"password123"}`)
	require.NoError(t, h.Login(c))
	requireStatus(t, rec, http.StatusOK)

	body := decodeBody(t, rec)
	assert.Equal(t, "Successfully Logged In", body["message"])
	uid, role, err := utils.VerifyToken(cfg.JWTSecret, body["auth_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, id, uid)
	assert.Equal(t, "admin", role)
}

func TestEmployeeLoginDoesNotRevealAccounts(t *testing.T) {
	store := newFakeEmployeeStore()
	seedEmployee(t, store, "Dana", "dana@shop.example.com", "admin")
	h := NewEmployeeHandler(testConfig(), store)

	c1, rec1 := newCtx(t, http.MethodPost, "/employees/login",
		`{"email":"ghost@shop.example.com","password":"password123"}`)
	require.NoError(t, h.Login(c1))
	c2, rec2 := newCtx(t, http.MethodPost, "/employees/login",
		`{"email":"dana@shop.example.com","password":"nope"}`)
	require.NoError(t, h.Login(c2))

	requireStatus(t, rec1, http.StatusUnauthorized)
	requireStatus(t, rec2, http.StatusUnauthorized)
	assert.Equal(t, rec1.Body.String(), rec2.Body.String())
}

func TestEmployeeListEnvelope(t *testing.T) {
	store := newFakeEmployeeStore()
	seedEmployee(t, store, "Dana", "dana@shop.example.com", "admin")
	seedEmployee(t, store, "Marco", "marco@shop.example.com", "mechanic")
	h := NewEmployeeHandler(testConfig(), store)

	c, rec := newCtx(t, http.MethodGet, "/employees", "")
	require.NoError(t, h.List(c))
	requireStatus(t, rec, http.StatusOK)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["total_employees"])
	assert.Len(t, body["employees"], 2)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestEmployeeWorkingTickets(t *testing.T) {
	store := newFakeEmployeeStore()
	store.working = []repository.WorkingMechanic{
		{ID: 2, Name: "Marco", TicketCount: 3, TicketIDs: []uint64{1, 4, 7}},
		{ID: 5, Name: "Iris", TicketCount: 1, TicketIDs: []uint64{2}},
	}
	h := NewEmployeeHandler(testConfig(), store)

	c, rec := newCtx(t, http.MethodGet, "/employees/working_tickets", "")
	require.NoError(t, h.WorkingTickets(c))
	requireStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), `"ticket_count":3`)
}

func TestEmployeeDeleteNotFound(t *testing.T) {
	h := NewEmployeeHandler(testConfig(), newFakeEmployeeStore())

	c, rec := newCtx(t, http.MethodDelete, "/employees/9", "", "id", "9")
	require.NoError(t, h.Delete(c))
	requireStatus(t, rec, http.StatusNotFound)
	assert.Equal(t, "Employee not found", decodeBody(t, rec)["message"])
}
