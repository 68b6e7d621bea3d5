package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrotelli01/largebnb/internal/model"
)

// ---------------------------------------------------------------------
// in-memory fakes

type memInventory struct {
	rooms      map[uint64]*model.Room
	properties map[uint64]*model.Property
}

func (m *memInventory) FindRoom(_ context.Context, propertyID, roomID uint64) (*model.Room, error) {
	room, ok := m.rooms[roomID]
	if !ok || room.PropertyID != propertyID {
		return nil, fmt.Errorf("%w: room %d", ErrNotFound, roomID)
	}
	cp := *room
	return &cp, nil
}

func (m *memInventory) FindRoomByID(_ context.Context, roomID uint64) (*model.Room, error) {
	room, ok := m.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: room %d", ErrNotFound, roomID)
	}
	cp := *room
	return &cp, nil
}

func (m *memInventory) FindPropertyByRoom(_ context.Context, roomID uint64) (*model.Property, error) {
	room, ok := m.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: room %d", ErrNotFound, roomID)
	}
	prop, ok := m.properties[room.PropertyID]
	if !ok {
		return nil, fmt.Errorf("%w: property %d", ErrNotFound, room.PropertyID)
	}
	cp := *prop
	return &cp, nil
}

type memReservations struct {
	mu   sync.Mutex
	rows map[string]*model.Reservation
}

func newMemReservations() *memReservations {
	return &memReservations{rows: make(map[string]*model.Reservation)}
}

func (m *memReservations) FindOverlapping(_ context.Context, roomID uint64, checkIn, checkOut time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.rows {
		if r.RoomID == roomID && r.Status != model.StatusCancelled && r.Overlaps(checkIn, checkOut) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReservations) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	cp := *r
	return &cp, nil
}

func (m *memReservations) Create(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *res
	m.rows[res.ID] = &cp
	return nil
}

func (m *memReservations) Update(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[res.ID]; !ok {
		return fmt.Errorf("%w: reservation %s", ErrNotFound, res.ID)
	}
	cp := *res
	m.rows[res.ID] = &cp
	return nil
}

func (m *memReservations) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return fmt.Errorf("%w: reservation %s", ErrNotFound, id)
	}
	r.Status = status
	return nil
}

func (m *memReservations) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// memHolds mimics the lock store: holds carry an expiry deadline and
// expired entries behave as absent, exactly like TTL-evicted keys.
type memHolds struct {
	mu      sync.Mutex
	holds   map[string]*model.Hold
	expiry  map[string]time.Time
	locked  map[uint64]bool
	now     func() time.Time
	putErr  error
	lockErr error
}

func newMemHolds() *memHolds {
	return &memHolds{
		holds:  make(map[string]*model.Hold),
		expiry: make(map[string]time.Time),
		locked: make(map[uint64]bool),
		now:    time.Now,
	}
}

func (m *memHolds) Put(_ context.Context, hold *model.Hold, ttl time.Duration) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *hold
	m.holds[hold.ID] = &cp
	m.expiry[hold.ID] = m.now().Add(ttl)
	return nil
}

func (m *memHolds) Get(_ context.Context, holdID string) (*model.Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.holds[holdID]
	if !ok || m.now().After(m.expiry[holdID]) {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (m *memHolds) Delete(_ context.Context, holdID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holds, holdID)
	delete(m.expiry, holdID)
	return nil
}

func (m *memHolds) ActiveByRoom(_ context.Context, roomID uint64) ([]model.Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Hold
	for id, h := range m.holds {
		if h.RoomID == roomID && !m.now().After(m.expiry[id]) {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (m *memHolds) AcquireRoomLock(_ context.Context, roomID uint64, _ time.Duration) (bool, error) {
	if m.lockErr != nil {
		return false, m.lockErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked[roomID] {
		return false, nil
	}
	m.locked[roomID] = true
	return true, nil
}

func (m *memHolds) ReleaseRoomLock(_ context.Context, roomID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked[roomID] = false
	return nil
}

type memCustomers struct {
	customers map[uint64]*model.Customer
}

func (m *memCustomers) FindCustomer(_ context.Context, userID uint64) (*model.Customer, error) {
	c, ok := m.customers[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %d is not a customer", ErrForbidden, userID)
	}
	cp := *c
	return &cp, nil
}

type fakeGateway struct {
	mu         sync.Mutex
	declineAll bool
	charges    []float64
	refunds    []float64
}

func (g *fakeGateway) Charge(_ context.Context, _ string, amount float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.declineAll {
		return errors.New("card declined")
	}
	g.charges = append(g.charges, amount)
	return nil
}

func (g *fakeGateway) Refund(_ context.Context, _ string, amount float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds = append(g.refunds, amount)
	return nil
}

type fakeGraph struct {
	mu      sync.Mutex
	edges   map[string]model.BookingEdge
	deleted []string
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{edges: make(map[string]model.BookingEdge)}
}

func (g *fakeGraph) UpsertBooking(_ context.Context, edge model.BookingEdge) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges[edge.ReservationID] = edge
	return nil
}

func (g *fakeGraph) DeleteBooking(_ context.Context, reservationID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.edges, reservationID)
	g.deleted = append(g.deleted, reservationID)
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	created   int
	modified  int
	cancelled int
}

func (n *fakeNotifier) BookingCreated(_ context.Context, _, _ uint64, _ string) {
	n.mu.Lock()
	n.created++
	n.mu.Unlock()
}

func (n *fakeNotifier) BookingModified(_ context.Context, _, _ uint64, _ string) {
	n.mu.Lock()
	n.modified++
	n.mu.Unlock()
}

func (n *fakeNotifier) BookingCancelled(_ context.Context, _, _ uint64, _ string) {
	n.mu.Lock()
	n.cancelled++
	n.mu.Unlock()
}

// ---------------------------------------------------------------------
// fixture

type fixture struct {
	engine   *Engine
	inv      *memInventory
	res      *memReservations
	holds    *memHolds
	gateway  *fakeGateway
	graph    *fakeGraph
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	inv := &memInventory{
		rooms: map[uint64]*model.Room{
			10: {
				ID: 10, PropertyID: 1, Name: "Sea View Suite",
				Status:         model.RoomAvailable,
				CapacityAdults: 4, CapacityChildren: 2,
				PricePerNightAdults: 100, PricePerNightChildren: 50,
			},
			11: {
				ID: 11, PropertyID: 1, Name: "Garden Room",
				Status:         model.RoomAvailable,
				CapacityAdults: 2, CapacityChildren: 1,
				PricePerNightAdults: 80, PricePerNightChildren: 40,
			},
			12: {
				ID: 12, PropertyID: 1, Name: "Closed Wing",
				Status:         model.RoomMaintenance,
				CapacityAdults: 2, CapacityChildren: 0,
				PricePerNightAdults: 60,
			},
		},
		properties: map[uint64]*model.Property{
			1: {ID: 1, ManagerID: 99, Name: "Villa Aurora", City: "Catania"},
		},
	}
	res := newMemReservations()
	holds := newMemHolds()
	gateway := &fakeGateway{}
	graph := newFakeGraph()
	notifier := &fakeNotifier{}

	seq := 0
	newID := func() (string, error) {
		seq++
		return fmt.Sprintf("id%032d", seq)[:32], nil
	}

	customers := &memCustomers{customers: map[uint64]*model.Customer{
		7: {
			User: model.User{ID: 7, Role: model.RoleCustomer, Name: "Ada"},
			PaymentMethod: &model.PaymentMethod{
				ID: "pm1", CardType: "VISA", Last4Digits: "4242", GatewayToken: "GTW_TOK_test",
			},
		},
		8: {
			User: model.User{ID: 8, Role: model.RoleCustomer, Name: "Bob"},
			PaymentMethod: &model.PaymentMethod{
				ID: "pm2", CardType: "MASTERCARD", Last4Digits: "5100", GatewayToken: "GTW_TOK_other",
			},
		},
		9: {
			User: model.User{ID: 9, Role: model.RoleCustomer, Name: "NoCard"},
		},
	}}

	return &fixture{
		engine:   NewEngine(inv, res, holds, customers, gateway, graph, notifier, newID),
		inv:      inv,
		res:      res,
		holds:    holds,
		gateway:  gateway,
		graph:    graph,
		notifier: notifier,
	}
}

func futureRange(daysFromNow, nights int) (time.Time, time.Time) {
	in := DateOnly(time.Now()).AddDate(0, 0, daysFromNow)
	return in, in.AddDate(0, 0, nights)
}

func stdRequest(nights int) BookingRequest {
	in, out := futureRange(30, nights)
	return BookingRequest{PropertyID: 1, RoomID: 10, CheckIn: in, CheckOut: out, Adults: 2, Children: 0}
}

// ---------------------------------------------------------------------
// hold creation

func TestInitiateHoldHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.engine.InitiateHold(ctx, 7, stdRequest(3))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPendingPayment, result.Status)
	assert.Equal(t, "Sea View Suite", result.RoomName)
	assert.Equal(t, 600.0, result.TotalPrice) // 3 nights x 2 adults x 100
	assert.Len(t, result.ID, 32)

	hold, err := f.holds.Get(ctx, result.ID)
	require.NoError(t, err)
	require.NotNil(t, hold)
	assert.Equal(t, uint64(7), hold.UserID)

	// Nothing durable yet.
	mine, err := f.res.ListByUser(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, mine)
	assert.Empty(t, f.gateway.charges)
}

func TestInitiateHoldRejectsBadDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, out := futureRange(30, 2)

	req := stdRequest(2)
	req.CheckIn, req.CheckOut = out, in
	_, err := f.engine.InitiateHold(ctx, 7, req)
	assert.ErrorIs(t, err, ErrValidation)

	req = stdRequest(2)
	req.CheckIn = DateOnly(time.Now()).AddDate(0, 0, -1)
	req.CheckOut = DateOnly(time.Now()).AddDate(0, 0, 1)
	_, err = f.engine.InitiateHold(ctx, 7, req)
	assert.ErrorIs(t, err, ErrValidation)

	req = stdRequest(2)
	req.CheckOut = req.CheckIn
	_, err = f.engine.InitiateHold(ctx, 7, req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInitiateHoldRejectsOverCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := stdRequest(2)
	req.Adults = 5
	_, err := f.engine.InitiateHold(ctx, 7, req)
	assert.ErrorIs(t, err, ErrValidation)

	req = stdRequest(2)
	req.Adults = 0
	_, err = f.engine.InitiateHold(ctx, 7, req)
	assert.ErrorIs(t, err, ErrValidation)

	req = stdRequest(2)
	req.Children = 3
	_, err = f.engine.InitiateHold(ctx, 7, req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInitiateHoldRejectsMaintenanceRoom(t *testing.T) {
	f := newFixture(t)

	req := stdRequest(2)
	req.RoomID = 12
	req.Adults = 1
	_, err := f.engine.InitiateHold(context.Background(), 7, req)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestInitiateHoldRejectsUnknownRoom(t *testing.T) {
	f := newFixture(t)

	req := stdRequest(2)
	req.RoomID = 404
	_, err := f.engine.InitiateHold(context.Background(), 7, req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInitiateHoldBlockedByPendingHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.InitiateHold(ctx, 7, stdRequest(3))
	require.NoError(t, err)

	// Second customer, overlapping range, same room.
	_, err = f.engine.InitiateHold(ctx, 8, stdRequest(2))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestInitiateHoldAllowsAdjacentRanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.engine.InitiateHold(ctx, 7, stdRequest(3))
	require.NoError(t, err)

	// Back to back: second check-in equals first check-out.
	req := stdRequest(2)
	req.CheckIn = first.CheckOut
	req.CheckOut = first.CheckOut.AddDate(0, 0, 2)
	_, err = f.engine.InitiateHold(ctx, 8, req)
	assert.NoError(t, err)
}

func TestInitiateHoldExpiredHoldFreesRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.InitiateHold(ctx, 7, stdRequest(3))
	require.NoError(t, err)

	// Jump the fake clock past the TTL.
	f.holds.now = func() time.Time { return time.Now().Add(HoldTTL + time.Minute) }

	_, err = f.engine.InitiateHold(ctx, 8, stdRequest(3))
	assert.NoError(t, err)
}

func TestInitiateHoldRoomLockContention(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.holds.AcquireRoomLock(ctx, 10, roomLockTTL)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.engine.InitiateHold(ctx, 7, stdRequest(2))
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, f.holds.ReleaseRoomLock(ctx, 10))
	_, err = f.engine.InitiateHold(ctx, 7, stdRequest(2))
	assert.NoError(t, err)
}

func TestInitiateHoldReleasesRoomLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.InitiateHold(ctx, 7, stdRequest(2))
	require.NoError(t, err)
	assert.False(t, f.holds.locked[10], "room lock must be released after hold creation")
}

// ---------------------------------------------------------------------
// release

func TestReleaseHoldIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.engine.InitiateHold(ctx, 7, stdRequest(2))
	require.NoError(t, err)

	require.NoError(t, f.engine.ReleaseHold(ctx, 7, result.ID))
	require.NoError(t, f.engine.ReleaseHold(ctx, 7, result.ID))
	require.NoError(t, f.engine.ReleaseHold(ctx, 7, "missing-hold"))

	// Room is bookable again.
	_, err = f.engine.InitiateHold(ctx, 8, stdRequest(2))
	assert.NoError(t, err)
}

func TestReleaseHoldChecksOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.engine.InitiateHold(ctx, 7, stdRequest(2))
	require.NoError(t, err)

	err = f.engine.ReleaseHold(ctx, 8, result.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	hold, err := f.holds.Get(ctx, result.ID)
	require.NoError(t, err)
	assert.NotNil(t, hold)
}

// ---------------------------------------------------------------------
// confirmation

func TestConfirmPaymentHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held, err := f.engine.InitiateHold(ctx, 7, stdRequest(3))
	require.NoError(t, err)

	result, err := f.engine.ConfirmPayment(ctx, 7, held.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusConfirmed, result.Status)
	assert.Equal(t, 600.0, result.TotalPrice)
	assert.Contains(t, result.Message, "4242")

	require.Len(t, f.gateway.charges, 1)
	assert.Equal(t, 600.0, f.gateway.charges[0])

	// Hold consumed, reservation durable.
	hold, err := f.holds.Get(ctx, held.ID)
	require.NoError(t, err)
	assert.Nil(t, hold)

	stored, err := f.res.FindByID(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, stored.Status)

	// Side channels fired.
	assert.Equal(t, 1, f.notifier.created)
	edge, ok := f.graph.edges[result.ID]
	require.True(t, ok)
	assert.Equal(t, uint64(1), edge.PropertyID)
	assert.Equal(t, 600.0, edge.TotalPrice)
}

func TestConfirmPaymentExpiredHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held, err := f.engine.InitiateHold(ctx, 7, stdRequest(2))
	require.NoError(t, err)

	f.holds.now = func() time.Time { return time.Now().Add(HoldTTL + time.Minute) }

	_, err = f.engine.ConfirmPayment(ctx, 7, held.ID)
	assert.ErrorIs(t, err, ErrState)
	assert.Empty(t, f.gateway.charges)
}

func TestConfirmPaymentChecksOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held, err := f.engine.InitiateHold(ctx, 7, stdRequest(2))
	require.NoError(t, err)

	_, err = f.engine.ConfirmPayment(ctx, 8, held.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.gateway.charges)
}

func TestConfirmPaymentRequiresPaymentMethod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := stdRequest(2)
	req.RoomID = 11
	req.Adults = 2
	held, err := f.engine.InitiateHold(ctx, 9, req)
	require.NoError(t, err)

	_, err = f.engine.ConfirmPayment(ctx, 9, held.ID)
	assert.ErrorIs(t, err, ErrState)
}

func TestConfirmPaymentDeclineKeepsHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held, err := f.engine.InitiateHold(ctx, 7, stdRequest(3))
	require.NoError(t, err)

	f.gateway.declineAll = true
	_, err = f.engine.ConfirmPayment(ctx, 7, held.ID)
	assert.ErrorIs(t, err, ErrState)

	// The hold survives so the customer can retry with another card.
	hold, herr := f.holds.Get(ctx, held.ID)
	require.NoError(t, herr)
	require.NotNil(t, hold)

	f.gateway.declineAll = false
	result, err := f.engine.ConfirmPayment(ctx, 7, held.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, result.Status)
}

func TestConfirmPaymentCannotDoubleConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held, err := f.engine.InitiateHold(ctx, 7, stdRequest(3))
	require.NoError(t, err)

	_, err = f.engine.ConfirmPayment(ctx, 7, held.ID)
	require.NoError(t, err)

	// The hold was consumed: a second confirmation finds nothing.
	_, err = f.engine.ConfirmPayment(ctx, 7, held.ID)
	assert.ErrorIs(t, err, ErrState)
	assert.Len(t, f.gateway.charges, 1)
}

func TestConfirmPaymentRefusesOverlappingReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held, err := f.engine.InitiateHold(ctx, 7, stdRequest(3))
	require.NoError(t, err)

	// A confirmed reservation appears out of band for the same range.
	in, out := futureRange(30, 3)
	require.NoError(t, f.res.Create(ctx, &model.Reservation{
		ID: "r-existing", UserID: 8, RoomID: 10,
		Adults: 1, CheckIn: in, CheckOut: out,
		Status: model.StatusConfirmed,
	}))

	_, err = f.engine.ConfirmPayment(ctx, 7, held.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.gateway.charges)
}

func TestConfirmPaymentRefusesRoomPulledFromService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held, err := f.engine.InitiateHold(ctx, 7, stdRequest(2))
	require.NoError(t, err)

	f.inv.rooms[10].Status = model.RoomMaintenance

	_, err = f.engine.ConfirmPayment(ctx, 7, held.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.gateway.charges)
}

func TestConfirmPaymentUsesCurrentRates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held, err := f.engine.InitiateHold(ctx, 7, stdRequest(3))
	require.NoError(t, err)
	assert.Equal(t, 600.0, held.TotalPrice)

	// Manager raises the rate while the customer hesitates.
	f.inv.rooms[10].PricePerNightAdults = 120

	result, err := f.engine.ConfirmPayment(ctx, 7, held.ID)
	require.NoError(t, err)
	assert.Equal(t, 720.0, result.TotalPrice)
	assert.Equal(t, 720.0, f.gateway.charges[0])
}

// ---------------------------------------------------------------------
// modification

func confirmStd(t *testing.T, f *fixture, userID uint64, nights int) *BookingResult {
	t.Helper()
	held, err := f.engine.InitiateHold(context.Background(), userID, stdRequest(nights))
	require.NoError(t, err)
	result, err := f.engine.ConfirmPayment(context.Background(), userID, held.ID)
	require.NoError(t, err)
	return result
}

func TestModifyExtendingStayChargesDifference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := confirmStd(t, f, 7, 2) // 2 nights x 2 adults x 100 = 400
	require.Len(t, f.gateway.charges, 1)

	req := stdRequest(3) // 600 at current rates
	result, err := f.engine.Modify(ctx, 7, booked.ID, req)
	require.NoError(t, err)

	assert.Equal(t, 600.0, result.TotalPrice)
	require.Len(t, f.gateway.charges, 2)
	assert.InDelta(t, 200.0, f.gateway.charges[1], 0.001)
	assert.Empty(t, f.gateway.refunds)
	assert.Equal(t, 1, f.notifier.modified)

	stored, err := f.res.FindByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, req.CheckOut, stored.CheckOut)
}

func TestModifyShorteningStayRefundsDifference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := confirmStd(t, f, 7, 3) // 600

	result, err := f.engine.Modify(ctx, 7, booked.ID, stdRequest(2)) // 400
	require.NoError(t, err)

	assert.Equal(t, 400.0, result.TotalPrice)
	require.Len(t, f.gateway.refunds, 1)
	assert.InDelta(t, 200.0, f.gateway.refunds[0], 0.001)
}

func TestModifyDeclinedChargeLeavesReservationUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := confirmStd(t, f, 7, 2)
	f.gateway.declineAll = true

	_, err := f.engine.Modify(ctx, 7, booked.ID, stdRequest(3))
	assert.ErrorIs(t, err, ErrState)

	stored, err := f.res.FindByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, booked.CheckOut, stored.CheckOut)
}

func TestModifySwitchRoomWithinProperty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := confirmStd(t, f, 7, 2) // room 10, 400

	req := stdRequest(2)
	req.RoomID = 11 // 2 nights x 2 adults x 80 = 320
	result, err := f.engine.Modify(ctx, 7, booked.ID, req)
	require.NoError(t, err)

	assert.Equal(t, uint64(11), result.RoomID)
	assert.Equal(t, "Garden Room", result.RoomName)
	assert.Equal(t, 320.0, result.TotalPrice)
	require.Len(t, f.gateway.refunds, 1)
	assert.InDelta(t, 80.0, f.gateway.refunds[0], 0.001)
}

func TestModifyChecksOwnershipAndState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := confirmStd(t, f, 7, 2)

	_, err := f.engine.Modify(ctx, 8, booked.ID, stdRequest(3))
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.res.UpdateStatus(ctx, booked.ID, model.StatusCancelled))
	_, err = f.engine.Modify(ctx, 7, booked.ID, stdRequest(3))
	assert.ErrorIs(t, err, ErrState)
}

func TestModifyIgnoresOwnReservationInOverlapCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := confirmStd(t, f, 7, 3)

	// Same room, same range, only occupancy changes: the reservation's
	// own dates must not count as a conflict.
	req := stdRequest(3)
	req.Adults = 3
	result, err := f.engine.Modify(ctx, 7, booked.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 900.0, result.TotalPrice)
}

func TestModifyBlockedByOtherReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := confirmStd(t, f, 7, 2)

	// Another confirmed stay right after ours.
	in, out := futureRange(32, 2)
	require.NoError(t, f.res.Create(ctx, &model.Reservation{
		ID: "r-next", UserID: 8, RoomID: 10,
		Adults: 1, CheckIn: in, CheckOut: out,
		Status: model.StatusConfirmed,
	}))

	_, err := f.engine.Modify(ctx, 7, booked.ID, stdRequest(3))
	assert.ErrorIs(t, err, ErrConflict)
}

// ---------------------------------------------------------------------
// cancellation

func TestCancelRefundsAndFreesRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := confirmStd(t, f, 7, 3) // 600

	require.NoError(t, f.engine.Cancel(ctx, 7, booked.ID))

	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, 600.0, f.gateway.refunds[0])

	stored, err := f.res.FindByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, stored.Status)

	assert.Equal(t, 1, f.notifier.cancelled)
	assert.Contains(t, f.graph.deleted, booked.ID)

	// The room is free for the same dates again.
	_, err = f.engine.InitiateHold(ctx, 8, stdRequest(3))
	assert.NoError(t, err)
}

func TestCancelChecksOwnershipAndState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := confirmStd(t, f, 7, 2)

	assert.ErrorIs(t, f.engine.Cancel(ctx, 8, booked.ID), ErrForbidden)

	require.NoError(t, f.engine.Cancel(ctx, 7, booked.ID))
	assert.ErrorIs(t, f.engine.Cancel(ctx, 7, booked.ID), ErrState)

	assert.ErrorIs(t, f.engine.Cancel(ctx, 7, "missing"), ErrNotFound)
}

func TestCancelRefusesPastStay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := DateOnly(time.Now()).AddDate(0, 0, -5)
	require.NoError(t, f.res.Create(ctx, &model.Reservation{
		ID: "r-past", UserID: 7, RoomID: 10,
		Adults: 2, CheckIn: in, CheckOut: in.AddDate(0, 0, 2),
		Status: model.StatusConfirmed,
	}))

	assert.ErrorIs(t, f.engine.Cancel(ctx, 7, "r-past"), ErrState)
	assert.Empty(t, f.gateway.refunds)
}

// ---------------------------------------------------------------------
// listing

func TestListForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := confirmStd(t, f, 7, 3)

	list, err := f.engine.ListForUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, booked.ID, list[0].ID)
	assert.Equal(t, "Sea View Suite", list[0].RoomName)
	assert.Equal(t, 600.0, list[0].TotalPrice)

	other, err := f.engine.ListForUser(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, other)
}
