package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"courier/internal/auth"
	"courier/internal/domain"
	"courier/internal/repository"
	"courier/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ──────────────────────────────────────────────
// FAKE CLOCK
// ──────────────────────────────────────────────

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ──────────────────────────────────────────────
// IN-MEMORY STORE
// ──────────────────────────────────────────────

// memStore implements every repository over maps. WithinTx serializes units
// of work and restores a snapshot when one fails.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	clock  auth.Clock
	nextID int64

	users     map[int64]*domain.User
	customers map[int64]*domain.CustomerProfile
	drivers   map[int64]*domain.DriverProfile
	orders    map[int64]*domain.Order
	locations []domain.OrderLocation
	payments  map[int64]*domain.Payment
	tracking  []*domain.OrderTracking
	proofs    []*domain.ProofOfDelivery
	earnings  []*domain.DriverEarning

	// Error injection
	AppendTrackingError error
	CreateEarningError  error

	// Counters for verification
	TxCount       int32
	RollbackCount int32
}

func newMemStore(clock auth.Clock) *memStore {
	return &memStore{
		clock:     clock,
		users:     make(map[int64]*domain.User),
		customers: make(map[int64]*domain.CustomerProfile),
		drivers:   make(map[int64]*domain.DriverProfile),
		orders:    make(map[int64]*domain.Order),
		payments:  make(map[int64]*domain.Payment),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) Repos() repository.Repositories {
	return repository.Repositories{
		Users:     memUsers{s},
		Customers: memCustomers{s},
		Drivers:   memDrivers{s},
		Orders:    memOrders{s},
		Payments:  memPayments{s},
		Tracking:  memTracking{s},
		Proofs:    memProofs{s},
		Earnings:  memEarnings{s},
	}
}

type memSnapshot struct {
	nextID    int64
	users     map[int64]domain.User
	customers map[int64]domain.CustomerProfile
	drivers   map[int64]domain.DriverProfile
	orders    map[int64]domain.Order
	locations []domain.OrderLocation
	payments  map[int64]domain.Payment
	tracking  []domain.OrderTracking
	proofs    []domain.ProofOfDelivery
	earnings  []domain.DriverEarning
}

func (s *memStore) snapshot() *memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &memSnapshot{
		nextID:    s.nextID,
		users:     make(map[int64]domain.User, len(s.users)),
		customers: make(map[int64]domain.CustomerProfile, len(s.customers)),
		drivers:   make(map[int64]domain.DriverProfile, len(s.drivers)),
		orders:    make(map[int64]domain.Order, len(s.orders)),
		locations: append([]domain.OrderLocation(nil), s.locations...),
		payments:  make(map[int64]domain.Payment, len(s.payments)),
	}
	for k, v := range s.users {
		snap.users[k] = *v
	}
	for k, v := range s.customers {
		snap.customers[k] = *v
	}
	for k, v := range s.drivers {
		snap.drivers[k] = *v
	}
	for k, v := range s.orders {
		snap.orders[k] = copyOrder(v)
	}
	for k, v := range s.payments {
		snap.payments[k] = *v
	}
	for _, v := range s.tracking {
		snap.tracking = append(snap.tracking, *v)
	}
	for _, v := range s.proofs {
		snap.proofs = append(snap.proofs, *v)
	}
	for _, v := range s.earnings {
		snap.earnings = append(snap.earnings, *v)
	}
	return snap
}

func (s *memStore) restore(snap *memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = snap.nextID
	s.users = make(map[int64]*domain.User, len(snap.users))
	for k, v := range snap.users {
		v := v
		s.users[k] = &v
	}
	s.customers = make(map[int64]*domain.CustomerProfile, len(snap.customers))
	for k, v := range snap.customers {
		v := v
		s.customers[k] = &v
	}
	s.drivers = make(map[int64]*domain.DriverProfile, len(snap.drivers))
	for k, v := range snap.drivers {
		v := v
		s.drivers[k] = &v
	}
	s.orders = make(map[int64]*domain.Order, len(snap.orders))
	for k, v := range snap.orders {
		v := v
		s.orders[k] = &v
	}
	s.locations = snap.locations
	s.payments = make(map[int64]*domain.Payment, len(snap.payments))
	for k, v := range snap.payments {
		v := v
		s.payments[k] = &v
	}
	s.tracking = nil
	for _, v := range snap.tracking {
		v := v
		s.tracking = append(s.tracking, &v)
	}
	s.proofs = nil
	for _, v := range snap.proofs {
		v := v
		s.proofs = append(s.proofs, &v)
	}
	s.earnings = nil
	for _, v := range snap.earnings {
		v := v
		s.earnings = append(s.earnings, &v)
	}
}

// WithinTx implements repository.TxManager.
func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	atomic.AddInt32(&s.TxCount, 1)
	snap := s.snapshot()
	if err := fn(ctx, s.Repos()); err != nil {
		atomic.AddInt32(&s.RollbackCount, 1)
		s.restore(snap)
		return err
	}
	return nil
}

func copyOrder(o *domain.Order) domain.Order {
	c := *o
	if o.DriverID != nil {
		id := *o.DriverID
		c.DriverID = &id
	}
	c.Locations = append([]domain.OrderLocation(nil), o.Locations...)
	return c
}

// ── test helpers ──

func (s *memStore) AddUser(u *domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	if u.Status == "" {
		u.Status = domain.UserStatusAvailable
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) AddDriver(email string, status domain.DocumentStatus, available bool) int64 {
	u := s.AddUser(&domain.User{Name: "Driver", Email: email, Role: domain.RoleDriver})
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[u.ID] = &domain.DriverProfile{ID: s.id(), UserID: u.ID, DocumentStatus: status, IsAvailable: available}
	return u.ID
}

func (s *memStore) AddCustomer(email string) int64 {
	u := s.AddUser(&domain.User{Name: "Customer", Email: email, Role: domain.RoleCustomer})
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[u.ID] = &domain.CustomerProfile{ID: s.id(), UserID: u.ID}
	return u.ID
}

func (s *memStore) User(id int64) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

func (s *memStore) Order(id int64) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyOrder(s.orders[id])
}

func (s *memStore) Payment(orderID int64) domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.payments[orderID]
}

func (s *memStore) TrackingCodes(orderID int64) []domain.TrackingCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	var codes []domain.TrackingCode
	for _, t := range s.tracking {
		if t.OrderID == orderID {
			codes = append(codes, t.StatusCode)
		}
	}
	return codes
}

func (s *memStore) Counts() (orders, locations, payments, tracking, proofs, earnings int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders), len(s.locations), len(s.payments), len(s.tracking), len(s.proofs), len(s.earnings)
}

func (s *memStore) Earnings() []domain.DriverEarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.DriverEarning, 0, len(s.earnings))
	for _, e := range s.earnings {
		out = append(out, *e)
	}
	return out
}

func (s *memStore) Proofs(orderID int64) []domain.ProofOfDelivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ProofOfDelivery
	for _, p := range s.proofs {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = r.s.clock.Now()
	u.UpdatedAt = u.CreatedAt
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) UpdatePassword(ctx context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r memUsers) UpdateStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = status
	return nil
}

func (r memUsers) IssueOTP(ctx context.Context, id int64, otp string, expiresAt, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return false, nil
	}
	if u.OTPOutstanding(now) {
		return false, nil
	}
	u.OTP = otp
	u.OTPExpiresAt = expiresAt
	u.OTPLastSentAt = now
	return true, nil
}

func (r memUsers) ClearOTP(ctx context.Context, id int64, otp string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.OTP == "" || u.OTP != otp {
		return false, nil
	}
	u.OTP = ""
	u.OTPExpiresAt = time.Time{}
	return true, nil
}

func (r memUsers) ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.OTP != "" && !now.Before(u.OTPExpiresAt) {
			u.OTP = ""
			u.OTPExpiresAt = time.Time{}
			n++
		}
	}
	return n, nil
}

// ──────────────────────────────────────────────
// MOCK PROFILE REPOSITORIES
// ──────────────────────────────────────────────

type memCustomers struct{ s *memStore }

func (r memCustomers) Create(ctx context.Context, p *domain.CustomerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[p.UserID]; ok {
		return repository.ErrDuplicate
	}
	p.ID = r.s.id()
	c := *p
	r.s.customers[p.UserID] = &c
	return nil
}

func (r memCustomers) GetByUserID(ctx context.Context, userID int64) (*domain.CustomerProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.customers[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

type memDrivers struct{ s *memStore }

func (r memDrivers) Create(ctx context.Context, p *domain.DriverProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.drivers[p.UserID]; ok {
		return repository.ErrDuplicate
	}
	p.ID = r.s.id()
	c := *p
	r.s.drivers[p.UserID] = &c
	return nil
}

func (r memDrivers) GetByUserID(ctx context.Context, userID int64) (*domain.DriverProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.drivers[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r memDrivers) SetAvailability(ctx context.Context, userID int64, available bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.drivers[userID]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsAvailable = available
	return nil
}

func (r memDrivers) SetDocumentStatus(ctx context.Context, userID int64, status domain.DocumentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.drivers[userID]
	if !ok {
		return repository.ErrNotFound
	}
	p.DocumentStatus = status
	if status != domain.DocumentStatusVerified {
		p.IsAvailable = false
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK ORDER REPOSITORY
// ──────────────────────────────────────────────

type memOrders struct{ s *memStore }

func (r memOrders) Create(ctx context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = r.s.id()
	o.CreatedAt = r.s.clock.Now()
	o.UpdatedAt = o.CreatedAt
	c := copyOrder(o)
	c.Locations = nil
	r.s.orders[o.ID] = &c
	return nil
}

func (r memOrders) AddLocation(ctx context.Context, loc *domain.OrderLocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.locations {
		if l.OrderID == loc.OrderID && l.Type == loc.Type {
			return repository.ErrDuplicate
		}
	}
	loc.ID = r.s.id()
	r.s.locations = append(r.s.locations, *loc)
	return nil
}

func (r memOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := copyOrder(o)
	return &c, nil
}

func (r memOrders) GetForCustomer(ctx context.Context, id, customerID int64) (*domain.Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (r memOrders) filter(keep func(*domain.Order) bool) []*domain.Order {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.s.orders {
		if keep(o) {
			c := copyOrder(o)
			out = append(out, &c)
		}
	}
	return out
}

func (r memOrders) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	out := r.filter(func(o *domain.Order) bool { return o.CustomerID == customerID })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r memOrders) ListAvailable(ctx context.Context, limit int) ([]*domain.Order, error) {
	out := r.filter(func(o *domain.Order) bool {
		return o.Status == domain.OrderStatusAccepted && o.DriverID == nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memOrders) ListLocations(ctx context.Context, ids []int64) (map[int64][]domain.OrderLocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[int64][]domain.OrderLocation)
	for _, l := range r.s.locations {
		if want[l.OrderID] {
			out[l.OrderID] = append(out[l.OrderID], l)
		}
	}
	return out, nil
}

func (r memOrders) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (r memOrders) AssignDriver(ctx context.Context, id, driverID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.DriverID != nil || o.Status != domain.OrderStatusAccepted {
		return false, nil
	}
	d := driverID
	o.DriverID = &d
	o.Status = domain.OrderStatusInTransit
	return true, nil
}

func (r memOrders) AdvanceForDriver(ctx context.Context, id, driverID int64, from, to domain.OrderStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || !o.AssignedTo(driverID) || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (r memOrders) Cancel(ctx context.Context, id, customerID int64, from []domain.OrderStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.CustomerID != customerID {
		return false, nil
	}
	for _, s := range from {
		if o.Status == s {
			o.Status = domain.OrderStatusCancelled
			o.DriverID = nil
			return true, nil
		}
	}
	return false, nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT / TRACKING / PROOF / EARNING REPOSITORIES
// ──────────────────────────────────────────────

type memPayments struct{ s *memStore }

func (r memPayments) Create(ctx context.Context, p *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payments[p.OrderID]; ok {
		return repository.ErrDuplicate
	}
	p.ID = r.s.id()
	c := *p
	r.s.payments[p.OrderID] = &c
	return nil
}

func (r memPayments) GetByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r memPayments) MarkCompleted(ctx context.Context, orderID int64, txnID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[orderID]
	if !ok || (p.Status != domain.PaymentStatusPending && p.Status != domain.PaymentStatusFailed) {
		return false, nil
	}
	p.Status = domain.PaymentStatusCompleted
	p.TransactionID = txnID
	return true, nil
}

func (r memPayments) UpdateStatus(ctx context.Context, orderID int64, from, to domain.PaymentStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[orderID]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

type memTracking struct{ s *memStore }

func (r memTracking) Append(ctx context.Context, t *domain.OrderTracking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.AppendTrackingError != nil {
		return r.s.AppendTrackingError
	}
	t.ID = r.s.id()
	t.CreatedAt = r.s.clock.Now()
	c := *t
	r.s.tracking = append(r.s.tracking, &c)
	return nil
}

func (r memTracking) ListByOrder(ctx context.Context, orderID int64) ([]*domain.OrderTracking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.OrderTracking
	for _, t := range r.s.tracking {
		if t.OrderID == orderID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

type memProofs struct{ s *memStore }

func (r memProofs) Create(ctx context.Context, p *domain.ProofOfDelivery) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	c := *p
	r.s.proofs = append(r.s.proofs, &c)
	return nil
}

func (r memProofs) ListByOrder(ctx context.Context, orderID int64) ([]*domain.ProofOfDelivery, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.ProofOfDelivery
	for _, p := range r.s.proofs {
		if p.OrderID == orderID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

type memEarnings struct{ s *memStore }

func (r memEarnings) Create(ctx context.Context, e *domain.DriverEarning) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.CreateEarningError != nil {
		return r.s.CreateEarningError
	}
	for _, existing := range r.s.earnings {
		if existing.OrderID == e.OrderID {
			return repository.ErrDuplicate
		}
	}
	e.ID = r.s.id()
	c := *e
	r.s.earnings = append(r.s.earnings, &c)
	return nil
}

func (r memEarnings) ListByDriver(ctx context.Context, driverID int64) ([]*domain.DriverEarning, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.DriverEarning
	for i := len(r.s.earnings) - 1; i >= 0; i-- {
		if e := r.s.earnings[i]; e.DriverID == driverID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memEarnings) SumPaid(ctx context.Context, driverID int64) (domain.Cents, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total domain.Cents
	for _, e := range r.s.earnings {
		if e.DriverID == driverID && e.Status == domain.EarningStatusPaid {
			total += e.Amount
		}
	}
	return total, nil
}

// ──────────────────────────────────────────────
// MOCK COLLABORATORS
// ──────────────────────────────────────────────

// MockMailer records passcodes instead of sending them.
type MockMailer struct {
	mu    sync.Mutex
	codes map[string][]string

	SendError error
	SendCount int32
}

func NewMockMailer() *MockMailer {
	return &MockMailer{codes: make(map[string][]string)}
}

func (m *MockMailer) SendOTP(ctx context.Context, email, code string, expiresAt time.Time) error {
	atomic.AddInt32(&m.SendCount, 1)
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = append(m.codes[email], code)
	return nil
}

func (m *MockMailer) LastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	codes := m.codes[email]
	if len(codes) == 0 {
		return ""
	}
	return codes[len(codes)-1]
}

// sequenceCodes hands out 100001, 100002, ...
type sequenceCodes struct {
	n int64
}

func (g *sequenceCodes) Generate() (string, error) {
	return fmt.Sprintf("%06d", 100000+atomic.AddInt64(&g.n, 1)), nil
}

// stubGateway approves charges unless told otherwise.
type stubGateway struct {
	ChargeError error
	Decline     bool

	ChargeCount int32
	RefundCount int32
}

func (g *stubGateway) Charge(ctx context.Context, req service.ChargeRequest) (*service.ChargeResult, error) {
	n := atomic.AddInt32(&g.ChargeCount, 1)
	if g.ChargeError != nil {
		return nil, g.ChargeError
	}
	if g.Decline {
		return &service.ChargeResult{Approved: false}, nil
	}
	return &service.ChargeResult{TransactionID: fmt.Sprintf("txn_%d_%d", req.OrderID, n), Approved: true}, nil
}

func (g *stubGateway) Refund(ctx context.Context, transactionID string, amount domain.Cents) error {
	atomic.AddInt32(&g.RefundCount, 1)
	return nil
}

// MockNotifier counts notifications.
type MockNotifier struct {
	Count int32
}

func (n *MockNotifier) NotifyPaymentComplete(ctx context.Context, order *domain.Order) error {
	atomic.AddInt32(&n.Count, 1)
	return nil
}

func (n *MockNotifier) NotifyDriverAssigned(ctx context.Context, order *domain.Order) error {
	atomic.AddInt32(&n.Count, 1)
	return nil
}

func (n *MockNotifier) NotifyPickedUp(ctx context.Context, order *domain.Order) error {
	atomic.AddInt32(&n.Count, 1)
	return nil
}

func (n *MockNotifier) NotifyDelivered(ctx context.Context, order *domain.Order, earning *domain.DriverEarning) error {
	atomic.AddInt32(&n.Count, 1)
	return nil
}

func (n *MockNotifier) NotifyOrderCancelled(ctx context.Context, order *domain.Order, driverID *int64) error {
	atomic.AddInt32(&n.Count, 1)
	return nil
}

// MockLocker is an in-process SetNX lock table. Each acquisition gets its
// own generation so a stale release cannot free a newer holder.
type MockLocker struct {
	mu   sync.Mutex
	held map[int64]uint64
	gen  uint64

	AcquireError error
	AcquireCount int32
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: make(map[int64]uint64)}
}

func (l *MockLocker) acquire(id int64) (func(context.Context) error, bool, error) {
	atomic.AddInt32(&l.AcquireCount, 1)
	if l.AcquireError != nil {
		return nil, false, l.AcquireError
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[id]; ok {
		return nil, false, nil
	}
	l.gen++
	g := l.gen
	l.held[id] = g
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[id] == g {
			delete(l.held, id)
		}
		return nil
	}, true, nil
}

// Hold marks id as locked by someone else.
func (l *MockLocker) Hold(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.held[id] = l.gen
}

// Held reports whether id is currently locked.
func (l *MockLocker) Held(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[id]
	return ok
}

func (l *MockLocker) AcquireOTPLock(ctx context.Context, userID int64, ttl time.Duration) (func(context.Context) error, bool, error) {
	return l.acquire(userID)
}

func (l *MockLocker) AcquirePaymentLock(ctx context.Context, orderID int64, ttl time.Duration) (func(context.Context) error, bool, error) {
	return l.acquire(orderID)
}

// plainHasher stores passwords with a prefix so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }

func (plainHasher) Compare(hash, pw string) error {
	if hash != "hashed:"+pw {
		return auth.ErrPasswordMismatch
	}
	return nil
}

var (
	_ repository.TxManager   = (*memStore)(nil)
	_ service.Mailer         = (*MockMailer)(nil)
	_ service.PaymentGateway = (*stubGateway)(nil)
	_ service.Notifier       = (*MockNotifier)(nil)
	_ service.OTPLocker      = (*MockLocker)(nil)
	_ service.PaymentLocker  = (*MockLocker)(nil)
)
