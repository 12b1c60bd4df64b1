package game

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/ledger"
	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory fakes shared by the plant and account service tests. They let us
// exercise the real service logic without a database.
// ---------------------------------------------------------------------------

// --- noopTx satisfies pgx.Tx for test use; only Commit/Rollback are called. ---

type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

// --- lockPool serializes transactions the way the account row lock does in
// Postgres: Begin blocks until the previous transaction commits or rolls
// back, so check-then-act sequences inside a transaction are isolated. ---

type lockPool struct {
	mu sync.Mutex
}

func (p *lockPool) Begin(context.Context) (pgx.Tx, error) {
	p.mu.Lock()
	return &lockTx{pool: p}, nil
}

type lockTx struct {
	noopTx
	pool *lockPool
	once sync.Once
}

func (t *lockTx) Commit(context.Context) error   { t.release(); return nil }
func (t *lockTx) Rollback(context.Context) error { t.release(); return nil }
func (t *lockTx) release()                       { t.once.Do(t.pool.mu.Unlock) }

// --- mockUsers implements UserStore and AccountLocker over a map. ---

func uniqueViolation(constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type mockUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMockUsers(us ...*models.User) *mockUsers {
	m := &mockUsers{users: make(map[string]*models.User)}
	for _, u := range us {
		cp := *u
		m.users[u.Email] = &cp
	}
	return m
}

func (m *mockUsers) Insert(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return uniqueViolation("account_pkey")
	}
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return uniqueViolation("account_username_key")
		}
	}
	cp := *u
	m.users[u.Email] = &cp
	return nil
}

func (m *mockUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *mockUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUsers) List(_ context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*models.User
	for _, u := range m.users {
		cp := *u
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Money > list[j].Money })
	return list, nil
}

func (m *mockUsers) GetForUpdate(_ context.Context, _ pgx.Tx, email string) (*models.User, error) {
	return m.GetByEmail(context.Background(), email)
}

func (m *mockUsers) UpdateUsername(_ context.Context, email, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for otherEmail, u := range m.users {
		if otherEmail != email && u.Username == username {
			return false, uniqueViolation("account_username_key")
		}
	}
	u, ok := m.users[email]
	if !ok {
		return false, nil
	}
	u.Username = username
	return true, nil
}

func (m *mockUsers) CycleWeather(_ context.Context, email string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	u.Weather = (u.Weather + 1) % models.WeatherStates
	return u.Weather, nil
}

func (m *mockUsers) IncreasePlantLimit(_ context.Context, _ pgx.Tx, email string, increment int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	u.PlantLimit += increment
	return u.PlantLimit, nil
}

func (m *mockUsers) Delete(_ context.Context, _ pgx.Tx, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; !ok {
		return false, nil
	}
	delete(m.users, email)
	return true, nil
}

func (m *mockUsers) balance(email string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email].Money
}

// --- mockLedger implements ledger.Service against the mockUsers balances. ---

type mockLedger struct {
	users *mockUsers
}

var _ ledger.Service = (*mockLedger)(nil)

func (l *mockLedger) Debit(_ context.Context, _ pgx.Tx, email string, amount float64) (float64, error) {
	l.users.mu.Lock()
	defer l.users.mu.Unlock()
	u, ok := l.users.users[email]
	if !ok {
		return 0, ledger.ErrAccountNotFound
	}
	if u.Money < amount {
		return 0, ledger.ErrInsufficientFunds
	}
	u.Money -= amount
	return u.Money, nil
}

func (l *mockLedger) Credit(_ context.Context, _ pgx.Tx, email string, amount float64) (float64, error) {
	l.users.mu.Lock()
	defer l.users.mu.Unlock()
	u, ok := l.users.users[email]
	if !ok {
		return 0, ledger.ErrAccountNotFound
	}
	u.Money += amount
	return u.Money, nil
}

func (l *mockLedger) Balance(_ context.Context, email string) (float64, error) {
	l.users.mu.Lock()
	defer l.users.mu.Unlock()
	u, ok := l.users.users[email]
	if !ok {
		return 0, ledger.ErrAccountNotFound
	}
	return u.Money, nil
}

// --- mockPlants implements PlantStore and PlantPurger over a map. ---

type mockPlants struct {
	mu     sync.Mutex
	plants map[uuid.UUID]*models.Plant
}

func newMockPlants(ps ...*models.Plant) *mockPlants {
	m := &mockPlants{plants: make(map[uuid.UUID]*models.Plant)}
	for _, p := range ps {
		cp := *p
		m.plants[p.ID] = &cp
	}
	return m
}

func (m *mockPlants) Insert(_ context.Context, _ pgx.Tx, p *models.Plant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.plants[p.ID] = &cp
	return nil
}

func (m *mockPlants) Get(_ context.Context, email string, id uuid.UUID) (*models.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plants[id]
	if !ok || p.OwnerEmail != email {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockPlants) GetForUpdate(ctx context.Context, _ pgx.Tx, email string, id uuid.UUID) (*models.Plant, error) {
	return m.Get(ctx, email, id)
}

func (m *mockPlants) ListByOwner(_ context.Context, email string) ([]*models.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*models.Plant
	for _, p := range m.plants {
		if p.OwnerEmail == email {
			cp := *p
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (m *mockPlants) CountByOwner(_ context.Context, _ pgx.Tx, email string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.plants {
		if p.OwnerEmail == email {
			n++
		}
	}
	return n, nil
}

func (m *mockPlants) SetPosition(_ context.Context, email string, id uuid.UUID, x, y float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plants[id]
	if !ok || p.OwnerEmail != email {
		return false, nil
	}
	p.X, p.Y = x, y
	return true, nil
}

func (m *mockPlants) SetGrowth(_ context.Context, _ pgx.Tx, id uuid.UUID, stage int, growthTimeRemaining, fertilizerRemaining *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plants[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Stage = stage
	p.GrowthTimeRemaining = copyInt(growthTimeRemaining)
	p.FertilizerRemaining = copyInt(fertilizerRemaining)
	return nil
}

func (m *mockPlants) Delete(_ context.Context, _ pgx.Tx, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.plants, id)
	return nil
}

func (m *mockPlants) DeleteByOwner(_ context.Context, _ pgx.Tx, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.plants {
		if p.OwnerEmail == email {
			delete(m.plants, id)
		}
	}
	return nil
}

func (m *mockPlants) count(email string) int {
	n, _ := m.CountByOwner(context.Background(), nil, email)
	return n
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func intPtr(n int) *int { return &n }
