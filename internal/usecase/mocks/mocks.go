package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
)

// MockAccountRepository is an in-memory AccountRepository with version checks.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	members  map[string]string // party -> joint account

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	ClaimVersionFunc     func(ctx context.Context, tx usecase.Transaction, id string, expected int64, updatedAt time.Time) error
	AdvanceWatermarkFunc func(ctx context.Context, tx usecase.Transaction, id string, expected int64, syncedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
		members:  make(map[string]string),
	}
}

// Put stores a copy of account, replacing any previous one.
func (m *MockAccountRepository) Put(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.accounts[account.ID] = &cp
}

// Snapshot returns the stored account without going through the hooks.
func (m *MockAccountRepository) Snapshot(id string) *domain.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[id]
	if !ok {
		return nil
	}
	cp := *acc
	return &cp
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; ok {
		return domain.ErrAccountExists
	}
	for _, acc := range m.accounts {
		if acc.BankCode == account.BankCode && acc.AccountNumber == account.AccountNumber {
			return domain.ErrAccountExists
		}
	}
	cp := *account
	m.accounts[account.ID] = &cp
	onRollback(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.accounts, account.ID)
	})
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	if acc := m.Snapshot(id); acc != nil {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) ClaimVersion(ctx context.Context, tx usecase.Transaction, id string, expected int64, updatedAt time.Time) error {
	if m.ClaimVersionFunc != nil {
		return m.ClaimVersionFunc(ctx, tx, id, expected, updatedAt)
	}
	return m.bump(tx, id, expected, func(acc *domain.Account) {
		acc.UpdatedAt = updatedAt
	})
}

func (m *MockAccountRepository) AdvanceWatermark(ctx context.Context, tx usecase.Transaction, id string, expected int64, syncedAt time.Time) error {
	if m.AdvanceWatermarkFunc != nil {
		return m.AdvanceWatermarkFunc(ctx, tx, id, expected, syncedAt)
	}
	return m.bump(tx, id, expected, func(acc *domain.Account) {
		ts := syncedAt
		acc.LastSyncedAt = &ts
		acc.UpdatedAt = syncedAt
	})
}

func (m *MockAccountRepository) bump(tx usecase.Transaction, id string, expected int64, apply func(*domain.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if acc.Version != expected {
		return domain.ErrVersionConflict
	}
	before := *acc
	acc.Version++
	apply(acc)
	onRollback(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.accounts[id] = &before
	})
	return nil
}

func (m *MockAccountRepository) AddJointMember(ctx context.Context, tx usecase.Transaction, accountID, partyID string, createdAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.members[partyID]; ok {
		return domain.ErrAlreadyJointMember
	}
	m.members[partyID] = accountID
	onRollback(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.members, partyID)
	})
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		cp := *acc
		accounts = append(accounts, &cp)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return page(accounts, limit, offset), nil
}

// JointAccountFor makes the repository usable as an AccountDirectory.
func (m *MockAccountRepository) JointAccountFor(ctx context.Context, partyID string) (*domain.Account, error) {
	m.mu.RLock()
	accountID, ok := m.members[partyID]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNoJointAccount
	}
	return m.GetByID(ctx, accountID)
}

// MockLedgerRepository is an in-memory LedgerRepository.
type MockLedgerRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.LedgerEntry
	order   []string

	InsertFunc func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{
		entries: make(map[string]*domain.LedgerEntry),
	}
}

// All returns every stored entry in insertion order.
func (m *MockLedgerRepository) All() []*domain.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.LedgerEntry, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.entries[id]
		out = append(out, &cp)
	}
	return out
}

func (m *MockLedgerRepository) Insert(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if m.InsertFunc != nil {
		if err := m.InsertFunc(ctx, tx, entry); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.RemoteID != nil {
		for _, e := range m.entries {
			if e.RemoteID != nil && *e.RemoteID == *entry.RemoteID {
				return fmt.Errorf("duplicate remote id %s", *entry.RemoteID)
			}
		}
	}
	cp := *entry
	m.entries[entry.ID] = &cp
	m.order = append(m.order, entry.ID)
	onRollback(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.entries, entry.ID)
		for i, id := range m.order {
			if id == entry.ID {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	})
	return nil
}

func (m *MockLedgerRepository) ExistsByRemoteID(ctx context.Context, tx usecase.Transaction, remoteID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.RemoteID != nil && *e.RemoteID == remoteID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockLedgerRepository) ExistsByFallbackKey(ctx context.Context, tx usecase.Transaction, key domain.FallbackKey) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.FallbackKey().String() == key.String() {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MockLedgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LedgerEntry, error) {
	return m.GetByID(ctx, id)
}

func (m *MockLedgerRepository) UpdateReview(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[entry.ID]
	if !ok {
		return domain.ErrEntryNotFound
	}
	before := *e
	e.ReviewStatus = entry.ReviewStatus
	e.CategoryID = entry.CategoryID
	e.Memo = entry.Memo
	e.UpdatedAt = entry.UpdatedAt
	onRollback(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.entries[entry.ID] = &before
	})
	return nil
}

// ListByAccount orders newest settlement first, like the SQL query.
func (m *MockLedgerRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, id := range m.order {
		if e := m.entries[id]; e.AccountID == accountID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ki := out[i].SettledDate + out[i].SettledTime
		kj := out[j].SettledDate + out[j].SettledTime
		return ki > kj
	})
	return page(out, limit, offset), nil
}

func (m *MockLedgerRepository) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, e := range m.entries {
		if e.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

// MockOutboxRepository is an in-memory OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	onRollback(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, e := range m.events {
			if e == event {
				m.events = append(m.events[:i], m.events[i+1:]...)
				break
			}
		}
	})
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
		}
	}
	return page(out, limit, 0), nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			ts := publishedAt
			e.Published = true
			e.PublishedAt = &ts
		}
	}
	return nil
}

// EventsOfType returns the recorded events with the given type.
func (m *MockOutboxRepository) EventsOfType(eventType string) []*domain.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MockAuditRepository is an in-memory AuditRepository.
type MockAuditRepository struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.AuditLog
	for _, l := range m.logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			out = append(out, l)
		}
	}
	return out, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction undoes writes registered through it unless committed.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	mu        sync.Mutex
	undo      []func()
	committed bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = true
	m.undo = nil
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	m.mu.Lock()
	undo := m.undo
	m.undo = nil
	committed := m.committed
	m.mu.Unlock()

	if !committed {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

func onRollback(tx usecase.Transaction, fn func()) {
	mt, ok := tx.(*MockTransaction)
	if !ok {
		return
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.undo = append(mt.undo, fn)
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseFunc     func(ctx context.Context, key string) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Value returns what is stored under key.
func (m *MockIdempotencyStore) Value(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
