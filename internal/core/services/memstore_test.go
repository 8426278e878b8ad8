package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory LedgerStore. WithTx serializes transactions and works on a
// copy of the state that is swapped in only when fn succeeds.
type memStore struct {
	mu     sync.Mutex
	state  memState
	txErr  error // returned by the next WithTx when set
	txRuns int
	// lockFaults fails every lock touching the keyed owner or transaction id.
	lockFaults map[string]error
}

type memState struct {
	syncs  map[string]domain.SyncAccount  // by owner
	asyncs map[string]domain.AsyncAccount // by owner
	txns   map[string]domain.Transaction
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		syncs:  map[string]domain.SyncAccount{},
		asyncs: map[string]domain.AsyncAccount{},
		txns:   map[string]domain.Transaction{},
	}}
}

var _ portsrepo.LedgerStore = (*memStore)(nil)

func (s memState) clone() memState {
	c := memState{
		syncs:  make(map[string]domain.SyncAccount, len(s.syncs)),
		asyncs: make(map[string]domain.AsyncAccount, len(s.asyncs)),
		txns:   make(map[string]domain.Transaction, len(s.txns)),
	}
	for k, v := range s.syncs {
		c.syncs[k] = v
	}
	for k, v := range s.asyncs {
		c.asyncs[k] = v
	}
	for k, v := range s.txns {
		c.txns[k] = v
	}
	return c
}

// seed opens a ledger pair for owner with the given balances.
func (m *memStore) seed(owner string, syncBal, asyncBal string, reconciledAt time.Time) (domain.SyncAccount, domain.AsyncAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	syncAcc, asyncAcc := domain.NewLedgerPair("sync-"+owner, "async-"+owner, owner, reconciledAt)
	syncAcc.Balance = decimal.RequireFromString(syncBal)
	asyncAcc.Balance = decimal.RequireFromString(asyncBal)
	m.state.syncs[owner] = syncAcc
	m.state.asyncs[owner] = asyncAcc
	return syncAcc, asyncAcc
}

// failLocks makes every lock on id fail with err until cleared.
func (m *memStore) failLocks(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lockFaults == nil {
		m.lockFaults = map[string]error{}
	}
	if err == nil {
		delete(m.lockFaults, id)
		return
	}
	m.lockFaults[id] = err
}

// dropSync removes owner's sync ledger, leaving an orphaned async ledger.
func (m *memStore) dropSync(owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state.syncs, owner)
}

func (m *memStore) setBlocked(owner string, blocked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.state.asyncs[owner]
	acc.Blocked = blocked
	m.state.asyncs[owner] = acc
}

func (m *memStore) syncBalance(owner string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.syncs[owner].Balance
}

func (m *memStore) asyncAccount(owner string) domain.AsyncAccount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.asyncs[owner]
}

func (m *memStore) transaction(id string) domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.txns[id]
}

func (m *memStore) transactionsOfKind(kind domain.OperationKind) []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, t := range m.state.txns {
		if t.OperationKind == kind {
			out = append(out, t)
		}
	}
	return out
}

func (m *memStore) FindSyncAccountByOwner(_ context.Context, ownerID string) (*domain.SyncAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.state.syncs[ownerID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (m *memStore) FindAsyncAccountByOwner(_ context.Context, ownerID string) (*domain.AsyncAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.state.asyncs[ownerID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (m *memStore) FindAsyncAccountByID(_ context.Context, accountID string) (*domain.AsyncAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.state.asyncs {
		if acc.AccountID == accountID {
			return &acc, nil
		}
	}
	return nil, fmt.Errorf("async ledger %s: %w", accountID, apperrors.ErrNotFound)
}

func (m *memStore) ListUnblockedAsyncAccounts(_ context.Context) ([]domain.AsyncAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AsyncAccount
	for _, acc := range m.state.asyncs {
		if !acc.Blocked {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OwnerID < out[j].OwnerID })
	return out, nil
}

func (m *memStore) OpenLedgers(_ context.Context, syncAcc domain.SyncAccount, asyncAcc domain.AsyncAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.syncs[syncAcc.OwnerID]; ok {
		return fmt.Errorf("%w: ledgers of %s", apperrors.ErrDuplicate, syncAcc.OwnerID)
	}
	m.state.syncs[syncAcc.OwnerID] = syncAcc
	m.state.asyncs[asyncAcc.OwnerID] = asyncAcc
	return nil
}

func (m *memStore) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.state.txns[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
	}
	return &t, nil
}

func (m *memStore) FindTransactionsByStatus(_ context.Context, status domain.TransactionStatus) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, t := range m.state.txns {
		if t.Status == status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) FindTransactionsByOwnerAndDateRange(ctx context.Context, ownerID string, from, to time.Time) ([]domain.Transaction, error) {
	return m.SearchTransactions(ctx, domain.TransactionFilter{UserID: ownerID, From: &from, To: &to})
}

func (m *memStore) SearchTransactions(_ context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, t := range m.state.txns {
		switch {
		case f.UserID != "" && t.OriginUserID != f.UserID && t.DestUserID != f.UserID,
			f.OriginUserID != "" && t.OriginUserID != f.OriginUserID,
			f.DestUserID != "" && t.DestUserID != f.DestUserID,
			f.Status != "" && t.Status != f.Status,
			f.OperationKind != "" && t.OperationKind != f.OperationKind,
			f.From != nil && t.CreatedAt.Before(*f.From),
			f.To != nil && !t.CreatedAt.Before(*f.To):
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memStore) WithTx(ctx context.Context, fn func(tx portsrepo.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txRuns++
	if m.txErr != nil {
		err := m.txErr
		m.txErr = nil
		return err
	}
	work := m.state.clone()
	if err := fn(&memTx{state: work, faults: m.lockFaults}); err != nil {
		return err
	}
	m.state = work
	return nil
}

type memTx struct {
	state  memState
	faults map[string]error
}

func (t *memTx) fault(ids ...string) error {
	for _, id := range ids {
		if err, ok := t.faults[id]; ok {
			return err
		}
	}
	return nil
}

func (t *memTx) LockSyncAccounts(_ context.Context, ownerIDs []string) (map[string]domain.SyncAccount, error) {
	if err := t.fault(ownerIDs...); err != nil {
		return nil, err
	}
	out := map[string]domain.SyncAccount{}
	for _, id := range ownerIDs {
		if acc, ok := t.state.syncs[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (t *memTx) LockAsyncAccounts(_ context.Context, ownerIDs []string) (map[string]domain.AsyncAccount, error) {
	if err := t.fault(ownerIDs...); err != nil {
		return nil, err
	}
	out := map[string]domain.AsyncAccount{}
	for _, id := range ownerIDs {
		if acc, ok := t.state.asyncs[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (t *memTx) LockTransaction(_ context.Context, transactionID string) (*domain.Transaction, error) {
	if err := t.fault(transactionID); err != nil {
		return nil, err
	}
	txn, ok := t.state.txns[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
	}
	return &txn, nil
}

func (t *memTx) UpdateSyncAccount(_ context.Context, acc domain.SyncAccount) error {
	t.state.syncs[acc.OwnerID] = acc
	return nil
}

func (t *memTx) UpdateAsyncAccount(_ context.Context, acc domain.AsyncAccount) error {
	t.state.asyncs[acc.OwnerID] = acc
	return nil
}

func (t *memTx) InsertTransaction(_ context.Context, txn domain.Transaction) error {
	if _, ok := t.state.txns[txn.TransactionID]; ok {
		return apperrors.ErrDuplicate
	}
	t.state.txns[txn.TransactionID] = txn
	return nil
}

func (t *memTx) UpdateTransaction(_ context.Context, txn domain.Transaction) error {
	t.state.txns[txn.TransactionID] = txn
	return nil
}

func (t *memTx) SumOutgoingSince(_ context.Context, originUserID string, kinds []domain.OperationKind, since time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, txn := range t.state.txns {
		if txn.OriginUserID != originUserID || txn.CreatedAt.Before(since) {
			continue
		}
		if txn.Status == domain.StatusRollback || txn.Status == domain.StatusError {
			continue
		}
		for _, k := range kinds {
			if txn.OperationKind == k {
				sum = sum.Add(txn.Amount)
				break
			}
		}
	}
	return sum, nil
}

// memIdentities is a map-backed IdentityProvider.
type memIdentities struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemIdentities(users ...domain.User) *memIdentities {
	m := &memIdentities{users: map[string]domain.User{}}
	for _, u := range users {
		m.users[u.UserID] = u
	}
	return m
}

func (m *memIdentities) FindIdentity(_ context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	return &u, nil
}

func (m *memIdentities) setKYC(userID string, validated bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[userID]
	u.KYCValidated = validated
	m.users[userID] = u
}

func testUser(id string, kyc bool) domain.User {
	return domain.User{UserID: id, Name: "User " + id, Email: id + "@example.com", Document: "doc-" + id, KYCValidated: kyc}
}

// --- sink mocks ---

type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) Append(ctx context.Context, record domain.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type MockRegulatorySink struct {
	mock.Mock
}

func (m *MockRegulatorySink) Flag(ctx context.Context, flag domain.HighValueFlag) error {
	args := m.Called(ctx, flag)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishStatusChanged(ctx context.Context, event domain.StatusChangedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var (
	_ portsrepo.AuditSink      = (*MockAuditSink)(nil)
	_ portsrepo.RegulatorySink = (*MockRegulatorySink)(nil)
	_ portsrepo.EventPublisher = (*MockEventPublisher)(nil)
)

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sequentialIDs returns ids "txn-1", "txn-2", ...
func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
