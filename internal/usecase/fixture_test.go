package usecase_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/jointledger/internal/adapter/gateway/fakebank"
	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
	"github.com/iho/jointledger/internal/usecase/mocks"
)

const (
	alice = "party-alice"
	bob   = "party-bob"
	carol = "party-carol"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// fixture wires the use cases to in-memory stores and a fake bank.
// Alice and Bob share the joint account; each has a personal account.
// Carol has only a personal account.
type fixture struct {
	accounts *mocks.MockAccountRepository
	ledger   *mocks.MockLedgerRepository
	outbox   *mocks.MockOutboxRepository
	audit    *mocks.MockAuditRepository
	txMgr    *mocks.MockTransactionManager
	idGen    *mocks.MockIDGenerator
	bank     *fakebank.Bank

	joint, alicePersonal, bobPersonal, carolPersonal *domain.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		accounts: mocks.NewMockAccountRepository(),
		ledger:   mocks.NewMockLedgerRepository(),
		outbox:   mocks.NewMockOutboxRepository(),
		audit:    mocks.NewMockAuditRepository(),
		txMgr:    mocks.NewMockTransactionManager(),
		idGen:    mocks.NewMockIDGenerator(),
		bank:     fakebank.New(fakebank.WithClock(func() time.Time { return fixedNow.Add(-time.Minute) })),
	}

	f.joint = f.addAccount(t, "joint-1", domain.AccountKindJoint, "group-1", "Household", "1000000001", decimal.NewFromInt(500000))
	f.alicePersonal = f.addAccount(t, "alice-1", domain.AccountKindPersonal, alice, "Alice", "2000000001", decimal.NewFromInt(50000))
	f.bobPersonal = f.addAccount(t, "bob-1", domain.AccountKindPersonal, bob, "Bob", "2000000002", decimal.NewFromInt(0))
	f.carolPersonal = f.addAccount(t, "carol-1", domain.AccountKindPersonal, carol, "Carol", "2000000003", decimal.NewFromInt(10000))

	if err := f.accounts.AddJointMember(t.Context(), nil, f.joint.ID, alice, fixedNow); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := f.accounts.AddJointMember(t.Context(), nil, f.joint.ID, bob, fixedNow); err != nil {
		t.Fatalf("add member: %v", err)
	}

	return f
}

func (f *fixture) addAccount(t *testing.T, id string, kind domain.AccountKind, owner, holder, number string, balance decimal.Decimal) *domain.Account {
	t.Helper()

	acc := &domain.Account{
		ID:            id,
		Kind:          kind,
		OwnerID:       owner,
		HolderName:    holder,
		AccountNumber: number,
		BankCode:      "088",
		OwnerSeqNo:    "seq-" + id,
		Version:       1,
		CreatedAt:     fixedNow,
		UpdatedAt:     fixedNow,
	}
	if err := acc.Validate(); err != nil {
		t.Fatalf("invalid fixture account %s: %v", id, err)
	}

	f.accounts.Put(acc)
	f.bank.OpenAccount(acc, balance)

	return acc
}

func (f *fixture) balance(acc *domain.Account) decimal.Decimal {
	return f.bank.BalanceOf(acc.BankCode, acc.AccountNumber)
}

func (f *fixture) reconciliation(clock func() time.Time) *usecase.ReconciliationUseCase {
	if clock == nil {
		clock = func() time.Time { return fixedNow }
	}
	return usecase.NewReconciliationUseCase(usecase.ReconciliationConfig{
		TxManager:   f.txMgr,
		AccountRepo: f.accounts,
		LedgerRepo:  f.ledger,
		OutboxRepo:  f.outbox,
		Directory:   f.accounts,
		Gateway:     f.bank,
		IDGen:       f.idGen,
		Retry:       fastRetry(),
		Clock:       clock,
		Logger:      zerolog.Nop(),
	})
}

func (f *fixture) transfers(gateway usecase.BankGateway, syncer usecase.AccountSyncer) *usecase.TransferUseCase {
	if gateway == nil {
		gateway = f.bank
	}
	return usecase.NewTransferUseCase(usecase.TransferConfig{
		TxManager:     f.txMgr,
		AccountRepo:   f.accounts,
		Directory:     f.accounts,
		Gateway:       gateway,
		OutboxRepo:    f.outbox,
		IDGen:         f.idGen,
		Syncer:        syncer,
		Retry:         fastRetry(),
		Logger:        zerolog.Nop(),
		CorrelationID: func() string { return "corr-1" },
	})
}

func fastRetry() usecase.RetryPolicy {
	return usecase.RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond}
}

func caller(partyID string) domain.Caller {
	return domain.Caller{PartyID: partyID}
}

func strPtr(s string) *string {
	return &s
}
