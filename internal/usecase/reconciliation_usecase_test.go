package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
	"github.com/iho/jointledger/internal/usecase/mocks"
)

func remoteTx(id *string, date, clock string, amount string) domain.RemoteTransaction {
	return domain.RemoteTransaction{
		RemoteID:    id,
		Date:        date,
		Time:        clock,
		Direction:   domain.DirectionCredit,
		Amount:      decimal.RequireFromString(amount),
		Memo:        "salary",
		PostBalance: decimal.NewFromInt(600000),
	}
}

func (f *fixture) settle(acc *domain.Account, recs ...domain.RemoteTransaction) {
	for _, rec := range recs {
		f.bank.Settle(acc.BankCode, acc.AccountNumber, rec)
	}
}

func TestReconciliation_Sync_ImportsThenNothingNew(t *testing.T) {
	f := newFixture(t)
	f.settle(f.joint,
		remoteTx(strPtr("r-1"), "20260310", "090000", "100"),
		remoteTx(strPtr("r-2"), "20260311", "090000", "200"),
		remoteTx(strPtr("r-3"), "20260312", "090000", "300"),
	)
	uc := f.reconciliation(nil)

	n, err := uc.Sync(context.Background(), f.joint.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 imported, got %d", n)
	}

	n, err = uc.Sync(context.Background(), f.joint.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 imported on second sync, got %d", n)
	}

	for _, e := range f.ledger.All() {
		if e.ReviewStatus != domain.ReviewStatusPending || e.CategoryID != nil || e.CounterpartyFrom != nil {
			t.Errorf("imported entry should be pending and unclassified: %+v", e)
		}
	}

	acc := f.accounts.Snapshot(f.joint.ID)
	if acc.LastSyncedAt == nil || !acc.LastSyncedAt.Equal(fixedNow) {
		t.Errorf("expected watermark %v, got %v", fixedNow, acc.LastSyncedAt)
	}
	if n := len(f.outbox.EventsOfType(domain.EventTypeLedgerSynced)); n != 1 {
		t.Errorf("expected 1 ledger.synced event, got %d", n)
	}
}

func TestReconciliation_Sync_SkipsKnownRemoteIDs(t *testing.T) {
	f := newFixture(t)
	f.settle(f.joint,
		remoteTx(strPtr("r-1"), "20260310", "090000", "100"),
		remoteTx(strPtr("r-2"), "20260311", "090000", "200"),
	)

	existing := remoteTx(strPtr("r-1"), "20260310", "090000", "100").ToEntry("old-1", f.joint.ID, fixedNow)
	if err := f.ledger.Insert(context.Background(), nil, existing); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := f.reconciliation(nil).Sync(context.Background(), f.joint.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 imported, got %d", n)
	}
	if total, _ := f.ledger.CountByAccount(context.Background(), f.joint.ID); total != 2 {
		t.Errorf("expected 2 entries, got %d", total)
	}
}

func TestReconciliation_Sync_FallbackKeyDedup(t *testing.T) {
	f := newFixture(t)
	f.settle(f.joint,
		remoteTx(nil, "20260310", "090000", "100.00"),
		remoteTx(nil, "20260310", "090000", "100"), // same record, different scale
		remoteTx(nil, "20260310", "090001", "100"),
	)

	existing := remoteTx(nil, "20260310", "090001", "100.0").ToEntry("old-1", f.joint.ID, fixedNow)
	if err := f.ledger.Insert(context.Background(), nil, existing); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := f.reconciliation(nil).Sync(context.Background(), f.joint.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 imported, got %d", n)
	}
}

func TestReconciliation_Sync_InBatchRemoteIDDedup(t *testing.T) {
	f := newFixture(t)
	f.settle(f.joint,
		remoteTx(strPtr("r-1"), "20260310", "090000", "100"),
		remoteTx(strPtr("r-1"), "20260310", "090000", "100"),
	)

	n, err := f.reconciliation(nil).Sync(context.Background(), f.joint.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 imported, got %d", n)
	}
}

func TestReconciliation_Sync_WindowBounds(t *testing.T) {
	tests := []struct {
		name      string
		watermark *time.Time
		records   []domain.RemoteTransaction
		wantFrom  string
		want      int
	}{
		{
			name: "missing watermark uses lookback",
			records: []domain.RemoteTransaction{
				remoteTx(strPtr("old"), "20260306", "120000", "1"),
				remoteTx(strPtr("edge-before"), "20260307", "115959", "1"),
				remoteTx(strPtr("edge"), "20260307", "120000", "1"),
				remoteTx(strPtr("in"), "20260313", "080000", "1"),
			},
			wantFrom: "20260307",
			want:     2,
		},
		{
			name:      "recent watermark wins over lookback",
			watermark: timePtr(fixedNow.Add(-time.Hour)),
			records: []domain.RemoteTransaction{
				remoteTx(strPtr("before"), "20260314", "105959", "1"),
				remoteTx(strPtr("after"), "20260314", "113000", "1"),
			},
			wantFrom: "20260314",
			want:     1,
		},
		{
			name:      "stale watermark is clamped",
			watermark: timePtr(fixedNow.Add(-30 * 24 * time.Hour)),
			records: []domain.RemoteTransaction{
				remoteTx(strPtr("ancient"), "20260220", "120000", "1"),
				remoteTx(strPtr("in"), "20260313", "080000", "1"),
			},
			wantFrom: "20260307",
			want:     1,
		},
		{
			name: "future records are excluded",
			records: []domain.RemoteTransaction{
				remoteTx(strPtr("later"), "20260314", "120001", "1"),
			},
			wantFrom: "20260307",
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			f := newFixture(t)
			acc := f.accounts.Snapshot(f.joint.ID)
			acc.LastSyncedAt = tt.watermark
			f.accounts.Put(acc)

			gateway := mocks.NewMockBankGateway(ctrl)
			gateway.EXPECT().TransactionHistory(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, req usecase.HistoryRequest) ([]domain.RemoteTransaction, error) {
					if req.FromDate != tt.wantFrom || req.ToDate != "20260314" {
						t.Errorf("unexpected date range %s..%s", req.FromDate, req.ToDate)
					}
					return tt.records, nil
				})

			uc := usecase.NewReconciliationUseCase(usecase.ReconciliationConfig{
				TxManager:   f.txMgr,
				AccountRepo: f.accounts,
				LedgerRepo:  f.ledger,
				Gateway:     gateway,
				IDGen:       f.idGen,
				Retry:       fastRetry(),
				Clock:       func() time.Time { return fixedNow },
				Logger:      zerolog.Nop(),
			})

			n, err := uc.Sync(context.Background(), f.joint.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != tt.want {
				t.Errorf("expected %d imported, got %d", tt.want, n)
			}
		})
	}
}

func TestReconciliation_Sync_FailedInsertKeepsWatermark(t *testing.T) {
	f := newFixture(t)
	f.settle(f.joint,
		remoteTx(strPtr("r-1"), "20260310", "090000", "100"),
		remoteTx(strPtr("r-2"), "20260311", "090000", "200"),
	)

	inserts := 0
	f.ledger.InsertFunc = func(context.Context, usecase.Transaction, *domain.LedgerEntry) error {
		inserts++
		if inserts == 2 {
			return errors.New("disk full")
		}
		return nil
	}

	_, err := f.reconciliation(nil).Sync(context.Background(), f.joint.ID)
	if err == nil {
		t.Fatal("expected error")
	}

	acc := f.accounts.Snapshot(f.joint.ID)
	if acc.LastSyncedAt != nil {
		t.Errorf("watermark must not advance, got %v", acc.LastSyncedAt)
	}
	if acc.Version != 1 {
		t.Errorf("expected version 1, got %d", acc.Version)
	}
	if n := len(f.ledger.All()); n != 0 {
		t.Errorf("expected partial batch rolled back, got %d entries", n)
	}
}

func TestReconciliation_Sync_RetriesMovedWatermark(t *testing.T) {
	f := newFixture(t)
	f.settle(f.joint,
		remoteTx(strPtr("r-1"), "20260310", "090000", "100"),
		remoteTx(strPtr("r-2"), "20260311", "090000", "200"),
	)

	f.accounts.AdvanceWatermarkFunc = func(ctx context.Context, tx usecase.Transaction, id string, expected int64, syncedAt time.Time) error {
		moved := f.accounts.Snapshot(id)
		moved.Version++
		f.accounts.Put(moved)
		f.accounts.AdvanceWatermarkFunc = nil
		return domain.ErrVersionConflict
	}

	n, err := f.reconciliation(nil).Sync(context.Background(), f.joint.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported, got %d", n)
	}
	if total := len(f.ledger.All()); total != 2 {
		t.Errorf("expected 2 entries after retry, got %d", total)
	}
	if v := f.accounts.Snapshot(f.joint.ID).Version; v != 3 {
		t.Errorf("expected version 3, got %d", v)
	}
}

func TestReconciliation_Sync_MalformedRecordFailsBatch(t *testing.T) {
	f := newFixture(t)
	f.settle(f.joint,
		remoteTx(strPtr("r-1"), "20260310", "090000", "100"),
		remoteTx(strPtr("r-2"), "20260311", "9am", "200"),
	)

	if _, err := f.reconciliation(nil).Sync(context.Background(), f.joint.ID); err == nil {
		t.Fatal("expected error")
	}
	if acc := f.accounts.Snapshot(f.joint.ID); acc.LastSyncedAt != nil {
		t.Errorf("watermark must not advance past a malformed record")
	}
}

func TestReconciliation_Sync_LockHeld(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t)
	locker := mocks.NewMockSyncLocker(ctrl)
	locker.EXPECT().WithLock(gomock.Any(), "sync:account:"+f.joint.ID, gomock.Any()).Return(domain.ErrSyncInProgress)

	uc := usecase.NewReconciliationUseCase(usecase.ReconciliationConfig{
		TxManager:   f.txMgr,
		AccountRepo: f.accounts,
		LedgerRepo:  f.ledger,
		Gateway:     f.bank,
		Locker:      locker,
		IDGen:       f.idGen,
		Logger:      zerolog.Nop(),
	})

	if _, err := uc.Sync(context.Background(), f.joint.ID); !errors.Is(err, domain.ErrSyncInProgress) {
		t.Fatalf("expected ErrSyncInProgress, got %v", err)
	}
}

func TestReconciliation_SyncForCaller(t *testing.T) {
	f := newFixture(t)
	uc := f.reconciliation(nil)

	if _, err := uc.SyncForCaller(context.Background(), caller(carol), f.joint.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-member, got %v", err)
	}
	if _, err := uc.SyncForCaller(context.Background(), caller(bob), f.joint.ID); err != nil {
		t.Errorf("member sync failed: %v", err)
	}
	if _, err := uc.SyncForCaller(context.Background(), caller(carol), f.carolPersonal.ID); err != nil {
		t.Errorf("owner sync failed: %v", err)
	}
}

func TestSyncWindow_Contains(t *testing.T) {
	w := usecase.SyncWindow{From: fixedNow.Add(-time.Hour), To: fixedNow}

	if !w.Contains(w.From) || !w.Contains(w.To) {
		t.Error("window bounds are inclusive")
	}
	if w.Contains(fixedNow.Add(time.Second)) {
		t.Error("expected time after window to be excluded")
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
