package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/jointledger/internal/adapter/gateway/fakebank"
	"github.com/iho/jointledger/internal/adapter/http/dto"
	"github.com/iho/jointledger/internal/domain"
)

var errBankDown = errors.New("bank is down")

func settled(at time.Time, remoteID string, amount int64, memo string) domain.RemoteTransaction {
	rec := domain.RemoteTransaction{
		Date:        at.UTC().Format(domain.SettledDateLayout),
		Time:        at.UTC().Format(domain.SettledTimeLayout),
		Direction:   domain.DirectionCredit,
		Amount:      decimal.NewFromInt(amount),
		Memo:        memo,
		PostBalance: decimal.NewFromInt(amount),
	}
	if remoteID != "" {
		rec.RemoteID = &remoteID
	}
	return rec
}

func TestSync(t *testing.T) {
	ctx := context.Background()

	t.Run("imports new records once", func(t *testing.T) {
		a := newApp(t)
		h := a.seedHousehold(t, decimal.Zero)

		base := time.Now().Add(-2 * time.Hour)
		a.bank.Settle("088", "1000000001", settled(base, "r-1", 10, "salary"))
		a.bank.Settle("088", "1000000001", settled(base.Add(time.Minute), "", 20, "cash"))

		rec := a.do(t, http.MethodPost, "/api/v1/accounts/"+h.joint+"/sync", "alice", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp dto.SyncResponse
		decodeBody(t, rec, &resp)
		if resp.Imported != 2 {
			t.Errorf("expected 2 imported, got %d", resp.Imported)
		}

		// A later sync finds nothing new.
		n, err := a.sync.Sync(ctx, h.joint)
		if err != nil {
			t.Fatalf("second sync failed: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 imported on resync, got %d", n)
		}
		if total := a.db.CountLedgerEntries(ctx, h.joint); total != 2 {
			t.Errorf("expected 2 entries, got %d", total)
		}
	})

	t.Run("concurrent syncs never duplicate entries", func(t *testing.T) {
		a := newApp(t)
		h := a.seedHousehold(t, decimal.Zero)

		base := time.Now().Add(-3 * time.Hour)
		for i := 0; i < 5; i++ {
			a.bank.Settle("088", "1000000001", settled(base.Add(time.Duration(i)*time.Minute), fmt.Sprintf("r-%d", i), int64(i+1), "with id"))
			a.bank.Settle("088", "1000000001", settled(base.Add(time.Duration(i)*time.Minute+time.Second), "", int64(i+1), "no id"))
		}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Losers of the lock report busy; that is expected here.
				_, _ = a.sync.Sync(ctx, h.joint)
			}()
		}
		wg.Wait()

		if _, err := a.sync.Sync(ctx, h.joint); err != nil {
			t.Fatalf("final sync failed: %v", err)
		}

		if total := a.db.CountLedgerEntries(ctx, h.joint); total != 10 {
			t.Errorf("expected 10 entries, got %d", total)
		}
	})

	t.Run("gateway failure leaves the watermark in place", func(t *testing.T) {
		a := newApp(t)
		h := a.seedHousehold(t, decimal.Zero)
		a.bank.Settle("088", "1000000001", settled(time.Now().Add(-time.Hour), "r-1", 10, "salary"))

		a.bank.Fail(fakebank.OpHistory, errBankDown)
		rec := a.do(t, http.MethodPost, "/api/v1/accounts/"+h.joint+"/sync", "bob", "", nil)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
		}

		a.bank.Fail(fakebank.OpHistory, nil)
		n, err := a.sync.Sync(ctx, h.joint)
		if err != nil {
			t.Fatalf("sync after recovery failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected the record to be imported after recovery, got %d", n)
		}
	})

	t.Run("non-member cannot sync the joint account", func(t *testing.T) {
		a := newApp(t)
		h := a.seedHousehold(t, decimal.Zero)

		rec := a.do(t, http.MethodPost, "/api/v1/accounts/"+h.joint+"/sync", "carol", "", nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}
