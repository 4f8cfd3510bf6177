package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func TestLedgerEntry_Review(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	t.Run("nil memo keeps existing memo", func(t *testing.T) {
		entry := &LedgerEntry{Memo: "coffee", ReviewStatus: ReviewStatusPending}

		if err := entry.Review(ReviewStatusReviewed, strPtr("cat-food"), nil, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if entry.Memo != "coffee" {
			t.Errorf("expected memo preserved, got %q", entry.Memo)
		}
		if entry.CategoryID == nil || *entry.CategoryID != "cat-food" {
			t.Errorf("expected category cat-food, got %v", entry.CategoryID)
		}
		if entry.ReviewStatus != ReviewStatusReviewed {
			t.Errorf("expected REVIEWED, got %s", entry.ReviewStatus)
		}
		if !entry.UpdatedAt.Equal(now) {
			t.Errorf("expected UpdatedAt stamped")
		}
	})

	t.Run("memo overwritten when supplied", func(t *testing.T) {
		entry := &LedgerEntry{Memo: "coffee"}

		if err := entry.Review(ReviewStatusReviewed, nil, strPtr("team lunch"), now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.Memo != "team lunch" {
			t.Errorf("expected new memo, got %q", entry.Memo)
		}
		if entry.CategoryID != nil {
			t.Errorf("expected category untouched")
		}
	})

	t.Run("reviewed entry can be reviewed again", func(t *testing.T) {
		earlier := now.Add(-time.Hour)
		entry := &LedgerEntry{Memo: "groceries", CategoryID: strPtr("cat-food"), ReviewStatus: ReviewStatusReviewed, UpdatedAt: earlier}

		if err := entry.Review(ReviewStatusReviewed, strPtr("cat-home"), strPtr("hardware store"), now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.Memo != "hardware store" || *entry.CategoryID != "cat-home" {
			t.Errorf("expected memo and category replaced, got %q %q", entry.Memo, *entry.CategoryID)
		}
		if entry.ReviewStatus != ReviewStatusReviewed {
			t.Errorf("expected REVIEWED, got %s", entry.ReviewStatus)
		}
		if !entry.UpdatedAt.Equal(now) {
			t.Errorf("expected UpdatedAt restamped")
		}
	})

	t.Run("only REVIEWED is a valid target", func(t *testing.T) {
		entry := &LedgerEntry{ReviewStatus: ReviewStatusPending}

		err := entry.Review(ReviewStatusPending, nil, nil, now)
		if !errors.Is(err, ErrInvalidReviewStatus) {
			t.Fatalf("expected ErrInvalidReviewStatus, got %v", err)
		}
		if entry.ReviewStatus != ReviewStatusPending {
			t.Errorf("entry must not change on rejected review")
		}
	})
}

func TestRemoteTransaction_ToEntry(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	remote := RemoteTransaction{
		RemoteID:    strPtr("r-1"),
		Date:        "20260309",
		Time:        "141500",
		Direction:   DirectionDebit,
		Amount:      decimal.NewFromInt(100000),
		Memo:        "rent",
		PostBalance: decimal.NewFromInt(400000),
	}

	entry := remote.ToEntry("entry-1", "acc-1", now)

	if entry.ReviewStatus != ReviewStatusPending {
		t.Errorf("expected PENDING, got %s", entry.ReviewStatus)
	}
	if entry.RemoteID == nil || *entry.RemoteID != "r-1" {
		t.Errorf("expected remote id copied")
	}
	if entry.CounterpartyFrom != nil || entry.CounterpartyTo != nil || entry.CategoryID != nil {
		t.Errorf("expected unclassified entry")
	}
	if !entry.BalanceAfter.Equal(decimal.NewFromInt(400000)) {
		t.Errorf("expected post balance from remote, got %s", entry.BalanceAfter)
	}

	*remote.RemoteID = "mutated"
	if *entry.RemoteID != "r-1" {
		t.Errorf("entry must not alias the remote id")
	}
}

func TestRemoteTransaction_SettledAt(t *testing.T) {
	remote := RemoteTransaction{Date: "20260309", Time: "141500"}

	got, err := remote.SettledAt(time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 3, 9, 14, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	if _, err := (RemoteTransaction{Date: "2026-03-09", Time: "1415"}).SettledAt(nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFallbackKey_NormalizesAmount(t *testing.T) {
	a := RemoteTransaction{Date: "20260309", Time: "141500", Amount: decimal.RequireFromString("100.00")}
	b := LedgerEntry{AccountID: "acc-1", SettledDate: "20260309", SettledTime: "141500", Amount: decimal.NewFromInt(100)}

	if a.FallbackKey("acc-1").String() != b.FallbackKey().String() {
		t.Fatalf("expected keys to match: %s vs %s", a.FallbackKey("acc-1"), b.FallbackKey())
	}

	if a.FallbackKey("acc-2").String() == b.FallbackKey().String() {
		t.Fatalf("expected account to be part of the key")
	}
}

func TestRemoteTransaction_HasRemoteID(t *testing.T) {
	if (RemoteTransaction{}).HasRemoteID() {
		t.Error("nil id is not a remote id")
	}
	if (RemoteTransaction{RemoteID: strPtr("")}).HasRemoteID() {
		t.Error("empty id is not a remote id")
	}
	if !(RemoteTransaction{RemoteID: strPtr("x")}).HasRemoteID() {
		t.Error("expected remote id")
	}
}
