package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finlink/internal/infrastructure/plaid"
)

type mockSyncer struct {
	pages   []*plaid.SyncResponse
	err     error
	cursors []string
}

func (m *mockSyncer) SyncTransactions(ctx context.Context, accessToken, cursor string) (*plaid.SyncResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.cursors = append(m.cursors, cursor)
	page := m.pages[0]
	m.pages = m.pages[1:]
	return page, nil
}

type mockRecords struct {
	records []*Record
	err     error
}

func (m *mockRecords) Create(ctx context.Context, params CreateRecordParams) (*Record, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRecords) ListByBankID(ctx context.Context, bankID string) ([]*Record, error) {
	return m.records, m.err
}

func day(d string) time.Time {
	t, _ := time.Parse("2006-01-02", d)
	return t
}

func TestFeed_MergesAndSortsDescending(t *testing.T) {
	syncer := &mockSyncer{pages: []*plaid.SyncResponse{
		{
			Added: []plaid.Transaction{
				{TransactionID: "v1", Name: "Coffee", Amount: 4.5, Date: "2024-06-03", PaymentChannel: "in store", Category: []string{"Food and Drink"}},
				{TransactionID: "v2", Name: "Payroll", Amount: -1200, Date: "2024-06-01"},
			},
			HasMore: false,
		},
	}}
	records := &mockRecords{records: []*Record{
		{ID: "r1", Name: "Rent share", Amount: decimal.NewFromInt(300), SenderBankID: "bank-1", ReceiverBankID: "bank-2", CreatedAt: day("2024-06-02")},
	}}

	feed, err := NewReconciler(syncer, records).Feed(context.Background(), "access-tok", "bank-1")
	if err != nil {
		t.Fatalf("Feed() failed: %v", err)
	}
	if feed.VendorDegraded {
		t.Error("VendorDegraded = true, want false")
	}

	got := make([]string, len(feed.Transactions))
	for i, tx := range feed.Transactions {
		got[i] = tx.ID
	}
	want := []string{"v1", "r1", "v2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("feed order = %v, want %v", got, want)
		}
	}
}

func TestFeed_Directions(t *testing.T) {
	syncer := &mockSyncer{pages: []*plaid.SyncResponse{
		{
			Added: []plaid.Transaction{
				{TransactionID: "out", Amount: 20, Date: "2024-06-01"},
				{TransactionID: "in", Amount: -50, Date: "2024-06-01"},
			},
		},
	}}
	records := &mockRecords{records: []*Record{
		{ID: "sent", Amount: decimal.NewFromInt(10), SenderBankID: "bank-1", ReceiverBankID: "bank-2", CreatedAt: day("2024-06-01")},
		{ID: "received", Amount: decimal.NewFromInt(10), SenderBankID: "bank-2", ReceiverBankID: "bank-1", CreatedAt: day("2024-06-01")},
	}}

	feed, err := NewReconciler(syncer, records).Feed(context.Background(), "access-tok", "bank-1")
	if err != nil {
		t.Fatalf("Feed() failed: %v", err)
	}

	types := map[string]string{}
	amounts := map[string]decimal.Decimal{}
	for _, tx := range feed.Transactions {
		types[tx.ID] = tx.Type
		amounts[tx.ID] = tx.Amount
	}

	wantTypes := map[string]string{
		"out": TypeDebit, "in": TypeCredit,
		"sent": TypeDebit, "received": TypeCredit,
	}
	for id, want := range wantTypes {
		if types[id] != want {
			t.Errorf("transaction %s type = %q, want %q", id, types[id], want)
		}
	}
	if !amounts["in"].Equal(decimal.NewFromInt(50)) {
		t.Errorf("credit amount = %s, want absolute value 50", amounts["in"])
	}
}

func TestFeed_CursorChain(t *testing.T) {
	syncer := &mockSyncer{pages: []*plaid.SyncResponse{
		{Added: []plaid.Transaction{{TransactionID: "v1", Date: "2024-06-01"}}, NextCursor: "c1", HasMore: true},
		{Added: []plaid.Transaction{{TransactionID: "v2", Date: "2024-06-02"}}, NextCursor: "c2", HasMore: true},
		{Added: []plaid.Transaction{{TransactionID: "v3", Date: "2024-06-03"}}, NextCursor: "c3", HasMore: false},
	}}

	feed, err := NewReconciler(syncer, &mockRecords{}).Feed(context.Background(), "access-tok", "bank-1")
	if err != nil {
		t.Fatalf("Feed() failed: %v", err)
	}
	if len(feed.Transactions) != 3 {
		t.Errorf("got %d transactions, want all 3 pages drained", len(feed.Transactions))
	}

	wantCursors := []string{"", "c1", "c2"}
	if len(syncer.cursors) != len(wantCursors) {
		t.Fatalf("made %d sync calls, want %d", len(syncer.cursors), len(wantCursors))
	}
	for i, want := range wantCursors {
		if syncer.cursors[i] != want {
			t.Errorf("call %d cursor = %q, want %q", i, syncer.cursors[i], want)
		}
	}
}

func TestFeed_StuckCursorDegrades(t *testing.T) {
	syncer := &mockSyncer{pages: []*plaid.SyncResponse{
		{NextCursor: "", HasMore: true}, // cursor never advances
	}}

	feed, err := NewReconciler(syncer, &mockRecords{}).Feed(context.Background(), "access-tok", "bank-1")
	if err != nil {
		t.Fatalf("Feed() failed: %v", err)
	}
	if !feed.VendorDegraded {
		t.Error("VendorDegraded = false, want true for a stuck cursor")
	}
}

func TestFeed_VendorFailureKeepsLocalRecords(t *testing.T) {
	syncer := &mockSyncer{err: errors.New("vendor is down")}
	records := &mockRecords{records: []*Record{
		{ID: "r1", Amount: decimal.NewFromInt(5), SenderBankID: "bank-1", CreatedAt: day("2024-06-01")},
	}}

	feed, err := NewReconciler(syncer, records).Feed(context.Background(), "access-tok", "bank-1")
	if err != nil {
		t.Fatalf("Feed() failed: %v", err)
	}
	if !feed.VendorDegraded {
		t.Error("VendorDegraded = false, want true when the vendor fails")
	}
	if len(feed.Transactions) != 1 || feed.Transactions[0].ID != "r1" {
		t.Errorf("transactions = %+v, want only the local record", feed.Transactions)
	}
}

func TestFeed_RecordLoadFailure(t *testing.T) {
	records := &mockRecords{err: errors.New("db down")}
	if _, err := NewReconciler(&mockSyncer{}, records).Feed(context.Background(), "tok", "bank-1"); err == nil {
		t.Error("Feed() succeeded despite record load failure, want error")
	}
}

func TestFeed_SameDayOrderIsStable(t *testing.T) {
	syncer := &mockSyncer{pages: []*plaid.SyncResponse{
		{Added: []plaid.Transaction{
			{TransactionID: "a", Date: "2024-06-01"},
			{TransactionID: "b", Date: "2024-06-01"},
			{TransactionID: "c", Date: "2024-06-01"},
		}},
	}}

	feed, err := NewReconciler(syncer, &mockRecords{}).Feed(context.Background(), "tok", "bank-1")
	if err != nil {
		t.Fatalf("Feed() failed: %v", err)
	}
	got := []string{feed.Transactions[0].ID, feed.Transactions[1].ID, feed.Transactions[2].ID}
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("same-day order = %v, want input order preserved", got)
	}
}
