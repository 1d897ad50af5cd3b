package transaction

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finlink/internal/infrastructure/plaid"
)

// Syncer is the slice of the aggregation vendor the reconciler needs.
type Syncer interface {
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*plaid.SyncResponse, error)
}

// Feed is an account's merged transaction history. VendorDegraded is set
// when the vendor feed could not be fetched; the local records are still
// present and the caller decides how loudly to surface the gap.
type Feed struct {
	Transactions   []Transaction
	VendorDegraded bool
}

// Reconciler merges the vendor's cursor-paginated transaction feed with
// locally recorded transfers into one ordered history.
type Reconciler struct {
	syncer  Syncer
	records Repository
}

func NewReconciler(syncer Syncer, records Repository) *Reconciler {
	return &Reconciler{syncer: syncer, records: records}
}

// Feed builds the merged history for one linked account. The vendor feed is
// drained page by page, each request carrying exactly the cursor the
// previous response returned. Local transfer records are viewed from the
// account's side: a debit when it sent, a credit when it received.
func (r *Reconciler) Feed(ctx context.Context, accessToken, bankID string) (*Feed, error) {
	records, err := r.records.ListByBankID(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transfer records: %w", err)
	}

	feed := &Feed{}
	for _, rec := range records {
		feed.Transactions = append(feed.Transactions, recordView(rec, bankID))
	}

	vendor, err := r.drainVendorFeed(ctx, accessToken, bankID)
	if err != nil {
		log.Printf("Vendor feed unavailable for account %s: %v", bankID, err)
		feed.VendorDegraded = true
	} else {
		feed.Transactions = append(feed.Transactions, vendor...)
	}

	sort.SliceStable(feed.Transactions, func(i, j int) bool {
		return feed.Transactions[i].Date.After(feed.Transactions[j].Date)
	})

	return feed, nil
}

func (r *Reconciler) drainVendorFeed(ctx context.Context, accessToken, bankID string) ([]Transaction, error) {
	var out []Transaction
	cursor := ""
	for {
		page, err := r.syncer.SyncTransactions(ctx, accessToken, cursor)
		if err != nil {
			return nil, err
		}
		for _, vt := range page.Added {
			out = append(out, vendorView(vt, bankID))
		}
		if !page.HasMore {
			return out, nil
		}
		if page.NextCursor == cursor {
			return nil, fmt.Errorf("vendor cursor did not advance")
		}
		cursor = page.NextCursor
	}
}

// vendorView maps a vendor transaction into the feed shape. The vendor
// reports outflows as positive amounts, so sign decides direction and the
// feed carries the absolute value.
func vendorView(vt plaid.Transaction, bankID string) Transaction {
	amount := decimal.NewFromFloat(vt.Amount)
	txType := TypeDebit
	if amount.IsNegative() {
		txType = TypeCredit
		amount = amount.Neg()
	}

	date, err := time.Parse("2006-01-02", vt.Date)
	if err != nil {
		log.Printf("Unparseable vendor transaction date %q for %s", vt.Date, vt.TransactionID)
	}

	category := ""
	if len(vt.Category) > 0 {
		category = vt.Category[0]
	}

	return Transaction{
		ID:        vt.TransactionID,
		Name:      vt.Name,
		Amount:    amount,
		Channel:   vt.PaymentChannel,
		Category:  category,
		Date:      date,
		Type:      txType,
		Pending:   vt.Pending,
		AccountID: bankID,
	}
}

// recordView maps a transfer record into the feed shape from the viewing
// account's perspective.
func recordView(rec *Record, bankID string) Transaction {
	txType := TypeCredit
	if rec.SenderBankID == bankID {
		txType = TypeDebit
	}

	return Transaction{
		ID:        rec.ID,
		Name:      rec.Name,
		Amount:    rec.Amount,
		Channel:   rec.Channel,
		Category:  rec.Category,
		Date:      rec.CreatedAt,
		Type:      txType,
		AccountID: bankID,
	}
}
