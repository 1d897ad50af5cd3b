package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction direction, from the perspective of the account being viewed.
const (
	TypeDebit  = "debit"
	TypeCredit = "credit"
)

// Transaction is one entry in an account's merged history feed, whether it
// came from the vendor sync or from a local transfer record.
type Transaction struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Channel   string          `json:"paymentChannel"`
	Category  string          `json:"category"`
	Date      time.Time       `json:"date"`
	Type      string          `json:"type"`
	Pending   bool            `json:"pending"`
	AccountID string          `json:"accountId"`
}

// Record is a persisted transfer row. Sender and receiver reference linked
// accounts; a row appears in both accounts' feeds with opposite directions.
type Record struct {
	ID             string
	Name           string
	Amount         decimal.Decimal
	Channel        string
	Category       string
	SenderID       string
	ReceiverID     string
	SenderBankID   string
	ReceiverBankID string
	Email          string
	CreatedAt      time.Time
}

type CreateRecordParams struct {
	Name           string
	Amount         decimal.Decimal
	Channel        string
	Category       string
	SenderID       string
	ReceiverID     string
	SenderBankID   string
	ReceiverBankID string
	Email          string
}

// Repository is the persistence contract for transfer records.
type Repository interface {
	Create(ctx context.Context, params CreateRecordParams) (*Record, error)
	ListByBankID(ctx context.Context, bankID string) ([]*Record, error)
}
