package bank

import "context"

// Bank is one linked account: a (item, account) pair under a user, plus the
// rail and sharing handles minted at link time. AccessToken is plaintext in
// memory; the repository encrypts it at rest.
type Bank struct {
	ID               string
	UserID           string
	PlaidItemID      string
	PlaidAccountID   string
	AccessToken      string
	FundingSourceURL string
	ShareableID      string
}

type CreateParams struct {
	UserID           string
	PlaidItemID      string
	PlaidAccountID   string
	AccessToken      string
	FundingSourceURL string
	ShareableID      string
}

// Repository is the persistence contract for linked accounts. Create is
// idempotent on (item id, account id): relinking an already linked account
// returns the existing row with created == false. Lookups return (nil, nil)
// when no row exists.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Bank, bool, error)
	GetByID(ctx context.Context, id string) (*Bank, error)
	GetByExternalAccountID(ctx context.Context, accountID string) (*Bank, error)
	ListByUserID(ctx context.Context, userID string) ([]*Bank, error)
}
