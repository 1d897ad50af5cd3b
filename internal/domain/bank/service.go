package bank

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finlink/internal/domain/transaction"
	"finlink/internal/domain/user"
	"finlink/internal/infrastructure/crypto"
	"finlink/internal/infrastructure/plaid"
)

const (
	linkClientName = "Finlink"
	railProcessor  = "dwolla"

	// vendorConcurrency bounds the per-account vendor fan-out when building
	// the accounts overview.
	vendorConcurrency = 4
)

// Aggregator is the slice of the account-aggregation vendor this service needs.
type Aggregator interface {
	CreateLinkToken(ctx context.Context, userID, clientName string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*plaid.ExchangeResult, error)
	GetAccounts(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error)
	GetInstitution(ctx context.Context, institutionID string) (*plaid.Institution, error)
	CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error)
}

// PaymentRail attaches funding sources so transfers can move money later.
type PaymentRail interface {
	CreateFundingSource(ctx context.Context, customerURL, processorToken, name string) (string, error)
}

// FeedProvider builds an account's merged transaction history.
type FeedProvider interface {
	Feed(ctx context.Context, accessToken, bankID string) (*transaction.Feed, error)
}

// Service owns account linking and account views.
type Service struct {
	banks     Repository
	users     user.Repository
	vendor    Aggregator
	rail      PaymentRail
	feeds     FeedProvider
	encryptor *crypto.Encryptor
}

func NewService(banks Repository, users user.Repository, vendor Aggregator, rail PaymentRail, feeds FeedProvider, encryptor *crypto.Encryptor) *Service {
	return &Service{
		banks:     banks,
		users:     users,
		vendor:    vendor,
		rail:      rail,
		feeds:     feeds,
		encryptor: encryptor,
	}
}

// LinkToken starts the linking flow for a user.
func (s *Service) LinkToken(ctx context.Context, userID string) (string, error) {
	return s.vendor.CreateLinkToken(ctx, userID, linkClientName)
}

// ExchangePublicToken finishes the linking flow: it trades the public token
// for durable access and registers every account under the item. Accounts
// are linked independently; one failing account does not block the others.
// Relinking an already linked account is a no-op.
func (s *Service) ExchangePublicToken(ctx context.Context, userID, publicToken string) (int, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil || u.DwollaCustomerURL == nil {
		return 0, fmt.Errorf("user %s has no payment customer", userID)
	}

	exchange, err := s.vendor.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return 0, fmt.Errorf("failed to exchange public token: %w", err)
	}

	accounts, err := s.vendor.GetAccounts(ctx, exchange.AccessToken)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch accounts for new item: %w", err)
	}

	linked := 0
	for _, account := range accounts.Accounts {
		if err := s.linkAccount(ctx, u, exchange, account); err != nil {
			log.Printf("Failed to link account %s under item %s: %v", account.AccountID, exchange.ItemID, err)
			continue
		}
		linked++
	}
	return linked, nil
}

func (s *Service) linkAccount(ctx context.Context, u *user.User, exchange *plaid.ExchangeResult, account plaid.Account) error {
	processorToken, err := s.vendor.CreateProcessorToken(ctx, exchange.AccessToken, account.AccountID, railProcessor)
	if err != nil {
		return fmt.Errorf("failed to create processor token: %w", err)
	}

	fundingSourceURL, err := s.rail.CreateFundingSource(ctx, *u.DwollaCustomerURL, processorToken, account.Name)
	if err != nil {
		return fmt.Errorf("failed to create funding source: %w", err)
	}

	shareableID, err := s.encryptor.Encrypt(account.AccountID)
	if err != nil {
		return fmt.Errorf("failed to mint shareable id: %w", err)
	}

	_, created, err := s.banks.Create(ctx, CreateParams{
		UserID:           u.ID,
		PlaidItemID:      exchange.ItemID,
		PlaidAccountID:   account.AccountID,
		AccessToken:      exchange.AccessToken,
		FundingSourceURL: fundingSourceURL,
		ShareableID:      shareableID,
	})
	if err != nil {
		return err
	}
	if !created {
		log.Printf("Account %s already linked, skipping", account.AccountID)
	}
	return nil
}

// AccountSummary is one linked account enriched with live vendor data.
type AccountSummary struct {
	BankID           string          `json:"bankId"`
	AccountID        string          `json:"accountId"`
	Name             string          `json:"name"`
	OfficialName     string          `json:"officialName"`
	Mask             string          `json:"mask"`
	Type             string          `json:"type"`
	Subtype          string          `json:"subtype"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	InstitutionID    string          `json:"institutionId"`
	ShareableID      string          `json:"shareableId"`
}

// Overview aggregates every linked account of a user. Accounts whose vendor
// lookup failed are omitted; TotalBanks still counts every linked account.
type Overview struct {
	Accounts            []AccountSummary `json:"accounts"`
	TotalBanks          int              `json:"totalBanks"`
	TotalCurrentBalance decimal.Decimal  `json:"totalCurrentBalance"`
}

// ListSummaries fans out to the vendor for each linked account, bounded by
// vendorConcurrency. A failing account is logged and left out rather than
// failing the whole overview.
func (s *Service) ListSummaries(ctx context.Context, userID string) (*Overview, error) {
	banks, err := s.banks.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked accounts: %w", err)
	}

	summaries := make([]*AccountSummary, len(banks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(vendorConcurrency)
	for i, b := range banks {
		g.Go(func() error {
			summary, err := s.summarize(gctx, b)
			if err != nil {
				log.Printf("Skipping account %s in overview: %v", b.ID, err)
				return nil
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := &Overview{
		TotalBanks:          len(banks),
		TotalCurrentBalance: decimal.Zero,
	}
	for _, summary := range summaries {
		if summary == nil {
			continue
		}
		overview.Accounts = append(overview.Accounts, *summary)
		overview.TotalCurrentBalance = overview.TotalCurrentBalance.Add(summary.CurrentBalance)
	}
	return overview, nil
}

func (s *Service) summarize(ctx context.Context, b *Bank) (*AccountSummary, error) {
	resp, err := s.vendor.GetAccounts(ctx, b.AccessToken)
	if err != nil {
		return nil, err
	}

	for _, account := range resp.Accounts {
		if account.AccountID == b.PlaidAccountID {
			summary := newSummary(b, account, resp.Item.InstitutionID)
			return &summary, nil
		}
	}
	return nil, fmt.Errorf("vendor no longer reports account %s", b.PlaidAccountID)
}

func newSummary(b *Bank, account plaid.Account, institutionID string) AccountSummary {
	return AccountSummary{
		BankID:           b.ID,
		AccountID:        account.AccountID,
		Name:             account.Name,
		OfficialName:     account.OfficialName,
		Mask:             account.Mask,
		Type:             account.Type,
		Subtype:          account.Subtype,
		AvailableBalance: decimal.NewFromFloat(account.Balances.Available),
		CurrentBalance:   decimal.NewFromFloat(account.Balances.Current),
		InstitutionID:    institutionID,
		ShareableID:      b.ShareableID,
	}
}

// Detail is one account with its institution and merged history.
type Detail struct {
	Account        AccountSummary            `json:"account"`
	Institution    string                    `json:"institution"`
	Transactions   []transaction.Transaction `json:"transactions"`
	VendorDegraded bool                      `json:"vendorDegraded"`
}

// AccountDetail loads one linked account for its owner. Requests for
// someone else's account fail with ErrForbidden, unknown ids with
// ErrNotFound.
func (s *Service) AccountDetail(ctx context.Context, userID, bankID string) (*Detail, error) {
	b, err := s.banks.GetByID(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to load linked account: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}

	summary, err := s.summarize(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account from vendor: %w", err)
	}

	detail := &Detail{Account: *summary}

	if summary.InstitutionID != "" {
		institution, err := s.vendor.GetInstitution(ctx, summary.InstitutionID)
		if err != nil {
			log.Printf("Failed to resolve institution %s: %v", summary.InstitutionID, err)
		} else {
			detail.Institution = institution.Name
		}
	}

	feed, err := s.feeds.Feed(ctx, b.AccessToken, b.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction history: %w", err)
	}
	detail.Transactions = feed.Transactions
	detail.VendorDegraded = feed.VendorDegraded

	return detail, nil
}
