package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"finlink/internal/domain/bank"
	"finlink/internal/infrastructure/crypto"
)

// BankRepository persists linked accounts. Access tokens are encrypted
// before they touch the database and decrypted on the way out.
type BankRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

func NewBankRepository(db *DB, encryptor *crypto.Encryptor) *BankRepository {
	return &BankRepository{db: db, encryptor: encryptor}
}

// Create inserts a linked account. Relinking the same (item, account) pair
// is a no-op: the existing row is returned and created is false.
func (r *BankRepository) Create(ctx context.Context, params bank.CreateParams) (*bank.Bank, bool, error) {
	encToken, err := r.encryptor.Encrypt(params.AccessToken)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	query := `
		INSERT INTO banks (
			id, user_id, plaid_item_id, plaid_account_id,
			access_token, funding_source_url, shareable_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT unique_bank_account DO NOTHING
		RETURNING id
	`

	b := bank.Bank{
		UserID:           params.UserID,
		PlaidItemID:      params.PlaidItemID,
		PlaidAccountID:   params.PlaidAccountID,
		AccessToken:      params.AccessToken,
		FundingSourceURL: params.FundingSourceURL,
		ShareableID:      params.ShareableID,
	}

	err = r.db.QueryRowContext(ctx, query,
		uuid.NewString(), params.UserID, params.PlaidItemID, params.PlaidAccountID,
		encToken, params.FundingSourceURL, params.ShareableID,
	).Scan(&b.ID)
	if err == sql.ErrNoRows {
		// Conflict: the account was already linked. Hand back that row.
		existing, err := r.getOne(ctx, "plaid_item_id = $1 AND plaid_account_id = $2",
			params.PlaidItemID, params.PlaidAccountID)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, fmt.Errorf("linked account vanished after conflict")
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create linked account: %w", err)
	}

	return &b, true, nil
}

func (r *BankRepository) GetByID(ctx context.Context, id string) (*bank.Bank, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByExternalAccountID looks up a linked account by its vendor account id,
// which is what a shareable id decrypts to.
func (r *BankRepository) GetByExternalAccountID(ctx context.Context, accountID string) (*bank.Bank, error) {
	return r.getOne(ctx, "plaid_account_id = $1", accountID)
}

func (r *BankRepository) getOne(ctx context.Context, where string, args ...any) (*bank.Bank, error) {
	query := `
		SELECT id, user_id, plaid_item_id, plaid_account_id,
		       access_token, funding_source_url, shareable_id
		FROM banks
		WHERE ` + where

	var b bank.Bank
	var encToken string
	var fundingSourceURL, shareableID sql.NullString
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&b.ID, &b.UserID, &b.PlaidItemID, &b.PlaidAccountID,
		&encToken, &fundingSourceURL, &shareableID,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get linked account: %w", err)
	}

	b.AccessToken, err = r.encryptor.Decrypt(encToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	b.FundingSourceURL = fundingSourceURL.String
	b.ShareableID = shareableID.String
	return &b, nil
}

func (r *BankRepository) ListByUserID(ctx context.Context, userID string) ([]*bank.Bank, error) {
	query := `
		SELECT id, user_id, plaid_item_id, plaid_account_id,
		       access_token, funding_source_url, shareable_id
		FROM banks
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked accounts: %w", err)
	}
	defer rows.Close()

	var banks []*bank.Bank
	for rows.Next() {
		var b bank.Bank
		var encToken string
		var fundingSourceURL, shareableID sql.NullString
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.PlaidItemID, &b.PlaidAccountID,
			&encToken, &fundingSourceURL, &shareableID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan linked account: %w", err)
		}
		b.AccessToken, err = r.encryptor.Decrypt(encToken)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt access token: %w", err)
		}
		b.FundingSourceURL = fundingSourceURL.String
		b.ShareableID = shareableID.String
		banks = append(banks, &b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating linked accounts: %w", err)
	}

	return banks, nil
}
