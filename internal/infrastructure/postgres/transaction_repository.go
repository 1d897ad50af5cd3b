package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"finlink/internal/domain/transaction"
)

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateRecordParams) (*transaction.Record, error) {
	query := `
		INSERT INTO transactions (
			id, name, amount, channel, category,
			sender_id, receiver_id, sender_bank_id, receiver_bank_id, email
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	rec := transaction.Record{
		Name:           params.Name,
		Amount:         params.Amount,
		Channel:        params.Channel,
		Category:       params.Category,
		SenderID:       params.SenderID,
		ReceiverID:     params.ReceiverID,
		SenderBankID:   params.SenderBankID,
		ReceiverBankID: params.ReceiverBankID,
		Email:          params.Email,
	}

	err := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), params.Name, params.Amount, params.Channel, params.Category,
		params.SenderID, params.ReceiverID, params.SenderBankID, params.ReceiverBankID,
		params.Email,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer record: %w", err)
	}

	return &rec, nil
}

// ListByBankID returns every transfer record touching a linked account,
// whether it was the sender or the receiver.
func (r *TransactionRepository) ListByBankID(ctx context.Context, bankID string) ([]*transaction.Record, error) {
	query := `
		SELECT id, name, amount, channel, category,
		       sender_id, receiver_id, sender_bank_id, receiver_bank_id,
		       email, created_at
		FROM transactions
		WHERE sender_bank_id = $1 OR receiver_bank_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfer records: %w", err)
	}
	defer rows.Close()

	var records []*transaction.Record
	for rows.Next() {
		var rec transaction.Record
		var channel, category, email sql.NullString
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.Amount, &channel, &category,
			&rec.SenderID, &rec.ReceiverID, &rec.SenderBankID, &rec.ReceiverBankID,
			&email, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transfer record: %w", err)
		}
		rec.Channel = channel.String
		rec.Category = category.String
		rec.Email = email.String
		records = append(records, &rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer records: %w", err)
	}

	return records, nil
}
