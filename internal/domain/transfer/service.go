package transfer

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"finlink/internal/domain/bank"
	"finlink/internal/domain/transaction"
	"finlink/internal/infrastructure/crypto"
)

const (
	transferChannel  = "online"
	transferCategory = "Transfer"
)

// PaymentRail moves funds between two funding sources. The returned URL is
// the rail's confirmation of the transfer.
type PaymentRail interface {
	CreateTransfer(ctx context.Context, sourceURL, destinationURL string, amount decimal.Decimal) (string, error)
}

// Service orchestrates transfers between linked accounts: rail first, local
// record second.
type Service struct {
	banks     bank.Repository
	records   transaction.Repository
	rail      PaymentRail
	encryptor *crypto.Encryptor
}

func NewService(banks bank.Repository, records transaction.Repository, rail PaymentRail, encryptor *crypto.Encryptor) *Service {
	return &Service{banks: banks, records: records, rail: rail, encryptor: encryptor}
}

type Params struct {
	SenderID     string          `json:"-"`
	SenderBankID string          `json:"senderBankId"`
	ShareableID  string          `json:"shareableId"`
	Amount       decimal.Decimal `json:"amount"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
}

func (p Params) validate() error {
	if p.SenderBankID == "" || p.ShareableID == "" || !p.Amount.IsPositive() {
		return ErrInvalidParams
	}
	return nil
}

// Create moves funds from the sender's account to the account behind the
// shareable id. The local record is written only after the rail confirms;
// a rail failure therefore leaves no trace in either feed.
func (s *Service) Create(ctx context.Context, params Params) (*transaction.Record, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	receiverAccountID, err := s.encryptor.Decrypt(params.ShareableID)
	if err != nil {
		return nil, ErrInvalidShareableID
	}

	receiver, err := s.banks.GetByExternalAccountID(ctx, receiverAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve receiving account: %w", err)
	}
	if receiver == nil {
		return nil, ErrReceiverNotFound
	}

	sender, err := s.banks.GetByID(ctx, params.SenderBankID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sending account: %w", err)
	}
	if sender == nil {
		return nil, bank.ErrNotFound
	}
	if sender.UserID != params.SenderID {
		return nil, bank.ErrForbidden
	}
	if sender.ID == receiver.ID {
		return nil, ErrSameAccount
	}

	if sender.FundingSourceURL == "" || receiver.FundingSourceURL == "" {
		return nil, fmt.Errorf("both accounts need a funding source to transfer")
	}

	if _, err := s.rail.CreateTransfer(ctx, sender.FundingSourceURL, receiver.FundingSourceURL, params.Amount); err != nil {
		return nil, fmt.Errorf("payment rail rejected transfer: %w", err)
	}

	name := params.Name
	if name == "" {
		name = transferCategory
	}

	record, err := s.records.Create(ctx, transaction.CreateRecordParams{
		Name:           name,
		Amount:         params.Amount,
		Channel:        transferChannel,
		Category:       transferCategory,
		SenderID:       sender.UserID,
		ReceiverID:     receiver.UserID,
		SenderBankID:   sender.ID,
		ReceiverBankID: receiver.ID,
		Email:          params.Email,
	})
	if err != nil {
		// Money moved but the ledger write failed. Shout: this needs
		// manual reconciliation.
		log.Printf("ALERT: transfer of %s from %s to %s confirmed on rail but not recorded: %v",
			params.Amount, sender.ID, receiver.ID, err)
		return nil, ErrLedgerInconsistent
	}

	return record, nil
}
