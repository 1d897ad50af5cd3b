package main

import (
	"log"

	"finlink/internal/domain/bank"
	"finlink/internal/domain/transaction"
	"finlink/internal/domain/transfer"
	"finlink/internal/domain/user"
	"finlink/internal/infrastructure/crypto"
	"finlink/internal/infrastructure/dwolla"
	"finlink/internal/infrastructure/plaid"
	"finlink/internal/infrastructure/postgres"
	httphandlers "finlink/internal/interfaces/http"
	"finlink/internal/shared/auth"
	"finlink/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler     *httphandlers.AuthHandler
	UserHandler     *httphandlers.UserHandler
	BankHandler     *httphandlers.BankHandler
	TransferHandler *httphandlers.TransferHandler

	// Auth
	Tokens *auth.TokenManager
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	bankRepo := postgres.NewBankRepository(db, encryptor)
	transactionRepo := postgres.NewTransactionRepository(db)

	// Vendor clients
	aggregator := plaid.New(plaid.Config{
		BaseURL:  cfg.Plaid.BaseURL,
		ClientID: cfg.Plaid.ClientID,
		Secret:   cfg.Plaid.Secret,
	})
	rail := dwolla.New(dwolla.Config{
		BaseURL: cfg.Dwolla.BaseURL,
		Token:   cfg.Dwolla.Token,
	})

	// Domain services
	tokens := auth.NewTokenManager(cfg.JWT.Secret)
	userService := user.NewService(userRepo, rail, tokens)
	reconciler := transaction.NewReconciler(aggregator, transactionRepo)
	bankService := bank.NewService(bankRepo, userRepo, aggregator, rail, reconciler, encryptor)
	transferService := transfer.NewService(bankRepo, transactionRepo, rail, encryptor)

	return &Dependencies{
		DB:              db,
		AuthHandler:     httphandlers.NewAuthHandler(userService),
		UserHandler:     httphandlers.NewUserHandler(userService),
		BankHandler:     httphandlers.NewBankHandler(bankService),
		TransferHandler: httphandlers.NewTransferHandler(transferService),
		Tokens:          tokens,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
