package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"finlink/internal/domain/user"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	query := `
		INSERT INTO users (
			id, first_name, last_name, address, city, state,
			postal_code, date_of_birth, ssn, email, password_hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	u := user.User{
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Address:      params.Address,
		City:         params.City,
		State:        params.State,
		PostalCode:   params.PostalCode,
		DateOfBirth:  params.DateOfBirth,
		SSN:          params.SSN,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
	}

	err := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), params.FirstName, params.LastName, params.Address,
		params.City, params.State, params.PostalCode, params.DateOfBirth,
		params.SSN, params.Email, params.PasswordHash,
	).Scan(&u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*user.User, error) {
	query := `
		SELECT id, first_name, last_name, address, city, state,
		       postal_code, date_of_birth, ssn, email, password_hash,
		       dwolla_customer_id, dwolla_customer_url
		FROM users
		WHERE ` + where

	var u user.User
	var customerID, customerURL sql.NullString
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Address, &u.City, &u.State,
		&u.PostalCode, &u.DateOfBirth, &u.SSN, &u.Email, &u.PasswordHash,
		&customerID, &customerURL,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if customerID.Valid {
		u.DwollaCustomerID = &customerID.String
	}
	if customerURL.Valid {
		u.DwollaCustomerURL = &customerURL.String
	}
	return &u, nil
}

func (r *UserRepository) SetPaymentCustomer(ctx context.Context, id, customerID, customerURL string) error {
	query := `
		UPDATE users
		SET dwolla_customer_id = $2, dwolla_customer_url = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, customerID, customerURL)
	if err != nil {
		return fmt.Errorf("failed to set payment customer: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s not found", id)
	}
	return nil
}
