package user

import (
	"context"
	"errors"
	"fmt"
	"log"

	"finlink/internal/infrastructure/dwolla"
	"finlink/internal/shared/auth"
)

// PaymentRail is the slice of the payment vendor the sign-up flow needs.
type PaymentRail interface {
	CreateCustomer(ctx context.Context, params dwolla.CustomerParams) (string, error)
}

// Service owns sign-up, sign-in and session resolution.
type Service struct {
	repo     Repository
	payments PaymentRail
	tokens   *auth.TokenManager
}

func NewService(repo Repository, payments PaymentRail, tokens *auth.TokenManager) *Service {
	return &Service{repo: repo, payments: payments, tokens: tokens}
}

type SignUpParams struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address     string `json:"address1"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	DateOfBirth string `json:"dateOfBirth"`
	SSN         string `json:"ssn"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

func (p SignUpParams) validate() error {
	switch "" {
	case p.FirstName, p.LastName, p.Address, p.City, p.State,
		p.PostalCode, p.DateOfBirth, p.SSN, p.Email, p.Password:
		return ErrMissingFields
	}
	return nil
}

// SignUp registers a user, provisions a customer on the payment rail and
// issues a session token. Rail provisioning is part of the contract: if the
// rail refuses the customer, sign-up fails.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (*Profile, string, error) {
	if err := params.validate(); err != nil {
		return nil, "", err
	}

	existing, err := s.repo.GetByEmail(ctx, params.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailExists
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, CreateUserParams{
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Address:      params.Address,
		City:         params.City,
		State:        params.State,
		PostalCode:   params.PostalCode,
		DateOfBirth:  params.DateOfBirth,
		SSN:          params.SSN,
		Email:        params.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	customerURL, err := s.payments.CreateCustomer(ctx, dwolla.CustomerParams{
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		Email:       params.Email,
		Address1:    params.Address,
		City:        params.City,
		State:       params.State,
		PostalCode:  params.PostalCode,
		DateOfBirth: params.DateOfBirth,
		SSN:         params.SSN,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to provision payment customer: %w", err)
	}

	customerID := dwolla.ExtractCustomerID(customerURL)
	if err := s.repo.SetPaymentCustomer(ctx, u.ID, customerID, customerURL); err != nil {
		return nil, "", fmt.Errorf("failed to store payment customer: %w", err)
	}
	u.DwollaCustomerID = &customerID
	u.DwollaCustomerURL = &customerURL

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	log.Printf("User %s signed up", u.ID)
	return u.Profile(), token, nil
}

type SignInParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn verifies credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, params SignInParams) (*Profile, string, error) {
	if params.Email == "" || params.Password == "" {
		return nil, "", ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, params.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(u.PasswordHash, params.Password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	return u.Profile(), token, nil
}

// CurrentUser resolves a session token to a profile. An invalid token or a
// deleted user both mean guest, reported as (nil, nil).
func (s *Service) CurrentUser(ctx context.Context, token string) (*Profile, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, nil
		}
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	return u.Profile(), nil
}

// GetByID loads the full user row for internal callers that need rail handles.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
