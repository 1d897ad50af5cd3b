package user

import "context"

// User is the stored identity row. PasswordHash and SSN never leave the
// service layer; handlers only ever see a Profile.
type User struct {
	ID                string
	FirstName         string
	LastName          string
	Address           string
	City              string
	State             string
	PostalCode        string
	DateOfBirth       string
	SSN               string
	Email             string
	PasswordHash      string
	DwollaCustomerID  *string
	DwollaCustomerURL *string
}

// Profile is the sanitized projection returned to callers.
type Profile struct {
	ID               string `json:"id"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Address          string `json:"address1"`
	City             string `json:"city"`
	State            string `json:"state"`
	PostalCode       string `json:"postalCode"`
	DateOfBirth      string `json:"dateOfBirth"`
	Email            string `json:"email"`
	DwollaCustomerID string `json:"dwollaCustomerId,omitempty"`
}

// Profile strips credentials and the national identifier from the row.
func (u *User) Profile() *Profile {
	p := &Profile{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Address:     u.Address,
		City:        u.City,
		State:       u.State,
		PostalCode:  u.PostalCode,
		DateOfBirth: u.DateOfBirth,
		Email:       u.Email,
	}
	if u.DwollaCustomerID != nil {
		p.DwollaCustomerID = *u.DwollaCustomerID
	}
	return p
}

type CreateUserParams struct {
	FirstName    string
	LastName     string
	Address      string
	City         string
	State        string
	PostalCode   string
	DateOfBirth  string
	SSN          string
	Email        string
	PasswordHash string
}

// Repository is the persistence contract for users. Lookups return
// (nil, nil) when no row exists; absence is not an error.
type Repository interface {
	Create(ctx context.Context, params CreateUserParams) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	SetPaymentCustomer(ctx context.Context, id, customerID, customerURL string) error
}
