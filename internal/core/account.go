package core

import (
	"errors"
	"strings"
	"time"
)

// Account is the single end user of the tracker. Authentication is by
// phone number plus password; the hash is bcrypt and never serialized.
type Account struct {
	ID          int64     `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Email       string    `json:"email,omitempty"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	AddressLine string    `json:"address_line,omitempty"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
	ZipCode     string    `json:"zip_code,omitempty"`
	Country     string    `json:"country,omitempty"`
	PasswordHash string   `json:"-"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

var ErrEmptyPhone = errors.New("phone number is required")

func (a Account) Validate() error {
	if strings.TrimSpace(a.PhoneNumber) == "" {
		return ErrEmptyPhone
	}
	return nil
}

// Session is a server-side login session referenced by an opaque cookie
// token.
type Session struct {
	Token     string
	AccountID int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
