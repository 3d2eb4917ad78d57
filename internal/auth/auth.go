// Package auth implements phone-plus-password authentication backed by
// server-side sessions. Passwords are bcrypt hashes; session tokens are
// opaque UUIDs handed to the browser in a cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"genfin/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrPhoneTaken         = errors.New("phone number already registered")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

const minPasswordLength = 8

// Store is the slice of persistence the manager needs.
type Store interface {
	CreateAccount(ctx context.Context, a *core.Account) error
	AccountByPhone(ctx context.Context, phone string) (*core.Account, error)
	AccountByID(ctx context.Context, id int64) (*core.Account, error)
	UpdatePassword(ctx context.Context, accountID int64, passwordHash string) error
	CreateSession(ctx context.Context, s core.Session) error
	SessionByToken(ctx context.Context, token string) (*core.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type Manager struct {
	store      Store
	sessionTTL time.Duration
}

func NewManager(store Store, sessionTTL time.Duration) *Manager {
	return &Manager{store: store, sessionTTL: sessionTTL}
}

// Register creates an account. The phone number is the login identity
// and must be unique.
func (m *Manager) Register(ctx context.Context, phone, password, firstName, lastName string) (*core.Account, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, core.ErrEmptyPhone
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := m.store.AccountByPhone(ctx, phone); err == nil {
		return nil, ErrPhoneTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &core.Account{
		PhoneNumber:  phone,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := m.store.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// PhoneAvailable reports whether a phone number is still free to
// register. Used by the signup form for inline validation.
func (m *Manager) PhoneAvailable(ctx context.Context, phone string) (bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false, core.ErrEmptyPhone
	}
	_, err := m.store.AccountByPhone(ctx, phone)
	if err == nil {
		return false, nil
	}
	return true, nil
}

// Login verifies the credentials and opens a session. Unknown phone,
// wrong password and deactivated account all collapse into
// ErrInvalidCredentials.
func (m *Manager) Login(ctx context.Context, phone, password string) (*core.Session, error) {
	account, err := m.store.AccountByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := core.Session{
		Token:     uuid.NewString(),
		AccountID: account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.sessionTTL),
	}
	if err := m.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}

func (m *Manager) Logout(ctx context.Context, token string) error {
	return m.store.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to its account. Expired sessions
// are deleted on sight.
func (m *Manager) Authenticate(ctx context.Context, token string) (*core.Account, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	session, err := m.store.SessionByToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidSession
	}
	if session.Expired(time.Now().UTC()) {
		_ = m.store.DeleteSession(ctx, token)
		return nil, ErrInvalidSession
	}
	account, err := m.store.AccountByID(ctx, session.AccountID)
	if err != nil || !account.IsActive {
		return nil, ErrInvalidSession
	}
	return account, nil
}

// ChangePassword swaps the password after verifying the current one.
func (m *Manager) ChangePassword(ctx context.Context, accountID int64, current, next string) error {
	if len(next) < minPasswordLength {
		return ErrWeakPassword
	}
	account, err := m.store.AccountByID(ctx, accountID)
	if err != nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return m.store.UpdatePassword(ctx, accountID, string(hash))
}

// CleanExpired drops expired sessions and reports how many went away.
func (m *Manager) CleanExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpiredSessions(ctx, time.Now().UTC())
}
