// Package auth turns credentials into trusted user ids. The core services
// never see passwords or tokens, only the id issued here.
package auth

import (
	"context" // Request scope
	"errors"  // Error inspection
	"time"    // Token lifetime

	"banking_api/internal/domain"  // Domain models
	"banking_api/internal/service" // Core services
	"banking_api/internal/utils"   // JWT helpers

	"golang.org/x/crypto/bcrypt" // Password hashing
)

// maxPasswordBytes is the longest input bcrypt accepts
const maxPasswordBytes = 72

// ErrInvalidCredentials hides whether the email or the password was wrong
var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator registers users and issues tokens
type Authenticator struct {
	ledger *service.Ledger
	secret string
	ttl    time.Duration
	cost   int // bcrypt cost
}

// New creates an Authenticator signing tokens with secret
func New(ledger *service.Ledger, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{ledger: ledger, secret: secret, ttl: ttl, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost (tests use bcrypt.MinCost)
func (a *Authenticator) WithCost(cost int) *Authenticator {
	a.cost = cost
	return a
}

// Register hashes the password and creates the user with a fresh account
func (a *Authenticator) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	// bcrypt limits the password in bytes, not characters
	if password == "" || len(password) > maxPasswordBytes {
		return nil, service.ErrInvalidRequest
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, service.ErrInvalidRequest
	}
	if err != nil {
		return nil, err
	}
	return a.ledger.CreateUser(ctx, service.NewUser{Name: name, Email: email, PasswordHash: string(hash)})
}

// Login checks credentials and returns a signed token with its user
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := a.ledger.UserByEmail(ctx, email)
	if errors.Is(err, service.ErrUserNotFound) {
		return "", nil, ErrInvalidCredentials // Same answer as a wrong password
	}
	if err != nil {
		return "", nil, err
	}
	// Compare provided password with stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := utils.GenerateJWT(user.ID, a.secret, a.ttl)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Verify returns the user id carried by a valid token
func (a *Authenticator) Verify(token string) (uint, error) {
	claims, err := utils.ParseJWT(token, a.secret)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
