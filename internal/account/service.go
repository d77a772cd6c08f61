package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/brgysanroque/registry/internal/auth"
	"github.com/brgysanroque/registry/internal/util"
)

var (
	// ErrNotFound indicates no account is registered under the email.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate indicates the email is already registered.
	ErrDuplicate = errors.New("user already exists")
	// ErrInvalidCredentials indicates a password mismatch.
	ErrInvalidCredentials = errors.New("invalid password")
	// ErrInvalidConfirmation indicates a wrong admin confirmation code.
	ErrInvalidConfirmation = errors.New("invalid confirmation code for admin role")
)

// ValidationError carries a user-correctable signup problem.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Store is the persistence surface the service depends on.
type Store interface {
	GetByEmail(ctx context.Context, email string) (Account, error)
	Insert(ctx context.Context, acc Account) (Account, error)
}

// Service concentrates signup, login and logout rules.
type Service struct {
	store           Store
	jwt             *auth.JWTManager
	revocations     auth.RevocationList
	adminSignupCode string
}

// NewService creates the service. adminSignupCode is the shared secret that
// gates admin signups.
func NewService(store Store, jwtManager *auth.JWTManager, revocations auth.RevocationList, adminSignupCode string) *Service {
	return &Service{
		store:           store,
		jwt:             jwtManager,
		revocations:     revocations,
		adminSignupCode: adminSignupCode,
	}
}

// LoginResult is the payload handed back on successful authentication.
type LoginResult struct {
	Token string
	Email string
	Role  string
}

// Signup registers a new account. Plaintext passwords never touch storage.
func (s *Service) Signup(ctx context.Context, email, password, role, confirmationCode string) error {
	if err := util.ValidateEmail(email); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	if err := util.ValidatePassword(password); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	if role != RoleAdmin && role != RoleViewer {
		return &ValidationError{Message: "role must be admin or viewer"}
	}
	if role == RoleAdmin && confirmationCode != s.adminSignupCode {
		return ErrInvalidConfirmation
	}

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := auth.Hash(password)
	if err != nil {
		return err
	}

	_, err = s.store.Insert(ctx, Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	return err
}

// Login verifies the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}

	ok, err := auth.Verify(password, acc.PasswordHash)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, _, err := s.jwt.GenerateAccessToken(acc.Email, acc.Role)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, Email: acc.Email, Role: acc.Role}, nil
}

// Logout revokes the presented token until its natural expiry. With no
// revocation backend configured this is a no-op and logout stays client-side.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.jwt.ParseAndValidate(rawToken)
	if err != nil {
		// Already invalid or expired; nothing to revoke.
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	return s.revocations.Revoke(ctx, claims.ID, ttl)
}
