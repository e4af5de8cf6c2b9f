// Package users implements principals and the authentication state machine:
// registration, login, and the two-step second-factor flow that upgrades a
// pending token to full scope.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/healthboard/healthboard/internal/common"
	"github.com/healthboard/healthboard/internal/server/auth"
	"github.com/healthboard/healthboard/internal/server/config"
	"github.com/healthboard/healthboard/internal/server/reqctx"
)

// dummyHash is compared against when the identity is unknown, so login takes
// roughly the same time for unknown identities and wrong passwords. Both
// cases must return the identical error.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AuthResult is an issued token together with the scope it carries.
type AuthResult struct {
	Token string
	Scope auth.Scope
}

// MFASetup is the outcome of starting second-factor enrolment.
type MFASetup struct {
	Secret          string
	ProvisioningURI string
}

type Service struct {
	repo           Repository
	jwtSecret      []byte
	totpIssuer     string
	setupTokenTTL  time.Duration
	verifyTokenTTL time.Duration
	accessTokenTTL time.Duration
}

func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{
		repo:           repo,
		jwtSecret:      []byte(cfg.SecretKey),
		totpIssuer:     cfg.TOTPIssuer,
		setupTokenTTL:  cfg.SetupTokenTTL,
		verifyTokenTTL: cfg.VerifyTokenTTL,
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// Register creates a principal and issues an mfa_setup token. A duplicate
// email surfaces as common.ErrDuplicateIdentity and leaves the existing
// principal untouched.
func (s *Service) Register(ctx context.Context, email, password string) (*AuthResult, error) {

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &User{
		Email:        email,
		PasswordHash: string(hash),
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.issue(user.ID, auth.ScopeMFASetup, s.setupTokenTTL)
}

// Login verifies the password and issues a pending token whose scope depends
// solely on whether a second-factor secret is enrolled. Unknown identity and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same time as a real comparison
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, common.ErrInvalidCredential
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredential
	}

	if user.MFASecret == nil {
		return s.issue(user.ID, auth.ScopeMFASetup, s.setupTokenTTL)
	}
	return s.issue(user.ID, auth.ScopeMFAVerify, s.verifyTokenTTL)
}

// BeginMFASetup enrolls a fresh TOTP secret for the ambient principal and
// persists it. Requires mfa_setup scope. Calling it again before any code is
// verified simply overwrites the pending secret.
func (s *Service) BeginMFASetup(ctx context.Context) (*MFASetup, error) {

	if scope, _ := reqctx.Scope(ctx); scope != string(auth.ScopeMFASetup) {
		return nil, common.ErrInsufficientScope
	}
	principalID, ok := reqctx.PrincipalID(ctx)
	if !ok {
		return nil, common.ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	secret, uri, err := auth.GenerateTOTPSecret(s.totpIssuer, user.Email)
	if err != nil {
		return nil, common.ErrorInternal
	}

	// Persisted through the scoped gateway like any other request-path write.
	if err := s.repo.SetMFASecret(ctx, user.ID, secret); err != nil {
		return nil, fmt.Errorf("error storing mfa secret: %w", err)
	}

	return &MFASetup{Secret: secret, ProvisioningURI: uri}, nil
}

// VerifyMFA checks the submitted code against the stored secret and issues a
// full-scope token on success. Accepts both pending scopes. A wrong code
// returns common.ErrInvalidSecondFactor and does not invalidate the pending
// token; the caller may retry with the same token.
func (s *Service) VerifyMFA(ctx context.Context, code string) (*AuthResult, error) {

	scope, _ := reqctx.Scope(ctx)
	if scope != string(auth.ScopeMFASetup) && scope != string(auth.ScopeMFAVerify) {
		return nil, common.ErrInsufficientScope
	}
	principalID, ok := reqctx.PrincipalID(ctx)
	if !ok {
		return nil, common.ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	if user.MFASecret == nil {
		return nil, common.ErrMFANotConfigured
	}

	if !auth.VerifyTOTP(*user.MFASecret, code) {
		return nil, common.ErrInvalidSecondFactor
	}

	return s.issue(user.ID, auth.ScopeFull, s.accessTokenTTL)
}

func (s *Service) issue(principalID string, scope auth.Scope, ttl time.Duration) (*AuthResult, error) {
	token, err := auth.IssueToken(principalID, scope, s.jwtSecret, ttl)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthResult{Token: token, Scope: scope}, nil
}
