package users

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthboard/healthboard/internal/common"
	"github.com/healthboard/healthboard/internal/server/auth"
	"github.com/healthboard/healthboard/internal/server/config"
	"github.com/healthboard/healthboard/internal/server/reqctx"
)

type fakeRepo struct {
	byID    map[string]*User
	byEmail map[string]*User
	nextID  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

func (r *fakeRepo) Create(_ context.Context, user *User) (*User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, common.ErrDuplicateIdentity
	}
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return user, nil
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *fakeRepo) SetMFASecret(_ context.Context, id string, secret string) error {
	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.MFASecret = &secret
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

// boundCtx simulates what the auth middleware does for an authenticated
// request.
func boundCtx(principalID string, scope auth.Scope) context.Context {
	ctx := reqctx.WithPrincipal(context.Background(), principalID)
	return reqctx.WithScope(ctx, string(scope))
}

func parseResult(t *testing.T, res *AuthResult, cfg *config.Config) *auth.Claims {
	t.Helper()
	claims, err := auth.ParseToken(res.Token, []byte(cfg.SecretKey))
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	return claims
}

func TestRegister_IssuesSetupToken(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	svc := NewService(newFakeRepo(), cfg)

	res, err := svc.Register(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if res.Scope != auth.ScopeMFASetup {
		t.Fatalf("expected mfa_setup scope, got %q", res.Scope)
	}

	claims := parseResult(t, res, cfg)
	if claims.Scope != auth.ScopeMFASetup {
		t.Fatalf("token scope mismatch: %q", claims.Scope)
	}
	if claims.UserID == "" {
		t.Fatalf("token missing principal")
	}
}

func TestRegister_DuplicateKeepsFirstPrincipal(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, testConfig())

	if _, err := svc.Register(context.Background(), "alice@example.com", "first-pass"); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	firstHash := repo.byEmail["alice@example.com"].PasswordHash

	_, err := svc.Register(context.Background(), "alice@example.com", "second-pass")
	if !errors.Is(err, common.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}

	if repo.byEmail["alice@example.com"].PasswordHash != firstHash {
		t.Fatalf("first principal's credential changed on duplicate registration")
	}
	if bcrypt.CompareHashAndPassword([]byte(firstHash), []byte("first-pass")) != nil {
		t.Fatalf("first password no longer verifies")
	}
}

func TestLogin_UnknownAndWrongPasswordAreIndistinguishable(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, testConfig())

	if _, err := svc.Register(context.Background(), "alice@example.com", "right-pass"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "whatever")
	_, errWrong := svc.Login(context.Background(), "alice@example.com", "wrong-pass")

	if !errors.Is(errUnknown, common.ErrInvalidCredential) {
		t.Fatalf("unknown identity: expected ErrInvalidCredential, got %v", errUnknown)
	}
	if !errors.Is(errWrong, common.ErrInvalidCredential) {
		t.Fatalf("wrong password: expected ErrInvalidCredential, got %v", errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("errors must carry no distinguishing signal: %q vs %q", errUnknown, errWrong)
	}
}

func TestLogin_BranchesOnEnrolledSecret(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	cfg := testConfig()
	svc := NewService(repo, cfg)

	if _, err := svc.Register(context.Background(), "alice@example.com", "pass"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	res, err := svc.Login(context.Background(), "alice@example.com", "pass")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Scope != auth.ScopeMFASetup {
		t.Fatalf("no secret enrolled: expected mfa_setup, got %q", res.Scope)
	}

	secret := "JBSWY3DPEHPK3PXP"
	user := repo.byEmail["alice@example.com"]
	user.MFASecret = &secret

	res, err = svc.Login(context.Background(), "alice@example.com", "pass")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Scope != auth.ScopeMFAVerify {
		t.Fatalf("secret enrolled: expected mfa_verify, got %q", res.Scope)
	}
}

func TestBeginMFASetup_RequiresSetupScope(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), testConfig())

	for _, scope := range []auth.Scope{auth.ScopeMFAVerify, auth.ScopeFull} {
		_, err := svc.BeginMFASetup(boundCtx("user-1", scope))
		if !errors.Is(err, common.ErrInsufficientScope) {
			t.Fatalf("scope %s: expected ErrInsufficientScope, got %v", scope, err)
		}
	}

	// anonymous context
	_, err := svc.BeginMFASetup(context.Background())
	if !errors.Is(err, common.ErrInsufficientScope) {
		t.Fatalf("anonymous: expected ErrInsufficientScope, got %v", err)
	}
}

func TestBeginMFASetup_PersistsSecret(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	cfg := testConfig()
	svc := NewService(repo, cfg)

	res, err := svc.Register(context.Background(), "alice@example.com", "pass")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	claims := parseResult(t, res, cfg)

	setup, err := svc.BeginMFASetup(boundCtx(claims.UserID, auth.ScopeMFASetup))
	if err != nil {
		t.Fatalf("BeginMFASetup error: %v", err)
	}
	if setup.Secret == "" || setup.ProvisioningURI == "" {
		t.Fatalf("incomplete setup result: %+v", setup)
	}

	stored := repo.byID[claims.UserID].MFASecret
	if stored == nil || *stored != setup.Secret {
		t.Fatalf("secret not persisted on principal")
	}
}

func TestVerifyMFA_FullFlowAndRetry(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	cfg := testConfig()
	svc := NewService(repo, cfg)

	res, err := svc.Register(context.Background(), "alice@example.com", "pass")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	claims := parseResult(t, res, cfg)
	ctx := boundCtx(claims.UserID, auth.ScopeMFASetup)

	setup, err := svc.BeginMFASetup(ctx)
	if err != nil {
		t.Fatalf("BeginMFASetup error: %v", err)
	}

	// Wrong code: pending state untouched, retry allowed.
	_, err = svc.VerifyMFA(ctx, "000000")
	if !errors.Is(err, common.ErrInvalidSecondFactor) {
		t.Fatalf("expected ErrInvalidSecondFactor, got %v", err)
	}

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode error: %v", err)
	}

	full, err := svc.VerifyMFA(ctx, code)
	if err != nil {
		t.Fatalf("VerifyMFA after retry error: %v", err)
	}
	if full.Scope != auth.ScopeFull {
		t.Fatalf("expected full scope, got %q", full.Scope)
	}
	fullClaims := parseResult(t, full, cfg)
	if fullClaims.UserID != claims.UserID {
		t.Fatalf("principal changed across upgrade: %q vs %q", fullClaims.UserID, claims.UserID)
	}
}

func TestVerifyMFA_ScopeAndConfigurationGuards(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	cfg := testConfig()
	svc := NewService(repo, cfg)

	res, err := svc.Register(context.Background(), "alice@example.com", "pass")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	claims := parseResult(t, res, cfg)

	// full scope cannot re-enter verification
	_, err = svc.VerifyMFA(boundCtx(claims.UserID, auth.ScopeFull), "123456")
	if !errors.Is(err, common.ErrInsufficientScope) {
		t.Fatalf("expected ErrInsufficientScope, got %v", err)
	}

	// no secret enrolled yet
	_, err = svc.VerifyMFA(boundCtx(claims.UserID, auth.ScopeMFAVerify), "123456")
	if !errors.Is(err, common.ErrMFANotConfigured) {
		t.Fatalf("expected ErrMFANotConfigured, got %v", err)
	}
}
