package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/infra/security"
	"github.com/yakubikk/railway-registry/internal/repository"
)

type fakeUserRepo struct {
	byID       map[string]domain.User
	byEmail    map[string]domain.User
	lastLogin  map[string]time.Time
	createErr  error
	touchErr   error
	getByEmail func(email string) (*domain.User, error)
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:      make(map[string]domain.User),
		byEmail:   make(map[string]domain.User),
		lastLogin: make(map[string]time.Time),
	}
}

func (f *fakeUserRepo) add(user domain.User) {
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
}

func (f *fakeUserRepo) Create(_ context.Context, user domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byEmail[user.Email]; exists {
		return repository.ErrConflict
	}
	f.add(user)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.getByEmail != nil {
		return f.getByEmail(email)
	}
	user, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (f *fakeUserRepo) List(context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(f.byID))
	for _, user := range f.byID {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user domain.User) error {
	if _, ok := f.byID[user.ID]; !ok {
		return repository.ErrNotFound
	}
	f.add(user)
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	user, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.byEmail, user.Email)
	return nil
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.lastLogin[id] = at
	return nil
}

type fakeDenylist struct {
	revoked map[string]string
	markErr error
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{revoked: make(map[string]string)}
}

func (f *fakeDenylist) MarkRevoked(_ context.Context, jti, reason string, _ time.Duration) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.revoked[jti] = reason
	return nil
}

func (f *fakeDenylist) IsRevoked(_ context.Context, jti string) (bool, string, error) {
	reason, ok := f.revoked[jti]
	return ok, reason, nil
}

const authTestSecret = "0123456789abcdef0123456789abcdef"

func newAuthTestService(t *testing.T, users *fakeUserRepo, denylist *fakeDenylist) *AuthService {
	t.Helper()
	authority, err := security.NewTokenAuthority(security.TokenAuthorityOptions{
		Secret: authTestSecret,
		Issuer: "railway-registry",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenAuthority: %v", err)
	}
	return NewAuthService(users, authority, denylist, zaptest.NewLogger(t))
}

func seedUser(t *testing.T, users *fakeUserRepo, email, password string, roles ...domain.Role) domain.User {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := domain.User{
		ID:           "user-" + email,
		Email:        email,
		FullName:     "Test User",
		PasswordHash: hash,
		Roles:        roles,
		RegisteredAt: time.Now().UTC(),
	}
	users.add(user)
	return user
}

func TestLoginIssuesResolvableCredential(t *testing.T) {
	users := newFakeUserRepo()
	seeded := seedUser(t, users, "alice@example.com", "correct horse", domain.RoleUser, domain.RoleModerator)
	service := newAuthTestService(t, users, newFakeDenylist())

	credential, user, err := service.Login(context.Background(), " Alice@Example.COM ", "correct horse", false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("returned user must not carry the password hash")
	}
	if credential.ExpiresAt.IsZero() {
		t.Error("credential must carry an absolute expiry")
	}
	if _, ok := users.lastLogin[seeded.ID]; !ok {
		t.Error("login must record last-login time")
	}

	principal, err := service.ResolvePrincipal(context.Background(), credential.Token)
	if err != nil {
		t.Fatalf("ResolvePrincipal: %v", err)
	}
	if principal.ID != seeded.ID {
		t.Fatalf("principal id = %q, want %q", principal.ID, seeded.ID)
	}
	if !principal.HasAnyRole([]domain.Role{domain.RoleModerator}) {
		t.Error("principal must carry the issuance-time role snapshot")
	}
}

func TestLoginRejectsBadPasswordAndUnknownEmail(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(t, users, "alice@example.com", "correct horse", domain.RoleUser)
	service := newAuthTestService(t, users, newFakeDenylist())

	if _, _, err := service.Login(context.Background(), "alice@example.com", "wrong", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password: err = %v, want ErrInvalidCredentials", err)
	}
	// Unknown email yields the same error so callers cannot probe for accounts.
	if _, _, err := service.Login(context.Background(), "nobody@example.com", "whatever", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginSurvivesLastLoginFailure(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(t, users, "alice@example.com", "correct horse", domain.RoleUser)
	users.touchErr = errors.New("write timeout")
	service := newAuthTestService(t, users, newFakeDenylist())

	if _, _, err := service.Login(context.Background(), "alice@example.com", "correct horse", false); err != nil {
		t.Fatalf("last-login bookkeeping must not fail the login: %v", err)
	}
}

func TestRegisterAssignsDefaultRole(t *testing.T) {
	users := newFakeUserRepo()
	service := newAuthTestService(t, users, newFakeDenylist())

	credential, user, err := service.Register(context.Background(), RegisterInput{
		Email:    "Bob@Example.com",
		FullName: "  Bob Builder  ",
		Password: "sufficiently long",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "bob@example.com" {
		t.Errorf("email = %q, want normalized lowercase", user.Email)
	}
	if user.FullName != "Bob Builder" {
		t.Errorf("full name = %q, want trimmed", user.FullName)
	}
	if len(user.Roles) != 1 || user.Roles[0] != domain.RoleUser {
		t.Errorf("roles = %v, want default USER", user.Roles)
	}
	if user.PasswordHash != "" {
		t.Error("returned user must not carry the password hash")
	}

	principal, err := service.ResolvePrincipal(context.Background(), credential.Token)
	if err != nil {
		t.Fatalf("ResolvePrincipal: %v", err)
	}
	if principal.Email != "bob@example.com" {
		t.Errorf("principal email = %q", principal.Email)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(t, users, "alice@example.com", "correct horse", domain.RoleUser)
	service := newAuthTestService(t, users, newFakeDenylist())

	_, _, err := service.Register(context.Background(), RegisterInput{
		Email:    "ALICE@example.com",
		Password: "another password",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLogoutRevokesCredential(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(t, users, "alice@example.com", "correct horse", domain.RoleUser)
	denylist := newFakeDenylist()
	service := newAuthTestService(t, users, denylist)

	credential, _, err := service.Login(context.Background(), "alice@example.com", "correct horse", false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := service.Logout(context.Background(), credential.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(denylist.revoked) != 1 {
		t.Fatalf("denylist entries = %d, want 1", len(denylist.revoked))
	}

	if _, err := service.ResolvePrincipal(context.Background(), credential.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("err = %v, want ErrSessionRevoked", err)
	}
}

func TestLogoutIgnoresInvalidToken(t *testing.T) {
	denylist := newFakeDenylist()
	service := newAuthTestService(t, newFakeUserRepo(), denylist)

	if err := service.Logout(context.Background(), "not-a-credential"); err != nil {
		t.Fatalf("invalid token logout must be a no-op: %v", err)
	}
	if len(denylist.revoked) != 0 {
		t.Fatal("invalid token must not reach the denylist")
	}
}

func TestResolvePrincipalPassesTokenErrorsThrough(t *testing.T) {
	service := newAuthTestService(t, newFakeUserRepo(), newFakeDenylist())

	if _, err := service.ResolvePrincipal(context.Background(), "garbage"); !errors.Is(err, security.ErrTokenMalformed) {
		t.Fatalf("err = %v, want ErrTokenMalformed", err)
	}
}
