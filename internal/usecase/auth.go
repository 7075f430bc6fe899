package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/core/port"
	"github.com/yakubikk/railway-registry/internal/infra/logger"
	"github.com/yakubikk/railway-registry/internal/infra/security"
	"github.com/yakubikk/railway-registry/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken indicates a user with the provided email already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrSessionRevoked indicates the credential's jti is on the denylist.
	ErrSessionRevoked = errors.New("session revoked")
)

// AuthService issues, resolves, and revokes session credentials. Login and
// registration exist only to produce the signed credential; the registries
// themselves are guarded elsewhere.
type AuthService struct {
	users    port.UserRepository
	tokens   *security.TokenAuthority
	denylist port.TokenDenylist
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(users port.UserRepository, tokens *security.TokenAuthority, denylist port.TokenDenylist, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	service := &AuthService{
		users:    users,
		tokens:   tokens,
		denylist: denylist,
		logger:   log,
	}
	service.now = func() time.Time { return time.Now().UTC() }
	return service
}

// WithClock overrides the service clock for deterministic tests.
func (s *AuthService) WithClock(clock func() time.Time) *AuthService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Credential couples an encoded session token with its absolute expiry.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Login verifies the password and issues a fresh credential. The role
// snapshot inside the credential is fixed here and stays stale until the
// next login, by design.
func (s *AuthService) Login(ctx context.Context, email, password string, rememberMe bool) (*Credential, *domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	credential, err := s.issue(*user, rememberMe)
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn("update last login failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	return credential, &sanitized, nil
}

// RegisterInput captures the account registration payload.
type RegisterInput struct {
	Email      string
	FullName   string
	Password   string
	RememberMe bool
}

// Register creates a user record with the default role and issues a
// credential, mirroring the login flow.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Credential, *domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, nil, fmt.Errorf("email is required")
	}
	if input.Password == "" {
		return nil, nil, fmt.Errorf("password is required")
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("lookup user by email: %w", err)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		Roles:        []domain.Role{domain.RoleUser},
		RegisteredAt: s.now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	credential, err := s.issue(user, input.RememberMe)
	if err != nil {
		return nil, nil, err
	}

	sanitized := user
	sanitized.PasswordHash = ""
	return credential, &sanitized, nil
}

// Logout revokes the credential server-side by denylisting its jti for the
// remainder of its life. The client deletes its copy regardless; an already
// invalid credential is a no-op, not an error.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.tokens.Verify(rawToken)
	if err != nil {
		return nil
	}

	jti := strings.TrimSpace(claims.ID)
	ttl := s.tokens.RemainingLife(claims)
	if jti == "" || ttl <= 0 {
		return nil
	}

	if err := s.denylist.MarkRevoked(ctx, jti, "logout", ttl); err != nil {
		return fmt.Errorf("denylist jti: %w", err)
	}

	s.logger.Info("session revoked",
		zap.String("user_id", claims.Subject),
		zap.String("jti", logger.MaskString(jti)),
	)
	return nil
}

// ResolvePrincipal verifies a raw credential and maps its claims to a
// principal. Token errors pass through unchanged so the transport layer can
// keep the expired/malformed distinction for diagnostics.
func (s *AuthService) ResolvePrincipal(ctx context.Context, rawToken string) (domain.Principal, error) {
	claims, err := s.tokens.Verify(rawToken)
	if err != nil {
		return domain.Anonymous, err
	}

	if jti := strings.TrimSpace(claims.ID); jti != "" && s.denylist != nil {
		revoked, _, err := s.denylist.IsRevoked(ctx, jti)
		if err != nil {
			return domain.Anonymous, fmt.Errorf("check denylist: %w", err)
		}
		if revoked {
			return domain.Anonymous, ErrSessionRevoked
		}
	}

	return domain.Principal{
		ID:    claims.Subject,
		Email: claims.Email,
		Roles: domain.RolesFromNames(claims.Roles),
	}, nil
}

func (s *AuthService) issue(user domain.User, rememberMe bool) (*Credential, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, domain.RoleNames(user.Roles), user.Email, security.IssueOptions{RememberMe: rememberMe})
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}
	return &Credential{Token: token, ExpiresAt: expiresAt}, nil
}
