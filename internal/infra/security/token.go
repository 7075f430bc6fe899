package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

var (
	// ErrTokenMalformed indicates the credential is structurally invalid or
	// its signature does not verify.
	ErrTokenMalformed = errors.New("token: malformed")
	// ErrTokenExpired indicates the credential lapsed before verification.
	ErrTokenExpired = errors.New("token: expired")
)

// MinSecretLength is the smallest signing secret the authority accepts.
const MinSecretLength = 32

const defaultClockSkew = 60 * time.Second

// SessionClaims is the decoded payload of a signed session credential. The
// role snapshot is fixed at issuance and does not reflect later role changes
// until the credential is re-issued.
type SessionClaims struct {
	Roles      []string `json:"roles,omitempty"`
	Email      string   `json:"email,omitempty"`
	RememberMe bool     `json:"remember_me,omitempty"`
	jwt.RegisteredClaims
}

// TokenAuthorityOptions configures a TokenAuthority.
type TokenAuthorityOptions struct {
	Secret        string
	Issuer        string
	Audience      []string
	TTL           time.Duration
	RememberMeTTL time.Duration
	ClockSkew     time.Duration
}

// TokenAuthority issues and verifies HMAC-SHA256 signed session credentials.
// It holds no mutable state beyond an injectable clock and is safe for
// concurrent use.
type TokenAuthority struct {
	secret      []byte
	issuer      string
	audience    []string
	ttl         time.Duration
	rememberTTL time.Duration
	leeway      time.Duration
	now         func() time.Time
}

// NewTokenAuthority validates the key material and constructs an authority.
func NewTokenAuthority(opts TokenAuthorityOptions) (*TokenAuthority, error) {
	if len(opts.Secret) < MinSecretLength {
		return nil, fmt.Errorf("token: signing secret must be at least %d bytes", MinSecretLength)
	}

	issuer := strings.TrimSpace(opts.Issuer)
	if issuer == "" {
		return nil, fmt.Errorf("token: issuer is required")
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	rememberTTL := opts.RememberMeTTL
	if rememberTTL <= 0 {
		rememberTTL = 30 * 24 * time.Hour
	}
	leeway := opts.ClockSkew
	if leeway <= 0 {
		leeway = defaultClockSkew
	}

	authority := &TokenAuthority{
		secret:      []byte(opts.Secret),
		issuer:      issuer,
		audience:    opts.Audience,
		ttl:         ttl,
		rememberTTL: rememberTTL,
		leeway:      leeway,
	}
	authority.now = func() time.Time { return time.Now().UTC() }
	return authority, nil
}

// WithClock overrides the authority clock for deterministic tests.
func (a *TokenAuthority) WithClock(clock func() time.Time) *TokenAuthority {
	if clock != nil {
		a.now = clock
	}
	return a
}

// IssueOptions selects the credential lifetime.
type IssueOptions struct {
	RememberMe bool
}

// Issue builds, signs, and encodes a credential for the subject. The role
// snapshot and expiry are fixed here; the credential is never mutated
// afterwards. Returns the encoded token and its absolute expiry.
func (a *TokenAuthority) Issue(subjectID string, roles []string, email string, opts IssueOptions) (string, time.Time, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return "", time.Time{}, fmt.Errorf("token: subject id is required")
	}

	ttl := a.ttl
	if opts.RememberMe {
		ttl = a.rememberTTL
	}

	now := a.now()
	expiresAt := now.Add(ttl)

	claims := &SessionClaims{
		Roles:      normalizeRoles(roles),
		Email:      strings.TrimSpace(email),
		RememberMe: opts.RememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    a.issuer,
			Audience:  a.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: sign: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify decodes the credential, checks the signature, then checks expiry
// with the configured leeway. Expiry comparisons use a single clock snapshot
// so a credential cannot pass one check and fail another within the same
// verification.
func (a *TokenAuthority) Verify(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMalformed
	}

	now := a.now()
	claims := &SessionClaims{}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(a.leeway),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, parserOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// RemainingLife reports how long the claims stay valid from the authority's
// current clock. Used to size denylist entries on logout.
func (a *TokenAuthority) RemainingLife(claims *SessionClaims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	remaining := claims.ExpiresAt.Time.Sub(a.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func normalizeRoles(input []string) []string {
	if len(input) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, role := range input {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		if _, exists := seen[role]; exists {
			continue
		}
		seen[role] = struct{}{}
		result = append(result, role)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
