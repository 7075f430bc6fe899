package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAuthority(t *testing.T, now time.Time) *TokenAuthority {
	t.Helper()

	authority, err := NewTokenAuthority(TokenAuthorityOptions{
		Secret:        testSecret,
		Issuer:        "railway-registry",
		TTL:           12 * time.Hour,
		RememberMeTTL: 30 * 24 * time.Hour,
		ClockSkew:     time.Nanosecond,
	})
	if err != nil {
		t.Fatalf("new token authority: %v", err)
	}

	return authority.WithClock(func() time.Time { return now })
}

func TestNewTokenAuthorityRejectsShortSecret(t *testing.T) {
	_, err := NewTokenAuthority(TokenAuthorityOptions{
		Secret: "too-short",
		Issuer: "railway-registry",
	})
	if err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestIssueSelectsTTLFromRememberMe(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	authority := newTestAuthority(t, issuedAt)

	_, expiresAt, err := authority.Issue("user-1", []string{"USER"}, "user@example.com", IssueOptions{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if got, want := expiresAt, issuedAt.Add(12*time.Hour); !got.Equal(want) {
		t.Fatalf("short expiry = %v, want %v", got, want)
	}

	_, expiresAt, err = authority.Issue("user-1", []string{"USER"}, "", IssueOptions{RememberMe: true})
	if err != nil {
		t.Fatalf("issue remembered: %v", err)
	}
	if got, want := expiresAt, issuedAt.Add(30*24*time.Hour); !got.Equal(want) {
		t.Fatalf("remembered expiry = %v, want %v", got, want)
	}
}

func TestVerifyRoundTripClaims(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	authority := newTestAuthority(t, issuedAt)

	token, _, err := authority.Issue("user-42", []string{"MODERATOR", "USER", "USER"}, "mod@example.com", IssueOptions{RememberMe: true})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := authority.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.Subject != "user-42" {
		t.Errorf("subject = %q, want user-42", claims.Subject)
	}
	if claims.Email != "mod@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if !claims.RememberMe {
		t.Error("remember_me flag lost")
	}
	if claims.ID == "" {
		t.Error("jti must be populated")
	}
	if got := strings.Join(claims.Roles, ","); got != "MODERATOR,USER" {
		t.Errorf("roles = %q, want deduplicated MODERATOR,USER", got)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	authority := newTestAuthority(t, issuedAt)

	token, _, err := authority.Issue("user-1", []string{"USER"}, "", IssueOptions{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// One second before the 12h expiry the credential still verifies.
	authority.WithClock(func() time.Time { return issuedAt.Add(12*time.Hour - time.Second) })
	if _, err := authority.Verify(token); err != nil {
		t.Fatalf("verify before expiry: %v", err)
	}

	// One second after, it is expired, never malformed.
	authority.WithClock(func() time.Time { return issuedAt.Add(12*time.Hour + time.Second) })
	if _, err := authority.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("verify after expiry = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyClockSkewTolerance(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	authority, err := NewTokenAuthority(TokenAuthorityOptions{
		Secret:    testSecret,
		Issuer:    "railway-registry",
		TTL:       12 * time.Hour,
		ClockSkew: 60 * time.Second,
	})
	if err != nil {
		t.Fatalf("new token authority: %v", err)
	}
	authority.WithClock(func() time.Time { return issuedAt })

	token, _, err := authority.Issue("user-1", []string{"USER"}, "", IssueOptions{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// 30s past expiry is inside the configured leeway.
	authority.WithClock(func() time.Time { return issuedAt.Add(12*time.Hour + 30*time.Second) })
	if _, err := authority.Verify(token); err != nil {
		t.Fatalf("verify within leeway: %v", err)
	}

	// 90s past expiry is outside it.
	authority.WithClock(func() time.Time { return issuedAt.Add(12*time.Hour + 90*time.Second) })
	if _, err := authority.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("verify outside leeway = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyRejectsEverySignatureBitFlip(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	authority := newTestAuthority(t, issuedAt)

	token, _, err := authority.Issue("user-1", []string{"ADMIN"}, "", IssueOptions{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		t.Fatalf("token has %d segments, want 3", len(segments))
	}

	signature := segments[2]
	// 43 base64url chars encode the 256-bit HMAC plus 2 trailing padding
	// bits; those padding bits are an encoding artifact, not signature
	// material, so flips on the final char skip them.
	padBits := len(signature)*6 - 256

	for i := 0; i < len(signature); i++ {
		minBit := uint(0)
		if i == len(signature)-1 && padBits > 0 {
			minBit = uint(padBits)
		}
		for bit := minBit; bit < 6; bit++ {
			flipped := flipBase64Char(signature[i], bit)
			if flipped == signature[i] {
				continue
			}
			tampered := segments[0] + "." + segments[1] + "." +
				signature[:i] + string(flipped) + signature[i+1:]
			if _, err := authority.Verify(tampered); !errors.Is(err, ErrTokenMalformed) {
				t.Fatalf("tampered signature at byte %d bit %d = %v, want ErrTokenMalformed", i, bit, err)
			}
		}
	}
}

// flipBase64Char flips one bit of the 6-bit value a base64url character
// encodes, keeping the result inside the alphabet.
func flipBase64Char(c byte, bit uint) byte {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	idx := strings.IndexByte(alphabet, c)
	if idx < 0 {
		return c
	}
	return alphabet[idx^(1<<bit)]
}

func TestVerifyRejectsTamperedClaims(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	authority := newTestAuthority(t, issuedAt)

	token, _, err := authority.Issue("user-1", []string{"USER"}, "", IssueOptions{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other, _, err := authority.Issue("user-2", []string{"ADMIN"}, "", IssueOptions{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Splicing claims from one token onto another's signature must fail.
	a := strings.Split(token, ".")
	b := strings.Split(other, ".")
	spliced := a[0] + "." + b[1] + "." + a[2]
	if _, err := authority.Verify(spliced); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("spliced token = %v, want ErrTokenMalformed", err)
	}
}

func TestVerifyRejectsWrongIssuerAndGarbage(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	authority := newTestAuthority(t, issuedAt)

	foreign, err := NewTokenAuthority(TokenAuthorityOptions{
		Secret: testSecret,
		Issuer: "another-service",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("new foreign authority: %v", err)
	}
	foreign.WithClock(func() time.Time { return issuedAt })

	token, _, err := foreign.Issue("user-1", []string{"USER"}, "", IssueOptions{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := authority.Verify(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("foreign issuer = %v, want ErrTokenMalformed", err)
	}

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := authority.Verify(raw); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("Verify(%q) = %v, want ErrTokenMalformed", raw, err)
		}
	}
}
