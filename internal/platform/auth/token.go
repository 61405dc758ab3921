package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token validation outcomes. The gate maps each of these to an HTTP status;
// nothing else in the system should inspect raw jwt errors.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// DefaultTokenTTL is the access token lifetime used when no TTL is configured.
const DefaultTokenTTL = 24 * time.Hour

// tokenClaims is the wire shape of an access token. The role travels inside
// the token; it is not re-fetched on validation.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenService issues and validates self-contained HS256 access tokens.
// Validation is a pure function of the token bytes, the signing secret and the
// supplied clock reading; it performs no I/O, which is what lets every server
// instance sharing the secret validate any instance's tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service with the process-wide signing
// secret. The secret must be identical across all instances trusting each
// other's tokens; rotating it invalidates every outstanding token.
func NewTokenService(secret []byte, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue produces a signed token for the given subject and role. Claims are
// {sub, role, iat = now, exp = now + TTL}. Tokens issued at different instants
// differ and each stays valid until its own expiry.
func (s *TokenService) Issue(subject string, role Role, now time.Time) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if !role.Valid() {
		return "", fmt.Errorf("issue token: unknown role %q", role)
	}
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: string(role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token against the signing secret and the
// supplied clock reading. On success it returns the principal encoded in the
// claims; on failure it returns exactly one of ErrTokenMalformed,
// ErrTokenSignatureInvalid or ErrTokenExpired.
func (s *TokenService) Validate(tokenStr string, now time.Time) (*Principal, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		// Signature checked out but the claims are not ours.
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	return &Principal{Subject: claims.Subject, Role: role}, nil
}
