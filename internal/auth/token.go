package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSession is returned for any credential that fails verification:
// malformed, bad signature, expired, or revoked. Callers never learn which.
var ErrInvalidSession = errors.New("invalid session")

// Claims holds the session credential claims binding a user id to an expiry.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// Revoker records revoked session ids (jti) until their natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenService issues and verifies session credentials.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
}

// NewTokenService creates a session token service. Revoker may be nil, in which
// case sessions are valid until expiry with no revocation check.
func NewTokenService(secret string, expireHours int, revoker Revoker) *TokenService {
	return &TokenService{
		secret:  []byte(secret),
		ttl:     time.Duration(expireHours) * time.Hour,
		revoker: revoker,
	}
}

// TTL returns the session lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue creates a new signed session credential for the user.
func (s *TokenService) Issue(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, expiry, and revocation. On any failure it returns
// ErrInvalidSession; it never partially succeeds.
func (s *TokenService) Verify(ctx context.Context, raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidSession
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}
	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil || revoked {
			return nil, ErrInvalidSession
		}
	}
	return claims, nil
}

// RevokeClaims marks the session's jti revoked until the credential would have
// expired anyway. No-op without a revoker.
func (s *TokenService) RevokeClaims(ctx context.Context, claims *Claims) error {
	if s.revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := s.ttl
	if claims.ExpiresAt != nil {
		if remain := time.Until(claims.ExpiresAt.Time); remain > 0 {
			ttl = remain
		}
	}
	return s.revoker.Revoke(ctx, claims.ID, ttl)
}
