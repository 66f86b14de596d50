package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
	"github.com/fooddelivery/delivery-platform/internal/core/ports"
)

// SessionCodec signs and verifies HS256 bearer tokens. Stateless: validity
// is a function of signature and expiry only, there is no revocation list.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionCodec(secret string, ttl time.Duration) *SessionCodec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionCodec{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed token valid for the configured TTL from issuedAt.
func (c *SessionCodec) Issue(userID, username string, roles []string, issuedAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"roles":    roles,
		"iat":      issuedAt.Unix(),
		"exp":      issuedAt.Add(c.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify parses and validates a token. Malformed structure, a signature
// mismatch, and an elapsed expiry all collapse to domain.ErrInvalidToken;
// the caller treats them identically as unauthenticated.
func (c *SessionCodec) Verify(token string) (*ports.Identity, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	if sub == "" {
		return nil, domain.ErrInvalidToken
	}

	var roles []string
	if raw, ok := claims["roles"].([]interface{}); ok {
		roles = make([]string, 0, len(raw))
		for _, r := range raw {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	}

	return &ports.Identity{UserID: sub, Username: username, Roles: roles}, nil
}
