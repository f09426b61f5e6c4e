package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ErrTokenInvalid covers every way a presented token can fail
// verification: bad signature, expiry, wrong issuer, missing subject.
var ErrTokenInvalid = errors.New("token is invalid")

// Identity is the verified content of a token.
type Identity struct {
	PlayerID string
	Name     string
}

// TokenService mints and verifies the HS256 identity tokens that bind a
// player id across sockets. A reconnecting client presents the same
// token and lands on the same identity.
type TokenService struct {
	secret string
	issuer string
	ttl    time.Duration
}

// NewTokenService constructs a token service. ttl <= 0 selects 24 hours.
func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: secret, issuer: issuer, ttl: ttl}
}

// Generate signs a token for the player.
func (s *TokenService) Generate(playerID, name string) (string, error) {
	if playerID == "" {
		return "", fmt.Errorf("player id is required")
	}
	if s.secret == "" {
		return "", fmt.Errorf("token secret is not configured")
	}

	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  playerID,
		"name": name,
		"exp":  time.Now().Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify parses and validates a presented token and returns the identity
// bound into it.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrTokenInvalid
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if s.issuer != "" {
		if iss, _ := claims["iss"].(string); iss != s.issuer {
			return Identity{}, fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
		}
	}
	name, _ := claims["name"].(string)
	return Identity{PlayerID: sub, Name: name}, nil
}
