package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and verifies admin session tokens. Issuing lives in the
// session service; the console only needs it for opsctl and tests.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

type Claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

func (tm *TokenManager) Issue(uid string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(tm.ttl)
	c := Claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Parse verifies signature, expiry and issuer and returns the claims.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UID == "" {
		return nil, fmt.Errorf("%w: missing uid", ErrInvalidToken)
	}
	return claims, nil
}
