// Package auth implements the token codec and second-factor primitives:
// signed scope-carrying JWTs and TOTP enrolment/verification.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/healthboard/healthboard/internal/common"
)

// Scope is the capability level carried by an access token. It gates which
// operations a partially authenticated principal may perform.
type Scope string

const (
	// ScopeMFASetup: password verified, no second-factor secret enrolled yet.
	ScopeMFASetup Scope = "mfa_setup"
	// ScopeMFAVerify: password verified, second factor enrolled but not
	// proven this session.
	ScopeMFAVerify Scope = "mfa_verify"
	// ScopeFull: second factor proven, data access permitted.
	ScopeFull Scope = "full"
)

// ParseScope validates a wire scope value.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeMFASetup, ScopeMFAVerify, ScopeFull:
		return Scope(s), nil
	}
	return "", common.ErrInvalidToken
}

// Claims is the JWT claim set: registered claims plus the principal identity
// and its scope.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Scope  Scope  `json:"scope"`
}

// IssueToken signs an HS256 token for the principal with the given scope and
// lifetime. Tokens are not persisted server-side; validity derives entirely
// from the signature and the expiry claim.
func IssueToken(principalID string, scope Scope, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: principalID,
		Scope:  scope,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates signature and expiry and returns the claims.
// Expired tokens yield common.ErrTokenExpired; anything else wrong with the
// token (bad signature, wrong shape, missing fields) yields
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	if _, err := ParseScope(string(claims.Scope)); err != nil {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
