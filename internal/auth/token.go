package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind discriminates access credentials from refresh credentials so a
// token minted for one purpose cannot be presented for the other.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

const (
	// AccessTokenTTL is the default access token lifetime.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the default refresh token lifetime.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// TokenType is the Authorization scheme clients present tokens with.
	TokenType = "Bearer"
)

// Claims carried by both token kinds. The wallet address rides in the
// registered Subject claim.
type Claims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"kind"`
}

// SignToken mints a compact HS256 JWT for wallet. Access and refresh tokens
// are signed with distinct secrets selected by the caller.
func SignToken(wallet string, kind TokenKind, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   wallet,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	})
	return token.SignedString(secret)
}

// VerifyToken validates the signature and expiry of tokenString against
// secret and checks that its kind matches the caller's expectation. Signature
// and expiry failures yield ErrTokenInvalid; an otherwise valid token of the
// wrong kind yields ErrTokenWrongKind.
func VerifyToken(tokenString string, kind TokenKind, secret []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrTokenInvalid
	}
	if claims.Kind != kind {
		return "", ErrTokenWrongKind
	}
	return claims.Subject, nil
}
