package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/retail/storefront/internal/domain/identity"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid session token")
	ErrExpiredToken     = errors.New("session token has expired")
	ErrInvalidClaims    = errors.New("invalid session token claims")
	ErrMissingSessionID = errors.New("missing sid in claims")
)

// Claims are carried by the session cookie. The session itself lives in the
// store; the cookie only names it and pins the role it was issued for.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string        `json:"sid"`
	Role      identity.Role `json:"role"`
}

// UserID parses the subject claim
func (c *Claims) UserID() int64 {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	return id
}

// TokenCodec signs and verifies session cookie values with HS256
type TokenCodec struct {
	secret []byte
	issuer string
}

// NewTokenCodec creates a codec
func NewTokenCodec(secret, issuer string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), issuer: issuer}
}

// Encode signs a cookie value for the session
func (c *TokenCodec) Encode(sess *identity.Session) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			Subject:   strconv.FormatInt(sess.User.ID, 10),
			Audience:  jwt.ClaimStrings{c.issuer},
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			NotBefore: jwt.NewNumericDate(sess.CreatedAt.Add(-time.Second)),
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		},
		SessionID: sess.ID,
		Role:      sess.User.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies a cookie value and returns its claims
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	},
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.SessionID == "" {
		return nil, ErrMissingSessionID
	}
	return claims, nil
}
