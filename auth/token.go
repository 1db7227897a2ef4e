package auth

import (
	"fmt"
	"live-poll/domain"
	"live-poll/errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "live-poll"

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens with a shared HS256 secret.
type TokenIssuer struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret string, duration time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), duration: duration, now: time.Now}
}

func (i *TokenIssuer) Duration() time.Duration {
	return i.duration
}

// Generate creates a signed JWT for a user and returns it with its expiry.
func (i *TokenIssuer) Generate(identity Identity) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.duration)

	claims := &CustomClaims{
		UserID: string(identity.UserID),
		Name:   identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(identity.UserID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", errors.ErrTokenGeneration, err)
	}
	return signed, expiresAt, nil
}

// Validate parses and checks the signature, the issuer and the expiration of a token.
func (i *TokenIssuer) Validate(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return Identity{}, errors.ErrInvalidToken
	}
	return Identity{UserID: domain.UserID(claims.UserID), Name: claims.Name}, nil
}
