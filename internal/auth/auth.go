package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminIssuer = "cqpay-api"

var (
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidToken = errors.New("token not valid")
	ErrMissingKey   = errors.New("token signing key is empty")
)

type AuthToken interface {
	GenerateAdminToken(subject string, expiry time.Duration) (string, error)
	ValidateAdminToken(tokenString string) (*AdminPayload, error)
}

// AdminPayload identifies the operator calling the admin endpoints.
type AdminPayload struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

const RoleAdmin = "admin"

type JWTToken struct {
	secret []byte
	now    func() time.Time
}

func NewJWTToken(secret string) (*JWTToken, error) {
	if secret == "" {
		return nil, ErrMissingKey
	}

	return &JWTToken{secret: []byte(secret), now: time.Now}, nil
}

func (t *JWTToken) GenerateAdminToken(subject string, expiry time.Duration) (string, error) {
	now := t.now()

	payload := &AdminPayload{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    adminIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(t.secret)
}

func (t *JWTToken) ValidateAdminToken(tokenString string) (*AdminPayload, error) {
	payload := &AdminPayload{}

	_, err := jwt.ParseWithClaims(tokenString, payload, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(adminIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if payload.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}

	return payload, nil
}
