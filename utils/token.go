package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptyJwtSecret = errors.New("jwt secret is empty")

// JwtCustomClaim identifies the engineer placing orders through the API.
type JwtCustomClaim struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func JwtGenerate(secret []byte, name string, role string, lifespan time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptyJwtSecret
	}
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   name,
			ExpiresAt: jwt.NewNumericDate(now.Add(lifespan)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return t.SignedString(secret)
}

func JwtValidate(secret []byte, token string) (*JwtCustomClaim, error) {
	if len(secret) == 0 {
		return nil, ErrEmptyJwtSecret
	}
	claims := &JwtCustomClaim{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
