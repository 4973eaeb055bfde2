package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const socketTokenIssuer = "duty-roster"

// SocketClaims identify the session a live-channel handshake belongs to.
type SocketClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), ttl: ttl}
}

func (s *TokenSigner) Generate(userID, role, sessionID string) (string, error) {
	now := time.Now()
	claims := &SocketClaims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    socketTokenIssuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *TokenSigner) Parse(tokenString string) (*SocketClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SocketClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(socketTokenIssuer))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*SocketClaims)
	if !ok || claims.SessionID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
