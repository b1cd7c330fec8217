// Package auth implements the console's proxy login: a password exchange for
// an opaque bearer token held in Redis with a TTL.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indicates a failed proxy login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrTokenUnknown indicates a missing or expired token.
var ErrTokenUnknown = errors.New("unknown token")

const tokenKeyPrefix = "auth:token:"

// Service issues and verifies console tokens.
type Service struct {
	client       *redis.Client
	passwordHash string
	ttl          time.Duration
}

// NewService constructs the auth service. passwordHash is a bcrypt hash of
// the console password.
func NewService(client *redis.Client, passwordHash string, ttl time.Duration) *Service {
	return &Service{client: client, passwordHash: passwordHash, ttl: ttl}
}

// Token is an issued bearer token.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProxyLogin verifies the console password and issues a token.
func (s *Service) ProxyLogin(ctx context.Context, password string) (Token, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return Token{}, ErrInvalidCredentials
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return Token{}, fmt.Errorf("auth: generate token: %w", err)
	}
	token := hex.EncodeToString(raw)

	expiresAt := time.Now().Add(s.ttl)
	if err := s.client.Set(ctx, tokenKeyPrefix+token, expiresAt.Unix(), s.ttl).Err(); err != nil {
		return Token{}, fmt.Errorf("auth: store token: %w", err)
	}
	return Token{Token: token, ExpiresAt: expiresAt}, nil
}

// Verify checks that a token exists and has not expired.
func (s *Service) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenUnknown
	}
	err := s.client.Get(ctx, tokenKeyPrefix+token).Err()
	if err == redis.Nil {
		return ErrTokenUnknown
	}
	if err != nil {
		return fmt.Errorf("auth: verify token: %w", err)
	}
	return nil
}

// Revoke deletes a token ahead of its TTL.
func (s *Service) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, tokenKeyPrefix+token).Err()
}
