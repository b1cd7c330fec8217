package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, ttl time.Duration) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("console-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewService(client, string(hash), ttl), mr
}

func TestProxyLoginIssuesToken(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	tok, err := svc.ProxyLogin(context.Background(), "console-secret")

	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, time.Minute)
	assert.NoError(t, svc.Verify(context.Background(), tok.Token))
}

func TestProxyLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	_, err := svc.ProxyLogin(context.Background(), "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc, mr := newTestService(t, time.Minute)

	tok, err := svc.ProxyLogin(context.Background(), "console-secret")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	assert.ErrorIs(t, svc.Verify(context.Background(), tok.Token), ErrTokenUnknown)
}

func TestRevoke(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	tok, err := svc.ProxyLogin(context.Background(), "console-secret")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), tok.Token))
	assert.ErrorIs(t, svc.Verify(context.Background(), tok.Token), ErrTokenUnknown)
}
