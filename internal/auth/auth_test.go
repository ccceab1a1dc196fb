package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
)

// fastParams keeps hashing cheap in tests.
var fastParams = ArgonParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

const testKeyHex = "0000000000000000000000000000000000000000000000000000000000000001"

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(fastParams)

	hash, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.True(t, h.Verify(hash, "correct horse battery staple"))
	assert.False(t, h.Verify(hash, "wrong password"))
	assert.False(t, h.Verify("not-a-hash", "correct horse battery staple"))
	assert.False(t, h.Verify(hash, strings.Repeat("x", MaxPasswordLength+1)))

	again, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salts differ")
}

func TestPasswordHasher_Rejects(t *testing.T) {
	h := NewPasswordHasher(fastParams)

	_, err := h.Hash("")
	assert.Error(t, err)

	_, err = h.Hash(strings.Repeat("x", MaxPasswordLength+1))
	assert.Error(t, err)
}

func TestPasswordHasher_NeedsRehash(t *testing.T) {
	fast := NewPasswordHasher(fastParams)
	hash, err := fast.Hash("password123")
	require.NoError(t, err)

	assert.False(t, fast.NeedsRehash(hash))
	assert.True(t, NewPasswordHasher(DefaultArgonParams).NeedsRehash(hash))
	assert.True(t, fast.NeedsRehash("garbage"))
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, 15*time.Minute, time.Hour)
	require.NoError(t, err)

	user := &domain.User{ID: "user-1", Email: "reader@example.com"}
	token, err := svc.GenerateAccessToken(user, "session-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestTokenService_Expired(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Minute, time.Hour)
	require.NoError(t, err)

	issued := time.Now().Add(-2 * time.Minute)
	svc.now = func() time.Time { return issued }
	token, err := svc.GenerateAccessToken(&domain.User{ID: "user-1"}, "session-1")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_WrongKey(t *testing.T) {
	a, err := NewTokenService(testKeyHex, time.Minute, time.Hour)
	require.NoError(t, err)
	b, err := NewTokenService(strings.Repeat("ab", 32), time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := a.GenerateAccessToken(&domain.User{ID: "user-1"}, "s")
	require.NoError(t, err)

	_, err = b.VerifyAccessToken(token)
	assert.Error(t, err)
	_, err = a.VerifyAccessToken("v4.local.garbage")
	assert.Error(t, err)
}

func TestNewTokenService_BadKey(t *testing.T) {
	_, err := NewTokenService("short", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(strings.Repeat("zz", 32), time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestRefreshTokens(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Minute, time.Hour)
	require.NoError(t, err)

	a, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	assert.Len(t, HashRefreshToken(a), 64)
	assert.Equal(t, HashRefreshToken(a), HashRefreshToken(a))
	assert.NotEqual(t, HashRefreshToken(a), HashRefreshToken(b))
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyHexSize)

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second, "key persists across restarts")

	info, err := os.Stat(filepath.Join(dir, KeyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = NewTokenService(first, time.Minute, time.Hour)
	assert.NoError(t, err)
}

func TestLoadOrGenerateKey_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyFileName), []byte("nope"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}
