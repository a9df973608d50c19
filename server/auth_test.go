package main

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) (*Auth, ProfileStore) {
	t.Helper()
	s := openSQLiteStore(t)
	a, err := NewAuth(context.Background(), s, "", time.Hour, zerolog.Nop())
	require.NoError(t, err)
	return a, s
}

func TestAuthSecretIsPersisted(t *testing.T) {
	a, s := newTestAuth(t)
	ctx := context.Background()

	h, err := s.Setting(ctx, jwtSecretSetting)
	require.NoError(t, err)
	b, err := hex.DecodeString(h)
	require.NoError(t, err)
	assert.Len(t, b, 32)
	assert.Equal(t, a.jwtSecret, b)

	// a second instance reuses it, so old tokens stay valid
	_, token, err := a.Guest(ctx, "")
	require.NoError(t, err)
	a2, err := NewAuth(ctx, s, "", time.Hour, zerolog.Nop())
	require.NoError(t, err)
	_, _, err = a2.ValidateToken(token)
	assert.NoError(t, err)
}

func TestAuthExplicitSecret(t *testing.T) {
	s := openSQLiteStore(t)
	a, err := NewAuth(context.Background(), s, "hunter2", 0, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []byte("hunter2"), a.jwtSecret)
	assert.Equal(t, defaultTokenTTL, a.ttl)

	h, err := s.Setting(context.Background(), jwtSecretSetting)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestRegisterAndLogin(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	p, token, err := a.Register(ctx, "  Tanker_1 ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Tanker_1", p.Username)
	assert.False(t, p.Guest)
	assert.NotEqual(t, "secret", p.PassHash)

	id, name, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, id)
	assert.Equal(t, "Tanker_1", name)

	got, _, err := a.Login(ctx, "tanker_1", "secret", "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, _, err = a.Login(ctx, "Tanker_1", "wrong", "1.2.3.4")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, _, err = a.Login(ctx, "nobody", "secret", "1.2.3.4")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, _, err = a.Register(ctx, "TANKER_1", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestGuestCannotLogin(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	g, _, err := a.Guest(ctx, "Visitor")
	require.NoError(t, err)
	assert.Equal(t, "Visitor", g.Username)
	assert.True(t, g.Guest)

	_, _, err = a.Login(ctx, "Visitor", "", "1.2.3.4")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestGuestNameFallback(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	for _, name := range []string{"", "x", "bad name!"} {
		p, _, err := a.Guest(ctx, name)
		require.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(p.Username, "Guest_"), p.Username)
	}

	_, _, err := a.Guest(ctx, "Taken")
	require.NoError(t, err)
	p, _, err := a.Guest(ctx, "taken")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Username, "Guest_"), "a taken name falls back")
}

func TestLoginRateLimit(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	for i := 0; i < maxLoginAttempts; i++ {
		_, _, err := a.Login(ctx, "ghost", "pw", "9.9.9.9")
		require.ErrorIs(t, err, ErrBadCredentials, "attempt %d", i+1)
	}
	_, _, err := a.Login(ctx, "ghost", "pw", "9.9.9.9")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// other addresses are unaffected
	_, _, err = a.Login(ctx, "ghost", "pw", "8.8.8.8")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  error
	}{
		{"alice", "alice", nil},
		{"  bob_2  ", "bob_2", nil},
		{"", "", ErrUsernameRequired},
		{"   ", "", ErrUsernameRequired},
		{"ab", "", ErrUsernameLength},
		{strings.Repeat("a", 21), "", ErrUsernameLength},
		{"no spaces", "", ErrUsernameChars},
		{"dash-ed", "", ErrUsernameChars},
	}
	for _, tt := range tests {
		got, err := ValidateUsername(tt.in)
		if tt.err != nil {
			if err != tt.err {
				t.Errorf("ValidateUsername(%q) err = %v, want %v", tt.in, err, tt.err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ValidateUsername(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("abc"), ErrPasswordLength)
	assert.NoError(t, ValidatePassword("abcd"))
	assert.NoError(t, ValidatePassword(strings.Repeat("x", 100)))
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("x", 101)), ErrPasswordLength)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	a, _ := newTestAuth(t)
	_, token, err := a.Guest(context.Background(), "")
	require.NoError(t, err)

	i := strings.LastIndex(token, ".") + 5
	c := byte('a')
	if token[i] == 'a' {
		c = 'b'
	}
	tampered := token[:i] + string(c) + token[i+1:]
	_, _, err = a.ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, _, err = a.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)

	other, err := NewAuth(context.Background(), openSQLiteStore(t), "", time.Hour, zerolog.Nop())
	require.NoError(t, err)
	_, _, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSession, "foreign secret")
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	a, _ := newTestAuth(t)
	claims := sessionClaims{
		Username: "old",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "p1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	require.NoError(t, err)

	_, _, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateTokenRequiresExpiry(t *testing.T) {
	a, _ := newTestAuth(t)
	claims := sessionClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "p1"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	require.NoError(t, err)

	_, _, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthenticateUnknownProfile(t *testing.T) {
	a, _ := newTestAuth(t)
	token, err := a.generateToken("missing-id", "ghost")
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthenticateReturnsCurrentProfile(t *testing.T) {
	a, s := newTestAuth(t)
	ctx := context.Background()
	p, token, err := a.Guest(ctx, "Scout")
	require.NoError(t, err)

	_, err = s.UpdateProfile(ctx, p.ID, func(p *Profile) error {
		p.XP = 777
		return nil
	})
	require.NoError(t, err)

	got, err := a.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 777, got.XP)
}
