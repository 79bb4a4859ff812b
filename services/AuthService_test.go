package services

import (
	"context"
	"testing"
	"time"

	"TaskWheelService/commands"
	"TaskWheelService/config"
	"TaskWheelService/repository"
	"TaskWheelService/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, *TokenManager) {
	t.Helper()
	tokens := NewTokenManager("test-secret", time.Hour)
	s := NewAuthService(
		repository.NewMemoryUserRepository(),
		NewPasswordHasher(bcrypt.MinCost),
		tokens,
		validation.New(config.ClassicVocabulary()),
		nil,
	)
	return s, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	s, _ := newAuthService(t)
	ctx := context.Background()

	user, token, err := s.Register(ctx, commands.RegisterCommand{
		FullName: " Ada Lovelace ",
		Email:    "Ada@Example.com",
		Password: "analytical",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.FullName)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "analytical", user.PasswordHash)

	owner, err := s.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, owner)

	loggedIn, token, err := s.Login(ctx, commands.LoginCommand{Email: "ADA@example.com", Password: "analytical"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)

	me, err := s.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s, _ := newAuthService(t)
	ctx := context.Background()
	cmd := commands.RegisterCommand{FullName: "Ada", Email: "ada@example.com", Password: "secret1"}

	_, _, err := s.Register(ctx, cmd)
	require.NoError(t, err)

	cmd.Email = "ADA@example.com"
	_, _, err = s.Register(ctx, cmd)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newAuthService(t)
	_, _, err := s.Register(context.Background(), commands.RegisterCommand{FullName: "A", Email: "nope", Password: "123"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s, _ := newAuthService(t)
	ctx := context.Background()
	_, _, err := s.Register(ctx, commands.RegisterCommand{FullName: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = s.Login(ctx, commands.LoginCommand{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.Login(ctx, commands.LoginCommand{Email: "bob@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMeUnknownUser(t *testing.T) {
	s, _ := newAuthService(t)
	_, err := s.Me(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTokenManager(t *testing.T) {
	issued := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret", time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.CreateToken("user-1", "ada@example.com")
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		subject, err := m.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", subject)
	})

	t.Run("expired", func(t *testing.T) {
		later := *m
		later.now = func() time.Time { return issued.Add(2 * time.Hour) }
		_, err := later.VerifyToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other", time.Hour)
		other.now = m.now
		_, err := other.VerifyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.VerifyToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: "taskwheel"},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.VerifyToken(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("hunter22")
	require.NoError(t, err)

	assert.True(t, h.Verify("hunter22", hash))
	assert.False(t, h.Verify("hunter23", hash))
	assert.False(t, h.Verify("hunter22", "not-a-hash"))

	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
}
