package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/likbrus/likbrus.github.io/internal/config"
	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/model"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	users    *stubUserRepo
	admins   *stubAdminRepo
	sessions *stubSessionStore
	notifier *stubNotifier
	svc      service.AuthService
	user     *model.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:    newStubUserRepo(),
		admins:   newStubAdminRepo(),
		sessions: newStubSessionStore(),
		notifier: &stubNotifier{},
	}
	hash, err := service.HashPassword("hemmelig")
	require.NoError(t, err)
	f.user = &model.User{ID: uuid.New(), Email: "leder@klubb.no", PasswordHash: hash}
	require.NoError(t, f.users.Upsert(context.Background(), f.user))

	cfg := &config.Config{JWTSecret: "test-secret-with-at-least-32-chars!", JWTExpirationHours: 1, JWTRefreshHours: 24}
	f.svc = service.NewAuthService(f.users, f.admins, f.sessions, f.notifier, cfg)
	return f
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "Leder@Klubb.no", Password: "hemmelig"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.False(t, resp.User.IsAdmin)
	assert.Len(t, f.sessions.sessions, 1)
	assert.Equal(t, []string{"auth:signed_in"}, f.notifier.tables())
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "leder@klubb.no", Password: "feil"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Email: "ukjent@klubb.no", Password: "hemmelig"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Empty(t, f.sessions.sessions)
}

func TestResolve_DerivesPrivilegeEachTime(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "leder@klubb.no", Password: "hemmelig"})
	require.NoError(t, err)

	id, err := f.svc.Resolve(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.False(t, id.Privileged)

	require.NoError(t, f.admins.Grant(context.Background(), f.user.ID))
	id, err = f.svc.Resolve(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, id.Privileged)

	f.admins.fail = errors.New("lookup failed")
	id, err = f.svc.Resolve(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.False(t, id.Privileged)
}

func TestResolve_RejectsRefreshTokenAndGarbage(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "leder@klubb.no", Password: "hemmelig"})
	require.NoError(t, err)

	_, err = f.svc.Resolve(context.Background(), resp.RefreshToken)
	assert.ErrorIs(t, err, service.ErrSessionExpired)

	_, err = f.svc.Resolve(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, service.ErrSessionExpired)

	_, err = f.svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestLogout_RevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "leder@klubb.no", Password: "hemmelig"})
	require.NoError(t, err)
	id, err := f.svc.Resolve(context.Background(), resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), id.SessionID))

	_, err = f.svc.Resolve(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, service.ErrSessionExpired)
	_, err = f.svc.Refresh(context.Background(), resp.RefreshToken)
	assert.ErrorIs(t, err, service.ErrSessionExpired)
	assert.Contains(t, f.notifier.tables(), "auth:signed_out")
}

func TestRefresh_IssuesNewTokens(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "leder@klubb.no", Password: "hemmelig"})
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	_, err = f.svc.Resolve(context.Background(), refreshed.AccessToken)
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, service.ErrSessionExpired)
}
