// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroto333/references/internal/platform/apperr"
	"github.com/hiroto333/references/internal/platform/metrics"
	"github.com/hiroto333/references/internal/platform/sec"
	"github.com/hiroto333/references/internal/users/auth"
)

// # Fakes

type fakeUserRepo struct {
	users   map[string]*auth.User // by ID
	deleted map[string]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*auth.User{}, deleted: map[string]bool{}}
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := f.users[id]
	if !ok || f.deleted[id] {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for id, user := range f.users {
		if user.Email != "" && user.Email == email && !f.deleted[id] {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User not found with this email")
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for id, user := range f.users {
		if user.Username == username && !f.deleted[id] {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User not found with this username")
}

func (f *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) SoftDelete(_ context.Context, id string) error {
	f.deleted[id] = true
	return nil
}

func (f *fakeUserRepo) ListGuests(_ context.Context) ([]*auth.User, error) {
	var guests []*auth.User
	for id, user := range f.users {
		if user.IsGuest && !f.deleted[id] {
			guests = append(guests, user)
		}
	}
	return guests, nil
}

type fakeSessionRepo struct {
	sessions map[string]*auth.Session // by token hash
	revoked  map[string]bool          // by session ID
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*auth.Session{}, revoked: map[string]bool{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *auth.Session) error {
	f.sessions[session.TokenHash] = session
	return nil
}

func (f *fakeSessionRepo) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	session, ok := f.sessions[tokenHash]
	if !ok || f.revoked[session.ID] || session.ExpiresAt.Before(time.Now()) {
		return nil, apperr.NotFound("Session not found or expired")
	}
	return session, nil
}

func (f *fakeSessionRepo) Revoke(_ context.Context, sessionID string) error {
	f.revoked[sessionID] = true
	return nil
}

func (f *fakeSessionRepo) RevokeAll(_ context.Context, userID string) error {
	for _, session := range f.sessions {
		if session.UserID == userID {
			f.revoked[session.ID] = true
		}
	}
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(_ context.Context) error { return nil }

type fakeGuestRegistry struct {
	entries map[string]bool
}

func newFakeGuestRegistry() *fakeGuestRegistry {
	return &fakeGuestRegistry{entries: map[string]bool{}}
}

func (f *fakeGuestRegistry) Register(_ context.Context, userID string, _ time.Duration) error {
	f.entries[userID] = true
	return nil
}

func (f *fakeGuestRegistry) Exists(_ context.Context, userID string) (bool, error) {
	return f.entries[userID], nil
}

func (f *fakeGuestRegistry) Remove(_ context.Context, userID string) error {
	delete(f.entries, userID)
	return nil
}

type fakePurger struct {
	purged []string
}

func (f *fakePurger) PurgeOwner(_ context.Context, ownerID string) error {
	f.purged = append(f.purged, ownerID)
	return nil
}

type fakeTokenProvider struct {
	lastIsGuest bool
}

func (f *fakeTokenProvider) GenerateAccessToken(userID, _, _ string, isGuest bool, _ time.Duration) (string, error) {
	f.lastIsGuest = isGuest
	return fmt.Sprintf("token-for-%s", userID), nil
}

type fixture struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	registry *fakeGuestRegistry
	purger   *fakePurger
	tokens   *fakeTokenProvider
	service  *auth.Service
}

func newFixture() *fixture {
	f := &fixture{
		users:    newFakeUserRepo(),
		sessions: newFakeSessionRepo(),
		registry: newFakeGuestRegistry(),
		purger:   &fakePurger{},
		tokens:   &fakeTokenProvider{},
	}
	f.service = auth.NewService(
		f.users, f.sessions, f.registry, f.purger, f.tokens,
		metrics.NewWith(prometheus.NewRegistry()),
	)
	return f
}

func (f *fixture) registerMember(t *testing.T) *auth.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "hiroto",
		Email:    "hiroto@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return user
}

// # Tests

/*
TestService_Register covers enrollment and identity conflicts.
*/
func TestService_Register(t *testing.T) {
	f := newFixture()

	user := f.registerMember(t)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.IsGuest)
	assert.NotEqual(t, "correct-horse-battery", user.PasswordHash)

	// Duplicate email
	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "other",
		Email:    "hiroto@example.com",
		Password: "another-password",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// Duplicate username
	_, err = f.service.Register(context.Background(), auth.RegisterInput{
		Username: "hiroto",
		Email:    "fresh@example.com",
		Password: "another-password",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

/*
TestService_Login covers the credential check and session issuance.
*/
func TestService_Login(t *testing.T) {
	f := newFixture()
	f.registerMember(t)

	session, err := f.service.Login(context.Background(), auth.LoginInput{
		Login:    "hiroto@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.False(t, f.tokens.lastIsGuest)

	// Wrong password
	_, err = f.service.Login(context.Background(), auth.LoginInput{
		Login:    "hiroto@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// Unknown account: same generic message shape
	_, err = f.service.Login(context.Background(), auth.LoginInput{
		Login:    "nobody@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestService_GuestLogin checks guest account creation, registry tracking, and
the guest claim on issued tokens.
*/
func TestService_GuestLogin(t *testing.T) {
	f := newFixture()

	session, err := f.service.GuestLogin(context.Background(), "test-agent", "127.0.0.1")
	require.NoError(t, err)

	guest := session.User
	assert.True(t, guest.IsGuest)
	assert.Empty(t, guest.Email)
	assert.NotEmpty(t, session.RefreshToken)
	assert.True(t, f.tokens.lastIsGuest)

	registered, err := f.registry.Exists(context.Background(), guest.ID)
	require.NoError(t, err)
	assert.True(t, registered)

	// Guests cannot password-login.
	_, err = f.service.Login(context.Background(), auth.LoginInput{
		Login:    guest.Username,
		Password: "",
	})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestService_RefreshSession checks token rotation: the old refresh token dies
when the new one is born.
*/
func TestService_RefreshSession(t *testing.T) {
	f := newFixture()
	f.registerMember(t)

	first, err := f.service.Login(context.Background(), auth.LoginInput{
		Login:    "hiroto",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	rotated, err := f.service.RefreshSession(context.Background(), first.RefreshToken, "agent", "ip")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, rotated.RefreshToken)

	// Replaying the consumed token fails.
	_, err = f.service.RefreshSession(context.Background(), first.RefreshToken, "agent", "ip")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestService_Logout checks revocation and idempotency for unknown tokens.
*/
func TestService_Logout(t *testing.T) {
	f := newFixture()
	f.registerMember(t)

	session, err := f.service.Login(context.Background(), auth.LoginInput{
		Login:    "hiroto",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), session.RefreshToken))

	_, err = f.service.RefreshSession(context.Background(), session.RefreshToken, "agent", "ip")
	require.Error(t, err)

	// Logging out an already-dead token is still a success.
	require.NoError(t, f.service.Logout(context.Background(), session.RefreshToken))
	require.NoError(t, f.service.Logout(context.Background(), "never-issued"))
}

/*
TestService_CleanupGuest covers the full cascade, its idempotency, and the
member guard.
*/
func TestService_CleanupGuest(t *testing.T) {
	f := newFixture()

	session, err := f.service.GuestLogin(context.Background(), "agent", "ip")
	require.NoError(t, err)
	guestID := session.User.ID

	require.NoError(t, f.service.CleanupGuest(context.Background(), guestID))

	// References purged, sessions dead, account gone, registry cleared.
	assert.Equal(t, []string{guestID}, f.purger.purged)
	_, err = f.service.RefreshSession(context.Background(), session.RefreshToken, "agent", "ip")
	require.Error(t, err)
	assert.True(t, f.users.deleted[guestID])
	registered, _ := f.registry.Exists(context.Background(), guestID)
	assert.False(t, registered)

	// Second delivery of the beacon: successful no-op, no double purge.
	require.NoError(t, f.service.CleanupGuest(context.Background(), guestID))
	assert.Equal(t, []string{guestID}, f.purger.purged)
}

/*
TestService_CleanupGuest_MemberForbidden checks that a regular account can
never be torn down through the beacon.
*/
func TestService_CleanupGuest_MemberForbidden(t *testing.T) {
	f := newFixture()
	member := f.registerMember(t)

	err := f.service.CleanupGuest(context.Background(), member.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Empty(t, f.purger.purged)
	assert.False(t, f.users.deleted[member.ID])
}

/*
TestService_ReapAbandonedGuests checks that the sweep tears down only guests
whose registry entry has expired.
*/
func TestService_ReapAbandonedGuests(t *testing.T) {
	f := newFixture()

	abandoned, err := f.service.GuestLogin(context.Background(), "agent", "ip")
	require.NoError(t, err)
	live, err := f.service.GuestLogin(context.Background(), "agent", "ip")
	require.NoError(t, err)

	// The abandoned guest's registry entry aged out of Redis.
	delete(f.registry.entries, abandoned.User.ID)

	reaped, err := f.service.ReapAbandonedGuests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	assert.Equal(t, []string{abandoned.User.ID}, f.purger.purged)
	assert.True(t, f.users.deleted[abandoned.User.ID])
	assert.False(t, f.users.deleted[live.User.ID])

	// A second sweep finds nothing left to do.
	reaped, err = f.service.ReapAbandonedGuests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, reaped)
	assert.Equal(t, []string{abandoned.User.ID}, f.purger.purged)
}

/*
TestService_PasswordHashing sanity-checks the bcrypt round trip used by the
service.
*/
func TestService_PasswordHashing(t *testing.T) {
	hash, err := sec.HashPassword("s3cret-enough")
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("s3cret-enough", hash))
	assert.False(t, sec.CheckPasswordHash("not-it", hash))
}
