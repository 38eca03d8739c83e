// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

/*
Orchestration layer for the identity and access management system.

It handles everything from user registration and secure password hashing to
session lifecycle management via JWT and refresh tokens, plus the ephemeral
guest flow: one-click anonymous accounts that own references like any member
and are cascade-cleaned when their browsing session ends.

Architecture:

  - Service: Orchestrates business logic (Register, Login, GuestLogin, Cleanup).
  - Repository: Abstracted interfaces for Postgres (Users, Sessions) and
    Redis (Guest registry).
  - Security: Leverages Bcrypt and RSA-signed JWTs.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hiroto333/references/internal/platform/apperr"
	"github.com/hiroto333/references/internal/platform/metrics"
	"github.com/hiroto333/references/internal/platform/sec"
	"github.com/hiroto333/references/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - username: The username of the account.
	//   - role: The role of the account.
	//   - isGuest: Whether the account is an ephemeral guest.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, username, role string, isGuest bool, timeToLive time.Duration) (string, error)
}

// ReferencePurger removes every reference owned by a principal. Satisfied by
// the reference service; abstracted here so the cleanup cascade does not
// import the reference domain.
type ReferencePurger interface {
	PurgeOwner(context context.Context, ownerID string) error
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	guestRegistry     GuestRegistry
	referencePurger   ReferencePurger
	tokenProvider     TokenProvider
	metrics           *metrics.Metrics
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	guestRegistry GuestRegistry,
	purger ReferencePurger,
	tokenProv TokenProvider,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		guestRegistry:     guestRegistry,
		referencePurger:   purger,
		tokenProvider:     tokenProv,
		metrics:           metrics,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member, handling password hashing and
identity uniqueness.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  input.DisplayName,
		Role:         sec.RoleMember,
		IsGuest:      false,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login     string // Can be Username or Email
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Description: Verifies identity, performs constant-time password comparison,
and initializes a new session with rotated security tokens.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	var user *User
	var err error
	// Flexible login: look up by Email or Username
	user, err = service.userRepository.FindByEmail(context, input.Login)
	if err != nil {
		user, err = service.userRepository.FindByUsername(context, input.Login)
	}

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Guests have no credentials; their empty hash must never match.
	if user.IsGuest {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return service.openSession(context, user, RefreshTokenTTL, input.UserAgent, input.IPAddress)
}

/*
GuestLogin creates an ephemeral anonymous account and signs it in.

Description: One-click entry: a full account row is created with no
credentials, registered in the guest registry for later cleanup, and issued
a short-lived session. Guests own references like members do.

Parameters:
  - context: context.Context
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: Session for the new guest
  - err: Storage or token generation failures
*/
func (service *Service) GuestLogin(context context.Context, userAgent, ipAddress string) (*LoginSession, error) {

	// Random suffix keeps generated usernames unique without a DB round trip.
	suffix, err := sec.GenerateSecureToken(4)
	if err != nil {
		return nil, fmt.Errorf("auth_service_guest_suffix_failed: %w", err)
	}

	user := &User{
		ID:          uuid.New(),
		Username:    "guest-" + suffix,
		DisplayName: "ゲスト",
		Role:        sec.RoleMember,
		IsGuest:     true,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_guest_create_failed: %w", err)
	}

	// Track the guest for cleanup. Failure here is not fatal to the login;
	// the account TTL reaper is a safety net, not a gate.
	_ = service.guestRegistry.Register(context, user.ID, GuestAccountTTL)

	return service.openSession(context, user, GuestSessionTTL, userAgent, ipAddress)
}

// openSession issues the access/refresh token pair and persists the
// tracking session. Shared by every login variant.
func (service *Service) openSession(context context.Context, user *User, sessionTTL time.Duration, userAgent, ipAddress string) (*LoginSession, error) {

	// Generate short-lived Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, string(user.Role), user.IsGuest, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate long-lived Refresh Token
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Create and persist the tracking session
	expiresAt := time.Now().Add(sessionTTL)
	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

/*
Logout permanently revokes the user's active session.

Description: Ensures that a tracked refresh token can never be used again.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {

	// Hash the refresh token
	tokenHash := sec.HashToken(refreshToken)

	// Find the session by token hash
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) session is already gone or invalid, we consider logout successful (idempotent operation).
	if err != nil {
		return nil
	}

	// If (err == nil) Revoke the session
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
RefreshSession implements the Refresh Token Rotation mechanism.

Description: Verifies the existing refresh token, revokes it to prevent reuse
(replay attack mitigation), and issues a fresh pair of rotated tokens.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: New session credentials
  - err: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {

	// Hash the incoming refresh token to look it up
	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) the token is either expired, already revoked, or completely invalid.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: Revoke the old session to prevent replay attacks
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// Fetch the user associated with this session
	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	sessionTTL := RefreshTokenTTL
	if user.IsGuest {
		sessionTTL = GuestSessionTTL
	}

	return service.openSession(context, user, sessionTTL, userAgent, ipAddress)
}

// # Guest Cleanup

/*
CleanupGuest runs the cascade teardown for an ephemeral account.

Description: Purges every reference the guest owns, revokes all sessions,
soft-deletes the account row, and drops the registry entry. The whole
cascade is idempotent: a guest that was already cleaned (or never existed)
is a successful no-op, so duplicate beacon deliveries are harmless.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Forbidden (non-guest account) or cascade failures
*/
func (service *Service) CleanupGuest(context context.Context, userID string) error {

	user, err := service.userRepository.FindByID(context, userID)

	// Already soft-deleted or never existed: nothing left to clean.
	if err != nil {
		return nil
	}

	// Regular members never go through the cascade, no matter what token
	// the beacon carried.
	if !user.IsGuest {
		return apperr.Forbidden("Account is not a guest")
	}

	// Order matters: data first, then access, then the account row itself.
	if err := service.referencePurger.PurgeOwner(context, userID); err != nil {
		return fmt.Errorf("auth_service_cleanup_purge_failed: %w", err)
	}

	if err := service.sessionRepository.RevokeAll(context, userID); err != nil {
		return fmt.Errorf("auth_service_cleanup_revoke_failed: %w", err)
	}

	if err := service.userRepository.SoftDelete(context, userID); err != nil {
		return fmt.Errorf("auth_service_cleanup_delete_failed: %w", err)
	}

	// Registry entry last, so a crash mid-cascade leaves the guest visible
	// to the reaper for a retry.
	_ = service.guestRegistry.Remove(context, userID)

	service.metrics.GuestCleanups.Inc()

	return nil
}

// # Guest Reaper

/*
ReapAbandonedGuests tears down guest accounts whose registry entry expired.

Description: The cleanup beacon handles the happy path; this sweep is the
safety net for guests whose browser crashed or lost connectivity before the
beacon fired. A guest row with no live registry entry has outlived its TTL
and goes through the same cascade as a beacon delivery. The sweep also
removes expired session rows while it is at it.

Parameters:
  - context: context.Context

Returns:
  - int: Number of guests cleaned up
  - err: Listing failures; per-guest errors only abort the current guest
*/
func (service *Service) ReapAbandonedGuests(context context.Context) (int, error) {

	// Expired sessions are dead weight for members and guests alike.
	if err := service.sessionRepository.DeleteExpired(context); err != nil {
		return 0, fmt.Errorf("auth_service_reap_sessions_failed: %w", err)
	}

	guests, err := service.userRepository.ListGuests(context)
	if err != nil {
		return 0, fmt.Errorf("auth_service_reap_list_failed: %w", err)
	}

	reaped := 0
	for _, guest := range guests {
		alive, err := service.guestRegistry.Exists(context, guest.ID)

		// Registry unreachable: leave the guest for the next sweep rather
		// than tearing down an account that may still be in use.
		if err != nil {
			continue
		}
		if alive {
			continue
		}

		if err := service.CleanupGuest(context, guest.ID); err != nil {
			continue
		}
		reaped++
	}

	return reaped, nil
}

// StartReaper runs the abandoned-guest sweep on a fixed interval until the
// context is cancelled. Call once from the composition root.
func (service *Service) StartReaper(context context.Context, interval time.Duration, log *slog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				reaped, err := service.ReapAbandonedGuests(context)
				if err != nil {
					log.Error("guest_reap_failed", slog.Any("error", err))
					continue
				}
				if reaped > 0 {
					log.Info("guest_reap_completed", slog.Int("reaped", reaped))
				}
			case <-context.Done():
				return
			}
		}
	}()
}
