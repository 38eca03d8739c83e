// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a session/refresh token remains valid.
	// Long-lived (30 days) to provide a good user experience.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random secure token.
	RefreshTokenLength = 32

	// GuestAccountTTL is how long a guest registry entry survives without
	// cleanup. The browser fires the cleanup beacon on tab close; the TTL
	// exists so abandoned guests still age out of Redis when the beacon
	// never arrives.
	GuestAccountTTL = 24 * time.Hour

	// GuestSessionTTL bounds the refresh token of an ephemeral account.
	// Shorter than RefreshTokenTTL since guests are not meant to return.
	GuestSessionTTL = 24 * time.Hour

	// GuestReapInterval is how often the background sweep looks for guest
	// accounts whose registry entry has expired.
	GuestReapInterval = 1 * time.Hour
)
