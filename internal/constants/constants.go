package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID    = "user_id"
	SessionCookieName   = "eco_session"
	SessionKeyRetries   = "codinome_retries"
	SessionMaxAge       = 24 * time.Hour
	BearerTokenTTL      = 24 * time.Hour
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)

// Account rules
const (
	MinPasswordLength = 6
	MinCodenameLength = 3
	MaxCodenameLength = 20
	BcryptCost        = 10
)

// Content rules
const (
	MaxThreadLength      = 144
	MaxFinalThreadLength = 244
	MinEcoTags           = 1
	MaxEcoTags           = 3
	MaxSussurroLength    = 144
	MaxSussurrosPerEco   = 5
	MaxTagNameLength     = 40
)

// Password reset
const (
	ResetTokenBytes      = 32
	MinResetTokenLength  = 32
	DefaultResetTokenTTL = 2 * time.Hour
	ResetRequestLimit    = 2
	ResetRequestWindow   = 24 * time.Hour
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
