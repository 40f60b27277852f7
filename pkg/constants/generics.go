package constants

import "time"

// ISODateFormat is the date-only layout used in export file names.
const ISODateFormat = "2006-01-02"

// Transport rate limit applied to routes without their own budget.
const (
	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = time.Minute
)

// TeleCheck defaults. Every value can be overridden from the environment.
const (
	AppName = "TeleCheck Bot"

	// ServiceName identifies the process in traces and metrics.
	ServiceName = "telecheck"

	DefaultAdminEmail = "admin@telecheck.bot"

	// DefaultMaxBulkNumbers caps a single bulk run; 0 disables the cap.
	DefaultMaxBulkNumbers = 500

	DefaultCheckDelay = 750 * time.Millisecond

	// StoreKeyPrefix namespaces every key TeleCheck writes to the kv store.
	StoreKeyPrefix = "telecheck:"

	SessionIDHeader = "X-Session-ID"
)

// Store keys. Session-scoped keys are built with kvstore.SessionKey.
const (
	RosterKey = StoreKeyPrefix + "users"

	SessionCurrentUserEmail = "currentUserEmail"
	SessionResults          = "results"
)
