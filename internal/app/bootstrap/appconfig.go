// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/blend/internal/app/system/ratelimit"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig owns framework-level settings (ports, TLS, log level,
// request limits). AppConfig holds everything specific to Blend: the
// MongoDB connection, token signing, uploads, the optional Redis relay,
// the bootstrap admin and audit settings.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token signing
	JWTSecret string
	JWTTTL    time.Duration

	// The single browser origin allowed by CORS and the socket upgrader.
	CORSOrigin string

	// TrustProxy mounts chi's RealIP so limiters and audit records see the
	// forwarded client address. Leave off unless a proxy sets the headers.
	TrustProxy bool

	// Per-IP and per-account request limits.
	RateFormLimit        int
	RateFormWindow       time.Duration
	RateLoginIPLimit     int
	RateLoginIPWindow    time.Duration
	RateLoginEmailLimit  int
	RateLoginEmailWindow time.Duration

	// Uploaded images
	UploadDir       string // Directory on disk (e.g., ./uploads)
	UploadURLPrefix string // Public URL prefix the files are served under
	UploadMaxBytes  int64

	// Orphaned upload sweep; zero MediaSweepInterval disables it.
	MediaSweepInterval time.Duration
	MediaSweepGrace    time.Duration

	// Redis relay for multi-instance broadcasts. Empty RedisAddr keeps
	// broadcasts in-process.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	// Bootstrap admin, created or promoted on startup when AdminEmail is set.
	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminPhone    string

	// Audit logging: "all", "db", "log" or "off".
	AuditLogAuth  string
	AuditLogAdmin string

	// Timeout tiers; zero keeps the package defaults.
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}

// RedisEnabled reports whether the cross-instance relay is configured.
func (c AppConfig) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// RateLimits collects the limiter settings.
func (c AppConfig) RateLimits() ratelimit.Limits {
	return ratelimit.Limits{
		Form:             c.RateFormLimit,
		FormWindow:       c.RateFormWindow,
		LoginIP:          c.RateLoginIPLimit,
		LoginIPWindow:    c.RateLoginIPWindow,
		LoginEmail:       c.RateLoginEmailLimit,
		LoginEmailWindow: c.RateLoginEmailWindow,
	}
}
