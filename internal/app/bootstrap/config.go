// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	userstore "github.com/dalemusser/blend/internal/app/store/users"
	"github.com/dalemusser/blend/internal/app/system/auditlog"
	"github.com/dalemusser/blend/internal/app/system/inputval"
	"github.com/dalemusser/blend/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minSecretLen is the shortest JWT secret accepted without a warning.
const minSecretLen = 32

var defaultLimits = ratelimit.DefaultLimits()

// appConfigKeys defines the configuration keys for Blend.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: BLEND_MONGO_URI, BLEND_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "blend", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Tokens
	{Name: "jwt_secret", Default: "", Desc: "Secret used to sign bearer tokens (required)"},
	{Name: "jwt_ttl", Default: "168h", Desc: "Bearer token lifetime (e.g., 24h, 168h)"},

	{Name: "cors_origin", Default: "http://localhost:3000", Desc: "Browser origin allowed by CORS and the socket endpoint"},
	{Name: "trust_proxy", Default: false, Desc: "Take the client IP from X-Forwarded-For/X-Real-IP (only behind a trusted proxy)"},

	// Rate limits
	{Name: "rate_form_limit", Default: defaultLimits.Form, Desc: "Public form submissions allowed per IP per window"},
	{Name: "rate_form_window", Default: defaultLimits.FormWindow.String(), Desc: "Window for public form submissions"},
	{Name: "rate_login_ip_limit", Default: defaultLimits.LoginIP, Desc: "Login attempts allowed per IP per window"},
	{Name: "rate_login_ip_window", Default: defaultLimits.LoginIPWindow.String(), Desc: "Window for per-IP login attempts"},
	{Name: "rate_login_email_limit", Default: defaultLimits.LoginEmail, Desc: "Login attempts allowed per account per window"},
	{Name: "rate_login_email_window", Default: defaultLimits.LoginEmailWindow.String(), Desc: "Window for per-account login attempts"},

	// Uploads
	{Name: "upload_dir", Default: "./uploads", Desc: "Directory for uploaded images"},
	{Name: "upload_url_prefix", Default: "/uploads", Desc: "URL prefix uploaded images are served under"},
	{Name: "upload_max_bytes", Default: 10 << 20, Desc: "Maximum size of one uploaded image in bytes"},
	{Name: "media_sweep_interval", Default: "6h", Desc: "How often unreferenced uploads are removed (0 disables)"},
	{Name: "media_sweep_grace", Default: "1h", Desc: "Minimum age of an unreferenced upload before removal"},

	// Redis relay
	{Name: "redis_addr", Default: "", Desc: "Redis address for the event relay (blank disables it)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "redis_channel", Default: "blend:events", Desc: "Redis pub/sub channel for events"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the admin user (promotes/creates on startup)"},
	{Name: "admin_password", Default: "", Desc: "Password for a newly created admin"},
	{Name: "admin_name", Default: "Administrator", Desc: "Name for a newly created admin"},
	{Name: "admin_phone", Default: "", Desc: "Phone number for a newly created admin"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Timeouts
	{Name: "timeout_short", Default: "", Desc: "Timeout for single-document operations (e.g., 5s)"},
	{Name: "timeout_medium", Default: "", Desc: "Timeout for list queries (e.g., 10s)"},
	{Name: "timeout_long", Default: "", Desc: "Timeout for reports and exports (e.g., 30s)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// Precedence is flags > env (BLEND_*) > config files / .env > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "BLEND", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 168*time.Hour),

		CORSOrigin: appValues.String("cors_origin"),
		TrustProxy: appValues.Bool("trust_proxy"),

		RateFormLimit:        appValues.Int("rate_form_limit"),
		RateFormWindow:       appValues.Duration("rate_form_window", defaultLimits.FormWindow),
		RateLoginIPLimit:     appValues.Int("rate_login_ip_limit"),
		RateLoginIPWindow:    appValues.Duration("rate_login_ip_window", defaultLimits.LoginIPWindow),
		RateLoginEmailLimit:  appValues.Int("rate_login_email_limit"),
		RateLoginEmailWindow: appValues.Duration("rate_login_email_window", defaultLimits.LoginEmailWindow),

		UploadDir:       appValues.String("upload_dir"),
		UploadURLPrefix: appValues.String("upload_url_prefix"),
		UploadMaxBytes:  int64(appValues.Int("upload_max_bytes")),

		MediaSweepInterval: appValues.Duration("media_sweep_interval", 6*time.Hour),
		MediaSweepGrace:    appValues.Duration("media_sweep_grace", time.Hour),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
		RedisChannel:  appValues.String("redis_channel"),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),
		AdminName:     appValues.String("admin_name"),
		AdminPhone:    appValues.String("admin_phone"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Everything is checked before any backend is dialed.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database is required")
	}

	if appCfg.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if len(appCfg.JWTSecret) < minSecretLen {
		logger.Warn("jwt_secret is shorter than recommended", zap.Int("min_length", minSecretLen))
	}
	if appCfg.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive, got %s", appCfg.JWTTTL)
	}

	if !inputval.IsValidHTTPURL(appCfg.CORSOrigin) {
		return fmt.Errorf("cors_origin must be an absolute http(s) URL, got %q", appCfg.CORSOrigin)
	}

	lim := appCfg.RateLimits()
	if lim.Form <= 0 || lim.LoginIP <= 0 || lim.LoginEmail <= 0 {
		return errors.New("rate_form_limit, rate_login_ip_limit and rate_login_email_limit must be positive")
	}
	if lim.FormWindow <= 0 || lim.LoginIPWindow <= 0 || lim.LoginEmailWindow <= 0 {
		return errors.New("rate limit windows must be positive")
	}

	if appCfg.UploadDir == "" {
		return errors.New("upload_dir is required")
	}
	if appCfg.UploadMaxBytes <= 0 {
		return fmt.Errorf("upload_max_bytes must be positive, got %d", appCfg.UploadMaxBytes)
	}

	if appCfg.MediaSweepInterval < 0 || appCfg.MediaSweepGrace < 0 {
		return errors.New("media_sweep_interval and media_sweep_grace must not be negative")
	}

	if appCfg.AdminEmail != "" && !inputval.IsValidEmail(appCfg.AdminEmail) {
		return fmt.Errorf("admin_email %q is not a valid email address", appCfg.AdminEmail)
	}
	if len(appCfg.AdminPassword) > userstore.MaxPasswordBytes {
		return fmt.Errorf("admin_password must be at most %d bytes", userstore.MaxPasswordBytes)
	}

	for key, v := range map[string]string{
		"audit_log_auth":  appCfg.AuditLogAuth,
		"audit_log_admin": appCfg.AuditLogAdmin,
	} {
		if !auditlog.IsValidSetting(v) {
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, v)
		}
	}

	return nil
}
