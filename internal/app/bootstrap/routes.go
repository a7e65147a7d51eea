// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	auditlogfeature "github.com/dalemusser/blend/internal/app/features/auditlog"
	bookingsfeature "github.com/dalemusser/blend/internal/app/features/bookings"
	equipmentfeature "github.com/dalemusser/blend/internal/app/features/equipment"
	galleryfeature "github.com/dalemusser/blend/internal/app/features/gallery"
	healthfeature "github.com/dalemusser/blend/internal/app/features/health"
	messagesfeature "github.com/dalemusser/blend/internal/app/features/messages"
	quotesfeature "github.com/dalemusser/blend/internal/app/features/quotes"
	reportsfeature "github.com/dalemusser/blend/internal/app/features/reports"
	socketfeature "github.com/dalemusser/blend/internal/app/features/socket"
	teamfeature "github.com/dalemusser/blend/internal/app/features/team"
	usersfeature "github.com/dalemusser/blend/internal/app/features/users"
	"github.com/dalemusser/blend/internal/app/store/audit"
	bookingstore "github.com/dalemusser/blend/internal/app/store/bookings"
	equipmentstore "github.com/dalemusser/blend/internal/app/store/equipment"
	gallerystore "github.com/dalemusser/blend/internal/app/store/gallery"
	messagestore "github.com/dalemusser/blend/internal/app/store/messages"
	quotestore "github.com/dalemusser/blend/internal/app/store/quotes"
	teamstore "github.com/dalemusser/blend/internal/app/store/team"
	userstore "github.com/dalemusser/blend/internal/app/store/users"
	"github.com/dalemusser/blend/internal/app/system/auth"
	"github.com/dalemusser/blend/internal/app/system/mediastore"
	"github.com/dalemusser/blend/internal/app/system/metrics"
	"github.com/dalemusser/blend/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// corsMaxAge is how long browsers may cache a preflight response.
const corsMaxAge = 10 * time.Minute

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Blend applies CORS for the single configured
// origin, loads the bearer-token user on every request, and mounts the JSON
// API under /api plus the socket, health, metrics and upload endpoints.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokens(appCfg.JWTSecret, appCfg.JWTTTL, logger)
	if err != nil {
		logger.Error("token signer init failed", zap.Error(err))
		return nil, err
	}

	media, err := mediastore.New(appCfg.UploadDir, appCfg.UploadURLPrefix, appCfg.UploadMaxBytes)
	if err != nil {
		logger.Error("media store init failed", zap.String("dir", appCfg.UploadDir), zap.Error(err))
		return nil, err
	}

	hub, events := realtimeServices(logger)
	auditLog := newAuditLogger(appCfg, deps, logger)
	db := deps.MongoDatabase

	// One limiter is shared by all public submission forms.
	limits := appCfg.RateLimits()
	forms := ratelimit.NewFormLimiter(limits)

	r := chi.NewRouter()
	if appCfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{appCfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           int(corsMaxAge.Seconds()),
	}))
	r.Use(metrics.Instrument)

	// Loads the TokenUser into context when a valid bearer token is sent.
	r.Use(auth.LoadTokenUser(tokens, logger))

	// Operational endpoints
	healthHandler := healthfeature.NewHandler(
		healthfeature.MongoPinger(deps.MongoClient),
		healthfeature.RedisPinger(deps.Redis),
		logger,
	)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	prefix := strings.TrimRight(media.URLPrefix(), "/")
	r.Handle(prefix+"/*", http.StripPrefix(prefix, media.Handler()))

	socketHandler := socketfeature.NewHandler(hub, tokens, appCfg.CORSOrigin, logger)
	r.Mount("/socket", socketfeature.Routes(socketHandler))

	r.Route("/api", func(api chi.Router) {
		usersHandler := usersfeature.NewHandler(userstore.New(db), tokens, ratelimit.NewLoginLimiter(limits), auditLog, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler, forms))

		teamHandler := teamfeature.NewHandler(teamstore.New(db), media, auditLog, logger)
		api.Mount("/team", teamfeature.Routes(teamHandler))

		galleryHandler := galleryfeature.NewHandler(gallerystore.New(db), media, auditLog, logger)
		api.Mount("/gallery", galleryfeature.Routes(galleryHandler))

		quotesHandler := quotesfeature.NewHandler(quotestore.New(db), events, auditLog, logger)
		api.Mount("/quotes", quotesfeature.Routes(quotesHandler, forms))

		messagesHandler := messagesfeature.NewHandler(messagestore.New(db), events, auditLog, logger)
		api.Mount("/messages", messagesfeature.Routes(messagesHandler, forms))

		equipmentHandler := equipmentfeature.NewHandler(equipmentstore.New(db), auditLog, logger)
		api.Mount("/equipment", equipmentfeature.Routes(equipmentHandler))

		bookingsHandler := bookingsfeature.NewHandler(bookingstore.New(db), events, auditLog, logger)
		api.Mount("/equipment-bookings", bookingsfeature.Routes(bookingsHandler, forms))

		reportsHandler := reportsfeature.NewHandler(db, logger)
		api.Mount("/reports", reportsfeature.Routes(reportsHandler))

		auditHandler := auditlogfeature.NewHandler(audit.New(db), userstore.New(db), logger)
		api.Mount("/audit", auditlogfeature.Routes(auditHandler))
	})

	return r, nil
}
