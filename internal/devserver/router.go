// Package devserver is a local implementation of the marketplace backend
// API on sqlite, used for development and integration tests.
package devserver

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"
)

// Option configures NewRouter.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	notifier Notifier
	imageURL string
}

// WithLogger sets the logger used by handlers.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNotifier replaces the default logging seller notifier.
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithImageBaseURL sets the prefix of uploaded image URLs.
func WithImageBaseURL(u string) Option {
	return func(o *options) { o.imageURL = u }
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, opts ...Option) http.Handler {
	o := options{logger: zap.NewNop(), imageURL: "http://localhost:8000"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = LogNotifier(o.logger)
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, Logger: o.logger}
	listingsHandler := &ListingsHandler{DB: db, Logger: o.logger}
	heartsHandler := &HeartsHandler{DB: db, Logger: o.logger}
	uploadHandler := &UploadHandler{BaseURL: o.imageURL, Logger: o.logger}
	purchaseHandler := &PurchaseHandler{DB: db, Notifier: o.notifier, Logger: o.logger}

	authMW := AuthMiddleware(jwtSecret)
	public := func(pattern string, h http.HandlerFunc) { route(mux, pattern, h) }
	private := func(pattern string, h http.HandlerFunc) { route(mux, pattern, authMW(h)) }

	// Auth.
	public("POST /api/auth/signup", authHandler.Signup)
	public("POST /api/auth/login", authHandler.Login)
	public("GET /api/auth/validate", authHandler.Validate)
	private("GET /api/auth/verify", authHandler.Verify)

	// Listings: reads are public, writes need a token.
	public("GET /api/listing", listingsHandler.List)
	public("GET /api/listing/categories", listingsHandler.Categories)
	public("GET /api/listing/user", listingsHandler.UserListings)
	public("GET /api/listing/buyer", listingsHandler.BuyerListings)
	public("GET /api/listing/{id}", listingsHandler.Get)
	private("POST /api/listing", listingsHandler.Create)
	private("PUT /api/listing/{id}", listingsHandler.Update)
	private("PATCH /api/listing/{id}/status", listingsHandler.UpdateStatus)
	private("DELETE /api/listing/{id}", listingsHandler.Delete)
	private("POST /api/listing/upload", uploadHandler.Upload)
	private("POST /api/listing/{id}/buy", purchaseHandler.Buy)

	// Hearts.
	private("POST /api/listing/{id}/heart", heartsHandler.Heart)
	private("DELETE /api/listing/{id}/heart", heartsHandler.Unheart)
	private("GET /api/listing/hearted", heartsHandler.List)

	return LoggingMiddleware(o.logger)(mux)
}

// route registers pattern with and without a trailing slash.
func route(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern, h)
	mux.Handle(pattern+"/{$}", h)
}
