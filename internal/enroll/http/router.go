package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/service"
	"github.com/aussiebroadwan/totpenroll/internal/enroll/store"
	"github.com/aussiebroadwan/totpenroll/pkg/httpx"
	"github.com/aussiebroadwan/totpenroll/pkg/slogx"
	"github.com/aussiebroadwan/totpenroll/pkg/totpx"

	_ "github.com/aussiebroadwan/totpenroll/api/enroll" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	// codeLimit is shared by every route that accepts a TOTP code, keyed on
	// the account alone.
	codeLimit httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// QREndpoint is where clients fetch the QR image for a provisioning URI.
	// The built-in /report/barcode handler is registered regardless.
	QREndpoint string
	QRSize     int

	AccountService       *service.AccountService
	EnrollmentService    *service.EnrollmentService
	AuthenticatorService *service.AuthenticatorService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		QREndpoint:   BarcodePath,
		QRSize:       totpx.DefaultQRSize,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.codeLimit = httpx.RateLimitByPathValue(httpx.AccountLimit, "account")

	r.registerAccounts()
	r.registerEnrollments()
	r.registerAuthenticators()
	r.registerBarcode()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			TOTP Enrollment Service API
//	@version		0.1.0
//	@description	Enrolls TOTP authenticators for accounts and verifies their codes.
//	@description
//	@description	An enrollment starts pending with a fresh secret, is confirmed with a code from the authenticator app,
//	@description	and only then is the secret stored, sealed at rest. Code submission is rate limited per client and per account.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/totpenroll
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{AccountService: r.AccountService}

	r.Mux.Handle("PUT /v1/accounts/{account}",
		httpx.Chain(http.HandlerFunc(h.HandleUpsert),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/accounts/{account}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/accounts/{account}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerEnrollments() {
	h := &EnrollmentHandler{
		EnrollmentService: r.EnrollmentService,
		QREndpoint:        r.QREndpoint,
		QRSize:            r.QRSize,
	}

	const base = "/v1/accounts/{account}/mfa/totp/enrollments"

	r.Mux.Handle("POST "+base,
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			httpx.RateLimitByIPAndPathValue(httpx.ModerateLimit, "account"),
		),
	)
	r.Mux.Handle("GET "+base+"/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE "+base+"/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleAbandon),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Confirm - strict rate limit by IP + account, plus the account-wide code budget
	r.Mux.Handle("POST "+base+"/{id}/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirm),
			httpx.RateLimitByIPAndPathValue(httpx.StrictLimit, "account"),
			r.codeLimit,
		),
	)
}

func (r *Router) registerAuthenticators() {
	h := &AuthenticatorsHandler{AuthenticatorService: r.AuthenticatorService}

	r.Mux.Handle("GET /v1/accounts/{account}/authenticators",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/accounts/{account}/authenticators/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Verify - same limits as confirm
	r.Mux.Handle("POST /v1/accounts/{account}/mfa/totp/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIPAndPathValue(httpx.StrictLimit, "account"),
			r.codeLimit,
		),
	)
}

func (r *Router) registerBarcode() {
	r.Mux.Handle("GET "+BarcodePath,
		httpx.Chain(&BarcodeHandler{},
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
