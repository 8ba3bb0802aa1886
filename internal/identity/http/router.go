package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/passage/api/identity" // Swagger docs
	"github.com/aussiebroadwan/passage/internal/identity/service"
	"github.com/aussiebroadwan/passage/internal/identity/store"
	"github.com/aussiebroadwan/passage/internal/identity/validate"
	"github.com/aussiebroadwan/passage/pkg/httpx"
	"github.com/aussiebroadwan/passage/pkg/jwtx"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	gatherer     prometheus.Gatherer

	store        store.Store
	Validator    *validate.Validator
	AuthService  *service.AuthService
	UserService  *service.UserService
	ResetService *service.ResetService

	// ExposeResetLink echoes the reset link in the API response. Only for
	// development; anyone who can call the endpoint can take over the account.
	ExposeResetLink bool
}

func NewRouter(
	tokens *service.TokenService,
	buildVersion string,
	st store.Store,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     tokens.Verifier(jwtx.PurposeSession),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		gatherer:     gatherer,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Passage Identity Service API
//	@version		0.1.0
//	@description	User registration, password login and password reset.
//	@description
//	@description				Session and reset tokens are HS256 JWTs signed with per-purpose keys.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/passage
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	authn := httpx.AuthnMiddleware(r.verifier)

	r.Mux.Handle("POST /v1/users", &RegisterHandler{
		UserService: r.UserService,
		Validator:   r.Validator,
	})
	r.Mux.Handle("GET /v1/users", httpx.Chain(
		&ListUsersHandler{UserService: r.UserService},
		authn,
	))
	r.Mux.Handle("GET /v1/users/lookup", httpx.Chain(
		&LookupUserHandler{UserService: r.UserService},
		authn,
	))
	r.Mux.Handle("GET /v1/users/{id}", httpx.Chain(
		&GetUserHandler{UserService: r.UserService},
		authn,
	))

	// Update and delete verify the token themselves, before reading the body:
	// the guard has to compare its subject with the target email in it.
	r.Mux.Handle("PUT /v1/users", &UpdateUserHandler{
		UserService: r.UserService,
		Validator:   r.Validator,
	})
	r.Mux.Handle("DELETE /v1/users", &DeleteUserHandler{
		UserService: r.UserService,
		Validator:   r.Validator,
	})
}

func (r *Router) registerAuth() {
	r.Mux.Handle("POST /v1/auth/login", &LoginHandler{
		AuthService: r.AuthService,
		Validator:   r.Validator,
	})
	r.Mux.Handle("POST /v1/auth/reset_password", &ResetRequestHandler{
		ResetService: r.ResetService,
		Validator:    r.Validator,
		ExposeLink:   r.ExposeResetLink,
	})
	r.Mux.Handle("POST /v1/auth/reset_password/{token}", &ResetConfirmHandler{
		ResetService: r.ResetService,
		Validator:    r.Validator,
	})
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
}
