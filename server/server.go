package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/storefront-dashboard/identity"
	"github.com/jrsteele09/storefront-dashboard/internal/config"
	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/internal/metrics"
	"github.com/jrsteele09/storefront-dashboard/sessions"
	"github.com/jrsteele09/storefront-dashboard/verify"
	"github.com/rs/zerolog/log"
)

// Authorizer builds the merchant consent URL for an install.
type Authorizer interface {
	AuthorizeURL(shop, state string) (string, error)
}

// Deps are the collaborators wired in by cmd/server.
type Deps struct {
	Resolver   *identity.Resolver
	Authorizer Authorizer
	Sessions   *sessions.Store
	Metrics    *metrics.Metrics
}

type Server struct {
	env        string
	production bool
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	resolver   *identity.Resolver
	authorizer Authorizer
	sessions   *sessions.Store
	verifier   *verify.Verifier
	metrics    *metrics.Metrics
	limiter    *RateLimiter
	validate   *validator.Validate
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Resolver == nil || deps.Authorizer == nil || deps.Sessions == nil {
		return nil, errors.New(errors.ErrConfiguration, "[Server New] resolver, authorizer and session store are required")
	}

	s := &Server{
		env:        cfg.GetEnv(),
		production: cfg.IsProduction(),
		mux:        http.NewServeMux(),
		config:     cfg,
		resolver:   deps.Resolver,
		authorizer: deps.Authorizer,
		sessions:   deps.Sessions,
		verifier:   verify.New(cfg.GetAPISecret(), verify.WithMetrics(deps.Metrics)),
		metrics:    deps.Metrics,
		validate:   newValidator(),
	}
	if cfg.GetEnableRateLimiting() {
		s.limiter = NewRateLimiter(cfg.GetLoginRateLimit(), cfg.GetLoginRateBurst(), deps.Metrics)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}
