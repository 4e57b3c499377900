package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/storefront-dashboard/identity"
	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/sessions"
	"github.com/rs/zerolog"
)

const maxLoginBody = 1 << 16

type sessionResponse struct {
	IsLoggedIn bool               `json:"isLoggedIn"`
	Customer   *identity.Customer `json:"customer"`
	Error      string             `json:"error,omitempty"`
}

type renewResponse struct {
	Success   bool      `json:"success"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ordersResponse struct {
	Orders []identity.Order `json:"orders"`
}

// LoginHandler exchanges credentials for a customer token and stores it in the session cookie.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&req); err != nil {
			s.metrics.Login("invalid")
			writeJSONError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.metrics.Login("invalid")
			writeJSONError(w, firstValidationMessage(err), http.StatusBadRequest)
			return
		}

		sess := s.sessions.Load(r)
		if err := s.resolver.Login(r.Context(), sess, req.Email, req.Password); err != nil {
			s.writeError(w, r, err, msgUnexpected)
			return
		}
		if !s.saveSession(w, r, sess) {
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Logged in successfully"})
	}
}

// LogoutHandler always succeeds; upstream revocation is best effort.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessions.Load(r)
		s.resolver.Logout(r.Context(), sess)
		if !s.saveSession(w, r, sess) {
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Logged out successfully"})
	}
}

// SessionHandler reports the current identity, persisting the session when resolution cleared it.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessions.Load(r)
		res, err := s.resolver.FromSession(r.Context(), sess)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Session check failed")
			writeJSON(w, http.StatusInternalServerError, sessionResponse{Error: "An error occurred checking session"})
			return
		}
		if res.SessionCleared && !s.saveSession(w, r, sess) {
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{IsLoggedIn: res.IsLoggedIn, Customer: res.Customer, Error: res.Message})
	}
}

// RenewHandler extends the customer token once on explicit request.
func (s *Server) RenewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessions.Load(r)
		wasLoggedIn := sess.IsLoggedIn

		err := s.resolver.Renew(r.Context(), sess)
		if wasLoggedIn && !sess.IsLoggedIn && !s.saveSession(w, r, sess) {
			return
		}
		switch {
		case err == nil:
		case errors.Is(err, errors.ErrUpstream):
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Token renewal failed")
			writeJSONError(w, "Could not renew session", http.StatusBadGateway)
			return
		default:
			s.writeError(w, r, err, msgUnexpected)
			return
		}

		if !s.saveSession(w, r, sess) {
			return
		}
		writeJSON(w, http.StatusOK, renewResponse{Success: true, ExpiresAt: *sess.ExpiresAt})
	}
}

// OrdersHandler lists recent orders; ?first= bounds the page size.
func (s *Server) OrdersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		first, _ := strconv.Atoi(r.URL.Query().Get("first"))

		sess := s.sessions.Load(r)
		wasLoggedIn := sess.IsLoggedIn
		orders, err := s.resolver.Orders(r.Context(), sess, first)
		if wasLoggedIn && !sess.IsLoggedIn && !s.saveSession(w, r, sess) {
			return
		}
		if err != nil {
			s.writeError(w, r, err, "Could not fetch orders")
			return
		}
		if orders == nil {
			orders = []identity.Order{}
		}
		writeJSON(w, http.StatusOK, ordersResponse{Orders: orders})
	}
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *sessions.Session) bool {
	if err := s.sessions.Save(w, sess); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to save session")
		writeJSONError(w, msgUnexpected, http.StatusInternalServerError)
		return false
	}
	return true
}
