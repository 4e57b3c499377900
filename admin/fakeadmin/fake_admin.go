package fakeadmin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/jrsteele09/storefront-dashboard/admin"
)

// Server fakes a shop's OAuth token endpoint and admin GraphQL API.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	codes     map[string]string
	tokens    map[string]struct{}
	customers map[string]admin.Customer
	exchanges int
	lookups   int
	lastForm  map[string]string
}

func New() *Server {
	s := &Server{
		codes:     make(map[string]string),
		tokens:    make(map[string]struct{}),
		customers: make(map[string]admin.Customer),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/oauth/access_token", s.token)
	mux.HandleFunc("POST /admin/api/{version}/graphql.json", s.graphql)
	s.Server = httptest.NewServer(mux)
	return s
}

// BaseURL can be passed to the admin client and installer options.
func (s *Server) BaseURL(string) string {
	return s.URL
}

// AddCode registers an authorization code that exchanges for accessToken.
func (s *Server) AddCode(code, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code] = accessToken
}

func (s *Server) AddToken(accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[accessToken] = struct{}{}
}

func (s *Server) AddCustomer(c admin.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

func (s *Server) Exchanges() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exchanges
}

func (s *Server) Lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

// LastExchangeForm returns the form values of the most recent token request.
func (s *Server) LastExchangeForm() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastForm
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges++
	s.lastForm = map[string]string{}
	for k := range r.PostForm {
		s.lastForm[k] = r.PostForm.Get(k)
	}

	w.Header().Set("Content-Type", "application/json")
	accessToken, ok := s.codes[r.PostForm.Get("code")]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_request", "error_description": "The authorization code was not found or was already used"})
		return
	}
	delete(s.codes, r.PostForm.Get("code"))
	s.tokens[accessToken] = struct{}{}
	_ = json.NewEncoder(w).Encode(map[string]string{"access_token": accessToken, "scope": "read_customers"})
}

func (s *Server) graphql(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Variables struct {
			ID string `json:"id"`
		} `json:"variables"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++

	if _, ok := s.tokens[r.Header.Get("X-Shopify-Access-Token")]; !ok {
		http.Error(w, `{"errors":"[API] Invalid API key or access token"}`, http.StatusUnauthorized)
		return
	}

	var customer any
	if c, ok := s.customers[req.Variables.ID]; ok && strings.HasPrefix(req.Variables.ID, "gid://") {
		customer = c
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"customer": customer}})
}
