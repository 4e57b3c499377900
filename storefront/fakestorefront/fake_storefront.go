package fakestorefront

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/storefront-dashboard/storefront"
)

// Operation names counted by the fake.
const (
	OpCreate   = "customerAccessTokenCreate"
	OpDelete   = "customerAccessTokenDelete"
	OpRenew    = "customerAccessTokenRenew"
	OpOrders   = "customerOrders"
	OpCustomer = "customer"
)

type account struct {
	password string
	customer storefront.Customer
	orders   []storefront.Order
}

type tokenEntry struct {
	email     string
	expiresAt time.Time
}

// Server is an in-memory storefront GraphQL API served over httptest.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]account
	tokens   map[string]tokenEntry
	calls    map[string]int
	next     int
	failing  bool

	TokenTTL time.Duration
	NowTime  func() time.Time
}

func New() *Server {
	s := &Server{
		accounts: make(map[string]account),
		tokens:   make(map[string]tokenEntry),
		calls:    make(map[string]int),
		TokenTTL: 24 * time.Hour,
		NowTime:  time.Now,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *Server) AddCustomer(email, password string, customer storefront.Customer, orders ...storefront.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = account{password: password, customer: customer, orders: orders}
}

// IssueToken creates a token for an existing account without going through login.
func (s *Server) IssueToken(email string, expiresAt time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(email, expiresAt)
}

// SetFailing makes every request answer 503.
func (s *Server) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Server) TokenValid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok
}

func (s *Server) issueLocked(email string, expiresAt time.Time) string {
	s.next++
	token := fmt.Sprintf("token-%d", s.next)
	s.tokens[token] = tokenEntry{email: email, expiresAt: expiresAt}
	return token
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string          `json:"query"`
		Variables json.RawMessage `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	op := operation(req.Query)
	s.calls[op]++
	if s.failing {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	var vars struct {
		Input struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"input"`
		Token string `json:"customerAccessToken"`
	}
	_ = json.Unmarshal(req.Variables, &vars)

	var data any
	switch op {
	case OpCreate:
		acc, ok := s.accounts[vars.Input.Email]
		if !ok || acc.password != vars.Input.Password {
			data = map[string]any{OpCreate: map[string]any{
				"customerAccessToken": nil,
				"customerUserErrors": []storefront.UserError{
					{Code: "UNIDENTIFIED_CUSTOMER", Field: []string{"input"}, Message: "Unidentified customer"},
				},
			}}
			break
		}
		exp := s.NowTime().Add(s.TokenTTL).UTC()
		token := s.issueLocked(vars.Input.Email, exp)
		data = map[string]any{OpCreate: map[string]any{
			"customerAccessToken": storefront.AccessToken{AccessToken: token, ExpiresAt: exp},
			"customerUserErrors":  []storefront.UserError{},
		}}
	case OpDelete:
		delete(s.tokens, vars.Token)
		data = map[string]any{OpDelete: map[string]any{"deletedAccessToken": vars.Token, "userErrors": []any{}}}
	case OpRenew:
		entry, ok := s.tokens[vars.Token]
		if !ok {
			data = map[string]any{OpRenew: map[string]any{
				"customerAccessToken": nil,
				"userErrors":          []storefront.UserError{{Message: "access token does not exist"}},
			}}
			break
		}
		entry.expiresAt = s.NowTime().Add(s.TokenTTL).UTC()
		s.tokens[vars.Token] = entry
		data = map[string]any{OpRenew: map[string]any{
			"customerAccessToken": storefront.AccessToken{AccessToken: vars.Token, ExpiresAt: entry.expiresAt},
			"userErrors":          []any{},
		}}
	case OpOrders:
		entry, ok := s.tokens[vars.Token]
		if !ok {
			data = map[string]any{"customer": nil}
			break
		}
		data = map[string]any{"customer": map[string]any{"orders": map[string]any{"edges": orderEdges(s.accounts[entry.email].orders)}}}
	default:
		entry, ok := s.tokens[vars.Token]
		if !ok {
			data = map[string]any{"customer": nil}
			break
		}
		data = map[string]any{"customer": s.accounts[entry.email].customer}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func orderEdges(orders []storefront.Order) []any {
	edges := make([]any, 0, len(orders))
	for _, o := range orders {
		items := make([]any, 0, len(o.LineItems))
		for _, li := range o.LineItems {
			var variant any
			if li.ImageURL != "" {
				variant = map[string]any{"image": map[string]any{"url": li.ImageURL, "altText": nil}}
			}
			items = append(items, map[string]any{"node": map[string]any{"title": li.Title, "quantity": li.Quantity, "variant": variant}})
		}
		edges = append(edges, map[string]any{"node": map[string]any{
			"id":                o.ID,
			"orderNumber":       o.OrderNumber,
			"name":              o.Name,
			"processedAt":       o.ProcessedAt,
			"financialStatus":   o.FinancialStatus,
			"fulfillmentStatus": o.FulfillmentStatus,
			"currentTotalPrice": o.CurrentTotalPrice,
			"lineItems":         map[string]any{"edges": items},
		}})
	}
	return edges
}

func operation(query string) string {
	switch {
	case strings.Contains(query, OpCreate+"("):
		return OpCreate
	case strings.Contains(query, OpDelete+"("):
		return OpDelete
	case strings.Contains(query, OpRenew+"("):
		return OpRenew
	case strings.Contains(query, "orders("):
		return OpOrders
	default:
		return OpCustomer
	}
}
