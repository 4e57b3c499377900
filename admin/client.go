package admin

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/internal/graphql"
	"github.com/jrsteele09/storefront-dashboard/internal/metrics"
)

const customerByIDQuery = `
query getCustomer($id: ID!) {
  customer(id: $id) {
    id email firstName lastName displayName ordersCount phone createdAt
  }
}`

const customerGIDPrefix = "gid://shopify/Customer/"

// Customer is the privileged view of a customer returned by the admin API.
type Customer struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	DisplayName string  `json:"displayName"`
	OrdersCount string  `json:"ordersCount"`
	Phone       *string `json:"phone"`
	CreatedAt   string  `json:"createdAt"`
}

// Client performs privileged lookups with an installed app's admin access token.
type Client struct {
	apiVersion string
	baseURL    func(shop string) string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

type ClientOption func(*Client)

// WithBaseURL overrides how a shop's base URL is derived (primarily for testing).
func WithBaseURL(f func(shop string) string) ClientOption {
	return func(c *Client) {
		c.baseURL = f
	}
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = h
	}
}

func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(apiVersion string, opts ...ClientOption) *Client {
	c := &Client{apiVersion: apiVersion, baseURL: ShopURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CustomerGID converts a numeric customer id into the platform's global id form.
func CustomerGID(customerID string) string {
	if strings.HasPrefix(customerID, customerGIDPrefix) {
		return customerID
	}
	return customerGIDPrefix + customerID
}

// CustomerByID looks up a customer by id. A missing customer yields errors.ErrNotFound.
func (c *Client) CustomerByID(ctx context.Context, shop, accessToken, customerID string) (*Customer, error) {
	if !ValidShopDomain(shop) {
		return nil, errors.Newf(errors.ErrValidation, "invalid shop domain %q", shop)
	}
	endpoint := fmt.Sprintf("%s/admin/api/%s/graphql.json", c.baseURL(shop), c.apiVersion)
	headers := http.Header{}
	headers.Set("X-Shopify-Access-Token", accessToken)
	gql := graphql.New(endpoint, headers, c.httpClient, c.metrics)

	var data struct {
		Customer *Customer `json:"customer"`
	}
	if err := gql.Do(ctx, "adminCustomer", customerByIDQuery, map[string]any{"id": CustomerGID(customerID)}, &data); err != nil {
		return nil, err
	}
	if data.Customer == nil {
		return nil, errors.Newf(errors.ErrNotFound, "customer %s not found", customerID)
	}
	return data.Customer, nil
}
