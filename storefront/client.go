package storefront

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/internal/graphql"
	"github.com/jrsteele09/storefront-dashboard/internal/metrics"
)

// Client talks to the storefront API on behalf of a customer.
type Client struct {
	gql *graphql.Client
}

type options struct {
	endpoint   string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

type Option func(*options)

// WithEndpoint overrides the derived GraphQL endpoint (primarily for testing).
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Endpoint returns the storefront GraphQL URL for a store domain and API version.
func Endpoint(storeDomain, apiVersion string) string {
	return fmt.Sprintf("https://%s/api/%s/graphql.json", storeDomain, apiVersion)
}

func New(storeDomain, apiVersion, storefrontAccessToken string, opts ...Option) *Client {
	o := options{endpoint: Endpoint(storeDomain, apiVersion)}
	for _, opt := range opts {
		opt(&o)
	}
	headers := http.Header{}
	headers.Set("X-Shopify-Storefront-Access-Token", storefrontAccessToken)
	return &Client{gql: graphql.New(o.endpoint, headers, o.httpClient, o.metrics)}
}

// CreateAccessToken exchanges customer credentials for an access token. Domain level
// rejections come back as userErrors with a nil error; transport failures as errors.ErrUpstream.
func (c *Client) CreateAccessToken(ctx context.Context, email, password string) (*AccessToken, []UserError, error) {
	var data struct {
		Result struct {
			Token  *AccessToken `json:"customerAccessToken"`
			Errors []UserError  `json:"customerUserErrors"`
		} `json:"customerAccessTokenCreate"`
	}
	vars := map[string]any{"input": map[string]string{"email": email, "password": password}}
	if err := c.gql.Do(ctx, "customerAccessTokenCreate", customerAccessTokenCreate, vars, &data); err != nil {
		return nil, nil, err
	}
	return data.Result.Token, data.Result.Errors, nil
}

// DeleteAccessToken revokes a customer access token upstream.
func (c *Client) DeleteAccessToken(ctx context.Context, accessToken string) error {
	var data struct {
		Result struct {
			Errors []UserError `json:"userErrors"`
		} `json:"customerAccessTokenDelete"`
	}
	vars := map[string]any{"customerAccessToken": accessToken}
	if err := c.gql.Do(ctx, "customerAccessTokenDelete", customerAccessTokenDelete, vars, &data); err != nil {
		return err
	}
	if len(data.Result.Errors) > 0 {
		return errors.New(errors.ErrAuthentication, data.Result.Errors[0].Message)
	}
	return nil
}

// RenewAccessToken extends a still valid customer access token.
func (c *Client) RenewAccessToken(ctx context.Context, accessToken string) (*AccessToken, error) {
	var data struct {
		Result struct {
			Token  *AccessToken `json:"customerAccessToken"`
			Errors []UserError  `json:"userErrors"`
		} `json:"customerAccessTokenRenew"`
	}
	vars := map[string]any{"customerAccessToken": accessToken}
	if err := c.gql.Do(ctx, "customerAccessTokenRenew", customerAccessTokenRenew, vars, &data); err != nil {
		return nil, err
	}
	if len(data.Result.Errors) > 0 {
		return nil, errors.New(errors.ErrAuthentication, data.Result.Errors[0].Message)
	}
	if data.Result.Token == nil {
		return nil, errors.New(errors.ErrAuthentication, "Token could not be renewed")
	}
	return data.Result.Token, nil
}

// Customer fetches the profile the token belongs to. A token the platform no longer
// recognises yields errors.ErrAuthentication.
func (c *Client) Customer(ctx context.Context, accessToken string) (*Customer, error) {
	var data struct {
		Customer *Customer `json:"customer"`
	}
	vars := map[string]any{"customerAccessToken": accessToken}
	if err := c.gql.Do(ctx, "customer", customerQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.Customer == nil {
		return nil, errors.New(errors.ErrAuthentication, "Customer not found for token")
	}
	return data.Customer, nil
}

// Orders returns the customer's most recent orders, newest first.
func (c *Client) Orders(ctx context.Context, accessToken string, first int) ([]Order, error) {
	type imageNode struct {
		URL string `json:"url"`
	}
	var data struct {
		Customer *struct {
			Orders struct {
				Edges []struct {
					Node struct {
						Order
						LineItems struct {
							Edges []struct {
								Node struct {
									Title    string `json:"title"`
									Quantity int    `json:"quantity"`
									Variant  *struct {
										Image *imageNode `json:"image"`
									} `json:"variant"`
								} `json:"node"`
							} `json:"edges"`
						} `json:"lineItems"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"orders"`
		} `json:"customer"`
	}
	vars := map[string]any{"customerAccessToken": accessToken, "first": first}
	if err := c.gql.Do(ctx, "customerOrders", customerOrdersQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.Customer == nil {
		return []Order{}, nil
	}

	orders := make([]Order, 0, len(data.Customer.Orders.Edges))
	for _, edge := range data.Customer.Orders.Edges {
		order := edge.Node.Order
		order.LineItems = make([]LineItem, 0, len(edge.Node.LineItems.Edges))
		for _, li := range edge.Node.LineItems.Edges {
			item := LineItem{Title: li.Node.Title, Quantity: li.Node.Quantity}
			if li.Node.Variant != nil && li.Node.Variant.Image != nil {
				item.ImageURL = li.Node.Variant.Image.URL
			}
			order.LineItems = append(order.LineItems, item)
		}
		orders = append(orders, order)
	}
	return orders, nil
}
