package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/internal/metrics"
	"github.com/rs/zerolog/log"
)

// maxErrorBody caps how much of a failed response body is kept for logging.
const maxErrorBody = 2048

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Client posts GraphQL documents to a single endpoint.
type Client struct {
	endpoint   string
	headers    http.Header
	httpClient *http.Client
	metrics    *metrics.Metrics
}

func New(endpoint string, headers http.Header, httpClient *http.Client, m *metrics.Metrics) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, headers: headers, httpClient: httpClient, metrics: m}
}

// Do executes query and decodes the "data" member into out. A transport failure, a non-2xx
// status or a top level GraphQL error is reported as errors.ErrUpstream.
func (c *Client) Do(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	defer c.metrics.ObserveUpstream(operation)()

	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("[graphql Do] marshal %s: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("[graphql Do] build %s: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WithCause(errors.ErrUpstream, operation+" request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Error().Str("operation", operation).Int("status", resp.StatusCode).Str("body", string(snippet)).Msg("GraphQL request failed")
		return errors.Newf(errors.ErrUpstream, "%s request failed: %s", operation, resp.Status)
	}

	var gr response
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return errors.WithCause(errors.ErrUpstream, operation+" returned an unreadable response", err)
	}
	if len(gr.Errors) > 0 {
		log.Error().Str("operation", operation).Interface("errors", gr.Errors).Msg("GraphQL errors")
		msg := gr.Errors[0].Message
		if msg == "" {
			msg = "GraphQL request failed"
		}
		return errors.New(errors.ErrUpstream, msg)
	}
	if out == nil || len(gr.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return errors.WithCause(errors.ErrUpstream, operation+" returned unexpected data", err)
	}
	return nil
}
