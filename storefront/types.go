package storefront

import "time"

// AccessToken is a customer access token issued by the storefront API.
type AccessToken struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// UserError is a domain level error returned by a storefront mutation, e.g. "Unidentified customer".
type UserError struct {
	Code    string   `json:"code,omitempty"`
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

// Customer is the token scoped customer profile.
type Customer struct {
	ID             string  `json:"id"`
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	DisplayName    string  `json:"displayName"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone"`
	NumberOfOrders string  `json:"numberOfOrders"`
}

type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type LineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type Order struct {
	ID                string     `json:"id"`
	OrderNumber       int        `json:"orderNumber"`
	Name              string     `json:"name"`
	ProcessedAt       time.Time  `json:"processedAt"`
	FinancialStatus   string     `json:"financialStatus"`
	FulfillmentStatus string     `json:"fulfillmentStatus"`
	CurrentTotalPrice Money      `json:"currentTotalPrice"`
	LineItems         []LineItem `json:"lineItems"`
}
