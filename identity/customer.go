package identity

import (
	"github.com/jrsteele09/storefront-dashboard/admin"
	"github.com/jrsteele09/storefront-dashboard/internal/utils"
	"github.com/jrsteele09/storefront-dashboard/storefront"
)

// Customer is the normalized identity returned for every trust path.
type Customer struct {
	ID             string  `json:"id"`
	FirstName      *string `json:"firstName,omitempty"`
	LastName       *string `json:"lastName,omitempty"`
	DisplayName    string  `json:"displayName,omitempty"`
	Email          string  `json:"email,omitempty"`
	NumberOfOrders string  `json:"numberOfOrders,omitempty"`
}

func fromStorefront(c *storefront.Customer) *Customer {
	return &Customer{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		DisplayName:    displayName(c.DisplayName, c.FirstName, c.LastName),
		Email:          c.Email,
		NumberOfOrders: c.NumberOfOrders,
	}
}

func fromAdmin(c *admin.Customer) *Customer {
	return &Customer{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		DisplayName:    displayName(c.DisplayName, c.FirstName, c.LastName),
		Email:          c.Email,
		NumberOfOrders: c.OrdersCount,
	}
}

// displayName falls back to "first last" when the platform has no display name.
func displayName(display string, first, last *string) string {
	if display != "" {
		return display
	}
	return utils.JoinNonNil(" ", first, last)
}

// Result is either an identity or a structured absence, never both.
type Result struct {
	IsLoggedIn bool
	Customer   *Customer
	// Message explains an absence or a degraded identity.
	Message string
	// Limited is set when only the customer id could be established.
	Limited bool
	// SessionCleared is set when resolution reset the session; the caller must persist it.
	SessionCleared bool
}

func loggedOut(message string) Result {
	return Result{Message: message}
}

// Order is a customer's order as shown on the dashboard.
type Order = storefront.Order
