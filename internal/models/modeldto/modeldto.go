// Package modeldto provides types for API request and response bodies.

package modeldto

import "github.com/shopspring/decimal"

type (
	// NewUser carries a registration request.
	NewUser struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	// Credentials carries a login request.
	Credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	// User carries the public fields of a user record.
	User struct {
		ID      string          `json:"id"`
		Name    string          `json:"name"`
		Email   string          `json:"email"`
		Balance decimal.Decimal `json:"balance"`
		IsAdmin bool            `json:"isAdmin"`
	}
	// Service carries one catalog entry.
	Service struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		RatePer1000 decimal.Decimal `json:"ratePer1000"`
		Status      string          `json:"status"`
	}
	// NewOrder carries an order creation request.
	NewOrder struct {
		ServiceID string `json:"serviceId"`
		Quantity  int    `json:"quantity"`
		Target    string `json:"target"`
	}
	// Order carries one order record.
	Order struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		ServiceID   string          `json:"serviceId"`
		ServiceName string          `json:"serviceName"`
		Quantity    int             `json:"quantity"`
		Target      string          `json:"target"`
		TotalPrice  decimal.Decimal `json:"totalPrice"`
		Status      string          `json:"status"`
		CreatedAt   string          `json:"createdAt"`
	}
	// NewOrderStatus carries an admin order status update request.
	NewOrderStatus struct {
		Status string `json:"status"`
	}
)
