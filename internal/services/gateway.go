package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequest is what a gateway needs to start collecting a payment.
type PaymentRequest struct {
	OrderID   string
	UserID    string
	Amount    decimal.Decimal
	Currency  string
	ReturnURL string
	CancelURL string
}

// PaymentIntent identifies a payment started at the gateway.
type PaymentIntent struct {
	Provider    string `json:"provider"`
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// Gateway starts payments at an external provider. Its confirmation arrives
// later through the payment callback.
type Gateway interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentIntent, error)
}

// ManualGateway issues references for payments confirmed out of band,
// e.g. bank transfer or an operator posting the callback.
type ManualGateway struct{}

// CreatePayment returns a fresh reference without contacting anyone.
func (ManualGateway) CreatePayment(_ context.Context, _ PaymentRequest) (*PaymentIntent, error) {
	return &PaymentIntent{Provider: "manual", Reference: uuid.New().String()}, nil
}
