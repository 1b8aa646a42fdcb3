// Package events fans payment outcomes out to independent reactors.
package events

import "storefront/internal/models"

// PaymentEventType identifies what happened to a payment.
type PaymentEventType string

const (
	PaymentSucceeded PaymentEventType = "payment.succeeded"
	PaymentFailed    PaymentEventType = "payment.failed"
)

// DeliveryDetails is where and how a paid order should be shipped.
type DeliveryDetails struct {
	Address string                `json:"address"`
	Email   string                `json:"email" validate:"required,email"`
	Phone   string                `json:"phone,omitempty"`
	Method  models.DeliveryMethod `json:"method" validate:"required,oneof=COURIER PICKUP POST"`
}

// PaymentPayload carries the order a payment event refers to.
type PaymentPayload struct {
	OrderID  string          `json:"order_id"`
	UserID   string          `json:"user_id"`
	Delivery DeliveryDetails `json:"delivery"`
}

// PaymentEvent is an ephemeral message; it is never persisted.
type PaymentEvent struct {
	Type    PaymentEventType `json:"type"`
	Payload PaymentPayload   `json:"payload"`
}
