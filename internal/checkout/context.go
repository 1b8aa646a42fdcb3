package checkout

import (
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
)

// ProcessingContext accumulates the results of each pipeline stage for one
// checkout. It lives only for the duration of the request.
type ProcessingContext struct {
	Store         repositories.Store // bound to the checkout transaction
	UserID        string
	PromocodeCode string
	Now           time.Time

	Cart             *models.Cart
	Subtotal         decimal.Decimal // undiscounted
	DiscountTotal    decimal.Decimal // sum of per-item discounts
	PricedItems      []PricedItem
	AppliedPromocode *models.Promocode
	PromoDiscount    decimal.Decimal
	Total            decimal.Decimal
}

// NewProcessingContext starts an empty context for userID.
func NewProcessingContext(store repositories.Store, userID, promocodeCode string, now time.Time) *ProcessingContext {
	return &ProcessingContext{
		Store:         store,
		UserID:        userID,
		PromocodeCode: promocodeCode,
		Now:           now,
	}
}
