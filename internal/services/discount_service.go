package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/checkout"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountInput describes a product discount to create or update.
// Nil fields are left unchanged on update.
type DiscountInput struct {
	ProductID *string
	Value     *decimal.Decimal
	StartDate *time.Time
	EndDate   *time.Time
	IsActive  *bool
}

// PromocodeInput describes a new promocode.
type PromocodeInput struct {
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	MaxUsage       int
	IsActive       *bool
}

// PromocodeCheck is the answer to "would this code apply to an order of this amount".
type PromocodeCheck struct {
	Valid     bool              `json:"valid"`
	Message   string            `json:"message"`
	Promocode *models.Promocode `json:"promocode,omitempty"`
}

// DiscountService administers product discounts and promocodes.
type DiscountService struct {
	store repositories.Store
}

// NewDiscountService creates a new DiscountService.
func NewDiscountService(store repositories.Store) *DiscountService {
	return &DiscountService{store: store}
}

// CreateDiscount adds a discount to an existing product.
func (s *DiscountService) CreateDiscount(ctx context.Context, in DiscountInput) (*models.Discount, error) {
	if in.ProductID == nil || in.Value == nil || in.StartDate == nil || in.EndDate == nil {
		return nil, fmt.Errorf("%w: product, value, start and end dates are required", ErrInvalidInput)
	}
	if in.Value.IsNegative() {
		return nil, fmt.Errorf("%w: value cannot be negative", ErrInvalidInput)
	}
	if !in.StartDate.Before(*in.EndDate) {
		return nil, fmt.Errorf("%w: start date must be before end date", ErrInvalidInput)
	}
	if _, err := s.store.Products().GetByID(ctx, *in.ProductID); err != nil {
		return nil, err
	}

	discount := &models.Discount{
		ProductID: *in.ProductID,
		Value:     *in.Value,
		StartDate: *in.StartDate,
		EndDate:   *in.EndDate,
		IsActive:  in.IsActive == nil || *in.IsActive,
	}
	if err := s.store.Discounts().Create(ctx, discount); err != nil {
		return nil, err
	}
	return discount, nil
}

// UpdateDiscount applies the non-nil fields of in to discount id.
func (s *DiscountService) UpdateDiscount(ctx context.Context, id string, in DiscountInput) (*models.Discount, error) {
	discount, err := s.store.Discounts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.ProductID != nil {
		if _, err := s.store.Products().GetByID(ctx, *in.ProductID); err != nil {
			return nil, err
		}
		discount.ProductID = *in.ProductID
	}
	if in.Value != nil {
		if in.Value.IsNegative() {
			return nil, fmt.Errorf("%w: value cannot be negative", ErrInvalidInput)
		}
		discount.Value = *in.Value
	}
	if in.StartDate != nil {
		discount.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		discount.EndDate = *in.EndDate
	}
	if in.IsActive != nil {
		discount.IsActive = *in.IsActive
	}
	if !discount.StartDate.Before(discount.EndDate) {
		return nil, fmt.Errorf("%w: start date must be before end date", ErrInvalidInput)
	}

	if err := s.store.Discounts().Update(ctx, discount); err != nil {
		return nil, err
	}
	return discount, nil
}

// DeleteDiscount removes a discount.
func (s *DiscountService) DeleteDiscount(ctx context.Context, id string) error {
	return s.store.Discounts().Delete(ctx, id)
}

// CreatePromocode creates a promocode with a generated code.
func (s *DiscountService) CreatePromocode(ctx context.Context, in PromocodeInput) (*models.Promocode, error) {
	if in.Value.IsNegative() || in.MinOrderAmount.IsNegative() {
		return nil, fmt.Errorf("%w: value and minimum order amount cannot be negative", ErrInvalidInput)
	}
	if in.MaxUsage < 1 {
		return nil, fmt.Errorf("%w: max usage must be at least 1", ErrInvalidInput)
	}

	promo := &models.Promocode{
		Code:           strings.ToUpper(uuid.New().String()),
		Value:          in.Value,
		MinOrderAmount: in.MinOrderAmount,
		MaxUsage:       in.MaxUsage,
		IsActive:       in.IsActive == nil || *in.IsActive,
	}
	if err := s.store.Promocodes().Create(ctx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

// FindPromocode looks a promocode up by code.
func (s *DiscountService) FindPromocode(ctx context.Context, code string) (*models.Promocode, error) {
	return s.store.Promocodes().FindByCode(ctx, code)
}

// DeletePromocode removes a promocode.
func (s *DiscountService) DeletePromocode(ctx context.Context, id string) error {
	return s.store.Promocodes().Delete(ctx, id)
}

// ValidatePromocode applies the checkout rules to code for an order of orderAmount.
// An unknown code is an error; a rule violation is reported in the result.
func (s *DiscountService) ValidatePromocode(ctx context.Context, code string, orderAmount decimal.Decimal) (*PromocodeCheck, error) {
	promo, err := s.store.Promocodes().FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := checkout.ValidatePromocode(promo, orderAmount); err != nil {
		var invalid *checkout.PromoInvalidError
		if errors.As(err, &invalid) && invalid.Reason == checkout.PromoBelowMinimum {
			return &PromocodeCheck{Message: fmt.Sprintf("Minimum order amount for this promocode: %s", promo.MinOrderAmount.StringFixed(2))}, nil
		}
		return &PromocodeCheck{Message: err.Error()}, nil
	}
	return &PromocodeCheck{Valid: true, Message: "Promocode is valid", Promocode: promo}, nil
}
