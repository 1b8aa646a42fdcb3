package repositories

import (
	"context"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	// List returns one page of the catalog matching q.
	List(ctx context.Context, q ProductQuery) (*ProductPage, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	// DecrementStockIfAvailable subtracts quantity from stock only when
	// stock >= quantity, as a single conditional write. It returns the
	// number of rows affected (0 or 1).
	DecrementStockIfAvailable(ctx context.Context, id string, quantity int) (int64, error)
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Catalog sort orders accepted by ProductQuery.Sort.
const (
	SortPriceAsc      = "price_asc"
	SortPriceDesc     = "price_desc"
	SortNameAsc       = "name_asc"
	SortNameDesc      = "name_desc"
	SortCreatedAtAsc  = "created_at_asc"
	SortCreatedAtDesc = "created_at_desc"
)

var productOrderBy = map[string]string{
	SortPriceAsc:      "price ASC",
	SortPriceDesc:     "price DESC",
	SortNameAsc:       "name ASC",
	SortNameDesc:      "name DESC",
	SortCreatedAtAsc:  "created_at ASC",
	SortCreatedAtDesc: "created_at DESC",
}

// ValidProductSort reports whether sort names a known order. Empty is valid.
func ValidProductSort(sort string) bool {
	if sort == "" {
		return true
	}
	_, ok := productOrderBy[sort]
	return ok
}

// ProductQuery filters and pages a catalog listing. Search matches name or
// description case-insensitively; the price bounds are inclusive.
type ProductQuery struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
	Page     int
	Limit    int
}

// normalized fills in paging and sort defaults.
func (q ProductQuery) normalized() ProductQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if !ValidProductSort(q.Sort) || q.Sort == "" {
		q.Sort = SortCreatedAtDesc
	}
	return q
}

func (q ProductQuery) offset() int {
	return (q.Page - 1) * q.Limit
}

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

func newProductPage(products []models.Product, total int64, q ProductQuery) *ProductPage {
	if products == nil {
		products = []models.Product{}
	}
	return &ProductPage{
		Products:   products,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: int((total + int64(q.Limit) - 1) / int64(q.Limit)),
	}
}
