package handlers

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// RegisterAdminRoutes registers catalog maintenance routes. router must
// already enforce admin access.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// ProductRequest is the body for creating or replacing a product.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Category    string          `json:"category" validate:"omitempty,max=100"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

func (r ProductRequest) toModel(id string) *models.Product {
	return &models.Product{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Stock:       r.Stock,
	}
}

// ProductListRequest holds the catalog listing query parameters.
type ProductListRequest struct {
	Search   string `query:"search" validate:"omitempty,max=100"`
	Category string `query:"category" validate:"omitempty,max=100"`
	MinPrice string `query:"min_price" validate:"omitempty,numeric"`
	MaxPrice string `query:"max_price" validate:"omitempty,numeric"`
	Sort     string `query:"sort" validate:"omitempty,oneof=price_asc price_desc name_asc name_desc created_at_asc created_at_desc"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

func (r ProductListRequest) toQuery() (repositories.ProductQuery, error) {
	q := repositories.ProductQuery{
		Search:   r.Search,
		Category: r.Category,
		Sort:     r.Sort,
		Page:     r.Page,
		Limit:    r.Limit,
	}
	var err error
	if q.MinPrice, err = optionalDecimal("min_price", r.MinPrice); err != nil {
		return q, err
	}
	if q.MaxPrice, err = optionalDecimal("max_price", r.MaxPrice); err != nil {
		return q, err
	}
	return q, nil
}

func optionalDecimal(field, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a number", services.ErrInvalidInput, field)
	}
	return &v, nil
}

func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	var req ProductListRequest
	if ok, err := parseQuery(c, h.validate, &req); !ok {
		return err
	}

	q, err := req.toQuery()
	if err != nil {
		return respondError(c, err, "Invalid query parameters")
	}
	page, err := h.service.ListProducts(c.UserContext(), q)
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(page)
}

func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	product := req.toModel("")
	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	product := req.toModel(c.Params("id"))
	if err := h.service.UpdateProduct(c.UserContext(), product); err != nil {
		return respondError(c, err, "Could not update product")
	}
	updated, err := h.service.GetProductByID(c.UserContext(), product.ID)
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(updated)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
