package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one database handle. A Store
// obtained inside WithinTransaction is bound to that transaction.
type Store interface {
	Products() ProductRepository
	Discounts() DiscountRepository
	Promocodes() PromocodeRepository
	Carts() CartRepository
	Orders() OrderRepository
	Deliveries() DeliveryRepository
	Users() UserRepository
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

// GORMStore is a GORM implementation of Store.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new GORMStore.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

func (s *GORMStore) Products() ProductRepository     { return NewGORMProductRepository(s.db) }
func (s *GORMStore) Discounts() DiscountRepository   { return NewGORMDiscountRepository(s.db) }
func (s *GORMStore) Promocodes() PromocodeRepository { return NewGORMPromocodeRepository(s.db) }
func (s *GORMStore) Carts() CartRepository           { return NewGORMCartRepository(s.db) }
func (s *GORMStore) Orders() OrderRepository         { return NewGORMOrderRepository(s.db) }
func (s *GORMStore) Deliveries() DeliveryRepository  { return NewGORMDeliveryRepository(s.db) }
func (s *GORMStore) Users() UserRepository           { return NewGORMUserRepository(s.db) }

// WithinTransaction runs fn inside a database transaction. Any error returned
// by fn rolls back every write made through tx.
func (s *GORMStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}
