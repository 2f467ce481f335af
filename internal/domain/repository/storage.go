package repository

import (
	"context"

	"github.com/sangkips/inventario/internal/domain/entity"
)

// Storage persists the product and sale collections. Each Save call replaces
// the whole stored collection with the given slice. A fresh store loads as
// two empty collections.
type Storage interface {
	LoadProducts(ctx context.Context) ([]entity.Product, error)
	SaveProducts(ctx context.Context, products []entity.Product) error
	LoadSales(ctx context.Context) ([]entity.Sale, error)
	SaveSales(ctx context.Context, sales []entity.Sale) error
}
