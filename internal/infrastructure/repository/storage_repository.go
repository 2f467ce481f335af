package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/sangkips/inventario/internal/domain/entity"
	domainRepo "github.com/sangkips/inventario/internal/domain/repository"
)

const batchSize = 200

type gormStorage struct {
	db *gorm.DB
}

// NewGormStorage stores products and sales in a SQL database through gorm
func NewGormStorage(db *gorm.DB) domainRepo.Storage {
	return &gormStorage{db: db}
}

func (r *gormStorage) LoadProducts(ctx context.Context) ([]entity.Product, error) {
	var rows []ProductModel
	if err := r.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load products")
	}

	products := make([]entity.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toEntity())
	}
	return products, nil
}

// SaveProducts replaces the products table inside one transaction
func (r *gormStorage) SaveProducts(ctx context.Context, products []entity.Product) error {
	rows := make([]ProductModel, 0, len(products))
	for i, p := range products {
		rows = append(rows, toProductModel(p, i))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&ProductModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, batchSize).Error
	})
	return errors.Wrap(err, "save products")
}

func (r *gormStorage) LoadSales(ctx context.Context) ([]entity.Sale, error) {
	var rows []SaleModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line") }).
		Order("position").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load sales")
	}

	sales := make([]entity.Sale, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, row.toEntity())
	}
	return sales, nil
}

// SaveSales replaces the sales and sale_items tables inside one transaction
func (r *gormStorage) SaveSales(ctx context.Context, sales []entity.Sale) error {
	rows := make([]SaleModel, 0, len(sales))
	for i, s := range sales {
		rows = append(rows, toSaleModel(s, i))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&SaleItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&SaleModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		// Creating the parents also inserts the Items association.
		return tx.CreateInBatches(rows, batchSize).Error
	})
	return errors.Wrap(err, "save sales")
}
