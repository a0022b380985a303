package catalog

import (
	"context"

	. "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	"gorm.io/gorm"
)

type ProductRepository interface {
	GetByID(ctx context.Context, productID string) (Product, error)
	List(ctx context.Context, offset, limit int) ([]Product, int64, error)

	Add(ctx context.Context, product *Product, audit AuditLog) error
	Update(ctx context.Context, productID string, fields map[string]any, audit AuditLog) (Product, error)
	Delete(ctx context.Context, productID string, audit AuditLog) error

	AuditLogs(ctx context.Context, adminID string) ([]AuditLog, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r *productRepository) GetByID(ctx context.Context, productID string) (Product, error) {
	p := Product{}
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&p).Error
	return p, Translate(ctx, err)
}

func (r *productRepository) List(ctx context.Context, offset, limit int) ([]Product, int64, error) {
	var total int64
	products := []Product{}

	err := r.db.WithContext(ctx).Model(&Product{}).Count(&total).Error
	if err != nil {
		return nil, 0, Translate(ctx, err)
	}

	err = r.db.WithContext(ctx).Order("created_at, product_id").Offset(offset).Limit(limit).Find(&products).Error
	if err != nil {
		return nil, 0, Translate(ctx, err)
	}

	return products, total, nil
}

// Add stores the product together with the audit entry of the
// administrator that created it.
func (r *productRepository) Add(ctx context.Context, product *Product, audit AuditLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		return tx.Create(&audit).Error
	})

	return Translate(ctx, err)
}

// Update applies fields (keyed by column name) to an existing product and
// returns the result.
func (r *productRepository) Update(ctx context.Context, productID string, fields map[string]any, audit AuditLog) (Product, error) {
	p := Product{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).First(&p).Error; err != nil {
			return err
		}

		if len(fields) > 0 {
			if err := tx.Model(&p).Updates(fields).Error; err != nil {
				return err
			}

			if err := tx.Where("product_id = ?", productID).First(&p).Error; err != nil {
				return err
			}
		}

		return tx.Create(&audit).Error
	})

	return p, Translate(ctx, err)
}

func (r *productRepository) Delete(ctx context.Context, productID string, audit AuditLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("product_id = ?", productID).Delete(&Product{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Create(&audit).Error
	})

	return Translate(ctx, err)
}

func (r *productRepository) AuditLogs(ctx context.Context, adminID string) ([]AuditLog, error) {
	logs := []AuditLog{}
	err := r.db.WithContext(ctx).Where("admin_id = ?", adminID).Order("timestamp").Find(&logs).Error
	return logs, Translate(ctx, err)
}
