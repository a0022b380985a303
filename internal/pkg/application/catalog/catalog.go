package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/team3/iot-shop/internal/pkg/application/apperrors"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	repo "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/catalog"
	"github.com/team3/iot-shop/pkg/types"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ProductService interface {
	Add(ctx context.Context, caller Caller, p NewProduct) (types.Product, error)
	Update(ctx context.Context, caller Caller, productID string, u ProductUpdate) (types.Product, error)
	Delete(ctx context.Context, caller Caller, productID string) error

	List(ctx context.Context, page, size int) (types.ProductPage, error)
	Get(ctx context.Context, productID string) (types.Product, error)

	AuditTrail(ctx context.Context, caller Caller) ([]types.AuditEntry, error)
}

// Caller identifies the authenticated user behind a mutation.
type Caller struct {
	ID   string
	Role types.Role
}

type NewProduct struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         *float64 `json:"price"`
	StockQuantity int      `json:"stockQuantity"`
	Category      string   `json:"category"`
}

type ProductUpdate struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	StockQuantity *int     `json:"stockQuantity"`
	Category      *string  `json:"category"`
}

type service struct {
	repository repo.ProductRepository
	now        func() time.Time
}

func New(r repo.ProductRepository) ProductService {
	return &service{
		repository: r,
		now:        time.Now,
	}
}

func requireAdministrator(caller Caller) error {
	switch caller.Role {
	case types.RoleAdministrator:
		return nil
	default:
		return apperrors.Permission("Permission denied")
	}
}

func (s *service) audit(caller Caller, format string, args ...any) database.AuditLog {
	return database.AuditLog{
		LogID:     uuid.NewString(),
		AdminID:   caller.ID,
		Action:    fmt.Sprintf(format, args...),
		Timestamp: s.now().UTC(),
	}
}

func (s *service) Add(ctx context.Context, caller Caller, p NewProduct) (types.Product, error) {
	if err := requireAdministrator(caller); err != nil {
		return types.Product{}, err
	}

	if p.Name == "" || p.Price == nil || *p.Price <= 0 {
		return types.Product{}, apperrors.Validation("Name and Price are required fields")
	}

	if p.StockQuantity < 0 {
		return types.Product{}, apperrors.Validation("Stock quantity must not be negative")
	}

	product := database.Product{
		ProductID:     "prod-" + uuid.NewString(),
		Name:          p.Name,
		Description:   p.Description,
		Price:         *p.Price,
		StockQuantity: p.StockQuantity,
		Category:      p.Category,
	}

	err := s.repository.Add(ctx, &product, s.audit(caller, "added product %s", product.ProductID))
	if err != nil {
		return types.Product{}, fmt.Errorf("failed to add product: %w", err)
	}

	logger := logging.GetLoggerFromContext(ctx)
	logger.Info().Str("product_id", product.ProductID).Str("admin_id", caller.ID).Msg("product added")

	return toProduct(product), nil
}

func (s *service) Update(ctx context.Context, caller Caller, productID string, u ProductUpdate) (types.Product, error) {
	if err := requireAdministrator(caller); err != nil {
		return types.Product{}, err
	}

	fields := map[string]any{}

	if u.Name != nil {
		if *u.Name == "" {
			return types.Product{}, apperrors.Validation("Name must not be empty")
		}
		fields["name"] = *u.Name
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Price != nil {
		if *u.Price <= 0 {
			return types.Product{}, apperrors.Validation("Price must be positive")
		}
		fields["price"] = *u.Price
	}
	if u.StockQuantity != nil {
		if *u.StockQuantity < 0 {
			return types.Product{}, apperrors.Validation("Stock quantity must not be negative")
		}
		fields["stock_quantity"] = *u.StockQuantity
	}
	if u.Category != nil {
		fields["category"] = *u.Category
	}

	product, err := s.repository.Update(ctx, productID, fields, s.audit(caller, "updated product %s", productID))
	if errors.Is(err, database.ErrNotFound) {
		return types.Product{}, apperrors.NotFound("Product not found")
	}
	if err != nil {
		return types.Product{}, fmt.Errorf("failed to update product: %w", err)
	}

	return toProduct(product), nil
}

func (s *service) Delete(ctx context.Context, caller Caller, productID string) error {
	if err := requireAdministrator(caller); err != nil {
		return err
	}

	err := s.repository.Delete(ctx, productID, s.audit(caller, "deleted product %s", productID))
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.NotFound("Product not found")
	}
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	logger := logging.GetLoggerFromContext(ctx)
	logger.Info().Str("product_id", productID).Str("admin_id", caller.ID).Msg("product deleted")

	return nil
}

func (s *service) List(ctx context.Context, page, size int) (types.ProductPage, error) {
	if page < 1 {
		page = 1
	}

	if size < 1 {
		size = DefaultPageSize
	} else if size > MaxPageSize {
		size = MaxPageSize
	}

	products, total, err := s.repository.List(ctx, (page-1)*size, size)
	if err != nil {
		return types.ProductPage{}, fmt.Errorf("failed to list products: %w", err)
	}

	return types.ProductPage{
		Data: lo.Map(products, func(p database.Product, _ int) types.Product {
			return toProduct(p)
		}),
		Pagination: types.Pagination{
			CurrentPage: page,
			TotalPages:  int(math.Ceil(float64(total) / float64(size))),
			TotalItems:  total,
		},
	}, nil
}

func (s *service) Get(ctx context.Context, productID string) (types.Product, error) {
	p, err := s.repository.GetByID(ctx, productID)
	if errors.Is(err, database.ErrNotFound) {
		return types.Product{}, apperrors.NotFound("Product not found")
	}
	if err != nil {
		return types.Product{}, fmt.Errorf("failed to fetch product: %w", err)
	}

	return toProduct(p), nil
}

// AuditTrail returns the catalog changes made by the calling administrator,
// oldest first.
func (s *service) AuditTrail(ctx context.Context, caller Caller) ([]types.AuditEntry, error) {
	if err := requireAdministrator(caller); err != nil {
		return nil, err
	}

	logs, err := s.repository.AuditLogs(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return lo.Map(logs, func(l database.AuditLog, _ int) types.AuditEntry {
		return types.AuditEntry{
			ID:        l.LogID,
			AdminID:   l.AdminID,
			Action:    l.Action,
			Timestamp: l.Timestamp,
		}
	}), nil
}

func toProduct(p database.Product) types.Product {
	return types.Product{
		ID:            p.ProductID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Category:      p.Category,
	}
}
