package payments

import (
	"context"

	. "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	GetCustomerByID(ctx context.Context, customerID string) (Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (Customer, error)
	CreateCustomer(ctx context.Context, customer *Customer) error
	SetStripeCustomerID(ctx context.Context, customerID, stripeCustomerID string) error

	AddPayment(ctx context.Context, payment *Payment) error
	GetPaymentsByCustomer(ctx context.Context, customerID string) ([]Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{
		db: db,
	}
}

func (r *paymentRepository) GetCustomerByID(ctx context.Context, customerID string) (Customer, error) {
	c := Customer{}
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&c).Error
	return c, Translate(ctx, err)
}

func (r *paymentRepository) GetCustomerByEmail(ctx context.Context, email string) (Customer, error) {
	c := Customer{}
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error
	return c, Translate(ctx, err)
}

func (r *paymentRepository) CreateCustomer(ctx context.Context, customer *Customer) error {
	return Translate(ctx, r.db.WithContext(ctx).Create(customer).Error)
}

func (r *paymentRepository) SetStripeCustomerID(ctx context.Context, customerID, stripeCustomerID string) error {
	result := r.db.WithContext(ctx).Model(&Customer{}).Where("customer_id = ?", customerID).Update("stripe_customer_id", stripeCustomerID)
	if result.Error != nil {
		return Translate(ctx, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *paymentRepository) AddPayment(ctx context.Context, payment *Payment) error {
	return Translate(ctx, r.db.WithContext(ctx).Create(payment).Error)
}

func (r *paymentRepository) GetPaymentsByCustomer(ctx context.Context, customerID string) ([]Payment, error) {
	payments := []Payment{}
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("created_at").Find(&payments).Error
	return payments, Translate(ctx, err)
}
