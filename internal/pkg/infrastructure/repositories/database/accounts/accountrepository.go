package accounts

import (
	"context"

	. "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	"gorm.io/gorm"
)

type AccountRepository interface {
	GetCustomerByID(ctx context.Context, customerID string) (Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (Customer, error)
	GetAdministratorByID(ctx context.Context, adminID string) (Administrator, error)
	GetAdministratorByEmail(ctx context.Context, email string) (Administrator, error)

	EmailInUse(ctx context.Context, email string) (bool, error)
	NameInUse(ctx context.Context, name, exceptID string) (bool, error)

	CreateCustomer(ctx context.Context, customer *Customer) error
	CreateAdministrator(ctx context.Context, admin *Administrator) error
	SaveCustomer(ctx context.Context, customer *Customer) error
	SaveAdministrator(ctx context.Context, admin *Administrator) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

func (r *accountRepository) GetCustomerByID(ctx context.Context, customerID string) (Customer, error) {
	c := Customer{}
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&c).Error
	return c, Translate(ctx, err)
}

func (r *accountRepository) GetCustomerByEmail(ctx context.Context, email string) (Customer, error) {
	c := Customer{}
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error
	return c, Translate(ctx, err)
}

func (r *accountRepository) GetAdministratorByID(ctx context.Context, adminID string) (Administrator, error) {
	a := Administrator{}
	err := r.db.WithContext(ctx).Where("admin_id = ?", adminID).First(&a).Error
	return a, Translate(ctx, err)
}

func (r *accountRepository) GetAdministratorByEmail(ctx context.Context, email string) (Administrator, error) {
	a := Administrator{}
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error
	return a, Translate(ctx, err)
}

// EmailInUse checks both customers and administrators since an email
// identifies exactly one account regardless of role.
func (r *accountRepository) EmailInUse(ctx context.Context, email string) (bool, error) {
	var customers, admins int64

	err := r.db.WithContext(ctx).Model(&Customer{}).Where("email = ?", email).Count(&customers).Error
	if err != nil {
		return false, Translate(ctx, err)
	}

	err = r.db.WithContext(ctx).Model(&Administrator{}).Where("email = ?", email).Count(&admins).Error
	if err != nil {
		return false, Translate(ctx, err)
	}

	return customers+admins > 0, nil
}

// NameInUse reports if any account other than exceptID is using name.
func (r *accountRepository) NameInUse(ctx context.Context, name, exceptID string) (bool, error) {
	var customers, admins int64

	err := r.db.WithContext(ctx).Model(&Customer{}).Where("name = ? AND customer_id <> ?", name, exceptID).Count(&customers).Error
	if err != nil {
		return false, Translate(ctx, err)
	}

	err = r.db.WithContext(ctx).Model(&Administrator{}).Where("name = ? AND admin_id <> ?", name, exceptID).Count(&admins).Error
	if err != nil {
		return false, Translate(ctx, err)
	}

	return customers+admins > 0, nil
}

func (r *accountRepository) CreateCustomer(ctx context.Context, customer *Customer) error {
	return Translate(ctx, r.db.WithContext(ctx).Create(customer).Error)
}

func (r *accountRepository) CreateAdministrator(ctx context.Context, admin *Administrator) error {
	return Translate(ctx, r.db.WithContext(ctx).Create(admin).Error)
}

func (r *accountRepository) SaveCustomer(ctx context.Context, customer *Customer) error {
	return Translate(ctx, r.db.WithContext(ctx).Save(customer).Error)
}

func (r *accountRepository) SaveAdministrator(ctx context.Context, admin *Administrator) error {
	return Translate(ctx, r.db.WithContext(ctx).Save(admin).Error)
}
