package institutions

import (
	"context"

	. "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	"gorm.io/gorm"
)

type InstitutionRepository interface {
	GetInstitutions(ctx context.Context) ([]Institution, error)
	GetInstitutionByID(ctx context.Context, institutionID string) (Institution, error)
	CreateInstitution(ctx context.Context, institution *Institution) error

	GetAPIAccess(ctx context.Context, institutionID string) ([]APIAccess, error)
	GetAPIAccessByToken(ctx context.Context, token string) (APIAccess, error)
	AddAPIAccess(ctx context.Context, access *APIAccess) error
	RemoveAPIAccess(ctx context.Context, accessID string) error
}

type institutionRepository struct {
	db *gorm.DB
}

func NewInstitutionRepository(db *gorm.DB) InstitutionRepository {
	return &institutionRepository{
		db: db,
	}
}

func (r *institutionRepository) GetInstitutions(ctx context.Context) ([]Institution, error) {
	institutions := []Institution{}
	err := r.db.WithContext(ctx).Order("created_at, institution_id").Find(&institutions).Error
	return institutions, Translate(ctx, err)
}

func (r *institutionRepository) GetInstitutionByID(ctx context.Context, institutionID string) (Institution, error) {
	i := Institution{}
	err := r.db.WithContext(ctx).Where("institution_id = ?", institutionID).First(&i).Error
	return i, Translate(ctx, err)
}

func (r *institutionRepository) CreateInstitution(ctx context.Context, institution *Institution) error {
	return Translate(ctx, r.db.WithContext(ctx).Create(institution).Error)
}

func (r *institutionRepository) GetAPIAccess(ctx context.Context, institutionID string) ([]APIAccess, error) {
	access := []APIAccess{}
	err := r.db.WithContext(ctx).Where("institution_id = ?", institutionID).Order("created_at, access_id").Find(&access).Error
	return access, Translate(ctx, err)
}

func (r *institutionRepository) GetAPIAccessByToken(ctx context.Context, token string) (APIAccess, error) {
	a := APIAccess{}
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&a).Error
	return a, Translate(ctx, err)
}

func (r *institutionRepository) AddAPIAccess(ctx context.Context, access *APIAccess) error {
	return Translate(ctx, r.db.WithContext(ctx).Create(access).Error)
}

func (r *institutionRepository) RemoveAPIAccess(ctx context.Context, accessID string) error {
	result := r.db.WithContext(ctx).Where("access_id = ?", accessID).Delete(&APIAccess{})
	if result.Error != nil {
		return Translate(ctx, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
