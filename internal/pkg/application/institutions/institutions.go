package institutions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/team3/iot-shop/internal/pkg/application/apperrors"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	repo "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/institutions"
	"github.com/team3/iot-shop/pkg/types"
)

type InstitutionService interface {
	Create(ctx context.Context, name, email string) (types.Institution, error)
	List(ctx context.Context) ([]types.Institution, error)
	Get(ctx context.Context, institutionID string) (types.Institution, error)
}

type service struct {
	repository repo.InstitutionRepository
}

func New(r repo.InstitutionRepository) InstitutionService {
	return &service{
		repository: r,
	}
}

func (s *service) Create(ctx context.Context, name, email string) (types.Institution, error) {
	if name == "" || email == "" {
		return types.Institution{}, apperrors.Validation("Name and email are required")
	}

	i := database.Institution{
		InstitutionID: uuid.NewString(),
		Name:          name,
		Email:         email,
	}

	err := s.repository.CreateInstitution(ctx, &i)
	if errors.Is(err, database.ErrAlreadyExists) {
		return types.Institution{}, apperrors.Conflict("Institution with this email already exists")
	}
	if err != nil {
		return types.Institution{}, fmt.Errorf("failed to create institution: %w", err)
	}

	return ToInstitution(i), nil
}

func (s *service) List(ctx context.Context) ([]types.Institution, error) {
	fromDb, err := s.repository.GetInstitutions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list institutions: %w", err)
	}

	return lo.Map(fromDb, func(i database.Institution, _ int) types.Institution {
		return ToInstitution(i)
	}), nil
}

func (s *service) Get(ctx context.Context, institutionID string) (types.Institution, error) {
	i, err := s.repository.GetInstitutionByID(ctx, institutionID)
	if errors.Is(err, database.ErrNotFound) {
		return types.Institution{}, apperrors.NotFound("Institution not found")
	}
	if err != nil {
		return types.Institution{}, fmt.Errorf("failed to fetch institution: %w", err)
	}

	return ToInstitution(i), nil
}

func ToInstitution(i database.Institution) types.Institution {
	return types.Institution{
		ID:                 i.InstitutionID,
		Name:               i.Name,
		Email:              i.Email,
		SubscriptionStatus: i.SubscriptionStatus,
	}
}
