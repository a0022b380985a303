package apiaccess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/team3/iot-shop/internal/pkg/application/apperrors"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	repo "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/institutions"
	"github.com/team3/iot-shop/pkg/types"
)

const DefaultExpirationDays = 30

//go:generate moq -rm -out apiaccess_mock.go . TokenValidator

// TokenValidator checks institution API tokens and returns the id of the
// institution that owns a valid token.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (string, error)
}

type APIAccessService interface {
	TokenValidator

	Generate(ctx context.Context, institutionID string, expirationDays int) (types.APIToken, error)
	List(ctx context.Context, institutionID string) ([]types.APIToken, error)
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	repository repo.InstitutionRepository
	now        func() time.Time
}

func New(r repo.InstitutionRepository) APIAccessService {
	return NewWithClock(r, time.Now)
}

func NewWithClock(r repo.InstitutionRepository, now func() time.Time) APIAccessService {
	return &service{
		repository: r,
		now:        now,
	}
}

func (s *service) Generate(ctx context.Context, institutionID string, expirationDays int) (types.APIToken, error) {
	if institutionID == "" {
		return types.APIToken{}, apperrors.Validation("Missing required fields")
	}

	if expirationDays <= 0 {
		return types.APIToken{}, apperrors.Validation("expirationDays must be a positive integer")
	}

	if err := s.institutionExists(ctx, institutionID); err != nil {
		return types.APIToken{}, err
	}

	access := database.APIAccess{
		AccessID:       uuid.NewString(),
		Token:          uuid.NewString(),
		ExpirationDate: s.now().UTC().AddDate(0, 0, expirationDays),
		InstitutionID:  institutionID,
	}

	if err := s.repository.AddAPIAccess(ctx, &access); err != nil {
		return types.APIToken{}, fmt.Errorf("failed to store api token: %w", err)
	}

	logger := logging.GetLoggerFromContext(ctx)
	logger.Info().Str("institution_id", institutionID).Str("access_id", access.AccessID).Msg("api token generated")

	return toAPIToken(access), nil
}

func (s *service) List(ctx context.Context, institutionID string) ([]types.APIToken, error) {
	if err := s.institutionExists(ctx, institutionID); err != nil {
		return nil, err
	}

	fromDb, err := s.repository.GetAPIAccess(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api tokens: %w", err)
	}

	return lo.Map(fromDb, func(a database.APIAccess, _ int) types.APIToken {
		return toAPIToken(a)
	}), nil
}

func (s *service) Revoke(ctx context.Context, accessID string) error {
	err := s.repository.RemoveAPIAccess(ctx, accessID)
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.NotFound("API token not found")
	}
	if err != nil {
		return fmt.Errorf("failed to revoke api token: %w", err)
	}

	return nil
}

// Validate accepts the raw token as well as one prefixed with "Bearer ". A
// token is valid up to and including its expiration instant.
func (s *service) Validate(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return "", apperrors.Permission("Invalid API token.")
	}

	access, err := s.repository.GetAPIAccessByToken(ctx, token)
	if errors.Is(err, database.ErrNotFound) {
		return "", apperrors.Permission("Invalid API token.")
	}
	if err != nil {
		return "", fmt.Errorf("failed to validate api token: %w", err)
	}

	if s.now().After(access.ExpirationDate) {
		return "", apperrors.Permission("API token has expired.")
	}

	return access.InstitutionID, nil
}

func (s *service) institutionExists(ctx context.Context, institutionID string) error {
	_, err := s.repository.GetInstitutionByID(ctx, institutionID)
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.NotFound("Institution not found")
	}
	if err != nil {
		return fmt.Errorf("failed to fetch institution: %w", err)
	}

	return nil
}

func toAPIToken(a database.APIAccess) types.APIToken {
	return types.APIToken{
		AccessID:       a.AccessID,
		Token:          a.Token,
		ExpirationDate: a.ExpirationDate,
		InstitutionID:  a.InstitutionID,
	}
}
