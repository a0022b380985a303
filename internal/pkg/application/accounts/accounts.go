package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/team3/iot-shop/internal/pkg/application/apperrors"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	repo "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/accounts"
	"github.com/team3/iot-shop/pkg/types"
)

const AdministratorPermissions = "full_access"

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(subjectID string, role types.Role) (string, error)
}

type AccountService interface {
	Register(ctx context.Context, r Registration) (types.User, error)
	Login(ctx context.Context, email, password string) (types.Session, error)
	GetUserDetails(ctx context.Context, subjectID string, role types.Role) (types.User, error)
	UpdateUserDetails(ctx context.Context, subjectID string, role types.Role, u UserUpdate) (types.User, error)
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserUpdate holds the profile fields a user may change. Nil fields are left
// untouched.
type UserUpdate struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

type service struct {
	repository repo.AccountRepository
	issuer     TokenIssuer
	hashCost   int
}

func New(r repo.AccountRepository, issuer TokenIssuer) AccountService {
	return &service{
		repository: r,
		issuer:     issuer,
		hashCost:   bcrypt.DefaultCost,
	}
}

func (s *service) Register(ctx context.Context, r Registration) (types.User, error) {
	if r.Username == "" || r.Email == "" || r.Password == "" {
		return types.User{}, apperrors.Validation("Missing required fields")
	}

	role, err := types.ParseRole(r.Role)
	if err != nil {
		return types.User{}, apperrors.Validation("Invalid role")
	}

	inUse, err := s.repository.EmailInUse(ctx, r.Email)
	if err != nil {
		return types.User{}, fmt.Errorf("failed to check email: %w", err)
	}
	if inUse {
		return types.User{}, apperrors.Conflict("Email already registered")
	}

	inUse, err = s.repository.NameInUse(ctx, r.Username, "")
	if err != nil {
		return types.User{}, fmt.Errorf("failed to check username: %w", err)
	}
	if inUse {
		return types.User{}, apperrors.Conflict("Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.hashCost)
	if err != nil {
		return types.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := types.User{
		Name:  r.Username,
		Email: r.Email,
		Role:  role,
	}

	switch role {
	case types.RoleCustomer:
		user.ID = "cust-" + uuid.NewString()
		err = s.repository.CreateCustomer(ctx, &database.Customer{
			CustomerID: user.ID,
			Name:       r.Username,
			Email:      r.Email,
			Password:   string(hash),
		})
	case types.RoleAdministrator:
		user.ID = "admin-" + uuid.NewString()
		err = s.repository.CreateAdministrator(ctx, &database.Administrator{
			AdminID:     user.ID,
			Name:        r.Username,
			Email:       r.Email,
			Password:    string(hash),
			Permissions: AdministratorPermissions,
		})
	}

	if errors.Is(err, database.ErrAlreadyExists) {
		return types.User{}, apperrors.Conflict("Email already registered")
	}
	if err != nil {
		return types.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	logger := logging.GetLoggerFromContext(ctx)
	logger.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("registered new user")

	return user, nil
}

func (s *service) Login(ctx context.Context, email, password string) (types.Session, error) {
	if email == "" || password == "" {
		return types.Session{}, apperrors.Validation("Missing required fields")
	}

	subjectID, role, hash, err := s.findByEmail(ctx, email)
	if err != nil {
		return types.Session{}, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return types.Session{}, apperrors.Auth("Incorrect password")
	}

	token, err := s.issuer.Issue(subjectID, role)
	if err != nil {
		return types.Session{}, fmt.Errorf("failed to issue token: %w", err)
	}

	return types.Session{AccessToken: token, Role: role}, nil
}

// findByEmail looks among customers first and administrators second.
func (s *service) findByEmail(ctx context.Context, email string) (string, types.Role, string, error) {
	c, err := s.repository.GetCustomerByEmail(ctx, email)
	if err == nil {
		return c.CustomerID, types.RoleCustomer, c.Password, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return "", "", "", fmt.Errorf("failed to fetch customer: %w", err)
	}

	a, err := s.repository.GetAdministratorByEmail(ctx, email)
	if err == nil {
		return a.AdminID, types.RoleAdministrator, a.Password, nil
	}
	if errors.Is(err, database.ErrNotFound) {
		return "", "", "", apperrors.Auth("User not found")
	}

	return "", "", "", fmt.Errorf("failed to fetch administrator: %w", err)
}

func (s *service) GetUserDetails(ctx context.Context, subjectID string, role types.Role) (types.User, error) {
	switch role {
	case types.RoleCustomer:
		c, err := s.repository.GetCustomerByID(ctx, subjectID)
		if err != nil {
			return types.User{}, userLookupError(err)
		}
		return customerToUser(c), nil
	case types.RoleAdministrator:
		a, err := s.repository.GetAdministratorByID(ctx, subjectID)
		if err != nil {
			return types.User{}, userLookupError(err)
		}
		return administratorToUser(a), nil
	}

	return types.User{}, apperrors.Auth("Invalid role")
}

func (s *service) UpdateUserDetails(ctx context.Context, subjectID string, role types.Role, u UserUpdate) (types.User, error) {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return types.User{}, apperrors.Validation("Name must not be empty")
		}

		inUse, err := s.repository.NameInUse(ctx, name, subjectID)
		if err != nil {
			return types.User{}, fmt.Errorf("failed to check username: %w", err)
		}
		if inUse {
			return types.User{}, apperrors.Conflict("Username already taken")
		}

		u.Name = &name
	}

	switch role {
	case types.RoleCustomer:
		c, err := s.repository.GetCustomerByID(ctx, subjectID)
		if err != nil {
			return types.User{}, userLookupError(err)
		}

		if u.Name != nil {
			c.Name = *u.Name
		}
		if u.Address != nil {
			c.Address = *u.Address
		}

		if err = s.repository.SaveCustomer(ctx, &c); err != nil {
			return types.User{}, fmt.Errorf("failed to save customer: %w", err)
		}

		return customerToUser(c), nil
	case types.RoleAdministrator:
		a, err := s.repository.GetAdministratorByID(ctx, subjectID)
		if err != nil {
			return types.User{}, userLookupError(err)
		}

		if u.Name != nil {
			a.Name = *u.Name
		}

		if err = s.repository.SaveAdministrator(ctx, &a); err != nil {
			return types.User{}, fmt.Errorf("failed to save administrator: %w", err)
		}

		return administratorToUser(a), nil
	}

	return types.User{}, apperrors.Auth("Invalid role")
}

func userLookupError(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.Auth("User not found")
	}
	return fmt.Errorf("failed to fetch user: %w", err)
}

func customerToUser(c database.Customer) types.User {
	return types.User{
		ID:      c.CustomerID,
		Name:    c.Name,
		Email:   c.Email,
		Role:    types.RoleCustomer,
		Address: c.Address,
	}
}

func administratorToUser(a database.Administrator) types.User {
	return types.User{
		ID:    a.AdminID,
		Name:  a.Name,
		Email: a.Email,
		Role:  types.RoleAdministrator,
	}
}
