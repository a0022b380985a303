package institutions

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"

	"github.com/matryer/is"
)

func TestCreateAndGetInstitutions(t *testing.T) {
	is, ctx, r := testSetupInstitutionRepository(t)

	is.NoErr(r.CreateInstitution(ctx, &Institution{InstitutionID: "inst-1", Name: "Uni", Email: "uni@example.com"}))
	is.NoErr(r.CreateInstitution(ctx, &Institution{InstitutionID: "inst-2", Name: "Lab", Email: "lab@example.com"}))

	err := r.CreateInstitution(ctx, &Institution{InstitutionID: "inst-3", Name: "Copy", Email: "lab@example.com"})
	is.True(errors.Is(err, ErrAlreadyExists))

	all, err := r.GetInstitutions(ctx)
	is.NoErr(err)
	is.Equal(2, len(all))

	i, err := r.GetInstitutionByID(ctx, "inst-1")
	is.NoErr(err)
	is.Equal("active", i.SubscriptionStatus)

	_, err = r.GetInstitutionByID(ctx, "inst-9")
	is.True(errors.Is(err, ErrNotFound))
}

func TestAPIAccessLifecycle(t *testing.T) {
	is, ctx, r := testSetupInstitutionRepository(t)

	is.NoErr(r.CreateInstitution(ctx, &Institution{InstitutionID: "inst-1", Name: "Uni", Email: "uni@example.com"}))

	expires := time.Now().UTC().Add(24 * time.Hour)
	is.NoErr(r.AddAPIAccess(ctx, &APIAccess{AccessID: "acc-1", Token: "token-1", ExpirationDate: expires, InstitutionID: "inst-1"}))
	is.NoErr(r.AddAPIAccess(ctx, &APIAccess{AccessID: "acc-2", Token: "token-2", ExpirationDate: expires, InstitutionID: "inst-1"}))

	tokens, err := r.GetAPIAccess(ctx, "inst-1")
	is.NoErr(err)
	is.Equal(2, len(tokens))

	a, err := r.GetAPIAccessByToken(ctx, "token-2")
	is.NoErr(err)
	is.Equal("acc-2", a.AccessID)
	is.True(a.ExpirationDate.Equal(expires))

	is.NoErr(r.RemoveAPIAccess(ctx, "acc-2"))

	_, err = r.GetAPIAccessByToken(ctx, "token-2")
	is.True(errors.Is(err, ErrNotFound))

	err = r.RemoveAPIAccess(ctx, "acc-2")
	is.True(errors.Is(err, ErrNotFound))
}

func TestAPIAccessRequiresInstitution(t *testing.T) {
	is, ctx, r := testSetupInstitutionRepository(t)

	err := r.AddAPIAccess(ctx, &APIAccess{AccessID: "acc-1", Token: "token-1", ExpirationDate: time.Now(), InstitutionID: "inst-1"})
	is.True(errors.Is(err, ErrRepositoryError))
}

func testSetupInstitutionRepository(t *testing.T) (*is.I, context.Context, InstitutionRepository) {
	is := is.New(t)
	ctx := context.Background()

	db, err := Open(NewSQLiteConnector(ctx, ""))
	is.NoErr(err)

	return is, ctx, NewInstitutionRepository(db)
}
