package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"

	"github.com/matryer/is"
)

func TestAddAndGet(t *testing.T) {
	is, ctx, r := testSetupProductRepository(t)

	p := Product{ProductID: "prod-1", Name: "Weather station", Price: 199.5, StockQuantity: 3}
	is.NoErr(r.Add(ctx, &p, audit("log-1", "Added product prod-1")))

	fromDb, err := r.GetByID(ctx, "prod-1")
	is.NoErr(err)
	is.Equal("Weather station", fromDb.Name)
	is.Equal(199.5, fromDb.Price)

	logs, err := r.AuditLogs(ctx, "admin-1")
	is.NoErr(err)
	is.Equal(1, len(logs))
	is.Equal("Added product prod-1", logs[0].Action)
}

func TestAddRollsBackOnFailedAudit(t *testing.T) {
	is, ctx, r := testSetupProductRepository(t)

	is.NoErr(r.Add(ctx, &Product{ProductID: "prod-1", Name: "a", Price: 1}, audit("log-1", "first")))

	err := r.Add(ctx, &Product{ProductID: "prod-2", Name: "b", Price: 1}, audit("log-1", "duplicate log id"))
	is.True(err != nil)

	_, err = r.GetByID(ctx, "prod-2")
	is.True(errors.Is(err, ErrNotFound))
}

func TestUpdateOnlyTouchesGivenFields(t *testing.T) {
	is, ctx, r := testSetupProductRepository(t)

	is.NoErr(r.Add(ctx, &Product{ProductID: "prod-1", Name: "a", Description: "desc", Price: 1, Category: "sensors"}, audit("log-1", "add")))

	p, err := r.Update(ctx, "prod-1", map[string]any{"price": 2.5}, audit("log-2", "update"))
	is.NoErr(err)
	is.Equal(2.5, p.Price)

	fromDb, _ := r.GetByID(ctx, "prod-1")
	is.Equal(2.5, fromDb.Price)
	is.Equal("desc", fromDb.Description)
	is.Equal("sensors", fromDb.Category)

	_, err = r.Update(ctx, "prod-2", map[string]any{"price": 3.0}, audit("log-3", "update"))
	is.True(errors.Is(err, ErrNotFound))
}

func TestDelete(t *testing.T) {
	is, ctx, r := testSetupProductRepository(t)

	is.NoErr(r.Add(ctx, &Product{ProductID: "prod-1", Name: "a", Price: 1}, audit("log-1", "add")))
	is.NoErr(r.Delete(ctx, "prod-1", audit("log-2", "delete")))

	_, err := r.GetByID(ctx, "prod-1")
	is.True(errors.Is(err, ErrNotFound))

	err = r.Delete(ctx, "prod-1", audit("log-3", "delete"))
	is.True(errors.Is(err, ErrNotFound))

	logs, _ := r.AuditLogs(ctx, "admin-1")
	is.Equal(2, len(logs))
}

func TestListPages(t *testing.T) {
	is, ctx, r := testSetupProductRepository(t)

	for i := 0; i < 25; i++ {
		p := Product{ProductID: fmt.Sprintf("prod-%02d", i), Name: fmt.Sprintf("product %d", i), Price: 1}
		is.NoErr(r.Add(ctx, &p, audit(fmt.Sprintf("log-%d", i), "add")))
	}

	products, total, err := r.List(ctx, 20, 10)
	is.NoErr(err)
	is.Equal(int64(25), total)
	is.Equal(5, len(products))
}

func audit(id, action string) AuditLog {
	return AuditLog{LogID: id, AdminID: "admin-1", Action: action, Timestamp: time.Now().UTC()}
}

func testSetupProductRepository(t *testing.T) (*is.I, context.Context, ProductRepository) {
	is := is.New(t)
	ctx := context.Background()

	db, err := Open(NewSQLiteConnector(ctx, ""))
	is.NoErr(err)

	err = db.Create(&Administrator{AdminID: "admin-1", Name: "root", Email: "root@example.com", Password: "hash", Permissions: "full_access"}).Error
	is.NoErr(err)

	return is, ctx, NewProductRepository(db)
}
