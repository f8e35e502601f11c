package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/pharmacy"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var poTestDate = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func newStoredOrder(t *testing.T, repo *GormPurchaseOrderRepository, poNumber, supplier string, orderDate time.Time, quantities ...int) *pharmacy.PurchaseOrder {
	t.Helper()
	order, err := pharmacy.NewPurchaseOrder(poNumber, uuid.New(), supplier, orderDate)
	require.NoError(t, err)
	for _, qty := range quantities {
		_, err := order.AddItem(uuid.New(), "Amoxicillin 500mg", qty, valueobject.NewDefaultMoneyFromFloat(2.5))
		require.NoError(t, err)
	}
	require.NoError(t, repo.Save(context.Background(), order))
	return order
}

func TestGormPurchaseOrderRepository_SaveAndFind(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(newSQLiteDB(t))
	ctx := context.Background()

	order := newStoredOrder(t, repo, "PO-2026-00001", "MediSupply", poTestDate, 10, 4)

	t.Run("FindByID loads items", func(t *testing.T) {
		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)

		assert.Equal(t, order.PONumber, found.PONumber)
		assert.Equal(t, pharmacy.PurchaseOrderStatusDraft, found.Status)
		assert.Equal(t, 1, found.Version)
		require.Len(t, found.Items, 2)
		assert.Equal(t, order.ID, found.Items[0].OrderID)
		assert.True(t, decimal.NewFromInt(35).Equal(found.TotalAmount), "total was %s", found.TotalAmount)
	})

	t.Run("FindByPONumber", func(t *testing.T) {
		found, err := repo.FindByPONumber(ctx, "PO-2026-00001")
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
	})

	t.Run("missing order maps to ErrNotFound", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByPONumber(ctx, "PO-1999-00001")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("ExistsByPONumber", func(t *testing.T) {
		exists, err := repo.ExistsByPONumber(ctx, "PO-2026-00001")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByPONumber(ctx, "PO-2026-00002")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormPurchaseOrderRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()

	t.Run("persists changes and bumps version", func(t *testing.T) {
		repo := NewGormPurchaseOrderRepository(newSQLiteDB(t))
		order := newStoredOrder(t, repo, "PO-2026-00001", "MediSupply", poTestDate, 10)

		loaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		_, err = loaded.AddItem(uuid.New(), "Paracetamol 500mg", 20, valueobject.NewDefaultMoneyFromFloat(0.5))
		require.NoError(t, err)
		require.NoError(t, loaded.Send())

		require.NoError(t, repo.SaveWithLock(ctx, loaded))
		assert.Equal(t, 2, loaded.Version)

		reloaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, pharmacy.PurchaseOrderStatusSent, reloaded.Status)
		assert.Equal(t, 2, reloaded.Version)
		assert.Len(t, reloaded.Items, 2)
		assert.NotNil(t, reloaded.SentAt)
	})

	t.Run("removed items are deleted", func(t *testing.T) {
		repo := NewGormPurchaseOrderRepository(newSQLiteDB(t))
		order := newStoredOrder(t, repo, "PO-2026-00001", "MediSupply", poTestDate, 10, 5)

		loaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.RemoveItem(loaded.Items[0].ID))
		require.NoError(t, repo.SaveWithLock(ctx, loaded))

		reloaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Items, 1)
		assert.Equal(t, 5, reloaded.Items[0].OrderedQuantity)
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		repo := NewGormPurchaseOrderRepository(newSQLiteDB(t))
		order := newStoredOrder(t, repo, "PO-2026-00001", "MediSupply", poTestDate, 10)

		first, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)

		first.SetNotes("first writer")
		require.NoError(t, repo.SaveWithLock(ctx, first))

		second.SetNotes("second writer")
		err = repo.SaveWithLock(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 1, second.Version)

		reloaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "first writer", reloaded.Notes)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		repo := NewGormPurchaseOrderRepository(newSQLiteDB(t))
		order, err := pharmacy.NewPurchaseOrder("PO-2026-00009", uuid.New(), "MediSupply", poTestDate)
		require.NoError(t, err)

		assert.ErrorIs(t, repo.SaveWithLock(ctx, order), shared.ErrNotFound)
	})
}

func TestGormPurchaseOrderRepository_FindAll(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(newSQLiteDB(t))
	ctx := context.Background()

	early := newStoredOrder(t, repo, "PO-2026-00001", "MediSupply", poTestDate, 10)
	newStoredOrder(t, repo, "PO-2026-00002", "PharmaDirect", poTestDate.AddDate(0, 0, 10), 5)
	sent := newStoredOrder(t, repo, "PO-2026-00003", "MediSupply East", poTestDate.AddDate(0, 0, 20), 8)

	loaded, err := repo.FindByID(ctx, sent.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.Send())
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	tests := []struct {
		name     string
		filter   shared.Filter
		expected []string
	}{
		{
			name:     "all orders by po number",
			filter:   shared.Filter{OrderBy: "po_number", OrderDir: "asc"},
			expected: []string{"PO-2026-00001", "PO-2026-00002", "PO-2026-00003"},
		},
		{
			name:     "status filter",
			filter:   shared.Filter{Filters: map[string]interface{}{"status": pharmacy.PurchaseOrderStatusSent}},
			expected: []string{"PO-2026-00003"},
		},
		{
			name:     "supplier filter",
			filter:   shared.Filter{Filters: map[string]interface{}{"supplier_id": early.SupplierID}},
			expected: []string{"PO-2026-00001"},
		},
		{
			name: "date range is inclusive",
			filter: shared.Filter{OrderBy: "order_date", OrderDir: "asc", Filters: map[string]interface{}{
				"from_date": poTestDate.AddDate(0, 0, 10),
				"to_date":   poTestDate.AddDate(0, 0, 20),
			}},
			expected: []string{"PO-2026-00002", "PO-2026-00003"},
		},
		{
			name:     "search ignores case",
			filter:   shared.Filter{Search: "medisupply", OrderBy: "po_number", OrderDir: "asc"},
			expected: []string{"PO-2026-00001", "PO-2026-00003"},
		},
		{
			name:     "pagination",
			filter:   shared.Filter{Page: 2, PageSize: 2, OrderBy: "po_number", OrderDir: "asc"},
			expected: []string{"PO-2026-00003"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := repo.FindAll(ctx, tt.filter)
			require.NoError(t, err)

			numbers := make([]string, len(orders))
			for i, o := range orders {
				numbers[i] = o.PONumber
			}
			assert.Equal(t, tt.expected, numbers)
		})
	}

	t.Run("Count ignores pagination", func(t *testing.T) {
		count, err := repo.Count(ctx, shared.Filter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("CountByStatus groups orders", func(t *testing.T) {
		counts, err := repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[pharmacy.PurchaseOrderStatus]int64{
			pharmacy.PurchaseOrderStatusDraft: 2,
			pharmacy.PurchaseOrderStatusSent:  1,
		}, counts)
	})
}

func TestGormPurchaseOrderRepository_GenerateOrderNumber(t *testing.T) {
	ctx := context.Background()
	clock := shared.ClockFunc(func() time.Time { return poTestDate })

	t.Run("first number of the year", func(t *testing.T) {
		repo := NewGormPurchaseOrderRepository(newSQLiteDB(t))
		repo.SetClock(clock)

		number, err := repo.GenerateOrderNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, "PO-2026-00001", number)
	})

	t.Run("continues after the highest number", func(t *testing.T) {
		repo := NewGormPurchaseOrderRepository(newSQLiteDB(t))
		repo.SetClock(clock)
		newStoredOrder(t, repo, "PO-2026-00007", "MediSupply", poTestDate)
		newStoredOrder(t, repo, "PO-2025-00042", "MediSupply", poTestDate.AddDate(-1, 0, 0))

		number, err := repo.GenerateOrderNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, "PO-2026-00008", number)
	})
}

// newMockPurchaseOrderRepository creates a repository over a mocked PostgreSQL connection
func newMockPurchaseOrderRepository(t *testing.T) (*GormPurchaseOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, mockDB := newMockDatabase(t)
	return NewGormPurchaseOrderRepository(db.DB), mock, mockDB
}

func TestGormPurchaseOrderRepository_SaveWithLock_Postgres(t *testing.T) {
	t.Run("version mismatch rolls back", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseOrderRepository(t)
		defer mockDB.Close()

		order, err := pharmacy.NewPurchaseOrder("PO-2026-00001", uuid.New(), "MediSupply", poTestDate)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .*version.* FROM "purchase_orders" WHERE id = \$1`).
			WithArgs(order.ID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(3))
		mock.ExpectRollback()

		err = repo.SaveWithLock(context.Background(), order)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost update race rolls back", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseOrderRepository(t)
		defer mockDB.Close()

		order, err := pharmacy.NewPurchaseOrder("PO-2026-00001", uuid.New(), "MediSupply", poTestDate)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .*version.* FROM "purchase_orders" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))
		mock.ExpectExec(`UPDATE "purchase_orders" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.SaveWithLock(context.Background(), order)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 1, order.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
