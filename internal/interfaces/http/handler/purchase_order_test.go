package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	pharmacyapp "github.com/hms/backend/internal/application/pharmacy"
	"github.com/hms/backend/internal/domain/pharmacy"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/hms/backend/internal/infrastructure/cache"
	"github.com/hms/backend/internal/interfaces/http/dto"
	"github.com/hms/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPurchaseOrderRepository is a mock implementation of pharmacy.PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*pharmacy.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pharmacy.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByPONumber(ctx context.Context, poNumber string) (*pharmacy.PurchaseOrder, error) {
	args := m.Called(ctx, poNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pharmacy.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]pharmacy.PurchaseOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pharmacy.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) CountByStatus(ctx context.Context) (map[pharmacy.PurchaseOrderStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[pharmacy.PurchaseOrderStatus]int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *pharmacy.PurchaseOrder) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *pharmacy.PurchaseOrder) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockPurchaseOrderRepository) ExistsByPONumber(ctx context.Context, poNumber string) (bool, error) {
	args := m.Called(ctx, poNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockReceiptLogRepository is a mock implementation of pharmacy.ReceiptLogRepository
type MockReceiptLogRepository struct {
	mock.Mock
}

func (m *MockReceiptLogRepository) SaveBatch(ctx context.Context, logs []pharmacy.ReceiptLog) error {
	return m.Called(ctx, logs).Error(0)
}

func (m *MockReceiptLogRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]pharmacy.ReceiptLog, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pharmacy.ReceiptLog), args.Error(1)
}

var handlerTestNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func handlerTestClock() shared.Clock {
	return shared.ClockFunc(func() time.Time { return handlerTestNow })
}

type purchaseOrderTestEnv struct {
	router  *gin.Engine
	repo    *MockPurchaseOrderRepository
	logRepo *MockReceiptLogRepository
}

func setupPurchaseOrderHandler(t *testing.T) *purchaseOrderTestEnv {
	t.Helper()

	repo := new(MockPurchaseOrderRepository)
	logRepo := new(MockReceiptLogRepository)
	service := pharmacyapp.NewPurchaseOrderService(repo, logRepo, pharmacy.NewReceiptEngine(nil, handlerTestClock()))
	service.SetClock(handlerTestClock())

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	service.SetIdempotencyStore(store, shared.DefaultIdempotencyConfig())

	h := NewPurchaseOrderHandler(service)

	router := gin.New()
	router.Use(middleware.RequestID())
	orders := router.Group("/api/v1/pharmacy/purchase-orders")
	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/stats/summary", h.GetStatusSummary)
	orders.GET("/number/:po_number", h.GetByPONumber)
	orders.GET("/:id", h.GetByID)
	orders.PUT("/:id", h.Update)
	orders.POST("/:id/items", h.AddItem)
	orders.PUT("/:id/items/:item_id", h.UpdateItem)
	orders.DELETE("/:id/items/:item_id", h.RemoveItem)
	orders.POST("/:id/send", h.Send)
	orders.POST("/:id/receive", h.Receive)
	orders.POST("/:id/receive/preview", h.PreviewReceipt)
	orders.POST("/:id/cancel", h.Cancel)
	orders.GET("/:id/summary", h.GetSummary)
	orders.GET("/:id/receipts", h.GetReceiptHistory)

	return &purchaseOrderTestEnv{
		router:  router,
		repo:    repo,
		logRepo: logRepo,
	}
}

func (e *purchaseOrderTestEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, e.router, method, path, body, headers)
}

func sentTestOrder(t *testing.T, quantities ...int) *pharmacy.PurchaseOrder {
	t.Helper()
	order, err := pharmacy.NewPurchaseOrder("PO-2026-00007", uuid.New(), "Acme Pharma", handlerTestNow.AddDate(0, 0, -3))
	require.NoError(t, err)
	for i, q := range quantities {
		_, err := order.AddItem(uuid.New(), "Medicine "+string(rune('A'+i)), q, valueobject.NewDefaultMoneyFromFloat(1.5))
		require.NoError(t, err)
	}
	require.NoError(t, order.Send())
	order.ClearDomainEvents()
	return order
}

func receiptBody(lines ...map[string]any) map[string]any {
	return map[string]any{"items": lines}
}

func receiptLine(itemID uuid.UUID, qty int) map[string]any {
	return map[string]any{
		"item_id":           itemID.String(),
		"received_quantity": qty,
		"batch_number":      "LOT-42",
		"expiry_date":       handlerTestNow.AddDate(1, 0, 0).Format(time.RFC3339),
	}
}

func TestPurchaseOrderHandler_Create(t *testing.T) {
	t.Run("creates draft order", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		env.repo.On("GenerateOrderNumber", mock.Anything).Return("PO-2026-00011", nil)
		env.repo.On("Save", mock.Anything, mock.AnythingOfType("*pharmacy.PurchaseOrder")).Return(nil)

		w := env.do(t, http.MethodPost, "/api/v1/pharmacy/purchase-orders", map[string]any{
			"supplier_id":   uuid.New().String(),
			"supplier_name": "Acme Pharma",
			"items": []map[string]any{
				{"medicine_id": uuid.New().String(), "medicine_name": "Paracetamol", "quantity": 10, "unit_cost": "1.20"},
			},
		}, nil)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp struct {
			Success bool                              `json:"success"`
			Data    pharmacyapp.PurchaseOrderResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "PO-2026-00011", resp.Data.PONumber)
		assert.Equal(t, "draft", resp.Data.Status)
		assert.Equal(t, 1, resp.Data.ItemCount)
		env.repo.AssertExpectations(t)
	})

	t.Run("validation error lists fields", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)

		w := env.do(t, http.MethodPost, "/api/v1/pharmacy/purchase-orders", map[string]any{
			"supplier_name": "",
			"items":         []map[string]any{{"medicine_name": "X", "quantity": 0}},
		}, nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

		fields := make([]string, 0, len(resp.Error.Details))
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.Contains(t, fields, "supplier_id")
		assert.Contains(t, fields, "supplier_name")
		assert.Contains(t, fields, "items[0].medicine_id")
		assert.Contains(t, fields, "items[0].quantity")
		env.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("quantity beyond storage range is a validation error", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)

		w := env.do(t, http.MethodPost, "/api/v1/pharmacy/purchase-orders", map[string]any{
			"supplier_id":   uuid.New().String(),
			"supplier_name": "Acme Pharma",
			"items": []map[string]any{
				{"medicine_id": uuid.New().String(), "medicine_name": "Paracetamol", "quantity": int64(pharmacy.MaxItemQuantity) + 1, "unit_cost": "1.20"},
			},
		}, nil)

		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "items[0].quantity", resp.Error.Details[0].Field)
		env.repo.AssertNotCalled(t, "GenerateOrderNumber", mock.Anything)
		env.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderHandler_GetByID(t *testing.T) {
	tests := []struct {
		name         string
		path         func(id uuid.UUID) string
		setup        func(*MockPurchaseOrderRepository, *pharmacy.PurchaseOrder)
		expectedCode int
		expectedErr  string
	}{
		{
			name: "found",
			path: func(id uuid.UUID) string { return "/api/v1/pharmacy/purchase-orders/" + id.String() },
			setup: func(r *MockPurchaseOrderRepository, o *pharmacy.PurchaseOrder) {
				r.On("FindByID", mock.Anything, o.ID).Return(o, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "not found",
			path: func(id uuid.UUID) string { return "/api/v1/pharmacy/purchase-orders/" + id.String() },
			setup: func(r *MockPurchaseOrderRepository, o *pharmacy.PurchaseOrder) {
				r.On("FindByID", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedErr:  dto.ErrCodeNotFound,
		},
		{
			name:         "malformed id",
			path:         func(uuid.UUID) string { return "/api/v1/pharmacy/purchase-orders/PO-1" },
			setup:        func(*MockPurchaseOrderRepository, *pharmacy.PurchaseOrder) {},
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupPurchaseOrderHandler(t)
			order := sentTestOrder(t, 5)
			tt.setup(env.repo, order)

			w := env.do(t, http.MethodGet, tt.path(order.ID), nil, nil)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedErr != "" {
				assert.Equal(t, tt.expectedErr, decodeResponse(t, w).Error.Code)
			}
		})
	}
}

func TestPurchaseOrderHandler_GetByPONumber(t *testing.T) {
	env := setupPurchaseOrderHandler(t)
	order := sentTestOrder(t, 5)
	env.repo.On("FindByPONumber", mock.Anything, "PO-2026-00007").Return(order, nil)

	w := env.do(t, http.MethodGet, "/api/v1/pharmacy/purchase-orders/number/PO-2026-00007", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, order.ID.String(), data["id"])
	assert.Equal(t, "sent", data["status"])
}

func TestPurchaseOrderHandler_List(t *testing.T) {
	t.Run("defaults pagination", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		orders := []pharmacy.PurchaseOrder{*sentTestOrder(t, 4), *sentTestOrder(t, 2)}
		env.repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Page == 1 && f.PageSize == 20
		})).Return(orders, nil)
		env.repo.On("Count", mock.Anything, mock.Anything).Return(int64(42), nil)

		w := env.do(t, http.MethodGet, "/api/v1/pharmacy/purchase-orders", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(42), resp.Meta.Total)
		assert.Equal(t, 1, resp.Meta.Page)
		assert.Equal(t, 20, resp.Meta.PageSize)
		assert.Equal(t, 3, resp.Meta.TotalPages)
		assert.Len(t, resp.Data.([]any), 2)
	})

	t.Run("rejects page size over limit", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)

		w := env.do(t, http.MethodGet, "/api/v1/pharmacy/purchase-orders?page_size=500", nil, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
		env.repo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderHandler_Receive(t *testing.T) {
	t.Run("partial receipt", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		order := sentTestOrder(t, 10, 5)
		env.repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		env.repo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*pharmacy.PurchaseOrder")).Return(nil)

		w := env.do(t, http.MethodPost, "/api/v1/pharmacy/purchase-orders/"+order.ID.String()+"/receive",
			receiptBody(receiptLine(order.Items[0].ID, 4)), nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Data pharmacyapp.ReceiveResultResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "sent", resp.Data.PreviousStatus)
		assert.Equal(t, "partial", resp.Data.Order.Status)
		require.Len(t, resp.Data.ReceivedLines, 1)
		assert.Equal(t, 4, resp.Data.ReceivedLines[0].Quantity)
	})

	t.Run("received quantity beyond storage range is a validation error", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		order := sentTestOrder(t, 10)

		huge := receiptLine(order.Items[0].ID, 0)
		huge["received_quantity"] = int64(pharmacy.MaxItemQuantity) + 1
		w := env.do(t, http.MethodPost, "/api/v1/pharmacy/purchase-orders/"+order.ID.String()+"/receive",
			receiptBody(huge), nil)

		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "items[0].received_quantity", resp.Error.Details[0].Field)
		env.repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("over receipt is rejected with every violation", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		order := sentTestOrder(t, 10, 5)
		env.repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		missingBatch := receiptLine(order.Items[1].ID, 2)
		missingBatch["batch_number"] = ""

		w := env.do(t, http.MethodPost, "/api/v1/pharmacy/purchase-orders/"+order.ID.String()+"/receive",
			receiptBody(receiptLine(order.Items[0].ID, 12), missingBatch), nil)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeReceiptRejected, resp.Error.Code)
		require.Len(t, resp.Error.Violations, 2)

		over := resp.Error.Violations[0]
		assert.Equal(t, string(pharmacy.ViolationOverReceipt), over.Kind)
		assert.Equal(t, order.Items[0].ID.String(), over.ItemID)
		require.NotNil(t, over.MaxRemaining)
		assert.Equal(t, 10, *over.MaxRemaining)

		batch := resp.Error.Violations[1]
		assert.Equal(t, string(pharmacy.ViolationMissingBatch), batch.Kind)
		assert.Equal(t, "batch_number", batch.Field)

		env.repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("cancelled order gives order level violation", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		sent := sentTestOrder(t, 10)
		order, err := pharmacy.NewReceiptEngine(nil, handlerTestClock()).Cancel(*sent, "supplier out of stock")
		require.NoError(t, err)
		env.repo.On("FindByID", mock.Anything, order.ID).Return(&order, nil)

		w := env.do(t, http.MethodPost, "/api/v1/pharmacy/purchase-orders/"+order.ID.String()+"/receive",
			receiptBody(receiptLine(order.Items[0].ID, 1)), nil)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		violations := decodeResponse(t, w).Error.Violations
		require.NotEmpty(t, violations)
		assert.Equal(t, string(pharmacy.ViolationInvalidOrderState), violations[0].Kind)
		assert.Empty(t, violations[0].ItemID)
	})

	t.Run("duplicate idempotency key", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		order := sentTestOrder(t, 10)
		env.repo.On("FindByID", mock.Anything, order.ID).Return(order, nil).Once()
		env.repo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil).Once()

		path := "/api/v1/pharmacy/purchase-orders/" + order.ID.String() + "/receive"
		headers := map[string]string{middleware.IdempotencyKeyHeader: "scan-7781"}
		body := receiptBody(receiptLine(order.Items[0].ID, 3))

		first := env.do(t, http.MethodPost, path, body, headers)
		require.Equal(t, http.StatusOK, first.Code, first.Body.String())

		second := env.do(t, http.MethodPost, path, body, headers)
		require.Equal(t, http.StatusConflict, second.Code)
		assert.Equal(t, dto.ErrCodeDuplicateSubmission, decodeResponse(t, second).Error.Code)

		env.repo.AssertNumberOfCalls(t, "SaveWithLock", 1)
	})

	t.Run("rejected receipt frees idempotency key", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		order := sentTestOrder(t, 10)
		env.repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		env.repo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		path := "/api/v1/pharmacy/purchase-orders/" + order.ID.String() + "/receive"
		headers := map[string]string{middleware.IdempotencyKeyHeader: "scan-9000"}

		rejected := env.do(t, http.MethodPost, path, receiptBody(receiptLine(order.Items[0].ID, 11)), headers)
		require.Equal(t, http.StatusUnprocessableEntity, rejected.Code)

		retried := env.do(t, http.MethodPost, path, receiptBody(receiptLine(order.Items[0].ID, 10)), headers)
		require.Equal(t, http.StatusOK, retried.Code, retried.Body.String())
	})

	t.Run("concurrent write conflict", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		order := sentTestOrder(t, 10)
		env.repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		env.repo.On("SaveWithLock", mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

		w := env.do(t, http.MethodPost, "/api/v1/pharmacy/purchase-orders/"+order.ID.String()+"/receive",
			receiptBody(receiptLine(order.Items[0].ID, 1)), nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeConcurrencyConflict, decodeResponse(t, w).Error.Code)
	})
}

func TestPurchaseOrderHandler_PreviewReceipt(t *testing.T) {
	env := setupPurchaseOrderHandler(t)
	order := sentTestOrder(t, 10)
	env.repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	w := env.do(t, http.MethodPost, "/api/v1/pharmacy/purchase-orders/"+order.ID.String()+"/receive/preview",
		receiptBody(receiptLine(order.Items[0].ID, 15)), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data pharmacyapp.ReceiptPreviewResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Violations, 1)
	assert.Equal(t, string(pharmacy.ViolationOverReceipt), resp.Data.Violations[0].Kind)
	env.repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestPurchaseOrderHandler_Send(t *testing.T) {
	t.Run("already sent order", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		order := sentTestOrder(t, 3)
		env.repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		w := env.do(t, http.MethodPost, "/api/v1/pharmacy/purchase-orders/"+order.ID.String()+"/send", nil, nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env.repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderHandler_Cancel(t *testing.T) {
	t.Run("reason is required", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)

		w := env.do(t, http.MethodPost, "/api/v1/pharmacy/purchase-orders/"+uuid.NewString()+"/cancel",
			map[string]any{}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "reason", resp.Error.Details[0].Field)
	})

	t.Run("cancels sent order", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		order := sentTestOrder(t, 3)
		env.repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		env.repo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		w := env.do(t, http.MethodPost, "/api/v1/pharmacy/purchase-orders/"+order.ID.String()+"/cancel",
			map[string]any{"reason": "supplier delay"}, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "cancelled", decodeResponse(t, w).Data.(map[string]any)["status"])
	})
}

func TestPurchaseOrderHandler_GetReceiptHistory(t *testing.T) {
	t.Run("returns audit trail", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		order := sentTestOrder(t, 10)
		env.repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		env.logRepo.On("FindByOrder", mock.Anything, order.ID).Return([]pharmacy.ReceiptLog{
			{
				ID:           uuid.New(),
				OrderID:      order.ID,
				ItemID:       order.Items[0].ID,
				MedicineID:   order.Items[0].MedicineID,
				Quantity:     4,
				BatchNumber:  "LOT-1",
				ReceivedDate: handlerTestNow,
				ResultStatus: pharmacy.PurchaseOrderStatusPartial,
			},
		}, nil)

		w := env.do(t, http.MethodGet, "/api/v1/pharmacy/purchase-orders/"+order.ID.String()+"/receipts", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data []pharmacyapp.ReceiptLogResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "LOT-1", resp.Data[0].BatchNumber)
		assert.Equal(t, "partial", resp.Data[0].ResultStatus)
	})

	t.Run("unknown order", func(t *testing.T) {
		env := setupPurchaseOrderHandler(t)
		orderID := uuid.New()
		env.repo.On("FindByID", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

		w := env.do(t, http.MethodGet, "/api/v1/pharmacy/purchase-orders/"+orderID.String()+"/receipts", nil, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env.logRepo.AssertNotCalled(t, "FindByOrder", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderHandler_GetStatusSummary(t *testing.T) {
	env := setupPurchaseOrderHandler(t)
	env.repo.On("CountByStatus", mock.Anything).Return(map[pharmacy.PurchaseOrderStatus]int64{
		pharmacy.PurchaseOrderStatusDraft:   2,
		pharmacy.PurchaseOrderStatusSent:    3,
		pharmacy.PurchaseOrderStatusPartial: 1,
	}, nil)

	w := env.do(t, http.MethodGet, "/api/v1/pharmacy/purchase-orders/stats/summary", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data pharmacyapp.PurchaseOrderStatusSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(6), resp.Data.Total)
	assert.Equal(t, int64(4), resp.Data.PendingReceipt)
}
