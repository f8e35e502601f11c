package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	departmentapp "github.com/hms/backend/internal/application/department"
	"github.com/hms/backend/internal/domain/department"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/interfaces/http/dto"
	"github.com/hms/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDepartmentServiceRepository is a mock implementation of department.DepartmentServiceRepository
type MockDepartmentServiceRepository struct {
	mock.Mock
}

func (m *MockDepartmentServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*department.DepartmentService, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*department.DepartmentService), args.Error(1)
}

func (m *MockDepartmentServiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]department.DepartmentService, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]department.DepartmentService), args.Error(1)
}

func (m *MockDepartmentServiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDepartmentServiceRepository) ExistsByName(ctx context.Context, departmentID uuid.UUID, name string) (bool, error) {
	args := m.Called(ctx, departmentID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockDepartmentServiceRepository) Save(ctx context.Context, svc *department.DepartmentService) error {
	return m.Called(ctx, svc).Error(0)
}

func (m *MockDepartmentServiceRepository) SaveWithLock(ctx context.Context, svc *department.DepartmentService) error {
	return m.Called(ctx, svc).Error(0)
}

type departmentTestEnv struct {
	router  *gin.Engine
	repo    *MockDepartmentServiceRepository
	catalog *departmentapp.CatalogService
}

func setupDepartmentServiceHandler(t *testing.T) *departmentTestEnv {
	t.Helper()

	repo := new(MockDepartmentServiceRepository)
	catalog := departmentapp.NewCatalogService(repo, nil)
	h := NewDepartmentServiceHandler(catalog)

	router := gin.New()
	router.Use(middleware.RequestID())
	services := router.Group("/api/v1/department-services")
	services.POST("", h.Create)
	services.GET("", h.List)
	services.POST("/quote", h.QuoteCost)
	services.GET("/:id", h.GetByID)
	services.PUT("/:id", h.Update)
	services.POST("/:id/activate", h.Activate)
	services.POST("/:id/deactivate", h.Deactivate)

	return &departmentTestEnv{router: router, repo: repo, catalog: catalog}
}

func (e *departmentTestEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, e.router, method, path, body, nil)
}

func testDepartmentService(t *testing.T, base, fee, discount, doctor string) *department.DepartmentService {
	t.Helper()
	svc, err := department.NewDepartmentService(uuid.New(), "General consultation", department.Pricing{
		BaseCost:           decimal.RequireFromString(base),
		FeePercentage:      decimal.RequireFromString(fee),
		DiscountPercentage: decimal.RequireFromString(discount),
		DoctorPercentage:   decimal.RequireFromString(doctor),
	})
	require.NoError(t, err)
	svc.ClearDomainEvents()
	return svc
}

func TestDepartmentServiceHandler_Create(t *testing.T) {
	t.Run("returns derived cost", func(t *testing.T) {
		env := setupDepartmentServiceHandler(t)
		deptID := uuid.New()
		env.repo.On("ExistsByName", mock.Anything, deptID, "X-ray").Return(false, nil)
		env.repo.On("Save", mock.Anything, mock.AnythingOfType("*department.DepartmentService")).Return(nil)

		w := env.do(t, http.MethodPost, "/api/v1/department-services", map[string]any{
			"department_id":       deptID.String(),
			"name":                "X-ray",
			"base_cost":           "100",
			"fee_percentage":      "10",
			"discount_percentage": "0",
			"doctor_percentage":   "30",
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp struct {
			Data departmentapp.ServiceResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.Cost.FinalCost.Equal(decimal.NewFromInt(110)))
		assert.Equal(t, "30.00", resp.Data.Cost.DoctorAmountDisplay)
		assert.Equal(t, "80.00", resp.Data.Cost.HospitalAmountDisplay)
		assert.True(t, resp.Data.Active)
	})

	t.Run("duplicate name", func(t *testing.T) {
		env := setupDepartmentServiceHandler(t)
		deptID := uuid.New()
		env.repo.On("ExistsByName", mock.Anything, deptID, "X-ray").Return(true, nil)

		w := env.do(t, http.MethodPost, "/api/v1/department-services", map[string]any{
			"department_id": deptID.String(),
			"name":          "X-ray",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyExists, decodeResponse(t, w).Error.Code)
	})

	t.Run("missing department", func(t *testing.T) {
		env := setupDepartmentServiceHandler(t)

		w := env.do(t, http.MethodPost, "/api/v1/department-services", map[string]any{"name": "X-ray"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "department_id", resp.Error.Details[0].Field)
	})
}

func TestDepartmentServiceHandler_QuoteCost(t *testing.T) {
	tests := []struct {
		name          string
		body          map[string]any
		reject        bool
		expectedCode  int
		expectedErr   string
		expectedFinal string
		negative      bool
	}{
		{
			name:          "fee and discount",
			body:          map[string]any{"base_cost": "200", "fee_percentage": "5", "discount_percentage": "15", "doctor_percentage": "40"},
			expectedCode:  http.StatusOK,
			expectedFinal: "180.00",
		},
		{
			name:          "discount above hundred percent is reported",
			body:          map[string]any{"base_cost": "50", "discount_percentage": "120"},
			expectedCode:  http.StatusOK,
			expectedFinal: "-10.00",
			negative:      true,
		},
		{
			name:         "discount above hundred percent rejected by policy",
			body:         map[string]any{"base_cost": "50", "discount_percentage": "120"},
			reject:       true,
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  dto.ErrCodeNegativeFinalCost,
		},
		{
			name:         "negative base cost",
			body:         map[string]any{"base_cost": "-1"},
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupDepartmentServiceHandler(t)
			env.catalog.SetRejectNegativeFinalCost(tt.reject)

			w := env.do(t, http.MethodPost, "/api/v1/department-services/quote", tt.body)

			require.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			if tt.expectedErr != "" {
				assert.Equal(t, tt.expectedErr, decodeResponse(t, w).Error.Code)
				return
			}

			var resp struct {
				Data departmentapp.CostBreakdown `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedFinal, resp.Data.FinalCostDisplay)
			assert.Equal(t, tt.negative, resp.Data.IsNegative)
		})
	}
}

func TestDepartmentServiceHandler_GetByID(t *testing.T) {
	env := setupDepartmentServiceHandler(t)
	svc := testDepartmentService(t, "80", "0", "0", "25")
	env.repo.On("FindByID", mock.Anything, svc.ID).Return(svc, nil)
	missing := uuid.New()
	env.repo.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	w := env.do(t, http.MethodGet, "/api/v1/department-services/"+svc.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data departmentapp.ServiceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "20.00", resp.Data.Cost.DoctorAmountDisplay)

	w = env.do(t, http.MethodGet, "/api/v1/department-services/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDepartmentServiceHandler_List(t *testing.T) {
	env := setupDepartmentServiceHandler(t)
	deptID := uuid.New()
	env.repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 5 && f.Filters["department_id"] == deptID && f.Filters["active"] == true
	})).Return([]department.DepartmentService{*testDepartmentService(t, "10", "0", "0", "0")}, nil)
	env.repo.On("Count", mock.Anything, mock.Anything).Return(int64(6), nil)

	w := env.do(t, http.MethodGet, "/api/v1/department-services?page=2&page_size=5&active=true&department_id="+deptID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(6), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	env.repo.AssertExpectations(t)
}

func TestDepartmentServiceHandler_Deactivate(t *testing.T) {
	t.Run("deactivates active service", func(t *testing.T) {
		env := setupDepartmentServiceHandler(t)
		svc := testDepartmentService(t, "10", "0", "0", "0")
		env.repo.On("FindByID", mock.Anything, svc.ID).Return(svc, nil)
		env.repo.On("SaveWithLock", mock.Anything, svc).Return(nil)

		w := env.do(t, http.MethodPost, "/api/v1/department-services/"+svc.ID.String()+"/deactivate", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, false, decodeResponse(t, w).Data.(map[string]any)["active"])
	})

	t.Run("already inactive", func(t *testing.T) {
		env := setupDepartmentServiceHandler(t)
		svc := testDepartmentService(t, "10", "0", "0", "0")
		require.NoError(t, svc.Deactivate())
		env.repo.On("FindByID", mock.Anything, svc.ID).Return(svc, nil)

		w := env.do(t, http.MethodPost, "/api/v1/department-services/"+svc.ID.String()+"/deactivate", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidState, decodeResponse(t, w).Error.Code)
		env.repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}
