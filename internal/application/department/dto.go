package department

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/department"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreateServiceRequest represents a request to create a department service
type CreateServiceRequest struct {
	DepartmentID       uuid.UUID       `json:"department_id" binding:"required"`
	Name               string          `json:"name" binding:"required,min=1,max=200"`
	Description        string          `json:"description" binding:"max=2000"`
	BaseCost           decimal.Decimal `json:"base_cost"`
	FeePercentage      decimal.Decimal `json:"fee_percentage"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DoctorPercentage   decimal.Decimal `json:"doctor_percentage"`
	DoctorID           *uuid.UUID      `json:"doctor_id"`
}

// UpdateServiceRequest represents a partial update of a department service.
// Nil fields keep their current value.
type UpdateServiceRequest struct {
	Name               *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description        *string          `json:"description" binding:"omitempty,max=2000"`
	BaseCost           *decimal.Decimal `json:"base_cost"`
	FeePercentage      *decimal.Decimal `json:"fee_percentage"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	DoctorPercentage   *decimal.Decimal `json:"doctor_percentage"`
	DoctorID           *uuid.UUID       `json:"doctor_id"`
	ClearDoctor        bool             `json:"clear_doctor"`
}

// CostQuoteRequest asks for a cost breakdown without persisting anything
type CostQuoteRequest struct {
	BaseCost           decimal.Decimal `json:"base_cost"`
	FeePercentage      decimal.Decimal `json:"fee_percentage"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DoctorPercentage   decimal.Decimal `json:"doctor_percentage"`
}

// ServiceListFilter represents filter options for the service list
type ServiceListFilter struct {
	Search       string     `form:"search"`
	DepartmentID *uuid.UUID `form:"department_id"`
	Active       *bool      `form:"active"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CostBreakdown carries full-precision derived amounts plus 2 dp display strings
type CostBreakdown struct {
	FinalCost             decimal.Decimal `json:"final_cost"`
	DoctorAmount          decimal.Decimal `json:"doctor_amount"`
	HospitalAmount        decimal.Decimal `json:"hospital_amount"`
	FinalCostDisplay      string          `json:"final_cost_display"`
	DoctorAmountDisplay   string          `json:"doctor_amount_display"`
	HospitalAmountDisplay string          `json:"hospital_amount_display"`
	IsNegative            bool            `json:"is_negative"`
}

// ServiceResponse represents a department service in API responses
type ServiceResponse struct {
	ID                 uuid.UUID       `json:"id"`
	DepartmentID       uuid.UUID       `json:"department_id"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	BaseCost           decimal.Decimal `json:"base_cost"`
	FeePercentage      decimal.Decimal `json:"fee_percentage"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DoctorPercentage   decimal.Decimal `json:"doctor_percentage"`
	DoctorID           *uuid.UUID      `json:"doctor_id,omitempty"`
	Active             bool            `json:"active"`
	Cost               CostBreakdown   `json:"cost"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

// ToCostBreakdown converts a calculated cost to its response form
func ToCostBreakdown(cost department.ServiceCost) CostBreakdown {
	return CostBreakdown{
		FinalCost:             cost.FinalCost,
		DoctorAmount:          cost.DoctorAmount,
		HospitalAmount:        cost.HospitalAmount,
		FinalCostDisplay:      valueobject.FormatAmount(cost.FinalCost),
		DoctorAmountDisplay:   valueobject.FormatAmount(cost.DoctorAmount),
		HospitalAmountDisplay: valueobject.FormatAmount(cost.HospitalAmount),
		IsNegative:            cost.IsNegative(),
	}
}

// ToServiceResponse converts a domain service and its calculated cost to a response DTO
func ToServiceResponse(s *department.DepartmentService, cost department.ServiceCost) ServiceResponse {
	return ServiceResponse{
		ID:                 s.ID,
		DepartmentID:       s.DepartmentID,
		Name:               s.Name,
		Description:        s.Description,
		BaseCost:           s.BaseCost,
		FeePercentage:      s.FeePercentage,
		DiscountPercentage: s.DiscountPercentage,
		DoctorPercentage:   s.DoctorPercentage,
		DoctorID:           s.DoctorID,
		Active:             s.Active,
		Cost:               ToCostBreakdown(cost),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		Version:            s.Version,
	}
}
