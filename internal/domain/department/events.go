package department

import (
	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeDepartmentService is the aggregate type for department services
const AggregateTypeDepartmentService = "DepartmentService"

// EventTypeDepartmentServicePriceChanged is raised when any pricing input changes
const EventTypeDepartmentServicePriceChanged = "DepartmentServicePriceChanged"

// DepartmentServicePriceChangedEvent records old and new pricing inputs
type DepartmentServicePriceChangedEvent struct {
	shared.BaseDomainEvent
	ServiceID    uuid.UUID   `json:"service_id"`
	DepartmentID uuid.UUID   `json:"department_id"`
	Name         string      `json:"name"`
	OldPricing   PricingInfo `json:"old_pricing"`
	NewPricing   PricingInfo `json:"new_pricing"`
}

// PricingInfo is the serialisable form of Pricing
type PricingInfo struct {
	BaseCost           decimal.Decimal `json:"base_cost"`
	FeePercentage      decimal.Decimal `json:"fee_percentage"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DoctorPercentage   decimal.Decimal `json:"doctor_percentage"`
}

// NewDepartmentServicePriceChangedEvent creates the event from the service's current state
func NewDepartmentServicePriceChangedEvent(s *DepartmentService, old Pricing) *DepartmentServicePriceChangedEvent {
	return &DepartmentServicePriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepartmentServicePriceChanged, AggregateTypeDepartmentService, s.ID),
		ServiceID:       s.ID,
		DepartmentID:    s.DepartmentID,
		Name:            s.Name,
		OldPricing:      PricingInfo(old),
		NewPricing:      PricingInfo(s.Pricing()),
	}
}
