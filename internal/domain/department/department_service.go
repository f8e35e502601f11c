package department

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DepartmentService is a billable service offered by a hospital department.
// Derived money figures are never stored; they come from the CostCalculator.
type DepartmentService struct {
	shared.BaseAggregateRoot
	DepartmentID       uuid.UUID
	Name               string
	Description        string
	BaseCost           decimal.Decimal
	FeePercentage      decimal.Decimal
	DiscountPercentage decimal.Decimal
	DoctorPercentage   decimal.Decimal
	DoctorID           *uuid.UUID
	Active             bool
}

// Pricing groups the pricing inputs of a service
type Pricing struct {
	BaseCost           decimal.Decimal
	FeePercentage      decimal.Decimal
	DiscountPercentage decimal.Decimal
	DoctorPercentage   decimal.Decimal
}

// NewDepartmentService creates an active department service
func NewDepartmentService(departmentID uuid.UUID, name string, pricing Pricing) (*DepartmentService, error) {
	if departmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DEPARTMENT", "Department ID cannot be empty")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePricing(pricing); err != nil {
		return nil, err
	}

	return &DepartmentService{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		DepartmentID:       departmentID,
		Name:               strings.TrimSpace(name),
		BaseCost:           pricing.BaseCost,
		FeePercentage:      pricing.FeePercentage,
		DiscountPercentage: pricing.DiscountPercentage,
		DoctorPercentage:   pricing.DoctorPercentage,
		Active:             true,
	}, nil
}

// Pricing returns the current pricing inputs
func (s *DepartmentService) Pricing() Pricing {
	return Pricing{
		BaseCost:           s.BaseCost,
		FeePercentage:      s.FeePercentage,
		DiscountPercentage: s.DiscountPercentage,
		DoctorPercentage:   s.DoctorPercentage,
	}
}

// CostInput returns the calculator input for this service
func (s *DepartmentService) CostInput() ServiceCostInput {
	return ServiceCostInput(s.Pricing())
}

// UpdateDetails changes the name and description
func (s *DepartmentService) UpdateDetails(name, description string) error {
	if err := validateName(name); err != nil {
		return err
	}
	s.Name = strings.TrimSpace(name)
	s.Description = description
	s.Touch()
	return nil
}

// UpdatePricing replaces the pricing inputs, raising a price change event when anything differs
func (s *DepartmentService) UpdatePricing(pricing Pricing) error {
	if err := validatePricing(pricing); err != nil {
		return err
	}

	old := s.Pricing()
	if pricingEqual(old, pricing) {
		return nil
	}

	s.BaseCost = pricing.BaseCost
	s.FeePercentage = pricing.FeePercentage
	s.DiscountPercentage = pricing.DiscountPercentage
	s.DoctorPercentage = pricing.DoctorPercentage
	s.Touch()

	s.AddDomainEvent(NewDepartmentServicePriceChangedEvent(s, old))
	return nil
}

// AssignDoctor sets or clears (nil) the doctor earning the doctor share
func (s *DepartmentService) AssignDoctor(doctorID *uuid.UUID) {
	if doctorID != nil && *doctorID == uuid.Nil {
		doctorID = nil
	}
	s.DoctorID = doctorID
	s.Touch()
}

// Activate makes the service billable
func (s *DepartmentService) Activate() error {
	if s.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Service is already active")
	}
	s.Active = true
	s.Touch()
	return nil
}

// Deactivate hides the service from new billing. History keeps referencing it.
func (s *DepartmentService) Deactivate() error {
	if !s.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Service is already inactive")
	}
	s.Active = false
	s.Touch()
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Service name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Service name cannot exceed 200 characters")
	}
	return nil
}

func validatePricing(p Pricing) error {
	if p.BaseCost.IsNegative() {
		return shared.NewDomainError(shared.ErrInvalidArgument.Code, "Base cost cannot be negative")
	}
	for _, pct := range []decimal.Decimal{p.FeePercentage, p.DiscountPercentage, p.DoctorPercentage} {
		if pct.IsNegative() {
			return shared.NewDomainError(shared.ErrInvalidArgument.Code, "Percentages cannot be negative")
		}
	}
	return nil
}

func pricingEqual(a, b Pricing) bool {
	return a.BaseCost.Equal(b.BaseCost) &&
		a.FeePercentage.Equal(b.FeePercentage) &&
		a.DiscountPercentage.Equal(b.DiscountPercentage) &&
		a.DoctorPercentage.Equal(b.DoctorPercentage)
}
