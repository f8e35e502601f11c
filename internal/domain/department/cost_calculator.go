package department

import (
	"fmt"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CostPolicy holds the business-configured limits applied by the calculator
type CostPolicy struct {
	// MaxPercentage rejects any fee, discount or doctor percentage above it.
	// Zero means unlimited; percentages above 100 are then accepted.
	MaxPercentage decimal.Decimal
}

// DefaultCostPolicy returns the permissive policy
func DefaultCostPolicy() CostPolicy {
	return CostPolicy{MaxPercentage: decimal.Zero}
}

// ServiceCostInput carries the four pricing figures of a department service
type ServiceCostInput struct {
	BaseCost           decimal.Decimal
	FeePercentage      decimal.Decimal
	DiscountPercentage decimal.Decimal
	DoctorPercentage   decimal.Decimal
}

// DoctorSplit is the division of a final cost between doctor and hospital
type DoctorSplit struct {
	DoctorAmount   decimal.Decimal
	HospitalAmount decimal.Decimal
}

// ServiceCost holds the derived money figures of a service at full precision
type ServiceCost struct {
	FinalCost      decimal.Decimal
	DoctorAmount   decimal.Decimal
	HospitalAmount decimal.Decimal
}

// IsNegative reports whether the discount drove the final cost below zero
func (c ServiceCost) IsNegative() bool {
	return c.FinalCost.IsNegative()
}

// CostCalculator computes service costs and doctor/hospital earnings.
// It is stateless apart from its policy and never rounds; rounding is a display concern.
type CostCalculator struct {
	policy CostPolicy
}

// NewCostCalculator creates a calculator with the given policy
func NewCostCalculator(policy CostPolicy) *CostCalculator {
	return &CostCalculator{policy: policy}
}

// Policy returns the calculator policy
func (c *CostCalculator) Policy() CostPolicy {
	return c.policy
}

// FinalCost returns base + base*fee/100 - base*discount/100.
// A negative result is returned as is.
func (c *CostCalculator) FinalCost(baseCost, feePct, discountPct decimal.Decimal) (decimal.Decimal, error) {
	if err := c.checkBaseCost(baseCost); err != nil {
		return decimal.Zero, err
	}
	fee, err := c.percentage("fee_percentage", feePct)
	if err != nil {
		return decimal.Zero, err
	}
	discount, err := c.percentage("discount_percentage", discountPct)
	if err != nil {
		return decimal.Zero, err
	}

	return baseCost.Add(fee.Of(baseCost)).Sub(discount.Of(baseCost)), nil
}

// DoctorSplit returns doctor = base*doctorPct/100 and hospital = finalCost - doctor
func (c *CostCalculator) DoctorSplit(baseCost, doctorPct, finalCost decimal.Decimal) (DoctorSplit, error) {
	if err := c.checkBaseCost(baseCost); err != nil {
		return DoctorSplit{}, err
	}
	doctor, err := c.percentage("doctor_percentage", doctorPct)
	if err != nil {
		return DoctorSplit{}, err
	}

	doctorAmount := doctor.Of(baseCost)
	return DoctorSplit{
		DoctorAmount:   doctorAmount,
		HospitalAmount: finalCost.Sub(doctorAmount),
	}, nil
}

// Calculate derives final cost and the doctor/hospital split for a service
func (c *CostCalculator) Calculate(in ServiceCostInput) (ServiceCost, error) {
	finalCost, err := c.FinalCost(in.BaseCost, in.FeePercentage, in.DiscountPercentage)
	if err != nil {
		return ServiceCost{}, err
	}
	split, err := c.DoctorSplit(in.BaseCost, in.DoctorPercentage, finalCost)
	if err != nil {
		return ServiceCost{}, err
	}
	return ServiceCost{
		FinalCost:      finalCost,
		DoctorAmount:   split.DoctorAmount,
		HospitalAmount: split.HospitalAmount,
	}, nil
}

func (c *CostCalculator) checkBaseCost(baseCost decimal.Decimal) error {
	if baseCost.IsNegative() {
		return invalidArgument(fmt.Sprintf("base_cost cannot be negative: %s", baseCost.String()))
	}
	return nil
}

func (c *CostCalculator) percentage(field string, value decimal.Decimal) (valueobject.Percentage, error) {
	p, err := valueobject.NewPercentage(value)
	if err != nil {
		return valueobject.Percentage{}, invalidArgument(fmt.Sprintf("%s cannot be negative: %s", field, value.String()))
	}
	if c.policy.MaxPercentage.IsPositive() && p.Exceeds(c.policy.MaxPercentage) {
		return valueobject.Percentage{}, invalidArgument(fmt.Sprintf("%s %s exceeds the allowed maximum of %s", field, value.String(), c.policy.MaxPercentage.String()))
	}
	return p, nil
}

func invalidArgument(msg string) *shared.DomainError {
	return shared.NewDomainError(shared.ErrInvalidArgument.Code, msg)
}
