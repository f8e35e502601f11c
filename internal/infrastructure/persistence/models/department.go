package models

import (
	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/department"
	"github.com/shopspring/decimal"
)

// DepartmentServiceModel is the persistence model for the DepartmentService aggregate root.
// Final cost and the doctor/hospital split are derived and not stored.
type DepartmentServiceModel struct {
	AggregateModel
	DepartmentID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name               string          `gorm:"type:varchar(200);not null"`
	Description        string          `gorm:"type:text"`
	BaseCost           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FeePercentage      decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	DoctorPercentage   decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	DoctorID           *uuid.UUID      `gorm:"type:uuid;index"`
	Active             bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (DepartmentServiceModel) TableName() string {
	return "department_services"
}

// ToDomain converts the persistence model to a domain DepartmentService
func (m *DepartmentServiceModel) ToDomain() *department.DepartmentService {
	return &department.DepartmentService{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		DepartmentID:       m.DepartmentID,
		Name:               m.Name,
		Description:        m.Description,
		BaseCost:           m.BaseCost,
		FeePercentage:      m.FeePercentage,
		DiscountPercentage: m.DiscountPercentage,
		DoctorPercentage:   m.DoctorPercentage,
		DoctorID:           m.DoctorID,
		Active:             m.Active,
	}
}

// FromDomain populates the persistence model from a domain DepartmentService
func (m *DepartmentServiceModel) FromDomain(s *department.DepartmentService) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.DepartmentID = s.DepartmentID
	m.Name = s.Name
	m.Description = s.Description
	m.BaseCost = s.BaseCost
	m.FeePercentage = s.FeePercentage
	m.DiscountPercentage = s.DiscountPercentage
	m.DoctorPercentage = s.DoctorPercentage
	m.DoctorID = s.DoctorID
	m.Active = s.Active
}

// DepartmentServiceModelFromDomain creates a persistence model from a domain DepartmentService
func DepartmentServiceModelFromDomain(s *department.DepartmentService) *DepartmentServiceModel {
	m := &DepartmentServiceModel{}
	m.FromDomain(s)
	return m
}
