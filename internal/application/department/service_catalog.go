package department

import (
	"context"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/department"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrNegativeFinalCost is returned when negative final costs are configured as invalid
var ErrNegativeFinalCost = shared.NewDomainError("NEGATIVE_FINAL_COST", "Discount exceeds base cost plus fee")

// CatalogService handles department service business operations
type CatalogService struct {
	repo                    department.DepartmentServiceRepository
	calculator              *department.CostCalculator
	rejectNegativeFinalCost bool
	eventPublisher          shared.EventPublisher
	businessMetrics         *telemetry.BusinessMetrics
	logger                  *zap.Logger
}

// NewCatalogService creates a new CatalogService. A nil calculator uses the default cost policy.
func NewCatalogService(repo department.DepartmentServiceRepository, calculator *department.CostCalculator) *CatalogService {
	if calculator == nil {
		calculator = department.NewCostCalculator(department.DefaultCostPolicy())
	}
	return &CatalogService{
		repo:       repo,
		calculator: calculator,
		logger:     zap.NewNop(),
	}
}

// SetRejectNegativeFinalCost makes create, update and quote fail when the final cost is negative
func (s *CatalogService) SetRejectNegativeFinalCost(reject bool) {
	s.rejectNegativeFinalCost = reject
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CatalogService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *CatalogService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetLogger sets the logger
func (s *CatalogService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Create creates a new department service
func (s *CatalogService) Create(ctx context.Context, req CreateServiceRequest) (*ServiceResponse, error) {
	exists, err := s.repo.ExistsByName(ctx, req.DepartmentID, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Department already offers a service with this name")
	}

	svc, err := department.NewDepartmentService(req.DepartmentID, req.Name, department.Pricing{
		BaseCost:           req.BaseCost,
		FeePercentage:      req.FeePercentage,
		DiscountPercentage: req.DiscountPercentage,
		DoctorPercentage:   req.DoctorPercentage,
	})
	if err != nil {
		return nil, err
	}
	svc.Description = req.Description
	if req.DoctorID != nil {
		svc.AssignDoctor(req.DoctorID)
	}

	cost, err := s.calculate(ctx, svc)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, svc); err != nil {
		return nil, err
	}

	response := ToServiceResponse(svc, cost)
	return &response, nil
}

// GetByID retrieves a department service with its derived cost
func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (*ServiceResponse, error) {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Stored pricing may predate a stricter policy; report it rather than fail the read.
	cost, err := s.calculator.Calculate(svc.CostInput())
	if err != nil {
		return nil, err
	}

	response := ToServiceResponse(svc, cost)
	return &response, nil
}

// List retrieves department services with filtering and pagination
func (s *CatalogService) List(ctx context.Context, filter ServiceListFilter) ([]ServiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.DepartmentID != nil {
		domainFilter.Filters["department_id"] = *filter.DepartmentID
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	services, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ServiceResponse, 0, len(services))
	for i := range services {
		cost, err := s.calculator.Calculate(services[i].CostInput())
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, ToServiceResponse(&services[i], cost))
	}
	return responses, total, nil
}

// Update updates a department service's details, pricing or doctor
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, req UpdateServiceRequest) (resp *ServiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "department_service", "update",
		telemetry.AttrServiceID.String(id.String()),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(telemetry.AttrDepartmentID.String(svc.DepartmentID.String()))

	if req.Name != nil || req.Description != nil {
		name, description := svc.Name, svc.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if name != svc.Name {
			exists, err := s.repo.ExistsByName(ctx, svc.DepartmentID, name)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewDomainError("ALREADY_EXISTS", "Department already offers a service with this name")
			}
		}
		if err := svc.UpdateDetails(name, description); err != nil {
			return nil, err
		}
	}

	pricing := svc.Pricing()
	if req.BaseCost != nil {
		pricing.BaseCost = *req.BaseCost
	}
	if req.FeePercentage != nil {
		pricing.FeePercentage = *req.FeePercentage
	}
	if req.DiscountPercentage != nil {
		pricing.DiscountPercentage = *req.DiscountPercentage
	}
	if req.DoctorPercentage != nil {
		pricing.DoctorPercentage = *req.DoctorPercentage
	}
	if err := svc.UpdatePricing(pricing); err != nil {
		return nil, err
	}

	if req.ClearDoctor {
		svc.AssignDoctor(nil)
	} else if req.DoctorID != nil {
		svc.AssignDoctor(req.DoctorID)
	}

	cost, err := s.calculate(ctx, svc)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, svc); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, svc)

	response := ToServiceResponse(svc, cost)
	return &response, nil
}

// Activate makes a service billable again
func (s *CatalogService) Activate(ctx context.Context, id uuid.UUID) (*ServiceResponse, error) {
	return s.changeActive(ctx, id, (*department.DepartmentService).Activate)
}

// Deactivate hides a service from new billing. Services are never deleted.
func (s *CatalogService) Deactivate(ctx context.Context, id uuid.UUID) (*ServiceResponse, error) {
	return s.changeActive(ctx, id, (*department.DepartmentService).Deactivate)
}

func (s *CatalogService) changeActive(ctx context.Context, id uuid.UUID, change func(*department.DepartmentService) error) (*ServiceResponse, error) {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(svc); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, svc); err != nil {
		return nil, err
	}

	cost, err := s.calculator.Calculate(svc.CostInput())
	if err != nil {
		return nil, err
	}
	response := ToServiceResponse(svc, cost)
	return &response, nil
}

// QuoteCost computes a cost breakdown for ad-hoc pricing inputs
func (s *CatalogService) QuoteCost(ctx context.Context, req CostQuoteRequest) (*CostBreakdown, error) {
	cost, err := s.calculator.Calculate(department.ServiceCostInput{
		BaseCost:           req.BaseCost,
		FeePercentage:      req.FeePercentage,
		DiscountPercentage: req.DiscountPercentage,
		DoctorPercentage:   req.DoctorPercentage,
	})
	if err != nil {
		return nil, err
	}
	if err := s.checkNegative(ctx, uuid.Nil, cost); err != nil {
		return nil, err
	}

	breakdown := ToCostBreakdown(cost)
	return &breakdown, nil
}

// calculate derives the cost of svc and applies the negative final cost policy
func (s *CatalogService) calculate(ctx context.Context, svc *department.DepartmentService) (department.ServiceCost, error) {
	cost, err := s.calculator.Calculate(svc.CostInput())
	if err != nil {
		return department.ServiceCost{}, err
	}
	if err := s.checkNegative(ctx, svc.DepartmentID, cost); err != nil {
		return department.ServiceCost{}, err
	}
	return cost, nil
}

func (s *CatalogService) checkNegative(ctx context.Context, departmentID uuid.UUID, cost department.ServiceCost) error {
	if !cost.IsNegative() {
		return nil
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordNegativeFinalCost(ctx, departmentID.String())
	}
	if s.rejectNegativeFinalCost {
		return ErrNegativeFinalCost
	}
	return nil
}

func (s *CatalogService) publishEvents(ctx context.Context, svc *department.DepartmentService) {
	events := svc.GetDomainEvents()
	svc.ClearDomainEvents()

	for _, event := range events {
		if event.EventType() == department.EventTypeDepartmentServicePriceChanged && s.businessMetrics != nil {
			s.businessMetrics.RecordPriceChange(ctx, svc.DepartmentID.String())
		}
	}

	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish department service events",
			zap.String("service_id", svc.ID.String()),
			zap.Error(err),
		)
	}
}
