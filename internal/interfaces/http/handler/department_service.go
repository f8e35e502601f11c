package handler

import (
	"github.com/gin-gonic/gin"
	departmentapp "github.com/hms/backend/internal/application/department"
)

// DepartmentServiceHandler handles department service catalog endpoints
type DepartmentServiceHandler struct {
	BaseHandler
	catalogService *departmentapp.CatalogService
}

// NewDepartmentServiceHandler creates a new DepartmentServiceHandler
func NewDepartmentServiceHandler(catalogService *departmentapp.CatalogService) *DepartmentServiceHandler {
	return &DepartmentServiceHandler{
		catalogService: catalogService,
	}
}

// Create handles POST /department-services
func (h *DepartmentServiceHandler) Create(c *gin.Context) {
	var req departmentapp.CreateServiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	svc, err := h.catalogService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, svc)
}

// GetByID handles GET /department-services/:id
func (h *DepartmentServiceHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "service ID")
	if !ok {
		return
	}

	svc, err := h.catalogService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, svc)
}

// List handles GET /department-services
func (h *DepartmentServiceHandler) List(c *gin.Context) {
	var filter departmentapp.ServiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	services, total, err := h.catalogService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, services, total, filter.Page, filter.PageSize)
}

// Update handles PUT /department-services/:id
func (h *DepartmentServiceHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "service ID")
	if !ok {
		return
	}

	var req departmentapp.UpdateServiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	svc, err := h.catalogService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, svc)
}

// Activate handles POST /department-services/:id/activate
func (h *DepartmentServiceHandler) Activate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "service ID")
	if !ok {
		return
	}

	svc, err := h.catalogService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, svc)
}

// Deactivate handles POST /department-services/:id/deactivate
func (h *DepartmentServiceHandler) Deactivate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id", "service ID")
	if !ok {
		return
	}

	svc, err := h.catalogService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, svc)
}

// QuoteCost handles POST /department-services/quote
func (h *DepartmentServiceHandler) QuoteCost(c *gin.Context) {
	var req departmentapp.CostQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quote, err := h.catalogService.QuoteCost(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quote)
}
