package handler

import (
	"github.com/gin-gonic/gin"
	pharmacyapp "github.com/hms/backend/internal/application/pharmacy"
	"github.com/hms/backend/internal/interfaces/http/middleware"
)

// PurchaseOrderHandler handles pharmacy purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *pharmacyapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *pharmacyapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		orderService: orderService,
	}
}

// Create handles POST /pharmacy/purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req pharmacyapp.CreatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID handles GET /pharmacy/purchase-orders/:id
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id", "order ID")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByPONumber handles GET /pharmacy/purchase-orders/number/:po_number
func (h *PurchaseOrderHandler) GetByPONumber(c *gin.Context) {
	poNumber := c.Param("po_number")
	if poNumber == "" {
		h.BadRequest(c, "PO number is required")
		return
	}

	order, err := h.orderService.GetByPONumber(c.Request.Context(), poNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List handles GET /pharmacy/purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var filter pharmacyapp.PurchaseOrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Update handles PUT /pharmacy/purchase-orders/:id (draft only)
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id", "order ID")
	if !ok {
		return
	}

	var req pharmacyapp.UpdatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// AddItem handles POST /pharmacy/purchase-orders/:id/items
func (h *PurchaseOrderHandler) AddItem(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id", "order ID")
	if !ok {
		return
	}

	var req pharmacyapp.AddPurchaseOrderItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.AddItem(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateItem handles PUT /pharmacy/purchase-orders/:id/items/:item_id
func (h *PurchaseOrderHandler) UpdateItem(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id", "order ID")
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "item_id", "item ID")
	if !ok {
		return
	}

	var req pharmacyapp.UpdatePurchaseOrderItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateItem(c.Request.Context(), orderID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// RemoveItem handles DELETE /pharmacy/purchase-orders/:id/items/:item_id
func (h *PurchaseOrderHandler) RemoveItem(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id", "order ID")
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "item_id", "item ID")
	if !ok {
		return
	}

	order, err := h.orderService.RemoveItem(c.Request.Context(), orderID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Send handles POST /pharmacy/purchase-orders/:id/send
func (h *PurchaseOrderHandler) Send(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id", "order ID")
	if !ok {
		return
	}

	order, err := h.orderService.Send(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Receive handles POST /pharmacy/purchase-orders/:id/receive.
// The Idempotency-Key header takes precedence over idempotency_key in the body.
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id", "order ID")
	if !ok {
		return
	}

	var req pharmacyapp.ReceivePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if key := c.GetHeader(middleware.IdempotencyKeyHeader); key != "" {
		req.IdempotencyKey = key
	}

	result, err := h.orderService.Receive(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// PreviewReceipt handles POST /pharmacy/purchase-orders/:id/receive/preview.
// Violations are reported in the body with status 200; nothing is persisted.
func (h *PurchaseOrderHandler) PreviewReceipt(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id", "order ID")
	if !ok {
		return
	}

	var req pharmacyapp.ReceivePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	preview, err := h.orderService.PreviewReceipt(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, preview)
}

// Cancel handles POST /pharmacy/purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id", "order ID")
	if !ok {
		return
	}

	var req pharmacyapp.CancelPurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// GetSummary handles GET /pharmacy/purchase-orders/:id/summary
func (h *PurchaseOrderHandler) GetSummary(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id", "order ID")
	if !ok {
		return
	}

	summary, err := h.orderService.GetSummary(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetReceiptHistory handles GET /pharmacy/purchase-orders/:id/receipts
func (h *PurchaseOrderHandler) GetReceiptHistory(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id", "order ID")
	if !ok {
		return
	}

	logs, err := h.orderService.GetReceiptHistory(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, logs)
}

// GetStatusSummary handles GET /pharmacy/purchase-orders/stats/summary
func (h *PurchaseOrderHandler) GetStatusSummary(c *gin.Context) {
	summary, err := h.orderService.GetStatusSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
