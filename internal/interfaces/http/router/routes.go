package router

import (
	"github.com/hms/backend/internal/interfaces/http/handler"
)

// DepartmentServiceRoutes builds the department service catalog routes
func DepartmentServiceRoutes(h *handler.DepartmentServiceHandler) *DomainGroup {
	return NewDomainGroup("department-services", "/department-services").
		POST("", h.Create).
		GET("", h.List).
		POST("/quote", h.QuoteCost).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		POST("/:id/activate", h.Activate).
		POST("/:id/deactivate", h.Deactivate)
}

// PurchaseOrderRoutes builds the pharmacy purchase order routes
func PurchaseOrderRoutes(h *handler.PurchaseOrderHandler) *DomainGroup {
	pharmacy := NewDomainGroup("pharmacy", "/pharmacy")

	pharmacy.Group("purchase-orders", "/purchase-orders").
		POST("", h.Create).
		GET("", h.List).
		GET("/stats/summary", h.GetStatusSummary).
		GET("/number/:po_number", h.GetByPONumber).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		POST("/:id/items", h.AddItem).
		PUT("/:id/items/:item_id", h.UpdateItem).
		DELETE("/:id/items/:item_id", h.RemoveItem).
		POST("/:id/send", h.Send).
		POST("/:id/receive", h.Receive).
		POST("/:id/receive/preview", h.PreviewReceipt).
		POST("/:id/cancel", h.Cancel).
		GET("/:id/summary", h.GetSummary).
		GET("/:id/receipts", h.GetReceiptHistory)

	return pharmacy
}

// SystemRoutes builds the system info routes
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/ping", h.Ping).
		GET("/info", h.GetSystemInfo)
}
