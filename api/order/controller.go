/*
Package order is the HTTP-layer controller for order operations (§6).

Responsibilities:
 1. Bind and validate the HTTP request shape.
 2. Delegate to the application service.
 3. Translate the result through the response package, which owns all
    HTTP-status mapping — domain and application code never sees one.
*/
package order

import (
	"net/http"

	"github.com/gmartincasals/clean-orders/api/ctxutil"
	"github.com/gmartincasals/clean-orders/api/response"
	orderapp "github.com/gmartincasals/clean-orders/application/order"

	"github.com/gin-gonic/gin"
)

// Controller serves the /orders HTTP surface.
type Controller struct {
	service *orderapp.Service
}

// NewController builds an order Controller over service.
func NewController(service *orderapp.Service) *Controller {
	return &Controller{service: service}
}

// RegisterRoutes registers POST /orders, POST /orders/:id/items, and the
// not-yet-implemented GET /orders/:id.
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.POST("", c.CreateOrder)
		orders.POST("/:id/items", c.AddItem)
		orders.GET("/:id", c.GetOrder)
	}
}

// createOrderRequest is the POST /orders body. OrderID is optional: when
// omitted, one is generated (Q2).
type createOrderRequest struct {
	OrderID string `json:"orderId"`
}

// CreateOrder handles POST /orders.
func (c *Controller) CreateOrder(ctx *gin.Context) {
	var req createOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.HandleError(ctx, err, "invalid request body", http.StatusBadRequest)
		return
	}

	out, err := c.service.CreateOrder(ctxutil.WithRequestID(ctx), orderapp.CreateOrderInput{OrderID: req.OrderID})
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, out, "order created")
}

// addItemRequest is the POST /orders/:id/items body.
type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// AddItem handles POST /orders/:id/items.
func (c *Controller) AddItem(ctx *gin.Context) {
	orderID := ctx.Param("id")

	var req addItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request body", http.StatusBadRequest)
		return
	}

	out, err := c.service.AddItemToOrder(ctxutil.WithRequestID(ctx), orderapp.AddItemInput{
		OrderID:   orderID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, out, "item added")
}

// GetOrder handles GET /orders/:id. Reading back an order's current state
// is explicitly out of this spec's scope (§1 non-goals list the query side
// as an external concern); this reports that plainly rather than faking a
// 200 with an empty body.
func (c *Controller) GetOrder(ctx *gin.Context) {
	ctx.JSON(http.StatusNotImplemented, response.Response{
		Success: false,
		Error:   "NOT_IMPLEMENTED",
		Message: "order retrieval is not part of this service's HTTP surface",
		Code:    http.StatusNotImplemented,
	})
}
