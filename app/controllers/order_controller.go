package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/app/services"
	"github.com/shashiranjanraj/heartscript/pkg/bind"
	"github.com/shashiranjanraj/heartscript/pkg/ctx"
	"github.com/shashiranjanraj/heartscript/pkg/invoice"
	"github.com/shashiranjanraj/heartscript/pkg/logger"
)

// sessionOrders lists the ids of orders placed from this session, so guests
// can reopen their confirmation and invoice.
const sessionOrders = "orders"

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Submit handles POST /submit_order.
func (h *OrderController) Submit(c *ctx.Context) {
	var payload services.OrderPayload
	if _, err := bind.JSON(c.R, &payload); err != nil {
		c.Error(http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	id, err := h.orders.SubmitOrder(c.Context(), c.Identity(), payload)
	if err != nil {
		if services.IsValidation(err) {
			c.Error(http.StatusBadRequest, err.Error())
			return
		}
		logger.WithCtx(c.Context()).Error("order: submit failed", "error", err)
		c.Error(http.StatusInternalServerError, "could not save order")
		return
	}

	sess := c.Session()
	sess.Set(sessionOrders, append(sess.GetUints(sessionOrders), id))
	_ = c.SaveSession()

	c.JSON(http.StatusOK, ctx.H{"status": "success", "id": id, "order_id": id})
}

// viewable loads the order named in the path if the caller may see it.
func (h *OrderController) viewable(c *ctx.Context) (models.Order, bool) {
	id, ok := c.ParamUint("id")
	if !ok {
		notFound(c)
		return models.Order{}, false
	}
	o, err := h.orders.GetOrder(c.Context(), id)
	if err != nil {
		renderError(c, err)
		return models.Order{}, false
	}
	if !services.CanView(c.Identity(), o, c.Session().GetUints(sessionOrders)) {
		c.HTML(http.StatusForbidden, "error", ctx.H{"Code": http.StatusForbidden, "Message": "This order belongs to someone else."})
		return models.Order{}, false
	}
	return o, true
}

// ThankYou handles GET /thank_you/{id} and /thank-you/{id}.
func (h *OrderController) ThankYou(c *ctx.Context) {
	o, ok := h.viewable(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "thank_you", ctx.H{"Order": o})
}

// Invoice handles GET /download_invoice/{id}.
func (h *OrderController) Invoice(c *ctx.Context) {
	o, ok := h.viewable(c)
	if !ok {
		return
	}
	pdf, err := services.RenderInvoice(o)
	if err != nil {
		renderError(c, err)
		return
	}
	c.Attachment(invoice.Filename(o.ID), "application/pdf", pdf)
}
