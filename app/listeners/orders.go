// Package listeners reacts to domain events fired by app/services.
package listeners

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shashiranjanraj/heartscript/app/services"
	"github.com/shashiranjanraj/heartscript/pkg/event"
	"github.com/shashiranjanraj/heartscript/pkg/invoice"
	"github.com/shashiranjanraj/heartscript/pkg/logger"
	"github.com/shashiranjanraj/heartscript/pkg/mail"
)

// Publisher broadcasts a message to connected admin dashboards.
type Publisher interface {
	Publish(msg []byte) bool
}

// Sender delivers email.
type Sender interface {
	Enabled() bool
	Send(msg *mail.Message) error
}

// Register attaches the order listeners to bus. A nil hub or a disabled
// mailer skips that listener.
func Register(bus *event.Bus, hub Publisher, mailer Sender, orders *services.OrderService) {
	if hub != nil {
		bus.Listen(services.EventOrderSubmitted, LiveFeed(hub))
	}
	if mailer != nil && mailer.Enabled() {
		bus.Listen(services.EventOrderSubmitted, Confirmation(mailer, orders))
	}
}

// LiveFeed pushes each new order to the admin WebSocket feed.
func LiveFeed(hub Publisher) event.Handler {
	return func(ctx context.Context, payload interface{}) {
		o, ok := payload.(services.OrderSubmitted)
		if !ok {
			return
		}
		msg, err := json.Marshal(o)
		if err != nil {
			logger.WithCtx(ctx).Error("listeners: encode order", "error", err)
			return
		}
		if !hub.Publish(msg) {
			logger.WithCtx(ctx).Warn("listeners: live feed full, dropped order", "order_id", o.OrderID)
		}
	}
}

// Confirmation emails the customer their invoice when the order has an
// email address.
func Confirmation(mailer Sender, orders *services.OrderService) event.Handler {
	return func(ctx context.Context, payload interface{}) {
		o, ok := payload.(services.OrderSubmitted)
		if !ok {
			return
		}
		order, err := orders.GetOrder(ctx, o.OrderID)
		if err != nil {
			logger.WithCtx(ctx).Error("listeners: load order", "order_id", o.OrderID, "error", err)
			return
		}
		if order.Email == "" {
			return
		}
		pdf, err := services.RenderInvoice(order)
		if err != nil {
			logger.WithCtx(ctx).Error("listeners: render invoice", "order_id", order.ID, "error", err)
			return
		}

		msg := mail.To(order.Email).
			Subject(fmt.Sprintf("%s order #%d", invoice.Shop, order.ID)).
			Text(fmt.Sprintf("Hi %s,\r\n\r\nThank you for your order. Your invoice is attached.\r\n\r\n%s", order.Name, invoice.Shop)).
			Attach(invoice.Filename(order.ID), "application/pdf", pdf)
		if err := mailer.Send(msg); err != nil {
			logger.WithCtx(ctx).Error("listeners: confirmation mail", "order_id", order.ID, "error", err)
			return
		}
		logger.WithCtx(ctx).Info("listeners: confirmation sent", "order_id", order.ID)
	}
}
