package services

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/app/repositories"
	"github.com/shashiranjanraj/heartscript/config"
	"github.com/shashiranjanraj/heartscript/pkg/auth"
	"github.com/shashiranjanraj/heartscript/pkg/logger"
	"github.com/shashiranjanraj/heartscript/pkg/metrics"
	"github.com/shashiranjanraj/heartscript/pkg/orm"
	"github.com/shashiranjanraj/heartscript/pkg/validate"
)

// EventOrderSubmitted fires after an order is stored, with an
// OrderSubmitted payload.
const EventOrderSubmitted = "order.submitted"

// OrderSubmitted is the payload of EventOrderSubmitted.
type OrderSubmitted struct {
	OrderID uint   `json:"order_id"`
	Name    string `json:"name"`
	Total   int64  `json:"total"`
	Items   int    `json:"items"`
	Guest   bool   `json:"guest"`
}

// OrderPayload is the JSON body of a checkout. Total and Items are kept raw
// because clients send them in more than one shape.
type OrderPayload struct {
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	HouseNumber   string          `json:"house_number"`
	Address       string          `json:"address"`
	Pincode       string          `json:"pincode"`
	CustomDetails string          `json:"custom_details"`
	Total         json.RawMessage `json:"total"`
	Items         json.RawMessage `json:"items"`
}

// ItemInput is one structured line of an order. A nil Price marks an
// unpriced line.
type ItemInput struct {
	ProductID *uint  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     *int64 `json:"price"`
}

// MaxItemPrice bounds a unit price so price*quantity cannot overflow.
const MaxItemPrice = math.MaxInt64 / 1000

type OrderService struct {
	repo    *repositories.OrderRepository
	events  EventPublisher
	profile string
}

// NewOrderService uses the checkout profile from ORDER_CHECKOUT_FIELDS.
func NewOrderService(repo *repositories.OrderRepository, events EventPublisher) *OrderService {
	return &OrderService{repo: repo, events: events, profile: config.OrderCheckoutFields()}
}

// WithProfile overrides the checkout profile (config.CheckoutBasic or
// config.CheckoutFull).
func (s *OrderService) WithProfile(profile string) *OrderService {
	s.profile = profile
	return s
}

func (s *OrderService) Profile() string { return s.profile }

// RequiredFields lists the payload fields the profile demands, in form order.
func RequiredFields(profile string) []string {
	if profile == config.CheckoutBasic {
		return []string{"name", "phone", "address", "total", "items"}
	}
	return []string{"name", "phone", "email", "house_number", "address", "pincode", "custom_details", "total", "items"}
}

// SubmitOrder validates and stores one order and returns its id.
func (s *OrderService) SubmitOrder(ctx context.Context, id auth.Identity, p OrderPayload) (uint, error) {
	order, err := s.build(id, p)
	if err != nil {
		metrics.OrdersSubmitted.WithLabelValues("invalid").Inc()
		return 0, err
	}

	if err := s.repo.Create(ctx, order); err != nil {
		metrics.OrdersSubmitted.WithLabelValues("error").Inc()
		return 0, persistence("save order", err)
	}
	metrics.OrdersSubmitted.WithLabelValues("success").Inc()
	logger.WithCtx(ctx).Info("order: submitted", "order_id", order.ID, "total", order.Total, "guest", order.UserID == nil)

	if s.events != nil {
		s.events.FireAsync(ctx, EventOrderSubmitted, OrderSubmitted{
			OrderID: order.ID,
			Name:    order.Name,
			Total:   order.Total,
			Items:   len(order.Items),
			Guest:   order.UserID == nil,
		})
	}
	return order.ID, nil
}

func (s *OrderService) build(id auth.Identity, p OrderPayload) (*models.Order, error) {
	o := &models.Order{
		UserID:        id.UserRef(),
		Name:          strings.TrimSpace(p.Name),
		Phone:         strings.TrimSpace(p.Phone),
		Email:         strings.TrimSpace(p.Email),
		HouseNumber:   strings.TrimSpace(p.HouseNumber),
		Address:       strings.TrimSpace(p.Address),
		Pincode:       strings.TrimSpace(p.Pincode),
		CustomDetails: strings.TrimSpace(p.CustomDetails),
		Status:        models.StatusPending,
	}

	present := map[string]bool{
		"name":           o.Name != "",
		"phone":          o.Phone != "",
		"email":          o.Email != "",
		"house_number":   o.HouseNumber != "",
		"address":        o.Address != "",
		"pincode":        o.Pincode != "",
		"custom_details": o.CustomDetails != "",
		"total":          !isBlank(p.Total),
		"items":          !isBlank(p.Items),
	}
	var missing []string
	for _, f := range RequiredFields(s.profile) {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, invalid(missing[0], "Missing required fields: %s", strings.Join(missing, ", "))
	}

	if o.Email != "" {
		check := struct {
			Email string `json:"email" validate:"email"`
		}{o.Email}
		if _, msg, failed := validate.First(check); failed {
			return nil, invalid("email", "%s", msg)
		}
	}

	total, err := parseTotal(p.Total)
	if err != nil {
		return nil, err
	}
	o.Total = total

	items, err := parseItems(p.Items, total)
	if err != nil {
		return nil, err
	}
	if err := checkTotal(items, total); err != nil {
		return nil, err
	}
	o.Items = make([]models.OrderItem, len(items))
	for i, it := range items {
		o.Items[i] = it.OrderItem
	}
	return o, nil
}

// isBlank treats absent, null, "" and [] as not provided.
func isBlank(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte("[]")) {
		return true
	}
	var s string
	if json.Unmarshal(t, &s) == nil {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// parseTotal accepts a JSON number or a numeric string and requires a
// positive whole amount.
func parseTotal(raw json.RawMessage) (int64, error) {
	bad := invalid("total", "Total must be a positive whole number.")

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0, bad
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, bad
		}
	}
	if f <= 0 || f != math.Trunc(f) || f > math.MaxInt64/2 {
		return 0, bad
	}
	return int64(f), nil
}

// parseItems accepts a list of names and/or structured lines, or legacy
// free text. Free text becomes one line priced at the whole total.
func parseItems(raw json.RawMessage, total int64) ([]line, error) {
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return []line{{
			OrderItem: models.OrderItem{
				ProductName: truncate(strings.TrimSpace(text), 200),
				Quantity:    1,
				UnitPrice:   total,
				Subtotal:    total,
			},
			priced: true,
		}}, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, invalid("items", "Items must be a list of products or a description.")
	}

	items := make([]line, 0, len(list))
	for i, el := range list {
		var in ItemInput
		if json.Unmarshal(el, &in.Name) != nil {
			if err := json.Unmarshal(el, &in); err != nil {
				return nil, invalid("items", "Item %d must be a product name or object.", i+1)
			}
		}
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, invalid("items", "Item %d needs a name.", i+1)
		}
		qty := in.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 || qty > 1000 {
			return nil, invalid("items", "Item %d has an invalid quantity.", i+1)
		}
		l := line{OrderItem: models.OrderItem{
			ProductID:   in.ProductID,
			ProductName: truncate(name, 200),
			Quantity:    qty,
		}}
		if in.Price != nil {
			if *in.Price < 0 || *in.Price > MaxItemPrice {
				return nil, invalid("items", "Item %d has an invalid price.", i+1)
			}
			l.UnitPrice = *in.Price
			l.Subtotal = *in.Price * int64(qty)
			l.priced = true
		}
		items = append(items, l)
	}
	return items, nil
}

// line is a parsed order item plus whether the client priced it.
type line struct {
	models.OrderItem
	priced bool
}

// checkTotal holds the client total to the priced lines: equal when every
// line is priced, an upper bound when only some are.
func checkTotal(items []line, total int64) error {
	all := true
	for _, it := range items {
		all = all && it.priced
	}
	var sum int64
	for _, it := range items {
		if !it.priced {
			continue
		}
		if it.Subtotal > total-sum {
			if all {
				return invalid("total", "Total %d does not match the items.", total)
			}
			return invalid("total", "Total %d is less than the priced items.", total)
		}
		sum += it.Subtotal
	}
	if all && sum != total {
		return invalid("total", "Total %d does not match the items (%d).", total, sum)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ListOrders returns every order, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.All(ctx)
	if err != nil {
		return nil, persistence("list orders", err)
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (models.Order, error) {
	o, err := s.repo.Find(ctx, id)
	if orm.IsNotFound(err) {
		return models.Order{}, &NotFoundError{Resource: "order", ID: id}
	}
	if err != nil {
		return models.Order{}, persistence("get order", err)
	}
	return o, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) error {
	status = strings.TrimSpace(status)
	if !models.ValidStatus(status) {
		return invalid("status", "Status must be one of %s.", strings.Join(models.OrderStatuses, ", "))
	}
	ok, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return persistence("update status", err)
	}
	if !ok {
		return &NotFoundError{Resource: "order", ID: id}
	}
	logger.WithCtx(ctx).Info("order: status updated", "order_id", id, "status", status)
	return nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return persistence("delete order", err)
	}
	if !ok {
		return &NotFoundError{Resource: "order", ID: id}
	}
	logger.WithCtx(ctx).Info("order: deleted", "order_id", id)
	return nil
}

// CanView reports whether id may see order o: an admin, its owner, or the
// session that placed it (placed lists the session's order ids).
func CanView(id auth.Identity, o models.Order, placed []uint) bool {
	if id.Admin {
		return true
	}
	if o.UserID != nil && id.UserID != 0 && *o.UserID == id.UserID {
		return true
	}
	for _, p := range placed {
		if p == o.ID {
			return true
		}
	}
	return false
}

