package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
)

type ShippingForm struct {
	FullName string
	Address  string
	Phone    string
	Note     string
}

type OrderService struct {
	DB     *sqlx.DB
	Carts  *CartService
	Orders *repos.OrderRepo
	Now    func() time.Time
}

func NewOrderService(db *sqlx.DB, carts *CartService, orders *repos.OrderRepo) *OrderService {
	return &OrderService{DB: db, Carts: carts, Orders: orders, Now: time.Now}
}

// Checkout turns the cart into an Order with one OrderItem per line, each
// carrying the unit price seen in the snapshot. The order and its items are
// written in one transaction; the cart is cleared only after commit.
//
// sessionID scopes the checkout key: two submissions of the same cart
// revision from one session create at most one order.
func (s *OrderService) Checkout(ctx context.Context, userID, sessionID string, c *Cart, form ShippingForm) (o domain.Order, err error) {
	ctx, span := tracer.Start(ctx, "order.checkout")
	defer func() { endSpan(span, err) }()

	snap, err := s.Carts.Snapshot(ctx, c)
	if err != nil {
		return domain.Order{}, err
	}
	if snap.Empty() {
		return domain.Order{}, domain.ErrEmptyCart
	}
	ship, err := validate.Shipping(form.FullName, form.Address, form.Phone, form.Note)
	if err != nil {
		return domain.Order{}, err
	}

	o = domain.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: s.Now().UTC(),
		Total:     snap.Total,
		Status:    domain.StatusPending,
		Shipping:  ship,
	}
	for _, l := range snap.Lines {
		o.Items = append(o.Items, domain.OrderItem{
			OrderID:     o.ID,
			ProductID:   sql.NullString{String: l.Product.ID, Valid: true},
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			Price:       l.Product.Price,
		})
	}
	key := fmt.Sprintf("%s:%d", sessionID, snap.Revision)
	span.SetAttributes(
		attribute.String("order.id", o.ID),
		attribute.Int("order.items", len(o.Items)),
		attribute.String("order.total", o.Total.StringFixed(2)),
	)

	err = repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := s.Orders.Insert(ctx, tx, o, key); err != nil {
			return err
		}
		for _, it := range o.Items {
			if err := s.Orders.InsertItem(ctx, tx, it); err != nil {
				return fmt.Errorf("insert item %s: %w", it.ProductID.String, err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	c.Clear()
	return o, nil
}

// Get returns an order visible to actor: its owner or an admin. Anyone else
// gets ErrNotFound so order ids are not confirmed to strangers.
func (s *OrderService) Get(ctx context.Context, actor *domain.User, id string) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if actor == nil || (o.UserID != actor.ID && !actor.IsAdmin()) {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

func (s *OrderService) History(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.Orders.ListByUser(ctx, userID)
}

func (s *OrderService) Latest(ctx context.Context, limit int) ([]domain.Order, error) {
	return s.Orders.ListLatest(ctx, limit)
}

// Advance moves an order forward along pending -> processing -> shipped ->
// delivered. Skipping ahead is allowed; going back or staying put is not.
func (s *OrderService) Advance(ctx context.Context, id string, next domain.OrderStatus) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !o.Status.CanAdvanceTo(next) {
		return domain.Order{}, domain.ErrStatusTransition
	}
	if err := s.Orders.UpdateStatus(ctx, id, o.Status, next); err != nil {
		return domain.Order{}, err
	}
	o.Status = next
	return o, nil
}
