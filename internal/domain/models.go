package domain

import (
	"database/sql"
	"time"
)

type Product struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Category     string    `db:"category" json:"category"`
	Price        Money     `db:"price" json:"price"`
	Rating       int       `db:"rating" json:"rating"`
	OwnerID      string    `db:"owner_id" json:"owner_id"`
	IsWorthyPick bool      `db:"is_worthy_pick" json:"is_worthy_pick"`
	OnSale       bool      `db:"on_sale" json:"on_sale"`
	Image        string    `db:"image" json:"image,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ProductFilter narrows catalog listings. Empty fields do not filter.
type ProductFilter struct {
	Category string
	Q        string
}

// OrderStatus only ever moves forward along StatusFlow.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
)

var StatusFlow = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

func (s OrderStatus) rank() int {
	for i, st := range StatusFlow {
		if st == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) Valid() bool { return s.rank() >= 0 }

// CanAdvanceTo reports whether next is strictly later in the flow than s.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	return s.Valid() && next.Valid() && next.rank() > s.rank()
}

type Shipping struct {
	FullName string `db:"full_name" json:"full_name"`
	Address  string `db:"address" json:"address"`
	Phone    string `db:"phone" json:"phone"`
	Note     string `db:"note" json:"note"`
}

type Order struct {
	ID        string      `db:"id" json:"id"`
	UserID    string      `db:"user_id" json:"user_id"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	Total     Money       `db:"total" json:"total"`
	Status    OrderStatus `db:"status" json:"status"`
	Shipping
	Items []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem freezes the unit price paid. ProductID becomes null when the
// product is deleted later; ProductName is the name at purchase time.
type OrderItem struct {
	ID          int64          `db:"id" json:"id"`
	OrderID     string         `db:"order_id" json:"order_id"`
	ProductID   sql.NullString `db:"product_id" json:"-"`
	ProductName string         `db:"product_name" json:"product_name"`
	Quantity    int            `db:"quantity" json:"quantity"`
	Price       Money          `db:"price" json:"price"`
}

func (it OrderItem) LineTotal() Money { return it.Price.Times(it.Quantity) }

// CartLine is one resolved cart entry inside a Snapshot.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Subtotal Money   `json:"subtotal"`
}

// Snapshot is a cart resolved against live catalog prices.
type Snapshot struct {
	Lines    []CartLine `json:"lines"`
	Total    Money      `json:"total"`
	Revision int64      `json:"revision"`
	// Missing lists cart ids whose product no longer exists.
	Missing []string `json:"-"`
}

func (s Snapshot) Empty() bool { return len(s.Lines) == 0 }
