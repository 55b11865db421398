package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/littlelemon/internal/cart"
)

type Order struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	DeliveryCrewID *int64          `json:"delivery_crew"`
	Status         bool            `json:"status"` // false = pending / out for delivery, true = delivered
	Total          decimal.Decimal `json:"total"`
	Date           time.Time       `json:"date"`
	Items          []Item          `json:"items"`
}

type Item struct {
	ID        int64            `json:"id"`
	OrderID   int64            `json:"order_id"`
	MenuItem  cart.MenuItemRef `json:"menuitem"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Price     decimal.Decimal  `json:"price"`
}

// FromCart builds an order and its items out of the user's cart lines. The
// total is the sum of the line prices.
func FromCart(userID int64, lines []cart.Line, now time.Time) (Order, error) {
	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}
	o := Order{
		UserID: userID,
		Total:  cart.Total(lines),
		Date:   now.UTC().Truncate(24 * time.Hour),
		Items:  make([]Item, 0, len(lines)),
	}
	for _, l := range lines {
		o.Items = append(o.Items, Item{
			MenuItem:  l.MenuItem,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Price:     l.Price,
		})
	}
	return o, nil
}
