package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// MaxQuantity is the largest quantity a single line may hold.
const MaxQuantity = 1000

type MenuItemRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Line is one menu item in a user's cart.
type Line struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	MenuItem  MenuItemRef     `json:"menuitem"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Price     decimal.Decimal `json:"price"`
}

// NewLine prices a cart line: price = quantity × unit price.
func NewLine(userID int64, item MenuItemRef, unitPrice decimal.Decimal, qty int) (Line, error) {
	if qty < 1 || qty > MaxQuantity {
		return Line{}, ErrInvalidQuantity
	}
	return Line{
		UserID:    userID,
		MenuItem:  item,
		Quantity:  qty,
		UnitPrice: unitPrice,
		Price:     LinePrice(unitPrice, qty),
	}, nil
}

func LinePrice(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// Merge folds an additional quantity into an existing line at the new unit price.
func (l *Line) Merge(qty int, unitPrice decimal.Decimal) error {
	total := l.Quantity + qty
	if qty < 1 || total > MaxQuantity {
		return ErrInvalidQuantity
	}
	l.Quantity = total
	l.UnitPrice = unitPrice
	l.Price = LinePrice(unitPrice, total)
	return nil
}

// Total sums the line prices.
func Total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Price)
	}
	return sum
}

// AddRequest payload to put a menu item in the cart.
// swagger:model AddRequest
type AddRequest struct {
	MenuItemID int64 `json:"menuitem_id" binding:"required,gt=0"          example:"1"`
	Quantity   int   `json:"quantity"    binding:"required,min=1,max=1000" example:"2"`
}

// LineView renders money with two decimals.
type LineView struct {
	ID        int64       `json:"id"`
	MenuItem  MenuItemRef `json:"menuitem"`
	Quantity  int         `json:"quantity"`
	UnitPrice string      `json:"unit_price"`
	Price     string      `json:"price"`
}

func NewLineView(l Line) LineView {
	return LineView{
		ID:        l.ID,
		MenuItem:  l.MenuItem,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice.StringFixed(2),
		Price:     l.Price.StringFixed(2),
	}
}
