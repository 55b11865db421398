package order

import (
	"encoding/json"
	"errors"

	"github.com/MikeMC777/littlelemon/internal/cart"
)

// Nullable distinguishes an omitted JSON field from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// UpdateRequest payload of order update. Managers may set both fields;
// delivery crew only the status.
// swagger:model UpdateRequest
type UpdateRequest struct {
	DeliveryCrew Nullable[int64] `json:"delivery_crew" swaggertype:"integer" example:"5"`
	Status       *bool           `json:"status"        example:"true"`
}

var ErrNothingToUpdate = errors.New("no updatable fields provided")

// Patch is the validated change applied by Repository.Update.
type Patch struct {
	SetCrew bool
	CrewID  *int64
	Status  *bool
}

func (p Patch) Empty() bool { return !p.SetCrew && p.Status == nil }

// ItemView renders money with two decimals.
type ItemView struct {
	ID        int64            `json:"id"`
	MenuItem  cart.MenuItemRef `json:"menuitem"`
	Quantity  int              `json:"quantity"`
	UnitPrice string           `json:"unit_price"`
	Price     string           `json:"price"`
}

type View struct {
	ID           int64      `json:"id"`
	User         int64      `json:"user"`
	DeliveryCrew *int64     `json:"delivery_crew"`
	Status       bool       `json:"status"`
	Total        string     `json:"total"`
	Date         string     `json:"date"`
	Items        []ItemView `json:"items"`
}

func NewView(o Order) View {
	items := make([]ItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemView{
			ID:        it.ID,
			MenuItem:  it.MenuItem,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Price:     it.Price.StringFixed(2),
		})
	}
	return View{
		ID:           o.ID,
		User:         o.UserID,
		DeliveryCrew: o.DeliveryCrewID,
		Status:       o.Status,
		Total:        o.Total.StringFixed(2),
		Date:         o.Date.Format("2006-01-02"),
		Items:        items,
	}
}

// ListResponse represents the paginated response of orders.
// swagger:model
type ListResponse struct {
	Count   int    `json:"count"`
	Page    int    `json:"page"`
	PerPage int    `json:"perpage"`
	Results []View `json:"results"`
}
