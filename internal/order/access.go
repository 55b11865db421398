package order

import (
	"errors"

	"github.com/MikeMC777/littlelemon/internal/user"
)

var (
	ErrForbidden      = errors.New("you do not have permission to perform this action")
	ErrCrewStatusOnly = errors.New("delivery crew may only update the order status")
	ErrNotCrewMember  = errors.New("delivery_crew must be a member of the delivery crew group")
)

// Scope narrows an order listing to what the principal may see: customers
// their own orders, delivery crew the orders assigned to them, managers all.
func Scope(p *user.Principal, f Filter) Filter {
	f.UserID, f.CrewID = nil, nil
	switch {
	case p.IsManager():
	case p.IsDeliveryCrew():
		id := p.ID
		f.CrewID = &id
	default:
		id := p.ID
		f.UserID = &id
	}
	return f
}

func CanView(p *user.Principal, o *Order) bool {
	if p == nil || o == nil {
		return false
	}
	if p.IsManager() || o.UserID == p.ID {
		return true
	}
	return p.IsDeliveryCrew() && o.DeliveryCrewID != nil && *o.DeliveryCrewID == p.ID
}

// AuthorizeUpdate turns an update request into a Patch the principal is
// allowed to apply. Crew membership of a newly assigned delivery crew is
// checked by the caller.
func AuthorizeUpdate(p *user.Principal, o *Order, req UpdateRequest) (Patch, error) {
	patch := Patch{SetCrew: req.DeliveryCrew.Set, CrewID: req.DeliveryCrew.Value, Status: req.Status}
	switch {
	case p.IsManager():
	case p.IsDeliveryCrew():
		if o.DeliveryCrewID == nil || *o.DeliveryCrewID != p.ID {
			return Patch{}, ErrForbidden
		}
		if patch.SetCrew {
			return Patch{}, ErrCrewStatusOnly
		}
	default:
		return Patch{}, ErrForbidden
	}
	if patch.Empty() {
		return Patch{}, ErrNothingToUpdate
	}
	return patch, nil
}
