package order

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/littlelemon/internal/cart"
	"github.com/MikeMC777/littlelemon/internal/user"
)

func ptr[T any](v T) *T { return &v }

func TestFromCart_AggregatesLines(t *testing.T) {
	a, err := cart.NewLine(9, cart.MenuItemRef{ID: 1, Title: "Greek Salad"}, decimal.RequireFromString("12.50"), 2)
	require.NoError(t, err)
	b, err := cart.NewLine(9, cart.MenuItemRef{ID: 2, Title: "Lemon Dessert"}, decimal.RequireFromString("5.00"), 1)
	require.NoError(t, err)

	now := time.Date(2026, 3, 4, 18, 30, 0, 0, time.UTC)
	o, err := FromCart(9, []cart.Line{a, b}, now)
	require.NoError(t, err)

	assert.Equal(t, int64(9), o.UserID)
	assert.Equal(t, "30.00", o.Total.StringFixed(2))
	assert.Equal(t, "2026-03-04", o.Date.Format("2006-01-02"))
	require.Len(t, o.Items, 2)
	assert.Equal(t, "25.00", o.Items[0].Price.StringFixed(2))
	assert.False(t, o.Status)
	assert.Nil(t, o.DeliveryCrewID)
}

func TestFromCart_Empty(t *testing.T) {
	_, err := FromCart(1, nil, time.Now())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestUpdateRequest_DistinguishesNullAndAbsent(t *testing.T) {
	var absent UpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":true}`), &absent))
	assert.False(t, absent.DeliveryCrew.Set)
	assert.True(t, *absent.Status)

	var null UpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"delivery_crew":null}`), &null))
	assert.True(t, null.DeliveryCrew.Set)
	assert.Nil(t, null.DeliveryCrew.Value)

	var set UpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"delivery_crew":5}`), &set))
	assert.Equal(t, int64(5), *set.DeliveryCrew.Value)

	var bad UpdateRequest
	assert.Error(t, json.Unmarshal([]byte(`{"delivery_crew":"x"}`), &bad))
}

var (
	manager  = &user.Principal{User: user.User{ID: 1}, Groups: []string{user.GroupManager}}
	crew     = &user.Principal{User: user.User{ID: 2}, Groups: []string{user.GroupDeliveryCrew}}
	customer = &user.Principal{User: user.User{ID: 3}}
	other    = &user.Principal{User: user.User{ID: 4}}
)

func TestScope(t *testing.T) {
	f := Scope(manager, Filter{UserID: ptr(int64(99)), Limit: 5})
	assert.Nil(t, f.UserID)
	assert.Nil(t, f.CrewID)
	assert.Equal(t, 5, f.Limit)

	f = Scope(crew, Filter{})
	assert.Equal(t, int64(2), *f.CrewID)
	assert.Nil(t, f.UserID)

	f = Scope(customer, Filter{})
	assert.Equal(t, int64(3), *f.UserID)
	assert.Nil(t, f.CrewID)
}

func TestCanView(t *testing.T) {
	o := &Order{ID: 1, UserID: 3, DeliveryCrewID: ptr(int64(2))}

	assert.True(t, CanView(manager, o))
	assert.True(t, CanView(crew, o))
	assert.True(t, CanView(customer, o))
	assert.False(t, CanView(other, o))
	assert.False(t, CanView(nil, o))

	unassigned := &Order{ID: 2, UserID: 3}
	assert.False(t, CanView(crew, unassigned))
}

func TestAuthorizeUpdate(t *testing.T) {
	assigned := &Order{ID: 1, UserID: 3, DeliveryCrewID: ptr(int64(2))}

	p, err := AuthorizeUpdate(manager, assigned, UpdateRequest{
		DeliveryCrew: Nullable[int64]{Set: true, Value: ptr(int64(7))},
		Status:       ptr(true),
	})
	require.NoError(t, err)
	assert.True(t, p.SetCrew)
	assert.Equal(t, int64(7), *p.CrewID)
	assert.True(t, *p.Status)

	p, err = AuthorizeUpdate(crew, assigned, UpdateRequest{Status: ptr(true)})
	require.NoError(t, err)
	assert.False(t, p.SetCrew)

	_, err = AuthorizeUpdate(crew, assigned, UpdateRequest{DeliveryCrew: Nullable[int64]{Set: true}})
	assert.ErrorIs(t, err, ErrCrewStatusOnly)

	_, err = AuthorizeUpdate(crew, &Order{ID: 2, UserID: 3}, UpdateRequest{Status: ptr(true)})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = AuthorizeUpdate(customer, assigned, UpdateRequest{Status: ptr(true)})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = AuthorizeUpdate(manager, assigned, UpdateRequest{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)
}

func TestParseOrderingAndOrderBy(t *testing.T) {
	o, err := ParseOrdering("-date,total")
	require.NoError(t, err)
	assert.Equal(t, "o.date DESC, o.total ASC, o.id ASC", Filter{Ordering: o}.orderBy())

	_, err = ParseOrdering("user_id")
	assert.Error(t, err)
}

func TestNewView(t *testing.T) {
	v := NewView(Order{
		ID: 1, UserID: 3, Total: decimal.RequireFromString("7"),
		Date:  time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Items: []Item{{ID: 1, MenuItem: cart.MenuItemRef{ID: 4, Title: "Pasta"}, Quantity: 1, UnitPrice: decimal.NewFromInt(7), Price: decimal.NewFromInt(7)}},
	})
	assert.Equal(t, "7.00", v.Total)
	assert.Equal(t, "2026-01-02", v.Date)
	assert.Equal(t, "7.00", v.Items[0].Price)
	assert.Nil(t, v.DeliveryCrew)
}
