package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/littlelemon/internal/cache"
	"github.com/MikeMC777/littlelemon/internal/cart"
	"github.com/MikeMC777/littlelemon/internal/config"
	"github.com/MikeMC777/littlelemon/internal/menu"
	"github.com/MikeMC777/littlelemon/internal/order"
	"github.com/MikeMC777/littlelemon/internal/user"
)

//
// ===== in-memory repositories =====
//

type stubUsers struct {
	users  map[int64]*user.User
	groups map[int64]map[string]bool
	nextID int64
}

func newStubUsers() *stubUsers {
	return &stubUsers{users: map[int64]*user.User{}, groups: map[int64]map[string]bool{}}
}

func (s *stubUsers) Create(_ context.Context, u *user.User) error {
	for _, v := range s.users {
		if v.Username == u.Username {
			return user.ErrAlreadyExist
		}
	}
	s.nextID++
	u.ID = s.nextID
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubUsers) GetByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *stubUsers) Groups(_ context.Context, id int64) ([]string, error) {
	out := []string{}
	for g := range s.groups[id] {
		out = append(out, g)
	}
	sort.Strings(out)
	return out, nil
}

func (s *stubUsers) ListByGroup(_ context.Context, group string) ([]user.User, error) {
	out := []user.User{}
	for id, gs := range s.groups {
		if gs[group] {
			out = append(out, *s.users[id])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubUsers) AddToGroup(_ context.Context, id int64, group string) error {
	if s.groups[id] == nil {
		s.groups[id] = map[string]bool{}
	}
	s.groups[id][group] = true
	return nil
}

func (s *stubUsers) RemoveFromGroup(_ context.Context, id int64, group string) (bool, error) {
	if !s.groups[id][group] {
		return false, nil
	}
	delete(s.groups[id], group)
	return true, nil
}

func (s *stubUsers) InGroup(_ context.Context, id int64, group string) (bool, error) {
	return s.groups[id][group], nil
}

type stubMenu struct {
	cats      map[int64]*menu.Category
	items     map[int64]*menu.Item
	nextID    int64
	listCalls int
	lastQuery menu.Query
}

func newStubMenu() *stubMenu {
	return &stubMenu{cats: map[int64]*menu.Category{}, items: map[int64]*menu.Item{}}
}

func (s *stubMenu) CreateCategory(_ context.Context, c *menu.Category) error {
	for _, v := range s.cats {
		if v.Slug == c.Slug {
			return menu.ErrSlugTaken
		}
	}
	s.nextID++
	c.ID = s.nextID
	cp := *c
	s.cats[c.ID] = &cp
	return nil
}

func (s *stubMenu) GetCategory(_ context.Context, id int64) (*menu.Category, error) {
	c, ok := s.cats[id]
	if !ok {
		return nil, menu.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *stubMenu) ListCategories(context.Context) ([]menu.Category, error) {
	out := []menu.Category{}
	for _, c := range s.cats {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubMenu) UpdateCategory(_ context.Context, c *menu.Category) error {
	if _, ok := s.cats[c.ID]; !ok {
		return menu.ErrCategoryNotFound
	}
	cp := *c
	s.cats[c.ID] = &cp
	return nil
}

func (s *stubMenu) DeleteCategory(_ context.Context, id int64) (bool, error) {
	if _, ok := s.cats[id]; !ok {
		return false, nil
	}
	for _, it := range s.items {
		if it.CategoryID == id {
			return false, menu.ErrCategoryInUse
		}
	}
	delete(s.cats, id)
	return true, nil
}

func (s *stubMenu) CreateItem(_ context.Context, it *menu.Item) error {
	if _, ok := s.cats[it.CategoryID]; !ok {
		return menu.ErrCategoryNotFound
	}
	s.nextID++
	it.ID = s.nextID
	cp := *it
	s.items[it.ID] = &cp
	return nil
}

func (s *stubMenu) GetItem(_ context.Context, id int64) (*menu.Item, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, menu.ErrNotFound
	}
	cp := *it
	cp.Category = *s.cats[it.CategoryID]
	return &cp, nil
}

// ListItems filters by category and to_price and orders by id only.
func (s *stubMenu) ListItems(ctx context.Context, q menu.Query) ([]menu.Item, int, error) {
	s.listCalls++
	s.lastQuery = q
	all := []menu.Item{}
	for id := range s.items {
		it, _ := s.GetItem(ctx, id)
		if q.Category != "" && !strings.EqualFold(it.Category.Title, q.Category) && it.Category.Slug != q.Category {
			continue
		}
		if q.ToPrice != nil && it.Price.GreaterThan(*q.ToPrice) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(it.Title), strings.ToLower(q.Search)) {
			continue
		}
		all = append(all, *it)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	start := min(q.Offset, len(all))
	end := min(start+q.Limit, len(all))
	return all[start:end], len(all), nil
}

func (s *stubMenu) UpdateItem(_ context.Context, it *menu.Item) error {
	if _, ok := s.items[it.ID]; !ok {
		return menu.ErrNotFound
	}
	if _, ok := s.cats[it.CategoryID]; !ok {
		return menu.ErrCategoryNotFound
	}
	cp := *it
	s.items[it.ID] = &cp
	return nil
}

func (s *stubMenu) DeleteItem(_ context.Context, id int64) (bool, error) {
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

type stubCarts struct {
	lines  map[int64][]cart.Line
	nextID int64
}

func newStubCarts() *stubCarts { return &stubCarts{lines: map[int64][]cart.Line{}} }

func (s *stubCarts) List(_ context.Context, userID int64) ([]cart.Line, error) {
	return append([]cart.Line{}, s.lines[userID]...), nil
}

func (s *stubCarts) Add(_ context.Context, l *cart.Line) error {
	ls := s.lines[l.UserID]
	for i := range ls {
		if ls[i].MenuItem.ID == l.MenuItem.ID {
			if err := ls[i].Merge(l.Quantity, l.UnitPrice); err != nil {
				return err
			}
			*l = ls[i]
			return nil
		}
	}
	s.nextID++
	l.ID = s.nextID
	s.lines[l.UserID] = append(ls, *l)
	return nil
}

func (s *stubCarts) Remove(_ context.Context, userID, menuItemID int64) (bool, error) {
	ls := s.lines[userID]
	for i := range ls {
		if ls[i].MenuItem.ID == menuItemID {
			s.lines[userID] = append(ls[:i], ls[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *stubCarts) Clear(_ context.Context, userID int64) (int64, error) {
	n := int64(len(s.lines[userID]))
	delete(s.lines, userID)
	return n, nil
}

type stubOrders struct {
	carts  *stubCarts
	orders map[int64]*order.Order
	nextID int64
}

func newStubOrders(carts *stubCarts) *stubOrders {
	return &stubOrders{carts: carts, orders: map[int64]*order.Order{}}
}

func (s *stubOrders) CreateFromCart(_ context.Context, userID int64, now time.Time) (*order.Order, error) {
	o, err := order.FromCart(userID, s.carts.lines[userID], now)
	if err != nil {
		return nil, err
	}
	s.nextID++
	o.ID = s.nextID
	for i := range o.Items {
		o.Items[i].ID = int64(i + 1)
		o.Items[i].OrderID = o.ID
	}
	delete(s.carts.lines, userID)
	cp := o
	s.orders[o.ID] = &cp
	return &o, nil
}

func (s *stubOrders) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrders) List(_ context.Context, f order.Filter) ([]order.Order, int, error) {
	all := []order.Order{}
	for _, o := range s.orders {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.CrewID != nil && (o.DeliveryCrewID == nil || *o.DeliveryCrewID != *f.CrewID) {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		all = append(all, *o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	start := min(f.Offset, len(all))
	end := min(start+f.Limit, len(all))
	return all[start:end], len(all), nil
}

func (s *stubOrders) Update(_ context.Context, id int64, p order.Patch) error {
	o, ok := s.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	if p.SetCrew {
		o.DeliveryCrewID = p.CrewID
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	return nil
}

func (s *stubOrders) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := s.orders[id]; !ok {
		return false, nil
	}
	delete(s.orders, id)
	return true, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

//
// ===== test application =====
//

type testApp struct {
	r      *gin.Engine
	users  *stubUsers
	menu   *stubMenu
	carts  *stubCarts
	orders *stubOrders
	ids    map[string]int64
	tokens map[string]string
}

// newTestApp wires the real router over the stubs with four accounts:
// customer, manager, crew and admin. Throttling is off.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, config.Config{MenuCacheTTL: time.Minute})
}

func newTestAppWith(t *testing.T, cfg config.Config) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a := &testApp{
		users:  newStubUsers(),
		menu:   newStubMenu(),
		carts:  newStubCarts(),
		ids:    map[string]int64{},
		tokens: map[string]string{},
	}
	a.orders = newStubOrders(a.carts)

	issuer := user.NewTokenIssuer("test-secret", time.Hour)
	ctx := context.Background()
	for _, role := range []string{"customer", "manager", "crew", "admin"} {
		u := &user.User{Username: role, Email: role + "@littlelemon.com", PasswordHash: "-", IsSuperuser: role == "admin"}
		if err := a.users.Create(ctx, u); err != nil {
			t.Fatalf("create %s: %v", role, err)
		}
		switch role {
		case "manager":
			_ = a.users.AddToGroup(ctx, u.ID, user.GroupManager)
		case "crew":
			_ = a.users.AddToGroup(ctx, u.ID, user.GroupDeliveryCrew)
		}
		tok, err := issuer.Issue(u)
		if err != nil {
			t.Fatalf("token %s: %v", role, err)
		}
		a.ids[role] = u.ID
		a.tokens[role] = tok
	}

	a.r = newRouter(deps{
		cfg:    cfg,
		log:    zap.NewNop(),
		users:  user.NewService(a.users, issuer),
		menu:   a.menu,
		carts:  a.carts,
		orders: a.orders,
		store:  cache.NewMemoryStore(),
		pinger: stubPinger{},
	})
	return a
}

// do sends body (when non-empty) as JSON, authenticated as role unless role is "".
func (a *testApp) do(method, path, role, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if role != "" {
		req.Header.Set("Authorization", "Token "+a.tokens[role])
	}
	a.r.ServeHTTP(w, req)
	return w
}

func (a *testApp) seedItem(t *testing.T, title, price, category string) *menu.Item {
	t.Helper()
	ctx := context.Background()
	var cat *menu.Category
	for _, c := range a.menu.cats {
		if c.Title == category {
			cat = c
		}
	}
	if cat == nil {
		cat = &menu.Category{Title: category, Slug: menu.Slugify(category)}
		if err := a.menu.CreateCategory(ctx, cat); err != nil {
			t.Fatalf("seed category: %v", err)
		}
	}
	it := &menu.Item{Title: title, Price: decimal.RequireFromString(price), CategoryID: cat.ID}
	if err := a.menu.CreateItem(ctx, it); err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return it
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return v
}

var errBoom = errors.New("boom")
