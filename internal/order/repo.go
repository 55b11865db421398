package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/littlelemon/internal/cart"
)

var (
	ErrNotFound  = errors.New("order not found")
	ErrEmptyCart = errors.New("cart is empty")
)

// Filter selects orders for listing. Nil pointers mean "any".
type Filter struct {
	UserID   *int64
	CrewID   *int64
	Status   *bool
	Ordering []string
	Limit    int
	Offset   int
}

var orderColumns = map[string]string{
	"id":    "o.id",
	"date":  "o.date",
	"total": "o.total",
}

// ParseOrdering validates a comma separated ordering parameter such as "-date".
func ParseOrdering(raw string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := orderColumns[strings.TrimPrefix(f, "-")]; !ok {
			return nil, fmt.Errorf("invalid ordering field %q", f)
		}
		out = append(out, f)
	}
	return out, nil
}

func (f Filter) orderBy() string {
	parts := make([]string, 0, len(f.Ordering)+1)
	for _, o := range f.Ordering {
		dir := "ASC"
		if strings.HasPrefix(o, "-") {
			dir, o = "DESC", o[1:]
		}
		if col, ok := orderColumns[o]; ok {
			parts = append(parts, col+" "+dir)
		}
	}
	return strings.Join(append(parts, "o.id ASC"), ", ")
}

type Repository interface {
	// CreateFromCart turns the user's cart into an order and empties the cart
	// atomically.
	CreateFromCart(ctx context.Context, userID int64, now time.Time) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, f Filter) ([]Order, int, error)
	Update(ctx context.Context, id int64, p Patch) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) CreateFromCart(ctx context.Context, userID int64, now time.Time) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines, err := cart.ListWith(ctx, tx, userID, true)
	if err != nil {
		return nil, err
	}
	o, err := FromCart(userID, lines, now)
	if err != nil {
		return nil, err
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, status, total, date)
		VALUES ($1, FALSE, $2, $3)
		RETURNING id
	`, o.UserID, o.Total.String(), o.Date).Scan(&o.ID); err != nil {
		return nil, err
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, menuitem_id, quantity, unit_price, price)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id
		`, o.ID, it.MenuItem.ID, it.Quantity, it.UnitPrice.String(), it.Price.String()).Scan(&it.ID); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1`, userID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o     Order
		total string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.DeliveryCrewID, &o.Status, &total, &o.Date); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	o.Total = d
	o.Items = []Item{}
	return &o, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `
		SELECT o.id, o.user_id, o.delivery_crew_id, o.status, o.total::text, o.date
		FROM orders o WHERE o.id=$1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	items, err := r.items(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, items[o.ID]...)
	return o, nil
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Order, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	const where = `
		WHERE ($1::bigint IS NULL OR o.user_id = $1)
		  AND ($2::bigint IS NULL OR o.delivery_crew_id = $2)
		  AND ($3::boolean IS NULL OR o.status = $3)`

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders o`+where,
		f.UserID, f.CrewID, f.Status).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.user_id, o.delivery_crew_id, o.status, o.total::text, o.date
		FROM orders o`+where+`
		ORDER BY `+f.orderBy()+`
		LIMIT $4 OFFSET $5
	`, f.UserID, f.CrewID, f.Status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		out []Order
		ids []int64
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].Items = append(out[i].Items, items[out[i].ID]...)
	}
	if out == nil {
		out = []Order{}
	}
	return out, count, nil
}

func (r *PGRepo) items(ctx context.Context, orderIDs []int64) (map[int64][]Item, error) {
	res := make(map[int64][]Item, len(orderIDs))
	if len(orderIDs) == 0 {
		return res, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT i.id, i.order_id, i.menuitem_id, m.title, i.quantity, i.unit_price::text, i.price::text
		FROM order_items i
		JOIN menu_items m ON m.id = i.menuitem_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.id
	`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it          Item
			unit, price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItem.ID, &it.MenuItem.Title, &it.Quantity, &unit, &price); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		res[it.OrderID] = append(res[it.OrderID], it)
	}
	return res, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, id int64, p Patch) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET delivery_crew_id = CASE WHEN $2::boolean THEN $3::bigint ELSE delivery_crew_id END,
		    status           = COALESCE($4::boolean, status)
		WHERE id = $1
	`, id, p.SetCrew, p.CrewID, p.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
