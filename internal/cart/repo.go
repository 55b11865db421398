package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("cart line not found")

type Repository interface {
	List(ctx context.Context, userID int64) ([]Line, error)
	// Add inserts the line or, when the menu item is already in the cart,
	// adds to its quantity and reprices it.
	Add(ctx context.Context, l *Line) error
	Remove(ctx context.Context, userID, menuItemID int64) (bool, error)
	Clear(ctx context.Context, userID int64) (int64, error)
}

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the order
// checkout can read the cart inside its transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) List(ctx context.Context, userID int64) ([]Line, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ListWith(ctx, r.db, userID, false)
}

// ListWith reads the user's lines through q. With forUpdate the rows stay
// locked until the surrounding transaction ends.
func ListWith(ctx context.Context, q Querier, userID int64, forUpdate bool) ([]Line, error) {
	sql := `
		SELECT l.id, l.user_id, l.menuitem_id, m.title, l.quantity, l.unit_price::text, l.price::text
		FROM cart_lines l
		JOIN menu_items m ON m.id = l.menuitem_id
		WHERE l.user_id = $1
		ORDER BY l.id`
	if forUpdate {
		sql += ` FOR UPDATE OF l`
	}
	rows, err := q.Query(ctx, sql, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Line{}
	for rows.Next() {
		var (
			l           Line
			unit, price string
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.MenuItem.ID, &l.MenuItem.Title, &l.Quantity, &unit, &price); err != nil {
			return nil, err
		}
		if l.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return nil, err
		}
		if l.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PGRepo) Add(ctx context.Context, l *Line) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var qty int
	var price string
	err := r.db.QueryRow(ctx, `
		INSERT INTO cart_lines (user_id, menuitem_id, quantity, unit_price, price)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id, menuitem_id) DO UPDATE SET
			quantity   = cart_lines.quantity + EXCLUDED.quantity,
			unit_price = EXCLUDED.unit_price,
			price      = EXCLUDED.unit_price * (cart_lines.quantity + EXCLUDED.quantity)
		WHERE cart_lines.quantity + EXCLUDED.quantity <= $6
		RETURNING id, quantity, price::text
	`, l.UserID, l.MenuItem.ID, l.Quantity, l.UnitPrice.String(), l.Price.String(), MaxQuantity).Scan(&l.ID, &qty, &price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidQuantity
		}
		return err
	}
	l.Quantity = qty
	l.Price, err = decimal.NewFromString(price)
	return err
}

func (r *PGRepo) Remove(ctx context.Context, userID, menuItemID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		DELETE FROM cart_lines WHERE user_id=$1 AND menuitem_id=$2
	`, userID, menuItemID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) Clear(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
