// Package menu provides the categories and menu items of the restaurant and
// their PostgreSQL repository.
package menu

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("menu item not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category has menu items")
	ErrSlugTaken        = errors.New("category slug already exists")
	ErrItemInUse        = errors.New("menu item is referenced by orders")
)

type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) (bool, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, id int64) (*Item, error)
	ListItems(ctx context.Context, q Query) ([]Item, int, error)
	UpdateItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, id int64) (bool, error)
}

type Repository interface {
	CategoryRepository
	ItemRepository
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlugTaken
	}
	return err
}

func (r *PGRepo) CreateCategory(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (slug, title) VALUES ($1,$2) RETURNING id
	`, c.Slug, c.Title).Scan(&c.ID)
	return mapWriteErr(err)
}

func (r *PGRepo) GetCategory(ctx context.Context, id int64) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Category
	err := r.db.QueryRow(ctx, `SELECT id, slug, title FROM categories WHERE id=$1`, id).
		Scan(&c.ID, &c.Slug, &c.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepo) ListCategories(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, slug, title FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Title); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateCategory(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE categories SET slug=$2, title=$3 WHERE id=$1
	`, c.ID, c.Slug, c.Title)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *PGRepo) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrCategoryInUse
		}
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const itemSelect = `
	SELECT m.id, m.title, m.price::text, m.featured, c.id, c.slug, c.title
	FROM menu_items m
	JOIN categories c ON c.id = m.category_id`

func scanItem(row pgx.Row) (*Item, error) {
	var (
		it    Item
		price string
	)
	if err := row.Scan(&it.ID, &it.Title, &price, &it.Featured,
		&it.Category.ID, &it.Category.Slug, &it.Category.Title); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	it.Price = d
	it.CategoryID = it.Category.ID
	return &it, nil
}

func (r *PGRepo) CreateItem(ctx context.Context, it *Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO menu_items (title, price, featured, category_id)
		VALUES ($1,$2,$3,$4) RETURNING id
	`, it.Title, it.Price.String(), it.Featured, it.CategoryID).Scan(&it.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetItem(ctx context.Context, id int64) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	it, err := scanItem(r.db.QueryRow(ctx, itemSelect+` WHERE m.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

// listWhere matches the category by exact title or slug, case-insensitively.
// $3 must already be escaped with EscapeLike.
const listWhere = `
		WHERE ($1 = '' OR lower(c.title) = lower($1) OR c.slug = lower($1))
		  AND ($2::numeric IS NULL OR m.price <= $2::numeric)
		  AND ($3 = '' OR m.title ILIKE '%'||$3||'%' ESCAPE '\')`

func (r *PGRepo) ListItems(ctx context.Context, q Query) ([]Item, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	var toPrice *string
	if q.ToPrice != nil {
		s := q.ToPrice.String()
		toPrice = &s
	}

	category := strings.TrimSpace(q.Category)
	search := EscapeLike(strings.TrimSpace(q.Search))

	var count int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM menu_items m JOIN categories c ON c.id = m.category_id`+listWhere,
		category, toPrice, search).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, itemSelect+listWhere+`
		ORDER BY `+q.OrderBy()+`
		LIMIT $4 OFFSET $5`,
		category, toPrice, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *it)
	}
	return out, count, rows.Err()
}

func (r *PGRepo) UpdateItem(ctx context.Context, it *Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE menu_items
		SET title=$2, price=$3, featured=$4, category_id=$5
		WHERE id=$1
	`, it.ID, it.Title, it.Price.String(), it.Featured, it.CategoryID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrCategoryNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteItem(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrItemInUse
		}
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
