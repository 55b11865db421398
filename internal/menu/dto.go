package menu

import "github.com/shopspring/decimal"

// CategoryRequest payload of category create/update.
// swagger:model CategoryRequest
type CategoryRequest struct {
	Title string `json:"title" binding:"required,max=255" example:"Desserts"`
	Slug  string `json:"slug"  binding:"omitempty,max=255" example:"desserts"`
}

// CategoryPatch payload of partial category update.
// swagger:model CategoryPatch
type CategoryPatch struct {
	Title *string `json:"title" binding:"omitempty,min=1,max=255"`
	Slug  *string `json:"slug"  binding:"omitempty,min=1,max=255"`
}

// ItemRequest payload of menu item create/replace.
// swagger:model ItemRequest
type ItemRequest struct {
	Title      string `json:"title"       binding:"required,max=255" example:"Lemon Dessert"`
	Price      string `json:"price"       binding:"required,money"   example:"5.50"`
	Featured   bool   `json:"featured"`
	CategoryID int64  `json:"category_id" binding:"required,gt=0"    example:"1"`
}

// ItemPatch payload of partial menu item update.
// swagger:model ItemPatch
type ItemPatch struct {
	Title      *string `json:"title"       binding:"omitempty,min=1,max=255"`
	Price      *string `json:"price"       binding:"omitempty,money"`
	Featured   *bool   `json:"featured"`
	CategoryID *int64  `json:"category_id" binding:"omitempty,gt=0"`
}

// ItemView is the rendered form of a menu item: prices with two decimals.
type ItemView struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Price    string   `json:"price"`
	Featured bool     `json:"featured"`
	Category Category `json:"category"`
}

func NewItemView(it Item) ItemView {
	return ItemView{
		ID:       it.ID,
		Title:    it.Title,
		Price:    it.Price.StringFixed(2),
		Featured: it.Featured,
		Category: it.Category,
	}
}

// ListResponse represents the paginated response of menu items.
// swagger:model
type ListResponse struct {
	Count   int        `json:"count"`
	Page    int        `json:"page"`
	PerPage int        `json:"perpage"`
	Results []ItemView `json:"results"`
}

// Apply copies the set fields of p onto it. Price must already be validated.
func (p ItemPatch) Apply(it *Item) error {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Price != nil {
		d, err := decimal.NewFromString(*p.Price)
		if err != nil {
			return err
		}
		it.Price = d
	}
	if p.Featured != nil {
		it.Featured = *p.Featured
	}
	if p.CategoryID != nil {
		it.CategoryID = *p.CategoryID
	}
	return nil
}

func (r ItemRequest) ToItem() (Item, error) {
	d, err := decimal.NewFromString(r.Price)
	if err != nil {
		return Item{}, err
	}
	return Item{Title: r.Title, Price: d, Featured: r.Featured, CategoryID: r.CategoryID}, nil
}

func (r CategoryRequest) ToCategory() Category {
	slug := Slugify(r.Slug)
	if slug == "" {
		slug = Slugify(r.Title)
	}
	return Category{Title: r.Title, Slug: slug}
}

func (p CategoryPatch) Apply(c *Category) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Slug != nil {
		c.Slug = Slugify(*p.Slug)
	}
}
