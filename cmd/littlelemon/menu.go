package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/littlelemon/internal/httpx"
	"github.com/MikeMC777/littlelemon/internal/menu"
)

// listItemsHandler godoc
//
//	@Summary	List menu items
//	@Tags		menu-items
//	@Param		category	query		string	false	"category title or slug"
//	@Param		to_price	query		string	false	"maximum price"
//	@Param		search		query		string	false	"title contains"
//	@Param		ordering	query		string	false	"price, -price, title, -title, id, -id"
//	@Param		page		query		int		false	"page, from 1"
//	@Param		perpage		query		int		false	"page size, up to 100"
//	@Success	200			{object}	menu.ListResponse
//	@Failure	400			{object}	httpx.HTTPError
//	@Router		/menu-items [get]
func listItemsHandler(repo menu.ItemRepository, mc *menuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := httpx.PageParams(c)
		if err != nil {
			httpx.BadRequest(c, "page and perpage must be positive integers")
			return
		}
		q := menu.Query{
			Category: strings.TrimSpace(c.Query("category")),
			Search:   strings.TrimSpace(c.Query("search")),
			Limit:    page.Limit(),
			Offset:   page.Offset(),
		}
		if s := strings.TrimSpace(c.Query("to_price")); s != "" {
			d, err := decimal.NewFromString(s)
			if err != nil {
				httpx.BadRequest(c, "to_price: enter a number")
				return
			}
			q.ToPrice = &d
		}
		if q.Ordering, err = menu.ParseOrdering(c.Query("ordering")); err != nil {
			httpx.BadRequest(c, err.Error())
			return
		}

		ctx := c.Request.Context()
		cached, key := mc.get(ctx, q)
		if cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}

		items, count, err := repo.ListItems(ctx, q)
		if err != nil {
			writeError(c, err)
			return
		}
		resp := menu.ListResponse{
			Count:   count,
			Page:    page.Page,
			PerPage: page.PerPage,
			Results: make([]menu.ItemView, 0, len(items)),
		}
		for _, it := range items {
			resp.Results = append(resp.Results, menu.NewItemView(it))
		}
		mc.put(ctx, key, resp)
		c.JSON(http.StatusOK, resp)
	}
}

// createItemHandler godoc
//
//	@Summary	Create a menu item
//	@Tags		menu-items
//	@Security	TokenAuth
//	@Param		body	body		menu.ItemRequest	true	"menu item"
//	@Success	201		{object}	menu.ItemView
//	@Failure	400		{object}	httpx.HTTPError
//	@Failure	403		{object}	httpx.HTTPError
//	@Router		/menu-items [post]
func createItemHandler(repo menu.ItemRepository, mc *menuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in menu.ItemRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		it, err := in.ToItem()
		if err != nil {
			httpx.BadRequest(c, "price: enter a number")
			return
		}
		ctx := c.Request.Context()
		if err := repo.CreateItem(ctx, &it); err != nil {
			writeItemError(c, err)
			return
		}
		mc.invalidate(ctx)
		// re-read for the joined category
		saved, err := repo.GetItem(ctx, it.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, menu.NewItemView(*saved))
	}
}

// getItemHandler godoc
//
//	@Summary	Get a menu item
//	@Tags		menu-items
//	@Param		id	path		int	true	"menu item id"
//	@Success	200	{object}	menu.ItemView
//	@Failure	404	{object}	httpx.HTTPError
//	@Router		/menu-items/{id} [get]
func getItemHandler(repo menu.ItemRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		it, err := repo.GetItem(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, menu.NewItemView(*it))
	}
}

// replaceItemHandler godoc
//
//	@Summary	Replace a menu item
//	@Tags		menu-items
//	@Security	TokenAuth
//	@Param		id		path		int				true	"menu item id"
//	@Param		body	body		menu.ItemRequest	true	"menu item"
//	@Success	200		{object}	menu.ItemView
//	@Failure	400		{object}	httpx.HTTPError
//	@Failure	403		{object}	httpx.HTTPError
//	@Failure	404		{object}	httpx.HTTPError
//	@Router		/menu-items/{id} [put]
func replaceItemHandler(repo menu.ItemRepository, mc *menuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var in menu.ItemRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		it, err := in.ToItem()
		if err != nil {
			httpx.BadRequest(c, "price: enter a number")
			return
		}
		it.ID = id
		saveItem(c, repo, mc, &it)
	}
}

// patchItemHandler godoc
//
//	@Summary	Update a menu item
//	@Tags		menu-items
//	@Security	TokenAuth
//	@Param		id		path		int				true	"menu item id"
//	@Param		body	body		menu.ItemPatch	true	"fields to change"
//	@Success	200		{object}	menu.ItemView
//	@Failure	400		{object}	httpx.HTTPError
//	@Failure	403		{object}	httpx.HTTPError
//	@Failure	404		{object}	httpx.HTTPError
//	@Router		/menu-items/{id} [patch]
func patchItemHandler(repo menu.ItemRepository, mc *menuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var in menu.ItemPatch
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		it, err := repo.GetItem(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if err := in.Apply(it); err != nil {
			httpx.BadRequest(c, "price: enter a number")
			return
		}
		saveItem(c, repo, mc, it)
	}
}

func saveItem(c *gin.Context, repo menu.ItemRepository, mc *menuCache, it *menu.Item) {
	ctx := c.Request.Context()
	if err := repo.UpdateItem(ctx, it); err != nil {
		writeItemError(c, err)
		return
	}
	mc.invalidate(ctx)
	saved, err := repo.GetItem(ctx, it.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu.NewItemView(*saved))
}

// deleteItemHandler godoc
//
//	@Summary	Delete a menu item
//	@Tags		menu-items
//	@Security	TokenAuth
//	@Param		id	path	int	true	"menu item id"
//	@Success	204
//	@Failure	403	{object}	httpx.HTTPError
//	@Failure	404	{object}	httpx.HTTPError
//	@Failure	409	{object}	httpx.HTTPError
//	@Router		/menu-items/{id} [delete]
func deleteItemHandler(repo menu.ItemRepository, mc *menuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		deleted, err := repo.DeleteItem(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if !deleted {
			httpx.NotFound(c, menu.ErrNotFound.Error())
			return
		}
		mc.invalidate(c.Request.Context())
		c.Status(http.StatusNoContent)
	}
}

// writeItemError reports an unknown category_id as a bad payload rather than
// a missing resource.
func writeItemError(c *gin.Context, err error) {
	if errors.Is(err, menu.ErrCategoryNotFound) {
		httpx.BadRequest(c, "category_id: "+err.Error())
		return
	}
	writeError(c, err)
}
