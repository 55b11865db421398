package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon/internal/cart"
	"github.com/MikeMC777/littlelemon/internal/httpx"
	"github.com/MikeMC777/littlelemon/internal/menu"
	"github.com/MikeMC777/littlelemon/internal/metrics"
)

// listCartHandler godoc
//
//	@Summary	Current user's cart
//	@Tags		cart
//	@Security	TokenAuth
//	@Success	200	{array}		cart.LineView
//	@Failure	401	{object}	httpx.HTTPError
//	@Router		/cart/menu-items [get]
func listCartHandler(repo cart.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := httpx.CurrentUser(c)
		lines, err := repo.List(c.Request.Context(), p.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]cart.LineView, 0, len(lines))
		for _, l := range lines {
			out = append(out, cart.NewLineView(l))
		}
		c.JSON(http.StatusOK, out)
	}
}

// addToCartHandler godoc
//
//	@Summary	Put a menu item in the cart
//	@Description	Adding an item already in the cart increases its quantity.
//	@Tags		cart
//	@Security	TokenAuth
//	@Param		body	body		cart.AddRequest	true	"line"
//	@Success	201		{object}	cart.LineView
//	@Failure	400		{object}	httpx.HTTPError
//	@Failure	404		{object}	httpx.HTTPError
//	@Router		/cart/menu-items [post]
func addToCartHandler(repo cart.Repository, items menu.ItemRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cart.AddRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		ctx := c.Request.Context()
		p := httpx.CurrentUser(c)

		it, err := items.GetItem(ctx, in.MenuItemID)
		if err != nil {
			writeError(c, err)
			return
		}
		line, err := cart.NewLine(p.ID, cart.MenuItemRef{ID: it.ID, Title: it.Title}, it.Price, in.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		if err := repo.Add(ctx, &line); err != nil {
			writeError(c, err)
			return
		}
		metrics.CartLinesAdded.Inc()
		c.JSON(http.StatusCreated, cart.NewLineView(line))
	}
}

// clearCartHandler godoc
//
//	@Summary	Empty the cart
//	@Tags		cart
//	@Security	TokenAuth
//	@Success	200	{object}	map[string]int64
//	@Failure	401	{object}	httpx.HTTPError
//	@Router		/cart/menu-items [delete]
func clearCartHandler(repo cart.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := repo.Clear(c.Request.Context(), httpx.CurrentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": n})
	}
}

// removeFromCartHandler godoc
//
//	@Summary	Remove one menu item from the cart
//	@Tags		cart
//	@Security	TokenAuth
//	@Param		menuitem_id	path	int	true	"menu item id"
//	@Success	204
//	@Failure	404	{object}	httpx.HTTPError
//	@Router		/cart/menu-items/{menuitem_id} [delete]
func removeFromCartHandler(repo cart.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "menuitem_id")
		if !ok {
			return
		}
		removed, err := repo.Remove(c.Request.Context(), httpx.CurrentUser(c).ID, id)
		if err != nil {
			writeError(c, err)
			return
		}
		if !removed {
			httpx.NotFound(c, cart.ErrNotFound.Error())
			return
		}
		c.Status(http.StatusNoContent)
	}
}
