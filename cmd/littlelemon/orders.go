package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon/internal/httpx"
	"github.com/MikeMC777/littlelemon/internal/metrics"
	"github.com/MikeMC777/littlelemon/internal/order"
)

type crewChecker interface {
	IsDeliveryCrew(ctx context.Context, userID int64) (bool, error)
}

// listOrdersHandler godoc
//
//	@Summary		List orders
//	@Description	Customers see their own orders, delivery crew the orders assigned to them, managers all orders.
//	@Tags			orders
//	@Security		TokenAuth
//	@Param			status		query		bool	false	"delivered"
//	@Param			ordering	query		string	false	"date, -date, total, -total, id, -id"
//	@Param			page		query		int		false	"page, from 1"
//	@Param			perpage		query		int		false	"page size, up to 100"
//	@Success		200			{object}	order.ListResponse
//	@Failure		400			{object}	httpx.HTTPError
//	@Router			/orders [get]
func listOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := httpx.PageParams(c)
		if err != nil {
			httpx.BadRequest(c, "page and perpage must be positive integers")
			return
		}
		f := order.Filter{Limit: page.Limit(), Offset: page.Offset()}
		status, ok, err := httpx.BoolQuery(c, "status")
		if err != nil {
			httpx.BadRequest(c, "status: must be true or false")
			return
		}
		if ok {
			f.Status = &status
		}
		if f.Ordering, err = order.ParseOrdering(c.Query("ordering")); err != nil {
			httpx.BadRequest(c, err.Error())
			return
		}

		orders, count, err := repo.List(c.Request.Context(), order.Scope(httpx.CurrentUser(c), f))
		if err != nil {
			writeError(c, err)
			return
		}
		resp := order.ListResponse{
			Count:   count,
			Page:    page.Page,
			PerPage: page.PerPage,
			Results: make([]order.View, 0, len(orders)),
		}
		for _, o := range orders {
			resp.Results = append(resp.Results, order.NewView(o))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// createOrderHandler godoc
//
//	@Summary	Place an order from the cart
//	@Tags		orders
//	@Security	TokenAuth
//	@Success	201	{object}	order.View
//	@Failure	400	{object}	httpx.HTTPError
//	@Router		/orders [post]
func createOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := repo.CreateFromCart(c.Request.Context(), httpx.CurrentUser(c).ID, time.Now())
		if err != nil {
			writeError(c, err)
			return
		}
		metrics.OrdersCreated.Inc()
		metrics.OrderTotal.Observe(o.Total.InexactFloat64())
		c.JSON(http.StatusCreated, order.NewView(*o))
	}
}

// getOrderHandler godoc
//
//	@Summary	Get an order
//	@Tags		orders
//	@Security	TokenAuth
//	@Param		id	path		int	true	"order id"
//	@Success	200	{object}	order.View
//	@Failure	403	{object}	httpx.HTTPError
//	@Failure	404	{object}	httpx.HTTPError
//	@Router		/orders/{id} [get]
func getOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		o, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if !order.CanView(httpx.CurrentUser(c), o) {
			httpx.Forbidden(c)
			return
		}
		c.JSON(http.StatusOK, order.NewView(*o))
	}
}

// updateOrderHandler godoc
//
//	@Summary		Update an order
//	@Description	Managers assign delivery_crew (null unassigns) and set status. Delivery crew may only set the status of orders assigned to them.
//	@Tags			orders
//	@Security		TokenAuth
//	@Param			id		path		int					true	"order id"
//	@Param			body	body		order.UpdateRequest	true	"changes"
//	@Success		200		{object}	order.View
//	@Failure		400		{object}	httpx.HTTPError
//	@Failure		403		{object}	httpx.HTTPError
//	@Failure		404		{object}	httpx.HTTPError
//	@Router			/orders/{id} [put]
//	@Router			/orders/{id} [patch]
func updateOrderHandler(repo order.Repository, crew crewChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		p := httpx.CurrentUser(c)
		if !p.IsManager() && !p.IsDeliveryCrew() {
			httpx.Forbidden(c)
			return
		}

		var in order.UpdateRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		o, err := repo.GetByID(ctx, id)
		if err != nil {
			writeError(c, err)
			return
		}
		patch, err := order.AuthorizeUpdate(p, o, in)
		if err != nil {
			writeError(c, err)
			return
		}
		if patch.SetCrew && patch.CrewID != nil {
			isCrew, err := crew.IsDeliveryCrew(ctx, *patch.CrewID)
			if err != nil {
				writeError(c, err)
				return
			}
			if !isCrew {
				writeError(c, order.ErrNotCrewMember)
				return
			}
		}
		if err := repo.Update(ctx, id, patch); err != nil {
			writeError(c, err)
			return
		}
		updated, err := repo.GetByID(ctx, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order.NewView(*updated))
	}
}

// deleteOrderHandler godoc
//
//	@Summary	Delete an order
//	@Tags		orders
//	@Security	TokenAuth
//	@Param		id	path	int	true	"order id"
//	@Success	204
//	@Failure	403	{object}	httpx.HTTPError
//	@Failure	404	{object}	httpx.HTTPError
//	@Router		/orders/{id} [delete]
func deleteOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		deleted, err := repo.Delete(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if !deleted {
			httpx.NotFound(c, order.ErrNotFound.Error())
			return
		}
		c.Status(http.StatusNoContent)
	}
}
