package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon/internal/cart"
	"github.com/MikeMC777/littlelemon/internal/httpx"
	"github.com/MikeMC777/littlelemon/internal/menu"
	"github.com/MikeMC777/littlelemon/internal/order"
	"github.com/MikeMC777/littlelemon/internal/user"
)

// writeError maps domain sentinels to HTTP statuses. Anything unknown is a 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, menu.ErrNotFound),
		errors.Is(err, menu.ErrCategoryNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		httpx.NotFound(c, err.Error())
	case errors.Is(err, user.ErrAlreadyExist),
		errors.Is(err, menu.ErrSlugTaken),
		errors.Is(err, menu.ErrCategoryInUse),
		errors.Is(err, menu.ErrItemInUse):
		httpx.Abort(c, http.StatusConflict, err.Error())
	case errors.Is(err, user.ErrInvalidArgument),
		errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrNothingToUpdate),
		errors.Is(err, order.ErrCrewStatusOnly),
		errors.Is(err, order.ErrNotCrewMember):
		httpx.BadRequest(c, err.Error())
	case errors.Is(err, order.ErrForbidden):
		httpx.Forbidden(c)
	default:
		httpx.Internal(c, err)
	}
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := httpx.IDParam(c, name)
	if err != nil {
		httpx.NotFound(c, "not found")
		return 0, false
	}
	return id, true
}
