package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon/internal/httpx"
	"github.com/MikeMC777/littlelemon/internal/user"
)

type userView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func newUserView(u *user.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email}
}

// registerHandler godoc
//
//	@Summary	Register a customer account
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		body	body		user.RegisterRequest	true	"account"
//	@Success	201		{object}	userView
//	@Failure	400		{object}	httpx.HTTPError
//	@Failure	409		{object}	httpx.HTTPError
//	@Router		/users [post]
func registerHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.RegisterRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		u, err := svc.Register(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, newUserView(u))
	}
}

// meHandler godoc
//
//	@Summary	Current user
//	@Tags		users
//	@Security	TokenAuth
//	@Success	200	{object}	user.MeResponse
//	@Failure	401	{object}	httpx.HTTPError
//	@Router		/users/users/me [get]
func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := httpx.CurrentUser(c)
		groups := p.Groups
		if groups == nil {
			groups = []string{}
		}
		c.JSON(http.StatusOK, user.MeResponse{
			ID:       p.ID,
			Username: p.Username,
			Email:    p.Email,
			Groups:   groups,
		})
	}
}

// loginHandler godoc
//
//	@Summary	Obtain an auth token
//	@Tags		users
//	@Accept		json
//	@Param		body	body		user.LoginRequest	true	"credentials"
//	@Success	200		{object}	map[string]string
//	@Failure	400		{object}	httpx.HTTPError
//	@Router		/token/login [post]
func loginHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.LoginRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		tok, err := svc.Login(c.Request.Context(), in.Username, in.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"auth_token": tok})
	}
}
