package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon/internal/httpx"
	"github.com/MikeMC777/littlelemon/internal/user"
)

// Group membership handlers are shared by /groups/managers/users and
// /groups/delivery-crew/users; group selects which one.

// listMembersHandler godoc
//
//	@Summary	List members of a role group
//	@Tags		groups
//	@Security	TokenAuth
//	@Success	200	{array}		userView
//	@Failure	403	{object}	httpx.HTTPError
//	@Router		/groups/managers/users [get]
//	@Router		/groups/delivery-crew/users [get]
func listMembersHandler(svc *user.Service, group string) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, err := svc.Members(c.Request.Context(), group)
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]userView, 0, len(us))
		for i := range us {
			out = append(out, newUserView(&us[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// addMemberHandler godoc
//
//	@Summary	Add a user to a role group
//	@Tags		groups
//	@Security	TokenAuth
//	@Param		body	body		user.GroupMemberRequest	true	"user to add"
//	@Success	201		{object}	map[string]string
//	@Failure	400		{object}	httpx.HTTPError
//	@Failure	403		{object}	httpx.HTTPError
//	@Failure	404		{object}	httpx.HTTPError
//	@Router		/groups/managers/users [post]
//	@Router		/groups/delivery-crew/users [post]
func addMemberHandler(svc *user.Service, group string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.GroupMemberRequest
		if err := c.ShouldBind(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		u, err := svc.AddMember(c.Request.Context(), group, in.Username)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"detail": fmt.Sprintf("user %s added to %s", u.Username, group)})
	}
}

// getMemberHandler godoc
//
//	@Summary	Get a member of a role group
//	@Tags		groups
//	@Security	TokenAuth
//	@Param		id	path		int	true	"user id"
//	@Success	200	{object}	userView
//	@Failure	404	{object}	httpx.HTTPError
//	@Router		/groups/managers/users/{id} [get]
//	@Router		/groups/delivery-crew/users/{id} [get]
func getMemberHandler(svc *user.Service, group string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		u, err := svc.Member(c.Request.Context(), group, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newUserView(u))
	}
}

// removeMemberHandler godoc
//
//	@Summary	Remove a user from a role group
//	@Tags		groups
//	@Security	TokenAuth
//	@Param		id	path		int	true	"user id"
//	@Success	200	{object}	map[string]string
//	@Failure	404	{object}	httpx.HTTPError
//	@Router		/groups/managers/users/{id} [delete]
//	@Router		/groups/delivery-crew/users/{id} [delete]
func removeMemberHandler(svc *user.Service, group string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		u, err := svc.RemoveMember(c.Request.Context(), group, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"detail": fmt.Sprintf("user %s removed from %s", u.Username, group)})
	}
}
