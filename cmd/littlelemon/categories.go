package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon/internal/httpx"
	"github.com/MikeMC777/littlelemon/internal/menu"
)

// listCategoriesHandler godoc
//
//	@Summary	List categories
//	@Tags		category
//	@Security	TokenAuth
//	@Success	200	{array}		menu.Category
//	@Failure	403	{object}	httpx.HTTPError
//	@Router		/category [get]
func listCategoriesHandler(repo menu.CategoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cs, err := repo.ListCategories(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cs)
	}
}

// createCategoryHandler godoc
//
//	@Summary	Create a category
//	@Tags		category
//	@Security	TokenAuth
//	@Param		body	body		menu.CategoryRequest	true	"category"
//	@Success	201		{object}	menu.Category
//	@Failure	400		{object}	httpx.HTTPError
//	@Failure	409		{object}	httpx.HTTPError
//	@Router		/category [post]
func createCategoryHandler(repo menu.CategoryRepository, mc *menuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in menu.CategoryRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		cat := in.ToCategory()
		if cat.Slug == "" {
			httpx.BadRequest(c, "slug: could not be derived from title")
			return
		}
		if err := repo.CreateCategory(c.Request.Context(), &cat); err != nil {
			writeError(c, err)
			return
		}
		mc.invalidate(c.Request.Context())
		c.JSON(http.StatusCreated, cat)
	}
}

// getCategoryHandler godoc
//
//	@Summary	Get a category
//	@Tags		category
//	@Security	TokenAuth
//	@Param		id	path		int	true	"category id"
//	@Success	200	{object}	menu.Category
//	@Failure	404	{object}	httpx.HTTPError
//	@Router		/category/{id} [get]
func getCategoryHandler(repo menu.CategoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		cat, err := repo.GetCategory(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

// replaceCategoryHandler godoc
//
//	@Summary	Replace a category
//	@Tags		category
//	@Security	TokenAuth
//	@Param		id		path		int					true	"category id"
//	@Param		body	body		menu.CategoryRequest	true	"category"
//	@Success	200		{object}	menu.Category
//	@Failure	400		{object}	httpx.HTTPError
//	@Failure	404		{object}	httpx.HTTPError
//	@Failure	409		{object}	httpx.HTTPError
//	@Router		/category/{id} [put]
func replaceCategoryHandler(repo menu.CategoryRepository, mc *menuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var in menu.CategoryRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		cat := in.ToCategory()
		cat.ID = id
		saveCategory(c, repo, mc, &cat)
	}
}

// patchCategoryHandler godoc
//
//	@Summary	Update a category
//	@Tags		category
//	@Security	TokenAuth
//	@Param		id		path		int					true	"category id"
//	@Param		body	body		menu.CategoryPatch	true	"fields to change"
//	@Success	200		{object}	menu.Category
//	@Failure	400		{object}	httpx.HTTPError
//	@Failure	404		{object}	httpx.HTTPError
//	@Failure	409		{object}	httpx.HTTPError
//	@Router		/category/{id} [patch]
func patchCategoryHandler(repo menu.CategoryRepository, mc *menuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var in menu.CategoryPatch
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		cat, err := repo.GetCategory(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		in.Apply(cat)
		saveCategory(c, repo, mc, cat)
	}
}

func saveCategory(c *gin.Context, repo menu.CategoryRepository, mc *menuCache, cat *menu.Category) {
	if cat.Slug == "" {
		httpx.BadRequest(c, "slug: must contain letters or digits")
		return
	}
	if err := repo.UpdateCategory(c.Request.Context(), cat); err != nil {
		writeError(c, err)
		return
	}
	mc.invalidate(c.Request.Context())
	c.JSON(http.StatusOK, cat)
}

// deleteCategoryHandler godoc
//
//	@Summary	Delete a category
//	@Tags		category
//	@Security	TokenAuth
//	@Param		id	path	int	true	"category id"
//	@Success	204
//	@Failure	404	{object}	httpx.HTTPError
//	@Failure	409	{object}	httpx.HTTPError
//	@Router		/category/{id} [delete]
func deleteCategoryHandler(repo menu.CategoryRepository, mc *menuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		deleted, err := repo.DeleteCategory(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if !deleted {
			httpx.NotFound(c, menu.ErrCategoryNotFound.Error())
			return
		}
		mc.invalidate(c.Request.Context())
		c.Status(http.StatusNoContent)
	}
}
