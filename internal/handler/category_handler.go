package handler

import (
	"errors"
	"net/http"

	"github.com/devmarkblog/internal/service"
	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (r categoryRequest) toInput() service.CategoryInput {
	return service.CategoryInput{Name: r.Name, Slug: r.Slug}
}

// CreateCategory 创建分类
func (a *API) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	category, err := a.categories.Create(c.Request.Context(), req.toInput())
	if err != nil {
		a.handleCategoryError(c, err, "failed to create category")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category, "message": "Category created successfully"})
}

// UpdateCategory 更新分类
func (a *API) UpdateCategory(c *gin.Context) {
	id, ok := queryID(c, "Category ID is required")
	if !ok {
		return
	}

	if _, err := a.categories.Find(c.Request.Context(), id); err != nil {
		a.handleCategoryError(c, err, "failed to load category")
		return
	}

	var req categoryRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	category, err := a.categories.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		a.handleCategoryError(c, err, "failed to update category")
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category, "message": "Category updated successfully"})
}

// DeleteCategory 删除分类，引用它的文章会被解除关联
func (a *API) DeleteCategory(c *gin.Context) {
	id, ok := queryID(c, "Category ID is required")
	if !ok {
		return
	}

	if err := a.categories.Delete(c.Request.Context(), id); err != nil {
		a.handleCategoryError(c, err, "failed to delete category")
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin/categories")
}

// ShowCategoryList 渲染分类列表
func (a *API) ShowCategoryList(c *gin.Context) {
	categories, err := a.categories.List(c.Request.Context())
	if err != nil {
		a.requestLogger(c).WithError(err).Error("failed to list categories")
		a.renderHTML(c, http.StatusInternalServerError, "category_list.html", gin.H{
			"title": "Categories",
			"error": "Failed to load categories",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "category_list.html", gin.H{
		"title":      "Categories",
		"categories": categories,
	})
}

// ShowCategoryNew 渲染新建分类页面
func (a *API) ShowCategoryNew(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "category_edit.html", gin.H{"title": "New category"})
}

// ShowCategoryEdit 渲染分类编辑页面
func (a *API) ShowCategoryEdit(c *gin.Context) {
	category, err := a.categories.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			a.NotFound(c)
			return
		}
		a.requestLogger(c).WithError(err).Error("failed to load category")
		a.renderHTML(c, http.StatusInternalServerError, "category_edit.html", gin.H{
			"title": "Edit category",
			"error": "Failed to load category",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "category_edit.html", gin.H{
		"title":    "Edit category",
		"category": category,
	})
}

func (a *API) handleCategoryError(c *gin.Context, err error, logMessage string) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, "Category not found")
	case errors.Is(err, service.ErrNameRequired):
		respondError(c, http.StatusBadRequest, "Name is required")
	case errors.Is(err, service.ErrSlugRequired):
		respondError(c, http.StatusBadRequest, "Slug is required")
	default:
		a.respondInternalError(c, err, logMessage)
	}
}
