package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/devmarkblog/internal/db"
	"github.com/devmarkblog/internal/service"
)

func TestCategoryCRUD(t *testing.T) {
	env := setupHandlerTestEnv(t, nil)
	cookies := env.login(t)

	w := env.do(http.MethodPost, "/api/categories/create", map[string]string{"slug": "go"}, cookies)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without name, got %d", w.Code)
	}
	if msg := decodeBody(t, w)["message"]; msg != "Name is required" {
		t.Fatalf("unexpected message: %v", msg)
	}

	w = env.do(http.MethodPost, "/api/categories/create", map[string]string{"name": "Go", "slug": "go"}, cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	category, _ := decodeBody(t, w)["category"].(map[string]interface{})
	id, _ := category["id"].(string)
	if id == "" {
		t.Fatalf("expected category id in response")
	}

	w = env.do(http.MethodPost, "/api/categories/update?id="+id, map[string]string{"name": "Golang", "slug": "golang"}, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if msg := decodeBody(t, w)["message"]; msg != "Category updated successfully" {
		t.Fatalf("unexpected message: %v", msg)
	}

	w = env.do(http.MethodPost, "/api/categories/update?id=missing", map[string]string{"name": "x", "slug": "x"}, cookies)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = env.do(http.MethodPost, "/api/categories/update?id=missing", "{not json", cookies)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected unknown id to win over a malformed body, got %d", w.Code)
	}
}

func TestDeleteCategoryDetachesPosts(t *testing.T) {
	env := setupHandlerTestEnv(t, nil)
	cookies := env.login(t)

	category, err := service.NewCategoryService(env.db).Create(context.Background(), service.CategoryInput{Name: "Go", Slug: "go"})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	post := mustCreatePost(t, env.db, service.PostInput{Title: "Tagged", Slug: "tagged", Content: "a", CategoryID: &category.ID})

	w := env.do(http.MethodPost, "/api/categories/delete?id="+category.ID, nil, cookies)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if location := w.Header().Get("Location"); location != "/admin/categories" {
		t.Fatalf("expected redirect to /admin/categories, got %q", location)
	}

	var reloaded db.Post
	if err := env.db.First(&reloaded, "id = ?", post.ID).Error; err != nil {
		t.Fatalf("post should survive category delete: %v", err)
	}
	if reloaded.CategoryID != nil {
		t.Fatalf("expected category_id to be cleared, got %v", *reloaded.CategoryID)
	}

	w = env.do(http.MethodPost, "/api/categories/delete", nil, cookies)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without id, got %d", w.Code)
	}
}

func TestCategoryAdminPages(t *testing.T) {
	env := setupHandlerTestEnv(t, nil)
	cookies := env.login(t)

	category, err := service.NewCategoryService(env.db).Create(context.Background(), service.CategoryInput{Name: "Go", Slug: "go"})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	w := env.do(http.MethodGet, "/admin/categories", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if name, data := env.html.last(); name != "category_list.html" || len(data["categories"].([]db.Category)) != 1 {
		t.Fatalf("unexpected render %q %v", name, data["categories"])
	}

	w = env.do(http.MethodGet, "/admin/categories/"+category.ID, nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = env.do(http.MethodGet, "/admin/categories/unknown", nil, cookies)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
