// internal/handlers/categories.go
package handlers

import (
	"net/http"

	"storyhub/internal/httputils"
	"storyhub/internal/models"
	"storyhub/internal/store"

	"github.com/gorilla/mux"
)

type categoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListCategories handles GET /api/categories
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := []models.Category{}
	if err := h.store.Find(r.Context(), store.Categories, nil, &categories); err != nil {
		h.fail(w, r, "Error fetching categories", err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, categories)
}

// GetCategory handles GET /api/categories/{id}
func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	err := h.store.FindByID(r.Context(), store.Categories, mux.Vars(r)["id"], &category)
	if isNotFound(err) {
		httputils.WriteMessage(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Error fetching category", err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, category)
}

// CreateCategory handles POST /api/categories
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if !h.decode(w, r, &in) {
		return
	}
	if in.Name == "" {
		httputils.WriteMessage(w, http.StatusBadRequest, "Name is required")
		return
	}

	var existing models.Category
	err := h.store.FindOne(r.Context(), store.Categories, store.Filter{"name": in.Name}, &existing)
	if err == nil {
		httputils.WriteMessage(w, http.StatusBadRequest, "Category already exists")
		return
	}
	if !isNotFound(err) {
		h.fail(w, r, "Error creating category", err)
		return
	}

	category := &models.Category{Name: in.Name, Description: in.Description}
	if err := h.store.Save(r.Context(), store.Categories, category); err != nil {
		if isDuplicate(err) {
			httputils.WriteMessage(w, http.StatusBadRequest, "Category already exists")
			return
		}
		h.fail(w, r, "Error creating category", err)
		return
	}

	h.log(r).Info("Category created", "category_id", category.ID.Hex(), "name", category.Name)
	httputils.WriteJSON(w, http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/categories/{id}
func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if !h.decode(w, r, &in) {
		return
	}

	var category models.Category
	err := h.store.FindByID(r.Context(), store.Categories, mux.Vars(r)["id"], &category)
	if isNotFound(err) {
		httputils.WriteMessage(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Error updating category", err)
		return
	}

	category.Name = orKeep(in.Name, category.Name)
	category.Description = orKeep(in.Description, category.Description)

	if err := h.store.Save(r.Context(), store.Categories, &category); err != nil {
		if isDuplicate(err) {
			httputils.WriteMessage(w, http.StatusBadRequest, "Category already exists")
			return
		}
		h.fail(w, r, "Error updating category", err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/categories/{id}
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteOne(r.Context(), store.Categories, mux.Vars(r)["id"])
	if isNotFound(err) {
		httputils.WriteMessage(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Error deleting category", err)
		return
	}
	deleted(w, "Category")
}
