package handlers

import (
	"context"
	"net/http"

	"recipebook/internal/models"
)

type IngredientStore interface {
	GetAll(ctx context.Context) ([]models.Ingredient, error)
	GetByID(ctx context.Context, id int64) (*models.Ingredient, error)
	Create(ctx context.Context, name string) (*models.Ingredient, error)
	Update(ctx context.Context, id int64, name string) (*models.Ingredient, error)
	Delete(ctx context.Context, id int64) error
}

type IngredientHandler struct {
	ingredients IngredientStore
}

func NewIngredientHandler(ingredients IngredientStore) *IngredientHandler {
	return &IngredientHandler{ingredients: ingredients}
}

func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.ingredients.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch ingredients")
		return
	}
	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}
	writeJSON(w, http.StatusOK, ingredients)
}

func (h *IngredientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	ing, err := h.ingredients.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "Failed to fetch ingredient")
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	ing, err := h.ingredients.Create(r.Context(), req.Name)
	if err != nil {
		writeRepoError(w, err, "Failed to create ingredient")
		return
	}
	writeJSON(w, http.StatusCreated, ing)
}

func (h *IngredientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	ing, err := h.ingredients.Update(r.Context(), id, req.Name)
	if err != nil {
		writeRepoError(w, err, "Failed to update ingredient")
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

func (h *IngredientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	if err := h.ingredients.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err, "Failed to delete ingredient")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ingredient deleted successfully"})
}
