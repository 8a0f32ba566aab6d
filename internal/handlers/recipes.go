package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"recipebook/internal/fraction"
	"recipebook/internal/middleware"
	"recipebook/internal/models"
)

type RecipeStore interface {
	GetAll(ctx context.Context) ([]models.Recipe, error)
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)
	Create(ctx context.Context, in *models.RecipeInput, createdBy int64) (*models.Recipe, error)
	Update(ctx context.Context, id int64, in *models.RecipeInput, userID int64, isAdmin bool) (*models.Recipe, error)
	Delete(ctx context.Context, id, userID int64, isAdmin bool) error
}

type RecipeHandler struct {
	recipes RecipeStore
}

func NewRecipeHandler(recipes RecipeStore) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipes.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch recipes")
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	rec, err := h.recipes.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "Failed to fetch recipe")
		return
	}

	// Display-friendly quantities for the clients: "0.5 cups" reads as
	// "1/2 cups".
	for i := range rec.Ingredients {
		rec.Ingredients[i].AmountText = fraction.FormatPtr(rec.Ingredients[i].Amount)
	}

	writeJSON(w, http.StatusOK, rec)
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var in models.RecipeInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	rec, err := h.recipes.Create(r.Context(), &in, ident.UserID)
	if err != nil {
		writeRepoError(w, err, "Failed to create recipe")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	var in models.RecipeInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.recipes.Update(r.Context(), id, &in, ident.UserID, ident.IsAdmin)
	if err != nil {
		writeRepoError(w, err, "Failed to update recipe")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	if err := h.recipes.Delete(r.Context(), id, ident.UserID, ident.IsAdmin); err != nil {
		writeRepoError(w, err, "Failed to delete recipe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Recipe deleted successfully"})
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
