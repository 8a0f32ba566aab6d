package handlers

import (
	"context"
	"net/http"

	"recipebook/internal/middleware"
	"recipebook/internal/models"
)

type FavoriteStore interface {
	Add(ctx context.Context, userID, recipeID int64) error
	Remove(ctx context.Context, userID, recipeID int64) error
	GetForUser(ctx context.Context, userID int64) ([]models.Recipe, error)
}

type FavoritesHandler struct {
	favorites FavoriteStore
}

func NewFavoritesHandler(favorites FavoriteStore) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites}
}

func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	recipes, err := h.favorites.GetForUser(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch favorites")
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	recipeID, err := pathID(r, "recipeId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	if err := h.favorites.Add(r.Context(), ident.UserID, recipeID); err != nil {
		writeRepoError(w, err, "Failed to add favorite")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Recipe added to favorites"})
}

func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	recipeID, err := pathID(r, "recipeId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	if err := h.favorites.Remove(r.Context(), ident.UserID, recipeID); err != nil {
		writeRepoError(w, err, "Failed to remove favorite")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Recipe removed from favorites"})
}
