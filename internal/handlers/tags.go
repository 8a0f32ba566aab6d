package handlers

import (
	"context"
	"net/http"

	"recipebook/internal/models"
)

type TagStore interface {
	GetAll(ctx context.Context) ([]models.Tag, error)
	GetByID(ctx context.Context, id int64) (*models.Tag, error)
	Create(ctx context.Context, name string) (*models.Tag, error)
	Update(ctx context.Context, id int64, name string) (*models.Tag, error)
	Delete(ctx context.Context, id int64) error
}

type TaggedRecipeStore interface {
	GetByTag(ctx context.Context, tagID int64) ([]models.Recipe, error)
}

type TagHandler struct {
	tags    TagStore
	recipes TaggedRecipeStore
}

func NewTagHandler(tags TagStore, recipes TaggedRecipeStore) *TagHandler {
	return &TagHandler{tags: tags, recipes: recipes}
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch tags")
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	tag, err := h.tags.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "Failed to fetch tag")
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *TagHandler) Recipes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	recipes, err := h.recipes.GetByTag(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch recipes")
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	tag, err := h.tags.Create(r.Context(), req.Name)
	if err != nil {
		writeRepoError(w, err, "Failed to create tag")
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	tag, err := h.tags.Update(r.Context(), id, req.Name)
	if err != nil {
		writeRepoError(w, err, "Failed to update tag")
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	if err := h.tags.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err, "Failed to delete tag")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tag deleted successfully"})
}
