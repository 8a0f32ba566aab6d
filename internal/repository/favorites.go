package repository

import (
	"context"
	"database/sql"
	"fmt"

	"recipebook/internal/models"
)

type FavoritesRepository struct {
	db *sql.DB

	recipes *RecipeRepository
}

func NewFavoritesRepository(db *sql.DB) *FavoritesRepository {
	return &FavoritesRepository{db: db, recipes: NewRecipeRepository(db)}
}

func (r *FavoritesRepository) Add(ctx context.Context, userID, recipeID int64) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM recipes WHERE id = $1)`, recipeID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, recipe_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, recipe_id) DO NOTHING`,
		userID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

func (r *FavoritesRepository) Remove(ctx context.Context, userID, recipeID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND recipe_id = $2`,
		userID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

// GetForUser returns the user's favorited recipes, newest favorite
// first, with tags attached in one batched query.
func (r *FavoritesRepository) GetForUser(ctx context.Context, userID int64) ([]models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.title, r.description, r.prep_time, r.cook_time, r.servings,
		       r.source, r.notes, r.image_url, r.instructions, r.markdown_content,
		       r.created_by, r.created_at, r.updated_at, COALESCE(u.username, '')
		FROM favorites f
		JOIN recipes r ON f.recipe_id = r.id
		LEFT JOIN users u ON r.created_by = u.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes, err := scanRecipes(rows)
	if err != nil {
		return nil, err
	}
	if err := r.recipes.attachTags(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}
