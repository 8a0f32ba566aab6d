package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"recipebook/internal/models"
)

type RecipeRepository struct {
	db *sql.DB
}

func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// normalizeName is the canonical form for shared ingredient and tag
// names: lowercased and trimmed, so "Flour" and " flour " dedupe to one
// row.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *RecipeRepository) GetAll(ctx context.Context) ([]models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.title, r.description, r.prep_time, r.cook_time, r.servings,
		       r.source, r.notes, r.image_url, r.instructions, r.markdown_content,
		       r.created_by, r.created_at, r.updated_at, COALESCE(u.username, '')
		FROM recipes r
		LEFT JOIN users u ON r.created_by = u.id
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecipes(rows)
}

func (r *RecipeRepository) GetByOwner(ctx context.Context, userID int64) ([]models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.title, r.description, r.prep_time, r.cook_time, r.servings,
		       r.source, r.notes, r.image_url, r.instructions, r.markdown_content,
		       r.created_by, r.created_at, r.updated_at, COALESCE(u.username, '')
		FROM recipes r
		LEFT JOIN users u ON r.created_by = u.id
		WHERE r.created_by = $1
		ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes, err := scanRecipes(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachTags(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *RecipeRepository) GetByTag(ctx context.Context, tagID int64) ([]models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.title, r.description, r.prep_time, r.cook_time, r.servings,
		       r.source, r.notes, r.image_url, r.instructions, r.markdown_content,
		       r.created_by, r.created_at, r.updated_at, COALESCE(u.username, '')
		FROM recipes r
		JOIN recipe_tags rt ON r.id = rt.recipe_id
		LEFT JOIN users u ON r.created_by = u.id
		WHERE rt.tag_id = $1
		ORDER BY r.created_at DESC`, tagID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecipes(rows)
}

func (r *RecipeRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	rec := &models.Recipe{}
	err := r.db.QueryRowContext(ctx, `
		SELECT r.id, r.title, r.description, r.prep_time, r.cook_time, r.servings,
		       r.source, r.notes, r.image_url, r.instructions, r.markdown_content,
		       r.created_by, r.created_at, r.updated_at, COALESCE(u.username, '')
		FROM recipes r
		LEFT JOIN users u ON r.created_by = u.id
		WHERE r.id = $1`, id).Scan(
		&rec.ID, &rec.Title, &rec.Description, &rec.PrepTime, &rec.CookTime,
		&rec.Servings, &rec.Source, &rec.Notes, &rec.ImageURL, &rec.Instructions,
		&rec.MarkdownContent, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt, &rec.Author,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select recipe: %w", err)
	}

	ingRows, err := r.db.QueryContext(ctx, `
		SELECT ri.id, ri.ingredient_id, i.name, ri.amount, ri.unit, ri.order_index
		FROM recipe_ingredients ri
		JOIN ingredients i ON ri.ingredient_id = i.id
		WHERE ri.recipe_id = $1
		ORDER BY ri.order_index`, id)
	if err != nil {
		return nil, fmt.Errorf("select recipe ingredients: %w", err)
	}
	defer ingRows.Close()

	for ingRows.Next() {
		var ri models.RecipeIngredient
		if err := ingRows.Scan(&ri.ID, &ri.IngredientID, &ri.Name, &ri.Amount, &ri.Unit, &ri.OrderIndex); err != nil {
			return nil, err
		}
		rec.Ingredients = append(rec.Ingredients, ri)
	}
	if err := ingRows.Err(); err != nil {
		return nil, err
	}

	stepRows, err := r.db.QueryContext(ctx, `
		SELECT id, instruction, order_index
		FROM steps
		WHERE recipe_id = $1
		ORDER BY order_index`, id)
	if err != nil {
		return nil, fmt.Errorf("select steps: %w", err)
	}
	defer stepRows.Close()

	for stepRows.Next() {
		var s models.Step
		if err := stepRows.Scan(&s.ID, &s.Instruction, &s.OrderIndex); err != nil {
			return nil, err
		}
		rec.Steps = append(rec.Steps, s)
	}
	if err := stepRows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name
		FROM recipe_tags rt
		JOIN tags t ON rt.tag_id = t.id
		WHERE rt.recipe_id = $1
		ORDER BY t.name`, id)
	if err != nil {
		return nil, fmt.Errorf("select recipe tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var t models.Tag
		if err := tagRows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		rec.Tags = append(rec.Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Create inserts the recipe and its ingredient, step, and tag links in
// one transaction. Either the whole graph lands or none of it does.
func (r *RecipeRepository) Create(ctx context.Context, in *models.RecipeInput, createdBy int64) (*models.Recipe, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rec := &models.Recipe{
		Title:           *in.Title,
		Description:     in.Description,
		PrepTime:        in.PrepTime,
		CookTime:        in.CookTime,
		Servings:        in.Servings,
		Source:          in.Source,
		Notes:           in.Notes,
		ImageURL:        in.ImageURL,
		Instructions:    in.Instructions,
		MarkdownContent: in.MarkdownContent,
		CreatedBy:       &createdBy,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO recipes (title, description, prep_time, cook_time, servings,
		                     source, notes, image_url, instructions, markdown_content, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		rec.Title, rec.Description, rec.PrepTime, rec.CookTime, rec.Servings,
		rec.Source, rec.Notes, rec.ImageURL, rec.Instructions, rec.MarkdownContent, createdBy,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}

	if err := replaceIngredients(ctx, tx, rec.ID, in.Ingredients); err != nil {
		return nil, err
	}
	if err := replaceSteps(ctx, tx, rec.ID, in.Steps); err != nil {
		return nil, err
	}
	if err := replaceTags(ctx, tx, rec.ID, in.Tags); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// Update applies a partial field update and, where lists are supplied,
// fully replaces the recipe's ingredient/step/tag sets. A nil list
// leaves the existing set alone; an empty non-nil list clears it.
func (r *RecipeRepository) Update(ctx context.Context, id int64, in *models.RecipeInput, userID int64, isAdmin bool) (*models.Recipe, error) {
	if err := r.authorize(ctx, id, userID, isAdmin); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rec := &models.Recipe{}
	err = tx.QueryRowContext(ctx, `
		UPDATE recipes
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    prep_time = COALESCE($3, prep_time),
		    cook_time = COALESCE($4, cook_time),
		    servings = COALESCE($5, servings),
		    source = COALESCE($6, source),
		    notes = COALESCE($7, notes),
		    image_url = COALESCE($8, image_url),
		    instructions = COALESCE($9, instructions),
		    markdown_content = COALESCE($10, markdown_content),
		    updated_at = NOW()
		WHERE id = $11
		RETURNING id, title, description, prep_time, cook_time, servings,
		          source, notes, image_url, instructions, markdown_content,
		          created_by, created_at, updated_at`,
		in.Title, in.Description, in.PrepTime, in.CookTime, in.Servings,
		in.Source, in.Notes, in.ImageURL, in.Instructions, in.MarkdownContent, id,
	).Scan(
		&rec.ID, &rec.Title, &rec.Description, &rec.PrepTime, &rec.CookTime,
		&rec.Servings, &rec.Source, &rec.Notes, &rec.ImageURL, &rec.Instructions,
		&rec.MarkdownContent, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if in.Ingredients != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, id); err != nil {
			return nil, fmt.Errorf("delete recipe ingredients: %w", err)
		}
		if err := replaceIngredients(ctx, tx, id, in.Ingredients); err != nil {
			return nil, err
		}
	}

	if in.Steps != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM steps WHERE recipe_id = $1`, id); err != nil {
			return nil, fmt.Errorf("delete steps: %w", err)
		}
		if err := replaceSteps(ctx, tx, id, in.Steps); err != nil {
			return nil, err
		}
	}

	if in.Tags != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, id); err != nil {
			return nil, fmt.Errorf("delete recipe tags: %w", err)
		}
		if err := replaceTags(ctx, tx, id, in.Tags); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// Delete removes the recipe row; dependent ingredient links, steps,
// tags, and favorites go with it via ON DELETE CASCADE.
func (r *RecipeRepository) Delete(ctx context.Context, id, userID int64, isAdmin bool) error {
	if err := r.authorize(ctx, id, userID, isAdmin); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// authorize checks the recipe exists and the requester owns it or is an
// admin. Runs before any transaction opens so a rejected request never
// mutates anything.
func (r *RecipeRepository) authorize(ctx context.Context, id, userID int64, isAdmin bool) error {
	var createdBy sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT created_by FROM recipes WHERE id = $1`, id).Scan(&createdBy)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select recipe owner: %w", err)
	}
	if isAdmin {
		return nil
	}
	if !createdBy.Valid || createdBy.Int64 != userID {
		return ErrForbidden
	}
	return nil
}

// replaceIngredients upserts each ingredient by normalized name and
// links it with order_index taken from array position.
func replaceIngredients(ctx context.Context, tx *sql.Tx, recipeID int64, ingredients []models.IngredientInput) error {
	for i, ing := range ingredients {
		var ingredientID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO ingredients (name)
			VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			normalizeName(ing.Name),
		).Scan(&ingredientID)
		if err != nil {
			return fmt.Errorf("upsert ingredient %q: %w", ing.Name, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount, unit, order_index)
			VALUES ($1, $2, $3, $4, $5)`,
			recipeID, ingredientID, (*float64)(ing.Amount), ing.Unit, i,
		)
		if err != nil {
			return fmt.Errorf("link ingredient %q: %w", ing.Name, err)
		}
	}
	return nil
}

func replaceSteps(ctx context.Context, tx *sql.Tx, recipeID int64, steps []models.StepInput) error {
	for i, step := range steps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO steps (recipe_id, instruction, order_index)
			VALUES ($1, $2, $3)`,
			recipeID, step.Instruction, i,
		)
		if err != nil {
			return fmt.Errorf("insert step %d: %w", i, err)
		}
	}
	return nil
}

func replaceTags(ctx context.Context, tx *sql.Tx, recipeID int64, tags []string) error {
	for _, name := range tags {
		var tagID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO tags (name)
			VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			normalizeName(name),
		).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO recipe_tags (recipe_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			recipeID, tagID,
		)
		if err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}

// attachTags loads tags for a recipe list in one batched query keyed by
// recipe id.
func (r *RecipeRepository) attachTags(ctx context.Context, recipes []models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]int64, len(recipes))
	byID := make(map[int64]*models.Recipe, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		byID[recipes[i].ID] = &recipes[i]
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT rt.recipe_id, t.id, t.name
		FROM recipe_tags rt
		JOIN tags t ON rt.tag_id = t.id
		WHERE rt.recipe_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("select tags for recipes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID int64
		var t models.Tag
		if err := rows.Scan(&recipeID, &t.ID, &t.Name); err != nil {
			return err
		}
		if rec, ok := byID[recipeID]; ok {
			rec.Tags = append(rec.Tags, t)
		}
	}
	return rows.Err()
}

func scanRecipes(rows *sql.Rows) ([]models.Recipe, error) {
	var recipes []models.Recipe
	for rows.Next() {
		var rec models.Recipe
		if err := rows.Scan(
			&rec.ID, &rec.Title, &rec.Description, &rec.PrepTime, &rec.CookTime,
			&rec.Servings, &rec.Source, &rec.Notes, &rec.ImageURL, &rec.Instructions,
			&rec.MarkdownContent, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt, &rec.Author,
		); err != nil {
			return nil, err
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}
