package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recipebook/internal/models"
)

type IngredientRepository struct {
	db *sql.DB
}

func NewIngredientRepository(db *sql.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

func (r *IngredientRepository) GetAll(ctx context.Context) ([]models.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM ingredients ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ingredients []models.Ingredient
	for rows.Next() {
		var ing models.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

func (r *IngredientRepository) GetByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	ing := &models.Ingredient{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM ingredients WHERE id = $1`, id).
		Scan(&ing.ID, &ing.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ing, nil
}

func (r *IngredientRepository) Create(ctx context.Context, name string) (*models.Ingredient, error) {
	ing := &models.Ingredient{Name: normalizeName(name)}
	err := r.db.QueryRowContext(ctx, `INSERT INTO ingredients (name) VALUES ($1) RETURNING id`, ing.Name).
		Scan(&ing.ID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: ingredient %q", ErrConflict, ing.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("insert ingredient: %w", err)
	}
	return ing, nil
}

func (r *IngredientRepository) Update(ctx context.Context, id int64, name string) (*models.Ingredient, error) {
	ing := &models.Ingredient{Name: normalizeName(name)}
	err := r.db.QueryRowContext(ctx, `UPDATE ingredients SET name = $1 WHERE id = $2 RETURNING id`, ing.Name, id).
		Scan(&ing.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: ingredient %q", ErrConflict, ing.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("update ingredient: %w", err)
	}
	return ing, nil
}

func (r *IngredientRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ingredient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
