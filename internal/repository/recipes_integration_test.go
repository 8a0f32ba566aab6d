package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebook/internal/database"
	"recipebook/internal/models"
)

// Integration tests run against a real Postgres when
// RECIPEBOOK_TEST_DATABASE_URL is set, e.g.
//
//	RECIPEBOOK_TEST_DATABASE_URL=postgres://localhost:5432/recipebook_test?sslmode=disable go test ./internal/repository/
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("RECIPEBOOK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("RECIPEBOOK_TEST_DATABASE_URL not set")
	}

	db, err := database.Open(url)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, table := range []string{"favorites", "recipe_tags", "recipe_ingredients", "steps", "recipes", "ingredients", "tags", "users"} {
			_, _ = db.Exec("DELETE FROM " + table)
		}
		db.Close()
	})
	return db
}

func testUser(t *testing.T, db *sql.DB, username string, admin bool) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(`
		INSERT INTO users (username, email, password_hash, is_admin)
		VALUES ($1, $1 || '@example.com', 'x', $2)
		RETURNING id`, username, admin).Scan(&id)
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string { return &s }

func amountPtr(f float64) *models.Amount {
	a := models.Amount(f)
	return &a
}

func TestRecipeCreateAndReadBack(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewRecipeRepository(db)
	owner := testUser(t, db, "creator", false)

	in := &models.RecipeInput{
		Title: strPtr("Pancakes"),
		Ingredients: []models.IngredientInput{
			{Name: "Flour", Amount: amountPtr(2), Unit: strPtr("cups")},
			{Name: "Milk", Amount: amountPtr(1.5), Unit: strPtr("cups")},
			{Name: "Eggs", Amount: amountPtr(2)},
		},
		Steps: []models.StepInput{
			{Instruction: "Whisk dry ingredients."},
			{Instruction: "Fold in milk and eggs."},
		},
		Tags: []string{"Breakfast", "quick"},
	}

	created, err := repo.Create(ctx, in, owner)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	require.Len(t, got.Ingredients, 3)
	for i, name := range []string{"flour", "milk", "eggs"} {
		assert.Equal(t, name, got.Ingredients[i].Name)
		assert.Equal(t, i, got.Ingredients[i].OrderIndex)
	}

	require.Len(t, got.Steps, 2)
	assert.Equal(t, 0, got.Steps[0].OrderIndex)
	assert.Equal(t, 1, got.Steps[1].OrderIndex)

	require.Len(t, got.Tags, 2)
	assert.Equal(t, "breakfast", got.Tags[0].Name)
	assert.Equal(t, "quick", got.Tags[1].Name)
}

func TestRecipeCreateRejectsEmptyTitle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewRecipeRepository(db)
	owner := testUser(t, db, "titleless", false)

	_, err := repo.Create(ctx, &models.RecipeInput{Title: strPtr("   ")}, owner)
	require.ErrorIs(t, err, ErrValidation)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM recipes`).Scan(&count))
	assert.Zero(t, count)
}

func TestRecipeUpdateReplacesLists(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewRecipeRepository(db)
	owner := testUser(t, db, "replacer", false)

	created, err := repo.Create(ctx, &models.RecipeInput{
		Title: strPtr("Soup"),
		Ingredients: []models.IngredientInput{
			{Name: "carrot"}, {Name: "onion"}, {Name: "celery"},
		},
	}, owner)
	require.NoError(t, err)

	_, err = repo.Update(ctx, created.ID, &models.RecipeInput{
		Ingredients: []models.IngredientInput{{Name: "onion"}},
	}, owner, false)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM recipe_ingredients WHERE recipe_id = $1`, created.ID).Scan(&count))
	assert.Equal(t, 1, count, "no orphan links after a full replace")

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "onion", got.Ingredients[0].Name)
	assert.Equal(t, 0, got.Ingredients[0].OrderIndex)

	// Scalar fields untouched by the list-only update
	assert.Equal(t, "Soup", got.Title)
}

func TestSharedIngredientNormalization(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewRecipeRepository(db)
	owner := testUser(t, db, "normalizer", false)

	_, err := repo.Create(ctx, &models.RecipeInput{
		Title: strPtr("One"),
		Ingredients: []models.IngredientInput{
			{Name: "Flour"},
		},
	}, owner)
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.RecipeInput{
		Title: strPtr("Two"),
		Ingredients: []models.IngredientInput{
			{Name: " flour "},
		},
	}, owner)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ingredients WHERE name = 'flour'`).Scan(&count))
	assert.Equal(t, 1, count, "case and whitespace variants share one ingredient row")
}

func TestRecipeUpdateAuthorization(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewRecipeRepository(db)
	owner := testUser(t, db, "owner", false)
	stranger := testUser(t, db, "stranger", false)
	admin := testUser(t, db, "admin", true)

	created, err := repo.Create(ctx, &models.RecipeInput{Title: strPtr("Mine")}, owner)
	require.NoError(t, err)

	_, err = repo.Update(ctx, created.ID, &models.RecipeInput{Title: strPtr("Stolen")}, stranger, false)
	require.ErrorIs(t, err, ErrForbidden)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title, "rejected update must not mutate")

	_, err = repo.Update(ctx, created.ID, &models.RecipeInput{Title: strPtr("Moderated")}, admin, true)
	require.NoError(t, err)

	_, err = repo.Update(ctx, 999999, &models.RecipeInput{Title: strPtr("x")}, owner, false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecipeDeleteCascades(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewRecipeRepository(db)
	owner := testUser(t, db, "deleter", false)

	created, err := repo.Create(ctx, &models.RecipeInput{
		Title:       strPtr("Ephemeral"),
		Ingredients: []models.IngredientInput{{Name: "salt"}},
		Steps:       []models.StepInput{{Instruction: "Do it."}},
		Tags:        []string{"gone"},
	}, owner)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID, owner, false))

	for _, q := range []string{
		`SELECT COUNT(*) FROM recipe_ingredients WHERE recipe_id = $1`,
		`SELECT COUNT(*) FROM steps WHERE recipe_id = $1`,
		`SELECT COUNT(*) FROM recipe_tags WHERE recipe_id = $1`,
	} {
		var count int
		require.NoError(t, db.QueryRow(q, created.ID).Scan(&count))
		assert.Zero(t, count)
	}
}

func TestFavoritesRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	recipes := NewRecipeRepository(db)
	favs := NewFavoritesRepository(db)
	owner := testUser(t, db, "chef", false)
	fan := testUser(t, db, "fan", false)

	created, err := recipes.Create(ctx, &models.RecipeInput{
		Title: strPtr("Famous Dish"),
		Tags:  []string{"popular"},
	}, owner)
	require.NoError(t, err)

	require.NoError(t, favs.Add(ctx, fan, created.ID))
	// Idempotent under retry
	require.NoError(t, favs.Add(ctx, fan, created.ID))

	list, err := favs.GetForUser(ctx, fan)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Famous Dish", list[0].Title)
	require.Len(t, list[0].Tags, 1)
	assert.Equal(t, "popular", list[0].Tags[0].Name)

	require.NoError(t, favs.Remove(ctx, fan, created.ID))
	list, err = favs.GetForUser(ctx, fan)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.ErrorIs(t, favs.Add(ctx, fan, 999999), ErrNotFound)
}
