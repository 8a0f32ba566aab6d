package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recipebook/internal/models"
)

type TagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *TagRepository) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	t := &models.Tag{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TagRepository) Create(ctx context.Context, name string) (*models.Tag, error) {
	t := &models.Tag{Name: normalizeName(name)}
	err := r.db.QueryRowContext(ctx, `INSERT INTO tags (name) VALUES ($1) RETURNING id`, t.Name).
		Scan(&t.ID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: tag %q", ErrConflict, t.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	return t, nil
}

func (r *TagRepository) Update(ctx context.Context, id int64, name string) (*models.Tag, error) {
	t := &models.Tag{Name: normalizeName(name)}
	err := r.db.QueryRowContext(ctx, `UPDATE tags SET name = $1 WHERE id = $2 RETURNING id`, t.Name, id).
		Scan(&t.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: tag %q", ErrConflict, t.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("update tag: %w", err)
	}
	return t, nil
}

func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
