package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"recipebook/internal/fraction"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    *string   `json:"avatar_url"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

type Recipe struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	PrepTime        *int      `json:"prep_time"`
	CookTime        *int      `json:"cook_time"`
	Servings        *int      `json:"servings"`
	Source          *string   `json:"source"`
	Notes           *string   `json:"notes"`
	ImageURL        *string   `json:"image_url"`
	Instructions    *string   `json:"instructions"`
	MarkdownContent *string   `json:"markdown_content"`
	CreatedBy       *int64    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Joined fields
	Author      string             `json:"author,omitempty"`
	Ingredients []RecipeIngredient `json:"ingredients,omitempty"`
	Steps       []Step             `json:"steps,omitempty"`
	Tags        []Tag              `json:"tags,omitempty"`
}

type Ingredient struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type RecipeIngredient struct {
	ID           int64    `json:"id"`
	IngredientID int64    `json:"ingredient_id"`
	Name         string   `json:"name"`
	Amount       *float64 `json:"amount"`
	AmountText   string   `json:"amount_text,omitempty"`
	Unit         *string  `json:"unit"`
	OrderIndex   int      `json:"order_index"`
}

type Step struct {
	ID          int64  `json:"id"`
	Instruction string `json:"instruction"`
	OrderIndex  int    `json:"order_index"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Amount is an ingredient quantity as submitted by a client. It accepts
// either a JSON number or a fraction string such as "1 1/2".
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, ok := fraction.Parse(s)
		if !ok {
			return fmt.Errorf("invalid amount %q", s)
		}
		*a = Amount(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}

// StepInput accepts both step shapes clients send: a plain string or an
// object carrying an "instruction" field. Either way it normalizes to
// the instruction text at the boundary.
type StepInput struct {
	Instruction string `json:"instruction"`
}

func (s *StepInput) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Instruction)
	}

	type plain StepInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	s.Instruction = p.Instruction
	return nil
}

type IngredientInput struct {
	Name   string  `json:"name" validate:"required"`
	Amount *Amount `json:"amount"`
	Unit   *string `json:"unit"`
}

type RecipeInput struct {
	Title           *string           `json:"title"`
	Description     *string           `json:"description"`
	PrepTime        *int              `json:"prep_time"`
	CookTime        *int              `json:"cook_time"`
	Servings        *int              `json:"servings"`
	Source          *string           `json:"source"`
	Notes           *string           `json:"notes"`
	ImageURL        *string           `json:"image_url"`
	Instructions    *string           `json:"instructions"`
	MarkdownContent *string           `json:"markdown_content"`
	Ingredients     []IngredientInput `json:"ingredients"`
	Steps           []StepInput       `json:"steps"`
	Tags            []string          `json:"tags"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserUpdate struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}
