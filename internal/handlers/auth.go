package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"recipebook/internal/middleware"
	"recipebook/internal/models"
)

// UserStore is the slice of the user repository the auth and user
// handlers need.
type UserStore interface {
	Create(ctx context.Context, username, email, password string, avatarURL *string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id int64, in *models.UserUpdate, requesterID int64, isAdmin bool) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	VerifyPassword(u *models.User, password string) bool
}

type AuthHandler struct {
	users     UserStore
	jwtSecret string
	validate  *validator.Validate
}

func NewAuthHandler(users UserStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		users:     users,
		jwtSecret: jwtSecret,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Username, email, and password (6+ chars) are required")
		return
	}

	user, err := h.users.Create(r.Context(), req.Username, req.Email, req.Password, nil)
	if err != nil {
		writeRepoError(w, err, "Failed to register")
		return
	}

	token, err := middleware.NewToken(h.jwtSecret, user.ID, user.Email, user.IsAdmin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil || !h.users.VerifyPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := middleware.NewToken(h.jwtSecret, user.ID, user.Email, user.IsAdmin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.users.GetByID(r.Context(), id.UserID)
	if err != nil {
		writeRepoError(w, err, "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
