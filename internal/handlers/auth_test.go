package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebook/internal/models"
	"recipebook/internal/repository"
)

type fakeUserStore struct {
	nextID int64
	users  map[string]*models.User // keyed by email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: make(map[string]*models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, username, email, password string, avatarURL *string) (*models.User, error) {
	if _, ok := f.users[email]; ok {
		return nil, repository.ErrConflict
	}
	for _, u := range f.users {
		if u.Username == username {
			return nil, repository.ErrConflict
		}
	}
	u := &models.User{ID: f.nextID, Username: username, Email: email, PasswordHash: password, AvatarURL: avatarURL}
	f.nextID++
	f.users[email] = u
	return u, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) GetAll(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) Update(ctx context.Context, id int64, in *models.UserUpdate, requesterID int64, isAdmin bool) (*models.User, error) {
	if requesterID != id && !isAdmin {
		return nil, repository.ErrForbidden
	}
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.AvatarURL != nil {
		u.AvatarURL = in.AvatarURL
	}
	return u, nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id int64) error {
	for email, u := range f.users {
		if u.ID == id {
			delete(f.users, email)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeUserStore) VerifyPassword(u *models.User, password string) bool {
	return u.PasswordHash == password
}

func TestRegister(t *testing.T) {
	h := NewAuthHandler(newFakeUserStore(), testSecret)

	body := `{"username": "alice", "email": "alice@example.com", "password": "secret12"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rw := httptest.NewRecorder()
	h.Register(rw, req)

	require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing username", `{"email": "a@b.com", "password": "secret12"}`},
		{"bad email", `{"username": "a", "email": "nope", "password": "secret12"}`},
		{"short password", `{"username": "a", "email": "a@b.com", "password": "abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(newFakeUserStore(), testSecret)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			rw := httptest.NewRecorder()
			h.Register(rw, req)
			assert.Equal(t, http.StatusBadRequest, rw.Code)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	store := newFakeUserStore()
	h := NewAuthHandler(store, testSecret)

	body := `{"username": "alice", "email": "alice@example.com", "password": "secret12"}`
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		rw := httptest.NewRecorder()
		h.Register(rw, req)
		assert.Equal(t, want, rw.Code, "attempt %d", i)
	}
}

func TestLogin(t *testing.T) {
	store := newFakeUserStore()
	_, err := store.Create(context.Background(), "bob", "bob@example.com", "hunter22", nil)
	require.NoError(t, err)

	h := NewAuthHandler(store, testSecret)

	t.Run("valid credentials", func(t *testing.T) {
		body := `{"email": "bob@example.com", "password": "hunter22"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rw := httptest.NewRecorder()
		h.Login(rw, req)

		require.Equal(t, http.StatusOK, rw.Code)
		var resp authResponse
		require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := `{"email": "bob@example.com", "password": "wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rw := httptest.NewRecorder()
		h.Login(rw, req)
		assert.Equal(t, http.StatusUnauthorized, rw.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		body := `{"email": "nobody@example.com", "password": "hunter22"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rw := httptest.NewRecorder()
		h.Login(rw, req)
		assert.Equal(t, http.StatusUnauthorized, rw.Code)
	})
}
