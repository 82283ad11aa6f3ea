package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmcs/claimserver/internal/services"
	"github.com/cmcs/claimserver/internal/store"
	"github.com/cmcs/claimserver/types"
)

const testJWTSecret = "test-secret"

type stubUserStore struct {
	users  map[int]types.User
	nextID int
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: map[int]types.User{}, nextID: 1}
}

func (s *stubUserStore) List(ctx context.Context) ([]types.User, error) {
	users := make([]types.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *stubUserStore) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (s *stubUserStore) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = s.nextID
	s.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUserStore) Update(ctx context.Context, user types.User) (types.User, error) {
	if _, ok := s.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUserStore) SetPassword(ctx context.Context, id int, digest, salt string) error {
	user, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = digest
	user.PasswordSalt = salt
	s.users[id] = user
	return nil
}

func newAuthTestRouter(t *testing.T) (*chi.Mux, *services.UserService) {
	t.Helper()

	userService := services.NewUserService(newStubUserStore(), nil)
	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testJWTSecret)
	})
	return router, userService
}

func seedUser(t *testing.T, userService *services.UserService, role string) types.User {
	t.Helper()

	user, err := userService.Create(context.Background(), types.User{
		FirstName: "Lindiwe", LastName: "Dlamini",
		Email: "lindiwe.dlamini@university.ac.za",
		Role:  role, HourlyRate: 150,
	}, "s3cret-pass")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func login(t *testing.T, router http.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(LoginRequest{Email: email, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginAndMe(t *testing.T) {
	router, userService := newAuthTestRouter(t)
	user := seedUser(t, userService, types.RoleLecturer)

	rec := login(t, router, user.Email, "s3cret-pass")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a token")
	}
	if resp.User.ID != user.ID {
		t.Fatalf("login returned user %d, want %d", resp.User.ID, user.ID)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	meRec := httptest.NewRecorder()
	router.ServeHTTP(meRec, req)
	if meRec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", meRec.Code, meRec.Body.String())
	}

	var me types.User
	if err := json.Unmarshal(meRec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if me.ID != user.ID || me.Email != user.Email {
		t.Fatalf("me returned %+v", me)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, userService := newAuthTestRouter(t)
	user := seedUser(t, userService, types.RoleLecturer)

	if rec := login(t, router, user.Email, "wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", rec.Code)
	}
	if rec := login(t, router, "nobody@university.ac.za", "s3cret-pass"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email status = %d", rec.Code)
	}
}

func TestMeRequiresToken(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d, want 401", rec.Code)
	}
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	userService := services.NewUserService(newStubUserStore(), nil)
	user := seedUser(t, userService, types.RoleLecturer)

	router := chi.NewRouter()
	router.With(
		RequireAuth(testJWTSecret),
		RequireRole(userService, types.RoleHR),
	).Get("/protected", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testJWTSecret)
	})

	rec := login(t, router, user.Email, "s3cret-pass")
	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	protRec := httptest.NewRecorder()
	router.ServeHTTP(protRec, req)
	if protRec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for non-HR user", protRec.Code)
	}
}
