package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/basteen-Dev/pavilion/internal/auth"
	"github.com/basteen-Dev/pavilion/internal/shared"
)

type stubRepo struct {
	user     *auth.User
	sessions map[string]uuid.UUID
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID uuid.UUID, expiresAt time.Time, ip, ua string) error {
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type authEnv struct {
	repo   *stubRepo
	tokens *auth.Tokens
	mr     *miniredis.Miniredis
	router http.Handler
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	customerID := uuid.New()
	repo := &stubRepo{
		user: &auth.User{
			ID: uuid.New(), Email: "dealer@test.local", PasswordHash: string(hashed),
			Role: shared.RoleB2B, CustomerID: &customerID, IsActive: true,
		},
		sessions: make(map[string]uuid.UUID),
	}

	mr := miniredis.RunT(t)
	tokens := auth.NewTokens("test-signing-key", time.Hour, redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	handler := auth.NewHandler(nil, auth.NewService(repo, tokens, nil), tokens)

	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	r.With(auth.Authenticate(tokens, nil)).Get("/me", func(w http.ResponseWriter, r *http.Request) {
		p := shared.PrincipalFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]string{"role": p.Role, "customer_id": p.CustomerID.String()})
	})
	return &authEnv{repo: repo, tokens: tokens, mr: mr, router: r}
}

func (e *authEnv) login(t *testing.T, password string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"email":"Dealer@test.local","password":"` + password + `"}`
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
	return rec
}

func (e *authEnv) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestLoginIssuesUsableToken(t *testing.T) {
	env := newAuthEnv(t)

	rec := env.login(t, "correctpass")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result auth.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, shared.RoleB2B, result.Role)
	assert.Len(t, env.repo.sessions, 1)

	me := env.get("/me", result.AccessToken)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), env.repo.user.CustomerID.String())
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newAuthEnv(t)

	assert.Equal(t, http.StatusUnauthorized, env.login(t, "wrongpass").Code)

	env.repo.user.IsActive = false
	assert.Equal(t, http.StatusUnauthorized, env.login(t, "correctpass").Code)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newAuthEnv(t)
	var result auth.LoginResult
	require.NoError(t, json.Unmarshal(env.login(t, "correctpass").Body.Bytes(), &result))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+result.AccessToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Empty(t, env.repo.sessions)
	assert.Equal(t, http.StatusUnauthorized, env.get("/me", result.AccessToken).Code)

	// The revocation marker expires with the token.
	env.mr.FastForward(2 * time.Hour)
	assert.Empty(t, env.mr.Keys())
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	env := newAuthEnv(t)

	assert.Equal(t, http.StatusUnauthorized, env.get("/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.get("/me", "not-a-jwt").Code)

	other := auth.NewTokens("another-key", time.Hour, redis.NewClient(&redis.Options{Addr: env.mr.Addr()}))
	forged, _, _, err := other.Issue(env.repo.user)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, env.get("/me", forged).Code)

	expired := auth.NewTokens("test-signing-key", -time.Minute, redis.NewClient(&redis.Options{Addr: env.mr.Addr()}))
	stale, _, _, err := expired.Issue(env.repo.user)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, env.get("/me", stale).Code)
}
