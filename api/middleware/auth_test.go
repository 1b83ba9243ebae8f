package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/boosthq/boosthq-backend/pkg/auth"
	"github.com/boosthq/boosthq-backend/pkg/config"
	"github.com/boosthq/boosthq-backend/pkg/enums"
)

func testJWT() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, role enums.Role) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		UserID:   userID,
		Username: "ana",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, userID
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsActorContext(t *testing.T) {
	cfg := testJWT()
	token, userID := mintTestToken(t, cfg, enums.RoleWorker)

	var captured struct {
		user string
		role string
	}
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.user = UserIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.user != userID.String() {
		t.Fatalf("expected user %s got %q", userID, captured.user)
	}
	if captured.role != string(enums.RoleWorker) {
		t.Fatalf("expected role worker got %q", captured.role)
	}
}

func TestAuthAcceptsRawTokenWithoutBearerPrefix(t *testing.T) {
	cfg := testJWT()
	token, _ := mintTestToken(t, cfg, enums.RoleAdmin)

	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	handler := RequireRole(string(enums.RoleAdmin), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	workerCtx := WithActor(httptest.NewRequest(http.MethodGet, "/", nil).Context(), uuid.NewString(), string(enums.RoleWorker), "ana")
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(workerCtx)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	adminCtx := WithActor(httptest.NewRequest(http.MethodGet, "/", nil).Context(), uuid.NewString(), string(enums.RoleAdmin), "boss")
	req = httptest.NewRequest(http.MethodGet, "/", nil).WithContext(adminCtx)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestActorFromContext(t *testing.T) {
	userID := uuid.New()
	ctx := WithActor(httptest.NewRequest(http.MethodGet, "/", nil).Context(), userID.String(), string(enums.RoleWorker), "ana")

	actor, ok := ActorFromContext(ctx)
	if !ok {
		t.Fatal("expected actor")
	}
	if actor.UserID != userID || actor.Role != enums.RoleWorker {
		t.Fatalf("unexpected actor %+v", actor)
	}

	if _, ok := ActorFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()); ok {
		t.Fatal("bare context must not yield an actor")
	}
}
