// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/clubworks/gymgate/internal/authz"
	"github.com/clubworks/gymgate/internal/config"
	"github.com/clubworks/gymgate/internal/gateway"
	"github.com/clubworks/gymgate/internal/identity"
	"github.com/clubworks/gymgate/internal/roles"
	"github.com/clubworks/gymgate/internal/routes"
	"github.com/clubworks/gymgate/internal/store"
)

// tokenVerifier authenticates debug tokens of the form "id:role".
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, r *http.Request, token identity.Token) (*identity.VerifyResult, error) {
	parts := strings.SplitN(token.Value, ":", 2)
	if len(parts) != 2 {
		return &identity.VerifyResult{Authenticated: false}, nil
	}
	return &identity.VerifyResult{
		Authenticated: true,
		User: &identity.VerifiedUser{
			ID:    parts[0],
			Email: parts[0] + "@club.example",
			Role:  parts[1],
		},
	}, nil
}

type testEnv struct {
	router http.Handler
	store  *store.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server:   config.ServerConfig{CORSOrigins: []string{"https://portal.club.example"}},
		Identity: config.IdentityConfig{SessionCookie: "gymgate_session", DebugHeader: "X-Debug-Session", VerifyTimeout: time.Second},
		Gateway:  config.GatewayConfig{MemberLogin: "/login", StaffLogin: "/staff-login", Home: "/"},
		Routes:   routes.DefaultTables(),
	}

	enforcer, err := authz.NewEnforcer("", "")
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	evaluator := authz.NewEvaluator(enforcer, nil)

	ms := store.NewMemoryStore()
	handler := NewHandler(ms, ms, ms, evaluator)

	resolver := identity.NewResolver(tokenVerifier{}, cfg.Identity)
	classifier := routes.NewClassifier(cfg.Routes)
	engine := gateway.NewEngine(classifier, resolver, cfg.Gateway)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("portal"))
	}))
	t.Cleanup(upstream.Close)
	proxy, err := gateway.NewPortalProxy(upstream.URL)
	if err != nil {
		t.Fatalf("NewPortalProxy() error = %v", err)
	}

	router := NewRouter(RouterDeps{
		Config:   cfg,
		Resolver: resolver,
		Engine:   engine,
		Proxy:    proxy,
		Handler:  handler,
		Enforcer: enforcer,
	})

	return &testEnv{router: router, store: ms}
}

// do performs a request as the given actor ("id:role", empty for anonymous).
func (e *testEnv) do(t *testing.T, method, path, actor, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if actor != "" {
		r.Header.Set("X-Debug-Session", actor)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, r)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
	if dst != nil {
		if err := json.Unmarshal(resp.Data, dst); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var resp struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v\nbody: %s", err, rec.Body.String())
	}
	if resp.Error == nil {
		t.Fatalf("expected error payload, got %s", rec.Body.String())
	}
	return resp.Error.Code, resp.Error.Message
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/users", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous API access status = %d, want 401", rec.Code)
	}
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)

	t.Run("admin creates trainer", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/users", "a-1:admin",
			`{"email":"new@club.example","name":"New Trainer","role":"trainer"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
		}
		var u store.User
		decodeData(t, rec, &u)
		if u.Role != roles.RoleTrainer || u.ID == "" {
			t.Errorf("created user = %+v", u)
		}
	})

	t.Run("admin cannot create peer admin", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/users", "a-1:admin",
			`{"email":"peer@club.example","name":"Peer","role":"admin"}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		if _, msg := errorCode(t, rec); msg != "hierarchy-denied" {
			t.Errorf("reason = %q, want hierarchy-denied", msg)
		}
	})

	t.Run("trainer lacks the grant", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/users", "t-1:trainer",
			`{"email":"x@club.example","name":"X","role":"member"}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("role aliases are normalized", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/users", "a-1:admin",
			`{"email":"alias@club.example","name":"Alias","role":"CLIENT"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
		}
		var u store.User
		decodeData(t, rec, &u)
		if u.Role != roles.RoleMember {
			t.Errorf("role = %s, want member (client alias)", u.Role)
		}
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/users", "a-1:admin",
			`{"email":"odd@club.example","name":"Odd","role":"janitor"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("invalid payload rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/users", "a-1:admin",
			`{"email":"not-an-email","name":"","role":"member"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestUserManagement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	trainer := &store.User{Email: "t@club.example", Role: roles.RoleTrainer}
	admin := &store.User{Email: "a2@club.example", Role: roles.RoleAdmin}
	if err := env.store.CreateUser(ctx, trainer); err != nil {
		t.Fatal(err)
	}
	if err := env.store.CreateUser(ctx, admin); err != nil {
		t.Fatal(err)
	}

	t.Run("admin demotes trainer to member", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/users/"+trainer.ID+"/role", "a-1:admin", `{"role":"member"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("admin cannot delete peer admin", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/v1/users/"+admin.ID, "a-1:admin", "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("super-admin deletes admin", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/v1/users/"+admin.ID, "sa-1:super-admin", "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing user yields 404", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/v1/users/ghost", "sa-1:super-admin", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestSessionOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess := &store.TrainingSession{Title: "HIIT", TrainerID: "t-1", StartsAt: time.Now(), Capacity: 12}
	if err := env.store.CreateSession(ctx, sess); err != nil {
		t.Fatal(err)
	}

	update := `{"title":"HIIT (updated)","starts_at":"2026-09-01T10:00:00Z","capacity":15}`

	t.Run("owning trainer updates", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/sessions/"+sess.ID, "t-1:trainer", update)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("peer trainer denied", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/sessions/"+sess.ID, "t-2:trainer", update)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		if _, msg := errorCode(t, rec); msg != "ownership-denied" {
			t.Errorf("reason = %q, want ownership-denied", msg)
		}
	})

	t.Run("manager overrides ownership", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/sessions/"+sess.ID, "mg-1:manager", update)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("member lacks update grant", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/sessions/"+sess.ID, "m-1:member", update)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("unknown session yields 404", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/sessions/ghost", "t-1:trainer", update)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("trainer cannot delete", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/v1/sessions/"+sess.ID, "t-1:trainer", "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("manager deletes", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/v1/sessions/"+sess.ID, "mg-1:manager", "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
	})
}

func TestClientOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := &store.ClientRecord{MemberID: "m-9", TrainerID: "t-1"}
	if err := env.store.CreateClient(ctx, c); err != nil {
		t.Fatal(err)
	}

	t.Run("assigned trainer reads", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/clients/"+c.ID, "t-1:trainer", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("other trainer denied", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/clients/"+c.ID, "t-2:trainer", "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("assigned trainer updates notes", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/clients/"+c.ID, "t-1:trainer", `{"notes":"knee injury, low impact"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
		}
		var got store.ClientRecord
		decodeData(t, rec, &got)
		if got.Notes != "knee injury, low impact" {
			t.Errorf("notes = %q", got.Notes)
		}
	})
}

func TestGrantsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	t.Run("super-admin reads the table", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/authz/grants", "sa-1:super-admin", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
		}
		var grants [][]string
		decodeData(t, rec, &grants)
		if len(grants) == 0 {
			t.Error("grants table empty")
		}
	})

	t.Run("admin denied", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/authz/grants", "a-1:admin", "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})
}

func TestPortalFallback(t *testing.T) {
	env := newTestEnv(t)

	t.Run("public page proxied for anonymous", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if rec.Body.String() != "portal" {
			t.Errorf("body = %q, want proxied portal content", rec.Body.String())
		}
	})

	t.Run("member area redirects anonymous to login", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/member", "", "")
		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302", rec.Code)
		}
		loc := rec.Header().Get("Location")
		if !strings.HasPrefix(loc, "/login?redirect=") {
			t.Errorf("Location = %q, want /login?redirect=...", loc)
		}
	})

	t.Run("staff area proxied for verified manager", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/dashboard/manager", "mg-1:manager", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; location %q", rec.Code, rec.Header().Get("Location"))
		}
	})
}
