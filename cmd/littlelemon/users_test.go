package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/littlelemon/internal/user"
)

func TestRegister_CreatesAndRejectsDuplicates(t *testing.T) {
	a := newTestApp(t)

	w := a.do(http.MethodPost, "/api/users", "", `{"username":"mario","email":"mario@ll.com","password":"lemon-pass-1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got := decode[userView](t, w)
	if got.ID == 0 || got.Username != "mario" || got.Email != "mario@ll.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("password leaked: %s", w.Body.String())
	}

	w = a.do(http.MethodPost, "/api/users", "", `{"username":"mario","password":"lemon-pass-2"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d body=%s", w.Code, w.Body.String())
	}

	w = a.do(http.MethodPost, "/api/users", "", `{"username":"luigi","password":"short"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", w.Code)
	}
}

func TestLogin_IssuesUsableToken(t *testing.T) {
	a := newTestApp(t)

	if w := a.do(http.MethodPost, "/api/users", "", `{"username":"peach","password":"lemon-pass-1"}`); w.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", w.Code, w.Body.String())
	}

	w := a.do(http.MethodPost, "/api/token/login", "", `{"username":"peach","password":"nope-nope"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad credentials, got %d", w.Code)
	}

	w = a.do(http.MethodPost, "/api/token/login", "", `{"username":"peach","password":"lemon-pass-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	tok := decode[map[string]string](t, w)["auth_token"]
	if tok == "" {
		t.Fatalf("no token in %s", w.Body.String())
	}

	a.tokens["peach"] = tok
	w = a.do(http.MethodGet, "/api/users/users/me", "peach", "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status=%d body=%s", w.Code, w.Body.String())
	}
	me := decode[user.MeResponse](t, w)
	if me.Username != "peach" || me.Groups == nil || len(me.Groups) != 0 {
		t.Fatalf("unexpected me: %+v", me)
	}
}

func TestMe_RequiresValidToken(t *testing.T) {
	a := newTestApp(t)

	if w := a.do(http.MethodGet, "/api/users/users/me", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	a.tokens["forged"] = "not-a-jwt"
	if w := a.do(http.MethodGet, "/api/users/users/me", "forged", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with a bad token, got %d", w.Code)
	}

	w := a.do(http.MethodGet, "/api/users/users/me", "manager", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	me := decode[user.MeResponse](t, w)
	if len(me.Groups) != 1 || me.Groups[0] != user.GroupManager {
		t.Fatalf("groups=%v", me.Groups)
	}
}

func TestHealthz(t *testing.T) {
	a := newTestApp(t)
	if w := a.do(http.MethodGet, "/healthz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if w := a.do(http.MethodGet, "/metrics", "", ""); w.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", w.Code)
	}

	r := newRouter(deps{
		log:    zap.NewNop(),
		users:  user.NewService(newStubUsers(), user.NewTokenIssuer("x", time.Hour)),
		pinger: stubPinger{err: errBoom},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the database is down, got %d", w.Code)
	}
}

func TestRegister_PasswordOverBcryptLimitIs400(t *testing.T) {
	a := newTestApp(t)

	for _, pw := range []string{strings.Repeat("x", 80), strings.Repeat("ñ", 40)} {
		body := `{"username":"toad","password":"` + pw + `"}`
		if w := a.do(http.MethodPost, "/api/users", "", body); w.Code != http.StatusBadRequest {
			t.Fatalf("%d byte password: expected 400, got %d body=%s", len(pw), w.Code, w.Body.String())
		}
	}
}
