package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MikeMC777/littlelemon/internal/cache"
	"github.com/MikeMC777/littlelemon/internal/user"
)

type stubAuth map[string]*user.Principal

func (s stubAuth) Authenticate(_ context.Context, tok string) (*user.Principal, error) {
	if tok == "boom" {
		return nil, errors.New("db down")
	}
	p, ok := s[tok]
	if !ok {
		return nil, user.ErrInvalidToken
	}
	return p, nil
}

var (
	customer = &user.Principal{User: user.User{ID: 1, Username: "ana"}}
	manager  = &user.Principal{User: user.User{ID: 2, Username: "boss"}, Groups: []string{user.GroupManager}}
	admin    = &user.Principal{User: user.User{ID: 3, Username: "root", IsSuperuser: true}}
	crew     = &user.Principal{User: user.User{ID: 4, Username: "rider"}, Groups: []string{user.GroupDeliveryCrew}}
)

func testAuth() stubAuth {
	return stubAuth{"t-customer": customer, "t-manager": manager, "t-admin": admin, "t-crew": crew}
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(testAuth()))
	handlers := append(mw, func(c *gin.Context) {
		id := int64(0)
		if p := CurrentUser(c); p != nil {
			id = p.ID
		}
		c.JSON(http.StatusOK, gin.H{"user": id})
	})
	r.Any("/x", handlers...)
	return r
}

func do(r http.Handler, method, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/x", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestTokenFromHeader(t *testing.T) {
	cases := map[string]struct {
		tok string
		ok  bool
	}{
		"Token abc":   {"abc", true},
		"Bearer abc":  {"abc", true},
		"bearer  abc": {"abc", true},
		"Basic abc":   {"", false},
		"Token":       {"", false},
		"Token   ":    {"", false},
	}
	for in, want := range cases {
		tok, ok := tokenFromHeader(in)
		assert.Equal(t, want.ok, ok, in)
		assert.Equal(t, want.tok, tok, in)
	}
}

func TestAuthenticate(t *testing.T) {
	r := newTestRouter()

	w := do(r, http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":0}`, w.Body.String())

	w = do(r, http.MethodGet, "Token t-customer")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":1}`, w.Body.String())

	w = do(r, http.MethodGet, "Token nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))

	w = do(r, http.MethodGet, "Basic Zm9vOmJhcg==")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "Token boom")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireAuth(t *testing.T) {
	r := newTestRouter(RequireAuth())

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "Token t-crew").Code)
}

func TestRequireManager(t *testing.T) {
	r := newTestRouter(RequireManager())

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "Token t-customer").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "Token t-crew").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "Token t-manager").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "Token t-admin").Code)
}

func TestManagerForWrites(t *testing.T) {
	r := newTestRouter(ManagerForWrites())

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "Token t-customer").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPatch, "Token t-manager").Code)
}

func TestThrottle_AnonAndUserBucketsAreSeparate(t *testing.T) {
	store := cache.NewMemoryStore()
	r := newTestRouter(Throttle(store, ThrottleConfig{Anon: 2, User: 3, Window: time.Minute}, zap.NewNop()))

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, do(r, http.MethodGet, "").Code)
	}
	w := do(r, http.MethodGet, "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "throttled")

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, do(r, http.MethodGet, "Token t-customer").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "Token t-customer").Code)
	// other users have their own bucket
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "Token t-manager").Code)
}

func TestThrottle_ZeroDisables(t *testing.T) {
	store := cache.NewMemoryStore()
	r := newTestRouter(Throttle(store, ThrottleConfig{}, zap.NewNop()))
	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, do(r, http.MethodGet, "").Code)
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, RID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestValidMoney(t *testing.T) {
	for _, s := range []string{"1", "2.5", "10.00", "9999.99", " 3.10 "} {
		assert.True(t, ValidMoney(s), s)
	}
	for _, s := range []string{"", "abc", "0", "-1.00", "1.234", "10000"} {
		assert.False(t, ValidMoney(s), s)
	}
}

type priceBody struct {
	Title string `json:"title" binding:"required"`
	Price string `json:"price" binding:"required,money"`
}

func TestBindError_UsesJSONNames(t *testing.T) {
	RegisterValidators()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var in priceBody
		if err := c.ShouldBindJSON(&in); err != nil {
			BindError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	send := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := send(`{"price":"1.999"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var got HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Contains(t, got.Error, "title: this field is required")
	assert.Contains(t, got.Error, "price: must be a positive amount")

	assert.Equal(t, http.StatusBadRequest, send(`{not json`).Code)
	assert.Equal(t, http.StatusNoContent, send(`{"title":"Greek salad","price":"12.50"}`).Code)
}

func TestPageParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	parse := func(q string) (Page, error) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/x?"+q, nil)
		return PageParams(c)
	}

	p, err := parse("")
	require.NoError(t, err)
	assert.Equal(t, Page{Page: 1, PerPage: DefaultPerPage}, p)

	p, err = parse("page=3&perpage=5")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Limit())
	assert.Equal(t, 10, p.Offset())

	p, err = parse("perpage=1000")
	require.NoError(t, err)
	assert.Equal(t, MaxPerPage, p.PerPage)

	_, err = parse("page=0")
	assert.ErrorIs(t, err, ErrBadPage)
	_, err = parse("perpage=x")
	assert.ErrorIs(t, err, ErrBadPage)

	_, err = parse("page=100000000000000000&perpage=100")
	assert.ErrorIs(t, err, ErrBadPage)
	_, err = parse(fmt.Sprintf("page=%d", math.MaxInt))
	assert.ErrorIs(t, err, ErrBadPage)

	p, err = parse(fmt.Sprintf("page=%d&perpage=100", math.MaxInt/100))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Offset(), 0)
	assert.GreaterOrEqual(t, p.Offset()+p.Limit(), 0)
}

func TestIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "42"}, {Key: "bad", Value: "-1"}}

	id, err := IDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = IDParam(c, "bad")
	assert.ErrorIs(t, err, ErrBadID)
}
