package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/minipost/cache"
	"github.com/cppla/minipost/config"
	"github.com/cppla/minipost/models"
	"github.com/cppla/minipost/utils"
)

const testSecret = "router-test-secret"

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T, tweak func(*config.AppConfig)) *testServer {
	t.Helper()
	cfg := config.AppConfig{
		JWTSecret:   testSecret,
		GinMode:     "test",
		DBDriver:    "sqlite",
		DatabaseURI: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel:    "silent",
	}
	config.ApplyDefaults(&cfg)
	cfg.GinPath = ""
	if tweak != nil {
		tweak(&cfg)
	}

	db, err := config.OpenDatabase(cfg, &models.User{}, &models.Post{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := cache.NewMemoryStore(cfg.CacheCapacity, cfg.CacheTTL())
	return &testServer{t: t, router: SetupRouter(cfg, db, store)}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) signupAndLogin(email, password string) string {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/user/signup", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(http.MethodPost, "/user/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresAt   int64  `json:"expires_at"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	decode(s.t, rr, &resp)
	require.NotEmpty(s.t, resp.AccessToken)
	assert.Equal(s.t, "bearer", resp.TokenType)
	assert.Greater(s.t, resp.ExpiresAt, time.Now().Unix())
	assert.Equal(s.t, int64((72 * time.Hour).Seconds()), resp.ExpiresIn)
	return resp.AccessToken
}

func (s *testServer) createPost(token, text string) uint {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/posts", token, gin.H{"text": text})
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Detail string `json:"detail"`
		PostID uint   `json:"post_id"`
	}
	decode(s.t, rr, &resp)
	assert.Equal(s.t, "Post created successfully", resp.Detail)
	require.NotZero(s.t, resp.PostID)
	return resp.PostID
}

func (s *testServer) listPosts(token string) []models.Post {
	s.t.Helper()
	rr := s.do(http.MethodGet, "/posts", token, nil)
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())
	var posts []models.Post
	decode(s.t, rr, &posts)
	return posts
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) int {
	t.Helper()
	var resp utils.ErrorResponse
	decode(t, rr, &resp)
	return resp.Code
}

func TestPostLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signupAndLogin("a@x.com", "pw1")

	rr := s.do(http.MethodPost, "/user/login", "", gin.H{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 40010, errorCode(t, rr))

	assert.Empty(t, s.listPosts(token))

	id := s.createPost(token, "hello")
	posts := s.listPosts(token)
	require.Len(t, posts, 1)
	assert.Equal(t, id, posts[0].ID)
	assert.Equal(t, "hello", posts[0].Text)
	assert.NotZero(t, posts[0].OwnerID)

	rr = s.do(http.MethodGet, fmt.Sprintf("/posts/%d", id), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var single models.Post
	decode(t, rr, &single)
	assert.Equal(t, "hello", single.Text)

	rr = s.do(http.MethodDelete, fmt.Sprintf("/posts/%d", id), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"detail":"Post deleted successfully"}`, rr.Body.String())

	assert.Empty(t, s.listPosts(token), "deleted post must not be served from cache")

	rr = s.do(http.MethodDelete, fmt.Sprintf("/posts/%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(http.MethodPost, "/user/signup", "", gin.H{"email": "dup@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"User created successfully"}`, rr.Body.String())

	rr = s.do(http.MethodPost, "/user/signup", "", gin.H{"email": "dup@x.com", "password": "other"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 40901, errorCode(t, rr))

	// the original password still works, so nothing was overwritten
	rr = s.do(http.MethodPost, "/user/login", "", gin.H{"email": "dup@x.com", "password": "pw"})
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestSignupValidatesPayload(t *testing.T) {
	s := newTestServer(t, nil)

	cases := []interface{}{
		gin.H{"email": "not-an-email", "password": "pw"},
		gin.H{"email": "a@x.com"},
		gin.H{"password": "pw"},
		gin.H{"email": "a@x.com", "password": strings.Repeat("p", 73)},
		gin.H{"email": "a@x.com", "password": strings.Repeat("é", 40)},
	}
	for i, body := range cases {
		rr := s.do(http.MethodPost, "/user/signup", "", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "case %d", i)
		assert.Equal(t, 40001, errorCode(t, rr), "case %d", i)
	}

	// 36 two-byte runes is exactly 72 bytes
	rr := s.do(http.MethodPost, "/user/signup", "", gin.H{"email": "multi@x.com", "password": strings.Repeat("é", 36)})
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestLoginDoesNotRevealUnknownEmail(t *testing.T) {
	s := newTestServer(t, nil)
	s.signupAndLogin("known@x.com", "pw")

	unknown := s.do(http.MethodPost, "/user/login", "", gin.H{"email": "nobody@x.com", "password": "pw"})
	wrong := s.do(http.MethodPost, "/user/login", "", gin.H{"email": "known@x.com", "password": "nope"})

	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestLoginEmailIsCaseSensitive(t *testing.T) {
	s := newTestServer(t, nil)
	s.signupAndLogin("case@x.com", "pw")

	rr := s.do(http.MethodPost, "/user/login", "", gin.H{"email": "CASE@x.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPostSizeBoundary(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signupAndLogin("big@x.com", "pw")

	s.createPost(token, strings.Repeat("a", models.MaxPostBytes))

	rr := s.do(http.MethodPost, "/posts", token, gin.H{"text": strings.Repeat("a", models.MaxPostBytes+1)})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 40021, errorCode(t, rr))
	assert.Len(t, s.listPosts(token), 1)
}

func TestCreatePostPayload(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signupAndLogin("p@x.com", "pw")

	rr := s.do(http.MethodPost, "/posts", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 40020, errorCode(t, rr))

	s.createPost(token, "")
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.AppConfig) { cfg.MaxBodyBytes = 64 })
	token := s.signupAndLogin("limit@x.com", "pw")

	rr := s.do(http.MethodPost, "/posts", token, gin.H{"text": strings.Repeat("a", 128)})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 40021, errorCode(t, rr))
	assert.Empty(t, s.listPosts(token))

	rr = s.do(http.MethodPost, "/user/signup", "", gin.H{"email": "limit2@x.com", "password": strings.Repeat("p", 64)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, 41301, errorCode(t, rr))
}

func TestSanitizeHTML(t *testing.T) {
	s := newTestServer(t, func(cfg *config.AppConfig) { cfg.SanitizeHTML = true })
	token := s.signupAndLogin("html@x.com", "pw")

	s.createPost(token, `<b>bold</b><script>alert(1)</script>`)
	posts := s.listPosts(token)
	require.Len(t, posts, 1)
	assert.Equal(t, "<b>bold</b>", posts[0].Text)
}

func TestUsersCannotTouchEachOthersPosts(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.signupAndLogin("alice@x.com", "pw")
	bob := s.signupAndLogin("bob@x.com", "pw")

	bobPost := s.createPost(bob, "bob's")
	s.createPost(alice, "alice's")

	for _, p := range s.listPosts(alice) {
		assert.NotEqual(t, bobPost, p.ID)
	}

	rr := s.do(http.MethodDelete, fmt.Sprintf("/posts/%d", bobPost), alice, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	missing := s.do(http.MethodDelete, "/posts/999999", alice, nil)
	assert.Equal(t, missing.Body.String(), rr.Body.String(), "foreign post must look like a missing one")

	rr = s.do(http.MethodGet, fmt.Sprintf("/posts/%d", bobPost), alice, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	require.Len(t, s.listPosts(bob), 1)
}

func TestDeleteRejectsMalformedID(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signupAndLogin("id@x.com", "pw")

	for _, id := range []string{"abc", "0", "-1"} {
		rr := s.do(http.MethodDelete, "/posts/"+id, token, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, id)
		assert.Equal(t, 40022, errorCode(t, rr), id)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signupAndLogin("auth@x.com", "pw")

	check := func(name string, req *http.Request, code int) {
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, name)
		assert.Equal(t, code, errorCode(t, rr), name)
	}

	check("missing header", httptest.NewRequest(http.MethodGet, "/posts", nil), 40101)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Token "+token)
	check("wrong scheme", req, 40102)

	req = httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer   ")
	check("empty token", req, 40103)

	req = httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token[:len(token)-2])
	check("truncated", req, 40105)

	for _, method := range []string{http.MethodPost, http.MethodGet} {
		rr := s.do(method, "/posts", "garbage", gin.H{"text": "x"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code, method)
	}
	rr := s.do(http.MethodDelete, "/posts/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestExpiredAndForeignTokensLookAlike(t *testing.T) {
	s := newTestServer(t, nil)
	s.signupAndLogin("exp@x.com", "pw")

	past := time.Now().Add(-2 * time.Hour)
	expired, _, err := utils.NewTokenManager([]byte(testSecret), time.Hour).
		WithClock(func() time.Time { return past }).
		Issue(1, "exp@x.com")
	require.NoError(t, err)

	forged, _, err := utils.NewTokenManager([]byte("someone-else"), time.Hour).Issue(1, "exp@x.com")
	require.NoError(t, err)

	a := s.do(http.MethodGet, "/posts", expired, nil)
	b := s.do(http.MethodGet, "/posts", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, a.Code)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Body.String(), b.Body.String())
}

func TestTokenForUnknownUser(t *testing.T) {
	s := newTestServer(t, nil)

	token, _, err := utils.NewTokenManager([]byte(testSecret), time.Hour).Issue(4242, "ghost@x.com")
	require.NoError(t, err)

	rr := s.do(http.MethodGet, "/posts", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 40106, errorCode(t, rr))
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, 40400, errorCode(t, rr))
}
