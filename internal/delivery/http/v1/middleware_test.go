package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avoronin/go-taskhub/internal/auth"
)

func newTestHandler(t *testing.T) *handlerImpl {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenManager("taskhub-test", []byte("test-signing-key-at-least-32-bytes!!"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return &handlerImpl{
		logger: zerolog.Nop(),
		env:    "test",
		tokens: tokens,
	}
}

func newGateRouter(h *handlerImpl) *gin.Engine {
	router := gin.New()
	probe := func(c *gin.Context) {
		userID, _ := userIDFromContext(c)
		respond(c, http.StatusOK, "", gin.H{"user_id": userID})
	}
	router.GET("/probe", h.HandleAuthMiddleware, probe)
	router.OPTIONS("/probe", h.HandleAuthMiddleware, probe)
	return router
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a valid envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	h := newTestHandler(t)
	router := newGateRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Success {
		t.Fatal("envelope reports success on a rejected request")
	}
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	h := newTestHandler(t)
	router := newGateRouter(h)

	for _, header := range []string{
		"Bearer",
		"Basic dXNlcjpwYXNz",
		"Bearer token with extra junk is still one token after SplitN",
	} {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		// The third case carries a garbage token and must still be a 401.
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	h := newTestHandler(t)
	router := newGateRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	h := newTestHandler(t)
	router := newGateRouter(h)

	token, _, err := h.tokens.Issue(42, "alice@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			UserID int64 `json:"user_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Data.UserID != 42 {
		t.Fatalf("attached user id = %d, want 42", body.Data.UserID)
	}
}

func TestAuthMiddlewarePreflightShortCircuit(t *testing.T) {
	h := newTestHandler(t)
	router := newGateRouter(h)

	// No Authorization header at all: preflight must not be gated.
	req := httptest.NewRequest(http.MethodOptions, "/probe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"*"}))
	router.OPTIONS("/anything", func(c *gin.Context) {
		t.Error("preflight request reached the handler")
	})

	req := httptest.NewRequest(http.MethodOptions, "/anything", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want the request origin", got)
	}
	if rec.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Fatal("Access-Control-Allow-Headers is not set on the preflight response")
	}
}

func TestCORSMiddlewareVaryHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"*"}))
	router.GET("/anything", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Both values must survive; the second must not replace the first.
	vary := rec.Header().Values("Vary")
	want := map[string]bool{"Origin": false, "Access-Control-Request-Method": false}
	for _, v := range vary {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for value, seen := range want {
		if !seen {
			t.Errorf("Vary %v is missing %q", vary, value)
		}
	}
}

func TestCORSMiddlewareUntrustedOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"https://trusted.example.com"}))
	router.GET("/anything", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("Access-Control-Allow-Origin = %q for an untrusted origin", got)
	}
}
