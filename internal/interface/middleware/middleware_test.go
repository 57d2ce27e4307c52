package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-board/internal/application"
	"github.com/oksasatya/project-board/internal/domain/entity"
	"github.com/oksasatya/project-board/internal/domain/policy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	token string
	err   error
}

func (s stubAuth) Authenticate(_ context.Context, token string) (policy.Principal, error) {
	if s.err != nil {
		return policy.Principal{}, s.err
	}
	if token != s.token {
		return policy.Principal{}, application.AuthenticationError(errors.New("bad token"))
	}
	return policy.Principal{UserID: "u1", Role: entity.RoleUser, SessionID: "s1"}, nil
}

func serve(h gin.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	var seen *gin.Context
	r := gin.New()
	r.Use(h)
	r.GET("/x", func(c *gin.Context) {
		seen = c
		c.Status(http.StatusNoContent)
	})
	r.ServeHTTP(w, req)
	return w, seen
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		if got := BearerToken(c); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	auth := Auth(stubAuth{token: "good"})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	w, _ := serve(auth, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w, _ = serve(auth, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer good")
	w, c := serve(auth, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("good token: status = %d", w.Code)
	}
	if p := PrincipalFrom(c); p.UserID != "u1" || p.Role != entity.RoleUser {
		t.Fatalf("principal = %+v", p)
	}
	if c.GetString(CtxUserIDKey) != "u1" {
		t.Fatal("userID not set")
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer good")
	w, _ = serve(Auth(stubAuth{err: application.InternalError(errors.New("redis down"))}), req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("store failure: status = %d", w.Code)
	}
}

func TestRequireRunsBeforeHandler(t *testing.T) {
	cases := []struct {
		op   policy.Operation
		want int
	}{
		{policy.ProjectCreate, http.StatusForbidden},
		{policy.ProjectClaim, http.StatusNoContent},
	}
	for _, tc := range cases {
		ran := false
		r := gin.New()
		r.POST("/x", Auth(stubAuth{token: "good"}), Require(tc.op), func(c *gin.Context) {
			ran = true
			c.Status(http.StatusNoContent)
		})
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.op, w.Code, tc.want)
		}
		if ran != (tc.want == http.StatusNoContent) {
			t.Fatalf("%s: handler ran = %v", tc.op, ran)
		}
	}
}

func TestPrincipalFromEmptyContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if err := policy.Authorize(PrincipalFrom(c), policy.ProjectList); err == nil {
		t.Fatal("zero principal must be denied")
	}
}

func TestRealIPAndPrivateBypass(t *testing.T) {
	// httptest requests arrive from 192.0.2.1
	cases := []struct {
		name    string
		trusted []string
		headers map[string]string
		wantIP  string
		private bool
	}{
		{"untrusted peer cloudflare header ignored", nil, map[string]string{"CF-Connecting-IP": "203.0.113.9"}, "192.0.2.1", false},
		{"untrusted peer forwarded header ignored", nil, map[string]string{"X-Forwarded-For": "10.0.0.1"}, "192.0.2.1", false},
		{"trusted peer cloudflare", []string{"192.0.2.0/24"}, map[string]string{"CF-Connecting-IP": "203.0.113.9"}, "203.0.113.9", false},
		{"trusted peer forwarded", []string{"192.0.2.1"}, map[string]string{"X-Forwarded-For": "10.1.2.3"}, "10.1.2.3", true},
		{"trusted peer garbage header", []string{"192.0.2.1"}, map[string]string{"X-Forwarded-For": "nope"}, "192.0.2.1", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			if err := TrustProxies(r, tc.trusted); err != nil {
				t.Fatalf("TrustProxies: %v", err)
			}
			var ip string
			var private bool
			r.Use(RealIP())
			r.GET("/x", func(c *gin.Context) {
				ip = c.GetString("real_ip")
				private = AllowPrivateIP()(c)
				c.Status(http.StatusNoContent)
			})
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			r.ServeHTTP(httptest.NewRecorder(), req)
			if ip != tc.wantIP {
				t.Fatalf("real_ip = %q, want %q", ip, tc.wantIP)
			}
			if private != tc.private {
				t.Fatalf("private = %v, want %v", private, tc.private)
			}
		})
	}
}

func TestSpoofedHeaderDoesNotChangeLimiterKey(t *testing.T) {
	r := gin.New()
	if err := TrustProxies(r, nil); err != nil {
		t.Fatal(err)
	}
	var keys []string
	key := KeyByIPAndPath()
	r.Use(RealIP())
	r.POST("/api/login", func(c *gin.Context) {
		keys = append(keys, key(c))
		c.Status(http.StatusNoContent)
	})
	for _, spoof := range []string{"203.0.113.7", "203.0.113.8"} {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.Header.Set("X-Forwarded-For", spoof)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	if len(keys) != 2 || keys[0] != keys[1] {
		t.Fatalf("keys = %v, want one key for one peer", keys)
	}
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	const id = "6f1c1f7e-2b7a-4f3e-9a55-0d6f7c1a2b3c"
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, id)
	w, c := serve(RequestIDMiddleware(), req)
	if c.GetString("request_id") != id || w.Header().Get(RequestIDHeader) != id {
		t.Fatalf("request id = %q / %q", c.GetString("request_id"), w.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	_, c = serve(RequestIDMiddleware(), req)
	if got := c.GetString("request_id"); got == "not-a-uuid" || got == "" {
		t.Fatalf("request id = %q, want a fresh uuid", got)
	}
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	rl := RateLimit(nil, 1, 0, KeyByIP(), nil)
	for i := 0; i < 3; i++ {
		w, _ := serve(rl, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
}
