package authapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"casavia/internal/auth/session"
	"casavia/internal/store"
)

func testHandler(t *testing.T, enforced bool) (*Handler, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	if err := st.Seed(); err != nil {
		t.Fatalf("store.Seed: %v", err)
	}

	cfg := session.DefaultConfig()
	cfg.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Enforced = enforced

	svc, err := session.NewService(cfg, st)
	if err != nil {
		t.Fatalf("session.NewService: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(log, Config{MaxBodyBytes: 1 << 20}, svc, st), st
}

func testMux(t *testing.T, enforced bool) (*http.ServeMux, *Handler) {
	t.Helper()
	h, _ := testHandler(t, enforced)
	mux := http.NewServeMux()
	h.Register(mux)
	return mux, h
}

func signIn(t *testing.T, mux *http.ServeMux, identifier, secret string) *httptest.ResponseRecorder {
	t.Helper()
	body := strings.NewReader(`{"identifier":"` + identifier + `","secret":"` + secret + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/signin", body)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeAuth(t *testing.T, rr *httptest.ResponseRecorder) AuthResponse {
	t.Helper()
	var resp AuthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode auth response: %v (body %q)", err, rr.Body.String())
	}
	return resp
}

func refreshCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestSignIn_Success(t *testing.T) {
	t.Parallel()

	mux, _ := testMux(t, true)
	rr := signIn(t, mux, "amelia", "wanderlust22")

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	resp := decodeAuth(t, rr)
	if resp.AccessToken == nil || *resp.AccessToken == "" {
		t.Fatalf("missing access token: %s", rr.Body.String())
	}
	if resp.User == nil || resp.User.Username != "amelia" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
	if strings.Contains(rr.Body.String(), "passwordHash") {
		t.Fatalf("password hash leaked: %s", rr.Body.String())
	}

	c := refreshCookie(t, rr)
	if c == nil {
		t.Fatalf("refresh cookie not set")
	}
	if !c.HttpOnly || c.SameSite != http.SameSiteStrictMode || c.Path != "/" {
		t.Fatalf("cookie attributes wrong: %+v", c)
	}
	if c.MaxAge <= 0 {
		t.Fatalf("cookie max-age must be positive, got %d", c.MaxAge)
	}
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	t.Parallel()

	mux, _ := testMux(t, true)
	rr := signIn(t, mux, "amelia", "wrong-password")

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", rr.Code)
	}
	if c := refreshCookie(t, rr); c != nil {
		t.Fatalf("failed sign-in must not set a cookie: %+v", c)
	}
	if !strings.Contains(rr.Body.String(), "Invalid credentials") {
		t.Fatalf("body=%s", rr.Body.String())
	}
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	mux, _ := testMux(t, true)
	signed := signIn(t, mux, "jakob", "fjordside")
	cookie := refreshCookie(t, signed)
	if cookie == nil {
		t.Fatalf("no refresh cookie from sign-in")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/refreshToken", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeAuth(t, rr)
	if resp.AccessToken == nil || *resp.AccessToken == "" {
		t.Fatalf("refresh must return a new access token")
	}
	if resp.User == nil || resp.User.Username != "jakob" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}

func TestRefresh_MissingOrInvalidCookie(t *testing.T) {
	t.Parallel()

	mux, _ := testMux(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/refreshToken", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("missing cookie: status=%d, want 403", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/refreshToken", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("invalid cookie: status=%d, want 403", rr.Code)
	}
}

func TestMe(t *testing.T) {
	t.Parallel()

	mux, _ := testMux(t, true)
	signed := signIn(t, mux, "sofia", "oldtownloft")
	tok := *decodeAuth(t, signed).AccessToken

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeAuth(t, rr)
	if resp.User == nil || resp.User.Username != "sofia" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
	if resp.AccessToken == nil || *resp.AccessToken != tok {
		t.Fatalf("me must echo the presented token")
	}
}

func TestMe_StatusTaxonomy(t *testing.T) {
	t.Parallel()

	mux, _ := testMux(t, true)

	// No token at all: 401.
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status=%d, want 401", rr.Code)
	}

	// Invalid token: 403 with the Unauthorized marker.
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("bad token: status=%d, want 403", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Unauthorized") {
		t.Fatalf("bad token body=%s", rr.Body.String())
	}
}

func TestSignOut_ClearsCookie(t *testing.T) {
	t.Parallel()

	mux, _ := testMux(t, true)
	signed := signIn(t, mux, "amelia", "wanderlust22")
	tok := *decodeAuth(t, signed).AccessToken

	req := httptest.NewRequest(http.MethodPost, "/api/signout", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	c := refreshCookie(t, rr)
	if c == nil {
		t.Fatalf("sign-out must send an expiring cookie")
	}
	if c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", c)
	}
}

func TestRequireAuth_Gate(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, true)

	var gotClaims session.AccessClaims
	protected := h.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := PrincipalFromContext(r.Context())
		if !ok {
			t.Fatalf("principal missing from context")
		}
		gotClaims = claims
		w.WriteHeader(http.StatusNoContent)
	}))

	// 401 when the header is absent.
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/listings", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no header: status=%d, want 401", rr.Code)
	}

	// 403 when the token is expired.
	mux := http.NewServeMux()
	h.Register(mux)
	tok := *decodeAuth(t, signIn(t, mux, "amelia", "wanderlust22")).AccessToken

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	req.Header.Set("Authorization", "Bearer "+tok+"tampered")
	rr = httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("bad token: status=%d, want 403", rr.Code)
	}

	// Valid token passes and attaches the principal.
	req = httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr = httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("valid token: status=%d body=%s", rr.Code, rr.Body.String())
	}
	if gotClaims.UserID != 1 {
		t.Fatalf("principal user=%d, want 1", gotClaims.UserID)
	}
	if !gotClaims.ExpiresAt.After(time.Now()) {
		t.Fatalf("principal expiry in the past: %v", gotClaims.ExpiresAt)
	}
}

func TestRequireAuth_SchemeTaxonomy(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, true)
	protected := h.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		// A credential under the wrong scheme is presented-but-invalid,
		// not absent.
		{name: "basic scheme", header: "Basic xyz", want: http.StatusForbidden},
		{name: "bare credential no scheme", header: "sometoken", want: http.StatusUnauthorized},
		{name: "scheme without credential", header: "Bearer", want: http.StatusUnauthorized},
		{name: "empty header", header: "", want: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("%s: status=%d, want %d", tc.name, rr.Code, tc.want)
		}
	}
}

func TestEnforcementDisabled(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, false)
	mux := http.NewServeMux()
	h.Register(mux)

	// Sign-in reports success but omits token and user.
	rr := signIn(t, mux, "amelia", "wanderlust22")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeAuth(t, rr)
	if resp.AccessToken != nil || resp.User != nil {
		t.Fatalf("disabled enforcement must null the body: %s", rr.Body.String())
	}
	if refreshCookie(t, rr) == nil {
		t.Fatalf("cookie is still set while enforcement is off")
	}

	// The gate forwards anonymous requests.
	protected := h.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); ok {
			t.Fatalf("anonymous request must carry no principal")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	rr = httptest.NewRecorder()
	protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/listings", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("gate must pass through: status=%d", rr.Code)
	}
}
