// Package main provides a CI-friendly smoke test for the casavia auth
// lifecycle against a running server.
//
// It validates:
//   - sign-in sets the HTTP-only refresh cookie and returns a token
//   - /api/me accepts the access token
//   - protected routes reject missing (401) and garbage (403) tokens
//   - /api/refreshToken mints a new access token from the cookie alone
//   - sign-out expires the cookie so a later refresh is rejected
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"
)

const maxReadBytes = 1 << 20

type authResponse struct {
	AccessToken *string `json:"accessToken"`
	User        *struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

func main() {
	var (
		baseURL  = flag.String("url", "http://127.0.0.1:3001", "Server base URL")
		username = flag.String("user", "amelia", "Seed username")
		password = flag.String("pass", "wanderlust22", "Seed password")
		timeout  = flag.Duration("timeout", 7*time.Second, "Per-request timeout")
		verbose  = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateBaseURL(*baseURL); err != nil {
		fatalf("invalid -url: %v", err)
	}
	base := strings.TrimRight(*baseURL, "/")

	jar, err := cookiejar.New(nil)
	if err != nil {
		fatalf("cookie jar: %v", err)
	}
	hc := &http.Client{Jar: jar, Timeout: *timeout}

	// 1. Gate rejects anonymous and garbage tokens with distinct statuses.
	mustStatus(hc, request(base, http.MethodGet, "/api/listings", "", nil), http.StatusUnauthorized)
	mustStatus(hc, request(base, http.MethodGet, "/api/listings", "not-a-token", nil), http.StatusForbidden)

	// 2. Sign in: token in the body, refresh cookie in the jar.
	signin := mustAuthResponse(hc, request(base, http.MethodPost, "/api/signin", "",
		map[string]string{"identifier": *username, "secret": *password}))
	if signin.AccessToken == nil || *signin.AccessToken == "" {
		fatalf("signin returned no access token (is CASAVIA_USE_AUTH off?)")
	}
	token := *signin.AccessToken
	if !hasRefreshCookie(jar, base) {
		fatalf("signin did not set the refreshToken cookie")
	}
	if *verbose {
		fmt.Printf("signed in: user_id=%d\n", signin.User.ID)
	}

	// 3. The token opens the gate.
	me := mustAuthResponse(hc, request(base, http.MethodGet, "/api/me", token, nil))
	if me.User == nil || me.User.Username != *username {
		fatalf("/api/me identity mismatch")
	}
	mustStatus(hc, request(base, http.MethodGet, "/api/listings", token, nil), http.StatusOK)

	// 4. The cookie alone mints a fresh token.
	refreshed := mustAuthResponse(hc, request(base, http.MethodGet, "/api/refreshToken", "", nil))
	if refreshed.AccessToken == nil || *refreshed.AccessToken == "" {
		fatalf("refresh returned no access token")
	}
	if *refreshed.AccessToken == token && *verbose {
		fmt.Println("note: refresh returned an identical token (same issue second)")
	}
	mustStatus(hc, request(base, http.MethodGet, "/api/me", *refreshed.AccessToken, nil), http.StatusOK)

	// 5. Sign out expires the cookie; a later refresh is rejected.
	mustStatus(hc, request(base, http.MethodPost, "/api/signout", token, nil), http.StatusOK)
	mustStatus(hc, request(base, http.MethodGet, "/api/refreshToken", "", nil), http.StatusForbidden)

	fmt.Printf("OK: user=%s id=%d\n", *username, signin.User.ID)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func request(base, method, path, token string, body any) *http.Request {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, base+path, rd)
	if err != nil {
		fatalf("build request %s %s: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func mustStatus(hc *http.Client, req *http.Request, want int) {
	resp, err := hc.Do(req)
	if err != nil {
		fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxReadBytes))

	if resp.StatusCode != want {
		fatalf("%s %s: got=%d want=%d", req.Method, req.URL.Path, resp.StatusCode, want)
	}
}

func mustAuthResponse(hc *http.Client, req *http.Request) authResponse {
	resp, err := hc.Do(req)
	if err != nil {
		fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReadBytes))
	if err != nil {
		fatalf("%s %s: read body: %v", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode != http.StatusOK {
		fatalf("%s %s: got=%d want=200 body=%s", req.Method, req.URL.Path, resp.StatusCode, raw)
	}

	var out authResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		fatalf("%s %s: bad json: %v", req.Method, req.URL.Path, err)
	}
	return out
}

func hasRefreshCookie(jar http.CookieJar, base string) bool {
	u, err := url.Parse(base)
	if err != nil {
		return false
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == "refreshToken" {
			return true
		}
	}
	return false
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
