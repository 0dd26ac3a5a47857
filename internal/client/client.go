// Package client is the Go consumer of the casavia API. It owns the session
// lifecycle: sign-in, transparent token refresh on auth rejection, and
// sign-out. The refresh cookie lives in a cookie jar and is never exposed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client calls the casavia API with automatic session recovery.
type Client struct {
	baseURL   string
	http      *http.Client
	transport *authTransport
	sess      *session
	log       *slog.Logger
}

// New builds a Client for the API at baseURL. store persists the access
// token between processes; nil keeps the token in memory only.
func New(baseURL string, store TokenStore, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	base := strings.TrimRight(u.String(), "/")

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	sess := newSession(store)
	transport := &authTransport{
		base:       http.DefaultTransport,
		refreshURL: base + "/api/refreshToken",
		sess:       sess,
		log:        log,
		refreshClient: &http.Client{
			Transport: http.DefaultTransport,
			Jar:       jar,
			Timeout:   15 * time.Second,
		},
	}

	return &Client{
		baseURL: base,
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   30 * time.Second,
		},
		transport: transport,
		sess:      sess,
		log:       log,
	}, nil
}

// Token returns the currently held access token, empty when anonymous.
func (c *Client) Token() string {
	tok, _ := c.sess.current()
	return tok
}

// SignIn authenticates and installs the returned session. The user is nil
// when the server runs with auth enforcement disabled.
func (c *Client) SignIn(ctx context.Context, identifier, secret string) (*User, error) {
	payload := map[string]string{"identifier": identifier, "secret": secret}

	var body AuthResponse
	if err := c.post(ctx, "/api/signin", payload, &body); err != nil {
		return nil, err
	}

	token := ""
	if body.AccessToken != nil {
		token = *body.AccessToken
	}
	c.sess.replace(ctx, token)

	c.log.Debug("session.signin", "identifier", identifier)
	return body.User, nil
}

// SignOut tells the server to expire the refresh cookie, then drops local
// session state. The local clear happens even when the call fails.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.post(ctx, "/api/signout", nil, nil)
	c.sess.clear(ctx)
	if err != nil {
		c.log.Debug("session.signout.server_fail", "err", err)
	}
	return err
}

// Bootstrap restores a session at startup: load the persisted token, probe
// /api/me, and fall back to a cookie refresh. When neither works the client
// continues anonymously with the persisted token cleared.
func (c *Client) Bootstrap(ctx context.Context) (*User, error) {
	if err := c.sess.load(ctx); err != nil {
		return nil, err
	}

	if tok, _ := c.sess.current(); tok != "" {
		user, err := c.Me(ctx)
		if err == nil {
			return user, nil
		}
		if !IsAuthError(err) {
			return nil, err
		}
	}

	// The explicit fallback refresh goes straight to the refresh client: a
	// rejection here is final, not something the pipeline should recover.
	body, err := c.transport.doRefresh(ctx)
	if err != nil {
		c.sess.clear(ctx)
		if IsAuthError(err) {
			return nil, nil
		}
		return nil, err
	}

	token := ""
	if body.AccessToken != nil {
		token = *body.AccessToken
	}
	c.sess.replace(ctx, token)
	return body.User, nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var body AuthResponse
	if err := c.get(ctx, "/api/me", nil, &body); err != nil {
		return nil, err
	}
	return body.User, nil
}

// Listings returns listings matching the filter.
func (c *Client) Listings(ctx context.Context, f Filter) ([]Listing, error) {
	q := url.Values{}
	if f.Guests > 0 {
		q.Set("guests", strconv.Itoa(f.Guests))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}

	var out []Listing
	if err := c.get(ctx, "/api/listings", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Listing returns a single listing by id.
func (c *Client) Listing(ctx context.Context, id int64) (*Listing, error) {
	var out Listing
	if err := c.get(ctx, "/api/listings/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reviews returns the reviews for a listing.
func (c *Client) Reviews(ctx context.Context, listingID int64) ([]Review, error) {
	q := url.Values{}
	q.Set("listingId", strconv.FormatInt(listingID, 10))

	var out []Review
	if err := c.get(ctx, "/api/reviews", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateListing creates a listing and returns it with its assigned id.
func (c *Client) CreateListing(ctx context.Context, in CreateListingInput) (*Listing, error) {
	var out Listing
	if err := c.post(ctx, "/api/listings", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: decodeMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
