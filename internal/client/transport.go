package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// maxErrorBodyBytes bounds how much of a 403 body is buffered to inspect it.
const maxErrorBodyBytes = 1 << 16

var errNotReplayable = errors.New("request body cannot be replayed")

// authTransport attaches the session's bearer token to outgoing requests and
// recovers from auth rejections: a 403 whose body is the server's
// "Unauthorized" message triggers one cookie-backed token refresh and one
// resend of the original request.
//
// Both the refresh call and the resend travel over the base transport, never
// back through this RoundTripper, so a rejected retry cannot trigger a second
// refresh.
type authTransport struct {
	base       http.RoundTripper
	refreshURL string
	sess       *session
	log        *slog.Logger

	// refreshClient carries the cookie jar so the refresh call presents the
	// refresh cookie and absorbs any Set-Cookie in the response.
	refreshClient *http.Client

	group singleflight.Group
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, gen := t.sess.current()

	// A request that already carries Authorization keeps it, so callers can
	// pin a specific token.
	if token != "" && req.Header.Get("Authorization") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	rejected, resp, err := isAuthRejection(resp)
	if err != nil {
		return nil, err
	}
	if !rejected {
		return resp, nil
	}

	newToken, refreshErr := t.refreshToken(req.Context(), gen)
	if refreshErr != nil {
		t.log.Debug("session.refresh.fail", "err", refreshErr)
		t.sess.clear(req.Context())
		return resp, nil
	}

	retry, rewindErr := rewoundClone(req)
	if rewindErr != nil {
		return resp, nil
	}
	retry.Header.Set("Authorization", "Bearer "+newToken)

	// The original response body is replaced by the retry outcome.
	_ = resp.Body.Close()

	t.log.Debug("session.refresh.retry", "method", retry.Method, "url", retry.URL.Path)
	return t.base.RoundTrip(retry)
}

// refreshToken performs the cookie-authenticated refresh call. Concurrent
// rejections coalesce into a single refresh.
func (t *authTransport) refreshToken(ctx context.Context, fromGen uint64) (string, error) {
	v, err, _ := t.group.Do("refresh", func() (any, error) {
		body, err := t.doRefresh(ctx)
		if err != nil {
			return nil, err
		}
		if body.AccessToken == nil || *body.AccessToken == "" {
			return nil, errors.New("refresh response carried no token")
		}

		t.sess.adopt(ctx, *body.AccessToken, fromGen)
		return *body.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// doRefresh hits the refresh endpoint on the cookie-carrying client,
// bypassing this RoundTripper so the call can never trigger a recovery of
// its own.
func (t *authTransport) doRefresh(ctx context.Context) (AuthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.refreshURL, nil)
	if err != nil {
		return AuthResponse{}, err
	}

	resp, err := t.refreshClient.Do(req)
	if err != nil {
		return AuthResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return AuthResponse{}, &APIError{Status: resp.StatusCode, Message: decodeMessage(resp.Body)}
	}

	var body AuthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodyBytes)).Decode(&body); err != nil {
		return AuthResponse{}, err
	}
	return body, nil
}

// isAuthRejection checks whether a 403 body is the server's auth rejection.
// The body is buffered and restored so the caller still sees it when the
// response is returned unchanged.
func isAuthRejection(resp *http.Response) (bool, *http.Response, error) {
	buf, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	closeErr := resp.Body.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return false, nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(buf))

	var body struct {
		Message string `json:"message"`
	}
	if jsonErr := json.Unmarshal(buf, &body); jsonErr != nil {
		return false, resp, nil
	}
	return body.Message == "Unauthorized", resp, nil
}

// rewoundClone clones a request with a fresh body for the retry.
func rewoundClone(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

func decodeMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBodyBytes)).Decode(&body); err != nil {
		return ""
	}
	return body.Message
}
