package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/AweemRizwan/smm-optimize-sub001/internal/telemetry"
	"github.com/AweemRizwan/smm-optimize-sub001/pkg/models"
)

// ErrUnauthenticated means the session could not be recovered: the refresh
// credential was missing or the refresh endpoint rejected it. The session has
// been cleared and the user must log in again.
var ErrUnauthenticated = errors.New("session expired, log in again")

// singleflight key for the one refresh operation.
const refreshKey = "refresh"

type ctxKey int

const skipAuthKey ctxKey = iota

// WithoutAuth marks a request context so the guard passes it through without
// a bearer header or refresh handling. Used for login and refresh calls.
func WithoutAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipAuthKey, true)
}

func skipAuth(ctx context.Context) bool {
	v, _ := ctx.Value(skipAuthKey).(bool)
	return v
}

// Guard is an http.RoundTripper that attaches the current access credential
// and transparently recovers from credential expiry. Any number of requests
// that fail with 401 while a refresh is pending converge on exactly one call
// to the refresh endpoint; the in-flight refresh is the singleflight group's
// shared result. A request is replayed at most once, so a second 401 from the
// same logical call never starts another refresh cycle.
type Guard struct {
	base       http.RoundTripper
	session    *Session
	refreshURL string
	group      singleflight.Group
	log        zerolog.Logger
}

// NewGuard wraps base (nil means http.DefaultTransport) with refresh handling
// against refreshURL.
func NewGuard(base http.RoundTripper, session *Session, refreshURL string, log zerolog.Logger) *Guard {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Guard{base: base, session: session, refreshURL: refreshURL, log: log}
}

// HTTPClient returns an *http.Client that dispatches through the guard. The
// timeout bounds the whole exchange, refresh and replay included.
func (g *Guard) HTTPClient() *http.Client {
	return &http.Client{
		Transport: g,
		Timeout:   models.DefaultRequestTimeoutMS * time.Millisecond,
	}
}

// RoundTrip implements http.RoundTripper. Transport errors and non-401
// statuses pass through unmodified; only credential expiry is handled here.
func (g *Guard) RoundTrip(req *http.Request) (*http.Response, error) {
	if skipAuth(req.Context()) {
		return g.base.RoundTrip(req)
	}

	access := g.session.Store().Access()
	resp, err := g.base.RoundTrip(withBearer(req, access))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// A consumed streaming body cannot be replayed; surface the 401 as-is.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}
	drain(resp)

	// Another caller may have finished a refresh while this request was in
	// flight with the old token. Replay with the current credential before
	// paying for a refresh of our own.
	if cur := g.session.Store().Access(); cur != "" && cur != access {
		return g.replay(req, cur)
	}

	fresh, err := g.refresh(req.Context())
	if err != nil {
		return nil, err
	}
	return g.replay(req, fresh)
}

// replay re-issues the original request once with the given access token.
// The result is returned even when the replay itself fails; there is no
// further retry loop.
func (g *Guard) replay(req *http.Request, access string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		clone.Body = body
	}
	return g.base.RoundTrip(withBearer(clone, access))
}

// refresh collapses concurrent callers onto one refresh network call and
// hands back the shared outcome.
func (g *Guard) refresh(ctx context.Context) (string, error) {
	v, err, shared := g.group.Do(refreshKey, func() (any, error) {
		// The outcome is shared between callers, so the refresh call must not
		// die with whichever caller happened to start it.
		return g.doRefresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	if shared {
		g.log.Debug().Msg("joined in-flight token refresh")
	}
	return v.(string), nil
}

func (g *Guard) doRefresh(ctx context.Context) (string, error) {
	store := g.session.Store()
	refresh := store.Refresh()
	if refresh == "" {
		_ = g.session.Clear()
		telemetry.RecordTokenRefresh(ctx, "missing_credential")
		return "", ErrUnauthenticated
	}

	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.base.RoundTrip(req)
	if err != nil {
		_ = g.session.Clear()
		telemetry.RecordTokenRefresh(ctx, "error")
		g.log.Warn().Err(err).Msg("token refresh call failed, clearing session")
		return "", fmt.Errorf("%w: refresh call: %v", ErrUnauthenticated, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		_ = g.session.Clear()
		telemetry.RecordTokenRefresh(ctx, "rejected")
		g.log.Warn().Int("status", resp.StatusCode).Msg("token refresh rejected, clearing session")
		return "", fmt.Errorf("%w: refresh rejected with status %d", ErrUnauthenticated, resp.StatusCode)
	}

	var pair models.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil || pair.Access == "" {
		_ = g.session.Clear()
		telemetry.RecordTokenRefresh(ctx, "rejected")
		return "", fmt.Errorf("%w: malformed refresh response", ErrUnauthenticated)
	}

	if user, uerr := UserFromToken(pair.Access); uerr == nil {
		g.session.setUser(user)
	}
	// The credential write is the last step before waiting requests resume,
	// so no request can observe a half-updated pair.
	if err := store.Set(pair.Access, pair.Refresh); err != nil {
		return "", err
	}
	telemetry.RecordTokenRefresh(ctx, "ok")
	g.log.Debug().Msg("access token refreshed")
	return pair.Access, nil
}

// withBearer clones req with the bearer header set. Requests issued before
// login (empty access) go out without an Authorization header.
func withBearer(req *http.Request, access string) *http.Request {
	clone := req.Clone(req.Context())
	if access != "" {
		clone.Header.Set("Authorization", "Bearer "+access)
	} else {
		clone.Header.Del("Authorization")
	}
	return clone
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
