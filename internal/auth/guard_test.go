package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AweemRizwan/smm-optimize-sub001/pkg/models"
)

// signToken builds an HS256 access token carrying the API's custom claims.
func signToken(t *testing.T, userID int64, email string, role models.Role) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// apiServer simulates the backend: /api/auth/refresh/ plus one resource that
// accepts only the current access token.
type apiServer struct {
	mu           sync.Mutex
	validAccess  string
	validRefresh string
	refreshCalls  atomic.Int64
	refreshFail   bool
	nextAccess    string
	nextRefresh   string
	rejectRotated bool          // resource keeps rejecting the token refresh hands out
	gate          chan struct{} // when set, refresh blocks until closed
}

func (s *apiServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		s.refreshCalls.Add(1)
		if s.gate != nil {
			<-s.gate
		}
		var body struct {
			Refresh string `json:"refresh"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.refreshFail || body.Refresh != s.validRefresh {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"token invalid"}`))
			return
		}
		s.validRefresh = s.nextRefresh
		if !s.rejectRotated {
			s.validAccess = s.nextAccess
		}
		_ = json.NewEncoder(w).Encode(models.TokenPair{Access: s.nextAccess, Refresh: s.nextRefresh})
	})
	mux.HandleFunc("/api/resource/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		valid := "Bearer " + s.validAccess
		s.mu.Unlock()
		if r.Header.Get("Authorization") != valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Body != nil {
			_, _ = io.Copy(io.Discard, r.Body)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	return mux
}

func newGuardUnderTest(t *testing.T, srv *httptest.Server, access, refresh string) (*Guard, *Session) {
	t.Helper()
	store := &MemStore{}
	require.NoError(t, store.Set(access, refresh))
	sess := NewSession(store)
	guard := NewGuard(nil, sess, srv.URL+"/api/auth/refresh/", zerolog.Nop())
	return guard, sess
}

func TestGuard_passThroughOnSuccess(t *testing.T) {
	t.Parallel()
	api := &apiServer{validAccess: "good", validRefresh: "r1"}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	guard, _ := newGuardUnderTest(t, srv, "good", "r1")
	resp, err := guard.HTTPClient().Get(srv.URL + "/api/resource/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, api.refreshCalls.Load())
}

func TestGuard_refreshesAndReplaysOn401(t *testing.T) {
	t.Parallel()
	api := &apiServer{validAccess: "good", validRefresh: "r1", nextAccess: signTokenAccess(t), nextRefresh: "r2"}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	guard, sess := newGuardUnderTest(t, srv, "stale", "r1")
	resp, err := guard.HTTPClient().Get(srv.URL + "/api/resource/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, api.refreshCalls.Load())

	// Both credentials were rotated, and the user snapshot follows the token.
	assert.Equal(t, api.nextAccess, sess.Store().Access())
	assert.Equal(t, "r2", sess.Store().Refresh())
	user, ok := sess.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "pm@agency.test", user.Email)
	assert.Equal(t, models.RoleAccountManager, user.Role)
}

func signTokenAccess(t *testing.T) string {
	return signToken(t, 7, "pm@agency.test", models.RoleAccountManager)
}

func TestGuard_replaysPostBody(t *testing.T) {
	t.Parallel()
	api := &apiServer{validAccess: "good", validRefresh: "r1", nextAccess: signTokenAccess(t), nextRefresh: "r2"}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	guard, _ := newGuardUnderTest(t, srv, "stale", "r1")
	body := bytes.NewReader([]byte(`{"task_id":1}`))
	resp, err := guard.HTTPClient().Post(srv.URL+"/api/resource/", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, api.refreshCalls.Load())
}

func TestGuard_concurrent401sSingleRefresh(t *testing.T) {
	t.Parallel()
	gate := make(chan struct{})
	api := &apiServer{validAccess: "good", validRefresh: "r1", nextAccess: signTokenAccess(t), nextRefresh: "r2", gate: gate}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	guard, _ := newGuardUnderTest(t, srv, "stale", "r1")
	client := guard.HTTPClient()

	const n = 8
	var wg sync.WaitGroup
	statuses := make([]int, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Get(srv.URL + "/api/resource/")
			if err != nil {
				errs[i] = err
				return
			}
			defer resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}

	// Let every request hit the 401 and pile up on the pending refresh.
	time.Sleep(100 * time.Millisecond)
	close(gate)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i], "request %d", i)
		assert.Equal(t, http.StatusOK, statuses[i], "request %d", i)
	}
	assert.EqualValues(t, 1, api.refreshCalls.Load(), "concurrent 401s must collapse into one refresh call")
}

func TestGuard_refreshFailureClearsSession(t *testing.T) {
	t.Parallel()
	gate := make(chan struct{})
	api := &apiServer{validAccess: "good", validRefresh: "r1", refreshFail: true, gate: gate}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	guard, sess := newGuardUnderTest(t, srv, "stale", "r1")
	sess.setUser(models.User{UserID: 7, Email: "pm@agency.test"})
	client := guard.HTTPClient()

	const n = 2
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Get(srv.URL + "/api/resource/")
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(gate)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.Error(t, errs[i])
		assert.ErrorIs(t, errs[i], ErrUnauthenticated)
	}
	assert.Empty(t, sess.Store().Access())
	assert.Empty(t, sess.Store().Refresh())
	_, ok := sess.CurrentUser()
	assert.False(t, ok)
	assert.EqualValues(t, 1, api.refreshCalls.Load())
}

func TestGuard_missingRefreshCredential(t *testing.T) {
	t.Parallel()
	api := &apiServer{validAccess: "good", validRefresh: "r1"}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	guard, sess := newGuardUnderTest(t, srv, "stale", "")
	_, err := guard.HTTPClient().Get(srv.URL + "/api/resource/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	// No network call was made to the refresh endpoint.
	assert.EqualValues(t, 0, api.refreshCalls.Load())
	assert.Empty(t, sess.Store().Access())
}

func TestGuard_noSecondRefreshCycleOnReplay401(t *testing.T) {
	t.Parallel()
	// Refresh succeeds but hands out a token the resource still rejects; the
	// guard must return that 401 instead of refreshing forever.
	api := &apiServer{validAccess: "unreachable", validRefresh: "r1", nextAccess: "still-stale", nextRefresh: "r2", rejectRotated: true}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	guard, _ := newGuardUnderTest(t, srv, "stale", "r1")
	resp, err := guard.HTTPClient().Get(srv.URL + "/api/resource/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.EqualValues(t, 1, api.refreshCalls.Load())
}

func TestGuard_httpClientTimeout(t *testing.T) {
	t.Parallel()
	guard := NewGuard(nil, NewSession(&MemStore{}), "http://unused/api/auth/refresh/", zerolog.Nop())
	assert.Equal(t, models.DefaultRequestTimeoutMS*time.Millisecond, guard.HTTPClient().Timeout)
}

func TestGuard_withoutAuthSkipsRefresh(t *testing.T) {
	t.Parallel()
	api := &apiServer{validAccess: "good", validRefresh: "r1"}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	guard, _ := newGuardUnderTest(t, srv, "stale", "r1")
	req, err := http.NewRequestWithContext(WithoutAuth(context.Background()), http.MethodGet, srv.URL+"/api/resource/", nil)
	require.NoError(t, err)
	resp, err := guard.HTTPClient().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.EqualValues(t, 0, api.refreshCalls.Load())
}
