package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/naveenspark/rulekeeper/internal/settings"
	"github.com/naveenspark/rulekeeper/pkg/client"
)

type fixture struct {
	store   *settings.Store
	backend settings.Backend
	holder  *client.Holder
	mgr     *Manager
}

func newFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()
	return newFixtureWithBackend(t, handler, settings.NewMemory())
}

func newFixtureWithBackend(t *testing.T, handler http.Handler, backend settings.Backend) *fixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := settings.Open(context.Background(), backend, zap.NewNop())
	if err != nil {
		t.Fatalf("settings.Open error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	holder := client.NewHolder(func() *client.Client {
		return client.New(srv.URL, store.CachedAccessToken, client.WithTimeout(time.Second))
	})
	return &fixture{
		store:   store,
		backend: backend,
		holder:  holder,
		mgr:     NewManager(store, holder, zap.NewNop()),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestLoginPersistsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		if body["username"] != "mod" || body["password"] != "hunter2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		w.Write([]byte(`{"access_token":"acc","refresh_token":"ref","user":{"id":"42","username":"mod","is_admin":1}}`)) //nolint:errcheck
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "42", "username": "mod"})
	})
	f := newFixture(t, mux)
	ctx := context.Background()

	res, err := f.mgr.Login(ctx, "mod", "hunter2")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.MFARequired {
		t.Error("MFARequired = true")
	}
	if res.User == nil || res.User.ID != "42" {
		t.Errorf("User = %+v", res.User)
	}

	sess, err := f.store.Session(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sess.AccessToken != "acc" || sess.RefreshToken != "ref" {
		t.Errorf("tokens = %q, %q", sess.AccessToken, sess.RefreshToken)
	}
	if sess.UserID != "42" || sess.Username != "mod" || !sess.IsAdmin {
		t.Errorf("identity = %+v", sess)
	}
	if got := f.holder.Generation(); got != 1 {
		t.Errorf("Generation = %d, want 1", got)
	}

	if _, err := f.holder.Current().Auth.Me(ctx); err != nil {
		t.Errorf("Me after login error: %v", err)
	}
	if ok, _ := f.mgr.IsAuthenticated(ctx); !ok {
		t.Error("IsAuthenticated = false after login")
	}
}

func TestLoginRejected(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}))

	_, err := f.mgr.Login(context.Background(), "mod", "wrong")
	var sessErr *Error
	if !errors.As(err, &sessErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if sessErr.Message != "invalid credentials" {
		t.Errorf("Message = %q, want server message", sessErr.Message)
	}
	if !client.IsStatus(err, http.StatusUnauthorized) {
		t.Error("IsStatus(err, 401) = false")
	}
	if f.holder.Generation() != 0 {
		t.Error("client rebuilt after failed login")
	}
}

func TestLoginMFARequired(t *testing.T) {
	var verified atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"mfa_required":"true","mfa_token":"challenge","message":"enter your code"}`)) //nolint:errcheck
	})
	mux.HandleFunc("POST /auth/mfa/verify", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		if body["mfa_token"] != "challenge" || body["code"] != "123456" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bad code"})
			return
		}
		verified.Store(true)
		w.Write([]byte(`{"access_token":"acc","refresh_token":"ref"}`)) //nolint:errcheck
	})
	f := newFixture(t, mux)
	ctx := context.Background()

	res, err := f.mgr.Login(ctx, "mod", "hunter2")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if !res.MFARequired || res.MFAToken != "challenge" || res.Message != "enter your code" {
		t.Errorf("Result = %+v", res)
	}
	for _, key := range []string{settings.KeyAccessToken, settings.KeyRefreshToken} {
		if _, ok, _ := f.backend.Load(ctx, key); ok {
			t.Errorf("%s persisted before MFA", key)
		}
	}
	if f.holder.Generation() != 0 {
		t.Errorf("Generation = %d, want 0", f.holder.Generation())
	}

	if _, err := f.mgr.VerifyMFA(ctx, res.MFAToken, "123456"); err != nil {
		t.Fatalf("VerifyMFA error: %v", err)
	}
	if !verified.Load() {
		t.Error("verify endpoint not called")
	}
	if got := f.store.CachedAccessToken(); got != "acc" {
		t.Errorf("CachedAccessToken = %q, want acc", got)
	}
	if f.holder.Generation() != 1 {
		t.Errorf("Generation = %d, want 1", f.holder.Generation())
	}
}

func TestLoginWithoutTokens(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"access_token":"only-access"}`)) //nolint:errcheck
	}))

	_, err := f.mgr.Login(context.Background(), "mod", "pw")
	var sessErr *Error
	if !errors.As(err, &sessErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if got := f.store.CachedAccessToken(); got != "" {
		t.Errorf("CachedAccessToken = %q, want empty", got)
	}
	if f.holder.Generation() != 0 {
		t.Error("client rebuilt without tokens")
	}
}

func TestExchangeOAuthCode(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/oauth/exchange" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		if body["code"] != "abc" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid code"})
			return
		}
		w.Write([]byte(`{"access_token":"acc","refresh_token":"ref","user":{"id":"7","username":"owner","is_admin":false}}`)) //nolint:errcheck
	}))
	ctx := context.Background()

	if _, err := f.mgr.ExchangeOAuthCode(ctx, ""); err == nil {
		t.Error("expected error for empty code")
	}
	if _, err := f.mgr.ExchangeOAuthCode(ctx, "abc"); err != nil {
		t.Fatalf("ExchangeOAuthCode error: %v", err)
	}
	sess, _ := f.store.Session(ctx)
	if sess.UserID != "7" || sess.IsAdmin {
		t.Errorf("Session = %+v", sess)
	}
}

func TestRefreshKeepsRefreshToken(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		wantRefresh string
	}{
		{"no new refresh token", `{"access_token":"acc2"}`, "ref1"},
		{"rotated refresh token", `{"access_token":"acc2","refresh_token":"ref2"}`, "ref2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
				if body["refresh_token"] != "ref1" {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bad refresh token"})
					return
				}
				w.Write([]byte(tt.response)) //nolint:errcheck
			}))
			ctx := context.Background()
			if err := f.store.SaveTokens(ctx, "acc1", "ref1"); err != nil {
				t.Fatal(err)
			}

			if err := f.mgr.Refresh(ctx, ""); err != nil {
				t.Fatalf("Refresh error: %v", err)
			}
			sess, _ := f.store.Session(ctx)
			if sess.AccessToken != "acc2" {
				t.Errorf("access = %q, want acc2", sess.AccessToken)
			}
			if sess.RefreshToken != tt.wantRefresh {
				t.Errorf("refresh = %q, want %q", sess.RefreshToken, tt.wantRefresh)
			}
			if f.holder.Generation() != 1 {
				t.Errorf("Generation = %d, want 1", f.holder.Generation())
			}
		})
	}
}

func TestRefreshFailureKeepsSession(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "refresh token revoked"})
	}))
	ctx := context.Background()
	if err := f.store.SaveTokens(ctx, "acc1", "ref1"); err != nil {
		t.Fatal(err)
	}

	err := f.mgr.Refresh(ctx, "")
	var sessErr *Error
	if !errors.As(err, &sessErr) || sessErr.Message != "refresh token revoked" {
		t.Fatalf("error = %v", err)
	}
	sess, _ := f.store.Session(ctx)
	if sess.AccessToken != "acc1" || sess.RefreshToken != "ref1" {
		t.Errorf("session changed after failed refresh: %+v", sess)
	}
}

func TestRefreshSignedOut(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())
	err := f.mgr.Refresh(context.Background(), "")
	if !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("error = %v, want ErrNoRefreshToken", err)
	}
}

func TestRefreshSharesInFlightCall(t *testing.T) {
	var calls atomic.Int32
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		arrived <- struct{}{}
		<-release
		w.Write([]byte(`{"access_token":"acc2"}`)) //nolint:errcheck
	}))
	ctx := context.Background()
	if err := f.store.SaveTokens(ctx, "acc1", "ref1"); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = f.mgr.Refresh(ctx, "")
	}()
	<-arrived

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = f.mgr.Refresh(ctx, "")
	}()
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Refresh %d error: %v", i, err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d refresh calls, want 1", n)
	}
}

func TestRefreshSurvivesCancelledCaller(t *testing.T) {
	var calls atomic.Int32
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		arrived <- struct{}{}
		<-release
		w.Write([]byte(`{"access_token":"acc2","refresh_token":"ref2"}`)) //nolint:errcheck
	}))
	bg := context.Background()
	if err := f.store.SaveTokens(bg, "acc1", "ref1"); err != nil {
		t.Fatal(err)
	}

	first, cancelFirst := context.WithCancel(bg)
	firstErr := make(chan error, 1)
	go func() { firstErr <- f.mgr.Refresh(first, "") }()
	<-arrived

	secondErr := make(chan error, 1)
	go func() { secondErr <- f.mgr.Refresh(bg, "") }()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	err := <-firstErr
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller error = %v, want context.Canceled", err)
	}
	var sessErr *Error
	if !errors.As(err, &sessErr) || sessErr.Op != "Refresh" {
		t.Errorf("cancelled caller error = %v, want *Error from Refresh", err)
	}

	close(release)
	if err := <-secondErr; err != nil {
		t.Fatalf("waiting caller error: %v", err)
	}
	sess, _ := f.store.Session(bg)
	if sess.AccessToken != "acc2" || sess.RefreshToken != "ref2" {
		t.Errorf("tokens = %q, %q, want acc2, ref2", sess.AccessToken, sess.RefreshToken)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d refresh calls, want 1", n)
	}
	if f.holder.Generation() != 1 {
		t.Errorf("Generation = %d, want 1", f.holder.Generation())
	}
}

// failTokenWrites rejects any batch that writes the access token.
type failTokenWrites struct {
	settings.Backend
}

var errDiskFull = errors.New("disk full")

func (b failTokenWrites) Apply(ctx context.Context, batch settings.Batch) error {
	if _, ok := batch.Set[settings.KeyAccessToken]; ok {
		return errDiskFull
	}
	return b.Backend.Apply(ctx, batch)
}

func TestLoginTokenWriteFailureLeavesNoSession(t *testing.T) {
	f := newFixtureWithBackend(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"access_token":"acc","refresh_token":"ref","user":{"id":"42","username":"mod","is_admin":true}}`)) //nolint:errcheck
	}), failTokenWrites{settings.NewMemory()})
	ctx := context.Background()

	_, err := f.mgr.Login(ctx, "mod", "hunter2")
	var sessErr *Error
	if !errors.As(err, &sessErr) || sessErr.Message != "could not save session" {
		t.Fatalf("error = %v, want could not save session", err)
	}
	if !errors.Is(err, errDiskFull) {
		t.Errorf("error = %v, want backend error in chain", err)
	}

	sess, err := f.store.Session(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Authenticated() || sess.UserID != "" || sess.Username != "" || sess.IsAdmin {
		t.Errorf("partial session left behind: %+v", sess)
	}
	if ok, _ := f.mgr.IsAuthenticated(ctx); ok {
		t.Error("IsAuthenticated = true after failed save")
	}
	if got := f.store.CachedAccessToken(); got != "" {
		t.Errorf("CachedAccessToken = %q, want empty", got)
	}
}

func TestLogoutAlwaysClears(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
	}{
		{
			name: "remote succeeds",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
		},
		{
			name: "remote fails",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
			},
		},
		{
			name: "remote times out",
			handler: func(_ http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(3 * time.Second):
				case <-r.Context().Done():
				}
			},
			timeout: 50 * time.Millisecond,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sawToken atomic.Value
			f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
				sawToken.Store(body["refresh_token"])
				tt.handler(w, r)
			}))
			bg := context.Background()
			if err := f.store.SaveTokens(bg, "acc", "ref"); err != nil {
				t.Fatal(err)
			}
			if err := f.store.SaveUserIdentity(bg, "1", "mod", true); err != nil {
				t.Fatal(err)
			}

			ctx := bg
			if tt.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(bg, tt.timeout)
				defer cancel()
			}
			if err := f.mgr.Logout(ctx); err != nil {
				t.Fatalf("Logout error: %v", err)
			}

			if got, _ := sawToken.Load().(string); got != "ref" {
				t.Errorf("remote logout refresh_token = %q, want ref", got)
			}
			if got := f.store.CachedAccessToken(); got != "" {
				t.Errorf("CachedAccessToken = %q, want empty", got)
			}
			sess, _ := f.store.Session(bg)
			if sess.Authenticated() || sess.UserID != "" || sess.IsAdmin {
				t.Errorf("session not cleared: %+v", sess)
			}
			if f.holder.Generation() != 1 {
				t.Errorf("Generation = %d, want 1", f.holder.Generation())
			}
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	}).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatal(err)
	}
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "42"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		token  string
		wantOK bool
	}{
		{"jwt with exp", signed, true},
		{"jwt without exp", noExp, false},
		{"opaque", "not-a-jwt", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TokenExpiry(tt.token)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(exp) {
				t.Errorf("exp = %v, want %v", got, exp)
			}
		})
	}
}

func TestAccessTokenExpiryFromStore(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())
	ctx := context.Background()
	if _, ok, err := f.mgr.AccessTokenExpiry(ctx); err != nil || ok {
		t.Fatalf("signed out: ok %v err %v", ok, err)
	}

	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	if err := f.store.SaveTokens(ctx, tok, "ref"); err != nil {
		t.Fatal(err)
	}
	got, ok, err := f.mgr.AccessTokenExpiry(ctx)
	if err != nil || !ok || !got.Equal(exp) {
		t.Errorf("AccessTokenExpiry = %v, %v, %v; want %v", got, ok, err, exp)
	}
}
