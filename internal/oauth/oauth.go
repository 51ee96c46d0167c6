// Package oauth completes a Discord sign-in. The authorization code comes
// back either through the rulekeeper://callback deep link or through a
// loopback HTTP listener started for the duration of the login.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Deep link parts.
const (
	Scheme       = "rulekeeper"
	CallbackHost = "callback"
)

var (
	// ErrMissingCode is returned for a callback without a code parameter.
	ErrMissingCode = errors.New("oauth: callback has no code")
	// ErrNotCallback is returned for a URI that is not a rulekeeper callback.
	ErrNotCallback = errors.New("oauth: not a callback uri")
)

// ParseCallbackURL extracts the authorization code from a
// rulekeeper://callback?code=... deep link.
func ParseCallbackURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("oauth: parse callback: %w", err)
	}
	if !strings.EqualFold(u.Scheme, Scheme) || !strings.EqualFold(u.Host, CallbackHost) {
		return "", ErrNotCallback
	}
	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", providerError(e, q.Get("error_description"))
	}
	code := q.Get("code")
	if code == "" {
		return "", ErrMissingCode
	}
	return code, nil
}

func providerError(code, desc string) error {
	if desc != "" {
		return fmt.Errorf("oauth: %s: %s", code, desc)
	}
	return fmt.Errorf("oauth: %s", code)
}

// LoginURL is the page that starts the Discord flow and redirects back to
// redirectURI with a code and the given state.
func LoginURL(apiBase, redirectURI, state string) (string, error) {
	base, err := url.Parse(strings.TrimRight(apiBase, "/") + "/auth/discord/login")
	if err != nil {
		return "", fmt.Errorf("oauth: login url: %w", err)
	}
	q := base.Query()
	q.Set("redirect_uri", redirectURI)
	if state != "" {
		q.Set("state", state)
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}

type callbackResult struct {
	code string
	err  error
}

// Listener receives one OAuth redirect on 127.0.0.1.
type Listener struct {
	ln     net.Listener
	srv    *http.Server
	state  string
	logger *zap.Logger

	result chan callbackResult
	once   sync.Once
}

// Listen starts a loopback listener on a random port.
func Listen(logger *zap.Logger) (*Listener, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("oauth: listen: %w", err)
	}
	l := &Listener{
		ln:     ln,
		state:  uuid.NewString(),
		logger: logger.Named("oauth"),
		result: make(chan callbackResult, 1),
	}

	r := mux.NewRouter()
	r.HandleFunc("/callback", l.handleCallback).Methods("GET")
	l.srv = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.deliver(callbackResult{err: fmt.Errorf("oauth: serve: %w", err)})
		}
	}()
	return l, nil
}

// RedirectURI is the callback address to hand to the login page.
func (l *Listener) RedirectURI() string {
	return "http://" + l.ln.Addr().String() + "/callback"
}

// State is the value the redirect must echo back.
func (l *Listener) State() string {
	return l.state
}

func (l *Listener) deliver(r callbackResult) {
	l.once.Do(func() { l.result <- r })
}

func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != l.state {
		l.logger.Warn("callback with wrong state ignored")
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}
	if e := q.Get("error"); e != "" {
		l.deliver(callbackResult{err: providerError(e, q.Get("error_description"))})
		http.Error(w, "Sign-in was cancelled. You can close this tab.", http.StatusOK)
		return
	}
	code := q.Get("code")
	if code == "" {
		l.logger.Warn("callback without code")
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}
	l.deliver(callbackResult{code: code})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Signed in to RuleKeeper. You can close this tab.\n")) //nolint:errcheck
}

// Wait blocks until a code arrives, the provider reports an error, or ctx
// ends.
func (l *Listener) Wait(ctx context.Context) (string, error) {
	select {
	case r := <-l.result:
		return r.code, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the listener.
func (l *Listener) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return l.srv.Shutdown(ctx)
}
