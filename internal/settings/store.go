// Package settings is the durable, observable home of the base URL and the
// signed-in session. It also keeps an in-memory mirror of the access token
// for request signing, which cannot wait on a storage read.
package settings

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/naveenspark/rulekeeper/pkg/client"
	"github.com/naveenspark/rulekeeper/pkg/domain"
	"github.com/naveenspark/rulekeeper/pkg/lenient"
)

// Persisted keys.
const (
	KeyBaseURL      = "api_base_url"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
	KeyUsername     = "username"
	KeyIsAdmin      = "is_admin"
)

// DefaultBaseURL is used while no base URL has been saved.
const DefaultBaseURL = client.DefaultBaseURL

const topicChanged = "settings:changed"

// mirrorLoadTimeout bounds one background mirror refresh.
const mirrorLoadTimeout = 5 * time.Second

var sessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUserID, KeyUsername, KeyIsAdmin}

// Entry is an optional string setting.
type Entry struct {
	Value   string
	Present bool
}

// Store wraps a Backend with change notification and the token mirror.
type Store struct {
	backend Backend
	bus     evbus.Bus
	logger  *zap.Logger

	// writeMu orders durable writes so the mirror and the backend agree on
	// which write was last.
	writeMu sync.Mutex

	mirrorMu      sync.RWMutex
	mirror        string
	mirrorVersion uint64

	watchMu  sync.Mutex
	watchers map[*watcher]struct{}

	done      chan struct{}
	closeOnce sync.Once
}

type watcher struct {
	key    string
	notify chan struct{}
}

// Open seeds the token mirror from backend and starts the background
// subscriber that keeps it current. The Store owns backend from here on.
func Open(ctx context.Context, backend Backend, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		backend:  backend,
		bus:      evbus.New(),
		logger:   logger.Named("settings"),
		watchers: make(map[*watcher]struct{}),
		done:     make(chan struct{}),
	}

	tok, _, err := backend.Load(ctx, KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("settings.Open: %w", err)
	}
	s.mirror = tok

	if err := s.bus.SubscribeAsync(topicChanged, s.refreshMirror, true); err != nil {
		return nil, fmt.Errorf("settings.Open: subscribe mirror: %w", err)
	}
	if err := s.bus.Subscribe(topicChanged, s.fanout); err != nil {
		return nil, fmt.Errorf("settings.Open: subscribe watchers: %w", err)
	}
	return s, nil
}

// Close stops the background subscriber, ends every watch stream and
// closes the backend.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.bus.Unsubscribe(topicChanged, s.fanout)       //nolint:errcheck
		s.bus.Unsubscribe(topicChanged, s.refreshMirror) //nolint:errcheck
		s.bus.WaitAsync()
		err = s.backend.Close()
	})
	return err
}

// refreshMirror reloads the access token after a change. A result is
// dropped if a direct write moved the mirror while the load was running.
func (s *Store) refreshMirror(keys []string) {
	if !slices.Contains(keys, KeyAccessToken) {
		return
	}
	s.mirrorMu.RLock()
	version := s.mirrorVersion
	s.mirrorMu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), mirrorLoadTimeout)
	defer cancel()
	tok, _, err := s.backend.Load(ctx, KeyAccessToken)
	if err != nil {
		s.logger.Warn("mirror refresh failed", zap.Error(err))
		return
	}

	s.mirrorMu.Lock()
	defer s.mirrorMu.Unlock()
	if s.mirrorVersion != version {
		return
	}
	s.mirror = tok
}

func (s *Store) setMirror(tok string) {
	s.mirrorMu.Lock()
	s.mirror = tok
	s.mirrorVersion++
	s.mirrorMu.Unlock()
}

// CachedAccessToken returns the mirrored access token without touching
// storage. It is "" when signed out. Use AccessToken for the durable value.
func (s *Store) CachedAccessToken() string {
	s.mirrorMu.RLock()
	defer s.mirrorMu.RUnlock()
	return s.mirror
}

// fanout runs synchronously on publish and must not block.
func (s *Store) fanout(keys []string) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for w := range s.watchers {
		if !slices.Contains(keys, w.key) {
			continue
		}
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
}

func (s *Store) apply(ctx context.Context, b Batch) error {
	err := s.backend.Apply(ctx, b)
	// Publish even on failure so the mirror re-syncs with what was stored.
	s.bus.Publish(topicChanged, b.keys())
	return err
}

// SetBaseURL saves the API root. An empty url restores the default.
func (s *Store) SetBaseURL(ctx context.Context, url string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	url = strings.TrimSpace(url)
	b := Batch{Set: map[string]string{KeyBaseURL: url}}
	if url == "" {
		b = Batch{Delete: []string{KeyBaseURL}}
	}
	if err := s.apply(ctx, b); err != nil {
		return fmt.Errorf("settings.SetBaseURL: %w", err)
	}
	return nil
}

// SaveTokens stores both tokens. The mirror holds access before the
// durable write starts.
func (s *Store) SaveTokens(ctx context.Context, access, refresh string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.setMirror(access)
	err := s.apply(ctx, Batch{Set: map[string]string{
		KeyAccessToken:  access,
		KeyRefreshToken: refresh,
	}})
	if err != nil {
		return fmt.Errorf("settings.SaveTokens: %w", err)
	}
	return nil
}

// SaveUserIdentity stores the signed-in user's id, name and admin flag.
func (s *Store) SaveUserIdentity(ctx context.Context, userID, username string, isAdmin bool) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.apply(ctx, Batch{Set: map[string]string{
		KeyUserID:   userID,
		KeyUsername: username,
		KeyIsAdmin:  strconv.FormatBool(isAdmin),
	}})
	if err != nil {
		return fmt.Errorf("settings.SaveUserIdentity: %w", err)
	}
	return nil
}

// ClearSession removes the tokens and user identity. The base URL stays.
func (s *Store) ClearSession(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.setMirror("")
	if err := s.apply(ctx, Batch{Delete: sessionKeys}); err != nil {
		return fmt.Errorf("settings.ClearSession: %w", err)
	}
	return nil
}

// ClearAll removes every key, base URL included.
func (s *Store) ClearAll(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.setMirror("")
	keys := append([]string{KeyBaseURL}, sessionKeys...)
	if err := s.apply(ctx, Batch{Delete: keys}); err != nil {
		return fmt.Errorf("settings.ClearAll: %w", err)
	}
	return nil
}

// BaseURL returns the saved API root, or DefaultBaseURL.
func (s *Store) BaseURL(ctx context.Context) (string, error) {
	v, ok, err := s.backend.Load(ctx, KeyBaseURL)
	if err != nil {
		return "", fmt.Errorf("settings.BaseURL: %w", err)
	}
	return baseURLValue(v, ok), nil
}

// AccessToken reads the durable access token.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	v, _, err := s.backend.Load(ctx, KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("settings.AccessToken: %w", err)
	}
	return v, nil
}

// RefreshToken reads the durable refresh token.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	v, _, err := s.backend.Load(ctx, KeyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("settings.RefreshToken: %w", err)
	}
	return v, nil
}

// Session reads every session key.
func (s *Store) Session(ctx context.Context) (domain.Session, error) {
	var sess domain.Session
	fields := []struct {
		key string
		dst *string
	}{
		{KeyAccessToken, &sess.AccessToken},
		{KeyRefreshToken, &sess.RefreshToken},
		{KeyUserID, &sess.UserID},
		{KeyUsername, &sess.Username},
	}
	for _, f := range fields {
		v, _, err := s.backend.Load(ctx, f.key)
		if err != nil {
			return domain.Session{}, fmt.Errorf("settings.Session: %w", err)
		}
		*f.dst = v
	}
	admin, _, err := s.backend.Load(ctx, KeyIsAdmin)
	if err != nil {
		return domain.Session{}, fmt.Errorf("settings.Session: %w", err)
	}
	sess.IsAdmin = lenient.BoolValue(admin)
	return sess, nil
}

// WatchBaseURL streams the API root, default applied.
func (s *Store) WatchBaseURL(ctx context.Context) <-chan string {
	return watchKey(ctx, s, KeyBaseURL, baseURLValue)
}

// WatchAccessToken streams the durable access token.
func (s *Store) WatchAccessToken(ctx context.Context) <-chan Entry {
	return watchKey(ctx, s, KeyAccessToken, entryValue)
}

// WatchRefreshToken streams the refresh token.
func (s *Store) WatchRefreshToken(ctx context.Context) <-chan Entry {
	return watchKey(ctx, s, KeyRefreshToken, entryValue)
}

// WatchUserID streams the signed-in user's id.
func (s *Store) WatchUserID(ctx context.Context) <-chan Entry {
	return watchKey(ctx, s, KeyUserID, entryValue)
}

// WatchUsername streams the signed-in user's name.
func (s *Store) WatchUsername(ctx context.Context) <-chan Entry {
	return watchKey(ctx, s, KeyUsername, entryValue)
}

// WatchIsAdmin streams the admin flag, false when absent.
func (s *Store) WatchIsAdmin(ctx context.Context) <-chan bool {
	return watchKey(ctx, s, KeyIsAdmin, func(v string, _ bool) bool {
		return lenient.BoolValue(v)
	})
}

func baseURLValue(v string, ok bool) string {
	if !ok || v == "" {
		return DefaultBaseURL
	}
	return v
}

func entryValue(v string, ok bool) Entry {
	return Entry{Value: v, Present: ok}
}

// watchKey emits the current value of key, then each distinct new value.
// The channel holds one value and a slow reader only sees the latest.
// It is closed when ctx ends or the store closes.
func watchKey[T comparable](ctx context.Context, s *Store, key string, convert func(string, bool) T) <-chan T {
	out := make(chan T, 1)
	w := &watcher{key: key, notify: make(chan struct{}, 1)}

	s.watchMu.Lock()
	s.watchers[w] = struct{}{}
	s.watchMu.Unlock()

	go func() {
		defer close(out)
		defer func() {
			s.watchMu.Lock()
			delete(s.watchers, w)
			s.watchMu.Unlock()
		}()

		var last T
		sent := false
		for {
			v, ok, err := s.backend.Load(ctx, key)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return
				}
				s.logger.Warn("watch load failed", zap.String("key", key), zap.Error(err))
			case !sent || convert(v, ok) != last:
				last = convert(v, ok)
				sent = true
				select {
				case <-out:
				default:
				}
				out <- last
			}

			select {
			case <-w.notify:
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}()
	return out
}
