package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/rulekeeper/internal/session"
	"github.com/naveenspark/rulekeeper/pkg/client"
	"github.com/naveenspark/rulekeeper/pkg/domain"
)

type fakeAuth struct {
	mu         sync.Mutex
	loginRes   *session.Result
	loginErr   error
	mfaRes     *session.Result
	refreshErr error

	logins    []string
	mfaCodes  []string
	refreshes int
	logouts   int
}

func (f *fakeAuth) Login(_ context.Context, username, _ string) (*session.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, username)
	return f.loginRes, f.loginErr
}

func (f *fakeAuth) VerifyMFA(_ context.Context, _, code string) (*session.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mfaCodes = append(f.mfaCodes, code)
	return f.mfaRes, nil
}

func (f *fakeAuth) Refresh(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func (f *fakeAuth) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return nil
}

type staticClients struct{ c *client.Client }

func (s staticClients) Current() *client.Client { return s.c }

func newTestApp(auth Authenticator, signedIn bool) App {
	a := NewApp(auth, nil, signedIn, "", "v0.1.0")
	a.width = 80
	a.height = 30
	return a
}

func typeText(t *testing.T, a App, text string) App {
	t.Helper()
	for _, r := range text {
		m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		a = m.(App)
	}
	return a
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewAppStartsOnLoginWhenSignedOut(t *testing.T) {
	a := newTestApp(&fakeAuth{}, false)
	if a.view != viewLogin {
		t.Fatalf("view = %d, want viewLogin", a.view)
	}
	if !strings.Contains(a.View(), "Sign in") {
		t.Error("login view missing heading")
	}
}

func TestNewAppStartsOnGuildsWhenSignedIn(t *testing.T) {
	a := newTestApp(&fakeAuth{}, true)
	if a.view != viewGuilds {
		t.Fatalf("view = %d, want viewGuilds", a.view)
	}
	if !a.guilds.loading {
		t.Error("guild list should start loading")
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	auth := &fakeAuth{}
	a := newTestApp(auth, false)
	a.login.focus = fieldPassword
	m, cmd := a.Update(key("enter"))
	a = m.(App)
	if cmd != nil {
		t.Error("expected no command for empty form")
	}
	if a.login.err == "" {
		t.Error("expected a validation message")
	}
}

func TestLoginFlowSwitchesToGuilds(t *testing.T) {
	auth := &fakeAuth{loginRes: &session.Result{User: &domain.User{ID: "1", Username: "mod"}}}
	a := newTestApp(auth, false)

	a = typeText(t, a, "mod")
	m, _ := a.Update(key("enter")) // moves to password
	a = m.(App)
	if a.login.focus != fieldPassword {
		t.Fatalf("focus = %d, want password", a.login.focus)
	}
	a = typeText(t, a, "pw")
	m, cmd := a.Update(key("enter"))
	a = m.(App)
	if cmd == nil || !a.login.busy {
		t.Fatal("expected a login command")
	}

	m, _ = a.Update(cmd())
	a = m.(App)
	if a.view != viewGuilds {
		t.Fatalf("view = %d, want viewGuilds", a.view)
	}
	if a.username != "mod" {
		t.Errorf("username = %q, want mod", a.username)
	}
	if len(auth.logins) != 1 || auth.logins[0] != "mod" {
		t.Errorf("logins = %v", auth.logins)
	}
}

func TestLoginFailureShowsMessage(t *testing.T) {
	auth := &fakeAuth{loginErr: &session.Error{Op: "Login", Message: "Invalid credentials"}}
	a := newTestApp(auth, false)
	a.login.username = "mod"
	a.login.password = "wrong"
	a.login.focus = fieldPassword

	m, cmd := a.Update(key("enter"))
	a = m.(App)
	m, _ = a.Update(cmd())
	a = m.(App)

	if a.view != viewLogin {
		t.Fatalf("view = %d, want viewLogin", a.view)
	}
	if a.login.err != "Invalid credentials" {
		t.Errorf("err = %q", a.login.err)
	}
	if a.login.password != "" {
		t.Error("password should be cleared after a failed attempt")
	}
}

func TestLoginMFAStep(t *testing.T) {
	auth := &fakeAuth{
		loginRes: &session.Result{MFARequired: true, MFAToken: "mfa-1", Message: "Enter your code"},
		mfaRes:   &session.Result{User: &domain.User{Username: "mod"}},
	}
	a := newTestApp(auth, false)
	a.login.username = "mod"
	a.login.password = "pw"
	a.login.focus = fieldPassword

	m, cmd := a.Update(key("enter"))
	a = m.(App)
	m, _ = a.Update(cmd())
	a = m.(App)
	if !a.login.mfaStep() {
		t.Fatal("expected MFA step")
	}
	if !strings.Contains(a.View(), "Enter your code") {
		t.Error("MFA notice not rendered")
	}

	a = typeText(t, a, "123456")
	m, cmd = a.Update(key("enter"))
	a = m.(App)
	if cmd == nil {
		t.Fatal("expected verify command")
	}
	m, _ = a.Update(cmd())
	a = m.(App)
	if a.view != viewGuilds {
		t.Errorf("view = %d, want viewGuilds", a.view)
	}
	if len(auth.mfaCodes) != 1 || auth.mfaCodes[0] != "123456" {
		t.Errorf("mfa codes = %v", auth.mfaCodes)
	}
}

func TestLoginMFAEscGoesBack(t *testing.T) {
	a := newTestApp(&fakeAuth{}, false)
	a.login.mfaToken = "mfa-1"
	a.login.focus = fieldCode
	m, _ := a.Update(key("esc"))
	a = m.(App)
	if a.login.mfaStep() {
		t.Error("esc should leave the MFA step")
	}
	if a.login.focus != fieldUsername {
		t.Errorf("focus = %d, want username", a.login.focus)
	}
}

func TestQuitKeyIgnoredOnLogin(t *testing.T) {
	a := newTestApp(&fakeAuth{}, false)
	m, _ := a.Update(key("q"))
	a = m.(App)
	if a.login.username != "q" {
		t.Errorf("username = %q, want q typed into the form", a.login.username)
	}
}

func TestCtrlCQuitsEverywhere(t *testing.T) {
	for _, signedIn := range []bool{false, true} {
		a := newTestApp(&fakeAuth{}, signedIn)
		_, cmd := a.Update(key("ctrl+c"))
		if cmd == nil {
			t.Fatalf("signedIn=%v: expected quit command", signedIn)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("signedIn=%v: expected tea.QuitMsg", signedIn)
		}
	}
}

func TestGuildsLoadedAndNavigation(t *testing.T) {
	a := newTestApp(&fakeAuth{}, true)
	m, _ := a.Update(guildsLoadedMsg{guilds: []domain.Guild{
		{ID: "1", Name: "Alpha", MemberCount: 10, BotPresent: true},
		{ID: "2", Name: "Beta", MemberCount: 5},
		{ID: "3", Name: "Gamma", Premium: true, BotPresent: true},
	}})
	a = m.(App)
	if a.guilds.loading {
		t.Error("loading should be false after load")
	}

	view := a.View()
	for _, want := range []string{"Alpha", "Beta", "bot not installed", "premium"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = a.Update(key("j"))
	a = m.(App)
	if a.guilds.cursor != 1 {
		t.Errorf("cursor after j = %d, want 1", a.guilds.cursor)
	}
	m, _ = a.Update(key("G"))
	a = m.(App)
	if a.guilds.cursor != 2 {
		t.Errorf("cursor after G = %d, want 2", a.guilds.cursor)
	}
	m, _ = a.Update(key("j"))
	a = m.(App)
	if a.guilds.cursor != 2 {
		t.Errorf("cursor past end = %d, want 2", a.guilds.cursor)
	}
	m, _ = a.Update(key("g"))
	a = m.(App)
	if a.guilds.cursor != 0 {
		t.Errorf("cursor after g = %d, want 0", a.guilds.cursor)
	}
}

func TestGuildsEmptyState(t *testing.T) {
	a := newTestApp(&fakeAuth{}, true)
	m, _ := a.Update(guildsLoadedMsg{})
	a = m.(App)
	if !strings.Contains(a.View(), "No servers yet") {
		t.Error("empty state not rendered")
	}
}

func TestOpenGuildAndBack(t *testing.T) {
	a := newTestApp(&fakeAuth{}, true)
	m, _ := a.Update(guildsLoadedMsg{guilds: []domain.Guild{{ID: "42", Name: "Alpha"}}})
	a = m.(App)

	m, cmd := a.Update(key("enter"))
	a = m.(App)
	if cmd == nil {
		t.Fatal("enter should emit openGuildMsg")
	}
	msg, ok := cmd().(openGuildMsg)
	if !ok || msg.guild.ID != "42" {
		t.Fatalf("msg = %#v", msg)
	}

	m, _ = a.Update(msg)
	a = m.(App)
	if a.view != viewDetail {
		t.Fatalf("view = %d, want viewDetail", a.view)
	}

	m, _ = a.Update(guildDetailMsg{
		guildID: "42",
		config:  &domain.GuildConfig{},
		stats:   &domain.GuildStats{Members: 12},
		cases:   []domain.ModCase{{ID: 7, Username: "spammer", Action: "ban", Reason: "spam"}},
	})
	a = m.(App)
	if !strings.Contains(a.View(), "spammer") {
		t.Error("detail view missing recent case")
	}

	m, _ = a.Update(key("esc"))
	a = m.(App)
	if a.view != viewGuilds {
		t.Errorf("view after esc = %d, want viewGuilds", a.view)
	}
}

func TestUnauthorizedTriggersOneRefresh(t *testing.T) {
	auth := &fakeAuth{}
	a := newTestApp(auth, true)
	expired := &client.HTTPError{StatusCode: http.StatusUnauthorized, Message: "expired"}

	m, cmd := a.Update(guildsLoadedMsg{err: expired})
	a = m.(App)
	if cmd == nil {
		t.Fatal("expected a refresh command")
	}
	done, ok := cmd().(refreshDoneMsg)
	if !ok {
		t.Fatalf("got %T, want refreshDoneMsg", cmd())
	}
	if done.retry != viewGuilds {
		t.Errorf("retry = %d, want viewGuilds", done.retry)
	}
	if auth.refreshes < 1 {
		t.Error("Refresh not called")
	}

	// A second 401 after the refresh is shown rather than retried.
	m, cmd = a.Update(guildsLoadedMsg{err: expired})
	a = m.(App)
	if cmd != nil {
		t.Error("second 401 should not refresh again")
	}
	if a.guilds.err != "expired" {
		t.Errorf("err = %q, want expired", a.guilds.err)
	}
}

func TestRefreshFailureSignsOut(t *testing.T) {
	auth := &fakeAuth{}
	a := newTestApp(auth, true)
	a.username = "mod"

	m, cmd := a.Update(refreshDoneMsg{err: errors.New("rejected"), retry: viewGuilds})
	a = m.(App)
	if cmd == nil {
		t.Fatal("expected logout command")
	}
	out, ok := cmd().(logoutDoneMsg)
	if !ok {
		t.Fatal("expected logoutDoneMsg")
	}
	if auth.logouts != 1 {
		t.Errorf("logouts = %d, want 1", auth.logouts)
	}

	m, _ = a.Update(out)
	a = m.(App)
	if a.view != viewLogin {
		t.Errorf("view = %d, want viewLogin", a.view)
	}
	if a.username != "" {
		t.Errorf("username = %q, want empty", a.username)
	}
	if !strings.Contains(a.login.err, "session expired") {
		t.Errorf("login err = %q", a.login.err)
	}
}

func TestSignOutKey(t *testing.T) {
	auth := &fakeAuth{}
	a := newTestApp(auth, true)
	_, cmd := a.Update(key("L"))
	if cmd == nil {
		t.Fatal("L should sign out")
	}
	if _, ok := cmd().(logoutDoneMsg); !ok {
		t.Fatal("expected logoutDoneMsg")
	}
	if auth.logouts != 1 {
		t.Errorf("logouts = %d, want 1", auth.logouts)
	}
}

func TestGuildsLoadFromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/guilds" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"9","name":"Served","member_count":3,"bot_present":"true"}]`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := client.New(srv.URL, func() string { return "tok" })
	a := NewApp(&fakeAuth{}, staticClients{c}, true, "mod", "")
	cmd := a.guilds.load()
	if cmd == nil {
		t.Fatal("expected load command")
	}
	m, _ := a.Update(cmd())
	a = m.(App)
	if len(a.guilds.guilds) != 1 || a.guilds.guilds[0].Name != "Served" {
		t.Fatalf("guilds = %#v", a.guilds.guilds)
	}
	if !bool(a.guilds.guilds[0].BotPresent) {
		t.Error("bot_present string should coerce to true")
	}
}

func TestHeaderShowsUserAndVersion(t *testing.T) {
	a := NewApp(&fakeAuth{}, nil, true, "mod", "v1.2.3")
	a.width = 80
	a.height = 30
	view := a.View()
	if !strings.Contains(view, "signed in as mod") || !strings.Contains(view, "v1.2.3") {
		t.Errorf("header missing user or version:\n%s", view)
	}
}

func TestLoginAcceptsPaste(t *testing.T) {
	a := newTestApp(&fakeAuth{}, false)
	a.login.mfaToken = "mfa-1"
	a.login.focus = fieldCode
	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("123 456\n"), Paste: true})
	a = m.(App)
	if a.login.code != "123 456" {
		t.Errorf("code = %q, want pasted text without newline", a.login.code)
	}
}
