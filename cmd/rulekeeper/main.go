package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/rulekeeper/internal/browser"
	"github.com/naveenspark/rulekeeper/internal/config"
	"github.com/naveenspark/rulekeeper/internal/logging"
	"github.com/naveenspark/rulekeeper/internal/oauth"
	"github.com/naveenspark/rulekeeper/internal/session"
	"github.com/naveenspark/rulekeeper/internal/settings"
	"github.com/naveenspark/rulekeeper/internal/tui"
	"github.com/naveenspark/rulekeeper/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// oauthTimeout bounds how long login --discord waits for the browser.
const oauthTimeout = 2 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is everything a subcommand needs, built once per invocation.
type env struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *settings.Store
	clients  *client.Holder
	sessions *session.Manager
	in       *bufio.Reader
	out      io.Writer

	flush func()
}

func setup(ctx context.Context, stdin io.Reader, stdout io.Writer) (*env, error) {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		return nil, err
	}
	logger, flush, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	backend, err := settings.NewBackend(cfg.Settings())
	if err != nil {
		flush()
		return nil, err
	}
	store, err := settings.Open(ctx, backend, logger)
	if err != nil {
		backend.Close() //nolint:errcheck
		flush()
		return nil, err
	}

	e := &env{
		cfg:    cfg,
		logger: logger,
		store:  store,
		in:     bufio.NewReader(stdin),
		out:    stdout,
		flush:  flush,
	}
	e.clients = client.NewHolder(e.buildClient)
	e.sessions = session.NewManager(store, e.clients, logger)
	return e, nil
}

// buildClient reads the base URL at build time and the token per request.
func (e *env) buildClient() *client.Client {
	base := e.cfg.APIURL
	if base == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		saved, err := e.store.BaseURL(ctx)
		if err != nil {
			e.logger.Warn("read base url failed, using default", zap.Error(err))
			saved = settings.DefaultBaseURL
		}
		base = saved
	}
	return client.New(base, e.store.CachedAccessToken,
		client.WithLogger(e.logger),
		client.WithTimeout(e.cfg.HTTP.Timeout),
		client.WithBodyLogging(e.cfg.Log.Bodies),
		client.WithUserAgent("rulekeeper-cli/"+version),
	)
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("close settings", zap.Error(err))
	}
	e.flush()
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version", "-v":
			fmt.Fprintln(stdout, "rulekeeper "+version)
			return nil
		case "help", "--help", "-h":
			printHelp(stdout)
			return nil
		}
	}

	e, err := setup(ctx, stdin, stdout)
	if err != nil {
		return err
	}
	defer e.close()

	if len(args) == 0 {
		return e.runTUI(ctx)
	}
	switch args[0] {
	case "login":
		if len(args) > 1 && args[1] == "--discord" {
			return e.runDiscordLogin(ctx)
		}
		return e.runTUI(ctx)
	case "callback":
		if len(args) < 2 {
			return errors.New("usage: rulekeeper callback <rulekeeper://callback?code=...>")
		}
		return e.runCallback(ctx, args[1])
	case "logout":
		return e.runLogout(ctx)
	case "refresh":
		return e.runRefresh(ctx)
	case "status":
		return e.runStatus(ctx)
	case "guilds":
		return e.runGuilds(ctx)
	case "url":
		if len(args) > 1 {
			return e.runSetURL(ctx, args[1])
		}
		return e.runShowURL(ctx)
	default:
		return fmt.Errorf("unknown command %q (see rulekeeper help)", args[0])
	}
}

func (e *env) runTUI(ctx context.Context) error {
	signedIn, err := e.sessions.IsAuthenticated(ctx)
	if err != nil {
		return err
	}
	var username string
	if signedIn {
		sess, err := e.store.Session(ctx)
		if err != nil {
			return err
		}
		username = sess.Username
	}

	app := tui.NewApp(e.sessions, e.clients, signedIn, username, version)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func (e *env) runDiscordLogin(ctx context.Context) error {
	l, err := oauth.Listen(e.logger)
	if err != nil {
		return err
	}
	defer l.Close() //nolint:errcheck

	base := e.clients.Current().BaseURL()
	loginURL, err := oauth.LoginURL(base, l.RedirectURI(), l.State())
	if err != nil {
		return err
	}

	fmt.Fprintln(e.out, "Opening browser to sign in with Discord...")
	if err := browser.Open(loginURL); err != nil {
		fmt.Fprintf(e.out, "Could not open browser. Visit this URL manually:\n  %s\n", loginURL)
	}

	waitCtx, cancel := context.WithTimeout(ctx, oauthTimeout)
	defer cancel()
	code, err := l.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errors.New("login timed out, no callback received within 2 minutes")
		}
		return err
	}
	res, err := e.sessions.ExchangeOAuthCode(ctx, code)
	if err != nil {
		return err
	}
	return e.finishLogin(ctx, res)
}

func (e *env) runCallback(ctx context.Context, raw string) error {
	code, err := oauth.ParseCallbackURL(raw)
	if err != nil {
		return err
	}
	res, err := e.sessions.ExchangeOAuthCode(ctx, code)
	if err != nil {
		return err
	}
	return e.finishLogin(ctx, res)
}

// finishLogin prompts for a two-factor code when the server asks for one.
func (e *env) finishLogin(ctx context.Context, res *session.Result) error {
	if res.MFARequired {
		msg := res.Message
		if msg == "" {
			msg = "Two-factor authentication is enabled for this account."
		}
		fmt.Fprintf(e.out, "%s\nCode: ", msg)
		line, err := e.in.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read code: %w", err)
		}
		res, err = e.sessions.VerifyMFA(ctx, res.MFAToken, strings.TrimSpace(line))
		if err != nil {
			return err
		}
	}
	name := ""
	if res.User != nil {
		name = res.User.Username
	}
	printSignedIn(e.out, name)
	return nil
}

func (e *env) runLogout(ctx context.Context) error {
	signedIn, err := e.sessions.IsAuthenticated(ctx)
	if err != nil {
		return err
	}
	if !signedIn {
		fmt.Fprintln(e.out, "Already signed out.")
		return nil
	}
	if err := e.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Signed out.")
	return nil
}

func (e *env) runRefresh(ctx context.Context) error {
	if err := e.sessions.Refresh(ctx, ""); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Session refreshed.")
	return nil
}

func (e *env) runStatus(ctx context.Context) error {
	sess, err := e.store.Session(ctx)
	if err != nil {
		return err
	}
	base := e.clients.Current().BaseURL()
	fmt.Fprintf(e.out, "api       %s\n", base)
	if sess.AccessToken == "" {
		fmt.Fprintln(e.out, "session   not signed in")
		return nil
	}
	who := sess.Username
	if who == "" {
		who = sess.UserID
	}
	if sess.IsAdmin {
		who += " (admin)"
	}
	fmt.Fprintf(e.out, "session   signed in as %s\n", who)
	if exp, ok := session.TokenExpiry(sess.AccessToken); ok {
		left := time.Until(exp).Round(time.Second)
		if left <= 0 {
			fmt.Fprintf(e.out, "token     expired %s ago\n", -left)
		} else {
			fmt.Fprintf(e.out, "token     expires in %s\n", left)
		}
	}
	return nil
}

func (e *env) runGuilds(ctx context.Context) error {
	signedIn, err := e.sessions.IsAuthenticated(ctx)
	if err != nil {
		return err
	}
	if !signedIn {
		return errors.New("not signed in, run: rulekeeper login")
	}
	guilds, err := e.clients.Current().Guilds.List(ctx)
	if err != nil {
		return errors.New(client.UserMessage(err))
	}
	if len(guilds) == 0 {
		fmt.Fprintln(e.out, "No servers.")
		return nil
	}
	for _, g := range guilds {
		flag := ""
		if !g.BotPresent {
			flag = "  (bot not installed)"
		}
		fmt.Fprintf(e.out, "%-20s %-32s %6d members%s\n", g.ID, g.Name, g.MemberCount, flag)
	}
	return nil
}

func (e *env) runShowURL(ctx context.Context) error {
	base, err := e.store.BaseURL(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, base)
	if e.cfg.APIURL != "" && e.cfg.APIURL != base {
		fmt.Fprintf(e.out, "(overridden by configuration: %s)\n", e.cfg.APIURL)
	}
	return nil
}

// runSetURL saves a new API root. "default" restores the built-in one.
func (e *env) runSetURL(ctx context.Context, raw string) error {
	if raw == "default" {
		raw = ""
	}
	if raw != "" {
		if err := config.ValidateBaseURL(raw); err != nil {
			return err
		}
	}
	if err := e.store.SetBaseURL(ctx, raw); err != nil {
		return err
	}
	e.clients.Rebuild()
	base, err := e.store.BaseURL(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "API URL set to %s\n", base)
	return nil
}

func printHelp(w io.Writer) {
	printLogo(w)
	fmt.Fprint(w, `
  Usage: rulekeeper [command]

  Commands:
    (none)             open the dashboard
    login              sign in with username and password
    login --discord    sign in with Discord in the browser
    callback <uri>     finish a Discord sign-in from a rulekeeper:// link
    logout             sign out and revoke the session
    refresh            refresh the access token
    status             show the API URL and who is signed in
    guilds             list the servers you manage
    url [new|default]  show or change the API URL
    version            print the version

  Environment:
    RULEKEEPER_API_URL     override the saved API URL
    RULEKEEPER_STORE       settings backend: file, sqlite, redis, memory
    RULEKEEPER_LOG_LEVEL   debug, info, warn, error
`)
}
