package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/rulekeeper/internal/session"
	"github.com/naveenspark/rulekeeper/pkg/client"
)

// Authenticator is the part of session.Manager the TUI drives.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*session.Result, error)
	VerifyMFA(ctx context.Context, mfaToken, code string) (*session.Result, error)
	Refresh(ctx context.Context, refreshToken string) error
	Logout(ctx context.Context) error
}

// ClientSource hands out the current API client. client.Holder satisfies it.
type ClientSource interface {
	Current() *client.Client
}

type view int

const (
	viewLogin view = iota
	viewGuilds
	viewDetail
)

// refreshDoneMsg reports a token refresh triggered by a 401.
type refreshDoneMsg struct {
	err   error
	retry view
}

type logoutDoneMsg struct {
	reason string
}

// App is the root Bubbletea model.
type App struct {
	auth     Authenticator
	clients  ClientSource
	version  string
	username string

	view   view
	login  loginModel
	guilds guildsModel
	detail detailModel

	// refreshTried stops a 401 after a refresh from looping.
	refreshTried bool

	width  int
	height int
	frame  int
}

// NewApp creates the TUI. It opens on the server list when signedIn,
// otherwise on the login form.
func NewApp(auth Authenticator, clients ClientSource, signedIn bool, username, version string) App {
	a := App{
		auth:     auth,
		clients:  clients,
		version:  version,
		username: username,
		login:    newLoginModel(auth),
		guilds:   newGuildsModel(clients),
	}
	if signedIn {
		a.view = viewGuilds
		a.guilds.loading = true
	}
	return a
}

func (a App) Init() tea.Cmd {
	if a.view == viewGuilds {
		return tea.Batch(shimmerTickCmd(), a.guilds.Init())
	}
	return shimmerTickCmd()
}

func (a App) refresh(retry view) tea.Cmd {
	auth := a.auth
	if auth == nil {
		return nil
	}
	return func() tea.Msg {
		return refreshDoneMsg{err: auth.Refresh(context.Background(), ""), retry: retry}
	}
}

func (a App) logout(reason string) tea.Cmd {
	auth := a.auth
	return func() tea.Msg {
		if auth != nil {
			auth.Logout(context.Background()) //nolint:errcheck // local state is cleared regardless
		}
		return logoutDoneMsg{reason: reason}
	}
}

// expired reports whether err is a 401 that a refresh might fix.
func (a App) expired(err error) bool {
	return err != nil && !a.refreshTried && client.IsStatus(err, http.StatusUnauthorized)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + help(1) = 3 lines
		a.guilds, _ = a.guilds.Update(tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 3})
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case loginDoneMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		if msg.err != nil || msg.res == nil || msg.res.MFARequired {
			return a, cmd
		}
		if msg.res.User != nil {
			a.username = msg.res.User.Username
		}
		a.login = newLoginModel(a.auth)
		a.refreshTried = false
		a.view = viewGuilds
		a.guilds = newGuildsModel(a.clients)
		a.guilds.loading = true
		return a, a.guilds.Init()

	case guildsLoadedMsg:
		if a.expired(msg.err) {
			a.refreshTried = true
			return a, a.refresh(viewGuilds)
		}
		if msg.err == nil {
			a.refreshTried = false
		}
		a.guilds, _ = a.guilds.Update(msg)
		return a, nil

	case guildDetailMsg:
		if a.expired(msg.err) {
			a.refreshTried = true
			return a, a.refresh(viewDetail)
		}
		if msg.err == nil {
			a.refreshTried = false
		}
		a.detail, _ = a.detail.Update(msg)
		return a, nil

	case refreshDoneMsg:
		if msg.err != nil {
			return a, a.logout("session expired, sign in again")
		}
		if msg.retry == viewDetail {
			return a, a.detail.load()
		}
		return a, a.guilds.load()

	case logoutDoneMsg:
		a.view = viewLogin
		a.username = ""
		a.refreshTried = false
		a.login = newLoginModel(a.auth)
		a.login.err = msg.reason
		a.guilds = newGuildsModel(a.clients)
		return a, nil

	case openGuildMsg:
		a.detail = newDetailModel(a.clients, msg.guild)
		a.view = viewDetail
		return a, a.detail.load()

	case copyResultMsg:
		a.guilds, _ = a.guilds.Update(msg)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.view != viewLogin {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "L":
				return a, a.logout("")
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewGuilds:
		a.guilds, cmd = a.guilds.Update(msg)
	case viewDetail:
		a.detail, cmd = a.detail.Update(msg)
		if a.detail.closed {
			a.view = viewGuilds
		}
	}
	return a, cmd
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoPad := max((a.width-lipgloss.Width(logo))/2, 0)
	header := strings.Repeat(" ", logoPad) + logo

	var who string
	if a.username != "" {
		who = "signed in as " + a.username
	} else if a.view != viewLogin {
		who = "signed in"
	}
	if a.version != "" {
		if who != "" {
			who += " · "
		}
		who += a.version
	}
	whoPad := max((a.width-lipgloss.Width(who))/2, 0)
	header += "\n" + strings.Repeat(" ", whoPad) + metaStyle.Render(who)

	var body, help string
	switch a.view {
	case viewLogin:
		body = a.login.View()
		if a.login.mfaStep() {
			help = helpBar([2]string{"enter", "verify"}, [2]string{"esc", "back"}, [2]string{"ctrl+c", "quit"})
		} else {
			help = helpBar([2]string{"tab", "next"}, [2]string{"enter", "sign in"}, [2]string{"ctrl+c", "quit"})
		}
	case viewGuilds:
		body = a.guilds.View()
		help = helpBar([2]string{"j/k", "nav"}, [2]string{"enter", "open"}, [2]string{"c", "copy id"},
			[2]string{"r", "reload"}, [2]string{"L", "sign out"}, [2]string{"q", "quit"})
	case viewDetail:
		body = a.detail.View()
		help = helpBar([2]string{"esc", "back"}, [2]string{"r", "reload"}, [2]string{"L", "sign out"}, [2]string{"q", "quit"})
	}

	chrome := 3
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")
	return fmt.Sprintf("%s\n%s\n%s", header, body, help)
}
