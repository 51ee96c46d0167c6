package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/rulekeeper/internal/session"
	"github.com/naveenspark/rulekeeper/pkg/client"
)

type loginField int

const (
	fieldUsername loginField = iota
	fieldPassword
	fieldCode
)

// loginDoneMsg carries the result of a password or MFA step.
type loginDoneMsg struct {
	res *session.Result
	err error
}

// loginModel is the username/password form, followed by an MFA code step
// when the server asks for one.
type loginModel struct {
	auth     Authenticator
	username string
	password string
	code     string
	focus    loginField
	mfaToken string
	notice   string
	err      string
	busy     bool
}

func newLoginModel(auth Authenticator) loginModel {
	return loginModel{auth: auth}
}

func (m loginModel) mfaStep() bool {
	return m.mfaToken != ""
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.busy || m.auth == nil {
		return m, nil
	}
	auth := m.auth
	if m.mfaStep() {
		if strings.TrimSpace(m.code) == "" {
			m.err = "enter the code from your authenticator app"
			return m, nil
		}
		token, code := m.mfaToken, strings.TrimSpace(m.code)
		m.busy, m.err = true, ""
		return m, func() tea.Msg {
			res, err := auth.VerifyMFA(context.Background(), token, code)
			return loginDoneMsg{res: res, err: err}
		}
	}
	if strings.TrimSpace(m.username) == "" || m.password == "" {
		m.err = "username and password are required"
		return m, nil
	}
	user, pass := strings.TrimSpace(m.username), m.password
	m.busy, m.err = true, ""
	return m, func() tea.Msg {
		res, err := auth.Login(context.Background(), user, pass)
		return loginDoneMsg{res: res, err: err}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = errorText(msg.err)
			m.password = ""
			m.code = ""
			return m, nil
		}
		if msg.res != nil && msg.res.MFARequired {
			m.mfaToken = msg.res.MFAToken
			m.notice = msg.res.Message
			m.focus = fieldCode
			m.password = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if !m.mfaStep() && m.focus == fieldUsername {
				m.focus = fieldPassword
				return m, nil
			}
			return m.submit()
		case "tab", "down":
			if !m.mfaStep() {
				m.focus = (m.focus + 1) % 2
			}
		case "shift+tab", "up":
			if !m.mfaStep() {
				m.focus = (m.focus + 1) % 2
			}
		case "esc":
			if m.mfaStep() {
				m.mfaToken, m.code, m.notice = "", "", ""
				m.focus = fieldUsername
			}
		default:
			edit := func(s string) string { return editRune(s, msg.String()) }
			if msg.Paste {
				edit = func(s string) string { return insertText(s, string(msg.Runes)) }
			}
			switch m.focus {
			case fieldUsername:
				m.username = edit(m.username)
			case fieldPassword:
				m.password = edit(m.password)
			case fieldCode:
				m.code = edit(m.code)
			}
		}
	}
	return m, nil
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + sectionHeaderStyle.Render("Sign in to the dashboard") + "\n\n")
	if m.mfaStep() {
		notice := m.notice
		if notice == "" {
			notice = "Two-factor authentication is enabled for this account."
		}
		b.WriteString("  " + dimStyle.Render(notice) + "\n\n")
		b.WriteString(renderField("code    ", m.code, "123456", true, false) + "\n")
	} else {
		b.WriteString(renderField("username", m.username, "your dashboard username", m.focus == fieldUsername, false) + "\n")
		b.WriteString(renderField("password", m.password, "", m.focus == fieldPassword, true) + "\n")
		b.WriteString("\n  " + metaStyle.Render("Discord account? Run: rulekeeper login --discord") + "\n")
	}
	if m.busy {
		b.WriteString("\n  " + dimStyle.Render("signing in…") + "\n")
	}
	if m.err != "" {
		b.WriteString("\n  " + errorStyle.Render(m.err) + "\n")
	}
	return b.String()
}

// errorText picks the display message for an error from the session or
// client packages.
func errorText(err error) string {
	var sessErr *session.Error
	if errors.As(err, &sessErr) && sessErr.Message != "" {
		return sessErr.Message
	}
	return client.UserMessage(err)
}
