package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

type guildsLoadedMsg struct {
	guilds []domain.Guild
	err    error
}

type copyResultMsg struct {
	text string
	err  error
}

// openGuildMsg asks the App to show a guild's detail view.
type openGuildMsg struct {
	guild domain.Guild
}

// guildsModel lists the guilds the user can manage.
type guildsModel struct {
	clients ClientSource
	guilds  []domain.Guild
	cursor  int
	loading bool
	err     string
	status  string
	height  int
}

func newGuildsModel(clients ClientSource) guildsModel {
	return guildsModel{clients: clients}
}

func (m guildsModel) Init() tea.Cmd {
	return m.load()
}

func (m guildsModel) load() tea.Cmd {
	if m.clients == nil {
		return nil
	}
	c := m.clients.Current()
	return func() tea.Msg {
		guilds, err := c.Guilds.List(context.Background())
		return guildsLoadedMsg{guilds: guilds, err: err}
	}
}

func (m guildsModel) selected() (domain.Guild, bool) {
	if m.cursor < 0 || m.cursor >= len(m.guilds) {
		return domain.Guild{}, false
	}
	return m.guilds[m.cursor], true
}

func (m guildsModel) Update(msg tea.Msg) (guildsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case guildsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.guilds = msg.guilds
		if m.cursor >= len(m.guilds) {
			m.cursor = max(len(m.guilds)-1, 0)
		}

	case copyResultMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("copy failed: " + msg.err.Error())
		} else {
			m.status = okStyle.Render("copied " + msg.text)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.guilds)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "g":
			m.cursor = 0
		case "G":
			m.cursor = max(len(m.guilds)-1, 0)
		case "enter":
			if g, ok := m.selected(); ok {
				return m, func() tea.Msg { return openGuildMsg{guild: g} }
			}
		case "c":
			if g, ok := m.selected(); ok {
				id := g.ID
				return m, func() tea.Msg {
					return copyResultMsg{text: id, err: clipboard.WriteAll(id)}
				}
			}
		case "r":
			m.loading = true
			m.status = ""
			return m, m.load()
		}
	}
	return m, nil
}

func (m guildsModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + sectionHeaderStyle.Render("Your servers") + "\n\n")
	switch {
	case m.loading && len(m.guilds) == 0:
		b.WriteString("  " + dimStyle.Render("loading…") + "\n")
	case m.err != "":
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
	case len(m.guilds) == 0:
		b.WriteString("  " + dimStyle.Render("No servers yet. Invite the bot to a server you manage.") + "\n")
	}

	for i, g := range m.guilds {
		name := truncStr(g.Name, 40)
		meta := fmt.Sprintf("%d members", g.MemberCount)
		if !g.BotPresent {
			meta += " · " + warnStyle.Render("bot not installed")
		}
		if g.Premium {
			meta += " · " + accentStyle.Render("premium")
		}
		line := fmt.Sprintf("%-42s", name)
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(" > "+selectedStyle.Render(line)) + " " + metaStyle.Render(meta) + "\n")
		} else {
			b.WriteString("   " + normalStyle.Render(line) + " " + metaStyle.Render(meta) + "\n")
		}
	}
	if m.status != "" {
		b.WriteString("\n  " + m.status + "\n")
	}
	return b.String()
}
