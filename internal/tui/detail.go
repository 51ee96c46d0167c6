package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// recentCases is how many moderation cases the detail view shows.
const recentCases = 5

type guildDetailMsg struct {
	guildID string
	config  *domain.GuildConfig
	stats   *domain.GuildStats
	cases   []domain.ModCase
	err     error
}

// detailModel shows one guild's configuration, counters and latest cases.
type detailModel struct {
	clients ClientSource
	guild   domain.Guild
	config  *domain.GuildConfig
	stats   *domain.GuildStats
	cases   []domain.ModCase
	loading bool
	err     string
	closed  bool
}

func newDetailModel(clients ClientSource, g domain.Guild) detailModel {
	return detailModel{clients: clients, guild: g, loading: true}
}

func (m detailModel) load() tea.Cmd {
	if m.clients == nil {
		return nil
	}
	c := m.clients.Current()
	id := m.guild.ID
	return func() tea.Msg {
		ctx := context.Background()
		cfg, err := c.Config.Get(ctx, id)
		if err != nil {
			return guildDetailMsg{guildID: id, err: err}
		}
		stats, err := c.Guilds.Stats(ctx, id)
		if err != nil {
			return guildDetailMsg{guildID: id, err: err}
		}
		cases, err := c.Moderation.ListCases(ctx, id, "", recentCases, 0)
		if err != nil {
			return guildDetailMsg{guildID: id, err: err}
		}
		return guildDetailMsg{guildID: id, config: cfg, stats: stats, cases: cases}
	}
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case guildDetailMsg:
		if msg.guildID != m.guild.ID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = errorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.config, m.stats, m.cases = msg.config, msg.stats, msg.cases

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace":
			m.closed = true
		case "r":
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m detailModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + selectedStyle.Render(m.guild.Name) + "  " + metaStyle.Render(m.guild.ID) + "\n\n")
	if m.loading && m.config == nil {
		b.WriteString("  " + dimStyle.Render("loading…") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
		return b.String()
	}

	if s := m.stats; s != nil {
		b.WriteString("  " + sectionHeaderStyle.Render("Today") + "\n")
		fmt.Fprintf(&b, "    %s members · %s online · %s messages · %s commands · %s open tickets\n\n",
			normalStyle.Render(fmt.Sprint(s.Members)),
			normalStyle.Render(fmt.Sprint(s.Online)),
			normalStyle.Render(fmt.Sprint(s.MessagesToday)),
			normalStyle.Render(fmt.Sprint(s.CommandsToday)),
			normalStyle.Render(fmt.Sprint(s.OpenTickets)))
	}

	if c := m.config; c != nil {
		b.WriteString("  " + sectionHeaderStyle.Render("Configuration") + "\n")
		fmt.Fprintf(&b, "    prefix    %s\n", normalStyle.Render(c.Prefix))
		fmt.Fprintf(&b, "    language  %s\n", normalStyle.Render(c.Language))
		fmt.Fprintf(&b, "    welcome   %s\n", onOff(bool(c.WelcomeEnabled)))
		fmt.Fprintf(&b, "    goodbye   %s\n", onOff(bool(c.GoodbyeEnabled)))
		if ignored := c.IgnoredChannels.Items(); len(ignored) > 0 {
			fmt.Fprintf(&b, "    ignoring  %s\n", dimStyle.Render(fmt.Sprintf("%d channels", len(ignored))))
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + sectionHeaderStyle.Render("Recent cases") + "\n")
	if len(m.cases) == 0 {
		b.WriteString("    " + dimStyle.Render("none") + "\n")
	}
	for _, cs := range m.cases {
		who := cs.Username
		if who == "" {
			who = cs.UserID
		}
		fmt.Fprintf(&b, "    %s %s %s %s\n",
			metaStyle.Render(fmt.Sprintf("#%-5d", cs.ID)),
			ActionStyle(cs.Action).Render(fmt.Sprintf("%-8s", cs.Action)),
			normalStyle.Render(truncStr(who, 24)),
			dimStyle.Render(truncStr(cs.Reason, 40)+"  "+formatTime(cs.CreatedAt)))
	}
	return b.String()
}
