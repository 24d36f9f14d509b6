package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loomkit/willow/pkg/live"
)

type tickMsg time.Time

// dashboardModel polls a live.Server's connected sessions on a ticker and
// renders them as a table. It owns no state of its own beyond the table
// widget: the server is the source of truth.
type dashboardModel struct {
	server *live.Server
	table  table.Model
	width  int
	height int
}

func newDashboardModel(server *live.Server) dashboardModel {
	columns := []table.Column{
		{Title: "Session", Width: 24},
		{Title: "Status", Width: 12},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(10),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.NoColor{}).
		Background(lipgloss.NoColor{})
	t.SetStyles(styles)

	return dashboardModel{server: server, table: t}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m dashboardModel) Init() tea.Cmd {
	return tick()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tickMsg:
		m.table.SetRows(m.rows())
		return m, tick()
	}
	return m, nil
}

func (m dashboardModel) rows() []table.Row {
	ids := m.server.Sessions()
	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, table.Row{id, "connected"})
	}
	return rows
}

func (m dashboardModel) View() string {
	title := lipgloss.NewStyle().Bold(true).Render("willow live sessions")
	footer := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("%d connected · q to quit", len(m.server.Sessions())))
	return title + "\n\n" + m.table.View() + "\n" + footer
}

func runDashboard(server *live.Server) error {
	_, err := tea.NewProgram(newDashboardModel(server)).Run()
	return err
}
