// Package tui renders the live cache statistics dashboard.
package tui

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/dartfocus/internal/cache"
)

// defaultRefreshInterval is how often the dashboard polls for fresh stats.
const defaultRefreshInterval = 2 * time.Second

// StatsProvider supplies the stats snapshot the dashboard renders.
// *cache.Engine satisfies it.
type StatsProvider interface {
	Stats() cache.Stats
}

// statsTickMsg triggers a stats refresh.
type statsTickMsg time.Time

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// StatsModel is the Bubble Tea model for the cache stats dashboard.
type StatsModel struct {
	provider StatsProvider
	interval time.Duration
	table    table.Model
	stats    cache.Stats
	lastTick time.Time
}

// NewStatsModel builds the dashboard over a stats provider. A non-positive
// interval falls back to the default refresh rate.
func NewStatsModel(provider StatsProvider, interval time.Duration) StatsModel {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}

	columns := []table.Column{
		{Title: "Category", Width: 24},
		{Title: "Entries", Width: 9},
		{Title: "Hits", Width: 8},
		{Title: "Misses", Width: 8},
		{Title: "Evicted", Width: 8},
		{Title: "Hit Rate", Width: 9},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(len(cache.Categories())+1),
	)

	m := StatsModel{
		provider: provider,
		interval: interval,
		table:    t,
	}
	m.refresh()
	return m
}

// Init starts the refresh ticker (Bubble Tea interface).
func (m StatsModel) Init() tea.Cmd {
	return m.tick()
}

func (m StatsModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return statsTickMsg(t)
	})
}

// Update handles key presses and refresh ticks (Bubble Tea interface).
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.refresh()
			return m, nil
		}
	case statsTickMsg:
		m.lastTick = time.Time(msg)
		m.refresh()
		return m, m.tick()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// refresh pulls a fresh snapshot and rebuilds the table rows.
func (m *StatsModel) refresh() {
	m.stats = m.provider.Stats()

	categories := make([]cache.Category, 0, len(m.stats.Categories))
	for category := range m.stats.Categories {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	rows := make([]table.Row, 0, len(categories))
	for _, category := range categories {
		cs := m.stats.Categories[category]
		rows = append(rows, table.Row{
			string(category),
			strconv.Itoa(cs.Entries),
			strconv.FormatInt(cs.Hits, 10),
			strconv.FormatInt(cs.Misses, 10),
			strconv.FormatInt(cs.Evictions, 10),
			fmt.Sprintf("%.1f%%", cs.HitRate*100),
		})
	}
	m.table.SetRows(rows)
}

// View renders the dashboard (Bubble Tea interface).
func (m StatsModel) View() string {
	header := titleStyle.Render("dartfocus cache")
	summary := summaryStyle.Render(fmt.Sprintf(
		"entries: %d   hits: %d   misses: %d   evictions: %d",
		m.stats.Entries, m.stats.Hits, m.stats.Misses, m.stats.Evictions,
	))
	help := helpStyle.Render("r refresh · q quit")

	return header + "\n" + summary + "\n\n" + m.table.View() + "\n" + help + "\n"
}

// RunStatsDashboard runs the dashboard until the user quits.
func RunStatsDashboard(provider StatsProvider, interval time.Duration) error {
	_, err := tea.NewProgram(NewStatsModel(provider, interval)).Run()
	return err
}
