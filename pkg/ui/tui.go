package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/mmaeda/arbwatch/business/arbitrage/domain"
	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
)

// ErrorEntry is an error with its arrival time, for the error panel.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the dashboard.
type Model struct {
	keys KeyMap

	// State
	ready    bool
	quitting bool
	paused   bool
	width    int
	height   int

	results    []*domain.PairResult
	pending    int
	tickCount  uint64
	lastUpdate time.Time
	errors     []ErrorEntry // last 3
	showHelp   bool
}

// New creates a new dashboard model.
func New() Model {
	return Model{
		keys:   DefaultKeyMap(),
		errors: make([]ErrorEntry, 0, 3),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd redraws every 500ms so the "updated ago" readout stays live.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.errors = make([]ErrorEntry, 0, 3)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		return m, tickCmd()

	case TickResultsMsg:
		if !m.paused {
			m.results = msg.Results
			m.pending = msg.Pending
			m.tickCount++
			m.lastUpdate = time.Now()
		}

	case ErrorMsg:
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" arbwatch "))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	if len(m.results) == 0 {
		b.WriteString(MutedValue.Render("  Waiting for first tick..."))
		b.WriteString("\n")
	} else {
		panels := make([]string, 0, len(m.results))
		for _, result := range sortedByBestRate(m.results) {
			panels = append(panels, BoxStyle.Render(renderPair(result)))
		}
		if m.width > 110 && len(panels) > 1 {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
		} else {
			b.WriteString(strings.Join(panels, "\n"))
		}
	}

	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		b.WriteString(HeaderStyle.Foreground(ColorLoss).Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, entry := range m.errors {
			ago := time.Since(entry.Timestamp).Round(time.Second)
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("  • %s ", entry.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.paused {
		b.WriteString(PausedStyle.Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	if m.showHelp {
		b.WriteString(HelpStyle.Render(renderFullHelp(m.keys)))
	} else {
		b.WriteString(HelpStyle.Render("q: quit • p: pause • e: clear errors • ?: help"))
	}

	return b.String()
}

func (m Model) renderStatusBar() string {
	parts := []string{
		fmt.Sprintf("Ticks: %d", m.tickCount),
		fmt.Sprintf("Pending log entries: %d", m.pending),
	}
	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}
	return strings.Join(parts, "  │  ")
}

// sortedByBestRate orders pairs by their best route rate, highest first,
// without mutating the input.
func sortedByBestRate(results []*domain.PairResult) []*domain.PairResult {
	out := make([]*domain.PairResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		_, ri, iok := out[i].BestRoute()
		_, rj, jok := out[j].BestRoute()
		if iok != jok {
			return iok
		}
		return ri.GreaterThan(rj)
	})
	return out
}

func renderPair(result *domain.PairResult) string {
	var sb strings.Builder

	sb.WriteString(HeaderStyle.Render(result.Symbol))
	sb.WriteString("\n\n")

	// Top of book per exchange
	for _, ex := range marketdata.Exchanges() {
		quote, ok := result.Books[ex]
		if !ok {
			continue
		}
		sb.WriteString(MutedValue.Render(fmt.Sprintf("  %-10s bid %s  ask %s\n",
			ex, quote.Bid.String(), quote.Ask.String())))
	}
	sb.WriteString("\n")

	for _, route := range domain.EnumerateRoutes(marketdata.Exchanges()) {
		rate, ok := result.Rates[route]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-22s %s\n", route.String(), renderRate(rate)))
	}

	return sb.String()
}

func renderRate(rate decimal.Decimal) string {
	text := rate.StringFixed(3) + "%"
	if rate.Sign() > 0 {
		return PositiveRate.Render(text + " ▲")
	}
	return NegativeRate.Render(text)
}

func renderFullHelp(keys KeyMap) string {
	var parts []string
	for _, row := range keys.FullHelp() {
		for _, binding := range row {
			h := binding.Help()
			parts = append(parts, fmt.Sprintf("%s: %s", h.Key, h.Desc))
		}
	}
	return strings.Join(parts, " • ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// Run starts the Bubble Tea program and blocks until it exits.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
