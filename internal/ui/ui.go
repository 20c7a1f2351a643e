package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/Dicklesworthstone/wattmeter/internal/config"
	"github.com/Dicklesworthstone/wattmeter/internal/model"
	"github.com/Dicklesworthstone/wattmeter/internal/placement"
	"github.com/Dicklesworthstone/wattmeter/internal/power"
)

// Model renders the latest estimate as a small card the user can drag around
// the terminal.
type Model struct {
	stream    <-chan model.Sample
	ctxCancel context.CancelFunc
	statePath string
	logger    *slog.Logger
	host      string

	latest model.Sample
	have   bool
	detail bool

	width, height int
	pos           placement.Position
	placed        bool
	dragging      bool
	grabX, grabY  int
}

func New(cfg config.Config, stream <-chan model.Sample, cancel context.CancelFunc, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		stream:    stream,
		ctxCancel: cancel,
		statePath: cfg.StateFile,
		logger:    logger.With("service", "ui"),
		host:      hostSummary(),
		detail:    cfg.ShowDetail,
		width:     80,
		height:    24,
	}
}

// Messages
type tickMsg struct{}

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.placed {
			m.restore()
		}
		m.clamp()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.save()
			if m.ctxCancel != nil {
				m.ctxCancel()
			}
			return m, tea.Quit
		case "d":
			m.detail = !m.detail
			m.clamp()
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case tickMsg:
		select {
		case samp, ok := <-m.stream:
			if ok {
				m.latest, m.have = samp, true
				m.clamp()
			}
		default:
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) mouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		x, y := int(m.pos.Left), int(m.pos.Top)
		w, h := m.cardSize()
		if msg.X >= x && msg.X < x+w && msg.Y >= y && msg.Y < y+h {
			m.dragging = true
			m.grabX, m.grabY = msg.X-x, msg.Y-y
		}
	case tea.MouseActionMotion:
		if m.dragging {
			m.pos = placement.Position{Left: float64(msg.X - m.grabX), Top: float64(msg.Y - m.grabY)}
			m.clamp()
		}
	case tea.MouseActionRelease:
		m.dragging = false
	}
}

// restore loads the saved position once the terminal size is known; without
// one the card starts in the top-right corner.
func (m *Model) restore() {
	m.placed = true
	screen := placement.Bounds{Width: float64(m.width), Height: float64(m.height)}
	if pos, ok := placement.Load(m.statePath, screen); ok {
		m.pos = pos
		m.logger.Debug("position restored", "left", pos.Left, "top", pos.Top)
		return
	}
	w, _ := m.cardSize()
	m.pos = placement.Position{Left: float64(max(0, m.width-w)), Top: 0}
}

func (m *Model) save() {
	if m.statePath == "" || !m.placed {
		return
	}
	if err := placement.Save(m.statePath, m.pos); err != nil {
		m.logger.Warn("saving position failed", "path", m.statePath, "error", err)
	}
}

// clamp keeps the whole card inside the terminal.
func (m *Model) clamp() {
	w, h := m.cardSize()
	maxLeft := float64(max(0, m.width-w))
	maxTop := float64(max(0, m.height-h))
	m.pos.Left = min(max(m.pos.Left, 0), maxLeft)
	m.pos.Top = min(max(m.pos.Top, 0), maxTop)
}

// Position returns the card's top-left cell.
func (m *Model) Position() placement.Position { return m.pos }

// Styles
var (
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)
	dragStyle = cardStyle.Copy().BorderForeground(lipgloss.Color("212"))
)

func (m *Model) card() string {
	label := "Power usage: --.-W"
	if m.have {
		label = power.Label(m.latest.Estimate)
	}
	body := labelStyle.Render(label)
	if m.detail {
		body += "\n" + breakdown(m.latest.Estimate, m.have)
		if m.host != "" {
			body += "\n" + subtleStyle.Render(truncate(m.host, 28))
		}
	}
	if m.dragging {
		return dragStyle.Render(body)
	}
	return cardStyle.Render(body)
}

func (m *Model) cardSize() (int, int) {
	c := m.card()
	return lipgloss.Width(c), lipgloss.Height(c)
}

func (m *Model) View() string {
	pad := strings.Repeat(" ", int(m.pos.Left))
	lines := strings.Split(m.card(), "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Repeat("\n", int(m.pos.Top)) + strings.Join(lines, "\n")
}

func breakdown(e model.Estimate, have bool) string {
	if !have {
		return subtleStyle.Render("waiting for sensors…")
	}
	if e.Mode == model.ModeNaive {
		return row("Sensors", e.FinalWatts) + "\n" + subtleStyle.Render("naive sum")
	}
	rows := []string{
		row("CPU", e.CPUWatts),
		row("GPU", e.GPUWatts),
		row("MB", e.MotherboardWatts),
	}
	if e.UsedFallback {
		rows = append(rows, row("Other", e.OtherMeasuredWatts))
	}
	rows = append(rows,
		row("RAM", e.MemoryWatts),
		row("Disk", e.DiskWatts),
		row(fmt.Sprintf("Fans (%d)", e.FanCount), e.FanWatts),
		row("Misc", e.MiscWatts),
		subtleStyle.Render(strings.Repeat("─", 19)),
		row("Raw", e.TotalRawWatts),
		row("PSU", e.PSUCompensatedWatts),
	)
	return strings.Join(rows, "\n")
}

func row(name string, watts float64) string {
	return fmt.Sprintf("%-10s %s", name, valueStyle.Render(fmt.Sprintf("%6.1f W", watts)))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func hostSummary() string {
	info, err := host.Info()
	if err != nil || info == nil {
		return ""
	}
	return fmt.Sprintf("%s · %s", info.Hostname, info.Platform)
}

// RunTUI starts the Bubble Tea program. Mouse cell motion is enabled so the
// card can be dragged.
func RunTUI(cfg config.Config, stream <-chan model.Sample, cancel context.CancelFunc, logger *slog.Logger) error {
	m := New(cfg, stream, cancel, logger)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	return runProgram(prog, m)
}

// runProgram saves the position however the program ends; a SIGTERM quits
// without passing through Update.
func runProgram(prog *tea.Program, m *Model) error {
	_, err := prog.Run()
	m.save()
	return err
}
