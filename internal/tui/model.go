// Package tui plays a local game in the terminal on top of the game controller.
//
// The model is used from the bubbletea event loop only.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/tictactoe-replay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-replay/internal/render"
	"github.com/rocketscienceinc/tictactoe-replay/internal/tictactoe"
)

const helpText = "arrows/hjkl move  enter/space play  [ ] step  o order  q quit"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	cursorStyle = cellStyle.
			Reverse(true)

	winningStyle = cellStyle.
			Bold(true).
			Foreground(lipgloss.Color("42"))

	currentMoveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))

	moveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	winnerStatusStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Model is the bubbletea model of a local game.
type Model struct {
	controller *tictactoe.GameController

	cursor   int
	quitting bool

	// err is the last controller error, shown under the status line
	err error
}

func NewModel(controller *tictactoe.GameController) Model {
	return Model{
		controller: controller,
		cursor:     4,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.err = nil

	switch keyMsg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.moveCursor(-3)
	case "down", "j":
		m.moveCursor(3)
	case "left", "h":
		if m.cursor%3 > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor%3 < 2 {
			m.cursor++
		}

	case "enter", " ":
		_, m.err = m.controller.AttemptMove(m.cursor)

	case "[":
		if step := m.controller.Step(); step > 0 {
			m.err = m.controller.JumpTo(step - 1)
		}
	case "]":
		if step := m.controller.Step(); step < m.controller.Len()-1 {
			m.err = m.controller.JumpTo(step + 1)
		}

	case "o":
		m.controller.SetAscending(!m.controller.Ascending())
	}

	return m, nil
}

func (m *Model) moveCursor(delta int) {
	if next := m.cursor + delta; entity.IsValidCell(next) {
		m.cursor = next
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	view := render.Game(m.controller.Snapshot())

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Play Tic Tac Toe"))
	sb.WriteString("\n\n")

	board := m.renderBoard(view)
	moves := m.renderMoves(view)
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, board, "    ", moves))
	sb.WriteString("\n\n")

	if view.Status.Winner {
		sb.WriteString(winnerStatusStyle.Render(view.Status.Text))
	} else {
		sb.WriteString(statusStyle.Render(view.Status.Text))
	}

	if m.err != nil {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.err.Error()))
	}

	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render(helpText))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderBoard(view render.View) string {
	lines := make([]string, 0, len(view.Rows))
	for _, row := range view.Rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, m.renderCell(cell))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderCell(cell render.Cell) string {
	value := cell.Value
	if value == "" {
		value = "·"
	}

	switch {
	case cell.Index == m.cursor:
		return cursorStyle.Render(value)
	case cell.Winning:
		return winningStyle.Render(value)
	default:
		return cellStyle.Render(value)
	}
}

func (m Model) renderMoves(view render.View) string {
	lines := make([]string, 0, len(view.Moves))
	for _, item := range view.Moves {
		if item.Current {
			lines = append(lines, currentMoveStyle.Render("> "+item.Label))
			continue
		}
		lines = append(lines, moveStyle.Render("  "+item.Label))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
