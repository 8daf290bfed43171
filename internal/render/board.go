// Package render maps game snapshots to presentation-neutral view models.
// Every function is pure; click targets are carried as indexes the caller binds to actions.
package render

import (
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-replay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-replay/internal/tictactoe"
)

const (
	labelGameStart = "Game start"
	labelMove      = "Move #"

	blankCell = "-"
)

// Cell is one visual square. Index is the value handed back on activation.
type Cell struct {
	Index   int    `json:"index"`
	Value   string `json:"value"`
	Winning bool   `json:"winning"`
}

// MoveItem is one entry of the move list. Step is the value handed back on activation.
type MoveItem struct {
	Step    int    `json:"step"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

type StatusLine struct {
	Text   string `json:"text"`
	Winner bool   `json:"winner"`
}

// View is everything a presentation layer needs to draw one frame.
type View struct {
	Rows      [3][3]Cell `json:"rows"`
	Moves     []MoveItem `json:"moves"`
	Status    StatusLine `json:"status"`
	Ascending bool       `json:"ascending"`
}

// Board maps a grid and the highlighted line into nine cells.
func Board(grid entity.Grid, line []int) [entity.CellCount]Cell {
	highlighted := entity.Winner{Line: line}

	var cells [entity.CellCount]Cell
	for i, mark := range grid {
		cells[i] = Cell{
			Index:   i,
			Value:   string(mark),
			Winning: highlighted.InLine(i),
		}
	}

	return cells
}

// Rows groups cells into three rows of three.
func Rows(cells [entity.CellCount]Cell) [3][3]Cell {
	var rows [3][3]Cell
	for i, cell := range cells {
		rows[i/3][i%3] = cell
	}

	return rows
}

// Moves lists every history step, oldest first when ascending. Each item keeps its own step
// number whatever the order.
func Moves(historyLen int, ascending bool, current int) []MoveItem {
	items := make([]MoveItem, 0, historyLen)
	for i := 0; i < historyLen; i++ {
		step := i
		if !ascending {
			step = historyLen - 1 - i
		}

		items = append(items, MoveItem{
			Step:    step,
			Label:   moveLabel(step),
			Current: step == current,
		})
	}

	return items
}

func Status(snapshot tictactoe.Snapshot) StatusLine {
	return StatusLine{
		Text:   snapshot.Status,
		Winner: snapshot.HasWinner,
	}
}

// Game builds the full view for a snapshot.
func Game(snapshot tictactoe.Snapshot) View {
	return View{
		Rows:      Rows(Board(snapshot.Grid, snapshot.Winner.Line)),
		Moves:     Moves(len(snapshot.History), snapshot.Ascending, snapshot.Step),
		Status:    Status(snapshot),
		Ascending: snapshot.Ascending,
	}
}

// Text draws the grid as three lines, blanks shown as "-".
func Text(grid entity.Grid) string {
	var sb strings.Builder
	for i, mark := range grid {
		if mark == entity.EmptyCell {
			sb.WriteString(blankCell)
		} else {
			sb.WriteString(string(mark))
		}

		switch {
		case i%3 == 2 && i != len(grid)-1:
			sb.WriteString("\n")
		case i%3 != 2:
			sb.WriteString(" ")
		}
	}

	return sb.String()
}

func moveLabel(step int) string {
	if step == 0 {
		return labelGameStart
	}

	return labelMove + strconv.Itoa(step)
}
