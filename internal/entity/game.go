package entity

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-replay/internal/apperror"
)

// Mark is the content of a single cell.
type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

// CellCount is the number of cells on the board, indexed row-major (row*3 + col).
const CellCount = 9

// WinCombos are checked in this order; the first complete line decides the winner.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Grid is a board snapshot. It is a value type, so assignment clones it.
type Grid [CellCount]Mark

// UnmarshalJSON rejects arrays whose length is not CellCount.
func (that *Grid) UnmarshalJSON(data []byte) error {
	var cells []Mark
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}

	if len(cells) != CellCount {
		return fmt.Errorf("%w: got %d", apperror.ErrInvalidGrid, len(cells))
	}

	copy(that[:], cells)

	return nil
}

// Winner is the result of evaluating a Grid. Line is empty when there is no winner.
type Winner struct {
	Mark Mark  `json:"mark"`
	Line []int `json:"line"`
}

func (that Winner) HasWinner() bool {
	return that.Mark != EmptyCell
}

// InLine reports whether the cell index belongs to the winning line.
func (that Winner) InLine(cell int) bool {
	for _, idx := range that.Line {
		if idx == cell {
			return true
		}
	}

	return false
}

// EvaluateWinner scans WinCombos in order and returns the first complete line.
func EvaluateWinner(grid Grid) Winner {
	for _, combo := range WinCombos {
		a, b, c := grid[combo[0]], grid[combo[1]], grid[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Winner{
				Mark: a,
				Line: []int{combo[0], combo[1], combo[2]},
			}
		}
	}

	return Winner{Mark: EmptyCell, Line: []int{}}
}

// MarkForStep returns whose turn it is at the given history step. X always opens.
func MarkForStep(step int) Mark {
	if step%2 == 0 {
		return PlayerX
	}

	return PlayerO
}

func IsValidCell(cell int) bool {
	return cell >= 0 && cell < CellCount
}

func (that Grid) IsEmpty(cell int) bool {
	return that[cell] == EmptyCell
}

func (that Grid) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// MarksPlaced counts the non-empty cells.
func (that Grid) MarksPlaced() int {
	count := 0
	for _, cell := range that {
		if cell != EmptyCell {
			count++
		}
	}

	return count
}

// IsDraw reports a full board without a winner.
func IsDraw(grid Grid) bool {
	return grid.IsFull() && !EvaluateWinner(grid).HasWinner()
}
