package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-replay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-replay/internal/entity"
)

const (
	statusWinner = "Winner: "
	statusNext   = "Next player: "
)

// State is the persisted form of a game: the history, the step on display and the list order.
type State struct {
	History   []entity.Grid `json:"history"`
	Step      int           `json:"step"`
	Ascending bool          `json:"ascending"`
}

// Snapshot is a read-only view of the controller with every derived value precomputed.
type Snapshot struct {
	History   []entity.Grid `json:"history"`
	Step      int           `json:"step"`
	Ascending bool          `json:"ascending"`
	Grid      entity.Grid   `json:"grid"`
	Winner    entity.Winner `json:"winner"`
	Next      entity.Mark   `json:"next"`
	Status    string        `json:"status"`
	HasWinner bool          `json:"has_winner"`
	IsDraw    bool          `json:"is_draw"`
}

// GameController owns the move history of a single game. It is not safe for concurrent use.
type GameController struct {
	history   []entity.Grid
	step      int
	ascending bool
}

func NewGameController() *GameController {
	return &GameController{
		history:   []entity.Grid{{}},
		step:      0,
		ascending: true,
	}
}

// Current returns the grid at the step pointer.
func (that *GameController) Current() entity.Grid {
	return that.history[that.step]
}

func (that *GameController) Step() int {
	return that.step
}

func (that *GameController) Len() int {
	return len(that.history)
}

func (that *GameController) Ascending() bool {
	return that.ascending
}

// Next returns the mark to play at the current step.
func (that *GameController) Next() entity.Mark {
	return entity.MarkForStep(that.step)
}

func (that *GameController) Winner() entity.Winner {
	return entity.EvaluateWinner(that.Current())
}

// AttemptMove places the next mark on cell. A move on an occupied cell or on a won grid is
// rejected without changing anything and reported as false with a nil error.
func (that *GameController) AttemptMove(cell int) (bool, error) {
	if !entity.IsValidCell(cell) {
		return false, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	current := that.Current()
	if that.Winner().HasWinner() || !current.IsEmpty(cell) {
		return false, nil
	}

	next := current
	next[cell] = that.Next()

	// full slice expression so append never writes into an array shared with an older snapshot
	kept := that.history[: that.step+1 : that.step+1]
	that.history = append(kept, next)
	that.step = len(that.history) - 1

	return true, nil
}

// JumpTo moves the step pointer. Any recorded step is reachable, won or not.
func (that *GameController) JumpTo(step int) error {
	if step < 0 || step >= len(that.history) {
		return fmt.Errorf("%w: step %d of %d", apperror.ErrInvalidStep, step, len(that.history))
	}

	that.step = step

	return nil
}

func (that *GameController) SetAscending(ascending bool) {
	that.ascending = ascending
}

// Status is "Winner: X" once the displayed grid is won, otherwise "Next player: X".
func (that *GameController) Status() string {
	if winner := that.Winner(); winner.HasWinner() {
		return statusWinner + string(winner.Mark)
	}

	return statusNext + string(that.Next())
}

func (that *GameController) Snapshot() Snapshot {
	winner := that.Winner()

	return Snapshot{
		History:   that.historyCopy(),
		Step:      that.step,
		Ascending: that.ascending,
		Grid:      that.Current(),
		Winner:    winner,
		Next:      that.Next(),
		Status:    that.Status(),
		HasWinner: winner.HasWinner(),
		IsDraw:    entity.IsDraw(that.Current()),
	}
}

func (that *GameController) State() State {
	return State{
		History:   that.historyCopy(),
		Step:      that.step,
		Ascending: that.ascending,
	}
}

// Restore replaces the controller state after checking that the history could have been
// produced by legal play.
func (that *GameController) Restore(state State) error {
	if err := validateState(state); err != nil {
		return err
	}

	that.history = append([]entity.Grid(nil), state.History...)
	that.step = state.Step
	that.ascending = state.Ascending

	return nil
}

// FromState builds a controller from persisted state.
func FromState(state State) (*GameController, error) {
	controller := NewGameController()
	if err := controller.Restore(state); err != nil {
		return nil, err
	}

	return controller, nil
}

func (that *GameController) historyCopy() []entity.Grid {
	return append([]entity.Grid(nil), that.history...)
}

func validateState(state State) error {
	if len(state.History) == 0 {
		return fmt.Errorf("%w: empty history", apperror.ErrCorruptedState)
	}

	if state.History[0] != (entity.Grid{}) {
		return fmt.Errorf("%w: history does not start with an empty grid", apperror.ErrCorruptedState)
	}

	if state.Step < 0 || state.Step >= len(state.History) {
		return fmt.Errorf("%w: step %d out of range", apperror.ErrCorruptedState, state.Step)
	}

	for i := 1; i < len(state.History); i++ {
		if err := validateTransition(state.History[i-1], state.History[i], i); err != nil {
			return err
		}
	}

	return nil
}

// validateTransition checks that step i adds exactly one mark of the right player to a grid
// that was not already won.
func validateTransition(prev, next entity.Grid, step int) error {
	if entity.EvaluateWinner(prev).HasWinner() {
		return fmt.Errorf("%w: move %d after the game was won", apperror.ErrCorruptedState, step)
	}

	for cell := range next {
		if prev[cell] == next[cell] {
			continue
		}

		if prev[cell] != entity.EmptyCell || next[cell] != entity.MarkForStep(step-1) {
			return fmt.Errorf("%w: illegal change at move %d cell %d", apperror.ErrCorruptedState, step, cell)
		}
	}

	// no mark was removed or replaced, so a count of step means exactly one mark was added
	if placed := next.MarksPlaced(); placed != step {
		return fmt.Errorf("%w: move %d leaves %d marks", apperror.ErrCorruptedState, step, placed)
	}

	return nil
}
