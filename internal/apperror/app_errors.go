package apperror

import "errors"

var (
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrInvalidStep     = errors.New("invalid history step")
	ErrSessionNotFound = errors.New("game session not found")
	ErrCorruptedState  = errors.New("corrupted game state")
	ErrInvalidGrid     = errors.New("grid must have exactly 9 cells")
)
