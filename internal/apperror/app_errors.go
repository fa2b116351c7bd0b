package apperror

import "errors"

var (
	ErrGameAlreadyRunning   = errors.New("game is already running")
	ErrGameNotRunning       = errors.New("game is not running")
	ErrGameStopped          = errors.New("game was stopped")
	ErrInvalidCell          = errors.New("invalid cell")
	ErrNoAvailableMoves     = errors.New("no available moves")
	ErrOverlappingOccupancy = errors.New("cell occupied by both sides")
	ErrUnknownAgent         = errors.New("unknown agent")
	ErrHumanInBatch         = errors.New("cannot play in batch mode with a human agent")
	ErrResultNotFound       = errors.New("result not found")
	ErrInvalidNetwork       = errors.New("network does not fit the board")
)
