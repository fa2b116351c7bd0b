package terminal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

var ErrUnknownCommand = errors.New("unknown command")

type CommandKind int

const (
	CommandCell CommandKind = iota
	CommandRestart
	CommandQuit
)

type Command struct {
	Kind CommandKind
	Cell entity.Cell
}

// ParseCommand reads one input line: "<row> <col>", "restart" or "quit".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))

	switch {
	case len(fields) == 1 && (fields[0] == "restart" || fields[0] == "r"):
		return Command{Kind: CommandRestart}, nil
	case len(fields) == 1 && (fields[0] == "quit" || fields[0] == "q"):
		return Command{Kind: CommandQuit}, nil
	case len(fields) == 2:
		row, err := strconv.Atoi(fields[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: bad row %q", ErrUnknownCommand, fields[0])
		}

		col, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("%w: bad column %q", ErrUnknownCommand, fields[1])
		}

		return Command{Kind: CommandCell, Cell: entity.Cell{Row: row, Col: col}}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, strings.TrimSpace(line))
	}
}
