package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/reversi-backend/internal/engine"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
	"github.com/rocketscienceinc/reversi-backend/internal/reversi"
)

const (
	firstMark  = "X"
	secondMark = "O"
	emptyMark  = "."
	hintMark   = "*"
)

// Renderer draws snapshots as a text board.
type Renderer struct {
	w      io.Writer
	output *termenv.Output
	clear  bool
}

// NewRenderer writes to w. clear wipes the screen before every frame and should only be used on a TTY.
func NewRenderer(w io.Writer, clear bool, opts ...termenv.OutputOption) *Renderer {
	return &Renderer{
		w:      w,
		output: termenv.NewOutput(w, opts...),
		clear:  clear,
	}
}

func (that *Renderer) Render(snapshot engine.Snapshot) error {
	if that.clear {
		that.output.ClearScreen()
	}

	if _, err := io.WriteString(that.w, that.Frame(snapshot)); err != nil {
		return fmt.Errorf("failed to render board: %w", err)
	}

	return nil
}

// Message prints a line below the board.
func (that *Renderer) Message(text string) error {
	if _, err := fmt.Fprintln(that.w, that.output.String(text).Italic().String()); err != nil {
		return fmt.Errorf("failed to print message: %w", err)
	}

	return nil
}

// Frame returns the text for one snapshot. Legal moves are hinted while a side awaits input.
func (that *Renderer) Frame(snapshot engine.Snapshot) string {
	board := snapshot.Board

	var hints entity.Grid
	if snapshot.Status.IsAwaiting() {
		mover, opponent := board.Of(snapshot.Turn), board.Of(snapshot.Turn.Other())
		for _, cell := range reversi.ListValidMoves(mover, opponent) {
			hints = hints.With(cell)
		}
	}

	var sb strings.Builder

	sb.WriteString("  ")
	for col := 0; col < entity.BoardSize; col++ {
		fmt.Fprintf(&sb, " %d", col)
	}
	sb.WriteString("\n")

	for row := 0; row < entity.BoardSize; row++ {
		fmt.Fprintf(&sb, "%d ", row)
		for col := 0; col < entity.BoardSize; col++ {
			sb.WriteString(" ")
			sb.WriteString(that.mark(board, hints, entity.Cell{Row: row, Col: col}))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\n%s %d  %s %d  moves %d\n",
		that.output.String(firstMark).Bold().String(), board.Count(entity.SideFirst),
		that.output.String(secondMark).Bold().String(), board.Count(entity.SideSecond),
		snapshot.Moves)

	status := snapshot.Status
	if status == entity.StatusIdle {
		status = "idle"
	}
	sb.WriteString(that.output.String(string(status)).Bold().String())
	sb.WriteString("\n")

	return sb.String()
}

func (that *Renderer) mark(board entity.Board, hints entity.Grid, cell entity.Cell) string {
	side, ok := board.Owner(cell)
	switch {
	case ok && side == entity.SideFirst:
		return that.output.String(firstMark).Foreground(that.output.Color("12")).Bold().String()
	case ok:
		return that.output.String(secondMark).Foreground(that.output.Color("9")).Bold().String()
	case hints.Has(cell):
		return that.output.String(hintMark).Faint().String()
	default:
		return emptyMark
	}
}
