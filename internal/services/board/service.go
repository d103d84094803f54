package board

import (
	"github.com/mcoot/tictactoe-go/internal/model"
)

// Outcome is the state of a board after evaluation
type Outcome int

const (
	Ongoing Outcome = iota
	Won
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Draw:
		return "draw"
	default:
		return "ongoing"
	}
}

// Result is the evaluation of a board
type Result struct {
	Outcome Outcome
	Line    [3]int       // Winning cells, only meaningful when Outcome is Won
	Winner  model.Symbol // SymbolNone unless Outcome is Won
}

// IsTerminal returns true if the game is over
func (r Result) IsTerminal() bool {
	return r.Outcome != Ongoing
}

// Lines lists every winning triple: rows, then columns, then diagonals
var Lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Evaluate reports whether the board is won, drawn or still in play.
// The first winning line in Lines order is reported.
func Evaluate(b model.Board) Result {
	for _, line := range Lines {
		s := b[line[0]]
		if s != model.SymbolNone && s == b[line[1]] && s == b[line[2]] {
			return Result{Outcome: Won, Line: line, Winner: s}
		}
	}
	if b.IsFull() {
		return Result{Outcome: Draw}
	}
	return Result{Outcome: Ongoing}
}

// Service provides board operations
type Service struct{}

// New creates a new board Service
func New() *Service {
	return &Service{}
}

// ValidateMove checks that pos is on the board and empty
func (s *Service) ValidateMove(b *model.Board, pos int) error {
	if !b.IsEmpty(pos) {
		return model.ErrInvalidMove
	}
	return nil
}

// Place validates and writes symbol at pos, then evaluates the board
func (s *Service) Place(b *model.Board, pos int, symbol model.Symbol) (Result, error) {
	if err := s.ValidateMove(b, pos); err != nil {
		return Result{}, err
	}
	b[pos] = symbol
	return Evaluate(*b), nil
}

// Evaluate evaluates the board
func (s *Service) Evaluate(b model.Board) Result {
	return Evaluate(b)
}

// Interface for dependency injection
type ServiceInterface interface {
	ValidateMove(b *model.Board, pos int) error
	Place(b *model.Board, pos int, symbol model.Symbol) (Result, error)
	Evaluate(b model.Board) Result
}

var _ ServiceInterface = (*Service)(nil)
