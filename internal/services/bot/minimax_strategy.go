package bot

import (
	"math"

	"github.com/mcoot/tictactoe-go/internal/model"
	"github.com/mcoot/tictactoe-go/internal/services/board"
)

// MinimaxStrategy plays perfectly by searching the full game tree.
// Faster wins and slower losses score higher; ties go to the lowest position.
type MinimaxStrategy struct{}

// NewMinimaxStrategy creates a new MinimaxStrategy
func NewMinimaxStrategy() *MinimaxStrategy {
	return &MinimaxStrategy{}
}

// ChoosePosition returns the best move for symbol
func (s *MinimaxStrategy) ChoosePosition(b model.Board, symbol model.Symbol) int {
	best, bestScore := -1, math.MinInt
	for _, pos := range emptyCells(b) {
		next := b
		next[pos] = symbol
		score := -s.negamax(next, symbol.Opponent(), 1)
		if score > bestScore {
			best, bestScore = pos, score
		}
	}
	return best
}

// negamax scores b from the point of view of toMove
func (s *MinimaxStrategy) negamax(b model.Board, toMove model.Symbol, depth int) int {
	switch board.Evaluate(b).Outcome {
	case board.Won:
		// The previous move won
		return depth - model.BoardSize - 1
	case board.Draw:
		return 0
	}

	best := math.MinInt
	for _, pos := range emptyCells(b) {
		next := b
		next[pos] = toMove
		if score := -s.negamax(next, toMove.Opponent(), depth+1); score > best {
			best = score
		}
	}
	return best
}
