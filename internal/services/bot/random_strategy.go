package bot

import (
	"github.com/mcoot/tictactoe-go/internal/dependencies/random"
	"github.com/mcoot/tictactoe-go/internal/model"
)

// RandomStrategy picks a random empty cell
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChoosePosition picks a random empty cell on the board
func (s *RandomStrategy) ChoosePosition(b model.Board, symbol model.Symbol) int {
	empty := emptyCells(b)
	if len(empty) == 0 {
		return -1
	}
	return empty[s.random.Intn(len(empty))]
}
