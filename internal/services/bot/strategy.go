package bot

import "github.com/mcoot/tictactoe-go/internal/model"

// Strategy defines how a bot chooses its next move
type Strategy interface {
	// ChoosePosition selects an empty cell for symbol, or -1 if the board is full
	ChoosePosition(b model.Board, symbol model.Symbol) int
}

// emptyCells lists the empty positions in board order
func emptyCells(b model.Board) []int {
	empty := make([]int, 0, model.BoardSize)
	for pos := range b {
		if b[pos] == model.SymbolNone {
			empty = append(empty, pos)
		}
	}
	return empty
}
