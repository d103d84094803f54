package model

import (
	"encoding/json"
	"fmt"
)

// BoardSize is the number of cells on the 3x3 board
const BoardSize = 9

// Symbol is the mark a player places on the board
type Symbol string

const (
	SymbolNone Symbol = ""
	SymbolX    Symbol = "X"
	SymbolO    Symbol = "O"
)

// SymbolForSeat returns the symbol assigned to a room seat (0 is X, 1 is O)
func SymbolForSeat(seat int) Symbol {
	if seat == 0 {
		return SymbolX
	}
	return SymbolO
}

// Opponent returns the other player's symbol
func (s Symbol) Opponent() Symbol {
	switch s {
	case SymbolX:
		return SymbolO
	case SymbolO:
		return SymbolX
	default:
		return SymbolNone
	}
}

// Board is the 3x3 grid in row-major order. Empty cells hold SymbolNone.
type Board [BoardSize]Symbol

// IsValidPosition returns true if pos is a cell index on the board
func (b Board) IsValidPosition(pos int) bool {
	return pos >= 0 && pos < BoardSize
}

// IsEmpty returns true if the cell at pos is unoccupied
func (b Board) IsEmpty(pos int) bool {
	return b.IsValidPosition(pos) && b[pos] == SymbolNone
}

// IsFull returns true if every cell is occupied
func (b Board) IsFull() bool {
	for _, cell := range b {
		if cell == SymbolNone {
			return false
		}
	}
	return true
}

// EmptyCount returns the number of empty cells
func (b Board) EmptyCount() int {
	count := 0
	for _, cell := range b {
		if cell == SymbolNone {
			count++
		}
	}
	return count
}

// MarshalJSON encodes empty cells as null
func (b Board) MarshalJSON() ([]byte, error) {
	cells := make([]*Symbol, BoardSize)
	for i := range b {
		if b[i] != SymbolNone {
			s := b[i]
			cells[i] = &s
		}
	}
	return json.Marshal(cells)
}

// UnmarshalJSON accepts null or "X"/"O" per cell
func (b *Board) UnmarshalJSON(data []byte) error {
	var cells []*Symbol
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	if len(cells) != BoardSize {
		return fmt.Errorf("board must have %d cells, got %d", BoardSize, len(cells))
	}
	for i, cell := range cells {
		if cell == nil {
			b[i] = SymbolNone
			continue
		}
		b[i] = *cell
	}
	return nil
}

// String renders the board as three rows, using '.' for empty cells
func (b Board) String() string {
	out := make([]byte, 0, BoardSize+3)
	for i, cell := range b {
		if cell == SymbolNone {
			out = append(out, '.')
		} else {
			out = append(out, cell[0])
		}
		if i%3 == 2 && i != BoardSize-1 {
			out = append(out, '\n')
		}
	}
	return string(out)
}
