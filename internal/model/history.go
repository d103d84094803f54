package model

import (
	"strings"
	"time"
)

// GameType classifies where a recorded game was played
type GameType string

const (
	GameTypeComputer    GameType = "computer"
	GameTypeMultiplayer GameType = "multiplayer"
	GameTypeOnline      GameType = "online"
)

// Valid returns true for a known game type
func (t GameType) Valid() bool {
	switch t {
	case GameTypeComputer, GameTypeMultiplayer, GameTypeOnline:
		return true
	}
	return false
}

// GameResult is the outcome from the recording player's point of view
type GameResult string

const (
	ResultWin  GameResult = "win"
	ResultLoss GameResult = "loss"
	ResultDraw GameResult = "draw"
)

// Valid returns true for a known result
func (r GameResult) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultDraw:
		return true
	}
	return false
}

// WinnerDraw is the Winner value of a drawn game
const WinnerDraw = "draw"

// GameModePvP is the game mode recorded for online matches
const GameModePvP = "pvp"

// HistoryLimit is the number of records returned by a history query
const HistoryLimit = 10

// HistoryID identifies a stored history record
type HistoryID string

// HistoryRecord is one finished game as seen by one player
type HistoryRecord struct {
	ID       HistoryID  `json:"id"`
	Player   string     `json:"player"`
	GameType GameType   `json:"gameType"`
	Result   GameResult `json:"result"`
	Winner   string     `json:"winner"` // "X", "O" or "draw"
	Opponent string     `json:"opponent,omitempty"`
	GameMode string     `json:"gameMode,omitempty"`
	Date     time.Time  `json:"date"`
}

// Validate checks the fields a client is allowed to supply
func (h *HistoryRecord) Validate() error {
	if h.Player == "" || !h.GameType.Valid() || !h.Result.Valid() {
		return ErrInvalidHistory
	}
	switch h.Winner {
	case string(SymbolX), string(SymbolO), WinnerDraw:
	default:
		return ErrInvalidHistory
	}
	return nil
}

// GameTypeDisplay returns the human readable game type
func (h *HistoryRecord) GameTypeDisplay() string {
	switch h.GameType {
	case GameTypeOnline:
		return "Online Multiplayer"
	case GameTypeComputer:
		return "vs Computer"
	default:
		return "Local Multiplayer"
	}
}

// ResultDisplay returns the result with its first letter capitalised
func (h *HistoryRecord) ResultDisplay() string {
	r := string(h.Result)
	if r == "" {
		return ""
	}
	return strings.ToUpper(r[:1]) + r[1:]
}

// OpponentDisplay returns the opponent name, falling back to a generic label
func (h *HistoryRecord) OpponentDisplay() string {
	if h.Opponent != "" {
		return h.Opponent
	}
	if h.GameType == GameTypeComputer {
		return "Computer"
	}
	return "Player 2"
}
