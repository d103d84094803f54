package bot

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mcoot/tictactoe-go/internal/dependencies/random"
	"github.com/mcoot/tictactoe-go/internal/model"
)

// Strategy names
const (
	StrategyRandom  = "random"
	StrategyMinimax = "minimax"
)

// DefaultStrategies returns every built-in strategy keyed by name
func DefaultStrategies(rnd random.Random) map[string]Strategy {
	return map[string]Strategy{
		StrategyRandom:  NewRandomStrategy(rnd),
		StrategyMinimax: NewMinimaxStrategy(),
	}
}

// Service picks moves for bot-controlled players
type Service struct {
	strategies map[string]Strategy
	logger     *slog.Logger
}

// NewService creates a new bot Service
func NewService(strategies map[string]Strategy, logger *slog.Logger) *Service {
	return &Service{
		strategies: strategies,
		logger:     logger.With(slog.String("component", "bot-service")),
	}
}

// Names returns the registered strategy names in sorted order
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Strategy returns the named strategy
func (s *Service) Strategy(name string) (Strategy, error) {
	st, ok := s.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown bot strategy: %s", name)
	}
	return st, nil
}

// NextMove chooses a move for symbol with the named strategy.
// It returns model.ErrInvalidMove when the board has no empty cell.
func (s *Service) NextMove(name string, b model.Board, symbol model.Symbol) (int, error) {
	st, err := s.Strategy(name)
	if err != nil {
		return -1, err
	}

	pos := st.ChoosePosition(b, symbol)
	if pos < 0 {
		return -1, model.ErrInvalidMove
	}

	s.logger.Debug("bot chose move",
		slog.String("strategy", name),
		slog.String("symbol", string(symbol)),
		slog.Int("position", pos),
	)
	return pos, nil
}
