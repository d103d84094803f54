package bot_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tictactoe-go/internal/dependencies/mocks"
	"github.com/mcoot/tictactoe-go/internal/model"
	"github.com/mcoot/tictactoe-go/internal/services/bot"
	"github.com/mcoot/tictactoe-go/internal/services/board"
)

// parse builds a board from a 9 character string of X, O and '.'
func parse(cells string) model.Board {
	var b model.Board
	for i, c := range cells {
		switch c {
		case 'X':
			b[i] = model.SymbolX
		case 'O':
			b[i] = model.SymbolO
		}
	}
	return b
}

type RandomStrategySuite struct {
	suite.Suite
	mockRandom *mocks.MockRandom
	strategy   *bot.RandomStrategy
}

func TestRandomStrategySuite(t *testing.T) {
	suite.Run(t, new(RandomStrategySuite))
}

func (s *RandomStrategySuite) SetupTest() {
	s.mockRandom = mocks.NewMockRandom()
	s.strategy = bot.NewRandomStrategy(s.mockRandom)
}

func (s *RandomStrategySuite) TestEmptyBoard() {
	s.mockRandom.QueueIntn(4)

	pos := s.strategy.ChoosePosition(model.Board{}, model.SymbolX)
	s.Equal(4, pos)
	s.Equal([]int{9}, s.mockRandom.Calls)
}

func (s *RandomStrategySuite) TestPartiallyFilledBoard() {
	// Empty cells are 2, 5 and 8
	s.mockRandom.QueueIntn(1)

	pos := s.strategy.ChoosePosition(parse("XO.OX.XO."), model.SymbolO)
	s.Equal(5, pos)
	s.Equal([]int{3}, s.mockRandom.Calls)
}

func (s *RandomStrategySuite) TestFullBoard() {
	pos := s.strategy.ChoosePosition(parse("XOXXOOOXX"), model.SymbolX)
	s.Equal(-1, pos)
	s.Empty(s.mockRandom.Calls)
}

type MinimaxStrategySuite struct {
	suite.Suite
	strategy *bot.MinimaxStrategy
}

func TestMinimaxStrategySuite(t *testing.T) {
	suite.Run(t, new(MinimaxStrategySuite))
}

func (s *MinimaxStrategySuite) SetupTest() {
	s.strategy = bot.NewMinimaxStrategy()
}

func (s *MinimaxStrategySuite) TestTakesWinningMove() {
	// X to move; 2 completes the top row
	s.Equal(2, s.strategy.ChoosePosition(parse("XX.OO...."), model.SymbolX))
}

func (s *MinimaxStrategySuite) TestPrefersWinOverBlock() {
	// O can win on 5 or must otherwise block X at 2
	s.Equal(5, s.strategy.ChoosePosition(parse("XX.OO.X.."), model.SymbolO))
}

func (s *MinimaxStrategySuite) TestBlocksOpponentLine() {
	// X threatens the left column at 6
	s.Equal(6, s.strategy.ChoosePosition(parse("XO.X....."), model.SymbolO))
}

func (s *MinimaxStrategySuite) TestFullBoard() {
	s.Equal(-1, s.strategy.ChoosePosition(parse("XOXXOOOXX"), model.SymbolO))
}

func (s *MinimaxStrategySuite) TestSelfPlayDraws() {
	var b model.Board
	symbol := model.SymbolX
	for board.Evaluate(b).Outcome == board.Ongoing {
		pos := s.strategy.ChoosePosition(b, symbol)
		s.Require().True(b.IsEmpty(pos))
		b[pos] = symbol
		symbol = symbol.Opponent()
	}
	s.Equal(board.Draw, board.Evaluate(b).Outcome)
}

func (s *MinimaxStrategySuite) TestNeverLosesToRandomPlay() {
	rnd := mocks.NewMockRandom()
	// Opponent always takes the first empty cell
	random := bot.NewRandomStrategy(rnd)

	var b model.Board
	symbol := model.SymbolX
	for board.Evaluate(b).Outcome == board.Ongoing {
		var pos int
		if symbol == model.SymbolO {
			pos = s.strategy.ChoosePosition(b, symbol)
		} else {
			pos = random.ChoosePosition(b, symbol)
		}
		b[pos] = symbol
		symbol = symbol.Opponent()
	}

	result := board.Evaluate(b)
	s.NotEqual(model.SymbolX, result.Winner)
}
