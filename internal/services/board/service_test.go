package board

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tictactoe-go/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
}

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

// Evaluate tests

func (s *ServiceSuite) TestEvaluateEmptyBoardIsOngoing() {
	result := Evaluate(model.Board{})
	s.Equal(Ongoing, result.Outcome)
	s.Equal(model.SymbolNone, result.Winner)
	s.False(result.IsTerminal())
}

func (s *ServiceSuite) TestEvaluateEveryLineWins() {
	for _, line := range Lines {
		var b model.Board
		for _, pos := range line {
			b[pos] = model.SymbolO
		}
		result := Evaluate(b)
		s.Equal(Won, result.Outcome, "line %v", line)
		s.Equal(line, result.Line)
		s.Equal(model.SymbolO, result.Winner)
	}
}

func (s *ServiceSuite) TestEvaluateTopRowWin() {
	result := Evaluate(parse("XXXOO...."))
	s.Equal(Won, result.Outcome)
	s.Equal([3]int{0, 1, 2}, result.Line)
	s.Equal(model.SymbolX, result.Winner)
}

func (s *ServiceSuite) TestEvaluateReportsFirstLineInOrder() {
	// Row 0 and column 0 both complete
	result := Evaluate(parse("XXXXOOXOO"))
	s.Equal(Won, result.Outcome)
	s.Equal([3]int{0, 1, 2}, result.Line)
}

func (s *ServiceSuite) TestEvaluateFullBoardWithoutLineIsDraw() {
	result := Evaluate(parse("XOXXOOOXX"))
	s.Equal(Draw, result.Outcome)
	s.Equal(model.SymbolNone, result.Winner)
	s.True(result.IsTerminal())
}

func (s *ServiceSuite) TestEvaluateWinOnFullBoardIsWin() {
	result := Evaluate(parse("XOXOXOOXX"))
	s.Equal(Won, result.Outcome)
	s.Equal(model.SymbolX, result.Winner)
	s.Equal([3]int{0, 4, 8}, result.Line)
}

func (s *ServiceSuite) TestEvaluateMixedLineIsNotWin() {
	result := Evaluate(parse("XXO......"))
	s.Equal(Ongoing, result.Outcome)
}

// Place tests

func (s *ServiceSuite) TestPlaceWritesSymbol() {
	var b model.Board
	result, err := s.service.Place(&b, 4, model.SymbolX)
	s.Require().NoError(err)
	s.Equal(model.SymbolX, b[4])
	s.Equal(Ongoing, result.Outcome)
}

func (s *ServiceSuite) TestPlaceOccupiedCellFails() {
	b := parse("....O....")
	_, err := s.service.Place(&b, 4, model.SymbolX)
	s.ErrorIs(err, model.ErrInvalidMove)
	s.ErrorIs(err, model.ErrInvalidInput)
	s.Equal(model.SymbolO, b[4])
}

func (s *ServiceSuite) TestPlaceOutOfRangeFails() {
	var b model.Board
	for _, pos := range []int{-1, 9, 100} {
		_, err := s.service.Place(&b, pos, model.SymbolX)
		s.ErrorIs(err, model.ErrInvalidMove, "pos %d", pos)
	}
	s.Equal(9, b.EmptyCount())
}

func (s *ServiceSuite) TestPlaceCompletesLine() {
	b := parse("XX.OO....")
	result, err := s.service.Place(&b, 2, model.SymbolX)
	s.Require().NoError(err)
	s.Equal(Won, result.Outcome)
	s.Equal(model.SymbolX, result.Winner)
}

// Board encoding tests

func (s *ServiceSuite) TestBoardEncodesEmptyCellsAsNull() {
	data, err := json.Marshal(parse("X...O...."))
	s.Require().NoError(err)
	s.JSONEq(`["X",null,null,null,"O",null,null,null,null]`, string(data))
}

func (s *ServiceSuite) TestBoardDecodeRejectsWrongLength() {
	var b model.Board
	err := json.Unmarshal([]byte(`["X",null]`), &b)
	s.Error(err)
}

func (s *ServiceSuite) TestBoardString() {
	s.Equal("X..\n.O.\n..X", parse("X...O...X").String())
}

func (s *ServiceSuite) TestBoardQueriesOnRoomCopy() {
	room := model.Room{Board: parse("XO.......")}
	snapshot := func() model.Room { return room }

	s.Equal(7, snapshot().Board.EmptyCount())
	s.False(snapshot().Board.IsFull())
	s.True(snapshot().Board.IsEmpty(2))
	s.False(snapshot().Board.IsEmpty(0))
	s.True(parse("XOXOXOOXO").IsFull())
}
