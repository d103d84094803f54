package factory

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tictactoe-go/internal/model"
)

const waitTimeout = 2 * time.Second

type IntegrationSuite struct {
	suite.Suite
	app    *TestApp
	server *httptest.Server
	ctx    context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.server = httptest.NewServer(s.app.Router())
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.server.Close()
	s.app.Close()
}

// player is a websocket client used by the tests
type player struct {
	s    *IntegrationSuite
	conn *websocket.Conn
}

type frame struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (s *IntegrationSuite) connect(id model.ConnectionID) *player {
	s.app.MockIDs.QueueConnectionIDs(id)
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return &player{s: s, conn: conn}
}

func (p *player) send(event model.EventType, data any) {
	msg := map[string]any{"event": event}
	if data != nil {
		msg["data"] = data
	}
	p.s.Require().NoError(p.conn.WriteJSON(msg))
}

// expect reads frames until one of the given type arrives
func (p *player) expect(event model.EventType, into any) {
	deadline := time.Now().Add(waitTimeout)
	for {
		_ = p.conn.SetReadDeadline(deadline)
		var f frame
		err := p.conn.ReadJSON(&f)
		p.s.Require().NoError(err, "waiting for %s", event)
		if f.Event != event {
			continue
		}
		if into != nil {
			p.s.Require().NoError(json.Unmarshal(f.Data, into))
		}
		return
	}
}

type gameStart struct {
	Room       model.RoomID `json:"room"`
	Symbol     string       `json:"symbol"`
	Opponent   *string      `json:"opponent"`
	IsMyTurn   bool         `json:"isMyTurn"`
	GameStatus string       `json:"gameStatus"`
}

type gameEnd struct {
	Winner       *string `json:"winner"`
	IsDraw       bool    `json:"isDraw"`
	WinnerSymbol *string `json:"winnerSymbol"`
}

func (s *IntegrationSuite) registerBoth() (*player, *player) {
	alice := s.connect("c-alice")
	alice.send(model.EventRegisterPlayer, "Alice")
	alice.expect(model.EventRegistrationComplete, nil)

	bob := s.connect("c-bob")
	bob.send(model.EventRegisterPlayer, "Bob")
	bob.expect(model.EventRegistrationComplete, nil)
	return alice, bob
}

func (s *IntegrationSuite) startGame() (*player, *player, model.RoomID) {
	alice, bob := s.registerBoth()
	s.app.MockIDs.QueueRoomIDs("room-1")

	alice.send(model.EventCreateRoom, map[string]string{"name": "Alice's table"})
	var waiting gameStart
	alice.expect(model.EventGameStart, &waiting)
	s.Equal("X", waiting.Symbol)
	s.Nil(waiting.Opponent)

	bob.send(model.EventJoinRoom, "room-1")
	var started gameStart
	bob.expect(model.EventGameStart, &started)
	s.Equal("O", started.Symbol)
	s.False(started.IsMyTurn)
	s.Require().NotNil(started.Opponent)
	s.Equal("Alice", *started.Opponent)

	var hostStart gameStart
	alice.expect(model.EventGameStart, &hostStart)
	s.True(hostStart.IsMyTurn)
	return alice, bob, "room-1"
}

func (s *IntegrationSuite) move(p *player, room model.RoomID, pos int, watchers ...*player) {
	p.send(model.EventMakeMove, map[string]any{"position": pos, "roomId": room})
	for _, w := range append([]*player{p}, watchers...) {
		w.expect(model.EventMoveMade, nil)
	}
}

// Test: complete game over real websockets, including history and cleanup
func (s *IntegrationSuite) TestCompleteGameFlow() {
	alice, bob, room := s.startGame()

	s.move(alice, room, 0, bob)
	s.move(bob, room, 3, alice)
	s.move(alice, room, 1, bob)
	s.move(bob, room, 4, alice)
	alice.send(model.EventMakeMove, map[string]any{"position": 2, "roomId": room})

	var end gameEnd
	bob.expect(model.EventGameEnd, &end)
	s.False(end.IsDraw)
	s.Require().NotNil(end.Winner)
	s.Equal("c-alice", *end.Winner)
	s.Require().NotNil(end.WinnerSymbol)
	s.Equal("X", *end.WinnerSymbol)

	stats, err := s.app.Coordinator.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, stats.FinishedRooms)

	// Finished rooms are reaped after the retention period
	s.app.MockClock.Advance(5 * time.Second)
	s.Eventually(func() bool {
		stats, err := s.app.Coordinator.Stats(s.ctx)
		return err == nil && stats.Rooms == 0
	}, waitTimeout, 10*time.Millisecond)

	// Both players get a history record
	s.Eventually(func() bool {
		a, _ := s.app.HistoryService.Latest(s.ctx, "Alice")
		b, _ := s.app.HistoryService.Latest(s.ctx, "Bob")
		return len(a) == 1 && len(b) == 1
	}, waitTimeout, 10*time.Millisecond)

	records, err := s.app.HistoryService.Latest(s.ctx, "Bob")
	s.Require().NoError(err)
	s.Equal(model.ResultLoss, records[0].Result)
	s.Equal("Alice", records[0].Opponent)
	s.Equal(model.GameTypeOnline, records[0].GameType)
}

// Test: a dropped connection pauses the game and a reconnect resumes it
func (s *IntegrationSuite) TestReconnectDuringGame() {
	alice, bob, room := s.startGame()
	s.move(alice, room, 4, bob)

	_ = bob.conn.Close()
	var notice struct {
		GameStatus string `json:"gameStatus"`
	}
	alice.expect(model.EventOpponentDisconnected, &notice)
	s.Equal("paused", notice.GameStatus)

	bob2 := s.connect("c-bob-2")
	bob2.send(model.EventRegisterPlayer, "Bob")

	var replay gameStart
	bob2.expect(model.EventGameStart, &replay)
	s.Equal("O", replay.Symbol)
	s.Equal(room, replay.Room)
	s.Equal("playing", replay.GameStatus)
	alice.expect(model.EventOpponentReconnected, nil)

	// The reconnected player keeps their seat and can move
	s.move(bob2, room, 0, alice)
}

// Test: find_game pairs two seekers into a playing room
func (s *IntegrationSuite) TestFindGamePairsSeekers() {
	alice, bob := s.registerBoth()

	alice.send(model.EventFindGame, nil)
	alice.expect(model.EventWaitingForOpponent, nil)

	bob.send(model.EventFindGame, nil)
	var bobStart, aliceStart gameStart
	bob.expect(model.EventGameStart, &bobStart)
	alice.expect(model.EventGameStart, &aliceStart)

	summary, err := s.app.Coordinator.RoomSummary(s.ctx, bobStart.Room)
	s.Require().NoError(err)
	s.Equal("Game between Bob and Alice", summary.Name)
	s.Equal(bobStart.Room, aliceStart.Room)
	s.Equal("X", bobStart.Symbol)
	s.True(bobStart.IsMyTurn)
	s.Equal("O", aliceStart.Symbol)
}

// Test: errors come back as error events
func (s *IntegrationSuite) TestErrorsAreReported() {
	alice := s.connect("c-alice")
	alice.send(model.EventMakeMove, map[string]any{"position": 0, "roomId": "nope"})

	var errPayload model.ErrorPayload
	alice.expect(model.EventError, &errPayload)
	s.Equal("Player not found", errPayload.Message)

	s.Require().NoError(alice.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	alice.expect(model.EventError, &errPayload)
	s.Equal("Malformed message", errPayload.Message)
}

// Test: the HTTP lobby listing matches the realtime one
func (s *IntegrationSuite) TestRoomsEndpoint() {
	alice, _ := s.registerBoth()
	s.app.MockIDs.QueueRoomIDs("room-1")
	alice.send(model.EventCreateRoom, map[string]string{"name": "Open table"})
	alice.expect(model.EventGameStart, nil)

	resp, err := http.Get(s.server.URL + "/api/v1/rooms")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var rooms []model.RoomSummary
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&rooms))
	s.Require().Len(rooms, 1)
	s.Equal("Open table", rooms[0].Name)
	s.Equal("Alice", rooms[0].HostUsername)
}

// Test: lobby spectators see rooms_update over SSE
func (s *IntegrationSuite) TestLobbySpectatorFeed() {
	ctx, cancel := context.WithTimeout(s.ctx, waitTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.server.URL+"/api/v1/lobby/events", nil)
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal("text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	s.Require().True(lines.Scan())
	s.Equal("event: connected", lines.Text())

	alice := s.connect("c-alice")
	alice.send(model.EventRegisterPlayer, "Alice")

	for lines.Scan() {
		if lines.Text() == "event: rooms_update" {
			return
		}
	}
	s.Fail("rooms_update not streamed")
}

func (s *IntegrationSuite) TestRoomFeedRequiresLiveRoom() {
	resp, err := http.Get(s.server.URL + "/api/v1/rooms/missing/events")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}
