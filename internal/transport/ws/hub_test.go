package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tictactoe-go/internal/dependencies/mocks"
	"github.com/mcoot/tictactoe-go/internal/model"
	"github.com/mcoot/tictactoe-go/internal/testutil"
)

const waitTimeout = 2 * time.Second

type inbound struct {
	conn model.ConnectionID
	env  model.Envelope
}

// recordingHandler captures traffic delivered by the hub
type recordingHandler struct {
	messages     chan inbound
	disconnected chan model.ConnectionID
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		messages:     make(chan inbound, 16),
		disconnected: make(chan model.ConnectionID, 16),
	}
}

func (h *recordingHandler) Dispatch(conn model.ConnectionID, env model.Envelope) {
	h.messages <- inbound{conn: conn, env: env}
}

func (h *recordingHandler) Disconnected(conn model.ConnectionID) {
	h.disconnected <- conn
}

type HubSuite struct {
	suite.Suite
	ids     *mocks.MockIDs
	hub     *Hub
	handler *recordingHandler
	server  *httptest.Server
	conns   []*websocket.Conn
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.ids = mocks.NewMockIDs()
	s.hub = NewHub(s.ids, testutil.NopLogger())
	s.handler = newRecordingHandler()
	s.hub.SetHandler(s.handler)
	go s.hub.Run()
	s.server = httptest.NewServer(s.hub)
	s.conns = nil
}

func (s *HubSuite) TearDownTest() {
	for _, c := range s.conns {
		_ = c.Close()
	}
	s.server.Close()
	s.hub.Close()
}

// dial connects a client that will be assigned the given connection id
func (s *HubSuite) dial(id model.ConnectionID) *websocket.Conn {
	s.ids.QueueConnectionIDs(id)
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.conns = append(s.conns, conn)
	s.Eventually(func() bool {
		s.hub.mu.RLock()
		defer s.hub.mu.RUnlock()
		_, ok := s.hub.clients[id]
		return ok
	}, waitTimeout, 5*time.Millisecond)
	return conn
}

func (s *HubSuite) read(conn *websocket.Conn) map[string]any {
	_ = conn.SetReadDeadline(time.Now().Add(waitTimeout))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	var msg map[string]any
	s.Require().NoError(json.Unmarshal(data, &msg))
	return msg
}

func (s *HubSuite) expectSilence(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	s.Error(err)
}

func (s *HubSuite) TestInboundMessageIsDispatched() {
	conn := s.dial("c1")
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"join_room","data":"room-1"}`)))

	select {
	case msg := <-s.handler.messages:
		s.Equal(model.ConnectionID("c1"), msg.conn)
		s.Equal(model.EventJoinRoom, msg.env.Event)
		s.JSONEq(`"room-1"`, string(msg.env.Data))
	case <-time.After(waitTimeout):
		s.Fail("message not dispatched")
	}
}

func (s *HubSuite) TestMalformedFrameGetsError() {
	conn := s.dial("c1")
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))

	msg := s.read(conn)
	s.Equal("error", msg["event"])
	s.Equal("Malformed message", msg["data"].(map[string]any)["message"])
}

func (s *HubSuite) TestSendReachesOnlyTarget() {
	c1 := s.dial("c1")
	c2 := s.dial("c2")

	s.hub.Send("c1", model.ErrorEvent("hello"))

	msg := s.read(c1)
	s.Equal("error", msg["event"])
	s.expectSilence(c2)
}

func (s *HubSuite) TestSendRoomReachesGroupMembers() {
	c1 := s.dial("c1")
	c2 := s.dial("c2")
	c3 := s.dial("c3")
	s.hub.JoinGroup("c1", "room-1")
	s.hub.JoinGroup("c2", "room-1")
	s.Equal(2, s.hub.GroupSize("room-1"))

	s.hub.SendRoom("room-1", model.NewEvent(model.EventGameEnd, map[string]bool{"isDraw": true}))

	s.Equal("game_end", s.read(c1)["event"])
	s.Equal("game_end", s.read(c2)["event"])
	s.expectSilence(c3)

	s.hub.LeaveGroup("c2", "room-1")
	s.Equal(1, s.hub.GroupSize("room-1"))
}

func (s *HubSuite) TestBroadcastReachesEveryone() {
	c1 := s.dial("c1")
	c2 := s.dial("c2")

	s.hub.Broadcast(model.NewEvent(model.EventRoomsUpdate, []model.RoomSummary{}))

	for _, conn := range []*websocket.Conn{c1, c2} {
		msg := s.read(conn)
		s.Equal("rooms_update", msg["event"])
		s.Equal([]any{}, msg["data"])
	}
}

func (s *HubSuite) TestCloseNotifiesHandlerAndLeavesGroups() {
	conn := s.dial("c1")
	s.hub.JoinGroup("c1", "room-1")

	_ = conn.Close()

	select {
	case id := <-s.handler.disconnected:
		s.Equal(model.ConnectionID("c1"), id)
	case <-time.After(waitTimeout):
		s.Fail("disconnect not reported")
	}
	s.Equal(0, s.hub.GroupSize("room-1"))
	s.Equal(0, s.hub.ClientCount())
}

func (s *HubSuite) TestSendToUnknownClientIsDropped() {
	s.NotPanics(func() {
		s.hub.Send("ghost", model.ErrorEvent("nobody home"))
	})
}

func (s *HubSuite) TestSlowClientIsDisconnected() {
	accepted := make(chan *websocket.Conn, 1)
	var upgrader websocket.Upgrader
	peerServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- conn
	}))
	defer peerServer.Close()

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(peerServer.URL, "http"), nil)
	s.Require().NoError(err)
	s.conns = append(s.conns, peer)

	var conn *websocket.Conn
	select {
	case conn = <-accepted:
	case <-time.After(waitTimeout):
		s.FailNow("peer connection not accepted")
	}

	// Without a write pump nothing drains the queue
	client := newClient(s.hub, "slow", conn)
	s.hub.mu.Lock()
	s.hub.clients[client.id] = client
	s.hub.mu.Unlock()
	s.hub.JoinGroup(client.id, "room-1")
	go client.readPump()

	for range sendBufferSize + 1 {
		s.hub.SendRoom("room-1", model.ErrorEvent("filler"))
	}

	select {
	case id := <-s.handler.disconnected:
		s.Equal(model.ConnectionID("slow"), id)
	case <-time.After(waitTimeout):
		s.FailNow("slow client was not disconnected")
	}
	s.Equal(0, s.hub.ClientCount())
	s.Equal(0, s.hub.GroupSize("room-1"))
}
