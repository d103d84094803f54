package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/tictactoe-go/internal/dependencies/random"
	"github.com/mcoot/tictactoe-go/internal/model"
	"github.com/mcoot/tictactoe-go/internal/services/bot"
)

const playHelp = `Commands:
  create [name]      create a room and wait for an opponent
  join <room>        join a waiting room
  find               queue for a random opponent
  move <pos> [room]  mark cell 0-8 in the current room
  rooms              request the room list
  wait <event>       block until the named event arrives
  quit               disconnect`

func newPlayCmd() *cobra.Command {
	var name string
	var strategy string
	var waitTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Connect to the realtime channel and play interactively",
		Long: `Open a websocket to the server, register under a display name and read
commands from standard input, one per line. Incoming events are printed as
they arrive.

` + playHelp + `

With --bot the named strategy (random or minimax) moves automatically
whenever it is this player's turn.

The session ends on quit, end of input or Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var bots *bot.Service
			if strategy != "" {
				logger := slog.New(slog.DiscardHandler)
				if cfg.Verbose {
					logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
				}
				bots = bot.NewService(bot.DefaultStrategies(random.New()), logger)
				if _, err := bots.Strategy(strategy); err != nil {
					return err
				}
			}

			s, err := dialPlay(ctx, cfg.WebSocketURL(), NewOutput(cfg.Output))
			if err != nil {
				return err
			}
			defer s.Close()

			s.waitTimeout = waitTimeout
			s.bots = bots
			s.strategy = strategy
			s.start()
			return s.Run(ctx, name, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVar(&strategy, "bot", "", "Move automatically with this strategy")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 30*time.Second, "Maximum time a wait command blocks")

	return cmd
}

// playSession is one websocket connection driven by line commands
type playSession struct {
	conn        *websocket.Conn
	out         *Output
	events      chan RealtimeEvent
	done        chan struct{}
	waitTimeout time.Duration

	bots     *bot.Service
	strategy string

	writeMu sync.Mutex

	mu     sync.Mutex
	id     model.ConnectionID
	room   model.RoomID
	symbol model.Symbol
	board  model.Board
}

func dialPlay(ctx context.Context, wsURL string, out *Output) (*playSession, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}

	s := &playSession{
		conn:        conn,
		out:         out,
		events:      make(chan RealtimeEvent, 256),
		done:        make(chan struct{}),
		waitTimeout: 30 * time.Second,
	}
	return s, nil
}

// start begins reading events from the server
func (s *playSession) start() {
	go s.readLoop()
}

// Close sends a close frame and releases the connection
func (s *playSession) Close() {
	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	s.writeMu.Unlock()
	_ = s.conn.Close()
}

// Run registers the player and executes commands from in until it is exhausted
func (s *playSession) Run(ctx context.Context, name string, in io.Reader) error {
	if err := s.send(model.EventRegisterPlayer, name); err != nil {
		return err
	}
	if err := s.wait(ctx, model.EventRegistrationComplete); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return errors.New("connection closed by server")
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := s.execute(ctx, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func (s *playSession) execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false, nil
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "create":
		return false, s.send(model.EventCreateRoom, model.CreateRoomPayload{Name: strings.Join(args, " ")})
	case "join":
		if len(args) != 1 {
			return false, s.usage("join <room>")
		}
		return false, s.send(model.EventJoinRoom, model.RoomID(args[0]))
	case "find":
		return false, s.send(model.EventFindGame, nil)
	case "rooms":
		return false, s.send(model.EventGetRooms, nil)
	case "move":
		if len(args) < 1 || len(args) > 2 {
			return false, s.usage("move <pos> [room]")
		}
		pos, err := strconv.Atoi(args[0])
		if err != nil {
			return false, s.usage("move <pos> [room]")
		}
		room := s.currentRoom()
		if len(args) == 2 {
			room = model.RoomID(args[1])
		}
		if room == "" {
			s.out.PrintMessage("Not in a room")
			return false, nil
		}
		return false, s.send(model.EventMakeMove, model.MakeMovePayload{Position: pos, RoomID: room})
	case "wait":
		if len(args) != 1 {
			return false, s.usage("wait <event>")
		}
		return false, s.wait(ctx, model.EventType(args[0]))
	case "help":
		s.out.PrintMessage(playHelp)
		return false, nil
	case "quit", "exit":
		return true, nil
	default:
		s.out.PrintMessage(fmt.Sprintf("Unknown command %q, try help", fields[0]))
		return false, nil
	}
}

func (s *playSession) usage(form string) error {
	s.out.PrintMessage("Usage: " + form)
	return nil
}

func (s *playSession) send(event model.EventType, payload any) error {
	data, err := json.Marshal(model.NewEvent(event, payload))
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", event, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}
	return nil
}

// wait consumes received events until one of the given type arrives
func (s *playSession) wait(ctx context.Context, event model.EventType) error {
	timer := time.NewTimer(s.waitTimeout)
	defer timer.Stop()

	for {
		select {
		case evt := <-s.events:
			if model.EventType(evt.Event) == event {
				return nil
			}
		case <-s.done:
			return fmt.Errorf("connection closed while waiting for %s", event)
		case <-timer.C:
			return fmt.Errorf("timed out waiting for %s", event)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *playSession) readLoop() {
	defer close(s.done)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		evt := RealtimeEvent{Time: time.Now(), Event: msg.Event, Data: msg.Data}

		myTurn := s.track(evt)
		s.out.PrintEvent(evt)
		if myTurn {
			s.autoMove()
		}

		select {
		case s.events <- evt:
		default:
		}
	}
}

// track follows the seat the server assigns. It returns true when a bot
// should move now.
func (s *playSession) track(evt RealtimeEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch model.EventType(evt.Event) {
	case model.EventRegistrationComplete:
		var p model.RegistrationCompletePayload
		if json.Unmarshal(evt.Data, &p) == nil {
			s.id = p.ID
		}
	case model.EventGameStart:
		var p model.GameStartPayload
		if json.Unmarshal(evt.Data, &p) == nil {
			if p.Room != s.room {
				s.board = model.Board{}
			}
			s.room = p.Room
			s.symbol = p.Symbol
			return p.IsMyTurn && p.GameStatus == model.GameStatusPlaying
		}
	case model.EventMoveMade:
		var p model.MoveMadePayload
		if json.Unmarshal(evt.Data, &p) == nil {
			s.board = p.Board
			return p.NextTurn == s.id && p.GameStatus == model.GameStatusPlaying
		}
	case model.EventOpponentDisconnected, model.EventOpponentReconnected:
		var p model.OpponentStatusPayload
		if json.Unmarshal(evt.Data, &p) == nil && p.Room != "" {
			s.room = p.Room
		}
	}
	return false
}

// autoMove plays one bot move in the current room
func (s *playSession) autoMove() {
	if s.bots == nil {
		return
	}

	s.mu.Lock()
	room, symbol, b := s.room, s.symbol, s.board
	s.mu.Unlock()

	pos, err := s.bots.NextMove(s.strategy, b, symbol)
	if err != nil {
		return
	}
	_ = s.send(model.EventMakeMove, model.MakeMovePayload{Position: pos, RoomID: room})
}

func (s *playSession) currentRoom() model.RoomID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}
