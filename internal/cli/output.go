package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/tictactoe-go/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	mu     sync.Mutex
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

// PrintEvent outputs one realtime event. JSON output is one compact line per
// event so that streams can be piped.
func (o *Output) PrintEvent(evt RealtimeEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.format == "json" {
		data, _ := json.Marshal(evt)
		fmt.Fprintln(o.w, string(data))
		return
	}
	o.printEvent(evt)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case []model.RoomSummary:
		o.printRooms(v)
	case Stats:
		o.printStats(v)
	case []HistoryRecord:
		o.printHistory(v)
	case HistoryRecord:
		o.printHistoryRecord(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthResult combines user and token
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Stats response type
type Stats struct {
	Players          int `json:"players"`
	ConnectedPlayers int `json:"connectedPlayers"`
	Rooms            int `json:"rooms"`
	WaitingRooms     int `json:"waitingRooms"`
	PlayingRooms     int `json:"playingRooms"`
	FinishedRooms    int `json:"finishedRooms"`
	Seekers          int `json:"seekers"`
	PendingTasks     int `json:"pendingTasks"`
}

// HistoryRecord response type
type HistoryRecord struct {
	ID              string    `json:"id"`
	Player          string    `json:"player"`
	GameType        string    `json:"gameType"`
	Result          string    `json:"result"`
	Winner          string    `json:"winner"`
	Opponent        string    `json:"opponent,omitempty"`
	GameMode        string    `json:"gameMode,omitempty"`
	Date            time.Time `json:"date"`
	GameTypeDisplay string    `json:"gameTypeDisplay"`
	ResultDisplay   string    `json:"resultDisplay"`
	OpponentDisplay string    `json:"opponentDisplay"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// RealtimeEvent is a message received over the websocket or an SSE feed
type RealtimeEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (o *Output) printUser(u User) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", u.Username, u.ID)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Fprintf(o.w, "Token: %s\n", a.Token)
}

func (o *Output) printRooms(rooms []model.RoomSummary) {
	if len(rooms) == 0 {
		fmt.Fprintln(o.w, "No rooms waiting for players")
		return
	}
	fmt.Fprintf(o.w, "Rooms (%d):\n", len(rooms))
	for _, r := range rooms {
		fmt.Fprintf(o.w, "  - %s %q hosted by %s [%s]\n", r.ID, r.Name, r.HostUsername, r.Status)
	}
}

func (o *Output) printStats(s Stats) {
	fmt.Fprintf(o.w, "Players: %d (%d connected)\n", s.Players, s.ConnectedPlayers)
	fmt.Fprintf(o.w, "Rooms: %d (waiting %d, playing %d, finished %d)\n",
		s.Rooms, s.WaitingRooms, s.PlayingRooms, s.FinishedRooms)
	fmt.Fprintf(o.w, "Seekers: %d\n", s.Seekers)
	fmt.Fprintf(o.w, "Pending tasks: %d\n", s.PendingTasks)
}

func (o *Output) printHistory(records []HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(o.w, "No games recorded")
		return
	}
	for _, h := range records {
		o.printHistoryRecord(h)
	}
}

func (o *Output) printHistoryRecord(h HistoryRecord) {
	fmt.Fprintf(o.w, "%s  %-4s vs %-12s %s (winner %s)\n",
		h.Date.Local().Format("2006-01-02 15:04"), h.ResultDisplay, h.OpponentDisplay, h.GameTypeDisplay, h.Winner)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}

func (o *Output) printEvent(evt RealtimeEvent) {
	timestamp := evt.Time.Format("15:04:05")

	switch model.EventType(evt.Event) {
	case model.EventGameStart:
		var p model.GameStartPayload
		if json.Unmarshal(evt.Data, &p) == nil {
			opponent := "nobody yet"
			if p.Opponent != nil {
				opponent = *p.Opponent
			}
			turn := "their turn"
			if p.IsMyTurn {
				turn = "your turn"
			}
			fmt.Fprintf(o.w, "[%s] game_start: room %s, you are %s vs %s, %s (%s)\n",
				timestamp, p.Room, p.Symbol, opponent, turn, p.GameStatus)
			return
		}
	case model.EventMoveMade:
		var p model.MoveMadePayload
		if json.Unmarshal(evt.Data, &p) == nil {
			if p.Position >= 0 {
				fmt.Fprintf(o.w, "[%s] move_made: %s at %d, next %s\n", timestamp, p.Symbol, p.Position, p.NextTurn)
			} else {
				fmt.Fprintf(o.w, "[%s] move_made: board restored, next %s\n", timestamp, p.NextTurn)
			}
			o.printBoard(p.Board)
			return
		}
	case model.EventGameEnd:
		var p model.GameEndPayload
		if json.Unmarshal(evt.Data, &p) == nil {
			switch {
			case p.IsDraw:
				fmt.Fprintf(o.w, "[%s] game_end: draw\n", timestamp)
			case p.WinnerSymbol != nil:
				fmt.Fprintf(o.w, "[%s] game_end: %s wins\n", timestamp, *p.WinnerSymbol)
			default:
				fmt.Fprintf(o.w, "[%s] game_end\n", timestamp)
			}
			o.printBoard(p.FinalState)
			return
		}
	case model.EventRoomsUpdate:
		var rooms []model.RoomSummary
		if json.Unmarshal(evt.Data, &rooms) == nil {
			fmt.Fprintf(o.w, "[%s] rooms_update:\n", timestamp)
			o.printRooms(rooms)
			return
		}
	}

	display := strings.ReplaceAll(string(evt.Data), "\n", " ")
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	fmt.Fprintf(o.w, "[%s] %s: %s\n", timestamp, evt.Event, display)
}

func (o *Output) printBoard(b model.Board) {
	fmt.Fprintln(o.w, "   +---+---+---+")
	for row := 0; row < 3; row++ {
		fmt.Fprint(o.w, "   |")
		for col := 0; col < 3; col++ {
			pos := row*3 + col
			if b[pos] == model.SymbolNone {
				fmt.Fprintf(o.w, " %d |", pos)
			} else {
				fmt.Fprintf(o.w, " %s |", b[pos])
			}
		}
		fmt.Fprintln(o.w)
		fmt.Fprintln(o.w, "   +---+---+---+")
	}
}
