package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var room string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream spectator events from the lobby or a room",
		Long: `Connect to a server-sent events feed and print events as they arrive.

Without --room the lobby feed is streamed, which carries rooms_update.
With --room the room feed is streamed, which carries game_start, move_made,
game_end and the opponent status events.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/lobby/events"
			if room != "" {
				path = "/api/v1/rooms/" + url.PathEscape(room) + "/events"
			}
			return streamEvents(path)
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "Room ID to watch instead of the lobby")

	return cmd
}

func streamEvents(path string) error {
	req, err := http.NewRequest(http.MethodGet, strings.TrimSuffix(cfg.ServerURL, "/")+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	req = req.WithContext(ctx)

	// No timeout: the stream stays open until the server or user closes it
	httpClient := &http.Client{}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return decodeError(resp.StatusCode, body)
	}

	out := NewOutput(cfg.Output)
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "Connected to %s\n", path)
	}

	scanner := bufio.NewScanner(resp.Body)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				out.PrintEvent(newRealtimeEvent(currentEvent, strings.Join(dataLines, "\n")))
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if cfg.Verbose {
		fmt.Fprintln(os.Stderr, "Disconnected")
	}
	return nil
}

func newRealtimeEvent(event, data string) RealtimeEvent {
	evt := RealtimeEvent{Time: time.Now(), Event: event}
	if data == "" {
		return evt
	}
	if json.Valid([]byte(data)) {
		evt.Data = json.RawMessage(data)
	} else {
		evt.Data, _ = json.Marshal(data)
	}
	return evt
}
