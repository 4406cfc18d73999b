// Command wsclient connects to the gateway as one identity, optionally joins a
// chat and sends a message, then prints every event it receives.
package main

import (
	"chat-desk/infrastructure/ws"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wsclient: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	dialURL, err := cfg.DialURL()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, dialURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.URL, err)
	}
	defer conn.Close()
	out := newPrinter(cfg.Colours)

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client done"), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	requests := 0
	send := func(event string, data any) error {
		requests++
		frame := map[string]any{"event": event, "requestId": strconv.Itoa(requests), "data": data}
		out.sent(event, frame)
		return conn.WriteJSON(frame)
	}
	if cfg.ChatID != "" {
		if err = send(ws.EventJoinChat, ws.ChatRef{ChatID: cfg.ChatID}); err != nil {
			return err
		}
		if cfg.Message != "" {
			if err = send(ws.EventSendMessage, ws.SendMessageData{ChatID: cfg.ChatID, Content: cfg.Message}); err != nil {
				return err
			}
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				out.closed(closeErr.Code, closeErr.Text)
				return nil
			}
			return err
		}
		out.received(data)
	}
}

type printer struct {
	colours bool
}

func newPrinter(colours bool) printer {
	return printer{colours: colours}
}

func (p printer) sent(event string, frame any) {
	raw, _ := json.Marshal(frame)
	fmt.Println(p.paint(color.FgCyan, "→ "+event), string(raw))
}

func (p printer) received(data []byte) {
	var frame struct {
		Event     string          `json:"event"`
		RequestID string          `json:"requestId"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		fmt.Println(p.paint(color.FgRed, "← invalid frame"), string(data))
		return
	}
	fmt.Println(p.paint(eventColour(frame.Event), "← "+frame.Event), frame.RequestID, string(frame.Data))
}

func (p printer) closed(code int, reason string) {
	fmt.Println(p.paint(color.FgYellow, fmt.Sprintf("closed %d", code)), reason)
}

func (p printer) paint(c color.Color, s string) string {
	if !p.colours {
		return s
	}
	return color.New(color.OpBold, c).Render(s)
}

func eventColour(event string) color.Color {
	switch event {
	case ws.EventError:
		return color.FgRed
	case ws.EventAck, ws.EventConnected:
		return color.FgGreen
	default:
		return color.FgMagenta
	}
}
