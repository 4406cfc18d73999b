// Package ws is the connection gateway: it authenticates websocket clients,
// tracks them for presence and routes their events to the chat services.
package ws

import (
	"chat-desk/auth"
	"chat-desk/contract"
	"chat-desk/domain"
	"chat-desk/errors"
	"chat-desk/services"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// Presence is the part of the presence tracker the gateway drives.
type Presence interface {
	OnConnect(ctx context.Context, identity domain.Identity, conn contract.Connection)
	OnDisconnect(ctx context.Context, identity domain.Identity, connID string)
	SetTyping(ctx context.Context, chat domain.Chat, identity domain.Identity, isTyping bool) error
	Shutdown(reason string) int
}

// Rooms tracks which connections joined which chat.
type Rooms interface {
	Join(chatID string, connID string) bool
	Leave(chatID string, connID string)
	RoomsOf(connID string) []string
}

type Config struct {
	IdleTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxFrameSize   int64
	BufferSize     int
	AllowedOrigins []string
}

type Gateway struct {
	log        *slog.Logger
	identities services.IIdentityService
	presence   Presence
	rooms      Rooms
	chats      services.IChatService
	messages   services.IMessageService
	config     Config
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	closing  bool
	sessions sync.WaitGroup
}

func NewGateway(log *slog.Logger, config Config, identities services.IIdentityService, presence Presence,
	rooms Rooms, chats services.IChatService, messages services.IMessageService) *Gateway {
	g := &Gateway{
		log:        log,
		identities: identities,
		presence:   presence,
		rooms:      rooms,
		chats:      chats,
		messages:   messages,
		config:     config,
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(g.config.AllowedOrigins) == 0 || lo.Contains(g.config.AllowedOrigins, "*") {
		return true
	}
	return lo.Contains(g.config.AllowedOrigins, origin)
}

// ServeHTTP runs one client session from the upgrade to the close.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !g.enter() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer g.sessions.Done()

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response
		g.log.Debug("Websocket upgrade failed", "error", err)
		return
	}

	ctx := r.Context()
	identity, err := g.identities.Resolve(ctx, auth.CredentialsFromRequest(r))
	if err != nil {
		errors.Log(g.log, err, "Websocket authentication failed", "remote", r.RemoteAddr)
		deadline := time.Now().Add(g.config.WriteTimeout)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(CloseAuthenticationFailed, errors.Code(err)), deadline)
		_ = ws.Close()
		return
	}

	conn := newConnection(g.log, ws, g.config.BufferSize, g.config.WriteTimeout, g.pingPeriod())
	log := g.log.With("connection_id", conn.ID(), "identity", identity.Key())
	go conn.writeLoop()
	g.presence.OnConnect(ctx, identity, conn)
	defer g.disconnect(ctx, log, identity, conn)
	if g.isClosing() {
		// Attached after Shutdown swept the registry
		conn.Close("server shutting down")
		return
	}

	_ = conn.write(OutboundFrame{Event: EventConnected, Data: ConnectedData{
		ConnectionID: conn.ID(),
		Identity:     identity.Key(),
		Role:         identity.Role(),
	}})
	log.Info("Client connected")

	g.readLoop(ctx, log, identity, conn, ws)
}

func (g *Gateway) enter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closing {
		return false
	}
	g.sessions.Add(1)
	return true
}

func (g *Gateway) isClosing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closing
}

// disconnect runs whatever ended the session: client close, idle timeout,
// read error or shutdown.
func (g *Gateway) disconnect(ctx context.Context, log *slog.Logger, identity domain.Identity, conn *Connection) {
	for _, chatID := range g.rooms.RoomsOf(conn.ID()) {
		g.rooms.Leave(chatID, conn.ID())
	}
	g.presence.OnDisconnect(ctx, identity, conn.ID())
	conn.Close("session closed")
	log.Info("Client disconnected")
}

func (g *Gateway) readLoop(ctx context.Context, log *slog.Logger, identity domain.Identity, conn *Connection, ws *websocket.Conn) {
	ws.SetReadLimit(g.config.MaxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(g.config.IdleTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(g.config.IdleTimeout))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Debug("Websocket read ended", "error", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(g.config.IdleTimeout))

		var frame InboundFrame
		if err = json.Unmarshal(data, &frame); err != nil {
			g.reply(log, conn, "", nil, errors.Invalid(errors.ErrMalformedPayload, "", "invalid json"))
			continue
		}
		if err = auth.Validate(frame); err != nil {
			g.reply(log, conn, frame.RequestID, nil, err)
			continue
		}

		opCtx, cancel := context.WithTimeout(ctx, g.config.RequestTimeout)
		result, err := g.dispatch(opCtx, identity, conn, frame)
		cancel()
		g.reply(log, conn, frame.RequestID, result, err)
	}
}

// dispatch routes one client event. Every event naming a chat is checked
// against the caller's identity before anything else happens.
func (g *Gateway) dispatch(ctx context.Context, identity domain.Identity, conn *Connection, frame InboundFrame) (any, error) {
	switch frame.Event {
	case EventJoinChat:
		var data ChatRef
		if err := decode(frame.Data, &data); err != nil {
			return nil, err
		}
		chat, err := g.chats.Get(ctx, identity, data.ChatID)
		if err != nil {
			return nil, err
		}
		g.rooms.Join(chat.ID, conn.ID())
		return chat, nil

	case EventLeaveChat:
		var data ChatRef
		if err := decode(frame.Data, &data); err != nil {
			return nil, err
		}
		g.rooms.Leave(data.ChatID, conn.ID())
		return LeftData{ChatID: data.ChatID}, nil

	case EventSendMessage:
		var data SendMessageData
		if err := decode(frame.Data, &data); err != nil {
			return nil, err
		}
		return g.messages.Send(ctx, identity, data.ChatID, services.Draft{
			Content:  data.Content,
			Type:     data.Type,
			Metadata: data.Metadata,
		})

	case EventMarkAsRead:
		var data ChatRef
		if err := decode(frame.Data, &data); err != nil {
			return nil, err
		}
		return g.chats.MarkRead(ctx, identity, data.ChatID)

	case EventTyping:
		var data TypingData
		if err := decode(frame.Data, &data); err != nil {
			return nil, err
		}
		chat, err := g.chats.Get(ctx, identity, data.ChatID)
		if err != nil {
			return nil, err
		}
		return data, g.presence.SetTyping(ctx, chat, identity, data.IsTyping)

	default:
		return nil, errors.Invalid(errors.ErrMalformedPayload, "event", frame.Event)
	}
}

// reply answers a client event with an ack or an error frame. A rejected
// event never ends the session.
func (g *Gateway) reply(log *slog.Logger, conn *Connection, requestID string, result any, err error) {
	frame := OutboundFrame{Event: EventAck, RequestID: requestID, Data: result}
	if err != nil {
		errors.Log(log, err, "Client event rejected", "request_id", requestID)
		frame = OutboundFrame{Event: EventError, RequestID: requestID, Data: ErrorData{
			Code:    errors.Code(err),
			Message: err.Error(),
		}}
	}
	if writeErr := conn.write(frame); writeErr != nil {
		log.Debug("Reply not delivered", "error", writeErr)
	}
}

// Shutdown closes every live connection and waits for their sessions to
// finish cleaning up.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.closing = true
	g.mu.Unlock()

	g.presence.Shutdown("server shutting down")

	done := make(chan struct{})
	go func() {
		g.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gateway) pingPeriod() time.Duration {
	return g.config.IdleTimeout * 9 / 10
}

func decode(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return errors.Invalid(errors.ErrMalformedPayload, "data", "required")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Invalid(errors.ErrMalformedPayload, "data", err.Error())
	}
	return auth.Validate(out)
}
